package interact

import (
	"signflow/internal/annotation"
	"signflow/internal/history"
)

// State is the controller's current interaction mode. The modes are
// mutually exclusive; entering one ignores gestures belonging to the
// others.
type State int

const (
	StateIdle State = iota
	StatePlacementPending
	StateDragging
	StateResizing
	StateEditing
)

// HandleTolerance is the pick radius around a corner handle, in
// page-logical units.
const HandleTolerance = 8.0

// gesture is the scratch state of an in-flight drag or resize. It is
// captured once at pointer-down and discarded at pointer-up, so every
// move frame is computed against the gesture origin rather than the
// previous frame.
type gesture struct {
	startX, startY float64
	corner         annotation.Corner
	snap           annotation.ResizeSnapshot
	mutated        bool
}

// Controller owns the interaction state machine. All methods must be
// called from the event loop; the controller does no locking.
type Controller struct {
	model *annotation.Model
	hist  *history.Stack

	state      State
	selectedID string

	pendingKind annotation.Kind
	pendingOpts annotation.Options

	gest gesture

	editID    string
	editDirty bool
	editOrig  string
}

// NewController wires a controller to a model and history stack.
func NewController(m *annotation.Model, h *history.Stack) *Controller {
	return &Controller{model: m, hist: h}
}

// State returns the current interaction mode.
func (c *Controller) State() State { return c.state }

// SelectedID returns the id of the selected item, or "".
func (c *Controller) SelectedID() string { return c.selectedID }

// Selected returns the selected item, or nil.
func (c *Controller) Selected() *annotation.Item {
	if c.selectedID == "" {
		return nil
	}
	return c.model.Get(c.selectedID)
}

// BeginPlacement arms the controller so the next click on a page
// places one item of the given kind. Any other in-flight mode is
// abandoned first.
func (c *Controller) BeginPlacement(kind annotation.Kind, opts annotation.Options) {
	c.abort()
	c.state = StatePlacementPending
	c.pendingKind = kind
	c.pendingOpts = opts
}

// Pointer feeds one pointer sample for a page into the state machine.
func (c *Controller) Pointer(pageIndex int, ev PointerEvent) {
	switch ev.Phase {
	case PhaseDown:
		c.pointerDown(pageIndex, ev.X, ev.Y)
	case PhaseMove:
		c.pointerMove(ev.X, ev.Y)
	case PhaseUp:
		c.pointerUp()
	}
}

func (c *Controller) pointerDown(pageIndex int, x, y float64) {
	switch c.state {
	case StatePlacementPending:
		it, err := c.model.Add(c.pendingKind, pageIndex, x, y, c.pendingOpts)
		c.state = StateIdle
		if err != nil {
			return
		}
		c.selectedID = it.ID
		c.hist.Commit(c.model.Snapshot())
		return

	case StateEditing:
		// A click outside the text box blurs the editor first.
		c.EndEditing()

	case StateIdle:
	default:
		return
	}

	// Corner handles of the selected item win over item bodies.
	if sel := c.Selected(); sel != nil && sel.PageIndex == pageIndex {
		if corner, ok := hitCorner(sel, x, y); ok {
			c.state = StateResizing
			c.gest = gesture{
				startX: x, startY: y,
				corner: corner,
				snap:   annotation.SnapshotOf(sel),
			}
			return
		}
	}

	if it := hitItem(c.model.ItemsOnPage(pageIndex), x, y); it != nil {
		c.selectedID = it.ID
		c.state = StateDragging
		c.gest = gesture{
			startX: x, startY: y,
			snap: annotation.SnapshotOf(it),
		}
		return
	}

	c.selectedID = ""
}

func (c *Controller) pointerMove(x, y float64) {
	dx, dy := x-c.gest.startX, y-c.gest.startY

	switch c.state {
	case StateDragging:
		it := c.Selected()
		if it == nil {
			return
		}
		// Position is re-derived from the gesture origin every frame.
		c.model.Move(c.selectedID, c.gest.snap.X+dx-it.X, c.gest.snap.Y+dy-it.Y)
		c.gest.mutated = true

	case StateResizing:
		if c.model.ResizeCorner(c.selectedID, c.gest.corner, dx, dy, c.gest.snap) == nil {
			c.gest.mutated = true
		}
	}
}

func (c *Controller) pointerUp() {
	switch c.state {
	case StateDragging, StateResizing:
		// One history entry per gesture, and none for a bare click.
		if c.gest.mutated {
			c.hist.Commit(c.model.Snapshot())
		}
		c.state = StateIdle
		c.gest = gesture{}
	}
}

// DoubleClick enters direct text editing when a text-like item is hit.
func (c *Controller) DoubleClick(pageIndex int, x, y float64) {
	if c.state != StateIdle {
		return
	}
	it := hitItem(c.model.ItemsOnPage(pageIndex), x, y)
	if it == nil || !it.Kind.IsText() || it.Kind == annotation.KindDateStamp {
		return
	}
	c.selectedID = it.ID
	c.state = StateEditing
	c.editID = it.ID
	c.editOrig = it.Content
	c.editDirty = false
}

// EditContent updates the edited item's text live, without committing.
func (c *Controller) EditContent(text string) {
	if c.state != StateEditing {
		return
	}
	if c.model.SetContent(c.editID, text) == nil {
		c.editDirty = true
	}
}

// EndEditing leaves edit mode, coalescing the whole editing session
// into at most one history entry.
func (c *Controller) EndEditing() {
	if c.state != StateEditing {
		return
	}
	if c.editDirty {
		if it := c.model.Get(c.editID); it == nil || it.Content != c.editOrig {
			c.hist.Commit(c.model.Snapshot())
		}
	}
	c.state = StateIdle
	c.editID = ""
	c.editDirty = false
	c.editOrig = ""
}

// Escape cancels a pending placement without touching the model, or
// blurs the text editor with its single coalesced commit.
func (c *Controller) Escape() {
	switch c.state {
	case StatePlacementPending:
		c.state = StateIdle
		c.pendingKind = ""
	case StateEditing:
		c.EndEditing()
	}
}

// DeleteSelected removes the selected item and commits.
func (c *Controller) DeleteSelected() {
	if c.state != StateIdle || c.selectedID == "" {
		return
	}
	if c.model.Delete(c.selectedID) == nil {
		c.selectedID = ""
		c.hist.Commit(c.model.Snapshot())
	}
}

// DuplicateSelected clones the selected item, selects the clone, and
// commits.
func (c *Controller) DuplicateSelected() {
	if c.state != StateIdle || c.selectedID == "" {
		return
	}
	cp, err := c.model.Duplicate(c.selectedID)
	if err != nil {
		return
	}
	c.selectedID = cp.ID
	c.hist.Commit(c.model.Snapshot())
}

// Undo steps the model back one committed gesture.
func (c *Controller) Undo() bool {
	if c.state != StateIdle {
		return false
	}
	snap, ok := c.hist.Undo()
	if !ok {
		return false
	}
	c.model.Restore(snap)
	c.reselect()
	return true
}

// Redo steps the model forward one committed gesture.
func (c *Controller) Redo() bool {
	if c.state != StateIdle {
		return false
	}
	snap, ok := c.hist.Redo()
	if !ok {
		return false
	}
	c.model.Restore(snap)
	c.reselect()
	return true
}

// Reset drops all interaction state, for document load or close.
func (c *Controller) Reset() {
	c.abort()
	c.selectedID = ""
}

// reselect drops the selection if the restored model no longer has the
// selected item.
func (c *Controller) reselect() {
	if c.selectedID != "" && c.model.Get(c.selectedID) == nil {
		c.selectedID = ""
	}
}

// abort discards any in-flight gesture without committing.
func (c *Controller) abort() {
	c.state = StateIdle
	c.gest = gesture{}
	c.pendingKind = ""
	c.editID = ""
	c.editDirty = false
	c.editOrig = ""
}

// hitCorner tests the four corner handles of an item.
func hitCorner(it *annotation.Item, x, y float64) (annotation.Corner, bool) {
	corners := []struct {
		c    annotation.Corner
		x, y float64
	}{
		{annotation.CornerNW, it.X, it.Y},
		{annotation.CornerNE, it.X + it.Width, it.Y},
		{annotation.CornerSW, it.X, it.Y + it.Height},
		{annotation.CornerSE, it.X + it.Width, it.Y + it.Height},
	}
	for _, h := range corners {
		if abs(x-h.x) <= HandleTolerance && abs(y-h.y) <= HandleTolerance {
			return h.c, true
		}
	}
	return "", false
}

// hitItem returns the front-most item under the point, or nil.
func hitItem(items []*annotation.Item, x, y float64) *annotation.Item {
	for i := len(items) - 1; i >= 0; i-- {
		it := items[i]
		if x >= it.X && x <= it.X+it.Width && y >= it.Y && y <= it.Y+it.Height {
			return it
		}
	}
	return nil
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
