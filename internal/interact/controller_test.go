package interact

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"signflow/internal/annotation"
	"signflow/internal/history"
	"signflow/internal/textmetric"
)

var flatMeasure = textmetric.MeasureFunc(func(text string, style textmetric.Style) (float64, error) {
	return float64(len(text)) * style.Size * 0.6, nil
})

func newRig() (*annotation.Model, *history.Stack, *Controller) {
	m := annotation.NewModel(flatMeasure)
	h := history.New()
	return m, h, NewController(m, h)
}

// place puts one image item on page 0 via the placement flow and
// returns it.
func place(t *testing.T, c *Controller, m *annotation.Model, x, y float64) *annotation.Item {
	t.Helper()
	c.BeginPlacement(annotation.KindUploadedImage, annotation.Options{Content: "img"})
	c.Pointer(0, PointerEvent{X: x, Y: y, Phase: PhaseDown})
	c.Pointer(0, PointerEvent{X: x, Y: y, Phase: PhaseUp})
	it := c.Selected()
	require.NotNil(t, it)
	return it
}

func TestPlacementPlacesOnceAndCommits(t *testing.T) {
	m, h, c := newRig()

	c.BeginPlacement(annotation.KindUploadedImage, annotation.Options{Content: "img"})
	assert.Equal(t, StatePlacementPending, c.State())

	c.Pointer(0, PointerEvent{X: 200, Y: 150, Phase: PhaseDown})
	assert.Equal(t, StateIdle, c.State())
	assert.Equal(t, 1, m.Len())
	assert.Equal(t, 1, h.Len())

	// The arming is consumed; a second click places nothing.
	c.Pointer(0, PointerEvent{X: 300, Y: 300, Phase: PhaseDown})
	c.Pointer(0, PointerEvent{X: 300, Y: 300, Phase: PhaseUp})
	assert.Equal(t, 1, m.Len())
	assert.Equal(t, 1, h.Len())
}

func TestPlacementEscapeCancelsWithoutMutation(t *testing.T) {
	m, h, c := newRig()

	c.BeginPlacement(annotation.KindPlainText, annotation.Options{Content: "x"})
	c.Escape()
	assert.Equal(t, StateIdle, c.State())

	c.Pointer(0, PointerEvent{X: 100, Y: 100, Phase: PhaseDown})
	assert.Equal(t, 0, m.Len())
	assert.Equal(t, 0, h.Len())
}

func TestDragCommitsOncePerGesture(t *testing.T) {
	m, h, c := newRig()
	it := place(t, c, m, 200, 150)
	require.Equal(t, 1, h.Len())

	startX, startY := it.X, it.Y

	c.Pointer(0, PointerEvent{X: 200, Y: 150, Phase: PhaseDown})
	assert.Equal(t, StateDragging, c.State())
	for i := 1; i <= 25; i++ {
		c.Pointer(0, PointerEvent{X: 200 + float64(i), Y: 150 + float64(2*i), Phase: PhaseMove})
	}
	c.Pointer(0, PointerEvent{X: 225, Y: 200, Phase: PhaseUp})

	assert.Equal(t, StateIdle, c.State())
	assert.Equal(t, 2, h.Len(), "25 move frames still make one history entry")
	assert.InDelta(t, startX+25, it.X, 1e-9)
	assert.InDelta(t, startY+50, it.Y, 1e-9)
}

func TestClickWithoutMovementDoesNotCommit(t *testing.T) {
	m, h, c := newRig()
	place(t, c, m, 200, 150)
	require.Equal(t, 1, h.Len())

	c.Pointer(0, PointerEvent{X: 200, Y: 150, Phase: PhaseDown})
	c.Pointer(0, PointerEvent{Phase: PhaseUp})
	assert.Equal(t, 1, h.Len())
}

func TestResizeFromCornerHandle(t *testing.T) {
	m, h, c := newRig()
	it := place(t, c, m, 200, 150)
	x0, y0, w0, h0 := it.X, it.Y, it.Width, it.Height

	// Grab the south-east handle and drag it out.
	c.Pointer(0, PointerEvent{X: x0 + w0, Y: y0 + h0, Phase: PhaseDown})
	assert.Equal(t, StateResizing, c.State())
	c.Pointer(0, PointerEvent{X: x0 + w0 + 10, Y: y0 + h0 + 5, Phase: PhaseMove})
	c.Pointer(0, PointerEvent{X: x0 + w0 + 30, Y: y0 + h0 + 15, Phase: PhaseMove})
	c.Pointer(0, PointerEvent{Phase: PhaseUp})

	assert.InDelta(t, w0+30, it.Width, 1e-9)
	assert.InDelta(t, h0+15, it.Height, 1e-9)
	assert.Equal(t, x0, it.X)
	assert.Equal(t, y0, it.Y)
	assert.Equal(t, 2, h.Len())
}

func TestHandleWinsOverBody(t *testing.T) {
	m, _, c := newRig()
	it := place(t, c, m, 200, 150)

	// The NW corner is inside the body too; the handle must win for
	// the selected item.
	c.Pointer(0, PointerEvent{X: it.X + 2, Y: it.Y + 2, Phase: PhaseDown})
	assert.Equal(t, StateResizing, c.State())
	c.Pointer(0, PointerEvent{Phase: PhaseUp})
}

func TestFrontMostItemIsHit(t *testing.T) {
	m, _, c := newRig()
	a := place(t, c, m, 200, 150)
	b := place(t, c, m, 200, 150) // same spot, placed later, in front

	c.Pointer(0, PointerEvent{X: 200, Y: 150, Phase: PhaseDown})
	c.Pointer(0, PointerEvent{Phase: PhaseUp})
	assert.Equal(t, b.ID, c.SelectedID())
	assert.NotEqual(t, a.ID, c.SelectedID())
}

func TestClickEmptySpaceDeselects(t *testing.T) {
	m, _, c := newRig()
	place(t, c, m, 200, 150)
	require.NotEmpty(t, c.SelectedID())

	c.Pointer(0, PointerEvent{X: 900, Y: 900, Phase: PhaseDown})
	c.Pointer(0, PointerEvent{Phase: PhaseUp})
	assert.Empty(t, c.SelectedID())
}

func TestEditingCoalescesIntoOneCommit(t *testing.T) {
	m, h, c := newRig()
	c.BeginPlacement(annotation.KindPlainText, annotation.Options{Content: "draft", FontSize: 32})
	c.Pointer(0, PointerEvent{X: 300, Y: 200, Phase: PhaseDown})
	it := c.Selected()
	require.NotNil(t, it)
	require.Equal(t, 1, h.Len())

	c.DoubleClick(0, it.X+it.Width/2, it.Y+it.Height/2)
	require.Equal(t, StateEditing, c.State())

	// Keystrokes update the live model but never push history.
	c.EditContent("f")
	c.EditContent("fi")
	c.EditContent("final")
	assert.Equal(t, "final", it.Content)
	assert.Equal(t, 1, h.Len())

	c.Escape()
	assert.Equal(t, StateIdle, c.State())
	assert.Equal(t, 2, h.Len())
	assert.Equal(t, "final", m.Get(it.ID).Content)
}

func TestEditingUnchangedTextCommitsNothing(t *testing.T) {
	m, h, c := newRig()
	c.BeginPlacement(annotation.KindPlainText, annotation.Options{Content: "keep", FontSize: 32})
	c.Pointer(0, PointerEvent{X: 300, Y: 200, Phase: PhaseDown})
	it := c.Selected()
	require.NotNil(t, it)

	c.DoubleClick(0, it.X+1, it.Y+1)
	c.EditContent("kept")
	c.EditContent("keep") // typed back to the original
	c.Escape()
	assert.Equal(t, 1, h.Len())
	assert.Equal(t, "keep", m.Get(it.ID).Content)
}

func TestDoubleClickIgnoresNonText(t *testing.T) {
	m, _, c := newRig()
	it := place(t, c, m, 200, 150)

	c.DoubleClick(0, it.X+1, it.Y+1)
	assert.Equal(t, StateIdle, c.State())
}

func TestDeleteAndDuplicateCommitOnce(t *testing.T) {
	m, h, c := newRig()
	it := place(t, c, m, 200, 150)
	require.Equal(t, 1, h.Len())

	c.DuplicateSelected()
	assert.Equal(t, 2, m.Len())
	assert.Equal(t, 2, h.Len())
	assert.NotEqual(t, it.ID, c.SelectedID())

	c.DeleteSelected()
	assert.Equal(t, 1, m.Len())
	assert.Equal(t, 3, h.Len())
	assert.Empty(t, c.SelectedID())
}

func TestUndoRedoThroughController(t *testing.T) {
	m, _, c := newRig()
	place(t, c, m, 200, 150)
	place(t, c, m, 400, 300)
	require.Equal(t, 2, m.Len())

	require.True(t, c.Undo())
	assert.Equal(t, 1, m.Len())

	require.True(t, c.Undo())
	assert.Equal(t, 0, m.Len())
	assert.Empty(t, c.SelectedID(), "selection cleared when its item is undone away")

	require.True(t, c.Redo())
	require.True(t, c.Redo())
	assert.Equal(t, 2, m.Len())
	assert.False(t, c.Redo())
}

func TestResizeDuringGestureDoesNotCompound(t *testing.T) {
	m, _, c := newRig()
	it := place(t, c, m, 200, 150)
	x0, y0, w0, h0 := it.X, it.Y, it.Width, it.Height

	c.Pointer(0, PointerEvent{X: x0 + w0, Y: y0 + h0, Phase: PhaseDown})
	// The same pointer position repeated must not grow the box further.
	for i := 0; i < 10; i++ {
		c.Pointer(0, PointerEvent{X: x0 + w0 + 20, Y: y0 + h0 + 20, Phase: PhaseMove})
	}
	c.Pointer(0, PointerEvent{Phase: PhaseUp})

	assert.InDelta(t, w0+20, it.Width, 1e-9)
	assert.InDelta(t, h0+20, it.Height, 1e-9)
	_ = m
}
