package history

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"signflow/internal/annotation"
	"signflow/internal/textmetric"
)

var flatMeasure = textmetric.MeasureFunc(func(text string, style textmetric.Style) (float64, error) {
	return float64(len(text)) * 10, nil
})

// commitAdd places one item and commits the resulting snapshot.
func commitAdd(t *testing.T, m *annotation.Model, s *Stack, content string) {
	t.Helper()
	_, err := m.Add(annotation.KindPlainText, 0, 100, 100, annotation.Options{Content: content})
	require.NoError(t, err)
	s.Commit(m.Snapshot())
}

func TestUndoRedoWalk(t *testing.T) {
	m := annotation.NewModel(flatMeasure)
	s := New()

	assert.False(t, s.CanUndo())
	assert.False(t, s.CanRedo())

	commitAdd(t, m, s, "a")
	commitAdd(t, m, s, "b")
	commitAdd(t, m, s, "c")
	assert.Equal(t, 3, m.Len())

	snap, ok := s.Undo()
	require.True(t, ok)
	m.Restore(snap)
	assert.Equal(t, 2, m.Len())
	assert.True(t, s.CanRedo())

	snap, ok = s.Redo()
	require.True(t, ok)
	m.Restore(snap)
	assert.Equal(t, 3, m.Len())
	assert.False(t, s.CanRedo())
}

func TestUndoPastFirstCommitIsEmpty(t *testing.T) {
	m := annotation.NewModel(flatMeasure)
	s := New()

	commitAdd(t, m, s, "only")

	snap, ok := s.Undo()
	require.True(t, ok)
	m.Restore(snap)
	assert.Equal(t, 0, m.Len())
	assert.False(t, s.CanUndo())
	assert.True(t, s.CanRedo())

	_, ok = s.Undo()
	assert.False(t, ok)
}

func TestUndoThenRedoRestoresIdenticalState(t *testing.T) {
	m := annotation.NewModel(flatMeasure)
	s := New()

	commitAdd(t, m, s, "a")
	it, err := m.Add(annotation.KindSymbol, 0, 50, 50, annotation.Options{Content: "*"})
	require.NoError(t, err)
	require.NoError(t, m.Rotate(it.ID, 45))
	s.Commit(m.Snapshot())

	before := m.Snapshot()

	snap, _ := s.Undo()
	m.Restore(snap)
	snap, _ = s.Redo()
	m.Restore(snap)

	assert.Equal(t, before, m.Snapshot())
}

func TestCommitTruncatesRedoTail(t *testing.T) {
	m := annotation.NewModel(flatMeasure)
	s := New()

	commitAdd(t, m, s, "a")
	commitAdd(t, m, s, "b")

	snap, _ := s.Undo()
	m.Restore(snap)
	require.True(t, s.CanRedo())

	// A fresh commit after undoing forks the timeline.
	commitAdd(t, m, s, "c")
	assert.False(t, s.CanRedo())
	assert.Equal(t, 2, s.Len())

	snap, ok := s.Undo()
	require.True(t, ok)
	m.Restore(snap)
	items := m.ItemsOnPage(0)
	require.Len(t, items, 1)
	assert.Equal(t, "a", items[0].Content)
}

func TestSnapshotsAreIsolatedFromLaterEdits(t *testing.T) {
	m := annotation.NewModel(flatMeasure)
	s := New()

	it, err := m.Add(annotation.KindPlainText, 0, 100, 100, annotation.Options{Content: "x"})
	require.NoError(t, err)
	s.Commit(m.Snapshot())

	require.NoError(t, m.Move(it.ID, 300, 300))
	s.Commit(m.Snapshot())

	snap, _ := s.Undo()
	m.Restore(snap)
	got := m.Get(it.ID)
	require.NotNil(t, got)
	assert.InDelta(t, it.X-300, got.X, 1e-9)
}

func TestReset(t *testing.T) {
	m := annotation.NewModel(flatMeasure)
	s := New()
	commitAdd(t, m, s, "a")

	s.Reset()
	assert.False(t, s.CanUndo())
	assert.False(t, s.CanRedo())
	assert.Equal(t, 0, s.Len())
}
