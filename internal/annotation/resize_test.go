package annotation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResizeSoutheastKeepsOrigin(t *testing.T) {
	m := newTestModel()
	it, _ := m.Add(KindUploadedImage, 0, 100, 100, Options{Content: "img"})
	snap := SnapshotOf(it)

	require.NoError(t, m.ResizeCorner(it.ID, CornerSE, 30, 10, snap))

	assert.Equal(t, snap.X, it.X)
	assert.Equal(t, snap.Y, it.Y)
	assert.InDelta(t, snap.W+30, it.Width, 1e-9)
	assert.InDelta(t, snap.H+10, it.Height, 1e-9)
}

func TestResizeNorthwestKeepsBottomRight(t *testing.T) {
	m := newTestModel()
	it, _ := m.Add(KindUploadedImage, 0, 100, 100, Options{Content: "img"})
	snap := SnapshotOf(it)
	right, bottom := snap.X+snap.W, snap.Y+snap.H

	require.NoError(t, m.ResizeCorner(it.ID, CornerNW, 12, 8, snap))

	assert.InDelta(t, right, it.X+it.Width, 1e-9)
	assert.InDelta(t, bottom, it.Y+it.Height, 1e-9)
	assert.InDelta(t, snap.W-12, it.Width, 1e-9)
	assert.InDelta(t, snap.H-8, it.Height, 1e-9)
}

func TestResizeDoesNotCompound(t *testing.T) {
	m := newTestModel()
	it, _ := m.Add(KindUploadedImage, 0, 100, 100, Options{Content: "img"})
	snap := SnapshotOf(it)

	// Replaying the same cumulative delta many times must land in the
	// same place as applying it once.
	for i := 0; i < 10; i++ {
		require.NoError(t, m.ResizeCorner(it.ID, CornerSE, 40, 25, snap))
	}
	assert.InDelta(t, snap.W+40, it.Width, 1e-9)
	assert.InDelta(t, snap.H+25, it.Height, 1e-9)
}

func TestResizeMinimumSize(t *testing.T) {
	m := newTestModel()
	it, _ := m.Add(KindUploadedImage, 0, 100, 100, Options{Content: "img"})
	snap := SnapshotOf(it)

	require.NoError(t, m.ResizeCorner(it.ID, CornerSE, -1000, -1000, snap))
	assert.Equal(t, MinSize, it.Width)
	assert.Equal(t, MinSize, it.Height)
	assert.Equal(t, snap.X, it.X)
	assert.Equal(t, snap.Y, it.Y)
}

func TestResizeMinimumSizeWestAnchor(t *testing.T) {
	m := newTestModel()
	it, _ := m.Add(KindUploadedImage, 0, 100, 100, Options{Content: "img"})
	snap := SnapshotOf(it)
	right := snap.X + snap.W

	// Collapsing past the minimum from the west still pins the east edge.
	require.NoError(t, m.ResizeCorner(it.ID, CornerNW, 1000, 1000, snap))
	assert.Equal(t, MinSize, it.Width)
	assert.InDelta(t, right, it.X+it.Width, 1e-9)
}

func TestResizeTextScalesFont(t *testing.T) {
	m := newTestModel()
	it, _ := m.Add(KindPlainText, 0, 100, 100, Options{Content: "hello", FontSize: 32})
	snap := SnapshotOf(it)

	// Doubling the height doubles the font, and width follows the
	// measured text at the new size rather than the drag itself.
	require.NoError(t, m.ResizeCorner(it.ID, CornerSE, 0, snap.H, snap))
	assert.InDelta(t, 64, it.FontSize, 1e-9)
	assert.InDelta(t, textBoxWidth("hello", 64), it.Width, 1e-9)
	assert.InDelta(t, 96, it.Height, 1e-9)
}

func TestResizeTextFontClamps(t *testing.T) {
	m := newTestModel()
	it, _ := m.Add(KindPlainText, 0, 100, 100, Options{Content: "x", FontSize: 32})
	snap := SnapshotOf(it)

	require.NoError(t, m.ResizeCorner(it.ID, CornerSE, 0, -snap.H+MinSize, snap))
	assert.GreaterOrEqual(t, it.FontSize, MinFontSize)

	require.NoError(t, m.ResizeCorner(it.ID, CornerSE, 0, snap.H*100, snap))
	assert.LessOrEqual(t, it.FontSize, MaxFontSize)
}

func TestResizeUnknownItem(t *testing.T) {
	m := newTestModel()
	err := m.ResizeCorner("sig-99", CornerSE, 1, 1, ResizeSnapshot{W: 50, H: 50})
	assert.Error(t, err)
}
