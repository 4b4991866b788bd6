package textmetric

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLibraryMeasureDeterministic(t *testing.T) {
	lib, err := NewLibrary()
	require.NoError(t, err)

	style := Style{Family: DefaultFamily, Size: 32}
	w1, err := lib.Measure("Jane Doe", style)
	require.NoError(t, err)
	w2, err := lib.Measure("Jane Doe", style)
	require.NoError(t, err)

	assert.Equal(t, w1, w2)
	assert.Greater(t, w1, 0.0)
}

func TestLibraryMeasureScalesWithSize(t *testing.T) {
	lib, err := NewLibrary()
	require.NoError(t, err)

	small, err := lib.Measure("Signature", Style{Size: 16})
	require.NoError(t, err)
	large, err := lib.Measure("Signature", Style{Size: 32})
	require.NoError(t, err)

	assert.Greater(t, large, small)
}

func TestLibraryUnknownFamilyFallsBack(t *testing.T) {
	lib, err := NewLibrary()
	require.NoError(t, err)

	// An unregistered family resolves to the default family rather than
	// failing, so creation of styled items never depends on font files.
	w, err := lib.Measure("hello", Style{Family: "Great Vibes", Size: 24})
	require.NoError(t, err)
	assert.Greater(t, w, 0.0)
}

func TestBoxWidthPadding(t *testing.T) {
	m := MeasureFunc(func(text string, style Style) (float64, error) {
		return 100, nil
	})
	assert.InDelta(t, 100+32*WidthPad, BoxWidth(m, "x", Style{Size: 32}), 1e-9)
}

func TestBoxWidthFallback(t *testing.T) {
	m := MeasureFunc(func(text string, style Style) (float64, error) {
		return 0, errors.New("no backend")
	})
	assert.Equal(t, FallbackWidth, BoxWidth(m, "x", Style{Size: 32}))
}

func TestBoxHeight(t *testing.T) {
	assert.InDelta(t, 48.0, BoxHeight(32), 1e-9)
}
