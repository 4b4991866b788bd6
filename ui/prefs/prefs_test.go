package prefs

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoundTrip(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	p := Load()
	p.SetString(KeySessionPath, "/work/contract.sgfproj")
	p.SetString(KeyLastDocumentDir, "/work")
	p.SetFloat(KeyZoom, 1.5)
	p.SetBool("dark_mode", true)
	require.NoError(t, p.Save())

	q := Load()
	assert.Equal(t, "/work/contract.sgfproj", q.String(KeySessionPath, ""))
	assert.Equal(t, "/work", q.String(KeyLastDocumentDir, ""))
	assert.InDelta(t, 1.5, q.Float(KeyZoom, 0), 1e-9)
	assert.True(t, q.Bool("dark_mode", false))
}

func TestFallbacks(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	p := Load()
	assert.Equal(t, "", p.String(KeySessionPath, ""))
	assert.Equal(t, "MM/DD/YYYY", p.String(KeyDateFormat, "MM/DD/YYYY"))
	assert.InDelta(t, 1.0, p.Float(KeyZoom, 1.0), 1e-9)
	assert.False(t, p.Bool("dark_mode", false))
}
