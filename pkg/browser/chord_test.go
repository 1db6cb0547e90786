package browser

import (
	"testing"

	"github.com/chromedp/cdproto/input"
	"github.com/chromedp/chromedp/kb"
	"github.com/juju/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseChord(t *testing.T) {
	key, mods, err := parseChord("ctrl+r")
	require.NoError(t, err)
	assert.Equal(t, "r", key)
	assert.Equal(t, []input.Modifier{input.ModifierCtrl}, mods)

	key, mods, err = parseChord(" Control + Shift + Enter ")
	require.NoError(t, err)
	assert.Equal(t, kb.Enter, key)
	assert.Equal(t, []input.Modifier{input.ModifierCtrl, input.ModifierShift}, mods)

	key, mods, err = parseChord("esc")
	require.NoError(t, err)
	assert.Equal(t, kb.Escape, key)
	assert.Empty(t, mods)
}

func TestParseChordRejects(t *testing.T) {
	for _, chord := range []string{"hyper+r", "ctrl+", "ctrl+rr"} {
		_, _, err := parseChord(chord)
		assert.True(t, errors.IsNotValid(err), chord)
	}
}

func TestOptionsAdjust(t *testing.T) {
	o := Options{CommandTimeout: 1}
	o.adjust()
	assert.EqualValues(t, 1, o.CommandTimeout)
	assert.Equal(t, 1280, o.WindowWidth)
	assert.NotZero(t, o.PageLoadTimeout)
}

func TestLoginPathOf(t *testing.T) {
	assert.Equal(t, "/login/", loginPathOf("http://localhost:8088/login/"))
	assert.Equal(t, "/", loginPathOf("http://localhost:8088"))
}
