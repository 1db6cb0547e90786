package browser

import (
	"strings"

	"github.com/chromedp/cdproto/input"
	"github.com/chromedp/chromedp/kb"
	"github.com/juju/errors"
)

var namedKeys = map[string]string{
	"enter":     kb.Enter,
	"backspace": kb.Backspace,
	"escape":    kb.Escape,
	"esc":       kb.Escape,
	"tab":       kb.Tab,
}

// parseChord splits a chord like "ctrl+shift+enter" into its key and
// modifiers.
func parseChord(chord string) (string, []input.Modifier, error) {
	parts := strings.Split(strings.ToLower(strings.TrimSpace(chord)), "+")
	var mods []input.Modifier
	for _, p := range parts[:len(parts)-1] {
		switch strings.TrimSpace(p) {
		case "ctrl", "control":
			mods = append(mods, input.ModifierCtrl)
		case "shift":
			mods = append(mods, input.ModifierShift)
		case "alt":
			mods = append(mods, input.ModifierAlt)
		case "meta", "cmd":
			mods = append(mods, input.ModifierMeta)
		default:
			return "", nil, errors.NotValidf("modifier %q in chord %q", p, chord)
		}
	}
	key := strings.TrimSpace(parts[len(parts)-1])
	if named, ok := namedKeys[key]; ok {
		return named, mods, nil
	}
	if len([]rune(key)) != 1 {
		return "", nil, errors.NotValidf("key %q in chord %q", key, chord)
	}
	return key, mods, nil
}
