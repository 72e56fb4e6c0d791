package cli

import (
	"github.com/bastiangx/typr-suggest/pkg/suggest"
	"github.com/gdamore/tcell/v2"
)

var namedKeys = map[tcell.Key]string{
	tcell.KeyUp:         "ArrowUp",
	tcell.KeyDown:       "ArrowDown",
	tcell.KeyLeft:       "ArrowLeft",
	tcell.KeyRight:      "ArrowRight",
	tcell.KeyHome:       "Home",
	tcell.KeyEnd:        "End",
	tcell.KeyPgUp:       "PageUp",
	tcell.KeyPgDn:       "PageDown",
	tcell.KeyEnter:      "Enter",
	tcell.KeyEscape:     "Escape",
	tcell.KeyTAB:        "Tab",
	tcell.KeyBacktab:    "Tab",
	tcell.KeyBackspace:  "Backspace",
	tcell.KeyBackspace2: "Backspace",
	tcell.KeyDelete:     "Delete",
	tcell.KeyInsert:     "Insert",
}

// KeyEventFromTcell converts a terminal key to the names a controller
// binds against. ok is false for keys without a name.
func KeyEventFromTcell(ev *tcell.EventKey) (suggest.KeyEvent, bool) {
	mods := ev.Modifiers()
	evt := suggest.KeyEvent{
		Ctrl: mods&tcell.ModCtrl != 0,
		Meta: mods&tcell.ModMeta != 0,
		Alt:  mods&tcell.ModAlt != 0,
	}

	if ev.Key() == tcell.KeyRune {
		evt.Key = string(ev.Rune())
		return evt, true
	}
	if name, ok := namedKeys[ev.Key()]; ok {
		evt.Key = name
		return evt, true
	}
	if ev.Key() >= tcell.KeyCtrlA && ev.Key() <= tcell.KeyCtrlZ {
		evt.Key = string(rune('a' + ev.Key() - tcell.KeyCtrlA))
		evt.Ctrl = true
		return evt, true
	}
	return evt, false
}
