package suggest

// KeyEvent is a raw key press as seen by the host. Key uses DOM style
// names: a single character for printable input, otherwise names such as
// "Backspace", "Enter" or "ArrowDown".
type KeyEvent struct {
	Key  string
	Ctrl bool
	Meta bool
	Alt  bool
}

// State is a new buffer value with caret/selection bounds, counted in runes.
// SelectionEnd equals SelectionStart when nothing is selected.
type State struct {
	Value          string
	SelectionStart int
	SelectionEnd   int
}

// Host is the editing surface a controller is attached to.
type Host interface {
	// PushState applies a state produced outside of HandleKey.
	PushState(State)
	// Schedule runs fn on the goroutine that delivers key events.
	Schedule(fn func())
}

// ErrorReporter is implemented by hosts that want loader failures.
type ErrorReporter interface {
	ReportError(err error)
}

// Extension is what a host drives on every key event.
type Extension interface {
	Init(h Host)
	Cleanup(h Host)
	// HandleKey returns the state to apply, or false to leave the buffer
	// untouched and let the host perform its default editing.
	HandleKey(prefix, selection, postfix string, evt KeyEvent) (State, bool)
}
