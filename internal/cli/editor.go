// Package cli runs a single-line terminal editor with inline suggestions,
// for trying out dictionaries and key bindings by hand.
package cli

import (
	"fmt"
	"sync"
	"time"

	"github.com/bastiangx/typr-suggest/pkg/suggest"
	"github.com/charmbracelet/log"
	"github.com/gdamore/tcell/v2"
	"github.com/mattn/go-runewidth"
)

const prompt = "> "

// retryInterval paces reposting a scheduled task while the event queue is full.
const retryInterval = 10 * time.Millisecond

// candidateLister is implemented by extensions that expose their list.
type candidateLister interface {
	Candidates() ([]string, int)
}

// Editor hosts an extension in a tcell screen. Key events, pushes and
// scheduled functions are all handled on the goroutine running Run.
type Editor struct {
	screen   tcell.Screen
	ext      suggest.Extension
	buf      Buffer
	history  []string
	status   string
	requests int

	done     chan struct{}
	stopOnce sync.Once
}

var (
	_ suggest.Host          = (*Editor)(nil)
	_ suggest.ErrorReporter = (*Editor)(nil)
)

// NewEditor creates an editor drawing on an initialized screen.
func NewEditor(screen tcell.Screen, ext suggest.Extension) *Editor {
	return &Editor{screen: screen, ext: ext, done: make(chan struct{})}
}

// Run opens the terminal and edits until Ctrl+C or Ctrl+D.
func Run(ext suggest.Extension) error {
	screen, err := tcell.NewScreen()
	if err != nil {
		return err
	}
	if err := screen.Init(); err != nil {
		return err
	}
	defer screen.Fini()

	return NewEditor(screen, ext).Run()
}

// Run attaches the extension and processes events until the user quits.
// Tasks scheduled after Run returns are dropped.
func (e *Editor) Run() error {
	defer e.stopOnce.Do(func() { close(e.done) })
	e.ext.Init(e)
	defer e.ext.Cleanup(e)

	for {
		e.draw()
		ev := e.screen.PollEvent()
		if ev == nil {
			return nil
		}
		if !e.handleEvent(ev) {
			log.Debugf("Editor handled %d keys", e.requests)
			return nil
		}
	}
}

// PushState implements suggest.Host.
func (e *Editor) PushState(state suggest.State) {
	e.buf.Apply(state)
}

// Schedule implements suggest.Host by posting fn as an interrupt event.
// It never blocks: a full queue is retried in the background until the
// editor stops.
func (e *Editor) Schedule(fn func()) {
	select {
	case <-e.done:
		log.Debug("Editor stopped, dropping scheduled task")
		return
	default:
	}
	if err := e.screen.PostEvent(tcell.NewEventInterrupt(fn)); err != nil {
		go e.repost(fn)
	}
}

func (e *Editor) repost(fn func()) {
	ticker := time.NewTicker(retryInterval)
	defer ticker.Stop()
	for {
		select {
		case <-e.done:
			log.Debug("Editor stopped, dropping scheduled task")
			return
		case <-ticker.C:
			if e.screen.PostEvent(tcell.NewEventInterrupt(fn)) == nil {
				return
			}
		}
	}
}

// ReportError implements suggest.ErrorReporter.
func (e *Editor) ReportError(err error) {
	e.status = err.Error()
}

func (e *Editor) handleEvent(ev tcell.Event) bool {
	switch ev := ev.(type) {
	case *tcell.EventResize:
		e.screen.Sync()
	case *tcell.EventKey:
		return e.handleKey(ev)
	case *tcell.EventInterrupt:
		if fn, ok := ev.Data().(func()); ok {
			fn()
		}
	}
	return true
}

func (e *Editor) handleKey(ev *tcell.EventKey) bool {
	if ev.Key() == tcell.KeyCtrlC || ev.Key() == tcell.KeyCtrlD {
		return false
	}
	evt, ok := KeyEventFromTcell(ev)
	if !ok {
		return true
	}
	e.requests++
	e.status = ""

	prefix, selection, postfix := e.buf.Segments()
	if state, handled := e.ext.HandleKey(prefix, selection, postfix, evt); handled {
		e.buf.Apply(state)
		return true
	}
	e.edit(evt)
	return true
}

// edit performs the default editing for keys the extension left alone.
func (e *Editor) edit(evt suggest.KeyEvent) {
	if evt.Ctrl || evt.Meta || evt.Alt {
		return
	}
	switch evt.Key {
	case "Backspace":
		e.buf.Backspace()
	case "Delete":
		e.buf.Delete()
	case "ArrowLeft":
		e.buf.Move(-1)
	case "ArrowRight":
		e.buf.Move(1)
	case "Home":
		e.buf.Home()
	case "End":
		e.buf.End()
	case "Enter":
		e.history = append(e.history, e.buf.Value())
		e.buf.Reset()
	default:
		if len([]rune(evt.Key)) == 1 {
			e.buf.Insert(evt.Key)
		}
	}
}

func (e *Editor) draw() {
	s := e.screen
	s.Clear()
	w, h := s.Size()
	if w <= 0 || h <= 0 {
		s.Show()
		return
	}

	dim := tcell.StyleDefault.Foreground(tcell.ColorGray)
	drawText(s, 0, 0, "typr-suggest (Ctrl+C to quit)", dim)

	// Keep the prompt on the last rows the history leaves free.
	row := 1
	history := e.history
	if over := len(history) - (h - 4); over > 0 {
		history = history[over:]
	}
	for _, line := range history {
		drawText(s, 0, row, prompt+line, tcell.StyleDefault)
		row++
	}

	e.drawPrompt(row)
	e.drawStatus(row + 1)
	s.Show()
}

func (e *Editor) drawPrompt(row int) {
	s := e.screen
	x := drawText(s, 0, row, prompt, tcell.StyleDefault)
	start, end := e.buf.Selection()
	cursor := -1
	for i, r := range []rune(e.buf.Value()) {
		if i == start {
			cursor = x
		}
		st := tcell.StyleDefault
		if i >= start && i < end {
			st = st.Reverse(true)
		}
		s.SetContent(x, row, r, nil, st)
		x += max(runewidth.RuneWidth(r), 1)
	}
	if cursor < 0 {
		cursor = x
	}
	if start == end {
		s.ShowCursor(cursor, row)
	} else {
		s.HideCursor()
	}
}

func (e *Editor) drawStatus(row int) {
	style := tcell.StyleDefault.Foreground(tcell.ColorGray)
	if e.status != "" {
		drawText(e.screen, 0, row, e.status, style.Foreground(tcell.ColorRed))
		return
	}
	lister, ok := e.ext.(candidateLister)
	if !ok {
		return
	}
	candidates, highlighted := lister.Candidates()
	x := 0
	for i, c := range candidates {
		st := style
		if i == highlighted {
			st = tcell.StyleDefault.Bold(true)
		}
		x = drawText(e.screen, x, row, fmt.Sprintf(" %s ", c), st)
	}
}

// drawText writes text from x and returns the column after it.
func drawText(s tcell.Screen, x, y int, text string, st tcell.Style) int {
	for _, r := range text {
		w := runewidth.RuneWidth(r)
		if w <= 0 {
			continue
		}
		s.SetContent(x, y, r, nil, st)
		x += w
	}
	return x
}
