package suggest

import (
	"context"
	"unicode/utf8"

	"github.com/charmbracelet/log"
)

// Phase is the externally visible controller state.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseLoading
	PhaseActive
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "Idle"
	case PhaseLoading:
		return "Loading"
	case PhaseActive:
		return "Active"
	default:
		return "Unknown"
	}
}

type phase interface {
	phase() Phase
}

type idle struct{}

type loading struct {
	req *Request
}

type active struct {
	candidates  []string
	highlighted int
}

func (idle) phase() Phase    { return PhaseIdle }
func (loading) phase() Phase { return PhaseLoading }
func (active) phase() Phase  { return PhaseActive }

// Controller turns key events into inline completion states.
//
// A Controller is not safe for concurrent use. Every method, including the
// continuations it hands to Host.Schedule, must run on the host's event
// goroutine.
type Controller struct {
	opts   Options
	loader Loader
	host   Host
	ctx    context.Context
	stop   context.CancelFunc
	state  phase
}

var _ Extension = (*Controller)(nil)

// New creates a detached controller. Call Init before forwarding keys.
func New(loader Loader, opts ...Option) (*Controller, error) {
	if loader == nil {
		return nil, ErrNoLoader
	}
	options, err := NormalizeOptions(opts...)
	if err != nil {
		return nil, err
	}
	return &Controller{
		opts:   options,
		loader: loader,
		ctx:    context.Background(),
		stop:   func() {},
		state:  idle{},
	}, nil
}

// Options returns the normalized configuration.
func (c *Controller) Options() Options {
	return c.opts
}

// Init attaches the controller to h.
func (c *Controller) Init(h Host) {
	c.reset()
	c.host = h
	c.ctx, c.stop = context.WithCancel(context.Background())
}

// Cleanup detaches the controller. Loads still in flight are aborted and
// never reach the host.
func (c *Controller) Cleanup(Host) {
	c.reset()
	c.host = nil
	c.stop()
}

// Phase reports whether the controller is idle, loading or showing a
// suggestion.
func (c *Controller) Phase() Phase {
	return c.state.phase()
}

// Candidates returns the current list and the highlighted index, or nil
// and -1 outside of the active phase.
func (c *Controller) Candidates() ([]string, int) {
	if a, ok := c.state.(active); ok {
		return append([]string(nil), a.candidates...), a.highlighted
	}
	return nil, -1
}

// HandleKey implements Extension.
func (c *Controller) HandleKey(prefix, selection, postfix string, evt KeyEvent) (State, bool) {
	if c.host == nil {
		return State{}, false
	}

	if l, ok := c.state.(loading); ok {
		l.req.Abort()
		c.state = idle{}
	}

	if evt.Ctrl || evt.Meta || evt.Alt {
		return State{}, false
	}

	if edited, ok := editedPrefix(prefix, evt.Key); ok {
		if token, rest, ok := c.match(edited); ok {
			return c.load(token, rest, postfix)
		}
	}

	a, ok := c.state.(active)
	if !ok {
		return State{}, false
	}

	switch {
	case c.opts.Is(ActionCancel, evt.Key):
		c.state = idle{}
		return caretAt(prefix+postfix, runeLen(prefix)), true
	case c.opts.Is(ActionAccept, evt.Key):
		c.state = idle{}
		return caretAt(prefix+selection+postfix, runeLen(prefix)+runeLen(selection)), true
	}

	token, _, matched := c.match(prefix + selection)
	index := indexOf(a.candidates, token)
	if !matched || index < 0 {
		c.state = idle{}
		return State{}, false
	}

	delta := 0
	switch {
	case c.opts.Is(ActionPrev, evt.Key):
		delta = -1
	case c.opts.Is(ActionNext, evt.Key):
		delta = 1
	}
	if delta == 0 {
		return State{}, false
	}

	n := len(a.candidates)
	next := (n + index + delta) % n
	tail := dropRunes(a.candidates[next], runeLen(token)-runeLen(selection))
	c.state = active{candidates: a.candidates, highlighted: next}

	start := runeLen(prefix)
	return State{
		Value:          prefix + tail + postfix,
		SelectionStart: start,
		SelectionEnd:   start + runeLen(tail),
	}, true
}

func (c *Controller) load(token, rest, postfix string) (State, bool) {
	req := NewRequest(c.ctx, c.loader, token)
	c.state = loading{req: req}

	res := req.Result()
	if req.IsAborted() || c.host == nil {
		c.release(req)
		return State{}, false
	}

	if !res.IsPending() {
		c.release(req)
		return c.settle(req, res.Outcome(), rest, postfix)
	}

	go c.await(c.host, req, res, rest, postfix)
	return State{}, false
}

func (c *Controller) await(h Host, req *Request, res Result, rest, postfix string) {
	out, ok := res.Wait(req.Context())
	if !ok {
		return
	}
	h.Schedule(func() {
		c.complete(req, out, rest, postfix)
	})
}

func (c *Controller) complete(req *Request, out Outcome, rest, postfix string) {
	c.release(req)
	if c.host == nil || req.IsAborted() {
		log.Debug("discarding superseded suggestions", "token", req.Token())
		return
	}
	if state, ok := c.settle(req, out, rest, postfix); ok {
		c.host.PushState(state)
	}
}

func (c *Controller) settle(req *Request, out Outcome, rest, postfix string) (State, bool) {
	if out.Err != nil {
		c.state = idle{}
		if !IsCancellation(out.Err) {
			c.report(&LoadError{Token: req.Token(), Err: out.Err})
		}
		return State{}, false
	}
	return c.process(out.Candidates, req.Token(), rest, postfix)
}

func (c *Controller) process(candidates []string, token, rest, postfix string) (State, bool) {
	if len(candidates) == 0 {
		c.state = idle{}
		return State{}, false
	}

	c.state = active{candidates: append([]string(nil), candidates...)}

	first := candidates[0]
	base := runeLen(rest)
	end := base + runeLen(first)
	return State{
		Value:          rest + first + postfix,
		SelectionStart: min(base+runeLen(token), end),
		SelectionEnd:   end,
	}, true
}

func (c *Controller) report(err error) {
	if r, ok := c.host.(ErrorReporter); ok {
		r.ReportError(err)
		return
	}
	if c.opts.OnError != nil {
		c.opts.OnError(err)
		return
	}
	log.Error("suggestion load failed", "err", err)
}

// release drops req if it is still the outstanding request.
func (c *Controller) release(req *Request) {
	if l, ok := c.state.(loading); ok && l.req == req {
		c.state = idle{}
	}
	req.release()
}

func (c *Controller) reset() {
	if l, ok := c.state.(loading); ok {
		l.req.Abort()
	}
	c.state = idle{}
}

// match runs the anchored pattern over s and splits it into the trigger
// token and the text before it.
func (c *Controller) match(s string) (token, rest string, ok bool) {
	loc := c.opts.Pattern.FindStringIndex(s)
	if loc == nil {
		return "", "", false
	}
	return s[loc[0]:loc[1]], s[:loc[0]], true
}

// editedPrefix applies a printable key or Backspace to prefix.
func editedPrefix(prefix, key string) (string, bool) {
	switch {
	case key == "Backspace":
		_, size := utf8.DecodeLastRuneInString(prefix)
		return prefix[:len(prefix)-size], true
	case utf8.RuneCountInString(key) == 1:
		return prefix + key, true
	default:
		return "", false
	}
}

func caretAt(value string, pos int) State {
	return State{Value: value, SelectionStart: pos, SelectionEnd: pos}
}

func indexOf(list []string, s string) int {
	for i, v := range list {
		if v == s {
			return i
		}
	}
	return -1
}

func runeLen(s string) int {
	return utf8.RuneCountInString(s)
}

// dropRunes removes the first n runes of s.
func dropRunes(s string, n int) string {
	for ; n > 0 && s != ""; n-- {
		_, size := utf8.DecodeRuneInString(s)
		s = s[size:]
	}
	return s
}
