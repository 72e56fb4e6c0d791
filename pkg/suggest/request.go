package suggest

import (
	"context"
	"sync/atomic"
)

// Loader produces candidates for a trigger token. Implementations should
// stop work when ctx is cancelled, but the controller does not rely on it.
type Loader interface {
	Load(ctx context.Context, token string) Result
}

// LoaderFunc adapts a function to the Loader interface.
type LoaderFunc func(ctx context.Context, token string) Result

// Load calls f(ctx, token).
func (f LoaderFunc) Load(ctx context.Context, token string) Result {
	return f(ctx, token)
}

// Sync wraps a blocking lookup that answers within the key event.
func Sync(fn func(ctx context.Context, token string) ([]string, error)) LoaderFunc {
	return func(ctx context.Context, token string) Result {
		candidates, err := fn(ctx, token)
		if err != nil {
			return Failed(err)
		}
		return Ready(candidates)
	}
}

// Async runs the lookup on its own goroutine and returns a pending Result.
func Async(fn func(ctx context.Context, token string) ([]string, error)) LoaderFunc {
	return func(ctx context.Context, token string) Result {
		ch := make(chan Outcome, 1)
		go func() {
			candidates, err := fn(ctx, token)
			ch <- Outcome{Candidates: candidates, Err: err}
		}()
		return Pending(ch)
	}
}

// Outcome is the settled value of a load.
type Outcome struct {
	Candidates []string
	Err        error
}

// Result is either a settled Outcome or a channel that will deliver one.
type Result struct {
	outcome Outcome
	pending <-chan Outcome
}

// Ready returns a settled result holding candidates.
func Ready(candidates []string) Result {
	return Result{outcome: Outcome{Candidates: candidates}}
}

// Failed returns a settled result holding err.
func Failed(err error) Result {
	return Result{outcome: Outcome{Err: err}}
}

// Pending returns a result settled by the first value received on ch.
func Pending(ch <-chan Outcome) Result {
	return Result{pending: ch}
}

// IsPending reports whether the outcome is not yet known.
func (r Result) IsPending() bool {
	return r.pending != nil
}

// Outcome returns the settled value. It is the zero Outcome for a pending
// result.
func (r Result) Outcome() Outcome {
	return r.outcome
}

// Wait blocks until the outcome is known or ctx is done. ok is false when
// ctx ended first. A channel closed without a value yields an empty Outcome.
func (r Result) Wait(ctx context.Context) (Outcome, bool) {
	if r.pending == nil {
		return r.outcome, true
	}
	select {
	case out := <-r.pending:
		return out, true
	case <-ctx.Done():
		return Outcome{}, false
	}
}

// Request is a single load attempt for one trigger token.
type Request struct {
	load    Loader
	token   string
	ctx     context.Context
	cancel  context.CancelFunc
	aborted atomic.Bool
}

// NewRequest prepares a load of token. The loader is not called until
// Result.
func NewRequest(parent context.Context, load Loader, token string) *Request {
	ctx, cancel := context.WithCancel(parent)
	return &Request{
		load:   load,
		token:  token,
		ctx:    ctx,
		cancel: cancel,
	}
}

// Token returns the trigger token this request loads.
func (r *Request) Token() string {
	return r.token
}

// Context is cancelled on Abort or once the request is released.
func (r *Request) Context() context.Context {
	return r.ctx
}

// Result invokes the loader.
func (r *Request) Result() Result {
	return r.load.Load(r.ctx, r.token)
}

// Abort marks the request aborted and cancels its context.
func (r *Request) Abort() {
	r.aborted.Store(true)
	r.cancel()
}

// IsAborted reports whether Abort was called, whatever the loader did.
func (r *Request) IsAborted() bool {
	return r.aborted.Load()
}

func (r *Request) release() {
	r.cancel()
}
