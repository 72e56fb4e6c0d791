package server

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/bastiangx/typr-suggest/internal/logger"
	"github.com/bastiangx/typr-suggest/pkg/suggest"
	"github.com/charmbracelet/log"
	"github.com/vmihailenco/msgpack/v5"
)

const (
	codeBadRequest = 400
	codeLoadFailed = 500
)

// Server hosts an extension over a msgpack stream. All extension calls,
// including scheduled continuations, run on the goroutine inside Start.
type Server struct {
	ext      suggest.Extension
	reader   io.Reader
	out      *bufio.Writer
	enc      *msgpack.Encoder
	logger   *log.Logger
	tasks    chan func()
	done     chan struct{}
	attached bool
	requests int
}

var (
	_ suggest.Host          = (*Server)(nil)
	_ suggest.ErrorReporter = (*Server)(nil)
)

// NewServer creates a server using stdin/stdout for IPC
func NewServer(ext suggest.Extension) *Server {
	return NewServerWithIO(ext, os.Stdin, os.Stdout)
}

// NewServerWithIO creates a server reading requests from r and writing
// responses to w.
func NewServerWithIO(ext suggest.Extension, r io.Reader, w io.Writer) *Server {
	out := bufio.NewWriter(w)
	return &Server{
		ext:    ext,
		reader: bufio.NewReader(r),
		out:    out,
		enc:    msgpack.NewEncoder(out),
		logger: logger.New("server"),
		tasks:  make(chan func(), 16),
		done:   make(chan struct{}),
	}
}

// Start attaches the extension and serves requests until the input ends or
// ctx is cancelled. A Server can only be started once.
func (s *Server) Start(ctx context.Context) error {
	defer close(s.done)
	s.logger.Debug("Starting Server.")

	requests := make(chan msgpack.RawMessage)
	readErr := make(chan error, 1)
	go s.read(requests, readErr)

	s.attach()
	defer s.detach()

	s.send(StatusResponse{Status: "ready"})

	for {
		select {
		case raw := <-requests:
			s.handleRequest(raw)
		case fn := <-s.tasks:
			fn()
		case err := <-readErr:
			s.logger.Debugf("Served %d requests", s.requests)
			if errors.Is(err, io.EOF) {
				return nil
			}
			return fmt.Errorf("reading requests: %w", err)
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// read decodes one raw msgpack value per request so a malformed request
// does not desync the stream.
func (s *Server) read(requests chan<- msgpack.RawMessage, readErr chan<- error) {
	dec := msgpack.NewDecoder(s.reader)
	for {
		var raw msgpack.RawMessage
		if err := dec.Decode(&raw); err != nil {
			readErr <- err
			return
		}
		select {
		case requests <- raw:
		case <-s.done:
			return
		}
	}
}

// PushState implements suggest.Host.
func (s *Server) PushState(state suggest.State) {
	s.send(PushMessage{
		Type:           "push",
		Value:          state.Value,
		SelectionStart: state.SelectionStart,
		SelectionEnd:   state.SelectionEnd,
	})
}

// Schedule implements suggest.Host. Functions scheduled after Start
// returned are dropped.
func (s *Server) Schedule(fn func()) {
	select {
	case s.tasks <- fn:
	case <-s.done:
		s.logger.Debug("Dropping task scheduled after shutdown")
	}
}

// ReportError implements suggest.ErrorReporter.
func (s *Server) ReportError(err error) {
	s.logger.Warnf("Load failed: %v", err)
	s.sendError("", err.Error(), codeLoadFailed)
}

func (s *Server) handleRequest(raw msgpack.RawMessage) {
	s.requests++

	var request KeyRequest
	if err := msgpack.Unmarshal(raw, &request); err != nil {
		s.sendError("", "Invalid msgpack request", codeBadRequest)
		s.logger.Errorf("Unmarshaling request: %v", err)
		return
	}

	switch request.Action {
	case "", ActionKey:
		s.handleKey(request)
	case ActionAttach:
		s.attach()
		s.send(StatusResponse{ID: request.ID, Status: "attached"})
	case ActionDetach:
		s.detach()
		s.send(StatusResponse{ID: request.ID, Status: "detached"})
	case ActionPing:
		s.send(StatusResponse{ID: request.ID, Status: "ok"})
	default:
		s.sendError(request.ID, fmt.Sprintf("Unknown action: %s", request.Action), codeBadRequest)
	}
}

func (s *Server) handleKey(request KeyRequest) {
	if request.Key == "" {
		s.sendError(request.ID, "Missing 'k' parameter", codeBadRequest)
		return
	}

	start := time.Now()
	state, ok := s.ext.HandleKey(request.Prefix, request.Selection, request.Postfix, suggest.KeyEvent{
		Key:  request.Key,
		Ctrl: request.Ctrl,
		Meta: request.Meta,
		Alt:  request.Alt,
	})
	elapsed := time.Since(start)

	response := KeyResponse{ID: request.ID, OK: ok, TimeTaken: elapsed.Microseconds()}
	if ok {
		response.Value = state.Value
		response.SelectionStart = state.SelectionStart
		response.SelectionEnd = state.SelectionEnd
	}
	s.send(response)
}

func (s *Server) attach() {
	if s.attached {
		return
	}
	s.ext.Init(s)
	s.attached = true
}

func (s *Server) detach() {
	if !s.attached {
		return
	}
	s.ext.Cleanup(s)
	s.attached = false
}

// send encodes one message and flushes it to the client.
func (s *Server) send(message any) {
	if err := s.enc.Encode(message); err != nil {
		s.logger.Errorf("Encoding response: %v", err)
		return
	}
	if err := s.out.Flush(); err != nil {
		s.logger.Errorf("Writing response: %v", err)
	}
}

func (s *Server) sendError(id, message string, code int) {
	s.send(ErrorResponse{ID: id, Error: message, Code: code})
}
