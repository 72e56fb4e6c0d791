package server

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/bastiangx/typr-suggest/pkg/suggest"
	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vmihailenco/msgpack/v5"
)

func init() {
	log.SetLevel(log.FatalLevel)
}

// message is the union of every server message.
type message struct {
	ID             string `msgpack:"id"`
	Type           string `msgpack:"type"`
	Status         string `msgpack:"status"`
	OK             bool   `msgpack:"ok"`
	Value          string `msgpack:"v"`
	SelectionStart int    `msgpack:"ss"`
	SelectionEnd   int    `msgpack:"se"`
	Error          string `msgpack:"e"`
	Code           int    `msgpack:"c"`
}

type client struct {
	t    *testing.T
	enc  *msgpack.Encoder
	dec  *msgpack.Decoder
	in   *io.PipeWriter
	errc chan error
}

func startServer(t *testing.T, loader suggest.Loader) *client {
	t.Helper()
	ctrl, err := suggest.New(loader)
	require.NoError(t, err)

	reqR, reqW := io.Pipe()
	respR, respW := io.Pipe()
	srv := NewServerWithIO(ctrl, reqR, respW)

	c := &client{
		t:    t,
		enc:  msgpack.NewEncoder(reqW),
		dec:  msgpack.NewDecoder(respR),
		in:   reqW,
		errc: make(chan error, 1),
	}
	go func() {
		c.errc <- srv.Start(context.Background())
		respW.Close()
	}()
	t.Cleanup(func() { reqW.Close() })

	assert.Equal(t, "ready", c.next().Status)
	return c
}

func (c *client) send(req any) {
	c.t.Helper()
	require.NoError(c.t, c.enc.Encode(req))
}

func (c *client) next() message {
	c.t.Helper()
	var m message
	require.NoError(c.t, c.dec.Decode(&m))
	return m
}

func (c *client) close() error {
	c.in.Close()
	select {
	case err := <-c.errc:
		return err
	case <-time.After(2 * time.Second):
		return errors.New("server did not stop")
	}
}

func staticLoader(words ...string) suggest.Loader {
	return suggest.Sync(func(context.Context, string) ([]string, error) {
		return words, nil
	})
}

func TestKeyRequestSync(t *testing.T) {
	c := startServer(t, staticLoader("hello", "help"))

	c.send(KeyRequest{ID: "k1", Prefix: "he", Key: "l"})
	reply := c.next()
	assert.Equal(t, "k1", reply.ID)
	assert.True(t, reply.OK)
	assert.Equal(t, "hello", reply.Value)
	assert.Equal(t, 3, reply.SelectionStart)
	assert.Equal(t, 5, reply.SelectionEnd)

	c.send(KeyRequest{ID: "k2", Action: ActionKey, Prefix: "hel", Selection: "lo", Key: "ArrowDown"})
	reply = c.next()
	assert.True(t, reply.OK)
	assert.Equal(t, "help", reply.Value)

	c.send(KeyRequest{ID: "k3", Prefix: "hel", Selection: "p", Key: "Enter"})
	reply = c.next()
	assert.True(t, reply.OK)
	assert.Equal(t, "help", reply.Value)
	assert.Equal(t, 4, reply.SelectionStart)
	assert.Equal(t, 4, reply.SelectionEnd)

	c.send(KeyRequest{ID: "k4", Prefix: "help", Key: "Enter"})
	assert.False(t, c.next().OK)

	assert.NoError(t, c.close())
}

func TestKeyRequestAsyncPush(t *testing.T) {
	release := make(chan struct{})
	loader := suggest.Async(func(ctx context.Context, token string) ([]string, error) {
		<-release
		return []string{token + "lo"}, nil
	})
	c := startServer(t, loader)

	c.send(KeyRequest{ID: "k1", Prefix: "he", Key: "l"})
	reply := c.next()
	assert.Equal(t, "k1", reply.ID)
	assert.False(t, reply.OK)

	close(release)
	push := c.next()
	assert.Equal(t, "push", push.Type)
	assert.Equal(t, "hello", push.Value)
	assert.Equal(t, 3, push.SelectionStart)
	assert.Equal(t, 5, push.SelectionEnd)

	assert.NoError(t, c.close())
}

func TestLoadErrorIsReported(t *testing.T) {
	loader := suggest.Sync(func(context.Context, string) ([]string, error) {
		return nil, errors.New("dictionary offline")
	})
	c := startServer(t, loader)

	c.send(KeyRequest{ID: "k1", Prefix: "he", Key: "l"})
	report := c.next()
	assert.Equal(t, codeLoadFailed, report.Code)
	assert.Contains(t, report.Error, "dictionary offline")
	assert.Contains(t, report.Error, `"hel"`)

	assert.False(t, c.next().OK)
	assert.NoError(t, c.close())
}

func TestControlActions(t *testing.T) {
	c := startServer(t, staticLoader("hello"))

	c.send(KeyRequest{ID: "p", Action: ActionPing})
	assert.Equal(t, message{ID: "p", Status: "ok"}, c.next())

	c.send(KeyRequest{ID: "d", Action: ActionDetach})
	assert.Equal(t, "detached", c.next().Status)

	c.send(KeyRequest{ID: "k1", Prefix: "he", Key: "l"})
	assert.False(t, c.next().OK, "detached extension leaves keys alone")

	c.send(KeyRequest{ID: "a", Action: ActionAttach})
	assert.Equal(t, "attached", c.next().Status)

	c.send(KeyRequest{ID: "k2", Prefix: "he", Key: "l"})
	assert.True(t, c.next().OK)

	assert.NoError(t, c.close())
}

func TestBadRequests(t *testing.T) {
	c := startServer(t, staticLoader("hello"))

	c.send(KeyRequest{ID: "x", Action: "reload"})
	reply := c.next()
	assert.Equal(t, "x", reply.ID)
	assert.Equal(t, codeBadRequest, reply.Code)

	c.send(KeyRequest{ID: "k"})
	assert.Equal(t, codeBadRequest, c.next().Code)

	c.send("not a map")
	assert.Equal(t, codeBadRequest, c.next().Code)

	c.send(KeyRequest{ID: "p", Action: ActionPing})
	assert.Equal(t, "ok", c.next().Status)

	assert.NoError(t, c.close())
}

func TestStartStopsOnContext(t *testing.T) {
	ctrl, err := suggest.New(staticLoader())
	require.NoError(t, err)

	reqR, _ := io.Pipe()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	srv := NewServerWithIO(ctrl, reqR, io.Discard)
	assert.ErrorIs(t, srv.Start(ctx), context.Canceled)

	done := make(chan struct{})
	go func() {
		srv.Schedule(func() {})
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Schedule blocked after shutdown")
	}
}
