/*
Package server implements msgpack IPC for inline suggestions.

The server hosts a suggest.Extension behind stdin/stdout. Clients send one
msgpack map per key event and apply whatever state comes back; loads that
finish after the reply arrive as unsolicited push messages.

# IPC

Every request carries an ID and an action. Key events use the default
action and carry the text around the caret:

	{"id": "k1", "action": "key", "p": "he", "s": "", "x": "", "k": "l"}

The reply either replaces the buffer or tells the client to perform its
own editing (ok=false):

	{"id": "k1", "ok": true, "v": "hello", "ss": 3, "se": 5, "t": 12}

Suggestions loaded asynchronously are pushed without an ID:

	{"type": "push", "v": "hello", "ss": 3, "se": 5}

attach, detach and ping answer with a status:

	{"id": "a1", "action": "detach"}
	{"id": "a1", "status": "detached"}

Failures, including loader errors reported by the controller, use:

	{"id": "k1", "e": "Unknown action: foo", "c": 400}

The server answers {"status": "ready"} once it is listening.
*/
package server

// Request actions.
const (
	ActionKey    = "key"
	ActionAttach = "attach"
	ActionDetach = "detach"
	ActionPing   = "ping"
)

// KeyRequest is a single client message. An empty action is a key event.
type KeyRequest struct {
	ID        string `msgpack:"id"`
	Action    string `msgpack:"action,omitempty"`
	Prefix    string `msgpack:"p"`
	Selection string `msgpack:"s"`
	Postfix   string `msgpack:"x"`
	Key       string `msgpack:"k"`
	Ctrl      bool   `msgpack:"ctrl,omitempty"`
	Meta      bool   `msgpack:"meta,omitempty"`
	Alt       bool   `msgpack:"alt,omitempty"`
}

// KeyResponse answers a key event. OK is false when the buffer should be
// left to the client's default editing.
type KeyResponse struct {
	ID             string `msgpack:"id"`
	OK             bool   `msgpack:"ok"`
	Value          string `msgpack:"v,omitempty"`
	SelectionStart int    `msgpack:"ss,omitempty"`
	SelectionEnd   int    `msgpack:"se,omitempty"`
	TimeTaken      int64  `msgpack:"t"`
}

// PushMessage carries a state produced after the key event was answered.
type PushMessage struct {
	Type           string `msgpack:"type"`
	Value          string `msgpack:"v"`
	SelectionStart int    `msgpack:"ss"`
	SelectionEnd   int    `msgpack:"se"`
}

// StatusResponse answers attach, detach and ping.
type StatusResponse struct {
	ID     string `msgpack:"id,omitempty"`
	Status string `msgpack:"status"`
}

// ErrorResponse holds basic error information
type ErrorResponse struct {
	ID    string `msgpack:"id"`
	Error string `msgpack:"e"`
	Code  int    `msgpack:"c"`
}
