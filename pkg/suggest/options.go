package suggest

import (
	"fmt"
	"regexp"
	"strings"
)

// Action is a user intent bound to one or more keys.
type Action string

const (
	ActionPrev   Action = "prev"
	ActionNext   Action = "next"
	ActionCancel Action = "cancel"
	ActionAccept Action = "accept"
)

// Actions lists every action in a stable order.
var Actions = []Action{ActionPrev, ActionNext, ActionCancel, ActionAccept}

// DefaultPattern matches the run of non-whitespace before the caret.
const DefaultPattern = `\S+`

var defaultKeyMap = map[Action][]string{
	ActionPrev:   {"ArrowUp", "Up"},
	ActionNext:   {"ArrowDown", "Down"},
	ActionCancel: {"Escape", "ArrowLeft", "Left", "Cancel"},
	ActionAccept: {"Enter", "ArrowRight", "Right", "Tab", "Accept"},
}

var keyListSep = regexp.MustCompile(`\s*,\s*`)

// Options is the normalized, read-only controller configuration.
type Options struct {
	Pattern *regexp.Regexp
	KeyMap  map[Action][]string
	OnError func(error)
}

// Option mutates the raw settings before normalization.
type Option func(*settings)

type settings struct {
	pattern string
	keyMap  map[Action][]string
	onError func(error)
}

// WithPattern sets the trigger pattern from its source text.
func WithPattern(pattern string) Option {
	return func(s *settings) {
		s.pattern = pattern
	}
}

// WithRegexp sets the trigger pattern from a compiled expression.
func WithRegexp(re *regexp.Regexp) Option {
	return func(s *settings) {
		if re != nil {
			s.pattern = re.String()
		}
	}
}

// WithKeys binds keys to an action. An empty list keeps the defaults.
func WithKeys(action Action, keys ...string) Option {
	return func(s *settings) {
		if s.keyMap == nil {
			s.keyMap = make(map[Action][]string)
		}
		s.keyMap[action] = keys
	}
}

// WithKeyList binds a comma separated key list ("Enter, Tab") to an action.
func WithKeyList(action Action, list string) Option {
	return WithKeys(action, ParseKeys(list)...)
}

// WithErrorHandler receives loader failures when the host does not
// implement ErrorReporter.
func WithErrorHandler(fn func(error)) Option {
	return func(s *settings) {
		s.onError = fn
	}
}

// ParseKeys splits a comma separated key list, dropping empty entries.
func ParseKeys(list string) []string {
	var keys []string
	for _, k := range keyListSep.Split(strings.TrimSpace(list), -1) {
		if k != "" {
			keys = append(keys, k)
		}
	}
	return keys
}

// DefaultKeys returns a copy of the default bindings for an action.
func DefaultKeys(action Action) []string {
	return append([]string(nil), defaultKeyMap[action]...)
}

// NormalizeOptions merges the given options with the defaults.
func NormalizeOptions(opts ...Option) (Options, error) {
	s := settings{}
	for _, opt := range opts {
		opt(&s)
	}

	pattern, err := normalizePattern(s.pattern)
	if err != nil {
		return Options{}, err
	}

	return Options{
		Pattern: pattern,
		KeyMap:  normalizeKeyMap(s.keyMap),
		OnError: s.onError,
	}, nil
}

func normalizePattern(source string) (*regexp.Regexp, error) {
	if source == "" {
		source = DefaultPattern
	}
	source = strings.TrimPrefix(source, "^")
	if strings.HasSuffix(source, "$") && !strings.HasSuffix(source, `\$`) {
		source = strings.TrimSuffix(source, "$")
	}

	// Group before anchoring so every alternative ends at the caret.
	re, err := regexp.Compile("(?:" + source + ")$")
	if err != nil {
		return nil, fmt.Errorf("invalid trigger pattern %q: %w", source, err)
	}
	return re, nil
}

func normalizeKeyMap(overrides map[Action][]string) map[Action][]string {
	keyMap := make(map[Action][]string, len(Actions))
	for _, action := range Actions {
		keys := overrides[action]
		if len(keys) == 0 {
			keys = defaultKeyMap[action]
		}
		keyMap[action] = append([]string(nil), keys...)
	}
	return keyMap
}

// Is reports whether key is bound to action.
func (o Options) Is(action Action, key string) bool {
	for _, k := range o.KeyMap[action] {
		if k == key {
			return true
		}
	}
	return false
}
