package logger

import (
	"bytes"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
)

func TestNewToUsesPrefixAndGlobalLevel(t *testing.T) {
	prev := log.GetLevel()
	log.SetLevel(log.WarnLevel)
	t.Cleanup(func() { log.SetLevel(prev) })

	var buf bytes.Buffer
	l := NewTo(&buf, "server")
	l.Info("hidden")
	l.Warn("shown")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "server")
	assert.Contains(t, out, "shown")
}
