package logger

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNew_Levels(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, "account-service", false)

	l.Debug().Msg("hidden")
	l.Info().Str("email", "a@x.com").Msg("registered")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "registered")
	assert.Contains(t, out, "email:a@x.com")
	assert.Contains(t, out, "service:account-service")
}

func TestNew_Debug(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, "svc", true)

	l.Debug().Msg("visible")
	assert.Contains(t, buf.String(), "visible")
}
