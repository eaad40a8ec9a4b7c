package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeLine(t *testing.T, buf *bytes.Buffer) map[string]interface{} {
	t.Helper()

	var line map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	buf.Reset()

	return line
}

func TestLogger_ErrorWithContext(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithWriter(&buf, "info")

	l.Error(errors.New("dial tcp: refused"), "KafkaController - worker - commit: partition=%d", 3)

	line := decodeLine(t, &buf)
	assert.Equal(t, "error", line["level"])
	assert.Equal(t, "dial tcp: refused", line["error"])
	assert.Equal(t, "KafkaController - worker - commit: partition=3", line["message"])
}

func TestLogger_ErrorWithoutContext(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithWriter(&buf, "info")

	l.Error(errors.New("boom"))

	line := decodeLine(t, &buf)
	assert.Equal(t, "boom", line["message"])
}

func TestLogger_LevelFilter(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithWriter(&buf, "warn")

	l.Info("hidden %d", 1)
	l.Debug("hidden")
	assert.Zero(t, buf.Len())

	l.Warn("shown %s", "yes")
	line := decodeLine(t, &buf)
	assert.Equal(t, "warn", line["level"])
	assert.Equal(t, "shown yes", line["message"])
}
