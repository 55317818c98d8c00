package logx

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJSONFields(t *testing.T) {
	var buf bytes.Buffer
	log := New(&buf, "debug", true).With(String("component", "test"))
	log.Debug("hello", Int("n", 3), Err(errors.New("boom")), Err(nil))

	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.Equal(t, "hello", rec["message"])
	assert.Equal(t, "debug", rec["level"])
	assert.Equal(t, "test", rec["component"])
	assert.Equal(t, float64(3), rec["n"])
	assert.Equal(t, "boom", rec["err"])
	assert.Contains(t, rec["caller"], "logging_test.go:")
}

func TestLevelFilter(t *testing.T) {
	var buf bytes.Buffer
	log := New(&buf, "warn", true)
	log.Info("dropped")
	assert.Zero(t, buf.Len())
	assert.False(t, log.Enabled(LevelInfo))
	assert.True(t, log.Enabled(LevelError))
}

func TestZeroValue(t *testing.T) {
	var log Logger
	assert.True(t, log.IsZero())
	assert.False(t, Nop().IsZero())
	// Must not panic.
	log.Error("nothing", String("k", "v"))
	assert.False(t, log.Enabled(LevelError))
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, LevelDebug, ParseLevel(" DEBUG ", LevelInfo))
	assert.Equal(t, LevelWarn, ParseLevel("warning", LevelInfo))
	assert.Equal(t, LevelInfo, ParseLevel("bogus", LevelInfo))
}
