package logging

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLoggerIsCachedPerComponent(t *testing.T) {
	a := NewLogger("scheduler")
	b := NewLogger("scheduler")
	c := NewLogger("geo")

	assert.Same(t, a, b)
	assert.NotSame(t, a, c)
	assert.Equal(t, "scheduler", a.Data["component"])
}

func TestConfigureJSONOutput(t *testing.T) {
	var buf bytes.Buffer
	Configure("debug", "json", &buf)

	NewLogger("test-json").WithField("seq", 3).Debug("fetch started")

	var line map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "test-json", line["component"])
	assert.Equal(t, "fetch started", line["msg"])
	assert.EqualValues(t, 3, line["seq"])
}
