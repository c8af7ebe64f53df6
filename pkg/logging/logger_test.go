package logging

import (
	"bytes"
	"encoding/json"
	"errors"
	"log"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func bufferLogger(jsonMode bool) (*Logger, *bytes.Buffer) {
	var buf bytes.Buffer
	return &Logger{logger: log.New(&buf, "", 0), jsonMode: jsonMode, correlationID: "cid-1"}, &buf
}

func TestLogfPlainMode(t *testing.T) {
	l, buf := bufferLogger(false)
	l.Logf("loaded %d versions", 3)
	assert.Equal(t, "loaded 3 versions\n", buf.String())
}

func TestLogJSONMode(t *testing.T) {
	l, buf := bufferLogger(true)
	l.Log("session opened")

	var entry map[string]string
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "info", entry["level"])
	assert.Equal(t, "session opened", entry["msg"])
	assert.Equal(t, "cid-1", entry["cid"])
}

func TestLogErrorJSONMode(t *testing.T) {
	l, buf := bufferLogger(true)
	l.LogError(errors.New("request failed"))

	var entry map[string]string
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "error", entry["level"])
	assert.Equal(t, "request failed", entry["error"])
}

func TestLogErrorPlainMode(t *testing.T) {
	l, buf := bufferLogger(false)
	l.LogError(errors.New("request failed"))
	assert.True(t, strings.HasPrefix(buf.String(), "Error: request failed"))
}

func TestLogPathUnderDotdir(t *testing.T) {
	assert.True(t, strings.HasSuffix(LogPath(), ".prdpilot/prdpilot.log"))
}
