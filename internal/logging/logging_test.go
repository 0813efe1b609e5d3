package logging

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakif/moodjournal/internal/config"
)

func TestNewWithWriter_JSONAndLevel(t *testing.T) {
	var buf bytes.Buffer
	logger, closer, err := NewWithWriter(&buf, config.LogConfig{Level: "warn", Format: "json"})
	require.NoError(t, err)
	defer closer.Close()

	logger.Info("hidden")
	logger.Warn("shown", "date", "2024-01-01")

	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	require.Len(t, lines, 1)

	var rec map[string]any
	require.NoError(t, json.Unmarshal(lines[0], &rec))
	assert.Equal(t, "shown", rec["msg"])
	assert.Equal(t, "2024-01-01", rec["date"])
}

func TestNewWithWriter_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "journal.log")
	var buf bytes.Buffer

	logger, closer, err := NewWithWriter(&buf, config.LogConfig{Level: "info", Format: "text", File: path, MaxSizeMB: 1})
	require.NoError(t, err)

	logger.Info("entry saved")
	require.NoError(t, closer.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "entry saved")
	assert.Contains(t, buf.String(), "entry saved")
}

func TestNewWithWriter_Invalid(t *testing.T) {
	_, _, err := NewWithWriter(&bytes.Buffer{}, config.LogConfig{Level: "loud"})
	assert.Error(t, err)

	_, _, err = NewWithWriter(&bytes.Buffer{}, config.LogConfig{Level: "info", Format: "xml"})
	assert.Error(t, err)
}
