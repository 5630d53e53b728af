package logging

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogFileName(t *testing.T) {
	at := time.Date(2024, 9, 1, 8, 30, 5, 0, time.UTC)

	assert.Equal(t, "admission_prod_2024-09-01_08-30-05.log", logFileName("prod", at))
	assert.Equal(t, "admission_default_2024-09-01_08-30-05.log", logFileName("", at))
}

func TestInitLogger_WritesJSONToFile(t *testing.T) {
	dir := t.TempDir()

	logger, path, err := InitLogger("test", Options{Dir: dir})
	require.NoError(t, err)
	assert.Equal(t, dir, filepath.Dir(path))

	logger.Debug("seat taken")
	_ = logger.Sync()

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 1)

	var entry map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &entry))
	assert.Equal(t, "seat taken", entry["msg"])
	assert.Equal(t, "debug", entry["level"])
	assert.Equal(t, "test", entry["env"])
	assert.Contains(t, entry, "timestamp")
}
