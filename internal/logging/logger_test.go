package logging

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRejectsUnknownLevel(t *testing.T) {
	_, err := New(Config{Level: "loud"})
	assert.Error(t, err)
}

func TestNewBuildsDevelopmentLogger(t *testing.T) {
	logger, err := New(Config{Level: "debug", Development: true})
	require.NoError(t, err)
	assert.True(t, logger.Core().Enabled(-1))
}

func TestNewWritesJSONToOutputPaths(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hexpanel.log")
	logger, err := New(Config{Level: "warn", OutputPaths: []string{path}})
	require.NoError(t, err)

	logger.Info("hidden")
	logger.Named("catalog").Warn("shown")
	_ = logger.Sync()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "hidden")
	assert.Contains(t, string(data), `"msg":"shown"`)
	assert.Contains(t, string(data), `"logger":"catalog"`)
	assert.Contains(t, string(data), `"timestamp"`)
}

func TestOrNop(t *testing.T) {
	assert.NotNil(t, OrNop(nil))

	l := NewDefault()
	assert.Same(t, l, OrNop(l))
}
