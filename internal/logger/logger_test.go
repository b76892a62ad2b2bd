package logger

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	log := New(false)
	require.NotNil(t, log)
	require.NoError(t, log.Close())

	log = New(true)
	log.Debug("debug message")
	log.Debugf("debug %s", "formatted")
}

func TestNewWithFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "regionsync.log")

	log, err := NewWithFile(false, path)
	require.NoError(t, err)

	log.Info("hello from the test")
	log.Warningf("count=%d", 42)
	log.Errorf("oops: %v", "nothing")
	require.NoError(t, log.Close())

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(content), "hello from the test")
	assert.Contains(t, string(content), "count=42")
}

func TestNewWithFileBadPath(t *testing.T) {
	_, err := NewWithFile(false, filepath.Join(t.TempDir(), "no", "such", "dir", "x.log"))
	require.Error(t, err)
}

func TestWith(t *testing.T) {
	path := filepath.Join(t.TempDir(), "regionsync.log")
	log, err := NewWithFile(false, path)
	require.NoError(t, err)

	log.With("project", "p-123").Info("scoped")
	require.NoError(t, log.Close())

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(content), "p-123")
}

func TestGetTimestamp(t *testing.T) {
	ts := GetTimestamp()
	assert.Len(t, ts, len("20060102-150405"))
	assert.Contains(t, ts, "-")
}
