package logger

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestZapLoggerWritesFields(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	log := New(zap.New(core))

	log.Infof("sale %d committed", 7)
	log.Errorf(errors.New("disk full"), "failed to append sale %d", 8)

	entries := logs.All()
	require.Len(t, entries, 2)
	assert.Equal(t, "sale 7 committed", entries[0].Message)
	assert.Equal(t, "failed to append sale 8", entries[1].Message)
	assert.Equal(t, "disk full", entries[1].ContextMap()["error"])
}

func TestNewZapLoggerWithFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pos.log")
	log := NewZapLogger(Options{Level: "warn", File: path})

	log.Infof("skipped")
	log.Warnf("kept")
	_ = log.Sync()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "kept")
	assert.NotContains(t, string(data), "skipped")
}
