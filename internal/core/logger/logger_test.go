package logger

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestFromConfig_WritesRotatedFile(t *testing.T) {
	fn := filepath.Join(t.TempDir(), "shelter.log")
	l, cleanup := FromConfig("info", true, FileRotate{Filename: fn, MaxSizeMB: 1})
	l.Info("adoption created", zap.String("adoption_id", "a-1"))
	l.Debug("filtered out")
	cleanup()

	b, err := os.ReadFile(fn)
	require.NoError(t, err)
	assert.Contains(t, string(b), `"adoption_id":"a-1"`)
	assert.NotContains(t, string(b), "filtered out")
}

func TestFromConfig_BadLevelFallsBackToInfo(t *testing.T) {
	l, cleanup := FromConfig("loud", false, FileRotate{})
	defer cleanup()
	assert.True(t, l.Core().Enabled(zap.InfoLevel))
	assert.False(t, l.Core().Enabled(zap.DebugLevel))
}
