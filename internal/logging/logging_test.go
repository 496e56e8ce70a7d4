package logging

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/rl1809/shop/internal/config"
)

func TestInitWithFile(t *testing.T) {
	restore := zap.L()
	defer zap.ReplaceGlobals(restore)

	path := filepath.Join(t.TempDir(), "shop.log")
	logger, err := Init(config.LoggerConfig{Mode: "production", FileEnable: true, Filename: path})
	require.NoError(t, err)

	zap.L().Info("hello", zap.String("k", "v"))
	_ = logger.Sync()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"msg":"hello"`)
	assert.Contains(t, string(data), `"k":"v"`)
}

func TestInitConsoleOnly(t *testing.T) {
	restore := zap.L()
	defer zap.ReplaceGlobals(restore)

	logger, err := Init(config.LoggerConfig{Mode: "development"})
	require.NoError(t, err)
	assert.Same(t, logger, zap.L())
}
