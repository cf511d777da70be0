package logging_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"

	"github.com/kantai-tool/fleetdeck/internal/infrastructure/config"
	"github.com/kantai-tool/fleetdeck/internal/infrastructure/logging"
)

func TestNew_FileOutput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "server.log")
	logger, err := logging.New(config.LoggingConfig{
		Level:    "debug",
		Format:   "json",
		Output:   "file",
		FilePath: path,
	})
	require.NoError(t, err)

	logger.Debug("document saved", zap.String("kind", "decks"))
	require.NoError(t, logger.Sync())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"kind":"decks"`)
}

func TestNew_RejectsUnknownLevel(t *testing.T) {
	_, err := logging.New(config.LoggingConfig{Level: "loud", Format: "json", Output: "stderr"})

	assert.Error(t, err)
}

func TestFromContext(t *testing.T) {
	assert.NotNil(t, logging.FromContext(context.Background()))

	logger := zaptest.NewLogger(t)
	ctx := logging.WithLogger(context.Background(), logger)
	assert.Same(t, logger, logging.FromContext(ctx))
}
