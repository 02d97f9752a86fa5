package logging

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestNewRejectsUnknownLevel(t *testing.T) {
	_, err := New(Config{Level: "loud"})
	assert.Error(t, err)

	// Fallback keeps callers running
	logger := NewFromLevel("loud", false)
	require.NotNil(t, logger)
	logger.Info("discarded")
}

func TestNewHonoursLevel(t *testing.T) {
	logger, err := New(Config{Level: "warn"})
	require.NoError(t, err)

	assert.False(t, logger.Core().Enabled(zapcore.InfoLevel))
	assert.True(t, logger.Core().Enabled(zapcore.WarnLevel))
}

func TestTokenField(t *testing.T) {
	field := Token("sess_01ARZ3NDEKTSV4RRFFQ69G5FAV.00112233445566778899")
	assert.Equal(t, "session", field.Key)
	assert.Equal(t, "sess_01ARZ3ND…", field.String)

	short := Token("abc123")
	assert.Equal(t, "abc123", short.String)
}

func TestDevelopmentLogger(t *testing.T) {
	logger, err := New(Config{Level: "debug", Development: true, Service: "search"})
	require.NoError(t, err)
	assert.True(t, logger.Core().Enabled(zapcore.DebugLevel))

	named := logger.Named("gateway")
	assert.NotSame(t, logger.Logger, named.Logger)
}
