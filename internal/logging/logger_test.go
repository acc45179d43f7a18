package logging

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLogger(t *testing.T) {
	logger, err := NewLogger("debug")
	require.NoError(t, err)
	assert.NotNil(t, logger.Logger)

	_, err = NewLogger("loud")
	assert.Error(t, err)
}

func TestWithRequestID(t *testing.T) {
	logger, err := NewLogger("info")
	require.NoError(t, err)

	ctx := context.WithValue(context.Background(), RequestIDKey, "req-1")
	assert.NotSame(t, logger.Logger, logger.WithRequestID(ctx))
	assert.Same(t, logger.Logger, logger.WithRequestID(context.Background()))
}

func TestOrNop(t *testing.T) {
	assert.NotNil(t, OrNop(nil))
}
