package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zapcore.DebugLevel, ParseLevel("debug"))
	assert.Equal(t, zapcore.WarnLevel, ParseLevel("WARN"))
	assert.Equal(t, zapcore.InfoLevel, ParseLevel("loud"))
	assert.Equal(t, zapcore.InfoLevel, ParseLevel(""))
}

func TestNew_RespectsLevel(t *testing.T) {
	for _, env := range []string{"development", "production"} {
		log, err := New(Config{Level: "warn", Environment: env, ServiceName: "registration"})
		require.NoError(t, err, env)
		assert.False(t, log.Core().Enabled(zapcore.InfoLevel), env)
		assert.True(t, log.Core().Enabled(zapcore.WarnLevel), env)
	}
}
