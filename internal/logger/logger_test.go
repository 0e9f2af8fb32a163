package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"

	"github.com/Additional-Code/orderdemo/internal/config"
)

func TestBuild_Levels(t *testing.T) {
	cases := map[string]zapcore.Level{
		"debug":   zapcore.DebugLevel,
		"warn":    zapcore.WarnLevel,
		"error":   zapcore.ErrorLevel,
		"":        zapcore.InfoLevel,
		"verbose": zapcore.InfoLevel,
	}
	for in, want := range cases {
		t.Run(in, func(t *testing.T) {
			logger, err := Build(config.Observability{LogLevel: in, LogEncoding: "json", ServiceName: "orderdemo"})
			require.NoError(t, err)
			assert.True(t, logger.Core().Enabled(want))
			if want > zapcore.DebugLevel {
				assert.False(t, logger.Core().Enabled(want-1))
			}
		})
	}
}

func TestBuild_Console(t *testing.T) {
	logger, err := Build(config.Observability{LogLevel: "info", LogEncoding: "console"})
	require.NoError(t, err)
	assert.NotNil(t, logger)
}
