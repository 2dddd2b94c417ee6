package main

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCommand(t *testing.T) {
	root := newRootCmd()

	for _, name := range []string{"serve", "geocode"} {
		cmd, _, err := root.Find([]string{name})
		require.NoError(t, err)
		assert.Equal(t, name, cmd.Name())
	}

	geocode, _, err := root.Find([]string{"geocode"})
	require.NoError(t, err)
	assert.NotNil(t, geocode.Flags().Lookup("query"))
}

func TestSetupLogger(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		env     string
		enabled slog.Level
	}{
		{envLocal, slog.LevelDebug},
		{envDev, slog.LevelInfo},
		{envProd, slog.LevelWarn},
		{"unknown", slog.LevelError},
	}

	for _, tt := range tests {
		t.Run(tt.env, func(t *testing.T) {
			log := setupLogger(tt.env)

			assert.True(t, log.Enabled(ctx, tt.enabled))
			assert.False(t, log.Enabled(ctx, tt.enabled-1))
		})
	}
}
