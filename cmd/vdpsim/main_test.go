package main

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vdpsim/internal/app"
)

func TestApplyFlagsOnlyOverridesChanged(t *testing.T) {
	require.NoError(t, rootCmd.ParseFlags([]string{"--backend", "terminal", "--frames", "9", "--clock-mhz", "27"}))

	cfg := app.NewConfig()
	cfg.Debug.TracePath = "keep.sqlite3"
	applyFlags(rootCmd, cfg)

	assert.Equal(t, "terminal", cfg.Video.Backend)
	assert.Equal(t, uint64(9), cfg.Session.MaxFrames)
	assert.Equal(t, 27.0, cfg.Clock.MHz)
	assert.Equal(t, "keep.sqlite3", cfg.Debug.TracePath)
	assert.False(t, cfg.Debug.EnableLogging)
}

func TestVersionCommand(t *testing.T) {
	var buf bytes.Buffer
	rootCmd.SetOut(&buf)
	rootCmd.SetArgs([]string{"version"})
	defer rootCmd.SetArgs(nil)

	require.NoError(t, rootCmd.Execute())
	assert.Contains(t, buf.String(), "vdpsim")
	assert.Contains(t, buf.String(), "Version:")
}
