package main

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vbonduro/snapcal/internal/config"
	"github.com/vbonduro/snapcal/internal/photostore/local"
	claudevision "github.com/vbonduro/snapcal/internal/vision/claude"
	geminivision "github.com/vbonduro/snapcal/internal/vision/gemini"
	ollamavision "github.com/vbonduro/snapcal/internal/vision/ollama"
)

func TestNewIdentifier(t *testing.T) {
	logger := slog.New(slog.DiscardHandler)

	ident, err := newIdentifier(&config.Config{VisionBackend: "gemini", GeminiAPIKey: "k", GeminiModel: "m"}, logger)
	require.NoError(t, err)
	assert.IsType(t, &geminivision.GeminiIdentifier{}, ident)

	ident, err = newIdentifier(&config.Config{VisionBackend: "claude", ClaudeAPIKey: "k", ClaudeModel: "m"}, logger)
	require.NoError(t, err)
	assert.IsType(t, &claudevision.ClaudeIdentifier{}, ident)

	ident, err = newIdentifier(&config.Config{VisionBackend: "ollama", OllamaHost: "http://localhost:11434", OllamaModel: "llava"}, logger)
	require.NoError(t, err)
	assert.IsType(t, &ollamavision.OllamaIdentifier{}, ident)
}

func TestNewIdentifierErrors(t *testing.T) {
	logger := slog.New(slog.DiscardHandler)

	_, err := newIdentifier(&config.Config{VisionBackend: "gemini"}, logger)
	assert.ErrorContains(t, err, "GEMINI_API_KEY")

	_, err = newIdentifier(&config.Config{VisionBackend: "claude"}, logger)
	assert.ErrorContains(t, err, "CLAUDE_API_KEY")

	_, err = newIdentifier(&config.Config{VisionBackend: "magic"}, logger)
	assert.ErrorContains(t, err, "unknown VISION_BACKEND")
}

func TestNewPhotoStore(t *testing.T) {
	logger := slog.New(slog.DiscardHandler)

	ps, err := newPhotoStore(context.Background(), &config.Config{PhotoBackend: "local", PhotoPath: t.TempDir()}, logger)
	require.NoError(t, err)
	assert.IsType(t, &local.LocalPhotoStore{}, ps)

	_, err = newPhotoStore(context.Background(), &config.Config{PhotoBackend: "ftp"}, logger)
	assert.ErrorContains(t, err, "unknown PHOTO_BACKEND")
}

func TestRootCommandHasSubcommands(t *testing.T) {
	root := newRootCmd()
	for _, name := range []string{"serve", "scan"} {
		cmd, _, err := root.Find([]string{name})
		require.NoError(t, err)
		assert.Equal(t, name, cmd.Name())
	}
}
