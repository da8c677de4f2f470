package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/vbonduro/snapcal/internal/config"
	"github.com/vbonduro/snapcal/internal/nutrition"
	"github.com/vbonduro/snapcal/internal/nutrition/usda"
	"github.com/vbonduro/snapcal/internal/photostore"
	"github.com/vbonduro/snapcal/internal/photostore/local"
	s3store "github.com/vbonduro/snapcal/internal/photostore/s3"
	"github.com/vbonduro/snapcal/internal/scan"
	"github.com/vbonduro/snapcal/internal/vision"
	claudevision "github.com/vbonduro/snapcal/internal/vision/claude"
	geminivision "github.com/vbonduro/snapcal/internal/vision/gemini"
	ollamavision "github.com/vbonduro/snapcal/internal/vision/ollama"
)

func newIdentifier(cfg *config.Config, logger *slog.Logger) (vision.FoodIdentifier, error) {
	switch cfg.VisionBackend {
	case "claude":
		if cfg.ClaudeAPIKey == "" {
			return nil, errors.New("CLAUDE_API_KEY is required when VISION_BACKEND=claude")
		}
		logger.Info("using Claude vision backend", "model", cfg.ClaudeModel)
		return claudevision.NewClaudeIdentifier(cfg.ClaudeAPIKey, cfg.ClaudeModel), nil
	case "ollama":
		logger.Info("using Ollama vision backend", "model", cfg.OllamaModel)
		return ollamavision.NewOllamaIdentifier(cfg.OllamaHost, cfg.OllamaModel), nil
	case "gemini", "":
		if cfg.GeminiAPIKey == "" {
			return nil, errors.New("GEMINI_API_KEY is required when VISION_BACKEND=gemini")
		}
		logger.Info("using Gemini vision backend", "model", cfg.GeminiModel)
		return geminivision.NewGeminiIdentifier(cfg.GeminiAPIKey, cfg.GeminiModel), nil
	default:
		return nil, fmt.Errorf("unknown VISION_BACKEND %q", cfg.VisionBackend)
	}
}

func newScanner(cfg *config.Config, observer scan.Observer, logger *slog.Logger) (*scan.Scanner, error) {
	identifier, err := newIdentifier(cfg, logger)
	if err != nil {
		return nil, err
	}
	resolver := nutrition.NewResolver(
		usda.NewClient(cfg.USDAAPIKey, cfg.USDABaseURL),
		cfg.NutritionCacheSize,
		cfg.NutritionCacheTTL,
	)
	return scan.NewScanner(identifier, resolver, observer, logger), nil
}

func newPhotoStore(ctx context.Context, cfg *config.Config, logger *slog.Logger) (photostore.PhotoStore, error) {
	switch cfg.PhotoBackend {
	case "s3":
		logger.Info("using S3 photo store", "bucket", cfg.PhotoS3Bucket)
		return s3store.NewS3PhotoStore(ctx, cfg.PhotoS3Bucket, cfg.PhotoS3Region)
	case "local", "":
		logger.Info("using local photo store", "path", cfg.PhotoPath)
		return local.NewLocalPhotoStore(cfg.PhotoPath)
	default:
		return nil, fmt.Errorf("unknown PHOTO_BACKEND %q", cfg.PhotoBackend)
	}
}
