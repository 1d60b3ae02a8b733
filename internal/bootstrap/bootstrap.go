// Package bootstrap provides dependency initialization for the Veo Studio API.
package bootstrap

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/maauso/veo-studio/internal/config"
	"github.com/maauso/veo-studio/internal/credential"
	"github.com/maauso/veo-studio/internal/generation"
	"github.com/maauso/veo-studio/internal/media"
	"github.com/maauso/veo-studio/internal/storage"
	"github.com/maauso/veo-studio/internal/studio"
	"github.com/maauso/veo-studio/internal/veo"
)

// Dependencies holds all initialized dependencies for the HTTP server.
type Dependencies struct {
	Studio      *studio.Studio
	Credentials *credential.Store
	Storage     storage.Storage
}

// NewDependencies creates and initializes all dependencies for the application.
func NewDependencies(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Dependencies, error) {
	store, err := initStorage(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}

	creds := credential.NewStore(cfg.APIKey())
	if !creds.HasCredential(ctx) {
		logger.Warn("no Gemini API key configured, set one with PUT /credential")
	}

	var factoryOpts []veo.FactoryOption
	if cfg.GeminiBaseURL != "" {
		factoryOpts = append(factoryOpts, veo.WithBaseURL(cfg.GeminiBaseURL))
	}

	downloader := veo.NewDownloader(
		veo.WithDownloadTimeout(cfg.DownloadTimeout),
		veo.WithMaxBytes(cfg.MaxDownloadBytes),
	)

	client := generation.NewClient(creds, veo.NewFactory(factoryOpts...), downloader,
		generation.WithPollInterval(cfg.PollInterval),
		generation.WithMaxWait(cfg.MaxWait),
		generation.WithLogger(logger),
	)

	opts := []studio.Option{
		studio.WithLogger(logger),
		studio.WithPublish(store.PublishEnabled()),
	}
	if inspector := initInspector(cfg, logger); inspector != nil {
		opts = append(opts, studio.WithInspector(inspector))
	}

	return &Dependencies{
		Studio:      studio.New(creds, client, store, opts...),
		Credentials: creds,
		Storage:     store,
	}, nil
}

// initStorage creates the appropriate storage backend based on configuration.
func initStorage(ctx context.Context, cfg *config.Config, logger *slog.Logger) (storage.Storage, error) {
	if cfg.S3Enabled() {
		s3Cfg := storage.S3Config{
			Bucket:          cfg.S3Bucket,
			Region:          cfg.S3Region,
			Endpoint:        cfg.S3Endpoint,
			AccessKeyID:     cfg.AWSAccessKeyID,
			SecretAccessKey: cfg.AWSSecretAccessKey,
			Prefix:          cfg.S3Prefix,
		}
		s3Store, err := storage.NewS3Storage(ctx, cfg.TempDir, s3Cfg)
		if err != nil {
			return nil, fmt.Errorf("create S3 storage: %w", err)
		}
		logger.Info("S3 storage configured",
			slog.String("bucket", cfg.S3Bucket),
			slog.String("region", cfg.S3Region),
		)
		return s3Store, nil
	}

	localStore, err := storage.NewLocalStorage(cfg.TempDir)
	if err != nil {
		return nil, fmt.Errorf("create local storage: %w", err)
	}
	logger.Info("local storage configured",
		slog.String("temp_dir", cfg.TempDir),
	)
	return localStore, nil
}

// initInspector returns nil when inspection is disabled or ffmpeg is missing.
func initInspector(cfg *config.Config, logger *slog.Logger) media.Inspector {
	if !cfg.MediaProbe {
		return nil
	}
	inspector := media.NewFFmpegInspector(cfg.FFmpegPath, cfg.FFprobePath)
	if !inspector.Available() {
		logger.Warn("MEDIA_PROBE is enabled but ffmpeg/ffprobe were not found, inspection disabled")
		return nil
	}
	logger.Info("media inspection enabled")
	return inspector
}
