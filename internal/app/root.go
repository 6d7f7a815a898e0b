package app

import (
	"context"

	"github.com/oshokin/spotify-grabber/internal/archive"
	spotify_client "github.com/oshokin/spotify-grabber/internal/client/spotify"
	"github.com/oshokin/spotify-grabber/internal/config"
	"github.com/oshokin/spotify-grabber/internal/logger"
	spotify_service "github.com/oshokin/spotify-grabber/internal/service/spotify"
)

// ExecuteRootCommand is the entry point for the application.
// It initializes the Spotify client, sets up the service components,
// and downloads the provided inputs followed by the liked songs when requested.
func ExecuteRootCommand(ctx context.Context, cfg *config.Config, inputs []string) {
	spotifyClient, err := spotify_client.NewClient(ctx, cfg)
	if err != nil {
		logger.Fatalf(ctx, "Failed to initialize spotify client: %v", err)
	}

	index := archive.NewIndex(archive.Options{
		GlobalPath:       cfg.ParsedSongArchivePath,
		DisableGlobal:    cfg.DisableSongArchive,
		DisableDirectory: cfg.DisableDirectoryArchives,
	})

	s := spotify_service.NewService(
		spotify_service.NewRuntimeContext(cfg, spotifyClient, index),
		spotify_service.NewURLProcessor(),
		spotify_service.NewTemplateManager(cfg),
		spotify_service.NewTagProcessor(),
		spotify_service.NewFFmpegTranscoder(cfg),
		spotify_service.NewConsoleListener(),
	)

	// Ensure statistics are ALWAYS printed, even on panic.
	defer func() {
		if r := recover(); r != nil {
			logger.Errorf(ctx, "Panic recovered: %v", r)
		}

		s.PrintDownloadSummary(ctx)
	}()

	if len(inputs) > 0 {
		s.DownloadURLs(ctx, inputs)
	}

	if cfg.DownloadLiked && ctx.Err() == nil {
		s.DownloadLiked(ctx)
	}
}
