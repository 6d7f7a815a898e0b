package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/oshokin/spotify-grabber/internal/app"
	"github.com/oshokin/spotify-grabber/internal/config"
	"github.com/oshokin/spotify-grabber/internal/logger"
	"github.com/oshokin/spotify-grabber/internal/version"
)

// errNothingToDownload is returned when neither inputs nor --liked are given.
var errNothingToDownload = errors.New("requires at least one URL, URI, search query or .txt file, or --liked")

var (
	//nolint:gochecknoglobals // It is required for configuration initialization before the application starts.
	configFilenameFromFlag string

	//nolint:gochecknoglobals,lll // It is initialized once during the application's startup and shared across the command execution logic.
	appConfig *config.Config

	//nolint:gochecknoglobals,lll // Cobra command requires a global definition for proper command-line parsing and execution.
	rootCmd = &cobra.Command{
		Use:   "spotify-grabber [flags] {urls | uris | queries | files.txt}",
		Short: "Download tracks, albums, playlists, podcasts, or an entire artist's catalog.",
		Long: `Spotify Grabber is a CLI tool for downloading audio content from Spotify.
It supports downloading:
- Individual tracks and podcast episodes
- Full albums
- Playlists and your liked songs
- Podcast shows
- Complete catalogs of an artist
- The best match of a free-text search

Inputs may be open.spotify.com links, spotify: URIs, search text, or .txt files listing any of those.
Every item is recorded in a download archive so repeated runs only fetch what is new.`,
		Version:          version.Full(),
		Args:             validateArgs,
		PersistentPreRun: initConfig,
		Run: func(cmd *cobra.Command, inputs []string) {
			if err := bindFlagsToConfig(cmd.Flags(), appConfig); err != nil {
				logger.Fatalf(cmd.Context(), "Failed to parse flags: %v", err)
			}

			app.ExecuteRootCommand(cmd.Context(), appConfig, inputs)
		},
	}
)

// Execute executes the root command.
func Execute() {
	signals := []os.Signal{syscall.SIGHUP, syscall.SIGINT, syscall.SIGTERM}
	ctx, stop := signal.NotifyContext(context.Background(), signals...)

	defer func() {
		_ = logger.Logger().Sync()
	}()

	defer stop()

	go func() {
		defer stop()

		err := rootCmd.ExecuteContext(ctx)
		cobra.CheckErr(err)
	}()

	<-ctx.Done()
}

//nolint:gochecknoinits // Cobra requires the init function to set up flags before the command is executed.
func init() {
	rootCmd.PersistentFlags().StringVarP(
		&configFilenameFromFlag,
		"config",
		"c",
		"",
		fmt.Sprintf("path to the configuration file (default is '%s')",
			config.DefaultConfigFilename))

	addDownloadFlags(rootCmd.Flags())
}

// addDownloadFlags registers the flags that override configuration keys.
func addDownloadFlags(flags *pflag.FlagSet) {
	flags.StringP(
		"output",
		"o",
		"",
		"directory to save downloaded music (the path will be created if it doesn't exist).")

	flags.StringP(
		"format",
		"f",
		"",
		"output format: copy, ogg, mp3, flac, aac, m4a or opus.")

	flags.StringP(
		"quality",
		"q",
		"",
		"stream quality: auto, normal, high or very_high.")

	flags.BoolP(
		"lyrics",
		"l",
		false,
		"save lyrics next to the tracks if available.")

	flags.StringP(
		"speed-limit",
		"s",
		"",
		"set download speed limit, for example: 500KB, 1MB, 1.5MB.")

	flags.Bool(
		"m3u8",
		false,
		"export downloaded items into an M3U8 playlist.")

	flags.Bool(
		"real-time",
		false,
		"pace downloads to the playback rate of each item.")

	flags.Bool(
		"skip-previously-downloaded",
		false,
		"skip items recorded in the global download archive.")

	flags.BoolP(
		"liked",
		"L",
		false,
		"download the liked songs of the current user.")

	flags.String(
		"search-type",
		"",
		"restrict search queries to one kind: track, album, artist or playlist.")
}

func validateArgs(cmd *cobra.Command, args []string) error {
	if len(args) > 0 {
		return nil
	}

	if liked, err := cmd.Flags().GetBool("liked"); err == nil && liked {
		return nil
	}

	return errNothingToDownload
}

func initConfig(cmd *cobra.Command, _ []string) {
	var err error

	appConfig, err = config.LoadConfig(configFilenameFromFlag)
	if err != nil {
		logger.Fatalf(cmd.Context(), "Failed to load configuration: %v", err)
	}

	// The level is validated later, an unknown value falls back to info.
	level, _ := logger.ParseLogLevel(appConfig.LogLevel)
	logger.SetLevel(level)
}

func bindFlagsToConfig(flags *pflag.FlagSet, cfg *config.Config) error {
	if isFlagChanged(flags, "output") {
		cfg.RootPath, _ = flags.GetString("output")
	}

	if isFlagChanged(flags, "format") {
		cfg.DownloadFormat, _ = flags.GetString("format")
	}

	if isFlagChanged(flags, "quality") {
		cfg.DownloadQuality, _ = flags.GetString("quality")
	}

	if isFlagChanged(flags, "lyrics") {
		cfg.DownloadLyrics, _ = flags.GetBool("lyrics")
	}

	if isFlagChanged(flags, "speed-limit") {
		cfg.DownloadSpeedLimit, _ = flags.GetString("speed-limit")
	}

	if isFlagChanged(flags, "m3u8") {
		cfg.ExportM3U8, _ = flags.GetBool("m3u8")
	}

	if isFlagChanged(flags, "real-time") {
		cfg.DownloadRealTime, _ = flags.GetBool("real-time")
	}

	if isFlagChanged(flags, "skip-previously-downloaded") {
		cfg.SkipPreviouslyDownloaded, _ = flags.GetBool("skip-previously-downloaded")
	}

	if isFlagChanged(flags, "liked") {
		cfg.DownloadLiked, _ = flags.GetBool("liked")
	}

	if isFlagChanged(flags, "search-type") {
		cfg.SearchType, _ = flags.GetString("search-type")
	}

	return config.ValidateConfig(cfg)
}

func isFlagChanged(flags *pflag.FlagSet, name string) bool {
	flag := flags.Lookup(name)

	return flag != nil && flag.Changed
}
