package cmd

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oshokin/spotify-grabber/internal/config"
	"github.com/oshokin/spotify-grabber/internal/constants"
)

const testBaseConfigContent = `
client_id: "config_client"
client_secret: "config_secret"
refresh_token: "config_refresh"
root_path: "/config/output"
download_format: "ogg"
download_quality: "high"
download_lyrics: false
download_speed_limit: "500KB"
export_m3u8: false
skip_previously_downloaded: false
log_level: "info"
`

// loadTestConfig writes content to a temporary file and loads it.
func loadTestConfig(t *testing.T, content string) *config.Config {
	t.Helper()

	configPath := filepath.Join(t.TempDir(), "test-config.yaml")

	//nolint:gosec // It's a test file.
	err := os.WriteFile(configPath, []byte(content), constants.DefaultFilePermissions)
	require.NoError(t, err)

	cfg, err := config.LoadConfig(configPath)
	require.NoError(t, err)

	return cfg
}

// newTestCommand creates a command with the same flags as the root command.
func newTestCommand() *cobra.Command {
	testCmd := &cobra.Command{Use: "test"}
	addDownloadFlags(testCmd.Flags())

	return testCmd
}

// TestFlagOverrides tests that command-line flags correctly override configuration file values.
//
//nolint:funlen,nolintlint,tparallel // It's a comprehensive integration test. Cannot run in parallel due to Viper global state.
func TestFlagOverrides(t *testing.T) {
	tests := []struct {
		name           string
		flags          map[string]string
		expectedConfig func(*testing.T, *config.Config)
	}{
		{
			name:  "no flags - use config values",
			flags: map[string]string{},
			expectedConfig: func(t *testing.T, cfg *config.Config) {
				t.Helper()
				assert.Equal(t, "/config/output", cfg.RootPath)
				assert.Equal(t, config.FormatOGG, cfg.DownloadFormat)
				assert.Equal(t, config.QualityHigh, cfg.DownloadQuality)
				assert.False(t, cfg.DownloadLyrics)
				assert.Equal(t, "500KB", cfg.DownloadSpeedLimit)
				assert.False(t, cfg.ExportM3U8)
				assert.False(t, cfg.DownloadLiked)
			},
		},
		{
			name:  "output flag only - override root path",
			flags: map[string]string{"output": "/flag/output"},
			expectedConfig: func(t *testing.T, cfg *config.Config) {
				t.Helper()
				assert.Equal(t, "/flag/output", cfg.RootPath)
				assert.Equal(t, config.FormatOGG, cfg.DownloadFormat)
			},
		},
		{
			name:  "format flag is normalized",
			flags: map[string]string{"format": " MP3 "},
			expectedConfig: func(t *testing.T, cfg *config.Config) {
				t.Helper()
				assert.Equal(t, config.FormatMP3, cfg.DownloadFormat)
				assert.Equal(t, "/config/output", cfg.RootPath)
			},
		},
		{
			name:  "quality flag only",
			flags: map[string]string{"quality": "very_high"},
			expectedConfig: func(t *testing.T, cfg *config.Config) {
				t.Helper()
				assert.Equal(t, config.QualityVeryHigh, cfg.DownloadQuality)
			},
		},
		{
			name:  "lyrics and speed limit",
			flags: map[string]string{"lyrics": "true", "speed-limit": "1MB"},
			expectedConfig: func(t *testing.T, cfg *config.Config) {
				t.Helper()
				assert.True(t, cfg.DownloadLyrics)
				assert.Equal(t, "1MB", cfg.DownloadSpeedLimit)
				assert.Equal(t, int64(1000000), cfg.ParsedDownloadSpeedLimit)
			},
		},
		{
			name: "playlist and archive switches",
			flags: map[string]string{
				"m3u8":                       "true",
				"real-time":                  "true",
				"skip-previously-downloaded": "true",
			},
			expectedConfig: func(t *testing.T, cfg *config.Config) {
				t.Helper()
				assert.True(t, cfg.ExportM3U8)
				assert.True(t, cfg.DownloadRealTime)
				assert.True(t, cfg.SkipPreviouslyDownloaded)
			},
		},
		{
			name:  "liked songs and search type",
			flags: map[string]string{"liked": "true", "search-type": "Album"},
			expectedConfig: func(t *testing.T, cfg *config.Config) {
				t.Helper()
				assert.True(t, cfg.DownloadLiked)
				assert.Equal(t, config.SearchTypeAlbum, cfg.SearchType)
			},
		},
		{
			name:  "lyrics false flag - explicit false override",
			flags: map[string]string{"lyrics": "false"},
			expectedConfig: func(t *testing.T, cfg *config.Config) {
				t.Helper()
				assert.False(t, cfg.DownloadLyrics)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := loadTestConfig(t, testBaseConfigContent)
			testCmd := newTestCommand()

			for flagName, flagValue := range tt.flags {
				require.NoError(t, testCmd.Flags().Set(flagName, flagValue), "failed to set flag %s", flagName)
			}

			err := bindFlagsToConfig(testCmd.Flags(), cfg)
			require.NoError(t, err)

			tt.expectedConfig(t, cfg)
		})
	}
}

// TestFlagOverrides_InvalidValues tests that invalid flag values are caught during validation.
//
//nolint:nolintlint,tparallel // Cannot run in parallel due to Viper global state.
func TestFlagOverrides_InvalidValues(t *testing.T) {
	invalidTests := []struct {
		name          string
		flagName      string
		flagValue     string
		expectedError error
	}{
		{
			name:          "invalid format",
			flagName:      "format",
			flagValue:     "wav",
			expectedError: config.ErrInvalidDownloadFormat,
		},
		{
			name:          "invalid quality",
			flagName:      "quality",
			flagValue:     "lossless",
			expectedError: config.ErrInvalidDownloadQuality,
		},
		{
			name:          "invalid search type",
			flagName:      "search-type",
			flagValue:     "podcast",
			expectedError: config.ErrInvalidSearchType,
		},
	}

	for _, tt := range invalidTests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := loadTestConfig(t, testBaseConfigContent)
			testCmd := newTestCommand()

			require.NoError(t, testCmd.Flags().Set(tt.flagName, tt.flagValue))

			err := bindFlagsToConfig(testCmd.Flags(), cfg)
			require.ErrorIs(t, err, tt.expectedError)
		})
	}
}

// TestFlagOverrides_InvalidSpeedLimit tests that an unparsable speed limit is rejected.
//
//nolint:nolintlint,tparallel // Cannot run in parallel due to Viper global state.
func TestFlagOverrides_InvalidSpeedLimit(t *testing.T) {
	cfg := loadTestConfig(t, testBaseConfigContent)
	testCmd := newTestCommand()

	require.NoError(t, testCmd.Flags().Set("speed-limit", "invalid-speed"))

	err := bindFlagsToConfig(testCmd.Flags(), cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse download speed limit")
}

// TestBindFlagsToConfig_MissingRefreshToken tests that downloads require a completed login.
//
//nolint:nolintlint,tparallel // Cannot run in parallel due to Viper global state.
func TestBindFlagsToConfig_MissingRefreshToken(t *testing.T) {
	cfg := loadTestConfig(t, `
client_id: "config_client"
client_secret: "config_secret"
`)

	err := bindFlagsToConfig(newTestCommand().Flags(), cfg)
	require.ErrorIs(t, err, config.ErrEmptyRefreshToken)
}

// TestBindFlagsToConfig_EmptyFlagSet tests handling of empty flag set.
func TestBindFlagsToConfig_EmptyFlagSet(t *testing.T) {
	t.Parallel()

	cfg := &config.Config{
		ClientID:           "client",
		ClientSecret:       "secret",
		RefreshToken:       "refresh",
		RedirectURI:        config.DefaultRedirectURI,
		RootPath:           t.TempDir(),
		OutputSingle:       config.DefaultOutputSingle,
		OutputAlbum:        config.DefaultOutputAlbum,
		OutputPlaylist:     config.DefaultOutputPlaylist,
		OutputPlaylistExt:  config.DefaultOutputPlaylistExt,
		OutputLikedSongs:   config.DefaultOutputLikedSongs,
		DownloadFormat:     config.FormatCopy,
		DownloadQuality:    config.QualityAuto,
		LogLevel:           "info",
		RetryAttemptsCount: 3,
		BulkWaitTime:       "1s",
		MaxRetryPause:      "3s",
		SearchLimit:        10,
	}

	emptyFlags := pflag.NewFlagSet("test", pflag.ContinueOnError)

	err := bindFlagsToConfig(emptyFlags, cfg)
	require.NoError(t, err)
	assert.Equal(t, cfg.RootPath, cfg.ParsedRootPath)
}

// TestValidateArgs tests that a run needs inputs or the liked songs flag.
func TestValidateArgs(t *testing.T) {
	t.Parallel()

	testCmd := &cobra.Command{Use: "test"}
	testCmd.Flags().BoolP("liked", "L", false, "download liked songs")

	require.ErrorIs(t, validateArgs(testCmd, nil), errNothingToDownload)
	require.NoError(t, validateArgs(testCmd, []string{"spotify:track:4uLU6hMCjMI75M1A2tKUQC"}))

	require.NoError(t, testCmd.Flags().Set("liked", "true"))
	require.NoError(t, validateArgs(testCmd, nil))
}
