package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"strings"
	"time"

	"github.com/adrg/xdg"
	"github.com/dustin/go-humanize"
	"github.com/spf13/viper"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"

	"github.com/oshokin/spotify-grabber/internal/constants"
	"github.com/oshokin/spotify-grabber/internal/logger"
	"github.com/oshokin/spotify-grabber/internal/utils"
)

// Config holds all configuration settings.
type Config struct {
	// ClientID is the OAuth client identifier of the registered application.
	ClientID string `mapstructure:"client_id"`
	// ClientSecret is the OAuth client secret of the registered application.
	ClientSecret string `mapstructure:"client_secret"`
	// RefreshToken is the long-lived token obtained by "auth login".
	RefreshToken string `mapstructure:"refresh_token"`
	// RedirectURI is the OAuth redirect URI registered for the application.
	RedirectURI string `mapstructure:"redirect_uri"`
	// Market is the ISO 3166-1 country code used for catalog lookups; empty means the account country.
	Market string `mapstructure:"market"`
	// KeyServiceURL is the endpoint of the audio key service that unlocks encrypted streams.
	KeyServiceURL string `mapstructure:"key_service_url"`

	// RootPath is the base directory for music downloads.
	RootPath string `mapstructure:"root_path"`
	// RootPodcastPath is the base directory for podcast episode downloads.
	RootPodcastPath string `mapstructure:"root_podcast_path"`
	// TempDownloadDir is an optional scratch directory for in-flight downloads.
	TempDownloadDir string `mapstructure:"temp_download_dir"`

	// OutputSingle is the path template for individually requested tracks.
	OutputSingle string `mapstructure:"output_single"`
	// OutputAlbum is the path template for album tracks.
	OutputAlbum string `mapstructure:"output_album"`
	// OutputPlaylist is the path template for playlist tracks.
	OutputPlaylist string `mapstructure:"output_playlist"`
	// OutputPlaylistExt is the path template for numbered playlist tracks.
	OutputPlaylistExt string `mapstructure:"output_playlist_ext"`
	// OutputLikedSongs is the path template for liked songs.
	OutputLikedSongs string `mapstructure:"output_liked_songs"`
	// MaxFilenameLength limits every rendered path component in runes; 0 disables the limit.
	MaxFilenameLength int `mapstructure:"max_filename_length"`

	// DownloadFormat is the output container: copy, ogg, mp3, flac, aac, m4a or opus.
	DownloadFormat string `mapstructure:"download_format"`
	// DownloadQuality is the stream quality tier: auto, normal, high or very_high.
	DownloadQuality string `mapstructure:"download_quality"`
	// TranscodeBitrate is passed to ffmpeg as -b:a; "auto" lets ffmpeg pick.
	TranscodeBitrate string `mapstructure:"transcode_bitrate"`
	// FFmpegPath is the ffmpeg executable used for transcoding.
	FFmpegPath string `mapstructure:"ffmpeg_path"`
	// FFmpegLogLevel is passed to ffmpeg as -loglevel.
	FFmpegLogLevel string `mapstructure:"ffmpeg_log_level"`
	// DownloadRealTime paces downloads to the playback rate of the track.
	DownloadRealTime bool `mapstructure:"download_real_time"`
	// DownloadSpeedLimit sets the maximum download speed (e.g., "1MB", "500KB").
	DownloadSpeedLimit string `mapstructure:"download_speed_limit"`
	// DownloadParentAlbum downloads the whole album when a single track is requested.
	DownloadParentAlbum bool `mapstructure:"download_parent_album"`
	// NoCompilationAlbums skips albums typed as compilations.
	NoCompilationAlbums bool `mapstructure:"no_compilation_albums"`
	// BulkWaitTime is the pause between two downloaded items.
	BulkWaitTime string `mapstructure:"bulk_wait_time"`
	// RetryAttemptsCount is the number of attempts for every remote call.
	RetryAttemptsCount int64 `mapstructure:"retry_attempts_count"`
	// MaxRetryPause is the fixed pause between two attempts of a remote call.
	MaxRetryPause string `mapstructure:"max_retry_pause"`
	// SearchLimit is the number of results requested per kind for free-text input.
	SearchLimit int `mapstructure:"search_limit"`
	// SearchType restricts free-text input to one kind: track, album, artist or playlist; empty means any.
	SearchType string `mapstructure:"search_type"`

	// RegexEnabled turns on the name-based skip patterns below.
	RegexEnabled bool `mapstructure:"regex_enabled"`
	// RegexTrackSkip skips tracks whose name matches.
	RegexTrackSkip string `mapstructure:"regex_track_skip"`
	// RegexEpisodeSkip skips episodes whose name matches.
	RegexEpisodeSkip string `mapstructure:"regex_episode_skip"`
	// RegexAlbumSkip skips albums whose name matches.
	RegexAlbumSkip string `mapstructure:"regex_album_skip"`

	// SongArchiveLocation is the global download archive file; empty means the user data directory.
	SongArchiveLocation string `mapstructure:"song_archive_location"`
	// DisableSongArchive turns off the global archive.
	DisableSongArchive bool `mapstructure:"disable_song_archive"`
	// DisableDirectoryArchives turns off the per-directory archives.
	DisableDirectoryArchives bool `mapstructure:"disable_directory_archives"`
	// SkipExisting skips items already present in the destination directory.
	SkipExisting bool `mapstructure:"skip_existing"`
	// SkipPreviouslyDownloaded skips items present in the global archive.
	SkipPreviouslyDownloaded bool `mapstructure:"skip_previously_downloaded"`

	// ExportM3U8 writes downloaded items into an extended M3U playlist.
	ExportM3U8 bool `mapstructure:"export_m3u8"`
	// M3U8Location is the directory for playlist files; empty means next to the tracks.
	M3U8Location string `mapstructure:"m3u8_location"`
	// M3U8RelativePaths writes entries relative to the playlist file.
	M3U8RelativePaths bool `mapstructure:"m3u8_relative_paths"`
	// LikedSongsArchiveM3U8 keeps one cumulative playlist for liked songs.
	LikedSongsArchiveM3U8 bool `mapstructure:"liked_songs_archive_m3u8"`

	// DownloadLyrics indicates whether to download lyrics for tracks.
	DownloadLyrics bool `mapstructure:"download_lyrics"`
	// LyricsLocation is the directory for .lrc files; empty means next to the tracks.
	LyricsLocation string `mapstructure:"lyrics_location"`
	// LyricsMDHeader adds title/artist/album/length tags to .lrc files.
	LyricsMDHeader bool `mapstructure:"lyrics_md_header"`

	// SaveGenres writes artist genres into the tags.
	SaveGenres bool `mapstructure:"save_genres"`
	// AllGenres writes every genre instead of the first one.
	AllGenres bool `mapstructure:"all_genres"`
	// GenreDelimiter joins multiple genres.
	GenreDelimiter string `mapstructure:"genre_delimiter"`
	// ArtistDelimiter joins multiple artists.
	ArtistDelimiter string `mapstructure:"artist_delimiter"`
	// DiscTrackTotals writes "n/total" for track and disc numbers.
	DiscTrackTotals bool `mapstructure:"disc_track_totals"`
	// AlbumArtJPGFile writes cover.jpg next to the tracks.
	AlbumArtJPGFile bool `mapstructure:"album_art_jpg_file"`

	// LogLevel specifies the logging verbosity level.
	LogLevel string `mapstructure:"log_level"`

	// DownloadLiked requests the current user's liked songs (set from the command line).
	DownloadLiked bool
	// ParsedBulkWaitTime is the parsed pause between items.
	ParsedBulkWaitTime time.Duration
	// ParsedMaxRetryPause is the parsed pause between attempts.
	ParsedMaxRetryPause time.Duration
	// ParsedDownloadSpeedLimit is the parsed download speed limit in bytes per second.
	ParsedDownloadSpeedLimit int64
	// ParsedLogLevel is the parsed zap log level.
	ParsedLogLevel zapcore.Level
	// ParsedTrackSkipRegex is compiled from RegexTrackSkip when filtering is enabled.
	ParsedTrackSkipRegex *regexp.Regexp
	// ParsedEpisodeSkipRegex is compiled from RegexEpisodeSkip when filtering is enabled.
	ParsedEpisodeSkipRegex *regexp.Regexp
	// ParsedAlbumSkipRegex is compiled from RegexAlbumSkip when filtering is enabled.
	ParsedAlbumSkipRegex *regexp.Regexp
	// ParsedRootPath is the absolute music root.
	ParsedRootPath string
	// ParsedRootPodcastPath is the absolute podcast root.
	ParsedRootPodcastPath string
	// ParsedTempDownloadDir is the absolute scratch directory, empty when unset.
	ParsedTempDownloadDir string
	// ParsedSongArchivePath is the absolute path of the global archive.
	ParsedSongArchivePath string
	// ParsedM3U8Location is the absolute playlist directory, empty when unset.
	ParsedM3U8Location string
	// ParsedLyricsLocation is the absolute lyrics directory, empty when unset.
	ParsedLyricsLocation string
}

const (
	// DefaultConfigFilename is the default name of the configuration file.
	DefaultConfigFilename = ".spotify-grabber.yaml"

	// DefaultRedirectURI is the loopback redirect used by "auth login".
	DefaultRedirectURI = "http://127.0.0.1:8898/callback"

	// DefaultOutputSingle is the default template for individually requested tracks.
	DefaultOutputSingle = "{artist}/{album}/{artist}_{song_name}"
	// DefaultOutputAlbum is the default template for album tracks.
	DefaultOutputAlbum = "{artist}/{album}/{album_num}_{artist}_{song_name}"
	// DefaultOutputPlaylist is the default template for playlist tracks.
	DefaultOutputPlaylist = "{playlist}/{artist}_{song_name}"
	// DefaultOutputPlaylistExt is the default template for numbered playlist tracks.
	DefaultOutputPlaylistExt = "{playlist}/{playlist_num}_{artist}_{song_name}"
	// DefaultOutputLikedSongs is the default template for liked songs.
	DefaultOutputLikedSongs = "Liked Songs/{artist}_{song_name}"

	// DefaultMaxLogLength is the default maximum size (in bytes) for logged HTTP dumps.
	DefaultMaxLogLength = 1 * 1024 * 1024 // 1 MB

	// appDirectoryName is the directory created under the user data directory.
	appDirectoryName = "spotify-grabber"
	// globalArchiveFilename is the name of the global archive file.
	globalArchiveFilename = "track_archive"
)

// Download formats.
const (
	FormatCopy = "copy"
	FormatOGG  = "ogg"
	FormatMP3  = "mp3"
	FormatFLAC = "flac"
	FormatAAC  = "aac"
	FormatM4A  = "m4a"
	FormatOpus = "opus"
)

// Search kinds accepted by search_type.
const (
	SearchTypeAny      = ""
	SearchTypeTrack    = "track"
	SearchTypeAlbum    = "album"
	SearchTypeArtist   = "artist"
	SearchTypePlaylist = "playlist"
)

// Download quality tiers.
const (
	QualityAuto     = "auto"
	QualityNormal   = "normal"
	QualityHigh     = "high"
	QualityVeryHigh = "very_high"
)

var (
	//nolint:gochecknoglobals // Immutable list of accepted download formats.
	supportedFormats = []string{FormatCopy, FormatOGG, FormatMP3, FormatFLAC, FormatAAC, FormatM4A, FormatOpus}

	//nolint:gochecknoglobals // Immutable list of accepted quality tiers.
	supportedQualities = []string{QualityAuto, QualityNormal, QualityHigh, QualityVeryHigh}

	//nolint:gochecknoglobals // Immutable list of accepted search kinds.
	supportedSearchTypes = []string{SearchTypeAny, SearchTypeTrack, SearchTypeAlbum, SearchTypeArtist, SearchTypePlaylist}
)

// Static error definitions for better error handling.
var (
	// ErrEmptyClientID indicates that the OAuth client identifier is missing.
	ErrEmptyClientID = errors.New("client_id cannot be empty")
	// ErrEmptyClientSecret indicates that the OAuth client secret is missing.
	ErrEmptyClientSecret = errors.New("client_secret cannot be empty")
	// ErrEmptyRefreshToken indicates that no refresh token was saved yet.
	ErrEmptyRefreshToken = errors.New("refresh_token cannot be empty, run 'spotify-grabber auth login' first")
	// ErrEmptyRedirectURI indicates that the redirect URI is missing.
	ErrEmptyRedirectURI = errors.New("redirect_uri cannot be empty")
	// ErrInvalidDownloadFormat indicates that the download format is not supported.
	ErrInvalidDownloadFormat = errors.New("invalid download_format")
	// ErrInvalidDownloadQuality indicates that the quality tier is not supported.
	ErrInvalidDownloadQuality = errors.New("invalid download_quality")
	// ErrInvalidMaxFilenameLength indicates a negative filename limit.
	ErrInvalidMaxFilenameLength = errors.New("max_filename_length cannot be negative")
	// ErrEmptyTemplate indicates that an output template is empty.
	ErrEmptyTemplate = errors.New("output template cannot be empty")
	// ErrUnknownLogLevel indicates that the log level is not recognized.
	ErrUnknownLogLevel = errors.New("unknown log level")
	// ErrInvalidRetryAttempts indicates that the retry attempts count is invalid.
	ErrInvalidRetryAttempts = errors.New("retry attempts count must a positive integer")
	// ErrInvalidBulkWaitTime indicates a negative pause between items.
	ErrInvalidBulkWaitTime = errors.New("bulk_wait_time cannot be negative")
	// ErrInvalidMaxRetryPause indicates that the retry pause duration is invalid.
	ErrInvalidMaxRetryPause = errors.New("max_retry_pause must be positive")
	// ErrInvalidSearchLimit indicates a search limit outside 1..50.
	ErrInvalidSearchLimit = errors.New("search_limit must be between 1 and 50")
	// ErrInvalidSearchType indicates an unknown search kind.
	ErrInvalidSearchType = errors.New("invalid search_type")
)

const maxSearchLimit = 50

// LoadConfig loads configuration settings from a YAML file.
// Keys missing from the file take their documented defaults.
func LoadConfig(configFilename string) (*Config, error) {
	if configFilename == "" {
		configFilename = DefaultConfigFilename
	}

	setDefaults()
	viper.SetConfigFile(configFilename)

	if err := viper.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config from file: %w", err)
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}

// ValidateConfig checks the configuration for validity and sets derived fields.
//
//nolint:funlen,gocognit,cyclop // Validation functions naturally have high complexity and length due to sequential checks.
func ValidateConfig(cfg *Config) error {
	if err := ValidateAuthConfig(cfg); err != nil {
		return err
	}

	if strings.TrimSpace(cfg.RefreshToken) == "" {
		return ErrEmptyRefreshToken
	}

	cfg.DownloadFormat = strings.ToLower(strings.TrimSpace(cfg.DownloadFormat))
	if !slices.Contains(supportedFormats, cfg.DownloadFormat) {
		return fmt.Errorf("%w: '%s', must be one of %s",
			ErrInvalidDownloadFormat, cfg.DownloadFormat, strings.Join(supportedFormats, ", "))
	}

	cfg.DownloadQuality = strings.ToLower(strings.TrimSpace(cfg.DownloadQuality))
	if !slices.Contains(supportedQualities, cfg.DownloadQuality) {
		return fmt.Errorf("%w: '%s', must be one of %s",
			ErrInvalidDownloadQuality, cfg.DownloadQuality, strings.Join(supportedQualities, ", "))
	}

	if cfg.MaxFilenameLength < 0 {
		return ErrInvalidMaxFilenameLength
	}

	for key, template := range map[string]string{
		"output_single":       cfg.OutputSingle,
		"output_album":        cfg.OutputAlbum,
		"output_playlist":     cfg.OutputPlaylist,
		"output_playlist_ext": cfg.OutputPlaylistExt,
		"output_liked_songs":  cfg.OutputLikedSongs,
	} {
		if strings.TrimSpace(template) == "" {
			return fmt.Errorf("%w: %s", ErrEmptyTemplate, key)
		}
	}

	parsedLogLevel, isLogLevelCorrect := logger.ParseLogLevel(cfg.LogLevel)
	if !isLogLevelCorrect {
		return fmt.Errorf("%w: '%s'", ErrUnknownLogLevel, cfg.LogLevel)
	}

	cfg.ParsedLogLevel = parsedLogLevel

	var err error

	if cfg.ParsedDownloadSpeedLimit, err = parseSpeedLimit(cfg.DownloadSpeedLimit); err != nil {
		return err
	}

	if cfg.RetryAttemptsCount <= 0 {
		return ErrInvalidRetryAttempts
	}

	cfg.ParsedBulkWaitTime, err = time.ParseDuration(cfg.BulkWaitTime)
	if err != nil {
		return fmt.Errorf("failed to parse bulk wait time: %w", err)
	}

	if cfg.ParsedBulkWaitTime < 0 {
		return ErrInvalidBulkWaitTime
	}

	cfg.ParsedMaxRetryPause, err = time.ParseDuration(cfg.MaxRetryPause)
	if err != nil {
		return fmt.Errorf("failed to parse max retry pause: %w", err)
	}

	if cfg.ParsedMaxRetryPause <= 0 {
		return ErrInvalidMaxRetryPause
	}

	if cfg.SearchLimit <= 0 || cfg.SearchLimit > maxSearchLimit {
		return ErrInvalidSearchLimit
	}

	cfg.SearchType = strings.ToLower(strings.TrimSpace(cfg.SearchType))
	if !slices.Contains(supportedSearchTypes, cfg.SearchType) {
		return fmt.Errorf("%w: '%s', must be one of %s",
			ErrInvalidSearchType, cfg.SearchType, strings.Join(supportedSearchTypes[1:], ", "))
	}

	if err = compileSkipPatterns(cfg); err != nil {
		return err
	}

	return resolvePaths(cfg)
}

// ValidateAuthConfig checks the settings required to talk to the authorization server.
func ValidateAuthConfig(cfg *Config) error {
	cfg.ClientID = strings.TrimSpace(cfg.ClientID)
	if cfg.ClientID == "" {
		return ErrEmptyClientID
	}

	cfg.ClientSecret = strings.TrimSpace(cfg.ClientSecret)
	if cfg.ClientSecret == "" {
		return ErrEmptyClientSecret
	}

	cfg.RedirectURI = strings.TrimSpace(cfg.RedirectURI)
	if cfg.RedirectURI == "" {
		return ErrEmptyRedirectURI
	}

	return nil
}

// SaveConfig saves the refresh token to the configuration file while preserving the original format and order.
func SaveConfig(cfg *Config) error {
	configFile := getConfigFilePath()

	originalContent, err := os.ReadFile(configFile)
	if err != nil {
		return handleMissingConfigFile(configFile, cfg, err)
	}

	// Parse YAML while preserving order using yaml.Node.
	var node yaml.Node
	if err = yaml.Unmarshal(originalContent, &node); err != nil {
		return fmt.Errorf("failed to parse YAML: %w", err)
	}

	setValueInNode(&node, "refresh_token", cfg.RefreshToken)

	newContent, err := yaml.Marshal(&node)
	if err != nil {
		return fmt.Errorf("failed to marshal YAML: %w", err)
	}

	if err = os.WriteFile(configFile, newContent, constants.DefaultFilePermissions); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

func setDefaults() {
	viper.SetDefault("redirect_uri", DefaultRedirectURI)
	viper.SetDefault("root_path", filepath.Join("~", "Music", "Spotify Grabber Music"))
	viper.SetDefault("root_podcast_path", filepath.Join("~", "Music", "Spotify Grabber Podcasts"))
	viper.SetDefault("output_single", DefaultOutputSingle)
	viper.SetDefault("output_album", DefaultOutputAlbum)
	viper.SetDefault("output_playlist", DefaultOutputPlaylist)
	viper.SetDefault("output_playlist_ext", DefaultOutputPlaylistExt)
	viper.SetDefault("output_liked_songs", DefaultOutputLikedSongs)
	viper.SetDefault("download_format", FormatCopy)
	viper.SetDefault("download_quality", QualityAuto)
	viper.SetDefault("transcode_bitrate", "auto")
	viper.SetDefault("ffmpeg_path", "ffmpeg")
	viper.SetDefault("ffmpeg_log_level", "error")
	viper.SetDefault("bulk_wait_time", "1s")
	viper.SetDefault("retry_attempts_count", 3)
	viper.SetDefault("max_retry_pause", "5s")
	viper.SetDefault("search_limit", 10)
	viper.SetDefault("skip_existing", true)
	viper.SetDefault("m3u8_relative_paths", true)
	viper.SetDefault("liked_songs_archive_m3u8", true)
	viper.SetDefault("download_lyrics", true)
	viper.SetDefault("save_genres", true)
	viper.SetDefault("genre_delimiter", ", ")
	viper.SetDefault("artist_delimiter", ", ")
	viper.SetDefault("disc_track_totals", true)
	viper.SetDefault("log_level", "info")
}

func parseSpeedLimit(value string) (int64, error) {
	value = strings.TrimSpace(value)
	if value == "" || value == "0" {
		return 0, nil
	}

	parsed, err := humanize.ParseBytes(value)
	if err != nil {
		return 0, fmt.Errorf("failed to parse download speed limit: %w", err)
	}

	// io.CopyN accepts only int64 so we transform it safely in order to use it later.
	return utils.SafeUint64ToInt64(parsed), nil
}

func compileSkipPatterns(cfg *Config) error {
	cfg.ParsedTrackSkipRegex, cfg.ParsedEpisodeSkipRegex, cfg.ParsedAlbumSkipRegex = nil, nil, nil

	if !cfg.RegexEnabled {
		return nil
	}

	patterns := []struct {
		key    string
		source string
		target **regexp.Regexp
	}{
		{key: "regex_track_skip", source: cfg.RegexTrackSkip, target: &cfg.ParsedTrackSkipRegex},
		{key: "regex_episode_skip", source: cfg.RegexEpisodeSkip, target: &cfg.ParsedEpisodeSkipRegex},
		{key: "regex_album_skip", source: cfg.RegexAlbumSkip, target: &cfg.ParsedAlbumSkipRegex},
	}

	for _, pattern := range patterns {
		if strings.TrimSpace(pattern.source) == "" {
			continue
		}

		compiled, err := regexp.Compile(pattern.source)
		if err != nil {
			return fmt.Errorf("failed to compile %s: %w", pattern.key, err)
		}

		*pattern.target = compiled
	}

	return nil
}

func resolvePaths(cfg *Config) error {
	var err error

	if cfg.ParsedRootPath, err = absolutePath(cfg.RootPath); err != nil {
		return fmt.Errorf("failed to resolve root_path: %w", err)
	}

	if cfg.ParsedRootPodcastPath, err = absolutePath(cfg.RootPodcastPath); err != nil {
		return fmt.Errorf("failed to resolve root_podcast_path: %w", err)
	}

	if cfg.ParsedTempDownloadDir, err = absolutePath(cfg.TempDownloadDir); err != nil {
		return fmt.Errorf("failed to resolve temp_download_dir: %w", err)
	}

	if cfg.ParsedM3U8Location, err = absolutePath(cfg.M3U8Location); err != nil {
		return fmt.Errorf("failed to resolve m3u8_location: %w", err)
	}

	if cfg.ParsedLyricsLocation, err = absolutePath(cfg.LyricsLocation); err != nil {
		return fmt.Errorf("failed to resolve lyrics_location: %w", err)
	}

	archiveLocation := cfg.SongArchiveLocation
	if strings.TrimSpace(archiveLocation) == "" {
		archiveLocation = DefaultSongArchivePath()
	}

	if cfg.ParsedSongArchivePath, err = absolutePath(archiveLocation); err != nil {
		return fmt.Errorf("failed to resolve song_archive_location: %w", err)
	}

	return nil
}

// DefaultSongArchivePath returns the global archive location inside the user data directory.
func DefaultSongArchivePath() string {
	return filepath.Join(xdg.DataHome, appDirectoryName, globalArchiveFilename)
}

func absolutePath(path string) (string, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return "", nil
	}

	return filepath.Abs(utils.ExpandHomeDir(path))
}

// getConfigFilePath returns the config file path from viper or the default.
func getConfigFilePath() string {
	configFile := viper.ConfigFileUsed()
	if configFile == "" {
		return DefaultConfigFilename
	}

	return configFile
}

// handleMissingConfigFile creates a new config file if it doesn't exist.
func handleMissingConfigFile(configFile string, cfg *Config, err error) error {
	if !os.IsNotExist(err) {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	viper.Set("client_id", cfg.ClientID)
	viper.Set("client_secret", cfg.ClientSecret)
	viper.Set("refresh_token", cfg.RefreshToken)

	if err = viper.SafeWriteConfigAs(configFile); err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}

	return nil
}

// setValueInNode updates a top-level scalar in the YAML node tree, appending it when absent.
func setValueInNode(node *yaml.Node, key, value string) {
	// The root node is a document node, content[0] is the actual map.
	if len(node.Content) == 0 || node.Content[0].Kind != yaml.MappingNode {
		return
	}

	mapNode := node.Content[0]

	// Iterate through key-value pairs (stored as alternating nodes).
	for i := 0; i+1 < len(mapNode.Content); i += 2 {
		if mapNode.Content[i].Value != key {
			continue
		}

		valueNode := mapNode.Content[i+1]
		valueNode.Kind = yaml.ScalarNode
		valueNode.Tag = "!!str"
		valueNode.Value = value

		if valueNode.Style == 0 {
			valueNode.Style = yaml.DoubleQuotedStyle
		}

		return
	}

	mapNode.Content = append(mapNode.Content,
		&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: key},
		&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: value, Style: yaml.DoubleQuotedStyle},
	)
}
