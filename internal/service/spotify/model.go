package spotify

import (
	"fmt"
	"time"

	"github.com/oshokin/spotify-grabber/internal/client/spotify"
)

const (
	// defaultChunkSize is the read size of a stream when no speed limit is set.
	defaultChunkSize = 64 * 1024
	// maxBackoffFactor caps the adaptive pause at this multiple of the configured one.
	maxBackoffFactor = 10
	// defaultBackoffStep is used as the backoff step when bulk_wait_time is zero.
	defaultBackoffStep = time.Second
	// tempFilePrefix prefixes downloads kept in the scratch directory.
	tempFilePrefix = "spotify-grabber_"
	// singlesPlaylistSuffix is appended to the launch stamp of the single-item playlist.
	singlesPlaylistSuffix = "_spotify-grabber"
	// launchStampLayout formats the launch time in playlist names.
	launchStampLayout = "2006-01-02_15-04-05"
	// episodeTemplate lays out podcast episodes under the podcast root.
	episodeTemplate = "{show}/{show} - {song_name}"
)

// DownloadCategory represents the type of content being downloaded.
type DownloadCategory uint8

const (
	// DownloadCategoryUnknown - unknown category.
	DownloadCategoryUnknown DownloadCategory = iota
	// DownloadCategoryTrack - single track.
	DownloadCategoryTrack
	// DownloadCategoryAlbum - full album.
	DownloadCategoryAlbum
	// DownloadCategoryPlaylist - playlist.
	DownloadCategoryPlaylist
	// DownloadCategoryArtist - albums and singles of an artist.
	DownloadCategoryArtist
	// DownloadCategoryEpisode - single podcast episode.
	DownloadCategoryEpisode
	// DownloadCategoryShow - every episode of a podcast.
	DownloadCategoryShow
	// DownloadCategoryLiked - liked songs of the current user.
	DownloadCategoryLiked
	// DownloadCategorySearch - free-text query.
	DownloadCategorySearch
)

// String returns a human-readable representation of the DownloadCategory.
func (dc DownloadCategory) String() string {
	switch dc {
	case DownloadCategoryUnknown:
		return "unknown"
	case DownloadCategoryTrack:
		return "track"
	case DownloadCategoryAlbum:
		return "album"
	case DownloadCategoryPlaylist:
		return "playlist"
	case DownloadCategoryArtist:
		return "artist"
	case DownloadCategoryEpisode:
		return "episode"
	case DownloadCategoryShow:
		return "show"
	case DownloadCategoryLiked:
		return "liked songs"
	case DownloadCategorySearch:
		return "search"
	default:
		return fmt.Sprintf("unknown: %d", dc)
	}
}

// IsCollection reports whether the category expands into several items.
func (dc DownloadCategory) IsCollection() bool {
	//nolint:exhaustive // Everything else is a single item.
	switch dc {
	case DownloadCategoryAlbum, DownloadCategoryPlaylist, DownloadCategoryArtist,
		DownloadCategoryShow, DownloadCategoryLiked:
		return true
	default:
		return false
	}
}

// SkipReason represents why an item was skipped.
type SkipReason uint8

const (
	// SkipReasonFiltered - excluded by a name pattern or the compilation filter.
	SkipReasonFiltered SkipReason = iota
	// SkipReasonUnavailable - the catalog marks the item as not playable.
	SkipReasonUnavailable
	// SkipReasonFileExists - the destination file already exists.
	SkipReasonFileExists
	// SkipReasonDirArchived - the directory archive already lists the item.
	SkipReasonDirArchived
	// SkipReasonGlobalArchived - the global archive already lists the item.
	SkipReasonGlobalArchived
)

// String returns a human-readable representation of the SkipReason.
func (sr SkipReason) String() string {
	switch sr {
	case SkipReasonFiltered:
		return "filtered"
	case SkipReasonUnavailable:
		return "unavailable"
	case SkipReasonFileExists:
		return "file_exists"
	case SkipReasonDirArchived:
		return "dir_archived"
	case SkipReasonGlobalArchived:
		return "global_archived"
	default:
		return fmt.Sprintf("unknown reason: %d", sr)
	}
}

// Outcome is the terminal state of one item.
type Outcome uint8

const (
	// OutcomeDownloaded - the file was written and archived.
	OutcomeDownloaded Outcome = iota
	// OutcomeSkipped - the item was bypassed by the skip policy.
	OutcomeSkipped
	// OutcomeFailed - a stage failed and the item was abandoned.
	OutcomeFailed
)

// String returns a human-readable representation of the Outcome.
func (o Outcome) String() string {
	switch o {
	case OutcomeDownloaded:
		return "downloaded"
	case OutcomeSkipped:
		return "skipped"
	case OutcomeFailed:
		return "failed"
	default:
		return fmt.Sprintf("unknown outcome: %d", o)
	}
}

// FailureKind classifies failed items.
type FailureKind string

// Failure kinds.
const (
	FailureMetadata    FailureKind = "metadata"
	FailureTemplate    FailureKind = "template"
	FailureRateLimited FailureKind = "rate_limited"
	FailureDownload    FailureKind = "download_error"
)

// ItemResult is what the orchestrator reports for one item.
type ItemResult struct {
	// Outcome is the terminal state.
	Outcome Outcome
	// SkipReason is set for skipped items.
	SkipReason SkipReason
	// FailureKind is set for failed items.
	FailureKind FailureKind
	// Path is the destination of the item, when one was planned.
	Path string
	// BytesWritten is the size of the downloaded stream.
	BytesWritten int64
	// Err is the failure of a failed item.
	Err error
}

// TemplateMode selects which path template renders an item.
type TemplateMode uint8

const (
	// TemplateModeSingle renders individually requested tracks.
	TemplateModeSingle TemplateMode = iota
	// TemplateModeAlbum renders album tracks.
	TemplateModeAlbum
	// TemplateModePlaylist renders playlist tracks.
	TemplateModePlaylist
	// TemplateModeExtendedPlaylist renders numbered playlist tracks.
	TemplateModeExtendedPlaylist
	// TemplateModeLikedSongs renders liked songs.
	TemplateModeLikedSongs
	// TemplateModeEpisode renders podcast episodes.
	TemplateModeEpisode
)

// DownloadItem represents a full downloadable item, including its category, source input, and unique identifier.
type DownloadItem struct {
	// Category is the type of content. (track, album, playlist, etc.).
	Category DownloadCategory
	// URL is the input the item was parsed from.
	URL string
	// ItemID is the catalog identifier, or the query text for searches.
	ItemID string
}

// ShortDownloadItem is a lightweight version of DownloadItem without the URL.
type ShortDownloadItem struct {
	// Category is the type of content.
	Category DownloadCategory
	// ItemID is the unique identifier of the item.
	ItemID string
}

// String returns a human-readable representation of the DownloadItem.
func (di DownloadItem) String() string {
	return fmt.Sprintf("category: %v, ID: %s", di.Category, di.ItemID)
}

// GetShortVersion converts a full DownloadItem into a ShortDownloadItem by stripping the URL.
func (di DownloadItem) GetShortVersion() ShortDownloadItem {
	return ShortDownloadItem{
		Category: di.Category,
		ItemID:   di.ItemID,
	}
}

// DownloadStatistics tracks metrics for a download session.
type DownloadStatistics struct {
	// StartTime is when the download session began.
	StartTime time.Time
	// EndTime is when the download session completed.
	EndTime time.Time
	// TotalItemsProcessed is the number of tracks and episodes that reached a terminal state.
	TotalItemsProcessed int64
	// TracksDownloaded is the number of tracks successfully downloaded.
	TracksDownloaded int64
	// EpisodesDownloaded is the number of episodes successfully downloaded.
	EpisodesDownloaded int64
	// ItemsSkipped is the total number of items skipped for any reason.
	ItemsSkipped int64
	// SkipReasons counts skipped items per reason.
	SkipReasons map[SkipReason]int64
	// ItemsFailed is the number of items that failed.
	ItemsFailed int64
	// CollectionsProcessed is the number of albums, playlists, shows and artists expanded.
	CollectionsProcessed int64
	// CollectionsSkipped is the number of collections excluded before expansion.
	CollectionsSkipped int64
	// TotalBytesDownloaded is the total size of downloaded content in bytes.
	TotalBytesDownloaded int64
	// LyricsDownloaded is the number of lyrics files written.
	LyricsDownloaded int64
	// LyricsMissing is the number of tracks without lyrics.
	LyricsMissing int64
	// CoversDownloaded is the number of cover files written.
	CoversDownloaded int64
	// Errors is a list of all errors encountered during the download process.
	Errors []DownloadError
}

// DownloadError represents a single error that occurred during download.
type DownloadError struct {
	// Category is the type of item that failed.
	Category DownloadCategory
	// ItemID is the unique identifier of the item that failed.
	ItemID string
	// ItemTitle is the human-readable title of the item.
	ItemTitle string
	// ItemURL is the input of the failed item (for collections).
	ItemURL string
	// ErrorMessage is the error message.
	ErrorMessage string
	// Phase indicates when the error occurred.
	Phase string
	// ParentCategory is the type of parent collection for tracks.
	ParentCategory DownloadCategory
	// ParentID is the ID of the parent collection.
	ParentID string
	// ParentTitle is the title of the parent collection.
	ParentTitle string
}

// itemRequest is one item fed by an expander into the orchestrator.
type itemRequest struct {
	// id is the catalog identifier.
	id string
	// kind is spotify.KindTrack or spotify.KindEpisode.
	kind spotify.Kind
	// resolved skips the resolver call when the expander already holds full metadata.
	resolved *spotify.ContentItem
	// artistIDs are the performers known before resolution, used to batch genre lookups.
	artistIDs []string
	// mode selects the path template.
	mode TemplateMode
	// extras holds collection placeholders such as playlist or album_num.
	extras map[string]string
	// collection is the parent collection, nil for single items.
	collection *collectionContext
	// isPrimary marks the item whose entry goes into the playlist export.
	isPrimary bool
}

// collectionContext carries what the items of one collection share.
type collectionContext struct {
	// category is the type of the collection.
	category DownloadCategory
	// id is the collection identifier.
	id string
	// name is the collection title.
	name string
	// url is the input that requested the collection.
	url string
	// playlist receives the playlist export entries, nil when export is off.
	playlist *M3U8Writer
	// totalDiscs is the disc count of an album.
	totalDiscs int
	// isDelegated marks an album downloaded in place of one requested track.
	isDelegated bool
}

// Phases reported in download errors.
const (
	phaseMetadata    = "fetching metadata"
	phaseTemplate    = "rendering path"
	phaseFetch       = "downloading stream"
	phasePostprocess = "post-processing"
	phaseCommit      = "finalizing file"
	phaseArchive     = "updating archive"
	phaseExpand      = "expanding collection"
)
