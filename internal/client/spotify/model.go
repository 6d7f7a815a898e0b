package spotify

import (
	"strings"
	"time"
)

// Kind is the type of a catalog entity.
type Kind string

// Catalog entity kinds.
const (
	KindTrack    Kind = "track"
	KindEpisode  Kind = "episode"
	KindAlbum    Kind = "album"
	KindPlaylist Kind = "playlist"
	KindShow     Kind = "show"
	KindArtist   Kind = "artist"
)

// AlbumTypeCompilation is the album type string of compilations.
const AlbumTypeCompilation = "compilation"

// ContentItem is a normalized track or episode.
type ContentItem struct {
	// ID is the base62 catalog identifier.
	ID string
	// Kind is KindTrack or KindEpisode.
	Kind Kind
	// Name is the track or episode title.
	Name string
	// Artists lists the performers; for episodes it holds the show name.
	Artists []string
	// ArtistIDs lists the performer identifiers in the same order as Artists.
	ArtistIDs []string
	// AlbumName is the parent album title.
	AlbumName string
	// AlbumID is the parent album identifier.
	AlbumID string
	// AlbumArtists lists the album performers.
	AlbumArtists []string
	// AlbumType is the raw album type (album, single, compilation).
	AlbumType string
	// IsCompilation is true when the parent album is a compilation.
	IsCompilation bool
	// DurationMs is the playback length in milliseconds.
	DurationMs int
	// IsPlayable is false only when the catalog explicitly says so.
	IsPlayable bool
	// ImageURL is the widest available cover image.
	ImageURL string
	// DiscNumber is the disc of the track inside its album.
	DiscNumber int
	// TrackNumber is the position of the track on its disc.
	TrackNumber int
	// TotalTracks is the number of tracks of the parent album.
	TotalTracks int
	// ReleaseDate is the raw release date.
	ReleaseDate string
	// ReleaseYear is the first four characters of ReleaseDate.
	ReleaseYear string
	// ShowName is the parent show of an episode.
	ShowName string
	// ShowID is the parent show identifier of an episode.
	ShowID string
	// ExternalURL is the download location of an externally hosted episode.
	ExternalURL string
}

// PrimaryArtist returns the first artist or an empty string.
func (i *ContentItem) PrimaryArtist() string {
	if len(i.Artists) == 0 {
		return ""
	}

	return i.Artists[0]
}

// Label returns the human-readable "artist - title" form.
func (i *ContentItem) Label() string {
	artist := i.PrimaryArtist()
	if artist == "" {
		return i.Name
	}

	return artist + " - " + i.Name
}

// Album is an album with all its tracks.
type Album struct {
	// ID is the album identifier.
	ID string
	// Name is the album title.
	Name string
	// Artists lists the album performers.
	Artists []string
	// ArtistIDs lists the album performer identifiers.
	ArtistIDs []string
	// AlbumType is the raw album type.
	AlbumType string
	// IsCompilation is true when AlbumType is a compilation.
	IsCompilation bool
	// ReleaseDate is the raw release date.
	ReleaseDate string
	// ReleaseYear is the first four characters of ReleaseDate.
	ReleaseYear string
	// ImageURL is the widest available cover image.
	ImageURL string
	// Tracks holds the album tracks in catalog order.
	Tracks []*ContentItem
	// TotalTracks is the number of tracks reported by the catalog.
	TotalTracks int
	// TotalDiscs is the disc number of the last track.
	TotalDiscs int
}

// AlbumReference is an album listed in an artist catalog or a search.
type AlbumReference struct {
	// ID is the album identifier.
	ID string
	// Name is the album title.
	Name string
	// AlbumType is the raw album type.
	AlbumType string
}

// PlaylistEntry is one position of a playlist or of the liked songs list.
type PlaylistEntry struct {
	// ID is the track or episode identifier; empty for local files.
	ID string
	// Kind is KindTrack or KindEpisode.
	Kind Kind
	// Name is the title shown in the playlist.
	Name string
	// ArtistIDs lists the performers of a track entry.
	ArtistIDs []string
	// AddedAt is when the entry was added.
	AddedAt time.Time
	// IsLocal is true for files that only exist on the owner's device.
	IsLocal bool
}

// IsDownloadable reports whether the entry refers to a catalog item.
func (e *PlaylistEntry) IsDownloadable() bool {
	return !e.IsLocal && e.ID != ""
}

// Playlist is a playlist with all its entries.
type Playlist struct {
	// ID is the playlist identifier.
	ID string
	// Name is the playlist title.
	Name string
	// Owner is the display name of the owner.
	Owner string
	// Entries holds the playlist positions in catalog order.
	Entries []*PlaylistEntry
}

// Show is a podcast with its episodes.
type Show struct {
	// ID is the show identifier.
	ID string
	// Name is the show title.
	Name string
	// Publisher is the show publisher.
	Publisher string
	// Episodes holds the episodes in catalog order.
	Episodes []*ContentItem
}

// SearchResult holds the hits of a free-text search grouped by kind.
type SearchResult struct {
	// Tracks are matching tracks.
	Tracks []*SearchHit
	// Albums are matching albums.
	Albums []*SearchHit
	// Artists are matching artists.
	Artists []*SearchHit
	// Playlists are matching playlists.
	Playlists []*SearchHit
}

// SearchHit is one search result.
type SearchHit struct {
	// Kind is the entity kind.
	Kind Kind
	// ID is the entity identifier.
	ID string
	// Name is the entity title.
	Name string
	// Description is a short human-readable context, like the artists of a track.
	Description string
}

// Lyrics are the lyrics of a track.
type Lyrics struct {
	// SyncType is LINE_SYNCED, SYLLABLE_SYNCED or UNSYNCED.
	SyncType string
	// Lines are the lyrics lines in order.
	Lines []*LyricsLine
}

// IsSynced reports whether lines carry meaningful timestamps.
func (l *Lyrics) IsSynced() bool {
	return l.SyncType != "" && l.SyncType != LyricsSyncTypeUnsynced
}

// Text returns the lyrics as plain text.
func (l *Lyrics) Text() string {
	lines := make([]string, 0, len(l.Lines))
	for _, line := range l.Lines {
		lines = append(lines, line.Words)
	}

	return strings.Join(lines, "\n")
}

// LyricsLine is one lyrics line.
type LyricsLine struct {
	// StartMs is the offset of the line in milliseconds.
	StartMs int64
	// Words is the line text.
	Words string
}

// LyricsSyncTypeUnsynced marks lyrics without timestamps.
const LyricsSyncTypeUnsynced = "UNSYNCED"

// FetchJSONResult holds the result of a JSON fetch operation.
type FetchJSONResult[T any] struct {
	// Data is the decoded JSON payload.
	Data *T
	// StatusCode is the HTTP response status code.
	StatusCode int
}

// imageResponse is an image of the raw JSON endpoints.
type imageResponse struct {
	URL   string `json:"url"`
	Width int    `json:"width"`
}

// showResponse is the raw JSON of a show.
type showResponse struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	Publisher string          `json:"publisher"`
	Images    []imageResponse `json:"images"`
}

// episodeResponse is the raw JSON of an episode.
type episodeResponse struct {
	ID                 string          `json:"id"`
	Name               string          `json:"name"`
	DurationMs         int             `json:"duration_ms"`
	ReleaseDate        string          `json:"release_date"`
	IsPlayable         *bool           `json:"is_playable"`
	IsExternallyHosted bool            `json:"is_externally_hosted"`
	Images             []imageResponse `json:"images"`
	Show               *showResponse   `json:"show"`
}

// episodePageResponse is one page of show episodes.
type episodePageResponse struct {
	Items []*episodeResponse `json:"items"`
	Next  string             `json:"next"`
	Total int                `json:"total"`
}

// audioFileResponse is one encoded file of a track or episode.
type audioFileResponse struct {
	FileID string `json:"file_id"`
	Format string `json:"format"`
}

// mediaMetadataResponse is the internal file listing of a track or episode.
type mediaMetadataResponse struct {
	GID         string               `json:"gid"`
	File        []*audioFileResponse `json:"file"`
	Audio       []*audioFileResponse `json:"audio"`
	ExternalURL string               `json:"external_url"`
	Alternative []struct {
		GID  string               `json:"gid"`
		File []*audioFileResponse `json:"file"`
	} `json:"alternative"`
}

// storageResolveResponse lists download locations of a file.
type storageResolveResponse struct {
	Result string   `json:"result"`
	CDNURL []string `json:"cdnurl"`
}

// lyricsResponse is the raw JSON of the lyrics endpoint.
type lyricsResponse struct {
	Lyrics struct {
		SyncType string `json:"syncType"`
		Lines    []struct {
			StartTimeMs string `json:"startTimeMs"`
			Words       string `json:"words"`
		} `json:"lines"`
	} `json:"lyrics"`
}

// audioKeyRequest is sent to the key service.
type audioKeyRequest struct {
	GID    string `json:"gid"`
	FileID string `json:"file_id"`
}

// audioKeyResponse is returned by the key service.
type audioKeyResponse struct {
	Key string `json:"key"`
}
