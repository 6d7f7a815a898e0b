package spotify

import (
	"strconv"
	"strings"
	"time"

	spotifyapi "github.com/zmb3/spotify/v2"
)

// releaseYearLength is the length of the year prefix of a release date.
const releaseYearLength = 4

// parseFullTrack converts a catalog track into a ContentItem.
// A missing playability flag means playable: listing endpoints omit it.
func parseFullTrack(track *spotifyapi.FullTrack) *ContentItem {
	item := parseSimpleTrack(&track.SimpleTrack, &track.Album)

	if track.IsPlayable != nil {
		item.IsPlayable = *track.IsPlayable
	}

	return item
}

// parseSimpleTrack converts a track listed without album data, filling the album fields from album.
func parseSimpleTrack(track *spotifyapi.SimpleTrack, album *spotifyapi.SimpleAlbum) *ContentItem {
	artists, artistIDs := parseArtists(track.Artists)

	item := &ContentItem{
		ID:          string(track.ID),
		Kind:        KindTrack,
		Name:        track.Name,
		Artists:     artists,
		ArtistIDs:   artistIDs,
		DurationMs:  int(track.Duration),
		IsPlayable:  true,
		DiscNumber:  int(track.DiscNumber),
		TrackNumber: int(track.TrackNumber),
	}

	if album != nil {
		albumArtists, _ := parseArtists(album.Artists)

		item.AlbumName = album.Name
		item.AlbumID = string(album.ID)
		item.AlbumArtists = albumArtists
		item.AlbumType = album.AlbumType
		item.IsCompilation = isCompilation(album.AlbumType)
		item.ImageURL = largestImage(album.Images)
		item.ReleaseDate = album.ReleaseDate
		item.ReleaseYear = releaseYear(album.ReleaseDate)
	}

	return item
}

// parseFullAlbum converts a catalog album; tracks are appended by the caller while paging.
func parseFullAlbum(album *spotifyapi.FullAlbum) *Album {
	artists, artistIDs := parseArtists(album.Artists)

	return &Album{
		ID:            string(album.ID),
		Name:          album.Name,
		Artists:       artists,
		ArtistIDs:     artistIDs,
		AlbumType:     album.AlbumType,
		IsCompilation: isCompilation(album.AlbumType),
		ReleaseDate:   album.ReleaseDate,
		ReleaseYear:   releaseYear(album.ReleaseDate),
		ImageURL:      largestImage(album.Images),
		TotalTracks:   int(album.Tracks.Total),
	}
}

// parseEpisode converts the raw JSON of an episode.
// show overrides the embedded show, which listing endpoints omit.
func parseEpisode(episode *episodeResponse, show *showResponse) *ContentItem {
	if show == nil {
		show = episode.Show
	}

	item := &ContentItem{
		ID:          episode.ID,
		Kind:        KindEpisode,
		Name:        episode.Name,
		DurationMs:  episode.DurationMs,
		IsPlayable:  true,
		ImageURL:    largestRawImage(episode.Images),
		ReleaseDate: episode.ReleaseDate,
		ReleaseYear: releaseYear(episode.ReleaseDate),
	}

	if episode.IsPlayable != nil {
		item.IsPlayable = *episode.IsPlayable
	}

	if show != nil {
		item.ShowName = show.Name
		item.ShowID = show.ID
		item.AlbumName = show.Name
		item.Artists = []string{show.Name}
		item.AlbumArtists = []string{show.Publisher}

		if item.ImageURL == "" {
			item.ImageURL = largestRawImage(show.Images)
		}
	}

	return item
}

// parseAddedAt parses the RFC 3339 timestamp of playlist and liked entries.
// Unparsable values become zero time and sort first.
func parseAddedAt(value string) time.Time {
	parsed, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}
	}

	return parsed
}

// parseLyrics converts the raw lyrics JSON.
func parseLyrics(response *lyricsResponse) *Lyrics {
	result := &Lyrics{
		SyncType: response.Lyrics.SyncType,
		Lines:    make([]*LyricsLine, 0, len(response.Lyrics.Lines)),
	}

	for _, line := range response.Lyrics.Lines {
		startMs, err := strconv.ParseInt(line.StartTimeMs, 10, 64)
		if err != nil {
			startMs = 0
		}

		result.Lines = append(result.Lines, &LyricsLine{
			StartMs: startMs,
			Words:   line.Words,
		})
	}

	return result
}

func parseArtists(artists []spotifyapi.SimpleArtist) ([]string, []string) {
	names := make([]string, 0, len(artists))
	ids := make([]string, 0, len(artists))

	for _, artist := range artists {
		names = append(names, artist.Name)
		ids = append(ids, string(artist.ID))
	}

	return names, ids
}

func isCompilation(albumType string) bool {
	return strings.EqualFold(albumType, AlbumTypeCompilation)
}

func releaseYear(releaseDate string) string {
	if len(releaseDate) < releaseYearLength {
		return releaseDate
	}

	return releaseDate[:releaseYearLength]
}

// largestImage picks the image with the maximum width.
func largestImage(images []spotifyapi.Image) string {
	var (
		best      string
		bestWidth = -1
	)

	for _, image := range images {
		if int(image.Width) > bestWidth {
			best = image.URL
			bestWidth = int(image.Width)
		}
	}

	return best
}

func largestRawImage(images []imageResponse) string {
	var (
		best      string
		bestWidth = -1
	)

	for _, image := range images {
		if image.Width > bestWidth {
			best = image.URL
			bestWidth = image.Width
		}
	}

	return best
}

// validateItem rejects records the orchestrator cannot name.
func validateItem(item *ContentItem) error {
	if item.ID == "" || strings.TrimSpace(item.Name) == "" {
		return ErrMissingRequiredField
	}

	return nil
}
