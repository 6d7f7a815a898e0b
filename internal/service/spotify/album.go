package spotify

import (
	"context"
	"strconv"
	"strings"

	"github.com/oshokin/spotify-grabber/internal/client/spotify"
	"github.com/oshokin/spotify-grabber/internal/logger"
	"github.com/oshokin/spotify-grabber/internal/utils"
)

// albumRequest asks for an album, either directly or in place of one of its tracks.
type albumRequest struct {
	// item is the input that led to the album.
	item *DownloadItem
	// albumID is the album to download.
	albumID string
	// primaryItemID is the requested track when the album was delegated, empty otherwise.
	primaryItemID string
}

func (r *albumRequest) isDelegated() bool {
	return r.primaryItemID != ""
}

func (s *ServiceImpl) downloadAlbum(ctx context.Context, req *albumRequest) {
	album, err := s.rt.Client.GetAlbum(ctx, req.albumID)
	if err != nil {
		s.errorHandler.HandleCollectionError(ctx, req.item, "", err)

		return
	}

	if s.isAlbumFiltered(ctx, album) {
		s.incrementCollectionSkipped()

		return
	}

	logger.Infof(
		ctx,
		"Downloading '%s - %s (%s)'",
		strings.Join(album.Artists, s.rt.Config.ArtistDelimiter),
		album.Name,
		album.ReleaseYear)

	s.incrementCollectionProcessed()

	collection := &collectionContext{
		category:    DownloadCategoryAlbum,
		id:          album.ID,
		name:        album.Name,
		url:         req.item.URL,
		totalDiscs:  album.TotalDiscs,
		isDelegated: req.isDelegated(),
	}

	reqs := s.albumItemRequests(album, collection, req.primaryItemID)

	if !collection.isDelegated && s.rt.Config.ExportM3U8 && len(reqs) > 0 {
		collection.playlist = s.openCollectionPlaylist(ctx, album.Name, s.predictCollectionDir(reqs))
	}

	s.processCollection(ctx, collection, reqs)
}

// isAlbumFiltered applies the compilation and name filters to an album before any track is touched.
func (s *ServiceImpl) isAlbumFiltered(ctx context.Context, album *spotify.Album) bool {
	cfg := s.rt.Config

	switch {
	case cfg.NoCompilationAlbums && album.IsCompilation:
		logger.Infof(ctx, "Skipping compilation album '%s'", album.Name)
	case cfg.RegexEnabled && cfg.ParsedAlbumSkipRegex != nil && cfg.ParsedAlbumSkipRegex.MatchString(album.Name):
		logger.Infof(ctx, "Skipping album '%s' (matches the album skip pattern)", album.Name)
	default:
		return false
	}

	s.listener.OnSkip(ctx, &spotify.ContentItem{
		ID:      album.ID,
		Kind:    spotify.KindAlbum,
		Name:    album.Name,
		Artists: album.Artists,
	}, SkipReasonFiltered)

	return true
}

// albumItemRequests turns album tracks into pipeline requests numbered by their position in the album.
func (s *ServiceImpl) albumItemRequests(
	album *spotify.Album,
	collection *collectionContext,
	primaryItemID string,
) []*itemRequest {
	var (
		width       = utils.PadWidth(len(album.Tracks))
		albumArtist = strings.Join(album.Artists, s.rt.Config.ArtistDelimiter)
		reqs        = make([]*itemRequest, 0, len(album.Tracks))
	)

	for index, track := range album.Tracks {
		reqs = append(reqs, &itemRequest{
			id:       track.ID,
			kind:     spotify.KindTrack,
			resolved: track,
			mode:     TemplateModeAlbum,
			extras: map[string]string{
				"album_num":    utils.ZeroPad(index+1, width),
				"album_artist": albumArtist,
				"album_id":     album.ID,
				"total_discs":  strconv.Itoa(album.TotalDiscs),
			},
			collection: collection,
			isPrimary:  primaryItemID == "" || primaryItemID == track.ID,
		})
	}

	return reqs
}
