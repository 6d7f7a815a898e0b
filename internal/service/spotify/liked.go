package spotify

import (
	"context"

	"github.com/oshokin/spotify-grabber/internal/constants"
	"github.com/oshokin/spotify-grabber/internal/logger"
)

// likedSongsItemID identifies the liked songs collection in error reports.
const likedSongsItemID = "liked"

func (s *ServiceImpl) downloadLiked(ctx context.Context) {
	entries, err := s.rt.Client.GetLikedTracks(ctx)
	if err != nil {
		s.errorHandler.HandleCollectionError(ctx, &DownloadItem{
			Category: DownloadCategoryLiked,
			ItemID:   likedSongsItemID,
		}, constants.LikedSongsPlaylistName, err)

		return
	}

	logger.Infof(ctx, "Downloading %d liked songs", len(entries))

	s.incrementCollectionProcessed()

	collection := &collectionContext{
		category: DownloadCategoryLiked,
		id:       likedSongsItemID,
		name:     constants.LikedSongsPlaylistName,
	}

	reqs := make([]*itemRequest, 0, len(entries))

	for _, entry := range entries {
		if !entry.IsDownloadable() {
			continue
		}

		reqs = append(reqs, &itemRequest{
			id:         entry.ID,
			kind:       entry.Kind,
			artistIDs:  entry.ArtistIDs,
			mode:       TemplateModeLikedSongs,
			collection: collection,
			isPrimary:  true,
		})
	}

	cfg := s.rt.Config
	if (cfg.LikedSongsArchiveM3U8 || cfg.ExportM3U8) && len(reqs) > 0 {
		collection.playlist = s.openCollectionPlaylist(
			ctx,
			constants.LikedSongsPlaylistName,
			s.predictCollectionDir(reqs))
	}

	s.processCollection(ctx, collection, reqs)
}
