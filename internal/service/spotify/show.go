package spotify

import (
	"context"

	"github.com/oshokin/spotify-grabber/internal/client/spotify"
	"github.com/oshokin/spotify-grabber/internal/logger"
)

func (s *ServiceImpl) downloadShow(ctx context.Context, item *DownloadItem) {
	show, err := s.rt.Client.GetShow(ctx, item.ItemID)
	if err != nil {
		s.errorHandler.HandleCollectionError(ctx, item, "", err)

		return
	}

	logger.Infof(ctx, "Downloading %d episodes of '%s' (%s)", len(show.Episodes), show.Name, show.Publisher)

	s.incrementCollectionProcessed()

	collection := &collectionContext{
		category: DownloadCategoryShow,
		id:       show.ID,
		name:     show.Name,
		url:      item.URL,
	}

	reqs := make([]*itemRequest, 0, len(show.Episodes))
	for _, episode := range show.Episodes {
		reqs = append(reqs, &itemRequest{
			id:         episode.ID,
			kind:       spotify.KindEpisode,
			mode:       TemplateModeEpisode,
			extras:     map[string]string{"show": show.Name},
			collection: collection,
			isPrimary:  true,
		})
	}

	if s.rt.Config.ExportM3U8 && len(reqs) > 0 {
		collection.playlist = s.openCollectionPlaylist(ctx, show.Name, s.predictCollectionDir(reqs))
	}

	s.processCollection(ctx, collection, reqs)
}
