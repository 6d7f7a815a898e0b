package spotify

import (
	"context"

	"github.com/oshokin/spotify-grabber/internal/logger"
)

func (s *ServiceImpl) downloadArtist(ctx context.Context, item *DownloadItem) {
	albums, err := s.rt.Client.GetArtistAlbums(ctx, item.ItemID)
	if err != nil {
		s.errorHandler.HandleCollectionError(ctx, item, "", err)

		return
	}

	logger.Infof(ctx, "Downloading %d albums and singles of artist '%s'", len(albums), item.ItemID)

	s.incrementCollectionProcessed()

	for index, album := range albums {
		if ctx.Err() != nil {
			return
		}

		logger.Infof(ctx, "Album %d / %d: '%s' (%s)", index+1, len(albums), album.Name, album.AlbumType)

		s.downloadAlbum(ctx, &albumRequest{
			item: &DownloadItem{
				Category: DownloadCategoryAlbum,
				URL:      item.URL,
				ItemID:   album.ID,
			},
			albumID: album.ID,
		})
	}
}
