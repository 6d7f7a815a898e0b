package spotify

import (
	"context"
	"fmt"

	"github.com/oshokin/spotify-grabber/internal/client/spotify"
	"github.com/oshokin/spotify-grabber/internal/config"
	"github.com/oshokin/spotify-grabber/internal/logger"
)

// searchCandidate is one kind of search hits and the category it downloads as.
type searchCandidate struct {
	searchType string
	category   DownloadCategory
	hits       []*spotify.SearchHit
}

func (s *ServiceImpl) downloadSearch(ctx context.Context, item *DownloadItem) {
	result, err := s.rt.Client.Search(ctx, item.ItemID, s.rt.Config.SearchLimit)
	if err != nil {
		s.errorHandler.HandleCollectionError(ctx, item, item.ItemID, err)

		return
	}

	hit, category, ok := pickSearchHit(result, s.rt.Config.SearchType)
	if !ok {
		s.errorHandler.HandleCollectionError(
			ctx,
			item,
			item.ItemID,
			fmt.Errorf("%w for '%s'", ErrNothingFound, item.ItemID))

		return
	}

	if hit.Description != "" {
		logger.Infof(ctx, "Search '%s' matched %s '%s' (%s)", item.ItemID, category, hit.Name, hit.Description)
	} else {
		logger.Infof(ctx, "Search '%s' matched %s '%s'", item.ItemID, category, hit.Name)
	}

	s.downloadItem(ctx, &DownloadItem{
		Category: category,
		URL:      item.URL,
		ItemID:   hit.ID,
	})
}

// pickSearchHit returns the first hit of the first non-empty kind, in the order tracks, albums, artists, playlists.
// A non-empty searchType only considers hits of that kind.
func pickSearchHit(result *spotify.SearchResult, searchType string) (*spotify.SearchHit, DownloadCategory, bool) {
	candidates := []searchCandidate{
		{searchType: config.SearchTypeTrack, category: DownloadCategoryTrack, hits: result.Tracks},
		{searchType: config.SearchTypeAlbum, category: DownloadCategoryAlbum, hits: result.Albums},
		{searchType: config.SearchTypeArtist, category: DownloadCategoryArtist, hits: result.Artists},
		{searchType: config.SearchTypePlaylist, category: DownloadCategoryPlaylist, hits: result.Playlists},
	}

	for _, candidate := range candidates {
		if searchType != config.SearchTypeAny && searchType != candidate.searchType {
			continue
		}

		if len(candidate.hits) > 0 {
			return candidate.hits[0], candidate.category, true
		}
	}

	return nil, DownloadCategoryUnknown, false
}
