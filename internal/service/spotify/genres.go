package spotify

import (
	"context"
	"strings"

	"github.com/oshokin/spotify-grabber/internal/client/spotify"
	"github.com/oshokin/spotify-grabber/internal/logger"
	"github.com/oshokin/spotify-grabber/internal/utils"
)

// prefetchGenres loads the genres of every artist not seen yet in one bulk request.
func (s *ServiceImpl) prefetchGenres(ctx context.Context, artistIDs []string) {
	if !s.rt.Config.SaveGenres {
		return
	}

	missing := make([]string, 0, len(artistIDs))

	for _, id := range utils.Unique(artistIDs) {
		if _, ok := s.state.genres[id]; !ok && id != "" {
			missing = append(missing, id)
		}
	}

	if len(missing) == 0 {
		return
	}

	genres, err := s.rt.Client.GetArtistGenres(ctx, missing)
	if err != nil {
		logger.Warnf(ctx, "Failed to get artist genres: %v", err)

		return
	}

	// Artists without genres are cached too so they are not asked for again.
	for _, id := range missing {
		s.state.genres[id] = genres[id]
	}
}

// collectionArtistIDs returns the performers of every track request known before resolution.
func collectionArtistIDs(reqs []*itemRequest) []string {
	var ids []string

	for _, req := range reqs {
		if req.kind != spotify.KindTrack {
			continue
		}

		ids = append(ids, req.artistIDs...)

		if req.resolved != nil {
			ids = append(ids, req.resolved.ArtistIDs...)
		}
	}

	return ids
}

// genreOf returns the genre tag of an item: the first genre of its artists, or all of them when configured.
func (s *ServiceImpl) genreOf(ctx context.Context, item *spotify.ContentItem) string {
	if !s.rt.Config.SaveGenres || item.Kind != spotify.KindTrack {
		return ""
	}

	s.prefetchGenres(ctx, item.ArtistIDs)

	var genres []string
	for _, id := range item.ArtistIDs {
		genres = append(genres, s.state.genres[id]...)
	}

	genres = utils.Unique(genres)
	if len(genres) == 0 {
		return ""
	}

	if !s.rt.Config.AllGenres {
		return genres[0]
	}

	return strings.Join(genres, s.rt.Config.GenreDelimiter)
}
