package spotify

import (
	"context"
	"slices"

	"github.com/oshokin/spotify-grabber/internal/client/spotify"
	"github.com/oshokin/spotify-grabber/internal/logger"
	"github.com/oshokin/spotify-grabber/internal/utils"
)

func (s *ServiceImpl) downloadPlaylist(ctx context.Context, item *DownloadItem) {
	playlist, err := s.rt.Client.GetPlaylist(ctx, item.ItemID)
	if err != nil {
		s.errorHandler.HandleCollectionError(ctx, item, "", err)

		return
	}

	logger.Infof(ctx, "Downloading playlist '%s' by %s (%d entries)", playlist.Name, playlist.Owner, len(playlist.Entries))

	s.incrementCollectionProcessed()

	collection := &collectionContext{
		category: DownloadCategoryPlaylist,
		id:       playlist.ID,
		name:     playlist.Name,
		url:      item.URL,
	}

	reqs := s.playlistItemRequests(playlist, collection)

	if s.rt.Config.ExportM3U8 && len(reqs) > 0 {
		collection.playlist = s.openCollectionPlaylist(ctx, playlist.Name, s.predictCollectionDir(reqs))
	}

	s.processCollection(ctx, collection, reqs)
}

// playlistMode returns the template mode of playlist tracks.
// Numbered file names keep the playlist order unless an exported playlist file already does.
func (s *ServiceImpl) playlistMode() TemplateMode {
	if s.rt.Config.ExportM3U8 {
		return TemplateModePlaylist
	}

	return TemplateModeExtendedPlaylist
}

// playlistItemRequests orders playlist entries by the time they were added and numbers them.
// Local files keep their number but are never downloaded.
func (s *ServiceImpl) playlistItemRequests(playlist *spotify.Playlist, collection *collectionContext) []*itemRequest {
	entries := slices.Clone(playlist.Entries)
	slices.SortStableFunc(entries, func(a, b *spotify.PlaylistEntry) int {
		return a.AddedAt.Compare(b.AddedAt)
	})

	var (
		width = utils.PadWidth(len(entries))
		mode  = s.playlistMode()
		reqs  = make([]*itemRequest, 0, len(entries))
	)

	for index, entry := range entries {
		if !entry.IsDownloadable() {
			continue
		}

		reqs = append(reqs, &itemRequest{
			id:        entry.ID,
			kind:      entry.Kind,
			artistIDs: entry.ArtistIDs,
			mode:      mode,
			extras: map[string]string{
				"playlist":     playlist.Name,
				"playlist_id":  playlist.ID,
				"playlist_num": utils.ZeroPad(index+1, width),
			},
			collection: collection,
			isPrimary:  true,
		})
	}

	// Newest first, unless the order is kept by the exported playlist file.
	if !s.rt.Config.ExportM3U8 {
		slices.Reverse(reqs)
	}

	return reqs
}
