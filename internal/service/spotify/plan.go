package spotify

import (
	"context"

	"github.com/oshokin/spotify-grabber/internal/client/spotify"
	"github.com/oshokin/spotify-grabber/internal/logger"
)

// Plan is the decision taken for a requested track before it enters the pipeline.
type Plan interface {
	isPlan()
}

// SingleItemPlan downloads the requested item on its own.
type SingleItemPlan struct {
	// Item is the resolved item.
	Item *spotify.ContentItem
}

// DelegateToCollectionPlan downloads the parent album instead of the requested track.
type DelegateToCollectionPlan struct {
	// AlbumID is the album to download.
	AlbumID string
	// OriginalItemID is the track that was requested.
	OriginalItemID string
}

func (SingleItemPlan) isPlan() {}

func (DelegateToCollectionPlan) isPlan() {}

// planItem decides whether a requested item is downloaded alone or through its album.
func (s *ServiceImpl) planItem(ctx context.Context, item *spotify.ContentItem) Plan {
	if !s.rt.Config.DownloadParentAlbum ||
		item.Kind != spotify.KindTrack ||
		item.AlbumID == "" ||
		item.TotalTracks <= 1 {
		return SingleItemPlan{Item: item}
	}

	logger.Infof(ctx, "Downloading the parent album '%s' of '%s'", item.AlbumName, item.Label())

	return DelegateToCollectionPlan{
		AlbumID:        item.AlbumID,
		OriginalItemID: item.ID,
	}
}
