package spotify

//go:generate $MOCKGEN -source=service.go -destination=mocks/service_mock.go

import (
	"context"
	"sync"
	"time"

	"github.com/oshokin/spotify-grabber/internal/client/spotify"
	"github.com/oshokin/spotify-grabber/internal/logger"
)

// Service provides methods for downloading Spotify content.
type Service interface {
	// DownloadURLs downloads every link, URI, search query or list file in inputs, in order.
	DownloadURLs(ctx context.Context, inputs []string)
	// DownloadLiked downloads the liked songs of the current user.
	DownloadLiked(ctx context.Context)
	// PrintDownloadSummary prints a formatted summary of download statistics.
	PrintDownloadSummary(ctx context.Context)
}

// ServiceImpl implements the download orchestrator.
type ServiceImpl struct {
	// rt holds the configuration snapshot and the collaborators shared by all stages.
	rt *RuntimeContext
	// state is the mutable state of the run.
	state *orchestratorState
	// urlProcessor handles input parsing and categorization.
	urlProcessor URLProcessor
	// templateManager renders destination paths.
	templateManager TemplateManager
	// tagProcessor writes metadata tags to audio files.
	tagProcessor TagProcessor
	// transcoder converts downloads into the configured format.
	transcoder Transcoder
	// listener receives item events.
	listener EventListener
	// errorHandler records collection failures.
	errorHandler *ErrorHandler
	// statsMutex protects concurrent access to statistics.
	statsMutex *sync.Mutex
}

// NewService creates a download service instance with dependency-injected components.
func NewService(
	rt *RuntimeContext,
	urlProcessor URLProcessor,
	templateManager TemplateManager,
	tagProcessor TagProcessor,
	transcoder Transcoder,
	listener EventListener,
) Service {
	if listener == nil {
		listener = NopListener{}
	}

	s := &ServiceImpl{
		rt:              rt,
		state:           newOrchestratorState(rt.Config),
		urlProcessor:    urlProcessor,
		templateManager: templateManager,
		tagProcessor:    tagProcessor,
		transcoder:      transcoder,
		listener:        listener,
		statsMutex:      new(sync.Mutex),
	}

	s.errorHandler = NewErrorHandler(s)

	return s
}

// DownloadURLs downloads every link, URI, search query or list file in inputs, in order.
func (s *ServiceImpl) DownloadURLs(ctx context.Context, inputs []string) {
	s.markStart()
	defer s.markEnd()

	items, err := s.urlProcessor.ExtractDownloadItems(ctx, inputs)
	if err != nil {
		logger.Errorf(ctx, "Failed to extract items to download: %v", err)

		return
	}

	logger.Info(ctx, "Starting download process")

	itemsCount := len(items)

	for index, item := range items {
		// Check if context was canceled (CTRL+C pressed) - stop immediately.
		if ctx.Err() != nil {
			break
		}

		logger.Infof(ctx, "Downloading item: %v (%d / %d)", item, index+1, itemsCount)
		s.downloadItem(ctx, item)
	}

	s.finishPlaylist(ctx, s.state.singlesPlaylist)

	logger.Info(ctx, "Download process completed")
}

// DownloadLiked downloads the liked songs of the current user.
func (s *ServiceImpl) DownloadLiked(ctx context.Context) {
	s.markStart()
	defer s.markEnd()

	logger.Info(ctx, "Downloading liked songs")

	s.downloadLiked(ctx)

	logger.Info(ctx, "Download process completed")
}

// downloadItem dispatches an input to the downloader of its category.
func (s *ServiceImpl) downloadItem(ctx context.Context, item *DownloadItem) {
	switch item.Category {
	case DownloadCategoryTrack:
		s.downloadTrack(ctx, item)
	case DownloadCategoryEpisode:
		s.downloadEpisode(ctx, item)
	case DownloadCategoryAlbum:
		s.downloadAlbum(ctx, &albumRequest{item: item, albumID: item.ItemID})
	case DownloadCategoryPlaylist:
		s.downloadPlaylist(ctx, item)
	case DownloadCategoryArtist:
		s.downloadArtist(ctx, item)
	case DownloadCategoryShow:
		s.downloadShow(ctx, item)
	case DownloadCategorySearch:
		s.downloadSearch(ctx, item)
	case DownloadCategoryLiked:
		s.downloadLiked(ctx)
	case DownloadCategoryUnknown:
		logger.Errorf(ctx, "Unknown input: %s", item.URL)
	}
}

// downloadTrack downloads a single track, or its album when parent albums are requested.
func (s *ServiceImpl) downloadTrack(ctx context.Context, item *DownloadItem) {
	req := &itemRequest{
		id:        item.ItemID,
		kind:      spotify.KindTrack,
		mode:      TemplateModeSingle,
		isPrimary: true,
	}

	track, err := s.rt.Client.GetTrack(ctx, item.ItemID)
	if err != nil {
		stub := stubItem(req)
		s.report(ctx, stub, s.fail(req, stub, FailureMetadata, phaseMetadata, err))

		return
	}

	switch plan := s.planItem(ctx, track).(type) {
	case DelegateToCollectionPlan:
		s.downloadAlbum(ctx, &albumRequest{
			item:          item,
			albumID:       plan.AlbumID,
			primaryItemID: plan.OriginalItemID,
		})
	case SingleItemPlan:
		req.resolved = plan.Item
		s.processItem(ctx, req)
	}
}

// downloadEpisode downloads a single podcast episode.
func (s *ServiceImpl) downloadEpisode(ctx context.Context, item *DownloadItem) {
	s.processItem(ctx, &itemRequest{
		id:        item.ItemID,
		kind:      spotify.KindEpisode,
		mode:      TemplateModeEpisode,
		isPrimary: true,
	})
}

// processCollection runs the items of a collection in order and completes its playlist export.
func (s *ServiceImpl) processCollection(ctx context.Context, collection *collectionContext, reqs []*itemRequest) {
	total := len(reqs)

	s.prefetchGenres(ctx, collectionArtistIDs(reqs))

	for index, req := range reqs {
		if ctx.Err() != nil {
			return
		}

		logger.Debugf(ctx, "Processing %s '%s': item %d / %d", collection.category, collection.name, index+1, total)
		s.processItem(ctx, req)
	}

	s.finishPlaylist(ctx, collection.playlist)
}

func (s *ServiceImpl) markStart() {
	s.statsMutex.Lock()
	defer s.statsMutex.Unlock()

	if s.state.stats.StartTime.IsZero() {
		s.state.stats.StartTime = time.Now()
	}
}

func (s *ServiceImpl) markEnd() {
	s.statsMutex.Lock()
	defer s.statsMutex.Unlock()

	s.state.stats.EndTime = time.Now()
}
