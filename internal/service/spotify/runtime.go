package spotify

import (
	"context"
	"path/filepath"
	"time"

	"github.com/oshokin/spotify-grabber/internal/archive"
	"github.com/oshokin/spotify-grabber/internal/client/spotify"
	"github.com/oshokin/spotify-grabber/internal/config"
	"github.com/oshokin/spotify-grabber/internal/logger"
)

// RuntimeContext holds what every component reads and nobody changes after startup.
type RuntimeContext struct {
	// Config is the validated configuration snapshot.
	Config *config.Config
	// Client is the authorized catalog and stream client.
	Client spotify.Client
	// Archive is the download archive.
	Archive archive.Index
	// Quality is the selected stream quality tier.
	Quality string
	// LaunchedAt is the process start time.
	LaunchedAt time.Time
}

// NewRuntimeContext creates a runtime context from a validated configuration.
func NewRuntimeContext(cfg *config.Config, client spotify.Client, index archive.Index) *RuntimeContext {
	return &RuntimeContext{
		Config:     cfg,
		Client:     client,
		Archive:    index,
		Quality:    cfg.DownloadQuality,
		LaunchedAt: time.Now(),
	}
}

// orchestratorState is the mutable state of one run.
type orchestratorState struct {
	// bulkWait is the current pause between downloaded items.
	bulkWait time.Duration
	// boundPaths maps a directory and item id pair to the destination assigned to it in this run.
	boundPaths map[pathBinding]string
	// pathOwners maps a destination to the item id it was assigned to in this run.
	pathOwners map[string]string
	// genres caches artist genres by artist id.
	genres map[string][]string
	// singlesPlaylist collects the playlist entries of individually requested items.
	singlesPlaylist *M3U8Writer
	// stats tracks download statistics for the current session.
	stats *DownloadStatistics
}

func newOrchestratorState(cfg *config.Config) *orchestratorState {
	return &orchestratorState{
		bulkWait:   cfg.ParsedBulkWaitTime,
		boundPaths: make(map[pathBinding]string),
		pathOwners: make(map[string]string),
		genres:     make(map[string][]string),
		stats: &DownloadStatistics{
			SkipReasons: make(map[SkipReason]int64),
		},
	}
}

// pathBinding identifies an item inside one output directory.
type pathBinding struct {
	dir string
	id  string
}

// boundPath returns the destination assigned to id under dir in this run.
func (st *orchestratorState) boundPath(dir, id string) (string, bool) {
	path, ok := st.boundPaths[pathBinding{dir: dir, id: id}]

	return path, ok
}

// bindPath assigns path to id for the rest of the run.
func (st *orchestratorState) bindPath(id, path string) {
	st.boundPaths[pathBinding{dir: filepath.Dir(path), id: id}] = path
	st.pathOwners[path] = id
}

// increaseBackoff grows the pause between items after a key exchange failure.
func (s *ServiceImpl) increaseBackoff(ctx context.Context) {
	step := s.rt.Config.ParsedBulkWaitTime
	if step <= 0 {
		step = defaultBackoffStep
	}

	s.state.bulkWait = min(s.state.bulkWait+step, step*maxBackoffFactor)

	logger.Warnf(
		ctx,
		"Audio key exchange failed, the service may be rate limiting. Pause between items is now %s",
		s.state.bulkWait)
}
