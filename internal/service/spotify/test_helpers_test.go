package spotify

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/oshokin/spotify-grabber/internal/archive"
	"github.com/oshokin/spotify-grabber/internal/client/spotify"
	mock_spotify_client "github.com/oshokin/spotify-grabber/internal/client/spotify/mocks"
	"github.com/oshokin/spotify-grabber/internal/config"
	"github.com/oshokin/spotify-grabber/internal/logger"
)

// testDownloadSetup encapsulates common test dependencies and configuration.
type testDownloadSetup struct {
	ctrl         *gomock.Controller
	mockClient   *mock_spotify_client.MockClient
	service      *ServiceImpl
	config       *config.Config
	index        archive.Index
	tagProcessor *recordingTagProcessor
	listener     *recordingListener
	musicRoot    string
}

// newTestConfig returns a configuration writing into dir with everything optional turned off.
func newTestConfig(dir string) *config.Config {
	return &config.Config{
		DownloadFormat:        config.FormatCopy,
		DownloadQuality:       config.QualityAuto,
		OutputSingle:          "{artist}/{song_name}",
		OutputAlbum:           "{artist}/{album}/{album_num}_{song_name}",
		OutputPlaylist:        "{playlist}/{artist}_{song_name}",
		OutputPlaylistExt:     "{playlist}/{playlist_num}_{artist}_{song_name}",
		OutputLikedSongs:      "Liked Songs/{artist}_{song_name}",
		ArtistDelimiter:       ", ",
		GenreDelimiter:        ", ",
		SkipExisting:          true,
		M3U8RelativePaths:     true,
		SearchLimit:           10,
		ParsedLogLevel:        logger.Level(),
		ParsedRootPath:        filepath.Join(dir, "music"),
		ParsedRootPodcastPath: filepath.Join(dir, "podcasts"),
		ParsedSongArchivePath: filepath.Join(dir, "data", "track_archive"),
	}
}

// newTestDownloadSetup creates a standard test setup with optional config overrides.
func newTestDownloadSetup(t *testing.T, configOverrides ...func(*config.Config)) *testDownloadSetup {
	t.Helper()

	ctrl := gomock.NewController(t)
	cfg := newTestConfig(t.TempDir())

	for _, override := range configOverrides {
		override(cfg)
	}

	return newTestDownloadSetupWithConfig(t, ctrl, cfg)
}

// newTestDownloadSetupWithConfig builds a fresh service over cfg, as a new run of the program would.
func newTestDownloadSetupWithConfig(
	t *testing.T,
	ctrl *gomock.Controller,
	cfg *config.Config,
) *testDownloadSetup {
	t.Helper()

	var (
		mockClient = mock_spotify_client.NewMockClient(ctrl)
		index      = archive.NewIndex(archive.Options{
			GlobalPath:       cfg.ParsedSongArchivePath,
			DisableGlobal:    cfg.DisableSongArchive,
			DisableDirectory: cfg.DisableDirectoryArchives,
		})
		tags       = new(recordingTagProcessor)
		listener   = new(recordingListener)
	)

	service := NewService(
		NewRuntimeContext(cfg, mockClient, index),
		NewURLProcessor(),
		NewTemplateManager(cfg),
		tags,
		new(copyTranscoder),
		listener,
	)

	impl, ok := service.(*ServiceImpl)
	require.True(t, ok, "Service should be of type *ServiceImpl")

	return &testDownloadSetup{
		ctrl:         ctrl,
		mockClient:   mockClient,
		service:      impl,
		config:       cfg,
		index:        index,
		tagProcessor: tags,
		listener:     listener,
		musicRoot:    cfg.ParsedRootPath,
	}
}

// rerun returns a new setup sharing the configuration and files of s.
func (s *testDownloadSetup) rerun(t *testing.T) *testDownloadSetup {
	t.Helper()

	return newTestDownloadSetupWithConfig(t, s.ctrl, s.config)
}

// expectStream makes the next OpenStream call for id return data.
func (s *testDownloadSetup) expectStream(id string, data []byte) {
	s.mockClient.EXPECT().
		OpenStream(gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, item *spotify.ContentItem, _ string) (spotify.Stream, error) {
			if item.ID != id {
				return nil, &spotify.StreamUnavailableError{ID: item.ID, Err: io.ErrUnexpectedEOF}
			}

			return newFakeStream(data), nil
		})
}

// fakeStream serves data as an audio stream of known size.
type fakeStream struct {
	*bytes.Reader
	totalSize int64
}

func newFakeStream(data []byte) *fakeStream {
	return &fakeStream{Reader: bytes.NewReader(data), totalSize: int64(len(data))}
}

func (s *fakeStream) Close() error {
	return nil
}

func (s *fakeStream) TotalSize() int64 {
	return s.totalSize
}

// recordingTagProcessor remembers tag requests instead of writing tags.
type recordingTagProcessor struct {
	mu       sync.Mutex
	requests []*WriteTagsRequest
}

func (p *recordingTagProcessor) WriteTags(_ context.Context, req *WriteTagsRequest) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.requests = append(p.requests, req)

	return nil
}

// copyTranscoder copies the source file to the target.
type copyTranscoder struct{}

func (copyTranscoder) Transcode(_ context.Context, req *TranscodeRequest) error {
	data, err := os.ReadFile(req.SourcePath)
	if err != nil {
		return err
	}

	return os.WriteFile(req.TargetPath, data, 0o600)
}

// missingTranscoder behaves like a transcoder whose executable is not installed.
type missingTranscoder struct{}

func (missingTranscoder) Transcode(context.Context, *TranscodeRequest) error {
	return &TranscodeUnavailableError{Executable: "ffmpeg", Err: os.ErrNotExist}
}

// recordingListener remembers the events it receives.
type recordingListener struct {
	mu        sync.Mutex
	skipped   map[string]SkipReason
	failed    []string
	completed []string
	progress  int
}

func (l *recordingListener) OnProgress(context.Context, *spotify.ContentItem, int64, int64) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.progress++
}

func (l *recordingListener) OnSkip(_ context.Context, item *spotify.ContentItem, reason SkipReason) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.skipped == nil {
		l.skipped = make(map[string]SkipReason)
	}

	l.skipped[item.ID] = reason
}

func (l *recordingListener) OnError(_ context.Context, item *spotify.ContentItem, _ error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.failed = append(l.failed, item.ID)
}

func (l *recordingListener) OnComplete(_ context.Context, item *spotify.ContentItem, _ *ItemResult) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.completed = append(l.completed, item.ID)
}

// newTestTrack creates a playable track with sensible defaults.
func newTestTrack(id, name, artist string) *spotify.ContentItem {
	return &spotify.ContentItem{
		ID:           id,
		Kind:         spotify.KindTrack,
		Name:         name,
		Artists:      []string{artist},
		ArtistIDs:    []string{"artist-" + artist},
		AlbumName:    "Test Album",
		AlbumID:      "album-" + id,
		AlbumArtists: []string{artist},
		DurationMs:   180000,
		IsPlayable:   true,
		DiscNumber:   1,
		TrackNumber:  1,
		TotalTracks:  1,
		ReleaseDate:  "2024-01-01",
		ReleaseYear:  "2024",
	}
}

// singleRequest wraps a resolved track into a single item request.
func singleRequest(item *spotify.ContentItem) *itemRequest {
	return &itemRequest{
		id:        item.ID,
		kind:      item.Kind,
		resolved:  item,
		mode:      TemplateModeSingle,
		isPrimary: true,
	}
}

// makeFakeAudioData creates deterministic fake audio data for testing.
func makeFakeAudioData(sizeKB int) []byte {
	fakeData := make([]byte, sizeKB*1024)
	for i := range fakeData {
		fakeData[i] = byte(i % 256)
	}

	return fakeData
}

// findFilesWithExtension lists every file with ext under dir.
func findFilesWithExtension(t *testing.T, dir, ext string) []string {
	t.Helper()

	var found []string

	err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			if os.IsNotExist(err) {
				return nil
			}

			return err
		}

		if !info.IsDir() && filepath.Ext(path) == ext {
			found = append(found, path)
		}

		return nil
	})

	require.NoError(t, err, "Failed to walk directory")

	return found
}
