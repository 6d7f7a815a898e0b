package spotify

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/oshokin/spotify-grabber/internal/client/spotify"
	"github.com/oshokin/spotify-grabber/internal/config"
	"github.com/oshokin/spotify-grabber/internal/constants"
)

const (
	testAlbumID    = "1DFixLWuPkv3KT3TnV35m3"
	testPlaylistID = "37i9dQZF1DXcBWIGoYBM5M"
)

// newTestAlbum creates an album whose tracks are named after names.
func newTestAlbum(names ...string) *spotify.Album {
	album := &spotify.Album{
		ID:          testAlbumID,
		Name:        "Album Name",
		Artists:     []string{"Artist"},
		ArtistIDs:   []string{"artist-Artist"},
		AlbumType:   "album",
		ReleaseDate: "2024-01-01",
		ReleaseYear: "2024",
		TotalTracks: len(names),
		TotalDiscs:  1,
	}

	for index, name := range names {
		track := newTestTrack(strings.Repeat(string(rune('a'+index)), 22), name, "Artist")
		track.AlbumName = album.Name
		track.AlbumID = album.ID
		track.TrackNumber = index + 1
		track.TotalTracks = len(names)

		album.Tracks = append(album.Tracks, track)
	}

	return album
}

// countEntries returns the number of #EXTINF lines of a playlist file.
func countEntries(t *testing.T, path string) int {
	t.Helper()

	content, err := os.ReadFile(path)
	require.NoError(t, err)

	return strings.Count(string(content), m3u8EntryPrefix)
}

// TestDownloadAlbum_CompilationSkipped tests that the compilation filter runs before any track is touched.
func TestDownloadAlbum_CompilationSkipped(t *testing.T) {
	t.Parallel()

	setup := newTestDownloadSetup(t, func(cfg *config.Config) {
		cfg.NoCompilationAlbums = true
	})
	defer setup.ctrl.Finish()

	album := newTestAlbum("One", "Two")
	album.AlbumType = spotify.AlbumTypeCompilation
	album.IsCompilation = true

	setup.mockClient.EXPECT().GetAlbum(gomock.Any(), testAlbumID).Return(album, nil)

	setup.service.downloadAlbum(context.Background(), &albumRequest{
		item:    &DownloadItem{Category: DownloadCategoryAlbum, ItemID: testAlbumID},
		albumID: testAlbumID,
	})

	stats := setup.service.Statistics()
	assert.Equal(t, int64(1), stats.CollectionsSkipped)
	assert.Zero(t, stats.CollectionsProcessed)
	assert.Zero(t, stats.TotalItemsProcessed)
	assert.Equal(t, SkipReasonFiltered, setup.listener.skipped[testAlbumID])
	assert.Empty(t, findFilesWithExtension(t, setup.musicRoot, constants.ExtensionOGG))
}

// TestDownloadAlbum_NameFilter tests the album skip pattern.
func TestDownloadAlbum_NameFilter(t *testing.T) {
	t.Parallel()

	setup := newTestDownloadSetup(t, func(cfg *config.Config) {
		cfg.RegexEnabled = true
		cfg.ParsedAlbumSkipRegex = regexp.MustCompile(`(?i)live`)
	})
	defer setup.ctrl.Finish()

	album := newTestAlbum("One")
	album.Name = "Live at Home"

	setup.mockClient.EXPECT().GetAlbum(gomock.Any(), testAlbumID).Return(album, nil)

	setup.service.downloadAlbum(context.Background(), &albumRequest{
		item:    &DownloadItem{Category: DownloadCategoryAlbum, ItemID: testAlbumID},
		albumID: testAlbumID,
	})

	assert.Equal(t, int64(1), setup.service.Statistics().CollectionsSkipped)
}

// TestDownloadAlbum_NumbersTracksAndExportsPlaylist tests album numbering and the album playlist export.
func TestDownloadAlbum_NumbersTracksAndExportsPlaylist(t *testing.T) {
	t.Parallel()

	setup := newTestDownloadSetup(t, func(cfg *config.Config) {
		cfg.ExportM3U8 = true
	})
	defer setup.ctrl.Finish()

	album := newTestAlbum("One", "Two")

	setup.mockClient.EXPECT().GetAlbum(gomock.Any(), testAlbumID).Return(album, nil)
	setup.expectStream(album.Tracks[0].ID, []byte("one"))
	setup.expectStream(album.Tracks[1].ID, []byte("two"))

	setup.service.downloadItem(context.Background(), &DownloadItem{
		Category: DownloadCategoryAlbum,
		ItemID:   testAlbumID,
	})

	albumDir := filepath.Join(setup.musicRoot, "Artist", "Album Name")
	assert.FileExists(t, filepath.Join(albumDir, "01_One.ogg"))
	assert.FileExists(t, filepath.Join(albumDir, "02_Two.ogg"))

	playlist, err := os.ReadFile(filepath.Join(albumDir, "Album Name"+constants.ExtensionM3U8))
	require.NoError(t, err)
	assert.Equal(t,
		"#EXTM3U\n\n"+
			"#EXTINF:180, Artist - One\n01_One.ogg\n\n"+
			"#EXTINF:180, Artist - Two\n02_Two.ogg\n\n",
		string(playlist))

	stats := setup.service.Statistics()
	assert.Equal(t, int64(1), stats.CollectionsProcessed)
	assert.Equal(t, int64(2), stats.TracksDownloaded)
}

// TestDownloadTrack_DelegatesToAlbum tests that a track can pull in its whole album,
// while only the requested track is listed in the playlist export.
func TestDownloadTrack_DelegatesToAlbum(t *testing.T) {
	t.Parallel()

	setup := newTestDownloadSetup(t, func(cfg *config.Config) {
		cfg.DownloadParentAlbum = true
		cfg.ExportM3U8 = true
	})
	defer setup.ctrl.Finish()

	album := newTestAlbum("One", "Two")
	requested := album.Tracks[1]

	setup.mockClient.EXPECT().GetTrack(gomock.Any(), requested.ID).Return(requested, nil)
	setup.mockClient.EXPECT().GetAlbum(gomock.Any(), testAlbumID).Return(album, nil)
	setup.expectStream(album.Tracks[0].ID, []byte("one"))
	setup.expectStream(album.Tracks[1].ID, []byte("two"))

	setup.service.DownloadURLs(context.Background(), []string{"https://open.spotify.com/track/" + requested.ID})

	assert.Equal(t, int64(2), setup.service.Statistics().TracksDownloaded)

	playlists := findFilesWithExtension(t, setup.musicRoot, constants.ExtensionM3U8)
	require.Len(t, playlists, 1)
	assert.True(t, strings.HasSuffix(playlists[0], singlesPlaylistSuffix+constants.ExtensionM3U8))
	assert.Equal(t, 1, countEntries(t, playlists[0]))
}

// TestPlaylistItemRequests tests playlist ordering and numbering.
func TestPlaylistItemRequests(t *testing.T) {
	t.Parallel()

	var (
		base     = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
		playlist = &spotify.Playlist{
			ID:   testPlaylistID,
			Name: "Mix",
			Entries: []*spotify.PlaylistEntry{
				{ID: "b", Kind: spotify.KindTrack, Name: "B", AddedAt: base.Add(2 * time.Hour)},
				{Name: "Local", AddedAt: base, IsLocal: true},
				{ID: "a", Kind: spotify.KindEpisode, Name: "A", AddedAt: base.Add(time.Hour)},
			},
		}
	)

	tests := []struct {
		name         string
		isExported   bool
		expectedIDs  []string
		expectedNums []string
		expectedMode TemplateMode
	}{
		{
			name:         "numbered newest first",
			expectedIDs:  []string{"b", "a"},
			expectedNums: []string{"03", "02"},
			expectedMode: TemplateModeExtendedPlaylist,
		},
		{
			name:         "exported in playlist order",
			isExported:   true,
			expectedIDs:  []string{"a", "b"},
			expectedNums: []string{"02", "03"},
			expectedMode: TemplateModePlaylist,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			setup := newTestDownloadSetup(t, func(cfg *config.Config) {
				cfg.ExportM3U8 = tt.isExported
			})
			defer setup.ctrl.Finish()

			reqs := setup.service.playlistItemRequests(playlist, &collectionContext{category: DownloadCategoryPlaylist})
			require.Len(t, reqs, len(tt.expectedIDs))

			for index, req := range reqs {
				assert.Equal(t, tt.expectedIDs[index], req.id)
				assert.Equal(t, tt.expectedNums[index], req.extras["playlist_num"])
				assert.Equal(t, "Mix", req.extras["playlist"])
				assert.Equal(t, tt.expectedMode, req.mode)
				assert.True(t, req.isPrimary)
			}

			assert.Equal(t, spotify.KindEpisode, reqs[slices.Index(tt.expectedIDs, "a")].kind)
		})
	}
}

// TestDownloadPlaylist_ExportsPlaylist tests a playlist download with its playlist export.
func TestDownloadPlaylist_ExportsPlaylist(t *testing.T) {
	t.Parallel()

	setup := newTestDownloadSetup(t, func(cfg *config.Config) {
		cfg.ExportM3U8 = true
	})
	defer setup.ctrl.Finish()

	var (
		base   = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
		first  = newTestTrack(testTrackID, "First", "Artist")
		second = newTestTrack(otherTestTrackID, "Second", "Artist")
	)

	setup.mockClient.EXPECT().GetPlaylist(gomock.Any(), testPlaylistID).Return(&spotify.Playlist{
		ID:    testPlaylistID,
		Name:  "Mix",
		Owner: "Owner",
		Entries: []*spotify.PlaylistEntry{
			{ID: second.ID, Kind: spotify.KindTrack, AddedAt: base.Add(time.Hour)},
			{ID: first.ID, Kind: spotify.KindTrack, AddedAt: base},
		},
	}, nil)
	setup.mockClient.EXPECT().GetTrack(gomock.Any(), first.ID).Return(first, nil)
	setup.mockClient.EXPECT().GetTrack(gomock.Any(), second.ID).Return(second, nil)
	setup.expectStream(first.ID, []byte("first"))
	setup.expectStream(second.ID, []byte("second"))

	setup.service.downloadItem(context.Background(), &DownloadItem{
		Category: DownloadCategoryPlaylist,
		ItemID:   testPlaylistID,
	})

	playlistDir := filepath.Join(setup.musicRoot, "Mix")
	assert.FileExists(t, filepath.Join(playlistDir, "Artist_First.ogg"))
	assert.FileExists(t, filepath.Join(playlistDir, "Artist_Second.ogg"))

	playlist, err := os.ReadFile(filepath.Join(playlistDir, "Mix"+constants.ExtensionM3U8))
	require.NoError(t, err)
	assert.Equal(t,
		"#EXTM3U\n\n"+
			"#EXTINF:180, Artist - First\nArtist_First.ogg\n\n"+
			"#EXTINF:180, Artist - Second\nArtist_Second.ogg\n\n",
		string(playlist))
}

// TestDownloadPlaylist_SkippedItemsAreListed tests that a rerun lists items already on disk.
func TestDownloadPlaylist_SkippedItemsAreListed(t *testing.T) {
	t.Parallel()

	setup := newTestDownloadSetup(t, func(cfg *config.Config) {
		cfg.ExportM3U8 = true
		cfg.DisableDirectoryArchives = true
	})
	defer setup.ctrl.Finish()

	track := newTestTrack(testTrackID, "First", "Artist")
	playlist := &spotify.Playlist{
		ID:      testPlaylistID,
		Name:    "Mix",
		Entries: []*spotify.PlaylistEntry{{ID: track.ID, Kind: spotify.KindTrack}},
	}

	existing := filepath.Join(setup.musicRoot, "Mix", "Artist_First.ogg")
	require.NoError(t, os.MkdirAll(filepath.Dir(existing), 0o750))
	require.NoError(t, os.WriteFile(existing, []byte("existing"), 0o600))

	setup.mockClient.EXPECT().GetPlaylist(gomock.Any(), testPlaylistID).Return(playlist, nil)
	setup.mockClient.EXPECT().GetTrack(gomock.Any(), track.ID).Return(track, nil)

	setup.service.downloadPlaylist(context.Background(), &DownloadItem{
		Category: DownloadCategoryPlaylist,
		ItemID:   testPlaylistID,
	})

	assert.Equal(t, 1, countEntries(t, filepath.Join(setup.musicRoot, "Mix", "Mix"+constants.ExtensionM3U8)))
	assert.Equal(t, int64(1), setup.service.Statistics().SkipReasons[SkipReasonFileExists])
}

// TestDownloadLiked tests the liked songs collection and its cumulative playlist.
func TestDownloadLiked(t *testing.T) {
	t.Parallel()

	setup := newTestDownloadSetup(t, func(cfg *config.Config) {
		cfg.LikedSongsArchiveM3U8 = true
	})
	defer setup.ctrl.Finish()

	track := newTestTrack(testTrackID, "Song", "Artist")

	setup.mockClient.EXPECT().GetLikedTracks(gomock.Any()).Return([]*spotify.PlaylistEntry{
		{ID: track.ID, Kind: spotify.KindTrack, Name: track.Name},
		{Name: "Local", IsLocal: true},
	}, nil)
	setup.mockClient.EXPECT().GetTrack(gomock.Any(), track.ID).Return(track, nil)
	setup.expectStream(track.ID, []byte("song"))

	setup.service.DownloadLiked(context.Background())

	likedDir := filepath.Join(setup.musicRoot, "Liked Songs")
	assert.FileExists(t, filepath.Join(likedDir, "Artist_Song.ogg"))
	assert.Equal(t, 1, countEntries(t, filepath.Join(likedDir, constants.LikedSongsPlaylistName+constants.ExtensionM3U8)))
}

// TestDownloadShow tests that show episodes are downloaded under the podcast root.
func TestDownloadShow(t *testing.T) {
	t.Parallel()

	setup := newTestDownloadSetup(t)
	defer setup.ctrl.Finish()

	episode := &spotify.ContentItem{
		ID:         testTrackID,
		Kind:       spotify.KindEpisode,
		Name:       "Pilot",
		Artists:    []string{"The Show"},
		ShowName:   "The Show",
		IsPlayable: true,
	}

	setup.mockClient.EXPECT().GetShow(gomock.Any(), "show").Return(&spotify.Show{
		ID:       "show",
		Name:     "The Show",
		Episodes: []*spotify.ContentItem{episode},
	}, nil)
	setup.mockClient.EXPECT().GetEpisode(gomock.Any(), episode.ID).Return(episode, nil)
	setup.expectStream(episode.ID, []byte("episode"))

	setup.service.downloadShow(context.Background(), &DownloadItem{Category: DownloadCategoryShow, ItemID: "show"})

	assert.FileExists(t, filepath.Join(setup.config.ParsedRootPodcastPath, "The Show", "The Show - Pilot.ogg"))
	assert.Equal(t, int64(1), setup.service.Statistics().EpisodesDownloaded)
}

// TestDownloadArtist tests that every album of an artist goes through the album expander.
func TestDownloadArtist(t *testing.T) {
	t.Parallel()

	setup := newTestDownloadSetup(t)
	defer setup.ctrl.Finish()

	setup.mockClient.EXPECT().GetArtistAlbums(gomock.Any(), "artist").Return([]*spotify.AlbumReference{
		{ID: "first", Name: "First", AlbumType: "album"},
		{ID: "second", Name: "Second", AlbumType: "single"},
	}, nil)
	setup.mockClient.EXPECT().GetAlbum(gomock.Any(), "first").Return(&spotify.Album{ID: "first", Name: "First"}, nil)
	setup.mockClient.EXPECT().GetAlbum(gomock.Any(), "second").Return(nil, errors.New("gone"))

	setup.service.downloadArtist(context.Background(), &DownloadItem{Category: DownloadCategoryArtist, ItemID: "artist"})

	stats := setup.service.Statistics()
	assert.Equal(t, int64(2), stats.CollectionsProcessed)
	require.Len(t, stats.Errors, 1)
	assert.Equal(t, DownloadCategoryAlbum, stats.Errors[0].Category)
	assert.Equal(t, "second", stats.Errors[0].ItemID)
	assert.Equal(t, phaseExpand, stats.Errors[0].Phase)
}

// TestPickSearchHit tests the choice of a search result.
func TestPickSearchHit(t *testing.T) {
	t.Parallel()

	result := &spotify.SearchResult{
		Albums:    []*spotify.SearchHit{{Kind: spotify.KindAlbum, ID: "album"}},
		Playlists: []*spotify.SearchHit{{Kind: spotify.KindPlaylist, ID: "playlist"}},
	}

	tests := []struct {
		name             string
		result           *spotify.SearchResult
		searchType       string
		expectedID       string
		expectedCategory DownloadCategory
		expectedOK       bool
	}{
		{
			name:             "first non-empty kind",
			result:           result,
			expectedID:       "album",
			expectedCategory: DownloadCategoryAlbum,
			expectedOK:       true,
		},
		{
			name:             "restricted kind",
			result:           result,
			searchType:       config.SearchTypePlaylist,
			expectedID:       "playlist",
			expectedCategory: DownloadCategoryPlaylist,
			expectedOK:       true,
		},
		{
			name:       "restricted kind without hits",
			result:     result,
			searchType: config.SearchTypeTrack,
		},
		{
			name:   "nothing found",
			result: &spotify.SearchResult{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			hit, category, ok := pickSearchHit(tt.result, tt.searchType)

			assert.Equal(t, tt.expectedOK, ok)
			assert.Equal(t, tt.expectedCategory, category)

			if tt.expectedOK {
				assert.Equal(t, tt.expectedID, hit.ID)
			}
		})
	}
}

// TestDownloadSearch_NothingFound tests that an empty search is reported as an error.
func TestDownloadSearch_NothingFound(t *testing.T) {
	t.Parallel()

	setup := newTestDownloadSetup(t)
	defer setup.ctrl.Finish()

	setup.mockClient.EXPECT().Search(gomock.Any(), "no such song", 10).Return(&spotify.SearchResult{}, nil)

	setup.service.DownloadURLs(context.Background(), []string{"no such song"})

	stats := setup.service.Statistics()
	require.Len(t, stats.Errors, 1)
	assert.Equal(t, DownloadCategorySearch, stats.Errors[0].Category)
	assert.Contains(t, stats.Errors[0].ErrorMessage, ErrNothingFound.Error())
}

// TestDownloadPlaylist_BatchesGenreLookups tests that the genres of a playlist are fetched in one request.
func TestDownloadPlaylist_BatchesGenreLookups(t *testing.T) {
	t.Parallel()

	setup := newTestDownloadSetup(t, func(cfg *config.Config) {
		cfg.SaveGenres = true
	})
	defer setup.ctrl.Finish()

	var (
		first  = newTestTrack(testTrackID, "First", "Rock Band")
		second = newTestTrack(otherTestTrackID, "Second", "Jazz Band")
	)

	setup.mockClient.EXPECT().GetPlaylist(gomock.Any(), testPlaylistID).Return(&spotify.Playlist{
		ID:   testPlaylistID,
		Name: "Mix",
		Entries: []*spotify.PlaylistEntry{
			{ID: first.ID, Kind: spotify.KindTrack, ArtistIDs: first.ArtistIDs},
			{ID: second.ID, Kind: spotify.KindTrack, ArtistIDs: second.ArtistIDs},
		},
	}, nil)
	setup.mockClient.EXPECT().
		GetArtistGenres(gomock.Any(), gomock.InAnyOrder([]string{"artist-Rock Band", "artist-Jazz Band"})).
		Return(map[string][]string{
			"artist-Rock Band": {"rock"},
			"artist-Jazz Band": {"jazz", "swing"},
		}, nil)
	setup.mockClient.EXPECT().GetTrack(gomock.Any(), first.ID).Return(first, nil)
	setup.mockClient.EXPECT().GetTrack(gomock.Any(), second.ID).Return(second, nil)
	// Newest entries are downloaded first.
	setup.expectStream(second.ID, []byte("second"))
	setup.expectStream(first.ID, []byte("first"))

	setup.service.downloadPlaylist(context.Background(), &DownloadItem{
		Category: DownloadCategoryPlaylist,
		ItemID:   testPlaylistID,
	})

	genres := make(map[string]string)
	for _, req := range setup.tagProcessor.requests {
		genres[req.TrackTags[tagTitle]] = req.TrackTags[tagGenre]
	}

	assert.Equal(t, map[string]string{"First": "rock", "Second": "jazz"}, genres)
}

// TestDownloadAlbum_BatchesGenreLookups tests that album tracks share one genre request.
func TestDownloadAlbum_BatchesGenreLookups(t *testing.T) {
	t.Parallel()

	setup := newTestDownloadSetup(t, func(cfg *config.Config) {
		cfg.SaveGenres = true
		cfg.AllGenres = true
		cfg.GenreDelimiter = "; "
	})
	defer setup.ctrl.Finish()

	album := newTestAlbum("One", "Two")

	setup.mockClient.EXPECT().GetAlbum(gomock.Any(), testAlbumID).Return(album, nil)
	setup.mockClient.EXPECT().
		GetArtistGenres(gomock.Any(), []string{"artist-Artist"}).
		Return(map[string][]string{"artist-Artist": {"pop", "dance"}}, nil)
	setup.expectStream(album.Tracks[0].ID, []byte("one"))
	setup.expectStream(album.Tracks[1].ID, []byte("two"))

	setup.service.downloadItem(context.Background(), &DownloadItem{
		Category: DownloadCategoryAlbum,
		ItemID:   testAlbumID,
	})

	require.Len(t, setup.tagProcessor.requests, 2)

	for _, req := range setup.tagProcessor.requests {
		assert.Equal(t, "pop; dance", req.TrackTags[tagGenre])
	}
}
