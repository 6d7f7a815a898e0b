package spotify

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestNewURLProcessor tests the NewURLProcessor function.
func TestNewURLProcessor(t *testing.T) {
	t.Parallel()

	processor := NewURLProcessor()
	assert.NotNil(t, processor)
	assert.Implements(t, (*URLProcessor)(nil), processor)
}

// TestURLPatterns tests recognition of URIs and web links.
func TestURLPatterns(t *testing.T) {
	t.Parallel()

	const id = "4uLU6hMCjMI75M1A2tKUQC"

	tests := []struct {
		name             string
		input            string
		expectedCategory DownloadCategory
		expectedID       string
	}{
		{
			name:             "track URI",
			input:            "spotify:track:" + id,
			expectedCategory: DownloadCategoryTrack,
			expectedID:       id,
		},
		{
			name:             "album URL",
			input:            "https://open.spotify.com/album/" + id,
			expectedCategory: DownloadCategoryAlbum,
			expectedID:       id,
		},
		{
			name:             "playlist URL with query",
			input:            "https://open.spotify.com/playlist/" + id + "?si=abcdef",
			expectedCategory: DownloadCategoryPlaylist,
			expectedID:       id,
		},
		{
			name:             "localized artist URL",
			input:            "https://open.spotify.com/intl-de/artist/" + id,
			expectedCategory: DownloadCategoryArtist,
			expectedID:       id,
		},
		{
			name:             "episode URI",
			input:            "spotify:episode:" + id,
			expectedCategory: DownloadCategoryEpisode,
			expectedID:       id,
		},
		{
			name:             "show URL with trailing slash",
			input:            "https://open.spotify.com/show/" + id + "/",
			expectedCategory: DownloadCategoryShow,
			expectedID:       id,
		},
		{
			name:             "short identifier is searched",
			input:            "spotify:track:123",
			expectedCategory: DownloadCategorySearch,
			expectedID:       "spotify:track:123",
		},
		{
			name:             "foreign host is searched",
			input:            "https://example.com/track/" + id,
			expectedCategory: DownloadCategorySearch,
			expectedID:       "https://example.com/track/" + id,
		},
		{
			name:             "free text",
			input:            "daft punk one more time",
			expectedCategory: DownloadCategorySearch,
			expectedID:       "daft punk one more time",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			items, err := NewURLProcessor().ExtractDownloadItems(context.Background(), []string{tt.input})
			require.NoError(t, err)
			require.Len(t, items, 1)

			assert.Equal(t, tt.expectedCategory, items[0].Category)
			assert.Equal(t, tt.expectedID, items[0].ItemID)
			assert.Equal(t, tt.input, items[0].URL)
		})
	}
}

// TestExtractDownloadItems_KeepsOrderAndDeduplicates tests that input order survives deduplication.
func TestExtractDownloadItems_KeepsOrderAndDeduplicates(t *testing.T) {
	t.Parallel()

	const (
		firstID  = "4uLU6hMCjMI75M1A2tKUQC"
		secondID = "7GhIk7Il098yCjg4BQjzvb"
	)

	inputs := []string{
		"https://open.spotify.com/track/" + firstID,
		"spotify:album:" + secondID,
		"spotify:track:" + firstID,
		"  ",
		"https://open.spotify.com/album/" + secondID + "?si=1",
	}

	items, err := NewURLProcessor().ExtractDownloadItems(context.Background(), inputs)
	require.NoError(t, err)
	require.Len(t, items, 2)

	assert.Equal(t, DownloadCategoryTrack, items[0].Category)
	assert.Equal(t, firstID, items[0].ItemID)
	assert.Equal(t, DownloadCategoryAlbum, items[1].Category)
	assert.Equal(t, secondID, items[1].ItemID)
}

// TestExtractDownloadItems_TextFile tests expansion of text files with links.
func TestExtractDownloadItems_TextFile(t *testing.T) {
	t.Parallel()

	const id = "4uLU6hMCjMI75M1A2tKUQC"

	dir := t.TempDir()
	listPath := filepath.Join(dir, "links.txt")

	content := "# favourites\n" +
		"spotify:track:" + id + "\n" +
		"\n" +
		"https://open.spotify.com/playlist/" + id + "\n" +
		"spotify:track:" + id + "\n"
	require.NoError(t, os.WriteFile(listPath, []byte(content), 0o600))

	items, err := NewURLProcessor().ExtractDownloadItems(context.Background(), []string{listPath, listPath})
	require.NoError(t, err)
	require.Len(t, items, 2)

	assert.Equal(t, DownloadCategoryTrack, items[0].Category)
	assert.Equal(t, DownloadCategoryPlaylist, items[1].Category)
}

// TestExtractDownloadItems_MissingTextFile tests that an unreadable text file is an error.
func TestExtractDownloadItems_MissingTextFile(t *testing.T) {
	t.Parallel()

	_, err := NewURLProcessor().ExtractDownloadItems(
		context.Background(),
		[]string{filepath.Join(t.TempDir(), "missing.txt")})
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

// TestDeduplicateDownloadItems tests deduplication by category and identifier.
func TestDeduplicateDownloadItems(t *testing.T) {
	t.Parallel()

	items := []*DownloadItem{
		{Category: DownloadCategoryTrack, ItemID: "a", URL: "first"},
		{Category: DownloadCategoryAlbum, ItemID: "a", URL: "second"},
		{Category: DownloadCategoryTrack, ItemID: "a", URL: "third"},
		{Category: DownloadCategoryTrack, ItemID: "b", URL: "fourth"},
	}

	result := NewURLProcessor().DeduplicateDownloadItems(items)
	require.Len(t, result, 3)

	assert.Equal(t, "first", result[0].URL)
	assert.Equal(t, "second", result[1].URL)
	assert.Equal(t, "fourth", result[2].URL)
}
