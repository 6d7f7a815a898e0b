package archive

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oshokin/spotify-grabber/internal/constants"
)

// TestIndex_GlobalAppendThenQuery tests that appended ids are visible now and after a fresh load.
func TestIndex_GlobalAppendThenQuery(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	globalPath := filepath.Join(t.TempDir(), "nested", "track_archive")
	index := NewIndex(Options{GlobalPath: globalPath})

	ids := []string{"4uLU6hMCjMI75M1A2tKUQC", "7GhIk7Il098yCjg4BQjzvb", "0VjIjW4GlUZAMYd2vXMi3b"}
	for _, id := range ids {
		assert.False(t, index.ContainsGlobal(ctx, id))
		require.NoError(t, index.AppendGlobal(ctx, NewRecord(id, "Artist", "Title", "/music/"+id+".ogg")))
		assert.True(t, index.ContainsGlobal(ctx, id))
	}

	reloaded := NewIndex(Options{GlobalPath: globalPath})
	for _, id := range ids {
		assert.True(t, reloaded.ContainsGlobal(ctx, id))
	}

	assert.False(t, reloaded.ContainsGlobal(ctx, "unknown"))
}

// TestIndex_DirectoryAppendThenQuery tests directory scoped membership and filename ownership.
func TestIndex_DirectoryAppendThenQuery(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	dir := filepath.Join(t.TempDir(), "Artist", "Album")
	otherDir := filepath.Join(t.TempDir(), "Other")
	index := NewIndex(Options{})

	require.NoError(t, index.AppendDirectory(ctx, dir, NewRecord("id-1", "Artist", "Song", "Song.ogg")))

	assert.True(t, index.ContainsDirectory(ctx, dir, "id-1"))
	assert.False(t, index.ContainsDirectory(ctx, otherDir, "id-1"))

	owner, ok := index.OwnerOf(ctx, dir, "Song.ogg")
	require.True(t, ok)
	assert.Equal(t, "id-1", owner)

	record, ok := index.LookupDirectory(ctx, dir, "id-1")
	require.True(t, ok)
	assert.Equal(t, "Song.ogg", record.Filename)

	content, err := os.ReadFile(filepath.Join(dir, constants.DirectoryArchiveFilename))
	require.NoError(t, err)

	fields := strings.Split(strings.TrimSuffix(string(content), "\n"), "\t")
	require.Len(t, fields, 5)
	assert.Equal(t, "id-1", fields[0])
	assert.Equal(t, "Song.ogg", fields[4])
}

// TestIndex_RelativeAndAbsoluteDirectoriesShareCache tests that cache keys are absolute paths.
//
//nolint:paralleltest // Changes the working directory.
func TestIndex_RelativeAndAbsoluteDirectoriesShareCache(t *testing.T) {
	ctx := context.Background()
	root := t.TempDir()
	t.Chdir(root)

	index := NewIndex(Options{})
	require.NoError(t, index.AppendDirectory(ctx, "Album", NewRecord("id-1", "A", "T", "T.ogg")))

	assert.True(t, index.ContainsDirectory(ctx, filepath.Join(root, "Album"), "id-1"))
}

// TestIndex_MalformedLinesAreSkipped tests that one corrupt line does not hide valid records.
func TestIndex_MalformedLinesAreSkipped(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	dir := t.TempDir()

	lines := []string{
		"id-1\t2024-01-02 03:04:05\tArtist\tOne\tOne.ogg",
		"garbage without tabs",
		"id-2\t2024-01-02 03:04:06\tArtist\tTwo\tTwo.ogg",
		"\t2024-01-02 03:04:07\tArtist\tNo id\tNoID.ogg",
		"id-3\tnot a date\tArtist\tThree\tThree.ogg\r",
		"id-4\t2024-01-02",
	}

	err := os.WriteFile(
		filepath.Join(dir, constants.DirectoryArchiveFilename),
		[]byte(strings.Join(lines, "\n")+"\n"),
		constants.DefaultFilePermissions)
	require.NoError(t, err)

	index := NewIndex(Options{})

	assert.True(t, index.ContainsDirectory(ctx, dir, "id-1"))
	assert.True(t, index.ContainsDirectory(ctx, dir, "id-2"))
	assert.True(t, index.ContainsDirectory(ctx, dir, "id-3"))
	assert.False(t, index.ContainsDirectory(ctx, dir, "id-4"))

	record, ok := index.LookupDirectory(ctx, dir, "id-3")
	require.True(t, ok)
	assert.True(t, record.Timestamp.IsZero())
	assert.Equal(t, "Three.ogg", record.Filename)
}

// TestIndex_LoadsExactlyValidRecords tests malformed-row tolerance for N valid lines plus one corrupt line.
func TestIndex_LoadsExactlyValidRecords(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	globalPath := filepath.Join(t.TempDir(), "track_archive")

	const validLines = 25

	var builder strings.Builder

	for i := range validLines {
		if i == validLines/2 {
			builder.WriteString("truncated-line\t2024-01\n")
		}

		fmt.Fprintf(&builder, "id-%02d\t2024-01-02 03:04:05\tArtist\tTitle %d\t/music/%d.ogg\n", i, i, i)
	}

	require.NoError(t, os.WriteFile(globalPath, []byte(builder.String()), constants.DefaultFilePermissions))

	index, ok := NewIndex(Options{GlobalPath: globalPath}).(*IndexImpl)
	require.True(t, ok)

	for i := range validLines {
		assert.True(t, index.ContainsGlobal(ctx, fmt.Sprintf("id-%02d", i)))
	}

	assert.Len(t, index.global.byID, validLines)
	assert.False(t, index.ContainsGlobal(ctx, "truncated-line"))
}

// TestIndex_Disabled tests that disabled tiers never report membership and never write.
func TestIndex_Disabled(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	root := t.TempDir()
	globalPath := filepath.Join(root, "track_archive")
	dir := filepath.Join(root, "Album")

	index := NewIndex(Options{GlobalPath: globalPath, DisableGlobal: true, DisableDirectory: true})

	assert.False(t, index.GlobalEnabled())
	assert.False(t, index.DirectoryEnabled())

	require.NoError(t, index.AppendGlobal(ctx, NewRecord("id-1", "A", "T", "T.ogg")))
	require.NoError(t, index.AppendDirectory(ctx, dir, NewRecord("id-1", "A", "T", "T.ogg")))

	assert.False(t, index.ContainsGlobal(ctx, "id-1"))
	assert.False(t, index.ContainsDirectory(ctx, dir, "id-1"))

	_, ok := index.OwnerOf(ctx, dir, "T.ogg")
	assert.False(t, ok)

	assert.NoFileExists(t, globalPath)
	assert.NoDirExists(t, dir)
}

// TestIndex_Invalidate tests that external writes become visible only after invalidation.
func TestIndex_Invalidate(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	dir := t.TempDir()
	index := NewIndex(Options{})

	assert.False(t, index.ContainsDirectory(ctx, dir, "id-1"))

	line := NewRecord("id-1", "A", "T", "T.ogg").String() + "\n"
	require.NoError(t, os.WriteFile(
		filepath.Join(dir, constants.DirectoryArchiveFilename), []byte(line), constants.DefaultFilePermissions))

	assert.False(t, index.ContainsDirectory(ctx, dir, "id-1"))

	index.Invalidate(dir)

	assert.True(t, index.ContainsDirectory(ctx, dir, "id-1"))
}

// TestIndex_LastAppendedWins tests that a later record for the same filename takes ownership.
func TestIndex_LastAppendedWins(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	dir := t.TempDir()
	index := NewIndex(Options{})

	require.NoError(t, index.AppendDirectory(ctx, dir, NewRecord("id-1", "A", "T", "T.ogg")))
	require.NoError(t, index.AppendDirectory(ctx, dir, NewRecord("id-2", "B", "T", "T.ogg")))

	owner, ok := NewIndex(Options{}).OwnerOf(ctx, dir, "T.ogg")
	require.True(t, ok)
	assert.Equal(t, "id-2", owner)

	assert.True(t, index.ContainsDirectory(ctx, dir, "id-1"))
}

// TestIndex_AppendRejectsEmptyID tests that records without an id are never written.
func TestIndex_AppendRejectsEmptyID(t *testing.T) {
	t.Parallel()

	index := NewIndex(Options{GlobalPath: filepath.Join(t.TempDir(), "track_archive")})

	err := index.AppendGlobal(context.Background(), NewRecord(" ", "A", "T", "T.ogg"))
	require.ErrorIs(t, err, ErrEmptyRecordID)
}

// TestRecord_StringAndParse tests the archive line format.
func TestRecord_StringAndParse(t *testing.T) {
	t.Parallel()

	timestamp := time.Date(2024, time.March, 5, 6, 7, 8, 0, time.Local)
	record := &Record{
		ID:        "id-1",
		Timestamp: timestamp,
		Artist:    "Artist\tWith Tab",
		Title:     "Title\nWith Newline",
		Filename:  "Song.ogg",
	}

	line := record.String()
	assert.Equal(t, "id-1\t2024-03-05 06:07:08\tArtist With Tab\tTitle With Newline\tSong.ogg", line)

	parsed, err := ParseRecord(line)
	require.NoError(t, err)
	assert.Equal(t, "id-1", parsed.ID)
	assert.True(t, timestamp.Equal(parsed.Timestamp))
	assert.Equal(t, "Artist With Tab", parsed.Artist)

	_, err = ParseRecord("id-1\t2024-03-05 06:07:08\tArtist")
	require.ErrorIs(t, err, ErrMalformedRecord)
}
