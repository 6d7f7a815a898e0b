package archive

//go:generate $MOCKGEN -source=archive.go -destination=mocks/archive_mock.go

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/oshokin/spotify-grabber/internal/constants"
	"github.com/oshokin/spotify-grabber/internal/logger"
)

// Index answers "was this item downloaded before" for a directory and globally.
type Index interface {
	// ContainsGlobal reports whether id was ever downloaded.
	ContainsGlobal(ctx context.Context, id string) bool
	// ContainsDirectory reports whether id was ever placed in dir.
	ContainsDirectory(ctx context.Context, dir, id string) bool
	// AppendGlobal appends a record to the global index.
	AppendGlobal(ctx context.Context, record *Record) error
	// AppendDirectory appends a record to the index of dir.
	AppendDirectory(ctx context.Context, dir string, record *Record) error
	// LookupDirectory returns the latest record of id in dir.
	LookupDirectory(ctx context.Context, dir, id string) (*Record, bool)
	// OwnerOf returns the id recorded for filename in dir.
	OwnerOf(ctx context.Context, dir, filename string) (string, bool)
	// Invalidate drops the cached records of dir so the next access reloads the file.
	Invalidate(dir string)
	// GlobalEnabled reports whether the global index is active.
	GlobalEnabled() bool
	// DirectoryEnabled reports whether the directory indexes are active.
	DirectoryEnabled() bool
}

// Options configures an Index.
type Options struct {
	// GlobalPath is the file holding the global index.
	GlobalPath string
	// DisableGlobal turns the global index into a no-op.
	DisableGlobal bool
	// DisableDirectory turns the directory indexes into no-ops.
	DisableDirectory bool
}

// IndexImpl implements Index on top of flat files with lazily loaded in-memory caches.
type IndexImpl struct {
	// opts holds the index configuration.
	opts Options
	// mu guards the caches below.
	mu sync.Mutex
	// global caches the global index once loaded.
	global *table
	// directories caches directory indexes keyed by absolute directory path.
	directories map[string]*table
}

// table is the in-memory view of one index file.
type table struct {
	// byID maps an id to its last appended record.
	byID map[string]*Record
	// byFilename maps a filename to the id last recorded for it.
	byFilename map[string]string
}

// ErrEmptyRecordID indicates an attempt to append a record without an id.
var ErrEmptyRecordID = errors.New("archive record id cannot be empty")

// NewIndex creates and returns a new instance of IndexImpl.
func NewIndex(opts Options) Index {
	return &IndexImpl{
		opts:        opts,
		directories: make(map[string]*table),
	}
}

// GlobalEnabled reports whether the global index is active.
func (x *IndexImpl) GlobalEnabled() bool {
	return !x.opts.DisableGlobal && x.opts.GlobalPath != ""
}

// DirectoryEnabled reports whether the directory indexes are active.
func (x *IndexImpl) DirectoryEnabled() bool {
	return !x.opts.DisableDirectory
}

// ContainsGlobal reports whether id was ever downloaded.
func (x *IndexImpl) ContainsGlobal(ctx context.Context, id string) bool {
	if !x.GlobalEnabled() {
		return false
	}

	x.mu.Lock()
	defer x.mu.Unlock()

	_, ok := x.globalTable(ctx).byID[id]

	return ok
}

// ContainsDirectory reports whether id was ever placed in dir.
func (x *IndexImpl) ContainsDirectory(ctx context.Context, dir, id string) bool {
	_, ok := x.LookupDirectory(ctx, dir, id)

	return ok
}

// LookupDirectory returns the latest record of id in dir.
func (x *IndexImpl) LookupDirectory(ctx context.Context, dir, id string) (*Record, bool) {
	if !x.DirectoryEnabled() {
		return nil, false
	}

	x.mu.Lock()
	defer x.mu.Unlock()

	record, ok := x.directoryTable(ctx, dir).byID[id]

	return record, ok
}

// OwnerOf returns the id recorded for filename in dir.
func (x *IndexImpl) OwnerOf(ctx context.Context, dir, filename string) (string, bool) {
	if !x.DirectoryEnabled() {
		return "", false
	}

	x.mu.Lock()
	defer x.mu.Unlock()

	id, ok := x.directoryTable(ctx, dir).byFilename[filename]

	return id, ok
}

// AppendGlobal appends a record to the global index.
// Callers check ContainsGlobal first: the log is append-only and never deduplicated here.
func (x *IndexImpl) AppendGlobal(ctx context.Context, record *Record) error {
	if !x.GlobalEnabled() {
		return nil
	}

	x.mu.Lock()
	defer x.mu.Unlock()

	current := x.globalTable(ctx)

	if err := appendLine(x.opts.GlobalPath, record); err != nil {
		return fmt.Errorf("failed to append to global archive: %w", err)
	}

	current.add(record)

	return nil
}

// AppendDirectory appends a record to the index of dir.
func (x *IndexImpl) AppendDirectory(ctx context.Context, dir string, record *Record) error {
	if !x.DirectoryEnabled() {
		return nil
	}

	x.mu.Lock()
	defer x.mu.Unlock()

	current := x.directoryTable(ctx, dir)

	if err := appendLine(filepath.Join(dir, constants.DirectoryArchiveFilename), record); err != nil {
		return fmt.Errorf("failed to append to directory archive: %w", err)
	}

	current.add(record)

	return nil
}

// Invalidate drops the cached records of dir so the next access reloads the file.
// An empty dir drops the global cache.
func (x *IndexImpl) Invalidate(dir string) {
	x.mu.Lock()
	defer x.mu.Unlock()

	if dir == "" {
		x.global = nil

		return
	}

	delete(x.directories, cacheKey(dir))
}

func (x *IndexImpl) globalTable(ctx context.Context) *table {
	if x.global == nil {
		x.global = loadTable(ctx, x.opts.GlobalPath)
	}

	return x.global
}

func (x *IndexImpl) directoryTable(ctx context.Context, dir string) *table {
	key := cacheKey(dir)

	current, ok := x.directories[key]
	if !ok {
		current = loadTable(ctx, filepath.Join(key, constants.DirectoryArchiveFilename))
		x.directories[key] = current
	}

	return current
}

func (t *table) add(record *Record) {
	t.byID[record.ID] = record

	if record.Filename != "" {
		t.byFilename[record.Filename] = record.ID
	}
}

func cacheKey(dir string) string {
	absolute, err := filepath.Abs(dir)
	if err != nil {
		return filepath.Clean(dir)
	}

	return absolute
}

// loadTable reads an index file, skipping malformed lines.
// A missing or unreadable file yields an empty table.
func loadTable(ctx context.Context, path string) *table {
	result := &table{
		byID:       make(map[string]*Record),
		byFilename: make(map[string]string),
	}

	file, err := os.Open(filepath.Clean(path))
	if err != nil {
		if !os.IsNotExist(err) {
			logger.Warnf(ctx, "Failed to read archive '%s', treating it as empty: %v", path, err)
		}

		return result
	}

	defer file.Close() //nolint:errcheck // Error on close is not critical here.

	var (
		scanner    = bufio.NewScanner(file)
		lineNumber int
		skipped    int
	)

	for scanner.Scan() {
		lineNumber++

		line := strings.TrimRight(scanner.Text(), "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}

		record, parseErr := ParseRecord(line)
		if parseErr != nil {
			skipped++

			logger.Debugf(ctx, "Skipping malformed line %d in archive '%s': %v", lineNumber, path, parseErr)

			continue
		}

		result.add(record)
	}

	if err = scanner.Err(); err != nil {
		logger.Warnf(ctx, "Archive '%s' was read partially: %v", path, err)
	}

	if skipped > 0 {
		logger.Warnf(ctx, "Skipped %d malformed line(s) in archive '%s'", skipped, path)
	}

	return result
}

func appendLine(path string, record *Record) error {
	if record == nil || strings.TrimSpace(record.ID) == "" {
		return ErrEmptyRecordID
	}

	if err := os.MkdirAll(filepath.Dir(path), constants.DefaultFolderPermissions); err != nil {
		return err
	}

	file, err := os.OpenFile(filepath.Clean(path), os.O_APPEND|os.O_CREATE|os.O_WRONLY, constants.DefaultFilePermissions)
	if err != nil {
		return err
	}

	if _, err = file.WriteString(record.String() + "\n"); err != nil {
		file.Close() //nolint:errcheck,gosec // The write error is more relevant.

		return err
	}

	return file.Close()
}

// NewRecord builds a record stamped with the current local time.
func NewRecord(id, artist, title, filename string) *Record {
	return &Record{
		ID:        id,
		Timestamp: time.Now(),
		Artist:    artist,
		Title:     title,
		Filename:  filename,
	}
}
