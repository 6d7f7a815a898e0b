package spotify

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/oshokin/spotify-grabber/internal/constants"
	"github.com/oshokin/spotify-grabber/internal/utils"
)

const (
	// m3u8Header opens every playlist file.
	m3u8Header = "#EXTM3U"
	// m3u8EntryPrefix starts the info line of an entry.
	m3u8EntryPrefix = "#EXTINF:"
	// m3u8OldSuffix marks the playlist left by a previous run.
	m3u8OldSuffix = ".old"

	// File options for appending to an existing file.
	appendFileOptions = os.O_APPEND | os.O_CREATE | os.O_WRONLY
)

// M3U8Writer appends entries to a playlist file and merges the playlist left by an interrupted run.
type M3U8Writer struct {
	// path is the playlist file.
	path string
	// oldPath is the playlist of the previous run.
	oldPath string
	// isRelative writes entry paths relative to the playlist directory.
	isRelative bool
	// isStarted is set once the header has been written.
	isStarted bool
	// written holds the entry paths already in the file.
	written map[string]struct{}
}

// m3u8Entry is one parsed playlist entry.
type m3u8Entry struct {
	// info is the full #EXTINF line.
	info string
	// path is the entry location as written.
	path string
}

// OpenM3U8 prepares a playlist at path.
// A playlist already at path is moved aside and merged back by Finish.
// If a previous run was interrupted as well, its entries are folded into the older file first.
func OpenM3U8(path string, isRelative bool) (*M3U8Writer, error) {
	path = utils.SetFileExtension(path, constants.ExtensionM3U8, false)

	err := os.MkdirAll(filepath.Dir(path), constants.DefaultFolderPermissions)
	if err != nil {
		return nil, err
	}

	w := &M3U8Writer{
		path:       path,
		oldPath:    strings.TrimSuffix(path, constants.ExtensionM3U8) + m3u8OldSuffix + constants.ExtensionM3U8,
		isRelative: isRelative,
		written:    make(map[string]struct{}),
	}

	isCurrentExist, err := utils.IsFileExist(w.path)
	if err != nil || !isCurrentExist {
		return w, err
	}

	isOldExist, err := utils.IsFileExist(w.oldPath)
	if err != nil {
		return nil, err
	}

	if !isOldExist {
		return w, os.Rename(w.path, w.oldPath)
	}

	err = mergeM3U8(w.path, w.oldPath)
	if err != nil {
		return nil, err
	}

	return w, os.Remove(w.path)
}

// Path returns the playlist file.
func (w *M3U8Writer) Path() string {
	return w.path
}

// Append adds an entry for dest unless the playlist already lists it.
// It returns the entry path as written.
func (w *M3U8Writer) Append(durationMs int, label, dest string) (string, error) {
	entryPath := w.entryPath(dest)
	if _, ok := w.written[entryPath]; ok {
		return entryPath, nil
	}

	err := w.writeEntries([]*m3u8Entry{{
		info: fmt.Sprintf("%s%d, %s", m3u8EntryPrefix, durationMs/1000, label),
		path: entryPath,
	}})
	if err != nil {
		return "", err
	}

	return entryPath, nil
}

// Finish appends the entries of the previous run that this run did not write, then removes the old file.
func (w *M3U8Writer) Finish() error {
	isOldExist, err := utils.IsFileExist(w.oldPath)
	if err != nil || !isOldExist {
		return err
	}

	oldEntries, err := readM3U8(w.oldPath)
	if err != nil {
		return err
	}

	missing := make([]*m3u8Entry, 0, len(oldEntries))

	for _, entry := range oldEntries {
		if _, ok := w.written[entry.path]; !ok {
			missing = append(missing, entry)
		}
	}

	if len(missing) > 0 || !w.isStarted {
		err = w.writeEntries(missing)
		if err != nil {
			return err
		}
	}

	return os.Remove(w.oldPath)
}

func (w *M3U8Writer) entryPath(dest string) string {
	if !w.isRelative {
		return dest
	}

	relativePath, err := filepath.Rel(filepath.Dir(w.path), dest)
	if err != nil {
		return dest
	}

	return relativePath
}

func (w *M3U8Writer) writeEntries(entries []*m3u8Entry) error {
	fileOptions := appendFileOptions
	if !w.isStarted {
		fileOptions = overwriteFileOptions
	}

	file, err := os.OpenFile(filepath.Clean(w.path), fileOptions, constants.DefaultFilePermissions)
	if err != nil {
		return err
	}

	defer file.Close() //nolint:errcheck // Write errors are checked below.

	var builder strings.Builder

	if !w.isStarted {
		builder.WriteString(m3u8Header + "\n\n")
	}

	for _, entry := range entries {
		builder.WriteString(entry.info + "\n" + entry.path + "\n\n")
	}

	_, err = file.WriteString(builder.String())
	if err != nil {
		return err
	}

	w.isStarted = true

	for _, entry := range entries {
		w.written[entry.path] = struct{}{}
	}

	return nil
}

// mergeM3U8 appends the entries of src that dst does not list.
func mergeM3U8(src, dst string) error {
	srcEntries, err := readM3U8(src)
	if err != nil {
		return err
	}

	dstEntries, err := readM3U8(dst)
	if err != nil {
		return err
	}

	known := make(map[string]struct{}, len(dstEntries))
	for _, entry := range dstEntries {
		known[entry.path] = struct{}{}
	}

	var builder strings.Builder

	for _, entry := range srcEntries {
		if _, ok := known[entry.path]; ok {
			continue
		}

		known[entry.path] = struct{}{}

		builder.WriteString(entry.info + "\n" + entry.path + "\n\n")
	}

	if builder.Len() == 0 {
		return nil
	}

	file, err := os.OpenFile(filepath.Clean(dst), appendFileOptions, constants.DefaultFilePermissions)
	if err != nil {
		return err
	}

	defer file.Close() //nolint:errcheck // Write errors are checked below.

	_, err = file.WriteString(builder.String())

	return err
}

// readM3U8 parses the entries of a playlist file.
// Lines that are neither an #EXTINF line nor the path following one are ignored.
func readM3U8(path string) ([]*m3u8Entry, error) {
	file, err := os.Open(filepath.Clean(path))
	if err != nil {
		return nil, err
	}

	defer file.Close() //nolint:errcheck // Error on close is not critical here.

	var (
		entries []*m3u8Entry
		info    string
		scanner = bufio.NewScanner(file)
	)

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		switch {
		case line == "":
			continue
		case strings.HasPrefix(line, m3u8EntryPrefix):
			info = line
		case strings.HasPrefix(line, "#"):
			continue
		case info != "":
			entries = append(entries, &m3u8Entry{info: info, path: line})
			info = ""
		}
	}

	return entries, scanner.Err()
}
