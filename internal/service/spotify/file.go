package spotify

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/oshokin/spotify-grabber/internal/client/spotify"
	"github.com/oshokin/spotify-grabber/internal/config"
	"github.com/oshokin/spotify-grabber/internal/constants"
	"github.com/oshokin/spotify-grabber/internal/logger"
	"github.com/oshokin/spotify-grabber/internal/utils"
)

const (
	// File options for overwriting an existing file.
	overwriteFileOptions = os.O_CREATE | os.O_TRUNC | os.O_WRONLY

	// File options for creating a new file (fails if the file already exists).
	createNewFileOptions = os.O_CREATE | os.O_EXCL | os.O_WRONLY
)

// fetchResult describes a stream saved to a temporary file.
type fetchResult struct {
	// tempPath is the temporary file holding the stream.
	tempPath string
	// sourceExtension is the container extension of the stream.
	sourceExtension string
	// bytesWritten is the number of bytes saved.
	bytesWritten int64
}

// sourceExtension returns the container extension of the stream of an item.
func sourceExtension(item *spotify.ContentItem) string {
	if item.Kind == spotify.KindEpisode && item.ExternalURL != "" {
		return constants.ExtensionMP3
	}

	return constants.ExtensionOGG
}

// targetExtension returns the extension of the finished file of an item.
func (s *ServiceImpl) targetExtension(item *spotify.ContentItem) string {
	if s.rt.Config.DownloadFormat == config.FormatCopy || s.rt.Config.DownloadFormat == "" {
		return sourceExtension(item)
	}

	return formatExtension(s.rt.Config.DownloadFormat)
}

// tempPath returns where the stream of item is saved before it is finalized.
func (s *ServiceImpl) tempPath(item *spotify.ContentItem, dest, extension string) string {
	if s.rt.Config.ParsedTempDownloadDir == "" {
		return dest + constants.ExtensionPart
	}

	return filepath.Join(
		s.rt.Config.ParsedTempDownloadDir,
		tempFilePrefix+uuid.New().String()+"_"+item.ID+extension)
}

// fetchStream opens the stream of item and saves it to a temporary file.
// The temporary file is removed on any failure.
func (s *ServiceImpl) fetchStream(ctx context.Context, item *spotify.ContentItem, dest string) (*fetchResult, error) {
	stream, err := s.rt.Client.OpenStream(ctx, item, s.rt.Quality)
	if err != nil {
		return nil, err
	}

	defer stream.Close() //nolint:errcheck // Error on close is not critical here.

	extension := sourceExtension(item)
	tempFilePath := s.tempPath(item, dest, extension)

	err = os.MkdirAll(filepath.Dir(tempFilePath), constants.DefaultFolderPermissions)
	if err != nil {
		return nil, err
	}

	// Always overwrite temporary files, they indicate incomplete downloads.
	f, err := os.OpenFile(filepath.Clean(tempFilePath), overwriteFileOptions, constants.DefaultFilePermissions)
	if err != nil {
		return nil, fmt.Errorf("failed to create temporary file: %w", err)
	}

	var downloadSucceeded bool

	defer func() {
		closeErr := f.Close()

		if !downloadSucceeded {
			removeTempFile(ctx, tempFilePath, closeErr)
		}
	}()

	bytesWritten, err := s.copyStream(ctx, item, f, stream)
	if err != nil {
		return nil, fmt.Errorf("failed to write file: %w", err)
	}

	if total := stream.TotalSize(); total >= 0 && bytesWritten != total {
		return nil, fmt.Errorf(
			"%w: wrote %d bytes, expected %d bytes",
			ErrIncompleteDownload,
			bytesWritten,
			total,
		)
	}

	downloadSucceeded = true

	return &fetchResult{
		tempPath:        tempFilePath,
		sourceExtension: extension,
		bytesWritten:    bytesWritten,
	}, nil
}

// copyStream copies stream into w in chunks, reporting progress after every chunk.
// With a speed limit every chunk is limit bytes and is followed by a one second pause.
// In real-time mode the copy is paced to the playback length of the item.
func (s *ServiceImpl) copyStream(
	ctx context.Context,
	item *spotify.ContentItem,
	w io.Writer,
	stream spotify.Stream,
) (int64, error) {
	var (
		limit     = s.rt.Config.ParsedDownloadSpeedLimit
		chunkSize = defaultChunkSize
		total     = stream.TotalSize()
		startedAt = time.Now()
		written   int64
	)

	if limit > 0 {
		chunkSize = int(limit)
	}

	for {
		chunk, err := spotify.ReadChunk(stream, chunkSize)
		if err != nil {
			return written, err
		}

		if len(chunk) == 0 {
			return written, nil
		}

		n, err := w.Write(chunk)
		written += int64(n)

		if err != nil {
			return written, err
		}

		s.listener.OnProgress(ctx, item, written, total)

		if limit > 0 && !utils.Pause(ctx, time.Second) {
			return written, ctx.Err()
		}

		if s.rt.Config.DownloadRealTime && total > 0 && item.DurationMs > 0 {
			expected := time.Duration(float64(written) / float64(total) * float64(item.DurationMs) * float64(time.Millisecond))
			if !utils.Pause(ctx, expected-time.Since(startedAt)) {
				return written, ctx.Err()
			}
		}

		if ctx.Err() != nil {
			return written, ctx.Err()
		}
	}
}

// downloadCover fetches the cover image of an item.
func (s *ServiceImpl) downloadCover(ctx context.Context, item *spotify.ContentItem) *CoverImage {
	if item.ImageURL == "" {
		return nil
	}

	reader, err := s.rt.Client.DownloadFromURL(ctx, item.ImageURL)
	if err != nil {
		logger.Warnf(ctx, "Failed to download cover of '%s': %v", item.Label(), err)

		return nil
	}

	defer reader.Close() //nolint:errcheck // Error on close is not critical here.

	data, err := io.ReadAll(reader)
	if err != nil || len(data) == 0 {
		logger.Warnf(ctx, "Failed to read cover of '%s': %v", item.Label(), err)

		return nil
	}

	return &CoverImage{
		Data:     data,
		MIMEType: utils.ImageJPEGMimeType,
	}
}

// writeCoverFile writes cover.jpg next to dest unless one is already there.
func (s *ServiceImpl) writeCoverFile(ctx context.Context, cover *CoverImage, dest string) {
	if !s.rt.Config.AlbumArtJPGFile || cover == nil {
		return
	}

	coverPath := filepath.Join(filepath.Dir(dest), constants.CoverFilename)

	file, err := os.OpenFile(filepath.Clean(coverPath), createNewFileOptions, constants.DefaultFilePermissions)
	if err != nil {
		if !os.IsExist(err) {
			logger.Warnf(ctx, "Failed to create cover file '%s': %v", coverPath, err)
		}

		return
	}

	defer file.Close() //nolint:errcheck // Write errors are checked below.

	_, err = file.Write(cover.Data)
	if err != nil {
		logger.Warnf(ctx, "Failed to write cover file '%s': %v", coverPath, err)

		return
	}

	s.incrementCoverDownloaded()
}

// moveFile renames src to dst, copying across file systems when a rename is impossible.
func moveFile(src, dst string) error {
	err := os.Rename(src, dst)
	if err == nil {
		return nil
	}

	var linkErr *os.LinkError
	if !errors.As(err, &linkErr) {
		return err
	}

	in, err := os.Open(filepath.Clean(src))
	if err != nil {
		return err
	}

	defer in.Close() //nolint:errcheck // Error on close is not critical here.

	out, err := os.OpenFile(filepath.Clean(dst), overwriteFileOptions, constants.DefaultFilePermissions)
	if err != nil {
		return err
	}

	_, err = io.Copy(out, in)
	if closeErr := out.Close(); err == nil {
		err = closeErr
	}

	if err != nil {
		_ = os.Remove(dst)

		return err
	}

	return os.Remove(src)
}

func removeTempFile(ctx context.Context, path string, closeErr error) {
	// Small delay to ensure file handle is released (Windows needs this).
	time.Sleep(10 * time.Millisecond)

	if removeErr := os.Remove(path); removeErr != nil && !os.IsNotExist(removeErr) {
		logger.Warnf(ctx, "Failed to clean up temporary file '%s': %v (close error: %v)",
			path, removeErr, closeErr)
	}
}

// stemOf returns path without its extension.
func stemOf(path string) string {
	return strings.TrimSuffix(path, filepath.Ext(path))
}
