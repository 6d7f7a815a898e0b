package spotify

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/oshokin/spotify-grabber/internal/client/spotify"
	"github.com/oshokin/spotify-grabber/internal/constants"
	"github.com/oshokin/spotify-grabber/internal/logger"
	"github.com/oshokin/spotify-grabber/internal/utils"
)

// formatLRCTimestamp formats a millisecond offset as mm:ss.xx.
func formatLRCTimestamp(ms int64) string {
	ms = max(ms, 0)

	minutes := ms / 60000
	seconds := (ms / 1000) % 60
	hundredths := (ms % 1000) / 10

	return fmt.Sprintf("%02d:%02d.%02d", minutes, seconds, hundredths)
}

// formatLRCBody renders synced lyrics as timestamped lines and unsynced lyrics as plain lines.
func formatLRCBody(lyrics *spotify.Lyrics) string {
	var builder strings.Builder

	isSynced := lyrics.IsSynced()

	for _, line := range lyrics.Lines {
		if isSynced {
			builder.WriteString("[" + formatLRCTimestamp(line.StartMs) + "]")
		}

		builder.WriteString(line.Words + "\n")
	}

	return builder.String()
}

// formatLRC renders a lyrics file, optionally preceded by the title, artist, album and length header.
func formatLRC(lyrics *spotify.Lyrics, item *spotify.ContentItem, isHeaderWritten bool) string {
	if !isHeaderWritten {
		return formatLRCBody(lyrics)
	}

	durationSeconds := item.DurationMs / 1000

	header := fmt.Sprintf(
		"[ti:%s]\n[ar:%s]\n[al:%s]\n[length:%02d:%02d]\n\n",
		item.Name,
		item.PrimaryArtist(),
		item.AlbumName,
		durationSeconds/60,
		durationSeconds%60)

	return header + formatLRCBody(lyrics)
}

// fetchLyrics retrieves the lyrics of a track.
// Missing lyrics are counted and reported as nil without an error.
func (s *ServiceImpl) fetchLyrics(ctx context.Context, item *spotify.ContentItem) *spotify.Lyrics {
	if !s.rt.Config.DownloadLyrics || item.Kind != spotify.KindTrack {
		return nil
	}

	lyrics, err := s.rt.Client.GetTrackLyrics(ctx, item.ID)
	if err != nil {
		if errors.Is(err, spotify.ErrLyricsNotFound) {
			logger.Infof(ctx, "No lyrics available for '%s'", item.Label())
		} else {
			logger.Warnf(ctx, "Failed to get lyrics for '%s': %v", item.Label(), err)
		}

		s.incrementLyricsMissing()

		return nil
	}

	if len(lyrics.Lines) == 0 {
		s.incrementLyricsMissing()

		return nil
	}

	return lyrics
}

// lyricsPath returns where the lyrics file of dest is written.
func (s *ServiceImpl) lyricsPath(dest string) string {
	filename := utils.SetFileExtension(filepath.Base(dest), constants.ExtensionLRC, true)

	if s.rt.Config.ParsedLyricsLocation != "" {
		return filepath.Join(s.rt.Config.ParsedLyricsLocation, filename)
	}

	return filepath.Join(filepath.Dir(dest), filename)
}

// writeLyrics writes the lyrics file of dest, replacing a previous one.
func (s *ServiceImpl) writeLyrics(
	ctx context.Context,
	item *spotify.ContentItem,
	lyrics *spotify.Lyrics,
	dest string,
) error {
	path := s.lyricsPath(dest)

	err := os.MkdirAll(filepath.Dir(path), constants.DefaultFolderPermissions)
	if err != nil {
		return err
	}

	content := formatLRC(lyrics, item, s.rt.Config.LyricsMDHeader)

	err = os.WriteFile(filepath.Clean(path), []byte(content), constants.DefaultFilePermissions)
	if err != nil {
		return err
	}

	s.incrementLyricsDownloaded()
	logger.Debugf(ctx, "Lyrics saved to file: %s", path)

	return nil
}
