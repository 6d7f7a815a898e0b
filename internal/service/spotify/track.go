package spotify

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/oshokin/spotify-grabber/internal/archive"
	"github.com/oshokin/spotify-grabber/internal/client/spotify"
	"github.com/oshokin/spotify-grabber/internal/config"
	"github.com/oshokin/spotify-grabber/internal/constants"
	"github.com/oshokin/spotify-grabber/internal/logger"
	"github.com/oshokin/spotify-grabber/internal/utils"
)

// processItem runs one track or episode through the download pipeline and reports the result.
func (s *ServiceImpl) processItem(ctx context.Context, req *itemRequest) *ItemResult {
	item, result := s.runPipeline(ctx, req)
	s.report(ctx, item, result)

	return result
}

// report logs, counts and publishes the result of an item.
func (s *ServiceImpl) report(ctx context.Context, item *spotify.ContentItem, result *ItemResult) {
	switch result.Outcome {
	case OutcomeSkipped:
		logger.Infof(ctx, "Skipping '%s' (%s)", item.Label(), result.SkipReason)
		s.listener.OnSkip(ctx, item, result.SkipReason)
	case OutcomeFailed:
		if !errors.Is(result.Err, context.Canceled) {
			logger.Errorf(ctx, "Failed to download '%s' (%s): %v", item.Label(), item.ID, result.Err)
		}

		s.listener.OnError(ctx, item, result.Err)
	case OutcomeDownloaded:
		logger.Debugf(ctx, "'%s' downloaded to '%s'", item.Label(), result.Path)
	}

	s.recordResult(item.Kind, result)
	s.listener.OnComplete(ctx, item, result)

	if result.Outcome == OutcomeDownloaded || result.FailureKind == FailureRateLimited {
		utils.Pause(ctx, s.state.bulkWait)
	}
}

func (s *ServiceImpl) runPipeline(ctx context.Context, req *itemRequest) (*spotify.ContentItem, *ItemResult) {
	// RESOLVE
	item, err := s.resolveItem(ctx, req)
	if err != nil {
		stub := stubItem(req)

		return stub, s.fail(req, stub, FailureMetadata, phaseMetadata, err)
	}

	logger.Debugf(ctx, "Resolved '%s' (%s)", item.Label(), item.ID)

	// FILTER
	if s.isFiltered(item) {
		return item, &ItemResult{Outcome: OutcomeSkipped, SkipReason: SkipReasonFiltered}
	}

	// PLAN_PATH
	dest, err := s.planPath(ctx, req, item)
	if err != nil {
		return item, s.fail(req, item, FailureTemplate, phaseTemplate, err)
	}

	logger.Debugf(ctx, "Destination of '%s' is '%s'", item.Label(), dest)

	// SKIP_CHECK
	if reason, isSkipped := s.checkSkip(ctx, item, dest); isSkipped {
		if s.isListedWhenSkipped(reason, dest) {
			s.appendPlaylistEntry(ctx, req, item, dest)
		}

		return item, &ItemResult{Outcome: OutcomeSkipped, SkipReason: reason, Path: dest}
	}

	// FETCH
	logger.Infof(ctx, "Downloading '%s'", item.Label())

	fetched, err := s.fetchStream(ctx, item, dest)
	if err != nil {
		var keyErr *spotify.ContentKeyError
		if errors.As(err, &keyErr) {
			s.increaseBackoff(ctx)

			return item, s.fail(req, item, FailureRateLimited, phaseFetch, err)
		}

		return item, s.fail(req, item, FailureDownload, phaseFetch, err)
	}

	logger.Debugf(ctx, "Saved %d bytes of '%s' to '%s'", fetched.bytesWritten, item.Label(), fetched.tempPath)

	// POSTPROCESS
	processed, err := s.postprocess(ctx, req, item, dest, fetched)
	if err != nil {
		return item, s.fail(req, item, FailureDownload, phasePostprocess, err)
	}

	// COMMIT
	err = s.commit(ctx, item, processed)
	if err != nil {
		removeTempFile(ctx, processed.audioPath, nil)

		return item, s.fail(req, item, FailureDownload, phaseCommit, err)
	}

	// ARCHIVE
	s.archiveItem(ctx, req, item, processed.dest)
	s.appendPlaylistEntry(ctx, req, item, processed.dest)

	return item, &ItemResult{
		Outcome:      OutcomeDownloaded,
		Path:         processed.dest,
		BytesWritten: fetched.bytesWritten,
	}
}

// resolveItem returns the metadata of a request, fetching it unless the expander already did.
func (s *ServiceImpl) resolveItem(ctx context.Context, req *itemRequest) (*spotify.ContentItem, error) {
	if req.resolved != nil {
		return req.resolved, nil
	}

	if req.kind == spotify.KindEpisode {
		return s.rt.Client.GetEpisode(ctx, req.id)
	}

	return s.rt.Client.GetTrack(ctx, req.id)
}

// isFiltered reports whether the name of item matches the configured skip pattern of its kind.
func (s *ServiceImpl) isFiltered(item *spotify.ContentItem) bool {
	if !s.rt.Config.RegexEnabled {
		return false
	}

	pattern := s.rt.Config.ParsedTrackSkipRegex
	if item.Kind == spotify.KindEpisode {
		pattern = s.rt.Config.ParsedEpisodeSkipRegex
	}

	return pattern != nil && pattern.MatchString(item.Name)
}

// rootFor returns the output root of an item.
func (s *ServiceImpl) rootFor(kind spotify.Kind) string {
	if kind == spotify.KindEpisode {
		return s.rt.Config.ParsedRootPodcastPath
	}

	return s.rt.Config.ParsedRootPath
}

// planPath renders the destination of item and makes it unique within its directory.
func (s *ServiceImpl) planPath(ctx context.Context, req *itemRequest, item *spotify.ContentItem) (string, error) {
	mode := req.mode
	if item.Kind == spotify.KindEpisode {
		mode = TemplateModeEpisode
	}

	rendered, err := s.templateManager.Render(
		s.templateManager.TemplateFor(mode),
		item,
		req.extras,
		s.targetExtension(item))
	if err != nil {
		return "", err
	}

	dest := filepath.Join(s.rootFor(item.Kind), rendered.Path)
	if bound, ok := s.state.boundPath(filepath.Dir(dest), item.ID); ok {
		return bound, nil
	}

	dest = s.disambiguate(ctx, item.ID, dest)
	s.state.bindPath(item.ID, dest)

	return dest, nil
}

// disambiguate returns dest or the first numbered variant of it that another item does not own.
// A destination recorded for id in the directory index is reused so reruns land on the same file.
func (s *ServiceImpl) disambiguate(ctx context.Context, id, dest string) string {
	var (
		dir       = filepath.Dir(dest)
		extension = filepath.Ext(dest)
		stem      = strings.TrimSuffix(filepath.Base(dest), extension)
	)

	if record, ok := s.rt.Archive.LookupDirectory(ctx, dir, id); ok && record.Filename != "" {
		candidate := filepath.Join(dir, stemOf(record.Filename)+extension)
		if owner, isClaimed := s.state.pathOwners[candidate]; !isClaimed || owner == id {
			return candidate
		}
	}

	for n := 0; ; n++ {
		candidate := dest
		if n > 0 {
			candidate = filepath.Join(dir, stem+"_"+strconv.Itoa(n)+extension)
		}

		if s.isPathFree(ctx, id, candidate) {
			if n > 0 {
				logger.Debugf(ctx, "'%s' is taken, using '%s'", dest, candidate)
			}

			return candidate
		}
	}
}

// isPathFree reports whether id may use candidate: nobody claimed it in this run,
// and an existing non-empty file there is recorded for id.
// Without directory indexes an existing file is left to the skip policy.
func (s *ServiceImpl) isPathFree(ctx context.Context, id, candidate string) bool {
	if owner, ok := s.state.pathOwners[candidate]; ok {
		return owner == id
	}

	if utils.FileSize(candidate) == 0 || !s.rt.Archive.DirectoryEnabled() {
		return true
	}

	owner, ok := s.rt.Archive.OwnerOf(ctx, filepath.Dir(candidate), filepath.Base(candidate))

	return ok && owner == id
}

// checkSkip applies the skip policy in order: availability, existing file, directory index, global index.
func (s *ServiceImpl) checkSkip(ctx context.Context, item *spotify.ContentItem, dest string) (SkipReason, bool) {
	if !item.IsPlayable {
		return SkipReasonUnavailable, true
	}

	cfg := s.rt.Config

	if cfg.SkipExisting {
		// The directory index, when kept, is the only proof a file on disk belongs to this item.
		if !s.rt.Archive.DirectoryEnabled() && utils.FileSize(dest) > 0 {
			return SkipReasonFileExists, true
		}

		if s.rt.Archive.DirectoryEnabled() && s.rt.Archive.ContainsDirectory(ctx, filepath.Dir(dest), item.ID) {
			return SkipReasonDirArchived, true
		}
	}

	if cfg.SkipPreviouslyDownloaded && s.rt.Archive.ContainsGlobal(ctx, item.ID) {
		return SkipReasonGlobalArchived, true
	}

	return SkipReasonFiltered, false
}

// isListedWhenSkipped reports whether a skipped item still belongs in the playlist export.
func (s *ServiceImpl) isListedWhenSkipped(reason SkipReason, dest string) bool {
	//nolint:exhaustive // Filtered and unavailable items are never listed.
	switch reason {
	case SkipReasonFileExists, SkipReasonDirArchived:
		return true
	case SkipReasonGlobalArchived:
		return utils.FileSize(dest) > 0
	default:
		return false
	}
}

// processedItem is an item ready to be moved into place.
type processedItem struct {
	// audioPath is the finished temporary audio file.
	audioPath string
	// dest is the final destination, its extension may differ from the planned one.
	dest string
	// lyrics are written next to dest after the move.
	lyrics *spotify.Lyrics
	// cover is written next to dest after the move.
	cover *CoverImage
}

// postprocess transcodes the fetched stream and writes its tags.
func (s *ServiceImpl) postprocess(
	ctx context.Context,
	req *itemRequest,
	item *spotify.ContentItem,
	dest string,
	fetched *fetchResult,
) (*processedItem, error) {
	var (
		result = &processedItem{
			audioPath: fetched.tempPath,
			dest:      dest,
			lyrics:    s.fetchLyrics(ctx, item),
			cover:     s.downloadCover(ctx, item),
		}
		tags = s.buildTrackTags(ctx, req, item)
	)

	if s.rt.Config.DownloadFormat != config.FormatCopy && s.rt.Config.DownloadFormat != "" {
		err := s.transcode(ctx, item, result, tags)
		if err != nil {
			removeTempFile(ctx, fetched.tempPath, nil)

			return nil, err
		}
	}

	err := s.tagProcessor.WriteTags(ctx, &WriteTagsRequest{
		TrackPath:         result.audioPath,
		Extension:         filepath.Ext(result.dest),
		TrackTags:         tags,
		TrackLyrics:       result.lyrics,
		Cover:             result.cover,
		IsDiscTrackTotals: s.rt.Config.DiscTrackTotals,
	})

	switch {
	case err == nil:
	case errors.Is(err, ErrUnsupportedContainer):
		logger.Debugf(ctx, "Tags of '%s' are not written: %v", item.Label(), err)
	default:
		logger.Warn(ctx, (&TagWriteError{Path: result.dest, Err: err}).Error())
	}

	return result, nil
}

// transcode converts the fetched stream into the configured format.
// Without a transcoder executable the original container is kept.
func (s *ServiceImpl) transcode(
	ctx context.Context,
	item *spotify.ContentItem,
	result *processedItem,
	tags map[string]string,
) error {
	targetExtension := filepath.Ext(result.dest)
	transcodedPath := result.audioPath + targetExtension

	err := s.transcoder.Transcode(ctx, &TranscodeRequest{
		SourcePath: result.audioPath,
		TargetPath: transcodedPath,
		Format:     s.rt.Config.DownloadFormat,
		Metadata:   ffmpegMetadata(tags),
	})

	var unavailableErr *TranscodeUnavailableError

	switch {
	case errors.As(err, &unavailableErr):
		logger.Warnf(ctx, "%v, keeping the original format of '%s'", err, item.Label())

		result.dest = utils.SetFileExtension(result.dest, sourceExtension(item), true)
		s.state.bindPath(item.ID, result.dest)

		return nil
	case err != nil:
		_ = os.Remove(transcodedPath)

		return err
	}

	removeTempFile(ctx, result.audioPath, nil)
	result.audioPath = transcodedPath

	return nil
}

// commit moves the finished file into place and writes its sidecar files.
func (s *ServiceImpl) commit(ctx context.Context, item *spotify.ContentItem, processed *processedItem) error {
	err := os.MkdirAll(filepath.Dir(processed.dest), constants.DefaultFolderPermissions)
	if err != nil {
		return err
	}

	isExist, err := utils.IsFileExist(processed.dest)
	if err != nil {
		return err
	}

	if isExist {
		logger.Debugf(ctx, "Replacing '%s'", processed.dest)

		err = os.Remove(processed.dest)
		if err != nil {
			return err
		}
	}

	err = moveFile(processed.audioPath, processed.dest)
	if err != nil {
		return fmt.Errorf("failed to move '%s' to '%s': %w", processed.audioPath, processed.dest, err)
	}

	if processed.lyrics != nil {
		err = s.writeLyrics(ctx, item, processed.lyrics, processed.dest)
		if err != nil {
			logger.Warnf(ctx, "Failed to write lyrics of '%s': %v", item.Label(), err)
		}
	}

	s.writeCoverFile(ctx, processed.cover, processed.dest)

	return nil
}

// archiveItem records a downloaded item in the global and directory indexes.
// Index failures are reported but do not fail the item.
func (s *ServiceImpl) archiveItem(ctx context.Context, req *itemRequest, item *spotify.ContentItem, dest string) {
	var (
		index  = s.rt.Archive
		dir    = filepath.Dir(dest)
		artist = item.PrimaryArtist()
	)

	if index.GlobalEnabled() && !index.ContainsGlobal(ctx, item.ID) {
		err := index.AppendGlobal(ctx, archive.NewRecord(item.ID, artist, item.Name, dest))
		if err != nil {
			s.warnArchive(ctx, req, item, err)
		}
	}

	if record, ok := index.LookupDirectory(ctx, dir, item.ID); index.DirectoryEnabled() &&
		(!ok || record.Filename != filepath.Base(dest)) {
		err := index.AppendDirectory(ctx, dir, archive.NewRecord(item.ID, artist, item.Name, filepath.Base(dest)))
		if err != nil {
			s.warnArchive(ctx, req, item, err)
		}
	}
}

func (s *ServiceImpl) warnArchive(ctx context.Context, req *itemRequest, item *spotify.ContentItem, err error) {
	logger.Warnf(ctx, "Failed to update the archive for '%s': %v", item.Label(), err)
	s.recordError(newItemErrorContext(req, item.Label(), phaseArchive), err)
}

// fail builds the result of a failed item and records it.
func (s *ServiceImpl) fail(
	req *itemRequest,
	item *spotify.ContentItem,
	kind FailureKind,
	phase string,
	err error,
) *ItemResult {
	s.recordError(newItemErrorContext(req, item.Label(), phase), err)

	return &ItemResult{
		Outcome:     OutcomeFailed,
		FailureKind: kind,
		Err:         err,
	}
}

// buildTrackTags collects the metadata written into the finished file.
func (s *ServiceImpl) buildTrackTags(
	ctx context.Context,
	req *itemRequest,
	item *spotify.ContentItem,
) map[string]string {
	cfg := s.rt.Config

	albumArtist := strings.Join(item.AlbumArtists, cfg.ArtistDelimiter)
	if item.Kind == spotify.KindEpisode {
		albumArtist = item.ShowName
	}

	album := item.AlbumName
	if item.Kind == spotify.KindEpisode {
		album = item.ShowName
	}

	totalDiscs := 0
	if req.collection != nil {
		totalDiscs = req.collection.totalDiscs
	}

	return map[string]string{
		tagTitle:       item.Name,
		tagArtist:      strings.Join(item.Artists, cfg.ArtistDelimiter),
		tagAlbumArtist: albumArtist,
		tagAlbum:       album,
		tagDate:        item.ReleaseDate,
		tagYear:        item.ReleaseYear,
		tagGenre:       s.genreOf(ctx, item),
		tagTrackNumber: positiveNumber(item.TrackNumber),
		tagTotalTracks: positiveNumber(item.TotalTracks),
		tagDiscNumber:  positiveNumber(item.DiscNumber),
		tagTotalDiscs:  positiveNumber(totalDiscs),
		tagTrackID:     item.ID,
		tagAlbumID:     item.AlbumID,
	}
}

// ffmpegMetadata maps item tags to ffmpeg metadata keys.
func ffmpegMetadata(tags map[string]string) map[string]string {
	track := tags[tagTrackNumber]
	if track != "" && tags[tagTotalTracks] != "" {
		track += "/" + tags[tagTotalTracks]
	}

	return map[string]string{
		"title":        tags[tagTitle],
		"artist":       tags[tagArtist],
		"album_artist": tags[tagAlbumArtist],
		"album":        tags[tagAlbum],
		"date":         tags[tagDate],
		"genre":        tags[tagGenre],
		"track":        track,
		"disc":         tags[tagDiscNumber],
	}
}

// stubItem stands in for an item whose metadata could not be resolved.
func stubItem(req *itemRequest) *spotify.ContentItem {
	return &spotify.ContentItem{ID: req.id, Kind: req.kind, Name: req.id, IsPlayable: true}
}

func positiveNumber(n int) string {
	if n <= 0 {
		return ""
	}

	return strconv.Itoa(n)
}
