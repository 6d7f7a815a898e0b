package spotify

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/oshokin/spotify-grabber/internal/client/spotify"
	"github.com/oshokin/spotify-grabber/internal/logger"
	"github.com/oshokin/spotify-grabber/internal/utils"
)

const (
	// unknownParentKey is used as a fallback key when parent collection is unknown.
	unknownParentKey = "unknown"
	// summaryBanner separates the summary blocks.
	summaryBanner = "═══════════════════════════════════════════════════════════════"
	// minReportedDuration hides the elapsed time of near-instant runs.
	minReportedDuration = 100 * time.Millisecond
)

//nolint:gochecknoglobals // Immutable print order of the skip reasons.
var skipReasonsOrder = []SkipReason{
	SkipReasonFiltered,
	SkipReasonUnavailable,
	SkipReasonFileExists,
	SkipReasonDirArchived,
	SkipReasonGlobalArchived,
}

// formatDuration formats a duration into a human-readable string.
func formatDuration(d time.Duration) string {
	if d < time.Second {
		return fmt.Sprintf("%dms", d.Milliseconds())
	}

	hours := int(d.Hours())
	minutes := int(d.Minutes()) % 60
	seconds := int(d.Seconds()) % 60

	if hours > 0 {
		return fmt.Sprintf("%dh %dm %ds", hours, minutes, seconds)
	}

	if minutes > 0 {
		return fmt.Sprintf("%dm %ds", minutes, seconds)
	}

	return fmt.Sprintf("%ds", seconds)
}

// recordResult counts the terminal state of an item.
func (s *ServiceImpl) recordResult(kind spotify.Kind, result *ItemResult) {
	s.statsMutex.Lock()
	defer s.statsMutex.Unlock()

	stats := s.state.stats
	stats.TotalItemsProcessed++

	switch result.Outcome {
	case OutcomeDownloaded:
		stats.TotalBytesDownloaded += result.BytesWritten

		if kind == spotify.KindEpisode {
			stats.EpisodesDownloaded++
		} else {
			stats.TracksDownloaded++
		}
	case OutcomeSkipped:
		stats.ItemsSkipped++
		stats.SkipReasons[result.SkipReason]++
	case OutcomeFailed:
		stats.ItemsFailed++
	}
}

// incrementCollectionProcessed counts an expanded collection.
func (s *ServiceImpl) incrementCollectionProcessed() {
	s.statsMutex.Lock()
	defer s.statsMutex.Unlock()

	s.state.stats.CollectionsProcessed++
}

// incrementCollectionSkipped counts a collection excluded before expansion.
func (s *ServiceImpl) incrementCollectionSkipped() {
	s.statsMutex.Lock()
	defer s.statsMutex.Unlock()

	s.state.stats.CollectionsSkipped++
	s.state.stats.SkipReasons[SkipReasonFiltered]++
}

// incrementLyricsDownloaded counts a written lyrics file.
func (s *ServiceImpl) incrementLyricsDownloaded() {
	s.statsMutex.Lock()
	defer s.statsMutex.Unlock()

	s.state.stats.LyricsDownloaded++
}

// incrementLyricsMissing counts a track without lyrics.
func (s *ServiceImpl) incrementLyricsMissing() {
	s.statsMutex.Lock()
	defer s.statsMutex.Unlock()

	s.state.stats.LyricsMissing++
}

// incrementCoverDownloaded counts a written cover file.
func (s *ServiceImpl) incrementCoverDownloaded() {
	s.statsMutex.Lock()
	defer s.statsMutex.Unlock()

	s.state.stats.CoversDownloaded++
}

// Statistics returns a copy of the statistics of the current session.
func (s *ServiceImpl) Statistics() DownloadStatistics {
	s.statsMutex.Lock()
	defer s.statsMutex.Unlock()

	stats := *s.state.stats
	stats.SkipReasons = make(map[SkipReason]int64, len(s.state.stats.SkipReasons))

	for reason, count := range s.state.stats.SkipReasons {
		stats.SkipReasons[reason] = count
	}

	stats.Errors = append([]DownloadError(nil), s.state.stats.Errors...)

	return stats
}

// groupErrors separates item errors from collection errors for better display organization.
func (s *ServiceImpl) groupErrors(errors []DownloadError) (itemErrors, collectionErrors []DownloadError) {
	for i := range errors {
		if errors[i].Category.IsCollection() || errors[i].Category == DownloadCategorySearch {
			collectionErrors = append(collectionErrors, errors[i])
		} else {
			itemErrors = append(itemErrors, errors[i])
		}
	}

	return itemErrors, collectionErrors
}

// PrintDownloadSummary prints a formatted summary of download statistics.
func (s *ServiceImpl) PrintDownloadSummary(ctx context.Context) {
	s.statsMutex.Lock()
	defer s.statsMutex.Unlock()

	stats := s.state.stats

	// If nothing was processed, don't print summary.
	if stats.TotalItemsProcessed == 0 && stats.CollectionsSkipped == 0 && len(stats.Errors) == 0 {
		return
	}

	// Check if the context was canceled (CTRL+C or timeout).
	wasInterrupted := ctx.Err() != nil

	s.printSummaryHeader(ctx, wasInterrupted)
	s.printItemStatistics(ctx, stats)
	s.printDataTransferStatistics(ctx, stats)
	s.printSidecarStatistics(ctx, stats)
	logger.Info(ctx, summaryBanner)
	s.printErrorDetails(ctx, stats)
	s.printFinalMessage(ctx, wasInterrupted, stats)
}

// printSummaryHeader prints the summary header.
func (s *ServiceImpl) printSummaryHeader(ctx context.Context, wasInterrupted bool) {
	logger.Info(ctx, "")
	logger.Info(ctx, summaryBanner)

	if wasInterrupted {
		logger.Info(ctx, "           DOWNLOAD SUMMARY (Interrupted)")
	} else {
		logger.Info(ctx, "                     DOWNLOAD SUMMARY")
	}

	logger.Info(ctx, summaryBanner)
}

// printItemStatistics prints the outcome counters and the skip reasons histogram.
func (s *ServiceImpl) printItemStatistics(ctx context.Context, stats *DownloadStatistics) {
	logger.Infof(ctx, "Items:            %d total processed", stats.TotalItemsProcessed)

	if stats.TracksDownloaded > 0 {
		logger.Infof(ctx, "  Tracks:          %d", stats.TracksDownloaded)
	}

	if stats.EpisodesDownloaded > 0 {
		logger.Infof(ctx, "  Episodes:        %d", stats.EpisodesDownloaded)
	}

	if stats.ItemsSkipped > 0 || stats.CollectionsSkipped > 0 {
		logger.Infof(ctx, "  Skipped:         %d total", stats.ItemsSkipped+stats.CollectionsSkipped)

		for _, reason := range skipReasonsOrder {
			if count := stats.SkipReasons[reason]; count > 0 {
				logger.Infof(ctx, "    %-16s %d", reason.String()+":", count)
			}
		}
	}

	if stats.ItemsFailed > 0 {
		logger.Infof(ctx, "  Failed:          %d", stats.ItemsFailed)
	}

	if stats.CollectionsProcessed > 0 {
		logger.Infof(ctx, "Collections:      %d", stats.CollectionsProcessed)
	}

	// Success rate.
	if stats.TotalItemsProcessed > 0 {
		successCount := stats.TotalItemsProcessed - stats.ItemsFailed
		successRate := float64(successCount) / float64(stats.TotalItemsProcessed) * 100
		logger.Infof(ctx, "  Success Rate:    %.1f%%", successRate)
	}
}

// printDataTransferStatistics prints data transfer statistics.
func (s *ServiceImpl) printDataTransferStatistics(ctx context.Context, stats *DownloadStatistics) {
	if stats.TotalBytesDownloaded > 0 {
		logger.Info(ctx, "")
		logger.Infof(ctx, "Data Downloaded:  %s", humanize.Bytes(uint64(max(stats.TotalBytesDownloaded, 0))))
	}

	if stats.StartTime.IsZero() || stats.EndTime.IsZero() {
		return
	}

	duration := stats.EndTime.Sub(stats.StartTime)
	if duration <= minReportedDuration {
		return
	}

	logger.Infof(ctx, "Duration:         %s", formatDuration(duration))

	if stats.TotalBytesDownloaded > 0 {
		bytesPerSecond := float64(stats.TotalBytesDownloaded) / duration.Seconds()
		logger.Infof(ctx, "Average Speed:    %s/s", humanize.Bytes(uint64(bytesPerSecond)))
	}
}

// printSidecarStatistics prints lyrics and cover art statistics.
func (s *ServiceImpl) printSidecarStatistics(ctx context.Context, stats *DownloadStatistics) {
	if totalLyrics := stats.LyricsDownloaded + stats.LyricsMissing; totalLyrics > 0 {
		logger.Info(ctx, "")
		logger.Infof(ctx, "Lyrics:           %d total", totalLyrics)

		if stats.LyricsDownloaded > 0 {
			logger.Infof(ctx, "  Downloaded:     %d", stats.LyricsDownloaded)
		}

		if stats.LyricsMissing > 0 {
			logger.Infof(ctx, "  Not Available:  %d", stats.LyricsMissing)
		}
	}

	if stats.CoversDownloaded > 0 {
		logger.Info(ctx, "")
		logger.Infof(ctx, "Cover Art:        %d written", stats.CoversDownloaded)
	}
}

// printErrorDetails prints detailed error information if any errors occurred.
func (s *ServiceImpl) printErrorDetails(ctx context.Context, stats *DownloadStatistics) {
	if len(stats.Errors) == 0 {
		return
	}

	logger.Info(ctx, "")
	logger.Errorf(ctx, "ERRORS ENCOUNTERED: %d", len(stats.Errors))

	// Group errors by parent collection for better readability.
	itemErrors, collectionErrors := s.groupErrors(stats.Errors)

	s.printCollectionErrors(ctx, collectionErrors)
	s.printItemErrors(ctx, itemErrors)

	logger.Info(ctx, "")
	logger.Info(ctx, summaryBanner)

	s.printRetryCommand(ctx, stats.Errors)
}

// printCollectionErrors prints collection-level errors.
func (s *ServiceImpl) printCollectionErrors(ctx context.Context, collectionErrors []DownloadError) {
	if len(collectionErrors) == 0 {
		return
	}

	logger.Info(ctx, "")
	logger.Errorf(ctx, "COLLECTION ERRORS:")

	for i := range collectionErrors {
		logger.Info(ctx, "")
		logger.Errorf(ctx, "  [%d] %s: %s", i+1, collectionErrors[i].Category, collectionErrors[i].ItemTitle)

		if collectionErrors[i].ItemURL != "" {
			logger.Errorf(ctx, "      URL: %s", collectionErrors[i].ItemURL)
		}

		logger.Errorf(ctx, "      ID: %s", collectionErrors[i].ItemID)
		logger.Errorf(ctx, "      Phase: %s", collectionErrors[i].Phase)
		logger.Errorf(ctx, "      Error: %s", collectionErrors[i].ErrorMessage)
	}
}

// printItemErrors prints track and episode errors grouped by parent collection.
func (s *ServiceImpl) printItemErrors(ctx context.Context, itemErrors []DownloadError) {
	if len(itemErrors) == 0 {
		return
	}

	logger.Info(ctx, "")
	logger.Errorf(ctx, "ITEM ERRORS:")

	parentKeys, parentGroups := s.groupItemErrorsByParent(itemErrors)
	for _, key := range parentKeys {
		s.printParentGroupErrors(ctx, parentGroups[key])
	}
}

// groupItemErrorsByParent groups item errors by their parent collection, keeping first-seen order.
func (s *ServiceImpl) groupItemErrorsByParent(itemErrors []DownloadError) ([]string, map[string][]DownloadError) {
	var (
		keys         []string
		parentGroups = make(map[string][]DownloadError)
	)

	for i := range itemErrors {
		key := itemErrors[i].ParentID
		if key == "" {
			key = unknownParentKey
		}

		if _, ok := parentGroups[key]; !ok {
			keys = append(keys, key)
		}

		parentGroups[key] = append(parentGroups[key], itemErrors[i])
	}

	return keys, parentGroups
}

// printParentGroupErrors prints errors for items from a specific parent collection.
func (s *ServiceImpl) printParentGroupErrors(ctx context.Context, errs []DownloadError) {
	firstErr := errs[0]

	logger.Info(ctx, "")

	if firstErr.ParentTitle != "" {
		logger.Errorf(ctx, "  From %s: %s (ID: %s)",
			firstErr.ParentCategory, firstErr.ParentTitle, firstErr.ParentID)
	} else {
		logger.Errorf(ctx, "  Requested individually:")
	}

	for i := range errs {
		logger.Info(ctx, "")
		logger.Errorf(ctx, "    [%d] %s", i+1, errs[i].ItemTitle)
		logger.Errorf(ctx, "        %s ID: %s", errs[i].Category, errs[i].ItemID)
		logger.Errorf(ctx, "        Phase: %s", errs[i].Phase)
		logger.Errorf(ctx, "        Error: %s", errs[i].ErrorMessage)
	}
}

// printRetryCommand prints a command that retries every failed input.
func (s *ServiceImpl) printRetryCommand(ctx context.Context, errors []DownloadError) {
	urls := make([]string, 0, len(errors))

	for i := range errors {
		switch {
		case errors[i].ItemURL != "":
			urls = append(urls, errors[i].ItemURL)
		case errors[i].ParentID == "" && errors[i].ItemID != "":
			urls = append(urls, fmt.Sprintf("spotify:%s:%s", errors[i].Category, errors[i].ItemID))
		}
	}

	urls = utils.Unique(urls)
	if len(urls) == 0 {
		return
	}

	logger.Info(ctx, "")
	logger.Info(ctx, "To retry only failed downloads, run:")
	logger.Info(ctx, "")
	logger.Infof(ctx, "  spotify-grabber %s", strings.Join(utils.Map(urls, quoteArgument), " "))
}

// printFinalMessage prints a helpful message based on download results.
func (s *ServiceImpl) printFinalMessage(ctx context.Context, wasInterrupted bool, stats *DownloadStatistics) {
	downloaded := stats.TracksDownloaded + stats.EpisodesDownloaded

	switch {
	case wasInterrupted:
		logger.Info(ctx, "")
		logger.Warn(ctx, "Download interrupted by user (CTRL+C).")

		if downloaded > 0 {
			logger.Infof(ctx, "Successfully downloaded %d item(s) before interruption.", downloaded)
		}
	case len(stats.Errors) > 0:
		logger.Info(ctx, "")
		logger.Warnf(ctx, "%d error(s) occurred during download. See detailed error log above.", len(stats.Errors))
	case downloaded > 0:
		logger.Info(ctx, "")
		logger.Info(ctx, "All downloads completed successfully!")
	case stats.ItemsSkipped > 0:
		logger.Info(ctx, "")
		logger.Info(ctx, "Nothing new to download.")
	}
}

func quoteArgument(value string) string {
	if !strings.ContainsAny(value, " \t'\"") {
		return value
	}

	return "'" + strings.ReplaceAll(value, "'", `'\''`) + "'"
}
