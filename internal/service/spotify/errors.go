package spotify

import (
	"context"
	"errors"
	"fmt"

	"github.com/oshokin/spotify-grabber/internal/client/spotify"
)

// Common errors for the service layer.
var (
	// ErrIncompleteDownload indicates that the downloaded file size doesn't match expected size.
	ErrIncompleteDownload = errors.New("incomplete download")
	// ErrUnsupportedContainer indicates a container without a tag writer.
	ErrUnsupportedContainer = errors.New("tags are not supported for this container")
	// ErrEmptyTrackPath indicates that the track file path is empty.
	ErrEmptyTrackPath = errors.New("track path cannot be empty")
	// ErrNothingFound indicates that a search returned no results.
	ErrNothingFound = errors.New("search returned no results")
)

// TemplateFieldError reports a placeholder that no field can fill.
type TemplateFieldError struct {
	// Field is the unresolved placeholder name.
	Field string
	// Template is the template being rendered.
	Template string
}

// Error implements the error interface.
func (e *TemplateFieldError) Error() string {
	return fmt.Sprintf("unknown placeholder {%s} in template '%s'", e.Field, e.Template)
}

// TranscodeUnavailableError reports that the transcoder executable cannot be found.
type TranscodeUnavailableError struct {
	// Executable is the configured executable.
	Executable string
	// Err is the lookup failure.
	Err error
}

// Error implements the error interface.
func (e *TranscodeUnavailableError) Error() string {
	return fmt.Sprintf("transcoder '%s' is not available: %v", e.Executable, e.Err)
}

// Unwrap returns the underlying error.
func (e *TranscodeUnavailableError) Unwrap() error {
	return e.Err
}

// TagWriteError reports a failure to write tags into a downloaded file.
// The file is kept.
type TagWriteError struct {
	// Path is the tagged file.
	Path string
	// Err is the underlying failure.
	Err error
}

// Error implements the error interface.
func (e *TagWriteError) Error() string {
	return fmt.Sprintf("failed to write tags to '%s': %v", e.Path, e.Err)
}

// Unwrap returns the underlying error.
func (e *TagWriteError) Unwrap() error {
	return e.Err
}

// ErrorContext provides context information for download errors.
type ErrorContext struct {
	// Category is the type of item that failed.
	Category DownloadCategory
	// ItemID is the unique identifier of the item that failed.
	ItemID string
	// ItemTitle is the human-readable title of the item.
	ItemTitle string
	// ItemURL is the input of the failed item (for collections).
	ItemURL string
	// Phase indicates when the error occurred.
	Phase string
	// ParentCategory is the type of parent collection for tracks.
	ParentCategory DownloadCategory
	// ParentID is the ID of the parent collection.
	ParentID string
	// ParentTitle is the title of the parent collection.
	ParentTitle string
}

// newItemErrorContext builds the error context of an item inside its collection.
func newItemErrorContext(req *itemRequest, title, phase string) *ErrorContext {
	category := DownloadCategoryTrack
	if req.kind == spotify.KindEpisode {
		category = DownloadCategoryEpisode
	}

	errCtx := &ErrorContext{
		Category:  category,
		ItemID:    req.id,
		ItemTitle: title,
		Phase:     phase,
	}

	if req.collection != nil {
		errCtx.ParentCategory = req.collection.category
		errCtx.ParentID = req.collection.id
		errCtx.ParentTitle = req.collection.name
	}

	return errCtx
}

// recordError records an error in the statistics with proper context.
// Context cancellation errors are ignored as they are expected during graceful shutdown.
func (s *ServiceImpl) recordError(errCtx *ErrorContext, err error) {
	if errCtx == nil || err == nil {
		return
	}

	if errors.Is(err, context.Canceled) {
		return
	}

	s.statsMutex.Lock()
	defer s.statsMutex.Unlock()

	s.state.stats.Errors = append(s.state.stats.Errors, DownloadError{
		Category:       errCtx.Category,
		ItemID:         errCtx.ItemID,
		ItemTitle:      errCtx.ItemTitle,
		ItemURL:        errCtx.ItemURL,
		ErrorMessage:   err.Error(),
		Phase:          errCtx.Phase,
		ParentCategory: errCtx.ParentCategory,
		ParentID:       errCtx.ParentID,
		ParentTitle:    errCtx.ParentTitle,
	})
}
