package spotify

import (
	"context"
	"errors"

	"github.com/oshokin/spotify-grabber/internal/logger"
)

// ErrorHandler provides centralized handling of collection-level errors.
type ErrorHandler struct {
	service *ServiceImpl
}

// NewErrorHandler creates an error handler for the service.
func NewErrorHandler(service *ServiceImpl) *ErrorHandler {
	return &ErrorHandler{service: service}
}

// HandleError logs and records an error.
// Returns true if the error should stop execution, false if there was no error.
func (h *ErrorHandler) HandleError(ctx context.Context, err error, errorCtx *ErrorContext) bool {
	if err == nil {
		return false
	}

	// Don't log context cancellation - it's expected when user presses CTRL+C.
	if !errors.Is(err, context.Canceled) {
		logger.Errorf(ctx, "%s failed for %s '%s': %v", errorCtx.Phase, errorCtx.Category, errorCtx.ItemTitle, err)
	}

	h.service.recordError(errorCtx, err)

	return true
}

// HandleCollectionError logs and records a failure to expand a requested collection.
func (h *ErrorHandler) HandleCollectionError(
	ctx context.Context,
	item *DownloadItem,
	title string,
	err error,
) bool {
	if title == "" {
		title = item.ItemID
	}

	return h.HandleError(ctx, err, &ErrorContext{
		Category:  item.Category,
		ItemID:    item.ItemID,
		ItemTitle: title,
		ItemURL:   item.URL,
		Phase:     phaseExpand,
	})
}
