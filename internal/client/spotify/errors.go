package spotify

import (
	"errors"
	"fmt"
)

// Static error definitions for better error handling.
var (
	// ErrUnexpectedHTTPStatus indicates an unexpected HTTP status code was received.
	ErrUnexpectedHTTPStatus = errors.New("unexpected HTTP status")
	// ErrMissingRequiredField indicates a catalog record without an id or a name.
	ErrMissingRequiredField = errors.New("catalog record is missing a required field")
	// ErrNoAudioFile indicates that no file matches any acceptable format.
	ErrNoAudioFile = errors.New("no audio file in an acceptable format")
	// ErrNoCDNURL indicates that storage resolution returned no download URL.
	ErrNoCDNURL = errors.New("storage resolution returned no CDN URL")
	// ErrKeyServiceNotConfigured indicates that key_service_url is empty.
	ErrKeyServiceNotConfigured = errors.New("key_service_url is not configured")
	// ErrInvalidAudioKey indicates a key of the wrong length or encoding.
	ErrInvalidAudioKey = errors.New("invalid audio key")
	// ErrInvalidBase62ID indicates a catalog id that is not 22 base62 characters.
	ErrInvalidBase62ID = errors.New("invalid base62 id")
	// ErrLyricsNotFound indicates that the track has no lyrics.
	ErrLyricsNotFound = errors.New("lyrics not found")
	// ErrNilItem indicates that a nil item was passed to the stream opener.
	ErrNilItem = errors.New("content item cannot be nil")
)

// MetadataError reports that a catalog identifier could not be resolved into a usable record.
type MetadataError struct {
	// Kind is the entity kind that was requested.
	Kind Kind
	// ID is the requested identifier.
	ID string
	// Err is the underlying failure.
	Err error
}

// Error implements the error interface.
func (e *MetadataError) Error() string {
	return fmt.Sprintf("failed to resolve %s '%s': %v", e.Kind, e.ID, e.Err)
}

// Unwrap returns the underlying error.
func (e *MetadataError) Unwrap() error {
	return e.Err
}

// ContentKeyError reports that the audio key exchange failed.
// It usually means rate limiting or a missing entitlement, so callers slow down.
type ContentKeyError struct {
	// ID is the identifier of the item being fetched.
	ID string
	// Err is the underlying failure.
	Err error
}

// Error implements the error interface.
func (e *ContentKeyError) Error() string {
	return fmt.Sprintf("failed to get audio key for '%s': %v", e.ID, e.Err)
}

// Unwrap returns the underlying error.
func (e *ContentKeyError) Unwrap() error {
	return e.Err
}

// StreamUnavailableError reports any other failure to open an audio stream.
type StreamUnavailableError struct {
	// ID is the identifier of the item being fetched.
	ID string
	// Err is the underlying failure.
	Err error
}

// Error implements the error interface.
func (e *StreamUnavailableError) Error() string {
	return fmt.Sprintf("stream for '%s' is unavailable: %v", e.ID, e.Err)
}

// Unwrap returns the underlying error.
func (e *StreamUnavailableError) Unwrap() error {
	return e.Err
}

func newMetadataError(kind Kind, id string, err error) error {
	return &MetadataError{Kind: kind, ID: id, Err: err}
}
