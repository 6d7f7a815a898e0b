package spotify

//go:generate $MOCKGEN -source=stream.go -destination=mocks/stream_mock.go

import (
	"context"
	"crypto/aes"
	"crypto/cipher"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"math/big"
	"net/http"
	"net/url"
	"strings"

	"github.com/oshokin/spotify-grabber/internal/logger"
)

// Stream is an open audio stream.
type Stream interface {
	io.ReadCloser
	// TotalSize returns the number of bytes Read will produce, or -1 when unknown.
	TotalSize() int64
}

// KeyProvider unlocks encrypted audio files.
type KeyProvider interface {
	// GetAudioKey returns the 16-byte AES key of a file.
	GetAudioKey(ctx context.Context, gid, fileID string) ([]byte, error)
}

// HTTPKeyProvider asks an HTTP key service for audio keys.
type HTTPKeyProvider struct {
	// client sends the authorized requests.
	client *ClientImpl
	// serviceURL is the key service endpoint.
	serviceURL string
}

// NewHTTPKeyProvider creates and returns a new instance of HTTPKeyProvider.
func NewHTTPKeyProvider(client *ClientImpl, serviceURL string) KeyProvider {
	return &HTTPKeyProvider{
		client:     client,
		serviceURL: serviceURL,
	}
}

// GetAudioKey returns the 16-byte AES key of a file.
func (p *HTTPKeyProvider) GetAudioKey(ctx context.Context, gid, fileID string) ([]byte, error) {
	if strings.TrimSpace(p.serviceURL) == "" {
		return nil, ErrKeyServiceNotConfigured
	}

	result, err := postJSON[audioKeyResponse](p.client, ctx, p.serviceURL, &audioKeyRequest{
		GID:    gid,
		FileID: fileID,
	})
	if err != nil {
		return nil, err
	}

	key, err := hex.DecodeString(strings.TrimSpace(result.Data.Key))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidAudioKey, err)
	}

	if len(key) != audioKeySize {
		return nil, fmt.Errorf("%w: expected %d bytes, got %d", ErrInvalidAudioKey, audioKeySize, len(key))
	}

	return key, nil
}

// OpenStream opens the decrypted audio of an item in the given quality.
// Key exchange failures are reported as ContentKeyError, everything else as StreamUnavailableError.
func (c *ClientImpl) OpenStream(ctx context.Context, item *ContentItem, quality string) (Stream, error) {
	if item == nil {
		return nil, ErrNilItem
	}

	if item.ExternalURL != "" {
		return c.openPlainStream(ctx, item)
	}

	gid, err := Base62ToHex(item.ID)
	if err != nil {
		return nil, &StreamUnavailableError{ID: item.ID, Err: err}
	}

	metadata, err := c.getMediaMetadata(ctx, item.Kind, item.ID)
	if err != nil {
		return nil, &StreamUnavailableError{ID: item.ID, Err: err}
	}

	file, err := selectAudioFile(metadata, quality)
	if err != nil {
		return nil, &StreamUnavailableError{ID: item.ID, Err: err}
	}

	logger.Debugf(ctx, "Selected file %s (%s) for '%s'", file.FileID, file.Format, item.ID)

	key, err := c.keyProvider.GetAudioKey(ctx, gid, file.FileID)
	if err != nil {
		if errors.Is(err, ErrKeyServiceNotConfigured) {
			return nil, &StreamUnavailableError{ID: item.ID, Err: err}
		}

		return nil, &ContentKeyError{ID: item.ID, Err: err}
	}

	cdnURL, err := c.resolveStorage(ctx, file.FileID)
	if err != nil {
		return nil, &StreamUnavailableError{ID: item.ID, Err: err}
	}

	body, size, err := c.openBody(ctx, cdnURL)
	if err != nil {
		return nil, &StreamUnavailableError{ID: item.ID, Err: err}
	}

	stream, err := newDecryptingStream(body, size, key)
	if err != nil {
		body.Close() //nolint:errcheck,gosec // The key error is more relevant.

		return nil, &ContentKeyError{ID: item.ID, Err: err}
	}

	return stream, nil
}

// ReadChunk reads up to maxBytes from r.
// It returns an empty slice and no error at end of stream.
func ReadChunk(r io.Reader, maxBytes int) ([]byte, error) {
	buffer := make([]byte, maxBytes)

	n, err := io.ReadFull(r, buffer)
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return buffer[:n], nil
	}

	if err != nil {
		return nil, err
	}

	return buffer[:n], nil
}

// Base62ToHex converts a 22-character catalog id into its 32-character hex gid.
func Base62ToHex(id string) (string, error) {
	if len(id) != base62IDLength {
		return "", fmt.Errorf("%w: '%s'", ErrInvalidBase62ID, id)
	}

	var (
		value = new(big.Int)
		base  = big.NewInt(int64(len(base62Alphabet)))
	)

	for _, char := range id {
		digit := strings.IndexRune(base62Alphabet, char)
		if digit < 0 {
			return "", fmt.Errorf("%w: '%s'", ErrInvalidBase62ID, id)
		}

		value.Mul(value, base)
		value.Add(value, big.NewInt(int64(digit)))
	}

	raw := value.Bytes()
	if len(raw) > gidSize {
		return "", fmt.Errorf("%w: '%s' overflows a gid", ErrInvalidBase62ID, id)
	}

	gid := make([]byte, gidSize)
	copy(gid[gidSize-len(raw):], raw)

	return hex.EncodeToString(gid), nil
}

func (c *ClientImpl) getMediaMetadata(ctx context.Context, kind Kind, id string) (*mediaMetadataResponse, error) {
	gid, err := Base62ToHex(id)
	if err != nil {
		return nil, err
	}

	uri := spClientTrackMetadataURI
	if kind == KindEpisode {
		uri = spClientEpisodeMetadataURI
	}

	result, err := fetchJSONWithQuery[mediaMetadataResponse](c, ctx, c.spClientBaseURL, uri+"/"+gid, c.marketQuery())
	if err != nil {
		return nil, fmt.Errorf("failed to get file listing: %w", err)
	}

	return result.Data, nil
}

func (c *ClientImpl) resolveStorage(ctx context.Context, fileID string) (string, error) {
	query := url.Values{}
	query.Set("alt", "json")

	result, err := fetchJSONWithQuery[storageResolveResponse](
		c,
		ctx,
		c.spClientBaseURL,
		spClientStorageResolveURI+"/"+fileID,
		query)
	if err != nil {
		return "", fmt.Errorf("failed to resolve storage: %w", err)
	}

	for _, cdnURL := range result.Data.CDNURL {
		if cdnURL != "" {
			return cdnURL, nil
		}
	}

	return "", ErrNoCDNURL
}

func (c *ClientImpl) openBody(ctx context.Context, route string) (io.ReadCloser, int64, error) {
	request, err := http.NewRequestWithContext(ctx, http.MethodGet, route, http.NoBody)
	if err != nil {
		return nil, 0, err
	}

	response, err := c.httpClient.Do(request)
	if err != nil {
		return nil, 0, err
	}

	if response.StatusCode != http.StatusOK {
		response.Body.Close() //nolint:gosec // Error on close is not critical here.

		return nil, 0, fmt.Errorf("%w: %d", ErrUnexpectedHTTPStatus, response.StatusCode)
	}

	return response.Body, response.ContentLength, nil
}

func (c *ClientImpl) openPlainStream(ctx context.Context, item *ContentItem) (Stream, error) {
	body, size, err := c.openBody(ctx, item.ExternalURL)
	if err != nil {
		return nil, &StreamUnavailableError{ID: item.ID, Err: err}
	}

	return &plainStream{ReadCloser: body, size: size}, nil
}

// selectAudioFile picks the most preferred file for quality.
func selectAudioFile(metadata *mediaMetadataResponse, quality string) (*audioFileResponse, error) {
	files := make([]*audioFileResponse, 0, len(metadata.File)+len(metadata.Audio))
	files = append(files, metadata.File...)
	files = append(files, metadata.Audio...)

	for _, alternative := range metadata.Alternative {
		files = append(files, alternative.File...)
	}

	formats, ok := qualityFormats[quality]
	if !ok {
		formats = qualityFormats[QualityAuto]
	}

	for _, format := range formats {
		for _, file := range files {
			if file != nil && file.Format == format && file.FileID != "" {
				return file, nil
			}
		}
	}

	return nil, fmt.Errorf("%w (quality %s)", ErrNoAudioFile, quality)
}

// plainStream is an unencrypted HTTP body.
type plainStream struct {
	io.ReadCloser

	size int64
}

// TotalSize returns the content length.
func (s *plainStream) TotalSize() int64 {
	return s.size
}

// decryptingStream decrypts AES-128-CTR audio and drops the container preamble.
type decryptingStream struct {
	body    io.ReadCloser
	cipher  cipher.Stream
	skip    int
	size    int64
	scratch []byte
}

func newDecryptingStream(body io.ReadCloser, encryptedSize int64, key []byte) (*decryptingStream, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidAudioKey, err)
	}

	size := int64(-1)
	if encryptedSize >= audioHeaderSize {
		size = encryptedSize - audioHeaderSize
	}

	return &decryptingStream{
		body:   body,
		cipher: cipher.NewCTR(block, audioIV),
		skip:   audioHeaderSize,
		size:   size,
	}, nil
}

// Read decrypts the next bytes of the body into p.
func (s *decryptingStream) Read(p []byte) (int, error) {
	for s.skip > 0 {
		if len(s.scratch) < s.skip {
			s.scratch = make([]byte, s.skip)
		}

		n, err := s.body.Read(s.scratch[:s.skip])
		s.cipher.XORKeyStream(s.scratch[:n], s.scratch[:n])
		s.skip -= n

		if err != nil {
			return 0, err
		}
	}

	n, err := s.body.Read(p)
	s.cipher.XORKeyStream(p[:n], p[:n])

	return n, err
}

// Close closes the underlying body.
func (s *decryptingStream) Close() error {
	return s.body.Close()
}

// TotalSize returns the decrypted size without the preamble.
func (s *decryptingStream) TotalSize() int64 {
	return s.size
}
