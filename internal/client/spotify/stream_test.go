package spotify

import (
	"bytes"
	"context"
	"crypto/aes"
	"crypto/cipher"
	"encoding/hex"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	mock_spotify "github.com/oshokin/spotify-grabber/internal/client/spotify/mocks"
)

var testAudioKey = []byte("0123456789abcdef") //nolint:gochecknoglobals // Test fixture.

// encryptAudio builds an encrypted file: preamble followed by payload.
func encryptAudio(t *testing.T, payload []byte) []byte {
	t.Helper()

	block, err := aes.NewCipher(testAudioKey)
	require.NoError(t, err)

	plain := append(bytes.Repeat([]byte{0xAA}, audioHeaderSize), payload...)
	encrypted := make([]byte, len(plain))
	cipher.NewCTR(block, audioIV).XORKeyStream(encrypted, plain)

	return encrypted
}

// TestBase62ToHex tests the Base62ToHex function.
func TestBase62ToHex(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		id          string
		expected    string
		expectError bool
	}{
		{
			name:     "catalog track id",
			id:       "4uLU6hMCjMI75M1A2tKUQC",
			expected: "93bc414a606747b2b612491ef83d5a3e",
		},
		{
			name:     "leading zeros are kept",
			id:       "0000000000000000000001",
			expected: "00000000000000000000000000000001",
		},
		{
			name:        "too short",
			id:          "abc",
			expectError: true,
		},
		{
			name:        "invalid character",
			id:          "4uLU6hMCjMI75M1A2tKUQ-",
			expectError: true,
		},
		{
			name:        "overflow",
			id:          "ZZZZZZZZZZZZZZZZZZZZZZ",
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			result, err := Base62ToHex(tt.id)
			if tt.expectError {
				require.ErrorIs(t, err, ErrInvalidBase62ID)

				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.expected, result)
		})
	}
}

// TestDecryptingStream tests decryption and preamble removal with tiny reads.
func TestDecryptingStream(t *testing.T) {
	t.Parallel()

	payload := bytes.Repeat([]byte("OggS-payload-"), 100)
	encrypted := encryptAudio(t, payload)

	stream, err := newDecryptingStream(io.NopCloser(bytes.NewReader(encrypted)), int64(len(encrypted)), testAudioKey)
	require.NoError(t, err)

	assert.Equal(t, int64(len(payload)), stream.TotalSize())

	var result []byte

	for {
		chunk, chunkErr := ReadChunk(stream, 7)
		require.NoError(t, chunkErr)

		if len(chunk) == 0 {
			break
		}

		result = append(result, chunk...)
	}

	assert.Equal(t, payload, result)
	require.NoError(t, stream.Close())
}

// TestDecryptingStream_InvalidKey tests that a wrong key length is rejected.
func TestDecryptingStream_InvalidKey(t *testing.T) {
	t.Parallel()

	_, err := newDecryptingStream(io.NopCloser(bytes.NewReader(nil)), 0, []byte("short"))
	require.ErrorIs(t, err, ErrInvalidAudioKey)
}

// TestReadChunk tests the ReadChunk function.
func TestReadChunk(t *testing.T) {
	t.Parallel()

	reader := bytes.NewReader([]byte("abcdef"))

	chunk, err := ReadChunk(reader, 4)
	require.NoError(t, err)
	assert.Equal(t, "abcd", string(chunk))

	chunk, err = ReadChunk(reader, 4)
	require.NoError(t, err)
	assert.Equal(t, "ef", string(chunk))

	chunk, err = ReadChunk(reader, 4)
	require.NoError(t, err)
	assert.Empty(t, chunk)
}

// TestSelectAudioFile tests the quality preference order.
func TestSelectAudioFile(t *testing.T) {
	t.Parallel()

	metadata := &mediaMetadataResponse{
		File: []*audioFileResponse{
			{FileID: "f96", Format: FileFormatOggVorbis96},
			{FileID: "f160", Format: FileFormatOggVorbis160},
			{FileID: "mp3", Format: FileFormatMP3_96},
		},
	}

	tests := []struct {
		quality  string
		expected string
	}{
		{quality: QualityAuto, expected: "f160"},
		{quality: QualityNormal, expected: "f96"},
		{quality: QualityHigh, expected: "f160"},
		{quality: QualityVeryHigh, expected: "f160"},
		{quality: "unknown", expected: "f160"},
	}

	for _, tt := range tests {
		t.Run(tt.quality, func(t *testing.T) {
			t.Parallel()

			file, err := selectAudioFile(metadata, tt.quality)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, file.FileID)
		})
	}

	_, err := selectAudioFile(&mediaMetadataResponse{
		File: []*audioFileResponse{{FileID: "mp3", Format: FileFormatMP3_96}},
	}, QualityAuto)
	require.ErrorIs(t, err, ErrNoAudioFile)
}

// streamServer serves file listings, storage resolution and the encrypted CDN file.
func streamServer(t *testing.T, encrypted []byte) *httptest.Server {
	t.Helper()

	gid, err := Base62ToHex(testTrackID)
	require.NoError(t, err)

	mux := http.NewServeMux()
	server := httptest.NewServer(mux)

	t.Cleanup(server.Close)

	mux.HandleFunc("/sp/metadata/4/track/"+gid, func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, `{"gid": "`+gid+`", "file": [{"file_id": "file160", "format": "OGG_VORBIS_160"}]}`)
	})

	mux.HandleFunc("/sp/storage-resolve/files/audio/interactive/file160", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "json", r.URL.Query().Get("alt"))
		writeJSON(w, `{"result": "CDN", "cdnurl": ["`+server.URL+`/cdn/file160"]}`)
	})

	mux.HandleFunc("/cdn/file160", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "audio/ogg")
		w.Header().Set("Content-Length", strconv.Itoa(len(encrypted)))
		_, _ = w.Write(encrypted)
	})

	return server
}

// TestClient_OpenStream tests the full resolve, key, download and decrypt path.
func TestClient_OpenStream(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	payload := []byte("decrypted ogg payload")
	server := streamServer(t, encryptAudio(t, payload))

	gid, err := Base62ToHex(testTrackID)
	require.NoError(t, err)

	keyProvider := mock_spotify.NewMockKeyProvider(ctrl)
	keyProvider.EXPECT().
		GetAudioKey(gomock.Any(), gid, "file160").
		Return(testAudioKey, nil)

	client := newTestClient(t, server, WithKeyProvider(keyProvider))

	stream, err := client.OpenStream(context.Background(), &ContentItem{ID: testTrackID, Kind: KindTrack}, QualityHigh)
	require.NoError(t, err)

	defer stream.Close()

	assert.Equal(t, int64(len(payload)), stream.TotalSize())

	data, err := io.ReadAll(stream)
	require.NoError(t, err)
	assert.Equal(t, payload, data)
}

// TestClient_OpenStream_Errors tests the distinction between key and other failures.
func TestClient_OpenStream_Errors(t *testing.T) {
	t.Parallel()

	t.Run("key exchange failure", func(t *testing.T) {
		t.Parallel()

		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		server := streamServer(t, encryptAudio(t, []byte("x")))

		keyProvider := mock_spotify.NewMockKeyProvider(ctrl)
		keyProvider.EXPECT().
			GetAudioKey(gomock.Any(), gomock.Any(), gomock.Any()).
			Return(nil, errors.New("429 too many requests"))

		client := newTestClient(t, server, WithKeyProvider(keyProvider))

		_, err := client.OpenStream(context.Background(), &ContentItem{ID: testTrackID, Kind: KindTrack}, QualityAuto)

		var keyErr *ContentKeyError
		require.ErrorAs(t, err, &keyErr)
		assert.Equal(t, testTrackID, keyErr.ID)
	})

	t.Run("missing listing", func(t *testing.T) {
		t.Parallel()

		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		server := httptest.NewServer(http.NotFoundHandler())

		t.Cleanup(server.Close)

		client := newTestClient(t, server, WithKeyProvider(mock_spotify.NewMockKeyProvider(ctrl)))

		_, err := client.OpenStream(context.Background(), &ContentItem{ID: testTrackID, Kind: KindTrack}, QualityAuto)

		var unavailableErr *StreamUnavailableError
		require.ErrorAs(t, err, &unavailableErr)
		require.ErrorIs(t, err, ErrUnexpectedHTTPStatus)
	})

	t.Run("key service not configured", func(t *testing.T) {
		t.Parallel()

		server := streamServer(t, encryptAudio(t, []byte("x")))
		client := newTestClient(t, server)

		_, err := client.OpenStream(context.Background(), &ContentItem{ID: testTrackID, Kind: KindTrack}, QualityAuto)

		var unavailableErr *StreamUnavailableError
		require.ErrorAs(t, err, &unavailableErr)
		require.ErrorIs(t, err, ErrKeyServiceNotConfigured)
	})
}

// TestClient_OpenStream_External tests that hosted episodes are downloaded as is.
func TestClient_OpenStream_External(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Length", "3")
		_, _ = io.WriteString(w, "mp3")
	}))

	t.Cleanup(server.Close)

	client := newTestClient(t, server)

	stream, err := client.OpenStream(context.Background(), &ContentItem{
		ID:          testEpisodeID,
		Kind:        KindEpisode,
		ExternalURL: server.URL + "/episode.mp3",
	}, QualityAuto)
	require.NoError(t, err)

	defer stream.Close()

	data, err := io.ReadAll(stream)
	require.NoError(t, err)
	assert.Equal(t, "mp3", string(data))
	assert.Equal(t, int64(3), stream.TotalSize())
}

// TestHTTPKeyProvider tests the key service protocol.
func TestHTTPKeyProvider(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)

		var request audioKeyRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&request))

		switch request.FileID {
		case "good":
			writeJSON(w, `{"key": "`+hex.EncodeToString(testAudioKey)+`"}`)
		case "short":
			writeJSON(w, `{"key": "abcd"}`)
		default:
			w.WriteHeader(http.StatusTooManyRequests)
		}
	}))

	t.Cleanup(server.Close)

	client := newTestClient(t, server)
	provider := NewHTTPKeyProvider(client, server.URL+"/key")

	key, err := provider.GetAudioKey(context.Background(), "gid", "good")
	require.NoError(t, err)
	assert.Equal(t, testAudioKey, key)

	_, err = provider.GetAudioKey(context.Background(), "gid", "short")
	require.ErrorIs(t, err, ErrInvalidAudioKey)

	_, err = provider.GetAudioKey(context.Background(), "gid", "limited")
	require.ErrorIs(t, err, ErrUnexpectedHTTPStatus)

	_, err = NewHTTPKeyProvider(client, "").GetAudioKey(context.Background(), "gid", "good")
	require.ErrorIs(t, err, ErrKeyServiceNotConfigured)
}
