package spotify

import (
	"context"
	"errors"
	"os/exec"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oshokin/spotify-grabber/internal/config"
	"github.com/oshokin/spotify-grabber/internal/constants"
)

// TestNewFFmpegTranscoder tests the NewFFmpegTranscoder function.
func TestNewFFmpegTranscoder(t *testing.T) {
	t.Parallel()

	transcoder := NewFFmpegTranscoder(&config.Config{FFmpegPath: "ffmpeg"})
	assert.NotNil(t, transcoder)
	assert.Implements(t, (*Transcoder)(nil), transcoder)
}

// TestFFmpegTranscoder_BuildArgs tests the ffmpeg command line for each format.
func TestFFmpegTranscoder_BuildArgs(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		bitrate  string
		format   string
		metadata map[string]string
		expected []string
	}{
		{
			name:    "mp3 with bitrate and sorted metadata",
			bitrate: "320k",
			format:  config.FormatMP3,
			metadata: map[string]string{
				"title":  "Song",
				"artist": "Artist",
				"album":  "",
			},
			expected: []string{
				"-y", "-hide_banner", "-loglevel", "error", "-i", "in.ogg", "-map", "0:a",
				"-c:a", "libmp3lame", "-b:a", "320k",
				"-metadata", "artist=Artist", "-metadata", "title=Song",
				"out.mp3",
			},
		},
		{
			name:    "flac ignores bitrate",
			bitrate: "320k",
			format:  config.FormatFLAC,
			expected: []string{
				"-y", "-hide_banner", "-loglevel", "error", "-i", "in.ogg", "-map", "0:a",
				"-c:a", "flac", "out.mp3",
			},
		},
		{
			name:    "automatic bitrate",
			bitrate: transcodeBitrateAuto,
			format:  config.FormatOpus,
			expected: []string{
				"-y", "-hide_banner", "-loglevel", "error", "-i", "in.ogg", "-map", "0:a",
				"-c:a", "libopus", "out.mp3",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			transcoder := &FFmpegTranscoder{executable: "ffmpeg", logLevel: "error", bitrate: tt.bitrate}

			args, err := transcoder.buildArgs(&TranscodeRequest{
				SourcePath: "in.ogg",
				TargetPath: "out.mp3",
				Format:     tt.format,
				Metadata:   tt.metadata,
			})
			require.NoError(t, err)
			assert.Equal(t, tt.expected, args)
		})
	}
}

// TestFFmpegTranscoder_UnknownFormat tests that an unknown format is rejected.
func TestFFmpegTranscoder_UnknownFormat(t *testing.T) {
	t.Parallel()

	transcoder := &FFmpegTranscoder{executable: "ffmpeg"}

	_, err := transcoder.buildArgs(&TranscodeRequest{Format: "wav"})
	require.ErrorIs(t, err, config.ErrInvalidDownloadFormat)
}

// TestFFmpegTranscoder_MissingExecutable tests the error reported without an ffmpeg installation.
func TestFFmpegTranscoder_MissingExecutable(t *testing.T) {
	t.Parallel()

	transcoder := &FFmpegTranscoder{
		executable: "missing-ffmpeg",
		lookPath: func(string) (string, error) {
			return "", exec.ErrNotFound
		},
	}

	err := transcoder.Transcode(context.Background(), &TranscodeRequest{Format: config.FormatMP3})
	require.Error(t, err)

	var unavailable *TranscodeUnavailableError
	require.True(t, errors.As(err, &unavailable))
	assert.Equal(t, "missing-ffmpeg", unavailable.Executable)
	assert.ErrorIs(t, err, exec.ErrNotFound)
}

// TestFormatExtension tests the file extension of every output format.
func TestFormatExtension(t *testing.T) {
	t.Parallel()

	assert.Equal(t, constants.ExtensionMP3, formatExtension(config.FormatMP3))
	assert.Equal(t, constants.ExtensionFLAC, formatExtension(config.FormatFLAC))
	assert.Equal(t, constants.ExtensionM4A, formatExtension(config.FormatM4A))
	assert.Equal(t, constants.ExtensionOpus, formatExtension(config.FormatOpus))
	assert.Equal(t, constants.ExtensionOGG, formatExtension(config.FormatOGG))
}
