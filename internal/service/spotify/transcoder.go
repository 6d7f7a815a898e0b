package spotify

//go:generate $MOCKGEN -source=transcoder.go -destination=mocks/transcoder_mock.go

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"slices"
	"strings"

	"github.com/oshokin/spotify-grabber/internal/config"
	"github.com/oshokin/spotify-grabber/internal/constants"
	"github.com/oshokin/spotify-grabber/internal/logger"
)

// transcodeBitrateAuto leaves the bitrate to the encoder.
const transcodeBitrateAuto = "auto"

// Transcoder converts downloaded audio into the configured output format.
type Transcoder interface {
	// Transcode converts req.SourcePath into req.TargetPath.
	Transcode(ctx context.Context, req *TranscodeRequest) error
}

// TranscodeRequest contains parameters for one conversion.
type TranscodeRequest struct {
	// SourcePath is the downloaded file.
	SourcePath string
	// TargetPath is the converted file to create.
	TargetPath string
	// Format is one of the config.Format* values other than copy.
	Format string
	// Metadata is written into containers the tag processor cannot handle.
	Metadata map[string]string
}

// FFmpegTranscoder runs an external ffmpeg executable.
type FFmpegTranscoder struct {
	// executable is the configured ffmpeg path or name.
	executable string
	// logLevel is passed to -loglevel.
	logLevel string
	// bitrate is passed to -b:a unless it is "auto".
	bitrate string
	// lookPath resolves the executable.
	lookPath func(string) (string, error)
}

// codecsByFormat maps output formats to ffmpeg audio encoders.
//
//nolint:gochecknoglobals // Immutable lookup table.
var codecsByFormat = map[string]string{
	config.FormatMP3:  "libmp3lame",
	config.FormatOGG:  "libvorbis",
	config.FormatFLAC: "flac",
	config.FormatAAC:  "aac",
	config.FormatM4A:  "aac",
	config.FormatOpus: "libopus",
}

// NewFFmpegTranscoder creates and returns a new instance of FFmpegTranscoder.
func NewFFmpegTranscoder(cfg *config.Config) Transcoder {
	return &FFmpegTranscoder{
		executable: cfg.FFmpegPath,
		logLevel:   cfg.FFmpegLogLevel,
		bitrate:    cfg.TranscodeBitrate,
		lookPath:   exec.LookPath,
	}
}

// Transcode converts req.SourcePath into req.TargetPath.
// A missing executable yields a TranscodeUnavailableError.
func (t *FFmpegTranscoder) Transcode(ctx context.Context, req *TranscodeRequest) error {
	executable, err := t.lookPath(t.executable)
	if err != nil {
		return &TranscodeUnavailableError{Executable: t.executable, Err: err}
	}

	args, err := t.buildArgs(req)
	if err != nil {
		return err
	}

	logger.Debugf(ctx, "Running %s %s", executable, strings.Join(args, " "))

	var stderr bytes.Buffer

	//nolint:gosec // The executable and its arguments come from the local configuration.
	cmd := exec.CommandContext(ctx, executable, args...)
	cmd.Stderr = &stderr

	err = cmd.Run()
	if err != nil {
		return fmt.Errorf("ffmpeg failed: %w: %s", err, strings.TrimSpace(stderr.String()))
	}

	return nil
}

func (t *FFmpegTranscoder) buildArgs(req *TranscodeRequest) ([]string, error) {
	codec, ok := codecsByFormat[req.Format]
	if !ok {
		return nil, fmt.Errorf("%w: %s", config.ErrInvalidDownloadFormat, req.Format)
	}

	args := []string{
		"-y",
		"-hide_banner",
		"-loglevel", t.logLevel,
		"-i", req.SourcePath,
		"-map", "0:a",
		"-c:a", codec,
	}

	if t.bitrate != "" && t.bitrate != transcodeBitrateAuto && req.Format != config.FormatFLAC {
		args = append(args, "-b:a", t.bitrate)
	}

	keys := make([]string, 0, len(req.Metadata))
	for key, value := range req.Metadata {
		if value != "" {
			keys = append(keys, key)
		}
	}

	slices.Sort(keys)

	for _, key := range keys {
		args = append(args, "-metadata", key+"="+req.Metadata[key])
	}

	return append(args, req.TargetPath), nil
}

// formatExtension returns the file extension of an output format.
func formatExtension(format string) string {
	switch format {
	case config.FormatMP3:
		return constants.ExtensionMP3
	case config.FormatFLAC:
		return constants.ExtensionFLAC
	case config.FormatAAC:
		return constants.ExtensionAAC
	case config.FormatM4A:
		return constants.ExtensionM4A
	case config.FormatOpus:
		return constants.ExtensionOpus
	default:
		return constants.ExtensionOGG
	}
}
