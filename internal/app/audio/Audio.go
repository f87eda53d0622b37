package audio

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	"go.uber.org/zap"

	apperrors "speech-relay/internal/app/errors"
)

const (
	// SampleRate and Channels describe the PCM layout the recognition API expects
	SampleRate = 16000
	Channels   = 1

	// TempDirPrefix names the per-call scratch directories
	TempDirPrefix = "speech_relay_"

	outputFileName = "converted_audio.pcm"
	maxStderrBytes = 2048
)

// Transcoder normalises an arbitrary audio file into raw PCM. The caller owns
// both the input and the returned output and must release the output with
// Cleanup.
type Transcoder interface {
	Transcode(inputPath string) (string, error)
}

// FFmpegTranscoder shells out to ffmpeg
type FFmpegTranscoder struct {
	binary  string
	workDir string
	logger  *zap.Logger
}

// NewFFmpegTranscoder verifies that binary is runnable and returns a
// transcoder writing scratch directories under workDir (os.TempDir() when
// empty).
func NewFFmpegTranscoder(binary, workDir string, logger *zap.Logger) (*FFmpegTranscoder, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if err := CheckFFmpeg(binary); err != nil {
		return nil, err
	}
	if workDir != "" {
		if err := os.MkdirAll(workDir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create work directory %s: %w", workDir, err)
		}
	}
	return &FFmpegTranscoder{
		binary:  binary,
		workDir: workDir,
		logger:  logger,
	}, nil
}

// CheckFFmpeg runs `<binary> -version` and fails with a dependency error when
// the binary is missing or broken.
func CheckFFmpeg(binary string) error {
	if binary == "" {
		return apperrors.ErrFFmpegNotFound
	}
	cmd := exec.Command(binary, "-version")
	if err := cmd.Run(); err != nil {
		return apperrors.Wrap(err, apperrors.KindDependencyMissing, "check ffmpeg", apperrors.ErrFFmpegNotFound.Message())
	}
	return nil
}

// PCMArgs returns the ffmpeg arguments producing mono 16kHz s16le raw PCM
func PCMArgs(inputPath, outputPath string) []string {
	return []string{
		"-y",
		"-i", inputPath,
		"-ac", strconv.Itoa(Channels),
		"-ar", strconv.Itoa(SampleRate),
		"-acodec", "pcm_s16le",
		"-f", "s16le",
		outputPath,
	}
}

// Transcode converts inputPath into a PCM file inside a fresh scratch directory
func (t *FFmpegTranscoder) Transcode(inputPath string) (string, error) {
	dir, err := os.MkdirTemp(t.workDir, TempDirPrefix)
	if err != nil {
		return "", apperrors.Wrap(err, apperrors.KindTranscode, "transcode", "failed to create scratch directory")
	}
	outputPath := filepath.Join(dir, outputFileName)

	cmd := exec.Command(t.binary, PCMArgs(inputPath, outputPath)...)

	// Capture stderr so failures can be diagnosed from the logs
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		_ = os.RemoveAll(dir)
		t.logger.Error("ffmpeg transcoding failed",
			zap.String("input", inputPath),
			zap.Error(err),
			zap.String("stderr", tail(stderr.String(), maxStderrBytes)),
		)
		return "", apperrors.Wrap(
			fmt.Errorf("FFmpeg error: %v, stderr: %s", err, tail(stderr.String(), maxStderrBytes)),
			apperrors.KindTranscode, "transcode", "audio transcoding failed",
		)
	}

	t.logger.Debug("audio transcoded to pcm",
		zap.String("input", inputPath),
		zap.String("output", outputPath),
	)
	return outputPath, nil
}

// Cleanup removes a transcoded file and its scratch directory. Missing files
// are not an error.
func Cleanup(outputPath string) error {
	if outputPath == "" {
		return nil
	}
	if err := os.Remove(outputPath); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	dir := filepath.Dir(outputPath)
	if strings.HasPrefix(filepath.Base(dir), TempDirPrefix) {
		if err := os.RemoveAll(dir); err != nil {
			return err
		}
	}
	return nil
}

func tail(s string, n int) string {
	s = strings.TrimSpace(s)
	if len(s) <= n {
		return s
	}
	return s[len(s)-n:]
}
