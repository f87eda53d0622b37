package converter

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"

	"speech-relay/internal/app/api/baidu"
	"speech-relay/internal/app/audio"
	apperrors "speech-relay/internal/app/errors"
	"speech-relay/internal/app/metrics"
)

// Recognizer transcribes a PCM file
type Recognizer interface {
	Recognize(ctx context.Context, pcmPath, language string) baidu.Result
}

// Request describes one transcription job
type Request struct {
	SourcePath string
	Language   string
}

// Converter runs the transcode and recognize pipeline for a single file
type Converter struct {
	transcoder audio.Transcoder
	recognizer Recognizer
	metrics    *metrics.Metrics
	logger     *zap.Logger
	now        func() time.Time
}

// NewConverter wires a transcoder and recognizer. A nil logger is replaced by a no-op.
func NewConverter(transcoder audio.Transcoder, recognizer Recognizer, mt *metrics.Metrics, logger *zap.Logger) *Converter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Converter{
		transcoder: transcoder,
		recognizer: recognizer,
		metrics:    mt,
		logger:     logger,
		now:        time.Now,
	}
}

// Transcribe converts req.SourcePath to PCM and sends it for recognition.
// The PCM artifact is always removed; the source file belongs to the caller.
func (c *Converter) Transcribe(ctx context.Context, req Request) baidu.Result {
	start := c.now()
	result := c.transcribe(ctx, req)
	c.metrics.RecordOutcome(result.Outcome(), c.now().Sub(start))

	if result.Success {
		c.logger.Info("transcription completed",
			zap.String("source", req.SourcePath),
			zap.Int("chars", len([]rune(result.Text))),
		)
	} else {
		c.logger.Warn("transcription failed",
			zap.String("source", req.SourcePath),
			zap.String("kind", string(result.Kind)),
			zap.String("error", result.Message),
		)
	}
	return result
}

func (c *Converter) transcribe(ctx context.Context, req Request) baidu.Result {
	if _, err := os.Stat(req.SourcePath); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return baidu.Failed(apperrors.KindFileNotFound, apperrors.ErrFileNotFound.Message())
		}
		c.logger.Error("failed to stat source file", zap.String("source", req.SourcePath), zap.Error(err))
		return baidu.Failed(apperrors.KindUnknown, "transcription failed")
	}

	language := strings.TrimSpace(req.Language)
	if language == "" {
		language = baidu.DefaultLanguage
	}

	transcodeStart := c.now()
	pcmPath, err := c.transcoder.Transcode(req.SourcePath)
	c.metrics.RecordTranscode(c.now().Sub(transcodeStart))
	if err != nil {
		c.logger.Error("transcode failed", zap.String("source", req.SourcePath), zap.Error(err))
		return baidu.Failed(apperrors.KindTranscode, "audio transcoding failed")
	}
	defer func() {
		if err := audio.Cleanup(pcmPath); err != nil {
			c.logger.Warn("failed to remove pcm artifact", zap.String("path", pcmPath), zap.Error(err))
		}
	}()

	return c.recognizer.Recognize(ctx, pcmPath, language)
}
