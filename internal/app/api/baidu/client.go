package baidu

import (
	"context"
	"encoding/base64"
	"errors"
	"io/fs"
	"net"
	"os"
	"sort"
	"strings"

	"github.com/samber/lo"
	"go.uber.org/zap"

	"speech-relay/internal/app/audio"
	apperrors "speech-relay/internal/app/errors"
)

const (
	// DefaultLanguage is used when a request carries no language hint
	DefaultLanguage = "zh"
	// DefaultDevPID is Mandarin, used for any unmapped hint
	DefaultDevPID = 1537

	// DefaultMaxPCMBytes is the largest payload the recognition API accepts
	DefaultMaxPCMBytes int64 = 10 * 1024 * 1024

	genericFailureMessage = "transcription failed"
)

// devPIDs maps language hints to recognition model ids
var devPIDs = map[string]int{
	"zh":    1537, // Mandarin
	"zh_en": 1737, // Mandarin/English mix
	"en":    1737, // English
	"ct":    1637, // Cantonese
	"sc":    1837, // Sichuanese
}

// DevPID returns the model id for a language hint
func DevPID(language string) int {
	if pid, ok := devPIDs[strings.ToLower(strings.TrimSpace(language))]; ok {
		return pid
	}
	return DefaultDevPID
}

// SupportedLanguages lists the mapped language hints in sorted order
func SupportedLanguages() []string {
	languages := lo.Keys(devPIDs)
	sort.Strings(languages)
	return languages
}

// Result is the outcome of a recognition attempt: either Success with Text,
// or a failure Kind with a message fit for end users.
type Result struct {
	Success bool           `json:"success"`
	Text    string         `json:"text,omitempty"`
	Kind    apperrors.Kind `json:"kind,omitempty"`
	Message string         `json:"error,omitempty"`
}

// Succeeded builds a successful result
func Succeeded(text string) Result {
	return Result{Success: true, Text: text}
}

// Failed builds a failed result
func Failed(kind apperrors.Kind, message string) Result {
	return Result{Kind: kind, Message: message}
}

// Outcome names the result for metrics and logs
func (r Result) Outcome() string {
	if r.Success {
		return "success"
	}
	return string(r.Kind)
}

// ClientConfig configures Client
type ClientConfig struct {
	CUID        string
	MaxPCMBytes int64
}

// TokenProvider hands out valid access tokens
type TokenProvider interface {
	Token(ctx context.Context) (string, error)
}

// Client sends transcoded PCM to the recognition API. It never retries.
type Client struct {
	api    SpeechAPI
	tokens TokenProvider
	config ClientConfig
	logger *zap.Logger
}

// NewClient creates a recognition client
func NewClient(api SpeechAPI, tokens TokenProvider, config ClientConfig, logger *zap.Logger) *Client {
	if config.MaxPCMBytes <= 0 {
		config.MaxPCMBytes = DefaultMaxPCMBytes
	}
	if config.CUID == "" {
		config.CUID = "speech-relay"
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		api:    api,
		tokens: tokens,
		config: config,
		logger: logger,
	}
}

// Recognize transcribes the PCM file at pcmPath. Every failure is reported
// through the returned Result.
func (c *Client) Recognize(ctx context.Context, pcmPath, language string) Result {
	info, err := os.Stat(pcmPath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Failed(apperrors.KindFileNotFound, apperrors.ErrFileNotFound.Message())
		}
		c.logger.Error("failed to stat pcm file", zap.String("path", pcmPath), zap.Error(err))
		return Failed(apperrors.KindUnknown, genericFailureMessage)
	}
	if info.Size() > c.config.MaxPCMBytes {
		return Failed(apperrors.KindSizeLimit, apperrors.ErrFileTooLarge.Message())
	}

	token, err := c.tokens.Token(ctx)
	if err != nil {
		message := apperrors.ErrNoAccessToken.Message()
		var typed *apperrors.Error
		if errors.As(err, &typed) && typed.Kind() == apperrors.KindAuth {
			message = typed.Message()
		}
		return Failed(apperrors.KindAuth, message)
	}

	data, err := os.ReadFile(pcmPath)
	if err != nil {
		c.logger.Error("failed to read pcm file", zap.String("path", pcmPath), zap.Error(err))
		return Failed(apperrors.KindUnknown, genericFailureMessage)
	}

	req := RecognizeRequest{
		Format:  "pcm",
		Rate:    audio.SampleRate,
		Channel: audio.Channels,
		CUID:    c.config.CUID,
		Token:   token,
		DevPID:  DevPID(language),
		Speech:  base64.StdEncoding.EncodeToString(data),
		Len:     len(data),
	}

	resp, err := c.api.Recognize(ctx, req)
	if err != nil {
		if isTimeout(err) {
			c.logger.Warn("recognition request timed out", zap.Error(err))
			return Failed(apperrors.KindTimeout, apperrors.ErrRequestTimeout.Message())
		}
		c.logger.Error("recognition request failed", zap.Error(err))
		return Failed(apperrors.KindUnknown, genericFailureMessage)
	}

	result := ParseResponse(resp)
	if !result.Success {
		c.logger.Warn("recognition unsuccessful",
			zap.String("kind", string(result.Kind)),
			zap.Int("err_no", resp.ErrNo),
			zap.String("err_msg", resp.ErrMsg),
			zap.String("sn", resp.SN),
		)
	}
	return result
}

// ParseResponse turns a recognition API answer into a Result. Fragments are
// joined in order with no separator.
func ParseResponse(resp *RecognizeResponse) Result {
	if resp == nil {
		return Failed(apperrors.KindUnknown, genericFailureMessage)
	}
	if resp.ErrNo != 0 {
		message := resp.ErrMsg
		if message == "" {
			message = "unknown error"
		}
		return Failed(apperrors.KindProvider, "recognition failed: "+message)
	}

	text := strings.Join(resp.Result, "")
	if text == "" {
		return Failed(apperrors.KindEmptyResult, apperrors.ErrEmptyResult.Message())
	}
	return Succeeded(text)
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
