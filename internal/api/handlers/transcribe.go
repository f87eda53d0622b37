package handlers

import (
	"context"
	stderrors "errors"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"speech-relay/internal/api/dto"
	"speech-relay/internal/api/errors"
	"speech-relay/internal/api/middleware"
	"speech-relay/internal/app/api/baidu"
	"speech-relay/internal/app/converter"
	"speech-relay/internal/app/util/files"
)

const (
	// multipartMemory is how much of an upload is buffered in memory before
	// spilling to a temp file
	multipartMemory = 2 << 20

	msgNoAudioFile    = "no audio file found"
	msgNoFileSelected = "no file selected"
	msgUnsupported    = "unsupported file format"
	msgFailed         = "transcription failed"
)

// uploadFields are the accepted multipart field names, in order of preference
var uploadFields = []string{"file", "audio"}

// Transcriber runs the transcription pipeline for one staged file
type Transcriber interface {
	Transcribe(ctx context.Context, req converter.Request) baidu.Result
}

// TranscribeHandler handles audio uploads
type TranscribeHandler struct {
	transcriber Transcriber
	uploadDir   string
	logger      *zap.Logger
	now         func() time.Time
}

// NewTranscribeHandler creates a new transcribe handler
func NewTranscribeHandler(transcriber Transcriber, uploadDir string, logger *zap.Logger) *TranscribeHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TranscribeHandler{
		transcriber: transcriber,
		uploadDir:   uploadDir,
		logger:      logger,
		now:         time.Now,
	}
}

// Transcribe handles POST /api/transcribe
//
// @Summary Transcribe an audio file
// @Description Uploads an audio file (wav, mp3, pcm, m4a, amr; at most 10MB), converts it to 16kHz mono PCM and returns the recognized text
// @Tags transcription
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "Audio file (the field may also be named audio)"
// @Param language formData string false "Language hint: zh, zh_en, en, ct or sc" default(zh)
// @Success 200 {object} dto.TranscribeResponse "Recognized text"
// @Failure 400 {object} errors.APIError "Missing file, empty filename or unsupported format"
// @Failure 413 {object} errors.APIError "Upload larger than 10MB"
// @Failure 500 {object} errors.APIError "Transcoding, credential or recognition failure"
// @Router /transcribe [post]
func (h *TranscribeHandler) Transcribe(c *gin.Context) {
	if err := c.Request.ParseMultipartForm(multipartMemory); err != nil {
		if isBodyTooLarge(err) {
			middleware.HandleError(c, errors.NewPayloadTooLargeError(middleware.PayloadTooLargeMessage))
			return
		}
		h.logger.Debug("unreadable multipart body", zap.Error(err))
		middleware.HandleError(c, errors.NewBadRequestError(msgNoAudioFile))
		return
	}
	defer func() {
		if err := c.Request.MultipartForm.RemoveAll(); err != nil {
			h.logger.Warn("failed to remove multipart temp files", zap.Error(err))
		}
	}()

	header, apiErr := uploadedFile(c.Request.MultipartForm)
	if apiErr != nil {
		middleware.HandleError(c, apiErr)
		return
	}
	if !files.IsAllowedAudioFile(header.Filename) {
		middleware.HandleError(c, errors.NewBadRequestError(msgUnsupported))
		return
	}

	var form dto.TranscribeForm
	if err := middleware.ValidateForm(c, &form); err != nil {
		middleware.HandleError(c, err)
		return
	}

	stagedPath := filepath.Join(h.uploadDir, files.StagingName(header.Filename, h.now()))
	if err := c.SaveUploadedFile(header, stagedPath); err != nil {
		middleware.HandleError(c, err)
		return
	}
	defer func() {
		if err := files.RemoveQuietly(stagedPath); err != nil {
			h.logger.Warn("failed to remove staged upload", zap.String("path", stagedPath), zap.Error(err))
		}
	}()

	h.logger.Info("transcribing upload",
		zap.String("request_id", c.GetString(middleware.RequestIDKey)),
		zap.String("filename", header.Filename),
		zap.Int64("size", header.Size),
		zap.String("language", form.Language),
	)

	result := h.transcriber.Transcribe(c.Request.Context(), converter.Request{
		SourcePath: stagedPath,
		Language:   form.Language,
	})
	if !result.Success {
		message := result.Message
		if message == "" {
			message = msgFailed
		}
		middleware.HandleError(c, errors.FromKind(result.Kind, message))
		return
	}

	c.JSON(http.StatusOK, dto.TranscribeResponse{Success: true, Text: result.Text})
}

// uploadedFile picks the first file under an accepted field name. A field
// sent with an empty filename arrives as a plain value.
func uploadedFile(form *multipart.Form) (*multipart.FileHeader, *errors.APIError) {
	for _, field := range uploadFields {
		if headers := form.File[field]; len(headers) > 0 {
			if strings.TrimSpace(headers[0].Filename) == "" {
				return nil, errors.NewBadRequestError(msgNoFileSelected)
			}
			return headers[0], nil
		}
	}
	for _, field := range uploadFields {
		if _, ok := form.Value[field]; ok {
			return nil, errors.NewBadRequestError(msgNoFileSelected)
		}
	}
	return nil, errors.NewBadRequestError(msgNoAudioFile)
}

func isBodyTooLarge(err error) bool {
	var maxErr *http.MaxBytesError
	if stderrors.As(err, &maxErr) {
		return true
	}
	return strings.Contains(err.Error(), "request body too large")
}
