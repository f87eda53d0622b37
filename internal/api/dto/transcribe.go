package dto

// TranscribeForm holds the non-file fields of a transcription upload
type TranscribeForm struct {
	Language string `form:"language" binding:"omitempty,max=32"`
}

// TranscribeResponse is the success body of POST /api/transcribe
type TranscribeResponse struct {
	Success bool   `json:"success" example:"true"`
	Text    string `json:"text" example:"今天天气怎么样"`
}

// HealthResponse is the body of GET /health
type HealthResponse struct {
	Status    string `json:"status"`
	Timestamp int64  `json:"timestamp"`
}
