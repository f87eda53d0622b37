package baidu

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// TokenRequest carries the client credentials sent to the OAuth endpoint
type TokenRequest struct {
	GrantType    string
	ClientID     string
	ClientSecret string
}

// TokenResponse is the OAuth endpoint answer. Either AccessToken or the error
// fields are populated.
type TokenResponse struct {
	AccessToken      string `json:"access_token"`
	ExpiresIn        int64  `json:"expires_in,omitempty"`
	Scope            string `json:"scope,omitempty"`
	Error            string `json:"error,omitempty"`
	ErrorDescription string `json:"error_description,omitempty"`
}

// RecognizeRequest is the JSON body of a short speech recognition call
type RecognizeRequest struct {
	Format  string `json:"format"`
	Rate    int    `json:"rate"`
	Channel int    `json:"channel"`
	CUID    string `json:"cuid"`
	Token   string `json:"token"`
	DevPID  int    `json:"dev_pid"`
	Speech  string `json:"speech"`
	Len     int    `json:"len"`
}

// RecognizeResponse is the recognition API answer; ErrNo 0 means success
type RecognizeResponse struct {
	ErrNo    int      `json:"err_no"`
	ErrMsg   string   `json:"err_msg,omitempty"`
	CorpusNo string   `json:"corpus_no,omitempty"`
	SN       string   `json:"sn,omitempty"`
	Result   []string `json:"result,omitempty"`
}

// TokenIssuer issues access tokens
type TokenIssuer interface {
	IssueToken(ctx context.Context, req TokenRequest) (*TokenResponse, error)
}

// SpeechAPI performs recognition calls
type SpeechAPI interface {
	Recognize(ctx context.Context, req RecognizeRequest) (*RecognizeResponse, error)
}

// API is the full remote surface used by the relay
type API interface {
	TokenIssuer
	SpeechAPI
}

// HTTPConfig configures HTTPAPI
type HTTPConfig struct {
	TokenURL         string
	ASRURL           string
	TokenTimeout     time.Duration
	RecognizeTimeout time.Duration
}

// HTTPAPI talks to the Baidu endpoints over HTTP. Each endpoint gets its own
// client so the two calls keep independent timeouts.
type HTTPAPI struct {
	config      HTTPConfig
	tokenClient *http.Client
	asrClient   *http.Client
}

// NewHTTPAPI creates a new HTTP transport
func NewHTTPAPI(config HTTPConfig) *HTTPAPI {
	if config.TokenTimeout == 0 {
		config.TokenTimeout = 15 * time.Second
	}
	if config.RecognizeTimeout == 0 {
		config.RecognizeTimeout = 30 * time.Second
	}

	return &HTTPAPI{
		config:      config,
		tokenClient: &http.Client{Timeout: config.TokenTimeout},
		asrClient:   &http.Client{Timeout: config.RecognizeTimeout},
	}
}

// IssueToken implements TokenIssuer
func (a *HTTPAPI) IssueToken(ctx context.Context, req TokenRequest) (*TokenResponse, error) {
	endpoint, err := url.Parse(a.config.TokenURL)
	if err != nil {
		return nil, fmt.Errorf("invalid token url: %w", err)
	}
	query := endpoint.Query()
	query.Set("grant_type", req.GrantType)
	query.Set("client_id", req.ClientID)
	query.Set("client_secret", req.ClientSecret)
	endpoint.RawQuery = query.Encode()

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create token request: %w", err)
	}
	httpReq.Header.Set("Accept", "application/json")

	var resp TokenResponse
	if err := a.do(a.tokenClient, httpReq, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Recognize implements SpeechAPI
func (a *HTTPAPI) Recognize(ctx context.Context, req RecognizeRequest) (*RecognizeResponse, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to encode recognition request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, a.config.ASRURL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create recognition request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")

	var resp RecognizeResponse
	if err := a.do(a.asrClient, httpReq, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// do executes the request and decodes the JSON body into out. Both endpoints
// report failures inside the JSON payload, so the status code alone is not
// treated as an error when the body decodes.
func (a *HTTPAPI) do(client *http.Client, req *http.Request, out interface{}) error {
	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to decode response (status %d): %w", resp.StatusCode, err)
	}
	return nil
}
