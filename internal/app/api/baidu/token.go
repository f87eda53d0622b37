package baidu

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	apperrors "speech-relay/internal/app/errors"
	"speech-relay/internal/app/metrics"
)

// DefaultTokenLifetime is how long an issued token is trusted. Baidu tokens
// live 30 days; the margin keeps us clear of the boundary.
const DefaultTokenLifetime = 29 * 24 * time.Hour

// TokenManager memoises the access token and refreshes it synchronously when
// it is missing or expired. Concurrent refreshes are collapsed into one
// issuance call.
type TokenManager struct {
	issuer    TokenIssuer
	apiKey    string
	secretKey string
	lifetime  time.Duration
	now       func() time.Time
	metrics   *metrics.Metrics
	logger    *zap.Logger

	mu        sync.RWMutex
	token     string
	expiresAt time.Time

	group singleflight.Group
}

// TokenOption customises a TokenManager
type TokenOption func(*TokenManager)

// WithLifetime overrides DefaultTokenLifetime
func WithLifetime(lifetime time.Duration) TokenOption {
	return func(m *TokenManager) {
		if lifetime > 0 {
			m.lifetime = lifetime
		}
	}
}

// WithClock replaces time.Now, mostly for tests
func WithClock(now func() time.Time) TokenOption {
	return func(m *TokenManager) {
		if now != nil {
			m.now = now
		}
	}
}

// WithMetrics records issuance attempts
func WithMetrics(mt *metrics.Metrics) TokenOption {
	return func(m *TokenManager) { m.metrics = mt }
}

// WithLogger sets the logger
func WithLogger(logger *zap.Logger) TokenOption {
	return func(m *TokenManager) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// NewTokenManager creates a token manager for the given client credentials
func NewTokenManager(issuer TokenIssuer, apiKey, secretKey string, opts ...TokenOption) *TokenManager {
	m := &TokenManager{
		issuer:    issuer,
		apiKey:    apiKey,
		secretKey: secretKey,
		lifetime:  DefaultTokenLifetime,
		now:       time.Now,
		logger:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Token returns a valid access token, issuing a new one when needed.
// Failures are KindAuth errors.
func (m *TokenManager) Token(ctx context.Context) (string, error) {
	if token, ok := m.cached(); ok {
		return token, nil
	}

	// The shared refresh outlives any single caller; the token client timeout bounds it.
	refreshCtx := context.WithoutCancel(ctx)
	ch := m.group.DoChan("token", func() (interface{}, error) {
		// another caller may have refreshed while we waited
		if token, ok := m.cached(); ok {
			return token, nil
		}
		return m.refresh(refreshCtx)
	})

	select {
	case <-ctx.Done():
		return "", apperrors.Wrap(ctx.Err(), apperrors.KindAuth, "issue token", apperrors.ErrNoAccessToken.Message())
	case res := <-ch:
		if res.Err != nil {
			return "", res.Err
		}
		return res.Val.(string), nil
	}
}

// ExpiresAt returns the expiry of the cached token, zero when none is cached
func (m *TokenManager) ExpiresAt() time.Time {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.expiresAt
}

// Invalidate drops the cached token so the next call issues a new one
func (m *TokenManager) Invalidate() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.token = ""
	m.expiresAt = time.Time{}
}

func (m *TokenManager) cached() (string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.token == "" || !m.now().Before(m.expiresAt) {
		return "", false
	}
	return m.token, true
}

func (m *TokenManager) refresh(ctx context.Context) (string, error) {
	resp, err := m.issuer.IssueToken(ctx, TokenRequest{
		GrantType:    "client_credentials",
		ClientID:     m.apiKey,
		ClientSecret: m.secretKey,
	})
	if err != nil {
		m.metrics.RecordTokenRefresh(false)
		m.logger.Error("access token request failed", zap.Error(err))
		return "", apperrors.Wrap(err, apperrors.KindAuth, "issue token", apperrors.ErrNoAccessToken.Message())
	}

	if resp == nil || resp.AccessToken == "" {
		m.metrics.RecordTokenRefresh(false)
		message := apperrors.ErrNoAccessToken.Message()
		if resp != nil && resp.ErrorDescription != "" {
			message = resp.ErrorDescription
		}
		m.logger.Error("access token rejected", zap.String("description", message))
		return "", apperrors.New(apperrors.KindAuth, message)
	}

	issuedAt := m.now()
	m.mu.Lock()
	m.token = resp.AccessToken
	m.expiresAt = issuedAt.Add(m.lifetime)
	m.mu.Unlock()

	m.metrics.RecordTokenRefresh(true)
	m.logger.Info("access token refreshed", zap.Time("expires_at", issuedAt.Add(m.lifetime)))
	return resp.AccessToken, nil
}
