//go:build wireinject
// +build wireinject

package app

import (
	"github.com/google/wire"
	"go.uber.org/zap"

	"speech-relay/internal/config"
)

var applicationSet = wire.NewSet(
	provideRegistry,
	provideMetrics,
	provideTranscoder,
	provideBaiduAPI,
	provideTokenManager,
	provideClient,
	provideConverter,
	NewApplication,
)

// InitializeApplication builds the service graph. It fails when ffmpeg is not
// runnable.
func InitializeApplication(settings *config.Settings, logger *zap.Logger) (*Application, error) {
	wire.Build(applicationSet)
	return &Application{}, nil
}
