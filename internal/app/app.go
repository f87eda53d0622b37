package app

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"

	"speech-relay/internal/app/api/baidu"
	"speech-relay/internal/app/audio"
	"speech-relay/internal/app/converter"
	"speech-relay/internal/app/metrics"
	"speech-relay/internal/config"
)

// Application is the assembled transcription service shared by the CLI
// commands
type Application struct {
	Converter *converter.Converter
	Tokens    *baidu.TokenManager
	Metrics   *metrics.Metrics
	Registry  *prometheus.Registry
	Logger    *zap.Logger
}

func NewApplication(
	conv *converter.Converter,
	tokens *baidu.TokenManager,
	mt *metrics.Metrics,
	registry *prometheus.Registry,
	logger *zap.Logger,
) *Application {
	return &Application{
		Converter: conv,
		Tokens:    tokens,
		Metrics:   mt,
		Registry:  registry,
		Logger:    logger,
	}
}

// PrimeToken fetches the first access token so bad credentials fail at
// startup instead of on the first upload
func (a *Application) PrimeToken(ctx context.Context) error {
	if _, err := a.Tokens.Token(ctx); err != nil {
		return err
	}
	a.Logger.Info("access token obtained", zap.Time("expires_at", a.Tokens.ExpiresAt()))
	return nil
}

func provideRegistry() *prometheus.Registry {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return registry
}

func provideMetrics(registry *prometheus.Registry) *metrics.Metrics {
	return metrics.New(registry)
}

func provideTranscoder(settings *config.Settings, logger *zap.Logger) (*audio.FFmpegTranscoder, error) {
	return audio.NewFFmpegTranscoder(settings.Audio.FFmpegBinary, settings.Audio.WorkDir, logger.Named("audio"))
}

func provideBaiduAPI(settings *config.Settings) *baidu.HTTPAPI {
	return baidu.NewHTTPAPI(baidu.HTTPConfig{
		TokenURL:         settings.Baidu.TokenURL,
		ASRURL:           settings.Baidu.ASRURL,
		TokenTimeout:     settings.Baidu.TokenTimeout,
		RecognizeTimeout: settings.Baidu.RecognizeTimeout,
	})
}

func provideTokenManager(api *baidu.HTTPAPI, settings *config.Settings, mt *metrics.Metrics, logger *zap.Logger) *baidu.TokenManager {
	return baidu.NewTokenManager(api, settings.APIKey, settings.SecretKey,
		baidu.WithLifetime(settings.Baidu.TokenLifetime),
		baidu.WithClock(time.Now),
		baidu.WithMetrics(mt),
		baidu.WithLogger(logger.Named("token")),
	)
}

func provideClient(api *baidu.HTTPAPI, tokens *baidu.TokenManager, settings *config.Settings, logger *zap.Logger) *baidu.Client {
	return baidu.NewClient(api, tokens, baidu.ClientConfig{
		CUID:        settings.Baidu.CUID,
		MaxPCMBytes: settings.Baidu.MaxPCMBytes,
	}, logger.Named("baidu"))
}

func provideConverter(transcoder *audio.FFmpegTranscoder, client *baidu.Client, mt *metrics.Metrics, logger *zap.Logger) *converter.Converter {
	return converter.NewConverter(transcoder, client, mt, logger.Named("converter"))
}
