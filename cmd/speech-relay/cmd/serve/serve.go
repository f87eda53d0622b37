package serve

import (
	"context"
	"fmt"
	"os/exec"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"speech-relay/cmd/speech-relay/cmd/setup"
	"speech-relay/internal/api/server"
	"speech-relay/internal/app"
	"speech-relay/internal/app/util/files"
)

const shutdownTimeout = 10 * time.Second

var (
	host        string
	port        string
	openBrowser bool
)

func init() {
	Cmd.Flags().StringVar(&host, "host", "", "listen address (default 127.0.0.1)")
	Cmd.Flags().StringVarP(&port, "port", "p", "", "listen port (default 5000)")
	Cmd.Flags().BoolVar(&openBrowser, "open", false, "open the upload page in the default browser")
}

// Cmd represents the serve command
var Cmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API and upload page",
	Long: `Start the HTTP API and upload page

- POST /api/transcribe accepts a multipart "file" (or "audio") field
- GET / serves the upload page, /health and /metrics are for operators
- ffmpeg and the Baidu credentials are checked before listening`,
	RunE: func(cmd *cobra.Command, args []string) error {
		settings, logger, err := setup.Load(cmd)
		if err != nil {
			return err
		}
		defer logger.Sync()

		if host != "" {
			settings.Server.Host = host
		}
		if port != "" {
			settings.Server.Port = port
		}

		application, err := app.InitializeApplication(settings, logger)
		if err != nil {
			logger.Error("startup check failed", zap.Error(err))
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		if err := application.PrimeToken(ctx); err != nil {
			logger.Error("failed to obtain access token", zap.Error(err))
			return err
		}
		if err := files.EnsureDir(settings.Server.UploadDir); err != nil {
			return err
		}

		srv, err := server.NewServer(server.Config{
			Host:           settings.Server.Host,
			Port:           settings.Server.Port,
			ReadTimeout:    settings.Server.ReadTimeout,
			WriteTimeout:   settings.Server.WriteTimeout,
			IdleTimeout:    settings.Server.IdleTimeout,
			Environment:    settings.Server.Environment,
			UploadDir:      settings.Server.UploadDir,
			MaxUploadBytes: settings.Server.MaxUploadBytes,
		}, application.Converter, application.Metrics, application.Registry, logger)
		if err != nil {
			return err
		}

		errCh := srv.Start()
		logger.Info("upload page available", zap.String("url", srv.URL()))

		if openBrowser {
			go launchBrowser(ctx, fmt.Sprintf("http://127.0.0.1:%s/", settings.Server.Port), logger)
		}

		select {
		case <-ctx.Done():
		case err := <-errCh:
			if err != nil {
				return err
			}
		}

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	},
}

// launchBrowser opens url after a short delay so the listener is up.
// Failures are logged and otherwise ignored.
func launchBrowser(ctx context.Context, url string, logger *zap.Logger) {
	select {
	case <-ctx.Done():
		return
	case <-time.After(time.Second):
	}

	name, args := browserCommand(runtime.GOOS, url)
	if err := exec.Command(name, args...).Start(); err != nil {
		logger.Warn("failed to open browser", zap.String("url", url), zap.Error(err))
	}
}

func browserCommand(goos, url string) (string, []string) {
	switch goos {
	case "darwin":
		return "open", []string{url}
	case "windows":
		return "rundll32", []string{"url.dll,FileProtocolHandler", url}
	default:
		return "xdg-open", []string{url}
	}
}
