package transcribe

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"speech-relay/cmd/speech-relay/cmd/setup"
	"speech-relay/internal/app"
	"speech-relay/internal/app/api/baidu"
	"speech-relay/internal/app/converter"
)

var (
	language      string
	parallel      int
	forceProgress bool
	jsonOutput    bool
)

func init() {
	Cmd.Flags().StringVarP(&language, "language", "l", baidu.DefaultLanguage,
		fmt.Sprintf("language hint, one of %v", baidu.SupportedLanguages()))
	Cmd.Flags().IntVarP(&parallel, "parallel", "j", 1, "number of files transcribed concurrently")
	Cmd.Flags().BoolVar(&forceProgress, "progress", false, "show the progress bar even when stderr is not a terminal")
	Cmd.Flags().BoolVar(&jsonOutput, "json", false, "print results as JSON")
}

// Cmd represents the transcribe command
var Cmd = &cobra.Command{
	Use:   "transcribe <file>...",
	Short: "Transcribe local audio files",
	Long: `Transcribe local audio files without starting the server

- Each file is converted with ffmpeg and sent to the recognition API
- A progress bar is shown for batches when stderr is a terminal`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		settings, logger, err := setup.Load(cmd)
		if err != nil {
			return err
		}
		defer logger.Sync()

		application, err := app.InitializeApplication(settings, logger)
		if err != nil {
			logger.Error("startup check failed", zap.Error(err))
			return err
		}

		items := converter.TranscribeFiles(cmd.Context(), application.Converter, args, language, parallel, converter.ProgressConfig{
			Enabled: converter.ShouldShowProgress(len(args), forceProgress),
			Writer:  os.Stderr,
		})

		if err := printItems(cmd, items); err != nil {
			return err
		}

		failed := 0
		for _, item := range items {
			if !item.Result.Success {
				failed++
			}
		}
		if failed > 0 {
			return fmt.Errorf("%d of %d files failed", failed, len(items))
		}
		return nil
	},
}

func printItems(cmd *cobra.Command, items []converter.BatchItem) error {
	out := cmd.OutOrStdout()
	if jsonOutput {
		encoder := json.NewEncoder(out)
		encoder.SetIndent("", "  ")
		encoder.SetEscapeHTML(false)
		return encoder.Encode(items)
	}

	for _, item := range items {
		switch {
		case len(items) == 1 && item.Result.Success:
			fmt.Fprintln(out, item.Result.Text)
		case item.Result.Success:
			fmt.Fprintf(out, "%s: %s\n", item.Path, item.Result.Text)
		default:
			fmt.Fprintf(cmd.ErrOrStderr(), "%s: error: %s\n", item.Path, item.Result.Message)
		}
	}
	return nil
}
