package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"speech-relay/cmd/speech-relay/cmd/serve"
	"speech-relay/cmd/speech-relay/cmd/transcribe"
	"speech-relay/cmd/speech-relay/cmd/version"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "speech-relay",
	Short: "Transcribe audio files with Baidu short speech recognition",
	Long: `Transcribe audio files with Baidu short speech recognition.

- Uploads are converted to 16kHz mono PCM with ffmpeg
- The PCM is sent to the Baidu recognition API with a cached access token
- Run "serve" for the HTTP API and upload page, or "transcribe" for local files

BAIDU_API_KEY and BAIDU_SECRET_KEY must be set in the environment or a .env file.`,
	SilenceUsage:     true,
	TraverseChildren: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(serve.Cmd)
	rootCmd.AddCommand(transcribe.Cmd)
	rootCmd.AddCommand(version.Cmd)

	rootCmd.PersistentFlags().StringP("config", "c", "", "path to a YAML config file (default $SPEECH_RELAY_CONFIG)")
	rootCmd.PersistentFlags().BoolP("verbose", "V", false, "verbose output")
}
