// Package setup loads the configuration and logger shared by the commands.
package setup

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"speech-relay/internal/app/common"
	"speech-relay/internal/config"
)

// Load reads the --config and --verbose flags, loads settings and builds the
// logger. Missing credentials are an error.
func Load(cmd *cobra.Command) (*config.Settings, *zap.Logger, error) {
	configPath, _ := cmd.Flags().GetString("config")
	verbose, _ := cmd.Flags().GetBool("verbose")

	settings, err := config.Load(configPath)
	if err != nil {
		return nil, nil, fmt.Errorf("configuration error: %w", err)
	}

	logger, err := common.NewLogger(settings.Development() || verbose)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create logger: %w", err)
	}
	return settings, logger, nil
}
