package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/mkarlsen/uipilot/internal/config"
	"github.com/mkarlsen/uipilot/internal/logging"
	"github.com/mkarlsen/uipilot/internal/output"
	"github.com/mkarlsen/uipilot/internal/version"

	// Registers the default input/window backend.
	_ "github.com/mkarlsen/uipilot/internal/platform/robo"
)

var (
	appCfg *config.Config
	appLog *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "uipilot",
	Short: "Replay recorded desktop and browser automation scripts",
	Long: `uipilot executes JSON automation scripts against the desktop: it launches
applications, resolves UI targets through accessibility trees with
coordinate fallbacks, synthesizes input, and polls page or element
conditions between steps.`,
	SilenceUsage: true,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.Version = fmt.Sprintf("%s (commit: %s, built: %s)", version.Version, version.Commit, version.BuildDate)
	rootCmd.PersistentFlags().String("config", "", "Path to YAML config file")
	rootCmd.PersistentFlags().String("format", "yaml", "Output format: yaml, json")
	rootCmd.PersistentFlags().Bool("pretty", false, "Indent JSON output")
	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		cfgPath, _ := rootCmd.PersistentFlags().GetString("config")
		cfg, err := config.Load(cfgPath)
		if err != nil {
			return err
		}
		appCfg = cfg
		appLog = logging.New(cfg.Logger)

		format, _ := rootCmd.PersistentFlags().GetString("format")
		switch format {
		case "yaml":
			output.OutputFormat = output.FormatYAML
		case "json":
			output.OutputFormat = output.FormatJSON
		default:
			return fmt.Errorf("unsupported format: %s (use yaml or json)", format)
		}
		if pretty, err := rootCmd.PersistentFlags().GetBool("pretty"); err == nil {
			output.PrettyOutput = pretty
		}
		return nil
	}
	rootCmd.PersistentPostRun = func(cmd *cobra.Command, args []string) {
		if appLog != nil {
			_ = appLog.Sync()
		}
	}
}
