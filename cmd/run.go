package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/mkarlsen/uipilot/internal/config"
	"github.com/mkarlsen/uipilot/internal/engine"
	"github.com/mkarlsen/uipilot/internal/output"
	"github.com/mkarlsen/uipilot/internal/platform"
	"github.com/mkarlsen/uipilot/internal/resolve"
	"github.com/mkarlsen/uipilot/internal/script"
	sessionstore "github.com/mkarlsen/uipilot/internal/store"
	"github.com/mkarlsen/uipilot/internal/vars"
)

var runCmd = &cobra.Command{
	Use:   "run <script.json>",
	Short: "Execute an automation script",
	Long: `Parse, validate, and execute a JSON automation script. The step-by-step
result is printed in the selected output format; a failed run exits
non-zero.

Examples:
  uipilot run login.json
  uipilot run checkout.json --var card=4111111111111111 --var name="J Doe"
  uipilot run flow.json --snapshot-dir ./failures`,
	Args: cobra.ExactArgs(1),
	RunE: runRun,
}

func init() {
	rootCmd.AddCommand(runCmd)
	runCmd.Flags().StringArray("var", nil, "Preseed a variable as name=value (repeatable)")
	runCmd.Flags().String("snapshot-dir", "", "Directory for failure screenshots (overrides config)")
	runCmd.Flags().String("session", "", "Record this run under the named session")
	runCmd.Flags().Int("session-version", 1, "Session version for --session")
}

func runRun(cmd *cobra.Command, args []string) error {
	s, err := script.ParseFile(args[0])
	if err != nil {
		return err
	}

	store := vars.New()
	pairs, _ := cmd.Flags().GetStringArray("var")
	for _, pair := range pairs {
		name, value, ok := strings.Cut(pair, "=")
		if !ok || name == "" {
			return fmt.Errorf("invalid --var %q (expected name=value)", pair)
		}
		store.Set(name, value)
	}

	opts := engineOptions(appCfg)
	if dir, _ := cmd.Flags().GetString("snapshot-dir"); dir != "" {
		opts.SnapshotDir = dir
	}

	in, err := buildInterpreter(opts, store)
	if err != nil {
		return err
	}

	res := in.Run(cmd.Context(), s)
	if session, _ := cmd.Flags().GetString("session"); session != "" {
		if err := recordRun(cmd, session, res.Success); err != nil {
			appLog.Warn("recording run history failed", zap.Error(err))
		}
	}
	if err := output.Print(res); err != nil {
		return err
	}
	if !res.Success {
		return fmt.Errorf("script failed at action %d: %s", res.FailedIndex, res.FailedReason)
	}
	return nil
}

// recordRun appends one history row for the session. A run that finishes is
// recorded with its final status immediately.
func recordRun(cmd *cobra.Command, session string, success bool) error {
	st, err := sessionstore.Open(appCfg.Store.Path)
	if err != nil {
		return err
	}
	defer st.Close()
	ver, _ := cmd.Flags().GetInt("session-version")
	id, err := st.StartRun(session, ver, appCfg.Logger.LogFile)
	if err != nil {
		return err
	}
	status := "succeeded"
	if !success {
		status = "failed"
	}
	return st.FinishRun(id, status)
}

func buildInterpreter(opts engine.Options, store *vars.Store) (*engine.Interpreter, error) {
	provider, err := platform.NewProvider()
	if err != nil {
		return nil, err
	}
	return engine.New(provider, resolverConfig(appCfg), opts, store, appLog), nil
}

func resolverConfig(cfg *config.Config) resolve.Config {
	return resolve.Config{
		BrowserSignatures: cfg.Resolver.BrowserSignatures,
		DialogKeywords:    cfg.Resolver.DialogKeywords,
		DialogSettleDelay: cfg.Resolver.DialogSettleDelay,
		AddressBarOffset:  cfg.Resolver.AddressBarOffset,
	}
}

func engineOptions(cfg *config.Config) engine.Options {
	return engine.Options{
		DefaultTimeout: cfg.Engine.DefaultTimeout,
		UserTimeout:    cfg.Engine.UserTimeout,
		PollInterval:   cfg.Engine.PollInterval,
		TypeDelay:      cfg.Engine.TypeDelay,
		SnapshotDir:    cfg.Engine.SnapshotDir,
	}
}
