package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mkarlsen/uipilot/internal/output"
	"github.com/mkarlsen/uipilot/internal/script"
)

var validateCmd = &cobra.Command{
	Use:   "validate <script.json>",
	Short: "Check a script without executing it",
	Long: `Parse and validate a JSON automation script. Reports the failing action
index when the script is malformed; exits non-zero without touching the
desktop.`,
	Args: cobra.ExactArgs(1),
	RunE: runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

func runValidate(cmd *cobra.Command, args []string) error {
	data, err := os.ReadFile(args[0])
	if err != nil {
		return err
	}

	s, err := script.Parse(data)
	if err != nil {
		res := output.ValidationResult{Valid: false, Error: err.Error()}
		var fe *script.FormatError
		if errors.As(err, &fe) {
			res.Index = fe.Index
			res.Error = fe.Reason
		}
		if perr := output.Print(res); perr != nil {
			return perr
		}
		return fmt.Errorf("script invalid")
	}

	return output.Print(output.ValidationResult{Valid: true, Actions: len(s.Actions)})
}
