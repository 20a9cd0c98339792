package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mkarlsen/uipilot/internal/output"
	"github.com/mkarlsen/uipilot/internal/recorder"
)

var recordCmd = &cobra.Command{
	Use:   "record",
	Short: "Capture UI events from the external recorder",
	Long: `Launch the configured recorder executable and print its UI events as they
arrive. Recording stops when the recorder exits or the command is
interrupted; the most recent events are kept in memory up to the
configured buffer size.

Examples:
  uipilot record
  uipilot record --bin ./uia-listener --echo=false`,
	RunE: runRecord,
}

func init() {
	rootCmd.AddCommand(recordCmd)
	recordCmd.Flags().String("bin", "", "Recorder executable (overrides config)")
	recordCmd.Flags().Bool("echo", true, "Print each event as it arrives")
}

func runRecord(cmd *cobra.Command, args []string) error {
	bin, _ := cmd.Flags().GetString("bin")
	if bin == "" {
		bin = appCfg.Recorder.Bin
	}
	if bin == "" {
		return fmt.Errorf("no recorder executable configured (set recorder.bin or --bin)")
	}
	echo, _ := cmd.Flags().GetBool("echo")

	buf := recorder.NewBuffer(appCfg.Recorder.BufferSize)
	handle := func(ev recorder.Event) {
		buf.Add(ev)
		if echo {
			_ = output.Print(ev)
		}
	}

	err := recorder.Stream(cmd.Context(), bin, appCfg.Recorder.Args, handle, appLog)
	if err != nil {
		return err
	}
	if !echo {
		return output.Print(buf.Events())
	}
	return nil
}
