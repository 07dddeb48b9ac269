package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/chihiros-control/chihirosctl/internal/ui"
)

var monitorCmd = &cobra.Command{
	Use:   "monitor",
	Short: "Watch decoded device notifications live",
	Long: `Watch decoded device notifications live in a scrolling view.

Every frame the device pushes is decoded and displayed as it arrives,
which is useful for reverse-engineering firmware behaviour or sanity
checking a schedule. Press q to quit.`,
	Args:    cobra.NoArgs,
	Example: `  chihirosctl monitor --device "fert doser"`,
	RunE:    runMonitor,
}

func init() {
	rootCmd.AddCommand(monitorCmd)
}

func runMonitor(cmd *cobra.Command, args []string) error {
	// The monitor runs until the user quits, so only bound the dial.
	dialCtx, cancel := context.WithTimeout(context.Background(), time.Duration(timeoutFlag)*time.Second)
	s, err := openSession(dialCtx)
	cancel()
	if err != nil {
		return err
	}
	defer func() { _ = s.Close() }()

	title := fmt.Sprintf("Monitoring %s", s.Profile().Name)
	return ui.RunMonitor(title, s.Notifications())
}
