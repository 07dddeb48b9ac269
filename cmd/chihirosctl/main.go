// Chihirosctl is a control utility for Chihiros aquarium devices.
//
// It speaks the Chihiros BLE UART protocol to LED lights and dosing pumps
// through a network BLE bridge: brightness control, auto-mode schedules,
// dosing schedules and daily dispense totals. Bridges are discovered over
// mDNS or addressed directly.
//
// Usage:
//
//	chihirosctl [command] [flags]
//
// See 'chihirosctl --help' for available commands.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/chihiros-control/chihirosctl/internal/logging"
	"github.com/chihiros-control/chihirosctl/internal/version"
)

func main() {
	if err := logging.InitializeFromEnv(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer logging.Sync()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "chihirosctl",
	Short: "Chihiros Device Control Utility",
	Long: `A command-line tool for Chihiros aquarium LED lights and dosing pumps.

Controls brightness, auto-mode schedules, dosing schedules and daily
dispense totals over the Chihiros BLE UART protocol, reached through a
network BLE bridge. Run 'chihirosctl scan' to find bridges on the local
network.`,
	Version: version.Version,
}

func init() {
	// Disable automatic completion command generation
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	rootCmd.AddCommand(versionCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("chihirosctl %s (commit: %s)\n", version.Version, version.Commit)
	},
}
