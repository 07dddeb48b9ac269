package main

import (
	"github.com/spf13/cobra"

	"github.com/chihiros-control/chihirosctl/internal/emulator"
)

var (
	emulateHost     string
	emulatePort     int
	emulateDevice   string
	emulateInstance string
	emulateAnnounce bool
)

var emulateCmd = &cobra.Command{
	Use:   "emulate",
	Short: "Run a bridge emulator with a simulated device",
	Long: `Run a local bridge emulator backed by a simulated device.

The emulator serves the same /uart WebSocket endpoint a real bridge
daemon does, so every other command works against it unchanged. Useful
for trying out schedules and dosing workflows without hardware.`,
	Example: `  # Emulate a dosing pump and announce it over mDNS
  chihirosctl emulate --emulated-device DYDOSED5EF --announce

  # Point another terminal at it
  chihirosctl dose 1 5 --bridge 127.0.0.1:8080 --model Doser`,
	RunE: runEmulate,
}

func init() {
	rootCmd.AddCommand(emulateCmd)

	emulateCmd.Flags().StringVar(&emulateHost, "host", "0.0.0.0", "Listen address")
	emulateCmd.Flags().IntVar(&emulatePort, "port", 8080, "Listen port")
	emulateCmd.Flags().StringVar(&emulateDevice, "emulated-device", "DYNWRGB0001", "Advertised BLE name of the simulated device")
	emulateCmd.Flags().StringVar(&emulateInstance, "instance", "chihiros-bridge-emulator", "mDNS instance name")
	emulateCmd.Flags().BoolVar(&emulateAnnounce, "announce", false, "Announce the emulator over mDNS")
}

func runEmulate(cmd *cobra.Command, args []string) error {
	cfg := &emulator.Config{
		Host:       emulateHost,
		Port:       emulatePort,
		DeviceName: emulateDevice,
	}
	if emulateAnnounce {
		cfg.Instance = emulateInstance
	}
	return emulator.New(cfg).Start()
}
