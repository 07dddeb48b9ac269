package main

import (
	"context"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/chihiros-control/chihirosctl/internal/config"
	"github.com/chihiros-control/chihirosctl/internal/device"
	"github.com/chihiros-control/chihirosctl/internal/discovery"
	"github.com/chihiros-control/chihirosctl/internal/logging"
	"github.com/chihiros-control/chihirosctl/internal/protocol"
	"github.com/chihiros-control/chihirosctl/internal/transport"
	"github.com/chihiros-control/chihirosctl/internal/ui"
)

// Command flags
var (
	deviceFlag  string
	bridgeFlag  string
	modelFlag   string
	timeoutFlag int
	scanTimeout int
	weekdayFlag []string
	rampFlag    int
	yesFlag     bool
)

func init() {
	// Common flags for device commands (persistent on root)
	rootCmd.PersistentFlags().StringVar(&deviceFlag, "device", "", "Device BLE address, advertised name, or nickname")
	rootCmd.PersistentFlags().StringVar(&bridgeFlag, "bridge", "", "Bridge endpoint (host:port or ws:// URL, overrides config)")
	rootCmd.PersistentFlags().StringVar(&modelFlag, "model", "", "Force the device model (e.g., \"WRGB II\", \"Doser\")")
	rootCmd.PersistentFlags().IntVar(&timeoutFlag, "timeout", 10, "Command timeout in seconds")

	// LED commands
	rootCmd.AddCommand(scanCmd)
	rootCmd.AddCommand(setBrightnessCmd)
	rootCmd.AddCommand(setColorBrightnessCmd)
	rootCmd.AddCommand(setRGBBrightnessCmd)
	rootCmd.AddCommand(turnOnCmd)
	rootCmd.AddCommand(turnOffCmd)
	rootCmd.AddCommand(addSettingCmd)
	rootCmd.AddCommand(removeSettingCmd)
	rootCmd.AddCommand(resetSettingsCmd)
	rootCmd.AddCommand(enableAutoModeCmd)
	rootCmd.AddCommand(setManualModeCmd)
	rootCmd.AddCommand(setTimeCmd)
	rootCmd.AddCommand(rawCmd)
	rootCmd.AddCommand(encodeCmd)
}

// commandContext returns the context bounding one device command.
func commandContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), time.Duration(timeoutFlag)*time.Second)
}

// openSession resolves the target device and bridge, dials the bridge and
// wraps the connection in a session. The caller closes the session.
func openSession(ctx context.Context) (*device.Session, error) {
	registry, err := config.LoadRegistry()
	if err != nil {
		return nil, err
	}

	// The --device value may be a nickname from the config file.
	address := deviceFlag
	if addr := registry.FindByNickname(deviceFlag); addr != "" {
		address = addr
	}

	profile := resolveProfile(registry, address)

	bridge := bridgeFlag
	if bridge == "" {
		bridge = registry.BridgeFor(address)
	}
	if bridge == "" {
		bridge, err = autoDiscoverBridge(ctx, registry)
		if err != nil {
			return nil, err
		}
	}

	tr, err := transport.DialBridge(ctx, bridge)
	if err != nil {
		return nil, err
	}

	if address != "" {
		registry.UpdateDeviceLastSeen(address, advertisedName(registry, address))
		if err := registry.Save(); err != nil {
			logging.Warn("Failed to save config", zap.Error(err))
		}
	}

	return device.NewSession(tr, profile), nil
}

// resolveProfile picks the model profile for the target device. Precedence:
// the --model flag, the config file's model override, then the advertised
// BLE name's prefix.
func resolveProfile(registry *config.Registry, address string) device.Profile {
	if modelFlag != "" {
		if p, ok := profileByName(modelFlag); ok {
			return p
		}
		return device.ProfileFor(modelFlag)
	}
	if entry := registry.GetDevice(address); entry != nil {
		if entry.Model != "" {
			if p, ok := profileByName(entry.Model); ok {
				return p
			}
		}
		if entry.Name != "" {
			return device.ProfileFor(entry.Name)
		}
	}
	return device.ProfileFor(address)
}

// profileByName matches a marketing model name, case-insensitively.
func profileByName(name string) (device.Profile, bool) {
	for _, p := range device.Profiles() {
		if strings.EqualFold(p.Name, name) {
			return p, true
		}
	}
	return device.Profile{}, false
}

func advertisedName(registry *config.Registry, address string) string {
	if entry := registry.GetDevice(address); entry != nil {
		return entry.Name
	}
	return ""
}

// autoDiscoverBridge falls back to mDNS when no bridge is configured.
func autoDiscoverBridge(ctx context.Context, registry *config.Registry) (string, error) {
	if registry.Preferences != nil && !registry.Preferences.AutoDiscover {
		return "", fmt.Errorf("no bridge configured; pass --bridge or enable auto_discover")
	}

	timeout := discovery.DefaultScanTimeout
	if registry.Preferences != nil && registry.Preferences.DiscoverTimeout > 0 {
		timeout = time.Duration(registry.Preferences.DiscoverTimeout) * time.Second
	}

	scanner := discovery.NewScanner()
	scanner.Timeout = timeout
	bridges, err := scanner.ScanForBridgesWithContext(ctx)
	if err != nil {
		return "", err
	}
	if len(bridges) == 0 {
		return "", fmt.Errorf("no bridge found on the network; pass --bridge")
	}
	if len(bridges) > 1 {
		logging.Warn("Multiple bridges found, using first",
			zap.String("bridge", bridges[0].Instance))
	}
	return bridges[0].Endpoint(), nil
}

// parseTimeOfDay parses "HH:MM".
func parseTimeOfDay(s string) (protocol.TimeOfDay, error) {
	parts := strings.Split(s, ":")
	if len(parts) != 2 {
		return protocol.TimeOfDay{}, fmt.Errorf("invalid time %q, expected HH:MM", s)
	}
	hour, err := strconv.Atoi(parts[0])
	if err != nil {
		return protocol.TimeOfDay{}, fmt.Errorf("invalid time %q, expected HH:MM", s)
	}
	minute, err := strconv.Atoi(parts[1])
	if err != nil {
		return protocol.TimeOfDay{}, fmt.Errorf("invalid time %q, expected HH:MM", s)
	}
	return protocol.TimeOfDay{Hour: hour, Minute: minute}, nil
}

// scanCmd discovers bridges on the network
var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Scan for BLE bridges on the network",
	Long: `Scan for BLE bridges using mDNS/DNS-SD discovery.

This command listens for mDNS broadcasts from bridge daemons and displays
all discovered bridges with their endpoints and the devices they can reach.`,
	Example: `  # Scan for 10 seconds (default)
  chihirosctl scan

  # Quick 3-second scan
  chihirosctl scan --scan-timeout 3`,
	RunE: runScan,
}

func init() {
	scanCmd.Flags().IntVar(&scanTimeout, "scan-timeout", 10, "Scan timeout in seconds")
}

func runScan(cmd *cobra.Command, args []string) error {
	fmt.Printf("Scanning for BLE bridges (timeout: %ds)...\n\n", scanTimeout)

	bridges, err := discovery.ScanForBridges(time.Duration(scanTimeout) * time.Second)
	if err != nil {
		return fmt.Errorf("scan failed: %w", err)
	}

	if len(bridges) == 0 {
		fmt.Println("No bridges found.")
		fmt.Println("\nTroubleshooting:")
		fmt.Println("  - Ensure the bridge daemon is running")
		fmt.Println("  - Verify your computer is on the same network as the bridge")
		fmt.Println("  - Try increasing --scan-timeout for slower networks")
		fmt.Println("  - Use --bridge flag to specify the endpoint manually")
		return nil
	}

	fmt.Printf("Found %d bridge(s):\n\n", len(bridges))

	for i, bridge := range bridges {
		fmt.Printf("%d. %s\n", i+1, bridge.Instance)
		fmt.Printf("   Endpoint: %s\n", bridge.Endpoint())
		if devices := bridge.Devices(); len(devices) > 0 {
			fmt.Printf("   Devices:  %s\n", strings.Join(devices, ", "))
		}
		fmt.Println()
	}

	fmt.Println("Use 'chihirosctl turn-on --bridge <endpoint>' to control a device")

	return nil
}

var setBrightnessCmd = &cobra.Command{
	Use:   "set-brightness <brightness>",
	Short: "Set channel 0 brightness (0-100)",
	Args:  cobra.ExactArgs(1),
	Example: `  chihirosctl set-brightness 80
  chihirosctl set-brightness 0 --device "tank light"`,
	RunE: func(cmd *cobra.Command, args []string) error {
		brightness, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("invalid brightness %q", args[0])
		}
		return withSession(func(ctx context.Context, s *device.Session) error {
			return s.SetBrightness(ctx, brightness)
		})
	},
}

var setColorBrightnessCmd = &cobra.Command{
	Use:   "set-color-brightness <color> <brightness>",
	Short: "Set one named color channel's brightness (0-100)",
	Args:  cobra.ExactArgs(2),
	Example: `  chihirosctl set-color-brightness red 80
  chihirosctl set-color-brightness warm 30 --model "Z Light Tiny"`,
	RunE: func(cmd *cobra.Command, args []string) error {
		brightness, err := strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("invalid brightness %q", args[1])
		}
		return withSession(func(ctx context.Context, s *device.Session) error {
			return s.SetColorBrightness(ctx, args[0], brightness)
		})
	},
}

var setRGBBrightnessCmd = &cobra.Command{
	Use:     "set-rgb-brightness <red> <green> <blue>",
	Short:   "Set red, green and blue brightness in one call",
	Args:    cobra.ExactArgs(3),
	Example: `  chihirosctl set-rgb-brightness 100 80 60`,
	RunE: func(cmd *cobra.Command, args []string) error {
		var rgb [3]int
		for i, arg := range args {
			v, err := strconv.Atoi(arg)
			if err != nil {
				return fmt.Errorf("invalid brightness %q", arg)
			}
			rgb[i] = v
		}
		return withSession(func(ctx context.Context, s *device.Session) error {
			return s.SetRGBBrightness(ctx, rgb)
		})
	},
}

var turnOnCmd = &cobra.Command{
	Use:   "turn-on",
	Short: "Turn every channel to full brightness",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSession(func(ctx context.Context, s *device.Session) error {
			return s.TurnOn(ctx)
		})
	},
}

var turnOffCmd = &cobra.Command{
	Use:   "turn-off",
	Short: "Turn every channel off",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSession(func(ctx context.Context, s *device.Session) error {
			return s.TurnOff(ctx)
		})
	},
}

// Timed setting flags
var (
	sunriseFlag    string
	sunsetFlag     string
	brightnessFlag int
	redFlag        int
	greenFlag      int
	blueFlag       int
)

var addSettingCmd = &cobra.Command{
	Use:   "add-setting",
	Short: "Program one sunrise/sunset entry of the auto-mode schedule",
	Long: `Program one sunrise/sunset entry of the device's auto-mode schedule.

Single-channel models take --brightness; RGB models take --red, --green
and --blue. The device holds up to seven entries.`,
	Example: `  # White light, every day
  chihirosctl add-setting --sunrise 08:00 --sunset 18:00 --brightness 80

  # RGB, weekends only, 30 minute ramp
  chihirosctl add-setting --sunrise 09:00 --sunset 17:00 \
      --red 100 --green 80 --blue 60 --ramp-up 30 --weekdays saturday,sunday`,
	RunE: runAddSetting,
}

func init() {
	addSettingCmd.Flags().StringVar(&sunriseFlag, "sunrise", "", "Sunrise time (HH:MM)")
	addSettingCmd.Flags().StringVar(&sunsetFlag, "sunset", "", "Sunset time (HH:MM)")
	addSettingCmd.Flags().IntVar(&brightnessFlag, "brightness", -1, "Brightness for single-channel models (0-100)")
	addSettingCmd.Flags().IntVar(&redFlag, "red", -1, "Red brightness (0-100)")
	addSettingCmd.Flags().IntVar(&greenFlag, "green", -1, "Green brightness (0-100)")
	addSettingCmd.Flags().IntVar(&blueFlag, "blue", -1, "Blue brightness (0-100)")
	addSettingCmd.Flags().IntVar(&rampFlag, "ramp-up", 0, "Ramp-up minutes (0-150)")
	addSettingCmd.Flags().StringSliceVar(&weekdayFlag, "weekdays", nil, "Weekdays (monday,... or everyday; default everyday)")
	_ = addSettingCmd.MarkFlagRequired("sunrise")
	_ = addSettingCmd.MarkFlagRequired("sunset")

	removeSettingCmd.Flags().StringVar(&sunriseFlag, "sunrise", "", "Sunrise time of the entry (HH:MM)")
	removeSettingCmd.Flags().StringVar(&sunsetFlag, "sunset", "", "Sunset time of the entry (HH:MM)")
	removeSettingCmd.Flags().IntVar(&rampFlag, "ramp-up", 0, "Ramp-up minutes of the entry")
	removeSettingCmd.Flags().StringSliceVar(&weekdayFlag, "weekdays", nil, "Weekdays of the entry")
	_ = removeSettingCmd.MarkFlagRequired("sunrise")
	_ = removeSettingCmd.MarkFlagRequired("sunset")

	resetSettingsCmd.Flags().BoolVar(&yesFlag, "yes", false, "Skip the confirmation prompt")
}

func runAddSetting(cmd *cobra.Command, args []string) error {
	sunrise, err := parseTimeOfDay(sunriseFlag)
	if err != nil {
		return err
	}
	sunset, err := parseTimeOfDay(sunsetFlag)
	if err != nil {
		return err
	}
	weekdays, err := protocol.ParseWeekdays(weekdayFlag)
	if err != nil {
		return err
	}

	setting := protocol.TimedSetting{
		Sunrise:       sunrise,
		Sunset:        sunset,
		RampUpMinutes: rampFlag,
		Weekdays:      weekdays,
		Brightness: [3]int{
			protocol.BrightnessInactive,
			protocol.BrightnessInactive,
			protocol.BrightnessInactive,
		},
	}
	switch {
	case brightnessFlag >= 0:
		setting.Brightness[0] = brightnessFlag
	case redFlag >= 0 || greenFlag >= 0 || blueFlag >= 0:
		if redFlag < 0 || greenFlag < 0 || blueFlag < 0 {
			return fmt.Errorf("--red, --green and --blue must be given together")
		}
		setting.Brightness = [3]int{redFlag, greenFlag, blueFlag}
	default:
		return fmt.Errorf("pass --brightness or --red/--green/--blue")
	}

	return withSession(func(ctx context.Context, s *device.Session) error {
		return s.AddSetting(ctx, setting)
	})
}

var removeSettingCmd = &cobra.Command{
	Use:   "remove-setting",
	Short: "Deactivate one auto-mode schedule entry",
	Long: `Deactivate the schedule entry matching the given time window.

The sunrise, sunset, ramp-up and weekdays must match the entry as it was
programmed.`,
	Example: `  chihirosctl remove-setting --sunrise 08:00 --sunset 18:00`,
	RunE: func(cmd *cobra.Command, args []string) error {
		sunrise, err := parseTimeOfDay(sunriseFlag)
		if err != nil {
			return err
		}
		sunset, err := parseTimeOfDay(sunsetFlag)
		if err != nil {
			return err
		}
		weekdays, err := protocol.ParseWeekdays(weekdayFlag)
		if err != nil {
			return err
		}
		return withSession(func(ctx context.Context, s *device.Session) error {
			return s.RemoveSetting(ctx, sunrise, sunset, rampFlag, weekdays)
		})
	},
}

var resetSettingsCmd = &cobra.Command{
	Use:   "reset-settings",
	Short: "Erase the device's entire auto-mode schedule",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if !yesFlag && !ui.ResetSettingsConfirmation() {
			return nil
		}
		return withSession(func(ctx context.Context, s *device.Session) error {
			return s.ResetSettings(ctx)
		})
	},
}

var enableAutoModeCmd = &cobra.Command{
	Use:   "enable-auto-mode",
	Short: "Switch the light back to its programmed schedule",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSession(func(ctx context.Context, s *device.Session) error {
			return s.EnableAutoMode(ctx)
		})
	},
}

var setManualModeCmd = &cobra.Command{
	Use:   "set-manual-mode",
	Short: "Switch the light to manual control",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSession(func(ctx context.Context, s *device.Session) error {
			return s.SetManualMode(ctx)
		})
	},
}

var setTimeCmd = &cobra.Command{
	Use:   "set-time",
	Short: "Sync the device clock to this machine's time",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSession(func(ctx context.Context, s *device.Session) error {
			return s.SetTime(ctx, time.Now())
		})
	},
}

var rawCmd = &cobra.Command{
	Use:   "raw <command-id> <mode> [param...]",
	Short: "Send an arbitrary command",
	Long: `Send an arbitrary command with checksum and message id handled.

All values are decimal bytes. Uncataloged command/mode pairs are sent
with a warning; the firmware ignores what it does not understand.`,
	Args:    cobra.MinimumNArgs(2),
	Example: `  chihirosctl raw 90 7 0 100`,
	RunE: func(cmd *cobra.Command, args []string) error {
		bytes, err := parseByteArgs(args)
		if err != nil {
			return err
		}
		return withSession(func(ctx context.Context, s *device.Session) error {
			return s.Raw(ctx, bytes[0], bytes[1], bytes[2:])
		})
	},
}

func parseByteArgs(args []string) ([]byte, error) {
	out := make([]byte, len(args))
	for i, arg := range args {
		v, err := strconv.Atoi(arg)
		if err != nil || v < 0 || v > 255 {
			return nil, fmt.Errorf("invalid byte %q", arg)
		}
		out[i] = byte(v)
	}
	return out, nil
}

var encodeCmd = &cobra.Command{
	Use:   "encode <hex-frame | command-id mode [param...]>",
	Short: "Encode or decode a frame offline",
	Long: `Work with frames without any device.

With a single hex string argument, decodes the frame and prints its
fields. With decimal command-id, mode and parameter arguments, builds the
frame (message id 0) and prints its bytes.`,
	Args: cobra.MinimumNArgs(1),
	Example: `  # Decode a captured notification
  chihirosctl encode 5b010d000022007101000200000205

  # Show the bytes of a brightness command
  chihirosctl encode 90 7 0 100`,
	RunE: runEncode,
}

func runEncode(cmd *cobra.Command, args []string) error {
	if len(args) == 1 {
		data, err := hex.DecodeString(strings.TrimPrefix(args[0], "0x"))
		if err != nil {
			return fmt.Errorf("invalid hex frame: %w", err)
		}
		resp, err := protocol.Decode(data)
		if err != nil {
			return err
		}
		fmt.Println(resp.String())
		if totals, ok := resp.DailyTotals(); ok {
			fmt.Printf("daily totals: ch1=%.1fmL ch2=%.1fmL ch3=%.1fmL ch4=%.1fmL\n",
				totals[0], totals[1], totals[2], totals[3])
		}
		return nil
	}

	bytes, err := parseByteArgs(args)
	if err != nil {
		return err
	}
	frame, err := protocol.BuildFrame(
		protocol.NewRawCommand(bytes[0], bytes[1], bytes[2:]),
		protocol.NewSequencer(0),
	)
	if err != nil {
		return err
	}
	fmt.Println(frame.String())
	fmt.Printf("hex: %s\n", hex.EncodeToString(frame))
	return nil
}

// withSession opens a session, runs fn under the command timeout and
// closes the session.
func withSession(fn func(context.Context, *device.Session) error) error {
	ctx, cancel := commandContext()
	defer cancel()

	s, err := openSession(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = s.Close() }()

	return fn(ctx, s)
}
