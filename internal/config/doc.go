// Package config provides user configuration management for chihirosctl.
//
// This package manages a YAML-based configuration file that stores
// user-defined metadata for Chihiros devices, including nicknames, model
// overrides, bridge endpoints and application preferences. The configuration
// follows OS-specific conventions for storage location.
//
// # Configuration File Location
//
// The configuration file is stored in platform-appropriate locations:
//   - Linux: $XDG_CONFIG_HOME/chihirosctl/config.yaml or $HOME/.config/chihirosctl/config.yaml
//   - macOS: $HOME/.config/chihirosctl/config.yaml
//   - Windows: %LOCALAPPDATA%\chihirosctl\config.yaml
//
// # Usage Example
//
//	// Load the global registry
//	registry, err := config.LoadRegistry()
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	// Add or update device metadata
//	registry.SetDeviceNickname("C4:D7:FD:00:12:34", "tank light")
//	registry.UpdateDeviceLastSeen("C4:D7:FD:00:12:34", "DYNWRGB1234")
//
//	// Save changes atomically
//	if err := registry.Save(); err != nil {
//	    log.Fatal(err)
//	}
//
// # Thread Safety
//
// The global registry uses sync.Once for safe initialization across goroutines.
// File operations are protected by a mutex to ensure atomic writes.
package config
