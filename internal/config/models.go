package config

import "time"

// Registry represents the entire user configuration file.
// This stores user-defined metadata for devices and application preferences.
type Registry struct {
	Version     int                `yaml:"version"`
	Devices     map[string]*Device `yaml:"devices,omitempty"` // Keyed by BLE address
	Preferences *Preferences       `yaml:"preferences,omitempty"`
}

// Device represents user-defined metadata for a single Chihiros device.
// This is keyed by the device's BLE address in the Registry.
type Device struct {
	Nickname string    `yaml:"nickname,omitempty"`  // User-friendly name
	Name     string    `yaml:"name,omitempty"`      // Advertised BLE name (e.g., "DYNWRGB1234")
	Model    string    `yaml:"model,omitempty"`     // Model override when the name prefix misidentifies
	Bridge   string    `yaml:"bridge,omitempty"`    // Preferred bridge endpoint for this device
	LastSeen time.Time `yaml:"last_seen,omitempty"` // Last discovery/connection time
}

// Preferences represents application-wide user preferences.
type Preferences struct {
	Bridge          string `yaml:"bridge,omitempty"`  // Default bridge endpoint (host:port or ws:// URL)
	AutoDiscover    bool   `yaml:"auto_discover"`     // Enable automatic mDNS bridge discovery
	DiscoverTimeout int    `yaml:"discover_timeout"`  // mDNS discovery timeout in seconds
	Ramp            int    `yaml:"ramp_up,omitempty"` // Default ramp-up minutes for new schedule entries
}

// NewRegistry creates a new Registry with default values.
func NewRegistry() *Registry {
	return &Registry{
		Version: 1,
		Devices: make(map[string]*Device),
		Preferences: &Preferences{
			AutoDiscover:    true,
			DiscoverTimeout: 10,
		},
	}
}

// GetDevice retrieves device metadata by BLE address.
// Returns nil if the device doesn't exist in the registry.
func (r *Registry) GetDevice(address string) *Device {
	return r.Devices[address]
}

// EnsureDevice ensures a device entry exists in the registry.
// If the device doesn't exist, creates a new entry with default values.
// Returns the device entry (existing or newly created).
func (r *Registry) EnsureDevice(address string) *Device {
	if r.Devices == nil {
		r.Devices = make(map[string]*Device)
	}

	if device, exists := r.Devices[address]; exists {
		return device
	}

	device := &Device{}
	r.Devices[address] = device
	return device
}

// UpdateDeviceLastSeen records a sighting of the device, updating its
// advertised name and last-seen timestamp.
func (r *Registry) UpdateDeviceLastSeen(address, name string) {
	device := r.EnsureDevice(address)
	device.LastSeen = time.Now()
	if name != "" {
		device.Name = name
	}
}

// SetDeviceNickname sets a user-friendly nickname for a device.
func (r *Registry) SetDeviceNickname(address, nickname string) {
	device := r.EnsureDevice(address)
	device.Nickname = nickname
}

// SetModelOverride pins a device to a model name, bypassing the BLE name
// prefix match. Pass an empty string to clear the override.
func (r *Registry) SetModelOverride(address, model string) {
	device := r.EnsureDevice(address)
	device.Model = model
}

// FindByNickname resolves a nickname back to the device's BLE address.
// Returns an empty string when no device carries the nickname.
func (r *Registry) FindByNickname(nickname string) string {
	for addr, device := range r.Devices {
		if device.Nickname == nickname {
			return addr
		}
	}
	return ""
}

// BridgeFor returns the bridge endpoint to use for a device: the device's
// own preference when set, the global default otherwise.
func (r *Registry) BridgeFor(address string) string {
	if device := r.GetDevice(address); device != nil && device.Bridge != "" {
		return device.Bridge
	}
	if r.Preferences != nil {
		return r.Preferences.Bridge
	}
	return ""
}
