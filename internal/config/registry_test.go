package config

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"gopkg.in/yaml.v3"
)

func TestGetConfigDir(t *testing.T) {
	configDir, err := GetConfigDir()
	if err != nil {
		t.Fatalf("GetConfigDir() error = %v", err)
	}

	// Should not be empty
	if configDir == "" {
		t.Error("GetConfigDir() returned empty string")
	}

	// Should contain "chihirosctl"
	if !contains(configDir, "chihirosctl") {
		t.Errorf("GetConfigDir() = %v, should contain 'chihirosctl'", configDir)
	}

	// Platform-specific checks
	switch runtime.GOOS {
	case "windows":
		if !contains(configDir, "AppData") && !contains(configDir, "Local") {
			t.Errorf("Windows config dir should contain 'AppData' or 'Local', got: %v", configDir)
		}
	case "darwin", "linux":
		if !contains(configDir, ".config") {
			t.Errorf("Unix config dir should contain '.config', got: %v", configDir)
		}
	}

	t.Logf("Config directory: %s", configDir)
}

func TestGetConfigPath(t *testing.T) {
	configPath, err := GetConfigPath()
	if err != nil {
		t.Fatalf("GetConfigPath() error = %v", err)
	}

	// Should end with config.yaml
	if filepath.Base(configPath) != "config.yaml" {
		t.Errorf("GetConfigPath() should end with 'config.yaml', got: %v", configPath)
	}

	t.Logf("Config path: %s", configPath)
}

func TestNewRegistry(t *testing.T) {
	reg := NewRegistry()

	if reg.Version != 1 {
		t.Errorf("NewRegistry().Version = %v, want 1", reg.Version)
	}

	if reg.Devices == nil {
		t.Error("NewRegistry().Devices should not be nil")
	}

	if reg.Preferences == nil {
		t.Error("NewRegistry().Preferences should not be nil")
	}

	if reg.Preferences.AutoDiscover != true {
		t.Error("NewRegistry().Preferences.AutoDiscover should be true by default")
	}

	if reg.Preferences.DiscoverTimeout != 10 {
		t.Errorf("NewRegistry().Preferences.DiscoverTimeout = %v, want 10", reg.Preferences.DiscoverTimeout)
	}
}

func TestRegistryEnsureDevice(t *testing.T) {
	reg := NewRegistry()

	// First call should create device
	device1 := reg.EnsureDevice("C4:D7:FD:00:12:34")
	if device1 == nil {
		t.Fatal("EnsureDevice() returned nil")
	}

	// Second call should return same device
	device2 := reg.EnsureDevice("C4:D7:FD:00:12:34")
	if device1 != device2 {
		t.Error("EnsureDevice() should return same instance for same address")
	}

	// Different address should create new device
	device3 := reg.EnsureDevice("C4:D7:FD:00:56:78")
	if device1 == device3 {
		t.Error("EnsureDevice() should create new instance for different address")
	}
}

func TestRegistryUpdateDeviceLastSeen(t *testing.T) {
	reg := NewRegistry()

	before := time.Now()
	reg.UpdateDeviceLastSeen("C4:D7:FD:00:12:34", "DYNWRGB1234")
	after := time.Now()

	device := reg.GetDevice("C4:D7:FD:00:12:34")
	if device == nil {
		t.Fatal("Device should exist after UpdateDeviceLastSeen()")
	}

	if device.Name != "DYNWRGB1234" {
		t.Errorf("Name = %v, want DYNWRGB1234", device.Name)
	}

	if device.LastSeen.Before(before) || device.LastSeen.After(after) {
		t.Errorf("LastSeen = %v, should be between %v and %v", device.LastSeen, before, after)
	}

	// An empty name must not erase the recorded one.
	reg.UpdateDeviceLastSeen("C4:D7:FD:00:12:34", "")
	if got := reg.GetDevice("C4:D7:FD:00:12:34").Name; got != "DYNWRGB1234" {
		t.Errorf("Name after empty update = %v, want DYNWRGB1234", got)
	}
}

func TestRegistrySetDeviceNickname(t *testing.T) {
	reg := NewRegistry()

	reg.SetDeviceNickname("C4:D7:FD:00:12:34", "tank light")

	device := reg.GetDevice("C4:D7:FD:00:12:34")
	if device == nil {
		t.Fatal("Device should exist after SetDeviceNickname()")
	}

	if device.Nickname != "tank light" {
		t.Errorf("Nickname = %v, want 'tank light'", device.Nickname)
	}

	if got := reg.FindByNickname("tank light"); got != "C4:D7:FD:00:12:34" {
		t.Errorf("FindByNickname() = %v, want C4:D7:FD:00:12:34", got)
	}
	if got := reg.FindByNickname("no such device"); got != "" {
		t.Errorf("FindByNickname() for unknown nickname = %v, want empty", got)
	}
}

func TestRegistrySetModelOverride(t *testing.T) {
	reg := NewRegistry()

	reg.SetModelOverride("C4:D7:FD:00:12:34", "WRGB II Pro")
	if got := reg.GetDevice("C4:D7:FD:00:12:34").Model; got != "WRGB II Pro" {
		t.Errorf("Model = %v, want 'WRGB II Pro'", got)
	}

	reg.SetModelOverride("C4:D7:FD:00:12:34", "")
	if got := reg.GetDevice("C4:D7:FD:00:12:34").Model; got != "" {
		t.Errorf("Model after clear = %v, want empty", got)
	}
}

func TestRegistryBridgeFor(t *testing.T) {
	reg := NewRegistry()
	reg.Preferences.Bridge = "bridge.local:8080"

	// Unknown device falls back to the global default.
	if got := reg.BridgeFor("C4:D7:FD:00:12:34"); got != "bridge.local:8080" {
		t.Errorf("BridgeFor() = %v, want global default", got)
	}

	// Per-device preference wins.
	reg.EnsureDevice("C4:D7:FD:00:12:34").Bridge = "ws://10.0.0.5/uart"
	if got := reg.BridgeFor("C4:D7:FD:00:12:34"); got != "ws://10.0.0.5/uart" {
		t.Errorf("BridgeFor() = %v, want per-device bridge", got)
	}
}

func TestRegistryYAMLRoundTrip(t *testing.T) {
	// Use a temporary directory for testing
	tmpDir, err := os.MkdirTemp("", "chihirosctl-config-test-*")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}
	defer func() { _ = os.RemoveAll(tmpDir) }()

	testConfigPath := filepath.Join(tmpDir, "config.yaml")

	// Create and populate registry
	reg := NewRegistry()
	reg.SetDeviceNickname("C4:D7:FD:00:12:34", "tank light")
	reg.SetModelOverride("C4:D7:FD:00:12:34", "WRGB II")
	reg.UpdateDeviceLastSeen("C4:D7:FD:00:12:34", "DYNWRGB1234")
	reg.Preferences.Bridge = "bridge.local:8080"

	data, err := yaml.Marshal(reg)
	if err != nil {
		t.Fatalf("Failed to marshal registry: %v", err)
	}

	if err := os.WriteFile(testConfigPath, data, 0600); err != nil {
		t.Fatalf("Failed to write test config: %v", err)
	}

	raw, err := os.ReadFile(testConfigPath)
	if err != nil {
		t.Fatalf("Failed to read test config: %v", err)
	}

	var loaded Registry
	if err := yaml.Unmarshal(raw, &loaded); err != nil {
		t.Fatalf("Failed to parse test config: %v", err)
	}

	device := loaded.GetDevice("C4:D7:FD:00:12:34")
	if device == nil {
		t.Fatal("Device should exist in loaded registry")
	}

	if device.Nickname != "tank light" {
		t.Errorf("Loaded nickname = %v, want 'tank light'", device.Nickname)
	}

	if device.Model != "WRGB II" {
		t.Errorf("Loaded model = %v, want 'WRGB II'", device.Model)
	}

	if device.Name != "DYNWRGB1234" {
		t.Errorf("Loaded name = %v, want DYNWRGB1234", device.Name)
	}

	if loaded.Preferences.Bridge != "bridge.local:8080" {
		t.Errorf("Loaded bridge = %v, want bridge.local:8080", loaded.Preferences.Bridge)
	}
}

// Helper functions

func contains(s, substr string) bool {
	return len(s) >= len(substr) && (s == substr || len(substr) == 0 ||
		(len(s) > 0 && (s[:len(substr)] == substr || contains(s[1:], substr))))
}

// Benchmark tests

func BenchmarkGetConfigDir(b *testing.B) {
	for i := 0; i < b.N; i++ {
		_, _ = GetConfigDir()
	}
}

func BenchmarkEnsureDevice(b *testing.B) {
	reg := NewRegistry()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		reg.EnsureDevice("C4:D7:FD:00:12:34")
	}
}
