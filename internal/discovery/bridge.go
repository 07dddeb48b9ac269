package discovery

import (
	"fmt"
	"strings"
	"time"
)

// Bridge represents a discovered BLE bridge on the network
type Bridge struct {
	// Instance is the mDNS instance name (e.g., "chihiros-bridge-pi")
	Instance string

	// Hostname is the mDNS hostname (e.g., "raspberrypi.local.")
	Hostname string

	// IP is the IPv4 address (e.g., "192.168.4.16")
	IP string

	// Port is the WebSocket port
	Port int

	// Metadata contains additional mDNS TXT record data
	// Common fields: "path=/uart", "version=..."
	Metadata map[string]string

	// DiscoveredAt is when the bridge was discovered
	DiscoveredAt time.Time
}

// String returns a human-readable string representation of the bridge
func (b *Bridge) String() string {
	return fmt.Sprintf("Bridge %s (%s) at %s:%d", b.Instance, b.Hostname, b.IP, b.Port)
}

// Endpoint returns the dialable address for the bridge, suitable for
// transport.DialBridge.
func (b *Bridge) Endpoint() string {
	return fmt.Sprintf("%s:%d", b.IP, b.Port)
}

// GetMetadata retrieves a metadata value by key, or returns empty string if not found
func (b *Bridge) GetMetadata(key string) string {
	if b.Metadata == nil {
		return ""
	}
	return b.Metadata[key]
}

// Devices lists the BLE device addresses the bridge reports in its
// "devices" TXT record (comma-separated). Bridges that do not publish the
// record return an empty list.
func (b *Bridge) Devices() []string {
	raw := b.GetMetadata("devices")
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
