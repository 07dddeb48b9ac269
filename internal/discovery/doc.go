// Package discovery provides mDNS-based discovery of BLE bridges.
//
// Chihiros devices themselves speak only Bluetooth Low Energy. A bridge
// daemon (typically a Raspberry Pi near the aquarium) owns the BLE link and
// exposes it over WebSocket; this package locates those bridges on the
// local network. Bridges advertise themselves using the
// "_chihiros-bridge._tcp" service type.
//
// # Discovery Process
//
// The discovery process works as follows:
//  1. Broadcasts mDNS queries on the local network
//  2. Listens for service advertisements from bridges
//  3. Collects bridge information (instance name, IP, port, TXT metadata)
//  4. Returns a list of discovered bridges after the timeout period
//
// # Usage Example
//
//	// Discover bridges with 10-second timeout
//	bridges, err := discovery.ScanForBridges(10 * time.Second)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	for _, bridge := range bridges {
//	    fmt.Printf("Found: %s at %s\n", bridge.Instance, bridge.Endpoint())
//	}
//
// # Bridge Information
//
// Each discovered bridge includes:
//   - Instance: mDNS instance name
//   - IP: IPv4 address (IPv6 fallback)
//   - Port: WebSocket port
//   - Metadata: TXT record data, including the optional "devices" record
//     listing the BLE addresses the bridge can reach
//
// # Network Requirements
//
// - Requires multicast support on the network interface
// - Bridges must be on the same local network segment
// - Firewall must allow mDNS (UDP port 5353)
//
// # Thread Safety
//
// This package is safe for concurrent use. Multiple discovery sessions can run
// simultaneously without interference.
package discovery
