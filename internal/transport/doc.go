// Package transport carries raw protocol frames to and from Chihiros
// devices.
//
// The codec in internal/protocol is transport-agnostic: it produces and
// consumes byte sequences and never blocks. This package supplies the
// collaborator that actually moves those bytes. Transport is the interface
// sessions program against; Bridge is the shipped implementation, a
// WebSocket client for LAN BLE bridge daemons that relay the devices'
// Nordic UART service (one write characteristic, one notify
// characteristic).
//
// Each protocol frame fits a single BLE write/notification, so the bridge
// maps one binary WebSocket message to one frame in each direction with no
// extra framing.
//
// Connection retry, timeouts, and cancellation live here and in callers'
// contexts, never in the codec.
package transport
