// Package emulator provides a development stand-in for a BLE bridge daemon.
//
// The emulator serves the same /uart WebSocket endpoint a real bridge
// exposes and backs it with a small in-memory device model: brightness
// writes are recorded, one-shot doses accumulate into daily totals, and
// totals queries are answered with synthesized notification frames.
//
// It exists for two jobs: end-to-end testing of the transport and session
// layers without hardware, and trying out CLI workflows before pointing
// them at a live tank. Start one with:
//
//	chihirosctl emulate --emulated-device DYDOSED5EF --announce
//
// With --announce the emulator registers itself over mDNS exactly like a
// real bridge, so `chihirosctl scan` finds it.
package emulator
