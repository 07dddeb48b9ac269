package transport

import "context"

// UART service identifiers the devices expose. Bridges address the device
// through this triple; the codec never sees them.
const (
	UARTServiceUUID = "6e400001-b5a3-f393-e0a9-e50e24dcca9e"
	UARTWriteUUID   = "6e400002-b5a3-f393-e0a9-e50e24dcca9e" // host -> device
	UARTNotifyUUID  = "6e400003-b5a3-f393-e0a9-e50e24dcca9e" // device -> host
)

// Transport moves raw frames between the host and one device. Implementations
// must be safe for one writer and one notification consumer; sessions perform
// their own command serialization on top.
type Transport interface {
	// Write delivers one complete frame to the device's write
	// characteristic.
	Write(ctx context.Context, frame []byte) error

	// Notifications returns the stream of inbound notification payloads.
	// The channel closes when the transport closes or the link drops.
	Notifications() <-chan []byte

	// Close releases the connection. Safe to call more than once.
	Close() error
}
