package protocol

import "fmt"

// Protocol frame constants.
const (
	// FrameMarker is the fixed second byte of every frame.
	FrameMarker = 0x01

	// HeaderSize is the number of bytes before the parameters.
	HeaderSize = 6

	// LengthBias is added to the parameter count to form the length field.
	LengthBias = 5

	// MaxParameters is the largest parameter count the length byte can carry.
	MaxParameters = 255 - LengthBias

	// ForbiddenByte is the byte some firmware revisions cannot accept in
	// parameters or checksums (see PolicyAvoid5A).
	ForbiddenByte = 0x5A
)

// Command family ids.
const (
	CmdLED   = 90  // brightness, mode switches, device time
	CmdTimed = 165 // timed settings and all doser operations
	CmdQuery = 91  // totals queries and their replies
)

// FramePolicy selects per-command post-processing applied by BuildFrame.
type FramePolicy uint8

const (
	// PolicyNone emits the frame exactly as constructed.
	PolicyNone FramePolicy = iota

	// PolicyAvoid5A dodges the ForbiddenByte: parameter bytes equal to 0x5A
	// are encoded as 0x59, and a checksum of 0x5A forces a rebuild under the
	// next message id. Every cataloged command carries it, matching vendor
	// traffic which sanitizes the LED, timed and doser families alike. The
	// policy stays per command rather than a Frame Builder rule so raw
	// frames pass through untouched and future exceptions stay local.
	PolicyAvoid5A
)

// Command is a logical device request: a command family id, a mode
// sub-opcode, and the mode-specific parameter bytes. Commands are immutable
// once constructed and translate 1:1 into a Frame.
type Command struct {
	ID     byte
	Mode   byte
	Params []byte
	Policy FramePolicy
}

// Frame is a complete wire frame ready to write to the device.
type Frame []byte

// CommandID returns the command family byte.
func (f Frame) CommandID() byte { return f[0] }

// Mode returns the mode sub-opcode byte.
func (f Frame) Mode() byte { return f[5] }

// MessageID returns the embedded 16-bit message id.
func (f Frame) MessageID() uint16 {
	return uint16(f[3])<<8 | uint16(f[4])
}

// Params returns the parameter bytes (aliasing the frame's storage).
func (f Frame) Params() []byte { return f[HeaderSize : len(f)-1] }

// Checksum returns the trailing checksum byte.
func (f Frame) Checksum() byte { return f[len(f)-1] }

// String renders the frame for logs and the encode command.
func (f Frame) String() string {
	return fmt.Sprintf("Frame{cmd=%d, mode=%d, msgId=%d, params=%v, checksum=0x%02x}",
		f.CommandID(), f.Mode(), f.MessageID(), f.Params(), f.Checksum())
}

// checksumRetries bounds how many message ids BuildFrame will burn dodging a
// forbidden checksum. Consecutive ids differ in the low byte, so two attempts
// almost always suffice; eight matches the retry depth seen in captured
// vendor-app traffic.
const checksumRetries = 8

// BuildFrame assembles the complete outgoing frame for cmd, drawing a message
// id from seq. The length field is len(params)+5 and the trailing byte is the
// XOR checksum over everything before it.
//
// BuildFrame fails only with ErrParameterOverflow, when the parameter count
// would not fit the single-byte length field. No cataloged command comes
// anywhere near that limit, but raw frames can.
func BuildFrame(cmd Command, seq *Sequencer) (Frame, error) {
	if len(cmd.Params) > MaxParameters {
		return nil, fmt.Errorf("%d parameters: %w", len(cmd.Params), ErrParameterOverflow)
	}

	params := cmd.Params
	if cmd.Policy == PolicyAvoid5A {
		params = substituteForbidden(params)
	}

	var frame Frame
	for attempt := 0; ; attempt++ {
		hi, lo := seq.Next()

		frame = make(Frame, 0, HeaderSize+len(params)+1)
		frame = append(frame, cmd.ID, FrameMarker, byte(len(params)+LengthBias), hi, lo, cmd.Mode)
		frame = append(frame, params...)

		sum := Checksum(frame)
		if cmd.Policy == PolicyAvoid5A && sum == ForbiddenByte && attempt < checksumRetries {
			continue // burn the id, rebuild under the next one
		}
		frame = append(frame, sum)
		return frame, nil
	}
}

// substituteForbidden returns params with every 0x5A replaced by 0x59. The
// input slice is never modified; a copy is made only when needed.
func substituteForbidden(params []byte) []byte {
	clean := params
	for i, p := range params {
		if p != ForbiddenByte {
			continue
		}
		if &clean[0] == &params[0] {
			clean = append([]byte(nil), params...)
		}
		clean[i] = ForbiddenByte - 1
	}
	return clean
}
