package protocol

import "fmt"

// minFrameSize is the smallest byte count Decode will look at. Anything
// shorter cannot carry even an empty parameter list.
const minFrameSize = 6

// Response is a decoded inbound notification frame. Unknown commandId/mode
// combinations still decode to a Response carrying the raw parameters; the
// devices reply with frames this codec has no names for, and refusing them
// would hide exactly the traffic worth looking at.
type Response struct {
	CommandID byte
	Mode      byte
	MessageID uint16
	Params    []byte
	Raw       []byte // the complete validated frame
}

// String renders the response for logs and the monitor view.
func (r *Response) String() string {
	return fmt.Sprintf("Response{cmd=%d, mode=%d, msgId=%d, params=%v}",
		r.CommandID, r.Mode, r.MessageID, r.Params)
}

// Decode parses an inbound frame. It validates, in order: the minimum
// length, the trailing XOR checksum (ErrChecksumMismatch), and that the
// length field equals the actual parameter count plus 5 (ErrMalformedFrame).
// Failures return a *DecodeError wrapping the relevant sentinel; partially
// decoded results are never returned.
func Decode(data []byte) (*Response, error) {
	if len(data) < minFrameSize {
		return nil, &DecodeError{
			Reason: ErrMalformedFrame,
			Detail: fmt.Sprintf("%d bytes, need at least %d", len(data), minFrameSize),
			Frame:  append([]byte(nil), data...),
		}
	}

	body, sum := data[:len(data)-1], data[len(data)-1]
	if got := Checksum(body); got != sum {
		return nil, &DecodeError{
			Reason: ErrChecksumMismatch,
			Detail: fmt.Sprintf("frame carries 0x%02x, computed 0x%02x", sum, got),
			Frame:  append([]byte(nil), data...),
		}
	}

	paramCount := len(data) - HeaderSize - 1
	if paramCount < 0 || int(data[2]) != paramCount+LengthBias {
		return nil, &DecodeError{
			Reason: ErrMalformedFrame,
			Detail: fmt.Sprintf("length field %d, actual parameters %d", data[2], paramCount),
			Frame:  append([]byte(nil), data...),
		}
	}

	raw := append([]byte(nil), data...)
	return &Response{
		CommandID: raw[0],
		Mode:      raw[5],
		MessageID: uint16(raw[3])<<8 | uint16(raw[4]),
		Params:    raw[HeaderSize : len(raw)-1],
		Raw:       raw,
	}, nil
}
