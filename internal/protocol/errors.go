package protocol

import (
	"errors"
	"fmt"
)

// Sentinel errors returned by the codec. All codec errors are synchronous and
// non-retryable; retry policy belongs to the transport layer.
var (
	// ErrParameterOverflow indicates a parameter list whose encoded length
	// would not fit in the single-byte length field.
	ErrParameterOverflow = errors.New("parameter count overflows length byte")

	// ErrChecksumMismatch indicates an inbound frame whose trailing byte does
	// not equal the XOR of the preceding bytes.
	ErrChecksumMismatch = errors.New("checksum mismatch")

	// ErrMalformedFrame indicates an inbound frame that is too short or whose
	// length field disagrees with the actual byte count.
	ErrMalformedFrame = errors.New("malformed frame")

	// ErrOutOfRange indicates a domain value outside the protocol-legal
	// range. Returned errors are *RangeError values matching this sentinel
	// via errors.Is.
	ErrOutOfRange = errors.New("value out of range")

	// ErrUnsupportedCommand flags a commandId/mode pair the catalog cannot
	// validate. Raw frames with such pairs may still be sent; the error is
	// informational.
	ErrUnsupportedCommand = errors.New("unsupported command")
)

// RangeError reports a domain value outside its protocol-legal range.
type RangeError struct {
	Field string // which input was out of range ("brightness", "hour", ...)
	Value int
	Min   int
	Max   int
}

// Error implements the error interface.
func (e *RangeError) Error() string {
	return fmt.Sprintf("%s out of range: %d (valid %d-%d)", e.Field, e.Value, e.Min, e.Max)
}

// Is makes errors.Is(err, ErrOutOfRange) match any RangeError.
func (e *RangeError) Is(target error) bool {
	return target == ErrOutOfRange
}

// rangeErr is a construction shorthand used throughout the catalog.
func rangeErr(field string, value, min, max int) error {
	return &RangeError{Field: field, Value: value, Min: min, Max: max}
}

// DecodeError wraps an inbound decode failure with the offending frame bytes
// for logging and diagnostics.
type DecodeError struct {
	Reason error  // ErrChecksumMismatch or ErrMalformedFrame
	Detail string // human-readable specifics
	Frame  []byte // the raw bytes that failed to decode
}

// Error implements the error interface.
func (e *DecodeError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("%v: %s", e.Reason, e.Detail)
	}
	return e.Reason.Error()
}

// Unwrap returns the underlying sentinel for errors.Is checks.
func (e *DecodeError) Unwrap() error {
	return e.Reason
}
