// Package protocol implements the Chihiros device binary protocol.
//
// This package handles construction, validation, and decoding of the binary
// command frames used by Chihiros aquarium LED lights and dosing pumps. The
// devices expose a Nordic UART style BLE service (one write characteristic,
// one notify characteristic) and exchange single-frame binary messages over
// it. How the bytes travel is not this package's concern: every function here
// is a pure transformation between structured commands and byte sequences.
//
// # Frame Format
//
// Every frame, outgoing or inbound, has the same layout:
//
//	[0]   commandId   Command family (90=LED, 165=timed/doser, 91=query reply)
//	[1]   0x01        Protocol marker
//	[2]   length      len(parameters) + 5
//	[3]   msgIdHigh   Message id, high byte
//	[4]   msgIdLow    Message id, low byte
//	[5]   mode        Sub-opcode within the command family
//	[6+]  parameters  Variable length
//	[N]   checksum    XOR of all preceding bytes
//
// # Message Ids
//
// Message ids are a session-scoped 16-bit counter. Sequencer owns the counter
// and performs no locking; a device session must serialize access to it (see
// internal/device.Session).
//
// # Command Catalog
//
// Commands are constructed with the New* functions (NewManualBrightness,
// NewAddTimedSetting, NewManualDose, ...) and rendered to bytes with
// BuildFrame. Each constructor validates its domain inputs (brightness
// percentages, millilitre amounts, hours and minutes) and returns a
// *RangeError for anything outside the protocol-legal range.
//
// # The 0x5A Quirk
//
// Some firmware revisions choke on the literal byte 0x5A. For the command
// families observed to be affected, constructors tag the Command with
// PolicyAvoid5A: parameter bytes equal to 0x5A are encoded as 0x59, and a
// frame whose checksum lands on 0x5A is rebuilt under the next message id.
// The quirk is a per-command policy, documented on each affected constructor;
// BuildFrame itself applies whatever policy the Command carries.
//
// # Decoding
//
// Decode parses inbound notification frames, validating the checksum and the
// length field. Known replies get typed accessors (see DailyTotals); unknown
// command/mode combinations still decode to a generic Response so that
// undocumented device replies surface to the caller instead of failing.
//
// # Thread Safety
//
// All construction and decoding functions are stateless and safe for
// concurrent use. Sequencer is the single piece of mutable state and is
// deliberately unsynchronized; confine each instance to one session.
package protocol
