// Package device models Chihiros device sessions and the per-model
// knowledge the protocol itself does not carry.
//
// A Profile describes one hardware model: which model-code prefixes its BLE
// name advertises, which color channels it has and their wire ids, and
// whether it is a dosing pump. The codec encodes whatever channel ids it is
// given; profiles are what map "red" on a WRGB II to wire channel 0.
//
// A Session binds a Profile to a transport and owns the message-id
// sequencer for that connection. The sequencer itself is unsynchronized, so
// Session serializes every command build-and-write under one mutex; two
// sessions to two devices share nothing and run fully in parallel.
//
// The device, not this package, is the source of truth for programmed
// settings: Session methods fire commands and return, keeping no schedule
// registry of their own.
package device
