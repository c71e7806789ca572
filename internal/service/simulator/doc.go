// Package simulator serves a simulated load-bank controller over gRPC.
//
// The controller keeps an active alarm list and a history log, answers the
// variable reads of the operator display and reacts to the rising edges of
// the command flags the display pulses: acknowledge by id, acknowledge all,
// clear history and system reset.
package simulator
