// Package common holds helpers shared by the display and the simulator.
//
// It provides the controller client (remote variable access over gRPC with
// per-call timeouts), detection of the operator identity and a
// single-instance guard.
//
//nolint:revive,nolintlint // Package name "common" is intentional for shared helpers.
package common
