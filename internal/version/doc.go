// Package version exposes build metadata of the display and simulator binaries.
//
// Version, Commit and BuildTime are injected through ldflags.
package version
