// Package remote is the boundary to the controller's named variables.
//
// It defines the read / write / subscribe contract the alarm engine consumes,
// the controller symbol names, indexed addressing ("base[i]", 1-based) and the
// decoding of loosely typed remote records into domain values.
package remote
