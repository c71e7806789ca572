// Package controller persists the alarm memory of the controller simulator.
//
// The FileRepository stores the image as a protobuf Struct encoded with
// protojson, using the controller's own structure field names, so a scenario
// file can be written by hand and loaded by the simulator.
package controller
