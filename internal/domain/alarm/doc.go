// Package alarm contains the domain types mirrored from the load-bank
// controller: active alarms, closed history records, the panel tab and the
// operator identity attached to commands.
//
// Values here are point-in-time copies of remote data; nothing in this package
// talks to the controller.
package alarm
