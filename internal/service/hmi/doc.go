// Package hmi wires the operator display: the controller client, the alarm
// session, the painted panel and the operator HTTP API.
package hmi
