// Package rest exposes the alarm page to operator clients over HTTP.
//
// The router serves the painted panel, the raw session snapshot, the operator
// commands, a health probe and the Prometheus metrics endpoint.
package rest
