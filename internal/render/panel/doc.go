// Package panel holds the rendered alarm page.
//
// Board implements the alarm session's Renderer by keeping the last painted
// value of every widget. The HTTP API serves it as JSON and the console
// printer draws it with lipgloss.
package panel
