// Package logger wraps zap for the display and the simulator:
//   - a global sugared logger with a console encoder,
//   - context helpers (ToContext/FromContext/WithName/WithKV/WithFields),
//   - level parsing and a per-logger level override option.
//
// Engine components never hold a logger of their own; they take it from the
// context they run under, so the session id and component name follow every
// line.
package logger
