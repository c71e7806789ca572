// Package alarms is the alarm synchronization engine of the operator display.
//
// A Session mirrors the controller's active alarm list and history log: a
// poll task reads the list lengths and counters, fans out one read per list
// index, reconciles the results into snapshots and repaints a bounded set of
// rows through a Renderer. Commands (acknowledge, acknowledge-all, reset,
// clear-history) are pulsed writes confirmed only by later polls. A blink task
// alternates the emphasis of unacknowledged rows independently of polling.
//
// All session state is guarded by one mutex and every Renderer call is made
// while holding it, so a renderer never sees concurrent calls.
package alarms
