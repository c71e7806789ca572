package simulator

import "github.com/oshokin/loadbank-hmi/internal/domain/alarm"

// catalogEntry is one alarm the simulator can raise on its own.
type catalogEntry struct {
	severity    alarm.Severity
	name        string
	description string
}

// catalog lists typical load-bank alarms, cycled in order by the raise loop.
//
//nolint:gochecknoglobals // Read-only table.
var catalog = []catalogEntry{
	{alarm.SeverityCritical, "Overtemperature", "Element bank exhaust above trip limit"},
	{alarm.SeverityWarning, "Low airflow", "Cooling airflow below 80% of nominal"},
	{alarm.SeverityCritical, "Cooling fan failure", "Fan motor feedback lost"},
	{alarm.SeverityWarning, "Phase imbalance", "Phase current deviation above 10%"},
	{alarm.SeverityWarning, "Supply voltage high", "Line voltage above 110% of rating"},
	{alarm.SeverityCritical, "Main breaker trip", "Main contactor opened under load"},
	{alarm.SeverityWarning, "Element group fault", "Load step current out of tolerance"},
	{alarm.SeverityCritical, "Emergency stop", "Emergency stop circuit open"},
}
