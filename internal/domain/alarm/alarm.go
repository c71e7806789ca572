package alarm

import (
	"cmp"
	"fmt"
	"slices"
)

// Severity is the controller-assigned alarm class. Lower values sort first.
type Severity int

const (
	// SeverityCritical marks alarms that stop or endanger the load bank.
	SeverityCritical Severity = 1
	// SeverityWarning marks alarms that only need operator attention.
	SeverityWarning Severity = 2
)

// IsCritical reports whether the severity is painted as critical.
// Any value other than SeverityCritical is painted as a warning.
func (s Severity) IsCritical() bool {
	return s == SeverityCritical
}

// String returns a lower-case label for logs and the HTTP API.
func (s Severity) String() string {
	switch s {
	case SeverityCritical:
		return "critical"
	case SeverityWarning:
		return "warning"
	default:
		return fmt.Sprintf("severity(%d)", int(s))
	}
}

// ActiveAlarm is one entry of the controller's active alarm list.
type ActiveAlarm struct {
	// ID is unique while the alarm is active and addresses acknowledge commands.
	ID int
	// Severity orders the panel: critical rows first.
	Severity Severity
	// OccurredAt is the controller-formatted raise time.
	OccurredAt string
	// Name is the short alarm text.
	Name string
	// Description is the long alarm text.
	Description string
	// Acknowledged mirrors the remote flag at read time.
	Acknowledged bool
}

// HistoryRecord is a closed alarm instance from the controller's history log.
type HistoryRecord struct {
	OccurredAt      string
	ClearedAt       string
	Name            string
	DurationSeconds int
	WasAcknowledged bool
	Severity        Severity
}

// SortActive orders alarms by severity, then by id, both ascending.
func SortActive(alarms []ActiveAlarm) {
	slices.SortStableFunc(alarms, func(a, b ActiveAlarm) int {
		if c := cmp.Compare(a.Severity, b.Severity); c != 0 {
			return c
		}

		return cmp.Compare(a.ID, b.ID)
	})
}

// CountUnacknowledged returns how many alarms still wait for an acknowledge.
func CountUnacknowledged(alarms []ActiveAlarm) int {
	n := 0

	for i := range alarms {
		if !alarms[i].Acknowledged {
			n++
		}
	}

	return n
}

// FindActive returns the alarm with the given id.
func FindActive(alarms []ActiveAlarm, id int) (ActiveAlarm, bool) {
	idx := slices.IndexFunc(alarms, func(a ActiveAlarm) bool { return a.ID == id })
	if idx < 0 {
		return ActiveAlarm{}, false
	}

	return alarms[idx], true
}
