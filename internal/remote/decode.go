package remote

import (
	"math"
	"strconv"

	"github.com/oshokin/loadbank-hmi/internal/domain/alarm"
)

// Field names of the controller's alarm structures.
const (
	fieldID           = "ID"
	fieldSeverity     = "Severity"
	fieldOccurred     = "Timestamp_Occurred"
	fieldName         = "Name"
	fieldDescription  = "Description"
	fieldAcknowledged = "Acknowledged"

	fieldTimeOccurred    = "Time_Occurred"
	fieldTimeCleared     = "Time_Cleared"
	fieldAlarmName       = "Alarm_Name"
	fieldDurationSec     = "Duration_Sec"
	fieldWasAcknowledged = "Was_Acknowledged"
)

// DecodeActiveAlarm converts an active alarm structure. ok is false when the
// value is not a structure.
func DecodeActiveAlarm(v any) (alarm.ActiveAlarm, bool) {
	fields, ok := v.(map[string]any)
	if !ok || fields == nil {
		return alarm.ActiveAlarm{}, false
	}

	id, _ := AsInt(fields[fieldID])
	severity, _ := AsInt(fields[fieldSeverity])
	acknowledged, _ := AsBool(fields[fieldAcknowledged])

	return alarm.ActiveAlarm{
		ID:           id,
		Severity:     alarm.Severity(severity),
		OccurredAt:   AsString(fields[fieldOccurred]),
		Name:         AsString(fields[fieldName]),
		Description:  AsString(fields[fieldDescription]),
		Acknowledged: acknowledged,
	}, true
}

// EncodeActiveAlarm is the inverse of DecodeActiveAlarm.
func EncodeActiveAlarm(a alarm.ActiveAlarm) map[string]any {
	return map[string]any{
		fieldID:           a.ID,
		fieldSeverity:     int(a.Severity),
		fieldOccurred:     a.OccurredAt,
		fieldName:         a.Name,
		fieldDescription:  a.Description,
		fieldAcknowledged: a.Acknowledged,
	}
}

// DecodeHistoryRecord converts a history structure. Negative durations are
// clamped to zero.
func DecodeHistoryRecord(v any) (alarm.HistoryRecord, bool) {
	fields, ok := v.(map[string]any)
	if !ok || fields == nil {
		return alarm.HistoryRecord{}, false
	}

	duration, _ := AsInt(fields[fieldDurationSec])
	severity, _ := AsInt(fields[fieldSeverity])
	acknowledged, _ := AsBool(fields[fieldWasAcknowledged])

	return alarm.HistoryRecord{
		OccurredAt:      AsString(fields[fieldTimeOccurred]),
		ClearedAt:       AsString(fields[fieldTimeCleared]),
		Name:            AsString(fields[fieldAlarmName]),
		DurationSeconds: max(duration, 0),
		WasAcknowledged: acknowledged,
		Severity:        alarm.Severity(severity),
	}, true
}

// EncodeHistoryRecord is the inverse of DecodeHistoryRecord.
func EncodeHistoryRecord(r alarm.HistoryRecord) map[string]any {
	return map[string]any{
		fieldTimeOccurred:    r.OccurredAt,
		fieldTimeCleared:     r.ClearedAt,
		fieldAlarmName:       r.Name,
		fieldDurationSec:     r.DurationSeconds,
		fieldWasAcknowledged: r.WasAcknowledged,
		fieldSeverity:        int(r.Severity),
	}
}

// AsInt coerces numeric remote values. Fractions are truncated; values
// outside the int range are rejected.
func AsInt(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int32:
		return int(n), true
	case int64:
		return int(n), true
	case uint32:
		return int(n), true
	case float64:
		// float64(math.MinInt) is exact, its negation is the first value past MaxInt.
		if math.IsNaN(n) || n < float64(math.MinInt) || n >= -float64(math.MinInt) {
			return 0, false
		}

		return int(n), true
	case string:
		i, err := strconv.Atoi(n)

		return i, err == nil
	default:
		return 0, false
	}
}

// AsBool coerces boolean remote values; numbers are true when non-zero.
func AsBool(v any) (bool, bool) {
	switch b := v.(type) {
	case bool:
		return b, true
	case float64:
		return b != 0, true
	case int:
		return b != 0, true
	default:
		return false, false
	}
}

// AsString returns string values as-is and "" for anything else.
func AsString(v any) string {
	s, _ := v.(string)

	return s
}
