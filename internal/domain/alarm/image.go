package alarm

import (
	"slices"
	"time"
)

// RaisedAlarm is an active alarm together with the instant it was raised.
type RaisedAlarm struct {
	ActiveAlarm

	RaisedAt time.Time
}

// ControllerImage is the alarm memory of a controller: the active list in
// raise order, the history log oldest first and the id of the next alarm.
type ControllerImage struct {
	Active  []RaisedAlarm
	History []HistoryRecord
	NextID  int
}

// Clone returns a deep copy of the image.
func (img *ControllerImage) Clone() *ControllerImage {
	if img == nil {
		return nil
	}

	return &ControllerImage{
		Active:  slices.Clone(img.Active),
		History: slices.Clone(img.History),
		NextID:  img.NextID,
	}
}
