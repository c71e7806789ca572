package rest

import (
	"github.com/oshokin/loadbank-hmi/internal/domain/alarm"
	"github.com/oshokin/loadbank-hmi/internal/service/alarms"
)

type errorDTO struct {
	Error string `json:"error"`
}

type commandDTO struct {
	AlarmID int `json:"alarm_id"`
}

type alarmDTO struct {
	ID           int    `json:"id"`
	Severity     string `json:"severity"`
	OccurredAt   string `json:"occurred_at"`
	Name         string `json:"name"`
	Description  string `json:"description"`
	Acknowledged bool   `json:"acknowledged"`
}

type historyDTO struct {
	OccurredAt      string `json:"occurred_at"`
	ClearedAt       string `json:"cleared_at"`
	Name            string `json:"name"`
	DurationSeconds int    `json:"duration_seconds"`
	WasAcknowledged bool   `json:"was_acknowledged"`
	Severity        string `json:"severity"`
}

// countsDTO holds nil for counters whose last read was absent.
type countsDTO struct {
	Critical       *int `json:"critical"`
	Warning        *int `json:"warning"`
	Unacknowledged *int `json:"unacknowledged"`
	Total          *int `json:"total"`
}

type snapshotDTO struct {
	SessionID    string               `json:"session_id"`
	Tab          alarm.Tab            `json:"tab"`
	Active       []alarmDTO           `json:"active"`
	History      []historyDTO         `json:"history"`
	Counts       countsDTO            `json:"counts"`
	Blink        bool                 `json:"blink"`
	ClearDialog  bool                 `json:"clear_dialog"`
	Announcement *alarms.Announcement `json:"announcement,omitempty"`
}

func toSnapshotDTO(s alarms.Snapshot) snapshotDTO {
	dto := snapshotDTO{
		SessionID:    s.SessionID,
		Tab:          s.Tab,
		Active:       make([]alarmDTO, 0, len(s.Active)),
		History:      make([]historyDTO, 0, len(s.History)),
		Blink:        s.Blink,
		ClearDialog:  s.ClearDialog,
		Announcement: s.Announcement,
		Counts: countsDTO{
			Critical:       countValue(s.Counts.Critical),
			Warning:        countValue(s.Counts.Warning),
			Unacknowledged: countValue(s.Counts.Unacknowledged),
			Total:          countValue(s.Counts.Total),
		},
	}

	for _, a := range s.Active {
		dto.Active = append(dto.Active, alarmDTO{
			ID:           a.ID,
			Severity:     a.Severity.String(),
			OccurredAt:   a.OccurredAt,
			Name:         a.Name,
			Description:  a.Description,
			Acknowledged: a.Acknowledged,
		})
	}

	for _, r := range s.History {
		dto.History = append(dto.History, historyDTO{
			OccurredAt:      r.OccurredAt,
			ClearedAt:       r.ClearedAt,
			Name:            r.Name,
			DurationSeconds: r.DurationSeconds,
			WasAcknowledged: r.WasAcknowledged,
			Severity:        r.Severity.String(),
		})
	}

	return dto
}

func countValue(c alarms.Count) *int {
	if !c.Valid {
		return nil
	}

	v := c.Value

	return &v
}
