package alarms

import (
	"strconv"

	"github.com/oshokin/loadbank-hmi/internal/domain/alarm"
)

// Tone is the semantic color of a panel element.
type Tone string

// Panel tones.
const (
	ToneCritical Tone = "critical"
	ToneWarning  Tone = "warning"
	ToneNormal   Tone = "normal"
	ToneNeutral  Tone = "neutral"
)

const (
	// OpacityFull is the opacity of acknowledged rows and of the bright blink phase.
	OpacityFull = 1.0
	// OpacityDimmed is the opacity of unacknowledged rows in the dim blink phase.
	OpacityDimmed = 0.6
	// Placeholder replaces counters whose read was absent.
	Placeholder = "—"
)

// ActiveRow is the field set of one active alarm row.
type ActiveRow struct {
	AlarmID     int    `json:"alarm_id"`
	Label       string `json:"label"`
	Glyph       string `json:"glyph"`
	Tone        Tone   `json:"tone"`
	Time        string `json:"time"`
	Name        string `json:"name"`
	Description string `json:"description"`
	AckText     string `json:"ack_text"`
	AckEnabled  bool   `json:"ack_enabled"`
}

// HistoryRow is the field set of one history row.
type HistoryRow struct {
	Tone     Tone   `json:"tone"`
	Occurred string `json:"occurred"`
	Cleared  string `json:"cleared"`
	Name     string `json:"name"`
	Duration string `json:"duration"`
	AckGlyph string `json:"ack_glyph"`
	AckTone  Tone   `json:"ack_tone"`
}

// CounterTexts is the display form of the alarm counters.
type CounterTexts struct {
	Critical       string `json:"critical"`
	Warning        string `json:"warning"`
	Unacknowledged string `json:"unacknowledged"`
	Total          string `json:"total"`
	TotalTone      Tone   `json:"total_tone"`
}

// Announcement is the newest alarm reported by the controller's trigger.
type Announcement struct {
	AlarmID int    `json:"alarm_id"`
	Name    string `json:"name"`
}

// Renderer is the widget boundary. Rows are numbered from 1.
type Renderer interface {
	SelectTab(tab alarm.Tab)
	ShowNoAlarms(visible bool)
	PaintActiveRow(row int, view ActiveRow)
	HideActiveRow(row int)
	SetActiveRowOpacity(row int, opacity float64)
	ShowNoHistory(visible bool)
	PaintHistoryRow(row int, view HistoryRow)
	HideHistoryRow(row int)
	PaintCounters(view CounterTexts)
	ShowClearDialog(visible bool)
	AnnounceNewAlarm(view Announcement)
}

// Count is a scalar counter read; Valid is false when the read was absent.
type Count struct {
	Value int
	Valid bool
}

// Text renders the counter or the placeholder.
func (c Count) Text() string {
	if !c.Valid {
		return Placeholder
	}

	return strconv.Itoa(c.Value)
}

// Counts holds the independently polled alarm counters.
type Counts struct {
	Critical       Count
	Warning        Count
	Unacknowledged Count
	Total          Count
}

func countersView(c Counts) CounterTexts {
	tone := ToneNeutral

	switch {
	case !c.Total.Valid:
	case c.Total.Value > 0:
		tone = ToneCritical
	default:
		tone = ToneNormal
	}

	return CounterTexts{
		Critical:       c.Critical.Text(),
		Warning:        c.Warning.Text(),
		Unacknowledged: c.Unacknowledged.Text(),
		Total:          c.Total.Text(),
		TotalTone:      tone,
	}
}

func activeRowView(a alarm.ActiveAlarm) ActiveRow {
	view := ActiveRow{
		AlarmID:     a.ID,
		Label:       "#" + strconv.Itoa(a.ID),
		Glyph:       "⚠",
		Tone:        ToneWarning,
		Time:        orDefault(a.OccurredAt, "--:--:--"),
		Name:        a.Name,
		Description: a.Description,
		AckText:     "ACK",
		AckEnabled:  true,
	}

	if a.Severity.IsCritical() {
		view.Glyph = "!"
		view.Tone = ToneCritical
	}

	if a.Acknowledged {
		view.AckText = "✓ ACK"
		view.AckEnabled = false
	}

	return view
}

func historyRowView(r alarm.HistoryRecord) HistoryRow {
	view := HistoryRow{
		Tone:     ToneWarning,
		Occurred: orDefault(r.OccurredAt, "--"),
		Cleared:  orDefault(r.ClearedAt, "--"),
		Name:     r.Name,
		Duration: alarm.FormatDuration(r.DurationSeconds),
		AckGlyph: "✗",
		AckTone:  ToneCritical,
	}

	if r.Severity.IsCritical() {
		view.Tone = ToneCritical
	}

	if r.WasAcknowledged {
		view.AckGlyph = "✓"
		view.AckTone = ToneNormal
	}

	return view
}

// rowOpacity derives a row's opacity from its flag and the shared blink phase.
func rowOpacity(acknowledged, bright bool) float64 {
	if acknowledged || bright {
		return OpacityFull
	}

	return OpacityDimmed
}

func orDefault(s, fallback string) string {
	if s == "" {
		return fallback
	}

	return s
}
