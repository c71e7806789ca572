package panel

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/oshokin/loadbank-hmi/internal/domain/alarm"
	"github.com/oshokin/loadbank-hmi/internal/service/alarms"
)

var (
	colorCritical = lipgloss.Color("#f7768e")
	colorWarning  = lipgloss.Color("#e0af68")
	colorNormal   = lipgloss.Color("#9ece6a")
	colorMuted    = lipgloss.Color("#565f89")
	colorPrimary  = lipgloss.Color("#7aa2f7")

	panelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorMuted).
			Padding(0, 1)

	titleStyle = lipgloss.NewStyle().
			Foreground(colorPrimary).
			Bold(true)

	tabActiveStyle = lipgloss.NewStyle().
			Foreground(colorPrimary).
			Bold(true).
			Underline(true)

	tabIdleStyle = lipgloss.NewStyle().
			Foreground(colorMuted)

	labelStyle = lipgloss.NewStyle().
			Foreground(colorMuted)

	dialogStyle = lipgloss.NewStyle().
			Border(lipgloss.DoubleBorder()).
			BorderForeground(colorCritical).
			Padding(0, 1)
)

func toneColor(tone alarms.Tone) lipgloss.Color {
	switch tone {
	case alarms.ToneCritical:
		return colorCritical
	case alarms.ToneWarning:
		return colorWarning
	case alarms.ToneNormal:
		return colorNormal
	default:
		return colorMuted
	}
}

func toned(tone alarms.Tone, text string) string {
	return lipgloss.NewStyle().Foreground(toneColor(tone)).Render(text)
}

// View draws the page as text.
func (b *Board) View() string {
	state := b.State()

	sections := []string{
		titleStyle.Render("LoadBank alarms"),
		tabs(state.Tab),
		counters(state.Counters),
	}

	if state.Announcement != nil {
		sections = append(sections, toned(alarms.ToneCritical,
			fmt.Sprintf("NEW ALARM #%d %s", state.Announcement.AlarmID, state.Announcement.Name)))
	}

	if state.Tab == alarm.TabHistory {
		sections = append(sections, historyTable(state))
	} else {
		sections = append(sections, activeTable(state))
	}

	if state.ClearDialog {
		sections = append(sections, dialogStyle.Render("Clear alarm history? confirm / cancel"))
	}

	return panelStyle.Render(lipgloss.JoinVertical(lipgloss.Left, sections...))
}

func tabs(selected alarm.Tab) string {
	render := func(tab alarm.Tab, label string) string {
		if tab == selected {
			return tabActiveStyle.Render(label)
		}

		return tabIdleStyle.Render(label)
	}

	return render(alarm.TabActive, "Active") + "  " + render(alarm.TabHistory, "History")
}

func counters(c alarms.CounterTexts) string {
	return strings.Join([]string{
		labelStyle.Render("critical ") + toned(alarms.ToneCritical, c.Critical),
		labelStyle.Render("warning ") + toned(alarms.ToneWarning, c.Warning),
		labelStyle.Render("unacked ") + c.Unacknowledged,
		labelStyle.Render("total ") + toned(c.TotalTone, c.Total),
	}, "   ")
}

func activeTable(state State) string {
	if state.NoAlarms {
		return labelStyle.Render("No active alarms")
	}

	lines := make([]string, 0, len(state.Active))

	for _, slot := range state.Active {
		if !slot.Visible {
			continue
		}

		v := slot.View
		style := lipgloss.NewStyle().Foreground(toneColor(v.Tone)).Faint(slot.Opacity < alarms.OpacityFull)
		ack := v.AckText

		if v.AckEnabled {
			ack = "[" + ack + "]"
		}

		lines = append(lines, style.Render(fmt.Sprintf("%2d %s %-5s %s  %-24s %-32s %s",
			slot.Row, v.Glyph, v.Label, v.Time, v.Name, v.Description, ack)))
	}

	return strings.Join(lines, "\n")
}

func historyTable(state State) string {
	if state.NoHistory {
		return labelStyle.Render("No alarm history")
	}

	lines := make([]string, 0, len(state.History))

	for _, slot := range state.History {
		if !slot.Visible {
			continue
		}

		v := slot.View
		lines = append(lines, toned(v.Tone, fmt.Sprintf("%s → %s  %-24s %8s ", v.Occurred, v.Cleared, v.Name, v.Duration))+
			toned(v.AckTone, v.AckGlyph))
	}

	return strings.Join(lines, "\n")
}
