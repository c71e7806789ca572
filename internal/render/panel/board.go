package panel

import (
	"sync"

	"github.com/oshokin/loadbank-hmi/internal/domain/alarm"
	"github.com/oshokin/loadbank-hmi/internal/service/alarms"
)

// ActiveSlot is one active alarm row widget.
type ActiveSlot struct {
	Row     int              `json:"row"`
	Visible bool             `json:"visible"`
	View    alarms.ActiveRow `json:"view"`
	Opacity float64          `json:"opacity"`
}

// HistorySlot is one history row widget.
type HistorySlot struct {
	Row     int               `json:"row"`
	Visible bool              `json:"visible"`
	View    alarms.HistoryRow `json:"view"`
}

// State is a copy of every widget on the page.
type State struct {
	Version      uint64               `json:"version"`
	Tab          alarm.Tab            `json:"tab"`
	NoAlarms     bool                 `json:"no_alarms"`
	NoHistory    bool                 `json:"no_history"`
	Active       []ActiveSlot         `json:"active"`
	History      []HistorySlot        `json:"history"`
	Counters     alarms.CounterTexts  `json:"counters"`
	ClearDialog  bool                 `json:"clear_dialog"`
	Announcement *alarms.Announcement `json:"announcement,omitempty"`
}

// Board keeps the painted page. Row numbers outside the capacity are ignored.
type Board struct {
	mu    sync.RWMutex
	state State
}

// NewBoard creates a board with the given row capacities.
func NewBoard(activeRows, historyRows int) *Board {
	b := &Board{
		state: State{
			Tab:       alarm.TabActive,
			NoAlarms:  true,
			NoHistory: true,
			Active:    make([]ActiveSlot, activeRows),
			History:   make([]HistorySlot, historyRows),
		},
	}

	for i := range b.state.Active {
		b.state.Active[i] = ActiveSlot{Row: i + 1, Opacity: alarms.OpacityFull}
	}

	for i := range b.state.History {
		b.state.History[i].Row = i + 1
	}

	return b
}

// State returns a copy of the page.
func (b *Board) State() State {
	b.mu.RLock()
	defer b.mu.RUnlock()

	state := b.state
	state.Active = append([]ActiveSlot(nil), b.state.Active...)
	state.History = append([]HistorySlot(nil), b.state.History...)

	if b.state.Announcement != nil {
		a := *b.state.Announcement
		state.Announcement = &a
	}

	return state
}

// Version increases on every paint.
func (b *Board) Version() uint64 {
	b.mu.RLock()
	defer b.mu.RUnlock()

	return b.state.Version
}

func (b *Board) update(fn func(s *State)) {
	b.mu.Lock()
	defer b.mu.Unlock()

	fn(&b.state)
	b.state.Version++
}

func (b *Board) activeSlot(s *State, row int) *ActiveSlot {
	if row < 1 || row > len(s.Active) {
		return nil
	}

	return &s.Active[row-1]
}

func (b *Board) historySlot(s *State, row int) *HistorySlot {
	if row < 1 || row > len(s.History) {
		return nil
	}

	return &s.History[row-1]
}

// SelectTab implements alarms.Renderer.
func (b *Board) SelectTab(tab alarm.Tab) {
	b.update(func(s *State) { s.Tab = tab })
}

// ShowNoAlarms implements alarms.Renderer.
func (b *Board) ShowNoAlarms(visible bool) {
	b.update(func(s *State) { s.NoAlarms = visible })
}

// PaintActiveRow implements alarms.Renderer.
func (b *Board) PaintActiveRow(row int, view alarms.ActiveRow) {
	b.update(func(s *State) {
		if slot := b.activeSlot(s, row); slot != nil {
			slot.Visible, slot.View = true, view
		}
	})
}

// HideActiveRow implements alarms.Renderer.
func (b *Board) HideActiveRow(row int) {
	b.update(func(s *State) {
		if slot := b.activeSlot(s, row); slot != nil {
			slot.Visible = false
		}
	})
}

// SetActiveRowOpacity implements alarms.Renderer.
func (b *Board) SetActiveRowOpacity(row int, opacity float64) {
	b.update(func(s *State) {
		if slot := b.activeSlot(s, row); slot != nil {
			slot.Opacity = opacity
		}
	})
}

// ShowNoHistory implements alarms.Renderer.
func (b *Board) ShowNoHistory(visible bool) {
	b.update(func(s *State) { s.NoHistory = visible })
}

// PaintHistoryRow implements alarms.Renderer.
func (b *Board) PaintHistoryRow(row int, view alarms.HistoryRow) {
	b.update(func(s *State) {
		if slot := b.historySlot(s, row); slot != nil {
			slot.Visible, slot.View = true, view
		}
	})
}

// HideHistoryRow implements alarms.Renderer.
func (b *Board) HideHistoryRow(row int) {
	b.update(func(s *State) {
		if slot := b.historySlot(s, row); slot != nil {
			slot.Visible = false
		}
	})
}

// PaintCounters implements alarms.Renderer.
func (b *Board) PaintCounters(view alarms.CounterTexts) {
	b.update(func(s *State) { s.Counters = view })
}

// ShowClearDialog implements alarms.Renderer.
func (b *Board) ShowClearDialog(visible bool) {
	b.update(func(s *State) { s.ClearDialog = visible })
}

// AnnounceNewAlarm implements alarms.Renderer.
func (b *Board) AnnounceNewAlarm(view alarms.Announcement) {
	b.update(func(s *State) { s.Announcement = &view })
}

var _ alarms.Renderer = (*Board)(nil)
