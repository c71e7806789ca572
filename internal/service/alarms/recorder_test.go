package alarms

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"testing/synctest"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/oshokin/loadbank-hmi/internal/domain/alarm"
	"github.com/oshokin/loadbank-hmi/internal/remote/remotetest"
)

// activeRowState is what the recorder last saw for one active row.
type activeRowState struct {
	visible bool
	view    ActiveRow
	opacity float64
	trail   []float64
}

// historyRowState is what the recorder last saw for one history row.
type historyRowState struct {
	visible bool
	view    HistoryRow
}

// recorder is a Renderer that keeps the last painted panel and flags
// overlapping calls.
type recorder struct {
	inFlight atomic.Int32
	overlaps atomic.Int32

	mu            sync.Mutex
	tab           alarm.Tab
	noAlarms      bool
	noHistory     bool
	active        map[int]*activeRowState
	history       map[int]*historyRowState
	counters      CounterTexts
	dialog        bool
	announcements []Announcement
}

func newRecorder() *recorder {
	return &recorder{
		active:  make(map[int]*activeRowState),
		history: make(map[int]*historyRowState),
	}
}

func (r *recorder) enter() func() {
	if r.inFlight.Add(1) > 1 {
		r.overlaps.Add(1)
	}

	r.mu.Lock()

	return func() {
		r.mu.Unlock()
		r.inFlight.Add(-1)
	}
}

func (r *recorder) activeRow(row int) *activeRowState {
	s, ok := r.active[row]
	if !ok {
		s = new(activeRowState)
		r.active[row] = s
	}

	return s
}

func (r *recorder) historyRow(row int) *historyRowState {
	s, ok := r.history[row]
	if !ok {
		s = new(historyRowState)
		r.history[row] = s
	}

	return s
}

func (r *recorder) SelectTab(tab alarm.Tab) {
	defer r.enter()()

	r.tab = tab
}

func (r *recorder) ShowNoAlarms(visible bool) {
	defer r.enter()()

	r.noAlarms = visible
}

func (r *recorder) PaintActiveRow(row int, view ActiveRow) {
	defer r.enter()()

	s := r.activeRow(row)
	s.visible, s.view = true, view
}

func (r *recorder) HideActiveRow(row int) {
	defer r.enter()()

	r.activeRow(row).visible = false
}

func (r *recorder) SetActiveRowOpacity(row int, opacity float64) {
	defer r.enter()()

	s := r.activeRow(row)
	s.opacity = opacity
	s.trail = append(s.trail, opacity)
}

func (r *recorder) ShowNoHistory(visible bool) {
	defer r.enter()()

	r.noHistory = visible
}

func (r *recorder) PaintHistoryRow(row int, view HistoryRow) {
	defer r.enter()()

	s := r.historyRow(row)
	s.visible, s.view = true, view
}

func (r *recorder) HideHistoryRow(row int) {
	defer r.enter()()

	r.historyRow(row).visible = false
}

func (r *recorder) PaintCounters(view CounterTexts) {
	defer r.enter()()

	r.counters = view
}

func (r *recorder) ShowClearDialog(visible bool) {
	defer r.enter()()

	r.dialog = visible
}

func (r *recorder) AnnounceNewAlarm(view Announcement) {
	defer r.enter()()

	r.announcements = append(r.announcements, view)
}

// visibleActiveIDs returns the alarm ids of the visible active rows in row order.
func (r *recorder) visibleActiveIDs(rows int) []int {
	r.mu.Lock()
	defer r.mu.Unlock()

	var ids []int

	for row := 1; row <= rows; row++ {
		if s, ok := r.active[row]; ok && s.visible {
			ids = append(ids, s.view.AlarmID)
		}
	}

	return ids
}

// visibleHistoryNames returns the names of the visible history rows in row order.
func (r *recorder) visibleHistoryNames(rows int) []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	var names []string

	for row := 1; row <= rows; row++ {
		if s, ok := r.history[row]; ok && s.visible {
			names = append(names, s.view.Name)
		}
	}

	return names
}

func (r *recorder) opacity(row int) float64 {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.activeRow(row).opacity
}

func (r *recorder) opacityLog(row int) []float64 {
	r.mu.Lock()
	defer r.mu.Unlock()

	return append([]float64(nil), r.activeRow(row).trail...)
}

func (r *recorder) snapshot() (tab alarm.Tab, noAlarms, noHistory, dialog bool, counters CounterTexts) {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.tab, r.noAlarms, r.noHistory, r.dialog, r.counters
}

func testOptions() Options {
	return Options{
		PollInterval:    250 * time.Millisecond,
		BlinkInterval:   500 * time.Millisecond,
		TriggerInterval: 250 * time.Millisecond,
		AckHold:         100 * time.Millisecond,
		ResetHold:       500 * time.Millisecond,
		MaxActiveRows:   10,
		MaxHistoryRows:  12,
	}
}

// runSession starts a session inside the current synctest bubble and waits
// for the first poll to settle. The returned stop func tears it down.
func runSession(
	t *testing.T,
	table *remotetest.Table,
	opts Options,
	options ...SessionOption,
) (*Session, *recorder, func()) {
	t.Helper()

	rec := newRecorder()
	session := NewSession(table, rec, opts, append([]SessionOption{WithSessionID("test-session")}, options...)...)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)

	go func() {
		done <- session.Run(ctx)
	}()

	synctest.Wait()

	stop := func() {
		cancel()
		require.NoError(t, <-done)
		require.Zero(t, rec.overlaps.Load(), "renderer was called concurrently")
	}

	return session, rec, stop
}

// settle advances the fake clock by d and waits for the bubble to block.
func settle(d time.Duration) {
	time.Sleep(d)
	synctest.Wait()
}

func activeIDs(alarms []alarm.ActiveAlarm) []int {
	ids := make([]int, 0, len(alarms))
	for _, a := range alarms {
		ids = append(ids, a.ID)
	}

	return ids
}
