package alarms

import (
	"context"
	"errors"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/oshokin/loadbank-hmi/internal/domain/alarm"
	"github.com/oshokin/loadbank-hmi/internal/logger"
	"github.com/oshokin/loadbank-hmi/internal/observability/metrics"
	"github.com/oshokin/loadbank-hmi/internal/remote"
)

// poll starts one reconciliation of every live track. Ticks do not wait for
// earlier ticks; whichever load completes last is what the panel shows.
func (s *Session) poll(ctx context.Context) {
	if !s.spawn(func() { s.refreshCounters(ctx) }) {
		return
	}

	s.metrics.ObserveTick()
	s.spawn(func() { s.syncActive(ctx) })

	if s.Tab() == alarm.TabHistory {
		s.spawn(func() { s.syncHistory(ctx) })
	}
}

func (s *Session) syncActive(ctx context.Context) {
	count, ok := s.readCount(ctx, remote.AlarmListCount, metrics.TrackActive)
	if ctx.Err() != nil {
		return
	}

	if !ok || count <= 0 {
		s.applyActive(ctx, nil)
		return
	}

	started := time.Now()

	records, err := Load(ctx, Ascending(count, s.opts.MaxActiveRows), s.readActive)
	if err != nil {
		return
	}

	alarm.SortActive(records)
	s.metrics.ObserveLoad(metrics.TrackActive, time.Since(started), len(records))
	s.applyActive(ctx, records)
}

func (s *Session) syncHistory(ctx context.Context) {
	count, ok := s.readCount(ctx, remote.AlarmHistoryCount, metrics.TrackHistory)
	if ctx.Err() != nil {
		return
	}

	if !ok || count <= 0 {
		s.applyHistory(ctx, nil)
		return
	}

	started := time.Now()

	records, err := Load(ctx, Descending(count, s.opts.MaxHistoryRows), s.readHistory)
	if err != nil {
		return
	}

	s.metrics.ObserveLoad(metrics.TrackHistory, time.Since(started), len(records))
	s.applyHistory(ctx, records)
}

func (s *Session) readActive(ctx context.Context, index int) (alarm.ActiveAlarm, bool) {
	name := remote.Indexed(remote.AlarmList, index)

	v, err := s.remote.Read(ctx, name)
	if err != nil {
		s.absent(ctx, name, metrics.TrackActive, err)
		return alarm.ActiveAlarm{}, false
	}

	record, ok := remote.DecodeActiveAlarm(v)
	if !ok {
		logger.DebugKV(ctx, "Malformed alarm record skipped", "name", name)
		return alarm.ActiveAlarm{}, false
	}

	return record, true
}

func (s *Session) readHistory(ctx context.Context, index int) (alarm.HistoryRecord, bool) {
	name := remote.Indexed(remote.AlarmHistory, index)

	v, err := s.remote.Read(ctx, name)
	if err != nil {
		s.absent(ctx, name, metrics.TrackHistory, err)
		return alarm.HistoryRecord{}, false
	}

	record, ok := remote.DecodeHistoryRecord(v)
	if !ok {
		logger.DebugKV(ctx, "Malformed history record skipped", "name", name)
		return alarm.HistoryRecord{}, false
	}

	return record, true
}

// readCount reads a scalar counter. ok is false when the read was absent or
// the value is not a number.
func (s *Session) readCount(ctx context.Context, name, track string) (int, bool) {
	v, err := s.remote.Read(ctx, name)
	if err != nil {
		s.absent(ctx, name, track, err)
		return 0, false
	}

	n, ok := remote.AsInt(v)
	if !ok {
		logger.DebugKV(ctx, "Counter is not a number", "name", name, "value", v)
	}

	return n, ok
}

func (s *Session) absent(ctx context.Context, name, track string, err error) {
	if ctx.Err() != nil {
		return
	}

	s.metrics.ObserveAbsent(track)

	if !errors.Is(err, remote.ErrAbsent) {
		logger.DebugKV(ctx, "Remote read failed", "name", name, "error", err)
		return
	}

	logger.DebugKV(ctx, "Remote value absent", "name", name)
}

func (s *Session) refreshCounters(ctx context.Context) {
	var (
		counts Counts
		group  errgroup.Group
	)

	for name, target := range map[string]*Count{
		remote.CriticalCount:   &counts.Critical,
		remote.WarningCount:    &counts.Warning,
		remote.UnackCount:      &counts.Unacknowledged,
		remote.TotalAlarmCount: &counts.Total,
	} {
		group.Go(func() error {
			target.Value, target.Valid = s.readCount(ctx, name, metrics.TrackCounters)
			return nil
		})
	}

	_ = group.Wait() //nolint:errcheck // Counter reads never fail, absence is kept per counter.

	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.live(ctx) {
		return
	}

	s.counts = counts
	s.renderer.PaintCounters(countersView(counts))
}

func (s *Session) applyActive(ctx context.Context, records []alarm.ActiveAlarm) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.live(ctx) {
		return
	}

	s.active = records
	s.paintActive()
	s.metrics.ObserveActive(len(records), alarm.CountUnacknowledged(records))
}

func (s *Session) applyHistory(ctx context.Context, records []alarm.HistoryRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.live(ctx) {
		return
	}

	s.history = records
	s.paintHistory()
}

// paintActive repaints every active row from the snapshot. Caller holds mu.
func (s *Session) paintActive() {
	shown := min(len(s.active), s.opts.MaxActiveRows)
	s.renderer.ShowNoAlarms(shown == 0)

	for row := 1; row <= s.opts.MaxActiveRows; row++ {
		if row > shown {
			s.renderer.HideActiveRow(row)
			continue
		}

		a := s.active[row-1]
		s.renderer.PaintActiveRow(row, activeRowView(a))
		s.renderer.SetActiveRowOpacity(row, rowOpacity(a.Acknowledged, s.blink))
	}
}

// paintHistory repaints every history row from the snapshot. Caller holds mu.
func (s *Session) paintHistory() {
	shown := min(len(s.history), s.opts.MaxHistoryRows)
	s.renderer.ShowNoHistory(shown == 0)

	for row := 1; row <= s.opts.MaxHistoryRows; row++ {
		if row > shown {
			s.renderer.HideHistoryRow(row)
			continue
		}

		s.renderer.PaintHistoryRow(row, historyRowView(s.history[row-1]))
	}
}
