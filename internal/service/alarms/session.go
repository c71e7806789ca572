package alarms

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/oshokin/loadbank-hmi/internal/config"
	"github.com/oshokin/loadbank-hmi/internal/domain/alarm"
	"github.com/oshokin/loadbank-hmi/internal/logger"
	"github.com/oshokin/loadbank-hmi/internal/observability/metrics"
	"github.com/oshokin/loadbank-hmi/internal/remote"
)

var (
	// ErrUnknownAlarm is returned when an acknowledge names an alarm missing from the snapshot.
	ErrUnknownAlarm = errors.New("alarm is not in the active list")
	// ErrAlreadyAcknowledged is returned when the alarm is already acknowledged.
	ErrAlreadyAcknowledged = errors.New("alarm is already acknowledged")
	// ErrRowEmpty is returned when a row number does not show an alarm.
	ErrRowEmpty = errors.New("row does not show an alarm")
	// ErrSessionClosed is returned after the session was torn down.
	ErrSessionClosed = errors.New("session is closed")
	// ErrDialogClosed is returned when clear-history is confirmed without an open confirmation.
	ErrDialogClosed = errors.New("clear-history confirmation is not open")
	// errAlreadyRunning is returned when Run is called twice.
	errAlreadyRunning = errors.New("session is already running")
)

// Options tunes the cadences, pulse widths and row capacities of a session.
type Options struct {
	PollInterval    time.Duration
	BlinkInterval   time.Duration
	TriggerInterval time.Duration
	AckHold         time.Duration
	ResetHold       time.Duration
	MaxActiveRows   int
	MaxHistoryRows  int
}

// OptionsFromConfig copies the session settings out of a validated config.
func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		PollInterval:    cfg.PollInterval,
		BlinkInterval:   cfg.BlinkInterval,
		TriggerInterval: cfg.TriggerInterval,
		AckHold:         cfg.AckHold,
		ResetHold:       cfg.ResetHold,
		MaxActiveRows:   cfg.MaxActiveRows,
		MaxHistoryRows:  cfg.MaxHistoryRows,
	}
}

func (o *Options) normalize() {
	setDuration := func(d *time.Duration, fallback time.Duration) {
		if *d <= 0 {
			*d = fallback
		}
	}

	setDuration(&o.PollInterval, config.DefaultPollInterval)
	setDuration(&o.BlinkInterval, config.DefaultBlinkInterval)
	setDuration(&o.TriggerInterval, config.DefaultTriggerInterval)
	setDuration(&o.AckHold, config.DefaultAckHold)
	setDuration(&o.ResetHold, config.DefaultResetHold)

	if o.MaxActiveRows <= 0 {
		o.MaxActiveRows = config.DefaultMaxActiveRows
	}

	if o.MaxHistoryRows <= 0 {
		o.MaxHistoryRows = config.DefaultMaxHistoryRows
	}
}

// SessionOption customizes a Session.
type SessionOption func(*Session)

// WithMetrics records poll and command activity into m.
func WithMetrics(m *metrics.Metrics) SessionOption {
	return func(s *Session) {
		s.metrics = m
	}
}

// WithSessionID overrides the generated session id.
func WithSessionID(id string) SessionOption {
	return func(s *Session) {
		s.id = id
	}
}

// Snapshot is a copy of the session state.
type Snapshot struct {
	SessionID    string
	Tab          alarm.Tab
	Active       []alarm.ActiveAlarm
	History      []alarm.HistoryRecord
	Counts       Counts
	Blink        bool
	ClearDialog  bool
	Announcement *Announcement
}

// Session owns the alarm page state between page entry and page exit.
type Session struct {
	id       string
	opts     Options
	remote   remote.Access
	renderer Renderer
	metrics  *metrics.Metrics

	wg sync.WaitGroup

	mu           sync.Mutex
	started      bool
	closed       bool
	tab          alarm.Tab
	active       []alarm.ActiveAlarm
	history      []alarm.HistoryRecord
	counts       Counts
	blink        bool
	clearDialog  bool
	announcement *Announcement
}

// NewSession creates a session reading from access and painting into renderer.
func NewSession(access remote.Access, renderer Renderer, opts Options, options ...SessionOption) *Session {
	opts.normalize()

	s := &Session{
		id:       uuid.NewString(),
		opts:     opts,
		remote:   access,
		renderer: renderer,
		tab:      alarm.TabActive,
	}

	for _, opt := range options {
		opt(s)
	}

	return s
}

// ID returns the session id.
func (s *Session) ID() string {
	return s.id
}

// Run paints the initial panel and drives polling, blinking and the new-alarm
// trigger until ctx is done. It returns once every task the session spawned
// has finished, so nothing touches the renderer afterwards.
func (s *Session) Run(ctx context.Context) error {
	s.mu.Lock()

	if s.closed {
		s.mu.Unlock()
		return ErrSessionClosed
	}

	if s.started {
		s.mu.Unlock()
		return errAlreadyRunning
	}

	s.started = true
	s.paintInitial()
	s.mu.Unlock()

	ctx = logger.WithFields(logger.WithName(ctx, "alarms"), "session_id", s.id)
	logger.InfoKV(ctx, "Alarm session started",
		"poll_interval", s.opts.PollInterval,
		"blink_interval", s.opts.BlinkInterval)

	s.spawn(func() { s.every(ctx, s.opts.PollInterval, true, s.poll) })
	s.spawn(func() { s.every(ctx, s.opts.BlinkInterval, false, s.toggleBlink) })
	s.spawn(func() {
		s.remote.Subscribe(ctx, remote.NewAlarmTrigger, s.opts.TriggerInterval, s.triggerHandler(ctx))
	})

	<-ctx.Done()

	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()

	s.wg.Wait()

	logger.InfoKV(ctx, "Alarm session stopped")

	return nil
}

// Tab returns the selected tab.
func (s *Session) Tab() alarm.Tab {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.tab
}

// SelectTab switches the visible panel. Snapshots are kept across switches.
func (s *Session) SelectTab(tab alarm.Tab) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrSessionClosed
	}

	s.tab = tab
	s.renderer.SelectTab(tab)

	return nil
}

// Snapshot returns a copy of the current state.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := Snapshot{
		SessionID:   s.id,
		Tab:         s.tab,
		Active:      append([]alarm.ActiveAlarm(nil), s.active...),
		History:     append([]alarm.HistoryRecord(nil), s.history...),
		Counts:      s.counts,
		Blink:       s.blink,
		ClearDialog: s.clearDialog,
	}

	if s.announcement != nil {
		a := *s.announcement
		snap.Announcement = &a
	}

	return snap
}

// spawn runs fn on a tracked goroutine unless the session is closed.
func (s *Session) spawn(fn func()) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return false
	}

	s.wg.Add(1)

	go func() {
		defer s.wg.Done()

		fn()
	}()

	return true
}

// every calls fn on each tick of interval until ctx is done.
func (s *Session) every(ctx context.Context, interval time.Duration, immediately bool, fn func(context.Context)) {
	if immediately {
		fn(ctx)
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			fn(ctx)
		}
	}
}

// live reports whether results may still be applied. Caller holds mu.
func (s *Session) live(ctx context.Context) bool {
	return !s.closed && ctx.Err() == nil
}

// paintInitial shows the empty panel. Caller holds mu.
func (s *Session) paintInitial() {
	s.renderer.SelectTab(s.tab)
	s.paintActive()
	s.paintHistory()
	s.renderer.PaintCounters(countersView(s.counts))
	s.renderer.ShowClearDialog(false)
}
