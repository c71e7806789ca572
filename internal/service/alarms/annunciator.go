package alarms

import (
	"context"

	"github.com/oshokin/loadbank-hmi/internal/logger"
	"github.com/oshokin/loadbank-hmi/internal/remote"
)

// triggerHandler announces the newest alarm on every rising edge of the
// controller's new-alarm trigger. The first delivered value is the baseline.
func (s *Session) triggerHandler(ctx context.Context) func(any) {
	var (
		last     bool
		baseline bool
	)

	return func(v any) {
		on, _ := remote.AsBool(v)
		rising := baseline && on && !last
		last, baseline = on, true

		if !rising {
			return
		}

		s.announce(ctx)
	}
}

func (s *Session) announce(ctx context.Context) {
	var announcement Announcement

	if v, err := s.remote.Read(ctx, remote.NewestAlarmID); err == nil {
		announcement.AlarmID, _ = remote.AsInt(v)
	}

	if v, err := s.remote.Read(ctx, remote.NewestAlarmName); err == nil {
		announcement.Name = remote.AsString(v)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.live(ctx) {
		return
	}

	s.announcement = &announcement
	s.metrics.ObserveNewAlarm()
	s.renderer.AnnounceNewAlarm(announcement)

	logger.InfoKV(ctx, "New alarm raised",
		"alarm_id", announcement.AlarmID,
		"alarm_name", announcement.Name)
}
