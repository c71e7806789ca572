package simulator

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/oshokin/loadbank-hmi/internal/domain/alarm"
	"github.com/oshokin/loadbank-hmi/internal/logger"
	repo "github.com/oshokin/loadbank-hmi/internal/repository/controller"
	"github.com/oshokin/loadbank-hmi/internal/remote"
)

const (
	// timeLayout is how the controller formats raise and clear times.
	timeLayout = "15:04:05"
	// historyCapacity bounds the history log; the oldest records are dropped first.
	historyCapacity = 100
	// defaultTriggerHold is how long the new-alarm trigger stays high after a raise.
	defaultTriggerHold = time.Second
)

// errNotBool is returned when a command flag is written with a non-boolean value.
var errNotBool = errors.New("command flags accept boolean values only")

// controller is the simulated alarm memory. It implements variables.Store.
type controller struct {
	// repo persists the image after every change.
	repo repo.Repository
	// clock returns the current time.
	clock func() time.Time
	// triggerHold is the width of the new-alarm trigger pulse.
	triggerHold time.Duration

	mu           sync.Mutex
	image        *alarm.ControllerImage
	flags        map[string]bool
	newest       *alarm.ActiveAlarm
	triggerUntil time.Time
}

// newController creates a controller starting from the persisted image, if any.
func newController(ctx context.Context, repository repo.Repository) (*controller, error) {
	c := &controller{
		repo:        repository,
		clock:       time.Now,
		triggerHold: defaultTriggerHold,
		image:       &alarm.ControllerImage{NextID: 1},
		flags:       make(map[string]bool),
	}

	if repository == nil {
		return c, nil
	}

	image, err := repository.Load(ctx)
	switch {
	case err == nil:
		if image != nil {
			c.image = image
			c.image.NextID = max(c.image.NextID, 1)
		}
	case errors.Is(err, repo.ErrNotFound):
		// Start empty.
	default:
		return nil, fmt.Errorf("load controller image: %w", err)
	}

	return c, nil
}

// Read answers one variable read of the display.
func (c *controller) Read(_ context.Context, name string) (any, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if base, index, ok := remote.SplitIndexed(name); ok {
		return c.readIndexed(name, base, index)
	}

	switch name {
	case remote.AlarmListCount, remote.TotalAlarmCount:
		return len(c.image.Active), nil
	case remote.AlarmHistoryCount:
		return len(c.image.History), nil
	case remote.CriticalCount:
		return c.countActive(func(a alarm.ActiveAlarm) bool { return a.Severity.IsCritical() }), nil
	case remote.WarningCount:
		return c.countActive(func(a alarm.ActiveAlarm) bool { return !a.Severity.IsCritical() }), nil
	case remote.UnackCount:
		return c.countActive(func(a alarm.ActiveAlarm) bool { return !a.Acknowledged }), nil
	case remote.NewAlarmTrigger:
		return c.clock().Before(c.triggerUntil), nil
	case remote.NewestAlarmID:
		if c.newest == nil {
			return nil, remote.ErrAbsent
		}

		return c.newest.ID, nil
	case remote.NewestAlarmName:
		if c.newest == nil {
			return nil, remote.ErrAbsent
		}

		return c.newest.Name, nil
	case remote.AlarmAckAll, remote.AlarmClearHistory, remote.ResetCmd:
		return c.flags[name], nil
	default:
		return nil, remote.ErrAbsent
	}
}

func (c *controller) readIndexed(name, base string, index int) (any, error) {
	switch base {
	case remote.AlarmList:
		if index < 1 || index > len(c.image.Active) {
			return nil, remote.ErrAbsent
		}

		return remote.EncodeActiveAlarm(c.image.Active[index-1].ActiveAlarm), nil
	case remote.AlarmHistory:
		if index < 1 || index > len(c.image.History) {
			return nil, remote.ErrAbsent
		}

		return remote.EncodeHistoryRecord(c.image.History[index-1]), nil
	case remote.AlarmAck:
		return c.flags[name], nil
	default:
		return nil, remote.ErrAbsent
	}
}

func (c *controller) countActive(match func(alarm.ActiveAlarm) bool) int {
	n := 0

	for _, raised := range c.image.Active {
		if match(raised.ActiveAlarm) {
			n++
		}
	}

	return n
}

// Write latches a command flag; a false-to-true edge executes the command.
func (c *controller) Write(ctx context.Context, actor *alarm.Actor, name string, value any) error {
	base, id, indexed := remote.SplitIndexed(name)
	if indexed && base != remote.AlarmAck {
		return remote.ErrAbsent
	}

	if !indexed && !isCommand(name) {
		return remote.ErrAbsent
	}

	on, ok := remote.AsBool(value)
	if !ok {
		return fmt.Errorf("%w: %s", errNotBool, name)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	rising := on && !c.flags[name]
	c.flags[name] = on

	if !rising {
		return nil
	}

	ctx = logger.WithFields(ctx, "command", name, "actor", actor.String())

	var changed bool

	switch {
	case indexed:
		changed = c.acknowledge(ctx, id)
	case name == remote.AlarmAckAll:
		changed = c.acknowledgeAll(ctx)
	case name == remote.AlarmClearHistory:
		changed = c.clearHistory(ctx)
	case name == remote.ResetCmd:
		changed = c.reset(ctx)
	}

	if changed {
		c.persist(ctx)
	}

	return nil
}

func isCommand(name string) bool {
	switch name {
	case remote.AlarmAckAll, remote.AlarmClearHistory, remote.ResetCmd:
		return true
	default:
		return false
	}
}

func (c *controller) acknowledge(ctx context.Context, id int) bool {
	for i := range c.image.Active {
		a := &c.image.Active[i]
		if a.ID != id {
			continue
		}

		if a.Acknowledged {
			return false
		}

		a.Acknowledged = true
		logger.InfoKV(ctx, "Alarm acknowledged", "alarm_id", id, "alarm_name", a.Name)

		return true
	}

	logger.WarnKV(ctx, "Acknowledge for unknown alarm ignored", "alarm_id", id)

	return false
}

func (c *controller) acknowledgeAll(ctx context.Context) bool {
	n := 0

	for i := range c.image.Active {
		if !c.image.Active[i].Acknowledged {
			c.image.Active[i].Acknowledged = true
			n++
		}
	}

	logger.InfoKV(ctx, "All alarms acknowledged", "count", n)

	return n > 0
}

func (c *controller) clearHistory(ctx context.Context) bool {
	n := len(c.image.History)
	c.image.History = nil

	logger.InfoKV(ctx, "Alarm history cleared", "count", n)

	return n > 0
}

// reset clears every acknowledged alarm into the history log.
func (c *controller) reset(ctx context.Context) bool {
	now := c.clock()
	kept := c.image.Active[:0]
	cleared := 0

	for _, raised := range c.image.Active {
		if !raised.Acknowledged {
			kept = append(kept, raised)
			continue
		}

		duration := 0
		if !raised.RaisedAt.IsZero() {
			duration = int(now.Sub(raised.RaisedAt).Seconds())
		}

		c.image.History = append(c.image.History, alarm.HistoryRecord{
			OccurredAt:      raised.OccurredAt,
			ClearedAt:       now.Format(timeLayout),
			Name:            raised.Name,
			DurationSeconds: duration,
			WasAcknowledged: true,
			Severity:        raised.Severity,
		})
		cleared++
	}

	c.image.Active = kept

	if overflow := len(c.image.History) - historyCapacity; overflow > 0 {
		c.image.History = c.image.History[overflow:]
	}

	logger.InfoKV(ctx, "System reset", "cleared", cleared, "still_active", len(kept))

	return cleared > 0
}

// Raise adds a new active alarm and pulses the new-alarm trigger.
func (c *controller) Raise(ctx context.Context, severity alarm.Severity, name, description string) alarm.ActiveAlarm {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.clock()
	raised := alarm.RaisedAlarm{
		ActiveAlarm: alarm.ActiveAlarm{
			ID:          c.image.NextID,
			Severity:    severity,
			OccurredAt:  now.Format(timeLayout),
			Name:        name,
			Description: description,
		},
		RaisedAt: now,
	}

	c.image.NextID++
	c.image.Active = append(c.image.Active, raised)
	c.newest = &raised.ActiveAlarm
	c.triggerUntil = now.Add(c.triggerHold)

	logger.InfoKV(ctx, "Alarm raised",
		"alarm_id", raised.ID,
		"alarm_name", name,
		"severity", severity.String())

	c.persist(ctx)

	return raised.ActiveAlarm
}

// Image returns a copy of the current alarm memory.
func (c *controller) Image() *alarm.ControllerImage {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.image.Clone()
}

// persist saves the image. Caller holds mu.
func (c *controller) persist(ctx context.Context) {
	if c.repo == nil {
		return
	}

	if err := c.repo.Save(ctx, c.image); err != nil {
		logger.Errorf(ctx, "Failed to persist controller image: %v", err)
	}
}
