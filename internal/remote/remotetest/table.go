// Package remotetest provides an in-memory remote variable table for tests.
package remotetest

import (
	"context"
	"sync"
	"time"

	"github.com/oshokin/loadbank-hmi/internal/domain/alarm"
	"github.com/oshokin/loadbank-hmi/internal/remote"
)

// WriteCall records one write. Err is set for attempts that failed.
type WriteCall struct {
	Name  string
	Value any
	At    time.Time
	Err   error
}

// Table is a scriptable remote.Access backed by a map.
type Table struct {
	mu         sync.Mutex
	values     map[string]any
	delays     map[string]time.Duration
	gates      map[string]chan struct{}
	writeErrs  map[string]error
	reads      map[string]int
	writes     []WriteCall
	attempts   []WriteCall
	onWriteFns []func(name string, value any)
}

// NewTable returns an empty table.
func NewTable() *Table {
	return &Table{
		values:    make(map[string]any),
		delays:    make(map[string]time.Duration),
		gates:     make(map[string]chan struct{}),
		writeErrs: make(map[string]error),
		reads:     make(map[string]int),
	}
}

// Set stores value under name.
func (t *Table) Set(name string, value any) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.values[name] = value
}

// Delete makes reads of name absent.
func (t *Table) Delete(name string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	delete(t.values, name)
}

// SetActive publishes alarms as the active list, in the given remote order.
func (t *Table) SetActive(alarms ...alarm.ActiveAlarm) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.values[remote.AlarmListCount] = float64(len(alarms))
	for i, a := range alarms {
		t.values[remote.Indexed(remote.AlarmList, i+1)] = remote.EncodeActiveAlarm(a)
	}
}

// SetHistory publishes records as the history log, oldest first.
func (t *Table) SetHistory(records ...alarm.HistoryRecord) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.values[remote.AlarmHistoryCount] = float64(len(records))
	for i, r := range records {
		t.values[remote.Indexed(remote.AlarmHistory, i+1)] = remote.EncodeHistoryRecord(r)
	}
}

// Delay makes every read of name take d.
func (t *Table) Delay(name string, d time.Duration) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.delays[name] = d
}

// Hold blocks reads of name until the returned release func is called.
func (t *Table) Hold(name string) (release func()) {
	gate := make(chan struct{})

	t.mu.Lock()
	t.gates[name] = gate
	t.mu.Unlock()

	var once sync.Once

	return func() {
		once.Do(func() {
			t.mu.Lock()
			delete(t.gates, name)
			t.mu.Unlock()
			close(gate)
		})
	}
}

// FailWrites makes writes of name complete with err. A nil err clears it.
func (t *Table) FailWrites(name string, err error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if err == nil {
		delete(t.writeErrs, name)
		return
	}

	t.writeErrs[name] = err
}

// OnWrite registers a hook called after every successful write.
func (t *Table) OnWrite(fn func(name string, value any)) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.onWriteFns = append(t.onWriteFns, fn)
}

// Reads returns how many reads of name were issued.
func (t *Table) Reads(name string) int {
	t.mu.Lock()
	defer t.mu.Unlock()

	return t.reads[name]
}

// Attempts returns every write issued, failed ones included.
func (t *Table) Attempts() []WriteCall {
	t.mu.Lock()
	defer t.mu.Unlock()

	return append([]WriteCall(nil), t.attempts...)
}

// Writes returns a copy of the log of successful writes.
func (t *Table) Writes() []WriteCall {
	t.mu.Lock()
	defer t.mu.Unlock()

	return append([]WriteCall(nil), t.writes...)
}

// Read implements remote.Reader.
func (t *Table) Read(ctx context.Context, name string) (any, error) {
	t.mu.Lock()
	t.reads[name]++
	delay := t.delays[name]
	gate := t.gates[name]
	t.mu.Unlock()

	if delay > 0 {
		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
	}

	if gate != nil {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-gate:
		}
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	v, ok := t.values[name]
	if !ok || v == nil {
		return nil, remote.ErrAbsent
	}

	return v, nil
}

// Write implements remote.Writer.
func (t *Table) Write(_ context.Context, name string, value any) error {
	t.mu.Lock()

	call := WriteCall{Name: name, Value: value, At: time.Now(), Err: t.writeErrs[name]}
	t.attempts = append(t.attempts, call)

	if call.Err != nil {
		t.mu.Unlock()
		return call.Err
	}

	t.values[name] = value
	t.writes = append(t.writes, call)
	hooks := append([]func(string, any){}, t.onWriteFns...)
	t.mu.Unlock()

	for _, fn := range hooks {
		fn(name, value)
	}

	return nil
}

// Subscribe implements remote.Subscriber by polling the table.
func (t *Table) Subscribe(ctx context.Context, name string, interval time.Duration, onChange func(any)) {
	remote.Poll(ctx, t, name, interval, onChange)
}
