package alarms

import "context"

// toggleBlink flips the shared blink phase and revisits every shown row.
func (s *Session) toggleBlink(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.live(ctx) {
		return
	}

	s.blink = !s.blink

	for i := range min(len(s.active), s.opts.MaxActiveRows) {
		s.renderer.SetActiveRowOpacity(i+1, rowOpacity(s.active[i].Acknowledged, s.blink))
	}
}
