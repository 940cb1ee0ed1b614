package world

// Timer accumulates elapsed seconds against a fixed threshold. It fires on
// the first Advance whose total strictly exceeds the duration, so a wait can
// complete up to one tick late, never early.
type Timer struct {
	Elapsed  float64
	Duration float64
	running  bool
}

// Start (re)arms the timer. Any previous progress is discarded.
func (t *Timer) Start(duration float64) {
	if duration < 0 {
		panic("world: negative timer duration")
	}
	t.Elapsed = 0
	t.Duration = duration
	t.running = true
}

// Stop disarms the timer without firing.
func (t *Timer) Stop() { t.running = false }

func (t *Timer) Running() bool { return t.running }

// Advance adds dt and reports whether the timer fired on this call. A fired
// timer stays disarmed until the next Start.
func (t *Timer) Advance(dt float64) bool {
	if dt < 0 {
		panic("world: negative dt")
	}
	if !t.running {
		return false
	}
	t.Elapsed += dt
	if t.Elapsed > t.Duration {
		t.running = false
		return true
	}
	return false
}

// Progress is elapsed/duration clamped to [0, 1].
func (t *Timer) Progress() float64 {
	if t.Duration <= 0 {
		return 1
	}
	p := t.Elapsed / t.Duration
	if p > 1 {
		return 1
	}
	return p
}
