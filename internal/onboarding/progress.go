package onboarding

import (
	"sync"
	"time"
)

// revealRun staggers a list of short status messages during the analyzing
// phase: the first message shows immediately, the rest appear one per cadence.
// HoldUntil pads the phase so the combined reveal never finishes before the
// floor, even when the list is short.
type revealRun struct {
	start    time.Time
	stop     chan struct{}
	advance  func()
	cadence  time.Duration
	floor    time.Duration
	count    int
	stopOnce sync.Once
}

func startRevealRun(count int, cadence, floor time.Duration, advance func()) *revealRun {
	r := &revealRun{
		start:   time.Now(),
		cadence: cadence,
		floor:   floor,
		count:   count,
		advance: advance,
		stop:    make(chan struct{}),
	}
	go r.run()
	return r
}

func (r *revealRun) run() {
	ticker := time.NewTicker(r.cadence)
	defer ticker.Stop()

	// The first item is visible from the start, so count-1 ticks remain.
	for i := 1; i < r.count; i++ {
		select {
		case <-r.stop:
			return
		case <-ticker.C:
			r.advance()
		}
	}
}

// Stop cancels the run; no advance callback fires afterward for ticks that
// have not been delivered yet.
func (r *revealRun) Stop() {
	r.stopOnce.Do(func() {
		close(r.stop)
	})
}

// HoldUntil returns when the owning phase may end: after every item has had
// its slot on screen and at least the floor has elapsed.
func (r *revealRun) HoldUntil() time.Time {
	total := r.cadence * time.Duration(r.count-1)
	if total < r.floor {
		total = r.floor
	}
	return r.start.Add(total)
}

// generationRun paces the generating phase: a cursor walks a fixed label list
// one step per cadence, capped at the second-to-last label until the network
// call resolves. The floor is enforced by the machine via Remaining.
type generationRun struct {
	start    time.Time
	stop     chan struct{}
	advance  func()
	cadence  time.Duration
	floor    time.Duration
	steps    int
	stopOnce sync.Once
}

func startGenerationRun(labelCount int, cadence, floor time.Duration, advance func()) *generationRun {
	g := &generationRun{
		start:   time.Now(),
		cadence: cadence,
		floor:   floor,
		steps:   labelCount - 2, // cursor starts at 0 and caps at second-to-last
		advance: advance,
		stop:    make(chan struct{}),
	}
	go g.run()
	return g
}

func (g *generationRun) run() {
	if g.steps <= 0 {
		return
	}

	ticker := time.NewTicker(g.cadence)
	defer ticker.Stop()

	for i := 0; i < g.steps; i++ {
		select {
		case <-g.stop:
			return
		case <-ticker.C:
			g.advance()
		}
	}
}

// Stop cancels the run.
func (g *generationRun) Stop() {
	g.stopOnce.Do(func() {
		close(g.stop)
	})
}

// Remaining reports how much of the minimum on-screen duration is left. A
// fast backend waits this long before the reveal transition; a slow one waits
// zero.
func (g *generationRun) Remaining(now time.Time) time.Duration {
	elapsed := now.Sub(g.start)
	if elapsed >= g.floor {
		return 0
	}
	return g.floor - elapsed
}
