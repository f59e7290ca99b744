package onboarding

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRevealRun_HoldUntil(t *testing.T) {
	tests := []struct {
		name    string
		count   int
		cadence time.Duration
		floor   time.Duration
		want    time.Duration // relative to start
	}{
		{
			name:    "floor dominates a short list",
			count:   3,
			cadence: 10 * time.Millisecond,
			floor:   100 * time.Millisecond,
			want:    100 * time.Millisecond,
		},
		{
			name:    "long list dominates the floor",
			count:   8,
			cadence: 20 * time.Millisecond,
			floor:   50 * time.Millisecond,
			want:    140 * time.Millisecond,
		},
		{
			name:    "single label still holds the floor",
			count:   1,
			cadence: 10 * time.Millisecond,
			floor:   60 * time.Millisecond,
			want:    60 * time.Millisecond,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := startRevealRun(tt.count, tt.cadence, tt.floor, func() {})
			defer r.Stop()
			assert.Equal(t, tt.want, r.HoldUntil().Sub(r.start))
		})
	}
}

func TestRevealRun_AdvancesOncePerCadence(t *testing.T) {
	var mu sync.Mutex
	advances := 0
	r := startRevealRun(4, 10*time.Millisecond, 0, func() {
		mu.Lock()
		advances++
		mu.Unlock()
	})
	defer r.Stop()

	// The first label is visible from the start; three advances remain.
	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return advances == 3
	}, time.Second, time.Millisecond)

	time.Sleep(50 * time.Millisecond)
	mu.Lock()
	final := advances
	mu.Unlock()
	assert.Equal(t, 3, final, "run advanced past its label count")
}

func TestRevealRun_StopCancelsPendingAdvances(t *testing.T) {
	var mu sync.Mutex
	advances := 0
	r := startRevealRun(10, 20*time.Millisecond, 0, func() {
		mu.Lock()
		advances++
		mu.Unlock()
	})

	r.Stop()
	r.Stop() // idempotent

	time.Sleep(60 * time.Millisecond)
	mu.Lock()
	final := advances
	mu.Unlock()
	assert.LessOrEqual(t, final, 1, "advances fired after Stop")
}

func TestGenerationRun_CapsBeforeLastLabel(t *testing.T) {
	var mu sync.Mutex
	advances := 0
	// Five labels: the cursor may only walk to index 3 (second-to-last) on
	// its own, so the run delivers exactly three advances.
	g := startGenerationRun(5, 10*time.Millisecond, 0, func() {
		mu.Lock()
		advances++
		mu.Unlock()
	})
	defer g.Stop()

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return advances == 3
	}, time.Second, time.Millisecond)

	time.Sleep(50 * time.Millisecond)
	mu.Lock()
	final := advances
	mu.Unlock()
	assert.Equal(t, 3, final)
}

func TestGenerationRun_Remaining(t *testing.T) {
	g := startGenerationRun(5, time.Second, 100*time.Millisecond, func() {})
	defer g.Stop()

	// Before the floor elapses there is time left on the clock.
	assert.Positive(t, g.Remaining(g.start.Add(40*time.Millisecond)))
	assert.Equal(t, 60*time.Millisecond, g.Remaining(g.start.Add(40*time.Millisecond)))

	// At and past the floor nothing remains.
	assert.Equal(t, time.Duration(0), g.Remaining(g.start.Add(100*time.Millisecond)))
	assert.Equal(t, time.Duration(0), g.Remaining(g.start.Add(5*time.Second)))
}

func TestGenerationRun_TwoLabelListNeverAdvances(t *testing.T) {
	advanced := make(chan struct{}, 1)
	g := startGenerationRun(2, 5*time.Millisecond, 0, func() {
		select {
		case advanced <- struct{}{}:
		default:
		}
	})
	defer g.Stop()

	select {
	case <-advanced:
		t.Fatal("cursor advanced with nowhere to go")
	case <-time.After(30 * time.Millisecond):
	}
}
