package maintenance

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/isdelr/tasktrack-be/internal/store"
)

type fakeTasks struct {
	store.Tasks
	sweeps int
	err    error
}

func (f *fakeTasks) DeleteOrphanTasks(context.Context) (int64, error) {
	f.sweeps++
	return 2, f.err
}

type fakeEvents struct {
	store.Events
	cutoffs []time.Time
}

func (f *fakeEvents) PruneEvents(_ context.Context, before time.Time) (int64, error) {
	f.cutoffs = append(f.cutoffs, before)
	return 0, nil
}

func TestNewSchedulerRejectsBadSpecs(t *testing.T) {
	tests := []struct {
		name         string
		sweep, prune string
	}{
		{"bad sweep", "every hour", "@daily"},
		{"bad prune", "@every 1h", "61 * * * *"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewScheduler(&fakeTasks{}, &fakeEvents{}, tt.sweep, tt.prune, time.Hour); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}

func TestRunOnce(t *testing.T) {
	tasks := &fakeTasks{}
	events := &fakeEvents{}
	s, err := NewScheduler(tasks, events, "@every 1h", "@daily", 48*time.Hour)
	if err != nil {
		t.Fatal(err)
	}
	now := time.Date(2026, 6, 10, 12, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return now }

	s.RunOnce()

	if tasks.sweeps != 1 {
		t.Fatalf("sweeps = %d", tasks.sweeps)
	}
	if len(events.cutoffs) != 1 || !events.cutoffs[0].Equal(now.Add(-48*time.Hour)) {
		t.Fatalf("prune cutoffs = %v", events.cutoffs)
	}

	// A failing job does not stop the others.
	tasks.err = errors.New("boom")
	s.RunOnce()
	if tasks.sweeps != 2 || len(events.cutoffs) != 2 {
		t.Fatalf("sweeps=%d prunes=%d", tasks.sweeps, len(events.cutoffs))
	}
}

func TestRunAndStop(t *testing.T) {
	tasks := &fakeTasks{}
	s, err := NewScheduler(tasks, &fakeEvents{}, "@every 1h", "@daily", time.Hour)
	if err != nil {
		t.Fatal(err)
	}

	done := make(chan struct{})
	go func() {
		s.Run()
		close(done)
	}()

	// Stop can race the start of the cron loop; retry until Run returns.
	deadline := time.After(5 * time.Second)
	for {
		s.Stop()
		select {
		case <-done:
			if tasks.sweeps < 1 {
				t.Fatal("jobs did not run on start")
			}
			return
		case <-time.After(50 * time.Millisecond):
		case <-deadline:
			t.Fatal("Run did not return after Stop")
		}
	}
}
