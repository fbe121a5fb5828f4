package sim

import (
	"testing"

	"OilSim/internal/domain/models"
)

func schedScenario(events []models.ScheduledEvent, pools []models.NoisePool) *models.Scenario {
	sc := flatScenario()
	sc.Events = events
	sc.NoisePools = pools
	return sc
}

func TestSchedulerFiresWithinJitterWindow(t *testing.T) {
	sc := schedScenario([]models.ScheduledEvent{
		{Tick: 50, Headline: "supply shock"},
	}, nil)
	s := NewEventScheduler(sc, NewRand(1))

	fired := -1
	for i := 0; i < sc.TotalTicks; i++ {
		if out := s.Tick(); len(out.Events) > 0 {
			fired = s.CurrentTick()
			break
		}
	}
	if fired < 47 || fired > 53 {
		t.Errorf("event fired at tick %d, want within [47, 53]", fired)
	}
}

func TestSchedulerClampsJitterToTickOne(t *testing.T) {
	sc := schedScenario([]models.ScheduledEvent{
		{Tick: 2, Headline: "early"},
	}, nil)
	// Intn(7) = 0 puts the jitter at its -3 extreme, landing before tick 1.
	s := NewEventScheduler(sc, stubRand{n: 0})

	out := s.Tick()
	if len(out.Events) != 1 {
		t.Fatalf("expected clamped event on tick 1, got %d events", len(out.Events))
	}
}

func TestSchedulerKeepsAuthoredOrderOnSameTick(t *testing.T) {
	sc := schedScenario([]models.ScheduledEvent{
		{Tick: 10, Headline: "first"},
		{Tick: 10, Headline: "second"},
	}, nil)
	// Intn(7) = 3 makes the jitter exactly zero for every event.
	s := NewEventScheduler(sc, stubRand{n: 3})

	for i := 0; i < 9; i++ {
		if out := s.Tick(); len(out.Events) != 0 {
			t.Fatalf("event fired early at tick %d", s.CurrentTick())
		}
	}
	out := s.Tick()
	if len(out.Events) != 2 {
		t.Fatalf("got %d events at tick 10, want 2", len(out.Events))
	}
	if out.Events[0].Headline != "first" || out.Events[1].Headline != "second" {
		t.Errorf("order = [%s %s], want authored order", out.Events[0].Headline, out.Events[1].Headline)
	}
}

func TestSchedulerNoisePool(t *testing.T) {
	sc := schedScenario(nil, []models.NoisePool{
		{From: 1, To: 100, Frequency: 10, Pool: []string{"calm seas", "quiet desk"}},
	})
	s := NewEventScheduler(sc, stubRand{n: 1})

	for i := 0; i < 25; i++ {
		out := s.Tick()
		tick := s.CurrentTick()
		if tick%10 == 0 {
			if len(out.Headlines) != 1 || out.Headlines[0] != "quiet desk" {
				t.Fatalf("tick %d: headlines = %v, want [quiet desk]", tick, out.Headlines)
			}
		} else if len(out.Headlines) != 0 {
			t.Fatalf("tick %d: unexpected headlines %v", tick, out.Headlines)
		}
	}
}

func TestSchedulerNoisePoolRespectsRange(t *testing.T) {
	sc := schedScenario(nil, []models.NoisePool{
		{From: 30, To: 40, Frequency: 10, Pool: []string{"x"}},
	})
	s := NewEventScheduler(sc, stubRand{})

	var fired []int
	for i := 0; i < 60; i++ {
		if out := s.Tick(); len(out.Headlines) > 0 {
			fired = append(fired, s.CurrentTick())
		}
	}
	if len(fired) != 2 || fired[0] != 30 || fired[1] != 40 {
		t.Errorf("headlines at %v, want [30 40]", fired)
	}
}

func TestSchedulerFinished(t *testing.T) {
	sc := schedScenario(nil, nil)
	sc.TotalTicks = 5
	s := NewEventScheduler(sc, stubRand{})

	for i := 0; i < 4; i++ {
		s.Tick()
		if s.IsFinished() {
			t.Fatalf("finished after %d ticks, want 5", i+1)
		}
	}
	s.Tick()
	if !s.IsFinished() {
		t.Error("not finished after 5 of 5 ticks")
	}
}
