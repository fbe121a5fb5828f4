package sim

import (
	"sort"

	"OilSim/internal/domain/models"
)

// SchedulerTick is what one scheduler advance emits. Both lists are empty on
// most ticks.
type SchedulerTick struct {
	Events    []models.ScheduledEvent
	Headlines []string
}

// EventScheduler sequences scripted impact events and periodic noise
// headlines against a tick counter. Authored event ticks are jittered by
// ±3 ticks at construction so repeated playthroughs of a scenario do not
// fire at identical ticks; tests must tolerate the window instead of
// asserting exact equality.
type EventScheduler struct {
	rng        Rand
	queue      []models.ScheduledEvent
	pools      []models.NoisePool
	tick       int
	totalTicks int
}

// NewEventScheduler clones the scenario's events, applies jitter and
// stable-sorts by tick so events jittered onto the same tick keep their
// authored order.
func NewEventScheduler(sc *models.Scenario, rng Rand) *EventScheduler {
	queue := make([]models.ScheduledEvent, len(sc.Events))
	copy(queue, sc.Events)
	for i := range queue {
		t := queue[i].Tick + rng.Intn(7) - 3
		if t < 1 {
			t = 1
		}
		queue[i].Tick = t
	}
	sort.SliceStable(queue, func(i, j int) bool { return queue[i].Tick < queue[j].Tick })

	return &EventScheduler{
		rng:        rng,
		queue:      queue,
		pools:      sc.NoisePools,
		totalTicks: sc.TotalTicks,
	}
}

// Tick advances the counter and pops every due event in FIFO order, plus one
// random headline from each noise pool whose range and frequency match.
func (s *EventScheduler) Tick() SchedulerTick {
	s.tick++

	var out SchedulerTick
	for len(s.queue) > 0 && s.queue[0].Tick <= s.tick {
		out.Events = append(out.Events, s.queue[0])
		s.queue = s.queue[1:]
	}

	for _, pool := range s.pools {
		if s.tick < pool.From || s.tick > pool.To {
			continue
		}
		if s.tick%pool.Frequency != 0 {
			continue
		}
		out.Headlines = append(out.Headlines, pool.Pool[s.rng.Intn(len(pool.Pool))])
	}

	return out
}

// CurrentTick returns the tick counter.
func (s *EventScheduler) CurrentTick() int { return s.tick }

// IsFinished reports whether the scenario's tick budget is exhausted. Events
// jittered past TotalTicks simply never fire.
func (s *EventScheduler) IsFinished() bool { return s.tick >= s.totalTicks }
