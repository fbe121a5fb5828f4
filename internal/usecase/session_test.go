package usecase

import (
	"context"
	"testing"
	"time"

	"OilSim/internal/domain/models"
	"OilSim/internal/scenario"
	"OilSim/pkg/logger"
)

// stubRand keeps the price path flat: Float64()=0 makes the normal draw
// exactly zero, Intn(7)=3 pins the event jitter at zero.
type stubRand struct{}

func (stubRand) Float64() float64 { return 0 }
func (stubRand) Intn(m int) int   { return 3 % m }

func quietScenario() *models.Scenario {
	return &models.Scenario{
		Name:           "quiet",
		StartPrice:     100,
		MinPrice:       1,
		MaxPrice:       10000,
		TotalTicks:     20,
		TicksPerDay:    390,
		TicksPerCandle: 5,
		Spread:         0.04,
		LotSize:        1000,
		VarLimit:       250000,
		DailyVolPct:    0.02,
		Events: []models.ScheduledEvent{
			{
				Tick:     5,
				Category: "supply",
				Headline: "Export terminal shut by storm",
				Impact: models.EventImpact{
					Direction:       models.DirectionUp,
					ImmediatePct:    0.05,
					DriftDecayTicks: 1,
				},
			},
		},
	}
}

func newQuietSession(t *testing.T) *Session {
	t.Helper()
	s, err := NewSession("abc123", "dana", quietScenario(), stubRand{})
	if err != nil {
		t.Fatalf("NewSession: %v", err)
	}
	return s
}

func TestSessionEventMovesPriceAndLogsNews(t *testing.T) {
	s := newQuietSession(t)

	for i := 0; i < 5; i++ {
		s.Advance()
	}

	st := s.State()
	if st.Quote.Price != 105.00 {
		t.Fatalf("price after event = %.2f, want 105.00", st.Quote.Price)
	}
	if len(st.News) != 1 || !st.News[0].Impactful || st.News[0].Tick != 5 {
		t.Fatalf("news log = %+v, want one impactful item at tick 5", st.News)
	}
}

func TestSessionTradeMarksAgainstEventMove(t *testing.T) {
	s := newQuietSession(t)

	s.Advance()
	resp, err := s.Trade(&models.TradeRequest{Side: models.SideBuy, Lots: 10})
	if err != nil {
		t.Fatalf("Trade: %v", err)
	}
	if !resp.Executed {
		t.Fatalf("trade rejected: %s", resp.Reason)
	}

	for i := 0; i < 4; i++ {
		s.Advance()
	}

	st := s.State()
	// Bought 10 lots at the 100.02 ask; the event lifted the price to 105.
	want := 10 * 1000 * (105.00 - 100.02)
	if st.Position.UnrealizedPnL != want {
		t.Errorf("unrealized = %.2f, want %.2f", st.Position.UnrealizedPnL, want)
	}
}

func TestSessionFinishesWhenTicksRunOut(t *testing.T) {
	s := newQuietSession(t)

	advances := 0
	for s.Advance() {
		advances++
		if advances > 100 {
			t.Fatal("session never finished")
		}
	}

	if !s.Finished() {
		t.Fatal("session not marked finished")
	}
	r := s.Result()
	if r == nil {
		t.Fatal("no result after natural finish")
	}
	if r.Report.Grade == "" || r.SessionID != "abc123" || r.Player != "dana" {
		t.Errorf("result = %+v", r)
	}
}

func TestSessionFinishIsIdempotent(t *testing.T) {
	s := newQuietSession(t)
	s.Advance()

	a := s.Finish()
	b := s.Finish()
	if a != b {
		t.Error("Finish returned different results on repeat call")
	}

	if _, err := s.Trade(&models.TradeRequest{Side: models.SideBuy, Lots: 1}); err == nil {
		t.Error("trade accepted on finished session")
	}
}

func TestSessionSubscriberGetsFramesAndClose(t *testing.T) {
	s := newQuietSession(t)
	ch := s.Subscribe()

	var frames []models.TickFrame
	done := make(chan struct{})
	go func() {
		for f := range ch {
			frames = append(frames, f)
		}
		close(done)
	}()

	for s.Advance() {
	}
	<-done

	if len(frames) == 0 {
		t.Fatal("subscriber got no frames")
	}
	first := frames[0]
	if first.Tick != 1 || first.Price != 100 {
		t.Errorf("first frame = %+v, want tick 1 at 100.00", first)
	}
}

func TestSessionFlatten(t *testing.T) {
	s := newQuietSession(t)
	s.Advance()
	if _, err := s.Trade(&models.TradeRequest{Side: models.SideBuy, Lots: 10}); err != nil {
		t.Fatal(err)
	}

	snap, err := s.Flatten()
	if err != nil {
		t.Fatalf("Flatten: %v", err)
	}
	if snap.NetLots != 0 {
		t.Errorf("net lots after flatten = %d, want 0", snap.NetLots)
	}
}

// --- manager ---

type nopMetrics struct{}

func (nopMetrics) RecordSessionStarted(string)       {}
func (nopMetrics) RecordSessionFinished(string, int) {}
func (nopMetrics) RecordTick(string)                 {}
func (nopMetrics) RecordTrade(string, bool)          {}
func (nopMetrics) RecordLastPrice(string, float64)   {}
func (nopMetrics) RecordError(string)                {}
func (nopMetrics) RecordLatency(string, float64)     {}

func newTestManager(t *testing.T) *SessionManager {
	t.Helper()
	lib, err := scenario.Load("")
	if err != nil {
		t.Fatalf("scenario.Load: %v", err)
	}
	log, err := logger.New(&logger.Config{Level: "error", Format: "json", Output: "stderr"})
	if err != nil {
		t.Fatalf("logger.New: %v", err)
	}
	proc := NewResultProcessor(nil, nil, nopMetrics{}, "none")
	return NewSessionManager(lib, proc, nil, nopMetrics{}, log, 50*time.Millisecond, 4, time.Hour)
}

func TestManagerCreateAndFinish(t *testing.T) {
	m := newTestManager(t)
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = m.Shutdown(ctx)
	}()

	s, err := m.Create(&models.CreateSessionRequest{Scenario: "first-week", Player: "dana", Seed: 7})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	got, err := m.Get(s.ID())
	if err != nil || got != s {
		t.Fatalf("Get(%s) = %v, %v", s.ID(), got, err)
	}

	r, err := m.Finish(s.ID())
	if err != nil {
		t.Fatalf("Finish: %v", err)
	}
	if r.Scenario != "first-week" || r.Player != "dana" {
		t.Errorf("result = %+v", r)
	}

	// Finishing again returns the same stored result.
	r2, err := m.Finish(s.ID())
	if err != nil || r2.SessionID != r.SessionID {
		t.Errorf("second finish: %+v, %v", r2, err)
	}
}

func TestManagerRejectsUnknownScenario(t *testing.T) {
	m := newTestManager(t)
	if _, err := m.Create(&models.CreateSessionRequest{Scenario: "nope"}); err == nil {
		t.Error("expected error for unknown scenario")
	}
}

func TestManagerSessionLimit(t *testing.T) {
	m := newTestManager(t)
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = m.Shutdown(ctx)
	}()

	for i := 0; i < 4; i++ {
		if _, err := m.Create(&models.CreateSessionRequest{Scenario: "first-week"}); err != nil {
			t.Fatalf("create %d: %v", i, err)
		}
	}
	if _, err := m.Create(&models.CreateSessionRequest{Scenario: "first-week"}); err == nil {
		t.Error("expected session limit error")
	}
}

func TestManagerEvictsExpiredSessions(t *testing.T) {
	m := newTestManager(t)
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = m.Shutdown(ctx)
	}()

	s, err := m.Create(&models.CreateSessionRequest{Scenario: "first-week"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := m.Finish(s.ID()); err != nil {
		t.Fatalf("Finish: %v", err)
	}

	// Still retrievable within the TTL.
	m.mu.Lock()
	m.evictExpiredLocked(time.Now())
	m.mu.Unlock()
	if _, err := m.Get(s.ID()); err != nil {
		t.Fatalf("finished session evicted before TTL: %v", err)
	}

	m.mu.Lock()
	m.evictExpiredLocked(time.Now().Add(2 * time.Hour))
	m.mu.Unlock()
	if _, err := m.Get(s.ID()); err == nil {
		t.Error("expected session to be evicted after TTL")
	}
}

func TestManagerTopWithoutLeaderboard(t *testing.T) {
	m := newTestManager(t)
	entries, err := m.Top(context.Background(), 10)
	if err != nil {
		t.Fatalf("Top: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("entries = %v, want empty", entries)
	}
}
