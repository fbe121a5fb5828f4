package usecase

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"sync"
	"time"

	"OilSim/internal/domain/models"
	drepo "OilSim/internal/domain/repository"
	"OilSim/internal/scenario"
	"OilSim/internal/sim"
	"OilSim/pkg/logger"
)

// SessionManager owns the live session table and the per-session tick loops.
// One goroutine per session advances the simulation on a fixed interval; a
// finished session is scored, pushed through the result processor and recorded
// on the leaderboard exactly once.
type SessionManager struct {
	mu       sync.Mutex
	sessions map[string]*Session
	stops    map[string]chan struct{}
	done     map[string]bool

	library      *scenario.Library
	processor    *ResultProcessor
	leaderboard  drepo.Leaderboard
	metrics      drepo.Metrics
	log          *logger.Logger
	tickInterval time.Duration
	maxSessions  int
	sessionTTL   time.Duration

	wg sync.WaitGroup
}

// NewSessionManager creates the manager. leaderboard may be nil when Redis is
// not configured.
func NewSessionManager(
	library *scenario.Library,
	processor *ResultProcessor,
	leaderboard drepo.Leaderboard,
	metrics drepo.Metrics,
	log *logger.Logger,
	tickInterval time.Duration,
	maxSessions int,
	sessionTTL time.Duration,
) *SessionManager {
	return &SessionManager{
		sessions:     make(map[string]*Session),
		stops:        make(map[string]chan struct{}),
		done:         make(map[string]bool),
		library:      library,
		processor:    processor,
		leaderboard:  leaderboard,
		metrics:      metrics,
		log:          log,
		tickInterval: tickInterval,
		maxSessions:  maxSessions,
		sessionTTL:   sessionTTL,
	}
}

// Create starts a new session and its tick loop.
func (m *SessionManager) Create(req *models.CreateSessionRequest) (*Session, error) {
	sc, ok := m.library.Get(req.Scenario)
	if !ok {
		return nil, fmt.Errorf("unknown scenario: %s", req.Scenario)
	}

	player := req.Player
	if player == "" {
		player = "anonymous"
	}

	id, err := newSessionID()
	if err != nil {
		return nil, fmt.Errorf("session id: %w", err)
	}

	s, err := NewSession(id, player, sc, sim.NewRand(req.Seed))
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	m.evictExpiredLocked(time.Now())
	if m.maxSessions > 0 && len(m.sessions) >= m.maxSessions {
		m.mu.Unlock()
		return nil, fmt.Errorf("session limit reached (%d)", m.maxSessions)
	}
	stop := make(chan struct{})
	m.sessions[id] = s
	m.stops[id] = stop
	m.mu.Unlock()

	m.metrics.RecordSessionStarted(sc.Name)
	m.log.Info("session started",
		logger.String("session", id),
		logger.String("player", player),
		logger.String("scenario", sc.Name),
	)

	m.wg.Add(1)
	go m.run(s, stop)

	return s, nil
}

// run is the per-session tick loop.
func (m *SessionManager) run(s *Session, stop chan struct{}) {
	defer m.wg.Done()

	ticker := time.NewTicker(m.tickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			alive := s.Advance()
			m.metrics.RecordTick(s.Scenario())
			m.metrics.RecordLastPrice(s.Scenario(), s.LastPrice())
			if !alive {
				m.finalize(s)
				return
			}
		}
	}
}

// finalize handles the one-time post-session work. The tick loop and an
// early Finish can both reach it; the done guard keeps it single-shot.
func (m *SessionManager) finalize(s *Session) {
	m.mu.Lock()
	if m.done[s.ID()] {
		m.mu.Unlock()
		return
	}
	m.done[s.ID()] = true
	m.mu.Unlock()

	r := s.Result()
	if r == nil {
		return
	}

	m.metrics.RecordSessionFinished(r.Scenario, r.Report.CompositeScore)
	m.log.Info("session finished",
		logger.String("session", r.SessionID),
		logger.String("player", r.Player),
		logger.Int("composite", r.Report.CompositeScore),
		logger.String("grade", r.Report.Grade),
		logger.Float64("total_pnl", r.Report.TotalPnL),
	)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := m.processor.Process(ctx, r); err != nil {
		m.log.Error("result processing failed", logger.Error(err), logger.String("session", r.SessionID))
	}
	if m.leaderboard != nil {
		if err := m.leaderboard.Record(ctx, r.Player, float64(r.Report.CompositeScore)); err != nil {
			m.log.Warn("leaderboard record failed", logger.Error(err))
			m.metrics.RecordError("leaderboard")
		}
	}
}

// Get returns a live or finished session.
func (m *SessionManager) Get(id string) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.sessions[id]
	if !ok {
		return nil, fmt.Errorf("unknown session: %s", id)
	}
	return s, nil
}

// Trade forwards a trade intent to a session and records the outcome.
func (m *SessionManager) Trade(id string, req *models.TradeRequest) (*models.TradeResponse, error) {
	s, err := m.Get(id)
	if err != nil {
		return nil, err
	}
	resp, err := s.Trade(req)
	if err != nil {
		return nil, err
	}
	m.metrics.RecordTrade(s.Scenario(), resp.Executed)
	return resp, nil
}

// Flatten closes a session's open position.
func (m *SessionManager) Flatten(id string) (*models.PositionSnapshot, error) {
	s, err := m.Get(id)
	if err != nil {
		return nil, err
	}
	return s.Flatten()
}

// Finish ends a session early: its tick loop stops and the result is
// processed as if the scenario had run out.
func (m *SessionManager) Finish(id string) (*models.SessionResult, error) {
	s, err := m.Get(id)
	if err != nil {
		return nil, err
	}

	r := s.Finish()

	m.mu.Lock()
	if stop, ok := m.stops[id]; ok {
		close(stop)
		delete(m.stops, id)
	}
	m.mu.Unlock()

	m.finalize(s)
	return r, nil
}

// evictExpiredLocked drops finished sessions whose results are older than the
// session TTL. Live sessions are never evicted. Caller holds m.mu.
func (m *SessionManager) evictExpiredLocked(now time.Time) {
	if m.sessionTTL <= 0 {
		return
	}
	deadline := now.Add(-m.sessionTTL).Unix()
	for id, s := range m.sessions {
		r := s.Result()
		if r == nil || r.FinishedAt > deadline {
			continue
		}
		delete(m.sessions, id)
		delete(m.done, id)
		if stop, ok := m.stops[id]; ok {
			close(stop)
			delete(m.stops, id)
		}
	}
}

// Scenarios lists the loadable scenario names.
func (m *SessionManager) Scenarios() []string {
	return m.library.Names()
}

// ScenarioInfo returns a scenario definition by name.
func (m *SessionManager) ScenarioInfo(name string) (*models.Scenario, bool) {
	return m.library.Get(name)
}

// Top returns the leaderboard, or an empty slice when Redis is not wired.
func (m *SessionManager) Top(ctx context.Context, n int) ([]models.LeaderboardEntry, error) {
	if m.leaderboard == nil {
		return []models.LeaderboardEntry{}, nil
	}
	return m.leaderboard.Top(ctx, n)
}

// Shutdown stops every tick loop and waits for them to drain.
func (m *SessionManager) Shutdown(ctx context.Context) error {
	m.mu.Lock()
	for id, stop := range m.stops {
		close(stop)
		delete(m.stops, id)
	}
	m.mu.Unlock()

	done := make(chan struct{})
	go func() {
		m.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("session manager shutdown: %w", ctx.Err())
	}
}

func newSessionID() (string, error) {
	b := make([]byte, 8)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
