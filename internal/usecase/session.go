package usecase

import (
	"fmt"
	"sync"
	"time"

	"OilSim/internal/domain/models"
	"OilSim/internal/scoring"
	"OilSim/internal/sim"
)

// Session bundles one player's simulation run: price process, event
// scheduler, optional crack engine, position ledger and news log. All methods
// are safe for concurrent use; the tick loop and HTTP handlers race freely.
type Session struct {
	mu sync.Mutex

	id       string
	player   string
	scenario *models.Scenario

	price  *sim.PriceProcess
	sched  *sim.EventScheduler
	crack  *sim.CrackEngine
	ledger *sim.PositionLedger

	news     []models.NewsItem
	finished bool
	result   *models.SessionResult

	subs map[chan models.TickFrame]struct{}

	createdAt time.Time
}

// NewSession builds a fresh, independent session. Nothing is shared between
// sessions: each gets its own randomness source and simulation state.
func NewSession(id, player string, sc *models.Scenario, rng sim.Rand) (*Session, error) {
	price, err := sim.NewPriceProcess(sc, rng)
	if err != nil {
		return nil, fmt.Errorf("session %s: %w", id, err)
	}
	ledger, err := sim.NewPositionLedger(sc)
	if err != nil {
		return nil, fmt.Errorf("session %s: %w", id, err)
	}

	var crack *sim.CrackEngine
	if sc.Crack != nil {
		crack, err = sim.NewCrackEngine(sc.Crack, rng)
		if err != nil {
			return nil, fmt.Errorf("session %s: %w", id, err)
		}
	}

	return &Session{
		id:        id,
		player:    player,
		scenario:  sc,
		price:     price,
		sched:     sim.NewEventScheduler(sc, rng),
		crack:     crack,
		ledger:    ledger,
		subs:      make(map[chan models.TickFrame]struct{}),
		createdAt: time.Now(),
	}, nil
}

// ID returns the session identifier.
func (s *Session) ID() string { return s.id }

// Player returns the player name.
func (s *Session) Player() string { return s.player }

// Scenario returns the scenario name.
func (s *Session) Scenario() string { return s.scenario.Name }

// Advance moves the simulation one tick: due events fire, the price process
// steps, the ledger is revalued, and subscribers get a frame. Returns false
// once the session is finished.
func (s *Session) Advance() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.finished {
		return false
	}

	out := s.sched.Tick()
	tick := s.sched.CurrentTick()

	var headlines []string
	for _, ev := range out.Events {
		s.price.ApplyEvent(ev.Impact)
		if s.crack != nil && ev.CrackImpact != nil {
			s.crack.ApplyEvent(*ev.CrackImpact)
		}
		s.news = append(s.news, models.NewsItem{
			Tick:      tick,
			Category:  ev.Category,
			Headline:  ev.Headline,
			Detail:    ev.Detail,
			Direction: ev.Impact.Direction,
			Impactful: true,
		})
		headlines = append(headlines, ev.Headline)
	}
	for _, h := range out.Headlines {
		s.news = append(s.news, models.NewsItem{Tick: tick, Headline: h})
		headlines = append(headlines, h)
	}

	res := s.price.Tick()
	s.ledger.MarkToMarket(res.Quote.Price)
	if s.crack != nil {
		s.crack.Tick()
	}

	last := s.sched.IsFinished()

	frame := models.TickFrame{
		Tick:      res.Quote.Tick,
		Price:     res.Quote.Price,
		Bid:       res.Quote.Bid,
		Ask:       res.Quote.Ask,
		Candle:    res.NewCandle,
		Headlines: headlines,
		Finished:  last,
	}
	for ch := range s.subs {
		select {
		case ch <- frame:
		default: // slow subscriber, drop the frame
		}
	}

	// Finish after the fan-out so subscribers see the final frame before
	// their channels close.
	if last {
		s.finishLocked()
	}

	return !last
}

// Trade fills one buy/sell intent at the current quote. A VaR rejection comes
// back as executed=false, not as an error.
func (s *Session) Trade(req *models.TradeRequest) (*models.TradeResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.finished {
		return nil, fmt.Errorf("session %s is finished", s.id)
	}

	executed := s.ledger.ExecuteTrade(req.Side, req.Lots, s.price.Quote())
	resp := &models.TradeResponse{
		Executed: executed,
		Position: s.ledger.Snapshot(),
	}
	if !executed {
		resp.Reason = "var limit exceeded"
	}
	return resp, nil
}

// Flatten closes the whole open position at the current quote.
func (s *Session) Flatten() (*models.PositionSnapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.finished {
		return nil, fmt.Errorf("session %s is finished", s.id)
	}

	s.ledger.Flatten(s.price.Quote())
	snap := s.ledger.Snapshot()
	return &snap, nil
}

// Finish ends the session early and scores it. Idempotent: a second call
// returns the stored result.
func (s *Session) Finish() *models.SessionResult {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.finished {
		s.finishLocked()
	}
	return s.result
}

// Finished reports whether the session has ended.
func (s *Session) Finished() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.finished
}

// Result returns the final result, or nil while the session is live.
func (s *Session) Result() *models.SessionResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.result
}

func (s *Session) finishLocked() {
	s.finished = true

	snap := s.ledger.Snapshot()
	report := scoring.Calculate(scoring.Input{
		Trades:        s.ledger.Trades(),
		PriceHistory:  s.price.History(),
		News:          s.news,
		RealizedPnL:   snap.RealizedPnL,
		UnrealizedPnL: snap.UnrealizedPnL,
		MaxDrawdown:   snap.MaxDrawdown,
		VarBreaches:   snap.VarBreaches,
		NetLots:       snap.NetLots,
		LotSize:       s.ledger.LotSize(),
		TotalTicks:    s.scenario.TotalTicks,
	})

	s.result = &models.SessionResult{
		SessionID:  s.id,
		Player:     s.player,
		Scenario:   s.scenario.Name,
		FinishedAt: time.Now().Unix(),
		Report:     report,
		Trades:     s.ledger.Trades(),
	}

	for ch := range s.subs {
		close(ch)
	}
	s.subs = make(map[chan models.TickFrame]struct{})
}

// State returns the full read view of the session.
func (s *Session) State() *models.SessionState {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := &models.SessionState{
		ID:       s.id,
		Scenario: s.scenario.Name,
		Finished: s.finished,
		Quote:    s.price.Quote(),
		Position: s.ledger.Snapshot(),
		News:     append([]models.NewsItem(nil), s.news...),
		Candles:  append([]models.Candle(nil), s.price.Candles()...),
	}
	m := s.price.Momentum()
	st.Momentum = &m
	if s.crack != nil {
		c := s.crack.Cracks()
		st.Cracks = &c
		sc := s.crack.StartCracks()
		st.StartCracks = &sc
	}
	return st
}

// Subscribe registers a tick-frame channel. The channel is closed when the
// session finishes.
func (s *Session) Subscribe() chan models.TickFrame {
	s.mu.Lock()
	defer s.mu.Unlock()

	ch := make(chan models.TickFrame, 16)
	if s.finished {
		close(ch)
		return ch
	}
	s.subs[ch] = struct{}{}
	return ch
}

// Unsubscribe removes a subscriber registered with Subscribe.
func (s *Session) Unsubscribe(ch chan models.TickFrame) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.subs[ch]; ok {
		delete(s.subs, ch)
		close(ch)
	}
}

// LastPrice returns the current simulated price.
func (s *Session) LastPrice() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.price.Price()
}
