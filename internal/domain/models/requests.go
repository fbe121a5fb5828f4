package models

// CreateSessionRequest starts a new simulation session.
type CreateSessionRequest struct {
	Scenario string `json:"scenario" validate:"required"`
	Player   string `json:"player" default:"anonymous"`
	Seed     int64  `json:"seed"` // 0 means time-seeded
}

// TradeRequest places one buy/sell intent against a live session.
type TradeRequest struct {
	Side Side `json:"side" validate:"required,oneof=buy sell"`
	Lots int  `json:"lots" validate:"required,gt=0"`
}

// TradeResponse reports whether the trade was executed. A VaR rejection is
// a normal outcome, not an HTTP error.
type TradeResponse struct {
	Executed bool             `json:"executed"`
	Reason   string           `json:"reason,omitempty"`
	Position PositionSnapshot `json:"position"`
}

// SessionState is the full read view of a session.
type SessionState struct {
	ID       string           `json:"id"`
	Scenario string           `json:"scenario"`
	Finished bool             `json:"finished"`
	Quote    Quote            `json:"quote"`
	Position PositionSnapshot `json:"position"`
	Momentum *MomentumData    `json:"momentum,omitempty"`
	Cracks   *CrackQuotes     `json:"cracks,omitempty"`
	// StartCracks holds the spreads at scenario start, the baseline the
	// player trades against.
	StartCracks *CrackQuotes `json:"start_cracks,omitempty"`
	News     []NewsItem       `json:"news"`
	Candles  []Candle         `json:"candles"`
}

// LeaderboardEntry is one row of the composite-score leaderboard.
type LeaderboardEntry struct {
	Player string  `json:"player"`
	Score  float64 `json:"score"`
}

// TickFrame is pushed to websocket subscribers after every advance.
type TickFrame struct {
	Tick      int      `json:"tick"`
	Price     float64  `json:"price"`
	Bid       float64  `json:"bid"`
	Ask       float64  `json:"ask"`
	Candle    *Candle  `json:"candle,omitempty"`
	Headlines []string `json:"headlines,omitempty"`
	Finished  bool     `json:"finished"`
}
