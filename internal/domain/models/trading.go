package models

// Side of a trade.
type Side string

const (
	SideBuy  Side = "buy"
	SideSell Side = "sell"
)

// Sign returns +1 for buys and -1 for sells.
func (s Side) Sign() int {
	if s == SideBuy {
		return 1
	}
	return -1
}

// Trade is an immutable fill record. The append-only trade log is the sole
// input to post-hoc scoring.
type Trade struct {
	Tick  int     `json:"tick"`
	Side  Side    `json:"side"`
	Lots  int     `json:"lots"`
	Price float64 `json:"price"`
}

// PositionSnapshot is the ledger's externally visible state.
type PositionSnapshot struct {
	NetLots       int     `json:"net_lots"`
	AverageEntry  float64 `json:"average_entry"`
	RealizedPnL   float64 `json:"realized_pnl"`
	UnrealizedPnL float64 `json:"unrealized_pnl"`
	MaxDrawdown   float64 `json:"max_drawdown"`
	VarUsage      float64 `json:"var_usage"`
	VarBreaches   int     `json:"var_breaches"`
}

// DimensionScores are the six competency sub-scores, each an integer 1..5.
type DimensionScores struct {
	Understanding int `json:"understanding"`
	Execution     int `json:"execution"`
	Organisation  int `json:"organisation"`
	Interpersonal int `json:"interpersonal"`
	Strategic     int `json:"strategic"`
	Analytical    int `json:"analytical"`
}

// ScoreReport is the scoring engine output: weighted composite percentage,
// letter grade, the six dimensions, and flat summary metrics.
type ScoreReport struct {
	CompositeScore int             `json:"composite_score"`
	Grade          string          `json:"grade"`
	Dimensions     DimensionScores `json:"dimensions"`

	TotalPnL    float64 `json:"total_pnl"`
	WinRate     float64 `json:"win_rate"`
	TradeCount  int     `json:"trade_count"`
	MaxDrawdown float64 `json:"max_drawdown"`
	VarBreaches int     `json:"var_breaches"`
}

// SessionResult is the archived summary of a finished session.
type SessionResult struct {
	SessionID  string      `json:"session_id"`
	Player     string      `json:"player"`
	Scenario   string      `json:"scenario"`
	FinishedAt int64       `json:"finished_at"` // unix seconds
	Report     ScoreReport `json:"report"`
	Trades     []Trade     `json:"trades"`
}
