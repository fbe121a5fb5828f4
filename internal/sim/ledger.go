package sim

import (
	"fmt"
	"math"

	"OilSim/internal/domain/models"
)

// PositionLedger is the authoritative bookkeeping for one net position:
// weighted average entry through additions, partial reductions, full closes
// and reversals-through-zero, plus realized/unrealized P&L, drawdown and a
// deterministic VaR gauge that rejects oversized trades.
type PositionLedger struct {
	lotSize     float64
	varLimit    float64
	dailyVolPct float64

	netLots     int
	avgEntry    float64
	realized    float64
	unrealized  float64
	peakPnL     float64
	maxDrawdown float64
	varBreaches int
	lastPrice   float64

	trades []models.Trade
}

// NewPositionLedger creates a flat ledger for one scenario run.
func NewPositionLedger(sc *models.Scenario) (*PositionLedger, error) {
	if sc.LotSize <= 0 {
		return nil, fmt.Errorf("ledger: lot size must be positive, got %.2f", sc.LotSize)
	}
	if sc.VarLimit <= 0 {
		return nil, fmt.Errorf("ledger: var limit must be positive, got %.2f", sc.VarLimit)
	}
	return &PositionLedger{
		lotSize:     sc.LotSize,
		varLimit:    sc.VarLimit,
		dailyVolPct: sc.DailyVolPct,
		lastPrice:   sc.StartPrice,
	}, nil
}

// ExecuteTrade fills one intent against the quote. Buys pay the ask, sells
// hit the bid — the spread is a friction paid on entry. The only rejection
// path is the VaR breach, which leaves every piece of state untouched apart
// from the breach counter. Lots must be positive; that precondition belongs
// to the caller and violating it is a programming error.
func (l *PositionLedger) ExecuteTrade(side models.Side, lots int, q models.Quote) bool {
	if lots <= 0 {
		panic(fmt.Sprintf("ledger: lots must be positive, got %d", lots))
	}

	price := q.Bid
	if side == models.SideBuy {
		price = q.Ask
	}
	signed := lots * side.Sign()
	newPos := l.netLots + signed

	// Risk gate: notional of the prospective position times daily vol.
	if math.Abs(float64(newPos))*l.lotSize*price*l.dailyVolPct > l.varLimit {
		l.varBreaches++
		return false
	}

	// Realize P&L on the closed portion when reducing or reversing.
	if l.netLots != 0 && sign(signed) != sign(l.netLots) {
		closed := lots
		if abs(l.netLots) < lots {
			closed = abs(l.netLots)
		}
		l.realized += float64(closed) * l.lotSize * (price - l.avgEntry) * float64(sign(l.netLots))
	}

	switch {
	case newPos == 0:
		l.avgEntry = 0
	case l.netLots == 0:
		l.avgEntry = price
	case sign(newPos) != sign(l.netLots):
		// Reversed through zero: the residual is a fresh opposite-side entry.
		l.avgEntry = price
	case sign(signed) == sign(l.netLots):
		l.avgEntry = (l.avgEntry*math.Abs(float64(l.netLots)) + price*float64(lots)) / math.Abs(float64(newPos))
	// Partial same-direction reduction leaves the average entry unchanged.
	}

	l.netLots = newPos
	l.markToMarket(q.Price)
	l.trades = append(l.trades, models.Trade{Tick: q.Tick, Side: side, Lots: lots, Price: price})
	return true
}

// Flatten closes the whole position with a single opposite-side trade.
// No-op when already flat.
func (l *PositionLedger) Flatten(q models.Quote) {
	switch {
	case l.netLots > 0:
		l.ExecuteTrade(models.SideSell, l.netLots, q)
	case l.netLots < 0:
		l.ExecuteTrade(models.SideBuy, -l.netLots, q)
	}
}

// MarkToMarket revalues the open position against the latest price and
// rolls the peak/drawdown tracking forward.
func (l *PositionLedger) MarkToMarket(price float64) {
	l.markToMarket(price)
}

func (l *PositionLedger) markToMarket(price float64) {
	l.lastPrice = price
	l.unrealized = float64(l.netLots) * l.lotSize * (price - l.avgEntry)
	total := l.realized + l.unrealized
	if total > l.peakPnL {
		l.peakPnL = total
	}
	if dd := total - l.peakPnL; dd < l.maxDrawdown {
		l.maxDrawdown = dd
	}
}

// Snapshot returns the externally visible ledger state. VarUsage is derived,
// never independently mutable.
func (l *PositionLedger) Snapshot() models.PositionSnapshot {
	usage := 0.0
	if l.varLimit > 0 {
		usage = math.Abs(float64(l.netLots)) * l.lotSize * l.lastPrice * l.dailyVolPct / l.varLimit
	}
	return models.PositionSnapshot{
		NetLots:       l.netLots,
		AverageEntry:  l.avgEntry,
		RealizedPnL:   l.realized,
		UnrealizedPnL: l.unrealized,
		MaxDrawdown:   l.maxDrawdown,
		VarUsage:      usage,
		VarBreaches:   l.varBreaches,
	}
}

// Trades returns the append-only trade log.
func (l *PositionLedger) Trades() []models.Trade { return l.trades }

// NetLots returns the signed position.
func (l *PositionLedger) NetLots() int { return l.netLots }

// LotSize returns the configured lot size.
func (l *PositionLedger) LotSize() float64 { return l.lotSize }

func sign(x int) int {
	switch {
	case x > 0:
		return 1
	case x < 0:
		return -1
	}
	return 0
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
