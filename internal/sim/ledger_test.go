package sim

import (
	"math"
	"testing"

	"OilSim/internal/domain/models"
)

func quoteAt(price float64, tick int) models.Quote {
	return models.Quote{
		Price: price,
		Bid:   round2(price - 0.02),
		Ask:   round2(price + 0.02),
		Tick:  tick,
	}
}

func newTestLedger(t *testing.T) *PositionLedger {
	t.Helper()
	l, err := NewPositionLedger(flatScenario())
	if err != nil {
		t.Fatalf("NewPositionLedger: %v", err)
	}
	return l
}

func TestLedgerBuyPaysAskSellHitsBid(t *testing.T) {
	l := newTestLedger(t)
	if !l.ExecuteTrade(models.SideBuy, 10, quoteAt(100, 1)) {
		t.Fatal("buy rejected")
	}
	snap := l.Snapshot()
	if snap.NetLots != 10 || snap.AverageEntry != 100.02 {
		t.Fatalf("after buy: lots=%d avg=%.2f, want 10 @ 100.02", snap.NetLots, snap.AverageEntry)
	}

	trades := l.Trades()
	if trades[0].Price != 100.02 {
		t.Errorf("buy fill = %.2f, want ask 100.02", trades[0].Price)
	}

	l.ExecuteTrade(models.SideSell, 10, quoteAt(100, 2))
	if got := l.Trades()[1].Price; got != 99.98 {
		t.Errorf("sell fill = %.2f, want bid 99.98", got)
	}
}

func TestLedgerWeightedAverageEntry(t *testing.T) {
	l := newTestLedger(t)
	l.ExecuteTrade(models.SideBuy, 10, quoteAt(100, 1))
	l.ExecuteTrade(models.SideBuy, 10, quoteAt(102, 2))

	want := (100.02*10 + 102.02*10) / 20
	if got := l.Snapshot().AverageEntry; math.Abs(got-want) > 1e-9 {
		t.Errorf("average entry = %.4f, want %.4f", got, want)
	}
}

func TestLedgerPartialReduceRealizesAndKeepsAvg(t *testing.T) {
	l := newTestLedger(t)
	l.ExecuteTrade(models.SideBuy, 10, quoteAt(100, 1))
	l.ExecuteTrade(models.SideBuy, 10, quoteAt(102, 2))
	avg := l.Snapshot().AverageEntry

	l.ExecuteTrade(models.SideSell, 5, quoteAt(104, 3))

	snap := l.Snapshot()
	if snap.NetLots != 15 {
		t.Fatalf("net lots = %d, want 15", snap.NetLots)
	}
	if snap.AverageEntry != avg {
		t.Errorf("average entry moved on partial reduce: %.4f -> %.4f", avg, snap.AverageEntry)
	}
	wantRealized := 5 * 1000 * (103.98 - avg)
	if math.Abs(snap.RealizedPnL-wantRealized) > 1e-6 {
		t.Errorf("realized = %.2f, want %.2f", snap.RealizedPnL, wantRealized)
	}
}

func TestLedgerReversalThroughZero(t *testing.T) {
	l := newTestLedger(t)
	l.ExecuteTrade(models.SideBuy, 10, quoteAt(100, 1))
	l.ExecuteTrade(models.SideSell, 15, quoteAt(104, 2))

	snap := l.Snapshot()
	if snap.NetLots != -5 {
		t.Fatalf("net lots = %d, want -5", snap.NetLots)
	}
	// The residual short is a fresh entry at the fill price.
	if snap.AverageEntry != 103.98 {
		t.Errorf("average entry = %.2f, want 103.98", snap.AverageEntry)
	}
	wantRealized := 10 * 1000 * (103.98 - 100.02)
	if math.Abs(snap.RealizedPnL-wantRealized) > 1e-6 {
		t.Errorf("realized = %.2f, want %.2f", snap.RealizedPnL, wantRealized)
	}
}

func TestLedgerFullCloseResetsEntry(t *testing.T) {
	l := newTestLedger(t)
	l.ExecuteTrade(models.SideBuy, 10, quoteAt(100, 1))
	l.ExecuteTrade(models.SideSell, 10, quoteAt(103, 2))

	snap := l.Snapshot()
	if snap.NetLots != 0 || snap.AverageEntry != 0 {
		t.Errorf("after close: lots=%d avg=%.2f, want flat with zero entry", snap.NetLots, snap.AverageEntry)
	}
	if snap.UnrealizedPnL != 0 {
		t.Errorf("unrealized = %.2f after close, want 0", snap.UnrealizedPnL)
	}
}

func TestLedgerVarGateRejectsWithoutMutation(t *testing.T) {
	l := newTestLedger(t)
	// 130 lots * 1000 * ~100 * 2% daily vol exceeds the 250k limit.
	if l.ExecuteTrade(models.SideBuy, 130, quoteAt(100, 1)) {
		t.Fatal("oversized trade accepted")
	}
	snap := l.Snapshot()
	if snap.NetLots != 0 || len(l.Trades()) != 0 {
		t.Errorf("rejected trade mutated state: lots=%d trades=%d", snap.NetLots, len(l.Trades()))
	}
	if snap.VarBreaches != 1 {
		t.Errorf("var breaches = %d, want 1", snap.VarBreaches)
	}

	// A trade inside the limit still goes through afterwards.
	if !l.ExecuteTrade(models.SideBuy, 10, quoteAt(100, 2)) {
		t.Error("in-limit trade rejected after a breach")
	}
}

func TestLedgerFlatten(t *testing.T) {
	l := newTestLedger(t)
	l.ExecuteTrade(models.SideBuy, 10, quoteAt(100, 1))
	l.Flatten(quoteAt(105, 2))

	snap := l.Snapshot()
	if snap.NetLots != 0 {
		t.Fatalf("net lots after flatten = %d, want 0", snap.NetLots)
	}
	if got := len(l.Trades()); got != 2 {
		t.Errorf("trade count = %d, want 2", got)
	}

	// Flatten on a flat book is a no-op.
	l.Flatten(quoteAt(106, 3))
	if got := len(l.Trades()); got != 2 {
		t.Errorf("flatten on flat book added a trade: count = %d", got)
	}
}

func TestLedgerDrawdownTracksTrough(t *testing.T) {
	l := newTestLedger(t)
	l.ExecuteTrade(models.SideBuy, 10, quoteAt(100, 1))

	l.MarkToMarket(90)
	snap := l.Snapshot()
	wantDD := 10 * 1000 * (90 - 100.02)
	if math.Abs(snap.MaxDrawdown-wantDD) > 1e-6 {
		t.Fatalf("drawdown = %.2f, want %.2f", snap.MaxDrawdown, wantDD)
	}

	// Recovery does not erase the recorded trough.
	l.MarkToMarket(110)
	if got := l.Snapshot().MaxDrawdown; math.Abs(got-wantDD) > 1e-6 {
		t.Errorf("drawdown after recovery = %.2f, want %.2f", got, wantDD)
	}
}

func TestLedgerVarUsageDerived(t *testing.T) {
	l := newTestLedger(t)
	l.ExecuteTrade(models.SideBuy, 50, quoteAt(100, 1))

	want := 50 * 1000 * 100 * 0.02 / 250000
	if got := l.Snapshot().VarUsage; math.Abs(got-want) > 1e-9 {
		t.Errorf("var usage = %.4f, want %.4f", got, want)
	}
}

func TestLedgerPanicsOnNonPositiveLots(t *testing.T) {
	l := newTestLedger(t)
	defer func() {
		if recover() == nil {
			t.Error("expected panic for zero lots")
		}
	}()
	l.ExecuteTrade(models.SideBuy, 0, quoteAt(100, 1))
}

func TestNewPositionLedgerRejectsBadConfig(t *testing.T) {
	sc := flatScenario()
	sc.LotSize = 0
	if _, err := NewPositionLedger(sc); err == nil {
		t.Error("expected error for zero lot size")
	}

	sc = flatScenario()
	sc.VarLimit = 0
	if _, err := NewPositionLedger(sc); err == nil {
		t.Error("expected error for zero var limit")
	}
}
