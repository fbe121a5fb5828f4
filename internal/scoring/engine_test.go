package scoring

import (
	"math"
	"reflect"
	"testing"

	"OilSim/internal/domain/models"
)

func TestGradeThresholds(t *testing.T) {
	cases := []struct {
		composite int
		want      string
	}{
		{100, "A"}, {85, "A"}, {84, "B"}, {70, "B"},
		{69, "C"}, {55, "C"}, {54, "D"}, {40, "D"}, {39, "F"}, {0, "F"},
	}
	for _, tc := range cases {
		if got := grade(tc.composite); got != tc.want {
			t.Errorf("grade(%d) = %s, want %s", tc.composite, got, tc.want)
		}
	}
}

func TestToScoreBounds(t *testing.T) {
	if got := toScore(0); got != 1 {
		t.Errorf("toScore(0) = %d, want 1", got)
	}
	if got := toScore(1); got != 5 {
		t.Errorf("toScore(1) = %d, want 5", got)
	}
	if got := toScore(0.5); got != 3 {
		t.Errorf("toScore(0.5) = %d, want 3", got)
	}
	if got := toScore(-2); got != 1 {
		t.Errorf("toScore(-2) = %d, want clamp to 1", got)
	}
	if got := toScore(7); got != 5 {
		t.Errorf("toScore(7) = %d, want clamp to 5", got)
	}
}

func TestTradePnLsMarkAgainstNextTrade(t *testing.T) {
	in := Input{
		LotSize: 1000,
		Trades: []models.Trade{
			{Tick: 1, Side: models.SideBuy, Lots: 10, Price: 100},
			{Tick: 10, Side: models.SideSell, Lots: 10, Price: 105},
		},
		PriceHistory: []float64{100, 102, 103},
	}
	pnls := tradePnLs(in)
	if len(pnls) != 2 {
		t.Fatalf("got %d pnls, want 2", len(pnls))
	}
	// Buy at 100, next trade at 105: +5 * 10 lots * 1000.
	if pnls[0] != 50000 {
		t.Errorf("pnls[0] = %.2f, want 50000", pnls[0])
	}
	// Sell at 105, final recorded price 103: +2 * 10 lots * 1000.
	if pnls[1] != 20000 {
		t.Errorf("pnls[1] = %.2f, want 20000", pnls[1])
	}
}

func TestUnderstandingRewardsCorrectDirection(t *testing.T) {
	events := []models.NewsItem{
		{Tick: 10, Direction: models.DirectionUp, Impactful: true},
	}
	in := Input{
		Trades: []models.Trade{{Tick: 12, Side: models.SideBuy, Lots: 5, Price: 100}},
	}
	if got := understanding(in, events); got != 1.0 {
		t.Errorf("understanding = %.2f for a correct prompt response, want 1.00", got)
	}

	in.Trades[0].Side = models.SideSell
	// Wrong direction: accuracy 0, response rate 1 -> 0.3.
	if got := understanding(in, events); math.Abs(got-0.3) > 1e-9 {
		t.Errorf("understanding = %.2f for a wrong-way response, want 0.30", got)
	}
}

func TestUnderstandingIgnoresNoiseHeadlines(t *testing.T) {
	news := []models.NewsItem{
		{Tick: 10, Direction: models.DirectionUp, Impactful: true},
		{Tick: 20, Direction: models.DirectionFlat, Impactful: false},
		{Tick: 30, Direction: models.DirectionFlat, Impactful: true},
	}
	if got := len(impactEvents(news)); got != 1 {
		t.Errorf("impact events = %d, want 1 (noise and flat items excluded)", got)
	}
}

func TestCalculateEmptySessionIsNeutral(t *testing.T) {
	report := Calculate(Input{TotalTicks: 100, LotSize: 1000})

	dims := []int{
		report.Dimensions.Understanding,
		report.Dimensions.Execution,
		report.Dimensions.Organisation,
		report.Dimensions.Interpersonal,
		report.Dimensions.Strategic,
		report.Dimensions.Analytical,
	}
	for i, d := range dims {
		if d < 1 || d > 5 {
			t.Errorf("dimension %d = %d, want within [1, 5]", i, d)
		}
	}
	if report.Grade == "" {
		t.Error("empty grade")
	}
	if report.TradeCount != 0 || report.WinRate != 0 {
		t.Errorf("trade count/win rate = %d/%.2f, want 0/0", report.TradeCount, report.WinRate)
	}
}

func TestCalculateDeterministic(t *testing.T) {
	in := Input{
		LotSize:    1000,
		TotalTicks: 100,
		Trades: []models.Trade{
			{Tick: 12, Side: models.SideBuy, Lots: 10, Price: 100},
			{Tick: 40, Side: models.SideSell, Lots: 10, Price: 104},
			{Tick: 62, Side: models.SideSell, Lots: 8, Price: 103},
			{Tick: 90, Side: models.SideBuy, Lots: 8, Price: 101},
		},
		PriceHistory: []float64{100, 101, 102, 104, 103, 102, 101, 101.5},
		News: []models.NewsItem{
			{Tick: 10, Direction: models.DirectionUp, Impactful: true},
			{Tick: 60, Direction: models.DirectionDown, Impactful: true},
		},
		RealizedPnL:   56000,
		UnrealizedPnL: 0,
		MaxDrawdown:   -12000,
	}

	a := Calculate(in)
	b := Calculate(in)
	if !reflect.DeepEqual(a, b) {
		t.Errorf("reports differ for identical input:\n%+v\n%+v", a, b)
	}
}

func TestCalculateDisciplinedWinnerOutscoresRecklessLoser(t *testing.T) {
	news := []models.NewsItem{
		{Tick: 10, Direction: models.DirectionUp, Impactful: true},
		{Tick: 50, Direction: models.DirectionDown, Impactful: true},
	}
	history := []float64{100, 101, 103, 104, 103, 101, 100, 99}

	disciplined := Calculate(Input{
		LotSize:    1000,
		TotalTicks: 100,
		Trades: []models.Trade{
			{Tick: 13, Side: models.SideBuy, Lots: 10, Price: 101},
			{Tick: 42, Side: models.SideSell, Lots: 10, Price: 104},
			{Tick: 53, Side: models.SideSell, Lots: 10, Price: 103},
			{Tick: 75, Side: models.SideBuy, Lots: 10, Price: 100},
		},
		PriceHistory: history,
		News:         news,
		RealizedPnL:  60000,
		MaxDrawdown:  -5000,
	})

	reckless := Calculate(Input{
		LotSize:    1000,
		TotalTicks: 100,
		Trades: []models.Trade{
			{Tick: 14, Side: models.SideSell, Lots: 60, Price: 101},
			{Tick: 95, Side: models.SideBuy, Lots: 120, Price: 104},
		},
		PriceHistory: history,
		News:         news,
		RealizedPnL:  -180000,
		MaxDrawdown:  -220000,
		VarBreaches:  3,
		NetLots:      60,
	})

	if disciplined.CompositeScore <= reckless.CompositeScore {
		t.Errorf("disciplined %d <= reckless %d", disciplined.CompositeScore, reckless.CompositeScore)
	}
}

func TestOrganisationPenalisesVarBreaches(t *testing.T) {
	base := Input{RealizedPnL: 10000}
	clean := organisation(base, nil)

	base.VarBreaches = 3
	breached := organisation(base, nil)

	if breached >= clean {
		t.Errorf("organisation with breaches %.3f >= clean %.3f", breached, clean)
	}
}

func TestHoldingScoreBands(t *testing.T) {
	cases := []struct {
		avg  float64
		want float64
	}{
		{2, 0.2}, {10, 0.5}, {30, 1.0}, {50, 1.0}, {80, 0.7},
	}
	for _, tc := range cases {
		if got := holdingScore(tc.avg); got != tc.want {
			t.Errorf("holdingScore(%.0f) = %.2f, want %.2f", tc.avg, got, tc.want)
		}
	}
}

func TestDeriskScore(t *testing.T) {
	in := Input{
		TotalTicks: 100,
		Trades: []models.Trade{
			{Tick: 10, Lots: 20, Side: models.SideBuy, Price: 100},
			{Tick: 90, Lots: 5, Side: models.SideSell, Price: 101},
		},
	}
	if got := deriskScore(in); got != 1.0 {
		t.Errorf("deriskScore = %.2f for shrinking late size, want 1.00", got)
	}

	in.Trades[1].Lots = 80
	if got := deriskScore(in); got != 0.0 {
		t.Errorf("deriskScore = %.2f for growing late size, want 0.00", got)
	}
}

func TestScoreIndependentOfLedgerTotals(t *testing.T) {
	// The per-trade view must come from the trade log alone; sliding the
	// ledger totals moves organisation inputs but not the trade P&L marks.
	in := Input{
		LotSize: 1000,
		Trades: []models.Trade{
			{Tick: 1, Side: models.SideBuy, Lots: 10, Price: 100},
			{Tick: 20, Side: models.SideSell, Lots: 10, Price: 105},
		},
		PriceHistory: []float64{100, 105},
	}
	a := tradePnLs(in)
	in.RealizedPnL = 999999
	b := tradePnLs(in)
	if !reflect.DeepEqual(a, b) {
		t.Errorf("trade pnls changed with ledger totals: %v vs %v", a, b)
	}
}
