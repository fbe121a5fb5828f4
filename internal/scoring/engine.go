// Package scoring reconstructs trading competence from a finished session's
// raw logs. It is a pure function of the trade log, price history and news
// log: it never reads the ledger's running totals, and its per-trade P&L view
// (each trade marked against the next trade's price) is deliberately distinct
// from the ledger's realized/unrealized bookkeeping.
package scoring

import (
	"math"

	"OilSim/internal/domain/models"
)

// Dimension weights. They sum to 1; the composite divides the 1–5 weighted
// average by 5 to land on a 0–100 percentage.
const (
	weightUnderstanding = 0.20
	weightExecution     = 0.15
	weightOrganisation  = 0.15
	weightInterpersonal = 0.10
	weightStrategic     = 0.20
	weightAnalytical    = 0.20
)

// Heuristic thresholds. Tunable, not load-bearing: the volatility-rise cutoff
// and the recovery/adaptation weight splits were inherited as-is.
const (
	reactionWindow   = 15 // ticks after an event in which a trade counts as a response
	engagementWindow = 20 // wider window used for latency and engagement
	volRiseCutoff    = 0.30
	defaultLatency   = 15.0
	bestLatency      = 3.0
	neutral          = 0.5 // returned wherever a ratio would divide by zero
)

// Input is everything the scorer consumes. PriceHistory is the per-tick
// series, News the full headline log (impactful and noise), Trades the
// append-only fill log.
type Input struct {
	Trades        []models.Trade
	PriceHistory  []float64
	News          []models.NewsItem
	RealizedPnL   float64
	UnrealizedPnL float64
	MaxDrawdown   float64
	VarBreaches   int
	NetLots       int
	LotSize       float64
	TotalTicks    int
}

// Calculate derives the six 1–5 dimension scores, the weighted composite
// percentage and the letter grade. Deterministic: identical input yields
// identical output.
func Calculate(in Input) models.ScoreReport {
	events := impactEvents(in.News)
	pnls := tradePnLs(in)

	dims := models.DimensionScores{
		Understanding: toScore(understanding(in, events)),
		Execution:     toScore(execution(in, events)),
		Organisation:  toScore(organisation(in, pnls)),
		Interpersonal: toScore(interpersonal(in, events)),
		Strategic:     toScore(strategic(in)),
		Analytical:    toScore(analytical(in, events, pnls)),
	}

	weighted := float64(dims.Understanding)*weightUnderstanding +
		float64(dims.Execution)*weightExecution +
		float64(dims.Organisation)*weightOrganisation +
		float64(dims.Interpersonal)*weightInterpersonal +
		float64(dims.Strategic)*weightStrategic +
		float64(dims.Analytical)*weightAnalytical
	composite := int(math.Round(weighted / 5 * 100))

	wins := 0
	for _, p := range pnls {
		if p > 0 {
			wins++
		}
	}
	winRate := 0.0
	if len(pnls) > 0 {
		winRate = float64(wins) / float64(len(pnls))
	}

	return models.ScoreReport{
		CompositeScore: composite,
		Grade:          grade(composite),
		Dimensions:     dims,
		TotalPnL:       in.RealizedPnL + in.UnrealizedPnL,
		WinRate:        winRate,
		TradeCount:     len(in.Trades),
		MaxDrawdown:    in.MaxDrawdown,
		VarBreaches:    in.VarBreaches,
	}
}

func grade(composite int) string {
	switch {
	case composite >= 85:
		return "A"
	case composite >= 70:
		return "B"
	case composite >= 55:
		return "C"
	case composite >= 40:
		return "D"
	}
	return "F"
}

// toScore maps a 0..1 internal value to an integer 1..5.
func toScore(x float64) int {
	return int(math.Round(1 + clamp01(x)*4))
}

func impactEvents(news []models.NewsItem) []models.NewsItem {
	var out []models.NewsItem
	for _, n := range news {
		if n.Impactful && n.Direction != models.DirectionFlat {
			out = append(out, n)
		}
	}
	return out
}

// firstTradeAfter returns the first trade strictly after tick within window,
// or nil.
func firstTradeAfter(trades []models.Trade, tick, window int) *models.Trade {
	for i := range trades {
		if trades[i].Tick > tick && trades[i].Tick <= tick+window {
			return &trades[i]
		}
	}
	return nil
}

// tradePnLs marks each trade against the next trade's price (the final
// recorded price for the last trade). This is the scoring convention, not
// the ledger's.
func tradePnLs(in Input) []float64 {
	if len(in.Trades) == 0 {
		return nil
	}
	finalPrice := in.Trades[len(in.Trades)-1].Price
	if len(in.PriceHistory) > 0 {
		finalPrice = in.PriceHistory[len(in.PriceHistory)-1]
	}
	out := make([]float64, len(in.Trades))
	for i, t := range in.Trades {
		next := finalPrice
		if i+1 < len(in.Trades) {
			next = in.Trades[i+1].Price
		}
		out[i] = float64(t.Side.Sign()) * (next - t.Price) * float64(t.Lots) * in.LotSize
	}
	return out
}

// understanding: did trades after impact events point the right way?
// Accuracy weighs 0.7, response rate 0.3. An untraded event hurts the
// response rate but not the accuracy.
func understanding(in Input, events []models.NewsItem) float64 {
	if len(events) == 0 {
		return neutral
	}
	responded, correct := 0, 0
	for _, ev := range events {
		t := firstTradeAfter(in.Trades, ev.Tick, reactionWindow)
		if t == nil {
			continue
		}
		responded++
		if t.Side.Sign() == int(ev.Direction) {
			correct++
		}
	}
	accuracy := neutral
	if responded > 0 {
		accuracy = float64(correct) / float64(responded)
	}
	responseRate := float64(responded) / float64(len(events))
	return accuracy*0.7 + responseRate*0.3
}

// execution: reaction latency (60%) blended with sizing consistency (40%).
// Moderate lot-size variation beats both rigid uniformity and erratic sizing.
func execution(in Input, events []models.NewsItem) float64 {
	latency := defaultLatency
	if len(events) > 0 {
		sum := 0.0
		for _, ev := range events {
			l := defaultLatency
			if t := firstTradeAfter(in.Trades, ev.Tick, engagementWindow); t != nil {
				l = float64(t.Tick - ev.Tick)
			}
			sum += l
		}
		latency = sum / float64(len(events))
	}
	latencyScore := clamp01((defaultLatency - latency) / (defaultLatency - bestLatency))

	sizing := neutral
	if len(in.Trades) >= 2 {
		mean, sd := lotStats(in.Trades)
		if mean > 0 {
			cv := sd / mean
			sizing = clampRange(1.5-cv, 0, 1.2) / 1.2
		}
	}
	return latencyScore*0.6 + sizing*0.4
}

// organisation: drawdown severity 0.35, VaR discipline 0.25, loss-recovery
// sizing 0.2, flat-at-end 0.2 (partial credit 0.3 when not flat).
func organisation(in Input, pnls []float64) float64 {
	totalPnL := in.RealizedPnL + in.UnrealizedPnL
	severity := -in.MaxDrawdown
	denom := math.Max(math.Abs(totalPnL), 10000) + 10000
	ddScore := clamp01(1 - severity/denom)

	varScore := clamp01(1 - float64(in.VarBreaches)*0.25)

	recovery := recoveryScore(in.Trades, pnls)

	flat := 0.3
	if in.NetLots == 0 {
		flat = 1.0
	}

	return ddScore*0.35 + varScore*0.25 + recovery*0.2 + flat*0.2
}

// recoveryScore checks whether the player reduced size after two consecutive
// losing trades.
func recoveryScore(trades []models.Trade, pnls []float64) float64 {
	opportunities, reduced := 0, 0
	for i := 2; i < len(trades); i++ {
		if pnls[i-2] < 0 && pnls[i-1] < 0 {
			opportunities++
			if trades[i].Lots < trades[i-1].Lots {
				reduced++
			}
		}
	}
	if opportunities == 0 {
		return neutral
	}
	return float64(reduced) / float64(opportunities)
}

// interpersonal: proxy metric in a single-player context. Engagement with
// impact events, scaled by 1.3 and floored at a 0.3 baseline.
func interpersonal(in Input, events []models.NewsItem) float64 {
	engagement := 0.0
	if len(events) > 0 {
		touched := 0
		for _, ev := range events {
			if firstTradeAfter(in.Trades, ev.Tick, engagementWindow) != nil {
				touched++
			}
		}
		engagement = float64(touched) / float64(len(events))
	}
	return clamp01(engagement*1.3)*0.7 + 0.3
}

// strategic: non-monotonic holding-period score blended with a
// volatility-adaptation heuristic and end-game de-risking.
func strategic(in Input) float64 {
	holding := neutral
	if len(in.Trades) >= 2 {
		sum := 0.0
		for i := 1; i < len(in.Trades); i++ {
			sum += float64(in.Trades[i].Tick - in.Trades[i-1].Tick)
		}
		holding = holdingScore(sum / float64(len(in.Trades)-1))
	}

	adaptation := adaptationScore(in)
	derisk := deriskScore(in)

	return (holding + adaptation + derisk) / 3
}

func holdingScore(avg float64) float64 {
	switch {
	case avg < 5:
		return 0.2
	case avg < 15:
		return 0.5
	case avg <= 50:
		return 1.0 // the ideal band
	}
	return 0.7
}

// adaptationScore rewards sizing down when second-half volatility rose more
// than 30% over the first half. Neutral when the regime never shifted.
func adaptationScore(in Input) float64 {
	if len(in.PriceHistory) < 4 || len(in.Trades) == 0 {
		return neutral
	}
	half := len(in.PriceHistory) / 2
	v1 := returnStddev(in.PriceHistory[:half])
	v2 := returnStddev(in.PriceHistory[half:])
	if v1 == 0 || v2/v1-1 <= volRiseCutoff {
		return neutral
	}

	midTick := in.TotalTicks / 2
	early, late := avgLotsSplit(in.Trades, midTick)
	if late == 0 {
		return 1.0 // stopped trading entirely as volatility rose
	}
	if late < early {
		return 1.0
	}
	return 0.2
}

// deriskScore checks average lot size in the final 20% of ticks against the
// run-up. No late trades counts as fully de-risked.
func deriskScore(in Input) float64 {
	if len(in.Trades) == 0 || in.TotalTicks == 0 {
		return neutral
	}
	cutoff := in.TotalTicks * 4 / 5
	early, late := avgLotsSplit(in.Trades, cutoff)
	if late == 0 {
		return 1.0
	}
	if late <= early {
		return 1.0
	}
	return 0.0
}

// avgLotsSplit returns average lot sizes before (inclusive) and after a tick
// cutoff. A missing side comes back as 0.
func avgLotsSplit(trades []models.Trade, cutoff int) (early, late float64) {
	var eSum, eN, lSum, lN float64
	for _, t := range trades {
		if t.Tick <= cutoff {
			eSum += float64(t.Lots)
			eN++
		} else {
			lSum += float64(t.Lots)
			lN++
		}
	}
	if eN > 0 {
		early = eSum / eN
	}
	if lN > 0 {
		late = lSum / lN
	}
	return early, late
}

// analytical: Sharpe-like ratio, learning curve across event halves, and win
// rate, equally blended.
func analytical(in Input, events []models.NewsItem, pnls []float64) float64 {
	sharpe := neutral
	if len(pnls) >= 2 {
		mean, sd := meanStddev(pnls)
		if sd > 0 {
			ratio := mean / sd * math.Sqrt(252)
			sharpe = clamp01((ratio + 0.5) / 3.0) // scored between -0.5 and 2.5
		}
	}

	learning := learningScore(in, events)

	winRate := neutral
	if len(pnls) > 0 {
		wins := 0
		for _, p := range pnls {
			if p > 0 {
				wins++
			}
		}
		winRate = clamp01((float64(wins)/float64(len(pnls)) - 0.3) / 0.4) // 30%..70%
	}

	return (sharpe + learning + winRate) / 3
}

// learningScore compares the error rate on the first half of graded events
// with the second half, rewarding improvement.
func learningScore(in Input, events []models.NewsItem) float64 {
	var graded []bool
	for _, ev := range events {
		t := firstTradeAfter(in.Trades, ev.Tick, reactionWindow)
		if t == nil {
			continue
		}
		graded = append(graded, t.Side.Sign() == int(ev.Direction))
	}
	if len(graded) < 2 {
		return neutral
	}
	half := len(graded) / 2
	e1 := errorRate(graded[:half])
	e2 := errorRate(graded[half:])
	return clamp01(0.5 + (e1 - e2))
}

func errorRate(correct []bool) float64 {
	errs := 0
	for _, ok := range correct {
		if !ok {
			errs++
		}
	}
	return float64(errs) / float64(len(correct))
}

func lotStats(trades []models.Trade) (mean, sd float64) {
	xs := make([]float64, len(trades))
	for i, t := range trades {
		xs[i] = float64(t.Lots)
	}
	return meanStddev(xs)
}

func meanStddev(xs []float64) (mean, sd float64) {
	if len(xs) == 0 {
		return 0, 0
	}
	for _, x := range xs {
		mean += x
	}
	mean /= float64(len(xs))
	for _, x := range xs {
		sd += (x - mean) * (x - mean)
	}
	sd = math.Sqrt(sd / float64(len(xs)))
	return mean, sd
}

func returnStddev(prices []float64) float64 {
	if len(prices) < 2 {
		return 0
	}
	rets := make([]float64, 0, len(prices)-1)
	for i := 1; i < len(prices); i++ {
		if prices[i-1] == 0 {
			continue
		}
		rets = append(rets, prices[i]/prices[i-1]-1)
	}
	_, sd := meanStddev(rets)
	return sd
}

func clamp01(x float64) float64 {
	return clampRange(x, 0, 1)
}

func clampRange(x, lo, hi float64) float64 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}
