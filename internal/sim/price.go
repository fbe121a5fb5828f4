package sim

import (
	"fmt"
	"math"

	"OilSim/internal/domain/models"
)

// activeDrift is one fading event-driven price nudge. PerTick is applied
// every tick until Remaining runs out, producing a linear fade-in of the
// post-event trend.
type activeDrift struct {
	Remaining int
	PerTick   float64
}

// PriceProcess evolves one mean-reverting price path with event-driven jumps,
// decaying drift and volatility/noise multipliers. Instances are owned by a
// single session and advanced synchronously; there is no shared state.
type PriceProcess struct {
	rng Rand

	price        float64
	longTermMean float64
	minPrice     float64
	maxPrice     float64

	ticksPerDay    int
	annualVol      float64
	meanRevSpeed   float64
	spread         float64
	ticksPerCandle int

	drifts   []activeDrift
	volMult  float64
	noiseAmp float64
	tick     int

	history []float64
	candles []models.Candle
	cur     models.Candle
	curLen  int
}

// NewPriceProcess builds a fresh process at the scenario's start price.
// Invalid configuration is a programming error and fails fast.
func NewPriceProcess(sc *models.Scenario, rng Rand) (*PriceProcess, error) {
	if sc.MinPrice > sc.MaxPrice {
		return nil, fmt.Errorf("price process: min price %.2f above max %.2f", sc.MinPrice, sc.MaxPrice)
	}
	if sc.StartPrice < sc.MinPrice || sc.StartPrice > sc.MaxPrice {
		return nil, fmt.Errorf("price process: start price %.2f outside [%.2f, %.2f]", sc.StartPrice, sc.MinPrice, sc.MaxPrice)
	}
	if sc.TicksPerDay <= 0 {
		return nil, fmt.Errorf("price process: ticks per day must be positive, got %d", sc.TicksPerDay)
	}
	if sc.TicksPerCandle <= 0 {
		return nil, fmt.Errorf("price process: ticks per candle must be positive, got %d", sc.TicksPerCandle)
	}

	p := &PriceProcess{
		rng:            rng,
		price:          round2(sc.StartPrice),
		longTermMean:   sc.StartPrice,
		minPrice:       sc.MinPrice,
		maxPrice:       sc.MaxPrice,
		ticksPerDay:    sc.TicksPerDay,
		annualVol:      sc.AnnualVol,
		meanRevSpeed:   sc.MeanRevSpeed,
		spread:         sc.Spread,
		ticksPerCandle: sc.TicksPerCandle,
		volMult:        1,
		noiseAmp:       1,
	}
	p.cur = models.Candle{Open: p.price, High: p.price, Low: p.price, Close: p.price}
	return p, nil
}

// Tick advances the diffusion one step and returns the new quote, plus the
// sealed candle when the aggregation window closed on this tick.
func (p *PriceProcess) Tick() models.TickResult {
	dt := 1 / float64(p.ticksPerDay)

	reversion := p.meanRevSpeed * (p.longTermMean - p.price) * dt
	diffusion := p.annualVol * p.volMult * math.Sqrt(dt) * normal(p.rng) * p.noiseAmp

	driftSum := 0.0
	kept := p.drifts[:0]
	for _, d := range p.drifts {
		driftSum += d.PerTick
		d.Remaining--
		if d.Remaining > 0 {
			kept = append(kept, d)
		}
	}
	p.drifts = kept

	next := p.price*(1+reversion+diffusion) + p.price*driftSum
	p.price = round2(clamp(next, p.minPrice, p.maxPrice))
	p.tick++

	// Event impact fades geometrically back toward baseline.
	p.volMult = 1 + (p.volMult-1)*0.98
	p.noiseAmp = 1 + (p.noiseAmp-1)*0.98

	p.history = append(p.history, p.price)
	sealed := p.updateCandle()

	return models.TickResult{
		Quote: models.Quote{
			Price: p.price,
			Bid:   round2(p.price - p.spread/2),
			Ask:   round2(p.price + p.spread/2),
			Tick:  p.tick,
		},
		NewCandle: sealed,
	}
}

func (p *PriceProcess) updateCandle() *models.Candle {
	if p.curLen == 0 {
		p.cur = models.Candle{Open: p.price, High: p.price, Low: p.price, Close: p.price}
	}
	if p.price > p.cur.High {
		p.cur.High = p.price
	}
	if p.price < p.cur.Low {
		p.cur.Low = p.price
	}
	p.cur.Close = p.price
	p.curLen++

	if p.curLen < p.ticksPerCandle {
		return nil
	}
	p.cur.Time = p.tick
	p.candles = append(p.candles, p.cur)
	sealed := p.cur
	p.curLen = 0
	return &sealed
}

// ApplyEvent applies an impact: immediate jump, mean re-anchor, drift fade-in
// and multiplier stacking. The long-term mean follows the post-event price so
// repeated shocks compound instead of being fought by mean reversion.
//
// Impacts are validated at scenario load; a non-positive DriftDecayTicks here
// is a programming error.
func (p *PriceProcess) ApplyEvent(imp models.EventImpact) {
	if imp.DriftDecayTicks <= 0 {
		panic(fmt.Sprintf("price process: drift decay ticks must be positive, got %d", imp.DriftDecayTicks))
	}

	p.price = round2(clamp(p.price*(1+imp.ImmediatePct*float64(imp.Direction)), p.minPrice, p.maxPrice))
	p.longTermMean = p.price

	if imp.DriftPct > 0 && imp.Direction != models.DirectionFlat {
		p.drifts = append(p.drifts, activeDrift{
			Remaining: imp.DriftDecayTicks,
			PerTick:   imp.DriftPct * float64(imp.Direction) / float64(imp.DriftDecayTicks),
		})
	}

	// Shocks stack: a weaker event never overwrites a stronger earlier one.
	if imp.VolatilityMultiplier > p.volMult {
		p.volMult = imp.VolatilityMultiplier
	}
	if imp.NoiseAmplifier > p.noiseAmp {
		p.noiseAmp = imp.NoiseAmplifier
	}
}

// Momentum is a read-only derived view used for player feedback.
func (p *PriceProcess) Momentum() models.MomentumData {
	total, longest := 0, 0
	net := 0.0
	for _, d := range p.drifts {
		total += d.Remaining
		if d.Remaining > longest {
			longest = d.Remaining
		}
		net += d.PerTick
	}
	dir := 0
	if net > 0 {
		dir = 1
	} else if net < 0 {
		dir = -1
	}
	return models.MomentumData{
		TotalDriftTicks:       total,
		LongestDriftTicks:     longest,
		NetDriftDirection:     dir,
		VolatilityMultiplier:  p.volMult,
		NoiseAmplifier:        p.noiseAmp,
		MeanReversionPressure: (p.longTermMean - p.price) / p.price,
	}
}

// Price returns the current price.
func (p *PriceProcess) Price() float64 { return p.price }

// Quote returns the current quote without advancing the process.
func (p *PriceProcess) Quote() models.Quote {
	return models.Quote{
		Price: p.price,
		Bid:   round2(p.price - p.spread/2),
		Ask:   round2(p.price + p.spread/2),
		Tick:  p.tick,
	}
}

// History returns the per-tick price series.
func (p *PriceProcess) History() []float64 { return p.history }

// Candles returns the sealed candle list.
func (p *PriceProcess) Candles() []models.Candle { return p.candles }
