package sim

import (
	"fmt"

	"OilSim/internal/domain/models"
)

// Per-leg coefficients. Gasoline is structurally the most shock-sensitive
// leg: it carries the largest smoothed-drift weight, the largest
// idiosyncratic noise weight and the strongest common-shock response.
type crackLeg struct {
	price   float64
	start   float64
	floor   float64
	drift   float64 // exponentially smoothed, 3% decay per tick
	pending float64 // event-driven, bleeds into drift at 6% per tick

	driftWeight float64
	idioWeight  float64
	response    float64
}

// CrackEngine runs three correlated price processes (crude, gasoline,
// diesel) for spread-trading scenarios. Each tick draws one shared shock
// plus three idiosyncratic terms; the tradable instruments are the derived
// crack spreads, not the raw legs.
//
// The pending-drift bleed here is deliberately exponential (6% per tick)
// where PriceProcess uses a linear fade — the two decay shapes must not be
// unified.
type CrackEngine struct {
	rng      Rand
	shockVol float64
	volMult  float64
	noiseAmp float64

	crude    crackLeg
	gasoline crackLeg
	diesel   crackLeg
}

// NewCrackEngine builds the three legs from a scenario's crack section.
func NewCrackEngine(cfg *models.CrackConfig, rng Rand) (*CrackEngine, error) {
	if cfg == nil {
		return nil, fmt.Errorf("crack engine: config is nil")
	}
	for _, v := range []struct {
		name         string
		start, floor float64
	}{
		{"crude", cfg.CrudeStart, cfg.CrudeFloor},
		{"gasoline", cfg.GasolineStart, cfg.GasolineFloor},
		{"diesel", cfg.DieselStart, cfg.DieselFloor},
	} {
		if v.start < v.floor {
			return nil, fmt.Errorf("crack engine: %s start %.2f below floor %.2f", v.name, v.start, v.floor)
		}
	}

	return &CrackEngine{
		rng:      rng,
		shockVol: cfg.ShockVol,
		volMult:  1,
		noiseAmp: 1,
		crude: crackLeg{
			price: round2(cfg.CrudeStart), start: cfg.CrudeStart, floor: cfg.CrudeFloor,
			driftWeight: 0.10, idioWeight: 0.7, response: 1.0,
		},
		gasoline: crackLeg{
			price: round2(cfg.GasolineStart), start: cfg.GasolineStart, floor: cfg.GasolineFloor,
			driftWeight: 0.12, idioWeight: 0.9, response: 1.08,
		},
		diesel: crackLeg{
			price: round2(cfg.DieselStart), start: cfg.DieselStart, floor: cfg.DieselFloor,
			driftWeight: 0.11, idioWeight: 0.8, response: 1.04,
		},
	}, nil
}

// Tick draws one shared shock and advances all three legs.
func (e *CrackEngine) Tick() {
	common := normal(e.rng) * e.shockVol * e.volMult

	for _, leg := range []*crackLeg{&e.crude, &e.gasoline, &e.diesel} {
		idio := normal(e.rng) * e.shockVol * leg.idioWeight * e.noiseAmp

		// Event drift bleeds into the smoothed drift exponentially.
		bleed := leg.pending * 0.06
		leg.pending -= bleed
		leg.drift = leg.drift*0.97 + common*leg.driftWeight + bleed

		next := leg.price * (1 + leg.drift + common*leg.response + idio)
		if next < leg.floor {
			next = leg.floor
		}
		leg.price = round2(next)
	}

	e.volMult = 1 + (e.volMult-1)*0.98
	e.noiseAmp = 1 + (e.noiseAmp-1)*0.98
}

// ApplyEvent applies per-leg impacts independently; a nil leg is unaffected.
// Multipliers are global across all three legs and stack via max.
func (e *CrackEngine) ApplyEvent(imp models.CrackImpact) {
	e.applyLeg(&e.crude, imp.Crude)
	e.applyLeg(&e.gasoline, imp.Gasoline)
	e.applyLeg(&e.diesel, imp.Diesel)

	if imp.VolatilityMultiplier > e.volMult {
		e.volMult = imp.VolatilityMultiplier
	}
	if imp.NoiseAmplifier > e.noiseAmp {
		e.noiseAmp = imp.NoiseAmplifier
	}
}

func (e *CrackEngine) applyLeg(leg *crackLeg, imp *models.LegImpact) {
	if imp == nil {
		return
	}
	next := leg.price * (1 + imp.ImmediatePct*float64(imp.Direction))
	if next < leg.floor {
		next = leg.floor
	}
	leg.price = round2(next)
	leg.pending += imp.DriftPct * float64(imp.Direction)
}

// Cracks returns the current derived spreads, rounded to cents.
func (e *CrackEngine) Cracks() models.CrackQuotes {
	return cracksOf(e.crude.price, e.gasoline.price, e.diesel.price)
}

// StartCracks returns the spreads at scenario start prices.
func (e *CrackEngine) StartCracks() models.CrackQuotes {
	return cracksOf(round2(e.crude.start), round2(e.gasoline.start), round2(e.diesel.start))
}

func cracksOf(crude, gasoline, diesel float64) models.CrackQuotes {
	return models.CrackQuotes{
		Crude:         crude,
		Gasoline:      gasoline,
		Diesel:        diesel,
		GasolineCrack: round2(gasoline - crude),
		DieselCrack:   round2(diesel - crude),
		Crack321:      round2((2*gasoline+diesel)/3 - crude),
	}
}
