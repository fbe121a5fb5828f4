package models

// Direction of a price impact: -1 bearish, 0 neutral, +1 bullish.
type Direction int

const (
	DirectionDown Direction = -1
	DirectionFlat Direction = 0
	DirectionUp   Direction = 1
)

// EventImpact describes how a scripted event perturbs the price path.
// ImmediatePct is applied as a one-shot jump, DriftPct fades in linearly
// over DriftDecayTicks, and the multipliers raise volatility/noise until
// they decay back toward 1.
type EventImpact struct {
	Direction            Direction `yaml:"direction" validate:"oneof=-1 0 1"`
	ImmediatePct         float64   `yaml:"immediate_pct" validate:"gte=0"`
	DriftPct             float64   `yaml:"drift_pct" validate:"gte=0"`
	DriftDecayTicks      int       `yaml:"drift_decay_ticks" validate:"gt=0" default:"1"`
	VolatilityMultiplier float64   `yaml:"volatility_multiplier" validate:"gte=1" default:"1"`
	NoiseAmplifier       float64   `yaml:"noise_amplifier" validate:"gte=1" default:"1"`
}

// ScheduledEvent is an authored news event. The scheduler jitters Tick by
// up to ±3 ticks so repeated runs of a scenario do not fire at identical ticks.
type ScheduledEvent struct {
	Tick     int         `yaml:"tick" validate:"gte=1"`
	Category string      `yaml:"category"`
	Headline string      `yaml:"headline" validate:"required"`
	Detail   string      `yaml:"detail"`
	Impact   EventImpact `yaml:"impact"`

	// CrackImpact only applies when the scenario runs the crack engine.
	CrackImpact *CrackImpact `yaml:"crack_impact"`
}

// NoisePool emits a random non-moving headline whenever the current tick is
// inside [From, To] and divisible by Frequency.
type NoisePool struct {
	From      int      `yaml:"from" validate:"gte=1"`
	To        int      `yaml:"to" validate:"gtefield=From"`
	Frequency int      `yaml:"frequency" validate:"gt=0"`
	Pool      []string `yaml:"pool" validate:"min=1"`
}

// LegImpact is a per-product impact for crack scenarios. A nil leg means
// that product is unaffected by the event.
type LegImpact struct {
	Direction    Direction `yaml:"direction" validate:"oneof=-1 0 1"`
	ImmediatePct float64   `yaml:"immediate_pct" validate:"gte=0"`
	DriftPct     float64   `yaml:"drift_pct" validate:"gte=0"`
}

// CrackImpact carries optional per-leg impacts plus global multipliers.
type CrackImpact struct {
	Crude                *LegImpact `yaml:"crude"`
	Gasoline             *LegImpact `yaml:"gasoline"`
	Diesel               *LegImpact `yaml:"diesel"`
	VolatilityMultiplier float64    `yaml:"volatility_multiplier" validate:"gte=1" default:"1"`
	NoiseAmplifier       float64    `yaml:"noise_amplifier" validate:"gte=1" default:"1"`
}

// CrackConfig switches a scenario to the three-product crack engine.
type CrackConfig struct {
	CrudeStart    float64 `yaml:"crude_start" validate:"gt=0"`
	GasolineStart float64 `yaml:"gasoline_start" validate:"gt=0"`
	DieselStart   float64 `yaml:"diesel_start" validate:"gt=0"`
	CrudeFloor    float64 `yaml:"crude_floor" default:"10"`
	GasolineFloor float64 `yaml:"gasoline_floor" default:"10"`
	DieselFloor   float64 `yaml:"diesel_floor" default:"10"`
	ShockVol      float64 `yaml:"shock_vol" default:"0.004"`
}

// Scenario is the static definition a simulation session runs against.
type Scenario struct {
	Name        string           `yaml:"name" validate:"required"`
	Description string           `yaml:"description"`
	StartPrice  float64          `yaml:"start_price" validate:"gt=0"`
	MinPrice    float64          `yaml:"min_price" default:"1"`
	MaxPrice    float64          `yaml:"max_price" default:"10000"`
	TotalTicks  int              `yaml:"total_ticks" validate:"gt=0"`
	TicksPerDay int              `yaml:"ticks_per_day" default:"390"`
	AnnualVol   float64          `yaml:"annual_vol" default:"0.35"`
	MeanRevSpeed float64         `yaml:"mean_reversion_speed" default:"2.0"`
	TicksPerCandle int           `yaml:"ticks_per_candle" default:"5"`
	Spread      float64          `yaml:"spread" default:"0.04"`
	LotSize     float64          `yaml:"lot_size" default:"1000"`
	VarLimit    float64          `yaml:"var_limit" default:"250000"`
	DailyVolPct float64          `yaml:"daily_vol_pct" default:"0.02"`
	Events      []ScheduledEvent `yaml:"events" validate:"dive"`
	NoisePools  []NoisePool      `yaml:"noise_pools" validate:"dive"`
	Crack       *CrackConfig     `yaml:"crack"`
}
