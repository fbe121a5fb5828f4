package models

// Candle aggregates a fixed window of consecutive ticks.
type Candle struct {
	Open  float64 `json:"open"`
	High  float64 `json:"high"`
	Low   float64 `json:"low"`
	Close float64 `json:"close"`
	Time  int     `json:"time"` // tick at which the candle was sealed
}

// Quote is the tradable market state after a tick. Spread is paid on the
// way in: buys fill at Ask, sells at Bid.
type Quote struct {
	Price float64 `json:"price"`
	Bid   float64 `json:"bid"`
	Ask   float64 `json:"ask"`
	Tick  int     `json:"tick"`
}

// TickResult is what the price process returns from one tick advance.
type TickResult struct {
	Quote
	NewCandle *Candle `json:"candle,omitempty"`
}

// MomentumData is a read-only telemetry view over the price process.
type MomentumData struct {
	TotalDriftTicks       int     `json:"total_drift_ticks"`
	LongestDriftTicks     int     `json:"longest_drift_ticks"`
	NetDriftDirection     int     `json:"net_drift_direction"`
	VolatilityMultiplier  float64 `json:"volatility_multiplier"`
	NoiseAmplifier        float64 `json:"noise_amplifier"`
	MeanReversionPressure float64 `json:"mean_reversion_pressure"`
}

// CrackQuotes are the derived spread instruments of the crack engine,
// rounded to cents. Crack321 is (2*gasoline + diesel)/3 - crude.
type CrackQuotes struct {
	Crude         float64 `json:"crude"`
	Gasoline      float64 `json:"gasoline"`
	Diesel        float64 `json:"diesel"`
	GasolineCrack float64 `json:"gasoline_crack"`
	DieselCrack   float64 `json:"diesel_crack"`
	Crack321      float64 `json:"crack_321"`
}

// NewsItem is a fired headline, either an impact event or pool noise.
// Direction is zero for noise.
type NewsItem struct {
	Tick      int       `json:"tick"`
	Category  string    `json:"category,omitempty"`
	Headline  string    `json:"headline"`
	Detail    string    `json:"detail,omitempty"`
	Direction Direction `json:"direction"`
	Impactful bool      `json:"impactful"`
}
