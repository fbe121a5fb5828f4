package scenario

import (
	"os"
	"path/filepath"
	"testing"

	"OilSim/internal/domain/models"
)

func TestBuiltinScenarioValid(t *testing.T) {
	sc := Builtin()
	if sc.Name != "first-week" {
		t.Errorf("builtin name = %q, want first-week", sc.Name)
	}
	if sc.TicksPerDay != 390 || sc.LotSize != 1000 {
		t.Errorf("defaults not applied: ticks_per_day=%d lot_size=%.0f", sc.TicksPerDay, sc.LotSize)
	}
	if len(sc.Events) == 0 {
		t.Error("builtin scenario has no events")
	}
}

func TestLoadEmptyDirKeepsBuiltin(t *testing.T) {
	lib, err := Load(t.TempDir())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if _, ok := lib.Get("first-week"); !ok {
		t.Error("builtin scenario missing from empty-dir library")
	}
}

func TestLoadMissingDirIsNotFatal(t *testing.T) {
	lib, err := Load(filepath.Join(t.TempDir(), "does-not-exist"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(lib.Names()) != 1 {
		t.Errorf("names = %v, want just the builtin", lib.Names())
	}
}

func TestLoadParsesYAMLWithDefaults(t *testing.T) {
	dir := t.TempDir()
	doc := []byte(`
name: squeeze
start_price: 50
total_ticks: 100
events:
  - tick: 10
    headline: "Pipeline outage halts exports"
    impact:
      direction: 1
      immediate_pct: 0.02
      drift_decay_ticks: 5
`)
	if err := os.WriteFile(filepath.Join(dir, "squeeze.yaml"), doc, 0o644); err != nil {
		t.Fatal(err)
	}

	lib, err := Load(dir)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	sc, ok := lib.Get("squeeze")
	if !ok {
		t.Fatalf("scenario squeeze not loaded; have %v", lib.Names())
	}
	if sc.StartPrice != 50 || sc.TotalTicks != 100 {
		t.Errorf("parsed start=%.2f ticks=%d, want 50/100", sc.StartPrice, sc.TotalTicks)
	}
	if sc.TicksPerDay != 390 || sc.AnnualVol != 0.35 || sc.TicksPerCandle != 5 {
		t.Errorf("defaults not applied: %+v", sc)
	}
	if sc.Events[0].Impact.Direction != models.DirectionUp {
		t.Errorf("event direction = %d, want up", sc.Events[0].Impact.Direction)
	}
	if sc.Events[0].Impact.VolatilityMultiplier != 1 {
		t.Errorf("volatility multiplier default = %.2f, want 1", sc.Events[0].Impact.VolatilityMultiplier)
	}
}

func TestLoadRejectsInvalidScenario(t *testing.T) {
	cases := []struct {
		name string
		doc  string
	}{
		{"missing name", "start_price: 50\ntotal_ticks: 100\n"},
		{"zero ticks", "name: x\nstart_price: 50\ntotal_ticks: 0\n"},
		{"start below min", "name: x\nstart_price: 5\nmin_price: 10\ntotal_ticks: 100\n"},
		{"min above max", "name: x\nstart_price: 50\nmin_price: 90\nmax_price: 60\ntotal_ticks: 100\n"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			dir := t.TempDir()
			if err := os.WriteFile(filepath.Join(dir, "bad.yaml"), []byte(tc.doc), 0o644); err != nil {
				t.Fatal(err)
			}
			if _, err := Load(dir); err == nil {
				t.Error("expected error, got nil")
			}
		})
	}
}

func TestValidateCrackSection(t *testing.T) {
	sc := &models.Scenario{
		Name:       "crack",
		StartPrice: 80,
		TotalTicks: 100,
		Crack: &models.CrackConfig{
			CrudeStart:    80,
			GasolineStart: 95,
			DieselStart:   98,
		},
	}
	if err := Validate(sc); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if sc.Crack.ShockVol != 0.004 {
		t.Errorf("shock vol default = %v, want 0.004", sc.Crack.ShockVol)
	}
	if sc.Crack.CrudeFloor != 10 {
		t.Errorf("crude floor default = %v, want 10", sc.Crack.CrudeFloor)
	}
}
