// Package scenario loads and validates simulation scenario definitions.
package scenario

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"OilSim/internal/domain/models"

	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

var validate = validator.New()

// Library holds the loaded scenario catalog, keyed by name.
type Library struct {
	scenarios map[string]*models.Scenario
}

// Load reads every *.yaml scenario in dir and adds the built-in scenario.
// An empty dir (or empty string) leaves just the built-in one, so the
// service always has something to run.
func Load(dir string) (*Library, error) {
	lib := &Library{scenarios: map[string]*models.Scenario{}}

	builtin := Builtin()
	lib.scenarios[builtin.Name] = builtin

	if dir == "" {
		return lib, nil
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return lib, nil
		}
		return nil, fmt.Errorf("read scenario dir: %w", err)
	}

	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".yaml") {
			continue
		}
		sc, err := parseFile(filepath.Join(dir, e.Name()))
		if err != nil {
			return nil, fmt.Errorf("scenario %s: %w", e.Name(), err)
		}
		lib.scenarios[sc.Name] = sc
	}
	return lib, nil
}

func parseFile(path string) (*models.Scenario, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read: %w", err)
	}
	var sc models.Scenario
	if err := yaml.Unmarshal(b, &sc); err != nil {
		return nil, fmt.Errorf("parse: %w", err)
	}
	if err := Validate(&sc); err != nil {
		return nil, err
	}
	return &sc, nil
}

// Validate applies defaults and checks a scenario definition. Invalid
// configuration fails here, at load time, rather than surfacing deep inside
// the simulation.
func Validate(sc *models.Scenario) error {
	if err := defaults.Set(sc); err != nil {
		return fmt.Errorf("defaults: %w", err)
	}
	if err := validate.Struct(sc); err != nil {
		return fmt.Errorf("validate: %w", err)
	}
	if sc.MinPrice > sc.MaxPrice {
		return fmt.Errorf("validate: min_price %.2f above max_price %.2f", sc.MinPrice, sc.MaxPrice)
	}
	if sc.StartPrice < sc.MinPrice || sc.StartPrice > sc.MaxPrice {
		return fmt.Errorf("validate: start_price %.2f outside [%.2f, %.2f]", sc.StartPrice, sc.MinPrice, sc.MaxPrice)
	}
	return nil
}

// Get returns a scenario by name.
func (l *Library) Get(name string) (*models.Scenario, bool) {
	sc, ok := l.scenarios[name]
	return sc, ok
}

// Names lists the catalog, sorted.
func (l *Library) Names() []string {
	out := make([]string, 0, len(l.scenarios))
	for name := range l.scenarios {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Builtin is the embedded default scenario: one trading week of WTI with a
// supply shock, an inventory surprise and a demand scare.
func Builtin() *models.Scenario {
	sc := &models.Scenario{
		Name:        "first-week",
		Description: "A first week on the crude desk: OPEC chatter, an inventory surprise and a demand scare.",
		StartPrice:  78.50,
		MinPrice:    40,
		MaxPrice:    160,
		TotalTicks:  300,
		Events: []models.ScheduledEvent{
			{
				Tick:     40,
				Category: "supply",
				Headline: "OPEC+ surprises with deeper production cut",
				Detail:   "The group extends voluntary cuts by another 500k bbl/d through year end.",
				Impact: models.EventImpact{
					Direction:            models.DirectionUp,
					ImmediatePct:         0.03,
					DriftPct:             0.02,
					DriftDecayTicks:      25,
					VolatilityMultiplier: 1.6,
					NoiseAmplifier:       1.3,
				},
			},
			{
				Tick:     120,
				Category: "inventory",
				Headline: "EIA reports unexpected crude build",
				Detail:   "Commercial stocks rose 6.1m barrels against a forecast draw.",
				Impact: models.EventImpact{
					Direction:            models.DirectionDown,
					ImmediatePct:         0.025,
					DriftPct:             0.015,
					DriftDecayTicks:      20,
					VolatilityMultiplier: 1.4,
					NoiseAmplifier:       1.2,
				},
			},
			{
				Tick:     210,
				Category: "demand",
				Headline: "Weak manufacturing data stokes demand fears",
				Detail:   "PMIs contracted across three major importers for a second month.",
				Impact: models.EventImpact{
					Direction:            models.DirectionDown,
					ImmediatePct:         0.02,
					DriftPct:             0.025,
					DriftDecayTicks:      30,
					VolatilityMultiplier: 1.5,
					NoiseAmplifier:       1.4,
				},
			},
		},
		NoisePools: []models.NoisePool{
			{
				From:      1,
				To:        300,
				Frequency: 35,
				Pool: []string{
					"Tanker tracker notes routine loadings at Ras Tanura",
					"Refinery maintenance season proceeding as planned",
					"Desk chatter: flows quiet ahead of the weekly stats",
					"Pipeline operator reports normal throughput",
				},
			},
		},
	}
	if err := Validate(sc); err != nil {
		// The built-in scenario is compiled in; failing validation is a bug.
		panic(fmt.Sprintf("builtin scenario invalid: %v", err))
	}
	return sc
}
