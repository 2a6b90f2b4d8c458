package director

import (
	"errors"
	"fmt"
	"math"
	"os"

	"gopkg.in/yaml.v3"
)

// ErrScheduleMisconfigured is returned for scenarios that cannot drive a
// presentation. It is always wrapped with the concrete reason.
var ErrScheduleMisconfigured = errors.New("schedule misconfigured")

// WriteScenario writes a scenario to a YAML file
func WriteScenario(scenario *Scenario, path string) error {
	data, err := yaml.Marshal(scenario)
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// ReadScenario reads a scenario from a YAML file and validates it.
func ReadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var scenario Scenario
	if err := yaml.Unmarshal(data, &scenario); err != nil {
		return nil, fmt.Errorf("parse scenario %s: %w", path, err)
	}

	if len(scenario.Palettes.Set) == 0 {
		scenario.Palettes.Set = append([]string(nil), DefaultPalettes...)
	}

	if err := scenario.Validate(); err != nil {
		return nil, err
	}

	return &scenario, nil
}

// Validate checks the invariants the timeline engine relies on.
func (s *Scenario) Validate() error {
	if len(s.Schedule) == 0 {
		return fmt.Errorf("%w: empty schedule", ErrScheduleMisconfigured)
	}
	if s.Schedule[0].Start != 0 {
		return fmt.Errorf("%w: first cue %q starts at %.3fs, want 0", ErrScheduleMisconfigured, s.Schedule[0].ID, s.Schedule[0].Start)
	}
	for i, c := range s.Schedule {
		if c.ID == "" {
			return fmt.Errorf("%w: cue %d has no id", ErrScheduleMisconfigured, i)
		}
		if !finite(c.Start) {
			return fmt.Errorf("%w: cue %q has non-finite start", ErrScheduleMisconfigured, c.ID)
		}
		if i > 0 && c.Start <= s.Schedule[i-1].Start {
			return fmt.Errorf("%w: cue %q at %.3fs does not follow %q at %.3fs",
				ErrScheduleMisconfigured, c.ID, c.Start, s.Schedule[i-1].ID, s.Schedule[i-1].Start)
		}
	}

	if !(s.Palettes.Interval > 0) || !finite(s.Palettes.Interval) {
		return fmt.Errorf("%w: palette interval must be positive", ErrScheduleMisconfigured)
	}
	if len(s.Palettes.Set) == 0 {
		return fmt.Errorf("%w: empty palette set", ErrScheduleMisconfigured)
	}

	seen := make(map[string]struct{}, len(s.Reveals))
	for i, r := range s.Reveals {
		if r.Name == "" {
			return fmt.Errorf("%w: reveal %d has no name", ErrScheduleMisconfigured, i)
		}
		if _, dup := seen[r.Name]; dup {
			return fmt.Errorf("%w: duplicate reveal %q", ErrScheduleMisconfigured, r.Name)
		}
		seen[r.Name] = struct{}{}
		if r.Trigger < 0 || !finite(r.Trigger) {
			return fmt.Errorf("%w: reveal %q has invalid trigger", ErrScheduleMisconfigured, r.Name)
		}
		if r.Duration < 0 || !finite(r.Duration) {
			return fmt.Errorf("%w: reveal %q has negative duration", ErrScheduleMisconfigured, r.Name)
		}
		if r.Image != nil && (r.Image.Trigger < 0 || !finite(r.Image.Trigger)) {
			return fmt.Errorf("%w: image of reveal %q has invalid trigger", ErrScheduleMisconfigured, r.Name)
		}
	}

	return nil
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
