package director

import (
	"fmt"
	"math"
)

// Director lays out a cue schedule for a list of visuals across a track.
type Director struct {
	MinDwell float64 // Minimum time per visual (seconds)
	MaxDwell float64 // Maximum time per visual (seconds), 0 means unbounded
	Interval float64 // Palette interval written into generated scenarios
}

// NewDirector creates a new Director with default settings
func NewDirector() *Director {
	return &Director{
		MinDwell: 5.0,
		MaxDwell: 0,
		Interval: 15.0,
	}
}

// GenerateScenario spreads visuals evenly across totalDuration, snapping cue
// starts to whole seconds. Visuals that do not fit MinDwell are dropped from
// the tail.
func (d *Director) GenerateScenario(visuals []string, audio string, totalDuration float64) (*Scenario, error) {
	if len(visuals) == 0 {
		return nil, fmt.Errorf("no visuals given")
	}
	if totalDuration <= 0 {
		return nil, fmt.Errorf("invalid duration %.2fs", totalDuration)
	}

	dwell := d.calculateDwellTime(totalDuration, len(visuals))

	cues := make([]Cue, 0, len(visuals))
	for i, id := range visuals {
		start := math.Floor(float64(i) * dwell)
		if i > 0 && start >= totalDuration {
			break
		}
		if len(cues) > 0 && start <= cues[len(cues)-1].Start {
			continue
		}
		cues = append(cues, Cue{ID: id, Start: start})
	}

	scenario := &Scenario{
		Version:  "1.0",
		Audio:    audio,
		Schedule: cues,
		Palettes: PaletteCycle{
			Interval: d.Interval,
			Set:      append([]string(nil), DefaultPalettes...),
		},
	}

	if err := scenario.Validate(); err != nil {
		return nil, err
	}
	return scenario, nil
}

// calculateDwellTime determines how long each visual stays on screen
func (d *Director) calculateDwellTime(totalDuration float64, count int) float64 {
	dwellTime := totalDuration / float64(count)

	if dwellTime < d.MinDwell {
		dwellTime = d.MinDwell
	}
	if d.MaxDwell > 0 && dwellTime > d.MaxDwell {
		dwellTime = d.MaxDwell
	}

	return dwellTime
}
