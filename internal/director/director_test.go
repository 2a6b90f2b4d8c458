package director

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDirector(t *testing.T) {
	director := NewDirector()

	scenario, err := director.GenerateScenario([]string{"cube", "grid", "sphere"}, "hs.mp3", 90.0)
	require.NoError(t, err)

	assert.Equal(t, "1.0", scenario.Version)
	assert.Equal(t, "hs.mp3", scenario.Audio)
	require.Len(t, scenario.Schedule, 3)
	assert.Equal(t, Cue{ID: "cube", Start: 0}, scenario.Schedule[0])
	assert.Equal(t, Cue{ID: "grid", Start: 30}, scenario.Schedule[1])
	assert.Equal(t, Cue{ID: "sphere", Start: 60}, scenario.Schedule[2])
	assert.Equal(t, 15.0, scenario.Palettes.Interval)
	assert.NotEmpty(t, scenario.Palettes.Set)
}

func TestDirectorDropsVisualsPastTrackEnd(t *testing.T) {
	director := NewDirector()
	director.MinDwell = 10

	scenario, err := director.GenerateScenario([]string{"a", "b", "c", "d"}, "", 25.0)
	require.NoError(t, err)

	ids := make([]string, 0, len(scenario.Schedule))
	for _, c := range scenario.Schedule {
		ids = append(ids, c.ID)
	}
	assert.Equal(t, []string{"a", "b", "c"}, ids)
}

func TestDirectorRejectsEmptyInput(t *testing.T) {
	director := NewDirector()

	_, err := director.GenerateScenario(nil, "", 10)
	assert.Error(t, err)

	_, err = director.GenerateScenario([]string{"cube"}, "", 0)
	assert.Error(t, err)
}

func TestScenarioWriteRead(t *testing.T) {
	scenario := DefaultScenario()

	tmpFile := filepath.Join(t.TempDir(), "scenario.yaml")
	require.NoError(t, WriteScenario(scenario, tmpFile))

	readScenario, err := ReadScenario(tmpFile)
	require.NoError(t, err)

	assert.Equal(t, scenario.Version, readScenario.Version)
	assert.Equal(t, scenario.Schedule, readScenario.Schedule)
	require.Len(t, readScenario.Reveals, 3)
	require.NotNil(t, readScenario.Reveals[2].Image)
	assert.Equal(t, 136.0, readScenario.Reveals[2].Image.Trigger)
}

func TestDefaultScenarioIsValid(t *testing.T) {
	require.NoError(t, DefaultScenario().Validate())
}

func TestVisualIDs(t *testing.T) {
	ids := DefaultScenario().VisualIDs()
	require.Len(t, ids, 9)
	assert.Equal(t, "cube", ids[0])
	assert.Equal(t, "swarm", ids[8])
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(s *Scenario)
	}{
		{"empty schedule", func(s *Scenario) { s.Schedule = nil }},
		{"first cue not at zero", func(s *Scenario) { s.Schedule[0].Start = 1 }},
		{"non increasing starts", func(s *Scenario) { s.Schedule[2].Start = s.Schedule[1].Start }},
		{"missing id", func(s *Scenario) { s.Schedule[1].ID = "" }},
		{"zero interval", func(s *Scenario) { s.Palettes.Interval = 0 }},
		{"empty palette set", func(s *Scenario) { s.Palettes.Set = nil }},
		{"duplicate reveal", func(s *Scenario) { s.Reveals[1].Name = s.Reveals[0].Name }},
		{"negative duration", func(s *Scenario) { s.Reveals[0].Duration = -1 }},
		{"negative image trigger", func(s *Scenario) { s.Reveals[2].Image.Trigger = -5 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := DefaultScenario()
			tt.mutate(s)
			err := s.Validate()
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrScheduleMisconfigured)
		})
	}
}
