package director

// Scenario is the static presentation script: which visual is active when,
// how palettes rotate, and which text blocks reveal at which time.
type Scenario struct {
	Version  string       `yaml:"version"`
	Audio    string       `yaml:"audio,omitempty"`   // Track the cue times are aligned to
	Schedule []Cue        `yaml:"schedule"`          // Ordered by Start, first cue at 0
	Palettes PaletteCycle `yaml:"palettes"`          // Randomised palette rotation
	Reveals  []Reveal     `yaml:"reveals,omitempty"` // Timed text blocks
}

// Cue activates a visual at a given offset into the track.
type Cue struct {
	ID    string  `yaml:"id"`
	Start float64 `yaml:"start"` // Seconds
}

// PaletteCycle re-rolls the active palette every Interval seconds.
type PaletteCycle struct {
	Interval float64  `yaml:"interval"` // Seconds
	Set      []string `yaml:"set"`
}

// Reveal is a text block that becomes visible at Trigger and types itself in
// over Duration seconds.
type Reveal struct {
	Name     string  `yaml:"name"`
	Trigger  float64 `yaml:"trigger"`
	Text     string  `yaml:"text"`
	Duration float64 `yaml:"duration"`
	Image    *Image  `yaml:"image,omitempty"`
}

// Image is shown under a reveal block from its own trigger time on.
type Image struct {
	Trigger float64 `yaml:"trigger"`
	Path    string  `yaml:"path,omitempty"`
	QR      string  `yaml:"qr,omitempty"` // Rendered as a QR code when Path is empty
}

// DefaultPalettes is the palette set used when a scenario names none.
var DefaultPalettes = []string{
	"rose", "lavender", "sunset", "aurora", "ocean", "ember", "mint", "noir",
}

// DefaultScenario returns the built-in presentation script.
func DefaultScenario() *Scenario {
	return &Scenario{
		Version: "1.0",
		Schedule: []Cue{
			{ID: "cube", Start: 0},
			{ID: "grid", Start: 31},
			{ID: "sphere", Start: 62},
			{ID: "diffusedRing", Start: 90},
			{ID: "movingBoxes", Start: 121},
			{ID: "dna", Start: 150},
			{ID: "ribbons", Start: 180},
			{ID: "treadmill", Start: 210},
			{ID: "swarm", Start: 240},
		},
		Palettes: PaletteCycle{
			Interval: 15,
			Set:      append([]string(nil), DefaultPalettes...),
		},
		Reveals: []Reveal{
			{Name: "date", Trigger: 30, Text: "October 21, 2026", Duration: 17},
			{Name: "location", Trigger: 60, Text: "New York: Madison Square Garden", Duration: 17},
			{
				Name:     "event",
				Trigger:  121,
				Text:     "Harry Styles: TOGETHER, TOGETHER",
				Duration: 15,
				// Image follows once the text has fully typed in (121 + 15).
				Image: &Image{Trigger: 136, QR: "Harry Styles: TOGETHER, TOGETHER"},
			},
		},
	}
}

// VisualIDs lists the cue ids in schedule order.
func (s *Scenario) VisualIDs() []string {
	ids := make([]string, len(s.Schedule))
	for i, c := range s.Schedule {
		ids[i] = c.ID
	}
	return ids
}
