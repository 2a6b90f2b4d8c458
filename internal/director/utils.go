package director

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// ScenariosDir is where generated scenarios are written and looked up.
const ScenariosDir = "scenarios"

// GenerateScenarioPath creates a timestamped scenario filename
func GenerateScenarioPath() string {
	timestamp := time.Now().Format("2006-01-02_15-04-05")
	return filepath.Join(ScenariosDir, fmt.Sprintf("scenario_%s.yaml", timestamp))
}

// FindLatestScenario finds the most recent scenario file in dir
func FindLatestScenario(dir string) (string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", fmt.Errorf("failed to read scenarios directory: %w", err)
	}

	type candidate struct {
		path string
		mod  time.Time
	}
	var scenarios []candidate
	for _, entry := range entries {
		name := strings.ToLower(entry.Name())
		if entry.IsDir() || !(strings.HasSuffix(name, ".yaml") || strings.HasSuffix(name, ".yml")) {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		scenarios = append(scenarios, candidate{path: filepath.Join(dir, entry.Name()), mod: info.ModTime()})
	}

	if len(scenarios) == 0 {
		return "", fmt.Errorf("no scenario files found in %s", dir)
	}

	// Newest first
	sort.Slice(scenarios, func(i, j int) bool {
		return scenarios[i].mod.After(scenarios[j].mod)
	})

	return scenarios[0].path, nil
}

// LoadScenario reads path if set, else the newest scenario in ScenariosDir,
// else falls back to the built-in scenario. The returned string names what
// was loaded.
func LoadScenario(path string) (*Scenario, string, error) {
	if path == "" {
		latest, err := FindLatestScenario(ScenariosDir)
		if err != nil {
			return DefaultScenario(), "built-in", nil
		}
		path = latest
	}

	scenario, err := ReadScenario(path)
	if err != nil {
		return nil, path, err
	}
	return scenario, path, nil
}
