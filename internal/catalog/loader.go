package catalog

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/lawnchairsociety/floorpop/internal/logger"
	"gopkg.in/yaml.v3"
)

// File names read by LoadDir.
const (
	CreaturesFile  = "creatures.yaml"
	ItemsFile      = "items.yaml"
	ThemesFile     = "themes.yaml"
	EncountersFile = "encounters.yaml"
	FloorsFile     = "floors.yaml"
)

// CreaturesConfig represents the structure of creatures.yaml
type CreaturesConfig struct {
	Creatures map[string]CreatureTemplate `yaml:"creatures"`
}

// ItemsConfig represents the structure of items.yaml
type ItemsConfig struct {
	Items map[string]ItemTemplate `yaml:"items"`
}

// ThemesConfig represents the structure of themes.yaml
type ThemesConfig struct {
	Themes map[string]FactionTheme `yaml:"themes"`
}

// EncountersConfig represents the structure of encounters.yaml
type EncountersConfig struct {
	Encounters map[string]EncounterTemplate `yaml:"encounters"`
}

// FloorsConfig represents the structure of floors.yaml
type FloorsConfig struct {
	Floors []FloorSpawnConfig `yaml:"floors"`
}

// LoadDir reads every catalog file in dir and builds a Catalog.
// A missing file is treated as an empty table.
func LoadDir(dir string) (*Catalog, error) {
	var (
		creatures  CreaturesConfig
		items      ItemsConfig
		themes     ThemesConfig
		encounters EncountersConfig
		floors     FloorsConfig
	)

	files := []struct {
		name string
		dst  any
	}{
		{CreaturesFile, &creatures},
		{ItemsFile, &items},
		{ThemesFile, &themes},
		{EncountersFile, &encounters},
		{FloorsFile, &floors},
	}
	for _, f := range files {
		if err := loadYAML(filepath.Join(dir, f.name), f.dst); err != nil {
			return nil, err
		}
	}

	cat, err := Build(Content{
		Creatures:  creatures.Creatures,
		Items:      items.Items,
		Themes:     themes.Themes,
		Encounters: encounters.Encounters,
		Floors:     floors.Floors,
	})
	if err != nil {
		return nil, fmt.Errorf("invalid catalog in %s: %w", dir, err)
	}

	logger.Info("Catalog loaded",
		"dir", dir,
		"creatures", len(cat.creatureIDs),
		"items", len(cat.itemIDs),
		"themes", len(cat.themeIDs),
		"encounters", len(cat.encounterIDs),
		"floors", len(cat.floors))
	return cat, nil
}

func loadYAML(path string, dst any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			logger.Warning("Catalog file not found, using empty table", "file", path)
			return nil
		}
		return fmt.Errorf("failed to read %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, dst); err != nil {
		return fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return nil
}
