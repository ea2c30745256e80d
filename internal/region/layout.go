package region

import (
	"fmt"
	"os"
	"strings"

	"codeberg.org/anaseto/gruid"
	"gopkg.in/yaml.v3"
)

// LayoutYAML is an ASCII floor layout. Every map character found in the
// legend is a walkable tile of the mapped region; anything else is wall.
type LayoutYAML struct {
	Name        string                     `yaml:"name"`
	Entrance    []int                      `yaml:"entrance"` // [x, y]; defaults to the entrance-tagged region
	Legend      map[string]LegendEntryYAML `yaml:"legend"`
	Connections []Connection               `yaml:"connections"`
	Map         string                     `yaml:"map"`
}

// LegendEntryYAML maps one map character to a region.
type LegendEntryYAML struct {
	Region int         `yaml:"region"`
	Tag    string      `yaml:"tag"`
	Hints  []SpawnHint `yaml:"hints"`
}

// LoadLayout loads a floor layout from a YAML file.
func LoadLayout(path string) (*Grid, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read layout file: %w", err)
	}

	var layout LayoutYAML
	if err := yaml.Unmarshal(data, &layout); err != nil {
		return nil, fmt.Errorf("failed to parse layout YAML: %w", err)
	}

	return layout.ToGrid()
}

// ToGrid converts the layout into a Grid provider.
func (ly *LayoutYAML) ToGrid() (*Grid, error) {
	lines := strings.Split(strings.Trim(ly.Map, "\n"), "\n")
	width := 0
	for _, line := range lines {
		width = max(width, len(line))
	}
	if width == 0 {
		return nil, fmt.Errorf("layout %q has an empty map", ly.Name)
	}

	legend := make(map[byte]LegendEntryYAML, len(ly.Legend))
	meta := make(map[int]RegionMeta, len(ly.Legend))
	for key, entry := range ly.Legend {
		if len(key) != 1 {
			return nil, fmt.Errorf("legend key %q must be a single character", key)
		}
		if entry.Region < 0 {
			return nil, fmt.Errorf("legend key %q maps to negative region %d", key, entry.Region)
		}
		legend[key[0]] = entry

		// Several keys may share a region (doors, alcoves); only one may tag it.
		m := meta[entry.Region]
		if entry.Tag != "" {
			if m.Tag != "" && m.Tag != entry.Tag {
				return nil, fmt.Errorf("region %d tagged both %q and %q", entry.Region, m.Tag, entry.Tag)
			}
			m.Tag = entry.Tag
		}
		m.Hints = append(m.Hints, entry.Hints...)
		meta[entry.Region] = m
	}

	size := gruid.Point{X: width, Y: len(lines)}
	ids := make([]int, size.X*size.Y)
	for i := range ids {
		ids[i] = NoRegion
	}
	for y, line := range lines {
		for x := 0; x < len(line); x++ {
			if entry, ok := legend[line[x]]; ok {
				ids[y*size.X+x] = entry.Region
			}
		}
	}

	entrance, err := ly.entrance(size, ids, meta)
	if err != nil {
		return nil, err
	}

	g, err := NewGrid(size, ids, entrance, meta)
	if err != nil {
		return nil, fmt.Errorf("layout %q: %w", ly.Name, err)
	}
	if len(ly.Connections) > 0 {
		g.SetConnections(ly.Connections)
	}
	return g, nil
}

func (ly *LayoutYAML) entrance(size gruid.Point, ids []int, meta map[int]RegionMeta) (gruid.Point, error) {
	if len(ly.Entrance) == 2 {
		return gruid.Point{X: ly.Entrance[0], Y: ly.Entrance[1]}, nil
	}
	if len(ly.Entrance) != 0 {
		return gruid.Point{}, fmt.Errorf("layout %q: entrance must be [x, y]", ly.Name)
	}

	// First tile of the entrance-tagged region, else the first walkable tile.
	first := -1
	for i, id := range ids {
		if id == NoRegion {
			continue
		}
		if first < 0 {
			first = i
		}
		if meta[id].Tag == TagEntrance {
			return gruid.Point{X: i % size.X, Y: i / size.X}, nil
		}
	}
	if first < 0 {
		return gruid.Point{}, fmt.Errorf("layout %q has no walkable tiles", ly.Name)
	}
	return gruid.Point{X: first % size.X, Y: first / size.X}, nil
}
