package catalog

import (
	"os"
	"path/filepath"
	"slices"
	"testing"

	"github.com/lawnchairsociety/floorpop/internal/dice"
)

func testContent() Content {
	return Content{
		Creatures: map[string]CreatureTemplate{
			"goblin":       {Name: "Goblin", Type: "goblinoid", Threat: 2},
			"goblin_chief": {Name: "Goblin Chief", Type: "goblinoid", Threat: 5},
		},
		Items: map[string]ItemTemplate{
			"dagger":    {Rarity: Common, Value: 2},
			"longbow":   {Rarity: Uncommon, Value: 4, Ranged: true},
			"moonblade": {Rarity: Rare, Value: 9, MinDepth: 5},
		},
		Themes: map[string]FactionTheme{
			"goblinoid": {Name: "Goblin Warband", Creatures: []string{"goblin", "goblin_chief", "missing"}, MinDepth: 1, MaxDepth: 4},
			"undead":    {Creatures: []string{}, MinDepth: 3},
		},
		Encounters: map[string]EncounterTemplate{
			"warband": {
				Type:      EncounterLair,
				MinBudget: 5,
				MaxBudget: 8,
				Slots: []EncounterSlot{
					{Role: "leader", Count: dice.Flat(1)},
					{Role: "minion", Count: dice.Range(2, 3), ThreatMultiplier: 0.5},
				},
			},
		},
		Floors: []FloorSpawnConfig{
			{Depth: 5, PowerBudget: dice.Flat(40)},
			{Depth: 1, PowerBudget: dice.Flat(20), Themes: map[string]float64{"goblinoid": 3, "ghost": 1}},
		},
	}
}

func TestBuild(t *testing.T) {
	cat, err := Build(testContent())
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	goblin, ok := cat.Creature("goblin")
	if !ok {
		t.Fatal("expected goblin to be present")
	}
	if goblin.ID != "goblin" {
		t.Errorf("expected ID to be filled from key, got %q", goblin.ID)
	}

	theme, _ := cat.Theme("goblinoid")
	if len(theme.Creatures) != 2 {
		t.Errorf("expected dangling member to be dropped, got %v", theme.Creatures)
	}

	undead, _ := cat.Theme("undead")
	if undead.Name != "undead" {
		t.Errorf("expected name to default to id, got %q", undead.Name)
	}

	warband, _ := cat.Encounter("warband")
	if warband.Slots[0].ThreatMultiplier != 1 {
		t.Errorf("expected default multiplier 1, got %g", warband.Slots[0].ThreatMultiplier)
	}
	if warband.Slots[1].ThreatMultiplier != 0.5 {
		t.Errorf("expected multiplier 0.5 to be kept, got %g", warband.Slots[1].ThreatMultiplier)
	}

	floor, _ := cat.FloorConfig(1)
	if _, ok := floor.Themes["ghost"]; ok {
		t.Error("expected unknown theme to be dropped from floor table")
	}
	if floor.ExitID != DefaultExitID || floor.ObjectiveID != DefaultObjectiveID {
		t.Errorf("expected default entity ids, got exit=%q objective=%q", floor.ExitID, floor.ObjectiveID)
	}
	if floor.RarityWeights != DefaultRarityWeights() {
		t.Errorf("expected default rarity weights, got %+v", floor.RarityWeights)
	}
}

func TestBuildRejectsInvalidContent(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Content)
	}{
		{"negative threat", func(c *Content) {
			c.Creatures["bad"] = CreatureTemplate{Threat: -1}
		}},
		{"no slots", func(c *Content) {
			c.Encounters["empty"] = EncounterTemplate{MaxBudget: 3}
		}},
		{"inverted budget", func(c *Content) {
			c.Encounters["inverted"] = EncounterTemplate{MinBudget: 9, MaxBudget: 3, Slots: []EncounterSlot{{Role: "x"}}}
		}},
		{"duplicate depth", func(c *Content) {
			c.Floors = append(c.Floors, FloorSpawnConfig{Depth: 1})
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			content := testContent()
			tt.mutate(&content)
			if _, err := Build(content); err == nil {
				t.Error("expected Build to fail")
			}
		})
	}
}

func TestFloorConfigFallsBackToShallowerDepth(t *testing.T) {
	cat, err := Build(testContent())
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		depth     int
		wantDepth int
		wantOK    bool
	}{
		{0, 0, false},
		{1, 1, true},
		{3, 1, true},
		{5, 5, true},
		{12, 5, true},
	}
	for _, tt := range tests {
		fc, ok := cat.FloorConfig(tt.depth)
		if ok != tt.wantOK {
			t.Errorf("FloorConfig(%d) ok = %v, want %v", tt.depth, ok, tt.wantOK)
			continue
		}
		if ok && fc.Depth != tt.wantDepth {
			t.Errorf("FloorConfig(%d) depth = %d, want %d", tt.depth, fc.Depth, tt.wantDepth)
		}
	}
}

func TestFloorUniquesAreDeduplicated(t *testing.T) {
	content := testContent()
	content.Floors[1].Uniques = []string{"goblin_chief", "ghost", "goblin_chief", "goblin"}

	cat, err := Build(content)
	if err != nil {
		t.Fatal(err)
	}
	fc, ok := cat.FloorConfig(1)
	if !ok {
		t.Fatal("expected floor config for depth 1")
	}
	want := []string{"goblin_chief", "goblin"}
	if !slices.Equal(fc.Uniques, want) {
		t.Errorf("Uniques = %v, want %v", fc.Uniques, want)
	}
}

func TestListings(t *testing.T) {
	cat, err := Build(testContent())
	if err != nil {
		t.Fatal(err)
	}

	themes := cat.Themes()
	if len(themes) != 2 || themes[0].ID != "goblinoid" || themes[1].ID != "undead" {
		t.Errorf("Themes() not sorted by id: %+v", themes)
	}

	if got := cat.ThemesForDepth(2); len(got) != 1 || got[0].ID != "goblinoid" {
		t.Errorf("ThemesForDepth(2) = %+v", got)
	}
	if got := cat.ThemesForDepth(6); len(got) != 1 || got[0].ID != "undead" {
		t.Errorf("ThemesForDepth(6) = %+v", got)
	}

	if got := cat.ItemsByRarity(Rare, 3); len(got) != 0 {
		t.Errorf("moonblade should be gated by depth, got %+v", got)
	}
	if got := cat.ItemsByRarity(Rare, 5); len(got) != 1 {
		t.Errorf("expected moonblade at depth 5, got %+v", got)
	}
}

func TestParseHelpers(t *testing.T) {
	if et, ok := ParseEncounterType("Ambush"); !ok || et != EncounterAmbush {
		t.Errorf("ParseEncounterType(Ambush) = %v, %v", et, ok)
	}
	if et, ok := ParseEncounterType("picnic"); ok || et != EncounterWandering {
		t.Errorf("unknown encounter type should default to wandering, got %v, %v", et, ok)
	}
	if p, ok := ParsePlacement("formation"); !ok || p != PlacementFormation {
		t.Errorf("ParsePlacement(formation) = %v, %v", p, ok)
	}
	if r, ok := ParseRarity("EPIC"); !ok || r != Epic {
		t.Errorf("ParseRarity(EPIC) = %v, %v", r, ok)
	}
	if a, ok := ParseArchetype("nonsense"); ok || a != Warrior {
		t.Errorf("unknown archetype should default to warrior, got %v, %v", a, ok)
	}
}

func TestArchetypeSet(t *testing.T) {
	s := NewArchetypeSet(Tank, Ranged)
	if !s.Has(Tank) || !s.Has(Ranged) || s.Has(Scout) {
		t.Errorf("unexpected membership: %s", s)
	}
	if s.Len() != 2 {
		t.Errorf("Len() = %d, want 2", s.Len())
	}
	if s.String() != "tank+ranged" {
		t.Errorf("String() = %q", s.String())
	}
}

func TestLoadDir(t *testing.T) {
	dir := t.TempDir()
	files := map[string]string{
		CreaturesFile: `
creatures:
  goblin:
    name: Goblin
    threat: 2
    stats: {strength: 10, dexterity: 14, constitution: 9, intelligence: 8}
    behaviors: [cowardly]
  orc_archer:
    name: Orc Archer
    threat: 4
    equipment: [shortbow]
`,
		ItemsFile: `
items:
  shortbow:
    rarity: uncommon
    value: 3
    ranged: true
`,
		ThemesFile: `
themes:
  goblinoid:
    name: Goblinoid Horde
    creatures: [goblin, orc_archer]
    min_depth: 1
`,
		EncountersFile: `
encounters:
  ambush_party:
    type: ambush
    min_area: 12
    min_budget: 4
    max_budget: 10
    prefer_edges: true
    ai:
      protect_leader: true
    slots:
      - role: scout
        count: 1d2
        archetypes: [scout, ranged]
        placement: edge
`,
		// floors.yaml intentionally absent
	}
	for name, body := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(body), 0644); err != nil {
			t.Fatal(err)
		}
	}

	cat, err := LoadDir(dir)
	if err != nil {
		t.Fatalf("LoadDir failed: %v", err)
	}

	goblin, ok := cat.Creature("goblin")
	if !ok || goblin.Stats.Dexterity != 14 || !goblin.HasBehavior("cowardly") {
		t.Errorf("goblin not loaded correctly: %+v", goblin)
	}

	bow, _ := cat.Item("shortbow")
	if bow.Rarity != Uncommon || !bow.Ranged {
		t.Errorf("shortbow not loaded correctly: %+v", bow)
	}

	enc, ok := cat.Encounter("ambush_party")
	if !ok {
		t.Fatal("expected ambush_party encounter")
	}
	if enc.Type != EncounterAmbush || !enc.PreferEdges || !enc.AI.ProtectLeader {
		t.Errorf("encounter not loaded correctly: %+v", enc)
	}
	slot := enc.Slots[0]
	if slot.Count.Min() != 1 || slot.Count.Max() != 2 {
		t.Errorf("slot count = [%d,%d], want [1,2]", slot.Count.Min(), slot.Count.Max())
	}
	if slot.Placement != PlacementEdge || len(slot.Archetypes) != 2 || slot.Archetypes[1] != Ranged {
		t.Errorf("slot not loaded correctly: %+v", slot)
	}

	if _, ok := cat.FloorConfig(1); ok {
		t.Error("expected no floor configs when floors.yaml is absent")
	}
}

func TestLoadDirInvalidYAML(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, ThemesFile), []byte("themes: [broken"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadDir(dir); err == nil {
		t.Error("expected error for unparseable file")
	}
}
