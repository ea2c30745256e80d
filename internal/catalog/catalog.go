// Package catalog is the read-only content database the allocator draws from:
// creature, item, theme and encounter templates plus per-depth floor configs.
package catalog

import (
	"fmt"
	"slices"
	"sort"

	"github.com/lawnchairsociety/floorpop/internal/dice"
	"github.com/lawnchairsociety/floorpop/internal/logger"
)

// Stats are a creature's four base attributes.
type Stats struct {
	Strength     int `yaml:"strength"`
	Dexterity    int `yaml:"dexterity"`
	Constitution int `yaml:"constitution"`
	Intelligence int `yaml:"intelligence"`
}

// CreatureTemplate describes a spawnable creature.
type CreatureTemplate struct {
	ID           string   `yaml:"-"`
	Name         string   `yaml:"name"`
	Type         string   `yaml:"type"`   // goblin, undead, beast...
	Threat       int      `yaml:"threat"` // difficulty rating consumed from budgets
	Stats        Stats    `yaml:"stats"`
	RangedAttack bool     `yaml:"ranged_attack"`
	Equipment    []string `yaml:"equipment"` // item ids
	Behaviors    []string `yaml:"behaviors"` // "cowardly", "patroller"...
	Unique       bool     `yaml:"unique"`    // only spawned through a floor's unique list
}

// HasBehavior reports whether the creature declares the given behavior tag.
func (c CreatureTemplate) HasBehavior(tag string) bool {
	for _, b := range c.Behaviors {
		if b == tag {
			return true
		}
	}
	return false
}

// ItemTemplate describes a placeable item.
type ItemTemplate struct {
	ID       string `yaml:"-"`
	Name     string `yaml:"name"`
	Rarity   Rarity `yaml:"rarity"`
	Value    int    `yaml:"value"`  // item budget cost, 0 counts as 1
	Ranged   bool   `yaml:"ranged"` // ranged weapon
	MinDepth int    `yaml:"min_depth"`
}

// Cost is the item-budget cost of placing one copy.
func (i ItemTemplate) Cost() int {
	if i.Value <= 0 {
		return 1
	}
	return i.Value
}

// FactionTheme is a named pool of related creatures.
type FactionTheme struct {
	ID        string   `yaml:"-"`
	Name      string   `yaml:"name"`
	Creatures []string `yaml:"creatures"` // ordered member creature ids
	MinDepth  int      `yaml:"min_depth"`
	MaxDepth  int      `yaml:"max_depth"` // 0 = no ceiling
}

// ValidFor reports whether the theme may appear at depth.
func (t FactionTheme) ValidFor(depth int) bool {
	return depth >= t.MinDepth && (t.MaxDepth == 0 || depth <= t.MaxDepth)
}

// AIConfig is the behavior an encounter's members start with.
type AIConfig struct {
	InitialState   string `yaml:"initial_state"`   // empty = encounter type default
	ProtectLeader  bool   `yaml:"protect_leader"`  // members guard the leader
	GeneratePatrol bool   `yaml:"generate_patrol"` // members get patrol waypoints
}

// EncounterSlot is one role-tagged group within an encounter.
type EncounterSlot struct {
	Role             string      `yaml:"role"`
	Count            dice.Expr   `yaml:"count"`
	ThreatMultiplier float64     `yaml:"threat_multiplier"`
	Archetypes       []Archetype `yaml:"archetypes"`
	Placement        Placement   `yaml:"placement"`
}

// EncounterTemplate describes a group of creatures placed together.
type EncounterTemplate struct {
	ID            string          `yaml:"-"`
	Type          EncounterType   `yaml:"type"`
	MinArea       int             `yaml:"min_area"`
	MinBudget     int             `yaml:"min_budget"`
	MaxBudget     int             `yaml:"max_budget"`
	Slots         []EncounterSlot `yaml:"slots"`
	PreferEdges   bool            `yaml:"prefer_edges"`
	PreferredTags []string        `yaml:"preferred_tags"`
	AI            AIConfig        `yaml:"ai"`
}

// PrefersTag reports whether the template favors regions tagged tag.
func (e EncounterTemplate) PrefersTag(tag string) bool {
	if tag == "" {
		return false
	}
	for _, t := range e.PreferredTags {
		if t == tag {
			return true
		}
	}
	return false
}

// RarityWeights weight the rarity bands when picking items.
type RarityWeights struct {
	Common   float64 `yaml:"common"`
	Uncommon float64 `yaml:"uncommon"`
	Rare     float64 `yaml:"rare"`
	Epic     float64 `yaml:"epic"`
}

// Weight returns the weight of band r.
func (w RarityWeights) Weight(r Rarity) float64 {
	switch r {
	case Common:
		return w.Common
	case Uncommon:
		return w.Uncommon
	case Rare:
		return w.Rare
	case Epic:
		return w.Epic
	}
	return 0
}

// WeightedID is one row of a weight table.
type WeightedID struct {
	ID     string
	Weight float64
}

// FloorSpawnConfig holds the population rules for one depth.
type FloorSpawnConfig struct {
	Depth            int                `yaml:"depth"`
	PowerBudget      dice.Expr          `yaml:"power_budget"`
	ItemBudget       dice.Expr          `yaml:"item_budget"`
	GoldBudget       dice.Expr          `yaml:"gold_budget"`
	Themes           map[string]float64 `yaml:"themes"`
	Encounters       map[string]float64 `yaml:"encounters"`
	OutOfDepthChance float64            `yaml:"out_of_depth_chance"`
	OutOfDepthOffset int                `yaml:"out_of_depth_offset"`
	Uniques          []string           `yaml:"uniques"`
	MaxThreat        int                `yaml:"max_threat"` // 0 = derive from theme pools
	MinThreat        int                `yaml:"min_threat"`
	GoldPiles        dice.Expr          `yaml:"gold_piles"`
	RarityWeights    RarityWeights      `yaml:"rarity_weights"`
	Final            bool               `yaml:"final"`
	ExitID           string             `yaml:"exit_id"`
	ObjectiveID      string             `yaml:"objective_id"`
}

// ThemeTable returns the theme weights sorted by id.
func (f FloorSpawnConfig) ThemeTable() []WeightedID {
	return sortedTable(f.Themes)
}

// EncounterTable returns the encounter weights sorted by id.
func (f FloorSpawnConfig) EncounterTable() []WeightedID {
	return sortedTable(f.Encounters)
}

func sortedTable(m map[string]float64) []WeightedID {
	ids := make([]string, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	out := make([]WeightedID, len(ids))
	for i, id := range ids {
		out[i] = WeightedID{ID: id, Weight: m[id]}
	}
	return out
}

// Default entity ids used when a floor config leaves them blank.
const (
	DefaultExitID      = "stairs_down"
	DefaultObjectiveID = "floor_objective"
)

// DefaultRarityWeights favour common items.
func DefaultRarityWeights() RarityWeights {
	return RarityWeights{Common: 60, Uncommon: 25, Rare: 10, Epic: 5}
}

// DefaultFloorConfig is the minimal config substituted when a depth has none.
func DefaultFloorConfig(depth int) FloorSpawnConfig {
	if depth < 1 {
		depth = 1
	}
	return FloorSpawnConfig{
		Depth:            depth,
		PowerBudget:      dice.Flat(8 + 4*depth),
		ItemBudget:       dice.Flat(4 + 2*depth),
		GoldBudget:       dice.Flat(25 * depth),
		GoldPiles:        dice.Range(3, 6),
		OutOfDepthChance: 0.05,
		OutOfDepthOffset: 2,
		RarityWeights:    DefaultRarityWeights(),
		ExitID:           DefaultExitID,
		ObjectiveID:      DefaultObjectiveID,
	}
}

// Content is the raw, unvalidated content handed to Build.
type Content struct {
	Creatures  map[string]CreatureTemplate
	Items      map[string]ItemTemplate
	Themes     map[string]FactionTheme
	Encounters map[string]EncounterTemplate
	Floors     []FloorSpawnConfig
}

// Catalog is an immutable, indexed view of Content.
type Catalog struct {
	creatures  map[string]CreatureTemplate
	items      map[string]ItemTemplate
	themes     map[string]FactionTheme
	encounters map[string]EncounterTemplate
	floors     []FloorSpawnConfig // ascending depth

	themeIDs     []string
	encounterIDs []string
	itemIDs      []string
	creatureIDs  []string
}

// Build validates content and indexes it. Dangling references are logged and
// dropped; structurally invalid templates are errors.
func Build(content Content) (*Catalog, error) {
	c := &Catalog{
		creatures:  make(map[string]CreatureTemplate, len(content.Creatures)),
		items:      make(map[string]ItemTemplate, len(content.Items)),
		themes:     make(map[string]FactionTheme, len(content.Themes)),
		encounters: make(map[string]EncounterTemplate, len(content.Encounters)),
	}

	for id, ct := range content.Creatures {
		if ct.Threat < 0 {
			return nil, fmt.Errorf("creature %q: threat must be >= 0, got %d", id, ct.Threat)
		}
		ct.ID = id
		if ct.Name == "" {
			ct.Name = id
		}
		c.creatures[id] = ct
		c.creatureIDs = append(c.creatureIDs, id)
	}

	for id, it := range content.Items {
		it.ID = id
		if it.Name == "" {
			it.Name = id
		}
		c.items[id] = it
		c.itemIDs = append(c.itemIDs, id)
	}

	for id, th := range content.Themes {
		th.ID = id
		if th.Name == "" {
			th.Name = id
		}
		members := make([]string, 0, len(th.Creatures))
		for _, cid := range th.Creatures {
			if _, ok := c.creatures[cid]; !ok {
				logger.Warning("Theme references unknown creature, dropping",
					"theme", id,
					"creature", cid)
				continue
			}
			members = append(members, cid)
		}
		th.Creatures = members
		c.themes[id] = th
		c.themeIDs = append(c.themeIDs, id)
	}

	for id, et := range content.Encounters {
		if len(et.Slots) == 0 {
			return nil, fmt.Errorf("encounter %q: at least one slot is required", id)
		}
		if et.MinBudget < 0 || et.MaxBudget < et.MinBudget {
			return nil, fmt.Errorf("encounter %q: invalid budget range [%d,%d]", id, et.MinBudget, et.MaxBudget)
		}
		et.ID = id
		slots := make([]EncounterSlot, len(et.Slots))
		for i, slot := range et.Slots {
			if slot.ThreatMultiplier <= 0 {
				slot.ThreatMultiplier = 1
			}
			if slot.Count.IsZero() {
				slot.Count = dice.Flat(1)
			}
			slots[i] = slot
		}
		et.Slots = slots
		c.encounters[id] = et
		c.encounterIDs = append(c.encounterIDs, id)
	}

	seen := make(map[int]bool, len(content.Floors))
	for _, fc := range content.Floors {
		if seen[fc.Depth] {
			return nil, fmt.Errorf("floor config for depth %d defined twice", fc.Depth)
		}
		seen[fc.Depth] = true
		c.floors = append(c.floors, c.normalizeFloor(fc))
	}
	sort.Slice(c.floors, func(i, j int) bool { return c.floors[i].Depth < c.floors[j].Depth })

	sort.Strings(c.creatureIDs)
	sort.Strings(c.itemIDs)
	sort.Strings(c.themeIDs)
	sort.Strings(c.encounterIDs)
	return c, nil
}

func (c *Catalog) normalizeFloor(fc FloorSpawnConfig) FloorSpawnConfig {
	if fc.ExitID == "" {
		fc.ExitID = DefaultExitID
	}
	if fc.ObjectiveID == "" {
		fc.ObjectiveID = DefaultObjectiveID
	}
	if fc.RarityWeights == (RarityWeights{}) {
		fc.RarityWeights = DefaultRarityWeights()
	}
	if fc.OutOfDepthOffset <= 0 {
		fc.OutOfDepthOffset = 2
	}

	themes := make(map[string]float64, len(fc.Themes))
	for id, w := range fc.Themes {
		if _, ok := c.themes[id]; !ok {
			logger.Warning("Floor config references unknown theme, dropping",
				"depth", fc.Depth,
				"theme", id)
			continue
		}
		themes[id] = w
	}
	fc.Themes = themes

	encounters := make(map[string]float64, len(fc.Encounters))
	for id, w := range fc.Encounters {
		if _, ok := c.encounters[id]; !ok {
			logger.Warning("Floor config references unknown encounter, dropping",
				"depth", fc.Depth,
				"template", id)
			continue
		}
		encounters[id] = w
	}
	fc.Encounters = encounters

	uniques := make([]string, 0, len(fc.Uniques))
	for _, id := range fc.Uniques {
		if slices.Contains(uniques, id) {
			logger.Warning("Floor config lists a unique creature twice, dropping duplicate",
				"depth", fc.Depth,
				"creature", id)
			continue
		}
		if _, ok := c.creatures[id]; !ok {
			logger.Warning("Floor config references unknown unique creature, dropping",
				"depth", fc.Depth,
				"creature", id)
			continue
		}
		uniques = append(uniques, id)
	}
	fc.Uniques = uniques
	return fc
}

// Creature looks up a creature template by id.
func (c *Catalog) Creature(id string) (CreatureTemplate, bool) {
	ct, ok := c.creatures[id]
	return ct, ok
}

// Item looks up an item template by id.
func (c *Catalog) Item(id string) (ItemTemplate, bool) {
	it, ok := c.items[id]
	return it, ok
}

// Theme looks up a faction theme by id.
func (c *Catalog) Theme(id string) (FactionTheme, bool) {
	th, ok := c.themes[id]
	return th, ok
}

// Encounter looks up an encounter template by id.
func (c *Catalog) Encounter(id string) (EncounterTemplate, bool) {
	et, ok := c.encounters[id]
	return et, ok
}

// FloorConfig returns the config for depth: the exact depth if configured,
// otherwise the deepest configured depth not exceeding it.
func (c *Catalog) FloorConfig(depth int) (FloorSpawnConfig, bool) {
	idx := sort.Search(len(c.floors), func(i int) bool { return c.floors[i].Depth > depth })
	if idx == 0 {
		return FloorSpawnConfig{}, false
	}
	return c.floors[idx-1], true
}

// Themes returns every theme sorted by id.
func (c *Catalog) Themes() []FactionTheme {
	out := make([]FactionTheme, len(c.themeIDs))
	for i, id := range c.themeIDs {
		out[i] = c.themes[id]
	}
	return out
}

// ThemesForDepth returns the themes valid at depth, sorted by id.
func (c *Catalog) ThemesForDepth(depth int) []FactionTheme {
	var out []FactionTheme
	for _, id := range c.themeIDs {
		if th := c.themes[id]; th.ValidFor(depth) {
			out = append(out, th)
		}
	}
	return out
}

// Encounters returns every encounter template sorted by id.
func (c *Catalog) Encounters() []EncounterTemplate {
	out := make([]EncounterTemplate, len(c.encounterIDs))
	for i, id := range c.encounterIDs {
		out[i] = c.encounters[id]
	}
	return out
}

// Creatures returns every creature template sorted by id.
func (c *Catalog) Creatures() []CreatureTemplate {
	out := make([]CreatureTemplate, len(c.creatureIDs))
	for i, id := range c.creatureIDs {
		out[i] = c.creatures[id]
	}
	return out
}

// ItemsByRarity returns the items of rarity r available at depth, sorted by id.
func (c *Catalog) ItemsByRarity(r Rarity, depth int) []ItemTemplate {
	var out []ItemTemplate
	for _, id := range c.itemIDs {
		if it := c.items[id]; it.Rarity == r && it.MinDepth <= depth {
			out = append(out, it)
		}
	}
	return out
}
