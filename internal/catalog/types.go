package catalog

import (
	"strings"

	"github.com/lawnchairsociety/floorpop/internal/logger"
	"gopkg.in/yaml.v3"
)

// EncounterType classifies an encounter template.
type EncounterType int

const (
	EncounterWandering EncounterType = iota
	EncounterAmbush
	EncounterLair
	EncounterPatrol
	EncounterGuard
	EncounterBoss
)

var encounterTypeNames = map[EncounterType]string{
	EncounterWandering: "wandering",
	EncounterAmbush:    "ambush",
	EncounterLair:      "lair",
	EncounterPatrol:    "patrol",
	EncounterGuard:     "guard",
	EncounterBoss:      "boss",
}

// String returns the lowercase name of the encounter type.
func (t EncounterType) String() string {
	if name, ok := encounterTypeNames[t]; ok {
		return name
	}
	return "unknown"
}

// ParseEncounterType converts a string to an EncounterType.
// Unknown names yield EncounterWandering and ok=false.
func ParseEncounterType(s string) (EncounterType, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	for t, name := range encounterTypeNames {
		if name == s {
			return t, true
		}
	}
	return EncounterWandering, false
}

func (t *EncounterType) UnmarshalYAML(value *yaml.Node) error {
	parsed, ok := ParseEncounterType(value.Value)
	if !ok {
		logger.Warning("Unknown encounter type, using default",
			"value", value.Value,
			"line", value.Line,
			"default", parsed.String())
	}
	*t = parsed
	return nil
}

func (t EncounterType) MarshalYAML() (any, error) {
	return t.String(), nil
}

// Placement selects how a slot's creatures are positioned around the
// encounter center.
type Placement int

const (
	PlacementCenter Placement = iota
	PlacementSurrounding
	PlacementEdge
	PlacementFormation
	PlacementRandom
)

var placementNames = map[Placement]string{
	PlacementCenter:      "center",
	PlacementSurrounding: "surrounding",
	PlacementEdge:        "edge",
	PlacementFormation:   "formation",
	PlacementRandom:      "random",
}

func (p Placement) String() string {
	if name, ok := placementNames[p]; ok {
		return name
	}
	return "unknown"
}

// ParsePlacement converts a string to a Placement.
// Unknown names yield PlacementCenter and ok=false.
func ParsePlacement(s string) (Placement, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	for p, name := range placementNames {
		if name == s {
			return p, true
		}
	}
	return PlacementCenter, false
}

func (p *Placement) UnmarshalYAML(value *yaml.Node) error {
	parsed, ok := ParsePlacement(value.Value)
	if !ok {
		logger.Warning("Unknown placement strategy, using default",
			"value", value.Value,
			"line", value.Line,
			"default", parsed.String())
	}
	*p = parsed
	return nil
}

func (p Placement) MarshalYAML() (any, error) {
	return p.String(), nil
}

// Rarity is an item quality band.
type Rarity int

const (
	Common Rarity = iota
	Uncommon
	Rare
	Epic
)

// Rarities lists every band in ascending order.
var Rarities = []Rarity{Common, Uncommon, Rare, Epic}

func (r Rarity) String() string {
	switch r {
	case Common:
		return "common"
	case Uncommon:
		return "uncommon"
	case Rare:
		return "rare"
	case Epic:
		return "epic"
	default:
		return "unknown"
	}
}

// ParseRarity converts a string to a Rarity.
// Unknown names yield Common and ok=false.
func ParseRarity(s string) (Rarity, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "common":
		return Common, true
	case "uncommon":
		return Uncommon, true
	case "rare":
		return Rare, true
	case "epic":
		return Epic, true
	default:
		return Common, false
	}
}

func (r *Rarity) UnmarshalYAML(value *yaml.Node) error {
	parsed, ok := ParseRarity(value.Value)
	if !ok {
		logger.Warning("Unknown item rarity, using common",
			"value", value.Value,
			"line", value.Line)
	}
	*r = parsed
	return nil
}

func (r Rarity) MarshalYAML() (any, error) {
	return r.String(), nil
}

// Archetype is an inferred combat role. A creature may carry several.
type Archetype int

const (
	Tank Archetype = iota
	Warrior
	Assassin
	Ranged
	Support
	Brute
	Scout
	Cowardly
	Patroller
)

var archetypeNames = []string{
	Tank:      "tank",
	Warrior:   "warrior",
	Assassin:  "assassin",
	Ranged:    "ranged",
	Support:   "support",
	Brute:     "brute",
	Scout:     "scout",
	Cowardly:  "cowardly",
	Patroller: "patroller",
}

func (a Archetype) String() string {
	if a >= 0 && int(a) < len(archetypeNames) {
		return archetypeNames[a]
	}
	return "unknown"
}

// ParseArchetype converts a string to an Archetype.
// Unknown names yield Warrior and ok=false.
func ParseArchetype(s string) (Archetype, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	for i, name := range archetypeNames {
		if name == s {
			return Archetype(i), true
		}
	}
	return Warrior, false
}

func (a *Archetype) UnmarshalYAML(value *yaml.Node) error {
	parsed, ok := ParseArchetype(value.Value)
	if !ok {
		logger.Warning("Unknown archetype, using warrior",
			"value", value.Value,
			"line", value.Line)
	}
	*a = parsed
	return nil
}

func (a Archetype) MarshalYAML() (any, error) {
	return a.String(), nil
}

// ArchetypeSet is a bit set of archetypes.
type ArchetypeSet uint16

// NewArchetypeSet builds a set from the given archetypes.
func NewArchetypeSet(archetypes ...Archetype) ArchetypeSet {
	var s ArchetypeSet
	for _, a := range archetypes {
		s = s.With(a)
	}
	return s
}

// With returns the set with a added.
func (s ArchetypeSet) With(a Archetype) ArchetypeSet {
	return s | 1<<uint(a)
}

// Has reports whether a is in the set.
func (s ArchetypeSet) Has(a Archetype) bool {
	return s&(1<<uint(a)) != 0
}

// Len returns the number of archetypes in the set.
func (s ArchetypeSet) Len() int {
	n := 0
	for v := s; v != 0; v &= v - 1 {
		n++
	}
	return n
}

// List returns the members in declaration order.
func (s ArchetypeSet) List() []Archetype {
	var out []Archetype
	for i := range archetypeNames {
		if s.Has(Archetype(i)) {
			out = append(out, Archetype(i))
		}
	}
	return out
}

// String joins member names with "+".
func (s ArchetypeSet) String() string {
	list := s.List()
	names := make([]string, len(list))
	for i, a := range list {
		names[i] = a.String()
	}
	return strings.Join(names, "+")
}
