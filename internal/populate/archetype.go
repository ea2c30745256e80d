package populate

import (
	"strings"
	"sync"

	"github.com/lawnchairsociety/floorpop/internal/catalog"
)

// Stat thresholds used by archetype inference.
const (
	highStat    = 14
	supportStat = 12
	frailStat   = 12
	lowStat     = 10
)

var rangedKeywords = []string{"bow", "crossbow", "sling", "javelin", "wand"}

// InferArchetypes derives a creature's combat roles from its stats,
// equipment and declared behaviors. item resolves equipment ids and may be
// nil. The result is never empty: Warrior is the default.
func InferArchetypes(c catalog.CreatureTemplate, item func(id string) (catalog.ItemTemplate, bool)) catalog.ArchetypeSet {
	s := c.Stats
	top := max(s.Strength, s.Dexterity, s.Constitution, s.Intelligence)

	var set catalog.ArchetypeSet
	if s.Constitution == top && s.Constitution >= highStat {
		set = set.With(catalog.Tank)
	}
	if s.Strength == top && s.Strength >= highStat && s.Dexterity <= lowStat {
		set = set.With(catalog.Brute)
	}
	if s.Dexterity == top && s.Dexterity >= highStat && s.Constitution < frailStat {
		set = set.With(catalog.Assassin)
	}
	if s.Dexterity == top && s.Strength <= lowStat && top > 0 {
		set = set.With(catalog.Scout)
	}
	if s.Intelligence == top && s.Intelligence >= supportStat {
		set = set.With(catalog.Support)
	}
	if c.RangedAttack || hasRangedEquipment(c.Equipment, item) {
		set = set.With(catalog.Ranged)
	}
	for _, b := range c.Behaviors {
		switch strings.ToLower(b) {
		case "cowardly":
			set = set.With(catalog.Cowardly)
		case "patroller", "patrol":
			set = set.With(catalog.Patroller)
		}
	}

	if set == 0 {
		set = set.With(catalog.Warrior)
	}
	return set
}

func hasRangedEquipment(equipment []string, item func(id string) (catalog.ItemTemplate, bool)) bool {
	for _, id := range equipment {
		if item != nil {
			if it, ok := item(id); ok && it.Ranged {
				return true
			}
		}
		lower := strings.ToLower(id)
		for _, kw := range rangedKeywords {
			if strings.Contains(lower, kw) {
				return true
			}
		}
	}
	return false
}

// ArchetypeMatcher caches inferred archetypes per creature id for a run.
type ArchetypeMatcher struct {
	catalog *catalog.Catalog

	mu    sync.Mutex
	cache map[string]catalog.ArchetypeSet
}

// NewArchetypeMatcher creates a matcher over the catalog.
func NewArchetypeMatcher(cat *catalog.Catalog) *ArchetypeMatcher {
	return &ArchetypeMatcher{
		catalog: cat,
		cache:   make(map[string]catalog.ArchetypeSet),
	}
}

// Archetypes returns the archetype set of c.
func (m *ArchetypeMatcher) Archetypes(c catalog.CreatureTemplate) catalog.ArchetypeSet {
	m.mu.Lock()
	defer m.mu.Unlock()

	if set, ok := m.cache[c.ID]; ok {
		return set
	}
	set := InferArchetypes(c, m.catalog.Item)
	m.cache[c.ID] = set
	return set
}

// Score rates how well c fits a slot: 10 with no archetype overlap, otherwise
// 50 plus up to 50 for the share of preferred archetypes matched, plus 20 when
// the creature's name or type matches the slot role.
func (m *ArchetypeMatcher) Score(c catalog.CreatureTemplate, slot catalog.EncounterSlot) float64 {
	preferred := catalog.NewArchetypeSet(slot.Archetypes...)
	matches := (m.Archetypes(c) & preferred).Len()

	score := 10.0
	if matches > 0 {
		score = 50 + float64(matches*50)/float64(preferred.Len())
	}
	if roleMatches(slot.Role, c) {
		score += 20
	}
	return score
}

var roleKeywords = map[string][]string{
	"leader":   {"chief", "boss", "alpha", "elder", "king", "captain", "warlord"},
	"alpha":    {"alpha", "chief", "elder", "matriarch", "patriarch"},
	"guard":    {"guard", "sentinel", "warden", "knight", "defender"},
	"guardian": {"guardian", "guard", "sentinel", "warden", "golem"},
	"scout":    {"scout", "runner", "stalker", "skulker", "spy"},
	"caster":   {"shaman", "priest", "mage", "witch", "acolyte"},
}

// roleMatches reports whether the creature's name or type fits the role.
func roleMatches(role string, c catalog.CreatureTemplate) bool {
	role = strings.ToLower(strings.TrimSpace(role))
	if role == "" {
		return false
	}
	text := strings.ToLower(c.Name + " " + c.Type)
	keywords, ok := roleKeywords[role]
	if !ok {
		keywords = []string{role}
	}
	for _, kw := range keywords {
		if strings.Contains(text, kw) {
			return true
		}
	}
	return false
}

// isLeaderRole reports whether a slot role designates the encounter leader.
func isLeaderRole(role string) bool {
	switch strings.ToLower(strings.TrimSpace(role)) {
	case "leader", "alpha", "guardian", "boss", "chief":
		return true
	}
	return false
}
