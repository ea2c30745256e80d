package populate

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/lawnchairsociety/floorpop/internal/catalog"
	"github.com/lawnchairsociety/floorpop/internal/rng"
)

// EncounterSpawner fills placed encounters with creatures from the region's
// theme and pays their threat from the region budget.
type EncounterSpawner struct {
	Matcher *ArchetypeMatcher
	Placers *PlacerRegistry
	AI      AIConfigurator
}

// Spawn processes every placed encounter in region order.
func (s *EncounterSpawner) Spawn(fs *FloorState, r *rand.Rand) {
	for _, id := range fs.Order {
		st := fs.Regions[id]
		for i, enc := range st.Encounters {
			s.spawnEncounter(fs, st, enc, reservedAfter(st.Encounters[i+1:]), r)
			if enc.Success {
				s.AI.Configure(fs, st, enc, r)
			} else {
				fs.Summary.EncountersFailed++
			}
		}
	}
}

// reservedAfter is the budget the placer set aside for the encounters still
// waiting to spawn in a region.
func reservedAfter(pending []*SpawnedEncounter) int {
	reserved := 0
	for _, enc := range pending {
		reserved += max(1, enc.Template.MinBudget)
	}
	return reserved
}

func (s *EncounterSpawner) spawnEncounter(fs *FloorState, st *RegionSpawnData, enc *SpawnedEncounter, reserved int, r *rand.Rand) {
	members := themeMembers(fs.Catalog, enc.Theme)
	if len(members) == 0 {
		enc.Error = fmt.Sprintf("theme %q has no spawnable creatures", enc.Theme)
		fs.warn("Encounter theme has no creatures", "region", st.Region.ID, "theme", enc.Theme, "template", enc.Template.ID)
		return
	}

	budget := min(enc.Template.MaxBudget, st.RemainingBudget-reserved)
	if budget <= 0 {
		enc.Error = "region budget exhausted"
		return
	}

	remaining := budget
	ctx := &PlacementContext{Center: enc.Center, Occupied: fs.Occupied, Rand: r}

slots:
	for _, slot := range enc.Template.Slots {
		count := slot.Count.RollRange(r)
		for i := 0; i < count; i++ {
			ct, threat, ok := s.selectCreature(members, slot, remaining, r)
			if !ok {
				continue slots
			}

			pos, ok := s.Placers.SelectPosition(slot.Placement, st.Region, ctx)
			if !ok {
				fs.warn("No free tile for encounter member", "region", st.Region.ID, "template", enc.Template.ID)
				break slots
			}

			h, ok := fs.spawnCreature(ct.ID, pos)
			if !ok {
				continue
			}

			remaining -= threat
			enc.TotalThreat += threat
			enc.Creatures = append(enc.Creatures, SpawnedCreature{
				Handle:     h,
				CreatureID: ct.ID,
				Role:       slot.Role,
				Threat:     threat,
				Archetypes: s.Matcher.Archetypes(ct),
			})
			if enc.Leader == 0 && isLeaderRole(slot.Role) {
				enc.Leader = h.ID
			}
		}
	}

	if len(enc.Creatures) == 0 {
		enc.Error = fmt.Sprintf("no creature in theme %q fits budget %d", enc.Theme, budget)
		return
	}

	if !st.ConsumeBudget(enc.TotalThreat) {
		// The encounter never spends more than the region had left.
		enc.Error = fmt.Sprintf("threat %d exceeds remaining budget %d", enc.TotalThreat, st.RemainingBudget)
		fs.warn("Encounter threat rejected by region budget", "region", st.Region.ID, "template", enc.Template.ID)
		return
	}
	enc.Success = true
	fs.Summary.EncounterDistribution[enc.Template.ID]++
}

// selectCreature scores every theme member that fits the remaining budget
// and makes a weighted pick. ok is false when nothing fits.
func (s *EncounterSpawner) selectCreature(members []catalog.CreatureTemplate, slot catalog.EncounterSlot, remaining int, r *rand.Rand) (catalog.CreatureTemplate, int, bool) {
	type candidate struct {
		creature catalog.CreatureTemplate
		threat   int
	}

	var choices []rng.Choice[candidate]
	for _, ct := range members {
		threat := EffectiveThreat(ct.Threat, slot.ThreatMultiplier)
		if threat > remaining {
			continue
		}
		choices = append(choices, rng.Choice[candidate]{
			Item:   candidate{creature: ct, threat: threat},
			Weight: s.Matcher.Score(ct, slot),
		})
	}

	picked, ok := rng.Pick(r, choices)
	if !ok {
		return catalog.CreatureTemplate{}, 0, false
	}
	return picked.creature, picked.threat, true
}

// EffectiveThreat applies a slot multiplier to a creature's threat.
func EffectiveThreat(threat int, multiplier float64) int {
	if multiplier <= 0 {
		multiplier = 1
	}
	return int(math.Round(float64(threat) * multiplier))
}
