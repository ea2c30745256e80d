package populate

import (
	"math/rand"

	"codeberg.org/anaseto/gruid"
	"github.com/lawnchairsociety/floorpop/internal/catalog"
	"github.com/lawnchairsociety/floorpop/internal/entity"
)

// AI states assigned at spawn time.
const (
	StateIdle       = "idle"
	StateHidden     = "hidden"
	StateSleeping   = "sleeping"
	StatePatrolling = "patrolling"
	StateGuarding   = "guarding"
)

const (
	maxPatrolWaypoints = 4
	cowardFleeAt       = 0.3
)

// DefaultState returns the initial AI state for an encounter type.
func DefaultState(t catalog.EncounterType) string {
	switch t {
	case catalog.EncounterAmbush:
		return StateHidden
	case catalog.EncounterLair:
		return StateSleeping
	case catalog.EncounterPatrol:
		return StatePatrolling
	case catalog.EncounterGuard, catalog.EncounterBoss:
		return StateGuarding
	default:
		return StateIdle
	}
}

// AIConfigurator wires initial behavior onto spawned encounter members.
type AIConfigurator struct {
	WaypointSpacing int
}

// Configure sets the initial state, leader protection, patrol route and flee
// threshold of every member of enc.
func (a AIConfigurator) Configure(fs *FloorState, st *RegionSpawnData, enc *SpawnedEncounter, r *rand.Rand) {
	ai := enc.Template.AI
	state := ai.InitialState
	if state == "" {
		state = DefaultState(enc.Template.Type)
	}

	var patrol []gruid.Point
	if ai.GeneratePatrol || enc.Template.Type == catalog.EncounterPatrol {
		patrol = a.patrolRoute(st, enc.Center, r)
	}

	for _, c := range enc.Creatures {
		b := entity.Behavior{
			State:  state,
			Leader: c.Handle.ID == enc.Leader,
			Patrol: patrol,
		}
		if ai.ProtectLeader && enc.Leader != 0 && !b.Leader {
			b.ProtectTarget = enc.Leader
		}
		if c.Archetypes.Has(catalog.Cowardly) {
			b.FleeThreshold = cowardFleeAt
		}
		if err := fs.Registry.SetBehavior(c.Handle.ID, b); err != nil {
			fs.warn("Failed to configure creature AI", "creature", c.CreatureID, "error", err.Error())
		}
	}
}

// patrolRoute picks up to maxPatrolWaypoints region tiles, starting at the
// center, each at least WaypointSpacing from the others.
func (a AIConfigurator) patrolRoute(st *RegionSpawnData, center gruid.Point, r *rand.Rand) []gruid.Point {
	tiles := append([]gruid.Point(nil), st.Region.Tiles...)
	r.Shuffle(len(tiles), func(i, j int) { tiles[i], tiles[j] = tiles[j], tiles[i] })

	route := []gruid.Point{center}
	minSq := a.WaypointSpacing * a.WaypointSpacing
	for _, t := range tiles {
		if len(route) == maxPatrolWaypoints {
			break
		}
		spaced := true
		for _, w := range route {
			if distSq(t, w) < minSq {
				spaced = false
				break
			}
		}
		if spaced {
			route = append(route, t)
		}
	}
	return route
}
