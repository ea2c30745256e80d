package entity

import (
	"errors"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"

	"codeberg.org/anaseto/gruid"
)

var (
	ErrEmptyTemplate   = errors.New("template id is empty")
	ErrDuplicateEntity = errors.New("entity already registered")
	ErrUnknownEntity   = errors.New("entity not registered")
)

// World is an in-memory Factory and Registry.
type World struct {
	nextID atomic.Uint64

	mu        sync.RWMutex
	entities  map[ID]Handle
	byPos     map[gruid.Point][]ID
	behaviors map[ID]Behavior
}

// NewWorld creates an empty world.
func NewWorld() *World {
	return &World{
		entities:  make(map[ID]Handle),
		byPos:     make(map[gruid.Point][]ID),
		behaviors: make(map[ID]Behavior),
	}
}

func (w *World) create(kind Kind, templateID string, amount int, pos gruid.Point) (Handle, error) {
	if templateID == "" {
		return Handle{}, fmt.Errorf("create %s at %v: %w", kind, pos, ErrEmptyTemplate)
	}
	return Handle{
		ID:         ID(w.nextID.Add(1)),
		Kind:       kind,
		TemplateID: templateID,
		Pos:        pos,
		Amount:     amount,
	}, nil
}

// CreateCreature instantiates a creature template.
func (w *World) CreateCreature(templateID string, pos gruid.Point) (Handle, error) {
	return w.create(KindCreature, templateID, 0, pos)
}

// CreateItem instantiates an item template.
func (w *World) CreateItem(templateID string, pos gruid.Point) (Handle, error) {
	return w.create(KindItem, templateID, 0, pos)
}

// CreateGold creates a gold pile.
func (w *World) CreateGold(amount int, pos gruid.Point) (Handle, error) {
	if amount <= 0 {
		return Handle{}, fmt.Errorf("gold pile at %v must be positive, got %d", pos, amount)
	}
	return w.create(KindGold, "gold", amount, pos)
}

// CreateFeature instantiates a map feature such as an exit.
func (w *World) CreateFeature(templateID string, pos gruid.Point) (Handle, error) {
	return w.create(KindFeature, templateID, 0, pos)
}

// AddEntity registers a created entity.
func (w *World) AddEntity(h Handle) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if _, ok := w.entities[h.ID]; ok {
		return fmt.Errorf("entity %d: %w", h.ID, ErrDuplicateEntity)
	}
	w.entities[h.ID] = h
	w.byPos[h.Pos] = append(w.byPos[h.Pos], h.ID)
	return nil
}

// IsPositionOccupied reports whether any entity sits at p.
func (w *World) IsPositionOccupied(p gruid.Point) bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return len(w.byPos[p]) > 0
}

// SetBehavior stores the AI configuration of a registered entity.
func (w *World) SetBehavior(id ID, b Behavior) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if _, ok := w.entities[id]; !ok {
		return fmt.Errorf("entity %d: %w", id, ErrUnknownEntity)
	}
	w.behaviors[id] = b
	return nil
}

// Behavior returns the AI configuration of an entity.
func (w *World) Behavior(id ID) (Behavior, bool) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	b, ok := w.behaviors[id]
	return b, ok
}

// Entity looks up a registered entity.
func (w *World) Entity(id ID) (Handle, bool) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	h, ok := w.entities[id]
	return h, ok
}

// Entities returns every registered entity sorted by id.
func (w *World) Entities() []Handle {
	w.mu.RLock()
	defer w.mu.RUnlock()

	out := make([]Handle, 0, len(w.entities))
	for _, h := range w.entities {
		out = append(out, h)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Count returns how many registered entities have the given kind.
func (w *World) Count(kind Kind) int {
	w.mu.RLock()
	defer w.mu.RUnlock()

	n := 0
	for _, h := range w.entities {
		if h.Kind == kind {
			n++
		}
	}
	return n
}
