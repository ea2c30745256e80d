// Package entity is the narrow boundary between the allocator and whatever
// owns live game objects: a factory that instantiates templates at positions
// and a registry that tracks what exists where.
package entity

import (
	"codeberg.org/anaseto/gruid"
)

// ID identifies a created entity.
type ID uint64

// Kind classifies an entity.
type Kind int

const (
	KindCreature Kind = iota
	KindItem
	KindGold
	KindFeature // exits, objectives
)

func (k Kind) String() string {
	switch k {
	case KindCreature:
		return "creature"
	case KindItem:
		return "item"
	case KindGold:
		return "gold"
	case KindFeature:
		return "feature"
	default:
		return "unknown"
	}
}

// Handle references an entity created by a Factory.
type Handle struct {
	ID         ID
	Kind       Kind
	TemplateID string
	Pos        gruid.Point
	Amount     int // gold piles only
}

// Behavior is the initial AI configuration of a creature.
type Behavior struct {
	State         string
	Leader        bool
	ProtectTarget ID // 0 = none
	Patrol        []gruid.Point
	FleeThreshold float64 // fraction of health at which the creature flees
}

// Factory instantiates templates at grid positions.
type Factory interface {
	CreateCreature(templateID string, pos gruid.Point) (Handle, error)
	CreateItem(templateID string, pos gruid.Point) (Handle, error)
	CreateGold(amount int, pos gruid.Point) (Handle, error)
	CreateFeature(templateID string, pos gruid.Point) (Handle, error)
}

// Registry tracks created entities.
type Registry interface {
	AddEntity(h Handle) error
	IsPositionOccupied(p gruid.Point) bool
	SetBehavior(id ID, b Behavior) error
}
