// Package engine implements the movement reconciliation and
// transfer-balancing core: transfer planning, extracted-record matching,
// movement projection, summary aggregation, and bulk state transitions.
package engine

import "github.com/camin-energy/tankflow/internal/model"

// UnknownTankName is rendered for tank ids the registry does not know.
const UnknownTankName = "Unknown"

// Index provides O(1) tank lookup by id for the rest of the engine.
// An empty or not-yet-loaded tank list yields an empty index; callers treat
// missing lookups as "Unknown".
type Index struct {
	byID  map[string]model.Tank
	tanks []model.Tank
}

// NewIndex builds an index over the given tank registry snapshot.
func NewIndex(tanks []model.Tank) *Index {
	byID := make(map[string]model.Tank, len(tanks))
	for _, t := range tanks {
		byID[t.ID] = t
	}
	return &Index{byID: byID, tanks: tanks}
}

// Get returns the tank for id, if known.
func (ix *Index) Get(id string) (model.Tank, bool) {
	t, ok := ix.byID[id]
	return t, ok
}

// NameOf returns the tank name for id, or UnknownTankName.
func (ix *Index) NameOf(id string) string {
	if t, ok := ix.byID[id]; ok {
		return t.Name
	}
	return UnknownTankName
}

// Tanks returns the registry snapshot in its original order.
func (ix *Index) Tanks() []model.Tank {
	return ix.tanks
}

// Len returns the number of indexed tanks.
func (ix *Index) Len() int {
	return len(ix.byID)
}
