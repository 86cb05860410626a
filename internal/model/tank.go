package model

import "time"

// Tank represents a feedstock storage tank in the registry.
type Tank struct {
	CreatedAt    time.Time
	ID           string
	Name         string
	Location     string
	Capacity     float64 // barrels
	InitialLevel float64 // barrels at registration time
	CurrentLevel float64 // barrels, derived from movement history
}

// LevelPercentage returns the fill level as a percentage of capacity.
func (t *Tank) LevelPercentage() float64 {
	if t.Capacity <= 0 {
		return 0
	}
	return t.CurrentLevel / t.Capacity * 100
}

// TankCreate holds the fields required to register a new tank.
type TankCreate struct {
	Name         string
	Location     string
	Capacity     float64
	InitialLevel float64
}

// TankUpdate holds optional fields for updating an existing tank.
// Nil fields are left unchanged.
type TankUpdate struct {
	Name     *string
	Location *string
	Capacity *float64
}
