package model

// CalculateLevel computes a tank's level as of the given date from its
// initial level and movement history. Movements scheduled after the cutoff
// are ignored. The result is floored at zero; a tank cannot hold negative
// volume regardless of what the movement history says.
func CalculateLevel(tank Tank, movements []Movement, asOf CivilDate) float64 {
	level := tank.InitialLevel

	for i := range movements {
		m := &movements[i]
		if m.EffectiveDate().After(asOf) {
			continue
		}
		volume := m.EffectiveVolume()

		switch m.Type {
		case TypeLoad:
			if m.TankID == tank.ID {
				level += volume
			}
		case TypeDischarge:
			if m.TankID == tank.ID {
				level -= volume
			}
		case TypeTransfer:
			if m.TankID == tank.ID {
				level -= volume
			} else if m.TargetTankID == tank.ID {
				level += volume
			}
		case TypeAdjustment:
			// Adjustment volumes are signed.
			if m.TankID == tank.ID {
				level += volume
			}
		}
	}

	if level < 0 {
		return 0
	}
	return level
}

// WithLevel returns a copy of the tank with CurrentLevel derived from the
// movement history as of today.
func WithLevel(tank Tank, movements []Movement) Tank {
	tank.CurrentLevel = CalculateLevel(tank, movements, Today())
	return tank
}

// AdjustmentDelta returns the signed quantity needed to bring the system
// level in line with a physical reading.
func AdjustmentDelta(currentLevel, physicalLevel float64) float64 {
	return physicalLevel - currentLevel
}
