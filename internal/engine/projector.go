package engine

import (
	"fmt"
	"strings"

	"github.com/camin-energy/tankflow/internal/model"
)

// Filters narrows the projected movement list. Zero values mean "no filter";
// filters compose with logical AND.
type Filters struct {
	Search string
	Type   model.MovementType
	Status model.MovementStatus
	Source model.MovementSource
}

// Row is one display-ready movement. Rows are derived, never mutated in
// place; re-projection runs from scratch whenever movements, tanks, or
// filters change.
type Row struct {
	Movement  model.Movement
	TankLabel string
	Status    model.MovementStatus
	Volume    float64
	IsFuture  bool
}

// Project derives display rows from raw movements without mutating them.
// Transfers are labelled "{source} → {target}"; other types show only the
// relevant tank. Filtering order is type, status, source, then free-text
// search over tank names, type, and notes (case-insensitive substring).
func Project(movements []model.Movement, index *Index, filters Filters, today model.CivilDate) []Row {
	rows := make([]Row, 0, len(movements))

	search := strings.ToLower(strings.TrimSpace(filters.Search))

	for i := range movements {
		m := movements[i]

		if filters.Type != "" && m.Type != filters.Type {
			continue
		}
		if filters.Status != "" && m.Status() != filters.Status {
			continue
		}
		if filters.Source != "" && m.Source != filters.Source {
			continue
		}

		tankName := index.NameOf(m.TankID)
		targetName := ""
		label := tankName
		if m.Type == model.TypeTransfer {
			targetName = index.NameOf(m.TargetTankID)
			label = fmt.Sprintf("%s → %s", tankName, targetName)
		}

		if search != "" && !matchesSearch(m, tankName, targetName, search) {
			continue
		}

		rows = append(rows, Row{
			Movement:  m,
			TankLabel: label,
			Status:    m.Status(),
			Volume:    m.EffectiveVolume(),
			IsFuture:  m.ScheduledDate.After(today),
		})
	}
	return rows
}

func matchesSearch(m model.Movement, tankName, targetName, search string) bool {
	for _, field := range []string{tankName, targetName, string(m.Type), m.Notes} {
		if field != "" && strings.Contains(strings.ToLower(field), search) {
			return true
		}
	}
	return false
}
