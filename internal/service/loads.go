package service

import (
	"fmt"
	"strings"

	"github.com/ANIKETSHETTY47/offgrid-solar-sizing/internal/domain"
	"github.com/ANIKETSHETTY47/offgrid-solar-sizing/internal/sizing"
)

// ResolveLoads turns user entries into loads. An entry naming a model takes
// power and peak factor from the equipment catalog unless it overrides them.
// A missing quantity counts as one unit.
func ResolveLoads(entries []domain.LoadEntry, equipment []domain.Equipment) ([]domain.Load, error) {
	byName := make(map[string]domain.Equipment, len(equipment))
	for _, e := range equipment {
		key := modelKey(e.Name)
		if _, dup := byName[key]; !dup {
			byName[key] = e
		}
	}

	loads := make([]domain.Load, 0, len(entries))
	for i, e := range entries {
		l := domain.Load{
			Name:        strings.TrimSpace(e.Model),
			Quantity:    e.Quantity,
			HoursPerDay: e.HoursPerDay,
			PeakFactor:  1,
		}
		if l.Quantity == 0 {
			l.Quantity = 1
		}
		if l.Name != "" {
			eq, ok := byName[modelKey(l.Name)]
			switch {
			case ok:
				l.Name = eq.Name
				l.PowerW = eq.PowerW
				l.PeakFactor = eq.PeakFactor
			case e.PowerW == nil:
				return nil, fmt.Errorf("%w: loads[%d]: unknown equipment model %q", sizing.ErrInvalidParameter, i, e.Model)
			}
		} else if e.PowerW == nil {
			return nil, fmt.Errorf("%w: loads[%d]: either model or power_w is required", sizing.ErrInvalidParameter, i)
		}
		if e.PowerW != nil {
			l.PowerW = *e.PowerW
		}
		if e.PeakFactor != nil {
			l.PeakFactor = *e.PeakFactor
		}
		loads = append(loads, l)
	}
	return loads, nil
}

func modelKey(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}
