// Package timetable holds the placement engine: the shared conflict
// evaluator, the occupancy index, session materialization and the greedy
// priority scheduler. It performs no I/O.
package timetable

import "github.com/noah-isme/dept-timetable-api/internal/models"

// SlotMatrix is a days x slots boolean grid.
type SlotMatrix [len(models.Days)][models.SlotsPerDay]bool

// Set flags (day, slot). Out-of-grid cells are ignored and reported as false.
func (m *SlotMatrix) Set(day models.Day, slot int) bool {
	d := day.Index()
	if d < 0 || slot < 0 || slot >= models.SlotsPerDay {
		return false
	}
	m[d][slot] = true
	return true
}

// Has reports whether (day, slot) is flagged.
func (m *SlotMatrix) Has(day models.Day, slot int) bool {
	if m == nil {
		return false
	}
	d := day.Index()
	if d < 0 || slot < 0 || slot >= models.SlotsPerDay {
		return false
	}
	return m[d][slot]
}

// AnyIn reports whether any slot of r is flagged.
func (m *SlotMatrix) AnyIn(r Range) bool {
	for slot := r.Start; slot < r.End(); slot++ {
		if m.Has(r.Day, slot) {
			return true
		}
	}
	return false
}

// FlaggedIn lists the flagged slots of r in ascending order.
func (m *SlotMatrix) FlaggedIn(r Range) []int {
	var slots []int
	for slot := r.Start; slot < r.End(); slot++ {
		if m.Has(r.Day, slot) {
			slots = append(slots, slot)
		}
	}
	return slots
}

// Count returns the number of flagged cells.
func (m *SlotMatrix) Count() int {
	if m == nil {
		return 0
	}
	total := 0
	for d := range m {
		for s := range m[d] {
			if m[d][s] {
				total++
			}
		}
	}
	return total
}

// Range is a contiguous block of slots on one day: [Start, Start+Duration).
type Range struct {
	Day      models.Day
	Start    int
	Duration int
}

// End is the exclusive end slot.
func (r Range) End() int {
	return r.Start + r.Duration
}

// Overlaps reports whether both ranges share a day and at least one slot.
func (r Range) Overlaps(o Range) bool {
	if r.Day != o.Day || r.Duration <= 0 || o.Duration <= 0 {
		return false
	}
	return r.Start < o.End() && o.Start < r.End()
}

// Within reports whether the range lies inside [workStart, workEnd) and on the slot grid.
func (r Range) Within(workStart, workEnd int) bool {
	return r.Duration > 0 && r.Start >= 0 && r.Start >= workStart && r.End() <= workEnd && r.End() <= models.SlotsPerDay
}
