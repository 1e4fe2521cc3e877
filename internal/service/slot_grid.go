package service

import "math/rand"

const (
	daysPerWeek = 5
	slotsPerDay = 6

	// The two midday indices; one of them becomes the lunch break each day.
	lunchEarlyIndex = 2
	lunchLateIndex  = 3
)

// slotWindow is one fixed hourly teaching window.
type slotWindow struct {
	Start string
	End   string
}

// slotWindows maps slot indices to their clock windows. 13:00-14:00 is a
// fixed break hour between indices 3 and 4.
var slotWindows = [slotsPerDay]slotWindow{
	{Start: "09:00", End: "10:00"},
	{Start: "10:00", End: "11:00"},
	{Start: "11:00", End: "12:00"},
	{Start: "12:00", End: "13:00"},
	{Start: "14:00", End: "15:00"},
	{Start: "15:00", End: "16:00"},
}

// gridCell addresses one (day, slot index) unit of the weekly grid.
type gridCell struct {
	Day  int
	Slot int
}

// weekGrid is the schedulable cell space for one generation run: five
// weekdays of six hourly slots, minus one randomly drawn lunch cell per
// day, with per-cell occupancy shared by both schedulers.
type weekGrid struct {
	lunch    [daysPerWeek + 1]int
	occupied map[gridCell]bool
}

// newWeekGrid draws each day's lunch cell from the run's random source.
func newWeekGrid(rng *rand.Rand) *weekGrid {
	g := &weekGrid{occupied: make(map[gridCell]bool)}
	for day := 1; day <= daysPerWeek; day++ {
		if rng.Intn(2) == 0 {
			g.lunch[day] = lunchEarlyIndex
		} else {
			g.lunch[day] = lunchLateIndex
		}
	}
	return g
}

// LunchSlot returns the lunch index chosen for the day.
func (g *weekGrid) LunchSlot(day int) int {
	return g.lunch[day]
}

// Free reports whether the cell is schedulable: inside the grid, not the
// day's lunch cell, and not already claimed.
func (g *weekGrid) Free(day, slot int) bool {
	if day < 1 || day > daysPerWeek || slot < 0 || slot >= slotsPerDay {
		return false
	}
	if g.lunch[day] == slot {
		return false
	}
	return !g.occupied[gridCell{Day: day, Slot: slot}]
}

// Claim marks a cell as taken for the remainder of the run.
func (g *weekGrid) Claim(day, slot int) {
	g.occupied[gridCell{Day: day, Slot: slot}] = true
}

// PairFree reports whether (slot, slot+1) is a schedulable double period:
// both cells free and the two windows back to back on the clock, which
// rules out the pair straddling the 13:00-14:00 break.
func (g *weekGrid) PairFree(day, slot int) bool {
	if slot+1 >= slotsPerDay {
		return false
	}
	if slotWindows[slot].End != slotWindows[slot+1].Start {
		return false
	}
	return g.Free(day, slot) && g.Free(day, slot+1)
}

// FreeCells lists every schedulable cell left on the grid in day/slot order.
// Callers shuffle the result themselves.
func (g *weekGrid) FreeCells() []gridCell {
	cells := make([]gridCell, 0, daysPerWeek*(slotsPerDay-1))
	for day := 1; day <= daysPerWeek; day++ {
		for slot := 0; slot < slotsPerDay; slot++ {
			if g.Free(day, slot) {
				cells = append(cells, gridCell{Day: day, Slot: slot})
			}
		}
	}
	return cells
}

// facultyLoad tracks per-run commitments so a faculty member is never
// double-booked within the generated slot set.
type facultyLoad struct {
	busy map[int64]map[gridCell]bool
}

func newFacultyLoad() *facultyLoad {
	return &facultyLoad{busy: make(map[int64]map[gridCell]bool)}
}

// Busy reports whether the faculty member already teaches at the cell.
func (l *facultyLoad) Busy(facultyID int64, day, slot int) bool {
	cells := l.busy[facultyID]
	if cells == nil {
		return false
	}
	return cells[gridCell{Day: day, Slot: slot}]
}

// Reserve marks the cell as committed for the faculty member.
func (l *facultyLoad) Reserve(facultyID int64, day, slot int) {
	if l.busy[facultyID] == nil {
		l.busy[facultyID] = make(map[gridCell]bool)
	}
	l.busy[facultyID][gridCell{Day: day, Slot: slot}] = true
}
