package models

import (
	"fmt"
	"strings"
)

// Weekdays in the reference weekly grid, in calendar order.
var Weekdays = []string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday"}

// DefaultTimeSlotLabels lists the daily lecture slots. 13:00-14:00 is the lunch gap.
var DefaultTimeSlotLabels = []string{
	"9:00-10:00", "10:00-11:00", "11:00-12:00", "12:00-13:00",
	"14:00-15:00", "15:00-16:00", "16:00-17:00", "17:00-18:00",
}

// DefaultSections are the parallel offerings every course is scheduled for.
var DefaultSections = []string{"A", "B", "C"}

// Departments known to the reference data set.
var Departments = []string{
	"PHY", "CHM", "BIO", "MTH",
	"CSE", "ECE", "MECH", "CIVIL", "EEE", "IT",
	"EES", "CES", "ECO",
}

// Buildings known to the reference data set.
var Buildings = []string{"AB1", "AB2", "AB3", "L1", "L2", "L3", "Lab 1", "Lab 2", "Lab 3", "Lab 4"}

// TimeSlot is one lecture period of a day.
type TimeSlot struct {
	Label string `json:"label"`
	Start string `json:"start"`
	End   string `json:"end"`
}

// ParseTimeSlot splits a "9:00-10:00" label into its boundaries.
func ParseTimeSlot(label string) (TimeSlot, error) {
	parts := strings.SplitN(label, "-", 2)
	if len(parts) != 2 {
		return TimeSlot{}, fmt.Errorf("time slot %q must be formatted as start-end", label)
	}
	start := strings.TrimSpace(parts[0])
	end := strings.TrimSpace(parts[1])
	if start == "" || end == "" {
		return TimeSlot{}, fmt.Errorf("time slot %q has an empty boundary", label)
	}
	return TimeSlot{Label: strings.TrimSpace(label), Start: start, End: end}, nil
}

// Grid is the fixed weekly cross-product of days and time slots.
type Grid struct {
	Days  []string   `json:"days"`
	Slots []TimeSlot `json:"slots"`
}

// Cell addresses one (day, slot) position of the grid.
type Cell struct {
	Day  string
	Slot TimeSlot
}

// DefaultGrid returns the Monday-Friday grid with eight lecture slots per day.
func DefaultGrid() Grid {
	grid, err := NewGrid(Weekdays, DefaultTimeSlotLabels)
	if err != nil {
		panic(err)
	}
	return grid
}

// NewGrid builds a grid from day names and "start-end" slot labels.
func NewGrid(days []string, slotLabels []string) (Grid, error) {
	if len(days) == 0 {
		return Grid{}, fmt.Errorf("grid requires at least one day")
	}
	if len(slotLabels) == 0 {
		return Grid{}, fmt.Errorf("grid requires at least one time slot")
	}
	slots := make([]TimeSlot, 0, len(slotLabels))
	for _, label := range slotLabels {
		slot, err := ParseTimeSlot(label)
		if err != nil {
			return Grid{}, err
		}
		slots = append(slots, slot)
	}
	return Grid{Days: append([]string(nil), days...), Slots: slots}, nil
}

// Cells enumerates every (day, slot) pair, days outermost.
func (g Grid) Cells() []Cell {
	cells := make([]Cell, 0, len(g.Days)*len(g.Slots))
	for _, day := range g.Days {
		for _, slot := range g.Slots {
			cells = append(cells, Cell{Day: day, Slot: slot})
		}
	}
	return cells
}

// IsZero reports whether the grid was left unset.
func (g Grid) IsZero() bool {
	return len(g.Days) == 0 && len(g.Slots) == 0
}

// ResolveCell maps a loosely written day and slot onto a grid cell. Days match
// case-insensitively. The slot may be a full label ("9:00-10:00") or just its
// start time; hours match with or without a leading zero ("09:00" is "9:00").
func (g Grid) ResolveCell(day, slot string) (Cell, bool) {
	day = strings.TrimSpace(day)
	slot = strings.TrimSpace(slot)

	var cell Cell
	found := false
	for _, d := range g.Days {
		if strings.EqualFold(d, day) {
			cell.Day = d
			found = true
			break
		}
	}
	if !found {
		return Cell{}, false
	}

	start, end := slot, ""
	if parts := strings.SplitN(slot, "-", 2); len(parts) == 2 {
		start, end = strings.TrimSpace(parts[0]), strings.TrimSpace(parts[1])
	}
	for _, s := range g.Slots {
		if canonicalClock(s.Start) != canonicalClock(start) {
			continue
		}
		if end != "" && canonicalClock(s.End) != canonicalClock(end) {
			continue
		}
		cell.Slot = s
		return cell, true
	}
	return Cell{}, false
}

func canonicalClock(value string) string {
	trimmed := strings.TrimLeft(value, "0")
	if trimmed == "" || trimmed[0] == ':' {
		return "0" + trimmed
	}
	return trimmed
}
