package models

import "strings"

// Day is a teaching day in canonical MON..SUN order.
type Day string

const (
	DayMonday    Day = "MON"
	DayTuesday   Day = "TUE"
	DayWednesday Day = "WED"
	DayThursday  Day = "THU"
	DayFriday    Day = "FRI"
	DaySaturday  Day = "SAT"
	DaySunday    Day = "SUN"
)

// Days lists every day in canonical order.
var Days = [7]Day{DayMonday, DayTuesday, DayWednesday, DayThursday, DayFriday, DaySaturday, DaySunday}

// SlotsPerDay is the width of the per-day slot grid.
const SlotsPerDay = 14

// Index returns the canonical position of the day, or -1 when unknown.
func (d Day) Index() int {
	for i, day := range Days {
		if day == d {
			return i
		}
	}
	return -1
}

// Valid reports whether d is one of the seven canonical days.
func (d Day) Valid() bool {
	return d.Index() >= 0
}

// ParseDay normalises user input such as "mon" or " MON ".
func ParseDay(raw string) (Day, bool) {
	day := Day(strings.ToUpper(strings.TrimSpace(raw)))
	return day, day.Valid()
}
