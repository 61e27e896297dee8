package enums

import (
	"fmt"
	"strings"
	"time"
)

// WeekdaySet is a bitmask of weekdays a recurring schedule is active on.
// Bit positions follow time.Weekday (Sunday = 0).
type WeekdaySet int

var weekdayNames = []string{
	"sunday", "monday", "tuesday", "wednesday", "thursday", "friday", "saturday",
}

// With returns a copy of the set with the given day enabled.
func (w WeekdaySet) With(day time.Weekday) WeekdaySet {
	return w | (1 << uint(day))
}

// Without returns a copy of the set with the given day disabled.
func (w WeekdaySet) Without(day time.Weekday) WeekdaySet {
	return w &^ (1 << uint(day))
}

// Has reports whether the given day is enabled.
func (w WeekdaySet) Has(day time.Weekday) bool {
	return w&(1<<uint(day)) != 0
}

// IsEmpty reports whether no day is enabled.
func (w WeekdaySet) IsEmpty() bool {
	return w == 0
}

// Days returns the enabled weekdays in Sunday-first order.
func (w WeekdaySet) Days() []time.Weekday {
	var days []time.Weekday
	for day := time.Sunday; day <= time.Saturday; day++ {
		if w.Has(day) {
			days = append(days, day)
		}
	}
	return days
}

// Names returns the lowercase names of the enabled weekdays.
func (w WeekdaySet) Names() []string {
	var names []string
	for _, day := range w.Days() {
		names = append(names, weekdayNames[day])
	}
	return names
}

// String implements fmt.Stringer.
func (w WeekdaySet) String() string {
	return strings.Join(w.Names(), ",")
}

// ParseWeekday converts a lowercase day name into a time.Weekday.
func ParseWeekday(value string) (time.Weekday, error) {
	name := strings.ToLower(strings.TrimSpace(value))
	for i, candidate := range weekdayNames {
		if candidate == name {
			return time.Weekday(i), nil
		}
	}
	return 0, fmt.Errorf("invalid weekday %q", value)
}

// WeekdaySetFromNames builds a set from lowercase day names.
func WeekdaySetFromNames(names []string) (WeekdaySet, error) {
	var set WeekdaySet
	for _, name := range names {
		day, err := ParseWeekday(name)
		if err != nil {
			return 0, err
		}
		set = set.With(day)
	}
	return set, nil
}
