package enums

import (
	"testing"
	"time"
)

func TestWeekdaySetToggle(t *testing.T) {
	var set WeekdaySet
	set = set.With(time.Monday).With(time.Thursday)

	if !set.Has(time.Monday) || !set.Has(time.Thursday) {
		t.Fatalf("expected monday+thursday enabled, got %s", set)
	}
	if set.Has(time.Sunday) {
		t.Fatal("sunday should be disabled")
	}

	set = set.Without(time.Monday)
	if set.Has(time.Monday) {
		t.Fatal("monday should be disabled after Without")
	}
	if set.IsEmpty() {
		t.Fatal("thursday should keep the set non-empty")
	}
}

func TestWeekdaySetFromNames(t *testing.T) {
	set, err := WeekdaySetFromNames([]string{"monday", "Friday"})
	if err != nil {
		t.Fatalf("WeekdaySetFromNames: %v", err)
	}
	if !set.Has(time.Monday) || !set.Has(time.Friday) {
		t.Fatalf("unexpected set %s", set)
	}

	if _, err := WeekdaySetFromNames([]string{"someday"}); err == nil {
		t.Fatal("expected error for unknown weekday")
	}
}

func TestWeekdaySetNamesOrder(t *testing.T) {
	set, err := WeekdaySetFromNames([]string{"saturday", "sunday"})
	if err != nil {
		t.Fatalf("WeekdaySetFromNames: %v", err)
	}
	names := set.Names()
	if len(names) != 2 || names[0] != "sunday" || names[1] != "saturday" {
		t.Fatalf("unexpected names %v", names)
	}
}
