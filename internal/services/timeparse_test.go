package services

import (
	"testing"
	"time"
)

func TestParseTimestamp(t *testing.T) {
	got, err := ParseTimestamp("2026-03-10 09:30:00")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	want := time.Date(2026, 3, 10, 9, 30, 0, 0, time.Local)
	if !got.Equal(want) {
		t.Fatalf("got %v, want %v", got, want)
	}

	if _, err := ParseTimestamp("10/03/2026 09:30"); err == nil {
		t.Fatal("expected error for wrong layout")
	}
}

func TestIntervalWindow(t *testing.T) {
	window, err := IntervalWindow("2026-03-10", "08:00-17:00")
	if err != nil {
		t.Fatalf("interval: %v", err)
	}

	start := time.Date(2026, 3, 10, 8, 0, 0, 0, time.Local).Unix()
	end := time.Date(2026, 3, 10, 17, 0, 0, 0, time.Local).Unix()
	if window[0] != start || window[1] != end {
		t.Fatalf("window = %v, want [%d %d]", window, start, end)
	}

	for _, bad := range []string{"08:00", "17:00-08:00", "8am-5pm", ""} {
		if _, err := IntervalWindow("2026-03-10", bad); err == nil {
			t.Fatalf("expected error for interval %q", bad)
		}
	}
}

func TestParseSkills(t *testing.T) {
	skills, err := ParseSkills("1, 2,3")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(skills) != 3 || skills[0] != 1 || skills[2] != 3 {
		t.Fatalf("skills = %v", skills)
	}

	empty, err := ParseSkills("  ")
	if err != nil || empty != nil {
		t.Fatalf("blank skills = %v, %v; want nil, nil", empty, err)
	}

	if _, err := ParseSkills("1,x"); err == nil {
		t.Fatal("expected error for non-integer skill")
	}
}
