package models

import (
	"testing"
	"time"
)

func TestParseMoney(t *testing.T) {
	cases := []struct {
		in   string
		want float64
	}{
		{"1250.5", 1250.5},
		{"1,250.50", 1250.5},
		{"$1,250.50", 1250.5},
		{"25.00%", 25},
		{" 300 ", 300},
		{"", 0},
		{"n/a", 0},
		{"-50", 0}, // negatives clamp to zero on load
		{"abc12.5def", 12.5},
	}
	for _, c := range cases {
		if got := ParseMoney(c.in); got != c.want {
			t.Fatalf("ParseMoney(%q) = %v, want %v", c.in, got, c.want)
		}
	}
}

func TestParseQuoteID(t *testing.T) {
	cases := []struct {
		in   string
		want int
	}{
		{"1001", 1001},
		{"1001.0", 1001},
		{" 2003 ", 2003},
		{"", 0},
		{"garbage", 0},
	}
	for _, c := range cases {
		if got := ParseQuoteID(c.in); got != c.want {
			t.Fatalf("ParseQuoteID(%q) = %d, want %d", c.in, got, c.want)
		}
	}
}

func TestParseDate(t *testing.T) {
	if d := ParseDate("2025-03-14"); d == nil || d.Format("2006-01-02") != "2025-03-14" {
		t.Fatalf("expected 2025-03-14, got %v", d)
	}
	if d := ParseDate("2025-03-14 10:30:00"); d == nil || !d.Equal(time.Date(2025, 3, 14, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("time component should be dropped, got %v", d)
	}
	if d := ParseDate("not a date"); d != nil {
		t.Fatalf("invalid date should be nil, got %v", d)
	}
	if d := ParseDate(""); d != nil {
		t.Fatalf("empty date should be nil, got %v", d)
	}
}

func TestDaysBetween(t *testing.T) {
	start := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2025, 6, 5, 0, 0, 0, 0, time.UTC)
	if got := DaysBetween(&start, &end); got != 4 {
		t.Fatalf("expected 4 days, got %d", got)
	}
	if got := DaysBetween(&end, &start); got != 0 {
		t.Fatalf("reversed range should clamp to 0, got %d", got)
	}
	if got := DaysBetween(nil, &end); got != 0 {
		t.Fatalf("missing start should be 0, got %d", got)
	}
}
