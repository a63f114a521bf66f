package timezone

import (
	"testing"
	"time"
)

func unixAt(y int, m time.Month, d, h int) int64 {
	return time.Date(y, m, d, h, 0, 0, 0, time.UTC).Unix()
}

func TestParse_UTCVariants(t *testing.T) {
	for _, raw := range []string{"UTC", "utc", "Z"} {
		p, err := Parse(raw)
		if err != nil {
			t.Fatalf("Parse(%q) unexpected error: %v", raw, err)
		}
		if p.CanonicalName() != "UTC" {
			t.Fatalf("Parse(%q).CanonicalName() = %s, want UTC", raw, p.CanonicalName())
		}
	}
}

func TestParse_FixedOffset(t *testing.T) {
	p, err := Parse("-05:30")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.CanonicalName() != "-05:30" {
		t.Fatalf("CanonicalName() = %s, want -05:30", p.CanonicalName())
	}
}

func TestParse_Rejects(t *testing.T) {
	for _, raw := range []string{"+8", "America/New_York", "05:30", "+24:00", "+00:60"} {
		if _, err := Parse(raw); err == nil {
			t.Fatalf("Parse(%q) expected an error, got nil", raw)
		}
	}
}

func TestDayDelta_WholeDaysInZone(t *testing.T) {
	p, err := Parse("UTC")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	anchor := unixAt(2024, 1, 1, 23)
	target := unixAt(2024, 1, 2, 1)
	if delta := p.DayDelta(anchor, target); delta != 1 {
		t.Fatalf("DayDelta = %d, want 1", delta)
	}
}

func TestDayDelta_SameCalendarDay(t *testing.T) {
	p, _ := Parse("UTC")
	anchor := unixAt(2024, 1, 1, 0)
	target := unixAt(2024, 1, 1, 23)
	if delta := p.DayDelta(anchor, target); delta != 0 {
		t.Fatalf("DayDelta = %d, want 0", delta)
	}
}
