// Package timezone implements the fixed-offset-only timezone policy used
// to convert commit timestamps into calendar dates (spec.md §4.1). No
// IANA zoneinfo database is pulled in — only "UTC"/"Z" and literal
// +/-HH:MM offsets are accepted, by design.
package timezone

import (
	"strconv"
	"strings"
	"time"

	"github.com/frgrisk/tidemark/internal/tideerr"
)

// Policy converts unix timestamps to calendar dates in a fixed zone.
type Policy struct {
	loc  *time.Location
	name string
}

// Parse accepts "UTC", "Z" (case-insensitive), or an exactly six-character
// "+HH:MM"/"-HH:MM" offset with hours <= 23 and minutes <= 59. Anything
// else, including "+8" or an IANA zone name, fails with InvalidTimezone.
func Parse(raw string) (Policy, error) {
	trimmed := strings.TrimSpace(raw)
	if strings.EqualFold(trimmed, "utc") || strings.EqualFold(trimmed, "z") {
		return Policy{loc: time.UTC, name: "UTC"}, nil
	}

	offset, ok := parseFixedOffset(trimmed)
	if !ok {
		return Policy{}, tideerr.InvalidTimezone(raw)
	}
	name := canonicalOffsetName(offset)
	return Policy{loc: time.FixedZone(name, offset), name: name}, nil
}

// CanonicalName reports "UTC" or the offset's canonical +/-HH:MM rendering.
func (p Policy) CanonicalName() string { return p.name }

// DateOf maps a unix timestamp to its calendar date in this zone.
func (p Policy) DateOf(ts int64) time.Time {
	t := time.Unix(ts, 0).In(p.loc)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// DayDelta returns the whole-day difference between the target's and the
// anchor's calendar dates in this zone (target date minus anchor date).
func (p Policy) DayDelta(anchorTS, targetTS int64) int64 {
	anchorDate := p.DateOf(anchorTS)
	targetDate := p.DateOf(targetTS)
	return int64(targetDate.Sub(anchorDate).Hours() / 24)
}

func parseFixedOffset(raw string) (int, bool) {
	if len(raw) != 6 {
		return 0, false
	}
	sign := raw[0]
	if sign != '+' && sign != '-' {
		return 0, false
	}
	if raw[3] != ':' {
		return 0, false
	}

	hours, err := strconv.Atoi(raw[1:3])
	if err != nil {
		return 0, false
	}
	minutes, err := strconv.Atoi(raw[4:6])
	if err != nil {
		return 0, false
	}
	if hours > 23 || minutes > 59 {
		return 0, false
	}

	total := hours*3600 + minutes*60
	if sign == '-' {
		total = -total
	}
	return total, true
}

func canonicalOffsetName(offsetSeconds int) string {
	sign := "+"
	total := offsetSeconds
	if total < 0 {
		sign = "-"
		total = -total
	}
	hours := total / 3600
	minutes := (total % 3600) / 60
	return sign + pad2(hours) + ":" + pad2(minutes)
}

func pad2(v int) string {
	if v < 10 {
		return "0" + strconv.Itoa(v)
	}
	return strconv.Itoa(v)
}
