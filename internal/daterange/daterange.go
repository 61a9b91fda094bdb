// Package daterange matches calendar days against template activation rules
package daterange

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/stwalsh4118/playout/internal/models"
)

// Range is an inclusive (month, day[, year]) window. A range whose start
// falls after its end wraps around the new year.
type Range struct {
	StartMonth int
	StartDay   int
	StartYear  *int
	EndMonth   int
	EndDay     int
	EndYear    *int
}

// FromTemplate returns the date range of a playout template
func FromTemplate(pt *models.PlayoutTemplate) Range {
	return Range{
		StartMonth: pt.StartMonth,
		StartDay:   pt.StartDay,
		StartYear:  pt.StartYear,
		EndMonth:   pt.EndMonth,
		EndDay:     pt.EndDay,
		EndYear:    pt.EndYear,
	}
}

// Contains reports whether the calendar day of t lies inside the range
func (r Range) Contains(t time.Time) bool {
	day := dateOf(t.Year(), int(t.Month()), t.Day())

	if r.StartYear != nil && r.EndYear != nil {
		start := dateOf(*r.StartYear, r.StartMonth, r.StartDay)
		end := dateOf(*r.EndYear, r.EndMonth, r.EndDay)
		return !day.Before(start) && !day.After(end)
	}

	if r.StartYear != nil && day.Before(dateOf(*r.StartYear, r.StartMonth, r.StartDay)) {
		return false
	}
	if r.EndYear != nil && day.After(dateOf(*r.EndYear, r.EndMonth, r.EndDay)) {
		return false
	}

	md := monthDay(int(t.Month()), t.Day())
	start := monthDay(r.StartMonth, r.StartDay)
	end := monthDay(r.EndMonth, r.EndDay)
	if start <= end {
		return md >= start && md <= end
	}
	return md >= start || md <= end
}

func monthDay(month, day int) int {
	return month*100 + day
}

func dateOf(year, month, day int) time.Time {
	return time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
}

// ParseList parses a comma separated list of integers; blank means no filter
func ParseList(s string) ([]int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	parts := strings.Split(s, ",")
	out := make([]int, 0, len(parts))
	for _, p := range parts {
		v, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return nil, fmt.Errorf("invalid list entry %q: %w", p, err)
		}
		out = append(out, v)
	}
	return out, nil
}

// listAllows treats an empty or malformed list as "every value"
func listAllows(list string, v int) bool {
	values, err := ParseList(list)
	if err != nil || len(values) == 0 {
		return true
	}
	return slices.Contains(values, v)
}

// Matches reports whether a playout template is active on the local day of t.
// Days of week count from Sunday = 0.
func Matches(pt *models.PlayoutTemplate, t time.Time) bool {
	if !listAllows(pt.DaysOfWeek, int(t.Weekday())) {
		return false
	}
	if !listAllows(pt.DaysOfMonth, t.Day()) {
		return false
	}
	if !listAllows(pt.MonthsOfYear, int(t.Month())) {
		return false
	}
	if pt.LimitToDateRange && !FromTemplate(pt).Contains(t) {
		return false
	}
	return true
}

// Pick returns the matching template with the lowest Index; ties go to the
// earliest authored row
func Pick(templates []models.PlayoutTemplate, t time.Time) (*models.PlayoutTemplate, bool) {
	var best *models.PlayoutTemplate
	for i := range templates {
		pt := &templates[i]
		if !Matches(pt, t) {
			continue
		}
		if best == nil || pt.Index < best.Index || (pt.Index == best.Index && pt.ID < best.ID) {
			best = pt
		}
	}
	return best, best != nil
}
