// Package timeslot converts between clock hours, weekdays and the labels
// shown to members. Weekdays are numbered Monday=0 through Sunday=6.
package timeslot

import (
	"strconv"
	"strings"
	"time"
)

// Opening hours covered by the occupancy grid.
const (
	FirstHour = 7
	LastHour  = 21
	// HoursPerDay is the number of hourly slots from FirstHour to LastHour.
	HoursPerDay = LastHour - FirstHour + 1
	DaysPerWeek = 7
)

var dayNames = [DaysPerWeek]string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday"}

// HourLabel renders a 24-hour clock hour on the 12-hour clock.
// Examples:
//   - 7 returns "7 AM"
//   - 12 returns "12 PM"
//   - 15 returns "3 PM"
//
// Hours before noon keep their number, so 0 renders as "0 AM".
func HourLabel(hour int) string {
	switch {
	case hour < 12:
		return strconv.Itoa(hour) + " AM"
	case hour == 12:
		return "12 PM"
	default:
		return strconv.Itoa(hour-12) + " PM"
	}
}

// JoinLabels renders hours as a comma-separated label list.
func JoinLabels(hours []int) string {
	labels := make([]string, len(hours))
	for i, h := range hours {
		labels[i] = HourLabel(h)
	}
	return strings.Join(labels, ", ")
}

// Weekday returns t's day of the week with Monday=0.
func Weekday(t time.Time) int {
	return (int(t.Weekday()) + 6) % DaysPerWeek
}

// DayName returns the English name for a Monday=0 weekday.
// Out-of-range values wrap.
func DayName(weekday int) string {
	return dayNames[((weekday%DaysPerWeek)+DaysPerWeek)%DaysPerWeek]
}

// StartOfDay truncates t to local midnight.
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// AddDays moves t by n calendar days, keeping the wall clock.
func AddDays(t time.Time, n int) time.Time {
	return t.AddDate(0, 0, n)
}
