// Package histogram renders a member's daily workout time as a terminal bar chart.
package histogram

import (
	"fmt"
	"math"
	"slices"
	"strings"
	"time"

	"github.com/fatih/color"

	"github.com/codeGROOVE-dev/gymassist/pkg/model"
)

// MaxBarWidth is the length of the longest bar.
const MaxBarWidth = 40

const dateLayout = "2006-01-02"

// Day is the total workout time for one date.
type Day struct {
	Date  time.Time
	Hours float64
}

// Usage summarises a member's sessions.
type Usage struct {
	Days       []Day
	TotalHours float64
}

// Summarize totals sessions per date, oldest first.
func Summarize(sessions []model.UsageSession) (Usage, error) {
	byDate := make(map[time.Time]float64)
	var u Usage
	for _, s := range sessions {
		d, err := time.Parse(dateLayout, strings.TrimSpace(s.Date))
		if err != nil {
			return Usage{}, fmt.Errorf("invalid session date %q: %w", s.Date, err)
		}
		byDate[d] += s.DurationHours
		u.TotalHours += s.DurationHours
	}
	for d, h := range byDate {
		u.Days = append(u.Days, Day{Date: d, Hours: h})
	}
	slices.SortFunc(u.Days, func(a, b Day) int { return a.Date.Compare(b.Date) })
	return u, nil
}

// Generate renders the chart for name. Bars are scaled to the busiest day,
// which is marked with ^. ANSI colour is written only when colored is set.
func Generate(name string, u Usage, colored bool) string {
	var output strings.Builder

	title := fmt.Sprintf("📊 Daily Workout Time for %s", name)
	output.WriteString(title + "\n")
	output.WriteString(strings.Repeat("─", 50) + "\n")

	if len(u.Days) == 0 {
		output.WriteString("No workout sessions recorded yet\n")
	}

	peak := 0.0
	for _, d := range u.Days {
		peak = max(peak, d.Hours)
	}

	barColor := paint(color.New(color.FgMagenta), colored)
	peakColor := paint(color.New(color.FgYellow), colored)
	for _, d := range u.Days {
		line := d.Date.Format(dateLayout) + " "
		if d.Hours == peak && peak > 0 {
			line += peakColor.Sprint("^") + " "
		} else {
			line += "  "
		}
		line += fmt.Sprintf("(%5.2f) ", d.Hours)

		switch n := barLength(d.Hours, peak); {
		case n == 0:
		case n == 1:
			line += barColor.Sprint("·")
		default:
			line += barColor.Sprint(strings.Repeat("█", n))
		}
		output.WriteString(line + "\n")
	}

	output.WriteString(strings.Repeat("─", 50) + "\n")
	output.WriteString(fmt.Sprintf("Total hours spent in gym by %s: %.2f hours\n", name, u.TotalHours))
	return output.String()
}

func paint(c *color.Color, on bool) *color.Color {
	if on {
		c.EnableColor()
	} else {
		c.DisableColor()
	}
	return c
}

func barLength(hours, peak float64) int {
	if hours <= 0 || peak <= 0 {
		return 0
	}
	return max(1, int(math.Round(hours/peak*MaxBarWidth)))
}
