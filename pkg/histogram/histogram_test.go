package histogram

import (
	"strings"
	"testing"
	"time"

	"github.com/fatih/color"
	"github.com/google/go-cmp/cmp"

	"github.com/codeGROOVE-dev/gymassist/pkg/model"
)

func TestSummarize(t *testing.T) {
	sessions := []model.UsageSession{
		{Date: "2024-03-02", DurationHours: 1.5},
		{Date: "2024-03-01", DurationHours: 1},
		{Date: "2024-03-02", DurationHours: 0.5},
		{Date: " 2024-03-05 ", DurationHours: 0.25},
	}
	got, err := Summarize(sessions)
	if err != nil {
		t.Fatal(err)
	}
	want := Usage{
		Days: []Day{
			{Date: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), Hours: 1},
			{Date: time.Date(2024, 3, 2, 0, 0, 0, 0, time.UTC), Hours: 2},
			{Date: time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC), Hours: 0.25},
		},
		TotalHours: 3.25,
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Summarize() mismatch (-want +got):\n%s", diff)
	}

	if _, err := Summarize([]model.UsageSession{{Date: "03/01/2024"}}); err == nil {
		t.Error("expected error for bad date")
	}
}

func TestGenerate(t *testing.T) {
	u := Usage{
		Days: []Day{
			{Date: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), Hours: 1},
			{Date: time.Date(2024, 3, 2, 0, 0, 0, 0, time.UTC), Hours: 2},
			{Date: time.Date(2024, 3, 3, 0, 0, 0, 0, time.UTC), Hours: 0.01},
		},
		TotalHours: 3.01,
	}
	out := Generate("Ada", u, false)
	lines := strings.Split(strings.TrimSuffix(out, "\n"), "\n")

	if lines[0] != "📊 Daily Workout Time for Ada" {
		t.Errorf("title = %q", lines[0])
	}
	if want := "2024-03-01   ( 1.00) " + strings.Repeat("█", 20); lines[2] != want {
		t.Errorf("day 1 = %q, want %q", lines[2], want)
	}
	if want := "2024-03-02 ^ ( 2.00) " + strings.Repeat("█", MaxBarWidth); lines[3] != want {
		t.Errorf("peak day = %q, want %q", lines[3], want)
	}
	if want := "2024-03-03   ( 0.01) ·"; lines[4] != want {
		t.Errorf("short day = %q, want %q", lines[4], want)
	}
	if last := lines[len(lines)-1]; last != "Total hours spent in gym by Ada: 3.01 hours" {
		t.Errorf("total = %q", last)
	}
}

func TestGenerateEmpty(t *testing.T) {
	out := Generate("Ada", Usage{}, false)
	if !strings.Contains(out, "No workout sessions recorded yet") || !strings.Contains(out, "by Ada: 0.00 hours") {
		t.Errorf("Generate() = %q", out)
	}
}

func TestGenerateColorFlag(t *testing.T) {
	old := color.NoColor
	t.Cleanup(func() { color.NoColor = old })
	u := Usage{Days: []Day{{Date: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), Hours: 1}}, TotalHours: 1}

	tests := []struct {
		name     string
		global   bool
		colored  bool
		wantANSI bool
	}{
		{"off despite terminal colour", false, false, false},
		{"on despite no terminal", true, true, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			color.NoColor = tt.global
			out := Generate("Ada", u, tt.colored)
			if got := strings.Contains(out, "\x1b["); got != tt.wantANSI {
				t.Errorf("ANSI present = %v, want %v in %q", got, tt.wantANSI, out)
			}
		})
	}
}
