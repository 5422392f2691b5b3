package nutrition

import (
	"errors"
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/codeGROOVE-dev/gymassist/pkg/apperrors"
	"github.com/codeGROOVE-dev/gymassist/pkg/model"
)

func TestCalculate(t *testing.T) {
	// 10*70 + 6.25*175 - 5*30 + 5 = 1648.75 kcal
	tests := []struct {
		level string
		want  Macros
	}{
		{"low", Macros{Calories: 1648.75, Carbs: 185.484375, Protein: 103.046875, Fat: 54.958333}},
		{"Moderate", Macros{Calories: 1648.75, Carbs: 206.09375, Protein: 123.65625, Fat: 36.638889}},
		{" ACTIVE ", Macros{Calories: 1648.75, Carbs: 226.703125, Protein: 144.265625, Fat: 18.319444}},
	}
	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			got, err := Calculate(70, 175, 30, tt.level)
			if err != nil {
				t.Fatal(err)
			}
			if diff := cmp.Diff(tt.want, got, cmpopts.EquateApprox(0, 1e-5)); diff != "" {
				t.Errorf("Calculate() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestCalculateUnknownLevel(t *testing.T) {
	_, err := Calculate(70, 175, 30, "extreme")
	if !errors.Is(err, apperrors.ErrValidation) {
		t.Fatalf("error = %v, want ErrValidation", err)
	}
	if got := apperrors.Message(err); got != "Invalid activity level: extreme" {
		t.Errorf("Message() = %q", got)
	}
}

func TestCaloriesAddUp(t *testing.T) {
	for level := range Ratios {
		m, err := Calculate(82.5, 181, 41, level)
		if err != nil {
			t.Fatal(err)
		}
		sum := m.Carbs*carbKcal + m.Protein*proteinKcal + m.Fat*fatKcal
		if math.Abs(sum-m.Calories) > 1e-9 {
			t.Errorf("%s: macros sum to %v kcal, want %v", level, sum, m.Calories)
		}
	}
}

func TestForMemberLines(t *testing.T) {
	m, err := ForMember(model.Member{WeightKg: 70, HeightCm: 175, Age: 30, ActivityLevel: "low"})
	if err != nil {
		t.Fatal(err)
	}
	want := []string{
		"Your macronutrient levels are: ",
		"",
		"Carbohydrates: 185.48 gm",
		"Protein: 103.05 gm",
		"Fat: 54.96 gm",
	}
	if diff := cmp.Diff(want, m.Lines()); diff != "" {
		t.Errorf("Lines() mismatch (-want +got):\n%s", diff)
	}
}
