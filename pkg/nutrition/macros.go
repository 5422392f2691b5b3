// Package nutrition estimates daily macronutrient targets for a member.
package nutrition

import (
	"fmt"
	"strings"

	"github.com/codeGROOVE-dev/gymassist/pkg/apperrors"
	"github.com/codeGROOVE-dev/gymassist/pkg/model"
)

// Ratio is the percentage of calories from each macronutrient.
type Ratio struct {
	Carbs, Protein, Fat float64
}

// Ratios by activity level.
var Ratios = map[string]Ratio{
	"low":      {Carbs: 45, Protein: 25, Fat: 30},
	"moderate": {Carbs: 50, Protein: 30, Fat: 20},
	"active":   {Carbs: 55, Protein: 35, Fat: 10},
}

// Calories per gram.
const (
	carbKcal    = 4
	proteinKcal = 4
	fatKcal     = 9
)

// Macros is a daily target in grams.
type Macros struct {
	Calories float64
	Carbs    float64
	Protein  float64
	Fat      float64
}

// Lines renders m the way the assistant prints it.
func (m Macros) Lines() []string {
	return []string{
		"Your macronutrient levels are: ",
		"",
		formatGrams("Carbohydrates", m.Carbs),
		formatGrams("Protein", m.Protein),
		formatGrams("Fat", m.Fat),
	}
}

func formatGrams(name string, grams float64) string {
	return fmt.Sprintf("%s: %.2f gm", name, grams)
}

// DailyCalories is 10w + 6.25h - 5a + 5 with weight in kg and height in cm.
func DailyCalories(weightKg, heightCm float64, age int) float64 {
	return 10*weightKg + 6.25*heightCm - 5*float64(age) + 5
}

// Calculate returns the macronutrient target for activityLevel.
func Calculate(weightKg, heightCm float64, age int, activityLevel string) (Macros, error) {
	r, ok := Ratios[strings.ToLower(strings.TrimSpace(activityLevel))]
	if !ok {
		return Macros{}, apperrors.Validation("nutrition.Calculate", "Invalid activity level: "+activityLevel)
	}
	total := DailyCalories(weightKg, heightCm, age)
	return Macros{
		Calories: total,
		Carbs:    r.Carbs / 100 * total / carbKcal,
		Protein:  r.Protein / 100 * total / proteinKcal,
		Fat:      r.Fat / 100 * total / fatKcal,
	}, nil
}

// ForMember calculates macros from a member's profile.
func ForMember(m model.Member) (Macros, error) {
	return Calculate(m.WeightKg, m.HeightCm, m.Age, m.ActivityLevel)
}
