package membership

import (
	"fmt"
	"strconv"
	"strings"
)

// Plan is a membership tier.
type Plan struct {
	Name      string
	Summary   string
	Offerings string
	Price     int // USD per month
}

// Plans in menu order.
var Plans = []Plan{
	{
		Name:      "Standard",
		Summary:   "Access to gym facilities.",
		Offerings: "Access to gym facilities, including cardio and strength training areas.",
		Price:     30,
	},
	{
		Name:      "Premium",
		Summary:   "Access to gym facilities, group classes, and personal training sessions.",
		Offerings: "Access to gym facilities, group fitness classes, and personalized training sessions.",
		Price:     50,
	},
	{
		Name:      "Platinum",
		Summary:   "All-inclusive access, including premium features and spa services.",
		Offerings: "All-inclusive access, including premium gym features and spa services.",
		Price:     80,
	},
}

// PlanByChoice maps a menu choice "1".."3" to its plan.
func PlanByChoice(choice string) (Plan, bool) {
	n, err := strconv.Atoi(strings.TrimSpace(choice))
	if err != nil || n < 1 || n > len(Plans) {
		return Plan{}, false
	}
	return Plans[n-1], true
}

// PriceLine is the monthly price as printed.
func (p Plan) PriceLine() string {
	return fmt.Sprintf("Price: $%d/month", p.Price)
}

// EnrollmentMenu lists plans with their offerings.
func EnrollmentMenu() []string {
	lines := []string{"Please select your membership plan from our options: "}
	for i, p := range Plans {
		lines = append(lines,
			fmt.Sprintf("%d. %s Membership:", i+1, p.Name),
			"Offerings: "+p.Offerings,
			p.PriceLine(),
		)
	}
	return lines
}

// SummaryMenu lists plans in one line each.
func SummaryMenu() []string {
	lines := []string{"** Membership Plans **"}
	for i, p := range Plans {
		lines = append(lines, fmt.Sprintf("%d. %s Membership: %s", i+1, p.Name, p.Summary))
	}
	return lines
}

// Details describes one plan.
func (p Plan) Details() []string {
	return []string{p.Name + " Membership:", p.Offerings, p.PriceLine()}
}

// Terms are the enrollment terms and conditions.
var Terms = []string{
	"1. Must be 18 years of age or older. Valid ID required.",
	"2. Valid at participating locations only.",
	"3. Terms and conditions may vary.",
	"4. Each Anytime Fitness is independently owned and operated.",
	"5. By submitting my information, I accept the Terms & Conditions, Privacy Notice, and consent to receive marketing and other communications by email, phone and text from Anytime Fitness Franchisor LLC, its affiliates, franchisees and/or their authorized designees.",
	"6. I can withdraw my consent at any time.",
	"7. Message and data rates apply.",
	"8. Full terms and conditions can be found at: www.anytimefitness.com or your local Anytime Fitness club.",
}

// Promotions are the current offers.
var Promotions = []string{
	"1. Student Offers - If you are a student, please let us know at the time of enrollment. We have a special offer for you!",
	"2. 30 Days Free Membership - If you sign up for a 12-month plan, you can get the first month of your membership free of cost.",
	"3. 7 Day Pass/Try Us Free - If you are a new customer with a valid address in your home gym city, you are eligible to have a free 7-day trial at no cost.",
	"4. Free Fitness Consultation - Not sure about your fitness plan? Head over to any of our centers for a free fitness consultation with our expert to plan your fitness routine.",
}
