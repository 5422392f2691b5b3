// Package faq answers common member questions with ordered keyword rules.
package faq

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/codeGROOVE-dev/gymassist/pkg/gemini"
)

// NoAnswer is returned when no rule matches and no fallback answers.
const NoAnswer = "I'm sorry, but I couldn't find an answer to your question."

// Answerer supplies answers for questions no rule covers.
type Answerer interface {
	Answer(ctx context.Context, question string) (string, error)
}

type rule struct {
	name   string
	match  func(q string) bool
	answer string
}

func containsAny(q string, words ...string) bool {
	for _, w := range words {
		if strings.Contains(q, w) {
			return true
		}
	}
	return false
}

// Rules are evaluated in order against the lower-cased question; the first
// match wins.
var rules = []rule{
	{
		name:   "club access",
		match:  func(q string) bool { return containsAny(q, "all", "another", "any ") },
		answer: "Yes your access key will allow you access to all gyms at any location and can work out at any gym you choose. However, there is one exception. There is a 30-day delay on reciprocity when you initially begin your membership. So for the first 30 days it will work only in your home gym",
	},
	{
		name:   "international",
		match:  func(q string) bool { return containsAny(q, "abroad", "international", "vacation", "different country", "outside canada") },
		answer: "Yes, globetrotter! When you are a part of the Anytime Fitness family, you can work out at gyms nationwide AND around the globe thanks to our worldwide club access. Think of it as a global membership plan.",
	},
	{
		name: "lost key",
		match: func(q string) bool {
			return containsAny(q, "lost", "can't find", "cannot find", "missing", "don't know where", "misplaced") && strings.Contains(q, "key")
		},
		answer: "Oh no! If you’ve lost your key fob, contact your home club ASAP and they will help you purchase a replacement key, for a small fee.",
	},
	{
		name:   "personal training",
		match:  func(q string) bool { return strings.Contains(q, "personal") && containsAny(q, "train", "coach", "specialist") },
		answer: "Anytime Fitness has lots of training options available. Personal Training is offered in a one-on-one format lead by a certified personal trainer, providing a very personalized experience. Small group training is similar to personal training, only it’s more fun as there are typically 2-4 people in a session. Team workouts include 5+ people and provide accountability and an energy-filled atmosphere that keeps you motivated. Make sure to check with your local gym to learn more about personal and team training.",
	},
	{
		name:   "showers",
		match:  func(q string) bool { return containsAny(q, "shower", "locker") },
		answer: "Yes, we do! Making healthy happen should be as easy as possible and the option to take a quick shower after a workout is sometimes the difference between “I can work out” and “I can’t work out.” While all clubs have showers and bathrooms, not all locations offer lockers.",
	},
	{
		name:   "wifi",
		match:  func(q string) bool { return strings.Contains(q, "wifi") },
		answer: "While many Anytime Fitness locations offer Wifi in their club, it is up to the owner to make it available to members. Don’t hesitate to ask your local club if you do not find the login information readily posted. Each location has separate a Wifi password. Reach out to your local gym to find more information on Wifi availability!",
	},
	{
		name:   "guests",
		match:  func(q string) bool { return containsAny(q, "guest", "visitor", "friend") },
		answer: "Yes! We do allow guests if you would like to bring a friend. Our guest policy requires that visitors come in during staffed hours after coordinating with the local gym’s staff. Think of staffed hours as guest hours because each guest is required to sign in for the safety of our members!",
	},
	{
		name:   "children",
		match:  func(q string) bool { return containsAny(q, "child", "kid", "son", "daughter", "baby", "toddler") },
		answer: "Anytime fitness locations do not offer child care or day care. For that reason, our child policy does not allow for children to be present with their parent while working out unless the child is a member in our system and meets our minimum age requirements (which are set individually by each club!).",
	},
	{
		name:   "age",
		match:  func(q string) bool { return containsAny(q, "age", "old") },
		answer: "While there isn’t a set age limit, each of our Anytime Fitness locations must comply with state laws on age requirements and age restrictions. Check in with your local gym to learn what the age policy is near you.",
	},
}

// Source says where an answer came from.
type Source string

// Answer sources.
const (
	SourceRule     Source = "rule"
	SourceFallback Source = "gemini"
	SourceNone     Source = "none"
)

// Responder answers questions.
type Responder struct {
	fallback Answerer
	logger   *slog.Logger
}

// New creates a Responder. fallback may be nil.
func New(fallback Answerer, logger *slog.Logger) *Responder {
	if logger == nil {
		logger = slog.Default()
	}
	return &Responder{fallback: fallback, logger: logger}
}

// Match returns the rule answer for question, if any.
func Match(question string) (string, bool) {
	q := strings.ToLower(question)
	for _, r := range rules {
		if r.match(q) {
			return r.answer, true
		}
	}
	return "", false
}

// Answer returns the best available answer. It never fails: fallback errors
// are logged and NoAnswer is returned.
func (r *Responder) Answer(ctx context.Context, question string) (string, Source) {
	if answer, ok := Match(question); ok {
		return answer, SourceRule
	}
	if r.fallback == nil || strings.TrimSpace(question) == "" {
		return NoAnswer, SourceNone
	}

	answer, err := r.fallback.Answer(ctx, question)
	switch {
	case errors.Is(err, gemini.ErrUnanswerable):
		r.logger.Debug("fallback declined question")
		return NoAnswer, SourceNone
	case err != nil:
		r.logger.Warn("faq fallback failed", "error", err)
		return NoAnswer, SourceNone
	}
	return answer, SourceFallback
}
