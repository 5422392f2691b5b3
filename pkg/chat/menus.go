package chat

import (
	"context"
	"errors"
	"strings"

	"github.com/codeGROOVE-dev/gymassist/pkg/apperrors"
	"github.com/codeGROOVE-dev/gymassist/pkg/model"
)

func (s *Session) start(ctx context.Context) error {
	s.say("Hello! Welcome to AnytimeAssistant, the chatbot for Anytime Fitness.")
	for range s.tries {
		reply, err := s.ask(ctx, "\nAre you a new user, an existing user, or do you want to exit? (type 'new', 'existing', or 'exit'): ")
		if err != nil {
			return err
		}
		switch strings.ToLower(reply) {
		case "new":
			return s.newUser(ctx)
		case "existing":
			return s.existingUser(ctx)
		case "exit":
			s.say("Thank you! Have a nice day.")
			return nil
		}
		s.warn("We're sorry, we couldn't understand your response. Please type 'new', 'existing', or 'exit'.")
	}
	s.say(goodbye)
	return nil
}

func (s *Session) newUser(ctx context.Context) error {
	for {
		s.say("", "Welcome, new user! How can we assist you today?",
			"1. Enroll in Anytime Fitness",
			"2. General Information")
		choice, err := s.ask(ctx, "Please choose an option (1/2): ")
		if err != nil {
			return err
		}
		switch choice {
		case "1":
			err = s.enroll(ctx)
		case "2":
			err = s.generalInfo(ctx)
		default:
			s.warn(badChoice)
		}
		if err := s.report(err); err != nil {
			return err
		}
		if ok, err := s.again(ctx); !ok || err != nil {
			return err
		}
	}
}

func (s *Session) generalInfo(ctx context.Context) error {
	s.header("General Information")
	s.say("1. Membership plans",
		"2. Promotions & Offers",
		"3. Find your nearest gym",
		"4. FAQs")
	choice, err := s.ask(ctx, "Please choose an option (1/2/3/4): ")
	if err != nil {
		return err
	}
	switch choice {
	case "1":
		s.say("Here's information about our membership plans.")
		return s.plans(ctx)
	case "2":
		s.say("Here's information promotions & Offers.")
		s.promotions()
		return nil
	case "3":
		return s.nearest(ctx)
	case "4":
		return s.faq(ctx)
	}
	s.warn(badChoice)
	return nil
}

func (s *Session) existingUser(ctx context.Context) error {
	var member *model.Member
	err := s.askUntil(ctx, "\nPlease enter your customer id: ", func(ctx context.Context, id string) error {
		m, err := s.app.Members.Login(ctx, id)
		if errors.Is(err, apperrors.ErrNotFound) || errors.Is(err, apperrors.ErrValidation) {
			return apperrors.Validation("chat.login", "Sorry, you seem to have entered an invalid customer id. Please try again.")
		}
		member = m
		return err
	})
	if errors.Is(err, errGaveUp) {
		s.say(goodbye)
		return nil
	}
	if err := s.report(err); err != nil || member == nil {
		return err
	}
	s.logger.Info("member logged in", "customer_id", member.CustomerID)

	id := member.CustomerID
	for {
		s.header("Existing User Options")
		s.say("You're an existing user! Here are some options:",
			"1. Manage Membership",
			"2. Profile Analytics",
			"3. Find your nearest gym",
			"4. Find a personal trainer",
			"5. Recommend Exercise",
			"6. Find best time to go to gym",
			"7. FAQs")
		choice, err := s.ask(ctx, "Please choose an option (1/2/3/4/5/6/7): ")
		if err != nil {
			return err
		}
		switch choice {
		case "1":
			err = s.manage(ctx, id)
		case "2":
			err = s.analytics(ctx, id)
		case "3":
			err = s.nearest(ctx)
		case "4":
			err = s.trainer(ctx, id)
		case "5":
			err = s.exercises(ctx)
		case "6":
			err = s.bestTime(ctx)
		case "7":
			err = s.faq(ctx)
		default:
			s.warn(badChoice)
		}
		if err := s.report(err); err != nil {
			return err
		}
		if ok, err := s.again(ctx); !ok || err != nil {
			return err
		}
	}
}
