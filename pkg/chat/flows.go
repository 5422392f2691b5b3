package chat

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/codeGROOVE-dev/gymassist/pkg/apperrors"
	"github.com/codeGROOVE-dev/gymassist/pkg/histogram"
	"github.com/codeGROOVE-dev/gymassist/pkg/membership"
	"github.com/codeGROOVE-dev/gymassist/pkg/nutrition"
)

// contact collects and validates the details of a new or incoming member.
// who is "your" or "their".
func (s *Session) contact(ctx context.Context, firstPrompt, lastPrompt, who string) (membership.Applicant, error) {
	var a membership.Applicant
	var err error
	if a.FirstName, err = s.ask(ctx, firstPrompt); err != nil {
		return a, err
	}
	if a.LastName, err = s.ask(ctx, lastPrompt); err != nil {
		return a, err
	}
	fields := []struct {
		prompt string
		check  func(string) error
		dst    *string
	}{
		{"What's " + who + " email address? ", membership.ValidateEmail, &a.Email},
		{"What's " + who + " phone number? ", membership.ValidatePhone, &a.Phone},
		{"What's " + who + " zipcode? ", membership.ValidateZipcode, &a.Zipcode},
	}
	for _, f := range fields {
		err := s.askUntil(ctx, f.prompt, func(_ context.Context, answer string) error {
			if err := f.check(answer); err != nil {
				return err
			}
			*f.dst = answer
			return nil
		})
		if err != nil {
			return a, err
		}
	}
	return a, nil
}

func (s *Session) enroll(ctx context.Context) error {
	s.header("New User Registration")
	s.say("Take the time to discover Anytime Fitness. Access is FREE, and we'd love to show you around our gym!")
	a, err := s.contact(ctx, "What's your first name? ", "What's your last name? ", "your")
	if err != nil {
		return err
	}

	s.say(membership.EnrollmentMenu()...)
	var plan membership.Plan
	err = s.askUntil(ctx, "\nPlease enter your choice (Enter 1/2/3): ", func(_ context.Context, choice string) error {
		p, ok := membership.PlanByChoice(choice)
		if !ok {
			return apperrors.Validation("chat.enroll", "Please select a valid membership plan (1/2/3)")
		}
		plan = p
		return nil
	})
	if err != nil {
		return err
	}

	s.say("", "Here are our terms and conditions:")
	s.say(membership.Terms...)
	agreement, err := s.ask(ctx, "\nDo you agree to the terms and conditions? (type 'yes' or 'no') ")
	if err != nil {
		return err
	}
	if strings.ToLower(agreement) != "yes" {
		s.warn("We're sorry, you need to agree to the terms and conditions to continue.")
		return nil
	}

	rctx, cancel := s.request(ctx)
	defer cancel()
	m, err := s.app.Members.Enroll(rctx, a, plan)
	if err != nil {
		return err
	}
	s.say("",
		fmt.Sprintf("Thank you for providing your information, %s!", m.FirstName),
		"You're now eligible for a 7-day free trial pass at Anytime Fitness.",
		"We'll send you an email with more information on how to activate your trial pass.",
		fmt.Sprintf("Your customer id is %s.", m.CustomerID),
		"Thank you for choosing AnytimeAssistant and Anytime Fitness!")
	s.success("Registration successful!")
	return nil
}

func (s *Session) plans(ctx context.Context) error {
	s.header("Membership Plans")
	s.say(membership.SummaryMenu()[1:]...)
	choice, err := s.ask(ctx, "Please choose a membership plan (1/2/3): ")
	if err != nil {
		return err
	}
	p, ok := membership.PlanByChoice(choice)
	if !ok {
		s.warn(badChoice)
		return nil
	}
	s.say(p.Details()...)
	return nil
}

func (s *Session) promotions() {
	s.say(membership.Promotions...)
}

func (s *Session) manage(ctx context.Context, id string) error {
	for range s.tries {
		reply, err := s.ask(ctx, "\nWould you like to pause,cancel,reactivate or transfer your membership: ")
		if err != nil {
			return err
		}
		switch membership.ParseAction(reply) {
		case membership.ActionPause:
			return s.do(ctx, membership.PausedMessage, func(ctx context.Context) error {
				return s.app.Members.Pause(ctx, id)
			})
		case membership.ActionCancel:
			s.say("You also have the option to pause your membership. Would you like to do that instead?")
			yn, err := s.ask(ctx, "Enter yes/no :")
			if err != nil {
				return err
			}
			if strings.Contains(strings.ToLower(yn), "yes") {
				s.say("Taking you back to manage membership page, hope to see you again at anytimefitness!")
				continue
			}
			reason, err := s.ask(ctx, "Please enter reason for cancellation: ")
			if err != nil {
				return err
			}
			return s.do(ctx, membership.CanceledMessage, func(ctx context.Context) error {
				return s.app.Members.Cancel(ctx, id, reason)
			})
		case membership.ActionReactivate:
			rctx, cancel := s.request(ctx)
			changed, err := s.app.Members.Reactivate(rctx, id)
			cancel()
			if err != nil {
				return err
			}
			if !changed {
				s.say(membership.AlreadyActive)
				return nil
			}
			s.success(membership.ReactivatedMessage)
			return nil
		case membership.ActionTransfer:
			to, err := s.contact(ctx, "What's the transfer members first name? ", "What's the transfer members last name? ", "their")
			if err != nil {
				return err
			}
			return s.do(ctx, membership.TransferredMessage, func(ctx context.Context) error {
				return s.app.Members.Transfer(ctx, id, to)
			})
		}
		s.warn(badChoice)
	}
	s.warn(tooMany)
	return nil
}

// do runs one bounded request and prints done on success.
func (s *Session) do(ctx context.Context, done string, fn func(context.Context) error) error {
	rctx, cancel := s.request(ctx)
	defer cancel()
	if err := fn(rctx); err != nil {
		return err
	}
	s.success(done)
	return nil
}

func (s *Session) analytics(ctx context.Context, id string) error {
	rctx, cancel := s.request(ctx)
	defer cancel()

	m, err := s.app.Members.Login(rctx, id)
	if err != nil {
		return err
	}
	s.say("Here's information about your profile.", "")

	macros, err := nutrition.ForMember(*m)
	if err != nil {
		if !apperrors.Recoverable(err) {
			return err
		}
		s.warn(userText(err))
	} else {
		s.say(macros.Lines()...)
	}

	sessions, err := s.app.Usage.UsageSessions(rctx, id)
	if err != nil {
		return err
	}
	usage, err := histogram.Summarize(sessions)
	if err != nil {
		return apperrors.Computation("chat.analytics", err)
	}
	s.say("")
	fmt.Fprint(s.out, histogram.Generate(m.FirstName, usage, s.color))
	return nil
}

func (s *Session) nearest(ctx context.Context) error {
	zipcode, err := s.ask(ctx, "Enter your zipcode: ")
	if err != nil {
		return err
	}
	amenities, err := s.ask(ctx, "Enter the gym amenities: ")
	if err != nil {
		return err
	}

	rctx, cancel := s.request(ctx)
	defer cancel()
	res, err := s.app.Locator.Nearest(rctx, zipcode, amenities)
	if err != nil {
		return err
	}

	if res.AmenityMatch {
		s.say("The centers closest to your location are:", "")
	} else {
		s.say("Sorry, there are no available gyms with the amenities you have requested. You can also check out these other gyms close to your location:", "")
	}
	for i, g := range res.Gyms {
		s.say(fmt.Sprintf("(%d)", i+1),
			fmt.Sprintf("Location: %s, %s, %s", g.Address, g.City, g.ZipCode),
			"Amenities: "+g.Amenities,
			fmt.Sprintf("Distance: %.2f km", g.DistanceKm),
			"")
	}
	return nil
}

func (s *Session) trainer(ctx context.Context, id string) error {
	return s.askUntil(ctx, "Please enter your trainer requirement (e.g., yoga, weight training, cardio): ", func(ctx context.Context, req string) error {
		t, err := s.app.Trainers.Assign(ctx, id, req)
		if err != nil {
			return err
		}
		s.success("We found a trainer for you!")
		s.say("Trainer Name: "+t.Name,
			"Specialization: "+t.Specialization,
			"Age: "+strconv.Itoa(t.Age),
			"Rating: "+strconv.Itoa(t.Rating))
		return nil
	})
}

func (s *Session) exercises(ctx context.Context) error {
	prompt := "\nWhat muscles are you planning to workout on?(For eg. Biceps, Shoulders, Triceps etc)\nPlease enter your choice: "
	return s.askUntil(ctx, prompt, func(ctx context.Context, muscle string) error {
		sg, err := s.app.Exercises.Suggest(ctx, muscle)
		if err != nil {
			return err
		}
		s.say("", fmt.Sprintf("The following are the recommended exercises to workout your %s: ", sg.Muscle), "")
		for _, ex := range sg.Exercises {
			s.say("Exercise Name: "+ex.Name,
				"Description: "+ex.Description,
				"Image: "+ex.ImageURL,
				"")
		}
		return nil
	})
}

func (s *Session) bestTime(ctx context.Context) error {
	var gymID int
	err := s.askUntil(ctx, "\nPlease enter your home gymId: ", func(ctx context.Context, answer string) error {
		id, err := strconv.Atoi(answer)
		if err != nil {
			return apperrors.Validation("chat.bestTime", "you seem to have entered an incorrect gymId")
		}
		if _, err := s.app.Gyms.Location(ctx, id); err != nil {
			return err
		}
		gymID = id
		return nil
	})
	if err != nil {
		return err
	}

	when, err := s.ask(ctx, "\nWhen are you planning to go to the gym? ")
	if err != nil {
		return err
	}
	rctx, cancel := s.request(ctx)
	defer cancel()
	rec, err := s.app.Forecast.Recommend(rctx, gymID, when)
	if err != nil {
		return err
	}
	s.say(rec.Lines()...)
	return nil
}

func (s *Session) faq(ctx context.Context) error {
	q, err := s.ask(ctx, "\nEnter your query: ")
	if err != nil {
		return err
	}
	rctx, cancel := s.request(ctx)
	defer cancel()
	answer, src := s.app.FAQ.Answer(rctx, q)
	s.logger.Debug("faq answered", "source", src)
	s.say(answer)
	return nil
}
