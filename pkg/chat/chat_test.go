package chat

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/fatih/color"

	"github.com/codeGROOVE-dev/gymassist/pkg/apperrors"
	"github.com/codeGROOVE-dev/gymassist/pkg/exercise"
	"github.com/codeGROOVE-dev/gymassist/pkg/faq"
	"github.com/codeGROOVE-dev/gymassist/pkg/forecast"
	"github.com/codeGROOVE-dev/gymassist/pkg/locator"
	"github.com/codeGROOVE-dev/gymassist/pkg/membership"
	"github.com/codeGROOVE-dev/gymassist/pkg/model"
	"github.com/codeGROOVE-dev/gymassist/pkg/trainer"
)

type fakeMembers struct {
	members  map[string]*model.Member
	enrolled []membership.Applicant
	plans    []string
	actions  []string
}

func (f *fakeMembers) Login(_ context.Context, id string) (*model.Member, error) {
	m, ok := f.members[strings.ToLower(id)]
	if !ok {
		return nil, apperrors.NotFound("fake.Login", "invalid customer id")
	}
	return m, nil
}

func (f *fakeMembers) Enroll(_ context.Context, a membership.Applicant, p membership.Plan) (model.Member, error) {
	f.enrolled = append(f.enrolled, a)
	f.plans = append(f.plans, p.Name)
	return model.Member{CustomerID: "gym_7", FirstName: a.FirstName}, nil
}

func (f *fakeMembers) Pause(context.Context, string) error {
	f.actions = append(f.actions, "pause")
	return nil
}

func (f *fakeMembers) Cancel(_ context.Context, _, reason string) error {
	f.actions = append(f.actions, "cancel:"+reason)
	return nil
}

func (f *fakeMembers) Reactivate(context.Context, string) (bool, error) {
	f.actions = append(f.actions, "reactivate")
	return false, nil
}

func (f *fakeMembers) Transfer(_ context.Context, _ string, to membership.Applicant) error {
	f.actions = append(f.actions, "transfer:"+to.FirstName)
	return nil
}

type fakeLocator struct{ res *locator.Result }

func (f *fakeLocator) Nearest(context.Context, string, string) (*locator.Result, error) {
	if f.res == nil {
		return nil, apperrors.NotFound("fake.Nearest", "we are not available in your location yet. We are constantly working to expand our network and will be available in your location soon!")
	}
	return f.res, nil
}

type fakeTrainers struct{}

func (fakeTrainers) Assign(_ context.Context, _, req string) (*trainer.Scored, error) {
	if req != "yoga" {
		return nil, apperrors.NotFound("fake.Assign", "no trainer found for this specialization")
	}
	return &trainer.Scored{Trainer: model.Trainer{Name: "Maya", Specialization: "Yoga", Age: 29}, Rating: 5}, nil
}

type fakeExercises struct{ err error }

func (f fakeExercises) Suggest(_ context.Context, muscle string) (*exercise.Suggestion, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &exercise.Suggestion{Muscle: exercise.Capitalize(muscle), Exercises: []exercise.Exercise{
		{ID: 1, Name: "Curl", Description: "Curl slowly.", ImageURL: exercise.NoImage},
	}}, nil
}

type fakeForecast struct{ gym int }

func (f *fakeForecast) Recommend(_ context.Context, id int, token string) (*forecast.Recommendation, error) {
	f.gym = id
	return &forecast.Recommendation{
		Request: forecast.Request{LocationID: id, When: forecast.ParseWhen(token)},
		Day:     []forecast.Prediction{{GridRow: forecast.GridRow{Hour: 7}}, {GridRow: forecast.GridRow{Hour: 13}}},
	}, nil
}

type fakeGyms struct{}

func (fakeGyms) Location(_ context.Context, id int) (*model.Location, error) {
	if id != 3 {
		return nil, apperrors.NotFound("fake.Location", "you seem to have entered an incorrect gymId")
	}
	return &model.Location{ID: 3}, nil
}

type fakeUsage struct{}

func (fakeUsage) UsageSessions(context.Context, string) ([]model.UsageSession, error) {
	return []model.UsageSession{{Date: "2024-03-01", DurationHours: 1.5}, {Date: "2024-03-02", DurationHours: 1}}, nil
}

func discard() *slog.Logger { return slog.New(slog.NewTextHandler(io.Discard, nil)) }

func newTestApp() (*App, *fakeMembers) {
	members := &fakeMembers{members: map[string]*model.Member{
		"gym_1": {CustomerID: "gym_1", FirstName: "Ada", Age: 30, WeightKg: 70, HeightCm: 175, ActivityLevel: "low", Status: model.StatusActive},
	}}
	return &App{
		Members:        members,
		Locator:        &fakeLocator{},
		Trainers:       fakeTrainers{},
		Exercises:      fakeExercises{},
		Forecast:       &fakeForecast{},
		Gyms:           fakeGyms{},
		FAQ:            faq.New(nil, discard()),
		Usage:          fakeUsage{},
		Logger:         discard(),
		RequestTimeout: time.Second,
		MaxAttempts:    3,
	}, members
}

func script(lines ...string) io.Reader {
	return strings.NewReader(strings.Join(lines, "\n") + "\n")
}

func run(t *testing.T, app *App, in io.Reader) string {
	t.Helper()
	var out bytes.Buffer
	if err := app.Run(context.Background(), in, &out, WithColor(false), WithSessionID("test")); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	return out.String()
}

func assertContains(t *testing.T, out string, wants ...string) {
	t.Helper()
	for _, w := range wants {
		if !strings.Contains(out, w) {
			t.Errorf("output missing %q\n--- output ---\n%s", w, out)
		}
	}
}

func TestExit(t *testing.T) {
	app, _ := newTestApp()
	out := run(t, app, script("EXIT"))
	assertContains(t, out, "Hello! Welcome to AnytimeAssistant", "Thank you! Have a nice day.")
}

func TestInputClosedEndsQuietly(t *testing.T) {
	app, _ := newTestApp()
	run(t, app, strings.NewReader(""))
	run(t, app, script("existing", "gym_1"))
}

func TestUnknownResponseExhaustsAttempts(t *testing.T) {
	app, _ := newTestApp()
	out := run(t, app, script("maybe", "later", "nope", "new"))
	if n := strings.Count(out, "couldn't understand your response"); n != 3 {
		t.Errorf("re-prompted %d times, want 3", n)
	}
	assertContains(t, out, goodbye)
	if strings.Contains(out, "Welcome, new user!") {
		t.Error("input after the attempt budget was consumed")
	}
}

func TestEnroll(t *testing.T) {
	app, members := newTestApp()
	out := run(t, app, script(
		"new", "1",
		"Grace", "Hopper",
		"grace-at-example", "grace@example.com",
		"2125550199",
		"10001",
		"9", "2",
		"yes",
		"2",
	))
	assertContains(t, out,
		"Invalid email format. Please enter a valid email address.",
		"Please select a valid membership plan (1/2/3)",
		"8. Full terms and conditions can be found at",
		"Thank you for providing your information, Grace!",
		"Your customer id is gym_7.",
		"Registration successful!",
		goodbye,
	)
	if len(members.enrolled) != 1 || members.enrolled[0].Email != "grace@example.com" || members.plans[0] != "Premium" {
		t.Errorf("enrolled = %+v %v", members.enrolled, members.plans)
	}
}

func TestEnrollDeclinedTerms(t *testing.T) {
	app, members := newTestApp()
	out := run(t, app, script("new", "1", "Grace", "Hopper", "g@h.io", "2125550199", "10001", "1", "no", "2"))
	assertContains(t, out, "you need to agree to the terms and conditions")
	if len(members.enrolled) != 0 {
		t.Error("member enrolled without agreeing")
	}
}

func TestGeneralInfo(t *testing.T) {
	app, _ := newTestApp()
	app.Locator = &fakeLocator{res: &locator.Result{Gyms: []locator.Nearby{
		{Location: model.Location{Address: "1 King St", City: "Toronto", ZipCode: "M5V2T6", Amenities: "Sauna"}, DistanceKm: 1.234},
	}}}
	out := run(t, app, script(
		"new", "2", "1", "3", "1",
		"2", "2", "1",
		"2", "3", "m5v", "pool", "1",
		"2", "4", "Can I bring a friend?", "2",
	))
	assertContains(t, out,
		"3. Platinum Membership: All-inclusive access",
		"Price: $80/month",
		"2. 30 Days Free Membership",
		"Sorry, there are no available gyms with the amenities you have requested.",
		"(1)\nLocation: 1 King St, Toronto, M5V2T6\nAmenities: Sauna\nDistance: 1.23 km",
		"Yes! We do allow guests",
	)
}

func TestNearestNotAvailable(t *testing.T) {
	app, _ := newTestApp()
	out := run(t, app, script("new", "2", "3", "90210", "", "2"))
	assertContains(t, out, "Sorry, we are not available in your location yet.", "available in your location soon!\n")
}

func TestExistingUserLogin(t *testing.T) {
	app, _ := newTestApp()
	out := run(t, app, script("existing", "gym_99", "GYM_1", "8", "2"))
	assertContains(t, out,
		"Sorry, you seem to have entered an invalid customer id. Please try again.",
		"1. Manage Membership",
		badChoice,
		goodbye,
	)
}

func TestManageMembership(t *testing.T) {
	app, members := newTestApp()
	run(t, app, script(
		"existing", "gym_1",
		"1", "cancel", "yes", "pause", "1",
		"1", "cancel", "no", "Moving", "1",
		"1", "reactivate", "1",
		"1", "transfer", "Linus", "T", "l@t.org", "5035550100", "97201", "2",
	))
	want := []string{"pause", "cancel:Moving", "reactivate", "transfer:Linus"}
	if strings.Join(members.actions, ",") != strings.Join(want, ",") {
		t.Errorf("actions = %v, want %v", members.actions, want)
	}
}

func TestProfileAnalytics(t *testing.T) {
	app, _ := newTestApp()
	out := run(t, app, script("existing", "gym_1", "2", "2"))
	assertContains(t, out,
		"Carbohydrates: 185.48 gm",
		"Daily Workout Time for Ada",
		"Total hours spent in gym by Ada: 2.50 hours",
	)
}

func TestColorOffCoversChart(t *testing.T) {
	old := color.NoColor
	color.NoColor = false
	t.Cleanup(func() { color.NoColor = old })

	app, _ := newTestApp()
	out := run(t, app, script("existing", "gym_1", "2", "2"))
	assertContains(t, out, "Daily Workout Time for Ada")
	if strings.Contains(out, "\x1b[") {
		t.Errorf("colour disabled but output has ANSI escapes:\n%q", out)
	}
}

func TestTrainerRePrompts(t *testing.T) {
	app, _ := newTestApp()
	out := run(t, app, script("existing", "gym_1", "4", "boxing", "yoga", "2"))
	assertContains(t, out,
		"Sorry, no trainer found for this specialization. Please try again",
		"We found a trainer for you!\nTrainer Name: Maya\nSpecialization: Yoga\nAge: 29\nRating: 5",
	)
}

func TestExercises(t *testing.T) {
	app, _ := newTestApp()
	out := run(t, app, script("existing", "gym_1", "5", "biceps", "2"))
	assertContains(t, out,
		"The following are the recommended exercises to workout your Biceps: ",
		"Exercise Name: Curl\nDescription: Curl slowly.\nImage: Image not available",
	)

	app.Exercises = fakeExercises{err: apperrors.External("fake.Suggest", errors.New("timeout"))}
	out = run(t, app, script("existing", "gym_1", "5", "biceps", "2"))
	assertContains(t, out, internalErr)
}

func TestBestTime(t *testing.T) {
	app, _ := newTestApp()
	fc := &fakeForecast{}
	app.Forecast = fc
	out := run(t, app, script("existing", "gym_1", "6", "abc", "9", "3", "tomorrow", "2"))
	assertContains(t, out,
		"Sorry, you seem to have entered an incorrect gymId. Please try again",
		"The best time for you to visit the gym tomorrow is: ",
	)
	if strings.Count(out, "incorrect gymId") != 2 {
		t.Errorf("expected two gymId rejections")
	}
	if fc.gym != 3 {
		t.Errorf("forecast gym = %d, want 3", fc.gym)
	}
}

func TestRunCanceled(t *testing.T) {
	app, _ := newTestApp()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := app.Run(ctx, script("exit"), io.Discard, WithColor(false))
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Run() error = %v, want context.Canceled", err)
	}
}

func TestUserText(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{apperrors.NotFound("op", "you seem to have entered an incorrect gymId"), "Sorry, you seem to have entered an incorrect gymId. Please try again"},
		{apperrors.Validation("op", "Invalid phone number format. Please enter a valid phone number."), "Invalid phone number format. Please enter a valid phone number."},
		{apperrors.NotFound("op", "we are not available here!"), "Sorry, we are not available here!"},
	}
	for _, tt := range tests {
		if got := userText(tt.err); got != tt.want {
			t.Errorf("userText() = %q, want %q", got, tt.want)
		}
	}
}
