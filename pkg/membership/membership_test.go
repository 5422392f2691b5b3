package membership

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"path/filepath"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/codeGROOVE-dev/gymassist/pkg/apperrors"
	"github.com/codeGROOVE-dev/gymassist/pkg/model"
	"github.com/codeGROOVE-dev/gymassist/pkg/notify"
	"github.com/codeGROOVE-dev/gymassist/pkg/store"
)

func discard() *slog.Logger { return slog.New(slog.NewTextHandler(io.Discard, nil)) }

type queued struct {
	mu   sync.Mutex
	msgs []notify.Message
}

func (q *queued) Go(_ context.Context, msg notify.Message) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.msgs = append(q.msgs, msg)
}

func newService(t *testing.T) (*Service, *store.Store, *queued) {
	t.Helper()
	st, err := store.Open(context.Background(), filepath.Join(t.TempDir(), "gym.db"), discard())
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = st.Close() })
	q := &queued{}
	return New(st, q, discard()), st, q
}

var ada = Applicant{FirstName: "Ada", LastName: "Lovelace", Email: "ada@example.com", Phone: "4165550100", Zipcode: "M5V2T6"}

func TestValidation(t *testing.T) {
	tests := []struct {
		name  string
		check func(string) error
		in    string
		ok    bool
	}{
		{"email", ValidateEmail, "a@b.co", true},
		{"email trailing text", ValidateEmail, "a@b.co and more", true},
		{"email no dot", ValidateEmail, "a@bco", false},
		{"email two ats", ValidateEmail, "a@@b.co", false},
		{"phone", ValidatePhone, "4165550100", true},
		{"phone extra digits", ValidatePhone, "41655501009", true},
		{"phone short", ValidatePhone, "416555010", false},
		{"phone dashes", ValidatePhone, "416-555-0100", false},
		{"us zip", ValidateZipcode, "90210", true},
		{"canadian", ValidateZipcode, "m5v2t6", true},
		{"canadian with space", ValidateZipcode, "M5V 2T6", false},
		{"short zip", ValidateZipcode, "9021", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.check(tt.in)
			if (err == nil) != tt.ok {
				t.Errorf("check(%q) = %v, want ok=%v", tt.in, err, tt.ok)
			}
			if err != nil && !errors.Is(err, apperrors.ErrValidation) {
				t.Errorf("error kind = %v", err)
			}
		})
	}
}

func TestEnroll(t *testing.T) {
	svc, st, q := newService(t)
	ctx := context.Background()

	m, err := svc.Enroll(ctx, ada, Plans[1])
	if err != nil {
		t.Fatalf("Enroll() error = %v", err)
	}
	if m.CustomerID != "gym_1" {
		t.Errorf("CustomerID = %q, want gym_1", m.CustomerID)
	}

	got, err := st.FindOne(ctx, "gym_1")
	if err != nil {
		t.Fatal(err)
	}
	want := &model.Member{
		CustomerID: "gym_1", FirstName: "Ada", LastName: "Lovelace", Email: "ada@example.com",
		Phone: "4165550100", Zipcode: "M5V2T6", MembershipPlan: "Premium",
		Status: model.StatusActive, CancelReason: model.NotAssigned, Trainer: model.NotAssigned,
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("stored member mismatch (-want +got):\n%s", diff)
	}

	if len(q.msgs) != 1 || q.msgs[0].To != "ada@example.com" || q.msgs[0].Subject != notify.EnrollmentSubject {
		t.Errorf("queued = %+v", q.msgs)
	}

	if m, err := svc.Enroll(ctx, ada, Plans[0]); err != nil || m.CustomerID != "gym_2" {
		t.Errorf("second Enroll() = %q, %v", m.CustomerID, err)
	}
}

func TestEnrollRejectsInvalid(t *testing.T) {
	svc, st, q := newService(t)
	bad := ada
	bad.Phone = "12345"
	if _, err := svc.Enroll(context.Background(), bad, Plans[0]); !errors.Is(err, apperrors.ErrValidation) {
		t.Fatalf("error = %v, want ErrValidation", err)
	}
	all, err := st.ListAll(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 0 || len(q.msgs) != 0 {
		t.Errorf("members = %d, emails = %d; want none", len(all), len(q.msgs))
	}
}

func TestManage(t *testing.T) {
	svc, st, _ := newService(t)
	ctx := context.Background()
	if _, err := svc.Enroll(ctx, ada, Plans[2]); err != nil {
		t.Fatal(err)
	}

	changed, err := svc.Reactivate(ctx, "gym_1")
	if err != nil || changed {
		t.Errorf("Reactivate(active) = %v, %v; want false", changed, err)
	}

	if err := svc.Pause(ctx, "gym_1"); err != nil {
		t.Fatal(err)
	}
	if m, _ := st.FindOne(ctx, "gym_1"); m.Status != model.StatusPaused {
		t.Errorf("status = %q, want Paused", m.Status)
	}

	if changed, err := svc.Reactivate(ctx, "gym_1"); err != nil || !changed {
		t.Errorf("Reactivate(paused) = %v, %v; want true", changed, err)
	}

	if err := svc.Cancel(ctx, "gym_1", "  Moving AWAY "); err != nil {
		t.Fatal(err)
	}
	m, _ := st.FindOne(ctx, "gym_1")
	if m.Status != model.StatusCanceled || m.CancelReason != "moving away" {
		t.Errorf("after cancel = %q, %q", m.Status, m.CancelReason)
	}
}

func TestTransfer(t *testing.T) {
	svc, st, _ := newService(t)
	ctx := context.Background()
	if _, err := svc.Enroll(ctx, ada, Plans[0]); err != nil {
		t.Fatal(err)
	}

	grace := Applicant{FirstName: "Grace", LastName: "Hopper", Email: "grace@example.com", Phone: "2125550199", Zipcode: "10001"}
	if err := svc.Transfer(ctx, "gym_1", grace); err != nil {
		t.Fatalf("Transfer() error = %v", err)
	}
	m, _ := st.FindOne(ctx, "gym_1")
	if m.FirstName != "Grace" || m.Email != "grace@example.com" || m.Zipcode != "10001" || m.Status != model.StatusTransfer {
		t.Errorf("after transfer = %+v", m)
	}
	if m.MembershipPlan != "Standard" {
		t.Errorf("plan changed to %q", m.MembershipPlan)
	}

	bad := grace
	bad.Email = "nope"
	if err := svc.Transfer(ctx, "gym_1", bad); !errors.Is(err, apperrors.ErrValidation) {
		t.Errorf("error = %v, want ErrValidation", err)
	}
	if err := svc.Pause(ctx, "gym_404"); !errors.Is(err, apperrors.ErrNotFound) {
		t.Errorf("unknown member error = %v, want ErrNotFound", err)
	}
}

func TestLogin(t *testing.T) {
	svc, _, _ := newService(t)
	ctx := context.Background()
	if _, err := svc.Enroll(ctx, ada, Plans[0]); err != nil {
		t.Fatal(err)
	}
	if m, err := svc.Login(ctx, " GYM_1 "); err != nil || m.FirstName != "Ada" {
		t.Errorf("Login() = %v, %v", m, err)
	}
	if _, err := svc.Login(ctx, "gym_9"); !errors.Is(err, apperrors.ErrNotFound) {
		t.Errorf("error = %v, want ErrNotFound", err)
	}
}

func TestParseAction(t *testing.T) {
	tests := map[string]Action{
		"I want to PAUSE it":          ActionPause,
		"cancel please":               ActionCancel,
		"pause or cancel":             ActionPause,
		"reactivate":                  ActionReactivate,
		"transfer to my sister":       ActionTransfer,
		"what are my options?":        ActionNone,
		"can you transfer or cancel?": ActionCancel,
	}
	for in, want := range tests {
		if got := ParseAction(in); got != want {
			t.Errorf("ParseAction(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestPlans(t *testing.T) {
	if p, ok := PlanByChoice(" 2 "); !ok || p.Name != "Premium" {
		t.Errorf("PlanByChoice(2) = %+v, %v", p, ok)
	}
	for _, bad := range []string{"0", "4", "premium", ""} {
		if _, ok := PlanByChoice(bad); ok {
			t.Errorf("PlanByChoice(%q) succeeded", bad)
		}
	}
	menu := EnrollmentMenu()
	if len(menu) != 10 || menu[1] != "1. Standard Membership:" || menu[3] != "Price: $30/month" {
		t.Errorf("EnrollmentMenu() = %q", menu)
	}
	if len(Terms) != 8 || len(Promotions) != 4 {
		t.Errorf("terms = %d, promotions = %d", len(Terms), len(Promotions))
	}
}
