package staff

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/journihealth/journi_backend/config"
	"github.com/journihealth/journi_backend/internal/mailer"
	"github.com/journihealth/journi_backend/internal/repository"
	"github.com/journihealth/journi_backend/pkg/reqctx"
)

type fixture struct {
	svc      Service
	repos    *repository.Repositories
	mail     *mailer.Buffer
	actor    *reqctx.Actor
	practice *repository.Practice
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	repos := repository.NewMemory()
	mail := mailer.NewBuffer()
	cfg := &config.Config{
		Authentication: config.AuthenticationConfig{TempPasswordLength: 12},
		Password:       config.PasswordConfig{Cost: 4},
		Email:          config.EmailConfig{AppName: "Journi"},
	}

	p := &repository.Practice{ID: uuid.NewString(), Name: "Riverside Therapy"}
	if err := repos.Practices.Create(context.Background(), p); err != nil {
		t.Fatalf("create practice: %v", err)
	}

	return &fixture{
		svc:      New(repos, mail, cfg),
		repos:    repos,
		mail:     mail,
		actor:    &reqctx.Actor{PrincipalID: uuid.NewString(), RoleTag: reqctx.RoleTagOwner},
		practice: p,
	}
}

func TestCreateNewTherapist(t *testing.T) {
	f := newFixture(t)

	member, err := f.svc.Create(context.Background(), f.actor, f.practice.ID, CreateStaffRequest{
		Email:     "tess@example.com",
		FirstName: "Tess",
		LastName:  "Nguyen",
		Phone:     "+14155552671",
		Role:      repository.RoleTherapist,
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if member.Membership.Role != repository.RoleTherapist {
		t.Errorf("role = %q, want THERAPIST", member.Membership.Role)
	}
	if member.Membership.Status != repository.StatusActive {
		t.Errorf("status = %q, want ACTIVE", member.Membership.Status)
	}
	if member.Therapist == nil {
		t.Fatal("expected therapist profile")
	}
	if member.Therapist.PracticeID != f.practice.ID {
		t.Errorf("profile practice = %q, want %q", member.Therapist.PracticeID, f.practice.ID)
	}

	// New accounts get a welcome email carrying the temporary password.
	tasks := f.mail.Tasks()
	if len(tasks) != 1 {
		t.Fatalf("queued emails = %d, want 1", len(tasks))
	}
	if !strings.Contains(tasks[0].Message.Subject, "account has been created") {
		t.Errorf("unexpected subject %q", tasks[0].Message.Subject)
	}

	// The user account exists and can be found by email.
	if _, err := f.repos.Users.GetByEmail(context.Background(), "tess@example.com"); err != nil {
		t.Errorf("user account: %v", err)
	}
}

func TestCreateExistingUserInSecondPractice(t *testing.T) {
	f := newFixture(t)

	first, err := f.svc.Create(context.Background(), f.actor, f.practice.ID, CreateStaffRequest{
		Email: "sam@example.com", FirstName: "Sam", Role: repository.RoleSupervisor,
	})
	if err != nil {
		t.Fatalf("first create: %v", err)
	}

	other := &repository.Practice{ID: uuid.NewString(), Name: "Lakeside Counseling"}
	if err := f.repos.Practices.Create(context.Background(), other); err != nil {
		t.Fatalf("create practice: %v", err)
	}

	second, err := f.svc.Create(context.Background(), f.actor, other.ID, CreateStaffRequest{
		Email: "sam@example.com", Role: repository.RoleAdmin,
	})
	if err != nil {
		t.Fatalf("second create: %v", err)
	}
	if second.Membership.UserID != first.Membership.UserID {
		t.Error("expected the same user account across practices")
	}

	// Existing accounts get a notification, not a new password.
	tasks := f.mail.Tasks()
	if len(tasks) != 2 {
		t.Fatalf("queued emails = %d, want 2", len(tasks))
	}
	if !strings.Contains(tasks[1].Message.Subject, "added") {
		t.Errorf("unexpected subject %q", tasks[1].Message.Subject)
	}
}

func TestCreateDuplicateMembership(t *testing.T) {
	f := newFixture(t)

	if _, err := f.svc.Create(context.Background(), f.actor, f.practice.ID, CreateStaffRequest{
		Email: "sam@example.com", Role: repository.RoleSupervisor,
	}); err != nil {
		t.Fatalf("first create: %v", err)
	}

	_, err := f.svc.Create(context.Background(), f.actor, f.practice.ID, CreateStaffRequest{
		Email: "sam@example.com", Role: repository.RoleTherapist,
	})
	var exists *MembershipExistsError
	if !errors.As(err, &exists) {
		t.Fatalf("got %v, want MembershipExistsError", err)
	}
	if exists.Role != repository.RoleSupervisor {
		t.Errorf("existing role = %q, want SUPERVISOR", exists.Role)
	}
}

func TestCreateValidation(t *testing.T) {
	f := newFixture(t)

	cases := []struct {
		name string
		req  CreateStaffRequest
		want error
	}{
		{"bad email", CreateStaffRequest{Email: "not-an-email", Role: repository.RoleAdmin}, ErrInvalidEmail},
		{"bad role", CreateStaffRequest{Email: "a@example.com", Role: "JANITOR"}, ErrInvalidRole},
		{"bad phone", CreateStaffRequest{Email: "a@example.com", Role: repository.RoleAdmin, Phone: "nope"}, ErrInvalidPhone},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := f.svc.Create(context.Background(), f.actor, f.practice.ID, tc.req); !errors.Is(err, tc.want) {
				t.Errorf("got %v, want %v", err, tc.want)
			}
		})
	}
}

func TestActivateDeactivate(t *testing.T) {
	f := newFixture(t)

	member, err := f.svc.Create(context.Background(), f.actor, f.practice.ID, CreateStaffRequest{
		Email: "tess@example.com", Role: repository.RoleTherapist,
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	id := member.Membership.ID

	if err := f.svc.Deactivate(context.Background(), f.actor, f.practice.ID, id); err != nil {
		t.Fatalf("deactivate: %v", err)
	}
	got, err := f.svc.Get(context.Background(), f.practice.ID, id)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Membership.Status != repository.StatusInactive {
		t.Errorf("status = %q, want INACTIVE", got.Membership.Status)
	}

	if err := f.svc.Activate(context.Background(), f.actor, f.practice.ID, id); err != nil {
		t.Fatalf("activate: %v", err)
	}
	got, err = f.svc.Get(context.Background(), f.practice.ID, id)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Membership.Status != repository.StatusActive {
		t.Errorf("status = %q, want ACTIVE", got.Membership.Status)
	}
}

func TestRemoveDeletesProfile(t *testing.T) {
	f := newFixture(t)

	member, err := f.svc.Create(context.Background(), f.actor, f.practice.ID, CreateStaffRequest{
		Email: "tess@example.com", Role: repository.RoleTherapist,
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if err := f.svc.Remove(context.Background(), f.actor, f.practice.ID, member.Membership.ID); err != nil {
		t.Fatalf("remove: %v", err)
	}

	if _, err := f.svc.Get(context.Background(), f.practice.ID, member.Membership.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("get after remove: got %v, want ErrNotFound", err)
	}
	if _, err := f.repos.Therapists.GetByID(context.Background(), member.Therapist.ID); !errors.Is(err, repository.ErrNotFound) {
		t.Errorf("therapist profile after remove: got %v, want ErrNotFound", err)
	}

	// The user account survives; re-adding works.
	if _, err := f.svc.Create(context.Background(), f.actor, f.practice.ID, CreateStaffRequest{
		Email: "tess@example.com", Role: repository.RoleAdmin,
	}); err != nil {
		t.Errorf("re-add after remove: %v", err)
	}
}

func TestAssignSupervisor(t *testing.T) {
	f := newFixture(t)

	sup, err := f.svc.Create(context.Background(), f.actor, f.practice.ID, CreateStaffRequest{
		Email: "sup@example.com", Role: repository.RoleSupervisor,
	})
	if err != nil {
		t.Fatalf("create supervisor: %v", err)
	}
	th, err := f.svc.Create(context.Background(), f.actor, f.practice.ID, CreateStaffRequest{
		Email: "tess@example.com", Role: repository.RoleTherapist,
	})
	if err != nil {
		t.Fatalf("create therapist: %v", err)
	}

	if err := f.svc.AssignSupervisor(context.Background(), f.actor, f.practice.ID, th.Therapist.ID, sup.Supervisor.ID); err != nil {
		t.Fatalf("assign: %v", err)
	}
	got, err := f.repos.Therapists.GetByID(context.Background(), th.Therapist.ID)
	if err != nil {
		t.Fatalf("get therapist: %v", err)
	}
	if got.SupervisorID != sup.Supervisor.ID {
		t.Errorf("supervisor id = %q, want %q", got.SupervisorID, sup.Supervisor.ID)
	}

	// Clearing the link.
	if err := f.svc.AssignSupervisor(context.Background(), f.actor, f.practice.ID, th.Therapist.ID, ""); err != nil {
		t.Fatalf("clear: %v", err)
	}
	got, err = f.repos.Therapists.GetByID(context.Background(), th.Therapist.ID)
	if err != nil {
		t.Fatalf("get therapist: %v", err)
	}
	if got.SupervisorID != "" {
		t.Errorf("supervisor id = %q, want empty", got.SupervisorID)
	}

	// A supervisor from another practice is rejected.
	if err := f.svc.AssignSupervisor(context.Background(), f.actor, f.practice.ID, th.Therapist.ID, uuid.NewString()); !errors.Is(err, ErrSupervisorNotFound) {
		t.Errorf("foreign supervisor: got %v, want ErrSupervisorNotFound", err)
	}
}

func TestListFiltersByRoleAndStatus(t *testing.T) {
	f := newFixture(t)

	for _, req := range []CreateStaffRequest{
		{Email: "a@example.com", Role: repository.RoleAdmin},
		{Email: "b@example.com", Role: repository.RoleTherapist},
		{Email: "c@example.com", Role: repository.RoleTherapist},
	} {
		if _, err := f.svc.Create(context.Background(), f.actor, f.practice.ID, req); err != nil {
			t.Fatalf("create %s: %v", req.Email, err)
		}
	}

	all, err := f.svc.List(context.Background(), f.practice.ID, ListStaffRequest{})
	if err != nil {
		t.Fatalf("list all: %v", err)
	}
	if len(all) != 3 {
		t.Errorf("all = %d, want 3", len(all))
	}

	therapists, err := f.svc.List(context.Background(), f.practice.ID, ListStaffRequest{Role: repository.RoleTherapist})
	if err != nil {
		t.Fatalf("list therapists: %v", err)
	}
	if len(therapists) != 2 {
		t.Errorf("therapists = %d, want 2", len(therapists))
	}
}
