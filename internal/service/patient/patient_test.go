package patient

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"

	"github.com/journihealth/journi_backend/internal/repository"
	"github.com/journihealth/journi_backend/pkg/reqctx"
)

type fixture struct {
	svc   Service
	repos *repository.Repositories

	practiceID string
	therapist  *repository.Therapist
	other      *repository.Therapist

	therapistActor *reqctx.Actor
	adminActor     *reqctx.Actor
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()
	repos := repository.NewMemory()
	practiceID := uuid.NewString()

	th := &repository.Therapist{
		ID:         uuid.NewString(),
		UserID:     uuid.NewString(),
		PracticeID: practiceID,
		FirstName:  "Tess",
		LastName:   "Nguyen",
	}
	if err := repos.Therapists.Create(ctx, th); err != nil {
		t.Fatalf("create therapist: %v", err)
	}

	other := &repository.Therapist{
		ID:         uuid.NewString(),
		UserID:     uuid.NewString(),
		PracticeID: practiceID,
		FirstName:  "Omar",
		LastName:   "Haddad",
	}
	if err := repos.Therapists.Create(ctx, other); err != nil {
		t.Fatalf("create second therapist: %v", err)
	}

	return &fixture{
		svc:        New(repos),
		repos:      repos,
		practiceID: practiceID,
		therapist:  th,
		other:      other,
		therapistActor: &reqctx.Actor{
			PrincipalID:  th.UserID,
			RoleTag:      reqctx.RoleTagUser,
			PracticeID:   practiceID,
			PracticeRole: repository.RoleTherapist,
		},
		adminActor: &reqctx.Actor{
			PrincipalID:  uuid.NewString(),
			RoleTag:      reqctx.RoleTagUser,
			PracticeID:   practiceID,
			PracticeRole: repository.RoleAdmin,
		},
	}
}

func TestCreateByTherapistAutoAssigns(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	p, err := f.svc.Create(ctx, f.therapistActor, CreatePatientRequest{
		FirstName: "Alex",
		LastName:  "Rivera",
		// An explicit assignment from a therapist caller is ignored.
		TherapistID: f.other.ID,
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if p.TherapistID != f.therapist.ID {
		t.Fatalf("expected caller's caseload, got therapist %q", p.TherapistID)
	}
}

func TestCreateByAdminValidatesTherapist(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	_, err := f.svc.Create(ctx, f.adminActor, CreatePatientRequest{
		FirstName:   "Alex",
		LastName:    "Rivera",
		TherapistID: uuid.NewString(),
	})
	if !errors.Is(err, ErrTherapistNotFound) {
		t.Fatalf("expected ErrTherapistNotFound, got %v", err)
	}

	p, err := f.svc.Create(ctx, f.adminActor, CreatePatientRequest{
		FirstName:   "Alex",
		LastName:    "Rivera",
		TherapistID: f.therapist.ID,
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if p.TherapistID != f.therapist.ID {
		t.Fatalf("assignment lost, got %q", p.TherapistID)
	}
}

func TestCreateValidation(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	cases := []struct {
		name string
		req  CreatePatientRequest
		want error
	}{
		{"missing name", CreatePatientRequest{FirstName: "  ", LastName: "Rivera"}, ErrNameMissing},
		{"bad phone", CreatePatientRequest{FirstName: "Alex", LastName: "Rivera", Phone: "not-a-number"}, ErrInvalidPhone},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := f.svc.Create(ctx, f.adminActor, tc.req); !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
		})
	}
}

func TestTherapistSeesOnlyOwnCaseload(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	mine, err := f.svc.Create(ctx, f.adminActor, CreatePatientRequest{
		FirstName: "Alex", LastName: "Rivera", TherapistID: f.therapist.ID,
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	foreign, err := f.svc.Create(ctx, f.adminActor, CreatePatientRequest{
		FirstName: "Bea", LastName: "Santos", TherapistID: f.other.ID,
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	unassigned, err := f.svc.Create(ctx, f.adminActor, CreatePatientRequest{
		FirstName: "Caleb", LastName: "Stone",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if _, err := f.svc.Get(ctx, f.therapistActor, mine.ID); err != nil {
		t.Fatalf("own patient should be visible: %v", err)
	}
	if _, err := f.svc.Get(ctx, f.therapistActor, foreign.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("foreign patient should look absent, got %v", err)
	}
	if _, err := f.svc.Get(ctx, f.therapistActor, unassigned.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("unassigned patient should look absent, got %v", err)
	}

	rows, err := f.svc.List(ctx, f.therapistActor)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(rows) != 1 || rows[0].ID != mine.ID {
		t.Fatalf("expected caseload of 1, got %d", len(rows))
	}

	all, err := f.svc.List(ctx, f.adminActor)
	if err != nil {
		t.Fatalf("admin list: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("expected practice-wide list of 3, got %d", len(all))
	}
}

func TestAssignAndClearTherapist(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	p, err := f.svc.Create(ctx, f.adminActor, CreatePatientRequest{FirstName: "Alex", LastName: "Rivera"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if err := f.svc.AssignTherapist(ctx, f.adminActor, p.ID, f.therapist.ID); err != nil {
		t.Fatalf("assign: %v", err)
	}
	got, err := f.svc.Get(ctx, f.adminActor, p.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.TherapistID != f.therapist.ID {
		t.Fatalf("expected assignment, got %q", got.TherapistID)
	}

	if err := f.svc.AssignTherapist(ctx, f.adminActor, p.ID, ""); err != nil {
		t.Fatalf("clear: %v", err)
	}
	got, err = f.svc.Get(ctx, f.adminActor, p.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.TherapistID != "" {
		t.Fatalf("expected cleared assignment, got %q", got.TherapistID)
	}

	if err := f.svc.AssignTherapist(ctx, f.adminActor, p.ID, uuid.NewString()); !errors.Is(err, ErrTherapistNotFound) {
		t.Fatalf("expected ErrTherapistNotFound, got %v", err)
	}
}

func TestUpdateNormalizesFields(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	p, err := f.svc.Create(ctx, f.adminActor, CreatePatientRequest{FirstName: "Alex", LastName: "Rivera"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	emailAddr := " Alex.R@Example.COM "
	phoneNum := "(212) 555-0147"
	got, err := f.svc.Update(ctx, f.adminActor, p.ID, UpdatePatientRequest{
		Email: &emailAddr,
		Phone: &phoneNum,
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if got.Email != "alex.r@example.com" {
		t.Fatalf("email not normalized: %q", got.Email)
	}
	if got.Phone != "+12125550147" {
		t.Fatalf("phone not normalized: %q", got.Phone)
	}
}

func TestDeleteHidesPatient(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	p, err := f.svc.Create(ctx, f.adminActor, CreatePatientRequest{FirstName: "Alex", LastName: "Rivera"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := f.svc.Delete(ctx, f.adminActor, p.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := f.svc.Get(ctx, f.adminActor, p.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
}
