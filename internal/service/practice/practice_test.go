package practice

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

	ownerActor *reqctx.Actor
	userActor  *reqctx.Actor
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	repos := repository.NewMemory()

	return &fixture{
		svc:   New(repos),
		repos: repos,
		ownerActor: &reqctx.Actor{
			PrincipalID: uuid.NewString(),
			RoleTag:     reqctx.RoleTagOwner,
		},
		userActor: &reqctx.Actor{
			PrincipalID: uuid.NewString(),
			RoleTag:     reqctx.RoleTagUser,
		},
	}
}

func (f *fixture) seedPractice(t *testing.T, name string) *repository.Practice {
	t.Helper()
	p, err := f.svc.Create(context.Background(), f.ownerActor, CreatePracticeRequest{Name: name})
	if err != nil {
		t.Fatalf("seed practice %q: %v", name, err)
	}
	return p
}

func TestCreateNormalizesFields(t *testing.T) {
	f := newFixture(t)

	p, err := f.svc.Create(context.Background(), f.ownerActor, CreatePracticeRequest{
		Name:  "  Lakeside Therapy  ",
		Phone: "(512) 555-0175",
		Email: "  Hello@Lakeside.example  ",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if p.Name != "Lakeside Therapy" {
		t.Errorf("name = %q, want trimmed", p.Name)
	}
	if p.Phone != "+15125550175" {
		t.Errorf("phone = %q, want E.164", p.Phone)
	}
	if p.Email != "hello@lakeside.example" {
		t.Errorf("email = %q, want lowercased", p.Email)
	}
	if p.CreatedBy != f.ownerActor.PrincipalID {
		t.Errorf("created_by = %q, want owner", p.CreatedBy)
	}
}

func TestCreateRejectsBadInput(t *testing.T) {
	f := newFixture(t)

	if _, err := f.svc.Create(context.Background(), f.ownerActor, CreatePracticeRequest{Name: "   "}); !errors.Is(err, ErrNameMissing) {
		t.Errorf("blank name: got %v, want ErrNameMissing", err)
	}
	if _, err := f.svc.Create(context.Background(), f.ownerActor, CreatePracticeRequest{Name: "Lakeside", Phone: "not-a-phone"}); !errors.Is(err, ErrInvalidPhone) {
		t.Errorf("bad phone: got %v, want ErrInvalidPhone", err)
	}
}

func TestListScopes(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	a := f.seedPractice(t, "Alpha Wellness")
	f.seedPractice(t, "Beta Counseling")

	// Owners see every practice.
	all, err := f.svc.List(ctx, f.ownerActor)
	if err != nil {
		t.Fatalf("owner list: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("owner list = %d practices, want 2", len(all))
	}

	// Users only see practices they hold a membership in.
	m := &repository.Membership{
		ID:         uuid.NewString(),
		UserID:     f.userActor.PrincipalID,
		PracticeID: a.ID,
		Role:       repository.RoleTherapist,
		Status:     repository.StatusActive,
	}
	if err := f.repos.Memberships.Create(ctx, m); err != nil {
		t.Fatalf("create membership: %v", err)
	}

	mine, err := f.svc.List(ctx, f.userActor)
	if err != nil {
		t.Fatalf("user list: %v", err)
	}
	if len(mine) != 1 || mine[0].ID != a.ID {
		t.Fatalf("user list = %v, want just %q", mine, a.ID)
	}
}

func TestUpdatePatchesOnlyProvidedFields(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	p := f.seedPractice(t, "Alpha Wellness")

	legal := "  Alpha Wellness LLC "
	got, err := f.svc.Update(ctx, f.ownerActor, p.ID, UpdatePracticeRequest{LegalName: &legal})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if got.LegalName != "Alpha Wellness LLC" {
		t.Errorf("legal name = %q, want trimmed", got.LegalName)
	}
	if got.Name != "Alpha Wellness" {
		t.Errorf("name = %q, should be untouched", got.Name)
	}

	blank := " "
	if _, err := f.svc.Update(ctx, f.ownerActor, p.ID, UpdatePracticeRequest{Name: &blank}); !errors.Is(err, ErrNameMissing) {
		t.Errorf("blank name patch: got %v, want ErrNameMissing", err)
	}
	if _, err := f.svc.Update(ctx, f.ownerActor, uuid.NewString(), UpdatePracticeRequest{}); !errors.Is(err, ErrNotFound) {
		t.Errorf("unknown id: got %v, want ErrNotFound", err)
	}
}

func TestDeleteIsSoft(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	p := f.seedPractice(t, "Alpha Wellness")

	if err := f.svc.Delete(ctx, f.ownerActor, p.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := f.svc.Get(ctx, p.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("get after delete: got %v, want ErrNotFound", err)
	}
	if err := f.svc.Delete(ctx, f.ownerActor, p.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("double delete: got %v, want ErrNotFound", err)
	}
}
