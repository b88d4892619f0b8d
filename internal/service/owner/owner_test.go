package owner

import (
	"context"
	"errors"
	"testing"

	"github.com/journihealth/journi_backend/config"
	"github.com/journihealth/journi_backend/internal/repository"
	"github.com/journihealth/journi_backend/pkg/reqctx"
)

func testConfig() *config.Config {
	return &config.Config{
		Password: config.PasswordConfig{Cost: 4},
	}
}

func newService() (Service, *repository.Repositories) {
	repos := repository.NewMemory()
	return New(repos, testConfig()), repos
}

func actorFor(o *repository.Owner) *reqctx.Actor {
	return &reqctx.Actor{PrincipalID: o.ID, RoleTag: reqctx.RoleTagOwner}
}

func TestBootstrapCreatesFirstOwner(t *testing.T) {
	ctx := context.Background()
	svc, _ := newService()

	open, err := svc.BootstrapOpen(ctx)
	if err != nil {
		t.Fatalf("bootstrap open: %v", err)
	}
	if !open {
		t.Fatal("expected bootstrap to be open on an empty system")
	}

	o, err := svc.Bootstrap(ctx, BootstrapRequest{
		Email:     "Root@Example.com",
		Password:  "correct-horse",
		FirstName: "Root",
		LastName:  "Owner",
	})
	if err != nil {
		t.Fatalf("bootstrap: %v", err)
	}
	if o.Email != "root@example.com" {
		t.Fatalf("email not normalized: %q", o.Email)
	}
	if o.CreatedBy != o.ID {
		t.Fatalf("first owner should be self-created, got created_by=%q", o.CreatedBy)
	}
	if o.PasswordHash == "correct-horse" {
		t.Fatal("password stored in plaintext")
	}
}

func TestBootstrapClosesAfterFirstOwner(t *testing.T) {
	ctx := context.Background()
	svc, _ := newService()

	if _, err := svc.Bootstrap(ctx, BootstrapRequest{Email: "first@example.com", Password: "correct-horse"}); err != nil {
		t.Fatalf("bootstrap: %v", err)
	}

	open, err := svc.BootstrapOpen(ctx)
	if err != nil {
		t.Fatalf("bootstrap open: %v", err)
	}
	if open {
		t.Fatal("expected bootstrap to be closed")
	}

	_, err = svc.Bootstrap(ctx, BootstrapRequest{Email: "second@example.com", Password: "correct-horse"})
	if !errors.Is(err, ErrBootstrapClosed) {
		t.Fatalf("expected ErrBootstrapClosed, got %v", err)
	}
}

func TestBootstrapValidation(t *testing.T) {
	ctx := context.Background()
	svc, _ := newService()

	cases := []struct {
		name string
		req  BootstrapRequest
		want error
	}{
		{"bad email", BootstrapRequest{Email: "not-an-email", Password: "correct-horse"}, ErrInvalidEmail},
		{"short password", BootstrapRequest{Email: "a@example.com", Password: "short"}, ErrPasswordTooShort},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := svc.Bootstrap(ctx, tc.req); !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
		})
	}
}

func TestCreateRejectsDuplicateEmail(t *testing.T) {
	ctx := context.Background()
	svc, _ := newService()

	first, err := svc.Bootstrap(ctx, BootstrapRequest{Email: "first@example.com", Password: "correct-horse"})
	if err != nil {
		t.Fatalf("bootstrap: %v", err)
	}

	_, err = svc.Create(ctx, actorFor(first), CreateOwnerRequest{Email: "first@example.com", Password: "correct-horse"})
	if !errors.Is(err, ErrEmailTaken) {
		t.Fatalf("expected ErrEmailTaken, got %v", err)
	}
}

func TestDeleteKeepsLastOwner(t *testing.T) {
	ctx := context.Background()
	svc, repos := newService()

	first, err := svc.Bootstrap(ctx, BootstrapRequest{Email: "first@example.com", Password: "correct-horse"})
	if err != nil {
		t.Fatalf("bootstrap: %v", err)
	}
	actor := actorFor(first)

	if err := svc.Delete(ctx, actor, first.ID); !errors.Is(err, ErrLastOwner) {
		t.Fatalf("expected ErrLastOwner, got %v", err)
	}

	second, err := svc.Create(ctx, actor, CreateOwnerRequest{Email: "second@example.com", Password: "correct-horse"})
	if err != nil {
		t.Fatalf("create second owner: %v", err)
	}

	if err := svc.Delete(ctx, actor, second.ID); err != nil {
		t.Fatalf("delete second owner: %v", err)
	}
	if _, err := svc.Get(ctx, second.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected deleted owner to be gone, got %v", err)
	}

	// Sessions of the removed owner are revoked with the account.
	sessions, err := repos.AuthSessions.ListByUser(ctx, second.ID)
	if err != nil {
		t.Fatalf("list sessions: %v", err)
	}
	for _, sess := range sessions {
		if !sess.IsRevoked {
			t.Fatalf("session %s still live after owner deletion", sess.ID)
		}
	}
}

func TestUpdatePatchesNames(t *testing.T) {
	ctx := context.Background()
	svc, _ := newService()

	o, err := svc.Bootstrap(ctx, BootstrapRequest{Email: "first@example.com", Password: "correct-horse", FirstName: "Old"})
	if err != nil {
		t.Fatalf("bootstrap: %v", err)
	}

	name := "  New  "
	got, err := svc.Update(ctx, actorFor(o), o.ID, UpdateOwnerRequest{FirstName: &name})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if got.FirstName != "New" {
		t.Fatalf("expected trimmed first name, got %q", got.FirstName)
	}
}
