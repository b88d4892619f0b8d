// Package owner manages platform owner accounts. The first owner is created
// through an unauthenticated bootstrap that closes permanently once any
// owner exists.
package owner

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"

	"github.com/google/uuid"

	"github.com/journihealth/journi_backend/config"
	"github.com/journihealth/journi_backend/internal/repository"
	"github.com/journihealth/journi_backend/pkg/reqctx"
	"github.com/journihealth/journi_backend/pkg/util/password"
)

const minPasswordLength = 8

// ---------------------------------------------------------------------------
// DTOs
// ---------------------------------------------------------------------------

type BootstrapRequest struct {
	Email     string
	Password  string
	FirstName string
	LastName  string
}

type CreateOwnerRequest struct {
	Email     string
	Password  string
	FirstName string
	LastName  string
}

type UpdateOwnerRequest struct {
	FirstName *string
	LastName  *string
}

// ---------------------------------------------------------------------------
// Service interface
// ---------------------------------------------------------------------------

type Service interface {
	// Bootstrap creates the very first owner. Returns ErrBootstrapClosed
	// once any owner row exists.
	Bootstrap(ctx context.Context, req BootstrapRequest) (*repository.Owner, error)

	// BootstrapOpen reports whether the bootstrap endpoint still accepts
	// requests.
	BootstrapOpen(ctx context.Context) (bool, error)

	Create(ctx context.Context, actor *reqctx.Actor, req CreateOwnerRequest) (*repository.Owner, error)
	Get(ctx context.Context, id string) (*repository.Owner, error)
	List(ctx context.Context) ([]*repository.Owner, error)
	Update(ctx context.Context, actor *reqctx.Actor, id string, req UpdateOwnerRequest) (*repository.Owner, error)
	Delete(ctx context.Context, actor *reqctx.Actor, id string) error
}

// ---------------------------------------------------------------------------
// Implementation
// ---------------------------------------------------------------------------

type ownerService struct {
	repos *repository.Repositories
	cfg   *config.Config
}

func New(repos *repository.Repositories, cfg *config.Config) Service {
	return &ownerService{repos: repos, cfg: cfg}
}

func (s *ownerService) BootstrapOpen(ctx context.Context) (bool, error) {
	n, err := s.repos.Owners.Count(ctx)
	if err != nil {
		return false, fmt.Errorf("count owners: %w", err)
	}
	return n == 0, nil
}

func (s *ownerService) Bootstrap(ctx context.Context, req BootstrapRequest) (*repository.Owner, error) {
	open, err := s.BootstrapOpen(ctx)
	if err != nil {
		return nil, err
	}
	if !open {
		return nil, ErrBootstrapClosed
	}

	o, err := s.newOwner(req.Email, req.Password, req.FirstName, req.LastName)
	if err != nil {
		return nil, err
	}
	o.CreatedBy = o.ID
	o.UpdatedBy = o.ID

	if err := s.repos.Owners.Create(ctx, o); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			// Two bootstrap requests raced; the loser is told the door
			// closed rather than that the email exists.
			return nil, ErrBootstrapClosed
		}
		return nil, fmt.Errorf("create owner: %w", err)
	}
	return o, nil
}

func (s *ownerService) Create(ctx context.Context, actor *reqctx.Actor, req CreateOwnerRequest) (*repository.Owner, error) {
	o, err := s.newOwner(req.Email, req.Password, req.FirstName, req.LastName)
	if err != nil {
		return nil, err
	}
	o.CreatedBy = actor.PrincipalID
	o.UpdatedBy = actor.PrincipalID

	if err := s.repos.Owners.Create(ctx, o); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("create owner: %w", err)
	}
	return o, nil
}

func (s *ownerService) Get(ctx context.Context, id string) (*repository.Owner, error) {
	o, err := s.repos.Owners.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get owner: %w", err)
	}
	return o, nil
}

func (s *ownerService) List(ctx context.Context) ([]*repository.Owner, error) {
	owners, err := s.repos.Owners.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list owners: %w", err)
	}
	return owners, nil
}

func (s *ownerService) Update(ctx context.Context, actor *reqctx.Actor, id string, req UpdateOwnerRequest) (*repository.Owner, error) {
	o, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.FirstName != nil {
		o.FirstName = strings.TrimSpace(*req.FirstName)
	}
	if req.LastName != nil {
		o.LastName = strings.TrimSpace(*req.LastName)
	}
	o.UpdatedBy = actor.PrincipalID

	if err := s.repos.Owners.Update(ctx, o); err != nil {
		return nil, fmt.Errorf("update owner: %w", err)
	}
	return o, nil
}

func (s *ownerService) Delete(ctx context.Context, actor *reqctx.Actor, id string) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}

	n, err := s.repos.Owners.Count(ctx)
	if err != nil {
		return fmt.Errorf("count owners: %w", err)
	}
	if n <= 1 {
		return ErrLastOwner
	}

	if err := s.repos.Owners.SoftDelete(ctx, id, actor.PrincipalID); err != nil {
		return fmt.Errorf("delete owner: %w", err)
	}

	// The removed owner's sessions die with the account.
	if err := s.repos.AuthSessions.RevokeAllForUser(ctx, id); err != nil {
		return fmt.Errorf("revoke sessions: %w", err)
	}
	return nil
}

func (s *ownerService) newOwner(emailAddr, pass, firstName, lastName string) (*repository.Owner, error) {
	emailAddr = strings.ToLower(strings.TrimSpace(emailAddr))
	if _, err := mail.ParseAddress(emailAddr); err != nil {
		return nil, ErrInvalidEmail
	}
	if len(pass) < minPasswordLength {
		return nil, ErrPasswordTooShort
	}

	hash, err := password.HashWithCost(pass, s.cfg.Password.Cost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	return &repository.Owner{
		ID:           uuid.NewString(),
		Email:        emailAddr,
		PasswordHash: hash,
		FirstName:    strings.TrimSpace(firstName),
		LastName:     strings.TrimSpace(lastName),
	}, nil
}
