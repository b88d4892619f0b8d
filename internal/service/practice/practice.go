// Package practice manages the tenant practices owners administer.
package practice

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/journihealth/journi_backend/internal/repository"
	"github.com/journihealth/journi_backend/pkg/reqctx"
	"github.com/journihealth/journi_backend/pkg/util/phone"
)

// ---------------------------------------------------------------------------
// DTOs
// ---------------------------------------------------------------------------

type CreatePracticeRequest struct {
	Name         string
	LegalName    string
	TaxID        string
	NPINumber    string
	Phone        string
	Email        string
	Website      string
	AddressLine1 string
	AddressLine2 string
	City         string
	State        string
	PostalCode   string
	Country      string
}

type UpdatePracticeRequest struct {
	Name         *string
	LegalName    *string
	TaxID        *string
	NPINumber    *string
	Phone        *string
	Email        *string
	Website      *string
	AddressLine1 *string
	AddressLine2 *string
	City         *string
	State        *string
	PostalCode   *string
	Country      *string
}

// ---------------------------------------------------------------------------
// Service interface
// ---------------------------------------------------------------------------

type Service interface {
	Create(ctx context.Context, actor *reqctx.Actor, req CreatePracticeRequest) (*repository.Practice, error)
	Get(ctx context.Context, id string) (*repository.Practice, error)

	// List returns every practice for owners, or the practices the user
	// holds a non-deleted membership in.
	List(ctx context.Context, actor *reqctx.Actor) ([]*repository.Practice, error)

	Update(ctx context.Context, actor *reqctx.Actor, id string, req UpdatePracticeRequest) (*repository.Practice, error)
	Delete(ctx context.Context, actor *reqctx.Actor, id string) error
}

// ---------------------------------------------------------------------------
// Implementation
// ---------------------------------------------------------------------------

type practiceService struct {
	repos *repository.Repositories
}

func New(repos *repository.Repositories) Service {
	return &practiceService{repos: repos}
}

func (s *practiceService) Create(ctx context.Context, actor *reqctx.Actor, req CreatePracticeRequest) (*repository.Practice, error) {
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		return nil, ErrNameMissing
	}

	normPhone, err := phone.Normalize(req.Phone)
	if err != nil {
		return nil, ErrInvalidPhone
	}

	p := &repository.Practice{
		ID:           uuid.NewString(),
		Name:         req.Name,
		LegalName:    strings.TrimSpace(req.LegalName),
		TaxID:        strings.TrimSpace(req.TaxID),
		NPINumber:    strings.TrimSpace(req.NPINumber),
		Phone:        normPhone,
		Email:        strings.ToLower(strings.TrimSpace(req.Email)),
		Website:      strings.TrimSpace(req.Website),
		AddressLine1: req.AddressLine1,
		AddressLine2: req.AddressLine2,
		City:         req.City,
		State:        req.State,
		PostalCode:   req.PostalCode,
		Country:      req.Country,
		CreatedBy:    actor.PrincipalID,
		UpdatedBy:    actor.PrincipalID,
	}

	if err := s.repos.Practices.Create(ctx, p); err != nil {
		return nil, fmt.Errorf("create practice: %w", err)
	}
	return p, nil
}

func (s *practiceService) Get(ctx context.Context, id string) (*repository.Practice, error) {
	p, err := s.repos.Practices.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get practice: %w", err)
	}
	return p, nil
}

func (s *practiceService) List(ctx context.Context, actor *reqctx.Actor) ([]*repository.Practice, error) {
	if actor.IsOwner() {
		practices, err := s.repos.Practices.List(ctx)
		if err != nil {
			return nil, fmt.Errorf("list practices: %w", err)
		}
		return practices, nil
	}

	memberships, err := s.repos.Memberships.ListByUser(ctx, actor.PrincipalID)
	if err != nil {
		return nil, fmt.Errorf("list memberships: %w", err)
	}

	practices := make([]*repository.Practice, 0, len(memberships))
	for _, m := range memberships {
		p, err := s.repos.Practices.GetByID(ctx, m.PracticeID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				continue
			}
			return nil, fmt.Errorf("get practice: %w", err)
		}
		practices = append(practices, p)
	}
	return practices, nil
}

func (s *practiceService) Update(ctx context.Context, actor *reqctx.Actor, id string, req UpdatePracticeRequest) (*repository.Practice, error) {
	p, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, ErrNameMissing
		}
		p.Name = name
	}
	if req.LegalName != nil {
		p.LegalName = strings.TrimSpace(*req.LegalName)
	}
	if req.TaxID != nil {
		p.TaxID = strings.TrimSpace(*req.TaxID)
	}
	if req.NPINumber != nil {
		p.NPINumber = strings.TrimSpace(*req.NPINumber)
	}
	if req.Phone != nil {
		normPhone, err := phone.Normalize(*req.Phone)
		if err != nil {
			return nil, ErrInvalidPhone
		}
		p.Phone = normPhone
	}
	if req.Email != nil {
		p.Email = strings.ToLower(strings.TrimSpace(*req.Email))
	}
	if req.Website != nil {
		p.Website = strings.TrimSpace(*req.Website)
	}
	if req.AddressLine1 != nil {
		p.AddressLine1 = *req.AddressLine1
	}
	if req.AddressLine2 != nil {
		p.AddressLine2 = *req.AddressLine2
	}
	if req.City != nil {
		p.City = *req.City
	}
	if req.State != nil {
		p.State = *req.State
	}
	if req.PostalCode != nil {
		p.PostalCode = *req.PostalCode
	}
	if req.Country != nil {
		p.Country = *req.Country
	}
	p.UpdatedBy = actor.PrincipalID

	if err := s.repos.Practices.Update(ctx, p); err != nil {
		return nil, fmt.Errorf("update practice: %w", err)
	}
	return p, nil
}

func (s *practiceService) Delete(ctx context.Context, actor *reqctx.Actor, id string) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	if err := s.repos.Practices.SoftDelete(ctx, id, actor.PrincipalID); err != nil {
		return fmt.Errorf("delete practice: %w", err)
	}
	return nil
}
