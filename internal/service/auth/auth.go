// Package auth owns login sessions: issuing opaque tokens, resolving them
// back into actors, and the password change / reset flows that revoke them.
package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/journihealth/journi_backend/config"
	"github.com/journihealth/journi_backend/internal/mailer"
	"github.com/journihealth/journi_backend/internal/repository"
	"github.com/journihealth/journi_backend/pkg/email"
	"github.com/journihealth/journi_backend/pkg/reqctx"
	"github.com/journihealth/journi_backend/pkg/util/codes"
	"github.com/journihealth/journi_backend/pkg/util/password"
)

const minPasswordLength = 8

// ---------------------------------------------------------------------------
// DTOs
// ---------------------------------------------------------------------------

type LoginRequest struct {
	Email    string
	Password string
}

type ChangePasswordRequest struct {
	CurrentPassword string
	NewPassword     string
}

type ResetPasswordRequest struct {
	Token       string
	OTP         string
	NewPassword string
}

// LoginResult carries the opaque session token the handler sets as a cookie.
type LoginResult struct {
	Token       string
	ExpiresAt   time.Time
	PrincipalID string
	Email       string
	FirstName   string
	LastName    string
	RoleTag     string
}

// SessionInfo is one row in a principal's session list.
type SessionInfo struct {
	ID             string
	IPAddress      string
	UserAgent      string
	Device         string
	Current        bool
	CreatedAt      time.Time
	LastActivityAt *time.Time
	ExpiresAt      time.Time
}

// ---------------------------------------------------------------------------
// Service interface
// ---------------------------------------------------------------------------

type Service interface {
	Login(ctx context.Context, req LoginRequest) (*LoginResult, error)
	Logout(ctx context.Context, sessionID string) error

	// ValidateSession resolves an opaque token into an actor, touching the
	// session's last activity. Revoked, expired and unknown tokens all
	// come back as ErrUnauthorized.
	ValidateSession(ctx context.Context, token string) (*reqctx.Actor, error)

	// ResolvePracticeRole returns the actor's role within a practice.
	// Owners get an empty role with no error; users need a non-deleted
	// membership or ErrNoPracticeAccess. Membership status is checked
	// at login, not here.
	ResolvePracticeRole(ctx context.Context, actor *reqctx.Actor, practiceID string) (string, error)

	// ChangePassword verifies the current password, stores the new hash
	// and signs out every other session. The returned result carries a
	// fresh token for the caller's own session.
	ChangePassword(ctx context.Context, actor *reqctx.Actor, req ChangePasswordRequest) (*LoginResult, error)

	// ForgotPassword starts a reset flow. It never reveals whether the
	// email exists.
	ForgotPassword(ctx context.Context, emailAddr string) error

	// VerifyResetOTP checks the emailed code and, on success, returns the
	// reset token from the same bundle.
	VerifyResetOTP(ctx context.Context, emailAddr, otp string) (string, error)

	// ResetPassword consumes a reset bundle. Both the token and the
	// emailed code must match; on success it stores the new hash and
	// revokes every session of the principal.
	ResetPassword(ctx context.Context, req ResetPasswordRequest) error

	Sessions(ctx context.Context, actor *reqctx.Actor) ([]SessionInfo, error)

	// RevokeSession revokes one of the caller's own sessions.
	RevokeSession(ctx context.Context, actor *reqctx.Actor, sessionID string) error
}

// ---------------------------------------------------------------------------
// Implementation
// ---------------------------------------------------------------------------

type authService struct {
	repos *repository.Repositories
	mail  mailer.Queue
	cfg   *config.Config
}

func New(repos *repository.Repositories, mail mailer.Queue, cfg *config.Config) Service {
	return &authService{
		repos: repos,
		mail:  mail,
		cfg:   cfg,
	}
}

func (s *authService) sessionTTL() time.Duration {
	days := s.cfg.Authentication.SessionTTLDays
	if days <= 0 {
		days = 7
	}
	return time.Duration(days) * 24 * time.Hour
}

func (s *authService) otpTTL() time.Duration {
	mins := s.cfg.Authentication.ResetOTPTTLMinutes
	if mins <= 0 {
		mins = 15
	}
	return time.Duration(mins) * time.Minute
}

func (s *authService) resetTokenTTL() time.Duration {
	mins := s.cfg.Authentication.ResetTokenTTLMinutes
	if mins <= 0 {
		mins = 60
	}
	return time.Duration(mins) * time.Minute
}

// ---------------------------------------------------------------------------
// Login
// ---------------------------------------------------------------------------

func (s *authService) Login(ctx context.Context, req LoginRequest) (*LoginResult, error) {
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Email == "" || req.Password == "" {
		return nil, ErrInvalidCredentials
	}

	// Owners and users live in separate tables; owners win on a tie.
	if o, err := s.repos.Owners.GetByEmail(ctx, req.Email); err == nil {
		if !password.Match(o.PasswordHash, req.Password) {
			return nil, ErrInvalidCredentials
		}
		return s.createSession(ctx, o.ID, o.Email, o.FirstName, o.LastName, repository.SessionRoleOwner)
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("find owner: %w", err)
	}

	u, err := s.repos.Users.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	if !password.Match(u.PasswordHash, req.Password) {
		return nil, ErrInvalidCredentials
	}

	// A user with no active membership anywhere has nothing to sign into.
	memberships, err := s.repos.Memberships.ListByUser(ctx, u.ID)
	if err != nil {
		return nil, fmt.Errorf("list memberships: %w", err)
	}
	active := false
	for _, m := range memberships {
		if m.Status == repository.StatusActive {
			active = true
			break
		}
	}
	if !active {
		return nil, ErrAccountInactive
	}

	return s.createSession(ctx, u.ID, u.Email, u.FirstName, u.LastName, repository.SessionRoleUser)
}

func (s *authService) createSession(ctx context.Context, principalID, emailAddr, firstName, lastName, roleTag string) (*LoginResult, error) {
	token, err := codes.GenerateSessionToken()
	if err != nil {
		return nil, fmt.Errorf("generate session token: %w", err)
	}

	now := time.Now()
	sess := &repository.AuthSession{
		ID:        token,
		UserID:    principalID,
		Email:     emailAddr,
		Role:      roleTag,
		ExpiresAt: now.Add(s.sessionTTL()),
		CreatedAt: now,
	}
	if meta, ok := reqctx.RequestMetaFromContext(ctx); ok {
		sess.IPAddress = meta.ClientIP
		sess.UserAgent = meta.UserAgent
		sess.Device = meta.Device
	}

	if err := s.repos.AuthSessions.Create(ctx, sess); err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}

	return &LoginResult{
		Token:       token,
		ExpiresAt:   sess.ExpiresAt,
		PrincipalID: principalID,
		Email:       emailAddr,
		FirstName:   firstName,
		LastName:    lastName,
		RoleTag:     roleTag,
	}, nil
}

// ---------------------------------------------------------------------------
// Session validation
// ---------------------------------------------------------------------------

func (s *authService) ValidateSession(ctx context.Context, token string) (*reqctx.Actor, error) {
	if token == "" {
		return nil, ErrUnauthorized
	}

	sess, err := s.repos.AuthSessions.Get(ctx, token)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUnauthorized
		}
		return nil, fmt.Errorf("get session: %w", err)
	}
	if !sess.Live(time.Now()) {
		return nil, ErrUnauthorized
	}

	// Best-effort; a failed touch must not fail the request.
	if err := s.repos.AuthSessions.Touch(ctx, sess.ID, time.Now()); err != nil {
		slog.Debug("auth: session touch failed", "err", err)
	}

	return &reqctx.Actor{
		PrincipalID: sess.UserID,
		Email:       sess.Email,
		RoleTag:     sess.Role,
		SessionID:   sess.ID,
	}, nil
}

func (s *authService) ResolvePracticeRole(ctx context.Context, actor *reqctx.Actor, practiceID string) (string, error) {
	if actor == nil {
		return "", ErrUnauthorized
	}
	if actor.IsOwner() {
		return "", nil
	}

	m, err := s.repos.Memberships.GetByUserAndPractice(ctx, actor.PrincipalID, practiceID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", ErrNoPracticeAccess
		}
		return "", fmt.Errorf("get membership: %w", err)
	}
	// Membership status is a login concern. Once signed in, any
	// non-deleted membership carries its role into the gate.
	return m.Role, nil
}

// ---------------------------------------------------------------------------
// Logout / session management
// ---------------------------------------------------------------------------

func (s *authService) Logout(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return nil
	}
	if err := s.repos.AuthSessions.Revoke(ctx, sessionID); err != nil {
		return fmt.Errorf("revoke session: %w", err)
	}
	return nil
}

func (s *authService) Sessions(ctx context.Context, actor *reqctx.Actor) ([]SessionInfo, error) {
	rows, err := s.repos.AuthSessions.ListByUser(ctx, actor.PrincipalID)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}

	now := time.Now()
	out := make([]SessionInfo, 0, len(rows))
	for _, r := range rows {
		if !r.Live(now) {
			continue
		}
		out = append(out, SessionInfo{
			ID:             r.ID,
			IPAddress:      r.IPAddress,
			UserAgent:      r.UserAgent,
			Device:         r.Device,
			Current:        r.ID == actor.SessionID,
			CreatedAt:      r.CreatedAt,
			LastActivityAt: r.LastActivityAt,
			ExpiresAt:      r.ExpiresAt,
		})
	}
	return out, nil
}

func (s *authService) RevokeSession(ctx context.Context, actor *reqctx.Actor, sessionID string) error {
	sess, err := s.repos.AuthSessions.Get(ctx, sessionID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrSessionNotFound
		}
		return fmt.Errorf("get session: %w", err)
	}
	if sess.UserID != actor.PrincipalID {
		return ErrSessionNotFound
	}
	if err := s.repos.AuthSessions.Revoke(ctx, sessionID); err != nil {
		return fmt.Errorf("revoke session: %w", err)
	}
	return nil
}

// ---------------------------------------------------------------------------
// Change password
// ---------------------------------------------------------------------------

func (s *authService) ChangePassword(ctx context.Context, actor *reqctx.Actor, req ChangePasswordRequest) (*LoginResult, error) {
	if len(req.NewPassword) < minPasswordLength {
		return nil, ErrPasswordTooShort
	}

	var hash, firstName, lastName string
	if actor.IsOwner() {
		o, err := s.repos.Owners.GetByID(ctx, actor.PrincipalID)
		if err != nil {
			return nil, fmt.Errorf("get owner: %w", err)
		}
		hash, firstName, lastName = o.PasswordHash, o.FirstName, o.LastName
	} else {
		u, err := s.repos.Users.GetByID(ctx, actor.PrincipalID)
		if err != nil {
			return nil, fmt.Errorf("get user: %w", err)
		}
		hash, firstName, lastName = u.PasswordHash, u.FirstName, u.LastName
	}

	if !password.Match(hash, req.CurrentPassword) {
		return nil, ErrWrongPassword
	}

	newHash, err := password.HashWithCost(req.NewPassword, s.cfg.Password.Cost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	if actor.IsOwner() {
		err = s.repos.Owners.UpdatePassword(ctx, actor.PrincipalID, newHash)
	} else {
		err = s.repos.Users.UpdatePassword(ctx, actor.PrincipalID, newHash)
	}
	if err != nil {
		return nil, fmt.Errorf("update password: %w", err)
	}

	// Every session dies, then the caller gets a fresh one so only other
	// devices are signed out from their point of view.
	if err := s.repos.AuthSessions.RevokeAllForUser(ctx, actor.PrincipalID); err != nil {
		return nil, fmt.Errorf("revoke sessions: %w", err)
	}

	result, err := s.createSession(ctx, actor.PrincipalID, actor.Email, firstName, lastName, actor.RoleTag)
	if err != nil {
		return nil, err
	}

	s.enqueueMail(ctx, email.BuildPasswordChangedEmail(email.AccountEmailData{
		FirstName: firstName,
		Email:     actor.Email,
		AppName:   s.cfg.Email.AppName,
	}))

	return result, nil
}

// ---------------------------------------------------------------------------
// Forgot / reset password
// ---------------------------------------------------------------------------

// findPrincipalByEmail looks across both principal tables.
func (s *authService) findPrincipalByEmail(ctx context.Context, emailAddr string) (id, firstName string, found bool, err error) {
	if o, err := s.repos.Owners.GetByEmail(ctx, emailAddr); err == nil {
		return o.ID, o.FirstName, true, nil
	} else if !errors.Is(err, repository.ErrNotFound) {
		return "", "", false, fmt.Errorf("find owner: %w", err)
	}

	if u, err := s.repos.Users.GetByEmail(ctx, emailAddr); err == nil {
		return u.ID, u.FirstName, true, nil
	} else if !errors.Is(err, repository.ErrNotFound) {
		return "", "", false, fmt.Errorf("find user: %w", err)
	}
	return "", "", false, nil
}

func (s *authService) ForgotPassword(ctx context.Context, emailAddr string) error {
	emailAddr = strings.ToLower(strings.TrimSpace(emailAddr))
	if emailAddr == "" {
		return nil
	}

	principalID, firstName, found, err := s.findPrincipalByEmail(ctx, emailAddr)
	if err != nil {
		return err
	}
	if !found {
		// Same outcome as success; enumeration stays impossible.
		return nil
	}

	// A new request supersedes any outstanding bundle.
	if err := s.repos.PasswordResets.InvalidateForUser(ctx, principalID); err != nil {
		return fmt.Errorf("invalidate resets: %w", err)
	}

	otp, err := codes.GenerateResetOTP()
	if err != nil {
		return fmt.Errorf("generate otp: %w", err)
	}
	token, err := codes.GenerateResetToken()
	if err != nil {
		return fmt.Errorf("generate reset token: %w", err)
	}

	now := time.Now()
	reset := &repository.PasswordReset{
		ID:          uuid.NewString(),
		UserID:      principalID,
		Email:       emailAddr,
		OTP:         otp,
		OTPType:     repository.OTPTypeForgotPassword,
		OTPExpiry:   now.Add(s.otpTTL()),
		Token:       token,
		TokenExpiry: now.Add(s.resetTokenTTL()),
		CreatedAt:   now,
	}
	if err := s.repos.PasswordResets.Create(ctx, reset); err != nil {
		return fmt.Errorf("create reset: %w", err)
	}

	s.enqueueMail(ctx, email.BuildPasswordResetEmail(email.ResetEmailData{
		FirstName:     firstName,
		Email:         emailAddr,
		OTP:           otp,
		ResetURL:      fmt.Sprintf("%s/reset-password?token=%s", strings.TrimRight(s.cfg.Email.BaseURL, "/"), token),
		OTPExpiryMin:  int(s.otpTTL().Minutes()),
		LinkExpiryMin: int(s.resetTokenTTL().Minutes()),
		AppName:       s.cfg.Email.AppName,
	}))

	return nil
}

func (s *authService) VerifyResetOTP(ctx context.Context, emailAddr, otp string) (string, error) {
	emailAddr = strings.ToLower(strings.TrimSpace(emailAddr))
	otp = codes.NormalizeCode(otp)

	principalID, _, found, err := s.findPrincipalByEmail(ctx, emailAddr)
	if err != nil {
		return "", err
	}
	if !found {
		return "", ErrOTPInvalid
	}

	reset, err := s.repos.PasswordResets.GetLatestByUser(ctx, principalID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", ErrOTPInvalid
		}
		return "", fmt.Errorf("get reset: %w", err)
	}
	if time.Now().After(reset.OTPExpiry) {
		return "", ErrOTPExpired
	}
	if reset.OTP != otp {
		return "", ErrOTPInvalid
	}
	return reset.Token, nil
}

func (s *authService) ResetPassword(ctx context.Context, req ResetPasswordRequest) error {
	if len(req.NewPassword) < minPasswordLength {
		return ErrPasswordTooShort
	}

	reset, err := s.repos.PasswordResets.GetByToken(ctx, req.Token)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrResetTokenInvalid
		}
		return fmt.Errorf("get reset: %w", err)
	}
	if time.Now().After(reset.TokenExpiry) {
		return ErrResetTokenExpired
	}
	// The token alone is not enough: the bundle's one-time code must be
	// presented with it.
	if reset.OTPType != repository.OTPTypeForgotPassword || reset.OTP != codes.NormalizeCode(req.OTP) {
		return ErrOTPInvalid
	}

	newHash, err := password.HashWithCost(req.NewPassword, s.cfg.Password.Cost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	var firstName string
	if o, err := s.repos.Owners.GetByID(ctx, reset.UserID); err == nil {
		firstName = o.FirstName
		if err := s.repos.Owners.UpdatePassword(ctx, reset.UserID, newHash); err != nil {
			return fmt.Errorf("update password: %w", err)
		}
	} else if errors.Is(err, repository.ErrNotFound) {
		u, err := s.repos.Users.GetByID(ctx, reset.UserID)
		if err != nil {
			return fmt.Errorf("get user: %w", err)
		}
		firstName = u.FirstName
		if err := s.repos.Users.UpdatePassword(ctx, reset.UserID, newHash); err != nil {
			return fmt.Errorf("update password: %w", err)
		}
	} else {
		return fmt.Errorf("get owner: %w", err)
	}

	if err := s.repos.PasswordResets.MarkUsed(ctx, reset.ID); err != nil {
		return fmt.Errorf("mark reset used: %w", err)
	}

	if err := s.repos.AuthSessions.RevokeAllForUser(ctx, reset.UserID); err != nil {
		return fmt.Errorf("revoke sessions: %w", err)
	}

	s.enqueueMail(ctx, email.BuildPasswordChangedEmail(email.AccountEmailData{
		FirstName: firstName,
		Email:     reset.Email,
		AppName:   s.cfg.Email.AppName,
	}))

	return nil
}

func (s *authService) enqueueMail(ctx context.Context, m email.Message) {
	if err := s.mail.Enqueue(ctx, mailer.Task{Message: m}); err != nil {
		slog.Warn("auth: failed to enqueue email", "err", err)
	}
}
