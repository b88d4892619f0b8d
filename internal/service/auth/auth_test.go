package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/journihealth/journi_backend/config"
	"github.com/journihealth/journi_backend/internal/mailer"
	"github.com/journihealth/journi_backend/internal/repository"
	"github.com/journihealth/journi_backend/pkg/reqctx"
	"github.com/journihealth/journi_backend/pkg/util/password"
)

func testConfig() *config.Config {
	return &config.Config{
		Authentication: config.AuthenticationConfig{
			SessionTTLDays:       7,
			ResetOTPTTLMinutes:   15,
			ResetTokenTTLMinutes: 60,
		},
		Password: config.PasswordConfig{Cost: 4},
		Email:    config.EmailConfig{AppName: "Journi", BaseURL: "https://app.example.com"},
	}
}

type fixture struct {
	svc   Service
	repos *repository.Repositories
	mail  *mailer.Buffer
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	repos := repository.NewMemory()
	mail := mailer.NewBuffer()
	return &fixture{
		svc:   New(repos, mail, testConfig()),
		repos: repos,
		mail:  mail,
	}
}

func (f *fixture) seedUser(t *testing.T, emailAddr, pass string) *repository.User {
	t.Helper()
	hash, err := password.HashWithCost(pass, 4)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	u := &repository.User{
		ID:           uuid.NewString(),
		Email:        emailAddr,
		PasswordHash: hash,
		FirstName:    "Dana",
		LastName:     "Reyes",
	}
	if err := f.repos.Users.Create(context.Background(), u); err != nil {
		t.Fatalf("create user: %v", err)
	}
	return u
}

func (f *fixture) seedOwner(t *testing.T, emailAddr, pass string) *repository.Owner {
	t.Helper()
	hash, err := password.HashWithCost(pass, 4)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	o := &repository.Owner{
		ID:           uuid.NewString(),
		Email:        emailAddr,
		PasswordHash: hash,
		FirstName:    "Pat",
		LastName:     "Owens",
	}
	if err := f.repos.Owners.Create(context.Background(), o); err != nil {
		t.Fatalf("create owner: %v", err)
	}
	return o
}

func (f *fixture) seedMembership(t *testing.T, userID, practiceID, role, status string) {
	t.Helper()
	m := &repository.Membership{
		ID:         uuid.NewString(),
		UserID:     userID,
		PracticeID: practiceID,
		Role:       role,
		Status:     status,
	}
	if err := f.repos.Memberships.Create(context.Background(), m); err != nil {
		t.Fatalf("create membership: %v", err)
	}
}

func TestLoginOwner(t *testing.T) {
	f := newFixture(t)
	o := f.seedOwner(t, "owner@example.com", "supersecret")

	res, err := f.svc.Login(context.Background(), LoginRequest{Email: "owner@example.com", Password: "supersecret"})
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if res.RoleTag != repository.SessionRoleOwner {
		t.Errorf("role tag = %q, want OWNER", res.RoleTag)
	}
	if res.PrincipalID != o.ID {
		t.Errorf("principal = %q, want %q", res.PrincipalID, o.ID)
	}
	if len(res.Token) != 64 {
		t.Errorf("token length = %d, want 64", len(res.Token))
	}
}

func TestLoginUserRequiresActiveMembership(t *testing.T) {
	f := newFixture(t)
	u := f.seedUser(t, "staff@example.com", "supersecret")

	// No membership at all.
	_, err := f.svc.Login(context.Background(), LoginRequest{Email: "staff@example.com", Password: "supersecret"})
	if !errors.Is(err, ErrAccountInactive) {
		t.Fatalf("login with no membership: got %v, want ErrAccountInactive", err)
	}

	// Inactive membership only.
	f.seedMembership(t, u.ID, "practice-1", repository.RoleTherapist, repository.StatusInactive)
	_, err = f.svc.Login(context.Background(), LoginRequest{Email: "staff@example.com", Password: "supersecret"})
	if !errors.Is(err, ErrAccountInactive) {
		t.Fatalf("login with inactive membership: got %v, want ErrAccountInactive", err)
	}

	// Active membership in a second practice unlocks login.
	f.seedMembership(t, u.ID, "practice-2", repository.RoleSupervisor, repository.StatusActive)
	res, err := f.svc.Login(context.Background(), LoginRequest{Email: "staff@example.com", Password: "supersecret"})
	if err != nil {
		t.Fatalf("login with active membership: %v", err)
	}
	if res.RoleTag != repository.SessionRoleUser {
		t.Errorf("role tag = %q, want USER", res.RoleTag)
	}
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	f := newFixture(t)
	u := f.seedUser(t, "staff@example.com", "supersecret")
	f.seedMembership(t, u.ID, "practice-1", repository.RoleTherapist, repository.StatusActive)

	cases := []struct {
		name  string
		email string
		pass  string
	}{
		{"wrong password", "staff@example.com", "wrong"},
		{"unknown email", "nobody@example.com", "supersecret"},
		{"empty password", "staff@example.com", ""},
		{"empty email", "", "supersecret"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.svc.Login(context.Background(), LoginRequest{Email: tc.email, Password: tc.pass})
			if !errors.Is(err, ErrInvalidCredentials) {
				t.Errorf("got %v, want ErrInvalidCredentials", err)
			}
		})
	}
}

func TestValidateSession(t *testing.T) {
	f := newFixture(t)
	o := f.seedOwner(t, "owner@example.com", "supersecret")

	res, err := f.svc.Login(context.Background(), LoginRequest{Email: "owner@example.com", Password: "supersecret"})
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	actor, err := f.svc.ValidateSession(context.Background(), res.Token)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if actor.PrincipalID != o.ID {
		t.Errorf("principal = %q, want %q", actor.PrincipalID, o.ID)
	}
	if !actor.IsOwner() {
		t.Error("expected owner actor")
	}
	if actor.SessionID != res.Token {
		t.Errorf("session id = %q, want token", actor.SessionID)
	}
}

func TestValidateSessionRejectsBadTokens(t *testing.T) {
	f := newFixture(t)
	f.seedOwner(t, "owner@example.com", "supersecret")

	res, err := f.svc.Login(context.Background(), LoginRequest{Email: "owner@example.com", Password: "supersecret"})
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	if _, err := f.svc.ValidateSession(context.Background(), ""); !errors.Is(err, ErrUnauthorized) {
		t.Errorf("empty token: got %v, want ErrUnauthorized", err)
	}
	if _, err := f.svc.ValidateSession(context.Background(), "deadbeef"); !errors.Is(err, ErrUnauthorized) {
		t.Errorf("unknown token: got %v, want ErrUnauthorized", err)
	}

	if err := f.svc.Logout(context.Background(), res.Token); err != nil {
		t.Fatalf("logout: %v", err)
	}
	if _, err := f.svc.ValidateSession(context.Background(), res.Token); !errors.Is(err, ErrUnauthorized) {
		t.Errorf("revoked token: got %v, want ErrUnauthorized", err)
	}
}

func TestResolvePracticeRole(t *testing.T) {
	f := newFixture(t)
	u := f.seedUser(t, "staff@example.com", "supersecret")
	f.seedMembership(t, u.ID, "practice-1", repository.RoleSupervisor, repository.StatusActive)
	f.seedMembership(t, u.ID, "practice-2", repository.RoleTherapist, repository.StatusInactive)

	res, err := f.svc.Login(context.Background(), LoginRequest{Email: "staff@example.com", Password: "supersecret"})
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	actor, err := f.svc.ValidateSession(context.Background(), res.Token)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}

	role, err := f.svc.ResolvePracticeRole(context.Background(), actor, "practice-1")
	if err != nil {
		t.Fatalf("resolve active practice: %v", err)
	}
	if role != repository.RoleSupervisor {
		t.Errorf("role = %q, want SUPERVISOR", role)
	}

	// Status only matters at login. An inactive membership still resolves
	// to its role once the user is signed in through another practice.
	role, err = f.svc.ResolvePracticeRole(context.Background(), actor, "practice-2")
	if err != nil {
		t.Fatalf("resolve inactive membership: %v", err)
	}
	if role != repository.RoleTherapist {
		t.Errorf("role = %q, want THERAPIST", role)
	}
	if _, err := f.svc.ResolvePracticeRole(context.Background(), actor, "practice-3"); !errors.Is(err, ErrNoPracticeAccess) {
		t.Errorf("no membership: got %v, want ErrNoPracticeAccess", err)
	}
}

func TestChangePasswordRevokesOtherSessions(t *testing.T) {
	f := newFixture(t)
	f.seedOwner(t, "owner@example.com", "supersecret")

	first, err := f.svc.Login(context.Background(), LoginRequest{Email: "owner@example.com", Password: "supersecret"})
	if err != nil {
		t.Fatalf("first login: %v", err)
	}
	second, err := f.svc.Login(context.Background(), LoginRequest{Email: "owner@example.com", Password: "supersecret"})
	if err != nil {
		t.Fatalf("second login: %v", err)
	}

	actor, err := f.svc.ValidateSession(context.Background(), second.Token)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}

	res, err := f.svc.ChangePassword(context.Background(), actor, ChangePasswordRequest{
		CurrentPassword: "supersecret",
		NewPassword:     "evenmoresecret",
	})
	if err != nil {
		t.Fatalf("change password: %v", err)
	}

	// Both old tokens are dead; the returned one works.
	if _, err := f.svc.ValidateSession(context.Background(), first.Token); !errors.Is(err, ErrUnauthorized) {
		t.Errorf("first token after change: got %v, want ErrUnauthorized", err)
	}
	if _, err := f.svc.ValidateSession(context.Background(), second.Token); !errors.Is(err, ErrUnauthorized) {
		t.Errorf("second token after change: got %v, want ErrUnauthorized", err)
	}
	if _, err := f.svc.ValidateSession(context.Background(), res.Token); err != nil {
		t.Errorf("fresh token after change: %v", err)
	}

	// Old password no longer logs in.
	if _, err := f.svc.Login(context.Background(), LoginRequest{Email: "owner@example.com", Password: "supersecret"}); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("old password: got %v, want ErrInvalidCredentials", err)
	}
	if _, err := f.svc.Login(context.Background(), LoginRequest{Email: "owner@example.com", Password: "evenmoresecret"}); err != nil {
		t.Errorf("new password: %v", err)
	}
}

func TestChangePasswordRejectsWrongCurrent(t *testing.T) {
	f := newFixture(t)
	f.seedOwner(t, "owner@example.com", "supersecret")

	res, err := f.svc.Login(context.Background(), LoginRequest{Email: "owner@example.com", Password: "supersecret"})
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	actor, err := f.svc.ValidateSession(context.Background(), res.Token)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}

	if _, err := f.svc.ChangePassword(context.Background(), actor, ChangePasswordRequest{
		CurrentPassword: "wrong",
		NewPassword:     "evenmoresecret",
	}); !errors.Is(err, ErrWrongPassword) {
		t.Errorf("got %v, want ErrWrongPassword", err)
	}

	if _, err := f.svc.ChangePassword(context.Background(), actor, ChangePasswordRequest{
		CurrentPassword: "supersecret",
		NewPassword:     "short",
	}); !errors.Is(err, ErrPasswordTooShort) {
		t.Errorf("got %v, want ErrPasswordTooShort", err)
	}
}

func TestForgotPasswordFlow(t *testing.T) {
	f := newFixture(t)
	u := f.seedUser(t, "staff@example.com", "supersecret")
	f.seedMembership(t, u.ID, "practice-1", repository.RoleTherapist, repository.StatusActive)

	if err := f.svc.ForgotPassword(context.Background(), "staff@example.com"); err != nil {
		t.Fatalf("forgot: %v", err)
	}
	if got := len(f.mail.Tasks()); got != 1 {
		t.Fatalf("queued emails = %d, want 1", got)
	}

	reset, err := f.repos.PasswordResets.GetLatestByUser(context.Background(), u.ID)
	if err != nil {
		t.Fatalf("latest reset: %v", err)
	}

	token, err := f.svc.VerifyResetOTP(context.Background(), "staff@example.com", reset.OTP)
	if err != nil {
		t.Fatalf("verify otp: %v", err)
	}
	if token != reset.Token {
		t.Errorf("token = %q, want bundle token", token)
	}

	if err := f.svc.ResetPassword(context.Background(), ResetPasswordRequest{Token: token, OTP: reset.OTP, NewPassword: "freshsecret"}); err != nil {
		t.Fatalf("reset: %v", err)
	}
	if _, err := f.svc.Login(context.Background(), LoginRequest{Email: "staff@example.com", Password: "freshsecret"}); err != nil {
		t.Errorf("login with new password: %v", err)
	}
	if _, err := f.svc.Login(context.Background(), LoginRequest{Email: "staff@example.com", Password: "supersecret"}); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("login with old password: got %v, want ErrInvalidCredentials", err)
	}

	// The bundle is single-use.
	if err := f.svc.ResetPassword(context.Background(), ResetPasswordRequest{Token: token, OTP: reset.OTP, NewPassword: "anothersecret"}); !errors.Is(err, ErrResetTokenInvalid) {
		t.Errorf("token reuse: got %v, want ErrResetTokenInvalid", err)
	}
}

func TestResetPasswordRequiresCode(t *testing.T) {
	f := newFixture(t)
	u := f.seedUser(t, "staff@example.com", "supersecret")
	f.seedMembership(t, u.ID, "practice-1", repository.RoleTherapist, repository.StatusActive)

	if err := f.svc.ForgotPassword(context.Background(), "staff@example.com"); err != nil {
		t.Fatalf("forgot: %v", err)
	}
	reset, err := f.repos.PasswordResets.GetLatestByUser(context.Background(), u.ID)
	if err != nil {
		t.Fatalf("latest reset: %v", err)
	}

	// A leaked token without the emailed code must not reset the password.
	if err := f.svc.ResetPassword(context.Background(), ResetPasswordRequest{Token: reset.Token, NewPassword: "attackerpass"}); !errors.Is(err, ErrOTPInvalid) {
		t.Errorf("missing otp: got %v, want ErrOTPInvalid", err)
	}
	wrong := "999999"
	if reset.OTP == wrong {
		wrong = "000000"
	}
	if err := f.svc.ResetPassword(context.Background(), ResetPasswordRequest{Token: reset.Token, OTP: wrong, NewPassword: "attackerpass"}); !errors.Is(err, ErrOTPInvalid) {
		t.Errorf("wrong otp: got %v, want ErrOTPInvalid", err)
	}
	if _, err := f.svc.Login(context.Background(), LoginRequest{Email: "staff@example.com", Password: "supersecret"}); err != nil {
		t.Errorf("original password no longer valid: %v", err)
	}
}

func TestForgotPasswordUnknownEmailIsSilent(t *testing.T) {
	f := newFixture(t)

	if err := f.svc.ForgotPassword(context.Background(), "nobody@example.com"); err != nil {
		t.Fatalf("forgot unknown email: %v", err)
	}
	if got := len(f.mail.Tasks()); got != 0 {
		t.Errorf("queued emails = %d, want 0", got)
	}
}

func TestVerifyResetOTPRejectsWrongCode(t *testing.T) {
	f := newFixture(t)
	f.seedOwner(t, "owner@example.com", "supersecret")

	if err := f.svc.ForgotPassword(context.Background(), "owner@example.com"); err != nil {
		t.Fatalf("forgot: %v", err)
	}

	if _, err := f.svc.VerifyResetOTP(context.Background(), "owner@example.com", "000000"); !errors.Is(err, ErrOTPInvalid) {
		// A random OTP collides with 000000 once in a million runs; accept nil then.
		if err != nil {
			t.Errorf("wrong otp: got %v, want ErrOTPInvalid", err)
		}
	}
	if _, err := f.svc.VerifyResetOTP(context.Background(), "nobody@example.com", "123456"); !errors.Is(err, ErrOTPInvalid) {
		t.Errorf("unknown email: got %v, want ErrOTPInvalid", err)
	}
}

func TestExpiredSessionStaysOnRecord(t *testing.T) {
	f := newFixture(t)
	u := f.seedUser(t, "staff@example.com", "supersecret")
	f.seedMembership(t, u.ID, "practice-1", repository.RoleTherapist, repository.StatusActive)

	stale := &repository.AuthSession{
		ID:        "stale-token",
		UserID:    u.ID,
		Email:     u.Email,
		Role:      reqctx.RoleTagUser,
		ExpiresAt: time.Now().Add(-time.Hour),
	}
	if err := f.repos.AuthSessions.Create(context.Background(), stale); err != nil {
		t.Fatalf("create session: %v", err)
	}

	if _, err := f.svc.ValidateSession(context.Background(), stale.ID); !errors.Is(err, ErrUnauthorized) {
		t.Errorf("expired session: got %v, want ErrUnauthorized", err)
	}

	// Expired sessions stop authenticating but the row stays for audit.
	sessions, err := f.repos.AuthSessions.ListByUser(context.Background(), u.ID)
	if err != nil {
		t.Fatalf("list sessions: %v", err)
	}
	found := false
	for _, s := range sessions {
		if s.ID == stale.ID {
			found = true
		}
	}
	if !found {
		t.Error("expired session missing from the user's session history")
	}
}

func TestSessionListAndRevoke(t *testing.T) {
	f := newFixture(t)
	f.seedOwner(t, "owner@example.com", "supersecret")

	first, err := f.svc.Login(context.Background(), LoginRequest{Email: "owner@example.com", Password: "supersecret"})
	if err != nil {
		t.Fatalf("first login: %v", err)
	}
	second, err := f.svc.Login(context.Background(), LoginRequest{Email: "owner@example.com", Password: "supersecret"})
	if err != nil {
		t.Fatalf("second login: %v", err)
	}

	actor, err := f.svc.ValidateSession(context.Background(), second.Token)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}

	sessions, err := f.svc.Sessions(context.Background(), actor)
	if err != nil {
		t.Fatalf("sessions: %v", err)
	}
	if len(sessions) != 2 {
		t.Fatalf("session count = %d, want 2", len(sessions))
	}
	currents := 0
	for _, s := range sessions {
		if s.Current {
			currents++
		}
	}
	if currents != 1 {
		t.Errorf("current sessions = %d, want 1", currents)
	}

	if err := f.svc.RevokeSession(context.Background(), actor, first.Token); err != nil {
		t.Fatalf("revoke: %v", err)
	}
	if _, err := f.svc.ValidateSession(context.Background(), first.Token); !errors.Is(err, ErrUnauthorized) {
		t.Errorf("revoked session: got %v, want ErrUnauthorized", err)
	}

	if err := f.svc.RevokeSession(context.Background(), actor, "not-a-session"); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("unknown session: got %v, want ErrSessionNotFound", err)
	}
}
