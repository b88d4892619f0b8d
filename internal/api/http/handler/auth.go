package handler

import (
	"errors"

	"github.com/gofiber/fiber/v3"

	"github.com/journihealth/journi_backend/config"
	"github.com/journihealth/journi_backend/internal/service/auth"
	"github.com/journihealth/journi_backend/pkg/reqctx"
)

type AuthHandler struct {
	svc auth.Service
	cfg *config.Config
}

func NewAuthHandler(svc auth.Service, cfg *config.Config) *AuthHandler {
	return &AuthHandler{svc: svc, cfg: cfg}
}

// POST /api/v1/auth/login
func (h *AuthHandler) Login(c fiber.Ctx) error {
	var body struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.Bind().JSON(&body); err != nil {
		return badRequest(c, "invalid request body")
	}

	res, err := h.svc.Login(c.Context(), auth.LoginRequest{
		Email:    body.Email,
		Password: body.Password,
	})
	if err != nil {
		return mapAuthError(c, err)
	}

	setAuthCookie(c, h.cfg, res.Token, res.ExpiresAt)

	return ok(c, fiber.Map{
		"id":         res.PrincipalID,
		"email":      res.Email,
		"first_name": res.FirstName,
		"last_name":  res.LastName,
		"role":       res.RoleTag,
		"expires_at": res.ExpiresAt,
	})
}

// POST /api/v1/auth/logout
func (h *AuthHandler) Logout(c fiber.Ctx) error {
	actor, found := reqctx.ActorFromFiber(c)
	if !found {
		return unauthorized(c)
	}

	if err := h.svc.Logout(c.Context(), actor.SessionID); err != nil {
		return internalError(c)
	}

	clearAuthCookie(c, h.cfg)
	return okMessage(c, "signed out")
}

// GET /api/v1/auth/me
func (h *AuthHandler) Me(c fiber.Ctx) error {
	actor, found := reqctx.ActorFromFiber(c)
	if !found {
		return unauthorized(c)
	}

	return ok(c, fiber.Map{
		"id":    actor.PrincipalID,
		"email": actor.Email,
		"role":  actor.RoleTag,
	})
}

// POST /api/v1/auth/change-password
func (h *AuthHandler) ChangePassword(c fiber.Ctx) error {
	actor, found := reqctx.ActorFromFiber(c)
	if !found {
		return unauthorized(c)
	}

	var body struct {
		CurrentPassword string `json:"current_password"`
		NewPassword     string `json:"new_password"`
	}
	if err := c.Bind().JSON(&body); err != nil {
		return badRequest(c, "invalid request body")
	}

	res, err := h.svc.ChangePassword(c.Context(), actor, auth.ChangePasswordRequest{
		CurrentPassword: body.CurrentPassword,
		NewPassword:     body.NewPassword,
	})
	if err != nil {
		return mapAuthError(c, err)
	}

	// The old token died with the other sessions; re-issue the cookie.
	setAuthCookie(c, h.cfg, res.Token, res.ExpiresAt)
	return okMessage(c, "password changed")
}

// POST /api/v1/auth/forgot-password
func (h *AuthHandler) ForgotPassword(c fiber.Ctx) error {
	var body struct {
		Email string `json:"email"`
	}
	if err := c.Bind().JSON(&body); err != nil {
		return badRequest(c, "invalid request body")
	}

	if err := h.svc.ForgotPassword(c.Context(), body.Email); err != nil {
		return internalError(c)
	}

	// Identical response for known and unknown emails.
	return okMessage(c, "if the email exists, a reset link has been sent")
}

// POST /api/v1/auth/verify-otp
func (h *AuthHandler) VerifyOTP(c fiber.Ctx) error {
	var body struct {
		Email string `json:"email"`
		Code  string `json:"code"`
	}
	if err := c.Bind().JSON(&body); err != nil {
		return badRequest(c, "invalid request body")
	}

	token, err := h.svc.VerifyResetOTP(c.Context(), body.Email, body.Code)
	if err != nil {
		return mapAuthError(c, err)
	}

	return ok(c, fiber.Map{"reset_token": token})
}

// POST /api/v1/auth/reset-password
func (h *AuthHandler) ResetPassword(c fiber.Ctx) error {
	var body struct {
		Token       string `json:"token"`
		OTP         string `json:"otp"`
		NewPassword string `json:"new_password"`
	}
	if err := c.Bind().JSON(&body); err != nil {
		return badRequest(c, "invalid request body")
	}

	if err := h.svc.ResetPassword(c.Context(), auth.ResetPasswordRequest{
		Token:       body.Token,
		OTP:         body.OTP,
		NewPassword: body.NewPassword,
	}); err != nil {
		return mapAuthError(c, err)
	}

	return okMessage(c, "password has been reset")
}

// GET /api/v1/auth/sessions
func (h *AuthHandler) Sessions(c fiber.Ctx) error {
	actor, found := reqctx.ActorFromFiber(c)
	if !found {
		return unauthorized(c)
	}

	sessions, err := h.svc.Sessions(c.Context(), actor)
	if err != nil {
		return internalError(c)
	}
	return ok(c, sessions)
}

// DELETE /api/v1/auth/sessions/:id
func (h *AuthHandler) RevokeSession(c fiber.Ctx) error {
	actor, found := reqctx.ActorFromFiber(c)
	if !found {
		return unauthorized(c)
	}

	if err := h.svc.RevokeSession(c.Context(), actor, c.Params("id")); err != nil {
		return mapAuthError(c, err)
	}
	return noContent(c)
}

func mapAuthError(c fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, auth.ErrInvalidCredentials):
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, auth.ErrAccountInactive):
		return forbidden(c)
	case errors.Is(err, auth.ErrUnauthorized):
		return unauthorized(c)
	case errors.Is(err, auth.ErrWrongPassword),
		errors.Is(err, auth.ErrPasswordTooShort),
		errors.Is(err, auth.ErrOTPInvalid),
		errors.Is(err, auth.ErrOTPExpired),
		errors.Is(err, auth.ErrResetTokenInvalid),
		errors.Is(err, auth.ErrResetTokenExpired):
		return badRequest(c, err.Error())
	case errors.Is(err, auth.ErrSessionNotFound):
		return notFound(c, err.Error())
	default:
		return internalError(c)
	}
}
