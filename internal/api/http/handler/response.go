package handler

import "github.com/gofiber/fiber/v3"

// Envelope is the body shape of every JSON response. Success and Message
// are always present; Data carries payloads, Error carries the field-level
// detail of validation failures.
type Envelope struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
}

func send(c fiber.Ctx, status int, env Envelope) error {
	return c.Status(status).JSON(env)
}

func ok(c fiber.Ctx, data any) error {
	return send(c, fiber.StatusOK, Envelope{Success: true, Message: "Success", Data: data})
}

// okMessage is for endpoints whose outcome is the message itself.
func okMessage(c fiber.Ctx, message string) error {
	return send(c, fiber.StatusOK, Envelope{Success: true, Message: message})
}

func created(c fiber.Ctx, data any) error {
	return send(c, fiber.StatusCreated, Envelope{Success: true, Message: "Created", Data: data})
}

func noContent(c fiber.Ctx) error {
	return c.SendStatus(fiber.StatusNoContent)
}

func badRequest(c fiber.Ctx, msg string) error {
	return send(c, fiber.StatusBadRequest, Envelope{Success: false, Message: "Bad request", Error: msg})
}

func unauthorized(c fiber.Ctx) error {
	return send(c, fiber.StatusUnauthorized, Envelope{Success: false, Message: "Unauthorized"})
}

func forbidden(c fiber.Ctx) error {
	return send(c, fiber.StatusForbidden, Envelope{Success: false, Message: "Forbidden"})
}

func notFound(c fiber.Ctx, msg string) error {
	return send(c, fiber.StatusNotFound, Envelope{Success: false, Message: msg})
}

func conflict(c fiber.Ctx, msg string) error {
	return send(c, fiber.StatusConflict, Envelope{Success: false, Message: msg})
}

func internalError(c fiber.Ctx) error {
	return send(c, fiber.StatusInternalServerError, Envelope{Success: false, Message: "Internal server error"})
}
