package http

import (
	"encoding/json"
	"errors"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v3"
)

// Errors escaping middleware, like fiber.ErrUnauthorized from the auth
// gate, must come back as the JSON envelope, not fiber's plain-text default.
func TestErrorHandlerRendersEnvelope(t *testing.T) {
	app := fiber.New(fiber.Config{ErrorHandler: errorHandler})
	app.Get("/guarded", func(c fiber.Ctx) error {
		return fiber.ErrUnauthorized
	})
	app.Get("/boom", func(c fiber.Ctx) error {
		return errors.New("store unreachable")
	})

	cases := []struct {
		path    string
		status  int
		message string
	}{
		{"/guarded", fiber.StatusUnauthorized, "Unauthorized"},
		{"/boom", fiber.StatusInternalServerError, "Internal server error"},
	}
	for _, tc := range cases {
		t.Run(tc.path, func(t *testing.T) {
			resp, err := app.Test(httptest.NewRequest("GET", tc.path, nil))
			if err != nil {
				t.Fatalf("request: %v", err)
			}
			defer resp.Body.Close()

			if resp.StatusCode != tc.status {
				t.Errorf("status = %d, want %d", resp.StatusCode, tc.status)
			}
			raw, err := io.ReadAll(resp.Body)
			if err != nil {
				t.Fatalf("read body: %v", err)
			}
			var body map[string]any
			if err := json.Unmarshal(raw, &body); err != nil {
				t.Fatalf("unmarshal %q: %v", raw, err)
			}
			if success, present := body["success"].(bool); !present || success {
				t.Errorf("success = %v, want false", body["success"])
			}
			if message, _ := body["message"].(string); message != tc.message {
				t.Errorf("message = %q, want %q", message, tc.message)
			}
			if _, hasData := body["data"]; hasData {
				t.Error("error response carries a data payload")
			}
		})
	}
}
