package auth

import (
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newApp(cfg Config) *fiber.App {
	app := fiber.New()
	app.Use(New(cfg))
	app.Get("/health", func(c *fiber.Ctx) error { return c.SendString("ok") })
	app.Get("/sync/jobs", func(c *fiber.Ctx) error { return c.SendString("jobs") })
	return app
}

func TestAuth(t *testing.T) {
	tests := []struct {
		name   string
		cfg    Config
		path   string
		key    string
		status int
	}{
		{"Disabled", Config{}, "/sync/jobs", "", fiber.StatusOK},
		{"Missing Key", Config{ApiKey: "secret"}, "/sync/jobs", "", fiber.StatusUnauthorized},
		{"Wrong Key", Config{ApiKey: "secret"}, "/sync/jobs", "nope", fiber.StatusUnauthorized},
		{"Valid Key", Config{ApiKey: "secret"}, "/sync/jobs", "secret", fiber.StatusOK},
		{"Skipped Path", Config{ApiKey: "secret", Skip: []string{"/health"}}, "/health", "", fiber.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", tt.path, nil)
			if tt.key != "" {
				req.Header.Set(Header, tt.key)
			}
			resp, err := newApp(tt.cfg).Test(req)
			require.NoError(t, err)
			assert.Equal(t, tt.status, resp.StatusCode)
		})
	}
}
