package http

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tilemart/tilemart-api/pkg/jwt"
)

const testSecret = "test-secret"

func buildTestApp() *fiber.App {
	app := fiber.New()
	app.Get("/protected", AuthMiddleware(testSecret), func(c *fiber.Ctx) error {
		return ok(c, fiber.StatusOK, fiber.Map{
			"userId": GetUserID(c),
			"role":   GetRole(c),
		})
	})
	app.Get("/admin", AuthMiddleware(testSecret), RequireRole("admin"), func(c *fiber.Ctx) error {
		return ok(c, fiber.StatusOK, fiber.Map{"message": "welcome"})
	})
	return app
}

func tokenForRole(t *testing.T, userID, role string) string {
	t.Helper()
	token, err := jwt.Generate(testSecret, userID, role, "tilemart-test", 5)
	require.NoError(t, err)
	return token
}

func doRequest(t *testing.T, app *fiber.App, path, authHeader string) (int, string) {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, string(body)
}

func TestAuthMiddlewareMissingHeader(t *testing.T) {
	app := buildTestApp()
	status, body := doRequest(t, app, "/protected", "")
	assert.Equal(t, fiber.StatusUnauthorized, status)
	assert.Contains(t, body, "MISSING_TOKEN")
}

func TestAuthMiddlewareBadFormat(t *testing.T) {
	app := buildTestApp()
	status, body := doRequest(t, app, "/protected", "Basic abc123")
	assert.Equal(t, fiber.StatusUnauthorized, status)
	assert.Contains(t, body, "INVALID_TOKEN")
}

func TestAuthMiddlewareGarbageToken(t *testing.T) {
	app := buildTestApp()
	status, body := doRequest(t, app, "/protected", "Bearer not.a.token")
	assert.Equal(t, fiber.StatusUnauthorized, status)
	assert.Contains(t, body, "INVALID_TOKEN")
}

func TestAuthMiddlewareWrongSecret(t *testing.T) {
	app := buildTestApp()
	token, err := jwt.Generate("another-secret", "u1", "admin", "tilemart-test", 5)
	require.NoError(t, err)
	status, body := doRequest(t, app, "/protected", "Bearer "+token)
	assert.Equal(t, fiber.StatusUnauthorized, status)
	assert.Contains(t, body, "INVALID_TOKEN")
}

func TestAuthMiddlewareSetsLocals(t *testing.T) {
	app := buildTestApp()
	token := tokenForRole(t, "user-42", "staff")
	status, body := doRequest(t, app, "/protected", "Bearer "+token)
	assert.Equal(t, fiber.StatusOK, status)
	assert.Contains(t, body, "user-42")
	assert.Contains(t, body, "staff")
}

func TestRequireRoleAllows(t *testing.T) {
	app := buildTestApp()
	token := tokenForRole(t, "u1", "admin")
	status, body := doRequest(t, app, "/admin", "Bearer "+token)
	assert.Equal(t, fiber.StatusOK, status)
	assert.Contains(t, body, "welcome")
}

func TestRequireRoleForbids(t *testing.T) {
	app := buildTestApp()
	for _, role := range []string{"staff", "stock-viewer"} {
		token := tokenForRole(t, "u1", role)
		status, body := doRequest(t, app, "/admin", "Bearer "+token)
		assert.Equal(t, fiber.StatusForbidden, status, role)
		assert.Contains(t, body, "FORBIDDEN")
	}
}

func TestRequireRoleWithoutRole(t *testing.T) {
	app := buildTestApp()
	token := tokenForRole(t, "u1", "")
	status, body := doRequest(t, app, "/admin", "Bearer "+token)
	assert.Equal(t, fiber.StatusUnauthorized, status)
	assert.Contains(t, body, "MISSING_ROLE")
}
