// Package handlers contains HTTP request handlers and presentation layer logic for the API endpoints
package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v3"
	"github.com/storelinehq/storeline-admin/app/dto"
	"github.com/storelinehq/storeline-admin/app/middleware"
	businessflow "github.com/storelinehq/storeline-admin/business_flow"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubAuthFlow records logout calls and never fails. The embedded
// interface panics on anything else, which keeps the stub honest.
type stubAuthFlow struct {
	businessflow.AdminAuthFlow
	logoutCalls []string
}

func (f *stubAuthFlow) Logout(ctx context.Context, sessionToken string, metadata *businessflow.ClientMetadata) error {
	f.logoutCalls = append(f.logoutCalls, sessionToken)
	return nil
}

func sessionCookieHeader(t *testing.T, resp *http.Response) string {
	t.Helper()
	for _, header := range resp.Header.Values("Set-Cookie") {
		if strings.HasPrefix(header, middleware.AdminTokenCookieName+"=") {
			return header
		}
	}
	t.Fatalf("no %s cookie in response", middleware.AdminTokenCookieName)
	return ""
}

func TestSetSessionCookieAttributes(t *testing.T) {
	h := &AdminAuthHandler{cookieSecure: true}

	app := fiber.New()
	app.Get("/", func(c fiber.Ctx) error {
		h.setSessionCookie(c, "session-token-value")
		return c.SendStatus(fiber.StatusOK)
	})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)
	defer resp.Body.Close()

	cookie := sessionCookieHeader(t, resp)
	assert.Contains(t, cookie, middleware.AdminTokenCookieName+"=session-token-value")
	assert.Contains(t, cookie, "HttpOnly")
	assert.Contains(t, cookie, "Secure")
	assert.Contains(t, cookie, "SameSite=Lax")
	assert.Contains(t, cookie, "Path=/")
	assert.NotContains(t, cookie, "SameSite=Strict")
}

func TestClearSessionCookieExpiresIt(t *testing.T) {
	h := &AdminAuthHandler{cookieSecure: false}

	app := fiber.New()
	app.Get("/", func(c fiber.Ctx) error {
		h.clearSessionCookie(c)
		return c.SendStatus(fiber.StatusOK)
	})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)
	defer resp.Body.Close()

	cookie := sessionCookieHeader(t, resp)
	assert.Contains(t, cookie, middleware.AdminTokenCookieName+"=")
	assert.Contains(t, cookie, "SameSite=Lax")
	// A negative max-age tells the browser to drop the cookie now
	assert.Contains(t, strings.ToLower(cookie), "max-age=")
}

func TestLogout_AlwaysAnswers200(t *testing.T) {
	flow := &stubAuthFlow{}
	h := &AdminAuthHandler{authFlow: flow}

	app := fiber.New()
	app.Post("/logout", h.Logout)

	// With a token the flow is asked to invalidate it
	req := httptest.NewRequest(http.MethodPost, "/logout", nil)
	req.AddCookie(&http.Cookie{Name: middleware.AdminTokenCookieName, Value: "some-token"})
	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, []string{"some-token"}, flow.logoutCalls)

	// Without any token the handler still clears the cookie and answers 200
	resp, err = app.Test(httptest.NewRequest(http.MethodPost, "/logout", nil))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Len(t, flow.logoutCalls, 1)

	var body dto.APIResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.True(t, body.Success)

	cookie := sessionCookieHeader(t, resp)
	assert.Contains(t, cookie, "SameSite=Lax")
}
