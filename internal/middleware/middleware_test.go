package middleware_test

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"portfolio/internal/middleware"
	"portfolio/internal/models"
	"portfolio/internal/security"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func send(t *testing.T, app *fiber.App, req *http.Request) (int, string) {
	t.Helper()
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, string(body)
}

// testPeer is the remote address of app.Test connections.
const testPeer = "0.0.0.0"

func TestClientIP(t *testing.T) {
	app := fiber.New(middleware.ProxyConfig([]string{testPeer}))
	app.Get("/", func(c *fiber.Ctx) error { return c.SendString(middleware.ClientIP(c)) })

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Forwarded-For", "203.0.113.7, 10.0.0.1")
	_, body := send(t, app, req)
	assert.Equal(t, "203.0.113.7", body)

	_, body = send(t, app, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, testPeer, body)
}

func TestClientIP_UntrustedPeer(t *testing.T) {
	app := fiber.New(middleware.ProxyConfig(nil))
	app.Get("/", func(c *fiber.Ctx) error { return c.SendString(middleware.ClientIP(c)) })

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Forwarded-For", "203.0.113.7")
	_, body := send(t, app, req)
	assert.Equal(t, testPeer, body)
}

func TestClientIP_OutlivesRequest(t *testing.T) {
	app := fiber.New(middleware.ProxyConfig([]string{testPeer}))
	var seen []string
	app.Get("/", func(c *fiber.Ctx) error {
		seen = append(seen, middleware.ClientIP(c))
		return c.SendStatus(http.StatusOK)
	})

	want := []string{"10.1.0.1", "10.1.0.22", "10.1.0.3", "10.1.0.44"}
	for _, ip := range want {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("X-Forwarded-For", ip)
		send(t, app, req)
	}
	assert.Equal(t, want, seen)
}

func TestSanitizeJSON(t *testing.T) {
	app := fiber.New()
	app.Use(middleware.SanitizeJSON())
	app.Post("/", func(c *fiber.Ctx) error { return c.Send(c.Body()) })

	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":"ok","$gt":1,"nested":{"a.b":1,"keep":[{"$x":1,"y":2}]}}`))
	req.Header.Set("Content-Type", "application/json")
	status, body := send(t, app, req)
	assert.Equal(t, http.StatusOK, status)
	assert.JSONEq(t, `{"name":"ok","nested":{"keep":[{"y":2}]}}`, body)

	// Malformed bodies pass through untouched.
	req = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"broken"`))
	req.Header.Set("Content-Type", "application/json")
	_, body = send(t, app, req)
	assert.Equal(t, `{"broken"`, body)
}

func TestSanitizeJSON_TooLarge(t *testing.T) {
	app := fiber.New()
	app.Use(middleware.SanitizeJSON())
	app.Post("/", func(c *fiber.Ctx) error { return c.SendStatus(http.StatusOK) })

	big := `{"x":"` + strings.Repeat("a", middleware.MaxJSONBody) + `"}`
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(big))
	req.Header.Set("Content-Type", "application/json")
	status, _ := send(t, app, req)
	assert.Equal(t, http.StatusRequestEntityTooLarge, status)
}

func TestCSRFProtected(t *testing.T) {
	guard := security.NewCSRFGuard(time.Hour, nil)
	token, _, err := guard.Issue("198.51.100.1")
	require.NoError(t, err)

	app := fiber.New(middleware.ProxyConfig([]string{testPeer}))
	app.Use(middleware.CSRFProtected(guard))
	app.Get("/", func(c *fiber.Ctx) error { return c.SendStatus(http.StatusOK) })
	app.Post("/", func(c *fiber.Ctx) error { return c.SendStatus(http.StatusOK) })

	status, _ := send(t, app, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusOK, status)

	status, body := send(t, app, httptest.NewRequest(http.MethodPost, "/", nil))
	assert.Equal(t, http.StatusForbidden, status)
	assert.Contains(t, body, "CSRF token missing")

	req := httptest.NewRequest(http.MethodPost, "/", nil)
	req.Header.Set("X-Forwarded-For", "198.51.100.1")
	req.Header.Set(middleware.HeaderCSRFToken, token)
	status, _ = send(t, app, req)
	assert.Equal(t, http.StatusOK, status)
}

func TestAdminRequired(t *testing.T) {
	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		if email := c.Get("X-Test-Email"); email != "" {
			c.Locals("user", &models.Identity{ID: "1", Email: email})
		}
		return c.Next()
	})
	app.Use(middleware.AdminRequired([]string{"Boss@Example.com"}, nil))
	app.Get("/", func(c *fiber.Ctx) error { return c.SendStatus(http.StatusOK) })

	status, _ := send(t, app, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusUnauthorized, status)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Test-Email", "someone@example.com")
	status, _ = send(t, app, req)
	assert.Equal(t, http.StatusForbidden, status)

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Test-Email", "boss@example.com")
	status, _ = send(t, app, req)
	assert.Equal(t, http.StatusOK, status)
}

func TestLoginThrottle(t *testing.T) {
	throttle := security.NewLoginThrottle(2, time.Minute, time.Minute, nil)

	app := fiber.New()
	app.Post("/login", middleware.LoginThrottle(throttle, nil), func(c *fiber.Ctx) error {
		if c.Query("ok") == "1" {
			return c.SendStatus(http.StatusOK)
		}
		return c.SendStatus(http.StatusUnauthorized)
	})

	attempt := func(ok bool) *http.Response {
		target := "/login"
		if ok {
			target += "?ok=1"
		}
		req := httptest.NewRequest(http.MethodPost, target, nil)
		req.Header.Set("X-Forwarded-For", "192.0.2.1")
		resp, err := app.Test(req, -1)
		require.NoError(t, err)
		resp.Body.Close()
		return resp
	}

	assert.Equal(t, http.StatusUnauthorized, attempt(false).StatusCode)
	assert.Equal(t, http.StatusOK, attempt(true).StatusCode) // success clears the count
	assert.Equal(t, http.StatusUnauthorized, attempt(false).StatusCode)
	assert.Equal(t, http.StatusUnauthorized, attempt(false).StatusCode)

	locked := attempt(true)
	assert.Equal(t, http.StatusTooManyRequests, locked.StatusCode)
	assert.NotEmpty(t, locked.Header.Get("Retry-After"))
}

func TestRateLimit(t *testing.T) {
	app := fiber.New()
	app.Use(middleware.RateLimit(2, time.Minute))
	app.Get("/", func(c *fiber.Ctx) error { return c.SendStatus(http.StatusOK) })

	for i := 0; i < 2; i++ {
		status, _ := send(t, app, httptest.NewRequest(http.MethodGet, "/", nil))
		assert.Equal(t, http.StatusOK, status)
	}
	status, body := send(t, app, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusTooManyRequests, status)
	assert.Contains(t, body, "Too many requests")
}

func TestLoginThrottle_ConcurrentGuessesAreCapped(t *testing.T) {
	throttle := security.NewLoginThrottle(5, time.Minute, time.Minute, nil)

	var evaluated int32
	app := fiber.New()
	app.Post("/login", middleware.LoginThrottle(throttle, nil), func(c *fiber.Ctx) error {
		atomic.AddInt32(&evaluated, 1)
		time.Sleep(20 * time.Millisecond)
		return c.SendStatus(http.StatusUnauthorized)
	})

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			resp, err := app.Test(httptest.NewRequest(http.MethodPost, "/login", nil), -1)
			if err == nil {
				resp.Body.Close()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(5), atomic.LoadInt32(&evaluated))
}

func TestLoginThrottle_BadRequestsDoNotCount(t *testing.T) {
	throttle := security.NewLoginThrottle(1, time.Minute, time.Minute, nil)

	app := fiber.New()
	app.Post("/login", middleware.LoginThrottle(throttle, nil), func(c *fiber.Ctx) error {
		return c.SendStatus(http.StatusBadRequest)
	})

	for i := 0; i < 3; i++ {
		status, _ := send(t, app, httptest.NewRequest(http.MethodPost, "/login", nil))
		assert.Equal(t, http.StatusBadRequest, status)
	}
}
