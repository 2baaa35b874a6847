package services

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/studypool/studypool_api/dto"
	"github.com/studypool/studypool_api/ratelimit"
	"github.com/studypool/studypool_api/shared"
)

func newTestRateLimitService() *RateLimitService {
	store := ratelimit.NewStore(ratelimit.DefaultMaxEntries, ratelimit.DefaultTTL)
	return &RateLimitService{
		store:     store,
		limiter:   ratelimit.NewLimiter(store),
		cacheSize: ratelimit.DefaultMaxEntries,
		cacheTTL:  ratelimit.DefaultTTL,
	}
}

func newLimitedApp(svc *RateLimitService, cfg ratelimit.Config) *fiber.App {
	app := fiber.New()
	app.Get("/limited", svc.Limit(cfg), func(c *fiber.Ctx) error {
		return c.SendString("ok")
	})
	return app
}

func newRequest(forwardedFor string) *http.Request {
	req := httptest.NewRequest(fiber.MethodGet, "/limited", nil)
	if forwardedFor != "" {
		req.Header.Set("X-Forwarded-For", forwardedFor)
	}
	return req
}

func TestRateLimit_HeadersOnAllowedRequest(t *testing.T) {
	svc := newTestRateLimitService()
	cfg := ratelimit.Config{Name: "test", Window: time.Minute, MaxRequests: 3}
	app := newLimitedApp(svc, cfg)

	resp, err := app.Test(newRequest("1.2.3.4"))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "3", resp.Header.Get("X-RateLimit-Limit"))
	assert.Equal(t, "3", resp.Header.Get("X-RateLimit-Remaining"))

	resetMs, err := strconv.ParseInt(resp.Header.Get("X-RateLimit-Reset"), 10, 64)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(cfg.Window), time.UnixMilli(resetMs), 5*time.Second)
}

func TestRateLimit_RemainingDecrements(t *testing.T) {
	svc := newTestRateLimitService()
	cfg := ratelimit.Config{Name: "test", Window: time.Minute, MaxRequests: 3}
	app := newLimitedApp(svc, cfg)

	want := []string{"3", "2", "1"}
	for i, expected := range want {
		resp, err := app.Test(newRequest("1.2.3.4"))
		require.NoError(t, err)
		require.Equal(t, fiber.StatusOK, resp.StatusCode, "request %d", i+1)
		assert.Equal(t, expected, resp.Header.Get("X-RateLimit-Remaining"))
	}
}

func TestRateLimit_ExceededReturns429(t *testing.T) {
	svc := newTestRateLimitService()
	cfg := ratelimit.Config{Name: "upload", Window: time.Minute, MaxRequests: 2}
	app := newLimitedApp(svc, cfg)

	for i := 0; i < 2; i++ {
		resp, err := app.Test(newRequest("1.2.3.4"))
		require.NoError(t, err)
		require.Equal(t, fiber.StatusOK, resp.StatusCode)
	}

	resp, err := app.Test(newRequest("1.2.3.4"))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusTooManyRequests, resp.StatusCode)

	// The rate limit headers are present on rejected responses too.
	assert.Equal(t, "2", resp.Header.Get("X-RateLimit-Limit"))
	assert.Equal(t, "0", resp.Header.Get("X-RateLimit-Remaining"))

	retryAfter, err := strconv.Atoi(resp.Header.Get("Retry-After"))
	require.NoError(t, err)
	assert.Greater(t, retryAfter, 0)
	assert.LessOrEqual(t, retryAfter, 60)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var raw map[string]any
	require.NoError(t, json.Unmarshal(body, &raw))
	assert.Contains(t, raw, "error")
	assert.Contains(t, raw, "message")
	assert.Contains(t, raw, "retryAfter")

	var rejection dto.RateLimitExceededResponse
	require.NoError(t, json.Unmarshal(body, &rejection))
	assert.Equal(t, "Rate limit exceeded", rejection.Error)
	assert.Equal(t, "Too many upload requests. Please try again later.", rejection.Message)
	assert.Equal(t, retryAfter, rejection.RetryAfter)
}

func TestRateLimit_DistinctClientsIsolated(t *testing.T) {
	svc := newTestRateLimitService()
	cfg := ratelimit.Config{Name: "test", Window: time.Minute, MaxRequests: 1}
	app := newLimitedApp(svc, cfg)

	resp, err := app.Test(newRequest("1.1.1.1"))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp, err = app.Test(newRequest("1.1.1.1"))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusTooManyRequests, resp.StatusCode)

	resp, err = app.Test(newRequest("2.2.2.2"))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode, "a different client keeps its own quota")
}

func TestRateLimit_IdentifierDerivation(t *testing.T) {
	cases := []struct {
		name     string
		headers  map[string]string
		expected string
	}{
		{
			name:     "forwarded for wins over real ip",
			headers:  map[string]string{"X-Forwarded-For": "10.0.0.1, 10.0.0.2", "X-Real-IP": "172.16.0.1"},
			expected: "10.0.0.1",
		},
		{
			name:     "real ip when no forwarded for",
			headers:  map[string]string{"X-Real-IP": "172.16.0.1"},
			expected: "172.16.0.1",
		},
		{
			name:     "cloudflare header",
			headers:  map[string]string{"CF-Connecting-IP": "198.51.100.7"},
			expected: "198.51.100.7",
		},
		{
			name:     "user agent truncated",
			headers:  map[string]string{"User-Agent": strings.Repeat("a", 80)},
			expected: strings.Repeat("a", 50),
		},
		{
			name:     "anonymous fallback",
			headers:  map[string]string{},
			expected: "anonymous",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			app := fiber.New()
			var got string
			app.Get("/id", func(c *fiber.Ctx) error {
				got = clientIdentifier(c)
				return c.SendString("ok")
			})

			req := httptest.NewRequest(fiber.MethodGet, "/id", nil)
			for k, v := range tc.headers {
				req.Header.Set(k, v)
			}

			_, err := app.Test(req)
			require.NoError(t, err)
			assert.Equal(t, tc.expected, got)
		})
	}
}

func TestRateLimit_LimitByUserPrefersUserID(t *testing.T) {
	svc := newTestRateLimitService()
	cfg := ratelimit.Config{Name: "delete", Window: time.Minute, MaxRequests: 1}

	app := fiber.New()
	app.Get("/limited",
		func(c *fiber.Ctx) error {
			c.Locals(shared.UserID, "user-1")
			return c.Next()
		},
		svc.LimitByUser(cfg),
		func(c *fiber.Ctx) error { return c.SendString("ok") },
	)

	resp, err := app.Test(newRequest("1.1.1.1"))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	// The same user from another address shares the same quota.
	resp, err = app.Test(newRequest("2.2.2.2"))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusTooManyRequests, resp.StatusCode)
}

func TestRateLimit_LimitByUserFallsBackToClient(t *testing.T) {
	svc := newTestRateLimitService()
	cfg := ratelimit.Config{Name: "general", Window: time.Minute, MaxRequests: 1}

	app := fiber.New()
	app.Get("/limited", svc.LimitByUser(cfg), func(c *fiber.Ctx) error {
		return c.SendString("ok")
	})

	resp, err := app.Test(newRequest("3.3.3.3"))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp, err = app.Test(newRequest("4.4.4.4"))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode, "unauthenticated requests fall back to the client identifier")
}
