package middleware

import (
	"io"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/SatishkumarPallapu/ai-rythu-mitra/internal/logging"
)

func setupIdempotencyApp(t *testing.T) (*fiber.App, *atomic.Int32, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)

	cache := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { cache.Close() })

	var calls atomic.Int32
	app := fiber.New()
	app.Use(Idempotency(cache, time.Minute, logging.Discard()))
	app.Post("/resource", func(c *fiber.Ctx) error {
		n := calls.Add(1)
		return c.Status(fiber.StatusCreated).JSON(fiber.Map{"call": n})
	})
	app.Post("/broken", func(c *fiber.Ctx) error {
		calls.Add(1)
		return fiber.NewError(fiber.StatusInternalServerError, "boom")
	})

	return app, &calls, mr
}

func postResource(t *testing.T, app *fiber.App, path, key string) (int, string) {
	t.Helper()
	return postAs(t, app, path, key, "", "{}")
}

func postAs(t *testing.T, app *fiber.App, path, key, authorization, body string) (int, string) {
	t.Helper()
	req := httptest.NewRequest(fiber.MethodPost, path, strings.NewReader(body))
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	if key != "" {
		req.Header.Set(idempotencyKeyHeader, key)
	}
	if authorization != "" {
		req.Header.Set(fiber.HeaderAuthorization, authorization)
	}
	resp, err := app.Test(req)
	require.NoError(t, err)
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, string(raw)
}

func TestIdempotencyPassesThroughWithoutHeader(t *testing.T) {
	app, calls, _ := setupIdempotencyApp(t)

	status, _ := postResource(t, app, "/resource", "")
	require.Equal(t, fiber.StatusCreated, status)
	status, _ = postResource(t, app, "/resource", "")
	require.Equal(t, fiber.StatusCreated, status)
	require.EqualValues(t, 2, calls.Load())
}

func TestIdempotencyReturnsCachedResponse(t *testing.T) {
	app, calls, _ := setupIdempotencyApp(t)

	status, first := postResource(t, app, "/resource", "abc123")
	require.Equal(t, fiber.StatusCreated, status)

	status, second := postResource(t, app, "/resource", "abc123")
	require.Equal(t, fiber.StatusCreated, status)
	require.JSONEq(t, first, second)
	require.EqualValues(t, 1, calls.Load())
}

func TestIdempotencyRejectsInFlightDuplicate(t *testing.T) {
	app, calls, mr := setupIdempotencyApp(t)

	require.NoError(t, mr.Set(idempotencyCacheKey(fiber.MethodPost, "/resource", "", "busy"), inProgressMarker))

	status, _ := postResource(t, app, "/resource", "busy")
	require.Equal(t, fiber.StatusConflict, status)
	require.EqualValues(t, 0, calls.Load())
}

func TestIdempotencyDoesNotCacheServerErrors(t *testing.T) {
	app, calls, _ := setupIdempotencyApp(t)

	status, _ := postResource(t, app, "/broken", "retry-me")
	require.Equal(t, fiber.StatusInternalServerError, status)
	status, _ = postResource(t, app, "/broken", "retry-me")
	require.Equal(t, fiber.StatusInternalServerError, status)
	require.EqualValues(t, 2, calls.Load())
}

func TestIdempotencyKeysAreScopedToCaller(t *testing.T) {
	app, calls, _ := setupIdempotencyApp(t)

	status, first := postAs(t, app, "/resource", "shared", "Bearer alice", "{}")
	require.Equal(t, fiber.StatusCreated, status)

	status, second := postAs(t, app, "/resource", "shared", "Bearer bob", "{}")
	require.Equal(t, fiber.StatusCreated, status)
	require.NotEqual(t, first, second)

	status, _ = postAs(t, app, "/resource", "shared", "", "{}")
	require.Equal(t, fiber.StatusCreated, status)
	require.EqualValues(t, 3, calls.Load())

	status, replay := postAs(t, app, "/resource", "shared", "Bearer alice", "{}")
	require.Equal(t, fiber.StatusCreated, status)
	require.JSONEq(t, first, replay)
	require.EqualValues(t, 3, calls.Load())
}

func TestIdempotencyRejectsKeyReuseWithDifferentBody(t *testing.T) {
	app, calls, _ := setupIdempotencyApp(t)

	status, _ := postAs(t, app, "/resource", "k1", "Bearer alice", `{"password":"right"}`)
	require.Equal(t, fiber.StatusCreated, status)

	status, _ = postAs(t, app, "/resource", "k1", "Bearer alice", `{"password":"wrong"}`)
	require.Equal(t, fiber.StatusUnprocessableEntity, status)
	require.EqualValues(t, 1, calls.Load())
}
