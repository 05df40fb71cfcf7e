package idempotency_test

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/inventario-ledger-api/pkg/idempotency"
	"github.com/jhoicas/inventario-ledger-api/pkg/logger"
)

// memBackend replica la semántica de Store sin Redis.
type memBackend struct {
	mu      sync.Mutex
	pending map[string]string
	done    map[string]idempotency.Response
}

func newMemBackend() *memBackend {
	return &memBackend{pending: map[string]string{}, done: map[string]idempotency.Response{}}
}

func (b *memBackend) Acquire(_ context.Context, key, fingerprint string) (*idempotency.Response, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if resp, ok := b.done[key]; ok {
		if resp.Fingerprint != fingerprint {
			return nil, idempotency.ErrFingerprintMismatch
		}
		return &resp, nil
	}
	if fp, ok := b.pending[key]; ok {
		if fp != fingerprint {
			return nil, idempotency.ErrFingerprintMismatch
		}
		return nil, idempotency.ErrInProgress
	}
	b.pending[key] = fingerprint
	return nil, nil
}

func (b *memBackend) Complete(_ context.Context, key string, resp idempotency.Response) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.pending, key)
	b.done[key] = resp
	return nil
}

func (b *memBackend) Release(_ context.Context, key string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.pending, key)
	return nil
}

func newApp(backend idempotency.Backend, status *int, calls *int) *fiber.App {
	app := fiber.New()
	keyFn := func(c *fiber.Ctx, clientKey string) string { return c.Path() + ":" + clientKey }
	app.Post("/movements", idempotency.Middleware(backend, keyFn, logger.Nop()), func(c *fiber.Ctx) error {
		*calls++
		return c.Status(*status).JSON(fiber.Map{"call": *calls})
	})
	return app
}

func post(t *testing.T, app *fiber.App, key, body string) (*http.Response, string) {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/movements", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if key != "" {
		req.Header.Set(idempotency.HeaderKey, key)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	raw, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	return resp, string(raw)
}

func TestMiddleware_ReintentoRepiteRespuesta(t *testing.T) {
	status, calls := http.StatusCreated, 0
	app := newApp(newMemBackend(), &status, &calls)

	first, body1 := post(t, app, "k1", `{"q":1}`)
	second, body2 := post(t, app, "k1", `{"q":1}`)

	assert.Equal(t, http.StatusCreated, first.StatusCode)
	assert.Equal(t, http.StatusCreated, second.StatusCode)
	assert.Equal(t, body1, body2)
	assert.Equal(t, "true", second.Header.Get(idempotency.HeaderReplayed))
	assert.Equal(t, 1, calls)
}

func TestMiddleware_MismaClaveOtroCuerpo(t *testing.T) {
	status, calls := http.StatusCreated, 0
	app := newApp(newMemBackend(), &status, &calls)

	post(t, app, "k1", `{"q":1}`)
	resp, _ := post(t, app, "k1", `{"q":2}`)

	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	assert.Equal(t, 1, calls)
}

func TestMiddleware_SinClavePasaSiempre(t *testing.T) {
	status, calls := http.StatusCreated, 0
	app := newApp(newMemBackend(), &status, &calls)

	post(t, app, "", `{}`)
	post(t, app, "", `{}`)

	assert.Equal(t, 2, calls)
}

func TestMiddleware_Error5xxLiberaLaClave(t *testing.T) {
	status, calls := http.StatusServiceUnavailable, 0
	app := newApp(newMemBackend(), &status, &calls)

	post(t, app, "k1", `{}`)
	status = http.StatusCreated
	resp, _ := post(t, app, "k1", `{}`)

	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, 2, calls)
}

func TestMiddleware_ClaveEnCurso(t *testing.T) {
	backend := newMemBackend()
	sum := sha256.Sum256([]byte(`{}`))
	_, err := backend.Acquire(context.Background(), "/movements:k1", hex.EncodeToString(sum[:]))
	require.NoError(t, err)
	status, calls := http.StatusCreated, 0
	app := newApp(backend, &status, &calls)

	resp, _ := post(t, app, "k1", `{}`)

	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Zero(t, calls)
}

func TestKeyByUser_SeparaPorUsuarioYRuta(t *testing.T) {
	app := fiber.New()
	keyFn := idempotency.KeyByUser(func(c *fiber.Ctx) string { return c.Get("X-User") })
	app.Post("/a", func(c *fiber.Ctx) error { return c.SendString(keyFn(c, "k1")) })

	req := httptest.NewRequest(http.MethodPost, "/a", nil)
	req.Header.Set("X-User", "u1")
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	raw, _ := io.ReadAll(resp.Body)

	assert.Equal(t, "idem:u1:POST:/a:k1", string(raw))
}
