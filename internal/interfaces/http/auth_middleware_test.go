package http_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/inventario-ledger-api/internal/application/dto"
	apphttp "github.com/jhoicas/inventario-ledger-api/internal/interfaces/http"
	pkgjwt "github.com/jhoicas/inventario-ledger-api/pkg/jwt"
)

const (
	testJWTSecret = "test-secret-key-for-unit-tests"
	testUserID    = "00000000-0000-0000-0000-000000000001"
	testEmail     = "bodega@inventario.local"
	testIssuer    = "inventario-ledger-test"
	testExpMin    = 60
)

// ── RequireRole sobre las rutas de inventario ────────────────────────────────

func TestRequireRole_EscriturasDeInventarioPorRol(t *testing.T) {
	api := newTestAPI(t)
	p := api.createProduct("ROL-1", 20, 1)
	seller := api.userWithRole("ventas@inventario.local", "seller")
	keeper := api.userWithRole("bodega@inventario.local", "warehouse_keeper")

	movement := dto.RegisterMovementRequest{ProductID: p.ID, MovementType: "exit", Reason: "sale", Quantity: 1}
	adjust := dto.AdjustStockRequest{ProductID: p.ID, NewStock: 7}
	batch := dto.BatchEntryRequest{Items: []dto.BatchEntryItem{{ProductID: p.ID, Quantity: 2}}}

	cases := []struct {
		name   string
		method string
		path   string
		auth   string
		body   any
		want   int
	}{
		{"vendedor registra movimiento", http.MethodPost, "/api/inventory/movements", seller, movement, http.StatusForbidden},
		{"vendedor ajusta", http.MethodPost, "/api/inventory/adjust", seller, adjust, http.StatusForbidden},
		{"vendedor entrada masiva", http.MethodPost, "/api/inventory/batch-entry", seller, batch, http.StatusForbidden},
		{"vendedor corrige stock", http.MethodPatch, "/api/products/" + p.ID + "/stock", seller, dto.UpdateStockRequest{Quantity: 1}, http.StatusForbidden},
		{"vendedor consulta estadísticas", http.MethodGet, "/api/inventory/stats", seller, nil, http.StatusOK},
		{"bodeguero registra movimiento", http.MethodPost, "/api/inventory/movements", keeper, movement, http.StatusCreated},
		{"bodeguero ajusta", http.MethodPost, "/api/inventory/adjust", keeper, adjust, http.StatusCreated},
		{"bodeguero entrada masiva", http.MethodPost, "/api/inventory/batch-entry", keeper, batch, http.StatusCreated},
		{"bodeguero elimina producto", http.MethodDelete, "/api/products/" + p.ID, keeper, nil, http.StatusForbidden},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			resp, raw := api.do(tc.method, tc.path, tc.auth, tc.body)
			require.Equal(t, tc.want, resp.StatusCode, string(raw))
			if tc.want == http.StatusForbidden {
				assert.Equal(t, "FORBIDDEN", decodeError(t, raw).Code)
			}
		})
	}

	// Los rechazos no dejan rastro: solo las tres escrituras del bodeguero llegaron al kardex.
	resp, raw := api.do(http.MethodGet, "/api/inventory/products/"+p.ID+"/movements", api.admin, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var history []dto.MovementResponse
	require.NoError(t, json.Unmarshal(raw, &history))
	assert.Len(t, history, 4, "stock inicial más salida, ajuste y entrada")
}

func TestRequireRole_MovimientoGuardaUsuarioDelToken(t *testing.T) {
	api := newTestAPI(t)
	p := api.createProduct("ROL-2", 5, 1)
	keeper := api.userWithRole("kardex@inventario.local", "warehouse_keeper")

	resp, raw := api.do(http.MethodGet, "/api/auth/me", keeper, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var me dto.UserResponse
	require.NoError(t, json.Unmarshal(raw, &me))

	resp, raw = api.do(http.MethodPost, "/api/inventory/movements", keeper, dto.RegisterMovementRequest{
		ProductID: p.ID, MovementType: "entry", Reason: "purchase", Quantity: 3,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(raw))
	var mov dto.MovementResponse
	require.NoError(t, json.Unmarshal(raw, &mov))
	require.NotNil(t, mov.UserID)
	assert.Equal(t, me.ID, *mov.UserID)
}

func TestRequireRole_TokenSinRol_Retorna401(t *testing.T) {
	api := newTestAPI(t)
	tok, err := pkgjwt.Generate(testJWTSecret, testUserID, testEmail, "", testIssuer, testExpMin)
	require.NoError(t, err)

	resp, raw := api.do(http.MethodPost, "/api/inventory/adjust", "Bearer "+tok, dto.AdjustStockRequest{ProductID: "x", NewStock: 1})

	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "MISSING_ROLE", decodeError(t, raw).Code)
}

// ── AuthMiddleware ───────────────────────────────────────────────────────────

func TestAuthMiddleware_TokensRechazados(t *testing.T) {
	api := newTestAPI(t)

	wrongSecret, err := pkgjwt.Generate("otro-secret-completamente-distinto", testUserID, testEmail, "admin", testIssuer, testExpMin)
	require.NoError(t, err)
	expired, err := pkgjwt.Generate(testJWTSecret, testUserID, testEmail, "admin", testIssuer, -1)
	require.NoError(t, err)

	cases := map[string]struct {
		auth string
		code string
	}{
		"sin header":       {"", "MISSING_TOKEN"},
		"esquema basic":    {"Basic dXNlcjpwYXNz", "INVALID_TOKEN"},
		"token malformado": {"Bearer token.invalido.aqui", "INVALID_TOKEN"},
		"otro secret":      {"Bearer " + wrongSecret, "INVALID_TOKEN"},
		"token expirado":   {"Bearer " + expired, "INVALID_TOKEN"},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			resp, raw := api.do(http.MethodGet, "/api/inventory/stats", tc.auth, nil)
			assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
			assert.Equal(t, tc.code, decodeError(t, raw).Code)
		})
	}
}

func TestAuthMiddleware_ExtraeClaims(t *testing.T) {
	app := fiber.New()
	app.Get("/me", apphttp.AuthMiddleware(testJWTSecret), func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"user_id": apphttp.GetUserID(c),
			"email":   apphttp.GetEmail(c),
			"role":    apphttp.GetRole(c),
		})
	})

	tok, err := pkgjwt.Generate(testJWTSecret, testUserID, testEmail, "warehouse_keeper", testIssuer, testExpMin)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer "+tok)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	var body map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, testUserID, body["user_id"])
	assert.Equal(t, testEmail, body["email"])
	assert.Equal(t, "warehouse_keeper", body["role"])
}
