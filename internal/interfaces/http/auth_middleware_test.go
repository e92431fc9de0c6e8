package http_test

import (
	"bytes"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgjwt "github.com/jhoicas/setsco-serial-api/pkg/jwt"
)

const (
	testJWTSecret = "test-secret-key-for-unit-tests"
	testUserID    = "00000000-0000-0000-0000-000000000001"
	testCompanyID = "00000000-0000-0000-0000-000000000002"
	testIssuer    = "setsco-serial-test"
	testExpMin    = 60
)

func identity(role string) pkgjwt.Identity {
	return pkgjwt.Identity{UserID: testUserID, CompanyID: testCompanyID, Role: role}
}

// tokenForRole cabecera Authorization para el rol indicado.
func tokenForRole(t *testing.T, role string) string {
	t.Helper()
	return bearer(t, testJWTSecret, identity(role), testIssuer, testExpMin)
}

func bearer(t *testing.T, secret string, id pkgjwt.Identity, issuer string, expMin int) string {
	t.Helper()
	tok, err := pkgjwt.Generate(secret, id, issuer, expMin)
	require.NoError(t, err)
	return "Bearer " + tok
}

// callRaw envía POST {} con la cabecera Authorization tal cual.
func callRaw(t *testing.T, app *fiber.App, method, path, authHeader string) (int, string) {
	t.Helper()
	req := httptest.NewRequest(method, path, bytes.NewReader([]byte("{}")))
	req.Header.Set("Content-Type", "application/json")
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

// ──────────────────────────────────────────────────────────────────────────────
// Matriz de roles sobre las rutas montadas
// ──────────────────────────────────────────────────────────────────────────────

type routeAccess struct {
	method  string
	path    string
	allowed []string
}

var (
	all        = []string{pkgjwt.RoleAdmin, pkgjwt.RoleBodeguero, pkgjwt.RoleProduccion}
	adminOnly  = []string{pkgjwt.RoleAdmin}
	bodega     = []string{pkgjwt.RoleAdmin, pkgjwt.RoleBodeguero}
	produccion = []string{pkgjwt.RoleAdmin, pkgjwt.RoleProduccion}
)

var roleMatrix = []routeAccess{
	{http.MethodPost, "/api/categories", adminOnly},
	{http.MethodGet, "/api/categories", all},
	{http.MethodPut, "/api/categories/cat-x", adminOnly},
	{http.MethodPost, "/api/serials/range", bodega},
	{http.MethodPost, "/api/serials/void", produccion},
	{http.MethodPost, "/api/serials/scrap", bodega},
	{http.MethodGet, "/api/serials/sn-x/history", all},
	{http.MethodPost, "/api/serials/sn-x/archive", adminOnly},
	{http.MethodPost, "/api/custody/assign", bodega},
	{http.MethodPost, "/api/custody/reverse", bodega},
	{http.MethodPost, "/api/production/completed", produccion},
	{http.MethodPost, "/api/production/OP-1/assign", produccion},
	{http.MethodPost, "/api/shipments/validated", bodega},
	{http.MethodPost, "/api/returns", bodega},
	{http.MethodPost, "/api/safety-stock/scan", adminOnly},
	{http.MethodPost, "/api/distribution-settings", adminOnly},
	{http.MethodGet, "/api/distribution-settings/active", all},
}

func TestRouter_MatrizDeRoles(t *testing.T) {
	app := buildAPI(t)
	for _, r := range roleMatrix {
		permitted := map[string]bool{}
		for _, role := range r.allowed {
			permitted[role] = true
		}
		for _, role := range all {
			status, body := callRaw(t, app, r.method, r.path, tokenForRole(t, role))
			if permitted[role] {
				assert.NotContains(t, []int{http.StatusUnauthorized, http.StatusForbidden}, status,
					"%s %s debe admitir %s: %s", r.method, r.path, role, body)
			} else {
				assert.Equal(t, http.StatusForbidden, status, "%s %s debe rechazar %s", r.method, r.path, role)
				assert.Contains(t, body, "FORBIDDEN")
			}
		}
	}
}

// ──────────────────────────────────────────────────────────────────────────────
// Token: emisor, firma, expiración y rol
// ──────────────────────────────────────────────────────────────────────────────

func TestAuthMiddleware_TokenRechazado(t *testing.T) {
	app := buildAPI(t)
	cases := []struct {
		name   string
		header string
		code   string
	}{
		{"sin cabecera", "", "MISSING_TOKEN"},
		{"esquema distinto de Bearer", "Token abc", "INVALID_TOKEN"},
		{"otro emisor", bearer(t, testJWTSecret, identity(pkgjwt.RoleAdmin), "erp-externo", testExpMin), "INVALID_TOKEN"},
		{"otra firma", bearer(t, "otro-secreto", identity(pkgjwt.RoleAdmin), testIssuer, testExpMin), "INVALID_TOKEN"},
		{"expirado", bearer(t, testJWTSecret, identity(pkgjwt.RoleAdmin), testIssuer, -5), "INVALID_TOKEN"},
		{"sin rol", bearer(t, testJWTSecret, identity(""), testIssuer, testExpMin), "MISSING_ROLE"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			status, body := callRaw(t, app, http.MethodGet, "/api/categories", tc.header)
			assert.Equal(t, http.StatusUnauthorized, status)
			assert.Contains(t, body, tc.code)
		})
	}
}

func TestAuthMiddleware_EmpresaDelTokenEnLaCategoria(t *testing.T) {
	app := buildAPI(t)
	status, raw := call(t, app, http.MethodPost, "/api/categories", pkgjwt.RoleAdmin, map[string]any{"name": "CO2-2kg"})
	require.Equal(t, http.StatusCreated, status, string(raw))
	var cat map[string]any
	decode(t, raw, &cat)
	assert.Equal(t, testCompanyID, cat["company_id"], "company_id sale del token, no del cuerpo")
}
