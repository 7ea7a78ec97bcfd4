//go:build integration

package e2e

// End-to-end tests against real Postgres + Redis via testcontainers.
// Run with: go test -tags integration ./tests/e2e/... -v

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"frhema/internal/config"
	"frhema/internal/infra"
	"frhema/internal/model"
	"frhema/internal/router"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcPostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	tcRedis "github.com/testcontainers/testcontainers-go/modules/redis"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// ── Helpers ──────────────────────────────────────────────────────────────────

func jsonBody(t *testing.T, v any) *bytes.Buffer {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return bytes.NewBuffer(b)
}

func do(t *testing.T, srv *httptest.Server, method, path string, body *bytes.Buffer, token string) *http.Response {
	t.Helper()
	var req *http.Request
	var err error
	if body != nil {
		req, err = http.NewRequest(method, srv.URL+path, body)
	} else {
		req, err = http.NewRequest(method, srv.URL+path, nil)
	}
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := srv.Client().Do(req)
	require.NoError(t, err)
	return resp
}

func decodeJSON(t *testing.T, resp *http.Response, dest any) {
	t.Helper()
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(dest))
}

func assertDecimal(t *testing.T, want string, got string) {
	t.Helper()
	assert.True(t, decimal.RequireFromString(want).Equal(decimal.RequireFromString(got)),
		"want %s, got %s", want, got)
}

// ── Test Suite Setup ─────────────────────────────────────────────────────────

type testEnv struct {
	server *httptest.Server
	token  string // admin JWT
	db     *gorm.DB
	engine *gin.Engine
}

func setupTestEnv(t *testing.T) *testEnv {
	t.Helper()
	ctx := context.Background()

	pgC, err := tcPostgres.RunContainer(ctx,
		testcontainers.WithImage("postgres:15-alpine"),
		tcPostgres.WithDatabase("frhema_test"),
		tcPostgres.WithUsername("frhema"),
		tcPostgres.WithPassword("frhema"),
		tcPostgres.BasicWaitStrategies(),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = pgC.Terminate(ctx) })

	pgURL, err := pgC.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	rdC, err := tcRedis.RunContainer(ctx,
		testcontainers.WithImage("redis:7-alpine"),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = rdC.Terminate(ctx) })

	rdURL, err := rdC.ConnectionString(ctx)
	require.NoError(t, err)

	cfg := &config.Config{
		Port:               8000,
		Env:                "test",
		JWTSecret:          "test-secret-key",
		JWTExpirationHours: 8,
		JWTRefreshHours:    24,
		DatabaseURL:        pgURL,
		RedisURL:           rdURL,
		WorkerPoolSize:     1,
		StockScanMinutes:   30,
	}

	db, err := infra.NewDatabase(cfg.DatabaseURL)
	require.NoError(t, err)
	require.NoError(t, infra.RunMigrations(db))

	rdb, err := infra.NewRedis(cfg.RedisURL)
	require.NoError(t, err)

	// Seed admin user
	hash, err := bcrypt.GenerateFromPassword([]byte("frhema-e2e"), bcrypt.MinCost)
	require.NoError(t, err)
	require.NoError(t, db.Create(&model.Usuario{
		ID:           uuid.New(),
		Username:     "admin-e2e",
		Nombre:       "Admin E2E",
		PasswordHash: string(hash),
		Rol:          "administrador",
		Activo:       true,
	}).Error)

	r := router.New(cfg, db, rdb)
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)

	loginResp := do(t, srv, "POST", "/v1/auth/login",
		jsonBody(t, map[string]string{"username": "admin-e2e", "password": "frhema-e2e"}),
		"",
	)
	require.Equal(t, http.StatusOK, loginResp.StatusCode)
	var loginBody struct {
		AccessToken string `json:"access_token"`
	}
	decodeJSON(t, loginResp, &loginBody)
	require.NotEmpty(t, loginBody.AccessToken)

	return &testEnv{server: srv, token: loginBody.AccessToken, db: db, engine: r}
}

func (env *testEnv) crearProveedor(t *testing.T) string {
	t.Helper()
	resp := do(t, env.server, "POST", "/v1/proveedores",
		jsonBody(t, map[string]any{"nombre": "Distribuidora Norte EIRL"}), env.token)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var prov struct {
		ID string `json:"id"`
	}
	decodeJSON(t, resp, &prov)
	return prov.ID
}

func (env *testEnv) crearProducto(t *testing.T, codigo string, stock int, precio float64) string {
	t.Helper()
	resp := do(t, env.server, "POST", "/v1/productos",
		jsonBody(t, map[string]any{
			"codigo":          codigo,
			"nombre":          "Clavo 2 pulgadas",
			"stock_inicial":   stock,
			"stock_minimo":    3,
			"precio_unitario": precio,
			"precio_compra":   precio / 2,
		}), env.token)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var prod struct {
		ID     string `json:"id"`
		Activo bool   `json:"activo"`
	}
	decodeJSON(t, resp, &prod)
	return prod.ID
}

// ── Tests ────────────────────────────────────────────────────────────────────

// Full cycle: product created without stock starts suspended, a purchase
// reactivates it, a sale draws it down, and the kardex records every step
// with chained stock levels.
func TestE2E_CicloCompraVenta(t *testing.T) {
	env := setupTestEnv(t)
	proveedorID := env.crearProveedor(t)
	productoID := env.crearProducto(t, "CLAV-2P", 0, 4.00)

	// Starts inactive: no stock yet.
	var prod struct {
		Activo      bool `json:"activo"`
		StockActual int  `json:"stock_actual"`
	}
	resp := do(t, env.server, "GET", "/v1/productos/"+productoID, nil, env.token)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	decodeJSON(t, resp, &prod)
	assert.False(t, prod.Activo)

	// Purchase 10 units → stock 10, reactivated.
	compraResp := do(t, env.server, "POST", "/v1/compras",
		jsonBody(t, map[string]any{
			"proveedor_id":  proveedorID,
			"nro_documento": "F001-777",
			"detalles": []map[string]any{
				{"producto_id": productoID, "cantidad": 10, "costo_unitario": 2.00},
			},
		}), env.token)
	require.Equal(t, http.StatusCreated, compraResp.StatusCode)
	var compra struct {
		Total string `json:"total"`
	}
	decodeJSON(t, compraResp, &compra)
	assertDecimal(t, "20.00", compra.Total)

	resp = do(t, env.server, "GET", "/v1/productos/"+productoID, nil, env.token)
	decodeJSON(t, resp, &prod)
	assert.True(t, prod.Activo)
	assert.Equal(t, 10, prod.StockActual)

	// Sell 4 with IGV included.
	ventaResp := do(t, env.server, "POST", "/v1/ventas",
		jsonBody(t, map[string]any{
			"tipo_comprobante": "BOLETA",
			"nro_comprobante":  "B001-42",
			"metodo_pago":      "efectivo",
			"incluye_igv":      true,
			"detalles": []map[string]any{
				{"producto_id": productoID, "cantidad": 4},
			},
		}), env.token)
	require.Equal(t, http.StatusCreated, ventaResp.StatusCode)
	var venta struct {
		Total     string `json:"total"`
		MontoBase string `json:"monto_base"`
		MontoIGV  string `json:"monto_igv"`
	}
	decodeJSON(t, ventaResp, &venta)
	// 4 × 4.00 = 16.00 inclusive → base 13.56, igv 2.44
	assertDecimal(t, "16.00", venta.Total)
	assertDecimal(t, "13.56", venta.MontoBase)
	assertDecimal(t, "2.44", venta.MontoIGV)

	resp = do(t, env.server, "GET", "/v1/productos/"+productoID, nil, env.token)
	decodeJSON(t, resp, &prod)
	assert.Equal(t, 6, prod.StockActual)

	// Kardex: ENTRADA then VENTA, chained.
	kardexResp := do(t, env.server, "GET", "/v1/productos/"+productoID+"/kardex", nil, env.token)
	require.Equal(t, http.StatusOK, kardexResp.StatusCode)
	var kardex struct {
		StockActual int `json:"stock_actual"`
		Movimientos []struct {
			Tipo          string `json:"tipo"`
			StockAnterior int    `json:"stock_anterior"`
			StockNuevo    int    `json:"stock_nuevo"`
			Referencia    string `json:"referencia"`
		} `json:"movimientos"`
	}
	decodeJSON(t, kardexResp, &kardex)
	require.Len(t, kardex.Movimientos, 2)
	assert.Equal(t, "ENTRADA", kardex.Movimientos[0].Tipo)
	assert.Equal(t, "Compra F001-777", kardex.Movimientos[0].Referencia)
	assert.Equal(t, "VENTA", kardex.Movimientos[1].Tipo)
	assert.Equal(t, "Venta B001-42", kardex.Movimientos[1].Referencia)
	assert.Equal(t, kardex.Movimientos[0].StockNuevo, kardex.Movimientos[1].StockAnterior)
	assert.Equal(t, 6, kardex.StockActual)

	// Cost summary: 10 @ 2.00 → promedio 2.00, capital 6 × 2.00 = 12.00
	costoResp := do(t, env.server, "GET", "/v1/productos/"+productoID+"/resumen-costos", nil, env.token)
	require.Equal(t, http.StatusOK, costoResp.StatusCode)
	var costos struct {
		CantidadTotal int    `json:"cantidad_total"`
		CostoPromedio string `json:"costo_promedio"`
	}
	decodeJSON(t, costoResp, &costos)
	assert.Equal(t, 10, costos.CantidadTotal)
	assertDecimal(t, "2.00", costos.CostoPromedio)
}

// A sale exceeding available stock returns 409 and leaves no trace.
func TestE2E_StockInsuficiente(t *testing.T) {
	env := setupTestEnv(t)
	productoID := env.crearProducto(t, "TUBO-PVC", 5, 12.50)

	resp := do(t, env.server, "POST", "/v1/ventas",
		jsonBody(t, map[string]any{
			"tipo_comprobante": "BOLETA",
			"nro_comprobante":  "B001-50",
			"metodo_pago":      "efectivo",
			"detalles": []map[string]any{
				{"producto_id": productoID, "cantidad": 6},
			},
		}), env.token)
	require.Equal(t, http.StatusConflict, resp.StatusCode)
	var body struct {
		Solicitado int `json:"solicitado"`
		Disponible int `json:"disponible"`
	}
	decodeJSON(t, resp, &body)
	assert.Equal(t, 6, body.Solicitado)
	assert.Equal(t, 5, body.Disponible)

	// Stock untouched, kardex empty.
	var prod struct {
		StockActual int `json:"stock_actual"`
	}
	getResp := do(t, env.server, "GET", "/v1/productos/"+productoID, nil, env.token)
	decodeJSON(t, getResp, &prod)
	assert.Equal(t, 5, prod.StockActual)

	kardexResp := do(t, env.server, "GET", "/v1/productos/"+productoID+"/kardex", nil, env.token)
	var kardex struct {
		Movimientos []any `json:"movimientos"`
	}
	decodeJSON(t, kardexResp, &kardex)
	assert.Empty(t, kardex.Movimientos)
}

// Concurrent sales against real postgres row locks: with 5 units on hand and
// 8 one-unit sales racing, exactly 5 commit and 3 fail with 409.
func TestE2E_VentasConcurrentes(t *testing.T) {
	env := setupTestEnv(t)
	productoID := env.crearProducto(t, "LIJA-80", 5, 1.20)

	const intentos = 8
	var wg sync.WaitGroup
	codigos := make(chan int, intentos)

	for i := 0; i < intentos; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			resp := do(t, env.server, "POST", "/v1/ventas",
				jsonBody(t, map[string]any{
					"tipo_comprobante": "BOLETA",
					"nro_comprobante":  fmt.Sprintf("B001-%d", 100+n),
					"metodo_pago":      "efectivo",
					"detalles": []map[string]any{
						{"producto_id": productoID, "cantidad": 1},
					},
				}), env.token)
			resp.Body.Close()
			codigos <- resp.StatusCode
		}(i)
	}
	wg.Wait()
	close(codigos)

	creados, conflictos := 0, 0
	for code := range codigos {
		switch code {
		case http.StatusCreated:
			creados++
		case http.StatusConflict:
			conflictos++
		default:
			t.Fatalf("unexpected status %d", code)
		}
	}
	assert.Equal(t, 5, creados)
	assert.Equal(t, 3, conflictos)

	var prod struct {
		StockActual int  `json:"stock_actual"`
		Activo      bool `json:"activo"`
	}
	resp := do(t, env.server, "GET", "/v1/productos/"+productoID, nil, env.token)
	decodeJSON(t, resp, &prod)
	assert.Equal(t, 0, prod.StockActual)
	assert.False(t, prod.Activo)
}

// Manual adjustment repairs a drifted count and the clamp never lets stock
// go negative.
func TestE2E_MovimientoManual(t *testing.T) {
	env := setupTestEnv(t)
	productoID := env.crearProducto(t, "BROCA-8", 10, 6.00)

	// AJUSTE to 7 after a physical count.
	resp := do(t, env.server, "POST", "/v1/inventario/movimientos",
		jsonBody(t, map[string]any{
			"producto_id": productoID,
			"tipo":        "AJUSTE",
			"cantidad":    7,
			"motivo":      "Conteo fisico",
		}), env.token)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var mov struct {
		StockAnterior int `json:"stock_anterior"`
		StockNuevo    int `json:"stock_nuevo"`
	}
	decodeJSON(t, resp, &mov)
	assert.Equal(t, 10, mov.StockAnterior)
	assert.Equal(t, 7, mov.StockNuevo)

	// SALIDA bigger than stock clamps to zero instead of going negative.
	resp = do(t, env.server, "POST", "/v1/inventario/movimientos",
		jsonBody(t, map[string]any{
			"producto_id": productoID,
			"tipo":        "SALIDA",
			"cantidad":    50,
			"motivo":      "Merma",
		}), env.token)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	decodeJSON(t, resp, &mov)
	assert.Equal(t, 0, mov.StockNuevo)

	var prod struct {
		StockActual int  `json:"stock_actual"`
		Activo      bool `json:"activo"`
	}
	getResp := do(t, env.server, "GET", "/v1/productos/"+productoID, nil, env.token)
	decodeJSON(t, getResp, &prod)
	assert.Equal(t, 0, prod.StockActual)
	assert.False(t, prod.Activo)
}
