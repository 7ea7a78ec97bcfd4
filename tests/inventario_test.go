package tests

import (
	"context"
	"errors"
	"sync"
	"testing"

	"frhema/internal/apierror"
	"frhema/internal/dto"
	"frhema/internal/events"
	"frhema/internal/model"
	"frhema/internal/repository"
	"frhema/internal/service"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// ── In-memory ProductoRepository stub ────────────────────────────────────────

type stubProductoRepo struct {
	mu            sync.Mutex
	productos     map[uuid.UUID]*model.Producto
	referenciados map[uuid.UUID]bool
}

func newStubProductoRepo() *stubProductoRepo {
	return &stubProductoRepo{
		productos:     make(map[uuid.UUID]*model.Producto),
		referenciados: make(map[uuid.UUID]bool),
	}
}

func (r *stubProductoRepo) Create(_ context.Context, p *model.Producto) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	clone := *p
	r.productos[p.ID] = &clone
	return nil
}

func (r *stubProductoRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Producto, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.productos[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	clone := *p
	return &clone, nil
}

func (r *stubProductoRepo) FindByCodigo(_ context.Context, codigo string) (*model.Producto, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.productos {
		if p.Codigo == codigo {
			clone := *p
			return &clone, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *stubProductoRepo) List(_ context.Context, filter dto.ProductoFilter) ([]model.Producto, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []model.Producto
	for _, p := range r.productos {
		switch filter.Activo {
		case "false":
			if p.Activo {
				continue
			}
		case "all":
		default:
			if !p.Activo {
				continue
			}
		}
		result = append(result, *p)
	}
	return result, int64(len(result)), nil
}

// Update mirrors the real repository: metadata columns only, stock_actual and
// activo keep their stored values.
func (r *stubProductoRepo) Update(_ context.Context, p *model.Producto) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	actual, ok := r.productos[p.ID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	clone := *p
	clone.StockActual = actual.StockActual
	clone.Activo = actual.Activo
	r.productos[p.ID] = &clone
	return nil
}

func (r *stubProductoRepo) SetActivo(_ context.Context, id uuid.UUID, activo bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.productos[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	p.Activo = activo
	return nil
}

func (r *stubProductoRepo) ListStockCritico(_ context.Context, limite *int) ([]model.Producto, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []model.Producto
	for _, p := range r.productos {
		if !p.Activo {
			continue
		}
		umbral := p.StockMinimo
		if umbral < 3 {
			umbral = 3
		}
		if limite != nil {
			umbral = *limite
		}
		if p.StockActual <= umbral {
			result = append(result, *p)
		}
	}
	return result, nil
}

func (r *stubProductoRepo) TieneReferencias(_ context.Context, id uuid.UUID) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.referenciados[id], nil
}

func (r *stubProductoRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.productos, id)
	return nil
}

func (r *stubProductoRepo) FindForUpdateTx(_ *gorm.DB, id uuid.UUID) (*model.Producto, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.productos[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	clone := *p
	return &clone, nil
}

func (r *stubProductoRepo) UpdateStockActivoTx(_ *gorm.DB, id uuid.UUID, stock int, activo bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.productos[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	p.StockActual = stock
	p.Activo = activo
	return nil
}

func (r *stubProductoRepo) DB() *gorm.DB { return nil }

var _ repository.ProductoRepository = (*stubProductoRepo)(nil)

// ── In-memory MovimientoStockRepository stub ─────────────────────────────────

type stubMovimientoRepo struct {
	mu          sync.Mutex
	seq         int64
	movimientos []model.MovimientoStock
}

func (r *stubMovimientoRepo) CreateTx(_ *gorm.DB, m *model.MovimientoStock) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	m.ID = r.seq
	r.movimientos = append(r.movimientos, *m)
	return nil
}

func (r *stubMovimientoRepo) ListByProducto(_ context.Context, productoID uuid.UUID) ([]model.MovimientoStock, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []model.MovimientoStock
	for _, m := range r.movimientos {
		if m.ProductoID == productoID {
			result = append(result, m)
		}
	}
	return result, nil
}

func (r *stubMovimientoRepo) List(_ context.Context, filter dto.MovimientoFilter) ([]model.MovimientoStock, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []model.MovimientoStock
	for _, m := range r.movimientos {
		if filter.ProductoID != "" && m.ProductoID.String() != filter.ProductoID {
			continue
		}
		if filter.Tipo != "" && m.Tipo != filter.Tipo {
			continue
		}
		result = append(result, m)
	}
	return result, int64(len(result)), nil
}

var _ repository.MovimientoStockRepository = (*stubMovimientoRepo)(nil)

// ── Helpers ──────────────────────────────────────────────────────────────────

func seedProducto(t *testing.T, repo *stubProductoRepo, stock int, activo bool) *model.Producto {
	t.Helper()
	p := &model.Producto{
		ID:             uuid.New(),
		Codigo:         "TORN-" + uuid.NewString()[:8],
		Nombre:         "Tornillo 1/4",
		UnidadMedida:   "unidad",
		StockActual:    stock,
		StockMinimo:    3,
		PrecioUnitario: decimal.NewFromFloat(1.50),
		PrecioCompra:   decimal.NewFromFloat(0.80),
		Activo:         activo,
	}
	require.NoError(t, repo.Create(context.Background(), p))
	return p
}

func newInventario() (*stubProductoRepo, *stubMovimientoRepo, *events.Collector, service.InventarioService) {
	productoRepo := newStubProductoRepo()
	movRepo := &stubMovimientoRepo{}
	collector := &events.Collector{}
	svc := service.NewInventarioService(productoRepo, movRepo, collector)
	return productoRepo, movRepo, collector, svc
}

func eventosDeTipo(c *events.Collector, tipo string) []events.Evento {
	var result []events.Evento
	for _, ev := range c.Eventos() {
		if ev.Tipo == tipo {
			result = append(result, ev)
		}
	}
	return result
}

// ── Movimientos manuales ─────────────────────────────────────────────────────

func TestMovimientoManual_Entrada(t *testing.T) {
	productoRepo, _, _, svc := newInventario()
	p := seedProducto(t, productoRepo, 5, true)

	resp, err := svc.RegistrarMovimientoManual(context.Background(), uuid.New(), dto.MovimientoManualRequest{
		ProductoID: p.ID.String(),
		Tipo:       model.MovimientoEntrada,
		Cantidad:   3,
		Motivo:     "Reposicion de almacen",
	})
	require.NoError(t, err)

	assert.Equal(t, model.MovimientoEntrada, resp.Tipo)
	assert.Equal(t, 3, resp.Cantidad)
	assert.Equal(t, 5, resp.StockAnterior)
	assert.Equal(t, 8, resp.StockNuevo)
	assert.Equal(t, "Reposicion de almacen", resp.Referencia)

	actual, _ := productoRepo.FindByID(context.Background(), p.ID)
	assert.Equal(t, 8, actual.StockActual)
}

func TestMovimientoManual_Salida(t *testing.T) {
	productoRepo, _, _, svc := newInventario()
	p := seedProducto(t, productoRepo, 8, true)

	resp, err := svc.RegistrarMovimientoManual(context.Background(), uuid.New(), dto.MovimientoManualRequest{
		ProductoID: p.ID.String(),
		Tipo:       model.MovimientoSalida,
		Cantidad:   3,
	})
	require.NoError(t, err)

	assert.Equal(t, model.MovimientoSalida, resp.Tipo)
	assert.Equal(t, 8, resp.StockAnterior)
	assert.Equal(t, 5, resp.StockNuevo)

	actual, _ := productoRepo.FindByID(context.Background(), p.ID)
	assert.Equal(t, 5, actual.StockActual)
	assert.True(t, actual.Activo)
}

func TestMovimientoManual_Ajuste(t *testing.T) {
	productoRepo, _, _, svc := newInventario()
	p := seedProducto(t, productoRepo, 5, true)

	// AJUSTE sets stock to the absolute value; cantidad records the distance.
	resp, err := svc.RegistrarMovimientoManual(context.Background(), uuid.New(), dto.MovimientoManualRequest{
		ProductoID: p.ID.String(),
		Tipo:       model.MovimientoAjuste,
		Cantidad:   2,
		Motivo:     "Conteo fisico",
	})
	require.NoError(t, err)

	assert.Equal(t, model.MovimientoAjuste, resp.Tipo)
	assert.Equal(t, 3, resp.Cantidad)
	assert.Equal(t, 5, resp.StockAnterior)
	assert.Equal(t, 2, resp.StockNuevo)

	actual, _ := productoRepo.FindByID(context.Background(), p.ID)
	assert.Equal(t, 2, actual.StockActual)
}

func TestMovimientoManual_CantidadCero_Rechazada(t *testing.T) {
	productoRepo, _, _, svc := newInventario()
	p := seedProducto(t, productoRepo, 5, true)

	_, err := svc.RegistrarMovimientoManual(context.Background(), uuid.New(), dto.MovimientoManualRequest{
		ProductoID: p.ID.String(),
		Tipo:       model.MovimientoEntrada,
		Cantidad:   0,
	})
	var vErr *apierror.ValidationError
	require.True(t, errors.As(err, &vErr), "expected validation error, got %v", err)
}

func TestMovimientoManual_ProductoNoExiste(t *testing.T) {
	_, _, _, svc := newInventario()

	_, err := svc.RegistrarMovimientoManual(context.Background(), uuid.New(), dto.MovimientoManualRequest{
		ProductoID: uuid.NewString(),
		Tipo:       model.MovimientoEntrada,
		Cantidad:   1,
	})
	var nfErr *apierror.NotFoundError
	require.True(t, errors.As(err, &nfErr), "expected not found, got %v", err)
}

// ── Clamp a cero y correccion ────────────────────────────────────────────────

func TestSalidaExcesiva_ClampCero(t *testing.T) {
	productoRepo, movRepo, collector, svc := newInventario()
	p := seedProducto(t, productoRepo, 5, true)

	resp, err := svc.RegistrarMovimientoManual(context.Background(), uuid.New(), dto.MovimientoManualRequest{
		ProductoID: p.ID.String(),
		Tipo:       model.MovimientoSalida,
		Cantidad:   8,
	})
	require.NoError(t, err)

	// Stock never goes negative: the exit is clamped and reported, not failed.
	assert.Equal(t, 0, resp.StockNuevo)
	actual, _ := productoRepo.FindByID(context.Background(), p.ID)
	assert.Equal(t, 0, actual.StockActual)

	correcciones := eventosDeTipo(collector, events.TipoCorreccionStock)
	require.Len(t, correcciones, 1)
	assert.Equal(t, p.ID, correcciones[0].ProductoID)
	assert.Equal(t, 5, correcciones[0].StockAnterior)
	assert.Equal(t, 0, correcciones[0].StockNuevo)

	movs, _ := movRepo.ListByProducto(context.Background(), p.ID)
	require.Len(t, movs, 1)
	assert.Equal(t, 0, movs[0].StockNuevo)
}

// ── Ciclo de vida automatico ─────────────────────────────────────────────────

func TestSuspensionAutomatica_StockCero(t *testing.T) {
	productoRepo, _, collector, svc := newInventario()
	p := seedProducto(t, productoRepo, 3, true)

	_, err := svc.RegistrarMovimientoManual(context.Background(), uuid.New(), dto.MovimientoManualRequest{
		ProductoID: p.ID.String(),
		Tipo:       model.MovimientoSalida,
		Cantidad:   3,
	})
	require.NoError(t, err)

	actual, _ := productoRepo.FindByID(context.Background(), p.ID)
	assert.Equal(t, 0, actual.StockActual)
	assert.False(t, actual.Activo)

	suspensiones := eventosDeTipo(collector, events.TipoProductoSuspendido)
	require.Len(t, suspensiones, 1)
	assert.Equal(t, p.ID, suspensiones[0].ProductoID)
}

func TestReactivacionAutomatica_EntradaDeStock(t *testing.T) {
	productoRepo, _, collector, svc := newInventario()
	p := seedProducto(t, productoRepo, 0, false)

	_, err := svc.RegistrarMovimientoManual(context.Background(), uuid.New(), dto.MovimientoManualRequest{
		ProductoID: p.ID.String(),
		Tipo:       model.MovimientoEntrada,
		Cantidad:   4,
	})
	require.NoError(t, err)

	actual, _ := productoRepo.FindByID(context.Background(), p.ID)
	assert.Equal(t, 4, actual.StockActual)
	assert.True(t, actual.Activo)

	reactivaciones := eventosDeTipo(collector, events.TipoProductoReactivado)
	require.Len(t, reactivaciones, 1)
}

func TestAjusteACero_Suspende(t *testing.T) {
	productoRepo, _, collector, svc := newInventario()
	p := seedProducto(t, productoRepo, 7, true)

	_, err := svc.RegistrarMovimientoManual(context.Background(), uuid.New(), dto.MovimientoManualRequest{
		ProductoID: p.ID.String(),
		Tipo:       model.MovimientoAjuste,
		Cantidad:   0,
	})
	require.NoError(t, err)

	actual, _ := productoRepo.FindByID(context.Background(), p.ID)
	assert.Equal(t, 0, actual.StockActual)
	assert.False(t, actual.Activo)
	assert.Len(t, eventosDeTipo(collector, events.TipoProductoSuspendido), 1)
}

// ── Kardex ───────────────────────────────────────────────────────────────────

func TestKardex_Encadenado(t *testing.T) {
	productoRepo, _, _, svc := newInventario()
	p := seedProducto(t, productoRepo, 0, false)
	usuario := uuid.New()

	pasos := []dto.MovimientoManualRequest{
		{ProductoID: p.ID.String(), Tipo: model.MovimientoEntrada, Cantidad: 10},
		{ProductoID: p.ID.String(), Tipo: model.MovimientoSalida, Cantidad: 4},
		{ProductoID: p.ID.String(), Tipo: model.MovimientoAjuste, Cantidad: 8},
		{ProductoID: p.ID.String(), Tipo: model.MovimientoSalida, Cantidad: 2},
	}
	for _, paso := range pasos {
		_, err := svc.RegistrarMovimientoManual(context.Background(), usuario, paso)
		require.NoError(t, err)
	}

	kardex, err := svc.ObtenerKardex(context.Background(), p.ID)
	require.NoError(t, err)
	require.Len(t, kardex.Movimientos, 4)

	// Every movement starts where the previous one ended, ids strictly grow,
	// and the tail matches the product's current stock.
	for i := 1; i < len(kardex.Movimientos); i++ {
		assert.Equal(t, kardex.Movimientos[i-1].StockNuevo, kardex.Movimientos[i].StockAnterior)
		assert.Greater(t, kardex.Movimientos[i].ID, kardex.Movimientos[i-1].ID)
	}
	ultimo := kardex.Movimientos[len(kardex.Movimientos)-1]
	assert.Equal(t, kardex.StockActual, ultimo.StockNuevo)
	assert.Equal(t, 6, kardex.StockActual)
}

func TestKardex_ProductoNoExiste(t *testing.T) {
	_, _, _, svc := newInventario()
	_, err := svc.ObtenerKardex(context.Background(), uuid.New())
	var nfErr *apierror.NotFoundError
	require.True(t, errors.As(err, &nfErr))
}

func TestListarMovimientos_FiltroPorTipo(t *testing.T) {
	productoRepo, _, _, svc := newInventario()
	p := seedProducto(t, productoRepo, 10, true)
	usuario := uuid.New()

	for _, req := range []dto.MovimientoManualRequest{
		{ProductoID: p.ID.String(), Tipo: model.MovimientoEntrada, Cantidad: 5},
		{ProductoID: p.ID.String(), Tipo: model.MovimientoSalida, Cantidad: 2},
		{ProductoID: p.ID.String(), Tipo: model.MovimientoSalida, Cantidad: 1},
	} {
		_, err := svc.RegistrarMovimientoManual(context.Background(), usuario, req)
		require.NoError(t, err)
	}

	resp, err := svc.ListarMovimientos(context.Background(), dto.MovimientoFilter{
		Tipo: model.MovimientoSalida, Page: 1, Limit: 100,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(2), resp.Total)
	for _, m := range resp.Data {
		assert.Equal(t, model.MovimientoSalida, m.Tipo)
	}
}
