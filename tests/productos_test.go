package tests

import (
	"context"
	"errors"
	"sync"
	"testing"

	"frhema/internal/apierror"
	"frhema/internal/dto"
	"frhema/internal/model"
	"frhema/internal/service"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newProductos() (*stubProductoRepo, service.ProductoService) {
	repo := newStubProductoRepo()
	return repo, service.NewProductoService(repo)
}

func TestCrearProducto_ActivoDerivadoDelStock(t *testing.T) {
	_, svc := newProductos()

	conStock, err := svc.Crear(context.Background(), dto.CrearProductoRequest{
		Codigo:         "MART-01",
		Nombre:         "Martillo de una",
		StockInicial:   5,
		PrecioUnitario: decimal.NewFromFloat(25.00),
	})
	require.NoError(t, err)
	assert.True(t, conStock.Activo)
	assert.Equal(t, 5, conStock.StockActual)

	sinStock, err := svc.Crear(context.Background(), dto.CrearProductoRequest{
		Codigo:         "MART-02",
		Nombre:         "Martillo de goma",
		StockInicial:   0,
		PrecioUnitario: decimal.NewFromFloat(18.00),
	})
	require.NoError(t, err)
	assert.False(t, sinStock.Activo)
}

func TestCrearProducto_UnidadPorDefecto(t *testing.T) {
	_, svc := newProductos()
	resp, err := svc.Crear(context.Background(), dto.CrearProductoRequest{
		Codigo:         "CEM-01",
		Nombre:         "Cemento Sol 42.5kg",
		StockInicial:   20,
		PrecioUnitario: decimal.NewFromFloat(34.90),
	})
	require.NoError(t, err)
	assert.Equal(t, "unidad", resp.UnidadMedida)
}

func TestActualizarProducto_CamposParciales(t *testing.T) {
	repo, svc := newProductos()
	p := seedProducto(t, repo, 5, true)

	nuevoNombre := "Tornillo autorroscante 1/4"
	nuevoMinimo := 10
	resp, err := svc.Actualizar(context.Background(), p.ID, dto.ActualizarProductoRequest{
		Nombre:      &nuevoNombre,
		StockMinimo: &nuevoMinimo,
	})
	require.NoError(t, err)
	assert.Equal(t, nuevoNombre, resp.Nombre)
	assert.Equal(t, 10, resp.StockMinimo)
	// untouched fields survive
	assert.True(t, resp.PrecioUnitario.Equal(p.PrecioUnitario))
	assert.Equal(t, 5, resp.StockActual)
}

func TestEliminarProducto_ConHistorial_Bloqueado(t *testing.T) {
	repo, svc := newProductos()
	p := seedProducto(t, repo, 5, true)
	repo.referenciados[p.ID] = true

	err := svc.Eliminar(context.Background(), p.ID)
	var vErr *apierror.ValidationError
	require.True(t, errors.As(err, &vErr))

	// still there
	_, err = repo.FindByID(context.Background(), p.ID)
	assert.NoError(t, err)
}

func TestEliminarProducto_SinHistorial(t *testing.T) {
	repo, svc := newProductos()
	p := seedProducto(t, repo, 0, false)

	require.NoError(t, svc.Eliminar(context.Background(), p.ID))
	_, err := repo.FindByID(context.Background(), p.ID)
	assert.Error(t, err)
}

func TestStockCritico_UmbralPropio(t *testing.T) {
	repo, svc := newProductos()

	bajo := seedProducto(t, repo, 8, true)
	bajo.StockMinimo = 10
	require.NoError(t, repo.Update(context.Background(), bajo))

	sano := seedProducto(t, repo, 20, true)
	sano.StockMinimo = 10
	require.NoError(t, repo.Update(context.Background(), sano))

	// minimo 0 → default threshold 3 applies
	sinMinimo := seedProducto(t, repo, 2, true)
	sinMinimo.StockMinimo = 0
	require.NoError(t, repo.Update(context.Background(), sinMinimo))

	criticos, err := svc.ListarStockCritico(context.Background(), nil)
	require.NoError(t, err)

	ids := make(map[string]bool)
	for _, p := range criticos {
		ids[p.ID] = true
	}
	assert.True(t, ids[bajo.ID.String()])
	assert.True(t, ids[sinMinimo.ID.String()])
	assert.False(t, ids[sano.ID.String()])
}

func TestStockCritico_LimiteExplicito(t *testing.T) {
	repo, svc := newProductos()
	p1 := seedProducto(t, repo, 4, true)
	p2 := seedProducto(t, repo, 15, true)

	limite := 5
	criticos, err := svc.ListarStockCritico(context.Background(), &limite)
	require.NoError(t, err)

	ids := make(map[string]bool)
	for _, p := range criticos {
		ids[p.ID] = true
	}
	assert.True(t, ids[p1.ID.String()])
	assert.False(t, ids[p2.ID.String()])
}

// Manual deactivation holds only until the next stock movement, which
// re-derives the flag from stock.
func TestSetActivo_Override_HastaProximoMovimiento(t *testing.T) {
	repo, svc := newProductos()
	p := seedProducto(t, repo, 5, true)

	require.NoError(t, svc.SetActivo(context.Background(), p.ID, false))
	actual, _ := repo.FindByID(context.Background(), p.ID)
	assert.False(t, actual.Activo)

	inventario := service.NewInventarioService(repo, &stubMovimientoRepo{}, nil)
	_, err := inventario.RegistrarMovimientoManual(context.Background(), uuid.New(), dto.MovimientoManualRequest{
		ProductoID: p.ID.String(),
		Tipo:       model.MovimientoEntrada,
		Cantidad:   1,
	})
	require.NoError(t, err)

	actual, _ = repo.FindByID(context.Background(), p.ID)
	assert.True(t, actual.Activo)
}

func TestObtenerPorCodigo(t *testing.T) {
	repo, svc := newProductos()
	p := seedProducto(t, repo, 5, true)

	resp, err := svc.ObtenerPorCodigo(context.Background(), p.Codigo)
	require.NoError(t, err)
	assert.Equal(t, p.ID.String(), resp.ID)

	_, err = svc.ObtenerPorCodigo(context.Background(), "NO-EXISTE")
	var nfErr *apierror.NotFoundError
	require.True(t, errors.As(err, &nfErr))
}

// carreraProductoRepo fires fn exactly once, right after the first read, to
// simulate a stock mutation committing between a service's read of the product
// and its later write.
type carreraProductoRepo struct {
	*stubProductoRepo
	fn   func()
	once sync.Once
}

func (r *carreraProductoRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Producto, error) {
	p, err := r.stubProductoRepo.FindByID(ctx, id)
	r.once.Do(r.fn)
	return p, err
}

func TestActualizarProducto_NoPisaStockConcurrente(t *testing.T) {
	repo := newStubProductoRepo()
	movRepo := &stubMovimientoRepo{}
	inventario := service.NewInventarioService(repo, movRepo, nil)
	p := seedProducto(t, repo, 10, true)

	// A dispatch of 3 units lands after the metadata edit reads the row.
	despacho := func() {
		_, err := inventario.RegistrarMovimientoManual(context.Background(), uuid.New(), dto.MovimientoManualRequest{
			ProductoID: p.ID.String(),
			Tipo:       model.MovimientoSalida,
			Cantidad:   3,
			Motivo:     "Despacho a obra",
		})
		require.NoError(t, err)
	}
	svc := service.NewProductoService(&carreraProductoRepo{stubProductoRepo: repo, fn: despacho})

	nombre := "Tornillo 1/4 zincado"
	_, err := svc.Actualizar(context.Background(), p.ID, dto.ActualizarProductoRequest{Nombre: &nombre})
	require.NoError(t, err)

	// The edit took effect, but stock still matches the last kardex entry.
	final, err := repo.FindByID(context.Background(), p.ID)
	require.NoError(t, err)
	assert.Equal(t, "Tornillo 1/4 zincado", final.Nombre)
	assert.Equal(t, 7, final.StockActual)

	movs, err := movRepo.ListByProducto(context.Background(), p.ID)
	require.NoError(t, err)
	require.Len(t, movs, 1)
	assert.Equal(t, final.StockActual, movs[0].StockNuevo)
}
