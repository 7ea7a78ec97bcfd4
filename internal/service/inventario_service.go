package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"frhema/internal/apierror"
	"frhema/internal/dto"
	"frhema/internal/events"
	"frhema/internal/model"
	"frhema/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// InventarioService owns the product's current stock state and its derived
// active flag. Every mutation runs under the product's row lock, appends the
// matching kardex movement in the same transaction, and re-derives the active
// flag synchronously — there is no window where stock and flag disagree.
type InventarioService interface {
	// AplicarDeltaTx mutates stock by delta inside the caller's transaction.
	// A delta that would drive stock negative is clamped to zero and reported
	// as a correccion_stock event (repair paths only — sales must pre-reject).
	// Returned events must be published by the caller AFTER commit.
	AplicarDeltaTx(ctx context.Context, tx *gorm.DB, productoID uuid.UUID, delta int, tipo, referencia string, refID *uuid.UUID) (*model.MovimientoStock, []events.Evento, error)

	// DescontarVentaTx is the sale-path decrement: it re-validates
	// cantidad <= stock under the row lock and fails with
	// InsufficientStockError instead of clamping.
	DescontarVentaTx(ctx context.Context, tx *gorm.DB, productoID uuid.UUID, cantidad int, referencia string, refID *uuid.UUID) (*model.MovimientoStock, []events.Evento, error)

	// AjustarStockTx sets stock to an absolute value; the delta is computed
	// under the row lock.
	AjustarStockTx(ctx context.Context, tx *gorm.DB, productoID uuid.UUID, objetivo int, referencia string) (*model.MovimientoStock, []events.Evento, error)

	// RegistrarMovimientoManual registers an ENTRADA/SALIDA/AJUSTE as one
	// atomic unit of work and publishes the resulting events after commit.
	RegistrarMovimientoManual(ctx context.Context, usuarioID uuid.UUID, req dto.MovimientoManualRequest) (*dto.MovimientoResponse, error)

	ObtenerKardex(ctx context.Context, productoID uuid.UUID) (*dto.KardexResponse, error)
	ListarMovimientos(ctx context.Context, filter dto.MovimientoFilter) (*dto.MovimientoListResponse, error)
}

type inventarioService struct {
	productoRepo repository.ProductoRepository
	movRepo      repository.MovimientoStockRepository
	sink         events.Sink
}

func NewInventarioService(
	productoRepo repository.ProductoRepository,
	movRepo repository.MovimientoStockRepository,
	sink events.Sink,
) InventarioService {
	return &inventarioService{productoRepo: productoRepo, movRepo: movRepo, sink: sink}
}

// runTx executes fn inside a GORM transaction when db is available,
// or calls fn(nil) directly when db is nil (unit test mode).
func runTx(ctx context.Context, db *gorm.DB, fn func(tx *gorm.DB) error) error {
	if db == nil {
		return fn(nil)
	}
	return db.WithContext(ctx).Transaction(fn)
}

func (s *inventarioService) AplicarDeltaTx(ctx context.Context, tx *gorm.DB, productoID uuid.UUID, delta int, tipo, referencia string, refID *uuid.UUID) (*model.MovimientoStock, []events.Evento, error) {
	p, err := s.lockProducto(tx, productoID)
	if err != nil {
		return nil, nil, err
	}
	cantidad := delta
	if cantidad < 0 {
		cantidad = -cantidad
	}
	return s.mutarStock(tx, p, p.StockActual+delta, tipo, cantidad, referencia, refID)
}

func (s *inventarioService) DescontarVentaTx(ctx context.Context, tx *gorm.DB, productoID uuid.UUID, cantidad int, referencia string, refID *uuid.UUID) (*model.MovimientoStock, []events.Evento, error) {
	p, err := s.lockProducto(tx, productoID)
	if err != nil {
		return nil, nil, err
	}
	// Commit-time re-check under the row lock: closes the race window against
	// concurrent sales of the same product.
	if cantidad > p.StockActual {
		return nil, nil, &apierror.InsufficientStockError{
			ProductoID: p.ID,
			Producto:   p.Nombre,
			Solicitado: cantidad,
			Disponible: p.StockActual,
		}
	}
	return s.mutarStock(tx, p, p.StockActual-cantidad, model.MovimientoVenta, cantidad, referencia, refID)
}

func (s *inventarioService) AjustarStockTx(ctx context.Context, tx *gorm.DB, productoID uuid.UUID, objetivo int, referencia string) (*model.MovimientoStock, []events.Evento, error) {
	p, err := s.lockProducto(tx, productoID)
	if err != nil {
		return nil, nil, err
	}
	delta := objetivo - p.StockActual
	cantidad := delta
	if cantidad < 0 {
		cantidad = -cantidad
	}
	return s.mutarStock(tx, p, objetivo, model.MovimientoAjuste, cantidad, referencia, nil)
}

func (s *inventarioService) lockProducto(tx *gorm.DB, id uuid.UUID) (*model.Producto, error) {
	p, err := s.productoRepo.FindForUpdateTx(tx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apierror.NewNotFound("producto", id.String())
		}
		return nil, apierror.NewPersistence("lock producto", err)
	}
	return p, nil
}

// mutarStock is the single write path for stock: clamp, persist, re-derive the
// active flag, append the kardex record. Caller holds the row lock.
func (s *inventarioService) mutarStock(tx *gorm.DB, p *model.Producto, nuevo int, tipo string, cantidad int, referencia string, refID *uuid.UUID) (*model.MovimientoStock, []events.Evento, error) {
	var evts []events.Evento
	stockAntes := p.StockActual

	if nuevo < 0 {
		evts = append(evts, events.Evento{
			Tipo:          events.TipoCorreccionStock,
			ProductoID:    p.ID,
			Producto:      p.Nombre,
			StockAnterior: stockAntes,
			StockNuevo:    0,
			Detalle:       fmt.Sprintf("delta llevaria el stock a %d; ajustado a 0", nuevo),
			Fecha:         time.Now(),
		})
		nuevo = 0
	}

	activo := p.Activo
	switch {
	case nuevo == 0 && p.Activo:
		activo = false
		evts = append(evts, events.Evento{
			Tipo:          events.TipoProductoSuspendido,
			ProductoID:    p.ID,
			Producto:      p.Nombre,
			StockAnterior: stockAntes,
			StockNuevo:    nuevo,
			Fecha:         time.Now(),
		})
	case nuevo > 0 && !p.Activo:
		activo = true
		evts = append(evts, events.Evento{
			Tipo:          events.TipoProductoReactivado,
			ProductoID:    p.ID,
			Producto:      p.Nombre,
			StockAnterior: stockAntes,
			StockNuevo:    nuevo,
			Fecha:         time.Now(),
		})
	}

	if err := s.productoRepo.UpdateStockActivoTx(tx, p.ID, nuevo, activo); err != nil {
		return nil, nil, apierror.NewPersistence("actualizar stock", err)
	}
	p.StockActual = nuevo
	p.Activo = activo

	mov := &model.MovimientoStock{
		ProductoID:    p.ID,
		Tipo:          tipo,
		Cantidad:      cantidad,
		StockAnterior: stockAntes,
		StockNuevo:    nuevo,
		Referencia:    referencia,
		ReferenciaID:  refID,
	}
	if err := s.movRepo.CreateTx(tx, mov); err != nil {
		return nil, nil, apierror.NewPersistence("registrar movimiento", err)
	}
	return mov, evts, nil
}

func (s *inventarioService) RegistrarMovimientoManual(ctx context.Context, usuarioID uuid.UUID, req dto.MovimientoManualRequest) (*dto.MovimientoResponse, error) {
	productoID, err := uuid.Parse(req.ProductoID)
	if err != nil {
		return nil, apierror.NewValidation("producto_id invalido")
	}
	if req.Tipo != model.MovimientoAjuste && req.Cantidad <= 0 {
		return nil, apierror.NewValidation("la cantidad debe ser mayor a cero")
	}

	referencia := req.Motivo
	if referencia == "" {
		referencia = "Movimiento manual"
	}

	var mov *model.MovimientoStock
	var evts []events.Evento
	txErr := runTx(ctx, s.productoRepo.DB(), func(tx *gorm.DB) error {
		var err error
		switch req.Tipo {
		case model.MovimientoEntrada:
			mov, evts, err = s.AplicarDeltaTx(ctx, tx, productoID, req.Cantidad, model.MovimientoEntrada, referencia, nil)
		case model.MovimientoSalida:
			mov, evts, err = s.AplicarDeltaTx(ctx, tx, productoID, -req.Cantidad, model.MovimientoSalida, referencia, nil)
		case model.MovimientoAjuste:
			mov, evts, err = s.AjustarStockTx(ctx, tx, productoID, req.Cantidad, referencia)
		default:
			err = apierror.NewValidation("tipo de movimiento invalido: " + req.Tipo)
		}
		return err
	})
	if txErr != nil {
		return nil, txErr
	}

	s.publicar(ctx, evts)
	return movimientoToResponse(mov), nil
}

// publicarEventos sends events to the sink after the transaction committed.
// Delivery is fire-and-forget; a nil sink (unit tests, degraded startup)
// drops them.
func publicarEventos(ctx context.Context, sink events.Sink, evts []events.Evento) {
	if sink == nil {
		return
	}
	for _, ev := range evts {
		sink.Publicar(ctx, ev)
	}
}

func (s *inventarioService) publicar(ctx context.Context, evts []events.Evento) {
	publicarEventos(ctx, s.sink, evts)
}

func (s *inventarioService) ObtenerKardex(ctx context.Context, productoID uuid.UUID) (*dto.KardexResponse, error) {
	p, err := s.productoRepo.FindByID(ctx, productoID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apierror.NewNotFound("producto", productoID.String())
		}
		return nil, apierror.NewPersistence("buscar producto", err)
	}

	movimientos, err := s.movRepo.ListByProducto(ctx, productoID)
	if err != nil {
		return nil, apierror.NewPersistence("listar kardex", err)
	}

	resp := &dto.KardexResponse{
		ProductoID:  p.ID.String(),
		Producto:    p.Nombre,
		StockActual: p.StockActual,
		Movimientos: make([]dto.MovimientoResponse, 0, len(movimientos)),
	}
	for i := range movimientos {
		resp.Movimientos = append(resp.Movimientos, *movimientoToResponse(&movimientos[i]))
	}
	return resp, nil
}

func (s *inventarioService) ListarMovimientos(ctx context.Context, filter dto.MovimientoFilter) (*dto.MovimientoListResponse, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 {
		filter.Limit = 100
	}
	movimientos, total, err := s.movRepo.List(ctx, filter)
	if err != nil {
		return nil, apierror.NewPersistence("listar movimientos", err)
	}
	items := make([]dto.MovimientoResponse, 0, len(movimientos))
	for i := range movimientos {
		items = append(items, *movimientoToResponse(&movimientos[i]))
	}
	return &dto.MovimientoListResponse{
		Data:  items,
		Total: total,
		Page:  filter.Page,
		Limit: filter.Limit,
	}, nil
}

func movimientoToResponse(m *model.MovimientoStock) *dto.MovimientoResponse {
	return &dto.MovimientoResponse{
		ID:            m.ID,
		ProductoID:    m.ProductoID.String(),
		Tipo:          m.Tipo,
		Cantidad:      m.Cantidad,
		StockAnterior: m.StockAnterior,
		StockNuevo:    m.StockNuevo,
		Referencia:    m.Referencia,
		CreatedAt:     m.CreatedAt.Format(time.RFC3339),
	}
}
