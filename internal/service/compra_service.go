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
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type CompraService interface {
	// RegistrarCompra persists the purchase header, its lines with computed
	// subtotals, and every per-line stock entry as one atomic unit of work.
	// Any failure rolls back everything: no header, no lines, no stock change.
	RegistrarCompra(ctx context.Context, usuarioID uuid.UUID, req dto.RegistrarCompraRequest) (*dto.CompraResponse, error)
	ObtenerPorID(ctx context.Context, id uuid.UUID) (*dto.CompraResponse, error)
	ListarCompras(ctx context.Context, filter dto.CompraFilter) (*dto.CompraListResponse, error)
}

type compraService struct {
	repo          repository.CompraRepository
	proveedorRepo repository.ProveedorRepository
	inventario    InventarioService
	sink          events.Sink
}

func NewCompraService(
	repo repository.CompraRepository,
	proveedorRepo repository.ProveedorRepository,
	inventario InventarioService,
	sink events.Sink,
) CompraService {
	return &compraService{repo: repo, proveedorRepo: proveedorRepo, inventario: inventario, sink: sink}
}

func (s *compraService) RegistrarCompra(ctx context.Context, usuarioID uuid.UUID, req dto.RegistrarCompraRequest) (*dto.CompraResponse, error) {
	// Pre-flight validation — nothing is persisted on failure.
	proveedorID, err := uuid.Parse(req.ProveedorID)
	if err != nil {
		return nil, apierror.NewValidation("proveedor_id invalido")
	}
	if len(req.Detalles) == 0 {
		return nil, apierror.NewValidation("la compra debe tener al menos un detalle")
	}

	type lineaCompra struct {
		productoID uuid.UUID
		cantidad   int
		costo      decimal.Decimal
		subtotal   decimal.Decimal
	}
	lineas := make([]lineaCompra, 0, len(req.Detalles))
	total := decimal.Zero
	for i, d := range req.Detalles {
		pid, err := uuid.Parse(d.ProductoID)
		if err != nil {
			return nil, apierror.NewValidation(fmt.Sprintf("detalle %d: producto_id invalido", i+1))
		}
		if d.Cantidad <= 0 {
			return nil, apierror.NewValidation(fmt.Sprintf("detalle %d: la cantidad debe ser mayor a cero", i+1))
		}
		if d.CostoUnitario.IsNegative() {
			return nil, apierror.NewValidation(fmt.Sprintf("detalle %d: el costo unitario no puede ser negativo", i+1))
		}
		subtotal := d.CostoUnitario.Mul(decimal.NewFromInt(int64(d.Cantidad))).Round(2)
		total = total.Add(subtotal)
		lineas = append(lineas, lineaCompra{productoID: pid, cantidad: d.Cantidad, costo: d.CostoUnitario, subtotal: subtotal})
	}

	if _, err := s.proveedorRepo.FindByID(ctx, proveedorID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apierror.NewNotFound("proveedor", req.ProveedorID)
		}
		return nil, apierror.NewPersistence("buscar proveedor", err)
	}

	fecha := time.Now()
	if req.Fecha != "" {
		parsed, err := time.Parse("2006-01-02", req.Fecha)
		if err != nil {
			return nil, apierror.NewValidation("fecha invalida, formato esperado YYYY-MM-DD")
		}
		fecha = parsed
	}

	var compra model.Compra
	var evts []events.Evento
	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		compra = model.Compra{
			ProveedorID:  proveedorID,
			UsuarioID:    usuarioID,
			NroDocumento: req.NroDocumento,
			Fecha:        fecha,
			Total:        total,
		}
		for _, l := range lineas {
			compra.Detalles = append(compra.Detalles, model.DetalleCompra{
				ProductoID:    l.productoID,
				Cantidad:      l.cantidad,
				CostoUnitario: l.costo,
				Subtotal:      l.subtotal,
			})
		}
		if err := s.repo.Create(ctx, tx, &compra); err != nil {
			return apierror.NewPersistence("crear compra", err)
		}

		referencia := fmt.Sprintf("Compra %s", req.NroDocumento)
		for _, l := range lineas {
			compraRef := compra.ID
			_, lineEvts, err := s.inventario.AplicarDeltaTx(ctx, tx, l.productoID, l.cantidad, model.MovimientoEntrada, referencia, &compraRef)
			if err != nil {
				return err
			}
			evts = append(evts, lineEvts...)
		}
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}

	publicarEventos(ctx, s.sink, evts)

	return compraToResponse(&compra), nil
}

func (s *compraService) ObtenerPorID(ctx context.Context, id uuid.UUID) (*dto.CompraResponse, error) {
	compra, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apierror.NewNotFound("compra", id.String())
		}
		return nil, apierror.NewPersistence("buscar compra", err)
	}
	return compraToResponse(compra), nil
}

func (s *compraService) ListarCompras(ctx context.Context, filter dto.CompraFilter) (*dto.CompraListResponse, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 {
		filter.Limit = 50
	}
	compras, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, apierror.NewPersistence("listar compras", err)
	}
	items := make([]dto.CompraResponse, 0, len(compras))
	for i := range compras {
		items = append(items, *compraToResponse(&compras[i]))
	}
	return &dto.CompraListResponse{Data: items, Total: total, Page: filter.Page, Limit: filter.Limit}, nil
}

func compraToResponse(c *model.Compra) *dto.CompraResponse {
	detalles := make([]dto.DetalleCompraResponse, 0, len(c.Detalles))
	for _, d := range c.Detalles {
		nombre := ""
		if d.Producto != nil {
			nombre = d.Producto.Nombre
		}
		detalles = append(detalles, dto.DetalleCompraResponse{
			Producto:      nombre,
			Cantidad:      d.Cantidad,
			CostoUnitario: d.CostoUnitario,
			Subtotal:      d.Subtotal,
		})
	}
	return &dto.CompraResponse{
		ID:           c.ID.String(),
		ProveedorID:  c.ProveedorID.String(),
		NroDocumento: c.NroDocumento,
		Fecha:        c.Fecha.Format("2006-01-02"),
		Total:        c.Total,
		Detalles:     detalles,
	}
}
