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

// igvDivisor converts a tax-inclusive total into its base amount (IGV 18%).
var igvDivisor = decimal.NewFromFloat(1.18)

type VentaService interface {
	// RegistrarVenta validates the cart, re-checks stock per line under the
	// product row lock, and persists header + lines + stock exits + kardex
	// records as one atomic unit. Insufficient stock on ANY line rolls back
	// everything and returns InsufficientStockError.
	RegistrarVenta(ctx context.Context, usuarioID uuid.UUID, req dto.RegistrarVentaRequest) (*dto.VentaResponse, error)
	ObtenerPorID(ctx context.Context, id uuid.UUID) (*dto.VentaResponse, error)
	ListarVentas(ctx context.Context, filter dto.VentaFilter) (*dto.VentaListResponse, error)
}

type ventaService struct {
	repo         repository.VentaRepository
	productoRepo repository.ProductoRepository
	inventario   InventarioService
	sink         events.Sink
}

func NewVentaService(
	repo repository.VentaRepository,
	productoRepo repository.ProductoRepository,
	inventario InventarioService,
	sink events.Sink,
) VentaService {
	return &ventaService{repo: repo, productoRepo: productoRepo, inventario: inventario, sink: sink}
}

func (s *ventaService) RegistrarVenta(ctx context.Context, usuarioID uuid.UUID, req dto.RegistrarVentaRequest) (*dto.VentaResponse, error) {
	// Pre-flight validation — nothing is persisted on failure.
	if len(req.Detalles) == 0 {
		return nil, apierror.NewValidation("la venta debe tener al menos un detalle")
	}

	var clienteID *uuid.UUID
	if req.ClienteID != nil && *req.ClienteID != "" {
		cid, err := uuid.Parse(*req.ClienteID)
		if err != nil {
			return nil, apierror.NewValidation("cliente_id invalido")
		}
		clienteID = &cid
	}

	type lineaVenta struct {
		productoID uuid.UUID
		nombre     string
		cantidad   int
		precio     decimal.Decimal
		descuento  decimal.Decimal
		subtotal   decimal.Decimal
	}
	lineas := make([]lineaVenta, 0, len(req.Detalles))
	rawTotal := decimal.Zero
	for i, d := range req.Detalles {
		pid, err := uuid.Parse(d.ProductoID)
		if err != nil {
			return nil, apierror.NewValidation(fmt.Sprintf("detalle %d: producto_id invalido", i+1))
		}
		if d.Cantidad <= 0 {
			return nil, apierror.NewValidation(fmt.Sprintf("detalle %d: la cantidad debe ser mayor a cero", i+1))
		}
		if d.Descuento.IsNegative() {
			return nil, apierror.NewValidation(fmt.Sprintf("detalle %d: el descuento no puede ser negativo", i+1))
		}

		p, err := s.productoRepo.FindByID(ctx, pid)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, apierror.NewNotFound("producto", d.ProductoID)
			}
			return nil, apierror.NewPersistence("buscar producto", err)
		}

		// Advisory early check; the authoritative one runs inside the
		// transaction under the row lock.
		if d.Cantidad > p.StockActual {
			return nil, &apierror.InsufficientStockError{
				ProductoID: p.ID,
				Producto:   p.Nombre,
				Solicitado: d.Cantidad,
				Disponible: p.StockActual,
			}
		}

		precio := d.PrecioUnitario
		if precio.IsZero() {
			precio = p.PrecioUnitario
		}
		subtotal := precio.Mul(decimal.NewFromInt(int64(d.Cantidad))).Sub(d.Descuento).Round(2)
		rawTotal = rawTotal.Add(subtotal)
		lineas = append(lineas, lineaVenta{
			productoID: pid,
			nombre:     p.Nombre,
			cantidad:   d.Cantidad,
			precio:     precio,
			descuento:  d.Descuento,
			subtotal:   subtotal,
		})
	}

	base, igv, total := desglosarIGV(rawTotal, req.IncluyeIGV)

	var venta model.Venta
	var evts []events.Evento
	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		venta = model.Venta{
			UsuarioID:       usuarioID,
			ClienteID:       clienteID,
			TipoComprobante: req.TipoComprobante,
			NroComprobante:  req.NroComprobante,
			MetodoPago:      req.MetodoPago,
			IncluyeIGV:      req.IncluyeIGV,
			MontoBase:       base,
			MontoIGV:        igv,
			Total:           total,
		}
		for _, l := range lineas {
			venta.Detalles = append(venta.Detalles, model.DetalleVenta{
				ProductoID:     l.productoID,
				Cantidad:       l.cantidad,
				PrecioUnitario: l.precio,
				Descuento:      l.descuento,
				Subtotal:       l.subtotal,
			})
		}
		if err := s.repo.Create(ctx, tx, &venta); err != nil {
			return apierror.NewPersistence("crear venta", err)
		}

		referencia := fmt.Sprintf("Venta %s", req.NroComprobante)
		for _, l := range lineas {
			ventaRef := venta.ID
			_, lineEvts, err := s.inventario.DescontarVentaTx(ctx, tx, l.productoID, l.cantidad, referencia, &ventaRef)
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

	resp := ventaToResponse(&venta)
	for i, l := range lineas {
		resp.Detalles[i].Producto = l.nombre
	}
	return resp, nil
}

// desglosarIGV splits a cart total into base/tax/total. When the total already
// includes the 18% IGV: base = total / 1.18, tax = total − base. All amounts
// rounded to 2 decimals, half up.
func desglosarIGV(rawTotal decimal.Decimal, incluyeIGV bool) (base, igv, total decimal.Decimal) {
	total = rawTotal.Round(2)
	if !incluyeIGV {
		return total, decimal.Zero, total
	}
	base = total.DivRound(igvDivisor, 2)
	igv = total.Sub(base)
	return base, igv, total
}

func (s *ventaService) ObtenerPorID(ctx context.Context, id uuid.UUID) (*dto.VentaResponse, error) {
	venta, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apierror.NewNotFound("venta", id.String())
		}
		return nil, apierror.NewPersistence("buscar venta", err)
	}
	return ventaToResponse(venta), nil
}

func (s *ventaService) ListarVentas(ctx context.Context, filter dto.VentaFilter) (*dto.VentaListResponse, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 {
		filter.Limit = 50
	}
	ventas, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, apierror.NewPersistence("listar ventas", err)
	}
	items := make([]dto.VentaResponse, 0, len(ventas))
	for i := range ventas {
		items = append(items, *ventaToResponse(&ventas[i]))
	}
	return &dto.VentaListResponse{Data: items, Total: total, Page: filter.Page, Limit: filter.Limit}, nil
}

func ventaToResponse(v *model.Venta) *dto.VentaResponse {
	detalles := make([]dto.DetalleVentaResponse, 0, len(v.Detalles))
	for _, d := range v.Detalles {
		nombre := ""
		if d.Producto != nil {
			nombre = d.Producto.Nombre
		}
		detalles = append(detalles, dto.DetalleVentaResponse{
			Producto:       nombre,
			Cantidad:       d.Cantidad,
			PrecioUnitario: d.PrecioUnitario,
			Descuento:      d.Descuento,
			Subtotal:       d.Subtotal,
		})
	}
	return &dto.VentaResponse{
		ID:              v.ID.String(),
		TipoComprobante: v.TipoComprobante,
		NroComprobante:  v.NroComprobante,
		MetodoPago:      v.MetodoPago,
		IncluyeIGV:      v.IncluyeIGV,
		MontoBase:       v.MontoBase,
		MontoIGV:        v.MontoIGV,
		Total:           v.Total,
		Detalles:        detalles,
		CreatedAt:       v.CreatedAt.Format(time.RFC3339),
	}
}
