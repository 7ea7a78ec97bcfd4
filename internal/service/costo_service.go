package service

import (
	"context"
	"errors"

	"frhema/internal/apierror"
	"frhema/internal/dto"
	"frhema/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// CostoService is the read side of purchase-cost reporting: simple weighted
// average over the product's committed purchase lines. Pure and side-effect
// free — recomputed on every call, no caching.
type CostoService interface {
	ResumenCostos(ctx context.Context, productoID uuid.UUID) (*dto.ResumenCostosResponse, error)
}

type costoService struct {
	compraRepo   repository.CompraRepository
	productoRepo repository.ProductoRepository
}

func NewCostoService(compraRepo repository.CompraRepository, productoRepo repository.ProductoRepository) CostoService {
	return &costoService{compraRepo: compraRepo, productoRepo: productoRepo}
}

func (s *costoService) ResumenCostos(ctx context.Context, productoID uuid.UUID) (*dto.ResumenCostosResponse, error) {
	p, err := s.productoRepo.FindByID(ctx, productoID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apierror.NewNotFound("producto", productoID.String())
		}
		return nil, apierror.NewPersistence("buscar producto", err)
	}

	resumen, err := s.compraRepo.ResumenPorProducto(ctx, productoID)
	if err != nil {
		return nil, apierror.NewPersistence("resumen de compras", err)
	}

	// Without purchase history the stored purchase price is the best estimate.
	promedio := p.PrecioCompra
	costoTotal := resumen.CostoTotal
	if resumen.CantidadTotal > 0 {
		promedio = resumen.CostoTotal.DivRound(decimal.NewFromInt(int64(resumen.CantidadTotal)), 2)
	}

	stock := decimal.NewFromInt(int64(p.StockActual))
	capital := promedio.Mul(stock).Round(2)
	margen := p.PrecioUnitario.Mul(stock).Sub(capital).Round(2)

	return &dto.ResumenCostosResponse{
		ProductoID:       p.ID.String(),
		CantidadTotal:    resumen.CantidadTotal,
		CostoPromedio:    promedio,
		CostoTotal:       costoTotal,
		CapitalInvertido: capital,
		MargenPotencial:  margen,
	}, nil
}
