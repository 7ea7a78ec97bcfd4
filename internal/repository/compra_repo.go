package repository

import (
	"context"

	"frhema/internal/dto"
	"frhema/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ResumenCompras aggregates a product's committed purchase lines.
type ResumenCompras struct {
	CantidadTotal int
	CostoTotal    decimal.Decimal
}

type CompraRepository interface {
	Create(ctx context.Context, tx *gorm.DB, c *model.Compra) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Compra, error)
	List(ctx context.Context, filter dto.CompraFilter) ([]model.Compra, int64, error)
	// ResumenPorProducto sums cantidad and subtotal over detalle_compras for
	// one product — the read side of the weighted-average cost computation.
	ResumenPorProducto(ctx context.Context, productoID uuid.UUID) (*ResumenCompras, error)
	DB() *gorm.DB
}

type compraRepo struct{ db *gorm.DB }

func NewCompraRepository(db *gorm.DB) CompraRepository { return &compraRepo{db: db} }

func (r *compraRepo) Create(ctx context.Context, tx *gorm.DB, c *model.Compra) error {
	return tx.WithContext(ctx).Create(c).Error
}

func (r *compraRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Compra, error) {
	var c model.Compra
	err := r.db.WithContext(ctx).
		Preload("Detalles.Producto").Preload("Proveedor").
		First(&c, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *compraRepo) List(ctx context.Context, filter dto.CompraFilter) ([]model.Compra, int64, error) {
	q := r.db.WithContext(ctx).Model(&model.Compra{})
	if filter.ProveedorID != "" {
		q = q.Where("proveedor_id = ?", filter.ProveedorID)
	}
	if filter.Desde != "" {
		q = q.Where("fecha >= ?", filter.Desde)
	}
	if filter.Hasta != "" {
		q = q.Where("fecha <= ?", filter.Hasta)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (filter.Page - 1) * filter.Limit
	var compras []model.Compra
	err := q.Preload("Detalles.Producto").
		Order("fecha DESC").Offset(offset).Limit(filter.Limit).
		Find(&compras).Error
	return compras, total, err
}

func (r *compraRepo) ResumenPorProducto(ctx context.Context, productoID uuid.UUID) (*ResumenCompras, error) {
	var row struct {
		Cantidad int
		Costo    decimal.Decimal
	}
	err := r.db.WithContext(ctx).Model(&model.DetalleCompra{}).
		Select("COALESCE(SUM(cantidad), 0) AS cantidad, COALESCE(SUM(subtotal), 0) AS costo").
		Where("producto_id = ?", productoID).
		Scan(&row).Error
	if err != nil {
		return nil, err
	}
	return &ResumenCompras{CantidadTotal: row.Cantidad, CostoTotal: row.Costo}, nil
}

func (r *compraRepo) DB() *gorm.DB { return r.db }
