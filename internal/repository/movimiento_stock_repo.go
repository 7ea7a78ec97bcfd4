package repository

import (
	"context"

	"frhema/internal/dto"
	"frhema/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// MovimientoStockRepository is the append-only kardex store. There is no
// Update or Delete — movements are immutable once written.
type MovimientoStockRepository interface {
	// CreateTx appends a movement inside the caller's transaction so the
	// record commits or rolls back together with the stock change it mirrors.
	CreateTx(tx *gorm.DB, m *model.MovimientoStock) error
	// ListByProducto returns the product's complete kardex ordered by id
	// ascending — a finite restartable sequence, not a live stream.
	ListByProducto(ctx context.Context, productoID uuid.UUID) ([]model.MovimientoStock, error)
	List(ctx context.Context, filter dto.MovimientoFilter) ([]model.MovimientoStock, int64, error)
}

type movimientoStockRepo struct{ db *gorm.DB }

func NewMovimientoStockRepository(db *gorm.DB) MovimientoStockRepository {
	return &movimientoStockRepo{db: db}
}

func (r *movimientoStockRepo) CreateTx(tx *gorm.DB, m *model.MovimientoStock) error {
	return tx.Create(m).Error
}

func (r *movimientoStockRepo) ListByProducto(ctx context.Context, productoID uuid.UUID) ([]model.MovimientoStock, error) {
	var movimientos []model.MovimientoStock
	err := r.db.WithContext(ctx).
		Where("producto_id = ?", productoID).
		Order("id ASC").
		Find(&movimientos).Error
	return movimientos, err
}

func (r *movimientoStockRepo) List(ctx context.Context, filter dto.MovimientoFilter) ([]model.MovimientoStock, int64, error) {
	q := r.db.WithContext(ctx).Model(&model.MovimientoStock{}).Preload("Producto")
	if filter.ProductoID != "" {
		q = q.Where("producto_id = ?", filter.ProductoID)
	}
	if filter.Tipo != "" {
		q = q.Where("tipo = ?", filter.Tipo)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (filter.Page - 1) * filter.Limit
	var movimientos []model.MovimientoStock
	err := q.Order("id DESC").Offset(offset).Limit(filter.Limit).Find(&movimientos).Error
	return movimientos, total, err
}
