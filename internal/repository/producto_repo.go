package repository

import (
	"context"
	"errors"

	"frhema/internal/dto"
	"frhema/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ProductoRepository is the data access contract for products. Services depend
// on this interface, not on the concrete GORM implementation, enabling clean
// unit testing via in-memory stubs.
//
// All stock mutations go through the *Tx methods: the caller owns the
// transaction and must hold the row lock taken by FindForUpdateTx, so that
// concurrent mutations against the same product serialize at the storage layer.
type ProductoRepository interface {
	Create(ctx context.Context, p *model.Producto) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Producto, error)
	FindByCodigo(ctx context.Context, codigo string) (*model.Producto, error)
	List(ctx context.Context, filter dto.ProductoFilter) ([]model.Producto, int64, error)
	// Update writes the catalog metadata columns only; it never touches
	// stock_actual or activo.
	Update(ctx context.Context, p *model.Producto) error
	SetActivo(ctx context.Context, id uuid.UUID, activo bool) error
	ListStockCritico(ctx context.Context, limite *int) ([]model.Producto, error)

	// TieneReferencias reports whether any historical purchase or sale line
	// references the product. Referenced products must never be deleted.
	TieneReferencias(ctx context.Context, id uuid.UUID) (bool, error)
	Delete(ctx context.Context, id uuid.UUID) error

	// FindForUpdateTx locks the product row (SELECT ... FOR UPDATE) inside tx.
	FindForUpdateTx(tx *gorm.DB, id uuid.UUID) (*model.Producto, error)
	// UpdateStockActivoTx persists the new stock level and derived active flag.
	// Must be called with the row lock from FindForUpdateTx still held.
	UpdateStockActivoTx(tx *gorm.DB, id uuid.UUID, stock int, activo bool) error

	// DB exposes the underlying *gorm.DB so services can open transactions.
	DB() *gorm.DB
}

var ErrProductoReferenciado = errors.New("el producto tiene movimientos historicos y no puede eliminarse")

type productoRepo struct{ db *gorm.DB }

func NewProductoRepository(db *gorm.DB) ProductoRepository { return &productoRepo{db: db} }

func (r *productoRepo) Create(ctx context.Context, p *model.Producto) error {
	return r.db.WithContext(ctx).Create(p).Error
}

func (r *productoRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Producto, error) {
	var p model.Producto
	err := r.db.WithContext(ctx).First(&p, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *productoRepo) FindByCodigo(ctx context.Context, codigo string) (*model.Producto, error) {
	var p model.Producto
	err := r.db.WithContext(ctx).Where("codigo = ?", codigo).First(&p).Error
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *productoRepo) List(ctx context.Context, filter dto.ProductoFilter) ([]model.Producto, int64, error) {
	var productos []model.Producto
	var total int64

	q := r.db.WithContext(ctx).Model(&model.Producto{})

	switch filter.Activo {
	case "false":
		q = q.Where("activo = false")
	case "all":
		// no filter
	default:
		q = q.Where("activo = true")
	}

	if filter.Codigo != "" {
		q = q.Where("codigo = ?", filter.Codigo)
	}
	if filter.Nombre != "" {
		q = q.Where("nombre ILIKE ?", "%"+filter.Nombre+"%")
	}
	if filter.CategoriaID != "" {
		q = q.Where("categoria_id = ?", filter.CategoriaID)
	}
	if filter.ProveedorID != "" {
		q = q.Where("proveedor_id = ?", filter.ProveedorID)
	}

	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (filter.Page - 1) * filter.Limit
	err := q.Order("nombre ASC").Limit(filter.Limit).Offset(offset).Find(&productos).Error
	return productos, total, err
}

// Update persists the editable catalog columns. stock_actual and activo are
// owned by the inventory engine and written only under the row lock via
// UpdateStockActivoTx; omitting them here keeps a metadata edit from clobbering
// a stock mutation that committed after the caller read the row.
func (r *productoRepo) Update(ctx context.Context, p *model.Producto) error {
	return r.db.WithContext(ctx).Omit("stock_actual", "activo").Save(p).Error
}

func (r *productoRepo) SetActivo(ctx context.Context, id uuid.UUID, activo bool) error {
	return r.db.WithContext(ctx).Model(&model.Producto{}).
		Where("id = ?", id).Update("activo", activo).Error
}

// ListStockCritico returns products at or below the threshold, worst first.
// limite == nil compares each product against its own stock_minimo, defaulting
// to 3 when stock_minimo is unset.
func (r *productoRepo) ListStockCritico(ctx context.Context, limite *int) ([]model.Producto, error) {
	var productos []model.Producto
	q := r.db.WithContext(ctx).Where("activo = true")
	if limite != nil {
		q = q.Where("stock_actual <= ?", *limite)
	} else {
		q = q.Where("stock_actual <= GREATEST(stock_minimo, 3)")
	}
	err := q.Order("stock_actual ASC").Limit(50).Find(&productos).Error
	return productos, err
}

func (r *productoRepo) TieneReferencias(ctx context.Context, id uuid.UUID) (bool, error) {
	var n int64
	if err := r.db.WithContext(ctx).Model(&model.DetalleCompra{}).
		Where("producto_id = ?", id).Count(&n).Error; err != nil {
		return false, err
	}
	if n > 0 {
		return true, nil
	}
	if err := r.db.WithContext(ctx).Model(&model.DetalleVenta{}).
		Where("producto_id = ?", id).Count(&n).Error; err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *productoRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&model.Producto{}, "id = ?", id).Error
}

func (r *productoRepo) FindForUpdateTx(tx *gorm.DB, id uuid.UUID) (*model.Producto, error) {
	var p model.Producto
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&p, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *productoRepo) UpdateStockActivoTx(tx *gorm.DB, id uuid.UUID, stock int, activo bool) error {
	return tx.Model(&model.Producto{}).Where("id = ?", id).
		Updates(map[string]interface{}{"stock_actual": stock, "activo": activo}).Error
}

func (r *productoRepo) DB() *gorm.DB { return r.db }
