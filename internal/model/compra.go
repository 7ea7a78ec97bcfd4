package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Compra is a purchase order header. Once committed it is immutable, as are
// its lines — corrections go through manual stock movements, never edits.
type Compra struct {
	ID           uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ProveedorID  uuid.UUID       `gorm:"type:uuid;not null;index"`
	UsuarioID    uuid.UUID       `gorm:"type:uuid;not null"`
	NroDocumento string          `gorm:"not null"`
	Fecha        time.Time       `gorm:"not null"`
	Total        decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	CreatedAt    time.Time

	Proveedor *Proveedor      `gorm:"foreignKey:ProveedorID"`
	Usuario   *Usuario        `gorm:"foreignKey:UsuarioID"`
	Detalles  []DetalleCompra `gorm:"foreignKey:CompraID"`
}

// DetalleCompra is one purchase line. Subtotal = Cantidad × CostoUnitario,
// always computed server-side.
type DetalleCompra struct {
	ID            uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	CompraID      uuid.UUID       `gorm:"type:uuid;not null;index"`
	ProductoID    uuid.UUID       `gorm:"type:uuid;not null;index"`
	Cantidad      int             `gorm:"not null"`
	CostoUnitario decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	Subtotal      decimal.Decimal `gorm:"type:decimal(12,2);not null"`

	Producto *Producto `gorm:"foreignKey:ProductoID"`
}

func (DetalleCompra) TableName() string { return "detalle_compras" }
