package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Producto is the authoritative current state of a catalog item.
// StockActual is never negative; Activo is re-derived from StockActual after
// every stock mutation (manual overrides via SetActivo survive only until the
// next mutation).
type Producto struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Codigo      string    `gorm:"uniqueIndex;not null"`
	Nombre      string    `gorm:"index;not null"`
	Descripcion *string
	CategoriaID *uuid.UUID `gorm:"type:uuid;index"`
	ProveedorID *uuid.UUID `gorm:"type:uuid;index"`
	// UnidadMedida: "unidad" | "caja" | "kg" | "m" | ...
	UnidadMedida string `gorm:"not null;default:'unidad'"`
	StockActual  int    `gorm:"not null;default:0"`
	StockMinimo  int    `gorm:"not null;default:3"`
	// PrecioUnitario is the retail sale price; PrecioMayor the wholesale one.
	PrecioUnitario decimal.Decimal  `gorm:"type:decimal(10,2);not null"`
	PrecioMayor    *decimal.Decimal `gorm:"type:decimal(10,2)"`
	// PrecioCompra is the last known purchase cost — fallback for the cost
	// summary when the product has no purchase history yet.
	PrecioCompra decimal.Decimal `gorm:"type:decimal(10,2);not null;default:0"`
	Activo       bool            `gorm:"not null;default:true"`
	CreatedAt    time.Time
	UpdatedAt    time.Time

	Categoria *Categoria `gorm:"foreignKey:CategoriaID"`
	Proveedor *Proveedor `gorm:"foreignKey:ProveedorID"`
}
