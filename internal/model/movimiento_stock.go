package model

import (
	"time"

	"github.com/google/uuid"
)

// Movement types. Direction is determined by Tipo plus StockAnterior/StockNuevo;
// Cantidad is always an unsigned magnitude, so there is no sign ambiguity
// between entries, exits and adjustments.
const (
	MovimientoEntrada = "ENTRADA"
	MovimientoSalida  = "SALIDA"
	MovimientoAjuste  = "AJUSTE"
	MovimientoVenta   = "VENTA"
)

// MovimientoStock is one record of a product's kardex: the append-only ordered
// log of stock changes. Records are immutable — never updated or deleted.
// The ID is a bigserial, so ordering by id is the chronological order and the
// latest movement's StockNuevo always equals the product's StockActual.
type MovimientoStock struct {
	ID            int64     `gorm:"primaryKey;autoIncrement"`
	ProductoID    uuid.UUID `gorm:"type:uuid;not null;index"`
	Tipo          string    `gorm:"type:varchar(20);not null"`
	Cantidad      int       `gorm:"not null"`
	StockAnterior int       `gorm:"not null"`
	StockNuevo    int       `gorm:"not null"`
	Referencia    string
	// ReferenciaID links to the compra or venta that produced the movement.
	ReferenciaID *uuid.UUID `gorm:"type:uuid"`
	CreatedAt    time.Time

	Producto *Producto `gorm:"foreignKey:ProductoID"`
}

// TableName overrides GORM's default pluralization (movimiento_stocks → movimientos_stock).
func (MovimientoStock) TableName() string { return "movimientos_stock" }
