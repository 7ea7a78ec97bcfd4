package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Venta is a sale header. TipoComprobante: "BOLETA" | "FACTURA".
// MetodoPago: "efectivo" | "tarjeta" | "transferencia" | "yape" | "plin".
// When IncluyeIGV is true the total already carries the 18% tax and
// MontoBase/MontoIGV are derived from it; otherwise MontoIGV is zero.
type Venta struct {
	ID              uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	UsuarioID       uuid.UUID       `gorm:"type:uuid;not null"`
	ClienteID       *uuid.UUID      `gorm:"type:uuid;index"`
	TipoComprobante string          `gorm:"type:varchar(20);not null"`
	NroComprobante  string          `gorm:"not null"`
	MetodoPago      string          `gorm:"type:varchar(20);not null"`
	IncluyeIGV      bool            `gorm:"not null;default:false;column:incluye_igv"`
	MontoBase       decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	MontoIGV        decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0;column:monto_igv"`
	Total           decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	CreatedAt       time.Time

	Usuario  *Usuario       `gorm:"foreignKey:UsuarioID"`
	Cliente  *Cliente       `gorm:"foreignKey:ClienteID"`
	Detalles []DetalleVenta `gorm:"foreignKey:VentaID"`
}

// DetalleVenta is one sale line. Subtotal = Cantidad × PrecioUnitario − Descuento,
// always computed server-side.
type DetalleVenta struct {
	ID             uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	VentaID        uuid.UUID       `gorm:"type:uuid;not null;index"`
	ProductoID     uuid.UUID       `gorm:"type:uuid;not null;index"`
	Cantidad       int             `gorm:"not null"`
	PrecioUnitario decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	Descuento      decimal.Decimal `gorm:"type:decimal(10,2);not null;default:0"`
	Subtotal       decimal.Decimal `gorm:"type:decimal(12,2);not null"`

	Producto *Producto `gorm:"foreignKey:ProductoID"`
}

func (DetalleVenta) TableName() string { return "detalle_ventas" }
