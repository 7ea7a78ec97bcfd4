package dto

import "github.com/shopspring/decimal"

type DetalleVentaRequest struct {
	ProductoID     string          `json:"producto_id"     validate:"required,uuid"`
	Cantidad       int             `json:"cantidad"        validate:"required,min=1"`
	PrecioUnitario decimal.Decimal `json:"precio_unitario" validate:"min=0"`
	Descuento      decimal.Decimal `json:"descuento"       validate:"min=0"`
}

type RegistrarVentaRequest struct {
	ClienteID       *string               `json:"cliente_id" validate:"omitempty,uuid"`
	TipoComprobante string                `json:"tipo_comprobante" validate:"required,oneof=BOLETA FACTURA"`
	NroComprobante  string                `json:"nro_comprobante"  validate:"required"`
	MetodoPago      string                `json:"metodo_pago" validate:"required,oneof=efectivo tarjeta transferencia yape plin"`
	IncluyeIGV      bool                  `json:"incluye_igv"`
	Detalles        []DetalleVentaRequest `json:"detalles" validate:"required,min=1,dive"`
}

type DetalleVentaResponse struct {
	Producto       string          `json:"producto"`
	Cantidad       int             `json:"cantidad"`
	PrecioUnitario decimal.Decimal `json:"precio_unitario"`
	Descuento      decimal.Decimal `json:"descuento"`
	Subtotal       decimal.Decimal `json:"subtotal"`
}

type VentaResponse struct {
	ID              string                 `json:"id"`
	TipoComprobante string                 `json:"tipo_comprobante"`
	NroComprobante  string                 `json:"nro_comprobante"`
	MetodoPago      string                 `json:"metodo_pago"`
	IncluyeIGV      bool                   `json:"incluye_igv"`
	MontoBase       decimal.Decimal        `json:"monto_base"`
	MontoIGV        decimal.Decimal        `json:"monto_igv"`
	Total           decimal.Decimal        `json:"total"`
	Detalles        []DetalleVentaResponse `json:"detalles"`
	CreatedAt       string                 `json:"created_at"`
}

type VentaFilter struct {
	Fecha     string `form:"fecha"` // YYYY-MM-DD; empty = today
	ClienteID string `form:"cliente_id"`
	Page      int    `form:"page,default=1"   validate:"min=1"`
	Limit     int    `form:"limit,default=50" validate:"min=1,max=200"`
}

type VentaListResponse struct {
	Data  []VentaResponse `json:"data"`
	Total int64           `json:"total"`
	Page  int             `json:"page"`
	Limit int             `json:"limit"`
}
