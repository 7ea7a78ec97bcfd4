package dto

import "github.com/shopspring/decimal"

type DetalleCompraRequest struct {
	ProductoID    string          `json:"producto_id"    validate:"required,uuid"`
	Cantidad      int             `json:"cantidad"       validate:"required,min=1"`
	CostoUnitario decimal.Decimal `json:"costo_unitario" validate:"min=0"`
}

type RegistrarCompraRequest struct {
	ProveedorID  string                 `json:"proveedor_id"  validate:"required,uuid"`
	NroDocumento string                 `json:"nro_documento" validate:"required"`
	// Fecha: YYYY-MM-DD; empty = today
	Fecha    string                 `json:"fecha"`
	Detalles []DetalleCompraRequest `json:"detalles" validate:"required,min=1,dive"`
}

type DetalleCompraResponse struct {
	Producto      string          `json:"producto"`
	Cantidad      int             `json:"cantidad"`
	CostoUnitario decimal.Decimal `json:"costo_unitario"`
	Subtotal      decimal.Decimal `json:"subtotal"`
}

type CompraResponse struct {
	ID           string                  `json:"id"`
	ProveedorID  string                  `json:"proveedor_id"`
	NroDocumento string                  `json:"nro_documento"`
	Fecha        string                  `json:"fecha"`
	Total        decimal.Decimal         `json:"total"`
	Detalles     []DetalleCompraResponse `json:"detalles"`
}

type CompraFilter struct {
	ProveedorID string `form:"proveedor_id"`
	Desde       string `form:"desde"`
	Hasta       string `form:"hasta"`
	Page        int    `form:"page,default=1"   validate:"min=1"`
	Limit       int    `form:"limit,default=50" validate:"min=1,max=200"`
}

type CompraListResponse struct {
	Data  []CompraResponse `json:"data"`
	Total int64            `json:"total"`
	Page  int              `json:"page"`
	Limit int              `json:"limit"`
}

// ResumenCostosResponse is the weighted-average purchase cost summary of a
// product, recomputed on demand from its committed purchase lines.
type ResumenCostosResponse struct {
	ProductoID      string          `json:"producto_id"`
	CantidadTotal   int             `json:"cantidad_total"`
	CostoPromedio   decimal.Decimal `json:"costo_promedio"`
	CostoTotal      decimal.Decimal `json:"costo_total"`
	CapitalInvertido decimal.Decimal `json:"capital_invertido"`
	MargenPotencial  decimal.Decimal `json:"margen_potencial"`
}
