package dto

import "github.com/shopspring/decimal"

// ProductoFilter is bound from the query string of GET /v1/productos.
type ProductoFilter struct {
	Codigo      string `form:"codigo"`
	Nombre      string `form:"nombre"`
	CategoriaID string `form:"categoria_id"`
	ProveedorID string `form:"proveedor_id"`
	// Activo: "false" = inactivos, "all" = todos, anything else = activos
	Activo string `form:"activo"`
	Page   int    `form:"page,default=1"   validate:"min=1"`
	Limit  int    `form:"limit,default=50" validate:"min=1,max=200"`
}

type CrearProductoRequest struct {
	Codigo         string           `json:"codigo"       validate:"required"`
	Nombre         string           `json:"nombre"       validate:"required"`
	Descripcion    *string          `json:"descripcion"`
	CategoriaID    *string          `json:"categoria_id" validate:"omitempty,uuid"`
	ProveedorID    *string          `json:"proveedor_id" validate:"omitempty,uuid"`
	UnidadMedida   string           `json:"unidad_medida"`
	StockInicial   int              `json:"stock_inicial" validate:"min=0"`
	StockMinimo    int              `json:"stock_minimo"  validate:"min=0"`
	PrecioUnitario decimal.Decimal  `json:"precio_unitario" validate:"required,min=0"`
	PrecioMayor    *decimal.Decimal `json:"precio_mayor"`
	PrecioCompra   decimal.Decimal  `json:"precio_compra" validate:"min=0"`
}

type ActualizarProductoRequest struct {
	Nombre         *string          `json:"nombre"`
	Descripcion    *string          `json:"descripcion"`
	CategoriaID    *string          `json:"categoria_id" validate:"omitempty,uuid"`
	ProveedorID    *string          `json:"proveedor_id" validate:"omitempty,uuid"`
	UnidadMedida   *string          `json:"unidad_medida"`
	StockMinimo    *int             `json:"stock_minimo" validate:"omitempty,min=0"`
	PrecioUnitario *decimal.Decimal `json:"precio_unitario"`
	PrecioMayor    *decimal.Decimal `json:"precio_mayor"`
	PrecioCompra   *decimal.Decimal `json:"precio_compra"`
}

// SetActivoRequest is the manual override of the derived active flag. The next
// stock mutation re-derives the flag from stock again.
type SetActivoRequest struct {
	Activo *bool `json:"activo" validate:"required"`
}

type ProductoResponse struct {
	ID             string           `json:"id"`
	Codigo         string           `json:"codigo"`
	Nombre         string           `json:"nombre"`
	Descripcion    *string          `json:"descripcion,omitempty"`
	CategoriaID    *string          `json:"categoria_id,omitempty"`
	ProveedorID    *string          `json:"proveedor_id,omitempty"`
	UnidadMedida   string           `json:"unidad_medida"`
	StockActual    int              `json:"stock_actual"`
	StockMinimo    int              `json:"stock_minimo"`
	PrecioUnitario decimal.Decimal  `json:"precio_unitario"`
	PrecioMayor    *decimal.Decimal `json:"precio_mayor,omitempty"`
	PrecioCompra   decimal.Decimal  `json:"precio_compra"`
	Activo         bool             `json:"activo"`
	CreatedAt      string           `json:"created_at"`
}

type ProductoListResponse struct {
	Data  []ProductoResponse `json:"data"`
	Total int64              `json:"total"`
	Page  int                `json:"page"`
	Limit int                `json:"limit"`
}
