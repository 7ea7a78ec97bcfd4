package dto

// MovimientoManualRequest registers an ENTRADA/SALIDA/AJUSTE against a product.
// ENTRADA and SALIDA apply cantidad as +/−; AJUSTE sets stock directly to
// cantidad (the engine computes the delta internally).
type MovimientoManualRequest struct {
	ProductoID string `json:"producto_id" validate:"required,uuid"`
	Tipo       string `json:"tipo"        validate:"required,oneof=ENTRADA SALIDA AJUSTE"`
	Cantidad   int    `json:"cantidad"    validate:"min=0"`
	Motivo     string `json:"motivo"`
}

type MovimientoResponse struct {
	ID            int64  `json:"id"`
	ProductoID    string `json:"producto_id"`
	Tipo          string `json:"tipo"`
	Cantidad      int    `json:"cantidad"`
	StockAnterior int    `json:"stock_anterior"`
	StockNuevo    int    `json:"stock_nuevo"`
	Referencia    string `json:"referencia,omitempty"`
	CreatedAt     string `json:"created_at"`
}

// KardexResponse is a product's full movement history, ordered by id.
type KardexResponse struct {
	ProductoID  string               `json:"producto_id"`
	Producto    string               `json:"producto"`
	StockActual int                  `json:"stock_actual"`
	Movimientos []MovimientoResponse `json:"movimientos"`
}

type MovimientoFilter struct {
	ProductoID string `form:"producto_id" validate:"omitempty,uuid"`
	Tipo       string `form:"tipo"        validate:"omitempty,oneof=ENTRADA SALIDA AJUSTE VENTA"`
	Page       int    `form:"page,default=1"    validate:"min=1"`
	Limit      int    `form:"limit,default=100" validate:"min=1,max=500"`
}

type MovimientoListResponse struct {
	Data  []MovimientoResponse `json:"data"`
	Total int64                `json:"total"`
	Page  int                  `json:"page"`
	Limit int                  `json:"limit"`
}

// StockCriticoFilter tunes the low-stock listing. When Limite is nil each
// product is compared against its own stock_minimo (or 3 when unset).
type StockCriticoFilter struct {
	Limite *int `form:"limite" validate:"omitempty,min=0"`
}
