package handler

import (
	"net/http"

	"frhema/internal/dto"
	"frhema/internal/middleware"
	"frhema/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type InventarioHandler struct{ svc service.InventarioService }

func NewInventarioHandler(svc service.InventarioService) *InventarioHandler {
	return &InventarioHandler{svc: svc}
}

// RegistrarMovimiento registers a manual ENTRADA, SALIDA or AJUSTE.
func (h *InventarioHandler) RegistrarMovimiento(c *gin.Context) {
	var req dto.MovimientoManualRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.RegistrarMovimientoManual(c.Request.Context(), usuarioID(c), req)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// Kardex returns a product's full movement history in insertion order.
// Mounted both under /inventario/kardex/:producto_id and /productos/:id/kardex.
func (h *InventarioHandler) Kardex(c *gin.Context) {
	param := "producto_id"
	if c.Param(param) == "" {
		param = "id"
	}
	id, ok := pathUUID(c, param)
	if !ok {
		return
	}
	resp, err := h.svc.ObtenerKardex(c.Request.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *InventarioHandler) ListarMovimientos(c *gin.Context) {
	var filter dto.MovimientoFilter
	if !bindQuery(c, &filter) {
		return
	}
	resp, err := h.svc.ListarMovimientos(c.Request.Context(), filter)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// usuarioID extracts the authenticated user id from the JWT claims. Routes
// using this sit behind JWTAuth, so a missing or malformed claim means the
// middleware chain is broken, not the request.
func usuarioID(c *gin.Context) uuid.UUID {
	claims, ok := middleware.GetClaims(c)
	if !ok {
		return uuid.Nil
	}
	id, err := uuid.Parse(claims.UserID)
	if err != nil {
		return uuid.Nil
	}
	return id
}
