// Package events defines the notification events emitted by the inventory
// engine (lifecycle transitions, stock corrections, low-stock alerts) and the
// sink they are published to. Publication is fire-and-forget and happens AFTER
// the surrounding transaction commits — a lost event never implies lost stock.
package events

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

const (
	// TipoProductoSuspendido: stock reached exactly 0, product deactivated.
	TipoProductoSuspendido = "producto_suspendido"
	// TipoProductoReactivado: stock rose above 0, product reactivated.
	TipoProductoReactivado = "producto_reactivado"
	// TipoCorreccionStock: a delta would have driven stock negative and was
	// clamped to zero. Non-fatal — repair/adjustment paths only.
	TipoCorreccionStock = "correccion_stock"
	// TipoStockBajo: periodic scan found stock at or below the minimum.
	TipoStockBajo = "stock_bajo"
)

// Evento is one notification record.
type Evento struct {
	Tipo          string    `json:"tipo"`
	ProductoID    uuid.UUID `json:"producto_id"`
	Producto      string    `json:"producto"`
	StockAnterior int       `json:"stock_anterior"`
	StockNuevo    int       `json:"stock_nuevo"`
	Detalle       string    `json:"detalle,omitempty"`
	Fecha         time.Time `json:"fecha"`
}

// Sink receives events. Implementations must not block the caller on delivery
// failures; errors are logged, never propagated into the transactional path.
type Sink interface {
	Publicar(ctx context.Context, ev Evento)
}

// Collector is an in-memory Sink for tests and for running without redis.
// Safe for concurrent publishers.
type Collector struct {
	mu      sync.Mutex
	eventos []Evento
}

func (c *Collector) Publicar(_ context.Context, ev Evento) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.eventos = append(c.eventos, ev)
}

// Eventos returns a snapshot of everything published so far.
func (c *Collector) Eventos() []Evento {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Evento, len(c.eventos))
	copy(out, c.eventos)
	return out
}
