package worker

import (
	"context"
	"encoding/json"
	"time"

	"frhema/internal/events"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const QueueNotificaciones = "jobs:notificaciones"

// Dispatcher publishes inventory events into a Redis list consumed by the
// worker pool via BRPOP. It implements events.Sink: publication is
// fire-and-forget — a delivery failure is logged, never returned, so it can
// never disturb the transactional path that produced the event.
type Dispatcher struct {
	rdb *redis.Client
}

func NewDispatcher(rdb *redis.Client) *Dispatcher {
	return &Dispatcher{rdb: rdb}
}

func (d *Dispatcher) Publicar(ctx context.Context, ev events.Evento) {
	encoded, err := json.Marshal(ev)
	if err != nil {
		log.Error().Err(err).Str("tipo", ev.Tipo).Msg("dispatcher: marshal evento")
		return
	}
	if err := d.rdb.LPush(ctx, QueueNotificaciones, encoded).Err(); err != nil {
		log.Error().Err(err).Str("tipo", ev.Tipo).Msg("dispatcher: enqueue evento")
	}
}

// StartPool launches numWorkers goroutines consuming the notification queue.
// Each goroutine blocks on BRPOP — zero CPU when idle.
func StartPool(ctx context.Context, rdb *redis.Client, numWorkers int) {
	for i := 0; i < numWorkers; i++ {
		go runWorker(ctx, rdb, i)
	}
	log.Info().Msgf("worker pool started with %d workers", numWorkers)
}

func runWorker(ctx context.Context, rdb *redis.Client, id int) {
	for {
		select {
		case <-ctx.Done():
			log.Info().Msgf("worker %d shutting down", id)
			return
		default:
			// Blocking pop — waits up to 5s then loops to check ctx
			result, err := rdb.BRPop(ctx, 5*time.Second, QueueNotificaciones).Result()
			if err != nil {
				continue // timeout or context cancelled
			}
			if len(result) != 2 {
				continue
			}
			handleEvento(id, []byte(result[1]))
		}
	}
}

func handleEvento(workerID int, payload []byte) {
	var ev events.Evento
	if err := json.Unmarshal(payload, &ev); err != nil {
		log.Error().Err(err).Int("worker", workerID).Msg("evento malformado")
		return
	}

	entry := log.Info().
		Int("worker", workerID).
		Str("tipo", ev.Tipo).
		Str("producto_id", ev.ProductoID.String()).
		Str("producto", ev.Producto).
		Int("stock_anterior", ev.StockAnterior).
		Int("stock_nuevo", ev.StockNuevo)
	if ev.Detalle != "" {
		entry = entry.Str("detalle", ev.Detalle)
	}
	entry.Msg("notificacion de inventario")
}
