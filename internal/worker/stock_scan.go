package worker

// stock_scan.go
// Background goroutine that periodically scans for products at or below their
// stock_minimo and publishes stock_bajo events. Read-only: it never touches
// the transactional path.

import (
	"context"
	"time"

	"frhema/internal/events"
	"frhema/internal/repository"

	"github.com/rs/zerolog/log"
)

// StartStockScan launches the periodic low-stock scan. It respects the
// context for graceful shutdown.
func StartStockScan(ctx context.Context, repo repository.ProductoRepository, sink events.Sink, interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		log.Info().Dur("interval", interval).Msg("stock_scan: started")

		for {
			select {
			case <-ctx.Done():
				log.Info().Msg("stock_scan: shutting down")
				return
			case <-ticker.C:
				scan(ctx, repo, sink)
			}
		}
	}()
}

func scan(ctx context.Context, repo repository.ProductoRepository, sink events.Sink) {
	productos, err := repo.ListStockCritico(ctx, nil)
	if err != nil {
		log.Error().Err(err).Msg("stock_scan: query failed")
		return
	}
	for i := range productos {
		p := &productos[i]
		sink.Publicar(ctx, events.Evento{
			Tipo:          events.TipoStockBajo,
			ProductoID:    p.ID,
			Producto:      p.Nombre,
			StockAnterior: p.StockActual,
			StockNuevo:    p.StockActual,
			Detalle:       "stock por debajo del minimo",
			Fecha:         time.Now(),
		})
	}
	if len(productos) > 0 {
		log.Info().Int("productos", len(productos)).Msg("stock_scan: alertas publicadas")
	}
}
