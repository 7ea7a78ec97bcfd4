package middleware

import (
	"errors"
	"net/http"
	"time"

	"frhema/internal/apierror"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// ErrorHandler translates the typed error taxonomy into HTTP status codes.
// Handlers push errors with c.Error and return; everything after that is
// decided here with errors.As, never by matching message text.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}
		err := c.Errors.Last().Err

		var vErr *apierror.ValidationError
		if errors.As(err, &vErr) {
			c.JSON(http.StatusUnprocessableEntity, vErr)
			return
		}

		var stockErr *apierror.InsufficientStockError
		if errors.As(err, &stockErr) {
			c.JSON(http.StatusConflict, gin.H{
				"detail":      stockErr.Error(),
				"producto_id": stockErr.ProductoID,
				"solicitado":  stockErr.Solicitado,
				"disponible":  stockErr.Disponible,
			})
			return
		}

		var nfErr *apierror.NotFoundError
		if errors.As(err, &nfErr) {
			c.JSON(http.StatusNotFound, apierror.New(nfErr.Error()))
			return
		}

		var pErr *apierror.PersistenceError
		if errors.As(err, &pErr) {
			log.Error().Err(pErr.Err).Str("op", pErr.Op).Msg("error de persistencia")
			c.JSON(http.StatusInternalServerError, apierror.New("Error interno del servidor"))
			return
		}

		log.Error().Err(err).Str("path", c.Request.URL.Path).Msg("error no clasificado")
		c.JSON(http.StatusInternalServerError, apierror.New("Error interno del servidor"))
	}
}

// Logger emits one structured line per request.
func Logger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		log.Info().
			Str("request_id", c.GetString(RequestIDKey)).
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", c.Writer.Status()).
			Dur("latency", time.Since(start)).
			Msg("request")
	}
}

// Recovery turns panics into clean 500s instead of dropping the connection.
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				log.Error().
					Interface("panic", r).
					Str("path", c.Request.URL.Path).
					Msg("panic recuperado")
				c.AbortWithStatusJSON(http.StatusInternalServerError,
					apierror.New("Error interno del servidor"))
			}
		}()
		c.Next()
	}
}
