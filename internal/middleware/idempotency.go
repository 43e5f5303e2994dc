package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/SscSPs/ledger_engine/internal/apperrors"
	portsrepo "github.com/SscSPs/ledger_engine/internal/core/ports/repositories"
	"github.com/gin-gonic/gin"
)

// IdempotencyHeader is the request header holding a client chosen idempotency key.
const IdempotencyHeader = "Idempotency-Key"

// Idempotency rejects a repeated Idempotency-Key with 409 while the key is held.
// Requests without the header pass through, as do all requests when store is nil.
// A key is released again when the request does not succeed.
func Idempotency(store portsrepo.IdempotencyStore, ttl time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.GetHeader(IdempotencyHeader)
		if store == nil || key == "" {
			c.Next()
			return
		}

		logger := GetLoggerFromContext(c)
		scopedKey := "idempotency:" + c.Request.Method + ":" + c.Request.URL.Path + ":" + key

		reserved, err := store.Reserve(c.Request.Context(), scopedKey, ttl)
		if err != nil {
			// The ledger write stays correct without the key; only duplicate suppression is lost.
			logger.Warn("Idempotency store unavailable, continuing without reservation",
				slog.String("idempotency_key", key), slog.String("error", err.Error()))
			c.Next()
			return
		}
		if !reserved {
			logger.Info("Duplicate idempotency key rejected", slog.String("idempotency_key", key))
			c.AbortWithStatusJSON(http.StatusConflict, gin.H{"error": apperrors.ErrConflict.Error()})
			return
		}

		c.Next()

		if status := c.Writer.Status(); status < 200 || status >= 300 {
			// The client may already be gone; the key still has to be freed.
			if err := store.Release(context.WithoutCancel(c.Request.Context()), scopedKey); err != nil {
				logger.Warn("Failed to release idempotency key",
					slog.String("idempotency_key", key), slog.String("error", err.Error()))
			}
		}
	}
}
