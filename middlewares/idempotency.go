package middlewares

import (
	"bytes"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/konnn04/food-app-server/pkg/idempotency"
	"github.com/konnn04/food-app-server/pkg/resp"
	"github.com/konnn04/food-app-server/utils"
	"go.uber.org/zap"
)

const (
	IdempotencyHeader = "Idempotency-Key"
	ReplayedHeader    = "Idempotent-Replayed"
)

type bodyRecorder struct {
	gin.ResponseWriter
	body bytes.Buffer
}

func (w *bodyRecorder) Write(b []byte) (int, error) {
	w.body.Write(b)
	return w.ResponseWriter.Write(b)
}

func (w *bodyRecorder) WriteString(s string) (int, error) {
	w.body.WriteString(s)
	return w.ResponseWriter.WriteString(s)
}

// Idempotency replays the stored response when a request repeats its
// Idempotency-Key. Requests without the header pass through. 5xx responses
// are not stored so the client can retry.
func Idempotency(store idempotency.Store, ttl time.Duration, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		clientKey := c.GetHeader(IdempotencyHeader)
		if clientKey == "" || store == nil {
			c.Next()
			return
		}
		key := fmt.Sprintf("%d:%s:%s:%s", utils.CurrentPrincipalID(c), c.Request.Method, c.Request.URL.Path, clientKey)
		ctx := c.Request.Context()

		rec, started, err := store.Begin(ctx, key, ttl)
		if err != nil {
			// store outage: serve the request without replay protection
			log.Warn("idempotency store unavailable", zap.Error(err))
			c.Next()
			return
		}
		if !started {
			if rec.State == idempotency.StateInFlight {
				resp.Conflict(c, "a request with this idempotency key is still in progress")
				return
			}
			c.Header(ReplayedHeader, "true")
			c.Data(rec.Status, rec.ContentType, rec.Body)
			c.Abort()
			return
		}

		w := &bodyRecorder{ResponseWriter: c.Writer}
		c.Writer = w
		defer func() {
			if r := recover(); r != nil {
				// free the key so a retry is served, then let Recovery answer
				if err := store.Release(ctx, key); err != nil {
					log.Warn("release idempotency key", zap.Error(err))
				}
				panic(r)
			}
		}()
		c.Next()

		status := w.Status()
		if status >= http.StatusInternalServerError {
			if err := store.Release(ctx, key); err != nil {
				log.Warn("release idempotency key", zap.Error(err))
			}
			return
		}
		err = store.Complete(ctx, key, idempotency.Record{
			Status:      status,
			ContentType: w.Header().Get("Content-Type"),
			Body:        w.body.Bytes(),
		}, ttl)
		if err != nil {
			log.Warn("store idempotency record", zap.Error(err))
		}
	}
}
