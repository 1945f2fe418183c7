package ginserver

import (
	"bytes"
	"context"
	"net/http"
	"sync"
	"time"

	gin "github.com/gin-gonic/gin"
)

// IdempotencyRecord is a replayable response snapshot keyed by the
// client-supplied Idempotency-Key header.
type IdempotencyRecord struct {
	Key        string
	Status     int
	Body       []byte
	OccurredAt time.Time
}

type IdempotencyStore interface {
	Get(ctx context.Context, key string) (IdempotencyRecord, bool, error)
	Save(ctx context.Context, rec IdempotencyRecord) error
}

// Idempotency replays the stored response for a repeated Idempotency-Key
// instead of re-running the booking flow. A per-key in-flight guard makes
// concurrent duplicates wait for the first request and replay its
// response, so the same key can never commit capacity twice. Server-side
// failures are not stored, so a retry after a 5xx reaches the handler
// again.
func Idempotency(store IdempotencyStore) gin.HandlerFunc {
	guard := &inflightGuard{keys: make(map[string]chan struct{})}
	return func(c *gin.Context) {
		key := c.GetHeader("Idempotency-Key")
		if key == "" {
			c.Next()
			return
		}
		ctx := c.Request.Context()

		var done chan struct{}
		for {
			if rec, found, err := store.Get(ctx, key); err == nil && found {
				c.Data(rec.Status, "application/json", rec.Body)
				c.Abort()
				return
			}
			var first bool
			if done, first = guard.acquire(key); first {
				break
			}
			// Another request with this key is executing; wait for it,
			// then loop back and replay whatever it stored.
			select {
			case <-done:
			case <-ctx.Done():
				c.AbortWithStatus(http.StatusRequestTimeout)
				return
			}
		}
		defer guard.release(key, done)

		recorder := &bodyRecorder{ResponseWriter: c.Writer, body: &bytes.Buffer{}}
		c.Writer = recorder
		c.Next()

		status := recorder.Status()
		if status >= 500 {
			return
		}
		_ = store.Save(ctx, IdempotencyRecord{
			Key:        key,
			Status:     status,
			Body:       recorder.body.Bytes(),
			OccurredAt: time.Now().UTC(),
		})
	}
}

// inflightGuard tracks keys with a request currently executing. The
// channel closes when the owning request finishes, waking waiters.
type inflightGuard struct {
	mu   sync.Mutex
	keys map[string]chan struct{}
}

func (g *inflightGuard) acquire(key string) (chan struct{}, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if ch, busy := g.keys[key]; busy {
		return ch, false
	}
	ch := make(chan struct{})
	g.keys[key] = ch
	return ch, true
}

func (g *inflightGuard) release(key string, ch chan struct{}) {
	g.mu.Lock()
	delete(g.keys, key)
	g.mu.Unlock()
	close(ch)
}

type bodyRecorder struct {
	gin.ResponseWriter
	body *bytes.Buffer
}

func (r *bodyRecorder) Write(b []byte) (int, error) {
	r.body.Write(b)
	return r.ResponseWriter.Write(b)
}
