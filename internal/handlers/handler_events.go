package handlers

import (
	"io"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/finotbook/cashbook/internal/middleware"
	"github.com/finotbook/cashbook/internal/replica"
)

type eventsHandler struct {
	store    *replica.Store
	debounce time.Duration
}

func registerEventRoutes(rg *gin.RouterGroup, store *replica.Store, debounce time.Duration) {
	h := &eventsHandler{store: store, debounce: debounce}
	rg.GET("/events", h.streamChanges)
}

// streamChanges pushes collection-change notifications over SSE. The UI
// re-fetches the affected reads on each event instead of polling. Each
// connection runs a live query over the requested collections; bursts within
// the debounce window coalesce into one event.
func (h *eventsHandler) streamChanges(c *gin.Context) {
	var interest []replica.Collection
	for _, name := range c.QueryArray("collections") {
		interest = append(interest, replica.Collection(name))
	}

	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	lq := replica.Live(h.store.Bus(), h.debounce, []string(nil), interest,
		func(changed []replica.Collection) ([]string, error) {
			names := make([]string, 0, len(changed))
			for _, col := range changed {
				names = append(names, string(col))
			}
			return names, nil
		}, logger)
	defer lq.Close()

	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")

	clientGone := c.Request.Context().Done()
	keepAlive := time.NewTicker(30 * time.Second)
	defer keepAlive.Stop()

	c.Stream(func(w io.Writer) bool {
		select {
		case <-clientGone:
			return false
		case <-keepAlive.C:
			c.SSEvent("ping", time.Now().Unix())
			return true
		case names := <-lq.Updates():
			// The initial evaluation carries no changed collections; the UI
			// loads its first snapshot on connect regardless.
			if len(names) == 0 {
				return true
			}
			c.SSEvent("change", gin.H{"collections": names})
			return true
		}
	})
}
