package router

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"eventhub/internal/transport/http/handler"
	mdw "eventhub/internal/transport/http/middleware"
)

// NewAPIEngine builds the public engine: operational middleware chain,
// health endpoint, and the /api route modules.
func NewAPIEngine(l *zap.Logger, uh *handler.UserHandler, eh *handler.EventHandler) *gin.Engine {
	r := gin.New()

	r.Use(
		mdw.RequestID(),
		mdw.RateLimit(200, 400),
		mdw.ConcurrencyLimit(300),
		mdw.MaxBodyBytes(1<<20),
		mdw.Timeout(10*time.Second),
		mdw.Recovery(l),
		mdw.Metrics(),
		mdw.AccessLog(l),
		cors.Default(),
	)

	r.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"ok": 1}) })

	api := r.Group("/api")

	reg := NewRegistry()
	reg.Add(uh)
	reg.Add(eh)
	reg.MountAllAPI(api)

	return r
}
