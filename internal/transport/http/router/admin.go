package router

import (
	"net/http"
	"time"

	ginzap "github.com/gin-contrib/zap"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"eventhub/internal/core/auth"
	"eventhub/internal/domain"
	"eventhub/internal/transport/http/handler"
	mdw "eventhub/internal/transport/http/middleware"
)

// NewAdminEngine builds the operator engine. Every /admin/v1 route requires
// an admin-role token; /metrics serves prometheus scrapes.
func NewAdminEngine(l *zap.Logger, adminH *handler.AdminHandler, jwter *auth.JWTer, users domain.UserRepository) *gin.Engine {
	r := gin.New()

	r.Use(
		ginzap.Ginzap(l, time.RFC3339, true),
		ginzap.RecoveryWithZap(l, true),
		mdw.RequestID(),
		mdw.RateLimitPerIP(50, 100),
		mdw.Timeout(10*time.Second),
	)

	r.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"ok": 1}) })
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	admin := r.Group("/admin/v1")
	admin.Use(mdw.AuthJWT(jwter, users, "admin"))

	reg := NewRegistry()
	reg.Add(adminH)
	reg.MountAllAdmin(admin)

	return r
}
