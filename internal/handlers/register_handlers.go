package handlers

import (
	"context"
	"log/slog"
	"reflect"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"github.com/ulule/limiter/v3"

	portssvc "github.com/finotbook/cashbook/internal/core/ports/services"
	"github.com/finotbook/cashbook/internal/middleware"
	"github.com/finotbook/cashbook/internal/replica"
	"github.com/finotbook/cashbook/pkg/config"
)

// Decimal fields validate as their numeric value so tags like gt=0 apply to
// amounts at the binding boundary.
func init() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		v.RegisterCustomTypeFunc(func(field reflect.Value) any {
			if d, ok := field.Interface().(decimal.Decimal); ok {
				f, _ := d.Float64()
				return f
			}
			return nil
		}, decimal.Decimal{})
	}
}

// RegisterRoutes sets up all application routes, injecting dependencies
// using interfaces. Reads are served from the local replica; writes go
// through the services.
func RegisterRoutes(
	r *gin.Engine,
	cfg *config.Config,
	services *portssvc.ServiceContainer,
	store *replica.Store,
	limiterInstance *limiter.Limiter,
) {
	r.GET("/health", func(c *gin.Context) {
		c.String(200, "OK")
	})

	v1 := r.Group("/api/v1", middleware.AuthMiddleware(cfg.JWTSecret))
	if limiterInstance != nil {
		v1.Use(middleware.RateLimit(limiterInstance))
	}
	if cfg.SyncOnStart {
		v1.Use(syncOnFirstRequest(services.Sync))
	}

	registerSyncRoutes(v1, services.Sync)
	registerEventRoutes(v1, store, cfg.LiveQueryDebounce)
	registerBusinessRoutes(v1, services, store)
	registerBookRoutes(v1, services, store)
	registerTransactionRoutes(v1, services, store)
	registerLookupRoutes(v1, services, store)
	registerMemberRoutes(v1, services, store)
}

// syncOnFirstRequest triggers a background full sync the first time each
// user is seen after startup, so reads warm up without an explicit refresh.
func syncOnFirstRequest(syncService portssvc.SyncSvc) gin.HandlerFunc {
	var seen sync.Map
	return func(c *gin.Context) {
		if who, ok := middleware.GetIdentityFromCtx(c); ok {
			if _, loaded := seen.LoadOrStore(who.UserID, struct{}{}); !loaded {
				go func() {
					if err := syncService.SyncAll(context.Background(), who); err != nil {
						slog.Default().Error("Startup sync failed",
							slog.String("error", err.Error()), slog.String("user_id", who.UserID))
					}
				}()
			}
		}
		c.Next()
	}
}
