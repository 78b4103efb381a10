package main

import (
	"context"
	"database/sql"
	"log/slog"
	"os"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/ulule/limiter/v3"
	"github.com/ulule/limiter/v3/drivers/store/memory"

	portssvc "github.com/finotbook/cashbook/internal/core/ports/services"
	"github.com/finotbook/cashbook/internal/core/services"
	"github.com/finotbook/cashbook/internal/handlers"
	"github.com/finotbook/cashbook/internal/middleware"
	"github.com/finotbook/cashbook/internal/replica"
	"github.com/finotbook/cashbook/internal/repositories/authapi"
	"github.com/finotbook/cashbook/internal/repositories/cache/sqlite"
	"github.com/finotbook/cashbook/internal/repositories/database/pgsql"
	"github.com/finotbook/cashbook/pkg/config"
	"github.com/finotbook/cashbook/pkg/database"

	migrate "github.com/golang-migrate/migrate/v4"
	migratesqlite "github.com/golang-migrate/migrate/v4/database/sqlite3"
	_ "github.com/golang-migrate/migrate/v4/source/file"
)

func main() {
	// Initialize structured logger
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Error("Failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	runCacheMigrations(cfg, logger)

	// Local cache database backing the replica.
	cacheDB, err := database.NewSQLiteDB(cfg.CachePath)
	if err != nil {
		logger.Error("Failed to open local cache database", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer func() {
		if cerr := cacheDB.Close(); cerr != nil {
			logger.Error("Error closing cache database", slog.String("error", cerr.Error()))
		}
	}()

	bus := replica.NewBus()
	store := replica.NewStore(bus, sqlite.NewPersister(cacheDB), logger)
	if err := store.Open(context.Background()); err != nil {
		logger.Error("Failed to load replica from cache", slog.String("error", err.Error()))
		os.Exit(1)
	}
	logger.Info("Replica loaded from local cache", slog.String("path", cfg.CachePath))

	// Remote connection pool. Startup succeeds even when the remote store is
	// unreachable; reads keep serving the replica and writes fail until the
	// connection recovers.
	dbPool, err := database.NewPgxPool(context.Background(), cfg.RemoteDatabaseURL)
	if err != nil {
		logger.Error("Failed to initialize remote database pool", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer database.ClosePgxPool(dbPool)

	gw := pgsql.NewGatewayProvider(dbPool)
	gw.Reauth = authapi.NewClient(cfg.AuthBaseURL, cfg.AuthAPIKey)

	syncService := services.NewSyncService(store, gw)
	resync := syncService.ResyncLast
	serviceContainer := &portssvc.ServiceContainer{
		Sync:        syncService,
		Business:    services.NewBusinessService(store, gw, resync),
		Book:        services.NewBookService(store, gw, syncService, resync),
		Transaction: services.NewTransactionService(store, gw, resync),
		Lookup:      services.NewLookupService(store, gw, resync),
		Member:      services.NewMemberService(store, gw, syncService, resync),
	}

	if cfg.IsProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(middleware.StructuredLoggingMiddleware(logger), gin.Recovery())

	// The daemon serves a browser UI from another origin during development.
	corsCfg := cors.DefaultConfig()
	corsCfg.AllowAllOrigins = true
	corsCfg.AllowHeaders = append(corsCfg.AllowHeaders, "Authorization", "X-Request-ID")
	r.Use(cors.New(corsCfg))

	if err := r.SetTrustedProxies(nil); err != nil {
		logger.Error("Failed to set trusted proxies", slog.String("error", err.Error()))
		os.Exit(1)
	}

	rate, err := limiter.NewRateFromFormatted("300-M")
	if err != nil {
		logger.Error("Failed to parse rate limit", slog.String("error", err.Error()))
		os.Exit(1)
	}
	limiterInstance := limiter.New(memory.NewStore(), rate)

	handlers.RegisterRoutes(r, cfg, serviceContainer, store, limiterInstance)

	logger.Info("Server starting", slog.String("port", cfg.Port))
	if err := r.Run(":" + cfg.Port); err != nil {
		logger.Error("Server failed to run", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

// runCacheMigrations creates or upgrades the local cache schema. A separate
// connection is used because migrate closes the database it is handed.
func runCacheMigrations(cfg *config.Config, logger *slog.Logger) {
	logger.Info("Running cache migrations...")
	migrationDB, err := sql.Open("sqlite3", cfg.CachePath)
	if err != nil {
		logger.Error("Failed to open cache database for migrations", slog.String("error", err.Error()))
		os.Exit(1)
	}

	driver, err := migratesqlite.WithInstance(migrationDB, &migratesqlite.Config{})
	if err != nil {
		logger.Error("Could not create sqlite driver instance for migrations", slog.String("error", err.Error()))
		os.Exit(1)
	}

	m, err := migrate.NewWithDatabaseInstance("file://migrations", "sqlite3", driver)
	if err != nil {
		logger.Error("Could not create migrate instance", slog.String("error", err.Error()))
		os.Exit(1)
	}

	err = m.Up()
	if err != nil && err != migrate.ErrNoChange {
		logger.Error("Failed to apply cache migrations", slog.String("error", err.Error()))
		os.Exit(1)
	}

	sourceErr, dbErr := m.Close()
	if sourceErr != nil {
		logger.Error("Migration source error", slog.String("error", sourceErr.Error()))
		os.Exit(1)
	}
	if dbErr != nil {
		logger.Error("Migration database error", slog.String("error", dbErr.Error()))
		os.Exit(1)
	}

	if err == migrate.ErrNoChange {
		logger.Info("No new cache migrations to apply.")
	} else {
		logger.Info("Cache migrations applied successfully.")
	}
}
