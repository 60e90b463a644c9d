package main

import (
	"context"
	"database/sql"
	"log"
	"net/http"

	_ "github.com/jackc/pgx/v5/stdlib" // database/sql driver for migrations
	"go.uber.org/zap"

	"github.com/CazadorHT/realestate-crm-sub001/pkg/auth"
	"github.com/CazadorHT/realestate-crm-sub001/pkg/config"
	"github.com/CazadorHT/realestate-crm-sub001/pkg/database"
	"github.com/CazadorHT/realestate-crm-sub001/pkg/handlers"
	"github.com/CazadorHT/realestate-crm-sub001/pkg/logging"
	"github.com/CazadorHT/realestate-crm-sub001/pkg/middleware"
	"github.com/CazadorHT/realestate-crm-sub001/pkg/repositories"
	"github.com/CazadorHT/realestate-crm-sub001/pkg/services"
)

// Version is set at build time via ldflags
var Version = "dev"

func main() {
	cfg, err := config.Load(Version)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := newLogger(cfg.Env)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Configuration loaded",
		zap.String("env", cfg.Env),
		zap.String("version", cfg.Version),
		zap.String("database", logging.SanitizeConnectionString(cfg.Database.ConnectionString())))

	ctx := context.Background()

	// Migrations run over database/sql; the engine itself uses pgxpool.
	migrationDB, err := sql.Open("pgx", cfg.Database.ConnectionString())
	if err != nil {
		logger.Fatal("Failed to open migration connection", zap.Error(err))
	}
	if err := database.RunMigrations(migrationDB, cfg.MigrationsPath, logger); err != nil {
		logger.Fatal("Failed to run migrations", zap.Error(err))
	}
	_ = migrationDB.Close()

	db, err := database.Connect(ctx, &cfg.Database)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	redisClient, err := database.NewRedisClient(&cfg.Redis)
	if err != nil {
		logger.Fatal("Failed to connect to Redis", zap.Error(err))
	}

	// Repositories
	leadRepo := repositories.NewLeadRepository(db)
	dealRepo := repositories.NewDealRepository(db)
	propertyRepo := repositories.NewPropertyRepository(db)
	auditRepo := repositories.NewAuditRepository(db)

	// Services
	auditService := services.NewAuditService(auditRepo, logger)
	notifier := services.NewNotifier(redisClient, logger)
	projector := services.NewPropertyProjector(dealRepo, propertyRepo, logger)
	leadService := services.NewLeadService(leadRepo, auditService, notifier, logger)
	dealService := services.NewDealService(dealRepo, leadRepo, propertyRepo, projector, auditService, notifier, logger)
	propertyService := services.NewPropertyService(propertyRepo, auditService, notifier, logger)

	authMiddleware := auth.NewMiddleware([]byte(cfg.AuthSecret), logger)

	mux := http.NewServeMux()
	handlers.NewHealthHandler(cfg, logger).RegisterRoutes(mux)
	handlers.NewLeadsHandler(leadService, dealService, logger).RegisterRoutes(mux, authMiddleware)
	handlers.NewDealsHandler(dealService, logger).RegisterRoutes(mux, authMiddleware)
	handlers.NewPropertiesHandler(propertyService, logger).RegisterRoutes(mux, authMiddleware)
	handlers.NewAuditHandler(auditService, logger).RegisterRoutes(mux, authMiddleware)

	handler := middleware.RequestLogger(logger)(mux)

	addr := cfg.BindAddr + ":" + cfg.Port
	logger.Info("Starting crm-pipeline", zap.String("addr", addr), zap.String("version", cfg.Version))
	if err := http.ListenAndServe(addr, handler); err != nil {
		logger.Fatal("Server failed", zap.Error(err))
	}
}

func newLogger(env string) (*zap.Logger, error) {
	if env == "local" {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}
