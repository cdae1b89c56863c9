package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/subosito/gotenv"
	"go.uber.org/zap"

	"github.com/tjpa/agil-workflow/internal/application/dispatcher"
	"github.com/tjpa/agil-workflow/internal/application/service"
	"github.com/tjpa/agil-workflow/internal/application/subscription"
	appwf "github.com/tjpa/agil-workflow/internal/application/workflow"
	"github.com/tjpa/agil-workflow/internal/config"
	"github.com/tjpa/agil-workflow/internal/domain/event"
	"github.com/tjpa/agil-workflow/internal/infrastructure/identity"
	"github.com/tjpa/agil-workflow/internal/infrastructure/notify"
	"github.com/tjpa/agil-workflow/internal/infrastructure/persistence/repository"
	"github.com/tjpa/agil-workflow/internal/infrastructure/persistence/sqlite"
	httpiface "github.com/tjpa/agil-workflow/internal/interfaces/http"
	"github.com/tjpa/agil-workflow/pkg/database"
	"github.com/tjpa/agil-workflow/pkg/utils"
)

func main() {
	// Local development reads overrides from .env; absence is fine.
	_ = gotenv.Load()

	cfg, err := config.Load("configs/config.yaml")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger, err := utils.NewLogger(utils.LoggerConfig{
		Level:      cfg.Logger.Level,
		OutputPath: cfg.Logger.OutputPath,
		Format:     cfg.Logger.Format,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("Starting Agil workflow service",
		zap.String("version", "1.0.0"),
		zap.Int("port", cfg.Server.Port))

	// Database and migrations
	db, err := database.New(database.Config{
		Path:            cfg.Database.Path,
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
	}, logger)
	if err != nil {
		logger.Fatal("Failed to initialize database", zap.Error(err))
	}
	defer db.Close()

	migrator := database.NewMigrator(db, logger)
	if err := migrator.RunMigrations(cfg.Database.MigrationsDir); err != nil {
		logger.Fatal("Failed to run database migrations", zap.Error(err))
	}

	// Repositories and transaction manager
	txManager := sqlite.NewDB(db.DB, logger)
	solicitationRepo := repository.NewSolicitationRepository(db.DB, logger)
	accountabilityRepo := repository.NewAccountabilityRepository(db.DB, logger)
	itemRepo := repository.NewItemRepository(db.DB, logger)
	historyRepo := repository.NewHistoryRepository(db.DB, logger)

	// Event fan-out
	eventDispatcher := dispatcher.NewDispatcher(logger)
	defer eventDispatcher.Close()

	subscriptions := subscription.NewManager(eventDispatcher, logger)
	defer subscriptions.Close()
	subscriptions.Subscribe("solicitations", nil, func(ctx context.Context, evt *event.Event) {
		logger.Debug("Solicitation event",
			zap.String("type", evt.Type.String()),
			zap.String("solicitation_id", evt.SolicitationID))
	})

	// Workflow engine and services
	engine := appwf.NewEngine(
		solicitationRepo,
		accountabilityRepo,
		historyRepo,
		txManager,
		logger,
		appwf.WithDispatcher(eventDispatcher),
		appwf.WithNotifier(notify.NewLogNotifier(logger)),
		appwf.WithDeadlineDays(cfg.Accountability.DeadlineDays),
	)

	solicitationService := service.NewSolicitationService(
		solicitationRepo, accountabilityRepo, historyRepo, txManager, eventDispatcher, logger)
	accountabilityService := service.NewAccountabilityService(
		accountabilityRepo, solicitationRepo, itemRepo, historyRepo, txManager, eventDispatcher, logger)
	inboxService := service.NewInboxService(
		solicitationRepo, accountabilityRepo, cfg.Priority, logger)
	reportService := service.NewReportService(inboxService, logger)

	// HTTP server
	server := httpiface.NewServer(
		httpiface.ServerConfig{
			Host:         cfg.Server.Host,
			Port:         cfg.Server.Port,
			ReadTimeout:  cfg.Server.ReadTimeout,
			WriteTimeout: cfg.Server.WriteTimeout,
		},
		engine,
		solicitationService,
		accountabilityService,
		inboxService,
		reportService,
		identity.ContextProvider{},
		&zapLoggerAdapter{logger: logger},
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := server.Start(ctx); err != nil {
		logger.Fatal("HTTP server failed", zap.Error(err))
	}

	logger.Info("Server exited successfully")
}

// zapLoggerAdapter adapts zap.Logger to the http.Logger interface.
type zapLoggerAdapter struct {
	logger *zap.Logger
}

func (a *zapLoggerAdapter) Info(msg string, keysAndValues ...interface{}) {
	a.logger.Info(msg, convertToZapFields(keysAndValues...)...)
}

func (a *zapLoggerAdapter) Error(msg string, keysAndValues ...interface{}) {
	a.logger.Error(msg, convertToZapFields(keysAndValues...)...)
}

// convertToZapFields converts key-value pairs to zap fields.
func convertToZapFields(keysAndValues ...interface{}) []zap.Field {
	fields := make([]zap.Field, 0, len(keysAndValues)/2)
	for i := 0; i+1 < len(keysAndValues); i += 2 {
		key, ok := keysAndValues[i].(string)
		if !ok {
			continue
		}
		fields = append(fields, zap.Any(key, keysAndValues[i+1]))
	}
	return fields
}
