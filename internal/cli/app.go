package cli

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	commissionapp "github.com/autobargain/backend/internal/application/commission"
	installmentapp "github.com/autobargain/backend/internal/application/installment"
	appshared "github.com/autobargain/backend/internal/application/shared"
	subscriptionapp "github.com/autobargain/backend/internal/application/subscription"
	tradeapp "github.com/autobargain/backend/internal/application/trade"
	"github.com/autobargain/backend/internal/infrastructure/cache"
	"github.com/autobargain/backend/internal/infrastructure/config"
	"github.com/autobargain/backend/internal/infrastructure/event"
	"github.com/autobargain/backend/internal/infrastructure/logger"
	"github.com/autobargain/backend/internal/infrastructure/persistence"
	"github.com/autobargain/backend/internal/infrastructure/telemetry"
)

const serviceVersion = "1.0.0"

// application is the wired back office used by the database-backed commands
type application struct {
	cfg    *config.Config
	log    *zap.Logger
	clock  appshared.Clock
	db     *persistence.Database
	tracer *telemetry.TracerProvider
	meter  *telemetry.MeterProvider
	logs   *telemetry.LoggerProvider
	cache  cache.SettingsCache
	bus    *event.InMemoryEventBus

	settings      *commissionapp.SettingsService
	registry      *tradeapp.RegistryService
	transactions  *tradeapp.TransactionService
	installments  *installmentapp.InstallmentService
	subscriptions *subscriptionapp.SubscriptionService
}

func newApplication(ctx context.Context) (*application, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	log, err := logger.New(&logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	app := &application{cfg: cfg, log: log, clock: appshared.NewClock(cfg.App.Location())}

	if err := app.initTelemetry(ctx); err != nil {
		app.Close(ctx)
		return nil, err
	}
	if err := app.initDatabase(); err != nil {
		app.Close(ctx)
		return nil, err
	}
	if err := app.initServices(ctx); err != nil {
		app.Close(ctx)
		return nil, err
	}
	return app, nil
}

func (a *application) initTelemetry(ctx context.Context) error {
	tcfg := a.cfg.Telemetry
	tracer, err := telemetry.NewTracerProvider(ctx, telemetry.Config{
		Enabled:           tcfg.Enabled,
		CollectorEndpoint: tcfg.CollectorEndpoint,
		SamplingRatio:     tcfg.SamplingRatio,
		ServiceName:       tcfg.ServiceName,
		ServiceVersion:    serviceVersion,
		Insecure:          tcfg.Insecure,
	}, a.log)
	if err != nil {
		return err
	}
	a.tracer = tracer

	meter, err := telemetry.NewMeterProvider(ctx, telemetry.MetricsConfig{
		Enabled:           tcfg.Enabled,
		CollectorEndpoint: tcfg.CollectorEndpoint,
		ExportInterval:    tcfg.MetricsInterval,
		ServiceName:       tcfg.ServiceName,
		ServiceVersion:    serviceVersion,
		Insecure:          tcfg.Insecure,
	}, a.log)
	if err != nil {
		return err
	}
	a.meter = meter

	logs, err := telemetry.NewLoggerProvider(ctx, telemetry.LogsConfig{
		Enabled:           tcfg.Enabled && tcfg.LogsEnabled,
		CollectorEndpoint: tcfg.CollectorEndpoint,
		ServiceName:       tcfg.ServiceName,
		ServiceVersion:    serviceVersion,
		Insecure:          tcfg.Insecure,
		Level:             logger.ParseLevel(a.cfg.Log.Level),
	}, a.log)
	if err != nil {
		return err
	}
	a.logs = logs
	a.log = logs.Bridge(a.log)
	return nil
}

func (a *application) initDatabase() error {
	db, err := persistence.Open(&a.cfg.Database, persistence.Options{
		Logger:        a.log,
		LogLevel:      logger.MapGormLogLevel(a.cfg.Log.Level),
		SlowThreshold: a.cfg.Telemetry.DBSlowQueryThresh,
	})
	if err != nil {
		return err
	}
	a.db = db

	plugin := telemetry.NewDBTracingPlugin(telemetry.DBTracingConfig{
		Enabled:         a.cfg.Telemetry.Enabled && a.cfg.Telemetry.DBTraceEnabled,
		LogFullSQL:      a.cfg.Telemetry.DBLogFullSQL,
		SlowQueryThresh: a.cfg.Telemetry.DBSlowQueryThresh,
		DBName:          a.cfg.Database.DBName,
	}, a.log)
	return plugin.Register(db.DB)
}

func (a *application) initServices(ctx context.Context) error {
	metrics, err := telemetry.NewBusinessMetrics(a.meter.Meter("bargain"))
	if err != nil {
		return err
	}

	system, err := commissionapp.ParseSettings(
		a.cfg.Commission.PurchaseKind, a.cfg.Commission.PurchaseValue,
		a.cfg.Commission.SaleKind, a.cfg.Commission.SaleValue)
	if err != nil {
		return fmt.Errorf("invalid system commission: %w", err)
	}
	fees, err := subscriptionapp.ParseFeeSchedule(
		a.cfg.Subscription.MonthlyFee, a.cfg.Subscription.QuarterlyFee, a.cfg.Subscription.YearlyFee)
	if err != nil {
		return fmt.Errorf("invalid subscription fees: %w", err)
	}

	gdb := a.db.DB
	scope := persistence.NewGormTransactionScope(gdb)
	a.cache = cache.NewSettingsCache(ctx, a.cfg.Redis, a.log)
	a.bus = event.NewInMemoryEventBus(a.log)

	a.settings = commissionapp.NewSettingsService(persistence.NewGormCommissionSettingsRepository(gdb), system)
	a.settings.SetCache(a.cache)
	a.settings.SetClock(a.clock)

	a.registry = tradeapp.NewRegistryService(scope, persistence.NewGormBargainRepository(gdb))
	a.registry.SetClock(a.clock)

	a.transactions = tradeapp.NewTransactionService(scope,
		persistence.NewGormTransactionRepository(gdb),
		persistence.NewGormCommissionRepository(gdb),
		a.settings,
		a.cfg.Installment.AllowedTerms)
	a.transactions.SetEventPublisher(a.bus)
	a.transactions.SetMetrics(metrics)
	a.transactions.SetClock(a.clock)

	a.installments = installmentapp.NewInstallmentService(scope,
		persistence.NewGormInstallmentRepository(gdb),
		persistence.NewGormPaymentRepository(gdb),
		a.cfg.Installment.PaymentRetryAttempts)
	a.installments.SetEventPublisher(a.bus)
	a.installments.SetMetrics(metrics)
	a.installments.SetClock(a.clock)

	a.subscriptions = subscriptionapp.NewSubscriptionService(scope,
		persistence.NewGormSubscriptionRepository(gdb),
		fees,
		a.cfg.Subscription.ExpiringSoonDays)
	a.subscriptions.SetEventPublisher(a.bus)
	a.subscriptions.SetMetrics(metrics)
	a.subscriptions.SetClock(a.clock)

	a.bus.Subscribe(event.NewAuditLogHandler(a.log))

	return a.bus.Start(ctx)
}

// Close stops the bus, flushes telemetry and releases connections
func (a *application) Close(ctx context.Context) {
	var errs []error
	if a.bus != nil {
		errs = append(errs, a.bus.Stop(ctx))
	}
	if a.cache != nil {
		errs = append(errs, a.cache.Close())
	}
	if a.db != nil {
		errs = append(errs, a.db.Close())
	}
	if a.meter != nil {
		errs = append(errs, a.meter.Shutdown(ctx))
	}
	if a.tracer != nil {
		errs = append(errs, a.tracer.Shutdown(ctx))
	}
	if a.logs != nil {
		errs = append(errs, a.logs.Shutdown(ctx))
	}
	if err := errors.Join(errs...); err != nil {
		a.log.Warn("shutdown finished with errors", zap.Error(err))
	}
	_ = logger.Sync(a.log)
}
