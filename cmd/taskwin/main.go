package main

import (
	"log"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"
	"gorm.io/gorm"

	taskqueue "github.com/Devraj069/TaskWin/pkg/asynq"
	"github.com/Devraj069/TaskWin/pkg/config"
	"github.com/Devraj069/TaskWin/pkg/db"
	"github.com/Devraj069/TaskWin/pkg/gen"
	"github.com/Devraj069/TaskWin/pkg/health"
	"github.com/Devraj069/TaskWin/pkg/logger"
	"github.com/Devraj069/TaskWin/pkg/redis"
	"github.com/Devraj069/TaskWin/pkg/sequence"
	"github.com/Devraj069/TaskWin/pkg/server"
	"github.com/Devraj069/TaskWin/services/activity"
	"github.com/Devraj069/TaskWin/services/campaign"
	"github.com/Devraj069/TaskWin/services/claim"
	"github.com/Devraj069/TaskWin/services/postback"
	"github.com/Devraj069/TaskWin/services/wallet"
)

func main() {
	opts := []fx.Option{
		config.Module,
		logger.Module,
		db.Module,
		redis.Module,
		taskqueue.Client,
		sequence.Module,
		gen.Module,
		fx.Provide(
			provideTracerProvider,
			provideMeterProvider,
		),
		fx.Invoke(registerDBTelemetry),
		fx.Invoke(autoMigrate),
		campaign.Module,
		claim.Module,
		wallet.Module,
		activity.Module,
		postback.Module,
		server.ProvideHTTPServer,
		health.Module,
		campaign.Routes,
		claim.Routes,
		wallet.Routes,
		activity.Routes,
		postback.Routes,
		fxLogger,
	}

	if err := fx.ValidateApp(opts...); err != nil {
		log.Fatalf("fx validation failed: %v", err)
	}

	app := fx.New(opts...)

	app.Run()
}

var fxLogger = fx.WithLogger(func(cfg *config.Config, logger *zap.Logger) fxevent.Logger {
	return fxevent.NopLogger
})

func provideTracerProvider() trace.TracerProvider {
	return otel.GetTracerProvider()
}

func provideMeterProvider() metric.MeterProvider {
	return otel.GetMeterProvider()
}

func registerDBTelemetry(cfg *config.Config, gdb *gorm.DB) error {
	if err := db.Otel(gdb); err != nil {
		return err
	}
	return db.Metric(cfg)(gdb)
}

func autoMigrate(gdb *gorm.DB) error {
	return gdb.AutoMigrate(
		&campaign.Campaign{},
		&claim.TaskClaim{},
		&wallet.UserAccount{},
		&activity.Record{},
		&postback.Log{},
	)
}
