package main

import (
	"log"

	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"

	taskqueue "github.com/Devraj069/TaskWin/pkg/asynq"
	"github.com/Devraj069/TaskWin/pkg/config"
	"github.com/Devraj069/TaskWin/pkg/db"
	"github.com/Devraj069/TaskWin/pkg/gen"
	"github.com/Devraj069/TaskWin/pkg/logger"
	"github.com/Devraj069/TaskWin/pkg/redis"
	"github.com/Devraj069/TaskWin/pkg/sequence"
	"github.com/Devraj069/TaskWin/services/activity"
	"github.com/Devraj069/TaskWin/services/campaign"
	"github.com/Devraj069/TaskWin/services/claim"
	"github.com/Devraj069/TaskWin/services/maintenance"
	"github.com/Devraj069/TaskWin/services/postback"
	"github.com/Devraj069/TaskWin/services/wallet"
)

// The worker consumes the maintenance and audit queues and runs the daily
// sweep scheduler. It shares service wiring with the API process but
// serves no HTTP traffic.
func main() {
	opts := []fx.Option{
		config.Module,
		logger.Module,
		db.Module,
		redis.Module,
		taskqueue.Client,
		taskqueue.Server,
		sequence.Module,
		gen.Module,
		campaign.Module,
		claim.Module,
		wallet.Module,
		activity.Module,
		postback.Module,
		maintenance.Module,
		postback.Tasks,
		maintenance.Worker,
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
