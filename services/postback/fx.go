package postback

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/fx"
)

var Module = fx.Module("postback.service",
	fx.Provide(NewService),
)

var Routes = fx.Module("postback.routes",
	fx.Invoke(registerRoutes),
)

// Tasks registers queue handlers on the worker process.
var Tasks = fx.Module("postback.tasks",
	fx.Invoke(RegisterTasks),
)

func registerRoutes(engine *gin.Engine, svc *Service) {
	NewHandler(svc).Register(engine)
}
