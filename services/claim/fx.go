package claim

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/fx"
)

var Module = fx.Module("claim.service",
	fx.Provide(NewService),
)

var Routes = fx.Module("claim.routes",
	fx.Invoke(registerRoutes),
)

func registerRoutes(engine *gin.Engine, svc *Service) {
	NewHandler(svc).Register(engine)
}
