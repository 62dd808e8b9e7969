package wallet

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/fx"
)

var Module = fx.Module("wallet.service",
	fx.Provide(
		NewService,
		NewRedisNotifier,
	),
)

var Routes = fx.Module("wallet.routes",
	fx.Invoke(registerRoutes),
)

type routeParams struct {
	fx.In

	Engine   *gin.Engine
	Service  *Service
	Notifier Notifier `optional:"true"`
}

func registerRoutes(p routeParams) {
	NewHandler(p.Service, p.Notifier).Register(p.Engine)
}
