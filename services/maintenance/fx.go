package maintenance

import (
	"go.uber.org/fx"
)

var Module = fx.Module("maintenance.service",
	fx.Provide(NewService),
)

// Worker runs on the queue-consumer process only.
var Worker = fx.Module("maintenance.worker",
	fx.Provide(NewScheduler),
	fx.Invoke(RegisterTasks),
	fx.Invoke(StartScheduler),
)
