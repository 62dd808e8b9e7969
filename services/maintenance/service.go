package maintenance

import (
	"context"
	"encoding/json"
	"time"

	taskqueue "github.com/Devraj069/TaskWin/pkg/asynq"
	"github.com/Devraj069/TaskWin/services/campaign"

	"github.com/hibiken/asynq"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Service runs the periodic housekeeping jobs: today only the campaign
// expiry sweep, which flips active campaigns whose end date has passed to
// expired so they drop out of eligibility listings.
type Service struct {
	campaigns *campaign.Service
	tq        *asynq.Client
}

type ServiceParams struct {
	fx.In

	Campaigns *campaign.Service
	TaskQueue *asynq.Client `optional:"true"`
}

func NewService(p ServiceParams) *Service {
	return &Service{
		campaigns: p.Campaigns,
		tq:        p.TaskQueue,
	}
}

// Sweep expires every active campaign whose end date is before today.
func (s *Service) Sweep(ctx context.Context, today time.Time) error {
	expired, err := s.campaigns.ExpireEnded(ctx, today)
	if err != nil {
		return err
	}
	zap.L().Info("campaign expiry sweep finished",
		zap.Time("run_date", today),
		zap.Int64("expired", expired),
	)
	return nil
}

// EnqueueSweep schedules one sweep run on the maintenance queue.
func (s *Service) EnqueueSweep(ctx context.Context, today time.Time) error {
	payload, err := json.Marshal(taskqueue.ExpirySweepPayload{RunDate: today.Format(time.DateOnly)})
	if err != nil {
		return err
	}
	task := asynq.NewTask(taskqueue.CampaignExpirySweepTask, payload)
	_, err = s.tq.EnqueueContext(ctx, task, asynq.Queue(taskqueue.QueueMaintenance))
	return err
}

// RegisterTasks wires the maintenance-queue handlers on the worker.
func RegisterTasks(mux *asynq.ServeMux, svc *Service) {
	mux.HandleFunc(taskqueue.CampaignExpirySweepTask, svc.handleSweep)
}

func (s *Service) handleSweep(ctx context.Context, t *asynq.Task) error {
	var payload taskqueue.ExpirySweepPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		zap.L().Error("invalid expiry sweep payload", zap.Error(err))
		return err
	}
	today, err := time.Parse(time.DateOnly, payload.RunDate)
	if err != nil {
		today = time.Now()
	}
	return s.Sweep(ctx, today)
}
