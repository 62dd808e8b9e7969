package postback

import (
	"context"
	"encoding/json"

	taskqueue "github.com/Devraj069/TaskWin/pkg/asynq"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

// RegisterTasks wires the audit-queue handler that flips the processed
// flag on postback log rows.
func RegisterTasks(mux *asynq.ServeMux, svc *Service) {
	mux.HandleFunc(taskqueue.PostbackMarkProcessedTask, svc.handleMarkProcessed)
}

func (s *Service) handleMarkProcessed(ctx context.Context, t *asynq.Task) error {
	var payload taskqueue.MarkProcessedPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		zap.L().Error("invalid mark-processed payload", zap.Error(err))
		return err
	}
	if err := s.MarkProcessed(ctx, payload.PostbackLogID); err != nil {
		zap.L().Error("failed to mark postback processed",
			zap.String("postback_log_id", payload.PostbackLogID),
			zap.Error(err),
		)
		return err
	}
	return nil
}
