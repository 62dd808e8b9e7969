package postback

import (
	"context"
	"encoding/json"
	"strings"

	taskqueue "github.com/Devraj069/TaskWin/pkg/asynq"
	"github.com/Devraj069/TaskWin/pkg/config"
	"github.com/Devraj069/TaskWin/pkg/errutil"
	"github.com/Devraj069/TaskWin/pkg/repository"
	"github.com/Devraj069/TaskWin/pkg/sequence"
	"github.com/Devraj069/TaskWin/services/activity"
	"github.com/Devraj069/TaskWin/services/claim"
	"github.com/Devraj069/TaskWin/services/wallet"

	"github.com/bwmarrin/snowflake"
	"github.com/hibiken/asynq"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Service struct {
	db   *gorm.DB
	node *snowflake.Node
	seq  sequence.Generator
	tq   *asynq.Client

	claims     *claim.Service
	wallet     *wallet.Service
	activities *activity.Service
	logs       repository.Repository[Log]

	defaultRejectionReason string
}

type ServiceParams struct {
	fx.In

	Config     *config.Config
	DB         *gorm.DB
	Node       *snowflake.Node
	Seq        sequence.Generator `optional:"true"`
	TaskQueue  *asynq.Client      `optional:"true"`
	Claims     *claim.Service
	Wallet     *wallet.Service
	Activities *activity.Service
}

func NewService(p ServiceParams) *Service {
	return &Service{
		db:                     p.DB,
		node:                   p.Node,
		seq:                    p.Seq,
		tq:                     p.TaskQueue,
		claims:                 p.Claims,
		wallet:                 p.Wallet,
		activities:             p.Activities,
		logs:                   repository.ProvideStore[Log](p.DB),
		defaultRejectionReason: p.Config.Postback.DefaultRejectionReason,
	}
}

// Result summarizes one processed postback for the network's response.
// Success=false without an error means no claim transitioned, typically
// because the status value was not one we recognize.
type Result struct {
	Success      bool            `json:"success"`
	UserID       string          `json:"userId"`
	Status       string          `json:"status"`
	CoinsAwarded decimal.Decimal `json:"coinsAwarded"`
	Completed    int             `json:"-"`
	Rejected     int             `json:"-"`
	Message      string          `json:"message,omitempty"`
}

// Handle reconciles one affiliate postback against the user's pending
// claims. The raw event is always written to postback_logs first, before
// validation, so rejected or malformed calls still leave an audit row.
//
// A postback settles exactly one claim: the one whose campaign matches the
// event's offer_id, or the user's single pending claim when the offer id
// does not resolve. With several pending claims and no match the event is
// ambiguous and refused, so a conversion is never attributed to the wrong
// campaign.
func (s *Service) Handle(ctx context.Context, event Event) (*Result, error) {
	span := trace.SpanFromContext(ctx)
	defer span.End()

	logID, err := s.audit(ctx, event)
	if err != nil {
		return nil, errutil.Internal("failed to record postback", err)
	}

	if event.UserID == "" || event.Status == "" {
		return nil, errutil.ValidationFailed("Missing required parameters: sub_id and status", nil)
	}

	pending, err := s.claims.ListPending(ctx, event.UserID)
	if err != nil {
		return nil, err
	}
	if len(pending) == 0 {
		// Networks retry on 5xx but treat 4xx as final, so a postback
		// with nothing to settle answers 400 like any other bad call.
		return nil, errutil.BadRequest("No pending tasks found for user", nil)
	}

	matched := matchByOffer(pending, event.OfferID)
	switch {
	case len(matched) > 0:
		pending = matched
	case len(pending) == 1:
		// Single pending claim resolves unambiguously even without an
		// offer id match.
	default:
		return nil, errutil.Conflict("postback does not resolve to a single pending task", nil)
	}

	result := &Result{
		UserID: event.UserID,
		Status: event.Status,
	}

	status := strings.ToLower(strings.TrimSpace(event.Status))
	for _, c := range pending {
		switch status {
		case statusApproved, statusCompleted:
			if err := s.settleApproved(ctx, c, event, result); err != nil {
				return nil, err
			}
		case statusRejected, statusDeclined:
			if err := s.settleRejected(ctx, c, event, result); err != nil {
				return nil, err
			}
		default:
			zap.L().Warn("unrecognized postback status",
				zap.String("user_id", event.UserID),
				zap.String("status", event.Status),
			)
			result.Message = "unrecognized status: " + event.Status
		}
	}

	result.Success = result.Completed > 0 || result.Rejected > 0
	s.enqueueMarkProcessed(ctx, logID)

	zap.L().Info("processed postback",
		zap.String("user_id", event.UserID),
		zap.String("status", event.Status),
		zap.Int("completed", result.Completed),
		zap.Int("rejected", result.Rejected),
		zap.String("coins_awarded", result.CoinsAwarded.String()),
	)

	return result, nil
}

func (s *Service) settleApproved(ctx context.Context, c *claim.TaskClaim, event Event, result *Result) error {
	reward := c.RewardCoins
	if event.Reward != nil && event.Reward.IsPositive() {
		reward = *event.Reward
	}

	updated, err := s.claims.Complete(ctx, nil, c.ID, reward, event.ConversionID, event.ClickID)
	if err != nil {
		return err
	}
	if !updated {
		// Already settled by an earlier delivery of the same postback.
		return nil
	}

	if _, err := s.wallet.Credit(ctx, event.UserID, reward); err != nil {
		zap.L().Error("claim completed but credit failed",
			zap.String("claim_id", c.ID),
			zap.String("user_id", event.UserID),
			zap.Error(err),
		)
		return err
	}
	if err := s.wallet.IncrementTasksCompleted(ctx, event.UserID); err != nil {
		zap.L().Warn("failed to bump completion counter", zap.String("user_id", event.UserID), zap.Error(err))
	}

	if err := s.activities.Append(ctx, event.UserID, activity.TypeAffiliateCompleted, map[string]any{
		"campaign_id":   c.CampaignID,
		"claim_id":      c.ID,
		"coins":         reward.String(),
		"conversion_id": event.ConversionID,
	}); err != nil {
		// Activity rows are informational; the credit already stands.
		zap.L().Warn("failed to append activity record", zap.String("user_id", event.UserID), zap.Error(err))
	}

	result.Completed++
	result.CoinsAwarded = result.CoinsAwarded.Add(reward)
	return nil
}

func (s *Service) settleRejected(ctx context.Context, c *claim.TaskClaim, event Event, result *Result) error {
	reason := event.Reason
	if reason == "" {
		reason = s.defaultRejectionReason
	}

	updated, err := s.claims.Reject(ctx, nil, c.ID, reason, event.ConversionID, event.ClickID)
	if err != nil {
		return err
	}
	if !updated {
		return nil
	}

	if err := s.activities.Append(ctx, event.UserID, activity.TypeAffiliateRejected, map[string]any{
		"campaign_id": c.CampaignID,
		"claim_id":    c.ID,
		"reason":      reason,
	}); err != nil {
		zap.L().Warn("failed to append activity record", zap.String("user_id", event.UserID), zap.Error(err))
	}

	result.Rejected++
	return nil
}

// audit writes the raw event before any validation runs.
func (s *Service) audit(ctx context.Context, event Event) (string, error) {
	record := &Log{
		ID:           s.node.Generate().String(),
		UserID:       event.UserID,
		Status:       event.Status,
		Reward:       nullAmount(event.Reward),
		OfferID:      event.OfferID,
		Payout:       nullAmount(event.Payout),
		ClickID:      event.ClickID,
		ConversionID: event.ConversionID,
		IP:           event.IP,
		UserAgent:    event.UserAgent,
		ReceivedAt:   event.ReceivedAt,
	}
	if s.seq != nil {
		code, err := s.seq.NextPostbackCode(ctx)
		if err != nil {
			zap.L().Warn("failed to generate postback code", zap.Error(err))
		} else {
			record.Code = code
		}
	}
	if err := s.logs.Create(ctx, record); err != nil {
		return "", err
	}
	return record.ID, nil
}

func (s *Service) enqueueMarkProcessed(ctx context.Context, logID string) {
	if s.tq == nil || logID == "" {
		return
	}
	payload, err := json.Marshal(taskqueue.MarkProcessedPayload{PostbackLogID: logID})
	if err != nil {
		return
	}
	task := asynq.NewTask(taskqueue.PostbackMarkProcessedTask, payload)
	if _, err := s.tq.EnqueueContext(ctx, task, asynq.Queue(taskqueue.QueueAudit), asynq.MaxRetry(3)); err != nil {
		zap.L().Warn("failed to enqueue mark-processed task", zap.String("postback_log_id", logID), zap.Error(err))
	}
}

// SyntheticConversionID mints a conversion reference for test postbacks,
// which carry none of their own.
func (s *Service) SyntheticConversionID(ctx context.Context, network string) string {
	if s.seq == nil {
		return ""
	}
	code, err := s.seq.NextConversionCode(ctx, network)
	if err != nil {
		zap.L().Warn("failed to generate conversion code", zap.Error(err))
		return ""
	}
	return code
}

// MarkProcessed flips the processed flag on a postback log row. Invoked
// from the audit queue worker.
func (s *Service) MarkProcessed(ctx context.Context, logID string) error {
	return s.db.WithContext(ctx).
		Model(&Log{}).
		Where("id = ?", logID).
		Update("processed", true).Error
}

// LogsByUser returns the audit trail for one user, newest first.
func (s *Service) LogsByUser(ctx context.Context, userID string, limit int) ([]*Log, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	var records []*Log
	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("received_at desc").
		Limit(limit).
		Find(&records).Error
	return records, err
}

// matchByOffer returns the pending claims whose campaign matches offerID.
// The unique (user, campaign) index means at most one claim can match.
func matchByOffer(pending []*claim.TaskClaim, offerID string) []*claim.TaskClaim {
	if offerID == "" {
		return nil
	}
	var matched []*claim.TaskClaim
	for _, c := range pending {
		if c.CampaignID == offerID {
			matched = append(matched, c)
		}
	}
	return matched
}
