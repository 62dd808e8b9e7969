package claim

import (
	"context"
	"time"

	"github.com/Devraj069/TaskWin/pkg/db/option"
	"github.com/Devraj069/TaskWin/pkg/errutil"
	"github.com/Devraj069/TaskWin/pkg/repository"
	"github.com/Devraj069/TaskWin/services/campaign"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Service struct {
	db   *gorm.DB
	node *snowflake.Node

	campaigns *campaign.Service
	claim     repository.Repository[TaskClaim]
}

type ServiceParams struct {
	fx.In

	DB        *gorm.DB
	Node      *snowflake.Node
	Campaigns *campaign.Service
}

func NewService(p ServiceParams) *Service {
	return &Service{
		db:        p.DB,
		node:      p.Node,
		campaigns: p.Campaigns,
		claim:     repository.ProvideStore[TaskClaim](p.DB),
	}
}

// StartResult is returned to the caller so the UI can open the resolved
// tracking link immediately.
type StartResult struct {
	TrackingLink string          `json:"tracking_link"`
	Title        string          `json:"title"`
	Reward       decimal.Decimal `json:"reward"`
	Instructions string          `json:"instructions"`
	Claim        *TaskClaim      `json:"claim"`
}

// Start creates (or, after a rejection, re-arms) the claim for
// (userID, campaignID) and returns the user-specific tracking link.
func (s *Service) Start(ctx context.Context, userID, campaignID string) (*StartResult, error) {
	span := trace.SpanFromContext(ctx)
	defer span.End()

	c, err := s.campaigns.Get(ctx, campaignID)
	if err != nil {
		return nil, err
	}
	if c.Status != campaign.CampaignStatusActive {
		return nil, errutil.BadRequest("campaign is not active", nil)
	}

	existing, err := s.claim.FindOne(ctx, &TaskClaim{UserID: userID, CampaignID: campaignID})
	if err != nil {
		return nil, err
	}

	if existing != nil {
		if !existing.Terminal() {
			return nil, errutil.Conflict("task already in progress", nil)
		}
		if existing.Status == StatusCompleted {
			return nil, errutil.Conflict("task already completed", nil)
		}
		// Rejected: fall through and re-arm the same row.
	}

	now := time.Now()
	record := &TaskClaim{
		ID:               s.node.Generate().String(),
		UserID:           userID,
		CampaignID:       campaignID,
		Status:           StatusPending,
		RewardCoins:      c.RewardCoins,
		CampaignType:     string(c.CampaignType),
		AffiliateNetwork: c.AffiliateNetwork,
		StartedAt:        now,
	}

	if existing != nil {
		// Rejected claim restarted: same row, reset to pending with a fresh
		// reward snapshot.
		record.ID = existing.ID
		record.CreatedAt = existing.CreatedAt
		if err := s.db.WithContext(ctx).
			Model(&TaskClaim{}).
			Where("id = ?", existing.ID).
			Updates(map[string]any{
				"status":           StatusPending,
				"reward_coins":     c.RewardCoins,
				"started_at":       now,
				"rejected_at":      nil,
				"rejection_reason": "",
				"updated_at":       now,
			}).Error; err != nil {
			zap.L().Error("failed to restart rejected claim",
				zap.String("user_id", userID),
				zap.String("campaign_id", campaignID),
				zap.Error(err),
			)
			return nil, err
		}
	} else {
		if err := s.claim.Create(ctx, record); err != nil {
			zap.L().Error("failed to create task claim",
				zap.String("user_id", userID),
				zap.String("campaign_id", campaignID),
				zap.Error(err),
			)
			return nil, err
		}
	}

	return &StartResult{
		TrackingLink: c.ResolveTrackingLink(userID),
		Title:        c.Title,
		Reward:       c.RewardCoins,
		Instructions: c.Description,
		Claim:        record,
	}, nil
}

// Complete transitions a claim from pending to completed, recording the
// reward actually granted. The status guard in the WHERE clause is the
// idempotency barrier: a claim already reconciled is never transitioned
// again, so callers can safely drop duplicate postbacks.
func (s *Service) Complete(ctx context.Context, tx *gorm.DB, claimID string, actualReward decimal.Decimal, conversionID, clickID string) (bool, error) {
	if tx == nil {
		tx = s.db
	}
	now := time.Now()
	res := tx.WithContext(ctx).
		Model(&TaskClaim{}).
		Where("id = ? AND status = ?", claimID, StatusPending).
		Updates(map[string]any{
			"status":                StatusCompleted,
			"completed_at":          now,
			"actual_reward":         actualReward,
			"conversion_id":         conversionID,
			"click_id":              clickID,
			"postback_processed_at": now,
			"updated_at":            now,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// Reject transitions a claim from pending to rejected. Same guard as
// Complete; duplicate rejections are no-ops.
func (s *Service) Reject(ctx context.Context, tx *gorm.DB, claimID, reason, conversionID, clickID string) (bool, error) {
	if tx == nil {
		tx = s.db
	}
	now := time.Now()
	res := tx.WithContext(ctx).
		Model(&TaskClaim{}).
		Where("id = ? AND status = ?", claimID, StatusPending).
		Updates(map[string]any{
			"status":                StatusRejected,
			"rejected_at":           now,
			"rejection_reason":      reason,
			"conversion_id":         conversionID,
			"click_id":              clickID,
			"postback_processed_at": now,
			"updated_at":            now,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// ListPending returns all pending claims of one user, oldest first.
func (s *Service) ListPending(ctx context.Context, userID string) ([]*TaskClaim, error) {
	return s.claim.Find(ctx, &TaskClaim{UserID: userID, Status: StatusPending},
		option.WithSortBy(option.QuerySortBy{
			SortBy:  "started_at",
			OrderBy: "asc",
			Allow:   map[string]bool{"started_at": true},
		}),
	)
}

// ListByUser returns every claim of one user for the progress view.
func (s *Service) ListByUser(ctx context.Context, userID string) ([]*TaskClaim, error) {
	return s.claim.Find(ctx, &TaskClaim{UserID: userID},
		option.WithSortBy(option.QuerySortBy{
			SortBy:  "started_at",
			OrderBy: "desc",
			Allow:   map[string]bool{"started_at": true},
		}),
	)
}

// Get fetches one claim by id.
func (s *Service) Get(ctx context.Context, claimID string) (*TaskClaim, error) {
	found, err := s.claim.FindOne(ctx, &TaskClaim{ID: claimID})
	if err != nil {
		return nil, err
	}
	if found == nil {
		return nil, errutil.NotFound("task claim not found", nil)
	}
	return found, nil
}
