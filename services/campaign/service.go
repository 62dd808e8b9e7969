package campaign

import (
	"context"
	"encoding/json"
	"sort"
	"strings"
	"time"

	"github.com/Devraj069/TaskWin/pkg/db/option"
	"github.com/Devraj069/TaskWin/pkg/errutil"
	"github.com/Devraj069/TaskWin/pkg/repository"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Service struct {
	db   *gorm.DB
	node *snowflake.Node

	campaign repository.Repository[Campaign]
}

type ServiceParams struct {
	fx.In

	DB   *gorm.DB
	Node *snowflake.Node
}

func NewService(p ServiceParams) *Service {
	return &Service{
		db:       p.DB,
		node:     p.Node,
		campaign: repository.ProvideStore[Campaign](p.DB),
	}
}

// CreateInput carries the admin-facing campaign definition. Subtasks are
// only honored for multi-task campaigns.
type CreateInput struct {
	Title               string             `json:"title"`
	Description         string             `json:"description"`
	TrackingLink        string             `json:"tracking_link"`
	CampaignType        CampaignType       `json:"campaign_type"`
	AffiliateNetwork    string             `json:"affiliate_network"`
	RewardCoins         decimal.Decimal    `json:"reward_coins"`
	CountryRestrictions []string           `json:"country_restrictions"`
	StartDate           *time.Time         `json:"start_date"`
	EndDate             *time.Time         `json:"end_date"`
	StartTime           string             `json:"start_time"`
	EndTime             string             `json:"end_time"`
	Status              CampaignStatus     `json:"status"`
	VerificationMethod  VerificationMethod `json:"verification_method"`
	Subtasks            []Subtask          `json:"subtasks"`
}

func (in *CreateInput) validate() error {
	if in.Title == "" || in.Description == "" || in.TrackingLink == "" {
		return errutil.ValidationFailed("missing required fields: title, description, or tracking link", nil)
	}
	if !strings.Contains(in.TrackingLink, UserIDPlaceholder) {
		return errutil.ValidationFailed("tracking link must contain the "+UserIDPlaceholder+" placeholder", nil)
	}

	switch in.CampaignType {
	case CampaignTypeMulti:
		if len(in.Subtasks) == 0 {
			return errutil.ValidationFailed("at least one subtask is required for multi-task campaigns", nil)
		}
	default:
		if in.RewardCoins.LessThan(decimal.NewFromInt(1)) {
			return errutil.ValidationFailed("reward coins must be at least 1", nil)
		}
	}
	return nil
}

// rewardTotal derives the campaign reward. For multi-task campaigns the
// reward is always the sum of subtask rewards, never the submitted value.
func rewardTotal(campaignType CampaignType, reward decimal.Decimal, subtasks []Subtask) decimal.Decimal {
	if campaignType != CampaignTypeMulti {
		return reward
	}
	total := decimal.Zero
	for _, st := range subtasks {
		total = total.Add(st.RewardCoins)
	}
	return total
}

func (s *Service) Create(ctx context.Context, in CreateInput) (*Campaign, error) {
	span := trace.SpanFromContext(ctx)
	defer span.End()

	if err := in.validate(); err != nil {
		return nil, err
	}

	if in.CampaignType == "" {
		in.CampaignType = CampaignTypeSingle
	}
	if in.Status == "" {
		in.Status = CampaignStatusActive
	}
	if in.VerificationMethod == "" {
		in.VerificationMethod = VerificationAuto
	}

	c := Campaign{
		ID:                 s.node.Generate().String(),
		Title:              in.Title,
		Description:        in.Description,
		TrackingLink:       in.TrackingLink,
		CampaignType:       in.CampaignType,
		AffiliateNetwork:   in.AffiliateNetwork,
		RewardCoins:        rewardTotal(in.CampaignType, in.RewardCoins, in.Subtasks),
		StartDate:          in.StartDate,
		EndDate:            in.EndDate,
		StartTime:          in.StartTime,
		EndTime:            in.EndTime,
		Status:             in.Status,
		VerificationMethod: in.VerificationMethod,
	}

	if len(in.CountryRestrictions) > 0 {
		raw, _ := json.Marshal(in.CountryRestrictions)
		c.CountryRestrictions = datatypes.JSON(raw)
	}
	if in.CampaignType == CampaignTypeMulti {
		raw, _ := json.Marshal(in.Subtasks)
		c.Subtasks = datatypes.JSON(raw)
	}

	if err := s.campaign.Create(ctx, &c); err != nil {
		zap.L().Error("failed to create campaign", zap.Error(err))
		return nil, err
	}

	return &c, nil
}

func (s *Service) Update(ctx context.Context, campaignID string, in CreateInput) (*Campaign, error) {
	span := trace.SpanFromContext(ctx)
	defer span.End()

	c, err := s.campaign.FindOne(ctx, &Campaign{ID: campaignID})
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, errutil.NotFound("campaign not found", nil)
	}

	if in.Title != "" {
		c.Title = in.Title
	}
	if in.Description != "" {
		c.Description = in.Description
	}
	if in.TrackingLink != "" {
		if !strings.Contains(in.TrackingLink, UserIDPlaceholder) {
			return nil, errutil.ValidationFailed("tracking link must contain the "+UserIDPlaceholder+" placeholder", nil)
		}
		c.TrackingLink = in.TrackingLink
	}
	if in.AffiliateNetwork != "" {
		c.AffiliateNetwork = in.AffiliateNetwork
	}
	if in.Status != "" {
		c.Status = in.Status
	}
	if in.VerificationMethod != "" {
		c.VerificationMethod = in.VerificationMethod
	}
	if in.StartDate != nil {
		c.StartDate = in.StartDate
	}
	if in.EndDate != nil {
		c.EndDate = in.EndDate
	}
	if in.StartTime != "" {
		c.StartTime = in.StartTime
	}
	if in.EndTime != "" {
		c.EndTime = in.EndTime
	}
	if in.CountryRestrictions != nil {
		raw, _ := json.Marshal(in.CountryRestrictions)
		c.CountryRestrictions = datatypes.JSON(raw)
	}

	if in.CampaignType != "" {
		c.CampaignType = in.CampaignType
	}

	// Reward derivation mirrors creation: a multi-task campaign's reward is
	// recomputed from its subtasks on every update.
	if c.CampaignType == CampaignTypeMulti {
		subtasks := c.SubtaskList()
		if in.Subtasks != nil {
			subtasks = in.Subtasks
			raw, _ := json.Marshal(in.Subtasks)
			c.Subtasks = datatypes.JSON(raw)
		}
		c.RewardCoins = rewardTotal(CampaignTypeMulti, decimal.Zero, subtasks)
	} else if in.RewardCoins.IsPositive() {
		c.RewardCoins = in.RewardCoins
	}

	if err := s.db.WithContext(ctx).
		Model(&Campaign{}).
		Where("id = ?", c.ID).
		Select("*").
		Omit("id", "created_at").
		Updates(c).Error; err != nil {
		zap.L().Error("failed to update campaign", zap.Error(err))
		return nil, err
	}

	return c, nil
}

func (s *Service) Get(ctx context.Context, campaignID string) (*Campaign, error) {
	c, err := s.campaign.FindOne(ctx, &Campaign{ID: campaignID})
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, errutil.NotFound("campaign not found", nil)
	}
	return c, nil
}

func (s *Service) Delete(ctx context.Context, campaignID string) error {
	return s.db.WithContext(ctx).Where("id = ?", campaignID).Delete(&Campaign{}).Error
}

// List returns all campaigns for the admin surface, newest first.
func (s *Service) List(ctx context.Context) ([]*Campaign, error) {
	return s.campaign.Find(ctx, &Campaign{}, option.WithSortBy(option.QuerySortBy{
		SortBy:  "created_at",
		OrderBy: "desc",
		Allow:   map[string]bool{"created_at": true},
	}))
}

// ListEligible returns active campaigns the user may start right now,
// ordered by descending reward.
func (s *Service) ListEligible(ctx context.Context, country string, now time.Time) ([]*Campaign, error) {
	span := trace.SpanFromContext(ctx)
	defer span.End()

	active, err := s.campaign.Find(ctx, &Campaign{Status: CampaignStatusActive})
	if err != nil {
		zap.L().Error("failed to query active campaigns", zap.Error(err))
		return nil, err
	}

	eligible := make([]*Campaign, 0, len(active))
	for _, c := range active {
		if c.EligibleAt(now, country) {
			eligible = append(eligible, c)
		}
	}

	sort.SliceStable(eligible, func(i, j int) bool {
		return eligible[i].RewardCoins.GreaterThan(eligible[j].RewardCoins)
	})

	return eligible, nil
}

// ExpireEnded flips active campaigns whose end date has passed to expired.
// Invoked by the maintenance sweep.
func (s *Service) ExpireEnded(ctx context.Context, today time.Time) (int64, error) {
	res := s.db.WithContext(ctx).
		Model(&Campaign{}).
		Where("status = ?", CampaignStatusActive).
		Where("end_date IS NOT NULL AND end_date < ?", dateOnly(today)).
		Updates(map[string]any{
			"status":     CampaignStatusExpired,
			"updated_at": time.Now(),
		})
	if res.Error != nil {
		zap.L().Error("failed to expire ended campaigns", zap.Error(res.Error))
		return 0, res.Error
	}
	return res.RowsAffected, nil
}
