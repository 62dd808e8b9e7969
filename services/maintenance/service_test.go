package maintenance

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Devraj069/TaskWin/services/campaign"
	"github.com/Devraj069/TaskWin/services/testutil"
)

func init() {
	zap.ReplaceGlobals(zap.NewNop())
}

func TestSweepExpiresEndedCampaigns(t *testing.T) {
	db := testutil.NewTestDB(t, &campaign.Campaign{})
	campaigns := campaign.NewService(campaign.ServiceParams{DB: db, Node: testutil.NewTestNode(t)})
	svc := NewService(ServiceParams{Campaigns: campaigns})
	ctx := context.Background()

	past := time.Now().AddDate(0, 0, -3)
	ended, err := campaigns.Create(ctx, campaign.CreateInput{
		Title:        "Ended offer",
		Description:  "desc",
		TrackingLink: "https://net.example/offer?aff_sub={userId}",
		RewardCoins:  decimal.NewFromInt(10),
		EndDate:      &past,
	})
	require.NoError(t, err)

	open, err := campaigns.Create(ctx, campaign.CreateInput{
		Title:        "Open offer",
		Description:  "desc",
		TrackingLink: "https://net.example/offer?aff_sub={userId}",
		RewardCoins:  decimal.NewFromInt(10),
	})
	require.NoError(t, err)

	require.NoError(t, svc.Sweep(ctx, time.Now()))

	expired, err := campaigns.Get(ctx, ended.ID)
	require.NoError(t, err)
	require.Equal(t, campaign.CampaignStatusExpired, expired.Status)

	active, err := campaigns.Get(ctx, open.ID)
	require.NoError(t, err)
	require.Equal(t, campaign.CampaignStatusActive, active.Status)
}

func TestNextRunTime(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

	next := nextRunTime(now, 0, 15)
	require.Equal(t, time.Date(2026, 3, 11, 0, 15, 0, 0, time.UTC), next)

	early := time.Date(2026, 3, 10, 0, 5, 0, 0, time.UTC)
	require.Equal(t, time.Date(2026, 3, 10, 0, 15, 0, 0, time.UTC), nextRunTime(early, 0, 15))
}
