package campaign

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Devraj069/TaskWin/pkg/errutil"
	"github.com/Devraj069/TaskWin/services/testutil"
)

func init() {
	zap.ReplaceGlobals(zap.NewNop())
}

func newTestService(t *testing.T) *Service {
	t.Helper()
	db := testutil.NewTestDB(t, &Campaign{})
	return NewService(ServiceParams{DB: db, Node: testutil.NewTestNode(t)})
}

func validInput() CreateInput {
	return CreateInput{
		Title:        "Install Groww",
		Description:  "Install the app and register",
		TrackingLink: "https://net.example/offer?aff_sub={userId}",
		RewardCoins:  decimal.NewFromInt(50),
	}
}

func requireStatus(t *testing.T, err error, status errutil.CoreStatus) {
	t.Helper()
	var be errutil.BaseError
	require.True(t, errors.As(err, &be), "expected BaseError, got %v", err)
	require.Equal(t, status, be.Status())
}

func TestCreateDefaults(t *testing.T) {
	svc := newTestService(t)

	c, err := svc.Create(context.Background(), validInput())
	require.NoError(t, err)
	require.NotEmpty(t, c.ID)
	require.Equal(t, CampaignTypeSingle, c.CampaignType)
	require.Equal(t, CampaignStatusActive, c.Status)
	require.Equal(t, VerificationAuto, c.VerificationMethod)
	require.True(t, c.RewardCoins.Equal(decimal.NewFromInt(50)))
}

func TestCreateValidation(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	missing := validInput()
	missing.Title = ""
	_, err := svc.Create(ctx, missing)
	requireStatus(t, err, errutil.StatusValidationFailed)

	noPlaceholder := validInput()
	noPlaceholder.TrackingLink = "https://net.example/offer"
	_, err = svc.Create(ctx, noPlaceholder)
	requireStatus(t, err, errutil.StatusValidationFailed)

	zeroReward := validInput()
	zeroReward.RewardCoins = decimal.Zero
	_, err = svc.Create(ctx, zeroReward)
	requireStatus(t, err, errutil.StatusValidationFailed)

	multiNoSubtasks := validInput()
	multiNoSubtasks.CampaignType = CampaignTypeMulti
	_, err = svc.Create(ctx, multiNoSubtasks)
	requireStatus(t, err, errutil.StatusValidationFailed)
}

func TestCreateMultiTaskRewardIsSubtaskSum(t *testing.T) {
	svc := newTestService(t)

	in := validInput()
	in.CampaignType = CampaignTypeMulti
	in.RewardCoins = decimal.NewFromInt(999) // ignored for multi
	in.Subtasks = []Subtask{
		{Name: "Install", RewardCoins: decimal.NewFromInt(30)},
		{Name: "Register", RewardCoins: decimal.NewFromInt(80)},
	}

	c, err := svc.Create(context.Background(), in)
	require.NoError(t, err)
	require.True(t, c.RewardCoins.Equal(decimal.NewFromInt(110)), "got %s", c.RewardCoins)
	require.Len(t, c.SubtaskList(), 2)
}

func TestUpdateRecomputesMultiReward(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	in := validInput()
	in.CampaignType = CampaignTypeMulti
	in.Subtasks = []Subtask{{Name: "Install", RewardCoins: decimal.NewFromInt(30)}}
	created, err := svc.Create(ctx, in)
	require.NoError(t, err)

	updated, err := svc.Update(ctx, created.ID, CreateInput{
		Subtasks: []Subtask{
			{Name: "Install", RewardCoins: decimal.NewFromInt(30)},
			{Name: "Deposit", RewardCoins: decimal.NewFromInt(120)},
		},
	})
	require.NoError(t, err)
	require.True(t, updated.RewardCoins.Equal(decimal.NewFromInt(150)), "got %s", updated.RewardCoins)
}

func TestGetNotFound(t *testing.T) {
	svc := newTestService(t)

	_, err := svc.Get(context.Background(), "missing")
	requireStatus(t, err, errutil.StatusNotFound)
}

func TestListEligibleFiltersAndSorts(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	small := validInput()
	small.Title = "Small reward"
	small.RewardCoins = decimal.NewFromInt(10)
	_, err := svc.Create(ctx, small)
	require.NoError(t, err)

	big := validInput()
	big.Title = "Big reward"
	big.RewardCoins = decimal.NewFromInt(200)
	_, err = svc.Create(ctx, big)
	require.NoError(t, err)

	restricted := validInput()
	restricted.Title = "BR only"
	restricted.CountryRestrictions = []string{"BR"}
	_, err = svc.Create(ctx, restricted)
	require.NoError(t, err)

	paused := validInput()
	paused.Title = "Paused"
	paused.Status = CampaignStatusPaused
	_, err = svc.Create(ctx, paused)
	require.NoError(t, err)

	eligible, err := svc.ListEligible(ctx, "IN", time.Now())
	require.NoError(t, err)
	require.Len(t, eligible, 2)
	require.Equal(t, "Big reward", eligible[0].Title)
	require.Equal(t, "Small reward", eligible[1].Title)
}

func TestExpireEnded(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	past := time.Now().AddDate(0, 0, -2)
	ended := validInput()
	ended.Title = "Ended"
	ended.EndDate = &past
	_, err := svc.Create(ctx, ended)
	require.NoError(t, err)

	open := validInput()
	open.Title = "Open"
	created, err := svc.Create(ctx, open)
	require.NoError(t, err)

	expired, err := svc.ExpireEnded(ctx, time.Now())
	require.NoError(t, err)
	require.Equal(t, int64(1), expired)

	// Idempotent on the second run.
	expired, err = svc.ExpireEnded(ctx, time.Now())
	require.NoError(t, err)
	require.Zero(t, expired)

	still, err := svc.Get(ctx, created.ID)
	require.NoError(t, err)
	require.Equal(t, CampaignStatusActive, still.Status)
}
