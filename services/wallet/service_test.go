package wallet

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/Devraj069/TaskWin/pkg/errutil"
	"github.com/Devraj069/TaskWin/services/testutil"
)

func init() {
	zap.ReplaceGlobals(zap.NewNop())
}

func newTestService(t *testing.T) *Service {
	t.Helper()
	db := testutil.NewTestDB(t, &UserAccount{})
	return NewService(ServiceParams{DB: db})
}

func seedAccount(t *testing.T, svc *Service, userID string, coins int64) {
	t.Helper()
	err := svc.Create(context.Background(), &UserAccount{
		ID:    userID,
		Coins: decimal.NewFromInt(coins),
	})
	require.NoError(t, err)
}

func TestCreditAddsToBalance(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	seedAccount(t, svc, "user_1", 100)

	balance, err := svc.Credit(ctx, "user_1", decimal.NewFromInt(50))
	require.NoError(t, err)
	require.True(t, balance.Equal(decimal.NewFromInt(150)), "got %s", balance)
}

func TestCreditFractionalAmount(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	seedAccount(t, svc, "user_1", 0)

	amount, err := decimal.NewFromString("12.75")
	require.NoError(t, err)
	balance, err := svc.Credit(ctx, "user_1", amount)
	require.NoError(t, err)
	require.True(t, balance.Equal(amount), "got %s", balance)
}

func TestCreditRejectsNonPositive(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	seedAccount(t, svc, "user_1", 100)

	_, err := svc.Credit(ctx, "user_1", decimal.Zero)
	var be errutil.BaseError
	require.True(t, errors.As(err, &be))
	require.Equal(t, errutil.StatusBadRequest, be.Status())

	_, err = svc.Credit(ctx, "user_1", decimal.NewFromInt(-5))
	require.Error(t, err)

	balance, err := svc.Balance(ctx, "user_1")
	require.NoError(t, err)
	require.True(t, balance.Equal(decimal.NewFromInt(100)))
}

func TestCreditUnknownUser(t *testing.T) {
	svc := newTestService(t)

	_, err := svc.Credit(context.Background(), "ghost", decimal.NewFromInt(10))
	var be errutil.BaseError
	require.True(t, errors.As(err, &be))
	require.Equal(t, errutil.StatusNotFound, be.Status())
}

func TestCreditConcurrentNoLostUpdates(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	seedAccount(t, svc, "user_1", 0)

	const n = 20
	g, gctx := errgroup.WithContext(ctx)
	for i := 0; i < n; i++ {
		g.Go(func() error {
			_, err := svc.Credit(gctx, "user_1", decimal.NewFromInt(1))
			return err
		})
	}
	require.NoError(t, g.Wait())

	balance, err := svc.Balance(ctx, "user_1")
	require.NoError(t, err)
	require.True(t, balance.Equal(decimal.NewFromInt(n)), "got %s", balance)
}

type captureNotifier struct {
	events []BalanceEvent
	err    error
}

func (n *captureNotifier) Publish(ctx context.Context, event BalanceEvent) error {
	if n.err != nil {
		return n.err
	}
	n.events = append(n.events, event)
	return nil
}

func (n *captureNotifier) Subscribe(ctx context.Context, userID string) (<-chan BalanceEvent, func(), error) {
	return nil, func() {}, nil
}

func TestCreditPublishesBalanceEvent(t *testing.T) {
	db := testutil.NewTestDB(t, &UserAccount{})
	notifier := &captureNotifier{}
	svc := NewService(ServiceParams{DB: db, Notifier: notifier})
	ctx := context.Background()
	seedAccount(t, svc, "user_1", 10)

	_, err := svc.Credit(ctx, "user_1", decimal.NewFromInt(5))
	require.NoError(t, err)

	require.Len(t, notifier.events, 1)
	event := notifier.events[0]
	require.Equal(t, "user_1", event.UserID)
	require.True(t, event.Delta.Equal(decimal.NewFromInt(5)))
	require.True(t, event.Balance.Equal(decimal.NewFromInt(15)))
}

func TestCreditSurvivesNotifierFailure(t *testing.T) {
	db := testutil.NewTestDB(t, &UserAccount{})
	notifier := &captureNotifier{err: errors.New("redis down")}
	svc := NewService(ServiceParams{DB: db, Notifier: notifier})
	ctx := context.Background()
	seedAccount(t, svc, "user_1", 0)

	balance, err := svc.Credit(ctx, "user_1", decimal.NewFromInt(5))
	require.NoError(t, err)
	require.True(t, balance.Equal(decimal.NewFromInt(5)))
}

func TestCreateAssignsReferralCode(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	require.NoError(t, svc.Create(ctx, &UserAccount{ID: "user_1"}))

	account, err := svc.Get(ctx, "user_1")
	require.NoError(t, err)
	require.Len(t, account.ReferralCode, 8)
}

func TestIncrementTasksCompleted(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	seedAccount(t, svc, "user_1", 0)

	require.NoError(t, svc.IncrementTasksCompleted(ctx, "user_1"))
	require.NoError(t, svc.IncrementTasksCompleted(ctx, "user_1"))

	account, err := svc.Get(ctx, "user_1")
	require.NoError(t, err)
	require.Equal(t, 2, account.TasksCompletedCount)
}
