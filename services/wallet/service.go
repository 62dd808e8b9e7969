package wallet

import (
	"context"
	"time"

	"github.com/Devraj069/TaskWin/pkg/errutil"
	"github.com/Devraj069/TaskWin/pkg/repository"
	"github.com/Devraj069/TaskWin/pkg/util"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Service struct {
	db       *gorm.DB
	notifier Notifier

	users repository.Repository[UserAccount]
}

type ServiceParams struct {
	fx.In

	DB       *gorm.DB
	Notifier Notifier `optional:"true"`
}

func NewService(p ServiceParams) *Service {
	return &Service{
		db:       p.DB,
		notifier: p.Notifier,
		users:    repository.ProvideStore[UserAccount](p.DB),
	}
}

// Credit adds amount to the user's balance and returns the new balance.
// The mutation is a single guarded UPDATE with a relative expression, so
// concurrent credits to the same user never lose an update.
func (s *Service) Credit(ctx context.Context, userID string, amount decimal.Decimal) (decimal.Decimal, error) {
	span := trace.SpanFromContext(ctx)
	defer span.End()

	if !amount.IsPositive() {
		return decimal.Zero, errutil.BadRequest("credit amount must be positive", nil)
	}

	now := time.Now()
	res := s.db.WithContext(ctx).
		Model(&UserAccount{}).
		Where("id = ?", userID).
		Updates(map[string]any{
			"coins":       gorm.Expr("coins + ?", amount),
			"last_active": now,
			"updated_at":  now,
		})
	if res.Error != nil {
		zap.L().Error("failed to credit coins", zap.String("user_id", userID), zap.Error(res.Error))
		return decimal.Zero, res.Error
	}
	if res.RowsAffected == 0 {
		return decimal.Zero, errutil.NotFound("user account not found", nil)
	}

	balance, err := s.Balance(ctx, userID)
	if err != nil {
		return decimal.Zero, err
	}

	if s.notifier != nil {
		event := BalanceEvent{
			UserID:     userID,
			Balance:    balance,
			Delta:      amount,
			OccurredAt: now,
		}
		if err := s.notifier.Publish(ctx, event); err != nil {
			// Subscribers fall back to their next read; the credit itself
			// already committed.
			zap.L().Warn("failed to publish balance event", zap.String("user_id", userID), zap.Error(err))
		}
	}

	zap.L().Info("credited coins",
		zap.String("user_id", userID),
		zap.String("amount", amount.String()),
		zap.String("balance", balance.String()),
	)

	return balance, nil
}

// Balance returns the user's current coin balance.
func (s *Service) Balance(ctx context.Context, userID string) (decimal.Decimal, error) {
	account, err := s.users.FindOne(ctx, &UserAccount{ID: userID})
	if err != nil {
		return decimal.Zero, err
	}
	if account == nil {
		return decimal.Zero, errutil.NotFound("user account not found", nil)
	}
	return account.Coins, nil
}

// Get returns the full account record.
func (s *Service) Get(ctx context.Context, userID string) (*UserAccount, error) {
	account, err := s.users.FindOne(ctx, &UserAccount{ID: userID})
	if err != nil {
		return nil, err
	}
	if account == nil {
		return nil, errutil.NotFound("user account not found", nil)
	}
	return account, nil
}

// Create registers a new account. Owned by the account subsystem; exposed
// here for seeding and tests.
func (s *Service) Create(ctx context.Context, account *UserAccount) error {
	if account.ReferralCode == "" {
		account.ReferralCode = util.GenerateReferralCode()
	}
	return s.users.Create(ctx, account)
}

// IncrementTasksCompleted bumps the completion counter shown on the
// dashboard. Relative update for the same reason as Credit.
func (s *Service) IncrementTasksCompleted(ctx context.Context, userID string) error {
	return s.db.WithContext(ctx).
		Model(&UserAccount{}).
		Where("id = ?", userID).
		Updates(map[string]any{
			"tasks_completed_count": gorm.Expr("tasks_completed_count + 1"),
			"updated_at":            time.Now(),
		}).Error
}
