package wallet

import (
	"time"

	"github.com/shopspring/decimal"
)

// UserAccount holds the per-user coin balance. The balance is mutated only
// through Service.Credit; everything else treats it as read-only.
type UserAccount struct {
	ID                  string          `gorm:"column:id;primaryKey;type:varchar(64)"`
	Coins               decimal.Decimal `gorm:"column:coins;type:decimal(20,4);not null;default:0"`
	TasksCompletedCount int             `gorm:"column:tasks_completed_count;not null;default:0"`
	ReferralCode        string          `gorm:"column:referral_code;type:varchar(32)"`
	ReferredBy          string          `gorm:"column:referred_by;type:varchar(64)"`
	LastActive          *time.Time      `gorm:"column:last_active"`
	CreatedAt           time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt           time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}

func (UserAccount) TableName() string {
	return "users"
}

// BalanceEvent is published on every successful credit so observers
// (balance displays, analytics) can refresh without polling.
type BalanceEvent struct {
	UserID     string          `json:"user_id"`
	Balance    decimal.Decimal `json:"balance"`
	Delta      decimal.Decimal `json:"delta"`
	OccurredAt time.Time       `json:"occurred_at"`
}
