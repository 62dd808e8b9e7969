package claim

import (
	"time"

	"github.com/shopspring/decimal"
)

// ClaimStatus is the task claim lifecycle state. Transitions are
// pending -> completed, pending -> rejected, and rejected -> pending (retry).
type ClaimStatus string

const (
	StatusPending   ClaimStatus = "pending"
	StatusCompleted ClaimStatus = "completed"
	StatusRejected  ClaimStatus = "rejected"
)

// TaskClaim is one user's claim on one campaign. Claims are never deleted;
// rejected ones may be restarted.
type TaskClaim struct {
	ID                  string          `gorm:"column:id;primaryKey;type:char(26)"`
	UserID              string          `gorm:"column:user_id;type:varchar(64);not null;uniqueIndex:idx_user_campaign;index"`
	CampaignID          string          `gorm:"column:campaign_id;type:char(26);not null;uniqueIndex:idx_user_campaign"`
	Status              ClaimStatus     `gorm:"column:status;type:varchar(20);not null;default:'pending';index"`
	RewardCoins         decimal.Decimal `gorm:"column:reward_coins;type:decimal(20,4);not null"`
	ActualReward        decimal.Decimal `gorm:"column:actual_reward;type:decimal(20,4)"`
	CampaignType        string          `gorm:"column:campaign_type;type:varchar(20)"`
	AffiliateNetwork    string          `gorm:"column:affiliate_network;type:varchar(100)"`
	StartedAt           time.Time       `gorm:"column:started_at"`
	CompletedAt         *time.Time      `gorm:"column:completed_at"`
	RejectedAt          *time.Time      `gorm:"column:rejected_at"`
	RejectionReason     string          `gorm:"column:rejection_reason;type:text"`
	ConversionID        string          `gorm:"column:conversion_id;type:varchar(100)"`
	ClickID             string          `gorm:"column:click_id;type:varchar(100)"`
	PostbackProcessedAt *time.Time      `gorm:"column:postback_processed_at"`
	CreatedAt           time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt           time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}

func (TaskClaim) TableName() string {
	return "user_tasks"
}

// Terminal reports whether the claim reached a final state. Completed is
// final for good; rejected is final for reconciliation but the user may
// restart the claim.
func (t *TaskClaim) Terminal() bool {
	return t.Status == StatusCompleted || t.Status == StatusRejected
}
