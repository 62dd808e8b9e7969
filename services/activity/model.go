package activity

import (
	"time"

	"gorm.io/datatypes"
)

// Activity types recorded by the reconciliation flow.
const (
	TypeAffiliateCompleted = "affiliate_completed"
	TypeAffiliateRejected  = "affiliate_rejected"
	TypeTaskStarted        = "task_started"
)

// Record is one immutable audit entry. Rows are only ever inserted.
type Record struct {
	ID        string         `gorm:"column:id;primaryKey;type:char(26)"`
	UserID    string         `gorm:"column:user_id;type:varchar(64);not null;index"`
	Type      string         `gorm:"column:type;type:varchar(50);not null"`
	Details   datatypes.JSON `gorm:"column:details"`
	CreatedAt time.Time      `gorm:"column:created_at;autoCreateTime"`
}

func (Record) TableName() string {
	return "activities"
}
