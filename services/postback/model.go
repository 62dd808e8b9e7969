package postback

import (
	"time"

	"github.com/shopspring/decimal"
)

// Log is the audit row written for every received postback, including ones
// that fail validation. The Processed flag is flipped asynchronously and is
// best-effort only.
type Log struct {
	ID           string              `gorm:"column:id;primaryKey;type:char(26)"`
	Code         string              `gorm:"column:code;type:varchar(32)"`
	UserID       string              `gorm:"column:user_id;type:varchar(64);index"`
	Status       string              `gorm:"column:status;type:varchar(32)"`
	Reward       decimal.NullDecimal `gorm:"column:reward;type:decimal(20,4)"`
	OfferID      string              `gorm:"column:offer_id;type:varchar(100)"`
	Payout       decimal.NullDecimal `gorm:"column:payout;type:decimal(20,4)"`
	ClickID      string              `gorm:"column:click_id;type:varchar(100)"`
	ConversionID string              `gorm:"column:conversion_id;type:varchar(100)"`
	IP           string              `gorm:"column:ip;type:varchar(64)"`
	UserAgent    string              `gorm:"column:user_agent;type:text"`
	ReceivedAt   time.Time           `gorm:"column:received_at;autoCreateTime"`
	Processed    bool                `gorm:"column:processed;not null;default:false"`
}

func (Log) TableName() string {
	return "postback_logs"
}
