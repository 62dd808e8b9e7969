package campaign

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// ENUM-LIKE constants
type CampaignType string
type CampaignStatus string
type VerificationMethod string

const (
	CampaignTypeSingle CampaignType = "single"
	CampaignTypeMulti  CampaignType = "multi"

	CampaignStatusActive  CampaignStatus = "active"
	CampaignStatusPaused  CampaignStatus = "paused"
	CampaignStatusExpired CampaignStatus = "expired"

	VerificationAuto   VerificationMethod = "auto"
	VerificationManual VerificationMethod = "manual"
)

// UserIDPlaceholder is the literal token affiliate networks expect inside a
// tracking link. Start Task substitutes it with the real user id.
const UserIDPlaceholder = "{userId}"

// Subtask is one step of a multi-task campaign.
type Subtask struct {
	Name               string          `json:"name"`
	RewardCoins        decimal.Decimal `json:"reward_coins"`
	Steps              []string        `json:"steps"`
	CompletionEstimate string          `json:"completion_estimate,omitempty"`
	Type               string          `json:"type,omitempty"`
}

// Campaign is an affiliate offer users can start tasks against.
type Campaign struct {
	ID                  string             `gorm:"column:id;primaryKey;type:char(26)"`
	Title               string             `gorm:"column:title;type:varchar(255);not null"`
	Description         string             `gorm:"column:description;type:text"`
	TrackingLink        string             `gorm:"column:tracking_link;type:text;not null"`
	CampaignType        CampaignType       `gorm:"column:campaign_type;type:varchar(20);not null;default:'single'"`
	AffiliateNetwork    string             `gorm:"column:affiliate_network;type:varchar(100)"`
	RewardCoins         decimal.Decimal    `gorm:"column:reward_coins;type:decimal(20,4);not null"`
	CountryRestrictions datatypes.JSON     `gorm:"column:country_restrictions"`
	StartDate           *time.Time         `gorm:"column:start_date"`
	EndDate             *time.Time         `gorm:"column:end_date"`
	StartTime           string             `gorm:"column:start_time;type:varchar(5)"`
	EndTime             string             `gorm:"column:end_time;type:varchar(5)"`
	Status              CampaignStatus     `gorm:"column:status;type:varchar(20);not null;default:'active';index"`
	VerificationMethod  VerificationMethod `gorm:"column:verification_method;type:varchar(20);not null;default:'auto'"`
	Subtasks            datatypes.JSON     `gorm:"column:subtasks"`
	CreatedAt           time.Time          `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt           time.Time          `gorm:"column:updated_at;autoUpdateTime"`
}

func (Campaign) TableName() string {
	return "campaigns"
}

// Countries decodes the restriction list. Empty means unrestricted.
func (c *Campaign) Countries() []string {
	if len(c.CountryRestrictions) == 0 {
		return nil
	}
	var countries []string
	if err := json.Unmarshal(c.CountryRestrictions, &countries); err != nil {
		return nil
	}
	return countries
}

// SubtaskList decodes the subtask definitions of a multi-task campaign.
func (c *Campaign) SubtaskList() []Subtask {
	if len(c.Subtasks) == 0 {
		return nil
	}
	var subtasks []Subtask
	if err := json.Unmarshal(c.Subtasks, &subtasks); err != nil {
		return nil
	}
	return subtasks
}

// ResolveTrackingLink substitutes the user-id placeholder.
func (c *Campaign) ResolveTrackingLink(userID string) string {
	return strings.ReplaceAll(c.TrackingLink, UserIDPlaceholder, userID)
}

// EligibleAt reports whether a user from the given country may start this
// campaign at the given instant.
func (c *Campaign) EligibleAt(now time.Time, country string) bool {
	if c.Status != CampaignStatusActive {
		return false
	}

	if !c.allowsCountry(country) {
		return false
	}

	if !c.withinDateWindow(now) {
		return false
	}

	return c.withinTimeWindow(now)
}

func (c *Campaign) allowsCountry(country string) bool {
	countries := c.Countries()
	if len(countries) == 0 {
		return true
	}
	for _, cc := range countries {
		if cc == country {
			return true
		}
	}
	return false
}

// withinDateWindow checks the calendar-date window, inclusive on both ends.
// A missing bound leaves that side unbounded.
func (c *Campaign) withinDateWindow(now time.Time) bool {
	today := dateOnly(now)
	if c.StartDate != nil && today.Before(dateOnly(*c.StartDate)) {
		return false
	}
	if c.EndDate != nil && today.After(dateOnly(*c.EndDate)) {
		return false
	}
	return true
}

// Minutes since midnight for a 00:00-23:59 window, the "always open" sentinel.
const (
	fullDayStartMinutes = 0
	fullDayEndMinutes   = 1439
)

// withinTimeWindow applies the time-of-day gate. It only fires when BOTH
// bounds are set and parseable, and treats the 00:00-23:59 window as always
// open.
func (c *Campaign) withinTimeWindow(now time.Time) bool {
	if c.StartTime == "" || c.EndTime == "" {
		return true
	}

	startMinutes, okStart := parseMinutesOfDay(c.StartTime)
	endMinutes, okEnd := parseMinutesOfDay(c.EndTime)
	if !okStart || !okEnd {
		return true
	}

	if startMinutes == fullDayStartMinutes && endMinutes == fullDayEndMinutes {
		return true
	}

	current := now.Hour()*60 + now.Minute()
	return current >= startMinutes && current <= endMinutes
}

func parseMinutesOfDay(value string) (int, bool) {
	parts := strings.SplitN(value, ":", 2)
	if len(parts) != 2 {
		return 0, false
	}
	hour, err := strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return 0, false
	}
	minute, err := strconv.Atoi(parts[1])
	if err != nil || minute < 0 || minute > 59 {
		return 0, false
	}
	return hour*60 + minute, true
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
