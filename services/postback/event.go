package postback

import (
	"time"

	"github.com/shopspring/decimal"
)

// Affiliate networks disagree on status vocabulary; these are the values we
// normalize against after lowercasing.
const (
	statusApproved  = "approved"
	statusCompleted = "completed"
	statusRejected  = "rejected"
	statusDeclined  = "declined"
)

// Event is a single postback call, already extracted from the network's
// query parameters. Reward and Payout are nil when the parameter was absent
// or not numeric; the claim's reward snapshot is used in that case.
type Event struct {
	UserID       string
	Status       string
	Reward       *decimal.Decimal
	OfferID      string
	Payout       *decimal.Decimal
	ClickID      string
	ConversionID string
	IP           string
	UserAgent    string
	Reason       string
	ReceivedAt   time.Time
}

// Valuer abstracts gin's Query/PostForm lookup so events can be built from
// either verb.
type Valuer func(key string) string

// EventFromParams maps the conventional affiliate parameter names
// (sub_id, status, reward, offer_id, payout, click_id, conversion_id)
// onto an Event.
func EventFromParams(get Valuer, clientIP, userAgent string) Event {
	return Event{
		UserID:       get("sub_id"),
		Status:       get("status"),
		Reward:       parseAmount(get("reward")),
		OfferID:      get("offer_id"),
		Payout:       parseAmount(get("payout")),
		ClickID:      get("click_id"),
		ConversionID: get("conversion_id"),
		IP:           clientIP,
		UserAgent:    userAgent,
		Reason:       get("reason"),
		ReceivedAt:   time.Now().UTC(),
	}
}

func parseAmount(raw string) *decimal.Decimal {
	if raw == "" {
		return nil
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return nil
	}
	return &d
}

func nullAmount(d *decimal.Decimal) decimal.NullDecimal {
	if d == nil {
		return decimal.NullDecimal{}
	}
	return decimal.NullDecimal{Decimal: *d, Valid: true}
}
