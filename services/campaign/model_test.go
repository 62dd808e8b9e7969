package campaign

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
)

func mustTime(t *testing.T, value string) time.Time {
	t.Helper()
	parsed, err := time.Parse(time.RFC3339, value)
	require.NoError(t, err)
	return parsed
}

func TestResolveTrackingLink(t *testing.T) {
	c := &Campaign{TrackingLink: "https://net.example/offer?aff_sub={userId}&src=app"}
	require.Equal(t,
		"https://net.example/offer?aff_sub=user_42&src=app",
		c.ResolveTrackingLink("user_42"),
	)
}

func TestResolveTrackingLinkNoPlaceholder(t *testing.T) {
	c := &Campaign{TrackingLink: "https://net.example/offer"}
	require.Equal(t, "https://net.example/offer", c.ResolveTrackingLink("user_42"))
}

func TestEligibleAtStatus(t *testing.T) {
	now := mustTime(t, "2026-03-10T12:00:00Z")

	c := &Campaign{Status: CampaignStatusPaused}
	require.False(t, c.EligibleAt(now, "IN"))

	c.Status = CampaignStatusActive
	require.True(t, c.EligibleAt(now, "IN"))
}

func TestEligibleAtCountryRestrictions(t *testing.T) {
	now := mustTime(t, "2026-03-10T12:00:00Z")

	c := &Campaign{
		Status:              CampaignStatusActive,
		CountryRestrictions: datatypes.JSON(`["IN","BR"]`),
	}

	require.True(t, c.EligibleAt(now, "IN"))
	require.True(t, c.EligibleAt(now, "BR"))
	require.False(t, c.EligibleAt(now, "US"))

	// No restrictions means every country qualifies.
	open := &Campaign{Status: CampaignStatusActive}
	require.True(t, open.EligibleAt(now, "US"))
}

func TestEligibleAtDateWindow(t *testing.T) {
	start := mustTime(t, "2026-03-01T00:00:00Z")
	end := mustTime(t, "2026-03-31T00:00:00Z")

	c := &Campaign{
		Status:    CampaignStatusActive,
		StartDate: &start,
		EndDate:   &end,
	}

	// Boundary days count as inside the window.
	require.True(t, c.EligibleAt(mustTime(t, "2026-03-01T09:00:00Z"), "IN"))
	require.True(t, c.EligibleAt(mustTime(t, "2026-03-31T23:00:00Z"), "IN"))

	require.False(t, c.EligibleAt(mustTime(t, "2026-02-28T12:00:00Z"), "IN"))
	require.False(t, c.EligibleAt(mustTime(t, "2026-04-01T00:30:00Z"), "IN"))
}

func TestEligibleAtTimeWindow(t *testing.T) {
	now := mustTime(t, "2026-03-10T12:00:00Z")

	c := &Campaign{Status: CampaignStatusActive, StartTime: "09:00", EndTime: "18:00"}
	require.True(t, c.EligibleAt(now, "IN"))
	require.False(t, c.EligibleAt(mustTime(t, "2026-03-10T20:00:00Z"), "IN"))

	// Inclusive boundaries.
	require.True(t, c.EligibleAt(mustTime(t, "2026-03-10T09:00:00Z"), "IN"))
	require.True(t, c.EligibleAt(mustTime(t, "2026-03-10T18:00:00Z"), "IN"))
}

func TestEligibleAtFullDaySentinel(t *testing.T) {
	// 00:00-23:59 is the conventional "always open" marker and must never
	// exclude anyone, including at exactly midnight.
	c := &Campaign{Status: CampaignStatusActive, StartTime: "00:00", EndTime: "23:59"}

	require.True(t, c.EligibleAt(mustTime(t, "2026-03-10T00:00:00Z"), "IN"))
	require.True(t, c.EligibleAt(mustTime(t, "2026-03-10T23:59:30Z"), "IN"))
}

func TestEligibleAtMalformedTimeWindow(t *testing.T) {
	// Unparseable or half-set windows fall back to always open.
	cases := []struct{ start, end string }{
		{"", ""},
		{"09:00", ""},
		{"", "18:00"},
		{"9am", "6pm"},
	}
	for _, tc := range cases {
		c := &Campaign{Status: CampaignStatusActive, StartTime: tc.start, EndTime: tc.end}
		require.True(t, c.EligibleAt(mustTime(t, "2026-03-10T03:00:00Z"), "IN"),
			"start=%q end=%q", tc.start, tc.end)
	}
}

func TestSubtaskList(t *testing.T) {
	c := &Campaign{
		Subtasks: datatypes.JSON(`[{"name":"Install","reward_coins":"30"},{"name":"Register","reward_coins":"80"}]`),
	}

	subtasks := c.SubtaskList()
	require.Len(t, subtasks, 2)
	require.Equal(t, "Install", subtasks[0].Name)
	require.True(t, subtasks[1].RewardCoins.Equal(decimal.NewFromInt(80)))

	require.Nil(t, (&Campaign{}).SubtaskList())
}
