package activity

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Devraj069/TaskWin/pkg/db/pagination"
	"github.com/Devraj069/TaskWin/services/testutil"
)

func init() {
	zap.ReplaceGlobals(zap.NewNop())
}

func newTestService(t *testing.T) *Service {
	t.Helper()
	db := testutil.NewTestDB(t, &Record{})
	return NewService(ServiceParams{DB: db, Node: testutil.NewTestNode(t)})
}

func TestAppendAndList(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	err := svc.Append(ctx, "user_1", TypeAffiliateCompleted, map[string]any{
		"campaign_id": "camp_1",
		"coins":       "50",
	})
	require.NoError(t, err)

	err = svc.Append(ctx, "user_1", TypeAffiliateRejected, nil)
	require.NoError(t, err)

	records, err := svc.ListByUser(ctx, "user_1", 10)
	require.NoError(t, err)
	require.Len(t, records, 2)

	var details map[string]any
	for _, r := range records {
		if r.Type == TypeAffiliateCompleted {
			require.NoError(t, json.Unmarshal(r.Details, &details))
		}
	}
	require.Equal(t, "camp_1", details["campaign_id"])
}

func TestListByUserIsolation(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	require.NoError(t, svc.Append(ctx, "user_1", TypeTaskStarted, nil))
	require.NoError(t, svc.Append(ctx, "user_2", TypeTaskStarted, nil))

	records, err := svc.ListByUser(ctx, "user_1", 10)
	require.NoError(t, err)
	require.Len(t, records, 1)
	require.Equal(t, "user_1", records[0].UserID)
}

func TestCountByUser(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	require.NoError(t, svc.Append(ctx, "user_1", TypeAffiliateCompleted, nil))
	require.NoError(t, svc.Append(ctx, "user_1", TypeAffiliateCompleted, nil))
	require.NoError(t, svc.Append(ctx, "user_1", TypeAffiliateRejected, nil))

	count, err := svc.CountByUser(ctx, "user_1", TypeAffiliateCompleted)
	require.NoError(t, err)
	require.Equal(t, int64(2), count)
}

func TestListPageWalksAllRecords(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	const total = 7
	for i := 0; i < total; i++ {
		require.NoError(t, svc.Append(ctx, "user_1", TypeTaskStarted, map[string]any{
			"seq": fmt.Sprintf("%d", i),
		}))
	}

	seen := map[string]bool{}
	page := pagination.Pagination{Limit: 3}
	for {
		records, info, err := svc.ListPage(ctx, "user_1", page)
		require.NoError(t, err)
		for _, r := range records {
			require.False(t, seen[r.ID], "record %s returned twice", r.ID)
			seen[r.ID] = true
		}
		if !info.HasMore {
			break
		}
		require.NotEmpty(t, info.NextCursor)
		page.Cursor = info.NextCursor
	}

	require.Len(t, seen, total)
}

func TestListPageRejectsBadCursor(t *testing.T) {
	svc := newTestService(t)

	_, _, err := svc.ListPage(context.Background(), "user_1", pagination.Pagination{
		Cursor: "not-base64!",
		Limit:  10,
	})
	require.Error(t, err)
}
