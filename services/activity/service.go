package activity

import (
	"context"
	"encoding/json"
	"time"

	"github.com/Devraj069/TaskWin/pkg/db/option"
	"github.com/Devraj069/TaskWin/pkg/db/pagination"
	"github.com/Devraj069/TaskWin/pkg/errutil"
	"github.com/Devraj069/TaskWin/pkg/repository"

	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Service struct {
	db   *gorm.DB
	node *snowflake.Node

	records repository.Repository[Record]
}

type ServiceParams struct {
	fx.In

	DB   *gorm.DB
	Node *snowflake.Node
}

func NewService(p ServiceParams) *Service {
	return &Service{
		db:      p.DB,
		node:    p.Node,
		records: repository.ProvideStore[Record](p.DB),
	}
}

// Append writes one audit record. Callers decide whether a failure here is
// fatal; the reconciler treats it as non-critical and swallows the error.
func (s *Service) Append(ctx context.Context, userID, recordType string, details map[string]any) error {
	var detailsJSON datatypes.JSON
	if len(details) > 0 {
		raw, err := json.Marshal(details)
		if err != nil {
			return err
		}
		detailsJSON = datatypes.JSON(raw)
	}

	return s.records.Create(ctx, &Record{
		ID:      s.node.Generate().String(),
		UserID:  userID,
		Type:    recordType,
		Details: detailsJSON,
	})
}

// ListByUser returns the newest records first.
func (s *Service) ListByUser(ctx context.Context, userID string, limit int) ([]*Record, error) {
	if limit <= 0 || limit > 250 {
		limit = 50
	}
	return s.records.Find(ctx, &Record{UserID: userID},
		option.WithSortBy(option.QuerySortBy{
			SortBy:  "created_at",
			OrderBy: "desc",
			Allow:   map[string]bool{"created_at": true},
		}),
		option.WithLimit(limit),
	)
}

// ListPage returns one cursor page of a user's feed, newest first. The
// cursor encodes the last row's (created_at, id) so inserts between pages
// never shift results.
func (s *Service) ListPage(ctx context.Context, userID string, page pagination.Pagination) ([]*Record, *pagination.PageInfo, error) {
	limit := page.Limit
	if limit <= 0 || limit > 250 {
		limit = 50
	}

	q := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at desc, id desc").
		Limit(limit + 1)

	if page.Cursor != "" {
		cursor, err := pagination.DecodeCursor(page.Cursor)
		if err != nil {
			return nil, nil, errutil.BadRequest("invalid cursor", err)
		}
		ts, err := time.Parse(time.RFC3339Nano, cursor.CreatedAt)
		if err != nil {
			return nil, nil, errutil.BadRequest("invalid cursor", err)
		}
		q = q.Where("created_at < ? OR (created_at = ? AND id < ?)", ts, ts, cursor.ID)
	}

	var records []*Record
	if err := q.Find(&records).Error; err != nil {
		return nil, nil, err
	}

	records, info := pagination.BuildPage(records, limit, func(r *Record) pagination.Cursor {
		return pagination.Cursor{
			CreatedAt: r.CreatedAt.UTC().Format(time.RFC3339Nano),
			ID:        r.ID,
		}
	})
	return records, info, nil
}

// CountByUser reports how many records of one type a user accumulated.
func (s *Service) CountByUser(ctx context.Context, userID, recordType string) (int64, error) {
	return s.records.Count(ctx, &Record{UserID: userID, Type: recordType})
}
