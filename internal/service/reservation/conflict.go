package reservation

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/uma-arai/sbcntr-roombook/internal/model"
)

// OverlapFinder は交差する予約をストアから検索します
type OverlapFinder interface {
	FindOverlapping(ctx context.Context, q sqlx.QueryerContext, start, end time.Time, excludeID int64) (*model.Reservation, error)
}

// ConflictChecker は新しい予約の時間帯が既存の予約と重複するかを判定します
// 判定は半開区間 [start, end) の交差で行い、境界が接するだけの場合は重複としません
type ConflictChecker struct {
	finder OverlapFinder
}

func NewConflictChecker(finder OverlapFinder) *ConflictChecker {
	return &ConflictChecker{finder: finder}
}

// Check は重複する予約があればそれを返します。重複がなければnilを返します
func (c *ConflictChecker) Check(ctx context.Context, start, end time.Time, excludeID int64) (*model.Reservation, error) {
	// 区間として成立しない場合は交差しない
	if !start.Before(end) {
		return nil, nil
	}
	return c.finder.FindOverlapping(ctx, nil, start, end, excludeID)
}
