package repository

import (
	"context"

	"github.com/uma-arai/sbcntr-roombook/internal/common/utils"
	"github.com/uma-arai/sbcntr-roombook/internal/model"
)

// NotificationRepository は通知の受け渡し結果の永続化を担当するインターフェースです
type NotificationRepository interface {
	Create(ctx context.Context, record *model.NotificationRecord) error
	GetByReservationID(ctx context.Context, reservationID int64) ([]model.NotificationRecord, error)
}

// NotificationRepositoryImpl は通知の受け渡し結果の永続化を担当します
type NotificationRepositoryImpl struct {
	db *DB
}

// NewNotificationRepository は新しいNotificationRepositoryを作成します
func NewNotificationRepository(db *DB) *NotificationRepositoryImpl {
	return &NotificationRepositoryImpl{
		db: db,
	}
}

// Create は単一の通知レコードを作成します
func (r *NotificationRepositoryImpl) Create(ctx context.Context, record *model.NotificationRecord) (err error) {
	ctx, end := utils.BeginSubsegment(ctx, "NotificationRepository.Create")
	defer func() { end(err) }()

	query := r.db.Rebind(`
		INSERT INTO notifications (
			reservation_id, channel_id, message, status, error, created_at
		) VALUES (
			?, ?, ?, ?, ?, ?
		)
		RETURNING id`)

	err = r.db.QueryRowxContext(ctx,
		query,
		record.ReservationID,
		record.ChannelID,
		record.Message,
		record.Status,
		record.Error,
		model.Naive(record.CreatedAt),
	).Scan(&record.ID)
	if err != nil {
		return model.NewStorageError("create notification", err)
	}

	return nil
}

// GetByReservationID は指定された予約の通知レコードを古い順に取得します
func (r *NotificationRepositoryImpl) GetByReservationID(ctx context.Context, reservationID int64) ([]model.NotificationRecord, error) {
	query := `
		SELECT id, reservation_id, channel_id, message, status, error, created_at
		FROM notifications
		WHERE reservation_id = ?
		ORDER BY id ASC`

	records := []model.NotificationRecord{}
	if err := r.db.SelectContext(ctx, &records, query, reservationID); err != nil {
		return nil, model.NewStorageError("get notifications", err)
	}

	return records, nil
}
