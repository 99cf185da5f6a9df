package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/uma-arai/sbcntr-roombook/internal/common/utils"
	"github.com/uma-arai/sbcntr-roombook/internal/model"
)

// ReservationRepository は予約の永続化を担当するインターフェースです
type ReservationRepository interface {
	CreateIfFree(ctx context.Context, reservation *model.Reservation) (*model.Reservation, error)
	Insert(ctx context.Context, tx *sqlx.Tx, reservation *model.Reservation) (int64, error)
	GetByID(ctx context.Context, id int64) (*model.Reservation, error)
	FindByExactDate(ctx context.Context, date time.Time) ([]model.Reservation, error)
	FindUpcomingByOwner(ctx context.Context, ownerID string, now time.Time) ([]model.Reservation, error)
	FindOverlapping(ctx context.Context, q sqlx.QueryerContext, start, end time.Time, excludeID int64) (*model.Reservation, error)
	FindDueReminders(ctx context.Context, now time.Time) ([]model.Reservation, error)
	MarkReminderSent(ctx context.Context, id int64) error
	DeleteOwned(ctx context.Context, id int64, ownerID string) (*model.Reservation, error)
}

const reservationColumns = `
			id,
			owner_id,
			owner_name,
			target_channel,
			title,
			start_time,
			end_time,
			reminder_lead_minutes,
			reminder_sent,
			remind_at,
			created_at`

type ReservationRepositoryImpl struct {
	db *DB
}

func NewReservationRepository(db *DB) *ReservationRepositoryImpl {
	return &ReservationRepositoryImpl{db: db}
}

// CreateIfFree は重複チェックと登録を1つのトランザクションで実行します
// 重複する予約があった場合は登録せずにその予約を返します
// PostgreSQLはテーブルロック、SQLiteはBEGIN IMMEDIATEで同時実行を直列化します
func (r *ReservationRepositoryImpl) CreateIfFree(ctx context.Context, reservation *model.Reservation) (conflict *model.Reservation, err error) {
	ctx, end := utils.BeginSubsegment(ctx, "ReservationRepository.CreateIfFree")
	defer func() { end(err) }()

	err = r.db.WithTx(ctx, func(tx *sqlx.Tx) error {
		if stmt := r.db.LockReservationsStmt(); stmt != "" {
			if _, err := tx.ExecContext(ctx, stmt); err != nil {
				return fmt.Errorf("failed to lock reservations: %w", err)
			}
		}

		found, err := r.FindOverlapping(ctx, tx, reservation.StartTime, reservation.EndTime, 0)
		if err != nil {
			return err
		}
		if found != nil {
			conflict = found
			return nil
		}

		_, err = r.Insert(ctx, tx, reservation)
		return err
	})
	if err != nil {
		return nil, model.NewStorageError("create reservation", err)
	}

	return conflict, nil
}

// Insert は予約を登録し、採番されたIDを返します
// 重複チェックは呼び出し側が同じトランザクション内で済ませている前提です
func (r *ReservationRepositoryImpl) Insert(ctx context.Context, tx *sqlx.Tx, reservation *model.Reservation) (id int64, err error) {
	ctx, end := utils.BeginSubsegment(ctx, "ReservationRepository.Insert")
	defer func() { end(err) }()

	query := tx.Rebind(`
		INSERT INTO reservations (
			owner_id,
			owner_name,
			target_channel,
			title,
			start_time,
			end_time,
			reminder_lead_minutes,
			reminder_sent,
			remind_at,
			created_at
		) VALUES (
			?, ?, ?, ?, ?, ?, ?, ?, ?, ?
		)
		RETURNING id`)

	err = tx.QueryRowxContext(ctx,
		query,
		reservation.OwnerID,
		reservation.OwnerName,
		reservation.ChannelID,
		reservation.Title,
		reservation.StartTime,
		reservation.EndTime,
		reservation.ReminderLeadMinutes,
		reservation.ReminderSent,
		reservation.RemindAt,
		reservation.CreatedAt,
	).Scan(&reservation.ID)
	if err != nil {
		return 0, model.NewStorageError("insert reservation", err)
	}

	return reservation.ID, nil
}

// GetByID は指定したIDの予約を取得します。存在しない場合はnilを返します
func (r *ReservationRepositoryImpl) GetByID(ctx context.Context, id int64) (*model.Reservation, error) {
	query := `SELECT` + reservationColumns + `
		FROM reservations
		WHERE id = ?`

	var reservation model.Reservation
	if err := r.db.GetContext(ctx, &reservation, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, model.NewStorageError("get reservation", err)
	}
	return normalize(&reservation), nil
}

// FindByExactDate は開始時刻が指定日に含まれる予約を開始時刻順に取得します
func (r *ReservationRepositoryImpl) FindByExactDate(ctx context.Context, date time.Time) (reservations []model.Reservation, err error) {
	ctx, end := utils.BeginSubsegment(ctx, "ReservationRepository.FindByExactDate")
	defer func() { end(err) }()

	from, to := model.DayRange(date)
	query := `SELECT` + reservationColumns + `
		FROM reservations
		WHERE start_time >= ? AND start_time < ?
		ORDER BY start_time ASC`

	if err = r.db.SelectContext(ctx, &reservations, query, from, to); err != nil {
		return nil, model.NewStorageError(fmt.Sprintf("find reservations on %s", from.Format(model.DateLayout)), err)
	}
	return normalizeAll(reservations), nil
}

// FindUpcomingByOwner は指定ユーザーの未来の予約を開始時刻順に取得します
func (r *ReservationRepositoryImpl) FindUpcomingByOwner(ctx context.Context, ownerID string, now time.Time) (reservations []model.Reservation, err error) {
	ctx, end := utils.BeginSubsegment(ctx, "ReservationRepository.FindUpcomingByOwner")
	defer func() { end(err) }()

	query := `SELECT` + reservationColumns + `
		FROM reservations
		WHERE owner_id = ? AND start_time > ?
		ORDER BY start_time ASC`

	if err = r.db.SelectContext(ctx, &reservations, query, ownerID, model.Naive(now)); err != nil {
		return nil, model.NewStorageError("find upcoming reservations", err)
	}
	return normalizeAll(reservations), nil
}

// FindOverlapping は [start, end) と交差する予約を1件返します。ない場合はnilを返します
// 既存の予約が新しい予約の途中から始まる場合、新しい予約が既存の予約の途中から始まる場合、
// 新しい予約が既存の予約を包含する場合のいずれも start_time < end AND end_time > start で判定できます
// qにはトランザクションを渡すことができます。excludeIDが0の場合は除外しません
func (r *ReservationRepositoryImpl) FindOverlapping(ctx context.Context, q sqlx.QueryerContext, start, end time.Time, excludeID int64) (*model.Reservation, error) {
	ctx, endSeg := utils.BeginSubsegment(ctx, "ReservationRepository.FindOverlapping")

	query := `SELECT` + reservationColumns + `
		FROM reservations
		WHERE start_time < ? AND end_time > ?`
	args := []interface{}{model.Naive(end), model.Naive(start)}
	if excludeID != 0 {
		query += ` AND id != ?`
		args = append(args, excludeID)
	}
	query += `
		ORDER BY start_time ASC
		LIMIT 1`

	if q == nil {
		q = r.db.DB.DB
	}

	var reservation model.Reservation
	err := sqlx.GetContext(ctx, q, &reservation, r.db.Rebind(query), args...)
	if errors.Is(err, sql.ErrNoRows) {
		endSeg(nil)
		return nil, nil
	}
	if err != nil {
		endSeg(err)
		return nil, model.NewStorageError("find overlapping reservation", err)
	}

	endSeg(nil)
	return normalize(&reservation), nil
}

// FindDueReminders はリマインダーを送るべき予約を取得します
// 開始時刻を過ぎた予約は、一度も通知していなくても対象外です
func (r *ReservationRepositoryImpl) FindDueReminders(ctx context.Context, now time.Time) (reservations []model.Reservation, err error) {
	ctx, end := utils.BeginSubsegment(ctx, "ReservationRepository.FindDueReminders")
	defer func() { end(err) }()

	now = model.Naive(now)
	query := `SELECT` + reservationColumns + `
		FROM reservations
		WHERE reminder_sent = ?
		AND remind_at <= ?
		AND start_time > ?
		ORDER BY start_time ASC`

	if err = r.db.SelectContext(ctx, &reservations, query, false, now, now); err != nil {
		return nil, model.NewStorageError("find due reminders", err)
	}
	return normalizeAll(reservations), nil
}

// MarkReminderSent はリマインダーを送信済みにします
// 既に送信済みの場合は何もしません
func (r *ReservationRepositoryImpl) MarkReminderSent(ctx context.Context, id int64) (err error) {
	ctx, end := utils.BeginSubsegment(ctx, "ReservationRepository.MarkReminderSent")
	defer func() { end(err) }()

	query := `
		UPDATE reservations
		SET reminder_sent = ?
		WHERE id = ? AND reminder_sent = ?`

	if _, err = r.db.ExecContext(ctx, query, true, id, false); err != nil {
		return model.NewStorageError("mark reminder sent", err)
	}
	return nil
}

// DeleteOwned は本人の予約のみを削除し、削除した予約を返します
// 存在しない場合や他人の予約の場合は何もせずnilを返します
func (r *ReservationRepositoryImpl) DeleteOwned(ctx context.Context, id int64, ownerID string) (deleted *model.Reservation, err error) {
	ctx, end := utils.BeginSubsegment(ctx, "ReservationRepository.DeleteOwned")
	defer func() { end(err) }()

	err = r.db.WithTx(ctx, func(tx *sqlx.Tx) error {
		// まず予約情報を取得
		var reservation model.Reservation
		query := tx.Rebind(`SELECT` + reservationColumns + `
			FROM reservations
			WHERE id = ? AND owner_id = ?`)
		if err := tx.GetContext(ctx, &reservation, query, id, ownerID); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil
			}
			return fmt.Errorf("failed to get reservation %d: %w", id, err)
		}

		// 削除実行
		result, err := tx.ExecContext(ctx, tx.Rebind(`DELETE FROM reservations WHERE id = ? AND owner_id = ?`), id, ownerID)
		if err != nil {
			return fmt.Errorf("failed to delete reservation %d: %w", id, err)
		}
		rowsAffected, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to get rows affected: %w", err)
		}
		if rowsAffected == 1 {
			deleted = normalize(&reservation)
		}
		return nil
	})
	if err != nil {
		return nil, model.NewStorageError("delete reservation", err)
	}

	return deleted, nil
}

// ドライバによって読み出した時刻のロケーションが異なるため、Naiveに揃える
func normalize(r *model.Reservation) *model.Reservation {
	r.StartTime = model.Naive(r.StartTime)
	r.EndTime = model.Naive(r.EndTime)
	r.RemindAt = model.Naive(r.RemindAt)
	r.CreatedAt = model.Naive(r.CreatedAt)
	return r
}

func normalizeAll(rs []model.Reservation) []model.Reservation {
	if rs == nil {
		return []model.Reservation{}
	}
	for i := range rs {
		normalize(&rs[i])
	}
	return rs
}
