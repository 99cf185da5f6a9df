package reservation

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/uma-arai/sbcntr-roombook/internal/common/utils"
	"github.com/uma-arai/sbcntr-roombook/internal/model"
)

// Store はReservation Serviceが利用する予約ストアです
// repository.ReservationRepositoryImplが実装しています
type Store interface {
	OverlapFinder
	CreateIfFree(ctx context.Context, reservation *model.Reservation) (*model.Reservation, error)
	FindByExactDate(ctx context.Context, date time.Time) ([]model.Reservation, error)
	FindUpcomingByOwner(ctx context.Context, ownerID string, now time.Time) ([]model.Reservation, error)
	DeleteOwned(ctx context.Context, id int64, ownerID string) (*model.Reservation, error)
}

// Service は予約の作成・一覧・キャンセルを担当します
type Service struct {
	store   Store
	checker *ConflictChecker
}

// NewService は新しいServiceを作成します
func NewService(store Store) *Service {
	return &Service{
		store:   store,
		checker: NewConflictChecker(store),
	}
}

// Create は予約を検証して登録します
// 検証は終了時刻、過去日時、重複の順に行い、該当するエラーをすべてまとめてValidationErrorで返します
func (s *Service) Create(ctx context.Context, req model.ReservationRequest, now time.Time) (created *model.Reservation, err error) {
	ctx, end := utils.BeginSubsegment(ctx, "ReservationService.Create")
	defer func() { end(storageOnly(err)) }()

	now = model.Naive(now)
	candidate := model.NewReservation(req, now)

	verr := &model.ValidationError{}
	if candidate.Title == "" {
		verr.Add(model.FieldError{
			Field:   model.FieldTitle,
			Code:    model.CodeRequired,
			Message: "ミーティング名を入力してください",
		})
	}
	if candidate.ReminderLeadMinutes < 0 {
		verr.Add(model.FieldError{
			Field:   model.FieldReminder,
			Code:    model.CodeInvalidLead,
			Message: "リマインダーの通知タイミングが不正です",
		})
	}
	if !candidate.EndTime.After(candidate.StartTime) {
		verr.Add(model.FieldError{
			Field:   model.FieldEndTime,
			Code:    model.CodeEndNotAfter,
			Message: "終了時間は開始時間より後に設定してください",
		})
	}
	if !candidate.StartTime.After(now) {
		verr.Add(model.FieldError{
			Field:   model.FieldDate,
			Code:    model.CodeInPast,
			Message: "過去の日時は予約できません",
		})
	}

	// 重複チェック
	conflict, err := s.checker.Check(ctx, candidate.StartTime, candidate.EndTime, 0)
	if err != nil {
		log.Printf("Failed to check conflict for %s-%s: %v", candidate.StartTime, candidate.EndTime, err)
		return nil, err
	}
	if conflict != nil {
		verr.Add(model.NewConflictError(*conflict))
	}

	if len(verr.Fields) > 0 {
		return nil, verr
	}

	// 重複チェックと登録は同じトランザクションで再度行う
	// 上のチェックとの間に別の予約が登録された場合もここで検出できる
	conflict, err = s.store.CreateIfFree(ctx, &candidate)
	if err != nil {
		log.Printf("Failed to create reservation for %s: %v", candidate.OwnerID, err)
		return nil, err
	}
	if conflict != nil {
		return nil, &model.ValidationError{Fields: []model.FieldError{model.NewConflictError(*conflict)}}
	}

	log.Printf("Reservation %d created by %s (%s - %s)",
		candidate.ID, candidate.OwnerID,
		candidate.StartTime.Format(model.DateTimeLayout), candidate.EndTime.Format(model.ClockLayout))
	return &candidate, nil
}

// ListForDate は指定日の予約を開始時刻順に返します。予約がない場合は空のスライスを返します
func (s *Service) ListForDate(ctx context.Context, date time.Time) ([]model.Reservation, error) {
	reservations, err := s.store.FindByExactDate(ctx, date)
	if err != nil {
		log.Printf("Failed to list reservations on %s: %v", date.Format(model.DateLayout), err)
		return nil, err
	}
	return reservations, nil
}

// ListUpcomingForOwner は指定ユーザーのnow以降の予約を開始時刻順に返します
func (s *Service) ListUpcomingForOwner(ctx context.Context, ownerID string, now time.Time) ([]model.Reservation, error) {
	reservations, err := s.store.FindUpcomingByOwner(ctx, ownerID, now)
	if err != nil {
		log.Printf("Failed to list upcoming reservations for %s: %v", ownerID, err)
		return nil, err
	}
	return reservations, nil
}

// Cancel は本人の予約を削除し、削除した予約を返します
// 他人の予約は存在しない予約と同じくNotFoundErrorになります
func (s *Service) Cancel(ctx context.Context, id int64, ownerID string) (*model.Reservation, error) {
	deleted, err := s.store.DeleteOwned(ctx, id, ownerID)
	if err != nil {
		log.Printf("Failed to cancel reservation %d: %v", id, err)
		return nil, err
	}
	if deleted == nil {
		return nil, &model.NotFoundError{ID: id}
	}

	log.Printf("Reservation %d cancelled by %s", deleted.ID, ownerID)
	return deleted, nil
}

// 検証エラーはトレース上の失敗として扱わない
func storageOnly(err error) error {
	if errors.Is(err, model.ErrValidation) {
		return nil
	}
	return err
}
