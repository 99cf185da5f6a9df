package batch

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/aws/aws-xray-sdk-go/xray"
	"github.com/google/uuid"
	"github.com/uma-arai/sbcntr-roombook/internal/common/config"
	"github.com/uma-arai/sbcntr-roombook/internal/common/database"
	"github.com/uma-arai/sbcntr-roombook/internal/common/utils"
	"github.com/uma-arai/sbcntr-roombook/internal/model"
	"github.com/uma-arai/sbcntr-roombook/internal/notifier"
	"github.com/uma-arai/sbcntr-roombook/internal/repository"
)

const segmentName = "sbcntr-roombook-reminder"

// TickResult は1回のリマインダー処理の結果です
type TickResult struct {
	Due    int
	Sent   int
	Failed int
}

// ReminderBatchService はリマインダーの送信を担当します
type ReminderBatchService struct {
	db               *database.DB
	reservationRepo  repository.ReservationRepository
	notificationRepo repository.NotificationRepository
	notifier         notifier.Notifier
	cfg              *config.Config
	now              func() time.Time
}

// NewReminderBatchService は新しいReminderBatchServiceを作成します
func NewReminderBatchService(cfg *config.Config, n notifier.Notifier) (*ReminderBatchService, error) {
	db, err := database.NewDB(cfg.DB)
	if err != nil {
		return nil, fmt.Errorf("failed to create database connection: %w", err)
	}

	repoDb := repository.NewDB(db)

	return &ReminderBatchService{
		db:               db,
		reservationRepo:  repository.NewReservationRepository(repoDb),
		notificationRepo: repository.NewNotificationRepository(repoDb),
		notifier:         n,
		cfg:              cfg,
		now:              model.Now,
	}, nil
}

// Migrate はリマインダー処理に必要なテーブルを作成します
func (s *ReminderBatchService) Migrate(ctx context.Context) error {
	return s.db.Migrate(ctx)
}

// Close は終了処理を行います
func (s *ReminderBatchService) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Run はリマインダー処理を1回実行します
// 1件の通知に失敗しても残りの予約の処理を続けます。失敗した予約は送信済みにならないため次回再送されます
func (s *ReminderBatchService) Run(ctx context.Context) (result TickResult, err error) {
	ctx, end := utils.BeginSubsegment(ctx, "ReminderBatchService.Run")
	defer func() { end(err) }()

	startTime := time.Now()
	now := model.Naive(s.now())
	runID := uuid.NewString()
	utils.AddMetadata(ctx, "run_id", runID)

	due, err := s.reservationRepo.FindDueReminders(ctx, now)
	if err != nil {
		return result, fmt.Errorf("failed to find due reminders: %w", err)
	}
	result.Due = len(due)
	if len(due) == 0 {
		return result, nil
	}

	log.Printf("[%s] Found %d due reminders at %s", runID, len(due), now.Format(model.DateTimeLayout))

	for _, reservation := range due {
		// タイムアウトした場合は残りを次回に回す
		if ctx.Err() != nil {
			return result, fmt.Errorf("stopped after %d of %d reminders: %w", result.Sent+result.Failed, len(due), ctx.Err())
		}

		if err := s.deliver(ctx, reservation, now); err != nil {
			log.Printf("[%s] Failed to send reminder for reservation %d: %v", runID, reservation.ID, err)
			result.Failed++
			continue
		}
		result.Sent++
	}

	duration := time.Since(startTime)
	utils.AddMetadata(ctx, "due_count", result.Due)
	utils.AddMetadata(ctx, "sent_count", result.Sent)
	utils.AddMetadata(ctx, "failed_count", result.Failed)
	utils.AddMetadata(ctx, "duration", duration.String())

	log.Printf("[%s] Reminder batch process completed. Sent: %d, Failed: %d, Duration: %v", runID, result.Sent, result.Failed, duration)
	return result, nil
}

// deliver は1件の予約のリマインダーを通知基盤に受け渡し、結果を記録します
func (s *ReminderBatchService) deliver(ctx context.Context, reservation model.Reservation, now time.Time) (err error) {
	ctx, end := utils.BeginSubsegment(ctx, "ReminderBatchService.deliver")
	defer func() { end(err) }()

	notification := model.NewReminderNotification(reservation, now)
	notifyErr := s.notifier.Notify(ctx, notification)

	record := notification.ToNotificationRecord(notifyErr)
	if logErr := s.notificationRepo.Create(ctx, &record); logErr != nil {
		log.Printf("Failed to record delivery for reservation %d: %v", reservation.ID, logErr)
	}

	if notifyErr != nil {
		return fmt.Errorf("failed to notify: %w", notifyErr)
	}

	// 受け渡し後にフラグを更新する。更新に失敗した場合は次回もう一度通知される
	if err := s.reservationRepo.MarkReminderSent(ctx, reservation.ID); err != nil {
		return fmt.Errorf("notified but failed to mark as sent: %w", err)
	}

	log.Printf("Reminder sent for reservation %d to %s", reservation.ID, notification.Channel)
	return nil
}

// Start はctxが終了するまでintervalごとにリマインダー処理を実行します
// 実行中の処理はctxが終了しても最後まで実行し、その後に戻ります
func (s *ReminderBatchService) Start(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	log.Printf("Reminder dispatcher started. Interval: %v, Tick timeout: %v", interval, s.cfg.Reminder.TickTimeout)

	for {
		// tickerに溜まった値とctxの終了が同時に届いた場合もここで止める
		if ctx.Err() != nil {
			log.Println("Reminder dispatcher stopped")
			return
		}

		s.tick(ctx)

		select {
		case <-ctx.Done():
			log.Println("Reminder dispatcher stopped")
			return
		case <-ticker.C:
		}
	}
}

// tick は停止要求の影響を受けないコンテキストで1回分の処理を実行します
// エラーやpanicはログに出力し、呼び出し元には返しません
func (s *ReminderBatchService) tick(parent context.Context) {
	ctx := context.WithoutCancel(parent)

	if s.cfg.EnableTracing {
		var seg *xray.Segment
		ctx, seg = xray.BeginSegment(ctx, segmentName)
		defer seg.Close(nil)
	}

	err := utils.RunWithTimeout(ctx, s.cfg.Reminder.TickTimeout, func(ctx context.Context) error {
		_, err := s.Run(ctx)
		return err
	})
	if err != nil {
		// panicの場合はスタックトレースが含まれている
		log.Printf("Reminder tick failed: %v", err)
	}
}
