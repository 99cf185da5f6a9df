package notifier

import (
	"context"
	"log"

	"github.com/uma-arai/sbcntr-roombook/internal/model"
)

// Notifier はリマインダー通知を通知基盤に受け渡します
// nilを返した時点で受け渡しが完了したとみなします
type Notifier interface {
	Notify(ctx context.Context, n model.ReminderNotification) error
}

// LogNotifier は通知をログに出力するだけのNotifierです
// ローカル環境で使用します
type LogNotifier struct {
	logger *log.Logger
}

// NewLogNotifier は新しいLogNotifierを作成します
// loggerがnilの場合は標準のロガーを使用します
func NewLogNotifier(logger *log.Logger) *LogNotifier {
	if logger == nil {
		logger = log.Default()
	}
	return &LogNotifier{logger: logger}
}

func (n *LogNotifier) Notify(ctx context.Context, notification model.ReminderNotification) error {
	n.logger.Printf("[%s] channel=%s reservation=%d\n%s",
		notification.Type, notification.Channel, notification.Reservation.ID, notification.Message)
	return nil
}
