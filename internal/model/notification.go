package model

import (
	"fmt"
	"time"
)

// NotificationType は通知の種類を表します
type NotificationType string

const (
	// NotificationTypeReminder は開始前のリマインダー通知を表します
	NotificationTypeReminder NotificationType = "reminder"
)

// DeliveryStatus は通知の受け渡し結果を表します
type DeliveryStatus string

const (
	// DeliveryStatusSent は通知基盤への受け渡しに成功したことを表します
	DeliveryStatusSent DeliveryStatus = "sent"
	// DeliveryStatusFailed は通知基盤への受け渡しに失敗したことを表します
	DeliveryStatusFailed DeliveryStatus = "failed"
)

// ReminderNotification は「チャンネルXに予約Yを通知する」イベントです
// 通知基盤（外部のトランスポート）に渡されます
type ReminderNotification struct {
	Type        NotificationType `json:"type"`
	Channel     string           `json:"channel"`
	Reservation Reservation      `json:"reservation"`
	Message     string           `json:"message"`
	CreatedAt   time.Time        `json:"created_at"`
}

// NotificationRecord は通知の受け渡し結果の記録です
// データベースに永続化される通知レコードと一致しています
type NotificationRecord struct {
	ID            int64          `db:"id"`
	ReservationID int64          `db:"reservation_id"`
	ChannelID     string         `db:"channel_id"`
	Message       string         `db:"message"`
	Status        DeliveryStatus `db:"status"`
	Error         string         `db:"error"`
	CreatedAt     time.Time      `db:"created_at"`
}

// NewReminderNotification は予約からリマインダー通知を作成します
func NewReminderNotification(r Reservation, now time.Time) ReminderNotification {
	message := fmt.Sprintf(`リマインダー: まもなく会議が始まります

*ミーティング名:* %s
*時間:* %s
*予約者:* %s`, r.Title, r.StartTime.Format(DateTimeLayout), r.OwnerName)

	return ReminderNotification{
		Type:        NotificationTypeReminder,
		Channel:     r.ChannelID,
		Reservation: r,
		Message:     message,
		CreatedAt:   Naive(now),
	}
}

// ToNotificationRecord は通知を受け渡し結果のレコードに変換します
// deliveryErrがnilの場合は送信済み、それ以外は失敗として記録します
func (n ReminderNotification) ToNotificationRecord(deliveryErr error) NotificationRecord {
	record := NotificationRecord{
		ReservationID: n.Reservation.ID,
		ChannelID:     n.Channel,
		Message:       n.Message,
		Status:        DeliveryStatusSent,
		CreatedAt:     n.CreatedAt,
	}
	if deliveryErr != nil {
		record.Status = DeliveryStatusFailed
		record.Error = deliveryErr.Error()
	}
	return record
}
