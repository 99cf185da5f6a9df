package model

import (
	"strings"
	"time"
)

// Reservation は会議室の予約を表すドメインモデルです
// データベースに永続化される予約レコードと一致しています
type Reservation struct {
	ID                  int64     `db:"id" json:"id"`
	OwnerID             string    `db:"owner_id" json:"owner_id"`
	OwnerName           string    `db:"owner_name" json:"owner_name"`
	ChannelID           string    `db:"target_channel" json:"target_channel"`
	Title               string    `db:"title" json:"title"`
	StartTime           time.Time `db:"start_time" json:"start_time"`
	EndTime             time.Time `db:"end_time" json:"end_time"`
	ReminderLeadMinutes int       `db:"reminder_lead_minutes" json:"reminder_lead_minutes"`
	ReminderSent        bool      `db:"reminder_sent" json:"reminder_sent"`
	RemindAt            time.Time `db:"remind_at" json:"remind_at"`
	CreatedAt           time.Time `db:"created_at" json:"created_at"`
}

// ReservationRequest は予約作成時にフロントエンドから渡される入力です
type ReservationRequest struct {
	OwnerID             string    `json:"owner_id"`
	OwnerName           string    `json:"owner_name"`
	ChannelID           string    `json:"target_channel"`
	Title               string    `json:"title"`
	StartTime           time.Time `json:"start_time"`
	EndTime             time.Time `json:"end_time"`
	ReminderLeadMinutes int       `json:"reminder_lead_minutes"`
}

// NewReservation はリクエストから未採番の予約を作成します
// 時刻はすべてNaiveに正規化されます
func NewReservation(req ReservationRequest, now time.Time) Reservation {
	start := Naive(req.StartTime)
	return Reservation{
		OwnerID:             req.OwnerID,
		OwnerName:           req.OwnerName,
		ChannelID:           req.ChannelID,
		Title:               strings.TrimSpace(req.Title),
		StartTime:           start,
		EndTime:             Naive(req.EndTime),
		ReminderLeadMinutes: req.ReminderLeadMinutes,
		ReminderSent:        false,
		RemindAt:            start.Add(-time.Duration(req.ReminderLeadMinutes) * time.Minute),
		CreatedAt:           Naive(now),
	}
}

// Overlaps は半開区間 [s1, e1) と [s2, e2) が交差するかを判定します
// 境界が接しているだけの場合は交差しません
func Overlaps(s1, e1, s2, e2 time.Time) bool {
	return s1.Before(e2) && s2.Before(e1)
}

// OverlapsWith は予約が [start, end) と交差するかを判定します
func (r Reservation) OverlapsWith(start, end time.Time) bool {
	return Overlaps(r.StartTime, r.EndTime, Naive(start), Naive(end))
}

// IsReminderDue はnow時点でリマインダーを送るべきかを判定します
// 開始時刻を過ぎた予約は対象外です
func (r Reservation) IsReminderDue(now time.Time) bool {
	now = Naive(now)
	if r.ReminderSent || !r.StartTime.After(now) {
		return false
	}
	return !r.RemindAt.After(now)
}

// FindConflict はexistingの中から [start, end) と交差する最初の予約を返します
func FindConflict(start, end time.Time, existing []Reservation) *Reservation {
	for i := range existing {
		if existing[i].OverlapsWith(start, end) {
			return &existing[i]
		}
	}
	return nil
}
