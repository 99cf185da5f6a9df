package model

import "fmt"

// DefaultReminderLeadMinutes はリマインダーの既定の通知タイミング（分）です
const DefaultReminderLeadMinutes = 15

// ReminderLeadOption はリマインダーの選択肢です
type ReminderLeadOption struct {
	Label   string `json:"label"`
	Minutes int    `json:"minutes"`
}

// ReminderLeadOptions はフロントエンドが提示するリマインダーの選択肢を返します
func ReminderLeadOptions() []ReminderLeadOption {
	return []ReminderLeadOption{
		{Label: "5分前", Minutes: 5},
		{Label: "10分前", Minutes: 10},
		{Label: "15分前", Minutes: 15},
		{Label: "30分前", Minutes: 30},
		{Label: "1時間前", Minutes: 60},
		{Label: "3時間前", Minutes: 180},
		{Label: "24時間前", Minutes: 1440},
	}
}

// FormatReminderLead はリマインダーの分数を表示用テキストに変換します
func FormatReminderLead(minutes int) string {
	for _, o := range ReminderLeadOptions() {
		if o.Minutes == minutes {
			return o.Label
		}
	}
	if minutes == 0 {
		return "開始時刻"
	}
	return fmt.Sprintf("%d分前", minutes)
}

// TimeSlotOptions は予約フォームで選択できる時刻（30分刻み、07:00〜21:30）を返します
func TimeSlotOptions() []string {
	slots := make([]string, 0, 30)
	for hour := 7; hour < 22; hour++ {
		for _, minute := range []int{0, 30} {
			slots = append(slots, fmt.Sprintf("%02d:%02d", hour, minute))
		}
	}
	return slots
}
