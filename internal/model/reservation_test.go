package model

import (
	"testing"
	"time"
)

func at(hour, minute int) time.Time {
	return time.Date(2025, 1, 15, hour, minute, 0, 0, time.UTC)
}

func TestOverlaps(t *testing.T) {
	tests := []struct {
		name   string
		s1, e1 time.Time
		s2, e2 time.Time
		want   bool
	}{
		{
			name: "新しい予約が既存の予約の途中から始まる",
			s1:   at(10, 0), e1: at(11, 0),
			s2: at(10, 30), e2: at(11, 30),
			want: true,
		},
		{
			name: "既存の予約が新しい予約の途中から始まる",
			s1:   at(10, 30), e1: at(11, 30),
			s2: at(10, 0), e2: at(11, 0),
			want: true,
		},
		{
			name: "新しい予約が既存の予約を包含する",
			s1:   at(9, 0), e1: at(12, 0),
			s2: at(10, 0), e2: at(11, 0),
			want: true,
		},
		{
			name: "同一の時間帯",
			s1:   at(10, 0), e1: at(11, 0),
			s2: at(10, 0), e2: at(11, 0),
			want: true,
		},
		{
			name: "境界が接しているだけ",
			s1:   at(9, 0), e1: at(10, 0),
			s2: at(10, 0), e2: at(11, 0),
			want: false,
		},
		{
			name: "離れている",
			s1:   at(9, 0), e1: at(9, 30),
			s2: at(13, 0), e2: at(14, 0),
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Overlaps(tt.s1, tt.e1, tt.s2, tt.e2); got != tt.want {
				t.Errorf("Overlaps() = %v, want %v", got, tt.want)
			}
			// 交差判定は対称である
			if got := Overlaps(tt.s2, tt.e2, tt.s1, tt.e1); got != tt.want {
				t.Errorf("Overlaps() reversed = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestFindConflict(t *testing.T) {
	existing := []Reservation{
		{ID: 1, Title: "朝会", StartTime: at(9, 0), EndTime: at(10, 0)},
		{ID: 2, Title: "定例", StartTime: at(13, 0), EndTime: at(14, 0)},
	}

	if got := FindConflict(at(10, 0), at(13, 0), existing); got != nil {
		t.Errorf("FindConflict() = %v, want nil", got.ID)
	}

	got := FindConflict(at(13, 30), at(15, 0), existing)
	if got == nil || got.ID != 2 {
		t.Fatalf("FindConflict() = %v, want reservation 2", got)
	}
}

func TestNewReservation(t *testing.T) {
	jst := time.FixedZone("JST", 9*60*60)
	now := time.Date(2025, 1, 14, 18, 0, 0, 123, jst)
	req := ReservationRequest{
		OwnerID:             "U001",
		OwnerName:           "山田太郎",
		ChannelID:           "C001",
		Title:               "  週次定例会議 ",
		StartTime:           time.Date(2025, 1, 15, 10, 0, 0, 500, jst),
		EndTime:             time.Date(2025, 1, 15, 11, 0, 0, 0, jst),
		ReminderLeadMinutes: 15,
	}

	r := NewReservation(req, now)

	if r.Title != "週次定例会議" {
		t.Errorf("NewReservation() title = %q, want %q", r.Title, "週次定例会議")
	}
	if !r.StartTime.Equal(at(10, 0)) {
		t.Errorf("NewReservation() start = %v, want %v", r.StartTime, at(10, 0))
	}
	if r.StartTime.Location() != time.UTC {
		t.Errorf("NewReservation() start location = %v, want UTC", r.StartTime.Location())
	}
	if !r.RemindAt.Equal(at(9, 45)) {
		t.Errorf("NewReservation() remind_at = %v, want %v", r.RemindAt, at(9, 45))
	}
	if r.ReminderSent {
		t.Error("NewReservation() reminder_sent should be false")
	}
	if r.CreatedAt.Nanosecond() != 0 {
		t.Errorf("NewReservation() created_at should be truncated, got %v", r.CreatedAt)
	}
}

func TestReservation_IsReminderDue(t *testing.T) {
	now := at(10, 0)

	tests := []struct {
		name string
		lead int
		sent bool
		from time.Time
		want bool
	}{
		{name: "通知タイミングを過ぎている", lead: 15, from: now.Add(10 * time.Minute), want: true},
		{name: "通知タイミング前", lead: 5, from: now.Add(10 * time.Minute), want: false},
		{name: "ちょうど通知タイミング", lead: 10, from: now.Add(10 * time.Minute), want: true},
		{name: "送信済み", lead: 15, sent: true, from: now.Add(10 * time.Minute), want: false},
		{name: "開始時刻を過ぎている", lead: 15, from: now.Add(-1 * time.Minute), want: false},
		{name: "開始時刻ちょうど", lead: 0, from: now, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewReservation(ReservationRequest{
				Title:               "定例",
				StartTime:           tt.from,
				EndTime:             tt.from.Add(time.Hour),
				ReminderLeadMinutes: tt.lead,
			}, now.Add(-24*time.Hour))
			r.ReminderSent = tt.sent

			if got := r.IsReminderDue(now); got != tt.want {
				t.Errorf("IsReminderDue() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestParseDate(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		input   string
		want    time.Time
		wantErr bool
	}{
		{name: "スラッシュ区切り", input: "2025/01/15", want: time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC)},
		{name: "ハイフン区切り", input: "2025-01-15", want: time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC)},
		{name: "年を省略", input: "1/15", want: time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC)},
		{name: "存在しない日付", input: "2025/02/30", wantErr: true},
		{name: "不正な形式", input: "明日", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseDate(tt.input, now)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseDate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && !got.Equal(tt.want) {
				t.Errorf("ParseDate() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestDayRange(t *testing.T) {
	from, to := DayRange(at(15, 30))
	if !from.Equal(at(0, 0)) {
		t.Errorf("DayRange() from = %v, want %v", from, at(0, 0))
	}
	if !to.Equal(time.Date(2025, 1, 16, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("DayRange() to = %v", to)
	}
}
