package model

import (
	"fmt"
	"regexp"
	"strconv"
	"time"
)

const (
	// DateLayout は日付のみを表すレイアウトです
	DateLayout = "2006-01-02"
	// DateTimeLayout は通知メッセージ等で使う日時レイアウトです
	DateTimeLayout = "2006/01/02 15:04"
	// ClockLayout は時刻のみを表すレイアウトです
	ClockLayout = "15:04"
)

// Naive はタイムゾーンを持たないローカル時刻に正規化します
// 壁時計の値はそのままにロケーションをUTCへ置き換え、秒未満を切り捨てます
// 保存・比較されるすべての時刻は同じ暗黙のローカルタイムゾーンを前提とします
func Naive(t time.Time) time.Time {
	if t.IsZero() {
		return t
	}
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), 0, time.UTC)
}

// Now は現在のローカル時刻をNaiveで返します
func Now() time.Time {
	return Naive(time.Now())
}

// DayRange はdateを含む日の [00:00, 翌日00:00) を返します
func DayRange(date time.Time) (time.Time, time.Time) {
	d := Naive(date)
	from := time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, time.UTC)
	return from, from.AddDate(0, 0, 1)
}

// CombineDateClock は "2006-01-02" と "15:04" を組み合わせて日時を作ります
func CombineDateClock(date, clock string) (time.Time, error) {
	t, err := time.ParseInLocation(DateLayout+" "+ClockLayout, date+" "+clock, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date time %q %q: %w", date, clock, err)
	}
	return t, nil
}

var datePattern = regexp.MustCompile(`^(?:(\d{1,4})[/-])?(\d{1,2})[/-](\d{1,2})$`)

// ParseDate は "2025/01/15"、"2025-01-15"、"1/15" 形式の日付を解釈します
// 年を省略した場合はnowの年を補います
func ParseDate(s string, now time.Time) (time.Time, error) {
	m := datePattern.FindStringSubmatch(s)
	if m == nil {
		return time.Time{}, fmt.Errorf("invalid date format: %q", s)
	}

	year := now.Year()
	if m[1] != "" {
		year, _ = strconv.Atoi(m[1])
	}
	month, _ := strconv.Atoi(m[2])
	day, _ := strconv.Atoi(m[3])

	t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	// time.Dateは範囲外の値を正規化するため、往復で一致するかを確認する
	if t.Month() != time.Month(month) || t.Day() != day {
		return time.Time{}, fmt.Errorf("invalid date: %q", s)
	}
	return t, nil
}
