package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/uma-arai/sbcntr-roombook/internal/model"
)

var (
	accent  = lipgloss.Color("#2563EB") // blue
	fg      = lipgloss.Color("#E8E6E3") // light gray
	dim     = lipgloss.Color("#6B7280") // muted gray
	success = lipgloss.Color("#22C55E") // green
	danger  = lipgloss.Color("#EF4444") // red
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(accent)
	idStyle     = lipgloss.NewStyle().Bold(true).Foreground(accent)
	timeStyle   = lipgloss.NewStyle().Bold(true).Foreground(fg)
	labelStyle  = lipgloss.NewStyle().Bold(true)
	dimStyle    = lipgloss.NewStyle().Foreground(dim)
	okStyle     = lipgloss.NewStyle().Foreground(success)
	failStyle   = lipgloss.NewStyle().Foreground(danger)

	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(accent).
			Padding(0, 2)
)

func renderDay(day time.Time, reservations []model.Reservation) string {
	date := day.Format("2006/01/02")
	if len(reservations) == 0 {
		return dimStyle.Render(date+" の予約はありません。") + "\n"
	}

	var b strings.Builder
	b.WriteString(headerStyle.Render(date+" の予約一覧") + "\n\n")
	for _, r := range reservations {
		b.WriteString(renderEntry(r, model.ClockLayout))
	}
	return b.String()
}

func renderUpcoming(reservations []model.Reservation) string {
	if len(reservations) == 0 {
		return dimStyle.Render("これからの予約はありません。") + "\n"
	}

	var b strings.Builder
	b.WriteString(headerStyle.Render("これからの予約") + "\n\n")
	for _, r := range reservations {
		b.WriteString(renderEntry(r, model.DateTimeLayout))
	}
	return b.String()
}

func renderEntry(r model.Reservation, startLayout string) string {
	return fmt.Sprintf("%s %s\n  %s / %s\n  %s\n\n",
		idStyle.Render(fmt.Sprintf("[ID: %d]", r.ID)),
		timeStyle.Render(r.StartTime.Format(startLayout)+" - "+r.EndTime.Format(model.ClockLayout)),
		r.Title, r.OwnerName,
		dimStyle.Render("対象: #"+r.ChannelID+"  リマインド: "+model.FormatReminderLead(r.ReminderLeadMinutes)),
	)
}

func renderCreated(r model.Reservation) string {
	lines := []string{
		okStyle.Render("新しい予約が作成されました"),
		"",
		field("予約ID", fmt.Sprint(r.ID)),
		field("予約者", r.OwnerName),
		field("日時", r.StartTime.Format(model.DateTimeLayout)+" - "+r.EndTime.Format(model.ClockLayout)),
		field("ミーティング名", r.Title),
		field("リマインド", model.FormatReminderLead(r.ReminderLeadMinutes)),
	}
	return boxStyle.Render(strings.Join(lines, "\n")) + "\n"
}

func renderCancelled(r model.Reservation, by string) string {
	lines := []string{
		okStyle.Render("予約がキャンセルされました"),
		"",
		field("予約ID", fmt.Sprint(r.ID)),
		field("キャンセル者", by),
		field("日時", r.StartTime.Format(model.DateTimeLayout)),
		field("ミーティング名", r.Title),
	}
	return boxStyle.Render(strings.Join(lines, "\n")) + "\n"
}

func renderValidationError(verr *model.ValidationError) string {
	var b strings.Builder
	b.WriteString(failStyle.Render("予約できませんでした") + "\n")
	for _, f := range verr.Fields {
		b.WriteString(fmt.Sprintf("  %s %s %s\n", failStyle.Render("✗"), dimStyle.Render(f.Field), f.Message))
	}
	return b.String()
}

func renderOptions() string {
	var b strings.Builder

	b.WriteString(headerStyle.Render("選択できる時刻") + "\n")
	slots := model.TimeSlotOptions()
	for i := 0; i < len(slots); i += 6 {
		end := min(i+6, len(slots))
		b.WriteString("  " + strings.Join(slots[i:end], "  ") + "\n")
	}

	b.WriteString("\n" + headerStyle.Render("リマインダー") + "\n")
	for _, o := range model.ReminderLeadOptions() {
		line := "  " + o.Label
		if o.Minutes == model.DefaultReminderLeadMinutes {
			line += dimStyle.Render(" (既定)")
		}
		b.WriteString(line + "\n")
	}
	return b.String()
}

func field(label, value string) string {
	return labelStyle.Render(label+":") + " " + value
}
