package cli_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uma-arai/sbcntr-roombook/internal/cli"
	"github.com/uma-arai/sbcntr-roombook/internal/model"
)

func setup(t *testing.T) string {
	t.Helper()
	t.Setenv("ENV", "LOCAL")
	t.Setenv("NOTIFIER", "log")
	t.Setenv("DB_DRIVER", "sqlite")
	t.Setenv("SBCNTR_ENABLE_TRACING", "")
	t.Setenv("AWS_XRAY_SDK_DISABLED", "")

	db := filepath.Join(t.TempDir(), "reservations.db")
	_, err := run(t, "migrate", "--db", db)
	require.NoError(t, err)
	return db
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := cli.NewRootCmdForTest()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return buf.String(), err
}

func reserve(db, owner, start, end string, extra ...string) []string {
	args := []string{"reserve", "--db", db,
		"--owner", owner, "--owner-name", owner + "さん", "--channel", "C001",
		"--title", "週次定例会議", "--date", "2099/01/15", "--start", start, "--end", end,
	}
	return append(args, extra...)
}

func TestReserveCommand(t *testing.T) {
	db := setup(t)

	out, err := run(t, reserve(db, "U001", "10:00", "11:00")...)
	require.NoError(t, err)
	assert.Contains(t, out, "新しい予約が作成されました")
	assert.Contains(t, out, "2099/01/15 10:00 - 11:00")
	assert.Contains(t, out, "15分前")

	t.Run("重複する予約は拒否される", func(t *testing.T) {
		out, err := run(t, reserve(db, "U002", "10:30", "11:30")...)
		require.Error(t, err)
		assert.True(t, errors.Is(err, model.ErrValidation))
		assert.Contains(t, out, "その時間帯は既に予約があります")
		assert.Contains(t, out, "10:00-11:00")
	})

	t.Run("JSONで出力する", func(t *testing.T) {
		out, err := run(t, reserve(db, "U002", "11:00", "12:00", "--reminder", "5", "--json")...)
		require.NoError(t, err)

		var got model.Reservation
		require.NoError(t, json.Unmarshal([]byte(out), &got), "output should be valid JSON")
		assert.NotZero(t, got.ID)
		assert.Equal(t, 5, got.ReminderLeadMinutes)
		assert.Equal(t, "C001", got.ChannelID)
	})

	t.Run("検証エラーをJSONで出力する", func(t *testing.T) {
		out, err := run(t, reserve(db, "U003", "15:00", "14:00", "--json")...)
		require.Error(t, err)

		var got map[string]map[string]string
		require.NoError(t, json.Unmarshal([]byte(out), &got))
		assert.Contains(t, got["errors"], model.FieldEndTime)
	})

	t.Run("不正な日付", func(t *testing.T) {
		_, err := run(t, "reserve", "--db", db, "--owner", "U003", "--channel", "C001",
			"--title", "存在しない日", "--date", "2099/02/30", "--start", "15:00", "--end", "16:00")
		assert.Error(t, err)
	})

	t.Run("必須フラグ", func(t *testing.T) {
		_, err := run(t, "reserve", "--db", db, "--owner", "U001")
		assert.Error(t, err)
	})
}

func TestListCommand(t *testing.T) {
	db := setup(t)

	_, err := run(t, reserve(db, "U001", "13:00", "14:00")...)
	require.NoError(t, err)
	_, err = run(t, reserve(db, "U002", "09:00", "10:00")...)
	require.NoError(t, err)

	out, err := run(t, "list", "2099-01-15", "--db", db)
	require.NoError(t, err)
	assert.Contains(t, out, "2099/01/15 の予約一覧")
	assert.Less(t, strings.Index(out, "09:00 - 10:00"), strings.Index(out, "13:00 - 14:00"))

	out, err = run(t, "list", "2099/01/16", "--db", db)
	require.NoError(t, err)
	assert.Contains(t, out, "2099/01/16 の予約はありません。")

	out, err = run(t, "list", "2099/01/15", "--db", db, "--json")
	require.NoError(t, err)
	var got []model.Reservation
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	require.Len(t, got, 2)
	assert.Equal(t, "U002", got[0].OwnerID)

	_, err = run(t, "list", "tomorrow", "--db", db)
	assert.Error(t, err)
}

func TestMineCommand(t *testing.T) {
	db := setup(t)

	_, err := run(t, reserve(db, "U001", "13:00", "14:00")...)
	require.NoError(t, err)
	_, err = run(t, reserve(db, "U002", "09:00", "10:00")...)
	require.NoError(t, err)

	out, err := run(t, "mine", "--owner", "U001", "--db", db, "--json")
	require.NoError(t, err)
	var got []model.Reservation
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	require.Len(t, got, 1)
	assert.Equal(t, "U001", got[0].OwnerID)

	out, err = run(t, "mine", "--owner", "U999", "--db", db)
	require.NoError(t, err)
	assert.Contains(t, out, "これからの予約はありません。")
}

func TestCancelCommand(t *testing.T) {
	db := setup(t)

	out, err := run(t, reserve(db, "U001", "10:00", "11:00", "--json")...)
	require.NoError(t, err)
	var created model.Reservation
	require.NoError(t, json.Unmarshal([]byte(out), &created))
	id := strconv.FormatInt(created.ID, 10)

	t.Run("他人の予約はキャンセルできない", func(t *testing.T) {
		out, err := run(t, "cancel", id, "--owner", "U002", "--db", db)
		require.Error(t, err)
		assert.True(t, errors.Is(err, model.ErrNotFound))
		assert.Contains(t, out, "キャンセルできる予約がありません。")
	})

	t.Run("本人はキャンセルできる", func(t *testing.T) {
		out, err := run(t, "cancel", id, "--owner", "U001", "--db", db)
		require.NoError(t, err)
		assert.Contains(t, out, "予約がキャンセルされました")

		// 同じ時間帯に再度予約できる
		_, err = run(t, reserve(db, "U002", "10:30", "11:30")...)
		assert.NoError(t, err)
	})

	t.Run("不正なID", func(t *testing.T) {
		_, err := run(t, "cancel", "abc", "--owner", "U001", "--db", db)
		assert.Error(t, err)
	})
}

func TestOptionsCommand(t *testing.T) {
	out, err := run(t, "options")
	require.NoError(t, err)
	assert.Contains(t, out, "07:00")
	assert.Contains(t, out, "21:30")
	assert.Contains(t, out, "24時間前")

	out, err = run(t, "options", "--json")
	require.NoError(t, err)
	var got struct {
		TimeSlots     []string                   `json:"time_slots"`
		ReminderLeads []model.ReminderLeadOption `json:"reminder_leads"`
		DefaultLead   int                        `json:"default_lead"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Len(t, got.TimeSlots, 30)
	assert.Len(t, got.ReminderLeads, 7)
	assert.Equal(t, model.DefaultReminderLeadMinutes, got.DefaultLead)
}

func TestVersionCommand(t *testing.T) {
	out, err := run(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "roomctl")
}

func TestCommandsWithoutNotifierConfig(t *testing.T) {
	// 本番相当の環境でも通知基盤の設定なしで操作できる
	t.Setenv("ENV", "")
	t.Setenv("NOTIFIER", "")
	t.Setenv("SFN_STATE_MACHINE_ARN", "")
	t.Setenv("DB_DRIVER", "sqlite")
	t.Setenv("SBCNTR_ENABLE_TRACING", "")
	t.Setenv("AWS_XRAY_SDK_DISABLED", "")

	db := filepath.Join(t.TempDir(), "reservations.db")
	_, err := run(t, "migrate", "--db", db)
	require.NoError(t, err)

	out, err := run(t, reserve(db, "U001", "10:00", "11:00")...)
	require.NoError(t, err)
	assert.Contains(t, out, "新しい予約が作成されました")

	out, err = run(t, "list", "2099/01/15", "--db", db)
	require.NoError(t, err)
	assert.Contains(t, out, "週次定例会議")
}
