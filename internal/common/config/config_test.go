package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uma-arai/sbcntr-roombook/internal/common/database"
)

// clearEnv は設定に関係する環境変数をテスト中だけ未設定にします
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"ENV", "DB_DRIVER", "DATABASE_PATH", "DB_HOST", "DB_PORT", "DB_USERNAME", "DB_PASSWORD", "DB_NAME",
		"REMINDER_INTERVAL", "REMINDER_TICK_TIMEOUT", "NOTIFIER", "SFN_STATE_MACHINE_ARN",
		"SBCNTR_ENABLE_TRACING", "AWS_XRAY_SDK_DISABLED",
	} {
		// t.Setenvで終了時に元の値へ戻るようにしてから削除する
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
	// .envを読み込まないよう空のディレクトリで実行する
	t.Chdir(t.TempDir())
}

func TestLoadConfig_Defaults(t *testing.T) {
	clearEnv(t)
	t.Setenv("ENV", "LOCAL")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.True(t, cfg.IsLocal())
	assert.Equal(t, database.DriverSQLite, cfg.DB.Driver)
	assert.Equal(t, "./data/reservations.db", cfg.DB.Path)
	assert.Equal(t, 5432, cfg.DB.Port)
	assert.Equal(t, 30*time.Second, cfg.Reminder.Interval)
	assert.Equal(t, 20*time.Second, cfg.Reminder.TickTimeout)
	assert.Equal(t, NotifierLog, cfg.Notifier)
	assert.False(t, cfg.EnableTracing)
	assert.Equal(t, "TRUE", os.Getenv("AWS_XRAY_SDK_DISABLED"))
}

func TestLoadConfig_FromEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("DB_DRIVER", "postgres")
	t.Setenv("DB_HOST", "db.internal")
	t.Setenv("DB_PORT", "15432")
	t.Setenv("REMINDER_INTERVAL", "1m")
	t.Setenv("REMINDER_TICK_TIMEOUT", "45s")
	t.Setenv("SFN_STATE_MACHINE_ARN", "arn:aws:states:ap-northeast-1:123456789012:stateMachine:reminder")
	t.Setenv("SBCNTR_ENABLE_TRACING", "true")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.False(t, cfg.IsLocal())
	assert.Equal(t, database.DriverPostgres, cfg.DB.Driver)
	assert.Equal(t, "db.internal", cfg.DB.Host)
	assert.Equal(t, 15432, cfg.DB.Port)
	assert.Equal(t, time.Minute, cfg.Reminder.Interval)
	assert.Equal(t, 45*time.Second, cfg.Reminder.TickTimeout)
	assert.Equal(t, NotifierSFN, cfg.Notifier)
	assert.True(t, cfg.EnableTracing)
}

func TestLoadConfig_DotEnv(t *testing.T) {
	clearEnv(t)
	require.NoError(t, os.WriteFile(filepath.Join(".", ".env"), []byte("ENV=LOCAL\nDATABASE_PATH=/tmp/roombook.db\nNOTIFIER=log\n"), 0o600))

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "/tmp/roombook.db", cfg.DB.Path)
	assert.Equal(t, NotifierLog, cfg.Notifier)
}

func TestLoadConfig_Invalid(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{name: "未対応のドライバー", env: map[string]string{"ENV": "LOCAL", "DB_DRIVER": "mysql"}},
		{name: "不正な間隔", env: map[string]string{"ENV": "LOCAL", "REMINDER_INTERVAL": "soon"}},
		{name: "0秒の間隔", env: map[string]string{"ENV": "LOCAL", "REMINDER_INTERVAL": "0s"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			_, err := LoadConfig()
			assert.Error(t, err)
		})
	}
}

func TestLoadConfig_NotifierNotRequired(t *testing.T) {
	clearEnv(t)

	// 本番相当の既定値(sfn)でもARNなしで読み込める
	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, NotifierSFN, cfg.Notifier)
	assert.Error(t, cfg.ValidateNotifier())
}

func TestConfig_ValidateNotifier(t *testing.T) {
	tests := []struct {
		name     string
		notifier string
		arn      string
		wantErr  bool
	}{
		{name: "ログ", notifier: NotifierLog},
		{name: "ARNありのsfn", notifier: NotifierSFN, arn: "arn:aws:states:ap-northeast-1:123456789012:stateMachine:reminder"},
		{name: "ARNなしのsfn", notifier: NotifierSFN, wantErr: true},
		{name: "未対応の通知基盤", notifier: "email", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{Notifier: tt.notifier}
			cfg.SFN.StateMachineArn = tt.arn

			err := cfg.ValidateNotifier()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
