package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/uma-arai/sbcntr-roombook/internal/common/database"
)

const (
	// NotifierLog は通知をログに出力するだけのトランスポートです
	NotifierLog = "log"
	// NotifierSFN はStep Functionsに通知を受け渡すトランスポートです
	NotifierSFN = "sfn"
)

type Config struct {
	Env      string
	DB       database.Config
	Reminder struct {
		Interval    time.Duration
		TickTimeout time.Duration
	}
	Notifier string
	SFN      struct {
		StateMachineArn string
	}
	EnableTracing bool
}

// IsLocal はローカル環境で動作しているかを返します
func (c *Config) IsLocal() bool {
	return c.Env == "LOCAL"
}

// LoadConfig は設定を読み込みます
// カレントディレクトリに.envがあれば先に読み込みます（既存の環境変数は上書きしません）
func LoadConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	cfg := &Config{
		Env: os.Getenv("ENV"),
		DB: database.Config{
			Driver:   getEnvOrDefault("DB_DRIVER", database.DriverSQLite),
			Path:     getEnvOrDefault("DATABASE_PATH", "./data/reservations.db"),
			Host:     getEnvOrDefault("DB_HOST", "localhost"),
			Port:     getEnvAsIntOrDefault("DB_PORT", 5432),
			UserName: getEnvOrDefault("DB_USERNAME", "sbcntrapp"),
			Password: getEnvOrDefault("DB_PASSWORD", "password"),
			DBName:   getEnvOrDefault("DB_NAME", "sbcntrapp"),
		},
		EnableTracing: false,
	}

	var err error
	if cfg.Reminder.Interval, err = getEnvAsDurationOrDefault("REMINDER_INTERVAL", 30*time.Second); err != nil {
		return nil, err
	}
	if cfg.Reminder.TickTimeout, err = getEnvAsDurationOrDefault("REMINDER_TICK_TIMEOUT", 20*time.Second); err != nil {
		return nil, err
	}

	defaultNotifier := NotifierSFN
	if cfg.IsLocal() {
		defaultNotifier = NotifierLog
	}
	cfg.Notifier = strings.ToLower(getEnvOrDefault("NOTIFIER", defaultNotifier))
	cfg.SFN.StateMachineArn = os.Getenv("SFN_STATE_MACHINE_ARN")

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	// 環境変数[SBCNTR_ENABLE_TRACING]を見てトレースを有効にする。対応しているTracingはAWS_XRAYのみ。
	// 環境変数[AWS_XRAY_SDK_DISABLED]がtrueの場合は必ずトレースを無効にする。
	enableKey := os.Getenv("SBCNTR_ENABLE_TRACING")
	if !sdkDisabled() && (strings.ToLower(enableKey) == "true" || enableKey == "1") {
		os.Setenv("AWS_XRAY_SDK_DISABLED", "FALSE")
		cfg.EnableTracing = true
	} else {
		os.Setenv("AWS_XRAY_SDK_DISABLED", "TRUE")
		cfg.EnableTracing = false
	}

	return cfg, nil
}

// Validate は設定値の組み合わせを検証します
func (c *Config) Validate() error {
	switch c.DB.Driver {
	case database.DriverSQLite, database.DriverPostgres:
	default:
		return fmt.Errorf("unsupported DB_DRIVER: %q", c.DB.Driver)
	}

	if c.Reminder.Interval <= 0 {
		return fmt.Errorf("REMINDER_INTERVAL must be positive: %v", c.Reminder.Interval)
	}
	if c.Reminder.TickTimeout <= 0 {
		return fmt.Errorf("REMINDER_TICK_TIMEOUT must be positive: %v", c.Reminder.TickTimeout)
	}

	return nil
}

// ValidateNotifier は通知基盤の設定を検証します
// 通知を送るリマインダーバッチだけが呼び出します
func (c *Config) ValidateNotifier() error {
	switch c.Notifier {
	case NotifierLog:
	case NotifierSFN:
		if c.SFN.StateMachineArn == "" {
			return fmt.Errorf("SFN_STATE_MACHINE_ARN is required when NOTIFIER=%s", NotifierSFN)
		}
	default:
		return fmt.Errorf("unsupported NOTIFIER: %q", c.Notifier)
	}

	return nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	log.Printf("Environment variable %s is not set, using default value", key)
	return defaultValue
}

func getEnvAsIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsDurationOrDefault(key string, defaultValue time.Duration) (time.Duration, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}

// Check if SDK is disabled
func sdkDisabled() bool {
	disableKey := os.Getenv("AWS_XRAY_SDK_DISABLED")
	return strings.ToLower(disableKey) == "true"
}
