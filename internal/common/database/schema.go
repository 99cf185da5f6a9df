package database

import (
	"context"
	"fmt"
	"log"
)

var postgresSchema = []string{
	`CREATE TABLE IF NOT EXISTS reservations (
		id BIGSERIAL PRIMARY KEY,
		owner_id TEXT NOT NULL,
		owner_name TEXT NOT NULL,
		target_channel TEXT NOT NULL,
		title TEXT NOT NULL CHECK (title <> ''),
		start_time TIMESTAMP NOT NULL,
		end_time TIMESTAMP NOT NULL,
		reminder_lead_minutes INTEGER NOT NULL DEFAULT 15 CHECK (reminder_lead_minutes >= 0),
		reminder_sent BOOLEAN NOT NULL DEFAULT FALSE,
		remind_at TIMESTAMP NOT NULL,
		created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
		CHECK (start_time < end_time)
	)`,
	`CREATE TABLE IF NOT EXISTS notifications (
		id BIGSERIAL PRIMARY KEY,
		reservation_id BIGINT NOT NULL,
		channel_id TEXT NOT NULL,
		message TEXT NOT NULL,
		status TEXT NOT NULL,
		error TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,
}

var sqliteSchema = []string{
	`CREATE TABLE IF NOT EXISTS reservations (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		owner_id TEXT NOT NULL,
		owner_name TEXT NOT NULL,
		target_channel TEXT NOT NULL,
		title TEXT NOT NULL CHECK (title <> ''),
		start_time TIMESTAMP NOT NULL,
		end_time TIMESTAMP NOT NULL,
		reminder_lead_minutes INTEGER NOT NULL DEFAULT 15 CHECK (reminder_lead_minutes >= 0),
		reminder_sent BOOLEAN NOT NULL DEFAULT FALSE,
		remind_at TIMESTAMP NOT NULL,
		created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
		CHECK (start_time < end_time)
	)`,
	`CREATE TABLE IF NOT EXISTS notifications (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		reservation_id INTEGER NOT NULL,
		channel_id TEXT NOT NULL,
		message TEXT NOT NULL,
		status TEXT NOT NULL,
		error TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,
}

// 両方の方言で共通のインデックス
var indexes = []string{
	`CREATE INDEX IF NOT EXISTS idx_start_time ON reservations(start_time)`,
	`CREATE INDEX IF NOT EXISTS idx_owner_id ON reservations(owner_id)`,
	`CREATE INDEX IF NOT EXISTS idx_due_reminder ON reservations(reminder_sent, remind_at)`,
	`CREATE INDEX IF NOT EXISTS idx_notifications_reservation_id ON notifications(reservation_id)`,
}

// Migrate はテーブルとインデックスを作成します
// 何度実行しても結果は変わりません
func (db *DB) Migrate(ctx context.Context) error {
	stmts := sqliteSchema
	if db.Driver == DriverPostgres {
		stmts = postgresSchema
	}
	stmts = append(append([]string{}, stmts...), indexes...)

	for _, stmt := range stmts {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to migrate database: %w", err)
		}
	}

	log.Printf("Database migrated (%s)", db.Driver)
	return nil
}
