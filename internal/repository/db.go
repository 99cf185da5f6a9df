package repository

import (
	"context"
	"database/sql"
	"fmt"
	"log"

	"github.com/jmoiron/sqlx"
	"github.com/uma-arai/sbcntr-roombook/internal/common/database"
	"github.com/uma-arai/sbcntr-roombook/internal/common/utils"
)

// DB はリポジトリから利用するデータベースのラッパーです
// クエリはsqlxのRebindでドライバごとのプレースホルダに変換されます
type DB struct {
	*database.DB
}

func NewDB(db *database.DB) *DB {
	return &DB{DB: db}
}

// SelectContext wraps sqlx.DB.SelectContext with X-Ray tracing
func (db *DB) SelectContext(ctx context.Context, dest interface{}, query string, args ...interface{}) (err error) {
	ctx, end := utils.BeginSubsegment(ctx, "DB.Select")
	defer func() { end(err) }()

	// クエリをメタデータとして追加
	utils.AddMetadata(ctx, "query", query)

	return db.DB.SelectContext(ctx, dest, db.Rebind(query), args...)
}

// GetContext wraps sqlx.DB.GetContext with X-Ray tracing
func (db *DB) GetContext(ctx context.Context, dest interface{}, query string, args ...interface{}) (err error) {
	ctx, end := utils.BeginSubsegment(ctx, "DB.Get")
	defer func() {
		if err == sql.ErrNoRows {
			end(nil)
			return
		}
		end(err)
	}()

	utils.AddMetadata(ctx, "query", query)

	return db.DB.GetContext(ctx, dest, db.Rebind(query), args...)
}

// ExecContext wraps sqlx.DB.ExecContext with X-Ray tracing
func (db *DB) ExecContext(ctx context.Context, query string, args ...interface{}) (result sql.Result, err error) {
	ctx, end := utils.BeginSubsegment(ctx, "DB.Exec")
	defer func() { end(err) }()

	utils.AddMetadata(ctx, "query", query)

	return db.DB.ExecContext(ctx, db.Rebind(query), args...)
}

// WithTx はトランザクション内でfnを実行します
// fnがエラーを返した場合はロールバックし、それ以外はコミットします
func (db *DB) WithTx(ctx context.Context, fn func(tx *sqlx.Tx) error) (err error) {
	ctx, end := utils.BeginSubsegment(ctx, "DB.WithTx")
	defer func() { end(err) }()

	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
	}()

	if err = fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			log.Printf("rollback failed: %v, original error: %v", rbErr, err)
		}
		return err
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}
