package database

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/aws/aws-xray-sdk-go/xray"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

const (
	// DriverPostgres はPostgreSQL（lib/pq）を表します
	DriverPostgres = "postgres"
	// DriverSQLite はSQLite（modernc.org/sqlite）を表します
	DriverSQLite = "sqlite"
)

func init() {
	// modernc.org/sqliteのドライバ名はsqlxの既定の対応表に含まれていない
	sqlx.BindDriver(DriverSQLite, sqlx.QUESTION)
}

type DB struct {
	*sqlx.DB
	Driver string
}

type Config struct {
	Driver string
	// Path はSQLiteのファイルパスです（":memory:"も可）
	Path     string
	Host     string
	Port     int
	UserName string
	Password string
	DBName   string
}

// NewDB は設定に応じてデータベースに接続します
func NewDB(cfg Config) (*DB, error) {
	switch cfg.Driver {
	case DriverPostgres:
		return newPostgresDB(cfg)
	case DriverSQLite, "":
		return newSQLiteDB(cfg.Path)
	default:
		return nil, fmt.Errorf("unsupported database driver: %q", cfg.Driver)
	}
}

func newPostgresDB(cfg Config) (*DB, error) {
	// localhostのDBの場合はSSLを無効化
	var sslModeValue string
	if cfg.Host == "localhost" || os.Getenv("DB_HOST") == "localhost" {
		sslModeValue = "disable"
	} else {
		sslModeValue = "require" // 本番環境ではSSLを有効にする
	}

	dsn := fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host,
		cfg.Port,
		cfg.UserName,
		cfg.Password,
		cfg.DBName,
		sslModeValue,
	)

	// X-Ray対応のSQLコンテキストを作成
	db, err := xray.SQLContext(DriverPostgres, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database with X-Ray: %w", err)
	}

	// コネクションプールの設定
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(5 * time.Minute)

	// 接続テスト
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &DB{DB: sqlx.NewDb(db, DriverPostgres), Driver: DriverPostgres}, nil
}

func newSQLiteDB(path string) (*DB, error) {
	if path == "" {
		return nil, fmt.Errorf("sqlite database path is required")
	}
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	conn, err := sqlx.Open(DriverSQLite, SQLiteDSN(path))
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}

	// SQLiteは書き込みが直列化されるため接続は1本に限定する
	// :memory:の場合も同じデータベースを共有できる
	conn.SetMaxOpenConns(1)
	conn.SetMaxIdleConns(1)
	conn.SetConnMaxLifetime(0)

	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &DB{DB: conn, Driver: DriverSQLite}, nil
}

// SQLiteDSN はトランザクションをBEGIN IMMEDIATEで開始するDSNを組み立てます
func SQLiteDSN(path string) string {
	params := "_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)&_txlock=immediate"
	if strings.Contains(path, "?") {
		return "file:" + path + "&" + params
	}
	return "file:" + path + "?" + params
}

// Close closes the database connection
func (db *DB) Close() error {
	_, seg := xray.BeginSegment(context.Background(), "DB.Close")
	defer seg.Close(nil)

	return db.DB.Close()
}

// LockReservationsStmt は予約テーブルへの同時書き込みを直列化するSQLを返します
// SQLiteはBEGIN IMMEDIATEで書き込みロックを取得済みのため不要です
func (db *DB) LockReservationsStmt() string {
	if db.Driver == DriverPostgres {
		return "LOCK TABLE reservations IN SHARE ROW EXCLUSIVE MODE"
	}
	return ""
}
