package database

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"strings"

	"github.com/bananalabs-oss/lobby/internal/models"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/pgdriver"
	_ "modernc.org/sqlite"
)

// Connect opens sqlite://path or postgres://dsn.
func Connect(databaseURL string) (*bun.DB, error) {
	switch {
	case strings.HasPrefix(databaseURL, "postgres://"), strings.HasPrefix(databaseURL, "postgresql://"):
		return connectPostgres(databaseURL)
	default:
		return connectSQLite(strings.TrimPrefix(databaseURL, "sqlite://"))
	}
}

func connectSQLite(path string) (*bun.DB, error) {
	sqldb, err := sql.Open("sqlite", path+"?_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite: %w", err)
	}

	// One connection serializes writers; transactions must use their tx handle.
	sqldb.SetMaxOpenConns(1)

	if _, err := sqldb.Exec("PRAGMA journal_mode=WAL"); err != nil {
		return nil, fmt.Errorf("failed to set WAL mode: %w", err)
	}

	if _, err := sqldb.Exec("PRAGMA foreign_keys=ON"); err != nil {
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	db := bun.NewDB(sqldb, sqlitedialect.New())

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	log.Printf("Connected to SQLite: %s", path)
	return db, nil
}

func connectPostgres(dsn string) (*bun.DB, error) {
	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(dsn)))
	db := bun.NewDB(sqldb, pgdialect.New())

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	log.Printf("Connected to Postgres")
	return db, nil
}

func Migrate(ctx context.Context, db *bun.DB) error {
	log.Printf("Running database migrations...")

	tables := []interface{}{
		(*models.Party)(nil),
		(*models.PartyMember)(nil),
		(*models.PartyMessage)(nil),
		(*models.Notification)(nil),
		(*models.FriendRequest)(nil),
		(*models.Friendship)(nil),
		(*models.User)(nil),
	}

	for _, model := range tables {
		_, err := db.NewCreateTable().
			Model(model).
			IfNotExists().
			Exec(ctx)
		if err != nil {
			return fmt.Errorf("failed to create table for %T: %w", model, err)
		}
	}

	indexes := []struct {
		name  string
		query string
	}{
		{
			"idx_party_members_unique",
			"CREATE UNIQUE INDEX IF NOT EXISTS idx_party_members_unique ON party_members (party_id, account_id)",
		},
		{
			"idx_party_members_account",
			"CREATE UNIQUE INDEX IF NOT EXISTS idx_party_members_account ON party_members (account_id)",
		},
		{
			"idx_party_messages_party",
			"CREATE INDEX IF NOT EXISTS idx_party_messages_party ON party_messages (party_id, created_at)",
		},
		{
			"idx_notifications_user",
			"CREATE INDEX IF NOT EXISTS idx_notifications_user ON notifications (user_id, read)",
		},
		{
			"idx_friend_requests_pair",
			"CREATE INDEX IF NOT EXISTS idx_friend_requests_pair ON friend_requests (from_user_id, to_user_id, status)",
		},
		{
			"idx_friendships_pair",
			"CREATE UNIQUE INDEX IF NOT EXISTS idx_friendships_pair ON friendships (user_id, friend_id)",
		},
	}

	for _, idx := range indexes {
		if _, err := db.ExecContext(ctx, idx.query); err != nil {
			return fmt.Errorf("failed to create index %s: %w", idx.name, err)
		}
	}

	log.Printf("Migrations complete")
	return nil
}
