// Package store is the document store adapter: typed reads and writes over
// bun, with a change event published on the feed for every committed write.
package store

import (
	"context"
	"database/sql"
	"log"
	"time"

	"github.com/bananalabs-oss/lobby/internal/apperrors"
	"github.com/bananalabs-oss/lobby/internal/feed"
	"github.com/pkg/errors"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/driver/pgdriver"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

type Store struct {
	db  bun.IDB
	bus feed.Bus

	// pending collects events raised inside a transaction until commit.
	pending *[]feed.Event
}

func New(db *bun.DB, bus feed.Bus) *Store {
	return &Store{db: db, bus: bus}
}

// RunInTx runs fn against a transaction-bound Store. Events raised by fn are
// published only if the transaction commits. Nested calls reuse the outer
// transaction.
func (s *Store) RunInTx(ctx context.Context, fn func(ctx context.Context, tx *Store) error) error {
	db, ok := s.db.(*bun.DB)
	if !ok {
		return fn(ctx, s)
	}

	var events []feed.Event
	err := db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		return fn(ctx, &Store{db: tx, bus: s.bus, pending: &events})
	})
	if err != nil {
		if apperrors.IsAppError(err) {
			return err
		}
		return apperrors.Unavailable(errors.Wrap(err, "store.RunInTx"))
	}

	s.publish(ctx, events...)
	return nil
}

func (s *Store) emit(ctx context.Context, collection, id string, op feed.Op) {
	ev := feed.Event{Collection: collection, ID: id, Op: op}
	if s.pending != nil {
		*s.pending = append(*s.pending, ev)
		return
	}
	s.publish(ctx, ev)
}

// publish is best effort: the write is already durable, so a feed failure is
// logged and subscribers catch up on the next event.
func (s *Store) publish(ctx context.Context, events ...feed.Event) {
	if s.bus == nil {
		return
	}
	for _, ev := range events {
		if err := s.bus.Publish(ctx, ev); err != nil {
			log.Printf("Failed to publish %s/%s: %v", ev.Collection, ev.ID, err)
		}
	}
}

func now() time.Time {
	return time.Now().UTC()
}

// fail classifies a driver error. notFound is returned for sql.ErrNoRows.
func fail(err error, op string, notFound error) error {
	if err == nil {
		return nil
	}
	if notFound != nil && errors.Is(err, sql.ErrNoRows) {
		return notFound
	}
	return apperrors.Unavailable(errors.Wrap(err, op))
}

func isUniqueViolation(err error) bool {
	var liteErr *sqlite.Error
	if errors.As(err, &liteErr) {
		code := liteErr.Code()
		return code == sqlite3.SQLITE_CONSTRAINT_UNIQUE || code == sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY
	}
	var pgErr pgdriver.Error
	if errors.As(err, &pgErr) {
		return pgErr.Field('C') == "23505"
	}
	return false
}

func affected(res sql.Result) int64 {
	n, err := res.RowsAffected()
	if err != nil {
		return 0
	}
	return n
}
