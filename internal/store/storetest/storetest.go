// Package storetest opens throwaway sqlite stores for tests.
package storetest

import (
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/bananalabs-oss/lobby/internal/database"
	"github.com/bananalabs-oss/lobby/internal/feed"
	"github.com/bananalabs-oss/lobby/internal/models"
	"github.com/bananalabs-oss/lobby/internal/store"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

// Open returns a migrated store backed by a fresh sqlite file and the
// in-memory bus it publishes on.
func Open(t testing.TB) (*store.Store, *feed.MemoryBus) {
	t.Helper()

	db, err := database.Connect("sqlite://" + filepath.Join(t.TempDir(), "lobby.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	require.NoError(t, database.Migrate(context.Background(), db))

	bus := feed.NewMemoryBus()
	return store.New(db, bus), bus
}

// SeedUser stores a user with default settings and returns it.
func SeedUser(t testing.TB, st *store.Store, displayName string, opts ...func(*models.User)) *models.User {
	t.Helper()

	id := uuid.New()
	ts := time.Now().UTC()
	user := &models.User{
		ID:          id,
		Username:    strings.ToLower(displayName) + "_" + id.String()[:6],
		DisplayName: displayName,
		Status:      models.StatusOnline,
		Settings: models.UserSettings{
			AllowPartyInvites:   true,
			AllowFriendRequests: true,
			AppearanceStatus:    models.AppearanceOnline,
		},
		CreatedAt: ts,
		UpdatedAt: ts,
	}
	for _, opt := range opts {
		opt(user)
	}

	require.NoError(t, st.UpsertUser(context.Background(), user))
	return user
}
