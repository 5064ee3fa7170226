package testutil

import (
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/kasuganosora/friendsvc/broker"
	"github.com/kasuganosora/friendsvc/config"
	dbadapter "github.com/kasuganosora/friendsvc/db"
	"github.com/kasuganosora/friendsvc/model"
	"github.com/kasuganosora/friendsvc/store"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// SetupTestDB creates a private in-memory SQLite DB and runs AutoMigrate.
// It requires no external services and is safe to use in parallel tests.
func SetupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := dbadapter.Open(config.DatabaseConfig{
		Mode:       dbadapter.ModeSQLite,
		SQLitePath: fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString()),
	})
	require.NoError(t, err, "SetupTestDB: Open")
	t.Cleanup(func() { _ = dbadapter.Close(db) })
	require.NoError(t, model.AutoMigrate(db), "SetupTestDB: AutoMigrate")
	return db
}

// SetupTestStore wraps a fresh test DB in a Store with the cheapest bcrypt cost.
func SetupTestStore(t *testing.T) (*store.Store, *gorm.DB) {
	t.Helper()
	db := SetupTestDB(t)
	return store.New(db, store.WithBcryptCost(bcrypt.MinCost)), db
}

// SetupTestBroker creates an in-process PubSub (no Redis required).
func SetupTestBroker(t *testing.T) broker.PubSub {
	t.Helper()
	ps, err := broker.New(broker.Config{})
	require.NoError(t, err, "SetupTestBroker: New")
	t.Cleanup(func() { _ = ps.Close() })
	return ps
}
