package postgres

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Nothing listens on port 1, so the initial ping fails.
func TestOpen_Unreachable(t *testing.T) {
	_, err := Open("host=127.0.0.1 port=1 user=app dbname=friendsvc sslmode=disable connect_timeout=1",
		2, 1, time.Minute)
	assert.Error(t, err)
}

// Set FRIENDSVC_TEST_POSTGRES to a DSN to run against a real server.
func TestOpen_PoolSettings(t *testing.T) {
	dsn := os.Getenv("FRIENDSVC_TEST_POSTGRES")
	if dsn == "" {
		t.Skip("FRIENDSVC_TEST_POSTGRES not set")
	}
	db, err := Open(dsn, 3, 1, time.Minute)
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	assert.Equal(t, "postgres", db.Dialector.Name())
	assert.Equal(t, 3, sqlDB.Stats().MaxOpenConnections)
	assert.NoError(t, sqlDB.Ping())
}
