package postgresql_test

import (
	"context"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/construtek/nomina-backend-go/internal/pkg/database"
	"github.com/stretchr/testify/require"
)

var (
	dbOnce sync.Once
	db     *database.DB
	dbErr  error
)

// testDB connects once per test run. Tests are skipped when
// TEST_DATABASE_URL is not set, so the unit suite stays runnable without
// Postgres.
func testDB(t *testing.T) *database.DB {
	t.Helper()

	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	dbOnce.Do(func() {
		db, dbErr = database.NewPostgreSQLDB(dsn, 30*time.Second)
	})
	require.NoError(t, dbErr, "failed to connect to test database")
	return db
}

func truncateAll(t *testing.T, ctx context.Context) {
	t.Helper()
	conn := testDB(t)

	for _, table := range []string{"audit_entries", "debt_records", "payroll_records", "payroll_weeks"} {
		_, err := conn.Exec(ctx, "TRUNCATE TABLE "+table+" CASCADE")
		require.NoError(t, err)
	}
}
