// Package dbtest opens throwaway in-memory SQLite databases for tests.
package dbtest

import (
	"fmt"
	"strings"
	"sync/atomic"
	"testing"

	"feedbackinsights/internal/config"
	"feedbackinsights/internal/db"
)

var seq atomic.Int64

// Open returns a migrated in-memory database that is closed when t ends.
// Each call gets its own database, shared across the pool's connections.
func Open(t testing.TB) *db.DB {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s_%d?mode=memory&cache=shared", name, seq.Add(1))
	conn, err := db.Open(config.DBConfig{
		Driver:       db.DriverSQLite,
		DSN:          dsn,
		MaxOpenConns: 1,
		MaxIdleConns: 1,
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(conn); err != nil {
		_ = db.Close(conn)
		t.Fatalf("migrate sqlite: %v", err)
	}
	t.Cleanup(func() { _ = db.Close(conn) })
	return conn
}
