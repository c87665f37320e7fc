// Package dbtest opens throwaway SQLite databases for package tests.
package dbtest

import (
	"context"
	"sync"
	"testing"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"todoapp/internal/db"
)

// Clock hands out strictly increasing timestamps so tests can assert that
// updated_at moves on every write.
type Clock struct {
	mu  sync.Mutex
	now time.Time
}

// NewClock starts a clock at a fixed instant.
func NewClock() *Clock {
	return &Clock{now: time.Date(2025, 1, 1, 9, 0, 0, 0, time.UTC)}
}

// Now advances the clock by one second and returns the new instant.
func (c *Clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(time.Second)
	return c.now
}

// New returns a migrated in-memory database private to the test.
func New(t testing.TB) *gorm.DB {
	t.Helper()
	gormDB, _ := NewWithClock(t)
	return gormDB
}

// NewWithClock is New but also returns the clock driving server timestamps.
func NewWithClock(t testing.TB) (*gorm.DB, *Clock) {
	t.Helper()
	clock := NewClock()
	gormDB, err := db.Open("sqlite", ":memory:", &gorm.Config{
		TranslateError: true,
		NowFunc:        clock.Now,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}

	sqlDB, err := gormDB.DB()
	if err != nil {
		t.Fatalf("sql handle: %v", err)
	}
	// every pooled connection to ":memory:" would be a separate database
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	if _, err := db.Migrate(context.Background(), gormDB); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return gormDB, clock
}
