// Package testutil provides in-memory database fixtures for package tests.
package testutil

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/smallbiznis/voltbill/internal/migration"
	"gorm.io/gorm"
)

// OpenDB returns an isolated in-memory sqlite database migrated the same
// way the application migrates it, with foreign keys enforced.
func OpenDB(t *testing.T) *gorm.DB {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_pragma=foreign_keys(1)", name)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("db handle: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetMaxIdleConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	if err := migration.Run(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

// SeedCustomer inserts a customer row.
func SeedCustomer(t *testing.T, db *gorm.DB, customerID, name, email string) {
	t.Helper()
	var nameValue any
	if name != "" {
		nameValue = name
	}
	err := db.Exec(
		`INSERT INTO customers (customer_id, name, email, created_at) VALUES (?, ?, ?, ?)`,
		customerID, nameValue, email, time.Now().UTC(),
	).Error
	if err != nil {
		t.Fatalf("seed customer: %v", err)
	}
}

// Count returns the number of rows in table.
func Count(t *testing.T, db *gorm.DB, table string) int {
	t.Helper()
	var count int
	if err := db.Raw(`SELECT COUNT(1) FROM ` + table).Scan(&count).Error; err != nil {
		t.Fatalf("count %s: %v", table, err)
	}
	return count
}

func MustNode(t *testing.T) *snowflake.Node {
	t.Helper()
	node, err := snowflake.NewNode(1)
	if err != nil {
		t.Fatalf("new node: %v", err)
	}
	return node
}
