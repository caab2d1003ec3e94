package migration

import (
	"io/fs"
	"strings"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestRunAutoMigratesSQLite(t *testing.T) {
	conn, err := gorm.Open(sqlite.Open("file:migration_run?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := conn.DB()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, Run(conn))
	for _, table := range []string{"customers", "consumption_records", "bills", "upload_batches"} {
		assert.True(t, conn.Migrator().HasTable(table), table)
	}

	// Second run is a no-op.
	require.NoError(t, Run(conn))
}

func TestRunCreatesCustomerForeignKeys(t *testing.T) {
	conn, err := gorm.Open(sqlite.Open("file:migration_fk?mode=memory&cache=shared&_pragma=foreign_keys(1)"), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := conn.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, Run(conn))

	type foreignKey struct {
		Table string `gorm:"column:table"`
		From  string `gorm:"column:from"`
		To    string `gorm:"column:to"`
	}
	for _, table := range []string{"consumption_records", "bills"} {
		var keys []foreignKey
		require.NoError(t, conn.Raw("PRAGMA foreign_key_list("+table+")").Scan(&keys).Error)
		require.Len(t, keys, 1, table)
		assert.Equal(t, foreignKey{Table: "customers", From: "customer_id", To: "customer_id"}, keys[0], table)
	}

	err = conn.Exec(
		`INSERT INTO consumption_records (id, read_at, consumption, price, customer_id, created_at) VALUES (1, ?, 1, 1, 'NOPE', ?)`,
		time.Now().UTC(), time.Now().UTC(),
	).Error
	assert.Error(t, err)

	require.NoError(t, conn.Exec(
		`INSERT INTO customers (customer_id, email, created_at) VALUES ('ABC123', 'a@example.com', ?)`, time.Now().UTC(),
	).Error)
	assert.NoError(t, conn.Exec(
		`INSERT INTO consumption_records (id, read_at, consumption, price, customer_id, created_at) VALUES (1, ?, 1, 1, 'ABC123', ?)`,
		time.Now().UTC(), time.Now().UTC(),
	).Error)
}

func TestRunRequiresHandle(t *testing.T) {
	assert.Error(t, Run(nil))
	assert.Error(t, RunMigrations(nil))
}

func TestEmbeddedMigrationsArePaired(t *testing.T) {
	entries, err := fs.ReadDir(embeddedMigrations, migrationsDir)
	require.NoError(t, err)

	ups := map[string]bool{}
	downs := map[string]bool{}
	for _, e := range entries {
		name := e.Name()
		switch {
		case strings.HasSuffix(name, ".up.sql"):
			ups[strings.TrimSuffix(name, ".up.sql")] = true
		case strings.HasSuffix(name, ".down.sql"):
			downs[strings.TrimSuffix(name, ".down.sql")] = true
		}
	}
	assert.NotEmpty(t, ups)
	assert.Equal(t, ups, downs)
}
