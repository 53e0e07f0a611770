package database_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pageza/recipify/backend/config"
	"github.com/pageza/recipify/backend/internal/database"
	"github.com/pageza/recipify/backend/internal/logging"
	"github.com/pageza/recipify/backend/internal/models"
	"github.com/pageza/recipify/backend/internal/testhelpers"
)

func TestSQLiteAutoMigrate(t *testing.T) {
	db := testhelpers.SetupSQLiteDB(t)

	for _, m := range database.AllModels() {
		assert.True(t, db.Migrator().HasTable(m), "%T", m)
	}
	require.NoError(t, database.HealthCheck(context.Background(), db))

	user := testhelpers.CreateUser(t, db)
	assert.NotZero(t, user.ID)
}

func TestSQLiteEnforcesForeignKeys(t *testing.T) {
	db := testhelpers.SetupSQLiteDB(t)

	err := db.Create(&models.Recipe{Title: "orphan"}).Error
	assert.Error(t, err)
}

func TestNewRejectsUnknownDriver(t *testing.T) {
	_, err := database.New(&config.Config{DBDriver: "mysql"}, logging.Discard())
	assert.ErrorContains(t, err, "unsupported database driver")
}

func TestNewOpensSQLiteFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "recipify.db")
	db, err := database.New(&config.Config{DBDriver: "sqlite", SQLitePath: path}, logging.Discard())
	require.NoError(t, err)
	require.NoError(t, database.RunMigrations(db, "", logging.Discard()))

	_, err = os.Stat(path)
	assert.NoError(t, err)
}

func TestListMigrations(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"0002_b.up.sql", "0001_a.up.sql", "0001_a.down.sql", "notes.txt"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("-- sql"), 0o600))
	}

	ups, err := database.ListMigrations(dir, database.UpSuffix)
	require.NoError(t, err)
	assert.Equal(t, []string{"0001_a.up.sql", "0002_b.up.sql"}, ups)
	assert.Equal(t, "0001_a.down.sql", database.DownFor(ups[0]))

	_, err = database.ListMigrations(filepath.Join(dir, "missing"), database.UpSuffix)
	assert.Error(t, err)
}

func TestPostgresMigrationsApplyOnce(t *testing.T) {
	db := testhelpers.SetupPostgresDB(t)

	// a second run finds everything applied
	require.NoError(t, database.RunMigrations(db, testhelpers.MigrationsDir(t), logging.Discard()))

	var applied int64
	require.NoError(t, db.Table("migrations").Count(&applied).Error)
	ups, err := database.ListMigrations(testhelpers.MigrationsDir(t), database.UpSuffix)
	require.NoError(t, err)
	assert.Equal(t, int64(len(ups)), applied)

	for _, m := range database.AllModels() {
		assert.True(t, db.Migrator().HasTable(m), "%T", m)
	}
}

func TestPostgresDSN(t *testing.T) {
	dsn := database.PostgresDSN(&config.Config{
		DBHost: "db", DBPort: "5432", DBUser: "u", DBPassword: "p", DBName: "n", DBSSLMode: "disable",
	})
	assert.Equal(t, "host=db port=5432 user=u password=p dbname=n sslmode=disable", dsn)
}

func TestNewRedisClientDisabled(t *testing.T) {
	client, err := database.NewRedisClient(&config.Config{}, logging.Discard())
	require.NoError(t, err)
	assert.Nil(t, client)
}
