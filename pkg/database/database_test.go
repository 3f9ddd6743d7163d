package database

import (
	"path/filepath"
	"testing"

	"workorder/configs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConnectDBSQLite(t *testing.T) {
	cfg := configs.Config{
		DBDriver:   configs.DriverSQLite,
		SQLitePath: filepath.Join(t.TempDir(), "test.db"),
	}
	db, err := ConnectDB(cfg)
	require.NoError(t, err)
	defer db.Close()

	var fk int
	require.NoError(t, db.QueryRow("PRAGMA foreign_keys").Scan(&fk))
	assert.Equal(t, 1, fk)
}

func TestOpenSQLiteRequiresPath(t *testing.T) {
	_, err := OpenSQLite("")
	assert.Error(t, err)
}

func TestPostgresDSN(t *testing.T) {
	dsn := PostgresDSN(configs.Config{
		DBHost: "db", DBPort: 5432, DBUser: "u", DBPassword: "p", DBName: "w", DBSSLMode: "disable",
	})
	assert.Equal(t, "host=db port=5432 user=u password=p dbname=w sslmode=disable", dsn)
}
