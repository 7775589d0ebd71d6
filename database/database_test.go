/*
 * Copyright 2025 the wren authors.
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package database

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"

	"github.com/wrenkit/wren/entity"
)

func TestDefaultConnectionConfig(t *testing.T) {
	cfg := DefaultConnectionConfig()
	assert.Equal(t, 10, cfg.MaxIdleConns)
	assert.Equal(t, 100, cfg.MaxOpenConns)
	assert.Equal(t, time.Hour, cfg.ConnMaxLifetime)
	assert.True(t, cfg.EnableReconnect)
	assert.False(t, cfg.EnableQueryLog)
	assert.Equal(t, 2*time.Second, cfg.SlowQueryTime)
}

func TestLoadConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "database.yaml")
	content := `
connection:
  type: postgres
  host: db.internal
  port: 5432
  username: app
  password: secret
  dbname: appdb
  sslmode: disable
  max_idle_conns: 4
  enable_query_log: true
migrate:
  enable_migrate_on_startup: true
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := LoadConfigFile(path)
	require.NoError(t, err)
	assert.Equal(t, "postgres", cfg.ConnectionConfig.Type)
	assert.Equal(t, "db.internal", cfg.ConnectionConfig.Host)
	assert.Equal(t, 5432, cfg.ConnectionConfig.Port)
	assert.Equal(t, "appdb", cfg.ConnectionConfig.DBName)
	assert.Equal(t, 4, cfg.ConnectionConfig.MaxIdleConns)
	assert.True(t, cfg.ConnectionConfig.EnableQueryLog)
	assert.True(t, cfg.MigrateConfig.EnableMigrateOnStartup)

	// unset pool fields keep their defaults
	assert.Equal(t, 100, cfg.ConnectionConfig.MaxOpenConns)
	assert.Equal(t, time.Hour, cfg.ConnectionConfig.ConnMaxLifetime)
}

func TestLoadConfigFileMissing(t *testing.T) {
	_, err := LoadConfigFile(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestCreateFromConfigUnsupportedType(t *testing.T) {
	cfg := DefaultConnectionConfig()
	cfg.Type = "oracle"
	_, err := NewDatabaseFactory().CreateFromConfig(cfg)
	assert.Error(t, err)
}

func TestCreateFromConfigEnvOverrides(t *testing.T) {
	t.Setenv("DB_HOST", "override-host")
	t.Setenv("DB_PORT", "3307")
	t.Setenv("DB_USERNAME", "env-user")
	t.Setenv("DB_PASSWORD", "env-pass")
	t.Setenv("DB_NAME", "env-db")
	t.Setenv("DB_MAX_IDLE_CONNS", "7")
	t.Setenv("DB_CONN_MAX_LIFETIME", "5400")
	t.Setenv("DB_ENABLE_RECONNECT", "false")
	t.Setenv("DB_ENABLE_QUERY_LOG", "true")

	cfg := DefaultConnectionConfig()
	cfg.Type = "mysql"
	cfg.Host = "original"
	_, err := NewDatabaseFactory().CreateFromConfig(cfg)
	require.NoError(t, err)

	assert.Equal(t, "override-host", cfg.Host)
	assert.Equal(t, 3307, cfg.Port)
	assert.Equal(t, "env-user", cfg.Username)
	assert.Equal(t, "env-pass", cfg.Password)
	assert.Equal(t, "env-db", cfg.DBName)
	assert.Equal(t, 7, cfg.MaxIdleConns)
	assert.Equal(t, 5400*time.Second, cfg.ConnMaxLifetime)
	assert.False(t, cfg.EnableReconnect)
	assert.True(t, cfg.EnableQueryLog)
}

func TestIsSqlError(t *testing.T) {
	is, code := IsSqlError(nil)
	assert.False(t, is)
	assert.Equal(t, UnknownErr, code)

	is, code = IsSqlError(errors.New("connection refused"))
	assert.False(t, is)
	assert.Equal(t, UnknownErr, code)

	is, code = IsSqlError(&mysql.MySQLError{Number: 1062, Message: "Duplicate entry"})
	assert.True(t, is)
	assert.Equal(t, DuplicateKeyErr, code)

	is, code = IsSqlError(&mysql.MySQLError{Number: 1146, Message: "Table doesn't exist"})
	assert.True(t, is)
	assert.Equal(t, NoTableErr, code)

	is, code = IsSqlError(&mysql.MySQLError{Number: 9999, Message: "novel"})
	assert.True(t, is)
	assert.Equal(t, UnknownErr, code)

	// sqlite message forms
	is, code = IsSqlError(errors.New("UNIQUE constraint failed: tags.name"))
	assert.True(t, is)
	assert.Equal(t, DuplicateKeyErr, code)

	is, code = IsSqlError(errors.New("no such table: tags"))
	assert.True(t, is)
	assert.Equal(t, NoTableErr, code)

	is, code = IsSqlError(errors.New("NOT NULL constraint failed: tags.name"))
	assert.True(t, is)
	assert.Equal(t, NotNullViolationErr, code)

	// postgres sqlstate forms
	is, code = IsSqlError(errors.New(`duplicate key value violates unique constraint "tags_pkey" (SQLSTATE 23505)`))
	assert.True(t, is)
	assert.Equal(t, DuplicateKeyErr, code)

	is, code = IsSqlError(errors.New(`column "nope" does not exist (SQLSTATE 42703)`))
	assert.True(t, is)
	assert.Equal(t, NoColumnErr, code)
}

type journal struct {
	bun.BaseModel `bun:"table:journals,alias:j"`

	entity.Base

	Note string `bun:"note"`
}

func TestSQLiteManagerLifecycle(t *testing.T) {
	ctx := context.Background()

	cfg := DefaultConnectionConfig()
	cfg.Type = "sqlite"
	cfg.DBName = ":memory:"
	cfg.MaxOpenConns = 1
	cfg.MaxIdleConns = 1
	cfg.EnableReconnect = false
	cfg.HealthCheckInterval = 0

	manager := NewDatabaseManager(cfg)
	require.NoError(t, manager.Connect(ctx))
	t.Cleanup(func() { _ = manager.Disconnect() })

	require.NoError(t, manager.Ping(ctx))

	status := manager.HealthCheck(ctx)
	require.NotNil(t, status)
	assert.True(t, status.Healthy)
	assert.True(t, status.Connected)

	stats := manager.GetStats()
	require.NotNil(t, stats)
	assert.Equal(t, 1, stats.MaxOpenConns)

	RegisteredModel(NewModelAdapter((*journal)(nil), 1))
	require.NoError(t, manager.RunMigrations(ctx))

	db := manager.GetDB()
	require.NotNil(t, db)

	row := &journal{Note: "first"}
	_, err := db.NewInsert().Model(row).Exec(ctx)
	require.NoError(t, err)
	assert.NotZero(t, row.ID)

	// migrations are tracked and re-running stays idempotent
	mm := NewMigrationManager(db, nil)
	applied, err := mm.GetAppliedMigrations(ctx)
	require.NoError(t, err)
	require.Len(t, applied, 1)
	assert.Equal(t, "001", applied[0].Version)

	require.NoError(t, manager.RunMigrations(ctx))

	n, err := db.NewSelect().Model((*journal)(nil)).Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestModelRegistryOrdering(t *testing.T) {
	type alpha struct {
		bun.BaseModel `bun:"table:alphas"`
		ID            int64 `bun:"id,pk,autoincrement"`
	}
	type beta struct {
		bun.BaseModel `bun:"table:betas"`
		ID            int64 `bun:"id,pk,autoincrement"`
	}

	a := (*alpha)(nil)
	b := (*beta)(nil)
	RegisteredModel(NewModelAdapter(b, 20))
	RegisteredModel(NewModelAdapter(a, 10))

	var posA, posB = -1, -1
	for i, instance := range RegisteredModelInstances() {
		switch instance {
		case interface{}(a):
			posA = i
		case interface{}(b):
			posB = i
		}
	}
	require.NotEqual(t, -1, posA)
	require.NotEqual(t, -1, posB)
	assert.Less(t, posA, posB, "lower priority value migrates first")
}
