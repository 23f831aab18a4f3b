package persistence

import (
	"context"
	"database/sql"
	"errors"
	"io/fs"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestRunMigrations_NilPoolSkips(t *testing.T) {
	called := false
	orig := gooseUp
	gooseUp = func(context.Context, *sql.DB, string) error {
		called = true
		return errors.New("should not run")
	}
	defer func() { gooseUp = orig }()

	require.NoError(t, RunMigrations(context.Background(), nil, zap.NewNop()))
	assert.False(t, called)
}

func TestMigrationsEmbedded(t *testing.T) {
	entries, err := fs.ReadDir(migrationsFS, migrationsDir)
	require.NoError(t, err)
	require.NotEmpty(t, entries)

	content, err := fs.ReadFile(migrationsFS, migrationsDir+"/"+entries[0].Name())
	require.NoError(t, err)
	assert.Contains(t, string(content), "-- +goose Up")
	assert.Contains(t, string(content), "UNIQUE (user_id, course_id)")
}

func TestDisabledClients(t *testing.T) {
	var pg *Postgres
	assert.False(t, pg.Enabled())
	assert.Error(t, pg.Ping(context.Background()))

	r := &Redis{}
	assert.False(t, r.Enabled())
	assert.Error(t, r.Ping(context.Background()))
	r.Close()
}
