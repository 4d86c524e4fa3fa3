package admin

import (
	"errors"
	"testing"

	"github.com/golang-migrate/migrate/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMigrationStatus_Applied(t *testing.T) {
	status, err := migrationStatus(nil, nil, 3, false)
	require.NoError(t, err)
	assert.Equal(t, "applied successfully (version 3)", status)
}

func TestMigrationStatus_NoChange(t *testing.T) {
	status, err := migrationStatus(migrate.ErrNoChange, nil, 3, false)
	require.NoError(t, err)
	assert.Equal(t, "database is up to date (version 3)", status)
}

func TestMigrationStatus_NilVersion(t *testing.T) {
	status, err := migrationStatus(migrate.ErrNoChange, migrate.ErrNilVersion, 0, false)
	require.NoError(t, err)
	assert.Equal(t, "database is up to date (no migrations applied)", status)
}

func TestMigrationStatus_Dirty(t *testing.T) {
	_, err := migrationStatus(nil, nil, 2, true)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "dirty")
	assert.Contains(t, err.Error(), "2")
}

func TestMigrationStatus_VersionError(t *testing.T) {
	_, err := migrationStatus(nil, errors.New("connection reset"), 0, false)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to get migration version")
}
