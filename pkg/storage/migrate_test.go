package storage

import (
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunMigrations_AppliesPendingInOrder(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	migrations := []Migration{
		{Version: 2, Description: "add index", SQL: "CREATE INDEX idx_t ON t (a)"},
		{Version: 1, Description: "create table", SQL: "CREATE TABLE t (a INT)"},
	}

	mock.ExpectExec("CREATE TABLE IF NOT EXISTS schema_migrations").
		WillReturnResult(sqlmock.NewResult(0, 0))

	// version 1 pending
	mock.ExpectQuery("SELECT EXISTS").
		WithArgs(1).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))
	mock.ExpectBegin()
	mock.ExpectExec("CREATE TABLE t").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("INSERT INTO schema_migrations").
		WithArgs(1, "create table").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	// version 2 pending
	mock.ExpectQuery("SELECT EXISTS").
		WithArgs(2).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))
	mock.ExpectBegin()
	mock.ExpectExec("CREATE INDEX idx_t").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("INSERT INTO schema_migrations").
		WithArgs(2, "add index").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err = RunMigrations(db, migrations)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRunMigrations_SkipsApplied(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	migrations := []Migration{
		{Version: 1, Description: "create table", SQL: "CREATE TABLE t (a INT)"},
	}

	mock.ExpectExec("CREATE TABLE IF NOT EXISTS schema_migrations").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery("SELECT EXISTS").
		WithArgs(1).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	err = RunMigrations(db, migrations)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRunMigrations_RollsBackOnFailure(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	migrations := []Migration{
		{Version: 1, Description: "bad migration", SQL: "CREATE BROKEN"},
	}

	mock.ExpectExec("CREATE TABLE IF NOT EXISTS schema_migrations").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery("SELECT EXISTS").
		WithArgs(1).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))
	mock.ExpectBegin()
	mock.ExpectExec("CREATE BROKEN").WillReturnError(assert.AnError)
	mock.ExpectRollback()

	err = RunMigrations(db, migrations)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "bad migration")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRunMigrations_RejectsDuplicateVersions(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	migrations := []Migration{
		{Version: 1, Description: "a", SQL: "SELECT 1"},
		{Version: 1, Description: "b", SQL: "SELECT 1"},
	}

	mock.ExpectExec("CREATE TABLE IF NOT EXISTS schema_migrations").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err = RunMigrations(db, migrations)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate migration version")
}
