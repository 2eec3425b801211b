package diagnostic

import (
	"context"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/DATA-DOG/go-sqlmock.v1"
)

func mockRunner(t *testing.T, queries []Query) (*Runner, sqlmock.Sqlmock) {
	t.Helper()
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { mockDB.Close() })

	conn := NewConnectionFromDB(sqlx.NewDb(mockDB, "sqlmock"))
	return NewRunner(conn, `HOST\INST`, queries), mock
}

func collect(rows <-chan Row) (out []Row) {
	for row := range rows {
		out = append(out, row)
	}
	return
}

func expectVersion(mock sqlmock.Sqlmock, version string) {
	mock.ExpectQuery("SERVERPROPERTY").
		WillReturnRows(sqlmock.NewRows([]string{"ProductVersion"}).AddRow(version))
}

func TestRunnerInstanceQuery(t *testing.T) {
	runner, mock := mockRunner(t, []Query{
		{Name: "Version Info", Number: 1, SQL: "SELECT @@SERVERNAME AS [Server Name]"},
	})

	expectVersion(mock, "15.0.4236.7")
	mock.ExpectQuery("SELECT @@SERVERNAME").
		WillReturnRows(sqlmock.NewRows([]string{"Server Name", "Build"}).
			AddRow("HOST", int64(4236)))

	rows := collect(runner.Run(context.Background()))
	require.Len(t, rows, 1)

	row := rows[0]
	assert.Equal(t, "Version Info", row.Name)
	assert.Equal(t, 1, row.Number)
	assert.Equal(t, `HOST\INST`, row.SQLInstance)
	assert.False(t, row.DatabaseSpecific)
	require.Len(t, row.Result, 1)

	rec := row.Result[0]
	assert.Equal(t, []string{"Server Name", "Build"}, rec.Fields())
	v, _ := rec.Get("Build")
	assert.Equal(t, Number, v.Kind())

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRunnerVersionGate(t *testing.T) {
	runner, mock := mockRunner(t, []Query{
		{Name: "New Feature", Number: 2, MinVersion: "14.0.0", SQL: "SELECT 1"},
	})

	expectVersion(mock, "13.0.5026.0")

	rows := collect(runner.Run(context.Background()))
	assert.Empty(t, rows, "query below min-version must be skipped")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRunnerDatabaseFanOut(t *testing.T) {
	runner, mock := mockRunner(t, []Query{
		{Name: "Index Usage", Number: 8, DatabaseSpecific: true, SQL: "SELECT x FROM sys.indexes"},
	})

	expectVersion(mock, "15.0.4236.7")
	mock.ExpectQuery("sys.databases").
		WillReturnRows(sqlmock.NewRows([]string{"name"}).AddRow("AppDB").AddRow("Sales"))
	mock.ExpectQuery("sys.indexes").
		WillReturnRows(sqlmock.NewRows([]string{"x"}).AddRow("a"))
	mock.ExpectQuery("sys.indexes").
		WillReturnRows(sqlmock.NewRows([]string{"x"}).AddRow("b"))

	rows := collect(runner.Run(context.Background()))
	require.Len(t, rows, 2)

	assert.Equal(t, "AppDB", rows[0].DatabaseName)
	assert.Equal(t, "Sales", rows[1].DatabaseName)
	for _, row := range rows {
		assert.True(t, row.DatabaseSpecific)
		assert.Equal(t, "Index Usage", row.Name)
	}

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRunnerQueryFailureContinues(t *testing.T) {
	runner, mock := mockRunner(t, []Query{
		{Name: "Broken", Number: 1, SQL: "SELECT broken"},
		{Name: "Working", Number: 2, SQL: "SELECT working"},
	})

	expectVersion(mock, "15.0.4236.7")
	mock.ExpectQuery("SELECT broken").WillReturnError(assert.AnError)
	mock.ExpectQuery("SELECT working").
		WillReturnRows(sqlmock.NewRows([]string{"working"}).AddRow("yes"))

	rows := collect(runner.Run(context.Background()))
	require.Len(t, rows, 1)
	assert.Equal(t, "Working", rows[0].Name)
	assert.NoError(t, mock.ExpectationsWereMet())
}
