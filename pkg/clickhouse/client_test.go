package clickhouse

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	ch "github.com/ClickHouse/clickhouse-go/v2"
	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildOptions(t *testing.T) {
	cfg := ClientConfig{
		Host:         "warehouse",
		Port:         9440,
		Database:     "signalaxis",
		User:         "reader",
		Password:     "pw",
		UseHTTP:      true,
		AsyncInsert:  true,
		WaitForAsync: true,
		MaxExecTime:  90 * time.Second,
	}

	o := buildOptions(cfg)

	assert.Equal(t, []string{"warehouse:9440"}, o.Addr)
	assert.Equal(t, ch.HTTP, o.Protocol)
	assert.Equal(t, "signalaxis", o.Auth.Database)
	assert.Equal(t, 90, o.Settings["max_execution_time"])
	assert.Equal(t, 1, o.Settings["async_insert"])
	assert.Equal(t, 1, o.Settings["wait_for_async_insert"])
}

func TestBuildSettings_Empty(t *testing.T) {
	assert.Empty(t, buildSettings(ClientConfig{WaitForAsync: true}))
}

func TestInitSchema_RunsEveryStatement(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec(regexp.QuoteMeta("CREATE TABLE IF NOT EXISTS a")).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(regexp.QuoteMeta("CREATE TABLE IF NOT EXISTS b")).WillReturnResult(sqlmock.NewResult(0, 0))

	c := NewFromDB(db)
	require.NoError(t, c.InitSchema(context.Background(), []string{
		"CREATE TABLE IF NOT EXISTS a (x Int32) ENGINE = Memory",
		"CREATE TABLE IF NOT EXISTS b (x Int32) ENGINE = Memory",
	}))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInitSchema_StopsAtFirstFailure(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec("CREATE TABLE").WillReturnError(errors.New("code: 62, syntax error"))

	err = NewFromDB(db).InitSchema(context.Background(), []string{"CREATE TABLE a", "CREATE TABLE b"})
	assert.ErrorContains(t, err, "statement 0")
	assert.ErrorContains(t, err, "syntax error")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInsertBatch_OneTransaction(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	query := "INSERT INTO axis_learning_snapshots (signal_type, signal_bin) VALUES (?, ?)"
	mock.ExpectBegin()
	prep := mock.ExpectPrepare(regexp.QuoteMeta(query))
	prep.ExpectExec().WithArgs("rsi", 3).WillReturnResult(sqlmock.NewResult(0, 1))
	prep.ExpectExec().WithArgs("macd", 1).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, NewFromDB(db).InsertBatch(context.Background(), query, [][]any{{"rsi", 3}, {"macd", 1}}))
	assert.NoError(t, mock.ExpectationsWereMet())
}
