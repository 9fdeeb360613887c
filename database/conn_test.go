package database

import (
	"context"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
)

func TestSetDB(t *testing.T) {
	sqldb, mock, err := sqlmock.New()
	require.NoError(t, err)
	db := bun.NewDB(sqldb, pgdialect.New())

	SetDB(db)
	assert.Same(t, db, GetDB())
	assert.Nil(t, GetDatabaseManager())

	mock.ExpectExec(regexp.QuoteMeta(`SELECT 1 FROM "posts" LIMIT 0`)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(regexp.QuoteMeta(`SELECT 1 FROM "drafts" LIMIT 0`)).
		WillReturnError(&pq.Error{Code: "42P01", Message: `relation "drafts" does not exist`})

	status := GetHealthStatus(context.Background(), "posts", "drafts", "posts")
	assert.True(t, status.Connected)
	assert.False(t, status.Healthy)
	require.Len(t, status.Tables, 2)
	assert.Equal(t, TableHealth{Table: "posts", Reachable: true}, status.Tables[0])
	assert.False(t, status.Tables[1].Reachable)
	assert.Equal(t, "no_table", status.Tables[1].Kind)
	assert.Contains(t, status.LastError, "table drafts")

	mock.ExpectClose()
	require.NoError(t, CloseDB())
	assert.Nil(t, GetDB())
	assert.False(t, GetHealthStatus(context.Background()).Healthy)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInitDBRejectsBadConfig(t *testing.T) {
	_, err := InitDB(nil)
	assert.Error(t, err)

	_, err = InitDB(&Config{ConnectionConfig: ConnectionConfig{Type: "oracle"}})
	assert.ErrorContains(t, err, "unsupported database type")
	assert.Nil(t, GetDatabaseManager())
}
