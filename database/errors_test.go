package database

import (
	"database/sql"
	"errors"
	"fmt"
	"testing"

	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
)

func TestIsSqlError(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		is     bool
		expect SQLError
	}{
		{"nil", nil, false, UnknownErr},
		{"no_rows", fmt.Errorf("get: %w", sql.ErrNoRows), true, NoRowsErr},
		{"pq_unique", &pq.Error{Code: "23505"}, true, DuplicateKeyErr},
		{"pq_undefined_table", &pq.Error{Code: "42P01"}, true, NoTableErr},
		{"pq_other", &pq.Error{Code: "57014"}, true, UnknownErr},
		{"pgx_not_null", &pgconn.PgError{Code: "23502"}, true, NotNullViolationErr},
		{"pgx_wrapped_fk", fmt.Errorf("edit: %w", &pgconn.PgError{Code: "23503"}), true, ForeignKeyViolationErr},
		{"pgx_bad_cast", &pgconn.PgError{Code: "22P02"}, true, InvalidTypeCastErr},
		{"mysql_duplicate", &mysql.MySQLError{Number: 1062}, true, DuplicateKeyErr},
		{"mysql_no_table", &mysql.MySQLError{Number: 1146}, true, NoTableErr},
		{"mysql_fk_parent", &mysql.MySQLError{Number: 1452}, true, ForeignKeyViolationErr},
		{"mysql_other", &mysql.MySQLError{Number: 2013}, true, UnknownErr},
		{"message_column", errors.New("sqlite: no such column: foo"), true, NoColumnErr},
		{"message_sqlstate", errors.New(`ERROR: insert into "posts" (SQLSTATE 23505)`), true, DuplicateKeyErr},
		{"message_relation", errors.New(`relation "drafts" does not exist`), true, NoTableErr},
		{"message_index", errors.New(`index "posts_slug" does not exist`), true, NoIndexErr},
		{"message_exists", errors.New(`table "posts" already exists`), true, ExistTableErr},
		{"message_sqlite_unique", errors.New("UNIQUE constraint failed: posts.slug"), true, DuplicateKeyErr},
		{"other", errors.New("connection refused"), false, UnknownErr},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			is, got := IsSqlError(tt.err)
			assert.Equal(t, tt.is, is)
			assert.Equal(t, tt.expect, got)
		})
	}
}

func TestSQLErrorString(t *testing.T) {
	assert.Equal(t, "duplicate_key", DuplicateKeyErr.String())
	assert.Equal(t, "unknown", SQLError(99).String())
}
