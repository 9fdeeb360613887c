package repository

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"io"
	"reflect"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"

	"github.com/tomoncle/relmodel/query"
	"github.com/tomoncle/relmodel/types"
)

// scratchDriver serves every row out of one shared buffer and reports an
// interface{} scan type, the way lib/pq handles small jsonb rows.
type scratchDriver struct {
	rows [][]string
}

func (d *scratchDriver) Open(string) (driver.Conn, error) { return &scratchConn{d: d}, nil }

type scratchConn struct{ d *scratchDriver }

func (c *scratchConn) Prepare(string) (driver.Stmt, error) { return nil, errors.New("not supported") }
func (c *scratchConn) Close() error                        { return nil }
func (c *scratchConn) Begin() (driver.Tx, error)           { return nil, errors.New("not supported") }

func (c *scratchConn) QueryContext(context.Context, string, []driver.NamedValue) (driver.Rows, error) {
	return &scratchRows{data: c.d.rows}, nil
}

type scratchRows struct {
	data [][]string
	next int
	buf  [512]byte
}

func (r *scratchRows) Columns() []string { return []string{"id", "comments"} }
func (r *scratchRows) Close() error      { return nil }

func (r *scratchRows) ColumnTypeScanType(int) reflect.Type {
	return reflect.TypeOf((*interface{})(nil)).Elem()
}

func (r *scratchRows) Next(dest []driver.Value) error {
	if r.next >= len(r.data) {
		return io.EOF
	}
	row := r.data[r.next]
	r.next++
	off := 0
	for i, v := range row {
		n := copy(r.buf[off:], v)
		dest[i] = r.buf[off : off+n]
		off += n
	}
	return nil
}

var registerScratch sync.Once

func newScratchDB(t *testing.T) *bun.DB {
	t.Helper()
	registerScratch.Do(func() {
		sql.Register("relmodel-scratch", &scratchDriver{rows: [][]string{
			{"1", `[{"id":1,"body":"first"}]`},
			{"2", `[{"id":2,"body":"other"}]`},
		}})
	})
	sqldb, err := sql.Open("relmodel-scratch", "")
	require.NoError(t, err)
	db := bun.NewDB(sqldb, pgdialect.New())
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestGetAllKeepsRowsApartOnSharedDriverBuffer(t *testing.T) {
	m := MustNew(newScratchDB(t), "posts", WithRelations(
		query.HasMany{Table: "comments", Columns: query.Cols("body")},
	))

	rows, err := m.GetAll(context.Background(), nil)
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, "1", string(rows[0]["id"].([]byte)))
	first, ok := rows[0]["comments"].(types.JsonArray)
	require.True(t, ok, "comments is %T", rows[0]["comments"])
	assert.Equal(t, "first", first[0]["body"])

	second := rows[1]["comments"].(types.JsonArray)
	assert.Equal(t, "other", second[0]["body"])
}

func TestReturningRowsKeepOwnBytes(t *testing.T) {
	m := MustNew(newScratchDB(t), "posts")

	rows, err := m.Delete(context.Background(), query.Match{"status": "draft"})
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, `[{"id":1,"body":"first"}]`, string(rows[0]["comments"].([]byte)))
	assert.Equal(t, `[{"id":2,"body":"other"}]`, string(rows[1]["comments"].([]byte)))
}
