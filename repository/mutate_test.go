package repository

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tomoncle/relmodel/query"
	"github.com/tomoncle/relmodel/types"
)

func TestAdd(t *testing.T) {
	db, mock := newMock(t)
	m := MustNew(db, "posts", WithAddFormat(func(data types.Row) types.Row {
		data["slug"] = "hello"
		return data
	}))

	mock.ExpectQuery(`INSERT INTO "posts" \(.*"slug".*\) VALUES \(.*'hello'.*\) RETURNING \*`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "title", "slug"}).AddRow(int64(1), "Hello", "hello"))

	data := types.Row{"title": "Hello"}
	row, err := m.Add(context.Background(), data)
	require.NoError(t, err)
	assert.Equal(t, int64(1), row["id"])
	assert.NotContains(t, data, "slug", "caller data must not be modified")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAddEmpty(t *testing.T) {
	db, mock := newMock(t)
	m := MustNew(db, "posts")
	_, err := m.Add(context.Background(), types.Row{})
	assert.True(t, query.IsConfiguration(err))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestEditByID(t *testing.T) {
	db, mock := newMock(t)
	m := MustNew(db, "posts")

	mock.ExpectQuery(q(`UPDATE "posts" SET "name" = 'y' WHERE ("posts"."id" = 5) RETURNING *`)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name"}).AddRow(int64(5), "y"))

	row, err := m.Edit(context.Background(), types.Row{"id": 5, "name": "y"}, query.Match{"status": "ignored"}, EditOptions{})
	require.NoError(t, err)
	assert.Equal(t, "y", row["name"])
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestEditCardinality(t *testing.T) {
	db, mock := newMock(t)
	m := MustNew(db, "posts")
	match := query.Match{"status": "active"}

	mock.ExpectBegin()
	mock.ExpectQuery(q(`SELECT count("posts"."id") FROM "posts" WHERE ("posts"."status" = 'active')`)).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(int64(2)))
	mock.ExpectRollback()

	_, err := m.Edit(context.Background(), types.Row{"name": "x"}, match, EditOptions{})
	require.Error(t, err)
	assert.True(t, IsCardinality(err))
	require.NoError(t, mock.ExpectationsWereMet())

	mock.ExpectQuery(q(`UPDATE "posts" SET "name" = 'x' WHERE ("posts"."status" = 'active') RETURNING *`)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name"}).
			AddRow(int64(1), "x").
			AddRow(int64(2), "x"))

	row, err := m.Edit(context.Background(), types.Row{"name": "x"}, match, EditOptions{Multiple: true})
	require.NoError(t, err)
	assert.Equal(t, int64(1), row["id"])
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestEditUpsert(t *testing.T) {
	db, mock := newMock(t)
	m := MustNew(db, "posts")

	mock.ExpectBegin()
	mock.ExpectQuery(q(`SELECT count("posts"."id")`)).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(int64(0)))
	mock.ExpectQuery(q(`UPDATE "posts" SET "name" = 'x', "updated_by" = 3 WHERE ("posts"."slug" = 'missing')`)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectQuery(`INSERT INTO "posts" \(.*"created_by".*\) VALUES \(.*'missing'.*\) RETURNING \*`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "slug", "created_by"}).
			AddRow(int64(9), "x", "missing", int64(3)))
	mock.ExpectCommit()

	row, err := m.Edit(context.Background(),
		types.Row{"name": "x", "updated_by": 3},
		query.Match{"slug": "missing"},
		EditOptions{Upsert: true})
	require.NoError(t, err)
	assert.Equal(t, types.Row{"id": int64(9), "name": "x", "slug": "missing", "created_by": int64(3)}, row)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestEditGuardedJoinsCallerTx(t *testing.T) {
	db, mock := newMock(t)
	m := MustNew(db, "posts")
	ctx := context.Background()

	mock.ExpectBegin()
	mock.ExpectQuery(q(`SELECT count("posts"."id")`)).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(int64(1)))
	mock.ExpectQuery(q(`UPDATE "posts" SET "name" = 'x' WHERE ("posts"."slug" = 'a')`)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name"}).AddRow(int64(4), "x"))
	mock.ExpectCommit()

	err := m.RunInTx(ctx, nil, func(ctx context.Context, tx *Model) error {
		row, err := tx.Edit(ctx, types.Row{"name": "x"}, query.Match{"slug": "a"}, EditOptions{})
		if err == nil {
			assert.Equal(t, int64(4), row["id"])
		}
		return err
	})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestEditWithoutUpsertReturnsNil(t *testing.T) {
	db, mock := newMock(t)
	m := MustNew(db, "posts")

	mock.ExpectQuery(q(`UPDATE "posts"`)).WillReturnRows(sqlmock.NewRows([]string{"id"}))

	row, err := m.Edit(context.Background(), types.Row{"id": 3, "name": "x"}, nil, EditOptions{})
	require.NoError(t, err)
	assert.Nil(t, row)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestEditFormatAndUpdatedAt(t *testing.T) {
	db, mock := newMock(t)
	m := MustNew(db, "posts", WithUpdatedAt(), WithEditFormat(func(data types.Row) types.Row {
		delete(data, "secret")
		return data
	}))

	mock.ExpectQuery(`UPDATE "posts" SET "name" = 'x', "updated_at" = '[^']+' WHERE`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(1)))

	_, err := m.Edit(context.Background(), types.Row{"id": 1, "name": "x", "secret": "s"}, nil, EditOptions{})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestEditWithoutCondition(t *testing.T) {
	db, mock := newMock(t)
	m := MustNew(db, "posts")
	ctx := context.Background()

	_, err := m.Edit(ctx, types.Row{"name": "x"}, nil, EditOptions{})
	assert.True(t, query.IsConfiguration(err))

	_, err = m.Edit(ctx, types.Row{"id": 0, "name": "x"}, query.Match{}, EditOptions{})
	assert.True(t, query.IsConfiguration(err))

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestIncrementDecrement(t *testing.T) {
	db, mock := newMock(t)
	m := MustNew(db, "posts")
	ctx := context.Background()

	mock.ExpectQuery(q(`UPDATE "posts" SET "likes" = "likes" + 2, "views" = "views" + 1 WHERE ("posts"."id" = 5) RETURNING *`)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "views"}).AddRow(int64(5), int64(11)))
	rows, err := m.Increment(ctx, map[string]interface{}{"views": 1, "likes": 2}, query.Match{"id": 5})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, int64(11), rows[0]["views"])

	mock.ExpectQuery(q(`SET "stock" = "stock" - 1.5 WHERE`)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	_, err = m.Decrement(ctx, map[string]interface{}{"stock": 1.5}, query.Raw("? > 0", query.Ident("stock")))
	require.NoError(t, err)

	_, err = m.Decrement(ctx, map[string]interface{}{"stock": "1"}, query.Match{"id": 1})
	assert.True(t, query.IsConfiguration(err))
	_, err = m.Increment(ctx, map[string]interface{}{"views": 1}, nil)
	assert.True(t, query.IsConfiguration(err))
	_, err = m.Increment(ctx, nil, query.Match{"id": 1})
	assert.True(t, query.IsConfiguration(err))

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDelete(t *testing.T) {
	db, mock := newMock(t)
	m := MustNew(db, "posts")
	ctx := context.Background()

	mock.ExpectQuery(q(`UPDATE "posts" SET "is_deleted" = TRUE WHERE ("posts"."id" = 5) RETURNING *`)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "is_deleted"}).AddRow(int64(5), true))
	rows, err := m.Delete(ctx, 5)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, true, rows[0]["is_deleted"])

	mock.ExpectQuery(q(`SET "is_deleted" = TRUE WHERE ("posts"."id" = 7)`)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(7)))
	_, err = m.Delete(ctx, "7")
	require.NoError(t, err)

	mock.ExpectQuery(q(`SET "is_deleted" = TRUE WHERE ("posts"."slug" = 'a')`)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	_, err = m.Delete(ctx, query.Match{"slug": "a"})
	require.NoError(t, err)

	mock.ExpectQuery(q(`SET "is_deleted" = TRUE WHERE ("posts"."owner" = 2)`)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	_, err = m.Delete(ctx, map[string]interface{}{"owner": 2})
	require.NoError(t, err)

	for _, target := range []interface{}{nil, 0, "abc", query.Match{}} {
		_, err = m.Delete(ctx, target)
		assert.True(t, query.IsConfiguration(err), "%#v", target)
	}
	require.NoError(t, mock.ExpectationsWereMet())
}
