package types

import (
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tomoncle/relmodel/query"
)

const postsSpec = `
page: 2
pageSize: 20
find: go
fields: [title, xauthor.name]
where:
  status: published
sort:
  - column: updated_at
    order: desc
columns:
  - title
  - key: slug_upper
    value: upper(posts.slug)
relations:
  - hasOne: users
    as: author
    alias: xauthor
    columns: [name]
  - hasMany: comments
    columns: [body]
  - hasMany2: tags
    columns: [label]
`

func TestDecodeRequestSpec(t *testing.T) {
	spec, err := DecodeRequestSpec(strings.NewReader(postsSpec))
	require.NoError(t, err)

	req, err := spec.Build("posts")
	require.NoError(t, err)

	assert.Equal(t, 2, req.Page)
	assert.Equal(t, 20, req.PageSize)
	assert.True(t, req.Searching())
	assert.Equal(t, query.Match{"status": "published"}, req.Where)
	assert.Equal(t, []Sort{{Column: "updated_at", Order: Desc}}, req.Sort)
	require.Len(t, req.Columns, 2)
	assert.Equal(t, "title", req.Columns[0].Name)
	assert.True(t, req.Columns[1].IsComputed())

	require.Len(t, req.Relations, 3)
	assert.Equal(t, query.KindHasOne, req.Relations[0].Kind())
	assert.Equal(t, "author", req.Relations[0].Key())
	assert.Equal(t, query.KindHasMany, req.Relations[1].Kind())
	assert.Equal(t, query.KindHasMany2, req.Relations[2].Kind())
}

func TestDecodeRequestSpecJSON(t *testing.T) {
	spec, err := DecodeRequestSpec(strings.NewReader(`{"offset": 4, "limit": 2, "relations": []}`))
	require.NoError(t, err)
	req, err := spec.Build("posts")
	require.NoError(t, err)
	assert.Equal(t, 4, req.Offset)
	assert.NotNil(t, req.Relations)
	assert.Empty(t, req.Relations)
}

func TestBuildJSONMatch(t *testing.T) {
	spec, err := DecodeRequestSpec(strings.NewReader(`
where:
  status: published
json:
  - column: meta
    values: {color: red}
`))
	require.NoError(t, err)
	req, err := spec.Build("posts")
	require.NoError(t, err)
	assert.Equal(t,
		`("posts"."status" = 'published') AND ("posts"."meta"->>'color' = 'red')`,
		query.Where(req.Where, "posts").String())

	spec.JSON[0].Op = "~*"
	_, err = spec.Build("posts")
	assert.True(t, query.IsConfiguration(err))
}

func TestBuildRejectsRelations(t *testing.T) {
	tests := []struct {
		name string
		spec RequestSpec
	}{
		{"no_kind", RequestSpec{Relations: []RelationSpec{{As: "x"}}}},
		{"two_kinds", RequestSpec{Relations: []RelationSpec{{HasOne: "users", HasMany: "comments"}}}},
		{"has_many_without_columns", RequestSpec{Relations: []RelationSpec{{HasMany: "comments"}}}},
		{"two_has_many", RequestSpec{Relations: []RelationSpec{
			{HasMany: "comments", Columns: []ColumnSpec{{Name: "body"}}},
			{HasMany: "likes", Columns: []ColumnSpec{{Name: "kind"}}},
		}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.spec.Build("posts")
			require.Error(t, err)
			assert.True(t, query.IsConfiguration(err))
		})
	}
}

func TestBuildHasMany2Expr(t *testing.T) {
	spec := RequestSpec{Relations: []RelationSpec{
		{Expr: "SELECT count(*) FROM likes WHERE likes.post_id = posts.id", As: "likes"},
	}}
	req, err := spec.Build("posts")
	require.NoError(t, err)
	rel, ok := req.Relations[0].(query.HasMany2)
	require.True(t, ok)
	require.NotNil(t, rel.Expr)
	assert.Equal(t, "likes", rel.Key())
}

func TestParseQuery(t *testing.T) {
	values, err := url.ParseQuery("page=2&pageSize=15&find=ab+cd&fields=name,email&" +
		"sort[1][column]=name&sort[0][column]=created_at&sort[0][order]=DESC")
	require.NoError(t, err)

	req, err := ParseQuery(values)
	require.NoError(t, err)
	assert.Equal(t, 2, req.Page)
	assert.Equal(t, 15, req.PageSize)
	assert.Equal(t, "ab cd", req.Find)
	assert.Equal(t, []string{"name", "email"}, req.Fields)
	assert.Equal(t, []Sort{
		{Column: "created_at", Order: Desc},
		{Column: "name", Order: Asc},
	}, req.Sort)
}

func TestParseQueryErrors(t *testing.T) {
	_, err := ParseQuery(url.Values{"page": {"two"}})
	assert.Error(t, err)

	_, err = ParseQuery(url.Values{"sort[0][order]": {"asc"}})
	assert.Error(t, err)

	_, err = ParseQuery(url.Values{"sort[0][column]": {"a"}, "sort[0][order]": {"up"}})
	assert.Error(t, err)
}
