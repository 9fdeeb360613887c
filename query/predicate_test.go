package query

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMatchPredicate(t *testing.T) {
	m := Match{"name": "bob", "deleted_at": nil, "xauthor.id": []int{1, 2}}
	assert.Equal(t, []string{"deleted_at", "name", "xauthor.id"}, m.Keys())
	assert.Equal(t,
		`("users"."deleted_at" IS NULL) AND ("users"."name" = 'bob') AND ("xauthor"."id" IN (1, 2))`,
		m.Predicate("users").String())
}

func TestMatchSingle(t *testing.T) {
	assert.Equal(t, `"users"."id" = 7`, Match{"id": 7}.Predicate("users").String())
}

func TestEqualBytesIsScalar(t *testing.T) {
	f := Equal("data", []byte("x"))
	assert.NotContains(t, f.String(), " IN ")
}

func TestAndOr(t *testing.T) {
	a := Raw("a = 1")
	b := Raw("b = 2")
	assert.Equal(t, `(a = 1) OR (b = 2)`, Or(a, b).String())
	assert.Equal(t, `a = 1`, And(a, Fragment{}).String())
	assert.True(t, And().IsZero())
	assert.Equal(t, `((a = 1) OR (b = 2)) AND (a = 1)`, And(Or(a, b), a).String())
}

func TestWhere(t *testing.T) {
	var m Match
	assert.True(t, Where(nil, "users").IsZero())
	assert.True(t, Where(m, "users").IsZero())
	assert.True(t, Where(Match{}, "users").IsZero())
	assert.Equal(t, `x > 1`, Where(Raw("x > 1"), "users").String())
}

func TestJSONMatch(t *testing.T) {
	j := JSONMatch{Column: "meta", Values: map[string]interface{}{"color": "red", "size": 3, "gone": nil}}
	assert.Equal(t,
		`("posts"."meta"->>'color' = 'red') AND ("posts"."meta"->>'gone' IS NULL) AND ("posts"."meta"->>'size' = '3')`,
		j.Predicate("posts").String())

	f := JSONMatch{Column: "xauthor.profile", Op: "ilike", Values: map[string]interface{}{"city": "%berlin%"}}.Predicate("posts")
	assert.Equal(t, `?->>? ILIKE ?`, f.Query)
	assert.Equal(t, []interface{}{Ident("xauthor.profile"), "city", "%berlin%"}, f.Args)
	assert.Equal(t, `"xauthor"."profile"->>'city' ILIKE '%berlin%'`, f.String())
}

func TestJSONMatchKeyIsBound(t *testing.T) {
	f := JSONMatch{Column: "meta", Values: map[string]interface{}{"a' OR '1'='1": "x"}}.Predicate("posts")
	assert.Equal(t, `"posts"."meta"->>'a'' OR ''1''=''1' = 'x'`, f.String())
}

func TestJSONMatchValidate(t *testing.T) {
	_, err := NewJSONMatch("meta", "; DROP TABLE posts", map[string]interface{}{"a": 1})
	assert.True(t, IsConfiguration(err))
	_, err = NewJSONMatch("", "=", nil)
	assert.True(t, IsConfiguration(err))
	_, err = NewJSONMatch("meta", " not  like ", nil)
	assert.NoError(t, err)

	bad := JSONMatch{Column: "meta", Op: "; DROP", Values: map[string]interface{}{"a": 1}}
	assert.Equal(t, `FALSE`, bad.Predicate("posts").String())
	assert.True(t, Where(JSONMatch{Column: "meta"}, "posts").IsZero())
}
