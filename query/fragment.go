/*
 * Copyright 2025 tomoncle.
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package query

import (
	"strings"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/schema"
)

// Fragment is a piece of SQL with positional "?" placeholders and the values
// bound to them. Values may themselves be fragments or bun.Ident, so fragments
// nest without string concatenation of caller input.
type Fragment struct {
	Query string
	Args  []interface{}
}

var _ schema.QueryAppender = Fragment{}

// Raw builds a fragment from query text and its arguments.
func Raw(query string, args ...interface{}) Fragment {
	return Fragment{Query: query, Args: args}
}

// Ident quotes name as an identifier; dotted names are quoted per segment and
// a trailing "*" is left bare.
func Ident(name string) schema.Ident {
	return bun.Ident(name)
}

func (f Fragment) IsZero() bool { return strings.TrimSpace(f.Query) == "" }

// AppendQuery implements schema.QueryAppender.
func (f Fragment) AppendQuery(fmter schema.Formatter, b []byte) ([]byte, error) {
	return fmter.AppendQuery(b, f.Query, f.Args...), nil
}

// As aliases the fragment: "<f> AS <alias>".
func (f Fragment) As(alias string) Fragment {
	if alias == "" {
		return f
	}
	return Raw("? AS ?", f, Ident(alias))
}

// Wrap encloses the fragment in parentheses.
func (f Fragment) Wrap() Fragment {
	return Raw("(?)", f)
}

// Predicate lets a raw fragment be used anywhere a Predicate is accepted.
func (f Fragment) Predicate(string) Fragment { return f }

// String renders the fragment with the PostgreSQL formatter.
func (f Fragment) String() string {
	return Render(pgdialect.New(), f)
}

// Render formats the fragment for the given dialect.
func Render(d schema.Dialect, f Fragment) string {
	fmter := schema.NewFormatter(d)
	return string(fmter.AppendQuery(nil, f.Query, f.Args...))
}

// JoinFragments joins non-empty fragments with sep.
func JoinFragments(sep string, parts ...Fragment) Fragment {
	placeholders := make([]string, 0, len(parts))
	args := make([]interface{}, 0, len(parts))
	for _, p := range parts {
		if p.IsZero() {
			continue
		}
		placeholders = append(placeholders, "?")
		args = append(args, p)
	}
	return Raw(strings.Join(placeholders, sep), args...)
}
