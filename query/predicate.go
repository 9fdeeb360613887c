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
	"fmt"
	"reflect"
	"sort"
	"strings"

	"github.com/uptrace/bun"
)

// Predicate renders a boolean condition for statements on table. A zero
// fragment means no condition.
type Predicate interface {
	Predicate(table string) Fragment
}

// Match is an equality map. Keys are normalized against the table, nil values
// compare with IS NULL and slices expand to IN.
type Match map[string]interface{}

var (
	_ Predicate = Match(nil)
	_ Predicate = Fragment{}
	_ Predicate = JSONMatch{}
	_ Predicate = All(nil)
)

// All is the conjunction of its predicates.
type All []Predicate

func (a All) Predicate(table string) Fragment {
	conds := make([]Fragment, 0, len(a))
	for _, p := range a {
		conds = append(conds, Where(p, table))
	}
	return And(conds...)
}

// Keys returns the match keys in sorted order.
func (m Match) Keys() []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func (m Match) Predicate(table string) Fragment {
	conds := make([]Fragment, 0, len(m))
	for _, k := range m.Keys() {
		conds = append(conds, Equal(Normalize(table, k), m[k]))
	}
	return And(conds...)
}

// JSONMatch compares keys of a json or jsonb column: one "column->>'key' op
// value" condition per key, joined with AND. Op defaults to "=". Values are
// bound as text, the type ->> yields; a nil value renders IS NULL.
type JSONMatch struct {
	Column string
	Op     string
	Values map[string]interface{}
}

var jsonOps = map[string]bool{
	"=": true, "<>": true, "!=": true, "<": true, "<=": true, ">": true, ">=": true,
	"LIKE": true, "NOT LIKE": true, "ILIKE": true, "NOT ILIKE": true,
}

// NewJSONMatch returns a JSONMatch after checking column and op.
func NewJSONMatch(column, op string, values map[string]interface{}) (JSONMatch, error) {
	j := JSONMatch{Column: column, Op: op, Values: values}
	return j, j.Validate()
}

func (j JSONMatch) op() string {
	op := strings.ToUpper(strings.Join(strings.Fields(j.Op), " "))
	if op == "" {
		return "="
	}
	return op
}

// Validate reports an empty column or an unsupported operator.
func (j JSONMatch) Validate() error {
	if strings.TrimSpace(j.Column) == "" {
		return Configf("json match needs a column")
	}
	if !jsonOps[j.op()] {
		return Configf("unsupported json match operator %q", j.Op)
	}
	return nil
}

// Predicate renders the conditions. An invalid match renders FALSE so it
// never widens a statement.
func (j JSONMatch) Predicate(table string) Fragment {
	if len(j.Values) == 0 {
		return Fragment{}
	}
	if j.Validate() != nil {
		return Raw("FALSE")
	}
	col := Ident(Normalize(table, j.Column))
	op := j.op()
	keys := make([]string, 0, len(j.Values))
	for k := range j.Values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	conds := make([]Fragment, 0, len(keys))
	for _, k := range keys {
		v := j.Values[k]
		if v == nil {
			conds = append(conds, Raw("?->>? IS NULL", col, k))
			continue
		}
		if _, ok := v.(string); !ok {
			v = fmt.Sprint(v)
		}
		conds = append(conds, Raw("?->>? "+op+" ?", col, k, v))
	}
	return And(conds...)
}

// Equal renders column = value, column IS NULL or column IN (...).
func Equal(column string, value interface{}) Fragment {
	ident := Ident(column)
	if value == nil {
		return Raw("? IS NULL", ident)
	}
	rv := reflect.ValueOf(value)
	if (rv.Kind() == reflect.Slice && rv.Type().Elem().Kind() != reflect.Uint8) || rv.Kind() == reflect.Array {
		return Raw("? IN (?)", ident, bun.In(value))
	}
	return Raw("? = ?", ident, value)
}

// And joins conditions with AND, each in parentheses. Zero fragments are
// skipped; a single condition is returned as is.
func And(conds ...Fragment) Fragment {
	return combine(" AND ", conds)
}

// Or joins conditions with OR, each in parentheses.
func Or(conds ...Fragment) Fragment {
	return combine(" OR ", conds)
}

func combine(sep string, conds []Fragment) Fragment {
	kept := make([]Fragment, 0, len(conds))
	for _, c := range conds {
		if !c.IsZero() {
			kept = append(kept, c)
		}
	}
	switch len(kept) {
	case 0:
		return Fragment{}
	case 1:
		return kept[0]
	}
	placeholders := make([]string, len(kept))
	args := make([]interface{}, len(kept))
	for i, c := range kept {
		placeholders[i] = "(?)"
		args[i] = c
	}
	return Raw(strings.Join(placeholders, sep), args...)
}

// Where resolves an optional predicate against table.
func Where(p Predicate, table string) Fragment {
	if p == nil || isNil(p) {
		return Fragment{}
	}
	return p.Predicate(table)
}

func isNil(v interface{}) bool {
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Map, reflect.Ptr, reflect.Func, reflect.Slice, reflect.Interface:
		return rv.IsNil()
	}
	return false
}
