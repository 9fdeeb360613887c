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

import "strings"

// Column is an entry of an aggregate object or a select list: either a plain
// column name or a computed key bound to a SQL value.
type Column struct {
	Name  string
	Key   string
	Value Fragment
}

// Col returns a plain column entry.
func Col(name string) Column { return Column{Name: name} }

// Computed returns an entry rendered as key => value.
func Computed(key string, value Fragment) Column { return Column{Key: key, Value: value} }

// Cols converts plain names into column entries.
func Cols(names ...string) []Column {
	out := make([]Column, len(names))
	for i, n := range names {
		out[i] = Col(n)
	}
	return out
}

func (c Column) IsComputed() bool { return c.Name == "" && c.Key != "" }

func qualify(alias, column string) string {
	if alias == "" {
		return column
	}
	return alias + "." + column
}

// RowProjection renders a related row as a JSON object, id first:
//
//	to_json((SELECT x FROM (SELECT "a"."id", "a"."name") x))
//
// Without columns the whole aliased row is projected with to_json(alias.*).
// With aggregate set the object is collected by jsonb_agg.
func RowProjection(columns []string, alias, as string, aggregate bool) Fragment {
	var col Fragment
	if len(columns) > 0 {
		idents := []interface{}{Ident(qualify(alias, "id"))}
		for _, c := range columns {
			if strings.EqualFold(c, "id") {
				continue
			}
			idents = append(idents, Ident(qualify(alias, c)))
		}
		placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(idents)), ", ")
		col = Raw("to_json((SELECT x FROM (SELECT "+placeholders+") x))", idents...)
	} else {
		col = Raw("to_json(?)", Ident(qualify(alias, "*")))
	}
	if aggregate {
		col = Raw("jsonb_agg(?)", col)
	}
	return col.As(as)
}

// AggregateObject renders many related rows as a JSON array of objects:
//
//	jsonb_agg(jsonb_build_object('id', "a"."id", 'name', "a"."name")) AS "as"
//
// Computed columns contribute their key and raw value.
func AggregateObject(columns []Column, alias, as string) Fragment {
	parts := []string{"?, ?"}
	args := []interface{}{"id", Ident(qualify(alias, "id"))}
	for _, c := range columns {
		switch {
		case c.IsComputed():
			parts = append(parts, "?, ?")
			args = append(args, c.Key, c.Value)
		case c.Name == "" || strings.EqualFold(c.Name, "id"):
		default:
			parts = append(parts, "?, ?")
			args = append(args, c.Name, Ident(qualify(alias, c.Name)))
		}
	}
	obj := Raw("jsonb_build_object("+strings.Join(parts, ", ")+")", args...)
	return Raw("jsonb_agg(?)", obj).As(as)
}
