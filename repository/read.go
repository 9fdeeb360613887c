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

package repository

import (
	"context"
	"fmt"
	"reflect"
	"strconv"
	"strings"

	"github.com/tomoncle/relmodel/query"
	"github.com/tomoncle/relmodel/types"
)

// GetOne returns the single row matching req, or nil when none does. More
// than one match is a cardinality error. An id-shaped key of a Match bound to
// a non-numeric value yields nil without querying.
func (m *Model) GetOne(ctx context.Context, req *types.Request) (types.Row, error) {
	req = orEmpty(req)
	if match, ok := req.Where.(query.Match); ok {
		for k, v := range match {
			if query.IsID(k) && !numeric(v) {
				return nil, nil
			}
		}
	}
	rows, err := m.fetch(ctx, req, 0, 2)
	if err != nil {
		return nil, err
	}
	switch len(rows) {
	case 0:
		return nil, nil
	case 1:
		return rows[0], nil
	}
	return nil, fmt.Errorf("%w: found multiple results for %s getOne", ErrCardinality, m.table)
}

// GetOneBy is GetOne with a single equality condition and default relations.
func (m *Model) GetOneBy(ctx context.Context, column string, value interface{}) (types.Row, error) {
	if column == "" {
		return nil, query.Configf("missing column for %s getOne", m.table)
	}
	return m.GetOne(ctx, &types.Request{Where: query.Match{column: value}})
}

// CountAll counts the owner rows matching p; a nil predicate counts all.
func (m *Model) CountAll(ctx context.Context, p query.Predicate) (int, error) {
	q := m.db.NewSelect().
		TableExpr("?", query.Ident(m.table)).
		ColumnExpr("count(?)", query.Ident(query.Normalize(m.table, "id")))
	if where := query.Where(p, m.table); !where.IsZero() {
		q = q.Where("?", where)
	}
	var n int
	if err := q.Scan(ctx, &n); err != nil {
		return 0, err
	}
	return n, nil
}

// CountBy counts the owner rows where column equals value.
func (m *Model) CountBy(ctx context.Context, column string, value interface{}) (int, error) {
	return m.CountAll(ctx, query.Match{column: value})
}

// IsCreator reports whether row id was created by userID.
func (m *Model) IsCreator(ctx context.Context, id, userID interface{}) (bool, error) {
	return m.exists(ctx, query.Match{"id": id, "created_by": userID})
}

// IsEnabled reports whether row id has is_enabled set.
func (m *Model) IsEnabled(ctx context.Context, id interface{}) (bool, error) {
	return m.exists(ctx, query.Match{"id": id, "is_enabled": true})
}

// IsDeleted reports whether row id is soft deleted.
func (m *Model) IsDeleted(ctx context.Context, id interface{}) (bool, error) {
	return m.exists(ctx, query.Match{"id": id, "is_deleted": true})
}

func (m *Model) exists(ctx context.Context, match query.Match) (bool, error) {
	n, err := m.CountAll(ctx, match)
	return n > 0, err
}

// GetColumn returns one column of row id, nil when the row does not exist.
func (m *Model) GetColumn(ctx context.Context, id interface{}, column string) (interface{}, error) {
	if column == "" {
		return nil, query.Configf("missing column for %s getColumn", m.table)
	}
	rows, err := m.queryRows(ctx, m.db.NewSelect().
		TableExpr("?", query.Ident(m.table)).
		ColumnExpr("?", query.Ident(query.Normalize(m.table, column))).
		Where("?", query.Match{"id": id}.Predicate(m.table)).
		Limit(1))
	if err != nil || len(rows) == 0 {
		return nil, err
	}
	key := column
	if i := strings.LastIndex(key, "."); i >= 0 {
		key = key[i+1:]
	}
	return rows[0][key], nil
}

// numeric reports whether v reads as a number, blank strings and nil
// included. Slices are numeric when every element is.
func numeric(v interface{}) bool {
	switch x := v.(type) {
	case nil, bool:
		return true
	case string:
		s := strings.TrimSpace(x)
		if s == "" {
			return true
		}
		_, err := strconv.ParseFloat(s, 64)
		return err == nil
	case []byte:
		return numeric(string(x))
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	case reflect.Slice, reflect.Array:
		for i := 0; i < rv.Len(); i++ {
			if !numeric(rv.Index(i).Interface()) {
				return false
			}
		}
		return true
	case reflect.String:
		return numeric(rv.String())
	}
	return false
}
