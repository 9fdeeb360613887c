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
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/uptrace/bun"

	"github.com/tomoncle/relmodel/query"
	"github.com/tomoncle/relmodel/types"
)

// EditOptions controls Edit.
type EditOptions struct {
	// Multiple allows a non-id match to update more than one row.
	Multiple bool
	// Upsert inserts match merged with data when nothing was updated.
	Upsert bool
}

// Add inserts data and returns the stored row.
func (m *Model) Add(ctx context.Context, data types.Row) (types.Row, error) {
	data = copyRow(data)
	if m.addFormat != nil {
		data = m.addFormat(data)
	}
	rows, err := m.insert(ctx, data)
	if err != nil {
		return nil, err
	}
	return first(rows), nil
}

// Edit updates the row named by data["id"], or else the rows matching match,
// and returns the first updated row. Without Multiple a match touching more
// than one row is rejected before anything is written. With Upsert and no
// updated row, match merged with data is inserted and updated_by is stored
// as created_by.
func (m *Model) Edit(ctx context.Context, data types.Row, match query.Predicate, opts EditOptions) (types.Row, error) {
	data = copyRow(data)
	if m.editFormat != nil {
		data = m.editFormat(data)
	}
	if m.touchUpdatedAt {
		data["updated_at"] = time.Now()
	}

	var where query.Fragment
	if id, ok := data["id"]; ok && truthy(id) {
		where = query.Equal(query.Normalize(m.table, "id"), id)
	} else if where = query.Where(match, m.table); where.IsZero() {
		return nil, query.Configf("no matching condition for edit of %s", m.table)
	} else if !opts.Multiple {
		if inTx(m.db) {
			return m.edit(ctx, data, where, match, opts, true)
		}
		var row types.Row
		err := m.RunInTx(ctx, nil, func(ctx context.Context, tx *Model) (err error) {
			row, err = tx.edit(ctx, data, where, match, opts, true)
			return err
		})
		return row, err
	}
	return m.edit(ctx, data, where, match, opts, false)
}

// edit updates the rows matching where, inserting one when none matched and
// opts.Upsert is set. With guard it first refuses to touch more than one row.
func (m *Model) edit(ctx context.Context, data types.Row, where query.Fragment, match query.Predicate, opts EditOptions, guard bool) (types.Row, error) {
	if guard {
		n, err := m.CountAll(ctx, match)
		if err != nil {
			return nil, err
		}
		if n > 1 {
			return nil, fmt.Errorf("%w: found %d rows of %s for edit, set Multiple to update them all",
				ErrCardinality, n, m.table)
		}
	}

	set := copyRow(data)
	delete(set, "id")
	rows, err := m.update(ctx, set, where)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 && opts.Upsert {
		if by, ok := data["updated_by"]; ok && truthy(by) {
			data["created_by"] = by
			delete(data, "updated_by")
		}
		ins := types.Row{}
		if mm, ok := match.(query.Match); ok {
			for k, v := range mm {
				ins[strings.TrimPrefix(k, m.table+".")] = v
			}
		}
		for k, v := range data {
			ins[k] = v
		}
		if rows, err = m.insert(ctx, ins); err != nil {
			return nil, err
		}
	}
	return first(rows), nil
}

func inTx(db bun.IDB) bool {
	switch db.(type) {
	case bun.Tx, *bun.Tx:
		return true
	}
	return false
}

// Increment adds each delta to its column on the rows matching match.
func (m *Model) Increment(ctx context.Context, deltas map[string]interface{}, match query.Predicate) ([]types.Row, error) {
	return m.step(ctx, "+", deltas, match)
}

// Decrement subtracts each delta from its column on the rows matching match.
func (m *Model) Decrement(ctx context.Context, deltas map[string]interface{}, match query.Predicate) ([]types.Row, error) {
	return m.step(ctx, "-", deltas, match)
}

func (m *Model) step(ctx context.Context, op string, deltas map[string]interface{}, match query.Predicate) ([]types.Row, error) {
	if len(deltas) == 0 {
		return nil, query.Configf("no columns to %s on %s", opName(op), m.table)
	}
	where := query.Where(match, m.table)
	if where.IsZero() {
		return nil, query.Configf("no matching condition for %s of %s", opName(op), m.table)
	}
	q := m.db.NewUpdate().TableExpr("?", query.Ident(m.table))
	for _, k := range sortedKeys(deltas) {
		if !isNumber(deltas[k]) {
			return nil, query.Configf("%s delta for %s.%s must be a number", opName(op), m.table, k)
		}
		col := query.Ident(k)
		q = q.Set("? = ? "+op+" ?", col, col, deltas[k])
	}
	return m.queryRows(ctx, q.Where("?", where).Returning("*"))
}

func opName(op string) string {
	if op == "+" {
		return "increment"
	}
	return "decrement"
}

// Delete soft deletes by setting is_deleted. target is a numeric id, a
// predicate or an equality map; the affected rows are returned.
func (m *Model) Delete(ctx context.Context, target interface{}) ([]types.Row, error) {
	var where query.Fragment
	switch t := target.(type) {
	case nil:
	case query.Predicate:
		where = query.Where(t, m.table)
	case map[string]interface{}:
		where = query.Match(t).Predicate(m.table)
	default:
		if id, ok := toID(t); ok {
			where = query.Equal(query.Normalize(m.table, "id"), id)
		}
	}
	if where.IsZero() {
		return nil, query.Configf("missing id for %s delete", m.table)
	}
	return m.update(ctx, types.Row{"is_deleted": true}, where)
}

func (m *Model) insert(ctx context.Context, data types.Row) ([]types.Row, error) {
	if len(data) == 0 {
		return nil, query.Configf("no data to insert into %s", m.table)
	}
	return m.queryRows(ctx, m.db.NewInsert().
		Model(&data).
		TableExpr("?", query.Ident(m.table)).
		Returning("*"))
}

func (m *Model) update(ctx context.Context, set types.Row, where query.Fragment) ([]types.Row, error) {
	if len(set) == 0 {
		return nil, query.Configf("no data to update on %s", m.table)
	}
	q := m.db.NewUpdate().TableExpr("?", query.Ident(m.table))
	for _, k := range sortedKeys(set) {
		q = q.Set("? = ?", query.Ident(k), set[k])
	}
	return m.queryRows(ctx, q.Where("?", where).Returning("*"))
}

func copyRow(data types.Row) types.Row {
	out := make(types.Row, len(data))
	for k, v := range data {
		out[k] = v
	}
	return out
}

func first(rows []types.Row) types.Row {
	if len(rows) == 0 {
		return nil
	}
	return rows[0]
}

func sortedKeys(m map[string]interface{}) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// truthy treats nil, false, zero numbers and empty strings as unset.
func truthy(v interface{}) bool {
	if v == nil {
		return false
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Bool:
		return rv.Bool()
	case reflect.String:
		return rv.Len() > 0
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int() != 0
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return rv.Uint() != 0
	case reflect.Float32, reflect.Float64:
		return rv.Float() != 0
	case reflect.Ptr, reflect.Interface, reflect.Map, reflect.Slice:
		return !rv.IsNil()
	}
	return true
}

func isNumber(v interface{}) bool {
	switch reflect.ValueOf(v).Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	}
	return false
}

// toID accepts non-zero integers and integer strings.
func toID(v interface{}) (int64, bool) {
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int(), rv.Int() != 0
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return int64(rv.Uint()), rv.Uint() != 0
	case reflect.String:
		n, err := strconv.ParseInt(strings.TrimSpace(rv.String()), 10, 64)
		return n, err == nil && n != 0
	}
	return 0, false
}
