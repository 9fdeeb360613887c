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
	"strings"

	"github.com/uptrace/bun"

	"github.com/tomoncle/relmodel/query"
	"github.com/tomoncle/relmodel/types"
)

const countAlias = "count__query__"

// filtered builds the projected, joined, filtered and grouped select for req,
// without ordering or window.
func (m *Model) filtered(req *types.Request) (*bun.SelectQuery, *query.Resolution, error) {
	relations := req.Relations
	if relations == nil {
		relations = m.relations
	}
	res, err := query.Resolve(m.table, relations)
	if err != nil {
		return nil, nil, err
	}

	q := m.db.NewSelect().TableExpr("?", query.Ident(m.table))
	for _, col := range m.projection(req.Columns) {
		q = q.ColumnExpr("?", col)
	}
	for _, sel := range res.Selects {
		q = q.ColumnExpr("?", sel)
	}
	for _, join := range res.Joins {
		q = q.Join("?", join)
	}

	var search query.Fragment
	if req.Searching() {
		search = query.Search(req.Find, req.Fields, m.table)
	}
	if where := query.And(
		query.Where(req.Where, m.table),
		query.Where(req.Filter, m.table),
		search,
	); !where.IsZero() {
		q = q.Where("?", where)
	}
	if res.GroupBy {
		q = q.GroupExpr("1")
	}
	return q, res, nil
}

// projection lists the owner columns: id first, then the requested columns,
// or the whole owner row.
func (m *Model) projection(columns []query.Column) []query.Fragment {
	if len(columns) == 0 || (len(columns) == 1 && columns[0].Name == "*") {
		return []query.Fragment{query.Raw("?", query.Ident(m.table+".*"))}
	}
	out := []query.Fragment{query.Raw("?", query.Ident(query.Normalize(m.table, "id")))}
	for _, c := range columns {
		switch {
		case c.IsComputed():
			out = append(out, c.Value.As(c.Key))
		case c.Name == "" || strings.EqualFold(c.Name, "id"):
		default:
			out = append(out, query.Raw("?", query.Ident(query.Normalize(m.table, c.Name))))
		}
	}
	return out
}

func (m *Model) order(q *bun.SelectQuery, sorts []types.Sort) (*bun.SelectQuery, error) {
	for _, s := range sorts {
		if s.Column == "" {
			return nil, query.Configf("sort on %s requires a column", m.table)
		}
		if !s.Order.IsValid() {
			return nil, query.Configf("invalid sort order on %s.%s", m.table, s.Column)
		}
	}
	if len(sorts) == 1 && sorts[0].Column == "updated_at" {
		col := query.Ident(query.Normalize(m.table, "updated_at"))
		return q.OrderExpr("? "+sorts[0].Order.String()+" NULLS LAST", col), nil
	}
	for _, s := range sorts {
		q = q.OrderExpr("? "+s.Order.String(), query.Ident(query.Normalize(m.table, s.Column)))
	}
	return q, nil
}

// selectQuery is the data statement: filtered, ordered and windowed.
func (m *Model) selectQuery(req *types.Request, offset, limit int) (*bun.SelectQuery, *query.Resolution, error) {
	q, res, err := m.filtered(req)
	if err != nil {
		return nil, nil, err
	}
	if q, err = m.order(q, req.Sorts()); err != nil {
		return nil, nil, err
	}
	if offset > 0 {
		q = q.Offset(offset)
	}
	if limit > 0 {
		q = q.Limit(limit)
	}
	return q, res, nil
}

// countQuery counts the rows of the filtered select.
func (m *Model) countQuery(req *types.Request) (*bun.SelectQuery, error) {
	sub, _, err := m.filtered(req)
	if err != nil {
		return nil, err
	}
	return m.db.NewSelect().
		TableExpr("(?) AS ?", sub, query.Ident(countAlias)).
		ColumnExpr("count(*) AS total"), nil
}

// GetAll returns the rows of the requested window.
func (m *Model) GetAll(ctx context.Context, req *types.Request) ([]types.Row, error) {
	req = orEmpty(req)
	offset, limit := req.Window()
	return m.fetch(ctx, req, offset, limit)
}

func (m *Model) fetch(ctx context.Context, req *types.Request, offset, limit int) ([]types.Row, error) {
	q, res, err := m.selectQuery(req, offset, limit)
	if err != nil {
		return nil, err
	}
	rows, err := m.queryRows(ctx, q)
	if err != nil {
		return nil, err
	}
	if err := reshape(rows, res.Embeds); err != nil {
		return nil, err
	}
	return rows, nil
}

// Paginate returns the requested window with the total number of matching
// rows. Both statements run on the model's handle, so a model bound with
// WithTx counts and reads inside the same transaction.
func (m *Model) Paginate(ctx context.Context, req *types.Request) (*types.Result, error) {
	req = orEmpty(req)
	count, err := m.countQuery(req)
	if err != nil {
		return nil, err
	}
	var total int
	if err := count.Scan(ctx, &total); err != nil {
		return nil, err
	}
	offset, limit := req.Window()
	rows, err := m.fetch(ctx, req, offset, limit)
	if err != nil {
		return nil, err
	}
	return types.NewResult(req, rows, total), nil
}

// Compile returns the data and count statements for req without running them.
func (m *Model) Compile(req *types.Request) (selectSQL, countSQL string, err error) {
	req = orEmpty(req)
	offset, limit := req.Window()
	q, _, err := m.selectQuery(req, offset, limit)
	if err != nil {
		return "", "", err
	}
	count, err := m.countQuery(req)
	if err != nil {
		return "", "", err
	}
	return q.String(), count.String(), nil
}

func orEmpty(req *types.Request) *types.Request {
	if req == nil {
		return &types.Request{}
	}
	return req
}
