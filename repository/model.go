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
	"database/sql"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect"

	"github.com/tomoncle/relmodel/query"
	"github.com/tomoncle/relmodel/types"
)

// Formatter rewrites row data before it is written.
type Formatter func(data types.Row) types.Row

// Option configures a Model.
type Option func(*Model)

// WithRelations sets the relations embedded when a request carries none.
func WithRelations(relations ...query.Relation) Option {
	return func(m *Model) { m.relations = relations }
}

// WithAddFormat applies f to data passed to Add.
func WithAddFormat(f Formatter) Option {
	return func(m *Model) { m.addFormat = f }
}

// WithEditFormat applies f to data passed to Edit.
func WithEditFormat(f Formatter) Option {
	return func(m *Model) { m.editFormat = f }
}

// WithUpdatedAt stamps updated_at with the current time on every Edit.
func WithUpdatedAt() Option {
	return func(m *Model) { m.touchUpdatedAt = true }
}

// Model binds a table to a store handle. It keeps no per-call state and is
// safe for concurrent use.
type Model struct {
	table          string
	db             bun.IDB
	relations      []query.Relation
	addFormat      Formatter
	editFormat     Formatter
	touchUpdatedAt bool
}

// New returns a Model for table on db. The handle must use the PostgreSQL
// dialect and default relations must validate.
func New(db bun.IDB, table string, opts ...Option) (*Model, error) {
	if db == nil {
		return nil, query.Configf("nil database handle for %s", table)
	}
	if table == "" {
		return nil, query.Configf("model requires a table name")
	}
	if name := db.Dialect().Name(); name != dialect.PG {
		return nil, query.Configf("model %s requires the pg dialect, got %v", table, name)
	}
	m := &Model{table: table, db: db}
	for _, opt := range opts {
		opt(m)
	}
	if err := query.Validate(table, m.relations); err != nil {
		return nil, err
	}
	return m, nil
}

// MustNew is like New but panics on error.
func MustNew(db bun.IDB, table string, opts ...Option) *Model {
	m, err := New(db, table, opts...)
	if err != nil {
		panic(err)
	}
	return m
}

func (m *Model) Table() string { return m.table }

func (m *Model) DB() bun.IDB { return m.db }

// Relations returns a copy of the default relations.
func (m *Model) Relations() []query.Relation {
	out := make([]query.Relation, len(m.relations))
	copy(out, m.relations)
	return out
}

// WithTx returns a copy of the model whose statements run on db, typically a
// bun.Tx.
func (m *Model) WithTx(db bun.IDB) *Model {
	c := *m
	c.db = db
	return &c
}

// RunInTx runs fn with a copy of the model bound to a new transaction. The
// transaction commits when fn returns nil and rolls back otherwise.
func (m *Model) RunInTx(ctx context.Context, opts *sql.TxOptions, fn func(ctx context.Context, tx *Model) error) error {
	return m.db.RunInTx(ctx, opts, func(ctx context.Context, tx bun.Tx) error {
		return fn(ctx, m.WithTx(tx))
	})
}
