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

package relmodel

import (
	"context"
	"errors"
	"sync"

	"github.com/tomoncle/relmodel/database"
	"github.com/tomoncle/relmodel/query"
	"github.com/tomoncle/relmodel/repository"
	"github.com/tomoncle/relmodel/types"
)

// ErrNotInitialized is returned by a Service used before the global
// database is set up.
var ErrNotInitialized = errors.New("relmodel: database not initialized")

type Service interface {
	// GetAll returns every row of the request window.
	GetAll(ctx context.Context, req *types.Request) ([]types.Row, error)

	// Paginate returns the request window and the unpaginated total.
	Paginate(ctx context.Context, req *types.Request) (*types.Result, error)

	// Get returns the single row the request selects, or nil.
	Get(ctx context.Context, req *types.Request) (types.Row, error)

	// GetBy returns the single row where column equals value, or nil.
	GetBy(ctx context.Context, column string, value interface{}) (types.Row, error)

	// Count counts rows matching p.
	Count(ctx context.Context, p query.Predicate) (int, error)

	// Save inserts a row and returns it as stored.
	Save(ctx context.Context, data types.Row) (types.Row, error)

	// Update edits the row selected by data's id or by match.
	Update(ctx context.Context, data types.Row, match query.Predicate, opts repository.EditOptions) (types.Row, error)

	// Delete soft-deletes by id or predicate.
	Delete(ctx context.Context, target interface{}) ([]types.Row, error)

	// Model returns the bound model.
	Model() (*repository.Model, error)
}

type baseServiceImpl struct {
	table string
	opts  []repository.Option
	mu    sync.Mutex
	model *repository.Model
}

// NewService returns a Service over table bound to the global database the
// first time it is used.
func NewService(table string, opts ...repository.Option) Service {
	return &baseServiceImpl{table: table, opts: opts}
}

func (s *baseServiceImpl) Model() (*repository.Model, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.model != nil {
		return s.model, nil
	}
	db := database.GetDB()
	if db == nil {
		return nil, ErrNotInitialized
	}
	m, err := repository.New(db, s.table, s.opts...)
	if err != nil {
		return nil, err
	}
	s.model = m
	Register(m)
	return m, nil
}

func (s *baseServiceImpl) GetAll(ctx context.Context, req *types.Request) ([]types.Row, error) {
	m, err := s.Model()
	if err != nil {
		return nil, err
	}
	return m.GetAll(ctx, req)
}

func (s *baseServiceImpl) Paginate(ctx context.Context, req *types.Request) (*types.Result, error) {
	m, err := s.Model()
	if err != nil {
		return nil, err
	}
	return m.Paginate(ctx, req)
}

func (s *baseServiceImpl) Get(ctx context.Context, req *types.Request) (types.Row, error) {
	m, err := s.Model()
	if err != nil {
		return nil, err
	}
	return m.GetOne(ctx, req)
}

func (s *baseServiceImpl) GetBy(ctx context.Context, column string, value interface{}) (types.Row, error) {
	m, err := s.Model()
	if err != nil {
		return nil, err
	}
	return m.GetOneBy(ctx, column, value)
}

func (s *baseServiceImpl) Count(ctx context.Context, p query.Predicate) (int, error) {
	m, err := s.Model()
	if err != nil {
		return 0, err
	}
	return m.CountAll(ctx, p)
}

func (s *baseServiceImpl) Save(ctx context.Context, data types.Row) (types.Row, error) {
	m, err := s.Model()
	if err != nil {
		return nil, err
	}
	return m.Add(ctx, data)
}

func (s *baseServiceImpl) Update(ctx context.Context, data types.Row, match query.Predicate, opts repository.EditOptions) (types.Row, error) {
	m, err := s.Model()
	if err != nil {
		return nil, err
	}
	return m.Edit(ctx, data, match, opts)
}

func (s *baseServiceImpl) Delete(ctx context.Context, target interface{}) ([]types.Row, error) {
	m, err := s.Model()
	if err != nil {
		return nil, err
	}
	return m.Delete(ctx, target)
}

var defaultRegistry = repository.NewRegistry()

// Register adds models to the default registry, replacing any with the same
// table.
func Register(models ...*repository.Model) {
	defaultRegistry.Register(models...)
}

// Lookup finds a model in the default registry.
func Lookup(table string) (*repository.Model, bool) {
	return defaultRegistry.Lookup(table)
}

// Registry returns the default registry.
func Registry() *repository.Registry {
	return defaultRegistry
}

// Health checks the global database and every table in the default registry
// along with tables.
func Health(ctx context.Context, tables ...string) *database.HealthStatus {
	return database.GetHealthStatus(ctx, append(defaultRegistry.Tables(), tables...)...)
}
