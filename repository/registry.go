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
	"sort"
	"sync"

	"github.com/uptrace/bun"
)

// Registry keeps one Model per table.
type Registry struct {
	models map[string]*Model
	mutex  sync.RWMutex
}

func NewRegistry() *Registry {
	return &Registry{models: make(map[string]*Model)}
}

// Register adds models, replacing any previous model of the same table.
func (r *Registry) Register(models ...*Model) {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	for _, m := range models {
		if m != nil {
			r.models[m.table] = m
		}
	}
}

// Lookup returns the model registered for table.
func (r *Registry) Lookup(table string) (*Model, bool) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()
	m, ok := r.models[table]
	return m, ok
}

// Tables returns the registered table names in sorted order.
func (r *Registry) Tables() []string {
	r.mutex.RLock()
	defer r.mutex.RUnlock()
	tables := make([]string, 0, len(r.models))
	for t := range r.models {
		tables = append(tables, t)
	}
	sort.Strings(tables)
	return tables
}

// WithTx returns a registry whose models all run on db.
func (r *Registry) WithTx(db bun.IDB) *Registry {
	r.mutex.RLock()
	defer r.mutex.RUnlock()
	out := NewRegistry()
	for t, m := range r.models {
		out.models[t] = m.WithTx(db)
	}
	return out
}
