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

package types

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/tomoncle/relmodel/query"
)

// ColumnSpec is a projected column: a plain name, or a {key, value} pair
// whose value is raw SQL.
type ColumnSpec struct {
	Name  string `json:"-" yaml:"-"`
	Key   string `json:"key,omitempty" yaml:"key,omitempty"`
	Value string `json:"value,omitempty" yaml:"value,omitempty"`
}

func (c *ColumnSpec) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode {
		c.Name = node.Value
		return nil
	}
	type plain ColumnSpec
	return node.Decode((*plain)(c))
}

func (c *ColumnSpec) UnmarshalJSON(b []byte) error {
	var name string
	if err := json.Unmarshal(b, &name); err == nil {
		c.Name = name
		return nil
	}
	type plain ColumnSpec
	return json.Unmarshal(b, (*plain)(c))
}

func (c ColumnSpec) column() (query.Column, error) {
	switch {
	case c.Name != "":
		return query.Col(c.Name), nil
	case c.Key != "" && c.Value != "":
		return query.Computed(c.Key, query.Raw(c.Value)), nil
	}
	return query.Column{}, query.Configf("column needs a name or a key and value")
}

// RelationSpec is a relation written in the keyed form: exactly one of
// hasOne, hasMany or hasMany2 names the related table. A hasMany2 may give a
// raw subquery in Expr instead of a table.
type RelationSpec struct {
	HasOne    string       `json:"hasOne,omitempty" yaml:"hasOne,omitempty"`
	HasMany   string       `json:"hasMany,omitempty" yaml:"hasMany,omitempty"`
	HasMany2  string       `json:"hasMany2,omitempty" yaml:"hasMany2,omitempty"`
	Expr      string       `json:"expr,omitempty" yaml:"expr,omitempty"`
	Columns   []ColumnSpec `json:"columns,omitempty" yaml:"columns,omitempty"`
	Alias     string       `json:"alias,omitempty" yaml:"alias,omitempty"`
	As        string       `json:"as,omitempty" yaml:"as,omitempty"`
	Column    string       `json:"column,omitempty" yaml:"column,omitempty"`
	Reference string       `json:"reference,omitempty" yaml:"reference,omitempty"`
	// On is a raw join predicate for hasOne and hasMany.
	On string `json:"on,omitempty" yaml:"on,omitempty"`
	// Where is a raw correlation for hasMany2.
	Where string `json:"where,omitempty" yaml:"where,omitempty"`
}

// Relation converts the keyed form into a relation descriptor.
func (s RelationSpec) Relation() (query.Relation, error) {
	kinds := 0
	for _, set := range []bool{s.HasOne != "", s.HasMany != "", s.HasMany2 != "" || s.Expr != ""} {
		if set {
			kinds++
		}
	}
	if kinds != 1 {
		return nil, query.Configf("relation needs exactly one of hasOne, hasMany or hasMany2")
	}
	cols := make([]query.Column, 0, len(s.Columns))
	for _, c := range s.Columns {
		col, err := c.column()
		if err != nil {
			return nil, err
		}
		cols = append(cols, col)
	}
	switch {
	case s.HasOne != "":
		names := make([]string, 0, len(cols))
		for _, c := range cols {
			if c.IsComputed() {
				return nil, query.Configf("hasOne %s accepts plain columns only", s.HasOne)
			}
			names = append(names, c.Name)
		}
		return query.HasOne{
			Table: s.HasOne, Columns: names, Alias: s.Alias, As: s.As,
			Column: s.Column, Reference: s.Reference, On: raw(s.On),
		}, nil
	case s.HasMany != "":
		return query.HasMany{
			Table: s.HasMany, Columns: cols, Alias: s.Alias, As: s.As,
			Column: s.Column, Reference: s.Reference, On: raw(s.On),
		}, nil
	}
	return query.HasMany2{
		Table: s.HasMany2, Expr: raw(s.Expr), Columns: cols, Alias: s.Alias, As: s.As,
		Column: s.Column, Reference: s.Reference, Where: raw(s.Where),
	}, nil
}

func raw(s string) *query.Fragment {
	if s == "" {
		return nil
	}
	f := query.Raw(s)
	return &f
}

// JSONMatchSpec is the serialisable form of query.JSONMatch.
type JSONMatchSpec struct {
	Column string                 `json:"column" yaml:"column"`
	Op     string                 `json:"op,omitempty" yaml:"op,omitempty"`
	Values map[string]interface{} `json:"values" yaml:"values"`
}

// RequestSpec is the serialisable form of a Request.
type RequestSpec struct {
	Page     int                    `json:"page,omitempty" yaml:"page,omitempty"`
	PageSize int                    `json:"pageSize,omitempty" yaml:"pageSize,omitempty"`
	Offset   int                    `json:"offset,omitempty" yaml:"offset,omitempty"`
	Limit    int                    `json:"limit,omitempty" yaml:"limit,omitempty"`
	Find     string                 `json:"find,omitempty" yaml:"find,omitempty"`
	Fields   []string               `json:"fields,omitempty" yaml:"fields,omitempty"`
	Where    map[string]interface{} `json:"where,omitempty" yaml:"where,omitempty"`
	// JSON holds key comparisons on json columns, ANDed with Where.
	JSON []JSONMatchSpec `json:"json,omitempty" yaml:"json,omitempty"`
	// Filter is a raw predicate ANDed after Where.
	Filter    string         `json:"filter,omitempty" yaml:"filter,omitempty"`
	Sort      []Sort         `json:"sort,omitempty" yaml:"sort,omitempty"`
	Columns   []ColumnSpec   `json:"columns,omitempty" yaml:"columns,omitempty"`
	Relations []RelationSpec `json:"relations,omitempty" yaml:"relations,omitempty"`
}

// Build converts the spec into a Request for owner, validating its relations.
func (s *RequestSpec) Build(owner string) (*Request, error) {
	req := &Request{
		Page: s.Page, PageSize: s.PageSize, Offset: s.Offset, Limit: s.Limit,
		Find: s.Find, Fields: s.Fields, Sort: s.Sort,
	}
	var where query.All
	if len(s.Where) > 0 {
		where = append(where, query.Match(s.Where))
	}
	for i, js := range s.JSON {
		jm, err := query.NewJSONMatch(js.Column, js.Op, js.Values)
		if err != nil {
			return nil, fmt.Errorf("json[%d]: %w", i, err)
		}
		where = append(where, jm)
	}
	switch len(where) {
	case 0:
	case 1:
		req.Where = where[0]
	default:
		req.Where = where
	}
	if s.Filter != "" {
		req.Filter = query.Raw(s.Filter)
	}
	for _, c := range s.Columns {
		col, err := c.column()
		if err != nil {
			return nil, err
		}
		req.Columns = append(req.Columns, col)
	}
	if s.Relations != nil {
		req.Relations = make([]query.Relation, 0, len(s.Relations))
		for i, rs := range s.Relations {
			rel, err := rs.Relation()
			if err != nil {
				return nil, fmt.Errorf("relations[%d]: %w", i, err)
			}
			req.Relations = append(req.Relations, rel)
		}
		if err := query.Validate(owner, req.Relations); err != nil {
			return nil, err
		}
	}
	return req, nil
}

// DecodeRequestSpec reads a YAML or JSON request spec.
func DecodeRequestSpec(r io.Reader) (*RequestSpec, error) {
	var spec RequestSpec
	if err := yaml.NewDecoder(r).Decode(&spec); err != nil && err != io.EOF {
		return nil, fmt.Errorf("decode request spec: %w", err)
	}
	return &spec, nil
}

// LoadRequestSpec reads a request spec file.
func LoadRequestSpec(path string) (*RequestSpec, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return DecodeRequestSpec(f)
}
