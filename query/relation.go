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

// Kind tells how a related table is embedded into owner rows.
type Kind int

const (
	KindUnknown Kind = iota
	// KindHasOne embeds one related row as an object through a LEFT JOIN.
	KindHasOne
	// KindHasMany embeds related rows as an array through a LEFT JOIN and GROUP BY.
	KindHasMany
	// KindHasMany2 embeds related rows as an array through a correlated subquery.
	KindHasMany2
)

func (k Kind) String() string {
	switch k {
	case KindHasOne:
		return "hasOne"
	case KindHasMany:
		return "hasMany"
	case KindHasMany2:
		return "hasMany2"
	default:
		return "unknown"
	}
}

// Many reports whether the kind yields an array.
func (k Kind) Many() bool { return k == KindHasMany || k == KindHasMany2 }

// Relation describes a related table embedded into every owner row. The
// implementations are HasOne, HasMany and HasMany2.
type Relation interface {
	Kind() Kind
	// Key is the output key that holds the embedded value.
	Key() string
	validate(owner string) error
}

// HasOne joins one related row, by default on <owner>.<table>_id = <alias>.id.
type HasOne struct {
	Table string
	// Columns limits the embedded object; empty embeds the whole row.
	Columns []string
	// Alias defaults to "x" followed by Column or Table.
	Alias string
	// As defaults to Column or Table.
	As string
	// Column overrides the owner side of the join.
	Column string
	// Reference overrides the related side of the join.
	Reference string
	// On replaces the join predicate and requires Alias.
	On *Fragment
}

// HasMany joins many related rows, by default on <alias>.<owner>_id = <owner>.id.
// At most one HasMany may appear in a request.
type HasMany struct {
	Table     string
	Columns   []Column
	Alias     string
	As        string
	Column    string
	Reference string
	On        *Fragment
}

// HasMany2 embeds many related rows through an independent correlated
// subquery. Exactly one of Table, Expr or Build is set. With Table the
// subquery is generated from Columns; Expr and Build supply the whole
// subquery and must name its output key with As.
type HasMany2 struct {
	Table     string
	Expr      *Fragment
	Build     func(owner string) Fragment
	Columns   []Column
	Alias     string
	As        string
	Column    string
	Reference string
	// Where replaces the default correlation <alias>.<owner>_id = <owner>.id.
	Where *Fragment
}

func (HasOne) Kind() Kind   { return KindHasOne }
func (HasMany) Kind() Kind  { return KindHasMany }
func (HasMany2) Kind() Kind { return KindHasMany2 }

func (r HasOne) name() string { return firstNonEmpty(unqualified(r.Column), r.Table) }

func (r HasOne) alias() string { return firstNonEmpty(r.Alias, "x"+r.name()) }

func (r HasOne) Key() string { return firstNonEmpty(r.As, r.name()) }

func (r HasOne) validate(owner string) error {
	if r.Table == "" {
		return Configf("hasOne on %s requires a table", owner)
	}
	if r.On != nil && r.Alias == "" {
		return Configf("alias is required when using a custom join on %s hasOne %s", owner, r.Table)
	}
	return nil
}

func (r HasMany) name() string { return firstNonEmpty(unqualified(r.Column), r.Table) }

func (r HasMany) alias() string { return firstNonEmpty(r.Alias, "x"+r.name()) }

func (r HasMany) Key() string { return firstNonEmpty(r.As, r.name()) }

func (r HasMany) validate(owner string) error {
	if r.Table == "" {
		return Configf("hasMany on %s requires a table", owner)
	}
	if len(r.Columns) == 0 {
		return Configf("columns required for hasMany %s in %s references", r.Table, owner)
	}
	if r.On != nil && r.Alias == "" {
		return Configf("alias is required when using a custom join on %s hasMany %s", owner, r.Table)
	}
	return nil
}

func (r HasMany2) alias() string { return firstNonEmpty(r.Alias, r.Table) }

func (r HasMany2) Key() string { return firstNonEmpty(r.As, unqualified(r.Column), r.Table) }

func (r HasMany2) validate(owner string) error {
	sources := 0
	if r.Table != "" {
		sources++
	}
	if r.Expr != nil {
		sources++
	}
	if r.Build != nil {
		sources++
	}
	if sources != 1 {
		return Configf("hasMany2 on %s needs exactly one of table, expression or builder", owner)
	}
	if r.Table != "" && len(r.Columns) == 0 {
		return Configf("columns required for hasMany2 %s in %s references", r.Table, owner)
	}
	if r.Table == "" && r.As == "" {
		return Configf("hasMany2 expression on %s requires an output key", owner)
	}
	return nil
}

// Validate checks every descriptor and the single-HasMany rule.
func Validate(owner string, relations []Relation) error {
	hasMany := 0
	for i, rel := range relations {
		if rel == nil || isNil(rel) {
			return Configf("missing hasOne, hasMany, or hasMany2 for %s references[%d]", owner, i)
		}
		if err := rel.validate(owner); err != nil {
			return err
		}
		if rel.Kind() == KindHasMany {
			hasMany++
		}
	}
	if hasMany > 1 {
		return Configf("hasMany on %s is only allowed once, use hasMany2 instead", owner)
	}
	return nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
