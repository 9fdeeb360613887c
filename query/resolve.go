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

// Embed names an output key and the shape its value must be reshaped into.
type Embed struct {
	Key  string
	Kind Kind
}

// Resolution is the compiled form of a relation list.
type Resolution struct {
	// Selects holds one projection per relation, in declaration order.
	Selects []Fragment
	// Joins holds the LEFT JOIN clauses of HasOne and HasMany relations.
	Joins []Fragment
	// GroupBy is set when any many-side relation is present; the owner id
	// must then be the first selected column.
	GroupBy bool
	Embeds  []Embed
}

// Resolve validates relations and compiles them against the owner table.
func Resolve(owner string, relations []Relation) (*Resolution, error) {
	if err := Validate(owner, relations); err != nil {
		return nil, err
	}
	res := &Resolution{}
	for _, rel := range relations {
		if rel.Kind().Many() {
			res.GroupBy = true
		}
	}
	for _, rel := range relations {
		switch r := deref(rel).(type) {
		case HasOne:
			alias := r.alias()
			res.Selects = append(res.Selects, RowProjection(r.Columns, alias, r.Key(), res.GroupBy))
			on := r.On
			if on == nil {
				col := Normalize(owner, firstNonEmpty(r.Column, r.Table+"_id"))
				ref := Normalize(alias, firstNonEmpty(r.Reference, "id"))
				f := Raw("? = ?", Ident(col), Ident(ref))
				on = &f
			}
			res.Joins = append(res.Joins, leftJoin(r.Table, alias, *on))
		case HasMany:
			alias := r.alias()
			res.Selects = append(res.Selects, AggregateObject(r.Columns, alias, r.Key()))
			on := r.On
			if on == nil {
				col := Normalize(owner, firstNonEmpty(r.Column, "id"))
				ref := Normalize(alias, firstNonEmpty(r.Reference, owner+"_id"))
				f := Raw("? = ?", Ident(col), Ident(ref))
				on = &f
			}
			res.Joins = append(res.Joins, leftJoin(r.Table, alias, *on))
		case HasMany2:
			res.Selects = append(res.Selects, Subquery(owner, r))
		default:
			return nil, Configf("unknown relation kind %s on %s", rel.Kind(), owner)
		}
		res.Embeds = append(res.Embeds, Embed{Key: rel.Key(), Kind: rel.Kind()})
	}
	return res, nil
}

// Subquery compiles a HasMany2 relation into a scalar select expression
// aliased as its output key.
func Subquery(owner string, r HasMany2) Fragment {
	switch {
	case r.Expr != nil:
		return r.Expr.Wrap().As(r.Key())
	case r.Build != nil:
		return r.Build(owner).Wrap().As(r.Key())
	}
	alias := r.alias()
	where := r.Where
	if where == nil {
		ref := Normalize(alias, firstNonEmpty(r.Reference, owner+"_id"))
		col := Normalize(owner, firstNonEmpty(r.Column, "id"))
		f := Raw("? = ?", Ident(ref), Ident(col))
		where = &f
	}
	sub := Raw("SELECT ? FROM ? AS ? WHERE ?",
		AggregateObject(r.Columns, alias, ""), Ident(r.Table), Ident(alias), *where)
	return sub.Wrap().As(r.Key())
}

func leftJoin(table, alias string, on Fragment) Fragment {
	return Raw("LEFT JOIN ? AS ? ON ?", Ident(table), Ident(alias), on)
}

func deref(rel Relation) Relation {
	switch r := rel.(type) {
	case *HasOne:
		return *r
	case *HasMany:
		return *r
	case *HasMany2:
		return *r
	}
	return rel
}
