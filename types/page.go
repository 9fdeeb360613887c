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

import "github.com/tomoncle/relmodel/query"

// Row is one result record keyed by column or relation output key.
type Row = map[string]interface{}

// Sort is one ORDER BY entry.
type Sort struct {
	Column string    `json:"column" yaml:"column"`
	Order  SortOrder `json:"order" yaml:"order"`
}

// DefaultSort orders by creation time, newest first.
var DefaultSort = []Sort{{Column: "created_at", Order: Desc}}

// Request describes one read: paging, search, filters, ordering, projection
// and relations. Page/PageSize take precedence over Offset/Limit.
type Request struct {
	// Page is 1-based; zero means offset paging.
	Page     int
	PageSize int
	Offset   int
	// Limit of zero is unlimited.
	Limit int

	// Find is searched over Fields; both are needed for a search predicate.
	Find   string
	Fields []string

	Where  query.Predicate
	Filter query.Predicate

	Sort []Sort
	// Columns is the explicit projection; empty or a single "*" selects the
	// whole owner row.
	Columns []query.Column
	// Relations overrides the model's default relations when non-nil.
	Relations []query.Relation
}

// Window resolves the offset and limit of the request.
func (r *Request) Window() (offset, limit int) {
	limit = r.Limit
	if r.PageSize > 0 {
		limit = r.PageSize
	}
	if limit < 0 {
		limit = 0
	}
	offset = r.Offset
	if r.Page > 0 {
		offset = limit * (r.Page - 1)
	}
	if offset < 0 {
		offset = 0
	}
	return offset, limit
}

// Sorts returns the requested order or DefaultSort.
func (r *Request) Sorts() []Sort {
	if len(r.Sort) == 0 {
		return DefaultSort
	}
	return r.Sort
}

// Searching reports whether the request carries a search predicate.
func (r *Request) Searching() bool {
	return r.Find != "" && len(r.Fields) > 0
}

// Result is the paginated envelope. Page and PageSize are set for page
// requests, Offset and Limit otherwise.
type Result struct {
	Data     []Row  `json:"data"`
	Total    int    `json:"total"`
	Page     *int   `json:"page,omitempty"`
	Offset   *int   `json:"offset,omitempty"`
	PageSize *int   `json:"pageSize,omitempty"`
	Limit    *int   `json:"limit,omitempty"`
	Find     string `json:"find"`
}

// NewResult builds the envelope for rows fetched with req.
func NewResult(req *Request, rows []Row, total int) *Result {
	if rows == nil {
		rows = make([]Row, 0)
	}
	offset, limit := req.Window()
	res := &Result{Data: rows, Total: total, Find: req.Find}
	if req.Page > 0 {
		page := req.Page
		res.Page = &page
	} else {
		res.Offset = &offset
	}
	if req.PageSize > 0 {
		res.PageSize = &limit
	} else {
		res.Limit = &limit
	}
	return res
}
