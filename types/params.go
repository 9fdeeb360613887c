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
	"fmt"
	"net/url"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

var sortParam = regexp.MustCompile(`^sort\[(\d+)\]\[(column|order)\]$`)

// ParseQuery reads paging, search and qs-style sort parameters
// (sort[0][column]=name&sort[0][order]=desc) into a Request.
func ParseQuery(values url.Values) (*Request, error) {
	req := &Request{}
	ints := []struct {
		key string
		dst *int
	}{
		{"page", &req.Page},
		{"pageSize", &req.PageSize},
		{"offset", &req.Offset},
		{"limit", &req.Limit},
	}
	for _, p := range ints {
		v := values.Get(p.key)
		if v == "" {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("%s must be an integer: %w", p.key, err)
		}
		*p.dst = n
	}
	req.Find = values.Get("find")
	for _, v := range values["fields"] {
		for _, f := range strings.Split(v, ",") {
			if f = strings.TrimSpace(f); f != "" {
				req.Fields = append(req.Fields, f)
			}
		}
	}

	sorts := map[int]*Sort{}
	for key, vs := range values {
		m := sortParam.FindStringSubmatch(key)
		if m == nil || len(vs) == 0 {
			continue
		}
		i, _ := strconv.Atoi(m[1])
		s, ok := sorts[i]
		if !ok {
			s = &Sort{}
			sorts[i] = s
		}
		if m[2] == "column" {
			s.Column = vs[0]
			continue
		}
		order, err := ParseSortOrder(vs[0])
		if err != nil {
			return nil, err
		}
		s.Order = order
	}
	idx := make([]int, 0, len(sorts))
	for i := range sorts {
		idx = append(idx, i)
	}
	sort.Ints(idx)
	for _, i := range idx {
		if sorts[i].Column == "" {
			return nil, fmt.Errorf("sort[%d] has no column", i)
		}
		req.Sort = append(req.Sort, *sorts[i])
	}
	return req, nil
}
