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
	"strings"

	"gopkg.in/yaml.v3"
)

// Common illegal/default values used by enums.
const (
	IllegalValue = -1
	IllegalName  = "unknown"
	IllegalDesc  = "unknown"
)

// BaseEnum represents a basic enum contract used by domain types.
type BaseEnum interface {
	IsValid() bool
	Number() int
	String() string
	Desc() string
	Name() string
}

// SortOrder is the direction of a sort entry.
type SortOrder int

const (
	Asc SortOrder = iota
	Desc
)

var _ BaseEnum = Asc

func (o SortOrder) IsValid() bool { return o == Asc || o == Desc }

func (o SortOrder) Number() int {
	if !o.IsValid() {
		return IllegalValue
	}
	return int(o)
}

// String returns the SQL keyword.
func (o SortOrder) String() string {
	switch o {
	case Asc:
		return "ASC"
	case Desc:
		return "DESC"
	}
	return IllegalName
}

func (o SortOrder) Name() string { return strings.ToLower(o.String()) }

func (o SortOrder) Desc() string {
	switch o {
	case Asc:
		return "ascending"
	case Desc:
		return "descending"
	}
	return IllegalDesc
}

// ParseSortOrder accepts asc/desc in any case; empty means Asc.
func ParseSortOrder(s string) (SortOrder, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "asc":
		return Asc, nil
	case "desc":
		return Desc, nil
	}
	return SortOrder(IllegalValue), fmt.Errorf("invalid sort order %q", s)
}

func (o SortOrder) MarshalJSON() ([]byte, error) {
	return json.Marshal(o.Name())
}

func (o *SortOrder) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	v, err := ParseSortOrder(s)
	if err != nil {
		return err
	}
	*o = v
	return nil
}

func (o *SortOrder) UnmarshalYAML(node *yaml.Node) error {
	v, err := ParseSortOrder(node.Value)
	if err != nil {
		return err
	}
	*o = v
	return nil
}
