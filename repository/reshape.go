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
	"fmt"

	"github.com/tomoncle/relmodel/query"
	"github.com/tomoncle/relmodel/types"
)

// reshape decodes embedded relation values in place. Many-side values that
// are empty, or hold a single element without id, become nil. One-side
// values unwrap a leading array element and become nil without an id.
func reshape(rows []types.Row, embeds []query.Embed) error {
	for _, row := range rows {
		for _, e := range embeds {
			v, ok := row[e.Key]
			if !ok {
				continue
			}
			decoded, err := types.DecodeJSON(v)
			if err != nil {
				return fmt.Errorf("decode %s %s: %w", e.Kind, e.Key, err)
			}
			if e.Kind.Many() {
				row[e.Key] = reshapeMany(decoded)
			} else {
				row[e.Key] = reshapeOne(decoded)
			}
		}
	}
	return nil
}

func reshapeMany(v interface{}) interface{} {
	list, ok := v.([]interface{})
	if !ok {
		return v
	}
	if len(list) == 0 {
		return nil
	}
	if len(list) == 1 {
		if list[0] == nil {
			return nil
		}
		if obj, ok := types.ToObject(list[0]); ok && obj.ID() == nil {
			return nil
		}
	}
	if arr, ok := types.ToArray(list); ok {
		return arr
	}
	return list
}

func reshapeOne(v interface{}) interface{} {
	if list, ok := v.([]interface{}); ok {
		if len(list) == 0 {
			return nil
		}
		v = list[0]
	}
	obj, ok := types.ToObject(v)
	if !ok || obj.ID() == nil {
		return nil
	}
	return obj
}
