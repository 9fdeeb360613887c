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

import "strings"

// Normalize qualifies column with table unless it is already qualified.
func Normalize(table, column string) string {
	if table == "" || strings.Contains(column, ".") {
		return column
	}
	return table + "." + column
}

// NormalizeAll applies Normalize to every column.
func NormalizeAll(table string, columns []string) []string {
	out := make([]string, len(columns))
	for i, c := range columns {
		out[i] = Normalize(table, c)
	}
	return out
}

// IsID reports whether column names an id: "id", "<t>.id" or "<x>_id".
func IsID(column string) bool {
	c := strings.ToLower(column)
	return c == "id" || strings.HasSuffix(c, ".id") || strings.HasSuffix(c, "_id")
}

func unqualified(column string) string {
	if i := strings.LastIndex(column, "."); i >= 0 {
		return column[i+1:]
	}
	return column
}
