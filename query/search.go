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

// Search builds a fuzzy match of phrase over fields. Every whitespace
// separated token is tried against every field as exact, prefix, suffix and
// substring ILIKE patterns, all ORed together. The OR chain starts from the
// false clause "<owner>.id = 0" so a phrase without usable tokens matches
// nothing. An empty phrase or an empty field list yields a zero fragment.
func Search(phrase string, fields []string, owner string) Fragment {
	if phrase == "" || len(fields) == 0 {
		return Fragment{}
	}
	parts := []string{"? = 0"}
	args := []interface{}{Ident(Normalize(owner, "id"))}
	for _, token := range strings.Fields(phrase) {
		for _, field := range fields {
			ident := Ident(Normalize(owner, field))
			for _, pattern := range []string{token, token + "%", "%" + token, "%" + token + "%"} {
				parts = append(parts, "? ILIKE ?")
				args = append(args, ident, pattern)
			}
		}
	}
	return Raw("("+strings.Join(parts, " OR ")+")", args...)
}
