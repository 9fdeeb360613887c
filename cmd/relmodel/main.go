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

// Command relmodel compiles and runs relation-aware list requests against a
// PostgreSQL database.
//
// Usage:
//
//	relmodel render --table posts request.yaml
//	relmodel list   --table posts request.yaml
//	relmodel get    --table posts request.yaml
//	relmodel ping
//
// Connection settings come from flags, RELMODEL_* environment variables and
// an optional relmodel.yaml, in that order of precedence.
package main

func main() {
	Execute()
}
