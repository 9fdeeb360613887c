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
	"bytes"
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// JsonObject is a convenience type for JSON columns mapped to objects.
type JsonObject map[string]interface{}

// JsonArray is a convenience type for JSON columns mapped to arrays.
type JsonArray []JsonObject

// Value implements driver.Valuer for JsonObject.
func (j JsonObject) Value() (driver.Value, error) {
	if j == nil {
		return nil, nil
	}
	return json.Marshal(j)
}

// Scan implements sql.Scanner for JsonObject.
func (j *JsonObject) Scan(value interface{}) error {
	if value == nil {
		*j = make(JsonObject)
		return nil
	}
	b, err := jsonBytes(value)
	if err != nil {
		return err
	}
	return json.Unmarshal(b, j)
}

// Value implements driver.Valuer for JsonArray.
func (j JsonArray) Value() (driver.Value, error) {
	if j == nil {
		return nil, nil
	}
	return json.Marshal(j)
}

// Scan implements sql.Scanner for JsonArray.
func (j *JsonArray) Scan(value interface{}) error {
	if value == nil {
		*j = make(JsonArray, 0)
		return nil
	}
	b, err := jsonBytes(value)
	if err != nil {
		return err
	}
	return json.Unmarshal(b, j)
}

// ID returns the "id" member, nil when absent.
func (j JsonObject) ID() interface{} {
	if j == nil {
		return nil
	}
	return j["id"]
}

func jsonBytes(value interface{}) ([]byte, error) {
	switch v := value.(type) {
	case []byte:
		return v, nil
	case string:
		return []byte(v), nil
	}
	return nil, fmt.Errorf("type assertion must be []byte or string, got %T", value)
}

// DecodeJSON decodes a JSON column delivered as text or bytes, keeping numbers
// as json.Number. Anything else is assumed to be decoded by the driver
// already and is returned as is.
func DecodeJSON(value interface{}) (interface{}, error) {
	switch value.(type) {
	case []byte, string:
		b, _ := jsonBytes(value)
		if len(b) == 0 {
			return nil, nil
		}
		dec := json.NewDecoder(bytes.NewReader(b))
		dec.UseNumber()
		var out interface{}
		if err := dec.Decode(&out); err != nil {
			return nil, err
		}
		return out, nil
	}
	return value, nil
}

// ToObject converts a decoded JSON value into an object.
func ToObject(value interface{}) (JsonObject, bool) {
	switch v := value.(type) {
	case JsonObject:
		return v, true
	case map[string]interface{}:
		return JsonObject(v), true
	}
	return nil, false
}

// ToArray converts a decoded JSON value into an array of objects. It fails
// when any element is neither an object nor null.
func ToArray(value interface{}) (JsonArray, bool) {
	switch v := value.(type) {
	case JsonArray:
		return v, true
	case []JsonObject:
		return JsonArray(v), true
	case []map[string]interface{}:
		out := make(JsonArray, len(v))
		for i, o := range v {
			out[i] = JsonObject(o)
		}
		return out, true
	case []interface{}:
		out := make(JsonArray, len(v))
		for i, e := range v {
			if e == nil {
				continue
			}
			obj, ok := ToObject(e)
			if !ok {
				return nil, false
			}
			out[i] = obj
		}
		return out, true
	}
	return nil, false
}
