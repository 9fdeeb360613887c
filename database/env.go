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

package database

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/tomoncle/relmodel/utils"
)

// envOverrides lists the DB_* variables that replace configured values. The
// environment wins over file values.
var envOverrides = []struct {
	key   string
	apply func(c *ConnectionConfig, key string)
}{
	{"DB_TYPE", func(c *ConnectionConfig, k string) { c.Type = utils.EnvDefaultString(k, c.Type) }},
	{"DB_DSN", func(c *ConnectionConfig, k string) { c.DSN = utils.EnvDefaultString(k, c.DSN) }},
	{"DB_HOST", func(c *ConnectionConfig, k string) { c.Host = utils.EnvDefaultString(k, c.Host) }},
	{"DB_PORT", func(c *ConnectionConfig, k string) { c.Port = envInt(k, c.Port) }},
	{"DB_USERNAME", func(c *ConnectionConfig, k string) { c.Username = utils.EnvDefaultString(k, c.Username) }},
	{"DB_PASSWORD", func(c *ConnectionConfig, k string) { c.Password = utils.EnvDefaultString(k, c.Password) }},
	{"DB_NAME", func(c *ConnectionConfig, k string) { c.DBName = utils.EnvDefaultString(k, c.DBName) }},
	{"DB_SSLMODE", func(c *ConnectionConfig, k string) { c.SSLMode = utils.EnvDefaultString(k, c.SSLMode) }},
	{"DB_MAX_IDLE_CONNS", func(c *ConnectionConfig, k string) { c.MaxIdleConns = envInt(k, c.MaxIdleConns) }},
	{"DB_MAX_OPEN_CONNS", func(c *ConnectionConfig, k string) { c.MaxOpenConns = envInt(k, c.MaxOpenConns) }},
	{"DB_CONN_MAX_LIFETIME", func(c *ConnectionConfig, k string) {
		c.ConnMaxLifetime = utils.EnvDefaultDuration(k, c.ConnMaxLifetime)
	}},
	{"DB_ENABLE_RECONNECT", func(c *ConnectionConfig, k string) { c.EnableReconnect = utils.EnvDefaultBool(k, c.EnableReconnect) }},
	{"DB_RECONNECT_INTERVAL", func(c *ConnectionConfig, k string) {
		c.ReconnectInterval = utils.EnvDefaultDuration(k, c.ReconnectInterval)
	}},
	{"DB_ENABLE_QUERY_LOG", func(c *ConnectionConfig, k string) { c.EnableQueryLog = utils.EnvDefaultBool(k, c.EnableQueryLog) }},
	{"DB_SLOW_QUERY_MS", func(c *ConnectionConfig, k string) {
		if ms := envInt(k, -1); ms >= 0 {
			c.SlowQueryTime = time.Duration(ms) * time.Millisecond
		}
	}},
	{"DB_HEALTH_TABLES", func(c *ConnectionConfig, k string) {
		if v := utils.EnvDefaultString(k, ""); v != "" {
			c.Tables = strings.Split(v, ",")
		}
	}},
}

func envInt(key string, def int) int {
	n, err := strconv.Atoi(strings.TrimSpace(utils.EnvDefaultString(key, "")))
	if err != nil {
		return def
	}
	return n
}

// ApplyEnv overrides cfg from the DB_* environment variables.
func ApplyEnv(cfg *ConnectionConfig) {
	for _, o := range envOverrides {
		o.apply(cfg, o.key)
	}
}

// NewFromConfig applies the environment to cfg, checks its connection type
// and returns an unconnected manager logging to the package logger.
func NewFromConfig(cfg *ConnectionConfig) (*Manager, error) {
	if cfg == nil {
		return nil, errors.New("database configuration cannot be empty")
	}
	ApplyEnv(cfg)
	if _, err := lookupDriver(cfg.Type); err != nil {
		return nil, err
	}
	return NewManager(cfg, GetLogger()), nil
}
