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
	"fmt"
	"net"
	"net/url"
	"sort"
	"strconv"
	"time"

	"github.com/go-sql-driver/mysql"
	_ "github.com/jackc/pgx/v5/stdlib"
	_ "github.com/lib/pq"
	"github.com/uptrace/bun/dialect/mysqldialect"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
	"github.com/uptrace/bun/schema"
)

type driver struct {
	name    string
	dsn     func(*ConnectionConfig) string
	dialect func() schema.Dialect
}

func newPG() schema.Dialect     { return pgdialect.New() }
func newMySQL() schema.Dialect  { return mysqldialect.New() }
func newSQLite() schema.Dialect { return sqlitedialect.New() }

// drivers maps a connection type onto its database/sql driver. Both
// PostgreSQL drivers render through pgdialect, so relation projections
// compile the same way on either.
var drivers = map[string]driver{
	"postgres":   {"postgres", postgresDSN, newPG},
	"postgresql": {"postgres", postgresDSN, newPG},
	"pgx":        {"pgx", postgresDSN, newPG},
	"mysql":      {"mysql", mysqlDSN, newMySQL},
	"sqlite":     {sqliteshim.ShimName, sqliteDSN, newSQLite},
	"sqlite3":    {sqliteshim.ShimName, sqliteDSN, newSQLite},
}

// SupportedTypes lists the accepted connection types.
func SupportedTypes() []string {
	out := make([]string, 0, len(drivers))
	for typ := range drivers {
		out = append(out, typ)
	}
	sort.Strings(out)
	return out
}

func lookupDriver(typ string) (driver, error) {
	d, ok := drivers[typ]
	if !ok {
		return driver{}, fmt.Errorf("unsupported database type: %s, supported types: %v", typ, SupportedTypes())
	}
	return d, nil
}

func postgresDSN(cfg *ConnectionConfig) string {
	if cfg.DSN != "" {
		return cfg.DSN
	}
	q := url.Values{}
	q.Set("sslmode", firstSet(cfg.SSLMode, "disable"))
	if cfg.ConnectTimeout > 0 {
		q.Set("connect_timeout", strconv.Itoa(int(cfg.ConnectTimeout/time.Second)))
	}
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(cfg.Username, cfg.Password),
		Host:     net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port)),
		Path:     "/" + cfg.DBName,
		RawQuery: q.Encode(),
	}
	return u.String()
}

func mysqlDSN(cfg *ConnectionConfig) string {
	if cfg.DSN != "" {
		return cfg.DSN
	}
	mc := mysql.NewConfig()
	mc.User, mc.Passwd = cfg.Username, cfg.Password
	mc.Net, mc.Addr = "tcp", net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port))
	mc.DBName = cfg.DBName
	mc.ParseTime, mc.Loc = true, time.Local
	mc.Timeout, mc.ReadTimeout, mc.WriteTimeout = cfg.ConnectTimeout, cfg.ReadTimeout, cfg.WriteTimeout
	mc.Params = map[string]string{"charset": "utf8mb4"}
	return mc.FormatDSN()
}

func sqliteDSN(cfg *ConnectionConfig) string {
	if cfg.DSN != "" {
		return cfg.DSN
	}
	return firstSet(cfg.DBName, "relmodel") + ".db"
}

func firstSet(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
