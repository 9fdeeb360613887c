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
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/extra/bundebug"
)

// ErrNotConnected is returned by a Manager used before Connect or after Close.
var ErrNotConnected = errors.New("database not connected")

// Manager owns one bun handle. It opens and pings the handle, runs periodic
// health checks over the configured tables and reopens the handle after a
// failed ping when reconnecting is enabled.
type Manager struct {
	cfg    ConnectionConfig
	logger Logger

	mu     sync.RWMutex
	db     *bun.DB
	status *HealthStatus
	cancel context.CancelFunc
	done   chan struct{}
}

// NewManager returns a manager for cfg. A nil config falls back to
// DefaultConnectionConfig and a nil logger to GetLogger.
func NewManager(cfg *ConnectionConfig, logger Logger) *Manager {
	if cfg == nil {
		cfg = DefaultConnectionConfig()
	}
	if logger == nil {
		logger = GetLogger()
	}
	return &Manager{cfg: *cfg, logger: logger}
}

// Config returns the settings the manager connects with.
func (m *Manager) Config() ConnectionConfig { return m.cfg }

// Connect opens the handle and starts the health checks. It does nothing when
// the manager is already connected.
func (m *Manager) Connect(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.db != nil {
		return nil
	}
	db, err := m.open(ctx)
	if err != nil {
		return err
	}
	m.db = db
	m.logger.Info("Database connected", "type", m.cfg.Type, "host", m.cfg.Host)

	if m.cfg.HealthCheckInterval > 0 && m.cancel == nil {
		wctx, cancel := context.WithCancel(context.Background())
		m.cancel, m.done = cancel, make(chan struct{})
		go m.watch(wctx, m.done)
	}
	return nil
}

func (m *Manager) open(ctx context.Context) (*bun.DB, error) {
	d, err := lookupDriver(m.cfg.Type)
	if err != nil {
		return nil, err
	}
	sqldb, err := sql.Open(d.name, d.dsn(&m.cfg))
	if err != nil {
		return nil, fmt.Errorf("failed to create database connection: %w", err)
	}
	sqldb.SetMaxIdleConns(m.cfg.MaxIdleConns)
	sqldb.SetMaxOpenConns(m.cfg.MaxOpenConns)
	sqldb.SetConnMaxLifetime(m.cfg.ConnMaxLifetime)
	sqldb.SetConnMaxIdleTime(m.cfg.ConnMaxIdleTime)

	db := bun.NewDB(sqldb, d.dialect())
	if m.cfg.EnableQueryLog {
		db.AddQueryHook(bundebug.NewQueryHook(bundebug.WithVerbose(true), bundebug.FromEnv("BUNDEBUG")))
	} else {
		db.AddQueryHook(NewQueryHook(os.Stdout, WithQueryHookEnv("BUNDEBUG")))
	}
	if m.cfg.SlowQueryTime > 0 {
		db.AddQueryHook(NewSlowQueryHook(m.cfg.SlowQueryTime, WithSlowQueryLogger(m.logger)))
	}

	timeout := m.cfg.ConnectTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	pctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	if err := db.PingContext(pctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("database connection test failed: %w", err)
	}
	return db, nil
}

// Close stops the health checks and closes the handle.
func (m *Manager) Close() error {
	m.mu.Lock()
	cancel, done := m.cancel, m.done
	m.cancel, m.done = nil, nil
	m.mu.Unlock()
	if cancel != nil {
		cancel()
		<-done
	}

	m.mu.Lock()
	db := m.db
	m.db = nil
	m.mu.Unlock()
	if db == nil {
		return nil
	}
	if err := db.Close(); err != nil {
		m.logger.Error("Failed to close database connection", "error", err)
		return err
	}
	m.logger.Info("Database connection closed")
	return nil
}

// DB returns the current handle, nil when not connected.
func (m *Manager) DB() *bun.DB {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.db
}

func (m *Manager) Ping(ctx context.Context) error {
	db := m.DB()
	if db == nil {
		return ErrNotConnected
	}
	return db.PingContext(ctx)
}

// HealthCheck pings the database and checks the configured tables plus the
// given ones. The result is kept for LastStatus.
func (m *Manager) HealthCheck(ctx context.Context, tables ...string) *HealthStatus {
	db := m.DB()
	if db == nil {
		return unhealthy(ErrNotConnected.Error())
	}
	status := Check(ctx, db, mergeTables(m.cfg.Tables, tables))
	m.mu.Lock()
	m.status = status
	m.mu.Unlock()
	return status
}

// LastStatus returns the most recent HealthCheck result, or nil.
func (m *Manager) LastStatus() *HealthStatus {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.status
}

// Check pings db and selects zero rows from each table. A failed ping or an
// unreadable table makes the status unhealthy.
func Check(ctx context.Context, db *bun.DB, tables []string) *HealthStatus {
	start := time.Now()
	status := &HealthStatus{LastCheckTime: start}

	cctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(cctx); err != nil {
		status.LastError = err.Error()
	} else {
		status.Connected = true
		status.Tables = CheckTables(cctx, db, tables)
		status.Healthy = true
		for _, t := range status.Tables {
			if !t.Reachable {
				status.Healthy = false
				status.LastError = fmt.Sprintf("table %s: %s", t.Table, t.Error)
				break
			}
		}
	}
	status.ResponseTime = time.Since(start)

	stats := db.DB.Stats()
	status.ActiveConns = stats.InUse
	status.IdleConns = stats.Idle
	status.MaxOpenConns = stats.MaxOpenConnections
	status.WaitCount = stats.WaitCount
	return status
}

// CheckTables runs "SELECT 1 FROM <table> LIMIT 0" for each table.
func CheckTables(ctx context.Context, db bun.IDB, tables []string) []TableHealth {
	if len(tables) == 0 {
		return nil
	}
	out := make([]TableHealth, 0, len(tables))
	for _, t := range tables {
		th := TableHealth{Table: t, Reachable: true}
		if _, err := db.ExecContext(ctx, "SELECT 1 FROM ? LIMIT 0", bun.Ident(t)); err != nil {
			th.Reachable = false
			th.Error = err.Error()
			if is, kind := IsSqlError(err); is {
				th.Kind = kind.String()
			}
		}
		out = append(out, th)
	}
	return out
}

func mergeTables(lists ...[]string) []string {
	var out []string
	seen := map[string]bool{}
	for _, list := range lists {
		for _, t := range list {
			t = strings.TrimSpace(t)
			if t == "" || seen[t] {
				continue
			}
			seen[t] = true
			out = append(out, t)
		}
	}
	return out
}

// watch runs HealthCheck every interval until ctx ends. After a failed ping it
// reopens the handle, giving up after MaxReconnectTries consecutive failures.
func (m *Manager) watch(ctx context.Context, done chan struct{}) {
	defer close(done)
	ticker := time.NewTicker(m.cfg.HealthCheckInterval)
	defer ticker.Stop()

	failures := 0
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
		cctx, cancel := context.WithTimeout(ctx, 10*time.Second)
		status := m.HealthCheck(cctx)
		cancel()
		if status.Connected {
			failures = 0
			continue
		}
		if !m.cfg.EnableReconnect || failures >= m.cfg.MaxReconnectTries {
			continue
		}
		failures++
		m.logger.Info("Starting database reconnect", "try", failures)
		if err := m.reconnect(ctx); err != nil {
			m.logger.Error("Reconnect failed", "error", err, "try", failures)
			if failures == m.cfg.MaxReconnectTries {
				m.logger.Error("Max reconnect attempts reached, stopping", "tries", failures)
			}
			continue
		}
		failures = 0
		m.logger.Info("Reconnect succeeded")
	}
}

func (m *Manager) reconnect(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(m.cfg.ReconnectInterval):
	}
	db, err := m.open(ctx)
	if err != nil {
		return err
	}
	m.mu.Lock()
	old := m.db
	m.db = db
	m.mu.Unlock()
	if old != nil {
		if err := old.Close(); err != nil {
			m.logger.Warn("Error closing previous connection", "error", err)
		}
	}
	return nil
}
