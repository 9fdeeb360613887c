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
	"fmt"
	"sync"

	"github.com/uptrace/bun"
)

var (
	globalMu      sync.RWMutex
	globalManager *Manager
	DB            *bun.DB
)

// GetDB returns the global Bun database instance.
func GetDB() *bun.DB {
	globalMu.RLock()
	defer globalMu.RUnlock()
	if globalManager != nil {
		if db := globalManager.DB(); db != nil {
			return db
		}
	}
	return DB
}

// SetDB installs an externally opened handle as the global database.
func SetDB(db *bun.DB) {
	globalMu.Lock()
	defer globalMu.Unlock()
	globalManager = nil
	DB = db
}

// GetDatabaseManager returns the manager opened by InitDB, or nil.
func GetDatabaseManager() *Manager {
	globalMu.RLock()
	defer globalMu.RUnlock()
	return globalManager
}

// InitDB initializes the global database using the provided configuration.
func InitDB(cfg *Config) (*bun.DB, error) {
	return InitDBContext(context.Background(), cfg)
}

// InitDBContext connects the global database, bounded by ctx.
func InitDBContext(ctx context.Context, cfg *Config) (*bun.DB, error) {
	if cfg == nil {
		return nil, fmt.Errorf("database configuration cannot be empty")
	}
	manager, err := NewFromConfig(&cfg.ConnectionConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create database manager: %w", err)
	}
	if err := manager.Connect(ctx); err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	manager.logger.Info("Database initialization completed!")

	globalMu.Lock()
	defer globalMu.Unlock()
	globalManager = manager
	DB = manager.DB()
	return DB, nil
}

// CloseDB closes the global database connection.
func CloseDB() error {
	globalMu.Lock()
	manager, db := globalManager, DB
	globalManager, DB = nil, nil
	globalMu.Unlock()

	if manager != nil {
		return manager.Close()
	}
	if db != nil {
		return db.Close()
	}
	return nil
}

// GetHealthStatus checks the global database and the given tables.
func GetHealthStatus(ctx context.Context, tables ...string) *HealthStatus {
	if manager := GetDatabaseManager(); manager != nil {
		return manager.HealthCheck(ctx, tables...)
	}
	if db := GetDB(); db != nil {
		return Check(ctx, db, mergeTables(tables))
	}
	return unhealthy("Database not initialized")
}
