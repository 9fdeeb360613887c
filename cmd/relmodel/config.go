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

package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/tomoncle/relmodel/database"
)

// Config is the CLI configuration from relmodel.yaml.
type Config struct {
	Database DatabaseConfig `mapstructure:"database"`
	Log      LogConfig      `mapstructure:"log"`
}

type DatabaseConfig struct {
	Type           string        `mapstructure:"type"`
	URL            string        `mapstructure:"url"`
	Host           string        `mapstructure:"host"`
	Port           int           `mapstructure:"port"`
	Name           string        `mapstructure:"name"`
	User           string        `mapstructure:"user"`
	Password       string        `mapstructure:"password"`
	SSLMode        string        `mapstructure:"sslmode"`
	ConnectTimeout time.Duration `mapstructure:"connect_timeout"`
	QueryLog       bool          `mapstructure:"query_log"`
	SlowQuery      time.Duration `mapstructure:"slow_query"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

var configNames = []string{"relmodel.yaml", "relmodel.yml"}

// LoadConfig resolves configuration with precedence
// flags > env > config file > defaults. Flags are bound to v by the caller.
func LoadConfig(v *viper.Viper, explicitPath string) (*Config, string, error) {
	setDefaults(v)

	v.SetEnvPrefix("RELMODEL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	path, err := findConfigFile(explicitPath)
	if err != nil {
		return nil, "", err
	}
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, path, fmt.Errorf("reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, path, fmt.Errorf("unmarshaling config: %w", err)
	}
	return &cfg, path, nil
}

func setDefaults(v *viper.Viper) {
	def := database.DefaultConnectionConfig()
	v.SetDefault("database.type", def.Type)
	v.SetDefault("database.url", "")
	v.SetDefault("database.host", def.Host)
	v.SetDefault("database.port", def.Port)
	v.SetDefault("database.name", "")
	v.SetDefault("database.user", "")
	v.SetDefault("database.password", "")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.connect_timeout", def.ConnectTimeout)
	v.SetDefault("database.query_log", false)
	v.SetDefault("database.slow_query", def.SlowQueryTime)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
}

func findConfigFile(explicitPath string) (string, error) {
	if explicitPath != "" {
		if _, err := os.Stat(explicitPath); err != nil {
			return "", fmt.Errorf("config file not found: %s", explicitPath)
		}
		return explicitPath, nil
	}
	cwd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("getting cwd: %w", err)
	}
	for _, name := range configNames {
		path := filepath.Join(cwd, name)
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}
	}
	return "", nil
}

// Connection maps the CLI settings onto a database config. Periodic health
// checks are off for one-shot commands.
func (c *Config) Connection() *database.Config {
	conn := database.DefaultConnectionConfig()
	db := c.Database
	conn.Type = db.Type
	conn.DSN = db.URL
	conn.Host = db.Host
	conn.Port = db.Port
	conn.DBName = db.Name
	conn.Username = db.User
	conn.Password = db.Password
	conn.SSLMode = db.SSLMode
	if db.ConnectTimeout > 0 {
		conn.ConnectTimeout = db.ConnectTimeout
	}
	conn.EnableQueryLog = db.QueryLog
	conn.SlowQueryTime = db.SlowQuery
	conn.HealthCheckInterval = 0
	conn.EnableReconnect = false
	return &database.Config{ConnectionConfig: *conn}
}
