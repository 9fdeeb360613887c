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
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/tomoncle/relmodel/database"
	"github.com/tomoncle/relmodel/utils"
)

var (
	cfg     *Config
	cfgFile string
	table   string
)

var rootCmd = &cobra.Command{
	Use:   "relmodel",
	Short: "Relation-aware queries over PostgreSQL",
	Long: `relmodel - relation-aware queries over PostgreSQL

relmodel compiles list requests that embed related rows as JSON into a
single SELECT plus COUNT, prints the SQL, or runs it against a database.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Name() == "help" || cmd.Name() == "completion" {
			return nil
		}
		v := viper.New()
		if err := bindFlags(v, cmd); err != nil {
			return err
		}
		var err error
		cfg, _, err = LoadConfig(v, cfgFile)
		if err != nil {
			return fmt.Errorf("loading configuration: %w", err)
		}
		utils.ConfigureConsoleLogFormat(cfg.Log.Format)
		utils.ConfigureLogLevel(cfg.Log.Level)
		database.EnableBunSqlSilent(!cfg.Database.QueryLog)
		return nil
	},
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&cfgFile, "config", "", "config file (default: ./relmodel.yaml)")
	pf.String("db", "", "database URL")
	pf.String("db-type", "", "connection type: postgres or pgx")
	pf.Bool("query-log", false, "print every statement")
	pf.String("log-level", "", "log level")

	rootCmd.AddCommand(renderCmd, listCmd, getCmd, pingCmd)
}

// bindFlags maps persistent flags onto configuration keys.
func bindFlags(v *viper.Viper, cmd *cobra.Command) error {
	flags := cmd.Flags()
	for key, name := range map[string]string{
		"database.url":       "db",
		"database.type":      "db-type",
		"database.query_log": "query-log",
		"log.level":          "log-level",
	} {
		if f := flags.Lookup(name); f != nil {
			if err := v.BindPFlag(key, f); err != nil {
				return err
			}
		}
	}
	return nil
}

var errUnhealthy = errors.New("database is unhealthy")

func requireTable() error {
	if table == "" {
		return errors.New("--table is required")
	}
	return nil
}

// describe appends the store error kind, when known, to err's message.
func describe(err error) string {
	if is, kind := database.IsSqlError(err); is && kind != database.UnknownErr {
		return fmt.Sprintf("%v [%s]", err, kind)
	}
	return err.Error()
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", describe(err))
		os.Exit(1)
	}
}
