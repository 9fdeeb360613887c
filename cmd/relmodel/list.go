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
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tomoncle/relmodel"
	"github.com/tomoncle/relmodel/database"
)

var listCmd = &cobra.Command{
	Use:     "list [request.yaml]",
	Short:   "Run a request and print the page as JSON",
	Example: `  relmodel list --table posts --db postgres://localhost/blog request.yaml`,
	Args:    cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireTable(); err != nil {
			return err
		}
		req, err := loadRequest(args)
		if err != nil {
			return err
		}
		ctx := cmd.Context()
		if err := connect(ctx); err != nil {
			return err
		}
		defer func() { _ = database.CloseDB() }()

		res, err := relmodel.NewService(table).Paginate(ctx, req)
		if err != nil {
			return err
		}
		return printJSON(cmd.OutOrStdout(), res)
	},
}

var getCmd = &cobra.Command{
	Use:   "get [request.yaml]",
	Short: "Run a single-row request and print the row as JSON",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireTable(); err != nil {
			return err
		}
		req, err := loadRequest(args)
		if err != nil {
			return err
		}
		ctx := cmd.Context()
		if err := connect(ctx); err != nil {
			return err
		}
		defer func() { _ = database.CloseDB() }()

		row, err := relmodel.NewService(table).Get(ctx, req)
		if err != nil {
			return err
		}
		return printJSON(cmd.OutOrStdout(), row)
	},
}

func init() {
	listCmd.Flags().StringVarP(&table, "table", "t", "", "owner table")
	getCmd.Flags().StringVarP(&table, "table", "t", "", "owner table")
}

func connect(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if _, err := database.InitDBContext(ctx, cfg.Connection()); err != nil {
		return fmt.Errorf("connecting to database: %w", err)
	}
	return nil
}
