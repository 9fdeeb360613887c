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
	"github.com/spf13/cobra"

	"github.com/tomoncle/relmodel"
	"github.com/tomoncle/relmodel/database"
)

var pingTables []string

var pingCmd = &cobra.Command{
	Use:   "ping",
	Short: "Check database connectivity and print pool health",
	Example: `  # Also confirm the model tables can be read
  relmodel ping --table posts --table users`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		if err := connect(ctx); err != nil {
			return err
		}
		defer func() { _ = database.CloseDB() }()

		status := relmodel.Health(ctx, pingTables...)
		if err := printJSON(cmd.OutOrStdout(), status); err != nil {
			return err
		}
		if !status.Healthy {
			return errUnhealthy
		}
		return nil
	},
}

func init() {
	pingCmd.Flags().StringSliceVarP(&pingTables, "table", "t", nil, "table that must be readable (repeatable)")
}
