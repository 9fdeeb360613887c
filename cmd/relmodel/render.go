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
	"database/sql"
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"

	"github.com/tomoncle/relmodel/repository"
	"github.com/tomoncle/relmodel/types"
)

var renderCmd = &cobra.Command{
	Use:   "render [request.yaml]",
	Short: "Print the SELECT and COUNT statements for a request",
	Example: `  # Compile a request file without touching the database
  relmodel render --table posts request.yaml`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireTable(); err != nil {
			return err
		}
		req, err := loadRequest(args)
		if err != nil {
			return err
		}
		return runRender(cmd.OutOrStdout(), table, req)
	},
}

func init() {
	renderCmd.Flags().StringVarP(&table, "table", "t", "", "owner table")
}

func runRender(w io.Writer, table string, req *types.Request) error {
	// Compiling needs the dialect only; the handle is never used.
	sqldb, err := sql.Open("postgres", "")
	if err != nil {
		return err
	}
	db := bun.NewDB(sqldb, pgdialect.New())
	defer func() { _ = db.Close() }()

	m, err := repository.New(db, table)
	if err != nil {
		return err
	}
	selectSQL, countSQL, err := m.Compile(req)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "%s;\n\n%s;\n", selectSQL, countSQL)
	return err
}

// loadRequest reads the optional request file argument.
func loadRequest(args []string) (*types.Request, error) {
	if len(args) == 0 {
		return &types.Request{}, nil
	}
	spec, err := types.LoadRequestSpec(args[0])
	if err != nil {
		return nil, err
	}
	return spec.Build(table)
}

func printJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
