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
	"io"
	"os"
	"reflect"
	"strings"
	"sync/atomic"
	"time"

	"github.com/fatih/color"
	"github.com/uptrace/bun"
)

var bunSqlSilentMode atomic.Bool

// EnableBunSqlSilent mutes QueryHook and SlowQueryHook output.
func EnableBunSqlSilent(b bool) {
	bunSqlSilentMode.Store(b)
}

var operationColors = map[string]*color.Color{
	"SELECT": color.New(color.FgGreen),
	"INSERT": color.New(color.FgBlue),
	"UPDATE": color.New(color.FgYellow),
	"DELETE": color.New(color.FgMagenta),
}

var operationBackgrounds = map[string]*color.Color{
	"SELECT": color.New(color.BgGreen, color.FgHiWhite),
	"INSERT": color.New(color.BgBlue, color.FgHiWhite),
	"UPDATE": color.New(color.BgYellow, color.FgHiWhite),
	"DELETE": color.New(color.BgMagenta, color.FgHiWhite),
}

// QueryHook prints failed statements, or every statement in verbose mode.
// The environment variable named by WithQueryHookEnv overrides both
// switches: "0" or empty disables, "1" enables, "2" enables verbose.
type QueryHook struct {
	envName string
	enabled bool
	verbose bool
	writer  io.Writer
}

type QueryHookOption func(*QueryHook)

func WithQueryHookEnv(name string) QueryHookOption {
	return func(h *QueryHook) { h.envName = name }
}

func WithQueryHookVerbose(verbose bool) QueryHookOption {
	return func(h *QueryHook) { h.verbose = verbose }
}

// NewQueryHook returns an enabled hook writing to w.
func NewQueryHook(w io.Writer, opts ...QueryHookOption) *QueryHook {
	if w == nil {
		w = os.Stdout
	}
	h := &QueryHook{enabled: true, writer: w}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

var _ bun.QueryHook = (*QueryHook)(nil)

func (h *QueryHook) BeforeQuery(ctx context.Context, event *bun.QueryEvent) context.Context {
	return ctx
}

func (h *QueryHook) AfterQuery(ctx context.Context, event *bun.QueryEvent) {
	if bunSqlSilentMode.Load() {
		return
	}
	enabled := h.enabled
	verbose := h.verbose
	if h.envName != "" {
		if env, ok := os.LookupEnv(h.envName); ok {
			enabled = env != "" && env != "0"
			verbose = env == "2"
		}
	}

	if !enabled {
		return
	}

	if !verbose {
		switch {
		case event.Err == nil, errors.Is(event.Err, sql.ErrNoRows), errors.Is(event.Err, sql.ErrTxDone):
			return
		}
	}

	now := time.Now()
	dur := now.Sub(event.StartTime)

	args := []interface{}{
		now.Format("2006-01-02 15:04:05.000"),
		color.CyanString("%12s", "[BUN]"),
		fmt.Sprintf("%17s", dur.Round(time.Microsecond)),
		"  ", colorizeQuery(event, operationColors, color.New(color.FgRed)),
	}

	if event.Err != nil {
		typ := reflect.TypeOf(event.Err).String()
		args = append(args,
			"\t",
			color.New(color.BgRed).Sprintf(" %s ", typ+": "+event.Err.Error()),
		)
	}
	_, _ = fmt.Fprintln(h.writer, args...)
}

func colorizeQuery(event *bun.QueryEvent, palette map[string]*color.Color, fallback *color.Color) string {
	if c, ok := palette[event.Operation()]; ok {
		return c.Sprint(event.Query)
	}
	return fallback.Sprint(event.Query)
}

// SlowQueryHook reports successful statements that ran longer than the
// threshold. With a logger it logs a warning, otherwise it prints to its
// writer.
type SlowQueryHook struct {
	fromEnv  string
	enabled  bool
	slowTime time.Duration
	writer   io.Writer
	logger   Logger
}

type SlowQueryHookOption func(*SlowQueryHook)

// WithSlowQueryEnv names a variable that enables the hook when set to "1"
// and disables it otherwise.
func WithSlowQueryEnv(name string) SlowQueryHookOption {
	return func(h *SlowQueryHook) { h.fromEnv = name }
}

func WithSlowQueryLogger(logger Logger) SlowQueryHookOption {
	return func(h *SlowQueryHook) { h.logger = logger }
}

func WithSlowQueryWriter(w io.Writer) SlowQueryHookOption {
	return func(h *SlowQueryHook) { h.writer = w }
}

func NewSlowQueryHook(threshold time.Duration, opts ...SlowQueryHookOption) *SlowQueryHook {
	h := &SlowQueryHook{enabled: true, slowTime: threshold, writer: os.Stdout}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

var _ bun.QueryHook = (*SlowQueryHook)(nil)

func (h *SlowQueryHook) BeforeQuery(ctx context.Context, event *bun.QueryEvent) context.Context {
	return ctx
}

func (h *SlowQueryHook) AfterQuery(ctx context.Context, event *bun.QueryEvent) {
	if bunSqlSilentMode.Load() {
		return
	}
	if event.Err != nil {
		return
	}
	enabled := h.enabled

	if h.fromEnv != "" {
		if env, ok := os.LookupEnv(h.fromEnv); ok {
			enabled = strings.TrimSpace(env) == "1"
		}
	}

	if !enabled {
		return
	}

	duration := time.Since(event.StartTime)
	if duration <= h.slowTime {
		return
	}
	if h.logger != nil {
		h.logger.Warn("Database slow query detected",
			"duration", duration,
			"slow_threshold", h.slowTime,
			"query", event.Query,
		)
		return
	}
	args := []interface{}{
		time.Now().Format("2006-01-02 15:04:05.000"),
		color.YellowString("%12s", "[BUN_SLOW]"),
		fmt.Sprintf("%17s", duration.Round(time.Microsecond)),
		"  ", colorizeQuery(event, operationBackgrounds, color.New(color.BgRed, color.FgHiWhite)),
	}
	_, _ = fmt.Fprintln(h.writer, args...)
}
