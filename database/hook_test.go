package database

import (
	"bytes"
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/uptrace/bun"
)

type recordLogger struct {
	warnings []string
}

func (l *recordLogger) Debug(string, ...interface{})      {}
func (l *recordLogger) Info(string, ...interface{})       {}
func (l *recordLogger) Error(string, ...interface{})      {}
func (l *recordLogger) Warn(msg string, _ ...interface{}) { l.warnings = append(l.warnings, msg) }

func TestQueryHook(t *testing.T) {
	var buf bytes.Buffer
	h := NewQueryHook(&buf)
	ctx := context.Background()

	h.AfterQuery(ctx, &bun.QueryEvent{Query: `SELECT 1`, StartTime: time.Now()})
	assert.Empty(t, buf.String(), "successful statements are quiet unless verbose")

	h.AfterQuery(ctx, &bun.QueryEvent{Query: `SELECT "x"`, StartTime: time.Now(), Err: errors.New("boom")})
	assert.Contains(t, buf.String(), `SELECT "x"`)
	assert.Contains(t, buf.String(), "boom")
}

func TestQueryHookVerboseAndEnv(t *testing.T) {
	var buf bytes.Buffer
	h := NewQueryHook(&buf, WithQueryHookVerbose(true), WithQueryHookEnv("RELMODEL_TEST_BUNDEBUG"))
	ctx := context.Background()

	h.AfterQuery(ctx, &bun.QueryEvent{Query: `UPDATE "posts"`, StartTime: time.Now()})
	assert.Contains(t, buf.String(), `UPDATE "posts"`)

	buf.Reset()
	t.Setenv("RELMODEL_TEST_BUNDEBUG", "0")
	h.AfterQuery(ctx, &bun.QueryEvent{Query: `UPDATE "posts"`, StartTime: time.Now(), Err: errors.New("boom")})
	assert.Empty(t, buf.String())
}

func TestSilentModeToggledConcurrently(t *testing.T) {
	defer EnableBunSqlSilent(false)
	hook := NewSlowQueryHook(time.Hour, WithSlowQueryLogger(&recordLogger{}))

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func(on bool) {
			defer wg.Done()
			EnableBunSqlSilent(on)
		}(i%2 == 0)
		go func() {
			defer wg.Done()
			hook.AfterQuery(context.Background(), &bun.QueryEvent{Query: `SELECT 1`, StartTime: time.Now()})
		}()
	}
	wg.Wait()

	EnableBunSqlSilent(true)
	assert.True(t, bunSqlSilentMode.Load())
	EnableBunSqlSilent(false)
	assert.False(t, bunSqlSilentMode.Load())
}

func TestSlowQueryHook(t *testing.T) {
	logger := &recordLogger{}
	h := NewSlowQueryHook(10*time.Millisecond, WithSlowQueryLogger(logger))
	ctx := context.Background()

	h.AfterQuery(ctx, &bun.QueryEvent{Query: `SELECT 1`, StartTime: time.Now()})
	assert.Empty(t, logger.warnings)

	h.AfterQuery(ctx, &bun.QueryEvent{Query: `SELECT 1`, StartTime: time.Now().Add(-time.Second), Err: errors.New("x")})
	assert.Empty(t, logger.warnings, "failed statements are not reported as slow")

	h.AfterQuery(ctx, &bun.QueryEvent{Query: `SELECT 1`, StartTime: time.Now().Add(-time.Second)})
	assert.Equal(t, []string{"Database slow query detected"}, logger.warnings)

	var buf bytes.Buffer
	w := NewSlowQueryHook(time.Millisecond, WithSlowQueryWriter(&buf))
	w.AfterQuery(ctx, &bun.QueryEvent{Query: `DELETE FROM "posts"`, StartTime: time.Now().Add(-time.Second)})
	assert.Contains(t, buf.String(), `DELETE FROM "posts"`)
}

func TestSilentMode(t *testing.T) {
	EnableBunSqlSilent(true)
	defer EnableBunSqlSilent(false)

	var buf bytes.Buffer
	NewQueryHook(&buf, WithQueryHookVerbose(true)).
		AfterQuery(context.Background(), &bun.QueryEvent{Query: `SELECT 1`, StartTime: time.Now()})
	assert.Empty(t, buf.String())
}
