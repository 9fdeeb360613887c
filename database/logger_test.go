package database

import (
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogrusLoggerFields(t *testing.T) {
	base, hook := test.NewNullLogger()
	l := NewLogrusLogger(base)

	l.Warn("slow query", "table", "posts", "ms", 12)
	entry := hook.LastEntry()
	require.NotNil(t, entry)
	assert.Equal(t, logrus.WarnLevel, entry.Level)
	assert.Equal(t, "slow query", entry.Message)
	assert.Equal(t, logrus.Fields{"table": "posts", "ms": 12}, entry.Data)

	l.Error("odd", "k", "v", "dangling")
	assert.Equal(t, logrus.Fields{"k": "v", "extra": "dangling"}, hook.LastEntry().Data)
}

func TestSetLogger(t *testing.T) {
	defer SetLogger(nil)
	rec := &recordLogger{}
	SetLogger(rec)
	assert.Same(t, rec, GetLogger())

	SetLogger(nil)
	_, isRec := GetLogger().(*recordLogger)
	assert.False(t, isRec)
	assert.IsType(t, fieldLogger{}, GetLogger())
}
