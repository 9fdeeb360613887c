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
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/tomoncle/relmodel/utils"
)

// Logger is the logging surface used by the manager and hooks. Fields are
// alternating key/value pairs.
type Logger interface {
	Debug(msg string, fields ...interface{})
	Info(msg string, fields ...interface{})
	Warn(msg string, fields ...interface{})
	Error(msg string, fields ...interface{})
}

var (
	packageLogger Logger
	loggerMu      sync.RWMutex
)

// SetLogger replaces the package logger; nil restores the default.
func SetLogger(l Logger) {
	loggerMu.Lock()
	defer loggerMu.Unlock()
	packageLogger = l
}

// GetLogger returns the package logger, by default the "DATABASE" logrus
// logger.
func GetLogger() Logger {
	loggerMu.RLock()
	l := packageLogger
	loggerMu.RUnlock()
	if l != nil {
		return l
	}
	loggerMu.Lock()
	defer loggerMu.Unlock()
	if packageLogger == nil {
		packageLogger = NewLogrusLogger(utils.NewLogger("DATABASE"))
	}
	return packageLogger
}

// NewLogrusLogger adapts a logrus logger or entry.
func NewLogrusLogger(l logrus.FieldLogger) Logger {
	return fieldLogger{l}
}

type fieldLogger struct{ l logrus.FieldLogger }

func (f fieldLogger) Debug(msg string, kv ...interface{}) { f.with(kv).Debug(msg) }
func (f fieldLogger) Info(msg string, kv ...interface{})  { f.with(kv).Info(msg) }
func (f fieldLogger) Warn(msg string, kv ...interface{})  { f.with(kv).Warn(msg) }
func (f fieldLogger) Error(msg string, kv ...interface{}) { f.with(kv).Error(msg) }

func (f fieldLogger) with(kv []interface{}) logrus.FieldLogger {
	if len(kv) == 0 {
		return f.l
	}
	fields := make(logrus.Fields, (len(kv)+1)/2)
	for i := 0; i+1 < len(kv); i += 2 {
		fields[fmt.Sprint(kv[i])] = kv[i+1]
	}
	if len(kv)%2 == 1 {
		fields["extra"] = kv[len(kv)-1]
	}
	return f.l.WithFields(fields)
}
