/*
 * Copyright 2025 the wren authors.
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

package utils

import (
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var ansiEscapes = regexp.MustCompile(`\x1b\[[0-9;]*m`)

func stripANSI(s string) string {
	return ansiEscapes.ReplaceAllString(s, "")
}

func TestNewLoggerReturnsSameInstance(t *testing.T) {
	a := NewLogger("TEST_REUSE")
	b := NewLogger("TEST_REUSE")
	assert.Same(t, a, b)
}

func TestSetLoggerLevel(t *testing.T) {
	l := NewLogger("TEST_LEVEL")
	require.True(t, SetLoggerLevel("TEST_LEVEL", "debug"))
	assert.Equal(t, logrus.DebugLevel, l.GetLevel())

	assert.False(t, SetLoggerLevel("NEVER_REGISTERED", "debug"))
}

func TestParseLogLevel(t *testing.T) {
	assert.Equal(t, logrus.WarnLevel, ParseLogLevel("WARN"))
	assert.Equal(t, logrus.DebugLevel, ParseLogLevel(" debug "))
	assert.Equal(t, logrus.InfoLevel, ParseLogLevel("junk"))
}

func TestConsoleColorFormatter(t *testing.T) {
	f := &ConsoleColorFormatter{Name: "FMT"}
	entry := &logrus.Entry{
		Logger:  logrus.New(),
		Time:    time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC),
		Level:   logrus.InfoLevel,
		Message: "hello",
		Data:    logrus.Fields{"b": 2, "a": 1},
	}
	out, err := f.Format(entry)
	require.NoError(t, err)
	raw := string(out)
	line := stripANSI(raw)

	assert.Contains(t, line, "[FMT]")
	assert.Contains(t, line, "hello")
	assert.Contains(t, line, "INFO")
	idxA, idxB := strings.Index(line, "a=1"), strings.Index(line, "b=2")
	require.NotEqual(t, -1, idxA)
	require.NotEqual(t, -1, idxB)
	assert.Less(t, idxA, idxB, "fields render in key order")
	assert.True(t, strings.HasSuffix(raw, "\n"))
	assert.Contains(t, raw, "\x1b[", "levels and keys are ANSI colored")
}

func TestEnvDefaults(t *testing.T) {
	t.Setenv("WREN_TEST_STR", "value")
	assert.Equal(t, "value", EnvDefaultString("WREN_TEST_STR", "def"))
	assert.Equal(t, "def", EnvDefaultString("WREN_TEST_STR_UNSET", "def"))

	t.Setenv("WREN_TEST_BOOL", "yes")
	assert.True(t, EnvDefaultBool("WREN_TEST_BOOL", false))
	t.Setenv("WREN_TEST_BOOL", "off")
	assert.False(t, EnvDefaultBool("WREN_TEST_BOOL", true))
	t.Setenv("WREN_TEST_BOOL", "maybe")
	assert.True(t, EnvDefaultBool("WREN_TEST_BOOL", true))
	assert.False(t, EnvDefaultBool("WREN_TEST_BOOL_UNSET", false))
}
