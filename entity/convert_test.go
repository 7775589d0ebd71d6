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

package entity_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/wrenkit/wren/entity"
)

func TestAsString(t *testing.T) {
	assert.Equal(t, "x", entity.AsString("x"))
	assert.Equal(t, "7", entity.AsString(7))
	assert.Equal(t, "", entity.AsString(nil))
}

func TestAsInt64(t *testing.T) {
	assert.Equal(t, int64(7), entity.AsInt64(7))
	assert.Equal(t, int64(7), entity.AsInt64(int64(7)))
	assert.Equal(t, int64(7), entity.AsInt64(float64(7)))
	assert.Equal(t, int64(7), entity.AsInt64("7"))
	assert.Equal(t, int64(0), entity.AsInt64("junk"))
	assert.Equal(t, int64(0), entity.AsInt64(nil))
}

func TestAsFloat64(t *testing.T) {
	assert.Equal(t, 1.5, entity.AsFloat64(1.5))
	assert.Equal(t, 7.0, entity.AsFloat64(7))
	assert.Equal(t, 1.5, entity.AsFloat64("1.5"))
	assert.Equal(t, 0.0, entity.AsFloat64(nil))
}

func TestAsBool(t *testing.T) {
	assert.True(t, entity.AsBool(true))
	assert.True(t, entity.AsBool("true"))
	assert.True(t, entity.AsBool(1))
	assert.False(t, entity.AsBool(0))
	assert.False(t, entity.AsBool(nil))
	assert.False(t, entity.AsBool("junk"))
}

func TestAsTime(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 30, 0, 0, time.UTC)
	assert.Equal(t, now, entity.AsTime(now))
	assert.Equal(t, now, entity.AsTime(now.Format(time.RFC3339)))
	assert.True(t, entity.AsTime("junk").IsZero())
	assert.True(t, entity.AsTime(nil).IsZero())
}

func TestBaseTimestampText(t *testing.T) {
	var b entity.Base
	assert.Equal(t, "", b.CreatedText())
	assert.Equal(t, "", b.UpdatedText())
	assert.Nil(t, b.Identifier())
	assert.False(t, b.Trashed())

	b.SetCreatedText("2025-06-01T12:30:00Z")
	assert.Equal(t, "2025-06-01T12:30:00Z", b.CreatedText())

	b.SetIdentifier(9)
	assert.Equal(t, int64(9), b.Identifier())

	b.DeletedAt = time.Now()
	assert.True(t, b.Trashed())
}
