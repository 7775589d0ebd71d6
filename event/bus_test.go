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

package event_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/wrenkit/wren/event"
	"github.com/wrenkit/wren/types"
)

func TestDispatcherDeliveryOrder(t *testing.T) {
	d := event.NewDispatcher()
	var order []string
	d.Subscribe("user.entity.created", func(topic string, payload interface{}) {
		order = append(order, "first")
	})
	d.Subscribe("user.entity.created", func(topic string, payload interface{}) {
		order = append(order, "second")
	})

	d.Emit("user.entity.created", nil)
	assert.Equal(t, []string{"first", "second"}, order)
}

func TestDispatcherTopicIsolation(t *testing.T) {
	d := event.NewDispatcher()
	var hits int
	d.Subscribe("user.entity.created", func(string, interface{}) { hits++ })

	d.Emit("user.entity.updated", nil)
	assert.Zero(t, hits)

	d.Emit("user.entity.created", "payload")
	assert.Equal(t, 1, hits)
}

func TestDispatcherPanicIsolation(t *testing.T) {
	d := event.NewDispatcher()
	var after bool
	d.Subscribe("t", func(string, interface{}) { panic("boom") })
	d.Subscribe("t", func(string, interface{}) { after = true })

	assert.NotPanics(t, func() { d.Emit("t", nil) })
	assert.True(t, after, "handlers after a panicking one still run")
}

func TestDispatcherNilHandler(t *testing.T) {
	d := event.NewDispatcher()
	d.Subscribe("t", nil)
	assert.NotPanics(t, func() { d.Emit("t", nil) })
}

func TestNopBus(t *testing.T) {
	assert.NotPanics(t, func() { event.NewNopBus().Emit("anything", 1) })
}

func TestTopic(t *testing.T) {
	assert.Equal(t, "user.entity.created", event.Topic("user", event.ActionCreated))
	assert.Equal(t, "order.entity.permanently_deleted", event.Topic("order", event.ActionPermanentlyDeleted))
}

func TestActionEnum(t *testing.T) {
	cases := []struct {
		action event.Action
		name   string
	}{
		{event.ActionCreated, "created"},
		{event.ActionUpdated, "updated"},
		{event.ActionDeleted, "deleted"},
		{event.ActionRestored, "restored"},
		{event.ActionPermanentlyDeleted, "permanently_deleted"},
	}
	for _, c := range cases {
		assert.True(t, c.action.IsValid())
		assert.Equal(t, c.name, c.action.Name())
		assert.Equal(t, int(c.action), c.action.Number())
	}

	bad := event.Action(99)
	assert.False(t, bad.IsValid())
	assert.Equal(t, types.IllegalValue, bad.Number())
	assert.Equal(t, types.IllegalName, bad.Name())
	assert.Equal(t, types.IllegalDesc, bad.Desc())
}
