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

// Package event provides the notification bus consumed by repositories:
// a topic name plus an entity payload, fire-and-forget.
package event

import (
	"sync"

	"github.com/wrenkit/wren/utils"
)

// Bus accepts a topic name and a payload. Emission is fire-and-forget; no
// return value is consumed by callers.
type Bus interface {
	Emit(topic string, payload interface{})
}

// Handler consumes a single emitted notification.
type Handler func(topic string, payload interface{})

// Dispatcher is an in-process Bus delivering notifications synchronously to
// subscribed handlers in registration order. A panicking handler is isolated
// and logged; it never propagates to the emitter.
type Dispatcher struct {
	mu       sync.RWMutex
	handlers map[string][]Handler
	logger   *utils.Logger
}

// NewDispatcher returns an empty dispatcher.
func NewDispatcher() *Dispatcher {
	return &Dispatcher{
		handlers: make(map[string][]Handler),
		logger:   utils.NewLogger("EVENT"),
	}
}

// Subscribe registers a handler for the given topic.
func (d *Dispatcher) Subscribe(topic string, handler Handler) {
	if handler == nil {
		return
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.handlers[topic] = append(d.handlers[topic], handler)
}

// Emit delivers the payload to every handler subscribed to the topic.
// Topics with no subscribers are silently dropped.
func (d *Dispatcher) Emit(topic string, payload interface{}) {
	d.mu.RLock()
	handlers := make([]Handler, len(d.handlers[topic]))
	copy(handlers, d.handlers[topic])
	d.mu.RUnlock()

	for _, handler := range handlers {
		d.deliver(topic, payload, handler)
	}
}

func (d *Dispatcher) deliver(topic string, payload interface{}, handler Handler) {
	defer func() {
		if r := recover(); r != nil {
			d.logger.Errorf("event handler panic on topic %s: %v", topic, r)
		}
	}()
	handler(topic, payload)
}

type nopBus struct{}

func (nopBus) Emit(string, interface{}) {}

// NewNopBus returns a Bus that discards every notification.
func NewNopBus() Bus {
	return nopBus{}
}
