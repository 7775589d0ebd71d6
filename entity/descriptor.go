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

package entity

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/wrenkit/wren/types"
)

// Mappable is the entity capability set: anything that can serialize itself
// into a generic key-value map.
type Mappable interface {
	ToMap() types.JsonObject
}

type accessor[T any] struct {
	name string // convention name, e.g. "getTitle" or "isActive"
	key  string // derived map key, e.g. "title" or "active"
	kind Kind
	get  func(*T) interface{}
}

// Descriptor is an explicit per-entity-type field table: an ordered list of
// accessors and a set of mutators, both registered under accessor/mutator
// convention names. It replaces runtime method discovery with declared,
// testable data while keeping the convention semantics: accessor names must
// begin with "get" or "is" and map keys are derived by stripping the prefix
// and lower-casing the first character; hydration resolves mutators by
// trying "set"+Key first, then "setIs"+Key.
//
// A Descriptor is built once per entity type and is safe for concurrent use
// after construction.
type Descriptor[T any] struct {
	accessors []accessor[T]
	mutators  map[string]func(*T, interface{})
}

// NewDescriptor returns an empty descriptor table for entity type T.
func NewDescriptor[T any]() *Descriptor[T] {
	return &Descriptor[T]{
		mutators: make(map[string]func(*T, interface{})),
	}
}

// Accessor registers a getter under its convention name. Names that do not
// begin with "get" or "is" are not eligible and are dropped, mirroring the
// accessor eligibility filter of the serialization contract.
func (d *Descriptor[T]) Accessor(name string, kind Kind, get func(*T) interface{}) *Descriptor[T] {
	key, ok := KeyForAccessor(name)
	if !ok {
		return d
	}
	d.accessors = append(d.accessors, accessor[T]{name: name, key: key, kind: kind, get: get})
	return d
}

// Mutator registers a setter under its convention name. Names that do not
// begin with "set" are not eligible and are dropped.
func (d *Descriptor[T]) Mutator(name string, set func(*T, interface{})) *Descriptor[T] {
	if !strings.HasPrefix(name, "set") || len(name) == len("set") {
		return d
	}
	d.mutators[name] = set
	return d
}

// Keys returns the serialized map keys in accessor declaration order.
func (d *Descriptor[T]) Keys() []string {
	keys := make([]string, len(d.accessors))
	for i, a := range d.accessors {
		keys[i] = a.key
	}
	return keys
}

// ToMap serializes the entity by invoking every registered accessor. Each
// accessor contributes exactly one entry keyed by its derived name. The
// receiver entity is not modified.
func (d *Descriptor[T]) ToMap(e *T) types.JsonObject {
	m := make(types.JsonObject, len(d.accessors))
	for _, a := range d.accessors {
		m[a.key] = a.get(e)
	}
	return m
}

// ToText serializes the entity to JSON text. Non-ASCII characters are kept
// unescaped. The result round-trips through FromText.
func (d *Descriptor[T]) ToText(e *T) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(d.ToMap(e)); err != nil {
		return "", err
	}
	return strings.TrimRight(buf.String(), "\n"), nil
}

// FromMap hydrates the entity in place from a key-value map. For each key
// the mutator "set"+UpperFirst(key) is preferred, then "setIs"+UpperFirst(key);
// keys with no matching mutator are skipped without error. Returns the same
// entity to allow chaining.
func (d *Descriptor[T]) FromMap(e *T, m types.JsonObject) *T {
	for key, value := range m {
		if set, ok := d.mutators[SetterName(key)]; ok {
			set(e, value)
			continue
		}
		if set, ok := d.mutators[IsSetterName(key)]; ok {
			set(e, value)
		}
	}
	return e
}

// FromEntity hydrates the entity from another entity's serialized map.
// The source must expose the Mappable capability, otherwise ErrInvalidInput
// is returned.
func (d *Descriptor[T]) FromEntity(e *T, src interface{}) (*T, error) {
	mappable, ok := src.(Mappable)
	if !ok {
		return nil, fmt.Errorf("%w: source %T cannot serialize to map", ErrInvalidInput, src)
	}
	return d.FromMap(e, mappable.ToMap()), nil
}

// FromText hydrates the entity from JSON text. Malformed text degrades to an
// empty map: the entity is returned unmodified and no error is surfaced.
func (d *Descriptor[T]) FromText(e *T, text string) *T {
	var m types.JsonObject
	if err := json.Unmarshal([]byte(text), &m); err != nil || m == nil {
		m = types.JsonObject{}
	}
	return d.FromMap(e, m)
}

// KeyForAccessor derives the serialized map key from an accessor convention
// name: the "get" or "is" prefix is stripped and the first remaining
// character is lower-cased ("getTitle" -> "title", "isActive" -> "active").
// Reports false for ineligible names.
func KeyForAccessor(name string) (string, bool) {
	switch {
	case strings.HasPrefix(name, "get") && len(name) > len("get"):
		return lowerFirst(name[len("get"):]), true
	case strings.HasPrefix(name, "is") && len(name) > len("is"):
		return lowerFirst(name[len("is"):]), true
	default:
		return "", false
	}
}

// SetterName derives the primary mutator candidate for a map key
// ("active" -> "setActive").
func SetterName(key string) string {
	return "set" + upperFirst(key)
}

// IsSetterName derives the fallback mutator candidate for a map key
// ("active" -> "setIsActive").
func IsSetterName(key string) string {
	return "setIs" + upperFirst(key)
}

func lowerFirst(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToLower(r)) + s[size:]
}

func upperFirst(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}
