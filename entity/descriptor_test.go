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
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wrenkit/wren/entity"
	"github.com/wrenkit/wren/types"
)

type article struct {
	entity.Base

	Title  string
	Views  int64
	Active bool
}

var articleFields = newArticleDescriptor()

func newArticleDescriptor() *entity.Descriptor[article] {
	d := entity.NewDescriptor[article]()
	entity.WithBase(d, func(a *article) *entity.Base { return &a.Base })
	d.Accessor("getTitle", entity.KindString, func(a *article) interface{} { return a.Title })
	d.Accessor("getViews", entity.KindInt, func(a *article) interface{} { return a.Views })
	d.Accessor("isActive", entity.KindBool, func(a *article) interface{} { return a.Active })
	d.Mutator("setTitle", func(a *article, v interface{}) { a.Title = entity.AsString(v) })
	d.Mutator("setViews", func(a *article, v interface{}) { a.Views = entity.AsInt64(v) })
	d.Mutator("setIsActive", func(a *article, v interface{}) { a.Active = entity.AsBool(v) })
	return d
}

// ToMap satisfies entity.Mappable for hydration-from-entity tests.
func (a *article) ToMap() types.JsonObject {
	return articleFields.ToMap(a)
}

func TestKeyForAccessor(t *testing.T) {
	cases := []struct {
		name string
		key  string
		ok   bool
	}{
		{"getTitle", "title", true},
		{"getFooBar", "fooBar", true},
		{"isActive", "active", true},
		{"isEnabled", "enabled", true},
		{"get", "", false},
		{"is", "", false},
		{"title", "", false},
		{"setTitle", "", false},
	}
	for _, c := range cases {
		key, ok := entity.KeyForAccessor(c.name)
		assert.Equal(t, c.ok, ok, c.name)
		assert.Equal(t, c.key, key, c.name)
	}
}

func TestSetterNames(t *testing.T) {
	assert.Equal(t, "setActive", entity.SetterName("active"))
	assert.Equal(t, "setIsActive", entity.IsSetterName("active"))
	assert.Equal(t, "setFooBar", entity.SetterName("fooBar"))
}

func TestToMap(t *testing.T) {
	a := &article{Title: "Hi", Active: true, Views: 7}
	m := articleFields.ToMap(a)

	assert.Equal(t, "Hi", m["title"])
	assert.Equal(t, true, m["active"])
	assert.Equal(t, int64(7), m["views"])
	// universal fields of an unpersisted entity
	assert.Nil(t, m["id"])
	assert.Equal(t, "", m["createdAt"])
	assert.Equal(t, "", m["updatedAt"])
	assert.Len(t, m, 6)
}

func TestToMapDoesNotMutate(t *testing.T) {
	a := &article{Title: "Hi"}
	before := *a
	_ = articleFields.ToMap(a)
	assert.Equal(t, before, *a)
}

func TestFromMap(t *testing.T) {
	a := articleFields.FromMap(new(article), types.JsonObject{
		"title":  "Bye",
		"active": false,
		"views":  float64(3), // JSON numbers decode as float64
	})
	assert.Equal(t, "Bye", a.Title)
	assert.False(t, a.Active)
	assert.Equal(t, int64(3), a.Views)
}

func TestFromMapSetterPriority(t *testing.T) {
	type toggle struct {
		viaSet   bool
		viaSetIs bool
	}
	d := entity.NewDescriptor[toggle]()
	d.Mutator("setEnabled", func(e *toggle, v interface{}) { e.viaSet = true })
	d.Mutator("setIsEnabled", func(e *toggle, v interface{}) { e.viaSetIs = true })

	e := d.FromMap(new(toggle), types.JsonObject{"enabled": true})
	assert.True(t, e.viaSet)
	assert.False(t, e.viaSetIs, "setEnabled must shadow setIsEnabled")

	// with only the is-form present, fall back to it
	d2 := entity.NewDescriptor[toggle]()
	d2.Mutator("setIsEnabled", func(e *toggle, v interface{}) { e.viaSetIs = true })
	e2 := d2.FromMap(new(toggle), types.JsonObject{"enabled": true})
	assert.True(t, e2.viaSetIs)
}

func TestFromMapUnknownKeysIgnored(t *testing.T) {
	a := &article{Title: "Hi", Active: true}
	articleFields.FromMap(a, types.JsonObject{"unknownField": 5})
	assert.Equal(t, "Hi", a.Title)
	assert.True(t, a.Active)
}

func TestFromMapIdempotent(t *testing.T) {
	m := types.JsonObject{"title": "Twice", "active": true, "views": 9}
	once := articleFields.FromMap(new(article), m)
	twice := articleFields.FromMap(articleFields.FromMap(new(article), m), m)
	assert.Equal(t, *once, *twice)
}

func TestFromMapChaining(t *testing.T) {
	a := new(article)
	got := articleFields.FromMap(a, types.JsonObject{"title": "x"})
	assert.Same(t, a, got)
}

func TestMapRoundTrip(t *testing.T) {
	src := &article{Title: "Round", Views: 42, Active: true}
	src.ID = 11

	dst := articleFields.FromMap(new(article), articleFields.ToMap(src))
	assert.Equal(t, src.Title, dst.Title)
	assert.Equal(t, src.Views, dst.Views)
	assert.Equal(t, src.Active, dst.Active)
	assert.Equal(t, src.ID, dst.ID)
}

func TestFromEntity(t *testing.T) {
	src := &article{Title: "Clone", Views: 5, Active: true}
	dst, err := articleFields.FromEntity(new(article), src)
	require.NoError(t, err)
	assert.Equal(t, "Clone", dst.Title)
	assert.Equal(t, int64(5), dst.Views)
	assert.True(t, dst.Active)
}

func TestFromEntityInvalidInput(t *testing.T) {
	_, err := articleFields.FromEntity(new(article), struct{ X int }{1})
	require.Error(t, err)
	assert.ErrorIs(t, err, entity.ErrInvalidInput)
}

func TestToTextPreservesUnicode(t *testing.T) {
	a := &article{Title: "héllo 世界", Active: true}
	text, err := articleFields.ToText(a)
	require.NoError(t, err)
	assert.True(t, strings.Contains(text, "héllo 世界"), "unicode must stay unescaped: %s", text)
}

func TestTextRoundTrip(t *testing.T) {
	src := &article{Title: "Röund ✓", Views: 3, Active: true}
	text, err := articleFields.ToText(src)
	require.NoError(t, err)

	fromText := articleFields.FromText(new(article), text)
	fromMap := articleFields.FromMap(new(article), articleFields.ToMap(src))
	assert.Equal(t, *fromMap, *fromText)
}

func TestFromTextMalformed(t *testing.T) {
	a := &article{Title: "Keep", Views: 1, Active: true}
	got := articleFields.FromText(a, "{not json")
	assert.Same(t, a, got)
	assert.Equal(t, "Keep", a.Title)
	assert.Equal(t, int64(1), a.Views)
	assert.True(t, a.Active)

	blank := articleFields.FromText(new(article), "][")
	assert.Equal(t, article{}, *blank)
}

func TestIneligibleDescriptorEntriesDropped(t *testing.T) {
	d := entity.NewDescriptor[article]()
	d.Accessor("title", entity.KindString, func(a *article) interface{} { return a.Title })
	d.Accessor("fetchTitle", entity.KindString, func(a *article) interface{} { return a.Title })
	d.Mutator("assignTitle", func(a *article, v interface{}) { a.Title = entity.AsString(v) })

	assert.Empty(t, d.Keys())
	a := d.FromMap(new(article), types.JsonObject{"title": "x"})
	assert.Equal(t, "", a.Title)
}

func TestKeysOrder(t *testing.T) {
	keys := articleFields.Keys()
	assert.Equal(t, []string{"id", "createdAt", "updatedAt", "title", "views", "active"}, keys)
}
