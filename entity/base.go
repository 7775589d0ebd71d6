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
	"context"
	"time"

	"github.com/uptrace/bun"
)

// Base carries the three universal entity fields (identifier, creation and
// update timestamps) plus the soft-delete column. Embed it in concrete
// entities next to bun.BaseModel and register its fields on the entity's
// descriptor via WithBase.
type Base struct {
	ID        int64     `bun:"id,pk,autoincrement" json:"id"`
	CreatedAt time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp" json:"created_at"`
	UpdatedAt time.Time `bun:"updated_at,nullzero,notnull,default:current_timestamp" json:"updated_at"`
	DeletedAt time.Time `bun:"deleted_at,soft_delete,nullzero" json:"deleted_at,omitempty"`
}

// Identifier returns the id, or nil while the entity is unsaved.
func (b *Base) Identifier() interface{} {
	if b.ID == 0 {
		return nil
	}
	return b.ID
}

// SetIdentifier assigns the id from an integer or numeric string value.
func (b *Base) SetIdentifier(v interface{}) {
	b.ID = AsInt64(v)
}

// CreatedText returns the creation timestamp as RFC3339 text, or "" when
// the entity has never been persisted.
func (b *Base) CreatedText() string {
	if b.CreatedAt.IsZero() {
		return ""
	}
	return b.CreatedAt.Format(time.RFC3339)
}

// SetCreatedText assigns the creation timestamp from RFC3339 text.
func (b *Base) SetCreatedText(v interface{}) {
	b.CreatedAt = AsTime(v)
}

// UpdatedText returns the update timestamp as RFC3339 text, or "".
func (b *Base) UpdatedText() string {
	if b.UpdatedAt.IsZero() {
		return ""
	}
	return b.UpdatedAt.Format(time.RFC3339)
}

// SetUpdatedText assigns the update timestamp from RFC3339 text.
func (b *Base) SetUpdatedText(v interface{}) {
	b.UpdatedAt = AsTime(v)
}

var _ bun.BeforeAppendModelHook = (*Base)(nil)

// BeforeAppendModel maintains the universal timestamps: inserts stamp both
// timestamps when unset, updates refresh the update timestamp.
func (b *Base) BeforeAppendModel(ctx context.Context, query bun.Query) error {
	switch query.(type) {
	case *bun.InsertQuery:
		now := time.Now()
		if b.CreatedAt.IsZero() {
			b.CreatedAt = now
		}
		if b.UpdatedAt.IsZero() {
			b.UpdatedAt = now
		}
	case *bun.UpdateQuery:
		b.UpdatedAt = time.Now()
	}
	return nil
}

// Trashed reports whether the entity is soft-deleted.
func (b *Base) Trashed() bool {
	return !b.DeletedAt.IsZero()
}

// WithBase registers the universal field accessors and mutators on the
// descriptor. The base function extracts the embedded Base from an entity
// instance (typically func(e *T) *entity.Base { return &e.Base }).
func WithBase[T any](d *Descriptor[T], base func(*T) *Base) *Descriptor[T] {
	d.Accessor("getId", KindAny, func(e *T) interface{} { return base(e).Identifier() })
	d.Accessor("getCreatedAt", KindTime, func(e *T) interface{} { return base(e).CreatedText() })
	d.Accessor("getUpdatedAt", KindTime, func(e *T) interface{} { return base(e).UpdatedText() })
	d.Mutator("setId", func(e *T, v interface{}) { base(e).SetIdentifier(v) })
	d.Mutator("setCreatedAt", func(e *T, v interface{}) { base(e).SetCreatedText(v) })
	d.Mutator("setUpdatedAt", func(e *T, v interface{}) { base(e).SetUpdatedText(v) })
	return d
}
