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

package repository

import (
	"context"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/schema"

	"github.com/wrenkit/wren/types"
)

// CrudRepository defines basic CRUD operations for a generic entity type.
// Lookups return (nil, nil) when no row matches; they never fail on a miss.
type CrudRepository[T any] interface {
	GetOne(ctx context.Context, id any) (*T, error)

	// GetBy returns the first entity whose field (an entity map key, e.g.
	// "userId") equals value.
	GetBy(ctx context.Context, field string, value any) (*T, error)

	GetAll(ctx context.Context) ([]*T, error)

	// Where returns all entities matching the equality-condition map.
	Where(ctx context.Context, conds types.JsonObject) ([]*T, error)

	List(ctx context.Context, filter *types.QueryFilter) ([]*T, error)

	Query(ctx context.Context, query string, args ...interface{}) ([]*T, error)

	Create(ctx context.Context, entity ...*T) error

	Upsert(ctx context.Context, fields []string, duplicateKeys []string, entity ...*T) error

	// Update saves the entity by primary key and reports affected rows.
	Update(ctx context.Context, entity *T) (int64, error)

	Exists(ctx context.Context, id any) (bool, error)

	Count(ctx context.Context) (int, error)
}

// SoftDeleteRepository defines the soft-delete extension set. All operations
// report affected rows; acting on an absent id yields 0, not an error.
type SoftDeleteRepository[T any] interface {
	SoftDelete(ctx context.Context, id any) (int64, error)
	Restore(ctx context.Context, id any) (int64, error)
	ForceDelete(ctx context.Context, id any) (int64, error)
	GetTrashed(ctx context.Context, id any) (*T, error)
	OnlyTrashed(ctx context.Context) ([]*T, error)
	AllWithTrashed(ctx context.Context) ([]*T, error)
}

// BulkRepository defines set-oriented mutation and counting, either by
// equality-condition maps or by an opaque query filter.
type BulkRepository[T any] interface {
	UpdateWhere(ctx context.Context, conds types.JsonObject, values types.JsonObject) (int64, error)
	DeleteWhere(ctx context.Context, conds types.JsonObject) (int64, error)
	UpdateByFilter(ctx context.Context, filter *types.QueryFilter, values types.JsonObject) (int64, error)
	DeleteByFilter(ctx context.Context, filter *types.QueryFilter) (int64, error)
	CountByFilter(ctx context.Context, filter *types.QueryFilter) (int, error)
}

// PageQueryRepository defines pagination functionality for listing entities.
type PageQueryRepository[T any] interface {
	Page(ctx context.Context, page *types.PageRequest) (*types.Pagination[T], error)
}

// Repository combines CRUD, soft-delete, bulk, and pagination operations and
// exposes Bun query builders for advanced use cases.
type Repository[T any] interface {
	CrudRepository[T]
	SoftDeleteRepository[T]
	BulkRepository[T]
	PageQueryRepository[T]
	Dialect() schema.Dialect
	NewSelect() *bun.SelectQuery
	NewInsert() *bun.InsertQuery
	NewUpdate() *bun.UpdateQuery
	NewDelete() *bun.DeleteQuery
}
