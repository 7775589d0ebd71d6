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

// Package wren exposes the repository facade: typed entity operations over a
// Bun-backed persistence provider, with map-based create/update hydration via
// entity descriptors and lifecycle notifications on an injected event bus.
package wren

import (
	"context"
	"fmt"
	"sync"

	"github.com/uptrace/bun"

	"github.com/wrenkit/wren/database"
	"github.com/wrenkit/wren/entity"
	"github.com/wrenkit/wren/event"
	"github.com/wrenkit/wren/repository"
	"github.com/wrenkit/wren/types"
)

// Service is the repository facade for entity type T. Lookups never fail on
// a missing row (nil or empty result); mutations on absent identifiers
// report false or zero counts. State-changing single-entity operations emit
// "{prefix}.entity.{action}" notifications carrying the affected entity;
// bulk condition/filter mutations emit nothing.
type Service[T any] interface {
	// Get returns the entity by identifier, or nil when absent.
	Get(ctx context.Context, id any) (*T, error)

	// GetBy returns the first entity whose field equals value, or nil.
	GetBy(ctx context.Context, field string, value any) (*T, error)

	// Where returns entities matching the equality-condition map.
	Where(ctx context.Context, conds types.JsonObject) ([]*T, error)

	// All returns all live entities.
	All(ctx context.Context) ([]*T, error)

	// List returns entities matching an opaque query filter.
	List(ctx context.Context, filter *types.QueryFilter) ([]*T, error)

	// Page returns a paginated listing.
	Page(ctx context.Context, page *types.PageRequest) (*types.Pagination[T], error)

	// Count returns the number of live entities.
	Count(ctx context.Context) (int, error)

	// CountByFilter counts entities matching an opaque query filter.
	CountByFilter(ctx context.Context, filter *types.QueryFilter) (int, error)

	// Exists reports whether an entity with the identifier exists.
	Exists(ctx context.Context, id any) (bool, error)

	// Create inserts a new entity hydrated from the raw data map and emits
	// a created notification.
	Create(ctx context.Context, data types.JsonObject) (*T, error)

	// CreateMany applies Create to each record sequentially, one created
	// notification per record. There is no batch atomicity: a failure
	// partway leaves prior records committed; the entities created so far
	// are returned alongside the error.
	CreateMany(ctx context.Context, data []types.JsonObject) ([]*T, error)

	// Save inserts already-constructed entities, emitting a created
	// notification per entity.
	Save(ctx context.Context, model ...*T) error

	// SaveOrUpdate upserts entities based on fields and duplicate keys.
	SaveOrUpdate(ctx context.Context, fields []string, duplicateKeys []string, model ...*T) error

	// Update hydrates the stored entity with data and saves it. Reports
	// true iff the record existed; emits an updated notification.
	Update(ctx context.Context, id any, data types.JsonObject) (bool, error)

	// UpdateWhere updates columns on all entities matching the condition
	// map, returning the affected row count. No notifications.
	UpdateWhere(ctx context.Context, conds types.JsonObject, values types.JsonObject) (int64, error)

	// UpdateByFilter updates columns on entities matching an opaque query
	// filter. No notifications.
	UpdateByFilter(ctx context.Context, filter *types.QueryFilter, values types.JsonObject) (int64, error)

	// Delete soft-deletes the entity. Reports true iff the record existed;
	// emits a deleted notification.
	Delete(ctx context.Context, id any) (bool, error)

	// DeleteWhere soft-deletes all entities matching the condition map,
	// returning the affected row count. No notifications.
	DeleteWhere(ctx context.Context, conds types.JsonObject) (int64, error)

	// DeleteByFilter soft-deletes entities matching an opaque query filter.
	// No notifications.
	DeleteByFilter(ctx context.Context, filter *types.QueryFilter) (int64, error)

	// Restore undoes a soft delete and returns the restored entity with a
	// restored notification. Restoring an identifier that is absent or not
	// trashed is a no-op returning (nil, nil) and emits nothing.
	Restore(ctx context.Context, id any) (*T, error)

	// ForceDelete removes the entity permanently, trashed or not. Reports
	// true iff a row was removed; emits a permanently_deleted notification.
	ForceDelete(ctx context.Context, id any) (bool, error)

	// SelectBuilder returns a Bun select query builder for the entity.
	SelectBuilder() *bun.SelectQuery

	// InsertBuilder returns a Bun insert query builder for the entity.
	InsertBuilder() *bun.InsertQuery

	// UpdateBuilder returns a Bun update query builder for the entity.
	UpdateBuilder() *bun.UpdateQuery

	// DeleteBuilder returns a Bun delete query builder for the entity.
	DeleteBuilder() *bun.DeleteQuery
}

// Option configures a Service.
type Option func(*serviceOptions)

type serviceOptions struct {
	db     *bun.DB
	bus    event.Bus
	prefix string
}

// WithDB uses the given Bun DB instead of the global database connection.
func WithDB(db *bun.DB) Option {
	return func(o *serviceOptions) { o.db = db }
}

// WithEvents wires a notification bus and the topic prefix of the concrete
// repository ("article" emits "article.entity.created" and so on). Without
// this option no notifications are emitted.
func WithEvents(bus event.Bus, prefix string) Option {
	return func(o *serviceOptions) {
		o.bus = bus
		o.prefix = prefix
	}
}

type baseServiceImpl[T any] struct {
	descriptor *entity.Descriptor[T]
	opts       serviceOptions
	repo       repository.Repository[T]
	once       sync.Once
}

// NewService returns the default Service implementation for T. The
// descriptor drives map hydration for Create/CreateMany/Update. Without
// WithDB the service binds lazily to the global database connection.
func NewService[T any](descriptor *entity.Descriptor[T], opts ...Option) Service[T] {
	s := &baseServiceImpl[T]{descriptor: descriptor}
	for _, opt := range opts {
		opt(&s.opts)
	}
	return s
}

func (s *baseServiceImpl[T]) baseRepo() repository.Repository[T] {
	s.once.Do(func() {
		db := s.opts.db
		if db == nil {
			db = database.GetDB()
		}
		s.repo = repository.NewRepository[T](db)
	})
	return s.repo
}

func (s *baseServiceImpl[T]) emit(action event.Action, payload *T) {
	if s.opts.bus == nil || s.opts.prefix == "" {
		return
	}
	s.opts.bus.Emit(event.Topic(s.opts.prefix, action), payload)
}

func (s *baseServiceImpl[T]) Get(ctx context.Context, id any) (*T, error) {
	return s.baseRepo().GetOne(ctx, id)
}

func (s *baseServiceImpl[T]) GetBy(ctx context.Context, field string, value any) (*T, error) {
	return s.baseRepo().GetBy(ctx, field, value)
}

func (s *baseServiceImpl[T]) Where(ctx context.Context, conds types.JsonObject) ([]*T, error) {
	return s.baseRepo().Where(ctx, conds)
}

func (s *baseServiceImpl[T]) All(ctx context.Context) ([]*T, error) {
	return s.baseRepo().GetAll(ctx)
}

func (s *baseServiceImpl[T]) List(ctx context.Context, filter *types.QueryFilter) ([]*T, error) {
	return s.baseRepo().List(ctx, filter)
}

func (s *baseServiceImpl[T]) Page(ctx context.Context, page *types.PageRequest) (*types.Pagination[T], error) {
	return s.baseRepo().Page(ctx, page)
}

func (s *baseServiceImpl[T]) Count(ctx context.Context) (int, error) {
	return s.baseRepo().Count(ctx)
}

func (s *baseServiceImpl[T]) CountByFilter(ctx context.Context, filter *types.QueryFilter) (int, error) {
	return s.baseRepo().CountByFilter(ctx, filter)
}

func (s *baseServiceImpl[T]) Exists(ctx context.Context, id any) (bool, error) {
	return s.baseRepo().Exists(ctx, id)
}

func (s *baseServiceImpl[T]) Create(ctx context.Context, data types.JsonObject) (*T, error) {
	e := new(T)
	s.descriptor.FromMap(e, data)
	if err := s.baseRepo().Create(ctx, e); err != nil {
		if is, code := database.IsSqlError(err); is && code == database.DuplicateKeyErr {
			return nil, fmt.Errorf("create conflicts with an existing record: %w", err)
		}
		return nil, err
	}
	s.emit(event.ActionCreated, e)
	return e, nil
}

func (s *baseServiceImpl[T]) CreateMany(ctx context.Context, data []types.JsonObject) ([]*T, error) {
	created := make([]*T, 0, len(data))
	for _, record := range data {
		e, err := s.Create(ctx, record)
		if err != nil {
			return created, err
		}
		created = append(created, e)
	}
	return created, nil
}

func (s *baseServiceImpl[T]) Save(ctx context.Context, model ...*T) error {
	if len(model) == 0 {
		return nil
	}
	if err := s.baseRepo().Create(ctx, model...); err != nil {
		return err
	}
	for _, e := range model {
		s.emit(event.ActionCreated, e)
	}
	return nil
}

func (s *baseServiceImpl[T]) SaveOrUpdate(ctx context.Context, fields []string, duplicateKeys []string, model ...*T) error {
	return s.baseRepo().Upsert(ctx, fields, duplicateKeys, model...)
}

func (s *baseServiceImpl[T]) Update(ctx context.Context, id any, data types.JsonObject) (bool, error) {
	e, err := s.baseRepo().GetOne(ctx, id)
	if err != nil {
		return false, err
	}
	if e == nil {
		return false, nil
	}
	s.descriptor.FromMap(e, data)
	if _, err := s.baseRepo().Update(ctx, e); err != nil {
		return false, err
	}
	s.emit(event.ActionUpdated, e)
	return true, nil
}

func (s *baseServiceImpl[T]) UpdateWhere(ctx context.Context, conds types.JsonObject, values types.JsonObject) (int64, error) {
	return s.baseRepo().UpdateWhere(ctx, conds, values)
}

func (s *baseServiceImpl[T]) UpdateByFilter(ctx context.Context, filter *types.QueryFilter, values types.JsonObject) (int64, error) {
	return s.baseRepo().UpdateByFilter(ctx, filter, values)
}

func (s *baseServiceImpl[T]) Delete(ctx context.Context, id any) (bool, error) {
	rows, err := s.baseRepo().SoftDelete(ctx, id)
	if err != nil {
		return false, err
	}
	if rows == 0 {
		return false, nil
	}
	if e, err := s.baseRepo().GetTrashed(ctx, id); err == nil && e != nil {
		s.emit(event.ActionDeleted, e)
	}
	return true, nil
}

func (s *baseServiceImpl[T]) DeleteWhere(ctx context.Context, conds types.JsonObject) (int64, error) {
	return s.baseRepo().DeleteWhere(ctx, conds)
}

func (s *baseServiceImpl[T]) DeleteByFilter(ctx context.Context, filter *types.QueryFilter) (int64, error) {
	return s.baseRepo().DeleteByFilter(ctx, filter)
}

func (s *baseServiceImpl[T]) Restore(ctx context.Context, id any) (*T, error) {
	rows, err := s.baseRepo().Restore(ctx, id)
	if err != nil {
		return nil, err
	}
	if rows == 0 {
		return nil, nil
	}
	e, err := s.baseRepo().GetOne(ctx, id)
	if err != nil {
		return nil, err
	}
	if e != nil {
		s.emit(event.ActionRestored, e)
	}
	return e, nil
}

func (s *baseServiceImpl[T]) ForceDelete(ctx context.Context, id any) (bool, error) {
	e, err := s.baseRepo().GetOne(ctx, id)
	if err != nil {
		return false, err
	}
	if e == nil {
		if e, err = s.baseRepo().GetTrashed(ctx, id); err != nil {
			return false, err
		}
	}
	rows, err := s.baseRepo().ForceDelete(ctx, id)
	if err != nil {
		return false, err
	}
	if rows == 0 {
		return false, nil
	}
	if e != nil {
		s.emit(event.ActionPermanentlyDeleted, e)
	}
	return true, nil
}

func (s *baseServiceImpl[T]) SelectBuilder() *bun.SelectQuery {
	return s.baseRepo().NewSelect()
}

func (s *baseServiceImpl[T]) InsertBuilder() *bun.InsertQuery {
	return s.baseRepo().NewInsert()
}

func (s *baseServiceImpl[T]) UpdateBuilder() *bun.UpdateQuery {
	return s.baseRepo().NewUpdate()
}

func (s *baseServiceImpl[T]) DeleteBuilder() *bun.DeleteQuery {
	return s.baseRepo().NewDelete()
}
