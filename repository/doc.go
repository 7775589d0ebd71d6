// Package repository provides a generic persistence provider built on Bun:
// CRUD operations, equality-condition and filter-object querying, pagination,
// upsert, and soft-delete support (trash, restore, force delete).
package repository
