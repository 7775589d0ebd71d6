// Package entity provides the entity mapper: declarative per-type field
// descriptor tables and generic serialize/hydrate routines that convert
// entities to and from generic key-value maps and JSON text.
package entity
