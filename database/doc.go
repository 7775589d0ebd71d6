// Package database provides connection management, startup table creation,
// configuration loading, query logging hooks, health checks, and SQL error
// classification built on top of Bun.
package database
