// Package store declares the persistence boundary for write batches.
// Implementations live in other packages; this package must not import
// database drivers or concrete clients.
package store
