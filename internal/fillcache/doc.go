// Package fillcache persists gap-fill translations in SQLite so reruns over
// the same material do not pay for the same request twice.
//
// Keys come from gapfill.CacheKey. The database uses WAL mode and retries
// briefly when another process holds the write lock. A database created by a
// different schema version is rejected; delete the file to rebuild it.
package fillcache
