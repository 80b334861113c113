// Package sqlite persists results, social messages, cached embeddings and
// scheduler state in one file, ~/.stockthemes/data/stockthemes.db by
// default.
//
// The driver is modernc.org/sqlite, so builds need no cgo. The database is
// opened in WAL mode with a busy timeout, which lets the scheduler daemon
// and a CLI invocation share it. Schema changes live in migrations/ as
// numbered .up.sql files applied in order at open.
package sqlite
