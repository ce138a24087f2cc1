// Package sqliteexternal provides the optional CGO SQLite driver.
//
// To use the CGO driver (github.com/mattn/go-sqlite3) for importing
// MySword and e-Sword databases:
//
//	CGO_ENABLED=1 go build -tags cgo_sqlite ./cmd/bibleloader
//
// core/sqlite imports this package under the cgo_sqlite tag. By default the
// pure Go modernc.org/sqlite driver is used and no CGO toolchain is needed.
//
// Use this package when importing large databases, where the CGO driver is
// noticeably faster; use the default when cross-compiling or shipping a
// single static binary.
package sqliteexternal
