// Package sqlite opens SQLite databases through either the pure Go driver
// (modernc.org/sqlite, the default) or the CGO driver (mattn/go-sqlite3,
// selected with the cgo_sqlite build tag).
//
// Build modes:
//   - Default (CGO_ENABLED=0): modernc.org/sqlite, driver name "sqlite"
//   - CGO_ENABLED=1 -tags cgo_sqlite: mattn/go-sqlite3, driver name "sqlite3"
//
// Use Open instead of sql.Open so the compiled-in driver is picked.
package sqlite

import (
	"database/sql"
	"fmt"
)

// DriverName returns the database/sql driver name in use.
func DriverName() string {
	return driverName
}

// DriverType returns "cgo" for mattn/go-sqlite3 and "purego" for
// modernc.org/sqlite.
func DriverType() string {
	return driverType
}

// IsCGO reports whether the CGO implementation is compiled in.
func IsCGO() bool {
	return driverType == "cgo"
}

// Open opens a SQLite database and applies the connection pragmas the
// document store relies on. SQLite allows a single writer, so the pool is
// limited to one connection; this also keeps ":memory:" databases shared.
func Open(dataSourceName string) (*sql.DB, error) {
	db, err := sql.Open(driverName, dataSourceName)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)

	for _, pragma := range []string{
		"PRAGMA busy_timeout = 5000",
		"PRAGMA foreign_keys = ON",
		"PRAGMA journal_mode = WAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("sqlite: %s: %w", pragma, err)
		}
	}
	return db, nil
}

// Info describes the compiled-in driver.
type Info struct {
	DriverName string `json:"driver_name"`
	DriverType string `json:"driver_type"`
	IsCGO      bool   `json:"is_cgo"`
	Package    string `json:"package"`
}

// GetInfo returns information about the compiled-in driver.
func GetInfo() Info {
	return Info{
		DriverName: driverName,
		DriverType: driverType,
		IsCGO:      IsCGO(),
		Package:    driverPackage,
	}
}
