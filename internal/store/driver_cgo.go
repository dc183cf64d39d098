//go:build cgo

package store

// cgo builds also register mattn/go-sqlite3 as CgoDriver.
import _ "github.com/mattn/go-sqlite3"
