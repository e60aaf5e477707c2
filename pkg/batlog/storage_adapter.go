//go:build !js && !wasm
// +build !js,!wasm

package batlog

import (
	"github.com/himanishpuri/BatLog/pkg/batlog/storage"
)

var _ Storage = (*storage.DBClient)(nil)

// NewSQLiteStorage opens (creating if needed) the sqlite database at dbPath.
func NewSQLiteStorage(dbPath string) (Storage, error) {
	db, err := storage.NewDBClientWithPath(dbPath)
	if err != nil {
		return nil, err
	}
	return db, nil
}
