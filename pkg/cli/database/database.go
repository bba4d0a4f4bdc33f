/* Copyright 2025 NextRead Authors
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

// Package database provides access to the local sqlite database. The client
// persists no domain data; the database holds only operational key-value
// state in the system table.
package database

import (
	"database/sql"

	"github.com/pkg/errors"
)

// DB is a database handle. When Begin has been called, operations run inside
// the active transaction.
type DB struct {
	conn *sql.DB
	tx   *sql.Tx
}

// Open opens a connection to the sqlite database at the given path
func Open(path string) (*DB, error) {
	conn, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, errors.Wrap(err, "opening database")
	}

	return &DB{conn: conn}, nil
}

// Close closes the underlying connection
func (db *DB) Close() error {
	return db.conn.Close()
}

// Begin starts a transaction and returns a handle that runs all operations
// inside it
func (db *DB) Begin() (*DB, error) {
	tx, err := db.conn.Begin()
	if err != nil {
		return nil, errors.Wrap(err, "beginning a transaction")
	}

	return &DB{conn: db.conn, tx: tx}, nil
}

// Commit commits the active transaction
func (db *DB) Commit() error {
	if db.tx == nil {
		return errors.New("no active transaction")
	}

	return db.tx.Commit()
}

// Rollback aborts the active transaction. It is a no-op without one.
func (db *DB) Rollback() error {
	if db.tx == nil {
		return nil
	}

	return db.tx.Rollback()
}

// Exec executes the given query
func (db *DB) Exec(query string, args ...interface{}) (sql.Result, error) {
	if db.tx != nil {
		return db.tx.Exec(query, args...)
	}

	return db.conn.Exec(query, args...)
}

// QueryRow executes a query that is expected to return at most one row
func (db *DB) QueryRow(query string, args ...interface{}) *sql.Row {
	if db.tx != nil {
		return db.tx.QueryRow(query, args...)
	}

	return db.conn.QueryRow(query, args...)
}

// InitSchema creates the tables the client needs if they are missing
func InitSchema(db *DB) error {
	_, err := db.Exec(`CREATE TABLE IF NOT EXISTS system
		(
			key string NOT NULL,
			value text NOT NULL
		)`)
	if err != nil {
		return errors.Wrap(err, "creating system table")
	}

	_, err = db.Exec(`CREATE UNIQUE INDEX IF NOT EXISTS idx_system_key ON system(key)`)
	if err != nil {
		return errors.Wrap(err, "creating system index")
	}

	return nil
}
