// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package demo

import (
	"database/sql"

	_ "modernc.org/sqlite"
)

// OpenDemoDB opens an in-memory SQLite database seeded with a small
// notes table, giving the /query endpoint something real to run
// guarded SELECTs against — the Go equivalent of the sqlite3 module
// original_source/fastapi_app_example/app.py opens for the same
// purpose.
func OpenDemoDB() (*sql.DB, error) {
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		return nil, err
	}

	seed := []string{
		`CREATE TABLE notes (id INTEGER PRIMARY KEY, title TEXT NOT NULL, body TEXT NOT NULL)`,
		`INSERT INTO notes (title, body) VALUES ('welcome', 'this database only answers guarded SELECTs')`,
	}
	for _, stmt := range seed {
		if _, err := db.Exec(stmt); err != nil {
			db.Close()
			return nil, err
		}
	}

	return db, nil
}
