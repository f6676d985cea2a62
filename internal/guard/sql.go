// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package guard

import (
	"context"
	"database/sql"
)

// ExecContext guards sqlite3.Cursor.execute. Only the SQL
// text is validated; bound parameter values are passed through to the
// driver untouched, exactly as spec.md §4.5 specifies ("bound
// parameters are not validated").
func (g *Guard) ExecContext(ctx context.Context, db *sql.DB, query string, args ...any) (sql.Result, error) {
	if err := g.enforce(ctx, FQNSQLiteExecute, []arg{{value: query}}, nil); err != nil {
		return nil, err
	}
	return db.ExecContext(ctx, query, args...)
}

// QueryContext guards the read-path equivalent of ExecContext. The
// fixed sink set in spec.md §4.5 names only execute/executemany, but a
// guard that validates writes while leaving SELECT text unchecked
// would miss injection through read-only queries feeding into further
// guarded sinks, so this shares the same sql_safe validator set under
// the execute sink's identity.
func (g *Guard) QueryContext(ctx context.Context, db *sql.DB, query string, args ...any) (*sql.Rows, error) {
	if err := g.enforce(ctx, FQNSQLiteExecute, []arg{{value: query}}, nil); err != nil {
		return nil, err
	}
	return db.QueryContext(ctx, query, args...)
}

// ExecManyContext guards sqlite3.Cursor.executemany: one query string
// validated once, applied across argsList rows.
func (g *Guard) ExecManyContext(ctx context.Context, db *sql.DB, query string, argsList [][]any) (sql.Result, error) {
	if err := g.enforce(ctx, FQNSQLiteExecuteMany, []arg{{value: query}}, nil); err != nil {
		return nil, err
	}

	var result sql.Result
	for _, row := range argsList {
		var err error
		result, err = db.ExecContext(ctx, query, row...)
		if err != nil {
			return result, err
		}
	}
	return result, nil
}
