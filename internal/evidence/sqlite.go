// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package evidence

import (
	"database/sql"
	"encoding/json"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

// LoadSQLite reads knowledge entries from a research knowledge base — a
// SQLite database with an items(id, content, tags) table, tags stored as a
// JSON array. Rows load in rowid order so insertion-order tie-breaking
// carries over from the source database.
func LoadSQLite(path string) ([]Entry, error) {
	db, err := sql.Open("sqlite3", "file:"+path+"?mode=ro")
	if err != nil {
		return nil, fmt.Errorf("opening knowledge base %s: %w", path, err)
	}
	defer db.Close()

	rows, err := db.Query(`SELECT id, content, COALESCE(tags, '') FROM items ORDER BY rowid`)
	if err != nil {
		return nil, fmt.Errorf("querying items: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		var tagsJSON string
		if err := rows.Scan(&e.ID, &e.Text, &tagsJSON); err != nil {
			return nil, fmt.Errorf("scanning item: %w", err)
		}
		if tagsJSON != "" {
			if err := json.Unmarshal([]byte(tagsJSON), &e.Tags); err != nil {
				return nil, fmt.Errorf("parsing tags for item %q: %w", e.ID, err)
			}
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating items: %w", err)
	}
	if len(entries) == 0 {
		return nil, fmt.Errorf("knowledge base %s contains no items", path)
	}

	return entries, nil
}
