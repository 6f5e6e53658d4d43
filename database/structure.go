package database

import (
	"context"
	"fmt"
	"sort"
	"strings"
)

// ExpectedColumns lists the columns each table must expose
var ExpectedColumns = map[string][]string{
	"game_runs": {
		"id", "created_at", "user_id", "user_name", "email",
		"predictions", "random_numbers", "score", "game_type",
	},
	"leaderboard": {
		"id", "user_id", "name", "email", "best_score", "total_games_played", "game_type",
	},
}

// StructureReport describes missing tables and columns
type StructureReport struct {
	MissingTables  []string
	MissingColumns map[string][]string
}

// OK reports whether nothing is missing
func (r *StructureReport) OK() bool {
	return len(r.MissingTables) == 0 && len(r.MissingColumns) == 0
}

func (r *StructureReport) String() string {
	if r.OK() {
		return "database structure OK"
	}
	var b strings.Builder
	if len(r.MissingTables) > 0 {
		fmt.Fprintf(&b, "missing tables: %s", strings.Join(r.MissingTables, ", "))
	}
	tables := make([]string, 0, len(r.MissingColumns))
	for table := range r.MissingColumns {
		tables = append(tables, table)
	}
	sort.Strings(tables)
	for _, table := range tables {
		if b.Len() > 0 {
			b.WriteString("; ")
		}
		fmt.Fprintf(&b, "%s missing columns: %s", table, strings.Join(r.MissingColumns[table], ", "))
	}
	return b.String()
}

// CheckStructure compares the public schema against ExpectedColumns
func (db *DB) CheckStructure(ctx context.Context) (*StructureReport, error) {
	rows, err := db.Query(ctx, `
		SELECT table_name, column_name
		FROM information_schema.columns
		WHERE table_schema = 'public'
		  AND table_name = ANY($1)
	`, []string{"game_runs", "leaderboard"})
	if err != nil {
		return nil, fmt.Errorf("failed to query information schema: %w", err)
	}
	defer rows.Close()

	present := make(map[string]map[string]bool)
	for rows.Next() {
		var table, column string
		if err := rows.Scan(&table, &column); err != nil {
			return nil, fmt.Errorf("failed to scan column: %w", err)
		}
		if present[table] == nil {
			present[table] = make(map[string]bool)
		}
		present[table][column] = true
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate columns: %w", err)
	}

	report := &StructureReport{MissingColumns: make(map[string][]string)}
	tables := make([]string, 0, len(ExpectedColumns))
	for table := range ExpectedColumns {
		tables = append(tables, table)
	}
	sort.Strings(tables)

	for _, table := range tables {
		columns, ok := present[table]
		if !ok {
			report.MissingTables = append(report.MissingTables, table)
			continue
		}
		for _, column := range ExpectedColumns[table] {
			if !columns[column] {
				report.MissingColumns[table] = append(report.MissingColumns[table], column)
			}
		}
	}

	return report, nil
}
