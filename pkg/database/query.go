package database

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

const DefaultQueryRowLimit = 50

var forbiddenKeywordRe = regexp.MustCompile(
	`(?i)\b(insert|update|delete|drop|alter|create|grant|revoke|truncate|copy|vacuum|do)\b`,
)

// ValidateReadOnlyQuery accepts a single SELECT or WITH statement and
// nothing else. The agent's SQL tool runs on the live corpus, so anything
// that could mutate state is rejected up front.
func ValidateReadOnlyQuery(query string) error {
	trimmed := strings.TrimSpace(query)
	trimmed = strings.TrimSuffix(trimmed, ";")

	if trimmed == "" {
		return fmt.Errorf("query must not be empty")
	}

	if strings.Contains(trimmed, ";") {
		return fmt.Errorf("only a single statement is allowed")
	}

	firstWord := strings.ToLower(strings.Fields(trimmed)[0])
	if firstWord != "select" && firstWord != "with" {
		return fmt.Errorf("only SELECT queries are allowed, got %q", firstWord)
	}

	if match := forbiddenKeywordRe.FindString(trimmed); match != "" {
		return fmt.Errorf("query contains forbidden keyword %q", strings.ToLower(match))
	}

	return nil
}

// RunReadOnlyQuery executes a validated SELECT and returns the rows as a
// JSON array, capped at limit rows.
func (db *DB) RunReadOnlyQuery(ctx context.Context, query string, limit int) (string, error) {
	if !db.IsEnabled() {
		return "", fmt.Errorf("database is not enabled")
	}

	if err := ValidateReadOnlyQuery(query); err != nil {
		return "", err
	}

	if limit <= 0 {
		limit = DefaultQueryRowLimit
	}

	rows, err := db.conn.QueryContext(ctx, query)
	if err != nil {
		return "", fmt.Errorf("query failed: %w", err)
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return "", fmt.Errorf("failed to read columns: %w", err)
	}

	var results []map[string]interface{}
	truncated := false

	for rows.Next() {
		if len(results) >= limit {
			truncated = true
			break
		}

		values := make([]interface{}, len(columns))
		pointers := make([]interface{}, len(columns))
		for i := range values {
			pointers[i] = &values[i]
		}

		if err := rows.Scan(pointers...); err != nil {
			return "", fmt.Errorf("failed to scan row: %w", err)
		}

		row := make(map[string]interface{}, len(columns))
		for i, column := range columns {
			if b, ok := values[i].([]byte); ok {
				row[column] = string(b)
			} else {
				row[column] = values[i]
			}
		}
		results = append(results, row)
	}

	if err := rows.Err(); err != nil {
		return "", fmt.Errorf("error reading rows: %w", err)
	}

	payload := map[string]interface{}{
		"rows":      results,
		"row_count": len(results),
		"truncated": truncated,
	}

	encoded, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("failed to encode result: %w", err)
	}

	return string(encoded), nil
}
