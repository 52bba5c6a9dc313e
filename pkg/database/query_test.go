package database

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateReadOnlyQueryAccepts(t *testing.T) {
	queries := []string{
		"SELECT * FROM sections",
		"select chapter_number, count(*) from sections group by chapter_number",
		"SELECT text FROM sections WHERE section_number = '14-72';",
		"  WITH larceny AS (SELECT * FROM sections WHERE text ILIKE '%larceny%') SELECT * FROM larceny  ",
	}

	for _, query := range queries {
		assert.NoError(t, ValidateReadOnlyQuery(query), query)
	}
}

func TestValidateReadOnlyQueryRejects(t *testing.T) {
	tests := []struct {
		query  string
		reason string
	}{
		{"", "empty"},
		{"   ;  ", "empty"},
		{"DROP TABLE sections", "only SELECT"},
		{"INSERT INTO sections VALUES (1)", "only SELECT"},
		{"EXPLAIN SELECT * FROM sections", "only SELECT"},
		{"SELECT 1; DROP TABLE sections", "single statement"},
		{"SELECT * FROM sections; --", "single statement"},
		{"WITH x AS (SELECT 1) DELETE FROM sections", "forbidden keyword"},
		{"SELECT * FROM sections WHERE id = 1 FOR UPDATE", "forbidden keyword"},
	}

	for _, tt := range tests {
		t.Run(tt.reason+": "+tt.query, func(t *testing.T) {
			err := ValidateReadOnlyQuery(tt.query)
			require.Error(t, err)
		})
	}
}

func TestValidateReadOnlyQueryNamesKeyword(t *testing.T) {
	err := ValidateReadOnlyQuery("WITH x AS (SELECT 1) UPDATE sections SET text = ''")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"update"`)
}
