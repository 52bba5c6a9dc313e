package scraper

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sections.csv")

	sections := []Section{
		{
			ChapterNumber: "14",
			ChapterTitle:  "Criminal Law",
			ArticleNumber: "16",
			ArticleTitle:  "Larceny",
			SectionNumber: "14-72",
			Text:          "§ 14-72.  Larceny of property.\nLine two, with \"quotes\".",
			SourceURL:     "https://example.test/Chapter_14.html",
		},
		{ChapterNumber: "1", SectionNumber: "1-1"},
	}

	require.NoError(t, WriteCSV(sections, path))

	file, err := os.Open(path)
	require.NoError(t, err)
	defer file.Close()

	records, err := csv.NewReader(file).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)

	assert.Equal(t, csvHeader, records[0])
	assert.Equal(t, "14-72", records[1][4])
	assert.Contains(t, records[1][5], `"quotes"`)
	assert.Equal(t, "1-1", records[2][4])
}
