package scraper

import (
	"encoding/csv"
	"fmt"
	"os"
)

var csvHeader = []string{
	"chapter_number",
	"chapter_title",
	"article_number",
	"article",
	"section_number",
	"text",
	"source_url",
}

// WriteCSV writes sections with one row per section, columns matching the
// Section json tags.
func WriteCSV(sections []Section, path string) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create csv file: %w", err)
	}
	defer file.Close()

	w := csv.NewWriter(file)

	if err := w.Write(csvHeader); err != nil {
		return fmt.Errorf("failed to write csv header: %w", err)
	}

	for _, section := range sections {
		record := []string{
			section.ChapterNumber,
			section.ChapterTitle,
			section.ArticleNumber,
			section.ArticleTitle,
			section.SectionNumber,
			section.Text,
			section.SourceURL,
		}
		if err := w.Write(record); err != nil {
			return fmt.Errorf("failed to write csv record: %w", err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("failed to flush csv: %w", err)
	}

	return nil
}
