package scraper

import (
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const chapterFixture = `<html><body>
<h3 class="cs2E44D3A6">Chapter 1.</h3>
<h3 class="cs2E44D3A6">Civil Procedure.</h3>
<p class="cs2E44D3A6">Article 1.</p>
<p class="cs2E44D3A6">General Provisions.</p>
<p class="cs8E357F70">&#167; 1-1.  Remedies.</p>
<p class="cs4817DA29">Remedies in the courts of justice are divided into actions and special proceedings.</p>
<p class="cs10EB6B29">(C.C.P., s. 1; Code, s. 125; Rev., s. 345; C.S., s. 391.)</p>
<p class="cs8E357F70">&#167; 1-2.  Actions.</p>
<p class="cs4817DA29">An action is an ordinary proceeding in a court of justice.</p>
<p class="cs2E44D3A6">Article 2. Venue</p>
<p class="cs8E357F70">&#167;&#167; 1-76 through 1-77.  Repealed by Session Laws 1967, c. 954, s. 4.</p>
<p class="cs4817DA29">Repealed.</p>
</body></html>`

func parseFixture(t *testing.T, html string) []Section {
	t.Helper()

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	require.NoError(t, err)

	sections, err := ParseChapterHTML(doc)
	require.NoError(t, err)

	return sections
}

func TestParseChapterHTML(t *testing.T) {
	sections := parseFixture(t, chapterFixture)
	require.Len(t, sections, 3)

	first := sections[0]
	assert.Equal(t, "Civil Procedure", first.ChapterTitle)
	assert.Equal(t, "1", first.ArticleNumber)
	assert.Equal(t, "General Provisions", first.ArticleTitle)
	assert.Equal(t, "1-1", first.SectionNumber)
	assert.Contains(t, first.Text, "Remedies in the courts of justice")
	assert.Contains(t, first.Text, "(C.C.P., s. 1;")

	second := sections[1]
	assert.Equal(t, "1-2", second.SectionNumber)
	assert.Equal(t, "1", second.ArticleNumber)
	assert.Contains(t, second.Text, "ordinary proceeding")

	// The combined "Article 2. Venue" form switches articles without a
	// separate title element.
	third := sections[2]
	assert.Equal(t, "2", third.ArticleNumber)
	assert.Equal(t, "Venue", third.ArticleTitle)
	assert.Equal(t, "1-76 through 1-77", third.SectionNumber)
}

func TestParseChapterHTMLSectionTextJoinedWithNewlines(t *testing.T) {
	sections := parseFixture(t, chapterFixture)
	require.Len(t, sections, 3)

	lines := strings.Split(sections[0].Text, "\n")
	require.Len(t, lines, 3)
	assert.True(t, strings.HasPrefix(lines[0], "§ 1-1."))
}

func TestParseChapterHTMLEmptyDocument(t *testing.T) {
	sections := parseFixture(t, `<html><body><p>nothing structural</p></body></html>`)
	assert.Empty(t, sections)
}

func TestExtractChapterTitle(t *testing.T) {
	assert.Equal(t, "Civil Procedure", ExtractChapterTitle("Chapter 1. Civil Procedure."))
	assert.Equal(t, "Judicial Department", ExtractChapterTitle("Chapter 7A. Judicial Department."))
	assert.Equal(t, "No Prefix", ExtractChapterTitle("No Prefix."))
}

func TestExtractArticleTitle(t *testing.T) {
	assert.Equal(t, "General Provisions", ExtractArticleTitle("Article 1. General Provisions."))
	assert.Equal(t, "Venue", ExtractArticleTitle("Article 2. Venue"))
}

func TestSectionNumberPattern(t *testing.T) {
	tests := []struct {
		text string
		want string
	}{
		{"§ 1-1.  Remedies.", "1-1"},
		{"§ 14-72.1: Larceny.", "14-72.1"},
		{"§§ 1-76 through 1-77.  Repealed.", "1-76 through 1-77"},
		{"§ 7A-133.  District court districts.", "7A-133"},
	}

	for _, tt := range tests {
		match := sectionNumRe.FindStringSubmatch(tt.text)
		require.NotNil(t, match, tt.text)
		assert.Equal(t, tt.want, match[1])
	}

	assert.Nil(t, sectionNumRe.FindStringSubmatch("no section marker here"))
}
