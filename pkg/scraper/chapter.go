package scraper

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

var (
	chapterLinkRe = regexp.MustCompile(`Chapter_(\d+[A-Z]?)\.html`)
	sectionNumRe  = regexp.MustCompile(`§§?\s*([\w\.-]+(?:\s*through\s*[\w\.-]+)?)[:\.]`)
	articleNumRe  = regexp.MustCompile(`Article\s+(\d+[A-Z]?)`)

	chapterPrefixRe = regexp.MustCompile(`(?i)^Chapter\s+\d+[A-Z]?\.\s*`)
	articlePrefixRe = regexp.MustCompile(`(?i)^Article\s+\d+[A-Z]?\.\s*`)
)

// CSS classes the statute publisher uses for structural elements. The markup
// carries no semantic tags, so these are the only parse handles available.
const (
	classChapterTitle = "cs2E44D3A6" // h3
	classArticleTitle = "cs2E44D3A6" // p
	classSectionTitle = "cs8E357F70" // p
)

var classSectionText = []string{"cs4817DA29", "cs10EB6B29"}

type Section struct {
	ChapterNumber string `json:"chapter_number"`
	ChapterTitle  string `json:"chapter_title"`
	ArticleNumber string `json:"article_number"`
	ArticleTitle  string `json:"article"`
	SectionNumber string `json:"section_number"`
	Text          string `json:"text"`
	SourceURL     string `json:"source_url"`
}

// parserState walks chapter markup in document order. Article headers arrive
// either as two elements (number then title) or as one combined element, and
// section text elements always follow their section title.
type parserState struct {
	chapterTitle         string
	currentArticle       string
	currentArticleNumber string
	pendingArticleNumber string
	current              *Section
	records              []Section
}

func (p *parserState) isArticleNumber(text string) bool {
	return strings.HasPrefix(text, "Article ") &&
		strings.HasSuffix(text, ".") &&
		articleNumRe.MatchString(text)
}

func (p *parserState) isArticleTitlePart(sel *goquery.Selection, text string) bool {
	return sel.HasClass(classArticleTitle) &&
		!strings.HasPrefix(text, "Article ") &&
		!strings.HasPrefix(text, "§")
}

func (p *parserState) isStandaloneArticle(sel *goquery.Selection, text string) bool {
	return sel.HasClass(classArticleTitle) &&
		strings.HasPrefix(text, "Article ") &&
		!strings.HasSuffix(text, ".")
}

func (p *parserState) isSectionText(sel *goquery.Selection) bool {
	for _, class := range classSectionText {
		if sel.HasClass(class) {
			return true
		}
	}
	return false
}

func (p *parserState) saveCurrentSection() {
	if p.current != nil && p.current.Text != "" {
		p.records = append(p.records, *p.current)
	}
}

func (p *parserState) processArticleNumber(text string) {
	p.pendingArticleNumber = text
	if match := articleNumRe.FindStringSubmatch(text); match != nil {
		p.currentArticleNumber = match[1]
	} else {
		p.currentArticleNumber = ""
	}
}

func (p *parserState) processArticleTitlePart(text string) {
	if p.pendingArticleNumber == "" {
		return
	}

	full := strings.TrimSpace(p.pendingArticleNumber + " " + text)
	p.currentArticle = ExtractArticleTitle(full)
	p.pendingArticleNumber = ""
}

func (p *parserState) processStandaloneArticle(text string) {
	p.currentArticle = ExtractArticleTitle(text)
	if match := articleNumRe.FindStringSubmatch(text); match != nil {
		p.currentArticleNumber = match[1]
	} else {
		p.currentArticleNumber = ""
	}
	p.pendingArticleNumber = ""
}

func (p *parserState) startNewSection(text string) {
	p.saveCurrentSection()

	sectionNum := ""
	if match := sectionNumRe.FindStringSubmatch(text); match != nil {
		sectionNum = match[1]
	}

	p.current = &Section{
		ChapterTitle:  p.chapterTitle,
		ArticleNumber: p.currentArticleNumber,
		ArticleTitle:  p.currentArticle,
		SectionNumber: sectionNum,
		Text:          text,
	}
}

func (p *parserState) addSectionContent(text string) {
	if p.current == nil {
		return
	}

	if p.current.Text != "" {
		p.current.Text += "\n" + text
	} else {
		p.current.Text = text
	}
}

// ExtractChapterTitle strips the "Chapter N." prefix and trailing period
// from a full chapter heading.
func ExtractChapterTitle(fullTitle string) string {
	cleaned := chapterPrefixRe.ReplaceAllString(fullTitle, "")
	return strings.TrimSpace(strings.TrimRight(cleaned, "."))
}

// ExtractArticleTitle strips the "Article N." prefix and trailing period
// from a full article heading.
func ExtractArticleTitle(fullTitle string) string {
	cleaned := articlePrefixRe.ReplaceAllString(fullTitle, "")
	return strings.TrimSpace(strings.TrimRight(cleaned, "."))
}

// ParseChapterHTML parses one statute chapter page into sections. Chapter
// number and source URL are the caller's to fill, since the page itself
// does not carry them reliably.
func ParseChapterHTML(r *goquery.Document) ([]Section, error) {
	titleParts := []string{}
	r.Find("h3." + classChapterTitle).Each(func(_ int, sel *goquery.Selection) {
		titleParts = append(titleParts, normalizeText(sel))
	})
	chapterTitle := ExtractChapterTitle(strings.Join(titleParts, " "))

	state := &parserState{chapterTitle: chapterTitle}

	selector := fmt.Sprintf("p.%s, p.%s, p.%s, p.%s",
		classArticleTitle, classSectionTitle, classSectionText[0], classSectionText[1])

	r.Find(selector).Each(func(_ int, sel *goquery.Selection) {
		text := normalizeText(sel)
		if text == "" {
			return
		}

		switch {
		case state.isArticleNumber(text):
			state.processArticleNumber(text)

		case state.pendingArticleNumber != "" && state.isArticleTitlePart(sel, text):
			state.processArticleTitlePart(text)

		case sel.HasClass(classSectionTitle):
			state.startNewSection(text)

		case state.isSectionText(sel):
			state.addSectionContent(text)

		case state.isStandaloneArticle(sel, text):
			state.processStandaloneArticle(text)
		}
	})

	state.saveCurrentSection()

	return state.records, nil
}

var whitespaceRe = regexp.MustCompile(`\s+`)

func normalizeText(sel *goquery.Selection) string {
	return strings.TrimSpace(whitespaceRe.ReplaceAllString(sel.Text(), " "))
}
