package scraper

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/lexscout/lexscout/pkg/session"
)

const chapterPathFragment = "/EnactedLegislation/Statutes/HTML/ByChapter/Chapter_"

var chapterNumericRe = regexp.MustCompile(`(\d+)`)

type ChapterLink struct {
	URL        string
	ChapterNum string
	Title      string
}

// FetchChapterLinks pulls the statute table of contents and returns the
// chapter pages it links to, sorted by the numeric part of the chapter
// number (so 7A sorts with 7, not after 79).
func FetchChapterLinks(ctx context.Context, s *session.Session, tocURL, baseURL string) ([]ChapterLink, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, tocURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := s.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch table of contents: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("table of contents returned status %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to parse table of contents: %w", err)
	}

	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid base URL: %w", err)
	}

	var chapters []ChapterLink
	seen := make(map[string]bool)

	doc.Find("a[href]").Each(func(_ int, sel *goquery.Selection) {
		href, _ := sel.Attr("href")
		text := strings.TrimSpace(sel.Text())

		if !strings.Contains(href, chapterPathFragment) || !strings.HasSuffix(href, ".html") {
			return
		}

		match := chapterLinkRe.FindStringSubmatch(href)
		if match == nil {
			return
		}
		chapterNum := match[1]

		if seen[chapterNum] {
			return
		}
		seen[chapterNum] = true

		ref, err := url.Parse(href)
		if err != nil {
			return
		}

		title := text
		if title == "" {
			title = fmt.Sprintf("Chapter %s", chapterNum)
		}

		chapters = append(chapters, ChapterLink{
			URL:        base.ResolveReference(ref).String(),
			ChapterNum: chapterNum,
			Title:      title,
		})
	})

	sort.SliceStable(chapters, func(i, j int) bool {
		return chapterSortKey(chapters[i].ChapterNum) < chapterSortKey(chapters[j].ChapterNum)
	})

	return chapters, nil
}

func chapterSortKey(chapterNum string) int {
	match := chapterNumericRe.FindStringSubmatch(chapterNum)
	if match == nil {
		return 0
	}

	n, err := strconv.Atoi(match[1])
	if err != nil {
		return 0
	}

	return n
}

// FindStartIndex locates startChapter in an already sorted chapter list.
func FindStartIndex(chapters []ChapterLink, startChapter string) int {
	for i, chapter := range chapters {
		if chapter.ChapterNum == startChapter {
			return i
		}
	}
	return -1
}
