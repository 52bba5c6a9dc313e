package scraper

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/lexscout/lexscout/pkg/config"
	"github.com/lexscout/lexscout/pkg/session"
)

var DebugLog func(string, ...interface{})

const userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36"

type Scraper struct {
	session *session.Session
	cfg     *config.Crawler
}

type ChapterStat struct {
	Chapter  string
	Duration time.Duration
	Sections int
	Errors   int
}

// CrawlEvent is either a parsed section, a chapter-level error, or (once,
// last) the collected stats.
type CrawlEvent struct {
	Section *Section
	Chapter string
	Error   error
	Stats   map[string]*ChapterStat
}

func New(s *session.Session, cfg *config.Crawler) *Scraper {
	return &Scraper{
		session: s,
		cfg:     cfg,
	}
}

// FetchChapter downloads and parses one chapter page.
func (s *Scraper) FetchChapter(ctx context.Context, link ChapterLink) ([]Section, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, link.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := s.session.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch chapter %s: %w", link.ChapterNum, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("chapter %s returned status %d", link.ChapterNum, resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to parse chapter %s: %w", link.ChapterNum, err)
	}

	sections, err := ParseChapterHTML(doc)
	if err != nil {
		return nil, err
	}

	for i := range sections {
		sections[i].ChapterNumber = link.ChapterNum
		sections[i].SourceURL = link.URL
		if sections[i].ChapterTitle == "" {
			sections[i].ChapterTitle = ExtractChapterTitle(link.Title)
		}
	}

	return sections, nil
}

// Run crawls the given chapters with a bounded worker pool. Fetches are
// gated on a shared ticker so the statute site sees at most one request per
// rate-limit interval regardless of worker count.
func (s *Scraper) Run(ctx context.Context, chapters []ChapterLink, collectStats bool) <-chan CrawlEvent {
	events := make(chan CrawlEvent)
	jobs := make(chan ChapterLink)

	interval := time.Duration(s.cfg.RateLimitMS) * time.Millisecond
	if interval <= 0 {
		interval = 100 * time.Millisecond
	}
	limiter := time.NewTicker(interval)

	stats := make(map[string]*ChapterStat)
	statsMutex := &sync.Mutex{}

	wg := &sync.WaitGroup{}
	for i := 0; i < s.cfg.Workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			for link := range jobs {
				select {
				case <-limiter.C:
				case <-ctx.Done():
					return
				}

				startTime := time.Now()
				errorCount := 0

				sections, err := s.FetchChapter(ctx, link)
				if err != nil {
					errorCount++
					select {
					case events <- CrawlEvent{Chapter: link.ChapterNum, Error: err}:
					case <-ctx.Done():
						return
					}
				}

				for i := range sections {
					select {
					case events <- CrawlEvent{Section: &sections[i], Chapter: link.ChapterNum}:
					case <-ctx.Done():
						return
					}
				}

				if collectStats {
					statsMutex.Lock()
					stats[link.ChapterNum] = &ChapterStat{
						Chapter:  link.ChapterNum,
						Duration: time.Since(startTime),
						Sections: len(sections),
						Errors:   errorCount,
					}
					statsMutex.Unlock()
				}

				if DebugLog != nil {
					DebugLog("chapter %s: %d sections in %v",
						link.ChapterNum, len(sections), time.Since(startTime))
				}
			}
		}()
	}

	go func() {
		defer close(jobs)
		for _, link := range chapters {
			select {
			case jobs <- link:
			case <-ctx.Done():
				return
			}
		}
	}()

	go func() {
		wg.Wait()
		limiter.Stop()
		if collectStats {
			events <- CrawlEvent{Stats: stats}
		}
		close(events)
	}()

	return events
}
