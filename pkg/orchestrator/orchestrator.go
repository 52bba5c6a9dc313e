package orchestrator

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/lexscout/lexscout/pkg/config"
	"github.com/lexscout/lexscout/pkg/database"
	"github.com/lexscout/lexscout/pkg/elastic"
	"github.com/lexscout/lexscout/pkg/scraper"
	"github.com/lexscout/lexscout/pkg/session"
)

var DebugLog func(string, ...interface{})

type Orchestrator struct {
	config        *config.Config
	configManager *config.Manager
	logger        *logrus.Logger
	db            *database.DB
	es            *elastic.Client
}

type CrawlOptions struct {
	StartChapter string
	MaxChapters  int
	OutputCSV    string
	Index        bool
	JSONFormat   bool
	Stats        bool
}

type CrawlResult struct {
	StartTime     time.Time
	EndTime       time.Time
	Duration      time.Duration
	TotalChapters int
	TotalSections int
	Success       bool
	Errors        []error
	Sections      []scraper.Section
	ChapterStats  []scraper.ChapterStat
}

type customFormatter struct{}

func (f *customFormatter) Format(entry *logrus.Entry) ([]byte, error) {
	var levelText string
	switch entry.Level {
	case logrus.InfoLevel:
		levelText = "[INF]"
	case logrus.WarnLevel:
		levelText = "[WARN]"
	case logrus.ErrorLevel:
		levelText = "[ERR]"
	case logrus.DebugLevel:
		levelText = "[DBG]"
	default:
		levelText = "[???]"
	}
	return []byte(fmt.Sprintf("%s %s\n", levelText, entry.Message)), nil
}

func NewOrchestrator(configPath string) (*Orchestrator, error) {
	logger := logrus.New()
	logger.SetLevel(logrus.InfoLevel)
	logger.SetFormatter(&customFormatter{})

	configManager := config.NewManager(configPath)
	if err := configManager.LoadConfig(); err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	cfg := configManager.GetConfig()

	db, err := database.New(&cfg.Database)
	if err != nil {
		logger.Warnf("Database initialization failed: %v", err)
	}

	var es *elastic.Client
	if cfg.Elastic.Enabled {
		es, err = elastic.New(cfg.Elastic)
		if err != nil {
			logger.Warnf("Elasticsearch initialization failed: %v", err)
			es = nil
		}
	}

	return &Orchestrator{
		config:        cfg,
		configManager: configManager,
		logger:        logger,
		db:            db,
		es:            es,
	}, nil
}

type sectionLine struct {
	Chapter string `json:"chapter"`
	Section string `json:"section"`
	Article string `json:"article"`
	Title   string `json:"chapter_title"`
}

func (o *Orchestrator) RunCrawl(options CrawlOptions) (*CrawlResult, error) {
	startTime := time.Now()

	result := &CrawlResult{
		StartTime: startTime,
		Success:   false,
		Errors:    []error{},
	}

	sess, err := session.New(o.config)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(),
		time.Duration(o.config.DefaultSettings.Timeout)*time.Minute)
	defer cancel()

	chapters, err := scraper.FetchChapterLinks(ctx, sess, o.config.Crawler.TOCURL, o.config.Crawler.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch chapter list: %w", err)
	}

	o.logger.Infof("Found %d chapters in table of contents", len(chapters))

	startIndex := 0
	if options.StartChapter != "" {
		startIndex = scraper.FindStartIndex(chapters, options.StartChapter)
		if startIndex < 0 {
			return nil, fmt.Errorf("chapter %s not found in table of contents", options.StartChapter)
		}
	}

	endIndex := len(chapters)
	if options.MaxChapters > 0 && startIndex+options.MaxChapters < endIndex {
		endIndex = startIndex + options.MaxChapters
	}
	selected := chapters[startIndex:endIndex]
	result.TotalChapters = len(selected)

	o.logger.Infof("Crawling %d chapters with %d workers", len(selected), o.config.Crawler.Workers)

	scr := scraper.New(sess, &o.config.Crawler)
	events := scr.Run(ctx, selected, options.Stats)

	byChapter := make(map[string][]scraper.Section)

	for event := range events {
		if event.Stats != nil {
			for _, stat := range event.Stats {
				result.ChapterStats = append(result.ChapterStats, *stat)
			}
			continue
		}

		if event.Error != nil {
			result.Errors = append(result.Errors, event.Error)
			o.logger.Warnf("Chapter %s: %v", event.Chapter, event.Error)
			continue
		}

		section := *event.Section
		result.Sections = append(result.Sections, section)
		byChapter[event.Chapter] = append(byChapter[event.Chapter], section)

		if options.JSONFormat {
			line := sectionLine{
				Chapter: section.ChapterNumber,
				Section: section.SectionNumber,
				Article: section.ArticleTitle,
				Title:   section.ChapterTitle,
			}
			jsonBytes, _ := json.Marshal(line)
			fmt.Println(string(jsonBytes))
		} else if DebugLog != nil {
			DebugLog("found section: G.S. %s [%s]", section.SectionNumber, section.ChapterTitle)
		}
	}

	result.TotalSections = len(result.Sections)

	if o.db != nil && o.db.IsEnabled() {
		for chapterNumber, sections := range byChapter {
			if err := o.db.TrackSections(chapterNumber, sections); err != nil {
				o.logger.Warnf("Failed to track chapter %s in database: %v", chapterNumber, err)
			}
		}
	}

	if options.Index {
		if o.es == nil {
			o.logger.Warn("Elasticsearch indexing requested but no client is available")
		} else if err := o.es.IndexSections(ctx, result.Sections); err != nil {
			o.logger.Warnf("Failed to index sections: %v", err)
		} else {
			o.logger.Infof("Indexed %d sections into elasticsearch", result.TotalSections)
		}
	}

	if options.OutputCSV != "" {
		outputPath := resolveOutputPath(&o.config.Crawler, options.OutputCSV)
		if err := os.MkdirAll(filepath.Dir(outputPath), 0755); err != nil {
			result.Errors = append(result.Errors, fmt.Errorf("csv output failed: %w", err))
		} else if err := scraper.WriteCSV(result.Sections, outputPath); err != nil {
			result.Errors = append(result.Errors, fmt.Errorf("csv output failed: %w", err))
		} else {
			o.logger.Infof("Wrote %d sections to %s", result.TotalSections, outputPath)
		}
	}

	endTime := time.Now()
	result.EndTime = endTime
	result.Duration = endTime.Sub(startTime)
	result.Success = len(result.Errors) == 0 || result.TotalSections > 0

	return result, nil
}

// resolveOutputPath places bare CSV filenames under the configured output
// directory, falling back to the crawl cache dir when none is set. Paths
// that already name a directory pass through untouched.
func resolveOutputPath(cfg *config.Crawler, path string) string {
	if filepath.IsAbs(path) || filepath.Dir(path) != "." {
		return path
	}

	dir := cfg.OutputDir
	if dir == "" {
		dir = config.GetCrawlCacheDir()
	}

	return filepath.Join(dir, path)
}

func (o *Orchestrator) GetConfig() *config.Config {
	return o.config
}

func (o *Orchestrator) GetDB() *database.DB {
	return o.db
}

func (o *Orchestrator) GetES() *elastic.Client {
	return o.es
}

func (o *Orchestrator) GetLogger() *logrus.Logger {
	return o.logger
}
