package elastic

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"

	es8 "github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esutil"

	"github.com/lexscout/lexscout/pkg/config"
	"github.com/lexscout/lexscout/pkg/scraper"
)

type Client struct {
	es    *es8.Client
	index string
}

type SectionHit struct {
	Score   float64
	Section scraper.Section
}

func New(cfg config.Elastic) (*Client, error) {
	if cfg.URL == "" {
		return nil, errors.New("elasticsearch URL is required")
	}
	index := cfg.Index
	if strings.TrimSpace(index) == "" {
		index = "lexscout_sections"
	}

	es, err := es8.NewClient(es8.Config{
		Addresses: []string{cfg.URL},
		Username:  cfg.Username,
		Password:  cfg.Password,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create elasticsearch client: %w", err)
	}

	// Lightweight ping
	if _, err := es.Info(); err != nil {
		return nil, fmt.Errorf("failed to connect to elasticsearch: %w", err)
	}

	return &Client{es: es, index: index}, nil
}

// IndexSections bulk-indexes crawled sections, keyed by chapter and section
// number so re-crawls overwrite instead of duplicating.
func (c *Client) IndexSections(ctx context.Context, sections []scraper.Section) error {
	bi, err := esutil.NewBulkIndexer(esutil.BulkIndexerConfig{
		Client:     c.es,
		Index:      c.index,
		NumWorkers: 4,
	})
	if err != nil {
		return fmt.Errorf("failed to create bulk indexer: %w", err)
	}

	// OnFailure runs on the indexer's worker goroutines.
	var failed atomic.Int64

	for _, section := range sections {
		doc, err := json.Marshal(section)
		if err != nil {
			return fmt.Errorf("failed to marshal section: %w", err)
		}

		docID := ""
		if section.SectionNumber != "" {
			docID = section.ChapterNumber + ":" + section.SectionNumber
		}

		item := esutil.BulkIndexerItem{
			Action:     "index",
			DocumentID: docID,
			Body:       bytes.NewReader(doc),
			OnFailure: func(ctx context.Context, item esutil.BulkIndexerItem, resp esutil.BulkIndexerResponseItem, err error) {
				failed.Add(1)
			},
		}
		if err := bi.Add(ctx, item); err != nil {
			return fmt.Errorf("bulk add failed: %w", err)
		}
	}

	if err := bi.Close(ctx); err != nil {
		return fmt.Errorf("bulk indexer close failed: %w", err)
	}

	if n := failed.Load(); n > 0 {
		return fmt.Errorf("%d sections failed to index", n)
	}

	return nil
}

type searchResponse struct {
	Hits struct {
		Hits []struct {
			Score  float64         `json:"_score"`
			Source scraper.Section `json:"_source"`
		} `json:"hits"`
	} `json:"hits"`
}

// Search runs a full-text query over section text, article, and chapter
// titles.
func (c *Client) Search(ctx context.Context, query string, size int) ([]SectionHit, error) {
	if size <= 0 {
		size = 10
	}

	body := map[string]interface{}{
		"size": size,
		"query": map[string]interface{}{
			"multi_match": map[string]interface{}{
				"query":  query,
				"fields": []string{"text", "article", "chapter_title", "section_number"},
			},
		},
	}

	encoded, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal search body: %w", err)
	}

	resp, err := c.es.Search(
		c.es.Search.WithContext(ctx),
		c.es.Search.WithIndex(c.index),
		c.es.Search.WithBody(bytes.NewReader(encoded)),
	)
	if err != nil {
		return nil, fmt.Errorf("search failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.IsError() {
		return nil, fmt.Errorf("search returned status %s", resp.Status())
	}

	var decoded searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("failed to decode search response: %w", err)
	}

	hits := make([]SectionHit, 0, len(decoded.Hits.Hits))
	for _, hit := range decoded.Hits.Hits {
		hits = append(hits, SectionHit{
			Score:   hit.Score,
			Section: hit.Source,
		})
	}

	return hits, nil
}
