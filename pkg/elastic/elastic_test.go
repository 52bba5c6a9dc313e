package elastic

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	es8 "github.com/elastic/go-elasticsearch/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lexscout/lexscout/pkg/scraper"
)

// bulkHandler answers _bulk requests with one response item per document,
// either all accepted or all rejected.
func bulkHandler(t *testing.T, rejectAll bool) http.HandlerFunc {
	t.Helper()

	return func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/_bulk", r.URL.Path)

		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)

		// Action metadata and document source alternate, one pair per doc.
		lines := strings.Split(strings.TrimSpace(string(body)), "\n")
		docs := len(lines) / 2

		items := make([]map[string]interface{}, 0, docs)
		for i := 0; i < docs; i++ {
			item := map[string]interface{}{"_id": fmt.Sprintf("%d", i), "status": 201}
			if rejectAll {
				item["status"] = 400
				item["error"] = map[string]interface{}{
					"type":   "mapper_parsing_exception",
					"reason": "rejected",
				}
			}
			items = append(items, map[string]interface{}{"index": item})
		}

		w.Header().Set("X-Elastic-Product", "Elasticsearch")
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"took":   1,
			"errors": rejectAll,
			"items":  items,
		})
	}
}

func testClient(t *testing.T, url string) *Client {
	t.Helper()

	es, err := es8.NewClient(es8.Config{Addresses: []string{url}})
	require.NoError(t, err)

	return &Client{es: es, index: "sections"}
}

func testSections(n int) []scraper.Section {
	sections := make([]scraper.Section, n)
	for i := range sections {
		sections[i] = scraper.Section{
			ChapterNumber: "14",
			SectionNumber: fmt.Sprintf("14-%d", i),
			Text:          "section text",
		}
	}
	return sections
}

func TestIndexSections(t *testing.T) {
	srv := httptest.NewServer(bulkHandler(t, false))
	defer srv.Close()

	c := testClient(t, srv.URL)

	err := c.IndexSections(context.Background(), testSections(100))
	assert.NoError(t, err)
}

// Enough documents that failures land on all indexer workers concurrently;
// the count must still come out exact.
func TestIndexSectionsCountsEveryFailure(t *testing.T) {
	srv := httptest.NewServer(bulkHandler(t, true))
	defer srv.Close()

	c := testClient(t, srv.URL)

	err := c.IndexSections(context.Background(), testSections(2000))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "2000 sections failed to index")
}
