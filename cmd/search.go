package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/lexscout/lexscout/pkg/orchestrator"
)

var searchSize int

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Full-text search the statute index",
	Long:  `Search the Elasticsearch statute index and print matching sections`,
	Run:   runSearch,
}

func init() {
	searchCmd.Flags().IntVar(&searchSize, "size", 10, "maximum number of hits to return")
	searchCmd.Flags().BoolVarP(&jsonFormat, "json", "j", false, "write output in JSONL(ines) format")
	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) {
	if len(args) == 0 {
		color.Red("Error: a search query is required")
		cmd.Help()
		os.Exit(1)
	}
	query := strings.Join(args, " ")

	Verbose = verbose
	if verbose {
		setDebugLogFunctions()
	}

	orch, err := orchestrator.NewOrchestrator(configFile)
	if err != nil {
		color.Red("Failed to initialize orchestrator: %v", err)
		os.Exit(1)
	}

	es := orch.GetES()
	if es == nil {
		color.Red("Error: Elasticsearch is not enabled. Please enable it in config.yaml")
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	hits, err := es.Search(ctx, query, searchSize)
	if err != nil {
		color.Red("Search failed: %v", err)
		os.Exit(1)
	}

	if len(hits) == 0 {
		color.Yellow("[INF] No sections matched %q.", query)
		return
	}

	for _, hit := range hits {
		if jsonFormat {
			jsonBytes, _ := json.Marshal(hit.Section)
			fmt.Println(string(jsonBytes))
			continue
		}

		color.Cyan("G.S. %s — %s (chapter %s, score %.2f)",
			hit.Section.SectionNumber, hit.Section.ArticleTitle,
			hit.Section.ChapterNumber, hit.Score)
		fmt.Println(excerpt(hit.Section.Text, 240))
		fmt.Println()
	}

	if !silent && !jsonFormat {
		color.Green("Found %d matching sections", len(hits))
	}
}

func excerpt(text string, max int) string {
	text = strings.Join(strings.Fields(text), " ")
	runes := []rune(text)
	if len(runes) <= max {
		return text
	}
	return string(runes[:max]) + "..."
}
