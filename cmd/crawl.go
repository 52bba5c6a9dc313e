package cmd

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/lexscout/lexscout/pkg/orchestrator"
)

var (
	crawlStart  string
	crawlMax    int
	crawlOutput string
	crawlIndex  bool
	crawlStats  bool
)

var crawlCmd = &cobra.Command{
	Use:   "crawl",
	Short: "Download the statute corpus",
	Long:  `Crawl the NC General Statutes chapter by chapter into CSV, Postgres, and Elasticsearch`,
	Run:   runCrawl,
}

func init() {
	crawlCmd.Flags().StringVar(&crawlStart, "start", "", "starting chapter number (default: first chapter)")
	crawlCmd.Flags().IntVar(&crawlMax, "max", 0, "maximum number of chapters to crawl (default: all)")
	crawlCmd.Flags().StringVarP(&crawlOutput, "output", "o", "", "CSV file to write sections to")
	crawlCmd.Flags().BoolVar(&crawlIndex, "index", false, "index crawled sections into elasticsearch")
	crawlCmd.Flags().BoolVar(&crawlStats, "stats", false, "display per-chapter statistics after crawl")
	crawlCmd.Flags().BoolVarP(&jsonFormat, "json", "j", false, "write output in JSONL(ines) format")
	rootCmd.AddCommand(crawlCmd)
}

func runCrawl(cmd *cobra.Command, args []string) {
	Verbose = verbose
	if verbose {
		setDebugLogFunctions()
	}

	orch, err := orchestrator.NewOrchestrator(configFile)
	if err != nil {
		color.Red("Failed to initialize orchestrator: %v", err)
		os.Exit(1)
	}

	result, err := orch.RunCrawl(orchestrator.CrawlOptions{
		StartChapter: crawlStart,
		MaxChapters:  crawlMax,
		OutputCSV:    crawlOutput,
		Index:        crawlIndex,
		JSONFormat:   jsonFormat,
		Stats:        crawlStats,
	})
	if err != nil {
		color.Red("Crawl failed: %v", err)
		os.Exit(1)
	}

	if !silent {
		color.Green("\nCrawl completed: %d sections from %d chapters in %v",
			result.TotalSections, result.TotalChapters, result.Duration)
		if len(result.Errors) > 0 {
			color.Yellow("%d chapters had errors", len(result.Errors))
		}
	}

	if crawlStats && !silent {
		displayCrawlStatistics(result)
	}

	if !result.Success {
		os.Exit(1)
	}
}

func displayCrawlStatistics(result *orchestrator.CrawlResult) {
	fmt.Println()
	color.Cyan("[INF] Printing chapter statistics")
	fmt.Println()

	fmt.Printf(" %-10s %-15s %-12s %-10s\n", "Chapter", "Duration", "Sections", "Errors")
	color.Cyan(strings.Repeat("─", 50))

	stats := result.ChapterStats
	sort.Slice(stats, func(i, j int) bool {
		return stats[i].Chapter < stats[j].Chapter
	})

	for _, stat := range stats {
		duration := fmt.Sprintf("%.0fms", stat.Duration.Seconds()*1000)
		if stat.Duration.Seconds() >= 1 {
			duration = fmt.Sprintf("%.3fs", stat.Duration.Seconds())
		}

		fmt.Printf(" %-10s %-15s %-12d %-10d\n",
			stat.Chapter,
			duration,
			stat.Sections,
			stat.Errors,
		)
	}

	fmt.Println()
}
