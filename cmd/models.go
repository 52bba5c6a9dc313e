package cmd

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/lexscout/lexscout/pkg/config"
	"github.com/lexscout/lexscout/pkg/llm"
)

var modelsCmd = &cobra.Command{
	Use:   "models",
	Short: "List models available on the local ollama server",
	Run:   runModelsList,
}

var modelsPullCmd = &cobra.Command{
	Use:   "pull <model>",
	Short: "Pull a model onto the local ollama server",
	Run:   runModelsPull,
}

func init() {
	modelsCmd.AddCommand(modelsPullCmd)
	rootCmd.AddCommand(modelsCmd)
}

func loadOllamaClient() *llm.OllamaClient {
	Verbose = verbose
	if verbose {
		setDebugLogFunctions()
	}

	manager := config.NewManager(configFile)
	if err := manager.LoadConfig(); err != nil {
		color.Red("Failed to load configuration: %v", err)
		os.Exit(1)
	}

	return llm.NewOllamaClient(manager.GetConfig().LLM.OllamaBaseURL, nil)
}

func runModelsList(cmd *cobra.Command, args []string) {
	client := loadOllamaClient()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	models, err := client.ListModels(ctx)
	if err != nil {
		color.Red("Failed to list models: %v", err)
		os.Exit(1)
	}

	if len(models) == 0 {
		color.Yellow("[INF] No models installed. Run 'lexscout models pull <model>' to get one.")
		return
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', 0)
	fmt.Fprintln(w, color.CyanString("NAME\tSIZE\tMODIFIED"))

	for _, model := range models {
		fmt.Fprintf(w, "%s\t%.1f GB\t%s\n",
			model.Name,
			float64(model.Size)/(1024*1024*1024),
			model.ModifiedAt.Format("2006-01-02 15:04:05"),
		)
	}
	w.Flush()

	color.Green("\nTotal models: %d", len(models))
}

func runModelsPull(cmd *cobra.Command, args []string) {
	if len(args) != 1 {
		color.Red("Error: exactly one model name is required")
		cmd.Help()
		os.Exit(1)
	}

	client := loadOllamaClient()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Minute)
	defer cancel()

	fmt.Printf("Pulling %s...\n", args[0])

	err := client.PullModel(ctx, args[0], func(status string) {
		fmt.Printf("  %s\n", status)
	})
	if err != nil {
		color.Red("Pull failed: %v", err)
		os.Exit(1)
	}

	color.Green("✓ Model %s ready", args[0])
}
