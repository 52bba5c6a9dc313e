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

	"github.com/lexscout/lexscout/pkg/config"
	"github.com/lexscout/lexscout/pkg/llm"
	"github.com/lexscout/lexscout/pkg/session"
)

var demoName string

// The Name Cactifier is the smallest possible tool-calling agent. It exists
// to smoke-test a model's function calling without needing the corpus.
var demoCmd = &cobra.Command{
	Use:   "demo",
	Short: "Run the Name Cactifier demo agent",
	Long:  `Run a tiny tool-calling agent that transforms names to be more cactus-like, useful for verifying model and tool setup`,
	Run:   runDemo,
}

func init() {
	demoCmd.Flags().StringVar(&demoName, "name", "Colin", "name to cactus-ify")
	rootCmd.AddCommand(demoCmd)
}

// CactifyName makes a name more cactus-like: drop a trailing s or x, then a
// trailing vowel, then append "actus".
func CactifyName(name string) string {
	base := name
	lower := strings.ToLower(base)

	if strings.HasSuffix(lower, "s") || strings.HasSuffix(lower, "x") {
		base = base[:len(base)-1]
		lower = lower[:len(lower)-1]
	}

	if base != "" && strings.ContainsRune("aeiou", rune(lower[len(lower)-1])) {
		base = base[:len(base)-1]
	}

	return base + "actus"
}

func runDemo(cmd *cobra.Command, args []string) {
	Verbose = verbose
	if verbose {
		setDebugLogFunctions()
	}

	manager := config.NewManager(configFile)
	if err := manager.LoadConfig(); err != nil {
		color.Red("Failed to load configuration: %v", err)
		os.Exit(1)
	}
	cfg := manager.GetConfig()

	if modelFlag != "" {
		cfg.LLM.Model = modelFlag
	}

	sess, err := session.New(cfg)
	if err != nil {
		color.Red("Failed to create session: %v", err)
		os.Exit(1)
	}

	agent, err := llm.NewAgent("name-cactifier",
		"You are a friendly agent that transforms people's names to make them more cactus-like using specific rules.",
		&cfg.LLM, sess)
	if err != nil {
		color.Red("Failed to create agent: %v", err)
		os.Exit(1)
	}

	agent.RegisterTool(llm.Tool{
		Name:        "cactify_name",
		Description: "Makes a name more cactus-like.",
		Parameters: json.RawMessage(`{
			"type": "object",
			"properties": {
				"name": {
					"type": "string",
					"description": "The name to transform."
				}
			},
			"required": ["name"]
		}`),
		Run: func(ctx context.Context, args json.RawMessage) (string, error) {
			var params struct {
				Name string `json:"name"`
			}
			if err := json.Unmarshal(args, &params); err != nil {
				return "", fmt.Errorf("invalid arguments: %w", err)
			}
			return CactifyName(params.Name), nil
		},
	})

	ctx, cancel := context.WithTimeout(context.Background(),
		time.Duration(cfg.DefaultSettings.Timeout)*time.Minute)
	defer cancel()

	prompt := fmt.Sprintf("What would my name, %s, be if it were cactus-ified?", demoName)

	result, err := agent.Run(ctx, prompt)
	if err != nil {
		color.Red("Demo failed: %v", err)
		os.Exit(1)
	}

	fmt.Println()
	fmt.Println("Response:", result.Output)

	if verbose {
		transcript, err := llm.FormatTranscript(result.Messages)
		if err == nil {
			fmt.Println()
			fmt.Println(transcript)
		}
	}
}
