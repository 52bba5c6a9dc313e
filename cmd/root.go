package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/lexscout/lexscout/pkg/config"
	"github.com/lexscout/lexscout/pkg/database"
	"github.com/lexscout/lexscout/pkg/llm"
	"github.com/lexscout/lexscout/pkg/orchestrator"
	"github.com/lexscout/lexscout/pkg/scraper"
	"github.com/lexscout/lexscout/pkg/session"
)

var (
	configFile string
	question   string
	modelFlag  string
	jsonFormat bool
	silent     bool
	verbose    bool
)

var Verbose bool

var rootCmd = &cobra.Command{
	Use:   "lexscout",
	Short: "llm powered statute corpus and agent tool",
	Long:  `crawl the NC General Statutes into Postgres and Elasticsearch, then ask questions with a tool-calling LLM agent`,
	Run:   runAsk,
}

func Execute() {
	hasSilentFlag := false
	for i, arg := range os.Args {
		if arg == "-silent" {
			os.Args[i] = "--silent"
			hasSilentFlag = true
		}
		if arg == "-stats" {
			os.Args[i] = "--stats"
		}
		if arg == "-index" {
			os.Args[i] = "--index"
		}
		if arg == "-transcript" {
			os.Args[i] = "--transcript"
		}
	}

	if !hasSilentFlag {
		printBanner()
	}

	if err := rootCmd.Execute(); err != nil {
		color.Red("Error: %v", err)
		os.Exit(1)
	}
}

func DebugLog(format string, args ...interface{}) {
	if Verbose {
		fmt.Printf("[DBG] "+format+"\n", args...)
	}
}

func setDebugLogFunctions() {
	config.DebugLog = DebugLog
	session.DebugLog = DebugLog
	llm.DebugLog = DebugLog
	scraper.DebugLog = DebugLog
	orchestrator.DebugLog = DebugLog
	database.DebugLog = DebugLog
}

func init() {
	rootCmd.SetHelpTemplate(`Usage:
  {{.UseLine}}{{if .HasAvailableSubCommands}}
  {{.CommandPath}} [command]{{end}}

{{if .HasAvailableSubCommands}}Commands:{{range .Commands}}{{if (or .IsAvailableCommand (eq .Name "help"))}}
  {{rpad .Name .NamePadding }} {{.Short}}{{end}}{{end}}

{{end}}Flags:
ASK:
   -q, -question string    question to ask the statute research agent
   -m, -model string       model reference (e.g., 'ollama:qwen2.5-coder:7b', 'openai:gpt-4o-mini')
   -transcript             print the full agent transcript after the answer

OUTPUT:
   -j, -json               write output in JSONL(ines) format
   -silent                 silent mode - no banner or extra output

CONFIGURATION:
   -c, -config string      config file path (default: config/config.yaml)

OPTIMIZATION:
   -v, -verbose            enable verbose/debug output
{{if .HasAvailableSubCommands}}
Use "{{.CommandPath}} [command] --help" for more information about a command.{{end}}
`)

	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "config file path (default: config/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose/debug output")
	rootCmd.PersistentFlags().BoolVar(&silent, "silent", false, "silent mode - no banner or extra output")

	rootCmd.Flags().StringVarP(&question, "question", "q", "", "question to ask the statute research agent")
	rootCmd.Flags().StringVarP(&modelFlag, "model", "m", "", "model reference (e.g., 'ollama:qwen2.5-coder:7b')")
	rootCmd.Flags().BoolVarP(&jsonFormat, "json", "j", false, "write output in JSONL(ines) format")
	rootCmd.Flags().BoolVar(&showTranscript, "transcript", false, "print the full agent transcript after the answer")

	rootCmd.AddCommand(versionCmd)
}

var showTranscript bool

func runAsk(cmd *cobra.Command, args []string) {
	if question == "" && len(args) > 0 {
		question = strings.Join(args, " ")
	}

	if question == "" {
		color.Red("Error: -q (question) is required")
		cmd.Help()
		os.Exit(1)
	}

	Verbose = verbose
	if verbose {
		setDebugLogFunctions()
	}

	orch, err := orchestrator.NewOrchestrator(configFile)
	if err != nil {
		color.Red("Failed to initialize orchestrator: %v", err)
		os.Exit(1)
	}

	result, err := orch.RunAsk(orchestrator.AskOptions{
		Question: question,
		Model:    modelFlag,
	})
	if err != nil {
		color.Red("Ask failed: %v", err)
		os.Exit(1)
	}

	if jsonFormat {
		printAskJSON(result)
	} else {
		fmt.Println()
		fmt.Println(result.Answer)
	}

	if showTranscript {
		transcript, err := llm.FormatTranscript(result.Messages)
		if err != nil {
			color.Red("Failed to format transcript: %v", err)
		} else {
			fmt.Println()
			color.Cyan("--- transcript ---")
			fmt.Println(transcript)
		}
	}

	if !silent && !jsonFormat {
		fmt.Println()
		color.Green("Answered in %v (%d rounds)", result.Duration, result.Rounds)
	}
}

type askLine struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
	Rounds   int    `json:"rounds"`
}

func printAskJSON(result *orchestrator.AskResult) {
	line := askLine{
		Question: question,
		Answer:   result.Answer,
		Rounds:   result.Rounds,
	}
	jsonBytes, err := json.Marshal(line)
	if err != nil {
		color.Red("Failed to marshal JSON: %v", err)
		return
	}
	fmt.Println(string(jsonBytes))
}

func printBanner() {
	banner := color.CyanString(`
┬  ┌─┐─┐┬┌─┐┌─┐┌─┐┬ ┬┌┬┐
│  ├┤ ┌┼┘└─┐│  │ ││ │ │
┴─┘└─┘┴ └┴└─┘└─┘└─┘└─┘ ┴
`)
	info := color.HiBlackString("llm powered statute corpus crawler & research agent")
	fmt.Println(banner)
	fmt.Println(info)
	fmt.Println()
}
