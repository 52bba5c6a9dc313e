package orchestrator

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/lexscout/lexscout/pkg/database"
	"github.com/lexscout/lexscout/pkg/elastic"
	"github.com/lexscout/lexscout/pkg/llm"
	"github.com/lexscout/lexscout/pkg/session"
)

const researcherInstructions = `You are a legal research assistant working over the North Carolina
General Statutes. The statute corpus lives in a Postgres table named
"sections" with columns: chapter_number, chapter_title, article_number,
article_title, section_number, text, source_url, status. Use the sql_query
tool for structured questions, search_statutes for full-text lookups, and
lookup_section when you already know a section number. Always cite section
numbers (for example "G.S. 14-72") in your answers, and say so plainly when
the corpus does not contain an answer.`

type AskOptions struct {
	Question string
	Model    string
}

type AskResult struct {
	Answer   string
	Messages []llm.Message
	Rounds   int
	Duration time.Duration
}

func (o *Orchestrator) RunAsk(options AskOptions) (*AskResult, error) {
	startTime := time.Now()

	sess, err := session.New(o.config)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	llmCfg := o.config.LLM
	if options.Model != "" {
		llmCfg.Model = options.Model
	}

	agent, err := llm.NewAgent("statute-researcher", researcherInstructions, &llmCfg, sess)
	if err != nil {
		return nil, fmt.Errorf("failed to create agent: %w", err)
	}

	toolCount := o.registerResearchTools(agent)
	if toolCount == 0 {
		o.logger.Warn("No corpus backends available, agent will answer from model knowledge only")
	}

	ctx, cancel := context.WithTimeout(context.Background(),
		time.Duration(o.config.DefaultSettings.Timeout)*time.Minute)
	defer cancel()

	o.logger.Infof("Asking %s with %d tools", llmCfg.Model, toolCount)

	result, err := agent.Run(ctx, options.Question)
	if err != nil {
		return nil, err
	}

	return &AskResult{
		Answer:   result.Output,
		Messages: result.Messages,
		Rounds:   result.Rounds,
		Duration: time.Since(startTime),
	}, nil
}

func (o *Orchestrator) registerResearchTools(agent *llm.Agent) int {
	count := 0

	if o.db != nil && o.db.IsEnabled() {
		agent.RegisterTool(sqlQueryTool(o.db))
		agent.RegisterTool(lookupSectionTool(o.db))
		count += 2
	}

	if o.es != nil {
		agent.RegisterTool(searchStatutesTool(o.es))
		count++
	}

	return count
}

func sqlQueryTool(db *database.DB) llm.Tool {
	return llm.Tool{
		Name: "sql_query",
		Description: "Run a read-only SQL SELECT against the statute corpus. " +
			"The only table is \"sections\". Returns rows as JSON, capped at 50.",
		Parameters: json.RawMessage(`{
			"type": "object",
			"properties": {
				"query": {
					"type": "string",
					"description": "A single SELECT (or WITH) statement."
				}
			},
			"required": ["query"]
		}`),
		Run: func(ctx context.Context, args json.RawMessage) (string, error) {
			var params struct {
				Query string `json:"query"`
			}
			if err := json.Unmarshal(args, &params); err != nil {
				return "", fmt.Errorf("invalid arguments: %w", err)
			}

			return db.RunReadOnlyQuery(ctx, params.Query, database.DefaultQueryRowLimit)
		},
	}
}

func lookupSectionTool(db *database.DB) llm.Tool {
	return llm.Tool{
		Name: "lookup_section",
		Description: "Fetch the full text of one statute section by its " +
			"section number, for example \"14-72\".",
		Parameters: json.RawMessage(`{
			"type": "object",
			"properties": {
				"section_number": {
					"type": "string",
					"description": "The statute section number."
				},
				"chapter_number": {
					"type": "string",
					"description": "Optional chapter number to disambiguate."
				}
			},
			"required": ["section_number"]
		}`),
		Run: func(ctx context.Context, args json.RawMessage) (string, error) {
			var params struct {
				SectionNumber string `json:"section_number"`
				ChapterNumber string `json:"chapter_number"`
			}
			if err := json.Unmarshal(args, &params); err != nil {
				return "", fmt.Errorf("invalid arguments: %w", err)
			}

			record, err := db.LookupSection(params.SectionNumber, params.ChapterNumber)
			if err != nil {
				return "", err
			}

			encoded, err := json.Marshal(record)
			if err != nil {
				return "", fmt.Errorf("failed to encode section: %w", err)
			}

			return string(encoded), nil
		},
	}
}

func searchStatutesTool(es *elastic.Client) llm.Tool {
	return llm.Tool{
		Name: "search_statutes",
		Description: "Full-text search over statute section text and titles. " +
			"Use for natural-language lookups when you do not know section numbers.",
		Parameters: json.RawMessage(`{
			"type": "object",
			"properties": {
				"query": {
					"type": "string",
					"description": "Search terms."
				},
				"size": {
					"type": "integer",
					"description": "Maximum hits to return, default 10."
				}
			},
			"required": ["query"]
		}`),
		Run: func(ctx context.Context, args json.RawMessage) (string, error) {
			var params struct {
				Query string `json:"query"`
				Size  int    `json:"size"`
			}
			if err := json.Unmarshal(args, &params); err != nil {
				return "", fmt.Errorf("invalid arguments: %w", err)
			}

			hits, err := es.Search(ctx, params.Query, params.Size)
			if err != nil {
				return "", err
			}

			encoded, err := json.Marshal(hits)
			if err != nil {
				return "", fmt.Errorf("failed to encode hits: %w", err)
			}

			return string(encoded), nil
		},
	}
}
