package llm

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/lexscout/lexscout/pkg/config"
	"github.com/lexscout/lexscout/pkg/session"
)

var DebugLog func(string, ...interface{})

type ToolFunc func(ctx context.Context, args json.RawMessage) (string, error)

type Tool struct {
	Name        string
	Description string
	Parameters  json.RawMessage
	Run         ToolFunc
}

// Agent drives a tool-calling conversation loop: the model either answers
// or requests tool calls, whose results are fed back until it answers or
// the round limit trips.
type Agent struct {
	Name         string
	Instructions string

	client *Client
	cfg    *config.LLM
	tools  []Tool
	byName map[string]*Tool
}

type RunResult struct {
	Output   string
	Messages []Message
	Rounds   int
}

func NewAgent(name, instructions string, cfg *config.LLM, s *session.Session) (*Agent, error) {
	ref, err := ParseModelRef(cfg.Model)
	if err != nil {
		return nil, err
	}

	client, err := NewClient(ref, cfg, s)
	if err != nil {
		return nil, err
	}

	return &Agent{
		Name:         name,
		Instructions: instructions,
		client:       client,
		cfg:          cfg,
		byName:       make(map[string]*Tool),
	}, nil
}

func (a *Agent) RegisterTool(tool Tool) {
	a.tools = append(a.tools, tool)
	a.byName[tool.Name] = &a.tools[len(a.tools)-1]
}

func (a *Agent) toolDefs() []ToolDef {
	if len(a.tools) == 0 {
		return nil
	}

	defs := make([]ToolDef, 0, len(a.tools))
	for _, tool := range a.tools {
		defs = append(defs, ToolDef{
			Type: "function",
			Function: FunctionDef{
				Name:        tool.Name,
				Description: tool.Description,
				Parameters:  tool.Parameters,
			},
		})
	}

	return defs
}

func (a *Agent) Run(ctx context.Context, prompt string) (*RunResult, error) {
	messages := []Message{}

	if a.Instructions != "" {
		messages = append(messages, Message{Role: "system", Content: a.Instructions})
	}
	messages = append(messages, Message{Role: "user", Content: prompt})

	for round := 1; round <= a.cfg.MaxToolRounds; round++ {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		if DebugLog != nil {
			DebugLog("[%s] round %d/%d, %d messages", a.Name, round, a.cfg.MaxToolRounds, len(messages))
		}

		resp, err := a.client.Chat(ctx, &ChatRequest{
			Messages:    messages,
			Tools:       a.toolDefs(),
			Temperature: a.cfg.Temperature,
			MaxTokens:   a.cfg.MaxTokens,
		})
		if err != nil {
			return nil, fmt.Errorf("model call failed: %w", err)
		}

		reply := resp.Choices[0].Message
		messages = append(messages, reply)

		if len(reply.ToolCalls) == 0 {
			return &RunResult{
				Output:   reply.Content,
				Messages: messages,
				Rounds:   round,
			}, nil
		}

		for _, call := range reply.ToolCalls {
			messages = append(messages, a.dispatch(ctx, call))
		}
	}

	return nil, fmt.Errorf("agent %q exceeded %d tool rounds without a final answer",
		a.Name, a.cfg.MaxToolRounds)
}

// Tool failures go back to the model as tool output rather than aborting
// the run, so it can recover or rephrase.
func (a *Agent) dispatch(ctx context.Context, call ToolCall) Message {
	result := Message{
		Role:       "tool",
		ToolCallID: call.ID,
		Name:       call.Function.Name,
	}

	tool, ok := a.byName[call.Function.Name]
	if !ok {
		result.Content = fmt.Sprintf("error: unknown tool %q", call.Function.Name)
		return result
	}

	if DebugLog != nil {
		DebugLog("[%s] calling tool %s(%s)", a.Name, call.Function.Name, call.Function.Arguments)
	}

	output, err := tool.Run(ctx, json.RawMessage(call.Function.Arguments))
	if err != nil {
		result.Content = fmt.Sprintf("error: %v", err)
		return result
	}

	result.Content = output
	return result
}
