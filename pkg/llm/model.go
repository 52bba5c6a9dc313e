package llm

import (
	"fmt"
	"strings"
)

const (
	ProviderOllama = "ollama"
	ProviderOpenAI = "openai"
)

// ModelRef identifies a chat model as "provider:name". The name may itself
// contain colons ("ollama:qwen2.5-coder:7b"), so only the first colon is
// significant. A bare name with no known provider prefix runs on ollama.
type ModelRef struct {
	Provider string
	Name     string
}

func ParseModelRef(s string) (ModelRef, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return ModelRef{}, fmt.Errorf("model reference must not be empty")
	}

	provider, name, found := strings.Cut(s, ":")
	if !found {
		return ModelRef{Provider: ProviderOllama, Name: s}, nil
	}

	switch provider {
	case ProviderOllama, ProviderOpenAI:
		if name == "" {
			return ModelRef{}, fmt.Errorf("model reference %q has no model name", s)
		}
		return ModelRef{Provider: provider, Name: name}, nil
	default:
		return ModelRef{Provider: ProviderOllama, Name: s}, nil
	}
}

func (r ModelRef) String() string {
	return r.Provider + ":" + r.Name
}
