package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseModelRef(t *testing.T) {
	tests := []struct {
		input    string
		provider string
		name     string
	}{
		{"ollama:qwen2.5-coder:7b", ProviderOllama, "qwen2.5-coder:7b"},
		{"openai:gpt-4o-mini", ProviderOpenAI, "gpt-4o-mini"},
		{"ollama:llama3", ProviderOllama, "llama3"},
		{"llama3", ProviderOllama, "llama3"},
		{"qwen2.5-coder:7b", ProviderOllama, "qwen2.5-coder:7b"},
		{"  openai:gpt-4o-mini  ", ProviderOpenAI, "gpt-4o-mini"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			ref, err := ParseModelRef(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.provider, ref.Provider)
			assert.Equal(t, tt.name, ref.Name)
		})
	}
}

func TestParseModelRefErrors(t *testing.T) {
	_, err := ParseModelRef("")
	assert.Error(t, err)

	_, err = ParseModelRef("   ")
	assert.Error(t, err)

	_, err = ParseModelRef("ollama:")
	assert.Error(t, err)

	_, err = ParseModelRef("openai:")
	assert.Error(t, err)
}

func TestModelRefString(t *testing.T) {
	ref, err := ParseModelRef("openai:gpt-4o-mini")
	require.NoError(t, err)
	assert.Equal(t, "openai:gpt-4o-mini", ref.String())
}
