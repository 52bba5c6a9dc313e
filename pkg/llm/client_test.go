package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lexscout/lexscout/pkg/config"
	"github.com/lexscout/lexscout/pkg/session"
)

func testSession(t *testing.T) (*session.Session, *config.Config) {
	t.Helper()

	cfg := &config.Config{
		DefaultSettings: config.DefaultSettings{Timeout: 5},
		LLM: config.LLM{
			Model:         "ollama:test-model",
			MaxTokens:     256,
			Temperature:   0.1,
			MaxToolRounds: 5,
		},
	}

	sess, err := session.New(cfg)
	require.NoError(t, err)

	return sess, cfg
}

func chatHandler(t *testing.T, reply Message, check func(r *http.Request, req ChatRequest)) http.HandlerFunc {
	t.Helper()

	return func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v1/chat/completions", r.URL.Path)

		var req ChatRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))

		if check != nil {
			check(r, req)
		}

		resp := ChatResponse{
			Model:   req.Model,
			Choices: []Choice{{Message: reply, FinishReason: "stop"}},
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(resp)
	}
}

func TestClientChatOllama(t *testing.T) {
	sess, cfg := testSession(t)

	srv := httptest.NewServer(chatHandler(t, Message{Role: "assistant", Content: "hi there"},
		func(r *http.Request, req ChatRequest) {
			assert.Empty(t, r.Header.Get("Authorization"))
			assert.Equal(t, "test-model", req.Model)
			assert.Equal(t, 256, req.MaxTokens)
		}))
	defer srv.Close()

	cfg.LLM.OllamaBaseURL = srv.URL

	client, err := NewClient(ModelRef{Provider: ProviderOllama, Name: "test-model"}, &cfg.LLM, sess)
	require.NoError(t, err)

	resp, err := client.Chat(context.Background(), &ChatRequest{
		Messages:  []Message{{Role: "user", Content: "hello"}},
		MaxTokens: cfg.LLM.MaxTokens,
	})
	require.NoError(t, err)
	assert.Equal(t, "hi there", resp.Choices[0].Message.Content)
}

func TestClientChatOpenAISendsAuth(t *testing.T) {
	sess, cfg := testSession(t)

	srv := httptest.NewServer(chatHandler(t, Message{Role: "assistant", Content: "ok"},
		func(r *http.Request, req ChatRequest) {
			assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))
		}))
	defer srv.Close()

	cfg.LLM.OpenAIBaseURL = srv.URL
	cfg.LLM.OpenAIAPIKey = "sk-test"

	client, err := NewClient(ModelRef{Provider: ProviderOpenAI, Name: "gpt-4o-mini"}, &cfg.LLM, sess)
	require.NoError(t, err)

	_, err = client.Chat(context.Background(), &ChatRequest{
		Messages: []Message{{Role: "user", Content: "hello"}},
	})
	require.NoError(t, err)
}

func TestClientOpenAIRequiresKey(t *testing.T) {
	sess, cfg := testSession(t)
	cfg.LLM.OpenAIAPIKey = ""

	_, err := NewClient(ModelRef{Provider: ProviderOpenAI, Name: "gpt-4o-mini"}, &cfg.LLM, sess)
	assert.Error(t, err)
}

func TestClientChatErrorStatus(t *testing.T) {
	sess, cfg := testSession(t)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error": "model not found"}`, http.StatusNotFound)
	}))
	defer srv.Close()

	cfg.LLM.OllamaBaseURL = srv.URL

	client, err := NewClient(ModelRef{Provider: ProviderOllama, Name: "missing"}, &cfg.LLM, sess)
	require.NoError(t, err)

	_, err = client.Chat(context.Background(), &ChatRequest{
		Messages: []Message{{Role: "user", Content: "hello"}},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "404")
}

func TestClientChatNoChoices(t *testing.T) {
	sess, cfg := testSession(t)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(ChatResponse{})
	}))
	defer srv.Close()

	cfg.LLM.OllamaBaseURL = srv.URL

	client, err := NewClient(ModelRef{Provider: ProviderOllama, Name: "test-model"}, &cfg.LLM, sess)
	require.NoError(t, err)

	_, err = client.Chat(context.Background(), &ChatRequest{
		Messages: []Message{{Role: "user", Content: "hello"}},
	})
	assert.Error(t, err)
}
