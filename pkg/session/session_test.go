package session

import (
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lexscout/lexscout/pkg/config"
)

func TestNewAppliesTimeout(t *testing.T) {
	sess, err := New(&config.Config{
		DefaultSettings: config.DefaultSettings{Timeout: 10},
	})
	require.NoError(t, err)
	assert.Equal(t, "30s", sess.Client.Timeout.String())
}

func TestNewInstallsLoggingTransportForDebugHTTP(t *testing.T) {
	prev := DebugLog
	DebugLog = nil
	defer func() { DebugLog = prev }()

	sess, err := New(&config.Config{
		DefaultSettings: config.DefaultSettings{Timeout: 5},
		LLM:             config.LLM{DebugHTTP: true},
	})
	require.NoError(t, err)

	lt, ok := sess.Client.Transport.(*LoggingTransport)
	require.True(t, ok)
	// Without verbose mode the transport needs its own log sink.
	assert.NotNil(t, lt.Logf)
}

func TestNewPlainTransportByDefault(t *testing.T) {
	prev := DebugLog
	DebugLog = nil
	defer func() { DebugLog = prev }()

	sess, err := New(&config.Config{
		DefaultSettings: config.DefaultSettings{Timeout: 5},
	})
	require.NoError(t, err)

	_, ok := sess.Client.Transport.(*LoggingTransport)
	assert.False(t, ok)
}

func TestLoggingTransportUsesLogfWhenDebugLogUnset(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"ok": true}`)
	}))
	defer srv.Close()

	prev := DebugLog
	DebugLog = nil
	defer func() { DebugLog = prev }()

	var logged []string
	client := &http.Client{Transport: &LoggingTransport{
		Transport: http.DefaultTransport,
		Logf: func(format string, args ...interface{}) {
			logged = append(logged, fmt.Sprintf(format, args...))
		},
	}}

	resp, err := client.Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.JSONEq(t, `{"ok": true}`, string(body))

	joined := strings.Join(logged, "\n")
	assert.Contains(t, joined, "<<< 200 "+srv.URL)
	assert.Contains(t, joined, `"ok": true`)
}

func TestLoggingTransportKeepsBodyReadable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"answer": 42}`)
	}))
	defer srv.Close()

	var logged []string
	prev := DebugLog
	DebugLog = func(format string, args ...interface{}) {
		logged = append(logged, fmt.Sprintf(format, args...))
	}
	defer func() { DebugLog = prev }()

	client := &http.Client{Transport: &LoggingTransport{Transport: http.DefaultTransport}}

	resp, err := client.Post(srv.URL, "application/json", strings.NewReader(`{"question": "life"}`))
	require.NoError(t, err)
	defer resp.Body.Close()

	// The transport drained the body for logging, but the caller still sees it.
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.JSONEq(t, `{"answer": 42}`, string(body))

	joined := strings.Join(logged, "\n")
	assert.Contains(t, joined, ">>> POST "+srv.URL)
	assert.Contains(t, joined, `"question": "life"`)
	assert.Contains(t, joined, "<<< 200 "+srv.URL)
	assert.Contains(t, joined, `"answer": 42`)
}

func TestLoggingTransportSkipsNonJSONBodies(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		fmt.Fprint(w, "<html></html>")
	}))
	defer srv.Close()

	var logged []string
	prev := DebugLog
	DebugLog = func(format string, args ...interface{}) {
		logged = append(logged, fmt.Sprintf(format, args...))
	}
	defer func() { DebugLog = prev }()

	client := &http.Client{Transport: &LoggingTransport{Transport: http.DefaultTransport}}

	resp, err := client.Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, "<html></html>", string(body))

	joined := strings.Join(logged, "\n")
	assert.NotContains(t, joined, "response body")
}

func TestExtractHostLabel(t *testing.T) {
	assert.Equal(t, "www", extractHostLabel("https://www.ncleg.gov/Laws"))
	assert.Equal(t, "localhost:11434", extractHostLabel("http://localhost:11434/v1/chat/completions"))
	assert.Equal(t, "unknown", extractHostLabel("not a url"))
}
