package session

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/lexscout/lexscout/pkg/config"
)

var DebugLog func(string, ...interface{})

type Session struct {
	Client *http.Client
	Config *config.Config
}

// LoggingTransport dumps request and response bodies when debug logging is
// on. Bodies that are not JSON are skipped, and the response body is
// rebuffered so the caller can still read it. Logf overrides the package
// DebugLog, so llm.debug_http works without the rest of verbose mode.
type LoggingTransport struct {
	Transport http.RoundTripper
	Logf      func(string, ...interface{})
}

func (t *LoggingTransport) logger() func(string, ...interface{}) {
	if t.Logf != nil {
		return t.Logf
	}
	return DebugLog
}

func (t *LoggingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	logf := t.logger()
	if logf == nil {
		return t.Transport.RoundTrip(req)
	}

	logf(">>> %s %s", req.Method, req.URL.String())

	if req.Body != nil && req.GetBody != nil {
		body, err := req.GetBody()
		if err == nil {
			if pretty := prettyJSON(body); pretty != "" {
				logf("request body:\n%s", pretty)
			}
		}
	}

	resp, err := t.Transport.RoundTrip(req)

	hostLabel := extractHostLabel(req.URL.String())

	if err != nil {
		logf("encountered an error with %s: %v", hostLabel, err)
	} else {
		logf("<<< %d %s", resp.StatusCode, req.URL.String())

		if resp.Body != nil && isJSONContentType(resp.Header.Get("Content-Type")) {
			bodyBytes, readErr := io.ReadAll(resp.Body)
			resp.Body.Close()
			resp.Body = io.NopCloser(bytes.NewReader(bodyBytes))

			if readErr == nil {
				if pretty := prettyJSON(bytes.NewReader(bodyBytes)); pretty != "" {
					logf("response body:\n%s", pretty)
				}
			}
		}

		if resp.StatusCode >= 400 {
			logf("unexpected status code %d received from %s",
				resp.StatusCode, req.URL.String())
		}
	}

	return resp, err
}

func prettyJSON(r io.Reader) string {
	data, err := io.ReadAll(io.LimitReader(r, 1<<20))
	if err != nil || len(data) == 0 {
		return ""
	}

	var decoded interface{}
	if err := json.Unmarshal(data, &decoded); err != nil {
		return ""
	}

	pretty, err := json.MarshalIndent(decoded, "", "  ")
	if err != nil {
		return ""
	}

	return string(pretty)
}

func isJSONContentType(contentType string) bool {
	return strings.Contains(contentType, "application/json")
}

func extractHostLabel(url string) string {
	parts := strings.Split(url, "://")
	if len(parts) > 1 {
		host := strings.Split(parts[1], "/")[0]
		hostParts := strings.Split(host, ".")
		if len(hostParts) > 0 {
			return hostParts[0]
		}
	}

	return "unknown"
}

func New(cfg *config.Config) (*Session, error) {
	baseTransport := &http.Transport{
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 100,
		IdleConnTimeout:     90 * time.Second,
		DisableKeepAlives:   false,
	}

	var transport http.RoundTripper = baseTransport
	if DebugLog != nil || cfg.LLM.DebugHTTP {
		lt := &LoggingTransport{Transport: baseTransport}
		if DebugLog == nil {
			lt.Logf = func(format string, args ...interface{}) {
				fmt.Printf("[DBG] "+format+"\n", args...)
			}
		}
		transport = lt
	}

	client := &http.Client{
		Timeout:   time.Duration(cfg.DefaultSettings.Timeout*3) * time.Second,
		Transport: transport,
	}

	return &Session{
		Client: client,
		Config: cfg,
	}, nil
}
