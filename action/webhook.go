package action

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/rustyeddy/sentinel/placeholder"
	"github.com/rustyeddy/sentinel/state"
)

// Webhook issues an HTTP request to a formatted URL. Payload may be a
// string (sent verbatim) or a map (JSON-encoded for POST, flattened to
// a query string for GET). Header values are formatted individually.
// Errors and non-2xx responses are logged, never retried (§4.5, §7).
type Webhook struct {
	URL     string
	Method  string // default POST
	Payload any    // string or map[string]any
	Headers map[string]string

	Client *http.Client
	Logger *slog.Logger
}

func (a *Webhook) Execute(ctx context.Context, obj *state.Object, aliases state.AliasTable) error {
	logger := a.Logger
	if logger == nil {
		logger = slog.Default()
	}
	warn := func(w string) { logger.Warn(w) }

	method := a.Method
	if method == "" {
		method = http.MethodPost
	}
	method = strings.ToUpper(method)

	resolvedURL := placeholder.Resolve(a.URL, obj, aliases, warn)
	payload := placeholder.ResolveValue(a.Payload, obj, aliases, warn)

	var body []byte
	switch method {
	case http.MethodGet:
		if m, ok := payload.(map[string]any); ok {
			resolvedURL = appendQuery(resolvedURL, m)
		}
	default:
		switch p := payload.(type) {
		case string:
			body = []byte(p)
		case nil:
		default:
			encoded, err := json.Marshal(p)
			if err != nil {
				logger.Warn("webhook payload encode failed", "url", resolvedURL, "error", err)
				return nil
			}
			body = encoded
		}
	}

	req, err := http.NewRequestWithContext(ctx, method, resolvedURL, bytes.NewReader(body))
	if err != nil {
		logger.Warn("webhook request build failed", "url", resolvedURL, "error", err)
		return nil
	}
	if method != http.MethodGet && len(body) > 0 {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range a.Headers {
		req.Header.Set(k, placeholder.Resolve(v, obj, aliases, warn))
	}

	client := a.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		logger.Warn("webhook request failed", "url", resolvedURL, "error", err)
		return nil
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		logger.Warn("webhook non-2xx response", "url", resolvedURL, "status", resp.StatusCode)
	}
	return nil
}

// appendQuery flattens a map payload into url.Values, following the
// spec's chosen GET-payload encoding: one key per map entry, list
// values repeat the key, matching net/url.Values.Encode semantics.
func appendQuery(rawURL string, m map[string]any) string {
	q := url.Values{}
	for k, v := range m {
		switch vv := v.(type) {
		case []any:
			for _, item := range vv {
				q.Add(k, fmt.Sprintf("%v", item))
			}
		default:
			q.Add(k, fmt.Sprintf("%v", vv))
		}
	}
	sep := "?"
	if strings.Contains(rawURL, "?") {
		sep = "&"
	}
	return rawURL + sep + q.Encode()
}
