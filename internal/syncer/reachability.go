package syncer

import (
	"context"
	"net/http"
	"strings"
	"time"
)

// HealthPath is the server route probed for reachability.
const HealthPath = "/health"

// HTTPProbe treats the server as reachable when its health route answers
// with any status below 500. A link that is up but cannot reach the server
// counts as unreachable.
type HTTPProbe struct {
	url        string
	httpClient *http.Client
}

func NewHTTPProbe(baseURL string, timeout time.Duration) *HTTPProbe {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &HTTPProbe{
		url:        strings.TrimRight(baseURL, "/") + HealthPath,
		httpClient: &http.Client{Timeout: timeout},
	}
}

func (p *HTTPProbe) Reachable(ctx context.Context) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.url, nil)
	if err != nil {
		return false
	}
	resp, err := p.httpClient.Do(req)
	if err != nil {
		return false
	}
	resp.Body.Close()
	return resp.StatusCode < http.StatusInternalServerError
}

// StaticReachability always answers with its own value.
type StaticReachability bool

func (s StaticReachability) Reachable(context.Context) bool { return bool(s) }
