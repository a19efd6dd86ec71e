package syncer

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"stolarpos/internal/infra"
	"stolarpos/internal/offline"
)

// ErrRejected is returned when the server answers with a non-2xx status.
var ErrRejected = errors.New("syncer: sale rejected by server")

// CreateSalePath is the ingestion route queued sales are replayed to.
const CreateSalePath = "/sales/create"

// HTTPSubmitter posts queued sales to the server's ingestion endpoint,
// through a circuit breaker when one is configured.
type HTTPSubmitter struct {
	url        string
	httpClient *http.Client
	cb         *infra.CircuitBreaker
}

// NewHTTPSubmitter builds a submitter for baseURL. A zero timeout leaves the
// request bounded only by ctx.
func NewHTTPSubmitter(baseURL string, timeout time.Duration, cb *infra.CircuitBreaker) *HTTPSubmitter {
	return &HTTPSubmitter{
		url:        strings.TrimRight(baseURL, "/") + CreateSalePath,
		httpClient: &http.Client{Timeout: timeout},
		cb:         cb,
	}
}

func (s *HTTPSubmitter) Submit(ctx context.Context, sale offline.PendingSale) error {
	if s.cb == nil {
		return s.post(ctx, sale)
	}
	return s.cb.Execute(func() error { return s.post(ctx, sale) })
}

func (s *HTTPSubmitter) post(ctx context.Context, sale offline.PendingSale) error {
	body, err := json.Marshal(sale)
	if err != nil {
		return fmt.Errorf("syncer: marshal sale: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("syncer: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("syncer: server unreachable: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("%w: status %d: %s", ErrRejected, resp.StatusCode, strings.TrimSpace(string(snippet)))
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}
