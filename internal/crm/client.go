// Package crm talks to the CRM HTTP API: paginated chat, message, user and
// order listings with retry, plus normalization into the internal model.
package crm

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/sirupsen/logrus"

	"chat-insights-go/internal/types"
)

const (
	pageLimit  = 100
	maxRetries = 3
)

type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
	log     *logrus.Entry

	ordersCache map[string][]types.Order
}

func New(baseURL, apiKey string, log *logrus.Entry) *Client {
	return &Client{
		baseURL:     strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		apiKey:      apiKey,
		http:        &http.Client{Timeout: 60 * time.Second},
		log:         log,
		ordersCache: map[string][]types.Order{},
	}
}

// apiError is a non-retryable API-level failure.
type apiError struct {
	status int
	body   string
}

func (e *apiError) Error() string {
	return fmt.Sprintf("crm api error: HTTP %d: %s", e.status, e.body)
}

// getJSON fetches one page. Transport errors, 429 and 5xx are retried up to
// maxRetries times with exponential backoff; other non-2xx statuses and
// malformed bodies fail permanently.
func (c *Client) getJSON(ctx context.Context, path string, query url.Values) (map[string]any, error) {
	u := c.baseURL + "/" + strings.TrimLeft(path, "/")
	q := url.Values{}
	for k, vs := range query {
		for _, v := range vs {
			q.Add(k, v)
		}
	}
	q.Set("apiKey", c.apiKey)

	var out map[string]any
	var lastErr error

	op := func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, u+"?"+q.Encode(), nil)
		if err != nil {
			return backoff.Permanent(err)
		}
		resp, err := c.http.Do(req)
		if err != nil {
			lastErr = err
			return err
		}
		defer resp.Body.Close()

		body, err := io.ReadAll(io.LimitReader(resp.Body, 8<<20))
		if err != nil {
			lastErr = err
			return err
		}

		if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
			lastErr = fmt.Errorf("crm: HTTP %d on %s", resp.StatusCode, path)
			c.log.WithField("status", resp.StatusCode).Warn("crm request retried")
			return lastErr
		}
		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			lastErr = &apiError{status: resp.StatusCode, body: truncate(string(body), 500)}
			return backoff.Permanent(lastErr)
		}

		var doc map[string]any
		if err := json.Unmarshal(body, &doc); err != nil {
			lastErr = fmt.Errorf("crm: decode %s: %w", path, err)
			return backoff.Permanent(lastErr)
		}
		if ok, present := doc["success"].(bool); present && !ok {
			lastErr = &apiError{status: resp.StatusCode, body: truncate(string(body), 500)}
			return backoff.Permanent(lastErr)
		}
		out = doc
		return nil
	}

	bo := backoff.WithMaxRetries(backoff.NewExponentialBackOff(), maxRetries)
	if err := backoff.Retry(op, backoff.WithContext(bo, ctx)); err != nil {
		if lastErr != nil {
			return nil, lastErr
		}
		return nil, err
	}
	return out, nil
}

// paginate walks GET pages until the list is empty or totalPageCount is
// reached. Responses without pagination stop after the first page.
func (c *Client) paginate(ctx context.Context, path string, query url.Values, listKeys []string, visit func(map[string]any) bool) error {
	page := 1
	for {
		q := url.Values{}
		for k, vs := range query {
			for _, v := range vs {
				q.Add(k, v)
			}
		}
		q.Set("limit", fmt.Sprint(pageLimit))
		q.Set("page", fmt.Sprint(page))

		doc, err := c.getJSON(ctx, path, q)
		if err != nil {
			return err
		}
		items := listField(doc, listKeys...)
		if len(items) == 0 {
			return nil
		}
		for _, it := range items {
			if !visit(it) {
				return nil
			}
		}

		total := pageCount(doc)
		if total == 0 || page >= total {
			return nil
		}
		page++
	}
}

func pageCount(doc map[string]any) int {
	p, _ := doc["pagination"].(map[string]any)
	if p == nil {
		return 0
	}
	if n, ok := asInt(p["totalPageCount"]); ok {
		return n
	}
	n, _ := asInt(p["total_pages"])
	return n
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
