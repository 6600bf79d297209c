package readwise

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"readerdash/internal/document/domain"
)

const (
	// Reader allows 20 requests per minute; 3s spacing keeps every call
	// inside that cap.
	defaultMinInterval = 3 * time.Second

	// Bounded retries for 500s only. 429 is provider-paced and retried
	// without a cap.
	maxServerErrorRetries = 3
	serverErrorBackoff    = 2 * time.Second
)

// Clock abstracts time for deterministic tests.
type Clock interface {
	Now() time.Time
	Sleep(d time.Duration)
}

type realClock struct{}

func (realClock) Now() time.Time        { return time.Now() }
func (realClock) Sleep(d time.Duration) { time.Sleep(d) }

// Client is the single point of contact with the Reader API. Every outbound
// call passes through the request-admission gate, so callers inherit the
// rate limit and the retry policy. The scheduler's background sync and the
// interactive archive path share one Client, so admission is serialized
// under mu and the spacing holds across concurrent callers.
type Client struct {
	baseURL     string
	httpClient  *http.Client
	clock       Clock
	minInterval time.Duration

	mu          sync.Mutex
	lastRequest time.Time
}

func NewClient(baseURL string) *Client {
	return &Client{
		baseURL:     strings.TrimRight(baseURL, "/"),
		httpClient:  &http.Client{Timeout: 60 * time.Second},
		clock:       realClock{},
		minInterval: defaultMinInterval,
	}
}

// FetchPage retrieves one page of the document listing. cursor resumes a
// listing in progress; updatedAfter bounds the listing to documents changed
// since the last completed sync.
func (c *Client) FetchPage(ctx context.Context, token, cursor string, updatedAfter *time.Time) (*domain.Page, error) {
	params := url.Values{}
	if cursor != "" {
		params.Set("pageCursor", cursor)
	}
	if updatedAfter != nil {
		params.Set("updatedAfter", updatedAfter.UTC().Format(time.RFC3339))
	}

	endpoint := c.baseURL + "/api/v3/list/"
	if encoded := params.Encode(); encoded != "" {
		endpoint += "?" + encoded
	}

	resp, err := c.do(ctx, http.MethodGet, endpoint, token, nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, upstreamError(resp)
	}

	var list listResponse
	if err := json.NewDecoder(resp.Body).Decode(&list); err != nil {
		return nil, fmt.Errorf("decode list response: %w", err)
	}

	page := &domain.Page{Count: list.Count}
	if list.NextPageCursor != nil {
		page.NextCursor = *list.NextPageCursor
	}
	for i := range list.Results {
		page.Documents = append(page.Documents, convertWireDocument(&list.Results[i]))
	}
	return page, nil
}

// ValidateToken never returns an error; any failure, network included, reads
// as an invalid token.
func (c *Client) ValidateToken(ctx context.Context, token string) bool {
	resp, err := c.do(ctx, http.MethodGet, c.baseURL+"/api/v2/auth/", token, nil)
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	return resp.StatusCode >= 200 && resp.StatusCode < 300
}

// UpdateLocation moves one document to another Reader location upstream.
func (c *Client) UpdateLocation(ctx context.Context, token, id string, location domain.Location) error {
	body, err := json.Marshal(map[string]string{"location": string(location)})
	if err != nil {
		return err
	}

	endpoint := c.baseURL + "/api/v3/update/" + url.PathEscape(id) + "/"
	resp, err := c.do(ctx, http.MethodPatch, endpoint, token, body)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return upstreamError(resp)
	}
	return nil
}

// do sends one API call through request admission and the retry policy.
// 429 waits for the provider-supplied Retry-After (falling back to twice the
// minimum interval) and retries without a cap. 500 retries with exponential
// backoff up to maxServerErrorRetries. Every other status is returned to the
// caller as-is.
func (c *Client) do(ctx context.Context, method, endpoint, token string, body []byte) (*http.Response, error) {
	serverErrors := 0
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		c.waitForSlot()

		var reader io.Reader
		if body != nil {
			reader = bytes.NewReader(body)
		}
		req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Authorization", "Token "+token)
		if body != nil {
			req.Header.Set("Content-Type", "application/json")
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return nil, err
		}

		switch {
		case resp.StatusCode == http.StatusTooManyRequests:
			wait := parseRetryAfter(resp.Header.Get("Retry-After"), c.clock.Now())
			if wait <= 0 {
				wait = 2 * c.minInterval
			}
			resp.Body.Close()
			c.clock.Sleep(wait)

		case resp.StatusCode == http.StatusInternalServerError && serverErrors < maxServerErrorRetries:
			resp.Body.Close()
			c.clock.Sleep(serverErrorBackoff << serverErrors)
			serverErrors++

		default:
			return resp, nil
		}
	}
}

// waitForSlot enforces the minimum spacing between outbound calls. The
// last-request mark is taken before sending, so a slow response cannot let
// two calls land inside one interval. The lock is held through the wait:
// a second caller blocks until the first has claimed its slot.
func (c *Client) waitForSlot() {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.clock.Now()
	if !c.lastRequest.IsZero() {
		if elapsed := now.Sub(c.lastRequest); elapsed < c.minInterval {
			c.clock.Sleep(c.minInterval - elapsed)
		}
	}
	c.lastRequest = c.clock.Now()
}

func upstreamError(resp *http.Response) error {
	msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
	return &UpstreamError{StatusCode: resp.StatusCode, Message: strings.TrimSpace(string(msg))}
}

// parseRetryAfter accepts both integer seconds and an HTTP-date.
func parseRetryAfter(h string, now time.Time) time.Duration {
	h = strings.TrimSpace(h)
	if h == "" {
		return 0
	}
	if secs, err := strconv.Atoi(h); err == nil && secs >= 0 {
		return time.Duration(secs) * time.Second
	}
	if when, err := http.ParseTime(h); err == nil {
		if d := when.Sub(now); d > 0 {
			return d
		}
	}
	return 0
}
