// Package github is the thin adapter over the issue store holding
// submissions. It owns per-call timeout and retry policy and maps store
// responses onto the service error taxonomy; it never interprets labels
// beyond carrying them.
package github

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	apperrors "github.com/Yhangokk/vidnav/internal/common/errors"
	commonhttp "github.com/Yhangokk/vidnav/internal/common/http"
	"github.com/Yhangokk/vidnav/internal/common/metrics"
)

const (
	perPage  = 100
	maxPages = 10
)

type Client struct {
	token       string
	owner       string
	repo        string
	baseURL     string
	readRetries int
	httpClient  *commonhttp.Client
}

// Label is a string tag attached to a record, as the store represents it.
type Label struct {
	Name string `json:"name"`
}

// Issue is one raw record as returned by the store. The store is sole
// owner of ID, Number, Labels and the timestamps.
type Issue struct {
	ID        int64     `json:"id"`
	Number    int       `json:"number"`
	Title     string    `json:"title"`
	Body      string    `json:"body"`
	Labels    []Label   `json:"labels"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	HTMLURL   string    `json:"html_url"`
}

// LabelNames flattens the label set to plain strings.
func (i *Issue) LabelNames() []string {
	names := make([]string, 0, len(i.Labels))
	for _, l := range i.Labels {
		names = append(names, l.Name)
	}
	return names
}

func NewClient(token, owner, repo, baseURL string, requestTimeout time.Duration, readRetries int) *Client {
	if baseURL == "" {
		baseURL = "https://api.github.com"
	}
	return &Client{
		token:       token,
		owner:       owner,
		repo:        repo,
		baseURL:     baseURL,
		readRetries: readRetries,
		httpClient:  commonhttp.NewClient(requestTimeout),
	}
}

// CreateIssue creates one record with the given label set. It is never
// retried here or by any caller: a timed-out create whose outcome was not
// observed is surfaced as UNKNOWN_OUTCOME rather than assumed failed,
// since a blind retry could create a duplicate record.
func (c *Client) CreateIssue(ctx context.Context, title, body string, labels []string) (*Issue, error) {
	start := time.Now()
	defer metrics.StoreRequestDuration.WithLabelValues("create").Observe(time.Since(start).Seconds())

	payload := map[string]interface{}{
		"title":  title,
		"body":   body,
		"labels": labels,
	}
	jsonData, err := json.Marshal(payload)
	if err != nil {
		return nil, apperrors.NewInternalError(fmt.Errorf("marshal issue: %w", err))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.issuesURL(), bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	c.setHeaders(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		metrics.StoreRequests.WithLabelValues("create", "error").Inc()
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
			return nil, apperrors.NewUnknownOutcomeError("create", err)
		}
		return nil, apperrors.NewServiceUnavailableError("create", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		metrics.StoreRequests.WithLabelValues("create", "error").Inc()
		return nil, apperrors.NewServiceUnavailableError("create", err)
	}

	if resp.StatusCode != http.StatusCreated {
		metrics.StoreRequests.WithLabelValues("create", fmt.Sprintf("%d", resp.StatusCode)).Inc()
		return nil, c.storeError("create", resp.StatusCode, string(respBody), 0)
	}

	var issue Issue
	if err := json.Unmarshal(respBody, &issue); err != nil {
		return nil, apperrors.NewServiceUnavailableError("create", fmt.Errorf("decode response: %w", err))
	}

	metrics.StoreRequests.WithLabelValues("create", "ok").Inc()
	return &issue, nil
}

// ListIssuesByLabel returns all records carrying a label, in the store's
// native ordering. Pure read, so transient failures are retried with
// backoff inside the HTTP client.
func (c *Client) ListIssuesByLabel(ctx context.Context, label string) ([]Issue, error) {
	start := time.Now()
	defer metrics.StoreRequestDuration.WithLabelValues("list").Observe(time.Since(start).Seconds())

	var all []Issue
	for page := 1; page <= maxPages; page++ {
		listURL := fmt.Sprintf("%s?labels=%s&state=all&per_page=%d&page=%d",
			c.issuesURL(), url.QueryEscape(label), perPage, page)

		resp, err := c.httpClient.DoWithRetry(ctx, c.readRetries, func() (*http.Request, error) {
			req, err := http.NewRequestWithContext(ctx, http.MethodGet, listURL, nil)
			if err != nil {
				return nil, err
			}
			c.setHeaders(req)
			return req, nil
		})
		if err != nil {
			metrics.StoreRequests.WithLabelValues("list", "error").Inc()
			return nil, apperrors.NewServiceUnavailableError("list", err)
		}

		respBody, readErr := io.ReadAll(resp.Body)
		resp.Body.Close()
		if readErr != nil {
			metrics.StoreRequests.WithLabelValues("list", "error").Inc()
			return nil, apperrors.NewServiceUnavailableError("list", readErr)
		}

		if resp.StatusCode != http.StatusOK {
			metrics.StoreRequests.WithLabelValues("list", fmt.Sprintf("%d", resp.StatusCode)).Inc()
			return nil, c.storeError("list", resp.StatusCode, string(respBody), 0)
		}

		var pageIssues []Issue
		if err := json.Unmarshal(respBody, &pageIssues); err != nil {
			return nil, apperrors.NewServiceUnavailableError("list", fmt.Errorf("decode response: %w", err))
		}

		all = append(all, pageIssues...)
		if len(pageIssues) < perPage {
			break
		}
	}

	metrics.StoreRequests.WithLabelValues("list", "ok").Inc()
	return all, nil
}

// GetIssue fetches one record by its store-assigned number.
func (c *Client) GetIssue(ctx context.Context, number int) (*Issue, error) {
	start := time.Now()
	defer metrics.StoreRequestDuration.WithLabelValues("get").Observe(time.Since(start).Seconds())

	getURL := fmt.Sprintf("%s/%d", c.issuesURL(), number)

	resp, err := c.httpClient.DoWithRetry(ctx, c.readRetries, func() (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, getURL, nil)
		if err != nil {
			return nil, err
		}
		c.setHeaders(req)
		return req, nil
	})
	if err != nil {
		metrics.StoreRequests.WithLabelValues("get", "error").Inc()
		return nil, apperrors.NewServiceUnavailableError("get", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		metrics.StoreRequests.WithLabelValues("get", "error").Inc()
		return nil, apperrors.NewServiceUnavailableError("get", err)
	}

	if resp.StatusCode != http.StatusOK {
		metrics.StoreRequests.WithLabelValues("get", fmt.Sprintf("%d", resp.StatusCode)).Inc()
		return nil, c.storeError("get", resp.StatusCode, string(respBody), number)
	}

	var issue Issue
	if err := json.Unmarshal(respBody, &issue); err != nil {
		return nil, apperrors.NewServiceUnavailableError("get", fmt.Errorf("decode response: %w", err))
	}

	metrics.StoreRequests.WithLabelValues("get", "ok").Inc()
	return &issue, nil
}

// ReplaceLabels replaces the full label set of one record in a single
// call. This is the only mutation primitive moderation actions use; the
// store's last-write-wins on the whole set is the only concurrency
// control available. Not retried here: callers must re-read state and
// confirm the transition still applies before re-issuing.
func (c *Client) ReplaceLabels(ctx context.Context, number int, labels []string) error {
	start := time.Now()
	defer metrics.StoreRequestDuration.WithLabelValues("update_labels").Observe(time.Since(start).Seconds())

	payload := map[string]interface{}{"labels": labels}
	jsonData, err := json.Marshal(payload)
	if err != nil {
		return apperrors.NewInternalError(fmt.Errorf("marshal labels: %w", err))
	}

	updateURL := fmt.Sprintf("%s/%d/labels", c.issuesURL(), number)
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, updateURL, bytes.NewBuffer(jsonData))
	if err != nil {
		return apperrors.NewInternalError(err)
	}
	c.setHeaders(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		metrics.StoreRequests.WithLabelValues("update_labels", "error").Inc()
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
			return apperrors.NewUnknownOutcomeError("update_labels", err)
		}
		return apperrors.NewServiceUnavailableError("update_labels", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		metrics.StoreRequests.WithLabelValues("update_labels", fmt.Sprintf("%d", resp.StatusCode)).Inc()
		return c.storeError("update_labels", resp.StatusCode, string(respBody), number)
	}

	metrics.StoreRequests.WithLabelValues("update_labels", "ok").Inc()
	return nil
}

// AddComment appends supplementary text to a record. The comment lives
// outside the record body, so it cannot affect payload decoding.
func (c *Client) AddComment(ctx context.Context, number int, body string) error {
	start := time.Now()
	defer metrics.StoreRequestDuration.WithLabelValues("comment").Observe(time.Since(start).Seconds())

	jsonData, err := json.Marshal(map[string]string{"body": body})
	if err != nil {
		return apperrors.NewInternalError(fmt.Errorf("marshal comment: %w", err))
	}

	commentURL := fmt.Sprintf("%s/%d/comments", c.issuesURL(), number)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, commentURL, bytes.NewBuffer(jsonData))
	if err != nil {
		return apperrors.NewInternalError(err)
	}
	c.setHeaders(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		metrics.StoreRequests.WithLabelValues("comment", "error").Inc()
		return apperrors.NewServiceUnavailableError("comment", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		respBody, _ := io.ReadAll(resp.Body)
		metrics.StoreRequests.WithLabelValues("comment", fmt.Sprintf("%d", resp.StatusCode)).Inc()
		return c.storeError("comment", resp.StatusCode, string(respBody), number)
	}

	metrics.StoreRequests.WithLabelValues("comment", "ok").Inc()
	return nil
}

func (c *Client) issuesURL() string {
	return fmt.Sprintf("%s/repos/%s/%s/issues", c.baseURL, c.owner, c.repo)
}

func (c *Client) setHeaders(req *http.Request) {
	req.Header.Set("Accept", "application/vnd.github+json")
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
}

func (c *Client) storeError(operation string, status int, body string, number int) error {
	switch {
	case status == http.StatusNotFound:
		return apperrors.NewNotFoundError(number)
	case status >= 500:
		return apperrors.NewServiceUnavailableError(operation, fmt.Errorf("status %d: %s", status, body))
	default:
		// 401/403/422 and other 4xx: quota, bad credentials, malformed request.
		return apperrors.NewRejectedByStoreError(operation, status, body)
	}
}
