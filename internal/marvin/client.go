// Package marvin is a thin client for the Amazing Marvin REST API.
//
// Marvin exposes two credential tiers: a read-only token for list endpoints
// and a full-access token required for /doc reads and all writes. The client
// holds both and picks the right header per endpoint.
package marvin

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

const DefaultBaseURL = "https://serv.amazingmarvin.com/api"

// Client talks to the Marvin API. No retries: callers treat failures on
// sequential calls as fatal, and the concurrent gather phase degrades
// per project instead.
type Client struct {
	baseURL         string
	apiToken        string
	fullAccessToken string
	client          *http.Client
}

type updateRequest struct {
	ItemID  string   `json:"itemId"`
	Setters []Setter `json:"setters"`
}

// NewClient creates a Marvin client. Either token may be empty; calls that
// need the missing tier will fail with an API error.
func NewClient(baseURL, apiToken, fullAccessToken string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		baseURL:         baseURL,
		apiToken:        apiToken,
		fullAccessToken: fullAccessToken,
		client:          &http.Client{Timeout: 15 * time.Second},
	}
}

// Categories returns every project and category, completed ones included.
func (c *Client) Categories(ctx context.Context) ([]Item, error) {
	var items []Item
	if err := c.get(ctx, "/categories", nil, c.readHeaders(), &items); err != nil {
		return nil, fmt.Errorf("fetch categories: %w", err)
	}
	return items, nil
}

// ActiveProjects returns categories filtered to those not marked done.
func (c *Client) ActiveProjects(ctx context.Context) ([]Item, error) {
	all, err := c.Categories(ctx)
	if err != nil {
		return nil, err
	}
	var active []Item
	for _, it := range all {
		if !it.Done {
			active = append(active, it)
		}
	}
	return active, nil
}

// Children returns the direct children of a parent. Pass ParentUnassigned
// to list the inbox.
func (c *Client) Children(ctx context.Context, parentID string) ([]Item, error) {
	q := url.Values{"parentId": {parentID}}
	var items []Item
	if err := c.get(ctx, "/children", q, c.readHeaders(), &items); err != nil {
		return nil, fmt.Errorf("fetch children of %s: %w", parentID, err)
	}
	return items, nil
}

// Doc fetches a full document by id. Requires the full-access token even
// for reads.
func (c *Client) Doc(ctx context.Context, id string) (Item, error) {
	q := url.Values{"id": {id}}
	var item Item
	if err := c.get(ctx, "/doc", q, c.fullAccessHeaders(), &item); err != nil {
		return Item{}, fmt.Errorf("fetch doc %s: %w", id, err)
	}
	return item, nil
}

// TodayItems returns everything scheduled for the given date (YYYY-MM-DD),
// completed and incomplete, tasks and otherwise.
func (c *Client) TodayItems(ctx context.Context, date string) ([]Item, error) {
	headers := c.readHeaders()
	headers["X-Date"] = date
	var items []Item
	if err := c.get(ctx, "/todayItems", nil, headers, &items); err != nil {
		return nil, fmt.Errorf("fetch today items: %w", err)
	}
	return items, nil
}

// UpdateDoc applies field setters to an item. Marvin expects the caller to
// stamp updatedAt; if the setters don't include one, the current time in
// unix millis is appended.
func (c *Client) UpdateDoc(ctx context.Context, itemID string, setters []Setter) error {
	hasUpdatedAt := false
	for _, s := range setters {
		if s.Key == "updatedAt" {
			hasUpdatedAt = true
			break
		}
	}
	if !hasUpdatedAt {
		setters = append(setters, Setter{Key: "updatedAt", Val: time.Now().UnixMilli()})
	}

	body, err := json.Marshal(updateRequest{ItemID: itemID, Setters: setters})
	if err != nil {
		return fmt.Errorf("marshal update: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/doc/update", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	for k, v := range c.fullAccessHeaders() {
		req.Header.Set(k, v)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("update doc %s: %w", itemID, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		respBody, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("update doc %s: Marvin API error (%d): %s", itemID, resp.StatusCode, string(respBody))
	}
	return nil
}

func (c *Client) readHeaders() map[string]string {
	return map[string]string{"X-API-Token": c.apiToken}
}

func (c *Client) fullAccessHeaders() map[string]string {
	return map[string]string{"X-Full-Access-Token": c.fullAccessToken}
}

func (c *Client) get(ctx context.Context, path string, query url.Values, headers map[string]string, out any) error {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("HTTP request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("Marvin API error (%d): %s", resp.StatusCode, string(respBody))
	}

	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
