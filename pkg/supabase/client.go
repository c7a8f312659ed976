package supabase

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
)

// Client represents a Supabase client
type Client struct {
	URL        string
	ServiceKey string
	http       *resty.Client
}

// NewClient creates a new Supabase client
func NewClient(url, serviceKey string) *Client {
	c := resty.New().
		SetBaseURL(url).
		SetHeader("apikey", serviceKey).
		SetHeader("Content-Type", "application/json").
		SetTimeout(30 * time.Second)

	return &Client{
		URL:        url,
		ServiceKey: serviceKey,
		http:       c,
	}
}

// request builds a request authorized with the user token when present, otherwise the service key
func (c *Client) request(ctx context.Context, userToken string) *resty.Request {
	token := c.ServiceKey
	if userToken != "" {
		token = userToken
	}
	return c.http.R().
		SetContext(ctx).
		SetAuthToken(token)
}

// APIError is a non-2xx PostgREST response
type APIError struct {
	Status int
	Body   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("supabase error (status %d): %s", e.Status, e.Body)
}

// Conflict reports a unique-key violation. PostgREST answers those with 409.
func (e *APIError) Conflict() bool {
	return e.Status == http.StatusConflict
}

func checkResponse(resp *resty.Response) ([]byte, error) {
	if resp.IsError() {
		return nil, &APIError{Status: resp.StatusCode(), Body: resp.String()}
	}
	return resp.Body(), nil
}

// Query executes a PostgREST query on a table
func (c *Client) Query(ctx context.Context, table string, query map[string]string) ([]byte, error) {
	return c.QueryWithToken(ctx, table, query, "")
}

// QueryWithToken executes a query with an optional user JWT token for RLS
func (c *Client) QueryWithToken(ctx context.Context, table string, query map[string]string, userToken string) ([]byte, error) {
	resp, err := c.request(ctx, userToken).
		SetQueryParams(query).
		Get("/rest/v1/" + table)
	if err != nil {
		return nil, fmt.Errorf("supabase query %s: %w", table, err)
	}
	return checkResponse(resp)
}

// Insert inserts a record into a table and returns the inserted representation
func (c *Client) Insert(ctx context.Context, table string, data any) ([]byte, error) {
	resp, err := c.request(ctx, "").
		SetHeader("Prefer", "return=representation").
		SetBody(data).
		Post("/rest/v1/" + table)
	if err != nil {
		return nil, fmt.Errorf("supabase insert %s: %w", table, err)
	}
	return checkResponse(resp)
}

// Upsert inserts or updates a record in a table.
// onConflict specifies the columns to detect conflicts (e.g., "user_id,date")
func (c *Client) Upsert(ctx context.Context, table string, data any, onConflict string) ([]byte, error) {
	resp, err := c.request(ctx, "").
		// resolution=merge-duplicates updates existing rows
		SetHeader("Prefer", "return=representation,resolution=merge-duplicates").
		SetQueryParam("on_conflict", onConflict).
		SetBody(data).
		Post("/rest/v1/" + table)
	if err != nil {
		return nil, fmt.Errorf("supabase upsert %s: %w", table, err)
	}
	return checkResponse(resp)
}

// VerifyToken verifies a JWT token with Supabase
func (c *Client) VerifyToken(ctx context.Context, token string) (*User, error) {
	resp, err := c.http.R().
		SetContext(ctx).
		SetAuthToken(token).
		Get("/auth/v1/user")
	if err != nil {
		return nil, fmt.Errorf("failed to verify token: %w", err)
	}

	if resp.IsError() {
		return nil, fmt.Errorf("token verification failed (status %d): %s", resp.StatusCode(), resp.String())
	}

	var user User
	if err := json.Unmarshal(resp.Body(), &user); err != nil {
		return nil, fmt.Errorf("failed to decode user: %w", err)
	}

	return &user, nil
}

// User represents a Supabase user
type User struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}
