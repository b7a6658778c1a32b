// Package remote is the REST client for the Supabase-style data store:
// collection endpoints with column selection, equality filters, and two
// static auth headers.
package remote

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
)

// Config holds the remote store credentials.
type Config struct {
	URL string `json:"url"`
	Key string `json:"key"`
}

func (c Config) Valid() bool { return c.URL != "" && c.Key != "" }

// Table names on the remote store.
const (
	TableGigs     = "gigs"
	TablePackages = "gig_packages"
	TableFeatures = "gig_features"
	TableDetails  = "gig_details"
)

// The transport default would leave calls unbounded; every request gets a
// hard cap instead. Row writes are tiny, 15s is generous.
const requestTimeout = 15 * time.Second

// Filters are column equality filters, encoded as <column>=eq.<value>.
type Filters map[string]string

type Client struct {
	http *resty.Client
}

func NewClient(cfg Config) (*Client, error) {
	if !cfg.Valid() {
		return nil, fmt.Errorf("remote: missing url or key")
	}

	c := resty.New()
	c.SetBaseURL(cfg.URL + "/rest/v1")
	c.SetHeader("apikey", cfg.Key)
	c.SetHeader("Authorization", "Bearer "+cfg.Key)
	c.SetHeader("Content-Type", "application/json")
	c.SetTimeout(requestTimeout)

	return &Client{http: c}, nil
}

func queryParams(columns string, filters Filters) map[string]string {
	params := make(map[string]string)
	if columns != "" && columns != "*" {
		params["select"] = columns
	}
	for col, val := range filters {
		params[col] = "eq." + val
	}
	return params
}

func statusErr(op, table string, res *resty.Response) error {
	return fmt.Errorf("remote: %s %s: %s: %s", op, table, res.Status(), res.Body())
}

// Select reads rows, optionally restricted to columns, into out.
func (c *Client) Select(ctx context.Context, table, columns string, filters Filters, out any) error {
	res, err := c.http.R().
		SetContext(ctx).
		SetQueryParams(queryParams(columns, filters)).
		Get("/" + table)
	if err != nil {
		return fmt.Errorf("remote: select %s: %w", table, err)
	}
	if res.IsError() {
		return statusErr("select", table, res)
	}
	if out == nil {
		return nil
	}
	return json.Unmarshal(res.Body(), out)
}

// Insert adds one row.
func (c *Client) Insert(ctx context.Context, table string, row any) error {
	res, err := c.http.R().
		SetContext(ctx).
		SetHeader("Prefer", "return=minimal").
		SetBody(row).
		Post("/" + table)
	if err != nil {
		return fmt.Errorf("remote: insert %s: %w", table, err)
	}
	if res.IsError() {
		return statusErr("insert", table, res)
	}
	return nil
}

// Update patches every row matching filters. When out is non-nil the
// updated rows are returned through it, which lets callers detect an update
// that matched nothing.
func (c *Client) Update(ctx context.Context, table string, patch any, filters Filters, out any) error {
	prefer := "return=minimal"
	if out != nil {
		prefer = "return=representation"
	}
	res, err := c.http.R().
		SetContext(ctx).
		SetHeader("Prefer", prefer).
		SetQueryParams(queryParams("", filters)).
		SetBody(patch).
		Patch("/" + table)
	if err != nil {
		return fmt.Errorf("remote: update %s: %w", table, err)
	}
	if res.IsError() {
		return statusErr("update", table, res)
	}
	if out == nil {
		return nil
	}
	return json.Unmarshal(res.Body(), out)
}

// Delete removes every row matching filters.
func (c *Client) Delete(ctx context.Context, table string, filters Filters) error {
	res, err := c.http.R().
		SetContext(ctx).
		SetQueryParams(queryParams("", filters)).
		Delete("/" + table)
	if err != nil {
		return fmt.Errorf("remote: delete %s: %w", table, err)
	}
	if res.IsError() {
		return statusErr("delete", table, res)
	}
	return nil
}

// Ping is the connectivity test: a lightweight read against the gig table.
func (c *Client) Ping(ctx context.Context) error {
	res, err := c.http.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{"select": "id", "limit": "1"}).
		Get("/" + TableGigs)
	if err != nil {
		return fmt.Errorf("remote: ping: %w", err)
	}
	if res.IsError() {
		return statusErr("ping", TableGigs, res)
	}
	return nil
}
