// Package pocketbase implements recordstore.Store over the Pocketbase
// collection REST API (/api/collections/{collection}/records).
package pocketbase

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/unkn0wn-root/sidecache/recordstore"
)

var ErrEmptyBaseURL = errors.New("pocketbase: base url is required")

type Config struct {
	BaseURL string
	// Token is sent as the Authorization header when set (admin or record
	// auth token; obtaining one is the identity collaborator's job).
	Token      string
	HTTPClient *http.Client
}

type Client struct {
	base  string
	token string
	hc    *http.Client
}

var _ recordstore.Store = (*Client)(nil)

func New(cfg Config) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, ErrEmptyBaseURL
	}
	hc := cfg.HTTPClient
	if hc == nil {
		hc = http.DefaultClient
	}
	return &Client{
		base:  strings.TrimRight(cfg.BaseURL, "/"),
		token: cfg.Token,
		hc:    hc,
	}, nil
}

func (c *Client) GetOne(ctx context.Context, collection, id string, q recordstore.Query) (recordstore.Record, error) {
	u := c.recordURL(collection, id, queryValues(q))
	var rec recordstore.Record
	status, err := c.do(ctx, http.MethodGet, u, nil, &rec)
	if status == http.StatusNotFound {
		return nil, recordstore.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return rec, nil
}

func (c *Client) GetList(ctx context.Context, collection string, page, limit int, q recordstore.Query) (*recordstore.List, error) {
	vals := queryValues(q)
	vals.Set("page", strconv.Itoa(page))
	vals.Set("perPage", strconv.Itoa(limit))
	u := c.collectionURL(collection, vals)

	var list recordstore.List
	if _, err := c.do(ctx, http.MethodGet, u, nil, &list); err != nil {
		return nil, err
	}
	return &list, nil
}

func (c *Client) Create(ctx context.Context, collection string, data recordstore.Record) (recordstore.Record, error) {
	u := c.collectionURL(collection, nil)
	var rec recordstore.Record
	if _, err := c.do(ctx, http.MethodPost, u, data, &rec); err != nil {
		return nil, err
	}
	return rec, nil
}

func (c *Client) Update(ctx context.Context, collection, id string, data recordstore.Record, q recordstore.Query) (recordstore.Record, error) {
	u := c.recordURL(collection, id, queryValues(q))
	var rec recordstore.Record
	if _, err := c.do(ctx, http.MethodPatch, u, data, &rec); err != nil {
		return nil, err
	}
	return rec, nil
}

func (c *Client) Delete(ctx context.Context, collection, id string) (bool, error) {
	u := c.recordURL(collection, id, nil)
	status, err := c.do(ctx, http.MethodDelete, u, nil, nil)
	if status == http.StatusNotFound {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (c *Client) collectionURL(collection string, vals url.Values) string {
	u := fmt.Sprintf("%s/api/collections/%s/records", c.base, url.PathEscape(collection))
	if len(vals) > 0 {
		u += "?" + vals.Encode()
	}
	return u
}

func (c *Client) recordURL(collection, id string, vals url.Values) string {
	u := fmt.Sprintf("%s/api/collections/%s/records/%s", c.base, url.PathEscape(collection), url.PathEscape(id))
	if len(vals) > 0 {
		u += "?" + vals.Encode()
	}
	return u
}

func queryValues(q recordstore.Query) url.Values {
	vals := url.Values{}
	if q.Filter != "" {
		vals.Set("filter", q.Filter)
	}
	if q.Sort != "" {
		vals.Set("sort", q.Sort)
	}
	if len(q.Expand) > 0 {
		vals.Set("expand", strings.Join(q.Expand, ","))
	}
	return vals
}

// do runs one request and decodes the response into out (when non-nil).
// The HTTP status is returned alongside the error so callers can map
// 404s onto their own semantics.
func (c *Client) do(ctx context.Context, method, u string, body, out any) (int, error) {
	var rd *bytes.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return 0, fmt.Errorf("pocketbase: encode request: %w", err)
		}
		rd = bytes.NewReader(b)
	} else {
		rd = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, rd)
	if err != nil {
		return 0, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", c.token)
	}

	resp, err := c.hc.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return resp.StatusCode, apiError(resp)
	}
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return resp.StatusCode, fmt.Errorf("pocketbase: decode response: %w", err)
		}
	}
	return resp.StatusCode, nil
}

func apiError(resp *http.Response) error {
	var payload struct {
		Message string `json:"message"`
	}
	_ = json.NewDecoder(resp.Body).Decode(&payload)
	if payload.Message == "" {
		payload.Message = http.StatusText(resp.StatusCode)
	}
	return &recordstore.APIError{Status: resp.StatusCode, Message: payload.Message}
}
