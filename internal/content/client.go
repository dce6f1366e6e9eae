// Package content talks to the headless CMS (Contentful Delivery and Preview
// APIs) and exposes the site's content types through a cached Source.
package content

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"unicode/utf8"
	"time"
)

// Mode selects which CMS API the client reads from.
type Mode string

const (
	// Published reads released content from the delivery API.
	Published Mode = "published"
	// Preview reads drafts from the preview API.
	Preview Mode = "preview"
)

const (
	publishedBaseURL = "https://cdn.contentful.com"
	previewBaseURL   = "https://preview.contentful.com"
)

// ErrNotConfigured is returned when no space id is set.
var ErrNotConfigured = errors.New("content space is not configured")

// Config holds credentials for both CMS APIs.
type Config struct {
	SpaceID      string
	Environment  string
	AccessToken  string
	PreviewToken string
	// BaseURL overrides the API host for both modes, mainly for tests.
	BaseURL string
}

// Endpoint is one named API configuration.
type Endpoint struct {
	Mode    Mode
	BaseURL string
	Token   string
}

// Endpoint returns the named configuration for mode.
func (c Config) Endpoint(mode Mode) Endpoint {
	ep := Endpoint{Mode: Published, BaseURL: publishedBaseURL, Token: c.AccessToken}
	if mode == Preview {
		ep = Endpoint{Mode: Preview, BaseURL: previewBaseURL, Token: c.PreviewToken}
	}
	if c.BaseURL != "" {
		ep.BaseURL = strings.TrimRight(c.BaseURL, "/")
	}
	return ep
}

// Query selects entries of one content type.
type Query struct {
	ContentType string
	Locale      string
	Order       string
	Include     int
	Limit       int
	// Fields holds equality filters such as "fields.slug".
	Fields map[string]string
}

// Values encodes q as API query parameters.
func (q Query) Values() url.Values {
	values := url.Values{}
	values.Set("content_type", q.ContentType)
	if q.Locale != "" {
		values.Set("locale", q.Locale)
	}
	if q.Order != "" {
		values.Set("order", q.Order)
	}
	if q.Include > 0 {
		values.Set("include", strconv.Itoa(q.Include))
	}
	if q.Limit > 0 {
		values.Set("limit", strconv.Itoa(q.Limit))
	}
	for field, value := range q.Fields {
		values.Set(field, value)
	}
	return values
}

// Collection is an entries response.
type Collection struct {
	Total    int      `json:"total"`
	Items    []Entry  `json:"items"`
	Includes Includes `json:"includes"`
}

// Includes carries linked entries and assets resolved by the API.
type Includes struct {
	Entry []Entry `json:"Entry"`
	Asset []Entry `json:"Asset"`
}

// Entry is a single entry or asset with locale-resolved fields.
type Entry struct {
	Sys    Sys                        `json:"sys"`
	Fields map[string]json.RawMessage `json:"fields"`
}

// Sys is entry metadata, also used for links.
type Sys struct {
	ID        string `json:"id"`
	Type      string `json:"type"`
	LinkType  string `json:"linkType,omitempty"`
	CreatedAt string `json:"createdAt,omitempty"`
}

// Client fetches entries from one CMS endpoint.
type Client struct {
	httpClient  *http.Client
	endpoint    Endpoint
	spaceID     string
	environment string
}

// NewClient builds a client for the configuration named by mode.
func NewClient(cfg Config, mode Mode, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 15 * time.Second}
	}
	env := cfg.Environment
	if env == "" {
		env = "master"
	}
	return &Client{
		httpClient:  httpClient,
		endpoint:    cfg.Endpoint(mode),
		spaceID:     cfg.SpaceID,
		environment: env,
	}
}

// Mode reports which API the client reads from.
func (c *Client) Mode() Mode {
	return c.endpoint.Mode
}

// Entries runs q against the entries endpoint.
func (c *Client) Entries(ctx context.Context, q Query) (*Collection, error) {
	if c.spaceID == "" {
		return nil, ErrNotConfigured
	}

	endpoint := fmt.Sprintf("%s/spaces/%s/environments/%s/entries?%s",
		c.endpoint.BaseURL,
		url.PathEscape(c.spaceID),
		url.PathEscape(c.environment),
		q.Values().Encode(),
	)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.endpoint.Token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("cms error: status %d body %s", resp.StatusCode, truncate(string(body), 512))
	}

	var collection Collection
	if err := json.Unmarshal(body, &collection); err != nil {
		return nil, fmt.Errorf("decode entries: %w", err)
	}
	return &collection, nil
}

// truncate caps s at max bytes without splitting a rune.
func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	for max > 0 && !utf8.RuneStart(s[max]) {
		max--
	}
	return s[:max]
}
