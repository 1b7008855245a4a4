package newsapi

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
	"sync"
	"time"

	"github.com/pders01/newsroom/internal/config"
	"github.com/pders01/newsroom/internal/debuglog"
)

const (
	DefaultBaseURL = "https://api.worldnewsapi.com"

	searchEndpoint    = "/search-news"
	topNewsEndpoint   = "/top-news"
	frontPageEndpoint = "/retrieve-front-page"

	maxErrorBody = 4 << 10
)

// ErrNoFrontPage is returned when the response carries no usable image.
var ErrNoFrontPage = errors.New("no front page image in response")

// Client talks to the World News API.
type Client struct {
	baseURL   string
	userAgent string
	client    *http.Client

	mu     sync.RWMutex
	apiKey string
}

func NewClient(cfg *config.Config, apiKey string) *Client {
	baseURL := strings.TrimRight(cfg.API.BaseURL, "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	timeout := cfg.API.HTTPTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	if cfg.API.Key != "" {
		apiKey = cfg.API.Key
	}
	return &Client{
		baseURL:   baseURL,
		userAgent: cfg.API.UserAgent,
		client:    &http.Client{Timeout: timeout},
		apiKey:    apiKey,
	}
}

// SetAPIKey replaces the key used for subsequent requests.
func (c *Client) SetAPIKey(key string) {
	c.mu.Lock()
	c.apiKey = strings.TrimSpace(key)
	c.mu.Unlock()
}

// HasAPIKey reports whether a key is configured.
func (c *Client) HasAPIKey() bool {
	return c.key() != ""
}

func (c *Client) key() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.apiKey
}

// SearchNews runs one page of a keyword/filter search.
func (c *Client) SearchNews(ctx context.Context, p SearchParams) ([]Article, error) {
	params := url.Values{}
	set(params, "text", p.Text)
	set(params, "language", p.Language)
	set(params, "source-country", p.SourceCountry)
	set(params, "categories", p.Categories)
	set(params, "earliest-publish-date", p.EarliestDate)
	set(params, "latest-publish-date", p.LatestDate)
	if p.Number > 0 {
		params.Set("number", strconv.Itoa(p.Number))
	}
	params.Set("offset", strconv.Itoa(p.Offset))

	var resp searchResponse
	if err := c.get(ctx, searchEndpoint, params, &resp); err != nil {
		return nil, err
	}
	if resp.News == nil {
		return []Article{}, nil
	}
	return resp.News, nil
}

// TopNews returns the story clusters for a country and language.
// Clusters without articles are dropped.
func (c *Client) TopNews(ctx context.Context, p TopNewsParams) ([]Cluster, error) {
	params := url.Values{}
	set(params, "source-country", p.SourceCountry)
	set(params, "language", p.Language)
	if p.Number > 0 {
		params.Set("number", strconv.Itoa(p.Number))
	}

	var resp topNewsResponse
	if err := c.get(ctx, topNewsEndpoint, params, &resp); err != nil {
		return nil, err
	}

	clusters := make([]Cluster, 0, len(resp.TopNews))
	for _, tn := range resp.TopNews {
		if len(tn.News) == 0 {
			continue
		}
		clusters = append(clusters, Cluster{Articles: tn.News})
	}
	return clusters, nil
}

// FrontPageBySource fetches the front page of one newspaper for a date.
func (c *Client) FrontPageBySource(ctx context.Context, identifier, date string) (FrontPage, error) {
	params := url.Values{}
	params.Set("source-name", identifier)
	set(params, "date", date)
	return c.frontPage(ctx, params)
}

// FrontPageByCountry asks the API for any front page of a country for a date.
func (c *Client) FrontPageByCountry(ctx context.Context, country, date string) (FrontPage, error) {
	params := url.Values{}
	params.Set("source-country", country)
	set(params, "date", date)
	return c.frontPage(ctx, params)
}

func (c *Client) frontPage(ctx context.Context, params url.Values) (FrontPage, error) {
	var resp frontPageResponse
	if err := c.get(ctx, frontPageEndpoint, params, &resp); err != nil {
		return FrontPage{}, err
	}
	if resp.FrontPage == nil {
		return FrontPage{}, ErrNoFrontPage
	}
	fp := resp.FrontPage.normalize()
	if fp.ImageURL == "" {
		return FrontPage{}, ErrNoFrontPage
	}
	return fp, nil
}

func (c *Client) get(ctx context.Context, endpoint string, params url.Values, out any) error {
	key := c.key()
	if key == "" {
		return ErrNoAPIKey
	}

	u, err := url.Parse(c.baseURL + endpoint)
	if err != nil {
		return fmt.Errorf("building request URL: %w", err)
	}
	q := u.Query()
	for k, vs := range params {
		for _, v := range vs {
			q.Add(k, v)
		}
	}
	redacted := u.Path + "?" + q.Encode()
	q.Set("api-key", key)
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	log := debuglog.WithFields(map[string]interface{}{"endpoint": endpoint})
	log.Debugf("GET %s", redacted)
	started := time.Now()

	resp, err := c.client.Do(req)
	if err != nil {
		log.Warnf("request failed after %s: %v", time.Since(started), err)
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return &TransportError{Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		log.Warnf("status %d after %s", resp.StatusCode, time.Since(started))
		return classifyStatus(resp.StatusCode, string(body))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding %s response: %w", endpoint, err)
	}
	log.Debugf("status %d after %s", resp.StatusCode, time.Since(started))
	return nil
}

func set(params url.Values, key, value string) {
	if value = strings.TrimSpace(value); value != "" {
		params.Set(key, value)
	}
}
