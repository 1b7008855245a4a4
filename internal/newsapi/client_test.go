package newsapi

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/pders01/newsroom/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	cfg := config.TestConfig()
	cfg.API.BaseURL = srv.URL
	return NewClient(cfg, "test-key")
}

func TestSearchNews_SendsParameters(t *testing.T) {
	var got map[string]string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/search-news", r.URL.Path)
		assert.Equal(t, "newsroom-test/1.0", r.Header.Get("User-Agent"))
		got = map[string]string{}
		for k := range r.URL.Query() {
			got[k] = r.URL.Query().Get(k)
		}
		fmt.Fprint(w, `{"offset":25,"number":2,"available":300,"news":[{"id":1,"title":"a","url":"https://x/1"},{"id":2,"title":"b","url":"https://x/2"}]}`)
	})

	articles, err := client.SearchNews(context.Background(), SearchParams{
		Text:          "climate",
		Language:      "en",
		SourceCountry: "",
		Categories:    "science",
		EarliestDate:  "2025-01-01 00:00:00",
		Number:        25,
		Offset:        25,
	})
	require.NoError(t, err)
	require.Len(t, articles, 2)
	assert.Equal(t, int64(2), articles[1].ID)

	assert.Equal(t, "test-key", got["api-key"])
	assert.Equal(t, "climate", got["text"])
	assert.Equal(t, "en", got["language"])
	assert.Equal(t, "science", got["categories"])
	assert.Equal(t, "2025-01-01 00:00:00", got["earliest-publish-date"])
	assert.Equal(t, "25", got["number"])
	assert.Equal(t, "25", got["offset"])
	_, hasCountry := got["source-country"]
	assert.False(t, hasCountry, "empty parameters are omitted")
	_, hasLatest := got["latest-publish-date"]
	assert.False(t, hasLatest)
}

func TestSearchNews_NullNewsIsEmpty(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"news":null}`)
	})

	articles, err := client.SearchNews(context.Background(), SearchParams{Text: "x"})
	require.NoError(t, err)
	assert.NotNil(t, articles)
	assert.Empty(t, articles)
}

func TestTopNews_DropsEmptyClusters(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/top-news", r.URL.Path)
		assert.Equal(t, "us", r.URL.Query().Get("source-country"))
		assert.Equal(t, "20", r.URL.Query().Get("number"))
		fmt.Fprint(w, `{"top_news":[
			{"news":[{"id":1,"title":"lead"},{"id":2,"title":"dup"}]},
			{"news":[]},
			{"news":[{"id":3,"title":"solo"}]}
		],"language":"en","country":"us"}`)
	})

	clusters, err := client.TopNews(context.Background(), TopNewsParams{SourceCountry: "us", Language: "en", Number: 20})
	require.NoError(t, err)
	require.Len(t, clusters, 2)
	assert.Equal(t, "lead", clusters[0].Primary().Title)
	assert.Len(t, clusters[0].Others(), 1)
	assert.Nil(t, clusters[1].Others())
}

func TestFrontPage_NormalizesFieldSpellings(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		wantURL  string
		wantName string
		wantErr  error
	}{
		{
			name:     "image and name",
			body:     `{"front_page":{"image":"https://img/1.jpg","name":"Daily","country":"us","date":"2025-03-01","language":"en"}}`,
			wantURL:  "https://img/1.jpg",
			wantName: "Daily",
		},
		{
			name:     "url and source_name",
			body:     `{"front_page":{"url":"https://img/2.jpg","source_name":"Herald"}}`,
			wantURL:  "https://img/2.jpg",
			wantName: "Herald",
		},
		{
			name:    "front_page_url",
			body:    `{"front_page":{"front_page_url":"https://img/3.jpg"}}`,
			wantURL: "https://img/3.jpg",
		},
		{
			name:    "missing image",
			body:    `{"front_page":{"name":"No Image"}}`,
			wantErr: ErrNoFrontPage,
		},
		{
			name:    "missing front_page",
			body:    `{}`,
			wantErr: ErrNoFrontPage,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "/retrieve-front-page", r.URL.Path)
				assert.Equal(t, "daily-news", r.URL.Query().Get("source-name"))
				assert.Equal(t, "2025-03-01", r.URL.Query().Get("date"))
				fmt.Fprint(w, tt.body)
			})

			fp, err := client.FrontPageBySource(context.Background(), "daily-news", "2025-03-01")
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantURL, fp.ImageURL)
			assert.Equal(t, tt.wantName, fp.Name)
		})
	}
}

func TestFrontPageByCountry_UsesSourceCountry(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "de", r.URL.Query().Get("source-country"))
		assert.Empty(t, r.URL.Query().Get("source-name"))
		fmt.Fprint(w, `{"front_page":{"image":"https://img/de.jpg"}}`)
	})

	fp, err := client.FrontPageByCountry(context.Background(), "de", "2025-03-01")
	require.NoError(t, err)
	assert.Equal(t, "https://img/de.jpg", fp.ImageURL)
}

func TestClient_StatusClassification(t *testing.T) {
	tests := []struct {
		status  int
		body    string
		check   func(t *testing.T, err error)
		message string
	}{
		{
			status: http.StatusUnauthorized,
			check: func(t *testing.T, err error) {
				var e *AuthError
				assert.ErrorAs(t, err, &e)
			},
			message: "Invalid API key - please check your settings",
		},
		{
			status: http.StatusTooManyRequests,
			check: func(t *testing.T, err error) {
				var e *RateLimitError
				assert.ErrorAs(t, err, &e)
			},
			message: "Rate limit exceeded - please try again later",
		},
		{
			status: http.StatusInternalServerError,
			body:   "boom",
			check: func(t *testing.T, err error) {
				var e *APIError
				require.ErrorAs(t, err, &e)
				assert.Equal(t, 500, e.StatusCode)
				assert.Equal(t, "boom", e.Body)
			},
			message: "API request failed: 500 Internal Server Error. Details: boom",
		},
		{
			status: http.StatusNotFound,
			check: func(t *testing.T, err error) {
				assert.True(t, IsNotFound(err))
			},
			message: "API request failed: 404 Not Found",
		},
	}

	for _, tt := range tests {
		t.Run(http.StatusText(tt.status), func(t *testing.T) {
			client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				fmt.Fprint(w, tt.body)
			})

			_, err := client.SearchNews(context.Background(), SearchParams{Text: "x"})
			require.Error(t, err)
			tt.check(t, err)
			assert.Equal(t, tt.message, UserMessage(err))
		})
	}
}

func TestClient_NetworkError(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := ln.Addr().String()
	require.NoError(t, ln.Close())

	cfg := config.TestConfig()
	cfg.API.BaseURL = "http://" + addr
	client := NewClient(cfg, "k")

	_, err = client.SearchNews(context.Background(), SearchParams{Text: "x"})
	var te *TransportError
	require.ErrorAs(t, err, &te)
	assert.Equal(t, "Network error - please check your internet connection", UserMessage(err))
}

func TestClient_NoAPIKey(t *testing.T) {
	called := false
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		called = true
	})
	client.SetAPIKey("  ")

	assert.False(t, client.HasAPIKey())
	_, err := client.SearchNews(context.Background(), SearchParams{Text: "x"})
	assert.ErrorIs(t, err, ErrNoAPIKey)
	assert.False(t, called)
	assert.Equal(t, "API key not configured", UserMessage(err))
}

func TestClient_ConfigKeyOverrides(t *testing.T) {
	cfg := config.TestConfig()
	cfg.API.Key = "from-config"
	client := NewClient(cfg, "from-library")
	assert.Equal(t, "from-config", client.key())
}

func TestClient_CanceledContext(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"news":[]}`)
	})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := client.SearchNews(ctx, SearchParams{Text: "x"})
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestUserMessage_Nil(t *testing.T) {
	assert.Equal(t, "", UserMessage(nil))
}
