package browse

import (
	"context"
	"strings"

	"github.com/pders01/newsroom/internal/newsapi"
)

// DefaultTopNewsCount is the number of clusters requested.
const DefaultTopNewsCount = 20

// TopNewsFetcher retrieves story clusters.
type TopNewsFetcher interface {
	TopNews(ctx context.Context, p newsapi.TopNewsParams) ([]newsapi.Cluster, error)
}

// LoadTopNews fetches the clusters for a country and language. Clusters
// without articles never reach the caller.
func LoadTopNews(ctx context.Context, client TopNewsFetcher, country, language string, count int) ([]newsapi.Cluster, error) {
	country = strings.ToLower(strings.TrimSpace(country))
	if country == "" {
		return nil, ErrNoCountry
	}
	if count <= 0 {
		count = DefaultTopNewsCount
	}

	clusters, err := client.TopNews(ctx, newsapi.TopNewsParams{
		SourceCountry: country,
		Language:      strings.TrimSpace(language),
		Number:        count,
	})
	if err != nil {
		return nil, err
	}

	out := clusters[:0]
	for _, c := range clusters {
		if len(c.Articles) > 0 {
			out = append(out, c)
		}
	}
	return out, nil
}
