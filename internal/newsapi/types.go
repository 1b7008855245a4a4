package newsapi

import "strings"

// Article is the canonical shape of a news item returned by search-news and top-news.
type Article struct {
	ID            int64    `json:"id"`
	Title         string   `json:"title"`
	Text          string   `json:"text,omitempty"`
	Summary       string   `json:"summary,omitempty"`
	URL           string   `json:"url"`
	Image         string   `json:"image,omitempty"`
	PublishDate   string   `json:"publish_date,omitempty"`
	Authors       []string `json:"authors,omitempty"`
	Language      string   `json:"language,omitempty"`
	SourceCountry string   `json:"source_country,omitempty"`
	Category      string   `json:"category,omitempty"`
}

// Cluster is a group of near-duplicate articles about the same story.
type Cluster struct {
	Articles []Article
}

// Primary is the article shown for the cluster.
func (c Cluster) Primary() Article {
	if len(c.Articles) == 0 {
		return Article{}
	}
	return c.Articles[0]
}

// Others returns the remaining articles of the cluster.
func (c Cluster) Others() []Article {
	if len(c.Articles) <= 1 {
		return nil
	}
	return c.Articles[1:]
}

// FrontPage is a newspaper cover image for a date.
type FrontPage struct {
	ImageURL string
	Name     string
	Country  string
	Date     string
	Language string
}

// SearchParams are the query parameters of search-news.
type SearchParams struct {
	Text          string
	Language      string
	SourceCountry string
	Categories    string
	EarliestDate  string // YYYY-MM-DD HH:MM:SS
	LatestDate    string // YYYY-MM-DD HH:MM:SS
	Number        int
	Offset        int
}

// TopNewsParams are the query parameters of top-news.
type TopNewsParams struct {
	SourceCountry string
	Language      string
	Number        int
}

type searchResponse struct {
	Offset    int       `json:"offset"`
	Number    int       `json:"number"`
	Available int       `json:"available"`
	News      []Article `json:"news"`
}

type topNewsResponse struct {
	TopNews []struct {
		News []Article `json:"news"`
	} `json:"top_news"`
	Language string `json:"language"`
	Country  string `json:"country"`
}

// rawFrontPage accepts the field spellings the API has been seen to use
// for the image URL and the source name.
type rawFrontPage struct {
	Image        string `json:"image"`
	URL          string `json:"url"`
	FrontPageURL string `json:"front_page_url"`
	Name         string `json:"name"`
	SourceName   string `json:"source_name"`
	Country      string `json:"country"`
	Date         string `json:"date"`
	Language     string `json:"language"`
}

type frontPageResponse struct {
	FrontPage *rawFrontPage `json:"front_page"`
}

func (r *rawFrontPage) normalize() FrontPage {
	return FrontPage{
		ImageURL: firstNonEmpty(r.Image, r.URL, r.FrontPageURL),
		Name:     firstNonEmpty(r.Name, r.SourceName),
		Country:  strings.TrimSpace(r.Country),
		Date:     strings.TrimSpace(r.Date),
		Language: strings.TrimSpace(r.Language),
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}
