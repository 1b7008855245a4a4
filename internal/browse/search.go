package browse

import (
	"context"

	"github.com/pders01/newsroom/internal/debuglog"
	"github.com/pders01/newsroom/internal/newsapi"
)

// DefaultPageSize is the number of articles requested per search page.
const DefaultPageSize = 25

// NewsSearcher runs one page of a search.
type NewsSearcher interface {
	SearchNews(ctx context.Context, p newsapi.SearchParams) ([]newsapi.Article, error)
}

// SearchSession is the pagination state of one search. It is replaced on a
// fresh search and advanced in place by ContinueSearch.
type SearchSession struct {
	Criteria Criteria
	PageSize int
	Offset   int

	exhausted bool
}

// Exhausted reports whether the last page came back empty.
func (s *SearchSession) Exhausted() bool {
	return s.exhausted
}

// Page is one page of results. Offset is the offset it was requested at.
// Append is false for the first page of a session.
type Page struct {
	Articles []newsapi.Article
	Offset   int
	Append   bool
}

// HasMore reports whether a "load more" action should be offered.
func (p Page) HasMore() bool {
	return len(p.Articles) > 0
}

// Paginator issues offset-based search requests.
type Paginator struct {
	client   NewsSearcher
	pageSize int
}

func NewPaginator(client NewsSearcher, pageSize int) *Paginator {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	return &Paginator{client: client, pageSize: pageSize}
}

// StartSearch validates the criteria, creates a session at offset 0 and
// fetches its first page. No request is made when validation fails.
func (p *Paginator) StartSearch(ctx context.Context, c Criteria) (*SearchSession, Page, error) {
	if err := c.Validate(); err != nil {
		return nil, Page{}, err
	}

	s := &SearchSession{Criteria: c.Trimmed(), PageSize: p.pageSize}
	page, err := p.fetch(ctx, s)
	if err != nil {
		return nil, Page{}, err
	}
	return s, page, nil
}

// ContinueSearch fetches the next page of s. The offset only advances when
// the page is non-empty, so repeated calls after exhaustion keep returning
// empty pages at the same offset.
func (p *Paginator) ContinueSearch(ctx context.Context, s *SearchSession) (Page, error) {
	page, err := p.fetch(ctx, s)
	if err != nil {
		return Page{}, err
	}
	page.Append = true
	return page, nil
}

func (p *Paginator) fetch(ctx context.Context, s *SearchSession) (Page, error) {
	offset := s.Offset
	articles, err := p.client.SearchNews(ctx, s.Criteria.Params(s.PageSize, offset))
	if err != nil {
		return Page{}, err
	}

	if len(articles) > 0 {
		s.Offset = offset + len(articles)
		s.exhausted = false
	} else {
		s.exhausted = true
	}

	debuglog.WithFields(map[string]interface{}{
		"offset": offset,
		"count":  len(articles),
	}).Debugf("search page")

	return Page{Articles: articles, Offset: offset}, nil
}
