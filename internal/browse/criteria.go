// Package browse holds the pagination and batched-fetch state of the
// search and front-page views and the filter selection rules that feed them.
package browse

import (
	"strings"

	"github.com/pders01/newsroom/internal/newsapi"
)

// ErrNoCriteria is returned when a search is started with every field empty.
var ErrNoCriteria = &newsapi.ValidationError{Msg: "Enter keywords or choose at least one filter to search."}

// Criteria is the filter set of a search. Dates are YYYY-MM-DD.
type Criteria struct {
	Text         string
	Language     string
	Country      string
	Category     string
	EarliestDate string
	LatestDate   string
}

// Trimmed returns a copy with surrounding whitespace removed from every field.
func (c Criteria) Trimmed() Criteria {
	return Criteria{
		Text:         strings.TrimSpace(c.Text),
		Language:     strings.TrimSpace(c.Language),
		Country:      strings.TrimSpace(c.Country),
		Category:     strings.TrimSpace(c.Category),
		EarliestDate: strings.TrimSpace(c.EarliestDate),
		LatestDate:   strings.TrimSpace(c.LatestDate),
	}
}

// Empty reports whether no field is set.
func (c Criteria) Empty() bool {
	t := c.Trimmed()
	return t.Text == "" && t.Language == "" && t.Country == "" &&
		t.Category == "" && t.EarliestDate == "" && t.LatestDate == ""
}

// Validate checks that at least one field is set and the dates are well formed.
func (c Criteria) Validate() error {
	if c.Empty() {
		return ErrNoCriteria
	}
	t := c.Trimmed()
	for _, d := range []string{t.EarliestDate, t.LatestDate} {
		if d == "" {
			continue
		}
		if _, err := ParseDate(d); err != nil {
			return &newsapi.ValidationError{Msg: "invalid date " + d + ", expected YYYY-MM-DD"}
		}
	}
	return nil
}

// Params builds the search-news parameters for one page. The earliest date
// starts at midnight and the latest date ends one second before the next day.
func (c Criteria) Params(number, offset int) newsapi.SearchParams {
	t := c.Trimmed()
	p := newsapi.SearchParams{
		Text:          t.Text,
		Language:      t.Language,
		SourceCountry: t.Country,
		Categories:    t.Category,
		Number:        number,
		Offset:        offset,
	}
	if t.EarliestDate != "" {
		p.EarliestDate = t.EarliestDate + " 00:00:00"
	}
	if t.LatestDate != "" {
		p.LatestDate = t.LatestDate + " 23:59:59"
	}
	return p
}
