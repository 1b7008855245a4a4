package library

import (
	"strings"

	"github.com/pders01/newsroom/internal/browse"
	"github.com/pders01/newsroom/internal/refdata"
)

const untitledSearch = "Untitled Search"

// SuggestSearchName proposes a saved-search name: the search text when
// present, otherwise the language, country and category joined by " • ".
func SuggestSearchName(c browse.Criteria) string {
	c = c.Trimmed()
	if c.Text != "" {
		return c.Text
	}

	var bits []string
	if c.Language != "" {
		bits = append(bits, refdata.LanguageName(c.Language))
	}
	if c.Country != "" {
		bits = append(bits, refdata.CountryName(c.Country))
	}
	if c.Category != "" {
		bits = append(bits, c.Category)
	}
	if len(bits) == 0 {
		return untitledSearch
	}
	return strings.Join(bits, " • ")
}
