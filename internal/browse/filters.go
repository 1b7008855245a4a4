package browse

import (
	"strings"

	"github.com/pders01/newsroom/internal/refdata"
)

// FilterState is the front-page selector state derived from the dataset and
// the user's current choices.
type FilterState struct {
	Country string
	// Source is the selected identifier, or "" for every newspaper.
	Source  string
	Sources []refdata.Source

	SourceEnabled bool
	FetchEnabled  bool
}

// SyncFilters recomputes the dependent selectors for a country. Sources are
// limited to that country and ordered by display name. With no country both
// the source selector and the fetch action are disabled. A selected source
// that does not belong to the country is cleared.
func SyncFilters(ds refdata.Dataset, country, source string) FilterState {
	country = strings.ToLower(strings.TrimSpace(country))
	source = strings.TrimSpace(source)

	if country == "" {
		return FilterState{}
	}

	st := FilterState{
		Country:       country,
		Sources:       ds.SortedSourcesFor(country),
		SourceEnabled: true,
		FetchEnabled:  true,
	}
	if source != "" {
		if _, ok := ds.Lookup(country, source); ok {
			st.Source = source
		}
	}
	return st
}
