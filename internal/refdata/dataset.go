// Package refdata parses and indexes the static country/newspaper listing
// used to drive front-page browsing.
package refdata

import (
	"regexp"
	"sort"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// Country is one selectable country, Code is the lowercase ISO 3166-1 alpha-2 code.
type Country struct {
	Code string
	Name string
}

// Source is one newspaper known to the front-page endpoint.
type Source struct {
	DisplayName  string
	CountryCode  string
	LanguageCode string
	Identifier   string
}

// Dataset is the parsed listing. It is not modified after Parse returns.
type Dataset struct {
	Countries []Country
	Sources   []Source

	byCountry map[string][]int
}

var (
	lineSplit   = regexp.MustCompile(`\r?\n`)
	spaceSplit  = regexp.MustCompile(`\s{2,}`)
	minFields   = 4
	nameCollate = collate.New(language.English, collate.Loose)
)

// Parse reads a header line, optional '#' comment lines and records of
// display name, country code, language code and identifier. Records are
// tab separated; lines with fewer than four tab fields are split on runs of
// two or more spaces instead. Malformed records are skipped.
func Parse(raw string) Dataset {
	var lines []string
	for _, l := range lineSplit.Split(raw, -1) {
		if strings.TrimSpace(l) != "" {
			lines = append(lines, l)
		}
	}

	ds := Dataset{byCountry: make(map[string][]int)}
	seen := make(map[string]bool)

	for i, line := range lines {
		if i == 0 || strings.HasPrefix(line, "#") {
			continue
		}

		parts := strings.Split(line, "\t")
		if len(parts) < minFields {
			parts = spaceSplit.Split(line, -1)
		}
		if len(parts) < minFields {
			continue
		}

		src := Source{
			DisplayName:  strings.TrimSpace(parts[0]),
			CountryCode:  strings.ToLower(strings.TrimSpace(parts[1])),
			LanguageCode: strings.ToLower(strings.TrimSpace(parts[2])),
			Identifier:   strings.TrimSpace(parts[3]),
		}
		if src.DisplayName == "" || src.CountryCode == "" || src.Identifier == "" {
			continue
		}

		ds.byCountry[src.CountryCode] = append(ds.byCountry[src.CountryCode], len(ds.Sources))
		ds.Sources = append(ds.Sources, src)

		if !seen[src.CountryCode] {
			seen[src.CountryCode] = true
			ds.Countries = append(ds.Countries, Country{Code: src.CountryCode, Name: CountryName(src.CountryCode)})
		}
	}

	sort.SliceStable(ds.Countries, func(i, j int) bool {
		return nameCollate.CompareString(ds.Countries[i].Name, ds.Countries[j].Name) < 0
	})

	return ds
}

// Empty reports whether the dataset has no sources.
func (d Dataset) Empty() bool {
	return len(d.Sources) == 0
}

// HasCountry reports whether at least one source belongs to country.
func (d Dataset) HasCountry(country string) bool {
	return len(d.byCountry[strings.ToLower(strings.TrimSpace(country))]) > 0
}

// SourcesFor returns the sources of a country in dataset order.
func (d Dataset) SourcesFor(country string) []Source {
	idx := d.byCountry[strings.ToLower(strings.TrimSpace(country))]
	out := make([]Source, 0, len(idx))
	for _, i := range idx {
		out = append(out, d.Sources[i])
	}
	return out
}

// Identifiers returns the source identifiers of a country in dataset order.
func (d Dataset) Identifiers(country string) []string {
	sources := d.SourcesFor(country)
	ids := make([]string, len(sources))
	for i, s := range sources {
		ids[i] = s.Identifier
	}
	return ids
}

// Lookup finds a source by identifier within a country. Identifiers are
// only unique per country, so the country is required.
func (d Dataset) Lookup(country, identifier string) (Source, bool) {
	for _, s := range d.SourcesFor(country) {
		if s.Identifier == identifier {
			return s, true
		}
	}
	return Source{}, false
}

// SortedSourcesFor returns the sources of a country ordered by display name.
func (d Dataset) SortedSourcesFor(country string) []Source {
	sources := d.SourcesFor(country)
	sort.SliceStable(sources, func(i, j int) bool {
		return nameCollate.CompareString(sources[i].DisplayName, sources[j].DisplayName) < 0
	})
	return sources
}
