package refdata

import (
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/language/display"
)

var (
	regionNamer   = display.English.Regions()
	languageNamer = display.English.Languages()
)

// fallbackCountries is consulted when the region table has no entry.
var fallbackCountries = map[string]string{
	"US": "United States", "GB": "United Kingdom", "DE": "Germany", "FR": "France",
	"CA": "Canada", "AU": "Australia", "IT": "Italy", "ES": "Spain", "CN": "China",
	"JP": "Japan", "IN": "India", "BR": "Brazil", "RU": "Russia", "NL": "Netherlands",
	"SE": "Sweden", "NO": "Norway", "DK": "Denmark", "FI": "Finland", "PL": "Poland",
	"CZ": "Czechia", "AT": "Austria", "CH": "Switzerland", "BE": "Belgium",
	"PT": "Portugal", "IE": "Ireland", "MX": "Mexico", "AR": "Argentina",
	"ZA": "South Africa", "KR": "South Korea", "TR": "Turkey", "GR": "Greece",
	"IL": "Israel", "UA": "Ukraine",
}

// CountryName returns the English name of an ISO 3166-1 alpha-2 code, or the
// uppercased code when no name is known.
func CountryName(code string) string {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return ""
	}
	if region, err := language.ParseRegion(code); err == nil {
		if name := regionNamer.Name(region); name != "" {
			return name
		}
	}
	if name, ok := fallbackCountries[code]; ok {
		return name
	}
	return code
}

// LanguageName returns the English name of an ISO 639-1 code, or the code itself.
func LanguageName(code string) string {
	code = strings.ToLower(strings.TrimSpace(code))
	if code == "" {
		return ""
	}
	if base, err := language.ParseBase(code); err == nil {
		if name := languageNamer.Name(base); name != "" {
			return name
		}
	}
	return code
}
