package storage

import (
	"time"
)

// Settings is the whole persisted user document: API key, preferences and
// the library of saved searches, folders and saved articles. It is read and
// written as one unit.
type Settings struct {
	APIKey        string                    `json:"apiKey"`
	SavedSearches []SavedSearch             `json:"savedSearches"`
	Folders       []Folder                  `json:"folders"`
	SavedNews     map[string][]SavedArticle `json:"savedNews"`
	Preferences   Preferences               `json:"preferences"`
}

type Preferences struct {
	DefaultCountry  string `json:"defaultCountry"`
	DefaultLanguage string `json:"defaultLanguage"`
	Theme           string `json:"theme"`
}

// SavedSearch is a named snapshot of search criteria. Dates are YYYY-MM-DD.
type SavedSearch struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Text         string    `json:"text"`
	Language     string    `json:"language"`
	Country      string    `json:"country"`
	Category     string    `json:"category"`
	EarliestDate string    `json:"earliestDate"`
	LatestDate   string    `json:"latestDate"`
	Created      time.Time `json:"created"`
}

type Folder struct {
	ID      string    `json:"id"`
	Name    string    `json:"name"`
	Created time.Time `json:"created"`
}

// SavedArticle is the snapshot of an article kept in a folder.
type SavedArticle struct {
	ID       int64     `json:"id"`
	Title    string    `json:"title"`
	Summary  string    `json:"summary"`
	URL      string    `json:"url"`
	Image    string    `json:"image"`
	SavedAt  time.Time `json:"savedAt"`
	FolderID string    `json:"folderId"`
}

// DefaultSettings is the document used before anything has been saved.
func DefaultSettings() *Settings {
	return &Settings{
		SavedSearches: []SavedSearch{},
		Folders:       []Folder{},
		SavedNews:     map[string][]SavedArticle{},
		Preferences: Preferences{
			DefaultCountry:  "us",
			DefaultLanguage: "en",
			Theme:           "light",
		},
	}
}

// Normalize fills nil collections and drops saved-news buckets whose folder
// no longer exists, so every bucket key names a folder.
func (s *Settings) Normalize() {
	if s.SavedSearches == nil {
		s.SavedSearches = []SavedSearch{}
	}
	if s.Folders == nil {
		s.Folders = []Folder{}
	}
	if s.SavedNews == nil {
		s.SavedNews = map[string][]SavedArticle{}
	}

	known := make(map[string]bool, len(s.Folders))
	for _, f := range s.Folders {
		known[f.ID] = true
	}
	for id := range s.SavedNews {
		if !known[id] {
			delete(s.SavedNews, id)
		}
	}
}

// Clone returns a deep copy.
func (s *Settings) Clone() *Settings {
	c := *s
	c.SavedSearches = append([]SavedSearch(nil), s.SavedSearches...)
	c.Folders = append([]Folder(nil), s.Folders...)
	c.SavedNews = make(map[string][]SavedArticle, len(s.SavedNews))
	for k, v := range s.SavedNews {
		c.SavedNews[k] = append([]SavedArticle(nil), v...)
	}
	c.Normalize()
	return &c
}
