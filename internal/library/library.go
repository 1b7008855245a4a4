// Package library applies save, folder and saved-search changes to the
// persisted settings document.
package library

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/pders01/newsroom/internal/browse"
	"github.com/pders01/newsroom/internal/debuglog"
	"github.com/pders01/newsroom/internal/newsapi"
	"github.com/pders01/newsroom/internal/storage"
)

var (
	ErrFolderNotFound = errors.New("folder not found")
	ErrSearchNotFound = errors.New("saved search not found")
	ErrEmptyName      = &newsapi.ValidationError{Msg: "name cannot be empty"}
	ErrNoArticleID    = &newsapi.ValidationError{Msg: "article has no id and cannot be saved"}
)

// PersistenceError reports a failed flush. The change it describes is kept
// in memory.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("%s: persisting settings: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

// Persister writes the whole document.
type Persister interface {
	Save(settings *storage.Settings) error
}

// Library is the in-memory copy of the settings document and the single
// writer of it.
type Library struct {
	mu        sync.Mutex
	doc       *storage.Settings
	persister Persister
	now       func() time.Time
	newID     func() string

	listeners []ChangeListener
}

// Option configures a Library.
type Option func(*Library)

// WithClock overrides the time source used for created/saved timestamps.
func WithClock(now func() time.Time) Option {
	return func(l *Library) { l.now = now }
}

// WithIDGenerator overrides id generation.
func WithIDGenerator(gen func() string) Option {
	return func(l *Library) { l.newID = gen }
}

// New wraps an already loaded document.
func New(doc *storage.Settings, p Persister, opts ...Option) *Library {
	if doc == nil {
		doc = storage.DefaultSettings()
	}
	doc.Normalize()

	l := &Library{
		doc:       doc,
		persister: p,
		now:       time.Now,
		newID:     newTimeOrderedID,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

func newTimeOrderedID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}

// Snapshot returns a deep copy of the document.
func (l *Library) Snapshot() *storage.Settings {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.doc.Clone()
}

// flush must be called with l.mu held.
func (l *Library) flush(op string) error {
	if l.persister == nil {
		return nil
	}
	if err := l.persister.Save(l.doc); err != nil {
		perr := &PersistenceError{Op: op, Err: err}
		debuglog.WithFields(map[string]interface{}{"op": op}).Errorf("%v", perr)
		return perr
	}
	return nil
}

// commit flushes and then notifies listeners outside the lock.
func (l *Library) commit(op string, change Change) error {
	err := l.flush(op)
	listeners := append([]ChangeListener(nil), l.listeners...)
	l.mu.Unlock()
	for _, ln := range listeners {
		ln.OnLibraryChanged(change)
	}
	l.mu.Lock()
	return err
}

// SaveSearch stores criteria under proposedName. An existing name gets a
// " (2)", " (3)", ... suffix; nothing is overwritten.
func (l *Library) SaveSearch(c browse.Criteria, proposedName string) (storage.SavedSearch, error) {
	base := strings.TrimSpace(proposedName)
	if base == "" {
		return storage.SavedSearch{}, ErrEmptyName
	}
	c = c.Trimmed()

	l.mu.Lock()
	defer l.mu.Unlock()

	names := make(map[string]bool, len(l.doc.SavedSearches))
	for _, s := range l.doc.SavedSearches {
		names[s.Name] = true
	}
	name := base
	for i := 2; names[name]; i++ {
		name = fmt.Sprintf("%s (%d)", base, i)
	}

	saved := storage.SavedSearch{
		ID:           l.newID(),
		Name:         name,
		Text:         c.Text,
		Language:     c.Language,
		Country:      c.Country,
		Category:     c.Category,
		EarliestDate: c.EarliestDate,
		LatestDate:   c.LatestDate,
		Created:      l.now(),
	}
	l.doc.SavedSearches = append(l.doc.SavedSearches, saved)

	return saved, l.commit("save search", Change{Kind: SearchSaved})
}

// DeleteSavedSearch removes a saved search. Unknown ids are ignored.
func (l *Library) DeleteSavedSearch(id string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	kept := l.doc.SavedSearches[:0]
	removed := false
	for _, s := range l.doc.SavedSearches {
		if s.ID == id {
			removed = true
			continue
		}
		kept = append(kept, s)
	}
	l.doc.SavedSearches = kept
	if !removed {
		return nil
	}
	return l.commit("delete search", Change{Kind: SearchDeleted})
}

// SavedSearches returns the saved searches in creation order.
func (l *Library) SavedSearches() []storage.SavedSearch {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]storage.SavedSearch(nil), l.doc.SavedSearches...)
}

// SavedSearch looks a saved search up by id.
func (l *Library) SavedSearch(id string) (storage.SavedSearch, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, s := range l.doc.SavedSearches {
		if s.ID == id {
			return s, nil
		}
	}
	return storage.SavedSearch{}, ErrSearchNotFound
}

// CriteriaOf converts a saved search back into search criteria.
func CriteriaOf(s storage.SavedSearch) browse.Criteria {
	return browse.Criteria{
		Text:         s.Text,
		Language:     s.Language,
		Country:      s.Country,
		Category:     s.Category,
		EarliestDate: s.EarliestDate,
		LatestDate:   s.LatestDate,
	}
}

// CreateFolder appends a folder. Folder names may repeat.
func (l *Library) CreateFolder(name string) (storage.Folder, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return storage.Folder{}, ErrEmptyName
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	f := storage.Folder{ID: l.newID(), Name: name, Created: l.now()}
	l.doc.Folders = append(l.doc.Folders, f)

	return f, l.commit("create folder", Change{Kind: FolderCreated, FolderID: f.ID})
}

// Folders returns the folders in creation order.
func (l *Library) Folders() []storage.Folder {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]storage.Folder(nil), l.doc.Folders...)
}

// Folder looks a folder up by id.
func (l *Library) Folder(id string) (storage.Folder, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if i := l.folderIndex(id); i >= 0 {
		return l.doc.Folders[i], nil
	}
	return storage.Folder{}, ErrFolderNotFound
}

func (l *Library) folderIndex(id string) int {
	for i, f := range l.doc.Folders {
		if f.ID == id {
			return i
		}
	}
	return -1
}

// FolderArticles returns the saved articles of a folder in save order.
func (l *Library) FolderArticles(folderID string) ([]storage.SavedArticle, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.folderIndex(folderID) < 0 {
		return nil, ErrFolderNotFound
	}
	return append([]storage.SavedArticle(nil), l.doc.SavedNews[folderID]...), nil
}

// SaveArticleToFolder stores a snapshot of a in the folder. It reports false
// without writing when the folder already holds an article with that id.
// Articles are keyed by id, so one without an id is refused.
func (l *Library) SaveArticleToFolder(a newsapi.Article, folderID string) (bool, error) {
	if a.ID == 0 {
		return false, ErrNoArticleID
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.folderIndex(folderID) < 0 {
		return false, ErrFolderNotFound
	}
	for _, existing := range l.doc.SavedNews[folderID] {
		if existing.ID == a.ID {
			return false, nil
		}
	}

	snap := storage.SavedArticle{
		ID:       a.ID,
		Title:    a.Title,
		Summary:  a.Summary,
		URL:      a.URL,
		Image:    a.Image,
		SavedAt:  l.now(),
		FolderID: folderID,
	}
	l.doc.SavedNews[folderID] = append(l.doc.SavedNews[folderID], snap)

	return true, l.commit("save article", Change{Kind: ArticleSaved, FolderID: folderID, Articles: []storage.SavedArticle{snap}})
}

// CreateFolderAndSave creates a folder and saves a into it.
func (l *Library) CreateFolderAndSave(name string, a newsapi.Article) (storage.Folder, error) {
	if a.ID == 0 {
		return storage.Folder{}, ErrNoArticleID
	}
	f, err := l.CreateFolder(name)
	if err != nil {
		var perr *PersistenceError
		if !errors.As(err, &perr) {
			return storage.Folder{}, err
		}
	}
	if _, saveErr := l.SaveArticleToFolder(a, f.ID); saveErr != nil {
		return f, saveErr
	}
	return f, err
}

// RemoveArticle drops an article from one folder. Absence is not an error.
func (l *Library) RemoveArticle(articleID int64, folderID string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	bucket := l.doc.SavedNews[folderID]
	var removed []storage.SavedArticle
	kept := make([]storage.SavedArticle, 0, len(bucket))
	for _, a := range bucket {
		if a.ID == articleID {
			removed = append(removed, a)
			continue
		}
		kept = append(kept, a)
	}
	if len(removed) == 0 {
		return nil
	}
	l.doc.SavedNews[folderID] = kept

	return l.commit("remove article", Change{Kind: ArticleRemoved, FolderID: folderID, Articles: removed})
}

// DeleteFolder removes the folder and its saved articles in the same write.
func (l *Library) DeleteFolder(folderID string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	i := l.folderIndex(folderID)
	if i < 0 {
		return ErrFolderNotFound
	}

	removed := l.doc.SavedNews[folderID]
	l.doc.Folders = append(l.doc.Folders[:i:i], l.doc.Folders[i+1:]...)
	delete(l.doc.SavedNews, folderID)

	return l.commit("delete folder", Change{Kind: FolderDeleted, FolderID: folderID, Articles: removed})
}

// IsSaved reports whether any folder holds the article.
func (l *Library) IsSaved(articleID int64) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, bucket := range l.doc.SavedNews {
		for _, a := range bucket {
			if a.ID == articleID {
				return true
			}
		}
	}
	return false
}

// SavedArticleCount is the number of saved entries across all folders.
func (l *Library) SavedArticleCount() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	n := 0
	for _, bucket := range l.doc.SavedNews {
		n += len(bucket)
	}
	return n
}

// APIKey returns the stored API key.
func (l *Library) APIKey() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.doc.APIKey
}

// SetAPIKey stores a new API key. An empty key is rejected.
func (l *Library) SetAPIKey(key string) error {
	key = strings.TrimSpace(key)
	if key == "" {
		return &newsapi.ValidationError{Msg: "Please enter an API key"}
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	l.doc.APIKey = key
	return l.commit("set api key", Change{Kind: SettingsChanged})
}

// Preferences returns the stored preferences.
func (l *Library) Preferences() storage.Preferences {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.doc.Preferences
}

// SetPreferences replaces the default country and language. Empty values
// keep the current setting.
func (l *Library) SetPreferences(p storage.Preferences) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if v := strings.ToLower(strings.TrimSpace(p.DefaultCountry)); v != "" {
		l.doc.Preferences.DefaultCountry = v
	}
	if v := strings.ToLower(strings.TrimSpace(p.DefaultLanguage)); v != "" {
		l.doc.Preferences.DefaultLanguage = v
	}
	if v := strings.TrimSpace(p.Theme); v != "" {
		l.doc.Preferences.Theme = v
	}
	return l.commit("set preferences", Change{Kind: SettingsChanged})
}

// Replace swaps in a whole document, as after an import.
func (l *Library) Replace(doc *storage.Settings) error {
	doc = doc.Clone()

	l.mu.Lock()
	defer l.mu.Unlock()
	l.doc = doc
	return l.commit("replace", Change{Kind: Replaced})
}
