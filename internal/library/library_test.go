package library

import (
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pders01/newsroom/internal/browse"
	"github.com/pders01/newsroom/internal/newsapi"
	"github.com/pders01/newsroom/internal/storage"
)

type memPersister struct {
	mu    sync.Mutex
	saves int
	last  *storage.Settings
	err   error
}

func (m *memPersister) Save(s *storage.Settings) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.saves++
	m.last = s.Clone()
	return nil
}

type recorder struct {
	mu      sync.Mutex
	changes []Change
}

func (r *recorder) OnLibraryChanged(c Change) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.changes = append(r.changes, c)
}

func newTestLibrary(t *testing.T) (*Library, *memPersister) {
	t.Helper()
	p := &memPersister{}
	seq := 0
	lib := New(nil, p,
		WithClock(func() time.Time { return time.Date(2025, 4, 1, 10, 0, 0, 0, time.UTC) }),
		WithIDGenerator(func() string { seq++; return fmt.Sprintf("id-%d", seq) }),
	)
	return lib, p
}

func article(id int64) newsapi.Article {
	return newsapi.Article{ID: id, Title: fmt.Sprintf("Article %d", id), URL: fmt.Sprintf("https://example.com/%d", id), Summary: "summary"}
}

func TestSaveArticleToFolder_NoDuplicates(t *testing.T) {
	lib, p := newTestLibrary(t)

	a, err := lib.CreateFolder("A")
	require.NoError(t, err)
	b, err := lib.CreateFolder("B")
	require.NoError(t, err)

	added, err := lib.SaveArticleToFolder(article(7), a.ID)
	require.NoError(t, err)
	assert.True(t, added)

	savesBefore := p.saves
	added, err = lib.SaveArticleToFolder(article(7), a.ID)
	require.NoError(t, err)
	assert.False(t, added)
	assert.Equal(t, savesBefore, p.saves, "duplicate save is a no-op")

	added, err = lib.SaveArticleToFolder(article(7), b.ID)
	require.NoError(t, err)
	assert.True(t, added)

	inA, _ := lib.FolderArticles(a.ID)
	inB, _ := lib.FolderArticles(b.ID)
	assert.Len(t, inA, 1)
	assert.Len(t, inB, 1)
	assert.Equal(t, a.ID, inA[0].FolderID)
	assert.Equal(t, "summary", inA[0].Summary)
	assert.True(t, lib.IsSaved(7))
	assert.False(t, lib.IsSaved(8))
	assert.Equal(t, 2, lib.SavedArticleCount())
}

func TestSaveArticleToFolder_UnknownFolder(t *testing.T) {
	lib, _ := newTestLibrary(t)
	_, err := lib.SaveArticleToFolder(article(1), "nope")
	assert.ErrorIs(t, err, ErrFolderNotFound)
}

func TestSaveSearch_NameDedup(t *testing.T) {
	lib, p := newTestLibrary(t)
	c := browse.Criteria{Text: "tech"}

	first, err := lib.SaveSearch(c, "Tech")
	require.NoError(t, err)
	second, err := lib.SaveSearch(c, "Tech")
	require.NoError(t, err)
	third, err := lib.SaveSearch(c, " Tech ")
	require.NoError(t, err)

	assert.Equal(t, "Tech", first.Name)
	assert.Equal(t, "Tech (2)", second.Name)
	assert.Equal(t, "Tech (3)", third.Name)
	assert.NotEqual(t, first.ID, second.ID)
	assert.Len(t, lib.SavedSearches(), 3)
	assert.Len(t, p.last.SavedSearches, 3)

	_, err = lib.SaveSearch(c, "   ")
	assert.ErrorIs(t, err, ErrEmptyName)
}

func TestSavedSearch_LookupAndDelete(t *testing.T) {
	lib, _ := newTestLibrary(t)
	c := browse.Criteria{Country: "de", EarliestDate: "2025-01-01"}

	s, err := lib.SaveSearch(c, "German")
	require.NoError(t, err)

	got, err := lib.SavedSearch(s.ID)
	require.NoError(t, err)
	assert.Equal(t, c, CriteriaOf(got))

	require.NoError(t, lib.DeleteSavedSearch(s.ID))
	_, err = lib.SavedSearch(s.ID)
	assert.ErrorIs(t, err, ErrSearchNotFound)
	assert.NoError(t, lib.DeleteSavedSearch(s.ID))
}

func TestDeleteFolder_RemovesBucket(t *testing.T) {
	lib, p := newTestLibrary(t)

	f, err := lib.CreateFolder("Doomed")
	require.NoError(t, err)
	keep, err := lib.CreateFolder("Keep")
	require.NoError(t, err)
	for id := int64(1); id <= 3; id++ {
		_, err := lib.SaveArticleToFolder(article(id), f.ID)
		require.NoError(t, err)
	}
	_, err = lib.SaveArticleToFolder(article(1), keep.ID)
	require.NoError(t, err)

	rec := &recorder{}
	lib.AddListener(rec)

	require.NoError(t, lib.DeleteFolder(f.ID))

	_, err = lib.Folder(f.ID)
	assert.ErrorIs(t, err, ErrFolderNotFound)
	_, err = lib.FolderArticles(f.ID)
	assert.ErrorIs(t, err, ErrFolderNotFound)

	snap := lib.Snapshot()
	_, orphan := snap.SavedNews[f.ID]
	assert.False(t, orphan)
	_, persistedOrphan := p.last.SavedNews[f.ID]
	assert.False(t, persistedOrphan)
	assert.Len(t, p.last.Folders, 1)
	assert.True(t, lib.IsSaved(1), "other folders are untouched")

	require.Len(t, rec.changes, 1)
	assert.Equal(t, FolderDeleted, rec.changes[0].Kind)
	assert.Len(t, rec.changes[0].Articles, 3)

	assert.ErrorIs(t, lib.DeleteFolder(f.ID), ErrFolderNotFound)
}

func TestRemoveArticle(t *testing.T) {
	lib, p := newTestLibrary(t)
	f, _ := lib.CreateFolder("F")
	_, _ = lib.SaveArticleToFolder(article(1), f.ID)
	_, _ = lib.SaveArticleToFolder(article(2), f.ID)

	require.NoError(t, lib.RemoveArticle(1, f.ID))
	left, _ := lib.FolderArticles(f.ID)
	require.Len(t, left, 1)
	assert.Equal(t, int64(2), left[0].ID)

	saves := p.saves
	require.NoError(t, lib.RemoveArticle(99, f.ID))
	require.NoError(t, lib.RemoveArticle(2, "other"))
	assert.Equal(t, saves, p.saves)
}

func TestCreateFolder_DuplicateNamesAllowed(t *testing.T) {
	lib, _ := newTestLibrary(t)
	a, err := lib.CreateFolder("Reading")
	require.NoError(t, err)
	b, err := lib.CreateFolder("Reading")
	require.NoError(t, err)

	assert.NotEqual(t, a.ID, b.ID)
	assert.Len(t, lib.Folders(), 2)
	assert.Equal(t, time.Date(2025, 4, 1, 10, 0, 0, 0, time.UTC), a.Created)

	_, err = lib.CreateFolder("")
	assert.ErrorIs(t, err, ErrEmptyName)
}

func TestCreateFolderAndSave(t *testing.T) {
	lib, _ := newTestLibrary(t)
	f, err := lib.CreateFolderAndSave("New", article(5))
	require.NoError(t, err)

	arts, err := lib.FolderArticles(f.ID)
	require.NoError(t, err)
	assert.Len(t, arts, 1)
}

func TestSaveArticleToFolder_RequiresID(t *testing.T) {
	lib, p := newTestLibrary(t)
	f, err := lib.CreateFolder("Inbox")
	require.NoError(t, err)
	saves := p.saves

	untitled := newsapi.Article{Title: "No id", URL: "https://example.com/a"}
	added, err := lib.SaveArticleToFolder(untitled, f.ID)
	assert.False(t, added)
	assert.ErrorIs(t, err, ErrNoArticleID)

	untitled.Title = "Another without id"
	_, err = lib.SaveArticleToFolder(untitled, f.ID)
	assert.ErrorIs(t, err, ErrNoArticleID)

	arts, err := lib.FolderArticles(f.ID)
	require.NoError(t, err)
	assert.Empty(t, arts)
	assert.Equal(t, saves, p.saves, "nothing is written")

	_, err = lib.CreateFolderAndSave("Fresh", untitled)
	assert.ErrorIs(t, err, ErrNoArticleID)
	assert.Len(t, lib.Folders(), 1, "no folder is created for a refused article")
}

func TestPersistenceFailureKeepsMemory(t *testing.T) {
	lib, p := newTestLibrary(t)
	p.err = errors.New("disk full")

	f, err := lib.CreateFolder("Unsaved")
	var perr *PersistenceError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, "create folder", perr.Op)

	_, lookupErr := lib.Folder(f.ID)
	assert.NoError(t, lookupErr, "in-memory state keeps the mutation")
	assert.Equal(t, 0, p.saves)
}

func TestSettings(t *testing.T) {
	lib, p := newTestLibrary(t)

	assert.Error(t, lib.SetAPIKey("  "))
	require.NoError(t, lib.SetAPIKey(" abc "))
	assert.Equal(t, "abc", lib.APIKey())

	require.NoError(t, lib.SetPreferences(storage.Preferences{DefaultCountry: "DE"}))
	prefs := lib.Preferences()
	assert.Equal(t, "de", prefs.DefaultCountry)
	assert.Equal(t, "en", prefs.DefaultLanguage)
	assert.Equal(t, "de", p.last.Preferences.DefaultCountry)
}

func TestReplace(t *testing.T) {
	lib, _ := newTestLibrary(t)
	_, _ = lib.CreateFolder("old")

	doc := storage.DefaultSettings()
	doc.Folders = []storage.Folder{{ID: "x", Name: "imported"}}
	rec := &recorder{}
	lib.AddListener(rec)

	require.NoError(t, lib.Replace(doc))
	folders := lib.Folders()
	require.Len(t, folders, 1)
	assert.Equal(t, "imported", folders[0].Name)
	assert.Equal(t, Replaced, rec.changes[0].Kind)
}

func TestLibrary_WithStore(t *testing.T) {
	store, err := storage.NewStore(filepath.Join(t.TempDir(), "lib.db"))
	require.NoError(t, err)
	defer store.Close()

	doc, err := store.Load()
	require.NoError(t, err)
	lib := New(doc, store)

	f, err := lib.CreateFolder("Persisted")
	require.NoError(t, err)
	_, err = lib.SaveArticleToFolder(article(3), f.ID)
	require.NoError(t, err)

	reloaded, err := store.Load()
	require.NoError(t, err)
	require.Len(t, reloaded.Folders, 1)
	assert.Len(t, reloaded.SavedNews[f.ID], 1)
}

func TestSuggestSearchName(t *testing.T) {
	tests := []struct {
		c    browse.Criteria
		want string
	}{
		{browse.Criteria{Text: "mars rover", Country: "us"}, "mars rover"},
		{browse.Criteria{Language: "en", Country: "gb", Category: "sports"}, "English • United Kingdom • sports"},
		{browse.Criteria{Country: "de"}, "Germany"},
		{browse.Criteria{EarliestDate: "2025-01-01"}, "Untitled Search"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, SuggestSearchName(tt.c))
	}
}

func TestChangeKindString(t *testing.T) {
	assert.Equal(t, "article-saved", ArticleSaved.String())
	assert.Equal(t, "unknown", ChangeKind(99).String())
}
