package storage

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func setupTestStore(t *testing.T) (*Store, string) {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	store, err := NewStore(dbPath)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { store.Close() })
	return store, dbPath
}

func sampleSettings() *Settings {
	s := DefaultSettings()
	s.APIKey = "secret"
	s.Folders = []Folder{
		{ID: "f1", Name: "Reading", Created: time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)},
	}
	s.SavedNews["f1"] = []SavedArticle{
		{ID: 42, Title: "Hello", URL: "https://example.com/42", FolderID: "f1"},
	}
	s.SavedSearches = []SavedSearch{{ID: "s1", Name: "Tech", Text: "tech"}}
	return s
}

func TestStore_LoadEmptyReturnsDefaults(t *testing.T) {
	store, _ := setupTestStore(t)

	settings, err := store.Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if settings.Preferences.DefaultCountry != "us" || settings.Preferences.DefaultLanguage != "en" {
		t.Errorf("unexpected default preferences: %+v", settings.Preferences)
	}
	if settings.Preferences.Theme != "light" {
		t.Errorf("Theme = %q, want light", settings.Preferences.Theme)
	}
	if settings.SavedNews == nil || settings.Folders == nil || settings.SavedSearches == nil {
		t.Error("collections should be non-nil")
	}

	ts, err := store.LastSaved()
	if err != nil {
		t.Fatal(err)
	}
	if !ts.IsZero() {
		t.Errorf("LastSaved() = %v, want zero", ts)
	}
}

func TestStore_SaveAndLoad(t *testing.T) {
	store, dbPath := setupTestStore(t)

	if err := store.Save(sampleSettings()); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatal(err)
	}

	reopened, err := NewStore(dbPath)
	if err != nil {
		t.Fatal(err)
	}
	defer reopened.Close()

	loaded, err := reopened.Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if loaded.APIKey != "secret" {
		t.Errorf("APIKey = %q", loaded.APIKey)
	}
	if len(loaded.Folders) != 1 || loaded.Folders[0].Name != "Reading" {
		t.Errorf("Folders = %+v", loaded.Folders)
	}
	if got := loaded.SavedNews["f1"]; len(got) != 1 || got[0].ID != 42 {
		t.Errorf("SavedNews[f1] = %+v", got)
	}
	if len(loaded.SavedSearches) != 1 || loaded.SavedSearches[0].Name != "Tech" {
		t.Errorf("SavedSearches = %+v", loaded.SavedSearches)
	}

	ts, err := reopened.LastSaved()
	if err != nil {
		t.Fatal(err)
	}
	if ts.IsZero() {
		t.Error("LastSaved() should be set after Save")
	}
}

func TestStore_SaveReplacesWholeDocument(t *testing.T) {
	store, _ := setupTestStore(t)

	if err := store.Save(sampleSettings()); err != nil {
		t.Fatal(err)
	}
	if err := store.Save(DefaultSettings()); err != nil {
		t.Fatal(err)
	}

	loaded, err := store.Load()
	if err != nil {
		t.Fatal(err)
	}
	if len(loaded.Folders) != 0 || len(loaded.SavedNews) != 0 || loaded.APIKey != "" {
		t.Errorf("expected empty document, got %+v", loaded)
	}
}

func TestSettings_NormalizeDropsOrphanBuckets(t *testing.T) {
	s := sampleSettings()
	s.SavedNews["gone"] = []SavedArticle{{ID: 1}}

	s.Normalize()

	if _, ok := s.SavedNews["gone"]; ok {
		t.Error("bucket without folder should be dropped")
	}
	if _, ok := s.SavedNews["f1"]; !ok {
		t.Error("bucket of existing folder should be kept")
	}
}

func TestSettings_CloneIsDeep(t *testing.T) {
	s := sampleSettings()
	c := s.Clone()

	c.Folders[0].Name = "changed"
	c.SavedNews["f1"][0].Title = "changed"
	c.SavedSearches = append(c.SavedSearches, SavedSearch{ID: "s2"})

	if s.Folders[0].Name != "Reading" || s.SavedNews["f1"][0].Title != "Hello" || len(s.SavedSearches) != 1 {
		t.Error("mutating the clone changed the original")
	}
}

func TestExportImport(t *testing.T) {
	var buf bytes.Buffer
	if err := Export(&buf, sampleSettings()); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), `"savedNews"`) || !strings.Contains(buf.String(), `"defaultCountry": "us"`) {
		t.Errorf("unexpected export:\n%s", buf.String())
	}

	imported, err := Import(&buf)
	if err != nil {
		t.Fatalf("Import() error = %v", err)
	}
	if imported.SavedNews["f1"][0].URL != "https://example.com/42" {
		t.Errorf("SavedNews lost in round trip: %+v", imported.SavedNews)
	}
}

func TestImport_SettingsJSONShape(t *testing.T) {
	doc := `{
  "apiKey": "k",
  "savedSearches": [{"id": "1700000000000", "name": "AI", "text": "ai", "created": "2024-11-14T22:13:20.000Z"}],
  "folders": [{"id": "1700000000001", "name": "Later", "created": "2024-11-14T22:13:21.000Z"}],
  "savedNews": {
    "1700000000001": [{"id": 99, "title": "t", "summary": "s", "url": "https://x", "image": "", "savedAt": "2024-11-14T22:14:00.000Z", "folderId": "1700000000001"}],
    "orphan": [{"id": 1}]
  },
  "preferences": {"defaultCountry": "de"}
}`

	s, err := Import(strings.NewReader(doc))
	if err != nil {
		t.Fatalf("Import() error = %v", err)
	}
	if s.Preferences.DefaultCountry != "de" || s.Preferences.DefaultLanguage != "en" {
		t.Errorf("Preferences = %+v", s.Preferences)
	}
	if len(s.SavedNews) != 1 {
		t.Errorf("orphan bucket should be dropped, got %v", s.SavedNews)
	}
	if s.SavedSearches[0].Created.Year() != 2024 {
		t.Errorf("Created = %v", s.SavedSearches[0].Created)
	}
}

func TestImport_Rejects(t *testing.T) {
	if _, err := Import(strings.NewReader("not json")); err == nil {
		t.Error("expected decode error")
	}
	if _, err := Import(strings.NewReader(`{"folders":[{"name":"x"}]}`)); err == nil {
		t.Error("expected error for folder without id")
	}
}

func TestExportImportFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "library.json")
	if err := ExportFile(path, sampleSettings()); err != nil {
		t.Fatal(err)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if info.Mode().Perm() != 0o600 {
		t.Errorf("export file mode = %v, want 0600", info.Mode().Perm())
	}

	s, err := ImportFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if s.APIKey != "secret" {
		t.Errorf("APIKey = %q", s.APIKey)
	}

	if _, err := ImportFile(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Error("expected error for missing file")
	}
}
