// Package services builds the long-lived collaborators shared by the TUI and
// the command line.
package services

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pders01/newsroom/internal/browse"
	"github.com/pders01/newsroom/internal/config"
	"github.com/pders01/newsroom/internal/debuglog"
	"github.com/pders01/newsroom/internal/library"
	"github.com/pders01/newsroom/internal/media"
	"github.com/pders01/newsroom/internal/newsapi"
	"github.com/pders01/newsroom/internal/refdata"
	"github.com/pders01/newsroom/internal/search"
	"github.com/pders01/newsroom/internal/storage"
)

// Services holds one instance of each component for the life of the process.
type Services struct {
	Config   *config.Config
	Store    *storage.Store
	Library  *library.Library
	Index    *search.BleveIndex
	Sources  *refdata.Loader
	Client   *newsapi.Client
	Browse   *browse.Session
	Launcher *media.Launcher
}

// Open opens the settings store and search index and wires the rest around
// them. Callers must Close the result.
func Open(cfg *config.Config) (*Services, error) {
	if err := os.MkdirAll(filepath.Dir(cfg.Database.Path), 0o755); err != nil {
		return nil, fmt.Errorf("creating database directory: %w", err)
	}
	store, err := storage.NewStoreWithTimeout(cfg.Database.Path, cfg.Database.Timeout)
	if err != nil {
		return nil, err
	}

	doc, err := store.Load()
	if err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("loading settings: %w", err)
	}

	lib := library.New(doc, store)

	idx, err := search.NewBleveIndex(cfg.Database.SearchIndex, lib.Snapshot)
	if err != nil {
		_ = store.Close()
		return nil, err
	}
	lib.AddListener(idx)

	s := &Services{
		Config:   cfg,
		Store:    store,
		Library:  lib,
		Index:    idx,
		Sources:  refdata.NewLoader(cfg.Browse.SourcesFile),
		Client:   newsapi.NewClient(cfg, lib.APIKey()),
		Launcher: media.NewLauncher(cfg),
	}
	s.Browse = NewBrowseSession(cfg, s.Client)
	lib.AddListener(s)

	debuglog.WithFields(map[string]interface{}{
		"db":      cfg.Database.Path,
		"folders": len(doc.Folders),
		"saved":   lib.SavedArticleCount(),
	}).Infof("services ready")
	return s, nil
}

// NewBrowseSession builds the paginator and batcher from the browse limits.
func NewBrowseSession(cfg *config.Config, client *newsapi.Client) *browse.Session {
	paginator := browse.NewPaginator(client, cfg.Browse.PageSize)
	batcher := browse.NewBatcher(client,
		browse.WithTarget(cfg.Browse.FrontPageTarget),
		browse.WithConcurrency(cfg.Browse.FrontPageConcurrency),
	)
	return browse.NewSession(paginator, batcher)
}

// OnLibraryChanged pushes a changed stored API key into the client unless
// the config file pins one.
func (s *Services) OnLibraryChanged(c library.Change) {
	if c.Kind != library.SettingsChanged && c.Kind != library.Replaced {
		return
	}
	if strings.TrimSpace(s.Config.API.Key) != "" {
		return
	}
	s.Client.SetAPIKey(s.Library.APIKey())
}

// Dataset returns the reference listing. A load failure is logged and an
// empty listing returned, so callers can keep going with no countries.
func (s *Services) Dataset() refdata.Dataset {
	ds, err := s.Sources.Load()
	if err != nil {
		debuglog.Warnf("reference data unavailable: %v", err)
	}
	return ds
}

// DefaultCountry is the preference used to prefill country filters.
func (s *Services) DefaultCountry() string {
	return s.Library.Preferences().DefaultCountry
}

// DefaultLanguage is the preference used to prefill language filters.
func (s *Services) DefaultLanguage() string {
	return s.Library.Preferences().DefaultLanguage
}

// Close releases the index and the database.
func (s *Services) Close() error {
	var errs []error
	if s.Index != nil {
		errs = append(errs, s.Index.Close())
	}
	if s.Store != nil {
		errs = append(errs, s.Store.Close())
	}
	return errors.Join(errs...)
}
