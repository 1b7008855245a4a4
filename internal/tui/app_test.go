package tui

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pders01/newsroom/internal/browse"
	"github.com/pders01/newsroom/internal/config"
	"github.com/pders01/newsroom/internal/library"
	"github.com/pders01/newsroom/internal/newsapi"
	"github.com/pders01/newsroom/internal/services"
)

func newTestApp(t *testing.T, handler http.HandlerFunc) *App {
	t.Helper()
	if handler == nil {
		handler = http.NotFound
	}
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	cfg := config.TestConfig()
	cfg.API.BaseURL = srv.URL
	cfg.API.Key = "test-key"
	cfg.Database.Path = filepath.Join(t.TempDir(), "newsroom.db")

	svc, err := services.Open(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = svc.Close() })

	app := NewApp(svc)
	app.now = func() time.Time { return time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC) }
	app.resize(100, 40)
	press(app, app.loadDataset()())
	return app
}

func keyRune(r string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(r)}
}

func press(a *App, msg tea.Msg) tea.Cmd {
	_, cmd := a.Update(msg)
	return cmd
}

func TestViewStateTransitions(t *testing.T) {
	tests := []struct {
		name         string
		initialView  View
		msg          tea.KeyMsg
		expectedView View
		setupFunc    func(*App)
	}{
		{
			name:         "Home to SearchForm on Enter",
			initialView:  ViewHome,
			msg:          tea.KeyMsg{Type: tea.KeyEnter},
			expectedView: ViewSearchForm,
		},
		{
			name:         "Home to Folders on ctrl+f",
			initialView:  ViewHome,
			msg:          tea.KeyMsg{Type: tea.KeyCtrlF},
			expectedView: ViewFolders,
		},
		{
			name:         "Folders to Input on ctrl+n",
			initialView:  ViewFolders,
			msg:          tea.KeyMsg{Type: tea.KeyCtrlN},
			expectedView: ViewInput,
		},
		{
			name:         "Home to FrontPageForm on ctrl+p",
			initialView:  ViewHome,
			msg:          tea.KeyMsg{Type: tea.KeyCtrlP},
			expectedView: ViewFrontPageForm,
		},
		{
			name:         "Home to Find on ctrl+g",
			initialView:  ViewHome,
			msg:          tea.KeyMsg{Type: tea.KeyCtrlG},
			expectedView: ViewFind,
		},
		{
			name:         "Results to Detail on Enter",
			initialView:  ViewResults,
			msg:          tea.KeyMsg{Type: tea.KeyEnter},
			expectedView: ViewDetail,
			setupFunc: func(a *App) {
				a.resultList.SetItems([]list.Item{articleItem{article: newsapi.Article{ID: 1, Title: "One"}}})
			},
		},
		{
			name:         "Results to FolderPicker on ctrl+b",
			initialView:  ViewResults,
			msg:          tea.KeyMsg{Type: tea.KeyCtrlB},
			expectedView: ViewFolderPicker,
			setupFunc: func(a *App) {
				a.resultList.SetItems([]list.Item{articleItem{article: newsapi.Article{ID: 1, Title: "One"}}})
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := newTestApp(t, nil)
			app.view = tt.initialView
			if tt.setupFunc != nil {
				tt.setupFunc(app)
			}

			press(app, tt.msg)
			assert.Equal(t, tt.expectedView, app.view)
		})
	}
}

func TestNavigationBoundaries(t *testing.T) {
	app := newTestApp(t, nil)

	t.Run("escape walks back through history", func(t *testing.T) {
		press(app, tea.KeyMsg{Type: tea.KeyCtrlF})
		press(app, tea.KeyMsg{Type: tea.KeyCtrlN})
		require.Equal(t, ViewInput, app.view)

		press(app, tea.KeyMsg{Type: tea.KeyEsc})
		assert.Equal(t, ViewFolders, app.view)
		press(app, tea.KeyMsg{Type: tea.KeyEsc})
		assert.Equal(t, ViewHome, app.view)
	})

	t.Run("escape at home quits", func(t *testing.T) {
		cmd := press(app, tea.KeyMsg{Type: tea.KeyEsc})
		require.NotNil(t, cmd)
		assert.IsType(t, tea.QuitMsg{}, cmd())
		assert.Error(t, app.ctx.Err(), "quitting cancels in-flight requests")
	})
}

func searchHandler(pages ...string) http.HandlerFunc {
	calls := 0
	return func(w http.ResponseWriter, r *http.Request) {
		body := `{"news":[]}`
		if calls < len(pages) {
			body = pages[calls]
		}
		calls++
		_, _ = w.Write([]byte(body))
	}
}

func TestSearchFunctionality(t *testing.T) {
	app := newTestApp(t, searchHandler(
		`{"news":[{"id":1,"title":"Heat wave","url":"https://example.com/1"},{"id":2,"title":"Floods","url":"https://example.com/2"}]}`,
	))

	press(app, tea.KeyMsg{Type: tea.KeyCtrlS})
	require.Equal(t, ViewSearchForm, app.view)
	app.searchForm.set(fieldText, "climate")

	press(app, tea.KeyMsg{Type: tea.KeyEnter})
	assert.Equal(t, ViewResults, app.view)
	assert.True(t, app.loading)

	press(app, app.runSearch(app.searchCriteria())())
	assert.False(t, app.loading)
	assert.Len(t, app.resultList.Items(), 2)
	assert.True(t, app.searchHasMore)
	assert.Equal(t, MsgResultsCount(2), app.status)

	press(app, app.moreResults()())
	assert.Len(t, app.resultList.Items(), 2, "empty page keeps the list")
	assert.False(t, app.searchHasMore)
	assert.Equal(t, MsgNoMoreResults, app.status)

	cur, ok := app.svc.Browse.CurrentSearch()
	require.True(t, ok)
	assert.Equal(t, 2, cur.Offset)
}

func TestLeavingResultsEndsSearch(t *testing.T) {
	app := newTestApp(t, searchHandler(
		`{"news":[{"id":1,"title":"Heat wave","url":"https://example.com/1"}]}`,
	))

	press(app, tea.KeyMsg{Type: tea.KeyCtrlS})
	app.searchForm.set(fieldText, "climate")
	press(app, tea.KeyMsg{Type: tea.KeyEnter})
	press(app, app.runSearch(app.searchCriteria())())
	require.Len(t, app.resultList.Items(), 1)
	more := app.moreResults()

	press(app, tea.KeyMsg{Type: tea.KeyEsc})
	assert.Equal(t, ViewSearchForm, app.view)
	assert.Empty(t, app.resultList.Items())
	assert.False(t, app.searchHasMore)
	_, ok := app.svc.Browse.CurrentSearch()
	assert.False(t, ok)

	// a load-more issued before leaving no longer has a search to extend
	press(app, more())
	assert.Empty(t, app.resultList.Items())
}

func TestSearchRequiresCriteria(t *testing.T) {
	app := newTestApp(t, nil)
	press(app, tea.KeyMsg{Type: tea.KeyCtrlS})
	for i := range app.searchForm.inputs {
		app.searchForm.set(i, "")
	}

	cmd := press(app, tea.KeyMsg{Type: tea.KeyEnter})
	assert.NotNil(t, cmd)
	assert.Equal(t, ViewSearchForm, app.view)
	assert.Equal(t, browse.ErrNoCriteria.Msg, app.status)
}

func TestSearchFormPreset(t *testing.T) {
	app := newTestApp(t, nil)
	app.searchForm.set(fieldText, "x")
	app.searchForm.set(fieldEarliest, browse.PresetWeek)

	want, ok := browse.ResolvePreset(browse.PresetWeek, app.now())
	require.True(t, ok)
	c := app.searchCriteria()
	assert.Equal(t, want, c.EarliestDate)
	assert.NoError(t, c.Validate())
}

func TestSaveArticleToNewFolder(t *testing.T) {
	app := newTestApp(t, nil)
	app.view = ViewResults
	app.resultList.SetItems([]list.Item{articleItem{article: newsapi.Article{ID: 7, Title: "Seven", URL: "https://example.com/7"}}})

	press(app, tea.KeyMsg{Type: tea.KeyCtrlB})
	require.Equal(t, ViewFolderPicker, app.view)
	require.Len(t, app.pickerList.Items(), 1)
	assert.IsType(t, newFolderItem{}, app.pickerList.Items()[0])

	press(app, tea.KeyMsg{Type: tea.KeyEnter})
	require.Equal(t, ViewInput, app.view)
	assert.Equal(t, inputNewFolderAndSave, app.inputFor)

	app.textInput.SetValue("Reading")
	cmd := press(app, tea.KeyMsg{Type: tea.KeyEnter})
	assert.Equal(t, ViewResults, app.view, "picker and prompt are both closed")
	require.NotNil(t, cmd)

	press(app, cmd())
	folders := app.svc.Library.Folders()
	require.Len(t, folders, 1)
	assert.Equal(t, "Reading", folders[0].Name)
	assert.True(t, app.svc.Library.IsSaved(7))

	item := app.resultList.Items()[0].(articleItem)
	assert.True(t, item.saved)
	assert.True(t, strings.HasPrefix(app.status, MsgSaved))
}

func TestSaveArticleToExistingFolder(t *testing.T) {
	app := newTestApp(t, nil)
	f, err := app.svc.Library.CreateFolder("Later")
	require.NoError(t, err)

	app.view = ViewTopNews
	art := newsapi.Article{ID: 3, Title: "Three"}
	app.topList.SetItems([]list.Item{clusterItem{
		articleItem: articleItem{article: art},
		cluster:     newsapi.Cluster{Articles: []newsapi.Article{art}},
	}})

	press(app, tea.KeyMsg{Type: tea.KeyCtrlB})
	require.Equal(t, ViewFolderPicker, app.view)
	cmd := press(app, tea.KeyMsg{Type: tea.KeyEnter})
	assert.Equal(t, ViewTopNews, app.view)
	require.NotNil(t, cmd)
	press(app, cmd())

	saved, err := app.svc.Library.FolderArticles(f.ID)
	require.NoError(t, err)
	require.Len(t, saved, 1)
	assert.Equal(t, int64(3), saved[0].ID)

	press(app, tea.KeyMsg{Type: tea.KeyCtrlB})
	cmd = press(app, tea.KeyMsg{Type: tea.KeyEnter})
	press(app, cmd())
	assert.Equal(t, MsgAlreadySaved, app.status)
}

func TestDeleteFolderConfirm(t *testing.T) {
	app := newTestApp(t, nil)
	_, err := app.svc.Library.CreateFolder("Old")
	require.NoError(t, err)

	press(app, tea.KeyMsg{Type: tea.KeyCtrlF})
	press(app, tea.KeyMsg{Type: tea.KeyCtrlX})
	require.Equal(t, ViewConfirm, app.view)
	require.NotNil(t, app.confirm)
	assert.Equal(t, "Old", app.confirm.subject)

	press(app, keyRune("n"))
	assert.Equal(t, ViewFolders, app.view)
	assert.Nil(t, app.confirm)
	assert.Len(t, app.svc.Library.Folders(), 1)

	press(app, tea.KeyMsg{Type: tea.KeyCtrlX})
	cmd := press(app, tea.KeyMsg{Type: tea.KeyEnter})
	assert.Equal(t, ViewFolders, app.view)
	require.NotNil(t, cmd)
	press(app, cmd())

	assert.Empty(t, app.svc.Library.Folders())
	assert.Empty(t, app.folderList.Items())
	assert.Equal(t, MsgFolderDeleted, app.status)
}

func TestFrontPageFormRequiresCountry(t *testing.T) {
	app := newTestApp(t, nil)
	press(app, tea.KeyMsg{Type: tea.KeyCtrlP})
	require.Equal(t, ViewFrontPageForm, app.view)

	app.frontForm.set(fieldFPCountry, "")
	app.syncFrontPageFilters()
	assert.False(t, app.filters.FetchEnabled)
	assert.False(t, app.filters.SourceEnabled)

	press(app, tea.KeyMsg{Type: tea.KeyEnter})
	assert.Equal(t, ViewFrontPageForm, app.view)
	assert.Equal(t, MsgSelectCountry, app.status)
}

func TestFrontBatchApplied(t *testing.T) {
	app := newTestApp(t, nil)
	app.view = ViewFrontPages

	press(app, frontBatchMsg{batch: browse.Batch{
		Pages:    []browse.FrontPage{{URL: "https://img.example/a.jpg", SourceName: "Unknown Source", Country: "de", Date: "2025-03-10"}},
		Fallback: true,
	}})
	assert.Len(t, app.frontList.Items(), 1)
	assert.Equal(t, MsgFallbackFront, app.status)
	assert.True(t, app.frontHasMore)

	press(app, frontBatchMsg{batch: browse.Batch{Append: true, Exhausted: true}})
	assert.Len(t, app.frontList.Items(), 1)
	assert.False(t, app.frontHasMore)
	assert.Contains(t, app.status, MsgAllFrontsTried)
}

func TestSupersededResultsAreQuiet(t *testing.T) {
	app := newTestApp(t, nil)
	app.status = ""
	press(app, searchPageMsg{err: browse.ErrSuperseded})
	assert.Empty(t, app.status)
}

func TestSaveSearchSuggestsName(t *testing.T) {
	app := newTestApp(t, searchHandler(`{"news":[{"id":1,"title":"A","url":"https://example.com/a"}]}`))
	app.searchForm.set(fieldText, "")
	app.searchForm.set(fieldLanguage, "de")
	app.searchForm.set(fieldCountry, "")
	c := app.searchCriteria()
	app.view = ViewResults
	press(app, app.runSearch(c)())

	press(app, tea.KeyMsg{Type: tea.KeyCtrlW})
	require.Equal(t, ViewInput, app.view)
	assert.Equal(t, inputSaveSearch, app.inputFor)
	assert.Equal(t, library.SuggestSearchName(c), app.textInput.Value())

	cmd := press(app, tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	press(app, cmd())

	searches := app.svc.Library.SavedSearches()
	require.Len(t, searches, 1)
	assert.Equal(t, "de", searches[0].Language)
	assert.Len(t, app.searchesList.Items(), 1)
}

func TestPersistenceErrorKeepsChange(t *testing.T) {
	app := newTestApp(t, nil)
	perr := &library.PersistenceError{Op: "save folder", Err: errors.New("disk full")}
	press(app, libraryChangedMsg{text: MsgFolderCreated, err: perr})
	assert.Equal(t, StatusError, app.statusKind)
	assert.Contains(t, app.status, "Saved in this session only")
}

func TestSettingsSetAPIKey(t *testing.T) {
	app := newTestApp(t, nil)
	app.view = ViewHome
	app.menu.Select(len(homeMenu()) - 1)
	press(app, tea.KeyMsg{Type: tea.KeyEnter})
	require.Equal(t, ViewSettings, app.view)

	press(app, keyRune("k"))
	require.Equal(t, ViewInput, app.view)
	assert.Equal(t, inputAPIKey, app.inputFor)

	app.textInput.SetValue("  abc123  ")
	cmd := press(app, tea.KeyMsg{Type: tea.KeyEnter})
	assert.Equal(t, ViewSettings, app.view)
	press(app, cmd())

	assert.Equal(t, "abc123", app.svc.Library.APIKey())
	assert.Equal(t, MsgSettingsSaved, app.status)
}

func TestStatusClearsAfterTick(t *testing.T) {
	app := newTestApp(t, nil)
	app.flash("hello", StatusInfo)
	seq := app.statusSeq

	press(app, statusClearMsg{seq: seq - 1})
	assert.Equal(t, "hello", app.status, "stale clear is ignored")

	press(app, statusClearMsg{seq: seq})
	assert.Empty(t, app.status)
}

func TestViewRendersEveryView(t *testing.T) {
	app := newTestApp(t, nil)
	app.confirm = &confirmation{title: "Delete?", subject: "x"}
	for v := ViewHome; v <= ViewSettings; v++ {
		app.view = v
		assert.NotPanics(t, func() { _ = app.View() }, "view %d", v)
	}
}
