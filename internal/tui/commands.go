package tui

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/pders01/newsroom/internal/browse"
	"github.com/pders01/newsroom/internal/debuglog"
	"github.com/pders01/newsroom/internal/library"
	"github.com/pders01/newsroom/internal/newsapi"
	"github.com/pders01/newsroom/internal/refdata"
	"github.com/pders01/newsroom/internal/storage"
)

type datasetLoadedMsg struct {
	dataset refdata.Dataset
	err     error
}

type searchPageMsg struct {
	page browse.Page
	err  error
}

type topNewsMsg struct {
	country  string
	clusters []newsapi.Cluster
	err      error
}

type frontBatchMsg struct {
	batch     browse.Batch
	remaining int
	err       error
}

// libraryChangedMsg follows any library mutation. text is the success
// message; err may be a PersistenceError, in which case the change is live.
type libraryChangedMsg struct {
	text string
	err  error
}

type savedSearchRunMsg struct {
	criteria browse.Criteria
}

type detailRenderedMsg struct {
	content string
}

type findDebounceMsg struct {
	seq int
}

type findResultsMsg struct {
	seq   int
	items []findResultItem
	err   error
}

type infoMsg struct {
	text string
}

type errorMsg struct {
	err error
}

func (a *App) loadDataset() tea.Cmd {
	return func() tea.Msg {
		ds, err := a.svc.Sources.Load()
		if err != nil {
			debuglog.Warnf("reference data unavailable: %v", err)
		}
		return datasetLoadedMsg{dataset: ds, err: err}
	}
}

func (a *App) runSearch(c browse.Criteria) tea.Cmd {
	ctx := a.ctx
	return func() tea.Msg {
		page, err := a.svc.Browse.Search(ctx, c)
		return searchPageMsg{page: page, err: err}
	}
}

func (a *App) moreResults() tea.Cmd {
	ctx := a.ctx
	return func() tea.Msg {
		page, err := a.svc.Browse.MoreResults(ctx)
		return searchPageMsg{page: page, err: err}
	}
}

func (a *App) loadTopNews(country, language string) tea.Cmd {
	ctx := a.ctx
	count := a.config.Browse.TopNewsCount
	return func() tea.Msg {
		clusters, err := browse.LoadTopNews(ctx, a.svc.Client, country, language, count)
		return topNewsMsg{country: country, clusters: clusters, err: err}
	}
}

func (a *App) startFrontPages(country, source, date string) tea.Cmd {
	ctx := a.ctx
	ds := a.dataset
	return func() tea.Msg {
		batch, err := a.svc.Browse.StartFrontPages(ctx, ds, country, date, source)
		return frontBatchMsg{batch: batch, remaining: a.frontRemaining(), err: err}
	}
}

func (a *App) moreFrontPages() tea.Cmd {
	ctx := a.ctx
	return func() tea.Msg {
		batch, err := a.svc.Browse.MoreFrontPages(ctx)
		return frontBatchMsg{batch: batch, remaining: a.frontRemaining(), err: err}
	}
}

func (a *App) frontRemaining() int {
	fs, ok := a.svc.Browse.CurrentFrontPages()
	if !ok {
		return 0
	}
	return fs.Remaining()
}

func (a *App) saveArticle(art newsapi.Article, folderID string) tea.Cmd {
	return func() tea.Msg {
		added, err := a.svc.Library.SaveArticleToFolder(art, folderID)
		if err != nil && !isPersistence(err) {
			return errorMsg{err: wrapErr("saving article", err)}
		}
		text := MsgSaved
		if !added {
			text = MsgAlreadySaved
		}
		return libraryChangedMsg{text: text, err: err}
	}
}

func (a *App) createFolder(name string) tea.Cmd {
	return func() tea.Msg {
		_, err := a.svc.Library.CreateFolder(name)
		if err != nil && !isPersistence(err) {
			return errorMsg{err: err}
		}
		return libraryChangedMsg{text: MsgFolderCreated, err: err}
	}
}

func (a *App) createFolderAndSave(name string, art newsapi.Article) tea.Cmd {
	return func() tea.Msg {
		f, err := a.svc.Library.CreateFolderAndSave(name, art)
		if err != nil && !isPersistence(err) {
			return errorMsg{err: err}
		}
		return libraryChangedMsg{text: MsgSaved + " to " + f.Name, err: err}
	}
}

func (a *App) removeArticle(articleID int64, folderID string) tea.Cmd {
	return func() tea.Msg {
		err := a.svc.Library.RemoveArticle(articleID, folderID)
		if err != nil && !isPersistence(err) {
			return errorMsg{err: err}
		}
		return libraryChangedMsg{text: MsgRemoved, err: err}
	}
}

func (a *App) deleteFolder(folderID string) tea.Cmd {
	return func() tea.Msg {
		err := a.svc.Library.DeleteFolder(folderID)
		if err != nil && !isPersistence(err) {
			return errorMsg{err: err}
		}
		return libraryChangedMsg{text: MsgFolderDeleted, err: err}
	}
}

func (a *App) saveSearch(c browse.Criteria, name string) tea.Cmd {
	return func() tea.Msg {
		s, err := a.svc.Library.SaveSearch(c, name)
		if err != nil && !isPersistence(err) {
			return errorMsg{err: err}
		}
		return libraryChangedMsg{text: fmt.Sprintf("%s as %q", MsgSearchSaved, s.Name), err: err}
	}
}

func (a *App) deleteSavedSearch(id string) tea.Cmd {
	return func() tea.Msg {
		err := a.svc.Library.DeleteSavedSearch(id)
		if err != nil && !isPersistence(err) {
			return errorMsg{err: err}
		}
		return libraryChangedMsg{text: MsgSearchDeleted, err: err}
	}
}

func (a *App) runSavedSearch(s storage.SavedSearch) tea.Cmd {
	return func() tea.Msg {
		return savedSearchRunMsg{criteria: library.CriteriaOf(s)}
	}
}

func (a *App) setAPIKey(key string) tea.Cmd {
	return func() tea.Msg {
		err := a.svc.Library.SetAPIKey(strings.TrimSpace(key))
		if err != nil && !isPersistence(err) {
			return errorMsg{err: err}
		}
		return libraryChangedMsg{text: MsgSettingsSaved, err: err}
	}
}

func (a *App) setPreferences(p storage.Preferences) tea.Cmd {
	return func() tea.Msg {
		err := a.svc.Library.SetPreferences(p)
		if err != nil && !isPersistence(err) {
			return errorMsg{err: err}
		}
		return libraryChangedMsg{text: MsgSettingsSaved, err: err}
	}
}

func (a *App) findInLibrary(query string, seq int) tea.Cmd {
	query = strings.TrimSpace(query)
	return func() tea.Msg {
		if query == "" {
			return findResultsMsg{seq: seq}
		}
		results, err := a.svc.Index.Search(query, 50)
		if err != nil {
			return findResultsMsg{seq: seq, err: err}
		}
		items := make([]findResultItem, 0, len(results))
		for _, r := range results {
			name := r.Article.FolderID
			if f, err := a.svc.Library.Folder(r.Article.FolderID); err == nil {
				name = f.Name
			}
			items = append(items, findResultItem{result: r, folder: name})
		}
		return findResultsMsg{seq: seq, items: items}
	}
}

func (a *App) scheduleFind() tea.Cmd {
	a.findSeq++
	seq := a.findSeq
	return tea.Tick(a.findDebounce, func(time.Time) tea.Msg {
		return findDebounceMsg{seq: seq}
	})
}

func (a *App) openLink(link string, image bool) tea.Cmd {
	return func() tea.Msg {
		if link == "" {
			return errorMsg{err: errors.New("nothing to open")}
		}
		var err error
		if image {
			err = a.svc.Launcher.OpenImage(link)
		} else {
			err = a.svc.Launcher.OpenArticle(link)
		}
		if err != nil {
			return errorMsg{err: wrapErr("opening link", err)}
		}
		return infoMsg{text: "Opened " + truncateMiddle(link, 50)}
	}
}

func (a *App) copyLink(link string) tea.Cmd {
	return func() tea.Msg {
		if link == "" {
			return errorMsg{err: errors.New("nothing to copy")}
		}
		if err := clipboard.WriteAll(link); err != nil {
			return errorMsg{err: wrapErr("copying link", err)}
		}
		return infoMsg{text: MsgCopied}
	}
}

// renderArticle renders an article and any other articles of its story
// cluster as markdown.
func (a *App) renderArticle(art newsapi.Article, others []newsapi.Article) tea.Cmd {
	return func() tea.Msg {
		var content strings.Builder
		title := art.Title
		if title == "" {
			title = "(untitled)"
		}
		content.WriteString(fmt.Sprintf("# %s\n\n", title))

		var meta []string
		if art.PublishDate != "" {
			meta = append(meta, art.PublishDate)
		}
		if len(art.Authors) > 0 {
			meta = append(meta, strings.Join(art.Authors, ", "))
		}
		if art.SourceCountry != "" {
			meta = append(meta, refdata.CountryName(art.SourceCountry))
		}
		if art.Language != "" {
			meta = append(meta, refdata.LanguageName(art.Language))
		}
		if art.Category != "" {
			meta = append(meta, art.Category)
		}
		if len(meta) > 0 {
			content.WriteString("*" + strings.Join(meta, " • ") + "*\n\n")
		}
		if art.URL != "" {
			content.WriteString(fmt.Sprintf("[Read Online](%s)\n\n", art.URL))
		}
		if art.Image != "" {
			content.WriteString(fmt.Sprintf("**Image:** %s\n\n", art.Image))
		}
		content.WriteString("---\n\n")

		if body := articleBody(art); body != "" {
			content.WriteString(body)
			content.WriteString("\n\n")
		} else {
			content.WriteString("_No text available._\n\n")
		}

		if len(others) > 0 {
			content.WriteString("## Also covering this story\n\n")
			for _, o := range others {
				content.WriteString(fmt.Sprintf("- [%s](%s)\n", o.Title, o.URL))
			}
		}

		r, err := a.getRenderer()
		if err != nil {
			return detailRenderedMsg{content: "Error initializing renderer: " + err.Error()}
		}
		rendered, err := r.Render(content.String())
		if err != nil {
			return detailRenderedMsg{content: fmt.Sprintf("# Error\n\nFailed to render article: %s\n\nPress Escape to go back.", err.Error())}
		}
		return detailRenderedMsg{content: rendered}
	}
}

func articleBody(a newsapi.Article) string {
	if a.Text != "" {
		return a.Text
	}
	return a.Summary
}

// savedAsArticle rebuilds the article shape from a saved snapshot.
func savedAsArticle(s storage.SavedArticle) newsapi.Article {
	return newsapi.Article{
		ID:      s.ID,
		Title:   s.Title,
		Summary: s.Summary,
		URL:     s.URL,
		Image:   s.Image,
	}
}

func isPersistence(err error) bool {
	var perr *library.PersistenceError
	return errors.As(err, &perr)
}
