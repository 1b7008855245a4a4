package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/pders01/newsroom/internal/browse"
	"github.com/pders01/newsroom/internal/newsapi"
	"github.com/pders01/newsroom/internal/refdata"
	"github.com/pders01/newsroom/internal/search"
	"github.com/pders01/newsroom/internal/storage"
)

type View int

const (
	ViewHome View = iota
	ViewSearchForm
	ViewResults
	ViewTopNews
	ViewFrontPageForm
	ViewFrontPages
	ViewFolders
	ViewFolderArticles
	ViewSavedSearches
	ViewFolderPicker
	ViewDetail
	ViewInput
	ViewConfirm
	ViewFind
	ViewSettings
)

type menuAction int

const (
	menuSearch menuAction = iota
	menuTopNews
	menuFrontPages
	menuSavedSearches
	menuFolders
	menuFind
	menuSettings
)

type menuItem struct {
	action menuAction
	title  string
	desc   string
}

func (i menuItem) Title() string       { return i.title }
func (i menuItem) Description() string { return i.desc }
func (i menuItem) FilterValue() string { return i.title }

func homeMenu() []menuItem {
	return []menuItem{
		{menuSearch, "Search news", "keyword search with language, country, category and date filters"},
		{menuTopNews, "Top news", "today's story clusters for your default country"},
		{menuFrontPages, "Front pages", "newspaper covers by country and date"},
		{menuSavedSearches, "Saved searches", "re-run a stored search"},
		{menuFolders, "Folders", "articles you saved"},
		{menuFind, "Find in library", "full-text search over saved articles"},
		{menuSettings, "Settings", "API key and default filters"},
	}
}

// articleItem is a search result, top-news cluster or saved article.
type articleItem struct {
	article newsapi.Article
	saved   bool
	// others is the number of further articles in the story cluster.
	others int
}

func (i articleItem) Title() string {
	title := i.article.Title
	if title == "" {
		title = "(untitled)"
	}
	if i.saved {
		return SavedItemStyle.Render("★ " + title)
	}
	return title
}

func (i articleItem) Description() string {
	var bits []string
	if d := i.article.PublishDate; d != "" {
		bits = append(bits, TimeStyle.Render(d))
	}
	if c := i.article.SourceCountry; c != "" {
		bits = append(bits, refdata.CountryName(c))
	}
	if i.others > 0 {
		bits = append(bits, fmt.Sprintf("%d more", i.others))
	}
	summary := truncateEnd(firstLine(articleSummary(i.article)), 80)
	if summary != "" {
		bits = append(bits, summary)
	}
	return lipgloss.NewStyle().Foreground(MutedColor).Render(strings.Join(bits, " • "))
}

func (i articleItem) FilterValue() string { return i.article.Title }

type clusterItem struct {
	articleItem
	cluster newsapi.Cluster
}

type frontPageItem struct {
	page browse.FrontPage
}

func (i frontPageItem) Title() string { return i.page.SourceName }

func (i frontPageItem) Description() string {
	bits := []string{i.page.Date, refdata.CountryName(i.page.Country)}
	if i.page.Language != "" {
		bits = append(bits, refdata.LanguageName(i.page.Language))
	}
	return lipgloss.NewStyle().Foreground(MutedColor).Render(strings.Join(bits, " • ") + " • " + truncateMiddle(i.page.URL, 50))
}

func (i frontPageItem) FilterValue() string { return i.page.SourceName }

type folderItem struct {
	folder storage.Folder
	count  int
}

func (i folderItem) Title() string { return i.folder.Name }

func (i folderItem) Description() string {
	noun := "articles"
	if i.count == 1 {
		noun = "article"
	}
	return lipgloss.NewStyle().Foreground(MutedColor).Render(
		fmt.Sprintf("%d %s • created %s", i.count, noun, i.folder.Created.Format("Jan 2, 2006")))
}

func (i folderItem) FilterValue() string { return i.folder.Name }

// newFolderItem is the "create a folder" entry of the folder picker.
type newFolderItem struct{}

func (newFolderItem) Title() string       { return "+ New folder…" }
func (newFolderItem) Description() string { return renderMuted("create a folder and save there") }
func (newFolderItem) FilterValue() string { return "" }

type savedArticleItem struct {
	article storage.SavedArticle
}

func (i savedArticleItem) Title() string { return i.article.Title }

func (i savedArticleItem) Description() string {
	desc := truncateEnd(firstLine(i.article.Summary), 70)
	return lipgloss.NewStyle().Foreground(MutedColor).Render(
		desc + " • saved " + i.article.SavedAt.Format("Jan 2"))
}

func (i savedArticleItem) FilterValue() string { return i.article.Title }

type savedSearchItem struct {
	search storage.SavedSearch
}

func (i savedSearchItem) Title() string { return i.search.Name }

func (i savedSearchItem) Description() string {
	return lipgloss.NewStyle().Foreground(MutedColor).Render(describeCriteria(i.search))
}

func (i savedSearchItem) FilterValue() string { return i.search.Name }

type findResultItem struct {
	result *search.Result
	folder string
}

func (i findResultItem) Title() string { return i.result.Article.Title }

func (i findResultItem) Description() string {
	return lipgloss.NewStyle().Foreground(MutedColor).Render(
		"in " + i.folder + " • " + truncateMiddle(i.result.Article.URL, 60))
}

func (i findResultItem) FilterValue() string { return i.result.Article.Title }

func describeCriteria(s storage.SavedSearch) string {
	var bits []string
	if s.Text != "" {
		bits = append(bits, fmt.Sprintf("%q", s.Text))
	}
	if s.Language != "" {
		bits = append(bits, refdata.LanguageName(s.Language))
	}
	if s.Country != "" {
		bits = append(bits, refdata.CountryName(s.Country))
	}
	if s.Category != "" {
		bits = append(bits, s.Category)
	}
	switch {
	case s.EarliestDate != "" && s.LatestDate != "":
		bits = append(bits, s.EarliestDate+" → "+s.LatestDate)
	case s.EarliestDate != "":
		bits = append(bits, "since "+s.EarliestDate)
	case s.LatestDate != "":
		bits = append(bits, "until "+s.LatestDate)
	}
	return strings.Join(bits, " • ")
}

func articleSummary(a newsapi.Article) string {
	if a.Summary != "" {
		return a.Summary
	}
	return a.Text
}

func firstLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
