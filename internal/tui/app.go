package tui

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"

	"github.com/pders01/newsroom/internal/browse"
	"github.com/pders01/newsroom/internal/config"
	"github.com/pders01/newsroom/internal/newsapi"
	"github.com/pders01/newsroom/internal/refdata"
	"github.com/pders01/newsroom/internal/services"
	"github.com/pders01/newsroom/internal/storage"
)

type inputPurpose int

const (
	inputNewFolder inputPurpose = iota
	inputNewFolderAndSave
	inputSaveSearch
	inputAPIKey
	inputDefaultCountry
	inputDefaultLanguage
)

// confirmation is a pending yes/no question. action runs on yes.
type confirmation struct {
	title   string
	subject string
	note    string
	action  tea.Cmd
}

type App struct {
	svc        *services.Services
	config     *config.Config
	keyHandler *KeyHandler
	ctx        context.Context
	cancel     context.CancelFunc
	now        func() time.Time

	menu           list.Model
	resultList     list.Model
	topList        list.Model
	frontList      list.Model
	folderList     list.Model
	folderArticles list.Model
	searchesList   list.Model
	pickerList     list.Model
	findList       list.Model
	viewport       viewport.Model
	textInput      textinput.Model
	findInput      textinput.Model
	searchForm     *form
	frontForm      *form
	spinner        spinner.Model

	view    View
	history []View

	dataset refdata.Dataset
	filters browse.FilterState

	searchHasMore bool
	frontHasMore  bool
	currentFolder *storage.Folder
	pendingSave   *newsapi.Article
	detail        *newsapi.Article
	inputFor      inputPurpose
	confirm       *confirmation

	findSeq      int
	findDebounce time.Duration

	status     string
	statusKind StatusKind
	statusSeq  int
	loading    bool

	width           int
	height          int
	glamourRenderer *glamour.TermRenderer
	rendererWidth   int
}

func newList(title string, filtering bool) list.Model {
	l := list.New([]list.Item{}, list.NewDefaultDelegate(), 0, 0)
	l.Title = title
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(filtering)
	l.SetShowHelp(true)
	return l
}

func NewApp(svc *services.Services) *App {
	cfg := svc.Config
	ApplyColors(cfg.UI.Colors)

	menu := newList("› newsroom", false)
	items := make([]list.Item, 0, len(homeMenu()))
	for _, m := range homeMenu() {
		items = append(items, m)
	}
	menu.SetItems(items)

	ti := textinput.New()
	ti.CharLimit = 256

	fi := textinput.New()
	fi.Placeholder = "Find saved articles…"

	ctx, cancel := context.WithCancel(context.Background())

	app := &App{
		svc:            svc,
		config:         cfg,
		ctx:            ctx,
		cancel:         cancel,
		now:            time.Now,
		menu:           menu,
		resultList:     newList("› search results", false),
		topList:        newList("› top news", true),
		frontList:      newList("› front pages", true),
		folderList:     newList("› folders", true),
		folderArticles: newList("› saved articles", true),
		searchesList:   newList("› saved searches", true),
		pickerList:     newList("› save to folder", false),
		findList:       newList("› library matches", false),
		viewport:       viewport.New(0, 0),
		textInput:      ti,
		findInput:      fi,
		searchForm:     newSearchForm(),
		frontForm:      newFrontPageForm(),
		spinner:        newSpinner(),
		view:           ViewHome,
		findDebounce:   200 * time.Millisecond,
	}
	app.findList.SetShowHelp(false)
	app.keyHandler = NewKeyHandler(app, cfg)

	return app
}

func (a *App) getRenderer() (*glamour.TermRenderer, error) {
	wrap := (a.width * 9) / 10
	maxW := a.config.UI.Article.WordWrapMaxWidth
	if maxW <= 0 {
		maxW = 120
	}
	minW := a.config.UI.Article.WordWrapMinWidth
	if minW <= 0 {
		minW = 40
	}
	wrap = min(max(wrap, minW), maxW)
	if a.width > 0 && a.width < 50 {
		wrap = max(a.width-4, 20)
	}

	if a.glamourRenderer == nil || abs(a.rendererWidth-wrap) > 10 {
		r, err := glamour.NewTermRenderer(
			glamour.WithAutoStyle(),
			glamour.WithWordWrap(wrap),
		)
		if err != nil {
			return nil, err
		}
		a.glamourRenderer = r
		a.rendererWidth = wrap
	}
	return a.glamourRenderer, nil
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

func (a *App) Init() tea.Cmd {
	return tea.Batch(
		a.loadDataset(),
		tea.EnterAltScreen,
	)
}

// pushView enters v, remembering the current view for back navigation.
func (a *App) pushView(v View) {
	if a.view != v {
		a.history = append(a.history, a.view)
	}
	a.view = v
}

// popView returns to the previous view, or reports false at the root.
func (a *App) popView() bool {
	if len(a.history) == 0 {
		return false
	}
	a.view = a.history[len(a.history)-1]
	a.history = a.history[:len(a.history)-1]
	return true
}

// replaceView swaps the current view without growing the history.
func (a *App) replaceView(v View) {
	a.view = v
}

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.resize(msg.Width, msg.Height)
		return a, nil

	case tea.KeyMsg:
		return a.keyHandler.HandleKey(msg)

	case spinner.TickMsg:
		if !a.loading {
			return a, nil
		}
		var cmd tea.Cmd
		a.spinner, cmd = a.spinner.Update(msg)
		return a, cmd

	case statusClearMsg:
		if msg.seq == a.statusSeq && !a.loading {
			a.status = ""
		}
		return a, nil

	case datasetLoadedMsg:
		a.dataset = msg.dataset
		a.syncFrontPageFilters()
		if msg.err != nil {
			return a, a.flash("Newspaper list unavailable: "+msg.err.Error(), StatusWarn)
		}
		return a, nil

	case searchPageMsg:
		return a, a.applySearchPage(msg)

	case topNewsMsg:
		return a, a.applyTopNews(msg)

	case frontBatchMsg:
		return a, a.applyFrontBatch(msg)

	case libraryChangedMsg:
		a.refreshLibraryLists()
		if msg.err != nil {
			return a, a.flash(userMessage(msg.err), StatusError)
		}
		if msg.text != "" {
			return a, a.flash(msg.text, StatusSuccess)
		}
		return a, nil

	case savedSearchRunMsg:
		a.fillSearchForm(msg.criteria)
		return a.keyHandler.submitSearch(msg.criteria)

	case detailRenderedMsg:
		if a.view == ViewDetail {
			a.viewport.SetContent(msg.content)
			a.viewport.GotoTop()
		}
		return a, nil

	case findDebounceMsg:
		if msg.seq != a.findSeq {
			return a, nil
		}
		return a, a.findInLibrary(a.findInput.Value(), msg.seq)

	case findResultsMsg:
		if msg.seq != a.findSeq {
			return a, nil
		}
		if msg.err != nil {
			return a, a.flash(userMessage(msg.err), StatusError)
		}
		items := make([]list.Item, len(msg.items))
		for i, it := range msg.items {
			items[i] = it
		}
		a.findList.SetItems(items)
		return a, a.flash(MsgResultsCount(len(items)), StatusInfo)

	case infoMsg:
		return a, a.flash(msg.text, StatusSuccess)

	case errorMsg:
		a.stopLoading()
		if text := userMessage(msg.err); text != "" {
			return a, a.flash(text, StatusError)
		}
		return a, nil
	}

	return a, nil
}

func (a *App) resize(width, height int) {
	a.width = width
	a.height = height
	h := max(height-3, 5)
	for _, l := range []*list.Model{
		&a.menu, &a.resultList, &a.topList, &a.frontList, &a.folderList,
		&a.folderArticles, &a.searchesList, &a.pickerList,
	} {
		l.SetSize(width, h)
	}
	a.findList.SetSize(width, max(height-8, 5))
	a.viewport.Width = width
	a.viewport.Height = h

	inputWidth := width - 20
	if inputWidth < 20 {
		inputWidth = width
	}
	a.textInput.Width = inputWidth
	a.findInput.Width = inputWidth
	a.searchForm.setWidth(inputWidth)
	a.frontForm.setWidth(inputWidth)
}

func (a *App) applySearchPage(msg searchPageMsg) tea.Cmd {
	// the request already in flight will report
	if errors.Is(msg.err, browse.ErrBusy) {
		return nil
	}
	a.stopLoading()
	if msg.err != nil {
		if text := userMessage(msg.err); text != "" {
			return a.flash(text, StatusError)
		}
		return nil
	}

	a.searchHasMore = msg.page.HasMore()
	var items []list.Item
	if msg.page.Append {
		items = a.resultList.Items()
	}
	for _, art := range msg.page.Articles {
		items = append(items, articleItem{article: art, saved: a.svc.Library.IsSaved(art.ID)})
	}
	a.resultList.SetItems(items)

	switch {
	case !msg.page.Append && len(msg.page.Articles) == 0:
		return a.flash(MsgNoResults, StatusWarn)
	case msg.page.Append && len(msg.page.Articles) == 0:
		return a.flash(MsgNoMoreResults, StatusInfo)
	default:
		return a.flash(MsgResultsCount(len(items)), StatusInfo)
	}
}

func (a *App) applyTopNews(msg topNewsMsg) tea.Cmd {
	a.stopLoading()
	if msg.err != nil {
		return a.flash(userMessage(msg.err), StatusError)
	}
	items := make([]list.Item, 0, len(msg.clusters))
	for _, c := range msg.clusters {
		p := c.Primary()
		items = append(items, clusterItem{
			articleItem: articleItem{article: p, saved: a.svc.Library.IsSaved(p.ID), others: len(c.Others())},
			cluster:     c,
		})
	}
	a.topList.Title = "› top news • " + refdata.CountryName(msg.country)
	a.topList.SetItems(items)
	if len(items) == 0 {
		return a.flash(MsgNoResults, StatusWarn)
	}
	return a.flash(MsgResultsCount(len(items)), StatusInfo)
}

func (a *App) applyFrontBatch(msg frontBatchMsg) tea.Cmd {
	// the request already in flight will report
	if errors.Is(msg.err, browse.ErrBusy) {
		return nil
	}
	a.stopLoading()
	if msg.err != nil {
		if text := userMessage(msg.err); text != "" {
			return a.flash(text, StatusError)
		}
		return nil
	}

	b := msg.batch
	a.frontHasMore = !b.Exhausted
	var items []list.Item
	if b.Append {
		items = a.frontList.Items()
	}
	for _, p := range b.Pages {
		items = append(items, frontPageItem{page: p})
	}
	a.frontList.SetItems(items)

	switch {
	case b.Fallback:
		return a.flash(MsgFallbackFront, StatusWarn)
	case len(items) == 0:
		return a.flash(MsgNoFrontPages, StatusWarn)
	case b.Exhausted:
		return a.flash(MsgFrontPagesCount(len(items), 0)+" • "+MsgAllFrontsTried, StatusInfo)
	default:
		return a.flash(MsgFrontPagesCount(len(items), msg.remaining), StatusInfo)
	}
}

// refreshLibraryLists rebuilds the folder, saved-search and picker lists and
// the saved markers of visible results from the library.
func (a *App) refreshLibraryLists() {
	lib := a.svc.Library

	folders := lib.Folders()
	folderItems := make([]list.Item, 0, len(folders))
	pickerItems := make([]list.Item, 0, len(folders)+1)
	for _, f := range folders {
		arts, _ := lib.FolderArticles(f.ID)
		it := folderItem{folder: f, count: len(arts)}
		folderItems = append(folderItems, it)
		pickerItems = append(pickerItems, it)
	}
	pickerItems = append(pickerItems, newFolderItem{})
	a.folderList.SetItems(folderItems)
	a.pickerList.SetItems(pickerItems)

	searches := lib.SavedSearches()
	searchItems := make([]list.Item, len(searches))
	for i, s := range searches {
		searchItems[i] = savedSearchItem{search: s}
	}
	a.searchesList.SetItems(searchItems)

	if a.currentFolder != nil {
		if _, err := lib.Folder(a.currentFolder.ID); err != nil {
			a.currentFolder = nil
			a.folderArticles.SetItems(nil)
		} else {
			a.loadFolderArticles(*a.currentFolder)
		}
	}

	for _, l := range []*list.Model{&a.resultList, &a.topList} {
		items := l.Items()
		for i, it := range items {
			switch v := it.(type) {
			case articleItem:
				v.saved = lib.IsSaved(v.article.ID)
				items[i] = v
			case clusterItem:
				v.saved = lib.IsSaved(v.article.ID)
				items[i] = v
			}
		}
		l.SetItems(items)
	}
}

func (a *App) loadFolderArticles(f storage.Folder) {
	arts, err := a.svc.Library.FolderArticles(f.ID)
	if err != nil {
		a.folderArticles.SetItems(nil)
		return
	}
	items := make([]list.Item, len(arts))
	for i, art := range arts {
		items[i] = savedArticleItem{article: art}
	}
	a.folderArticles.Title = "› " + f.Name
	a.folderArticles.SetItems(items)
}

func (a *App) View() string {
	var content string
	bodyHeight := max(a.height-3, 0)

	switch a.view {
	case ViewHome:
		if a.height >= 24 {
			banner := lipgloss.NewStyle().Width(a.width).Align(lipgloss.Center).
				Render(GetWelcomeMessage(a.svc.Client.HasAPIKey()))
			a.menu.SetHeight(max(bodyHeight-lipgloss.Height(banner)-1, 5))
			content = lipgloss.JoinVertical(lipgloss.Left, banner, "", a.menu.View())
		} else {
			content = a.menu.View()
		}
	case ViewSearchForm:
		content = a.renderFormView("› search news", a.searchForm.view(a.searchFormHints()),
			"Tab/↓: next field • Enter: search • Esc: back")
	case ViewResults:
		content = a.resultList.View()
	case ViewTopNews:
		content = a.topList.View()
	case ViewFrontPageForm:
		fetch := "Enter: fetch"
		if !a.filters.FetchEnabled {
			fetch = "select a country to fetch"
		}
		content = a.renderFormView("› front pages", a.frontForm.view(a.frontPageHints()),
			"Tab/↓: next field • "+fetch+" • Esc: back")
	case ViewFrontPages:
		content = a.frontList.View()
	case ViewFolders:
		if len(a.folderList.Items()) == 0 {
			content = renderCentered(a.width, bodyHeight, renderMuted("No folders yet • "+a.keyHandler.bind(a.config.Keys.Bindings.NewFolder)+": new folder"))
		} else {
			content = a.folderList.View()
		}
	case ViewFolderArticles:
		content = a.folderArticles.View()
	case ViewSavedSearches:
		if len(a.searchesList.Items()) == 0 {
			content = renderCentered(a.width, bodyHeight, renderMuted("No saved searches yet"))
		} else {
			content = a.searchesList.View()
		}
	case ViewFolderPicker:
		content = a.pickerList.View()
	case ViewDetail:
		content = a.viewport.View()
	case ViewInput:
		content = renderCentered(a.width, bodyHeight, lipgloss.JoinVertical(
			lipgloss.Center,
			TitleStyle.Render(a.inputTitle()),
			"",
			renderInputFrame(a.textInput.View(), true, a.textInput.Width),
			"",
			renderHelp("Enter: confirm • Esc: cancel"),
		))
	case ViewConfirm:
		content = a.renderConfirm(bodyHeight)
	case ViewFind:
		content = lipgloss.JoinVertical(lipgloss.Top,
			renderHeader("› find in library", a.findSubtitle(), a.width),
			"",
			renderInputFrame(a.findInput.View(), a.findInput.Focused(), a.findInput.Width),
			"",
			a.findList.View(),
		)
	case ViewSettings:
		content = a.renderSettings(bodyHeight)
	}

	content = ContentWrapper(a.width, bodyHeight).Render(content)

	separator := SeparatorStyle.Render(strings.Repeat("─", max(a.width-1, 0)))
	return lipgloss.JoinVertical(lipgloss.Top, content, separator, a.getCustomStatusBar())
}

func (a *App) renderFormView(title, body, help string) string {
	return lipgloss.JoinVertical(lipgloss.Left,
		renderHeader(title, "", a.width),
		"",
		body,
		"",
		renderHelp(help),
	)
}

func (a *App) inputTitle() string {
	switch a.inputFor {
	case inputNewFolder, inputNewFolderAndSave:
		return "› new folder"
	case inputSaveSearch:
		return "› save search as"
	case inputAPIKey:
		return "› API key"
	case inputDefaultCountry:
		return "› default country"
	case inputDefaultLanguage:
		return "› default language"
	default:
		return "›"
	}
}

func (a *App) renderConfirm(height int) string {
	c := a.confirm
	if c == nil {
		return ""
	}
	modalWidth := max((a.width*4)/5, min(a.width, 20))
	subject := truncateEnd(c.subject, modalWidth-4)
	rows := []string{
		ErrorMessageStyle.Render("⚠ " + c.title),
		"",
		ModalHighlight.Width(modalWidth).Align(lipgloss.Center).Render(subject),
	}
	if c.note != "" {
		rows = append(rows, "", lipgloss.NewStyle().Foreground(MutedColor).Width(modalWidth).Align(lipgloss.Center).Render(c.note))
	}
	rows = append(rows, "", "", renderHelp("Enter/y: confirm • Esc/n: cancel"))
	return renderCentered(a.width, height, lipgloss.JoinVertical(lipgloss.Center, rows...))
}

func (a *App) renderSettings(height int) string {
	lib := a.svc.Library
	key := "not set"
	if k := lib.APIKey(); k != "" {
		key = maskKey(k)
	}
	if a.config.API.Key != "" {
		key = maskKey(a.config.API.Key) + " (from config file)"
	}
	prefs := lib.Preferences()
	rows := []string{
		HeaderStyle.Render("› settings"),
		"",
		ModalTextStyle.Render("API key           ") + ModalHighlight.Render(key),
		ModalTextStyle.Render("Default country   ") + ModalHighlight.Render(prefs.DefaultCountry+" ("+refdata.CountryName(prefs.DefaultCountry)+")"),
		ModalTextStyle.Render("Default language  ") + ModalHighlight.Render(prefs.DefaultLanguage+" ("+refdata.LanguageName(prefs.DefaultLanguage)+")"),
		ModalTextStyle.Render("Saved articles    ") + ModalHighlight.Render(itoa(lib.SavedArticleCount())),
		"",
		renderHelp("k: set API key • c: default country • l: default language • Esc: back"),
	}
	return renderCentered(a.width, height, lipgloss.JoinVertical(lipgloss.Left, rows...))
}

func (a *App) findSubtitle() string {
	if n, err := a.svc.Index.DocCount(); err == nil {
		return itoa(n) + " saved articles indexed"
	}
	return ""
}

func (a *App) getCustomStatusBar() string {
	if s := a.renderStatus(); s != "" {
		return StatusBarStyle.Width(a.width).Render(s)
	}
	commands := a.keyHandler.GetHelpForCurrentView()
	if len(commands) == 0 {
		return ""
	}
	return StatusBarStyle.Width(a.width).Render(strings.Join(commands, " • "))
}

func maskKey(k string) string {
	if len(k) <= 6 {
		return strings.Repeat("•", len(k))
	}
	return k[:3] + strings.Repeat("•", len(k)-6) + k[len(k)-3:]
}
