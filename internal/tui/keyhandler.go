package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/pders01/newsroom/internal/browse"
	"github.com/pders01/newsroom/internal/config"
	"github.com/pders01/newsroom/internal/library"
	"github.com/pders01/newsroom/internal/newsapi"
)

type KeyHandler struct {
	app         *App
	config      *config.Config
	keys        config.KeyBindings
	modifierKey string
}

func NewKeyHandler(app *App, cfg *config.Config) *KeyHandler {
	modifierKey := cfg.Keys.Modifier + "+"
	return &KeyHandler{app: app, config: cfg, keys: cfg.Keys.Bindings, modifierKey: modifierKey}
}

// bind is the chord for an action key.
func (kh *KeyHandler) bind(key string) string {
	return kh.modifierKey + key
}

func (kh *KeyHandler) HandleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()

	if kh.isInTextInputMode() {
		return kh.handleTextInputMode(msg)
	}

	if l := kh.activeList(); l != nil && l.SettingFilter() {
		return kh.delegateToCharm(msg)
	}

	if model, cmd, handled := kh.handleCustomKeys(key); handled {
		return model, cmd
	}

	return kh.delegateToCharm(msg)
}

func (kh *KeyHandler) isInTextInputMode() bool {
	switch kh.app.view {
	case ViewSearchForm, ViewFrontPageForm:
		return true
	case ViewInput:
		return kh.app.textInput.Focused()
	case ViewFind:
		return kh.app.findInput.Focused()
	default:
		return false
	}
}

// activeList is the list shown by the current view, if any.
func (kh *KeyHandler) activeList() *list.Model {
	a := kh.app
	switch a.view {
	case ViewHome:
		return &a.menu
	case ViewResults:
		return &a.resultList
	case ViewTopNews:
		return &a.topList
	case ViewFrontPages:
		return &a.frontList
	case ViewFolders:
		return &a.folderList
	case ViewFolderArticles:
		return &a.folderArticles
	case ViewSavedSearches:
		return &a.searchesList
	case ViewFolderPicker:
		return &a.pickerList
	case ViewFind:
		return &a.findList
	default:
		return nil
	}
}

func (kh *KeyHandler) handleTextInputMode(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	a := kh.app
	switch msg.String() {
	case "esc":
		return kh.navigateBack()
	case "ctrl+c":
		return kh.quit()
	case "enter":
		return kh.handleTextInputEnter()
	case "tab", "down":
		switch a.view {
		case ViewSearchForm:
			a.searchForm.next()
			return a, nil
		case ViewFrontPageForm:
			a.frontForm.next()
			a.syncFrontPageFilters()
			return a, nil
		case ViewFind:
			if len(a.findList.Items()) > 0 {
				a.findInput.Blur()
				a.findList.Select(0)
			}
			return a, nil
		}
		return kh.delegateToTextInput(msg)
	case "shift+tab", "up":
		switch a.view {
		case ViewSearchForm:
			a.searchForm.prev()
			return a, nil
		case ViewFrontPageForm:
			a.frontForm.prev()
			a.syncFrontPageFilters()
			return a, nil
		}
		return kh.delegateToTextInput(msg)
	default:
		return kh.delegateToTextInput(msg)
	}
}

func (kh *KeyHandler) handleTextInputEnter() (tea.Model, tea.Cmd) {
	a := kh.app
	switch a.view {
	case ViewSearchForm:
		return kh.submitSearch(a.searchCriteria())

	case ViewFrontPageForm:
		a.syncFrontPageFilters()
		if !a.filters.FetchEnabled {
			return a, a.flash(MsgSelectCountry, StatusWarn)
		}
		a.frontList.SetItems(nil)
		a.frontList.ResetSelected()
		a.frontHasMore = false
		a.pushView(ViewFrontPages)
		return a, tea.Batch(
			a.startLoading(MsgLoadingFronts),
			a.startFrontPages(a.filters.Country, a.filters.Source, a.frontForm.value(fieldFPDate)),
		)

	case ViewInput:
		return kh.submitInput(strings.TrimSpace(a.textInput.Value()))

	case ViewFind:
		if items := a.findList.Items(); len(items) > 0 {
			if i, ok := items[0].(findResultItem); ok {
				return kh.showDetail(savedAsArticle(i.result.Article), nil)
			}
		}
		return a, nil
	}
	return a, nil
}

func (kh *KeyHandler) submitSearch(c browse.Criteria) (tea.Model, tea.Cmd) {
	a := kh.app
	if err := c.Validate(); err != nil {
		return a, a.flash(userMessage(err), StatusWarn)
	}
	a.resultList.SetItems(nil)
	a.resultList.ResetSelected()
	a.searchHasMore = false
	if a.view != ViewResults {
		a.pushView(ViewResults)
	}
	return a, tea.Batch(a.startLoading(MsgSearching), a.runSearch(c))
}

func (kh *KeyHandler) submitInput(value string) (tea.Model, tea.Cmd) {
	a := kh.app
	switch a.inputFor {
	case inputNewFolder:
		if value == "" {
			return a, a.flash("Folder name cannot be empty", StatusWarn)
		}
		a.popView()
		return a, a.createFolder(value)

	case inputNewFolderAndSave:
		if value == "" {
			return a, a.flash("Folder name cannot be empty", StatusWarn)
		}
		if a.pendingSave == nil {
			a.popView()
			return a, a.flash(MsgNothingToSave, StatusWarn)
		}
		art := *a.pendingSave
		a.pendingSave = nil
		a.popView()
		if a.view == ViewFolderPicker {
			a.popView()
		}
		return a, a.createFolderAndSave(value, art)

	case inputSaveSearch:
		c, ok := kh.currentCriteria()
		if !ok {
			a.popView()
			return a, a.flash(MsgNothingToSave, StatusWarn)
		}
		a.popView()
		return a, a.saveSearch(c, value)

	case inputAPIKey:
		a.popView()
		return a, a.setAPIKey(value)

	case inputDefaultCountry:
		p := a.svc.Library.Preferences()
		p.DefaultCountry = strings.ToLower(value)
		a.popView()
		return a, a.setPreferences(p)

	case inputDefaultLanguage:
		p := a.svc.Library.Preferences()
		p.DefaultLanguage = strings.ToLower(value)
		a.popView()
		return a, a.setPreferences(p)
	}
	return a, nil
}

// currentCriteria is what "save search" stores: the running search, or the
// form contents before one has started.
func (kh *KeyHandler) currentCriteria() (browse.Criteria, bool) {
	if s, ok := kh.app.svc.Browse.CurrentSearch(); ok {
		return s.Criteria, true
	}
	c := kh.app.searchCriteria()
	if c.Validate() != nil {
		return browse.Criteria{}, false
	}
	return c.Trimmed(), true
}

// delegateToTextInput passes the key to the focused text input.
func (kh *KeyHandler) delegateToTextInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	a := kh.app
	switch a.view {
	case ViewSearchForm:
		return a, a.searchForm.update(msg)

	case ViewFrontPageForm:
		cmd := a.frontForm.update(msg)
		a.syncFrontPageFilters()
		return a, cmd

	case ViewInput:
		var cmd tea.Cmd
		a.textInput, cmd = a.textInput.Update(msg)
		return a, cmd

	case ViewFind:
		prev := a.findInput.Value()
		var cmd tea.Cmd
		a.findInput, cmd = a.findInput.Update(msg)
		if a.findInput.Value() != prev {
			return a, tea.Batch(cmd, a.scheduleFind())
		}
		return a, cmd
	}
	return a, nil
}

func (kh *KeyHandler) handleCustomKeys(key string) (tea.Model, tea.Cmd, bool) {
	a := kh.app

	switch a.view {
	case ViewConfirm:
		return kh.handleConfirmKeys(key)
	case ViewSettings:
		if model, cmd, ok := kh.handleSettingsKeys(key); ok {
			return model, cmd, true
		}
	}

	switch key {
	case "ctrl+c", kh.keys.Quit:
		model, cmd := kh.quit()
		return model, cmd, true
	case kh.keys.Back:
		model, cmd := kh.navigateBack()
		return model, cmd, true
	case kh.bind(kh.keys.Search):
		model, cmd := kh.enterSearchForm()
		return model, cmd, true
	case kh.bind(kh.keys.TopNews):
		model, cmd := kh.enterTopNews()
		return model, cmd, true
	case kh.bind(kh.keys.FrontPages):
		model, cmd := kh.enterFrontPageForm()
		return model, cmd, true
	case kh.bind(kh.keys.Folders):
		model, cmd := kh.enterFolders()
		return model, cmd, true
	case kh.bind(kh.keys.Find):
		model, cmd := kh.enterFind()
		return model, cmd, true
	}

	switch a.view {
	case ViewResults:
		return kh.handleResultsKeys(key)
	case ViewTopNews:
		return kh.handleTopNewsKeys(key)
	case ViewFrontPages:
		return kh.handleFrontPagesKeys(key)
	case ViewFolders:
		return kh.handleFoldersKeys(key)
	case ViewFolderArticles:
		return kh.handleFolderArticlesKeys(key)
	case ViewSavedSearches:
		return kh.handleSavedSearchesKeys(key)
	case ViewDetail:
		return kh.handleDetailKeys(key)
	case ViewFind:
		return kh.handleFindKeys(key)
	}
	return a, nil, false
}

// handleArticleKeys covers the actions shared by every view that shows a
// single selected article.
func (kh *KeyHandler) handleArticleKeys(key string, art *newsapi.Article) (tea.Model, tea.Cmd, bool) {
	a := kh.app
	switch key {
	case kh.bind(kh.keys.Save):
		if art == nil {
			return a, a.flash(MsgNothingToSave, StatusWarn), true
		}
		model, cmd := kh.enterFolderPicker(*art)
		return model, cmd, true
	case kh.bind(kh.keys.Open):
		if art == nil {
			return a, nil, true
		}
		return a, a.openLink(art.URL, false), true
	case kh.bind(kh.keys.CopyURL):
		if art == nil {
			return a, nil, true
		}
		return a, a.copyLink(art.URL), true
	}
	return a, nil, false
}

func (kh *KeyHandler) handleResultsKeys(key string) (tea.Model, tea.Cmd, bool) {
	a := kh.app
	switch key {
	case kh.bind(kh.keys.LoadMore):
		if a.loading {
			return a, nil, true
		}
		if !a.searchHasMore {
			return a, a.flash(MsgNoMoreResults, StatusInfo), true
		}
		return a, tea.Batch(a.startLoading(MsgLoadingMore), a.moreResults()), true
	case kh.bind(kh.keys.SaveSearch):
		c, ok := kh.currentCriteria()
		if !ok {
			return a, a.flash(MsgNothingToSave, StatusWarn), true
		}
		model, cmd := kh.openInput(inputSaveSearch, library.SuggestSearchName(c))
		return model, cmd, true
	}
	var art *newsapi.Article
	if i, ok := a.resultList.SelectedItem().(articleItem); ok {
		art = &i.article
	}
	return kh.handleArticleKeys(key, art)
}

func (kh *KeyHandler) handleTopNewsKeys(key string) (tea.Model, tea.Cmd, bool) {
	var art *newsapi.Article
	if i, ok := kh.app.topList.SelectedItem().(clusterItem); ok {
		art = &i.article
	}
	return kh.handleArticleKeys(key, art)
}

func (kh *KeyHandler) handleFrontPagesKeys(key string) (tea.Model, tea.Cmd, bool) {
	a := kh.app
	var page *browse.FrontPage
	if i, ok := a.frontList.SelectedItem().(frontPageItem); ok {
		page = &i.page
	}
	switch key {
	case kh.bind(kh.keys.LoadMore):
		if a.loading {
			return a, nil, true
		}
		if !a.frontHasMore {
			return a, a.flash(MsgAllFrontsTried, StatusInfo), true
		}
		return a, tea.Batch(a.startLoading(MsgLoadingFronts), a.moreFrontPages()), true
	case kh.bind(kh.keys.Open):
		if page == nil {
			return a, nil, true
		}
		return a, a.openLink(page.URL, true), true
	case kh.bind(kh.keys.CopyURL):
		if page == nil {
			return a, nil, true
		}
		return a, a.copyLink(page.URL), true
	}
	return a, nil, false
}

func (kh *KeyHandler) handleFoldersKeys(key string) (tea.Model, tea.Cmd, bool) {
	a := kh.app
	switch key {
	case kh.bind(kh.keys.NewFolder):
		model, cmd := kh.openInput(inputNewFolder, "")
		return model, cmd, true
	case kh.bind(kh.keys.Delete):
		i, ok := a.folderList.SelectedItem().(folderItem)
		if !ok {
			return a, nil, true
		}
		note := ""
		if i.count > 0 {
			note = fmt.Sprintf("Its %d saved article(s) will be removed.", i.count)
		}
		kh.askConfirm(confirmation{
			title:   "Delete folder?",
			subject: i.folder.Name,
			note:    note,
			action:  a.deleteFolder(i.folder.ID),
		})
		return a, nil, true
	}
	return a, nil, false
}

func (kh *KeyHandler) handleFolderArticlesKeys(key string) (tea.Model, tea.Cmd, bool) {
	a := kh.app
	i, ok := a.folderArticles.SelectedItem().(savedArticleItem)
	if key == kh.bind(kh.keys.Delete) {
		if !ok || a.currentFolder == nil {
			return a, nil, true
		}
		kh.askConfirm(confirmation{
			title:   "Remove from " + a.currentFolder.Name + "?",
			subject: i.article.Title,
			action:  a.removeArticle(i.article.ID, a.currentFolder.ID),
		})
		return a, nil, true
	}
	if !ok {
		return kh.handleArticleKeys(key, nil)
	}
	art := savedAsArticle(i.article)
	return kh.handleArticleKeys(key, &art)
}

func (kh *KeyHandler) handleSavedSearchesKeys(key string) (tea.Model, tea.Cmd, bool) {
	a := kh.app
	if key != kh.bind(kh.keys.Delete) {
		return a, nil, false
	}
	i, ok := a.searchesList.SelectedItem().(savedSearchItem)
	if !ok {
		return a, nil, true
	}
	kh.askConfirm(confirmation{
		title:   "Delete saved search?",
		subject: i.search.Name,
		action:  a.deleteSavedSearch(i.search.ID),
	})
	return a, nil, true
}

func (kh *KeyHandler) handleDetailKeys(key string) (tea.Model, tea.Cmd, bool) {
	return kh.handleArticleKeys(key, kh.app.detail)
}

func (kh *KeyHandler) handleFindKeys(key string) (tea.Model, tea.Cmd, bool) {
	a := kh.app
	switch key {
	case "tab", "shift+tab", "/":
		a.findInput.Focus()
		return a, nil, true
	case "up":
		if a.findList.Index() == 0 {
			a.findInput.Focus()
			return a, nil, true
		}
		return a, nil, false
	}
	if i, ok := a.findList.SelectedItem().(findResultItem); ok {
		art := savedAsArticle(i.result.Article)
		return kh.handleArticleKeys(key, &art)
	}
	return a, nil, false
}

func (kh *KeyHandler) handleSettingsKeys(key string) (tea.Model, tea.Cmd, bool) {
	a := kh.app
	switch key {
	case "k":
		model, cmd := kh.openInput(inputAPIKey, a.svc.Library.APIKey())
		return model, cmd, true
	case "c":
		model, cmd := kh.openInput(inputDefaultCountry, a.svc.DefaultCountry())
		return model, cmd, true
	case "l":
		model, cmd := kh.openInput(inputDefaultLanguage, a.svc.DefaultLanguage())
		return model, cmd, true
	}
	return a, nil, false
}

func (kh *KeyHandler) handleConfirmKeys(key string) (tea.Model, tea.Cmd, bool) {
	a := kh.app
	switch key {
	case "enter", "y":
		c := a.confirm
		a.confirm = nil
		a.popView()
		if c == nil {
			return a, nil, true
		}
		return a, c.action, true
	case "esc", "n":
		a.confirm = nil
		a.popView()
		return a, nil, true
	case "ctrl+c":
		model, cmd := kh.quit()
		return model, cmd, true
	}
	return a, nil, true
}

// delegateToCharm lets Charm handle all keys we don't intercept.
func (kh *KeyHandler) delegateToCharm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	a := kh.app
	var cmd tea.Cmd

	if a.view == ViewDetail {
		a.viewport, cmd = a.viewport.Update(msg)
		return a, cmd
	}

	l := kh.activeList()
	if l == nil {
		return a, nil
	}
	filtering := l.SettingFilter()
	*l, cmd = l.Update(msg)
	if msg.String() != "enter" || filtering {
		return a, cmd
	}

	switch a.view {
	case ViewHome:
		if i, ok := a.menu.SelectedItem().(menuItem); ok {
			return kh.openMenu(i.action)
		}

	case ViewResults:
		if i, ok := a.resultList.SelectedItem().(articleItem); ok {
			return kh.showDetail(i.article, nil)
		}

	case ViewTopNews:
		if i, ok := a.topList.SelectedItem().(clusterItem); ok {
			return kh.showDetail(i.article, i.cluster.Others())
		}

	case ViewFrontPages:
		if i, ok := a.frontList.SelectedItem().(frontPageItem); ok {
			return a, a.openLink(i.page.URL, true)
		}

	case ViewFolders:
		if i, ok := a.folderList.SelectedItem().(folderItem); ok {
			f := i.folder
			a.currentFolder = &f
			a.loadFolderArticles(f)
			a.folderArticles.ResetSelected()
			a.pushView(ViewFolderArticles)
			return a, nil
		}

	case ViewFolderArticles:
		if i, ok := a.folderArticles.SelectedItem().(savedArticleItem); ok {
			return kh.showDetail(savedAsArticle(i.article), nil)
		}

	case ViewSavedSearches:
		if i, ok := a.searchesList.SelectedItem().(savedSearchItem); ok {
			a.popView()
			return a, a.runSavedSearch(i.search)
		}

	case ViewFolderPicker:
		switch i := a.pickerList.SelectedItem().(type) {
		case folderItem:
			if a.pendingSave == nil {
				a.popView()
				return a, a.flash(MsgNothingToSave, StatusWarn)
			}
			art := *a.pendingSave
			a.pendingSave = nil
			a.popView()
			return a, a.saveArticle(art, i.folder.ID)
		case newFolderItem:
			return kh.openInput(inputNewFolderAndSave, "")
		}

	case ViewFind:
		if i, ok := a.findList.SelectedItem().(findResultItem); ok {
			return kh.showDetail(savedAsArticle(i.result.Article), nil)
		}
	}
	return a, cmd
}

func (kh *KeyHandler) openMenu(action menuAction) (tea.Model, tea.Cmd) {
	a := kh.app
	switch action {
	case menuSearch:
		return kh.enterSearchForm()
	case menuTopNews:
		return kh.enterTopNews()
	case menuFrontPages:
		return kh.enterFrontPageForm()
	case menuSavedSearches:
		a.refreshLibraryLists()
		a.searchesList.ResetSelected()
		a.pushView(ViewSavedSearches)
		return a, nil
	case menuFolders:
		return kh.enterFolders()
	case menuFind:
		return kh.enterFind()
	case menuSettings:
		a.pushView(ViewSettings)
		return a, nil
	}
	return a, nil
}

func (kh *KeyHandler) enterSearchForm() (tea.Model, tea.Cmd) {
	a := kh.app
	f := a.searchForm
	if f.value(fieldText) == "" && f.value(fieldLanguage) == "" && f.value(fieldCountry) == "" {
		f.set(fieldLanguage, a.svc.DefaultLanguage())
		f.set(fieldCountry, a.svc.DefaultCountry())
	}
	f.focusField(fieldText)
	a.pushView(ViewSearchForm)
	return a, nil
}

func (kh *KeyHandler) enterTopNews() (tea.Model, tea.Cmd) {
	a := kh.app
	country := a.svc.DefaultCountry()
	if country == "" {
		return a, a.flash(MsgSelectCountry, StatusWarn)
	}
	a.topList.ResetSelected()
	a.pushView(ViewTopNews)
	return a, tea.Batch(a.startLoading(MsgLoadingTopNews), a.loadTopNews(country, a.svc.DefaultLanguage()))
}

func (kh *KeyHandler) enterFrontPageForm() (tea.Model, tea.Cmd) {
	a := kh.app
	f := a.frontForm
	if f.value(fieldFPCountry) == "" {
		f.set(fieldFPCountry, a.svc.DefaultCountry())
	}
	f.focusField(fieldFPCountry)
	a.syncFrontPageFilters()
	a.pushView(ViewFrontPageForm)
	return a, nil
}

func (kh *KeyHandler) enterFolders() (tea.Model, tea.Cmd) {
	a := kh.app
	a.refreshLibraryLists()
	a.pushView(ViewFolders)
	return a, nil
}

func (kh *KeyHandler) enterFind() (tea.Model, tea.Cmd) {
	a := kh.app
	a.findInput.Focus()
	a.pushView(ViewFind)
	if strings.TrimSpace(a.findInput.Value()) != "" {
		return a, a.scheduleFind()
	}
	return a, nil
}

func (kh *KeyHandler) enterFolderPicker(art newsapi.Article) (tea.Model, tea.Cmd) {
	a := kh.app
	a.pendingSave = &art
	a.refreshLibraryLists()
	a.pickerList.Title = "› save “" + truncateEnd(art.Title, 40) + "” to"
	a.pickerList.ResetSelected()
	a.pushView(ViewFolderPicker)
	return a, nil
}

func (kh *KeyHandler) openInput(purpose inputPurpose, value string) (tea.Model, tea.Cmd) {
	a := kh.app
	a.inputFor = purpose
	a.textInput.Reset()
	a.textInput.Placeholder = ""
	switch purpose {
	case inputAPIKey:
		a.textInput.Placeholder = "paste your World News API key"
	case inputDefaultCountry:
		a.textInput.Placeholder = "two-letter code, e.g. us"
	case inputDefaultLanguage:
		a.textInput.Placeholder = "two-letter code, e.g. en"
	case inputNewFolder, inputNewFolderAndSave:
		a.textInput.Placeholder = "folder name"
	}
	a.textInput.SetValue(value)
	a.textInput.CursorEnd()
	a.textInput.Focus()
	a.pushView(ViewInput)
	return a, nil
}

func (kh *KeyHandler) askConfirm(c confirmation) {
	kh.app.confirm = &c
	kh.app.pushView(ViewConfirm)
}

func (kh *KeyHandler) showDetail(art newsapi.Article, others []newsapi.Article) (tea.Model, tea.Cmd) {
	a := kh.app
	a.detail = &art
	a.viewport.SetContent("Loading…")
	a.pushView(ViewDetail)
	return a, a.renderArticle(art, others)
}

// navigateBack returns to the previous view and quits from the home view.
func (kh *KeyHandler) navigateBack() (tea.Model, tea.Cmd) {
	a := kh.app
	switch a.view {
	case ViewConfirm:
		a.confirm = nil
	case ViewDetail:
		a.detail = nil
	case ViewResults:
		// leaving the list ends the search; a pending page is dropped
		a.svc.Browse.ClearSearch()
		a.resultList.SetItems(nil)
		a.searchHasMore = false
	case ViewFind:
		if !a.findInput.Focused() && len(a.findList.Items()) > 0 {
			a.findInput.Focus()
			return a, nil
		}
	}
	if !a.popView() {
		return kh.quit()
	}
	return a, nil
}

func (kh *KeyHandler) quit() (tea.Model, tea.Cmd) {
	kh.app.cancel()
	return kh.app, tea.Quit
}

func (kh *KeyHandler) GetHelpForCurrentView() []string {
	k := kh.keys
	nav := []string{kh.bind(k.Search) + ": search", kh.bind(k.TopNews) + ": top", kh.bind(k.FrontPages) + ": fronts"}
	articleHelp := []string{kh.bind(k.Save) + ": save", kh.bind(k.Open) + ": open", kh.bind(k.CopyURL) + ": copy link"}

	switch kh.app.view {
	case ViewHome:
		return append([]string{"enter: select", kh.bind(k.Folders) + ": folders", kh.bind(k.Find) + ": find"}, nav...)
	case ViewSearchForm, ViewFrontPageForm:
		return []string{"tab: next field", "enter: submit", k.Back + ": back"}
	case ViewResults:
		help := append([]string{"enter: read"}, articleHelp...)
		if kh.app.searchHasMore {
			help = append(help, kh.bind(k.LoadMore)+": more")
		}
		return append(help, kh.bind(k.SaveSearch)+": save search")
	case ViewTopNews:
		return append([]string{"enter: read"}, articleHelp...)
	case ViewFrontPages:
		help := []string{"enter: view", kh.bind(k.CopyURL) + ": copy link"}
		if kh.app.frontHasMore {
			help = append(help, kh.bind(k.LoadMore)+": more")
		}
		return help
	case ViewFolders:
		help := []string{"enter: open", kh.bind(k.NewFolder) + ": new"}
		if len(kh.app.folderList.Items()) > 0 {
			help = append(help, kh.bind(k.Delete)+": delete")
		}
		return help
	case ViewFolderArticles:
		return append([]string{"enter: read", kh.bind(k.Delete) + ": remove"}, articleHelp...)
	case ViewSavedSearches:
		return []string{"enter: run", kh.bind(k.Delete) + ": delete"}
	case ViewFolderPicker:
		return []string{"enter: save here", k.Back + ": cancel"}
	case ViewDetail:
		return append(articleHelp, k.Back+": back")
	case ViewInput:
		return []string{"enter: confirm", k.Back + ": cancel"}
	case ViewConfirm:
		return []string{"enter: confirm", k.Back + ": cancel"}
	case ViewFind:
		return []string{"tab: results", "enter: read", k.Back + ": back"}
	case ViewSettings:
		return []string{"k: API key", "c: country", "l: language", k.Back + ": back"}
	default:
		return []string{}
	}
}
