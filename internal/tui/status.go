package tui

import (
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
)

// Canonical short status messages used across the app.
const (
	MsgSearching        = "Searching…"
	MsgLoadingMore      = "Loading more…"
	MsgLoadingTopNews   = "Loading top news…"
	MsgLoadingFronts    = "Fetching front pages…"
	MsgNoResults        = "No results"
	MsgNoMoreResults    = "No more results"
	MsgAllFrontsTried   = "All newspapers tried"
	MsgFallbackFront    = "No newspaper had a page; showing the country front page"
	MsgNoFrontPages     = "No front pages found for this date"
	MsgSaved            = "Saved"
	MsgAlreadySaved     = "Already in that folder"
	MsgRemoved          = "Removed"
	MsgFolderCreated    = "Folder created"
	MsgFolderDeleted    = "Folder deleted"
	MsgSearchSaved      = "Search saved"
	MsgSearchDeleted    = "Saved search deleted"
	MsgCopied           = "Link copied"
	MsgSettingsSaved    = "Settings saved"
	MsgNeedAPIKey       = "Set your API key in Settings first"
	MsgSelectCountry    = "Please select a country first."
	MsgNothingToSave    = "Nothing to save yet"
	MsgSearchCriteria   = "Please enter search text or select at least one filter"
	statusClearInterval = 4 * time.Second
)

func MsgResultsCount(n int) string {
	if n == 1 {
		return "1 result"
	}
	return fmt.Sprintf("%d results", n)
}

func MsgFrontPagesCount(n int, remaining int) string {
	base := fmt.Sprintf("%d front pages", n)
	if n == 1 {
		base = "1 front page"
	}
	if remaining > 0 {
		base += fmt.Sprintf(" • %d newspapers left", remaining)
	}
	return base
}

// StatusKind is the severity of a status bar message.
type StatusKind int

const (
	StatusInfo StatusKind = iota
	StatusSuccess
	StatusWarn
	StatusError
)

type statusClearMsg struct {
	seq int
}

// setStatus shows text in the status bar. A positive ttl clears it later.
func (a *App) setStatus(text string, kind StatusKind, ttl time.Duration) tea.Cmd {
	a.statusSeq++
	a.status = text
	a.statusKind = kind
	if ttl <= 0 {
		return nil
	}
	seq := a.statusSeq
	return tea.Tick(ttl, func(time.Time) tea.Msg { return statusClearMsg{seq: seq} })
}

func (a *App) flash(text string, kind StatusKind) tea.Cmd {
	return a.setStatus(text, kind, statusClearInterval)
}

// startLoading shows the spinner with text until stopLoading.
func (a *App) startLoading(text string) tea.Cmd {
	a.loading = true
	a.setStatus(text, StatusInfo, 0)
	return a.spinner.Tick
}

func (a *App) stopLoading() {
	a.loading = false
	a.status = ""
}

func newSpinner() spinner.Model {
	s := spinner.New()
	s.Spinner = spinner.MiniDot
	return s
}

func (a *App) renderStatus() string {
	text := a.status
	if text == "" {
		return ""
	}
	if a.loading {
		text = a.spinner.View() + " " + text
	}
	switch a.statusKind {
	case StatusSuccess:
		return StatusSuccessStyle.Render(text)
	case StatusWarn:
		return StatusWarnStyle.Render(text)
	case StatusError:
		return StatusErrorStyle.Render("✗ " + text)
	default:
		return StatusInfoStyle.Render(text)
	}
}
