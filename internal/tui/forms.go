package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/pders01/newsroom/internal/browse"
	"github.com/pders01/newsroom/internal/refdata"
)

// form is a vertical stack of labelled inputs with one focused at a time.
type form struct {
	labels []string
	inputs []textinput.Model
	focus  int
}

func newForm(fields ...[2]string) *form {
	f := &form{}
	for _, fd := range fields {
		ti := textinput.New()
		ti.Placeholder = fd[1]
		ti.CharLimit = 256
		f.labels = append(f.labels, fd[0])
		f.inputs = append(f.inputs, ti)
	}
	f.focusField(0)
	return f
}

func (f *form) focusField(i int) {
	if len(f.inputs) == 0 {
		return
	}
	f.inputs[f.focus].Blur()
	f.focus = (i + len(f.inputs)) % len(f.inputs)
	f.inputs[f.focus].Focus()
}

func (f *form) next() { f.focusField(f.focus + 1) }
func (f *form) prev() { f.focusField(f.focus - 1) }

func (f *form) value(i int) string {
	return strings.TrimSpace(f.inputs[i].Value())
}

func (f *form) set(i int, v string) {
	f.inputs[i].SetValue(v)
	f.inputs[i].CursorEnd()
}

func (f *form) update(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	f.inputs[f.focus], cmd = f.inputs[f.focus].Update(msg)
	return cmd
}

func (f *form) setWidth(w int) {
	for i := range f.inputs {
		f.inputs[i].Width = w
	}
}

func (f *form) view(hints map[int]string) string {
	labelWidth := 0
	for _, l := range f.labels {
		labelWidth = max(labelWidth, len(l))
	}
	rows := make([]string, 0, len(f.inputs)*2)
	for i, in := range f.inputs {
		label := fmt.Sprintf("%-*s", labelWidth, f.labels[i])
		style := lipgloss.NewStyle().Foreground(MutedColor)
		if i == f.focus {
			style = lipgloss.NewStyle().Foreground(AccentColor).Bold(true)
		}
		rows = append(rows, style.Render(label)+"  "+in.View())
		if h := hints[i]; h != "" {
			rows = append(rows, strings.Repeat(" ", labelWidth+2)+renderMuted(h))
		}
	}
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

// Search form fields.
const (
	fieldText = iota
	fieldLanguage
	fieldCountry
	fieldCategory
	fieldEarliest
	fieldLatest
)

func newSearchForm() *form {
	return newForm(
		[2]string{"Text", "keywords"},
		[2]string{"Language", "e.g. en"},
		[2]string{"Country", "e.g. us"},
		[2]string{"Category", "e.g. politics, sports, technology"},
		[2]string{"From", "YYYY-MM-DD or " + strings.Join(browse.Presets, "/")},
		[2]string{"Until", "YYYY-MM-DD"},
	)
}

// searchCriteria reads the search form, resolving an earliest-date preset.
func (a *App) searchCriteria() browse.Criteria {
	f := a.searchForm
	earliest := f.value(fieldEarliest)
	if d, ok := browse.ResolvePreset(earliest, a.now()); ok {
		earliest = d
	}
	return browse.Criteria{
		Text:         f.value(fieldText),
		Language:     strings.ToLower(f.value(fieldLanguage)),
		Country:      strings.ToLower(f.value(fieldCountry)),
		Category:     f.value(fieldCategory),
		EarliestDate: earliest,
		LatestDate:   f.value(fieldLatest),
	}
}

func (a *App) fillSearchForm(c browse.Criteria) {
	f := a.searchForm
	f.set(fieldText, c.Text)
	f.set(fieldLanguage, c.Language)
	f.set(fieldCountry, c.Country)
	f.set(fieldCategory, c.Category)
	f.set(fieldEarliest, c.EarliestDate)
	f.set(fieldLatest, c.LatestDate)
}

func (a *App) searchFormHints() map[int]string {
	hints := map[int]string{}
	if l := a.searchForm.value(fieldLanguage); l != "" {
		hints[fieldLanguage] = refdata.LanguageName(strings.ToLower(l))
	}
	if c := a.searchForm.value(fieldCountry); c != "" {
		hints[fieldCountry] = refdata.CountryName(strings.ToLower(c))
	}
	return hints
}

// Front-page form fields.
const (
	fieldFPCountry = iota
	fieldFPSource
	fieldFPDate
)

func newFrontPageForm() *form {
	return newForm(
		[2]string{"Country", "e.g. de"},
		[2]string{"Newspaper", "identifier, empty for all"},
		[2]string{"Date", "YYYY-MM-DD, empty for today"},
	)
}

// syncFrontPageFilters recomputes the dependent selector state after the
// country or source field changed. An identifier that does not belong to
// the country is cleared from the form.
func (a *App) syncFrontPageFilters() {
	f := a.frontForm
	st := browse.SyncFilters(a.dataset, f.value(fieldFPCountry), f.value(fieldFPSource))
	if f.focus != fieldFPSource && st.Source != f.value(fieldFPSource) {
		f.set(fieldFPSource, st.Source)
	}
	a.filters = st
}

func (a *App) frontPageHints() map[int]string {
	hints := map[int]string{}
	st := a.filters
	if st.Country == "" {
		hints[fieldFPCountry] = fmt.Sprintf("%d countries available", len(a.dataset.Countries))
		hints[fieldFPSource] = "select a country first"
		return hints
	}
	if !a.dataset.HasCountry(st.Country) {
		hints[fieldFPCountry] = refdata.CountryName(st.Country) + " • no newspapers listed"
	} else {
		hints[fieldFPCountry] = refdata.CountryName(st.Country)
	}

	if st.Source != "" {
		if src, ok := a.dataset.Lookup(st.Country, st.Source); ok {
			hints[fieldFPSource] = src.DisplayName
		}
		return hints
	}
	names := make([]string, 0, 4)
	for i, s := range st.Sources {
		if i == 4 {
			names = append(names, fmt.Sprintf("+%d more", len(st.Sources)-4))
			break
		}
		names = append(names, s.Identifier)
	}
	if len(names) > 0 {
		hints[fieldFPSource] = strings.Join(names, ", ")
	}
	return hints
}
