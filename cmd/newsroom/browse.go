package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/pders01/newsroom/internal/browse"
	"github.com/pders01/newsroom/internal/newsapi"
	"github.com/pders01/newsroom/internal/refdata"
)

var searchFlags struct {
	criteria browse.Criteria
	pages    int
}

var searchCmd = &cobra.Command{
	Use:   "search [text]",
	Short: "Search news articles",
	Long:  "Search news by text and filters. --from also accepts the presets " + strings.Join(browse.Presets, ", ") + ".",
	Args:  cobra.ArbitraryArgs,
	RunE:  runSearch,
}

var topFlags struct {
	country  string
	language string
}

var topCmd = &cobra.Command{
	Use:   "top",
	Short: "Show today's top story clusters",
	Args:  cobra.NoArgs,
	RunE:  runTop,
}

var frontFlags struct {
	country string
	source  string
	date    string
	more    int
}

var frontPagesCmd = &cobra.Command{
	Use:   "frontpages",
	Short: "List newspaper front pages for a country and date",
	Args:  cobra.NoArgs,
	RunE:  runFrontPages,
}

var countriesCmd = &cobra.Command{
	Use:   "countries",
	Short: "List countries with known newspapers",
	Args:  cobra.NoArgs,
	RunE:  runCountries,
}

var sourcesCmd = &cobra.Command{
	Use:   "sources <country>",
	Short: "List the newspapers of a country",
	Args:  cobra.ExactArgs(1),
	RunE:  runSources,
}

func init() {
	f := searchCmd.Flags()
	f.StringVarP(&searchFlags.criteria.Language, "language", "l", "", "ISO 639-1 language code")
	f.StringVarP(&searchFlags.criteria.Country, "country", "c", "", "ISO 3166 country code")
	f.StringVar(&searchFlags.criteria.Category, "category", "", "news category")
	f.StringVar(&searchFlags.criteria.EarliestDate, "from", "", "earliest publish date (YYYY-MM-DD or preset)")
	f.StringVar(&searchFlags.criteria.LatestDate, "to", "", "latest publish date (YYYY-MM-DD)")
	f.IntVar(&searchFlags.pages, "pages", 1, "number of pages to fetch")

	f = topCmd.Flags()
	f.StringVarP(&topFlags.country, "country", "c", "", "source country (defaults to the saved preference)")
	f.StringVarP(&topFlags.language, "language", "l", "", "language (defaults to the saved preference)")

	f = frontPagesCmd.Flags()
	f.StringVarP(&frontFlags.country, "country", "c", "", "country code (defaults to the saved preference)")
	f.StringVarP(&frontFlags.source, "source", "s", "", "a single newspaper identifier")
	f.StringVarP(&frontFlags.date, "date", "d", "", "YYYY-MM-DD, defaults to today")
	f.IntVar(&frontFlags.more, "more", 0, "number of additional batches to load")
}

func runSearch(cmd *cobra.Command, args []string) error {
	svc, err := openServices()
	if err != nil {
		return err
	}
	defer closeServices(svc)

	c := searchFlags.criteria
	c.Text = strings.Join(args, " ")
	if d, ok := browse.ResolvePreset(c.EarliestDate, time.Now()); ok {
		c.EarliestDate = d
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	page, err := svc.Browse.Search(ctx, c)
	if err != nil {
		return userError(err)
	}
	articles := page.Articles
	for i := 1; i < searchFlags.pages && page.HasMore(); i++ {
		if page, err = svc.Browse.MoreResults(ctx); err != nil {
			return userError(err)
		}
		articles = append(articles, page.Articles...)
	}

	out := cmd.OutOrStdout()
	if len(articles) == 0 {
		fmt.Fprintln(out, "No results")
		return nil
	}
	t := newTable(out, "ID", "DATE", "TITLE", "URL")
	for _, a := range articles {
		t.AddRow(fmt.Sprint(a.ID), dateOnly(a.PublishDate), clip(a.Title, 70), a.URL)
	}
	return t.Render()
}

func runTop(cmd *cobra.Command, args []string) error {
	svc, err := openServices()
	if err != nil {
		return err
	}
	defer closeServices(svc)

	country := orDefault(topFlags.country, svc.DefaultCountry())
	language := orDefault(topFlags.language, svc.DefaultLanguage())

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	clusters, err := browse.LoadTopNews(ctx, svc.Client, country, language, svc.Config.Browse.TopNewsCount)
	if err != nil {
		return userError(err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Top news • %s\n\n", refdata.CountryName(country))
	t := newTable(out, "ID", "TITLE", "MORE", "URL")
	for _, c := range clusters {
		p := c.Primary()
		more := ""
		if n := len(c.Others()); n > 0 {
			more = fmt.Sprintf("+%d", n)
		}
		t.AddRow(fmt.Sprint(p.ID), clip(p.Title, 70), more, p.URL)
	}
	return t.Render()
}

func runFrontPages(cmd *cobra.Command, args []string) error {
	svc, err := openServices()
	if err != nil {
		return err
	}
	defer closeServices(svc)

	country := orDefault(frontFlags.country, svc.DefaultCountry())
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	batch, err := svc.Browse.StartFrontPages(ctx, svc.Dataset(), country, frontFlags.date, frontFlags.source)
	if err != nil {
		return userError(err)
	}
	pages := batch.Pages
	fallback := batch.Fallback
	for i := 0; i < frontFlags.more && !batch.Exhausted; i++ {
		if batch, err = svc.Browse.MoreFrontPages(ctx); err != nil {
			return userError(err)
		}
		pages = append(pages, batch.Pages...)
	}

	out := cmd.OutOrStdout()
	if len(pages) == 0 {
		fmt.Fprintln(out, "No front pages found for this date")
		return nil
	}
	if fallback {
		fmt.Fprintln(out, "No newspaper had a page; showing the country front page")
	}
	t := newTable(out, "NEWSPAPER", "DATE", "IMAGE")
	for _, p := range pages {
		t.AddRow(p.SourceName, p.Date, p.URL)
	}
	if err := t.Render(); err != nil {
		return err
	}
	if fs, ok := svc.Browse.CurrentFrontPages(); ok && !fs.Exhausted() {
		fmt.Fprintf(out, "\n%d newspapers not yet tried; use --more to continue\n", fs.Remaining())
	}
	return nil
}

func runCountries(cmd *cobra.Command, args []string) error {
	svc, err := openServices()
	if err != nil {
		return err
	}
	defer closeServices(svc)

	ds := svc.Dataset()
	t := newTable(cmd.OutOrStdout(), "CODE", "COUNTRY", "NEWSPAPERS")
	for _, c := range ds.Countries {
		t.AddRow(c.Code, c.Name, fmt.Sprint(len(ds.SourcesFor(c.Code))))
	}
	return t.Render()
}

func runSources(cmd *cobra.Command, args []string) error {
	svc, err := openServices()
	if err != nil {
		return err
	}
	defer closeServices(svc)

	country := strings.ToLower(strings.TrimSpace(args[0]))
	ds := svc.Dataset()
	if !ds.HasCountry(country) {
		return fmt.Errorf("no newspapers listed for %s", refdata.CountryName(country))
	}
	t := newTable(cmd.OutOrStdout(), "IDENTIFIER", "NEWSPAPER", "LANGUAGE")
	for _, s := range ds.SortedSourcesFor(country) {
		t.AddRow(s.Identifier, s.DisplayName, refdata.LanguageName(s.LanguageCode))
	}
	return t.Render()
}

// userError replaces API and validation errors with their user-facing text.
func userError(err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s", newsapi.UserMessage(err))
}

func orDefault(v, def string) string {
	if strings.TrimSpace(v) != "" {
		return v
	}
	return def
}

func dateOnly(s string) string {
	if len(s) >= 10 {
		return s[:10]
	}
	return s
}
