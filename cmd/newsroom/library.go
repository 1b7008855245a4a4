package main

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pders01/newsroom/internal/browse"
	"github.com/pders01/newsroom/internal/library"
	"github.com/pders01/newsroom/internal/newsapi"
	"github.com/pders01/newsroom/internal/storage"
	"github.com/pders01/newsroom/internal/validation"
)

var foldersCmd = &cobra.Command{
	Use:   "folders",
	Short: "Manage folders of saved articles",
}

var foldersListCmd = &cobra.Command{
	Use:   "list",
	Short: "List folders",
	Args:  cobra.NoArgs,
	RunE: withLibrary(func(cmd *cobra.Command, lib *library.Library, args []string) error {
		t := newTable(cmd.OutOrStdout(), "ID", "NAME", "ARTICLES", "CREATED")
		for _, f := range lib.Folders() {
			arts, _ := lib.FolderArticles(f.ID)
			t.AddRow(f.ID, f.Name, strconv.Itoa(len(arts)), f.Created.Format("2006-01-02"))
		}
		return t.Render()
	}),
}

var foldersCreateCmd = &cobra.Command{
	Use:   "create <name>",
	Short: "Create a folder",
	Args:  cobra.MinimumNArgs(1),
	RunE: withLibrary(func(cmd *cobra.Command, lib *library.Library, args []string) error {
		f, err := lib.CreateFolder(strings.Join(args, " "))
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Created folder %q (%s)\n", f.Name, f.ID)
		return nil
	}),
}

var foldersDeleteCmd = &cobra.Command{
	Use:   "delete <id|name>",
	Short: "Delete a folder and its saved articles",
	Args:  cobra.ExactArgs(1),
	RunE: withLibrary(func(cmd *cobra.Command, lib *library.Library, args []string) error {
		f, err := findFolder(lib, args[0])
		if err != nil {
			return err
		}
		arts, _ := lib.FolderArticles(f.ID)
		if !confirm(cmd, fmt.Sprintf("Delete folder %q and its %d saved article(s)?", f.Name, len(arts))) {
			fmt.Fprintln(cmd.OutOrStdout(), "Cancelled")
			return nil
		}
		if err := lib.DeleteFolder(f.ID); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Deleted folder %q\n", f.Name)
		return nil
	}),
}

var foldersShowCmd = &cobra.Command{
	Use:   "show <id|name>",
	Short: "List the articles saved in a folder",
	Args:  cobra.ExactArgs(1),
	RunE: withLibrary(func(cmd *cobra.Command, lib *library.Library, args []string) error {
		f, err := findFolder(lib, args[0])
		if err != nil {
			return err
		}
		arts, err := lib.FolderArticles(f.ID)
		if err != nil {
			return err
		}
		t := newTable(cmd.OutOrStdout(), "ID", "SAVED", "TITLE", "URL")
		for _, a := range arts {
			t.AddRow(strconv.FormatInt(a.ID, 10), a.SavedAt.Format("2006-01-02"), clip(a.Title, 60), a.URL)
		}
		return t.Render()
	}),
}

var savedCmd = &cobra.Command{
	Use:   "saved",
	Short: "Manage saved articles",
}

var savedAddFlags struct {
	folder  string
	create  bool
	article newsapi.Article
}

var savedAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Save an article to a folder",
	Args:  cobra.NoArgs,
	RunE: withLibrary(func(cmd *cobra.Command, lib *library.Library, args []string) error {
		art := savedAddFlags.article
		if art.ID == 0 || strings.TrimSpace(art.URL) == "" {
			return errors.New("--id and --url are required")
		}
		link, err := validation.NewPermissiveLinkValidator().Validate(art.URL)
		if err != nil {
			return err
		}
		art.URL = link

		out := cmd.OutOrStdout()
		f, err := findFolder(lib, savedAddFlags.folder)
		if err != nil {
			if !savedAddFlags.create || !errors.Is(err, library.ErrFolderNotFound) {
				return err
			}
			nf, err := lib.CreateFolderAndSave(savedAddFlags.folder, art)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "Saved to new folder %q\n", nf.Name)
			return nil
		}

		added, err := lib.SaveArticleToFolder(art, f.ID)
		if err != nil {
			return err
		}
		if !added {
			fmt.Fprintf(out, "Already in %q\n", f.Name)
			return nil
		}
		fmt.Fprintf(out, "Saved to %q\n", f.Name)
		return nil
	}),
}

var savedRemoveFolder string

var savedRemoveCmd = &cobra.Command{
	Use:   "remove <article-id>",
	Short: "Remove a saved article from a folder",
	Args:  cobra.ExactArgs(1),
	RunE: withLibrary(func(cmd *cobra.Command, lib *library.Library, args []string) error {
		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid article id %q", args[0])
		}
		f, err := findFolder(lib, savedRemoveFolder)
		if err != nil {
			return err
		}
		if err := lib.RemoveArticle(id, f.ID); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Removed %d from %q\n", id, f.Name)
		return nil
	}),
}

var savedFindLimit int

var savedFindCmd = &cobra.Command{
	Use:   "find <query>",
	Short: "Full-text search over saved articles",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := openServices()
		if err != nil {
			return err
		}
		defer closeServices(svc)

		results, err := svc.Index.Search(strings.Join(args, " "), savedFindLimit)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if len(results) == 0 {
			fmt.Fprintln(out, "No matches")
			return nil
		}
		t := newTable(out, "ID", "FOLDER", "TITLE", "URL")
		for _, r := range results {
			folder := r.Article.FolderID
			if f, err := svc.Library.Folder(folder); err == nil {
				folder = f.Name
			}
			t.AddRow(strconv.FormatInt(r.Article.ID, 10), folder, clip(r.Article.Title, 60), r.Article.URL)
		}
		return t.Render()
	},
}

var searchesCmd = &cobra.Command{
	Use:   "searches",
	Short: "Manage saved searches",
}

var searchesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List saved searches",
	Args:  cobra.NoArgs,
	RunE: withLibrary(func(cmd *cobra.Command, lib *library.Library, args []string) error {
		t := newTable(cmd.OutOrStdout(), "ID", "NAME", "TEXT", "LANG", "COUNTRY", "CATEGORY", "FROM", "TO")
		for _, s := range lib.SavedSearches() {
			t.AddRow(s.ID, s.Name, s.Text, s.Language, s.Country, s.Category, s.EarliestDate, s.LatestDate)
		}
		return t.Render()
	}),
}

var searchesSaveFlags struct {
	name     string
	criteria browse.Criteria
}

var searchesSaveCmd = &cobra.Command{
	Use:   "save [text]",
	Short: "Save search criteria under a name",
	Args:  cobra.ArbitraryArgs,
	RunE: withLibrary(func(cmd *cobra.Command, lib *library.Library, args []string) error {
		c := searchesSaveFlags.criteria
		c.Text = strings.Join(args, " ")
		if err := c.Validate(); err != nil {
			return userError(err)
		}
		name := searchesSaveFlags.name
		if strings.TrimSpace(name) == "" {
			name = library.SuggestSearchName(c)
		}
		s, err := lib.SaveSearch(c, name)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Saved search %q (%s)\n", s.Name, s.ID)
		return nil
	}),
}

var searchesRunCmd = &cobra.Command{
	Use:   "run <id|name>",
	Short: "Run a saved search",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := openServices()
		if err != nil {
			return err
		}
		s, err := findSavedSearch(svc.Library, args[0])
		closeServices(svc)
		if err != nil {
			return err
		}
		searchFlags.criteria = library.CriteriaOf(s)
		var textArgs []string
		if s.Text != "" {
			textArgs = []string{s.Text}
		}
		return runSearch(cmd, textArgs)
	},
}

var searchesDeleteCmd = &cobra.Command{
	Use:   "delete <id|name>",
	Short: "Delete a saved search",
	Args:  cobra.ExactArgs(1),
	RunE: withLibrary(func(cmd *cobra.Command, lib *library.Library, args []string) error {
		s, err := findSavedSearch(lib, args[0])
		if err != nil {
			return err
		}
		if !confirm(cmd, fmt.Sprintf("Delete saved search %q?", s.Name)) {
			fmt.Fprintln(cmd.OutOrStdout(), "Cancelled")
			return nil
		}
		if err := lib.DeleteSavedSearch(s.ID); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Deleted saved search %q\n", s.Name)
		return nil
	}),
}

var libraryCmd = &cobra.Command{
	Use:   "library",
	Short: "Export or import the whole library as JSON",
}

var libraryExportCmd = &cobra.Command{
	Use:   "export <file.json>",
	Short: "Write the library and settings to a JSON file",
	Args:  cobra.ExactArgs(1),
	RunE: withLibrary(func(cmd *cobra.Command, lib *library.Library, args []string) error {
		path, err := validation.NewFilePathValidator().ValidateAndSanitize(args[0])
		if err != nil {
			return err
		}
		if err := storage.ExportFile(path, lib.Snapshot()); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Exported library to %s\n", path)
		return nil
	}),
}

var libraryImportCmd = &cobra.Command{
	Use:   "import <file.json>",
	Short: "Replace the library and settings with a JSON file",
	Args:  cobra.ExactArgs(1),
	RunE: withLibrary(func(cmd *cobra.Command, lib *library.Library, args []string) error {
		path, err := validation.NewFilePathValidator().ValidateFile(args[0])
		if err != nil {
			return err
		}
		doc, err := storage.ImportFile(path)
		if err != nil {
			return err
		}
		q := fmt.Sprintf("Replace the current library (%d folders, %d saved searches)?",
			len(lib.Folders()), len(lib.SavedSearches()))
		if !confirm(cmd, q) {
			fmt.Fprintln(cmd.OutOrStdout(), "Cancelled")
			return nil
		}
		if err := lib.Replace(doc); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Imported %d folders and %d saved searches\n", len(doc.Folders), len(doc.SavedSearches))
		return nil
	}),
}

func init() {
	foldersCmd.AddCommand(foldersListCmd, foldersCreateCmd, foldersDeleteCmd, foldersShowCmd)

	f := savedAddCmd.Flags()
	f.StringVarP(&savedAddFlags.folder, "folder", "f", "", "folder id or name")
	f.BoolVar(&savedAddFlags.create, "create", false, "create the folder when it does not exist")
	f.Int64Var(&savedAddFlags.article.ID, "id", 0, "article id")
	f.StringVar(&savedAddFlags.article.Title, "title", "", "article title")
	f.StringVar(&savedAddFlags.article.URL, "url", "", "article link")
	f.StringVar(&savedAddFlags.article.Summary, "summary", "", "article summary")
	f.StringVar(&savedAddFlags.article.Image, "image", "", "article image link")
	_ = savedAddCmd.MarkFlagRequired("folder")

	savedRemoveCmd.Flags().StringVarP(&savedRemoveFolder, "folder", "f", "", "folder id or name")
	_ = savedRemoveCmd.MarkFlagRequired("folder")
	savedFindCmd.Flags().IntVarP(&savedFindLimit, "limit", "n", 20, "maximum number of matches")
	savedCmd.AddCommand(savedAddCmd, savedRemoveCmd, savedFindCmd)

	f = searchesSaveCmd.Flags()
	f.StringVar(&searchesSaveFlags.name, "name", "", "name for the search (suggested from the criteria when empty)")
	f.StringVarP(&searchesSaveFlags.criteria.Language, "language", "l", "", "ISO 639-1 language code")
	f.StringVarP(&searchesSaveFlags.criteria.Country, "country", "c", "", "ISO 3166 country code")
	f.StringVar(&searchesSaveFlags.criteria.Category, "category", "", "news category")
	f.StringVar(&searchesSaveFlags.criteria.EarliestDate, "from", "", "earliest publish date (YYYY-MM-DD)")
	f.StringVar(&searchesSaveFlags.criteria.LatestDate, "to", "", "latest publish date (YYYY-MM-DD)")
	searchesRunCmd.Flags().IntVar(&searchFlags.pages, "pages", 1, "number of pages to fetch")
	searchesCmd.AddCommand(searchesListCmd, searchesSaveCmd, searchesRunCmd, searchesDeleteCmd)

	libraryCmd.AddCommand(libraryExportCmd, libraryImportCmd)
}

// withLibrary opens the services around a command that only needs the
// library.
func withLibrary(run func(cmd *cobra.Command, lib *library.Library, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		svc, err := openServices()
		if err != nil {
			return err
		}
		defer closeServices(svc)
		return run(cmd, svc.Library, args)
	}
}

// findFolder resolves a folder by id, then by case-insensitive name. Names
// may repeat, in which case the id is required.
func findFolder(lib *library.Library, ref string) (storage.Folder, error) {
	ref = strings.TrimSpace(ref)
	if f, err := lib.Folder(ref); err == nil {
		return f, nil
	}
	var matches []storage.Folder
	for _, f := range lib.Folders() {
		if strings.EqualFold(f.Name, ref) {
			matches = append(matches, f)
		}
	}
	switch len(matches) {
	case 0:
		return storage.Folder{}, fmt.Errorf("%q: %w", ref, library.ErrFolderNotFound)
	case 1:
		return matches[0], nil
	default:
		ids := make([]string, len(matches))
		for i, m := range matches {
			ids[i] = m.ID
		}
		return storage.Folder{}, fmt.Errorf("%d folders are named %q, use an id: %s", len(matches), ref, strings.Join(ids, ", "))
	}
}

func findSavedSearch(lib *library.Library, ref string) (storage.SavedSearch, error) {
	ref = strings.TrimSpace(ref)
	if s, err := lib.SavedSearch(ref); err == nil {
		return s, nil
	}
	for _, s := range lib.SavedSearches() {
		if strings.EqualFold(s.Name, ref) {
			return s, nil
		}
	}
	return storage.SavedSearch{}, fmt.Errorf("%q: %w", ref, library.ErrSearchNotFound)
}
