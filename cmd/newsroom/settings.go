package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pders01/newsroom/internal/library"
	"github.com/pders01/newsroom/internal/refdata"
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Show or change the API key and default filters",
}

var settingsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the stored settings",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := openServices()
		if err != nil {
			return err
		}
		defer closeServices(svc)
		lib := svc.Library

		key := "not set"
		if k := lib.APIKey(); k != "" {
			key = maskKey(k)
		}
		p := lib.Preferences()
		t := newTable(cmd.OutOrStdout(), "SETTING", "VALUE")
		t.AddRow("api key", key)
		t.AddRow("default country", fmt.Sprintf("%s (%s)", p.DefaultCountry, refdata.CountryName(p.DefaultCountry)))
		t.AddRow("default language", fmt.Sprintf("%s (%s)", p.DefaultLanguage, refdata.LanguageName(p.DefaultLanguage)))
		t.AddRow("folders", fmt.Sprint(len(lib.Folders())))
		t.AddRow("saved articles", fmt.Sprint(lib.SavedArticleCount()))
		t.AddRow("saved searches", fmt.Sprint(len(lib.SavedSearches())))
		ts, err := svc.Store.LastSaved()
		if err != nil {
			return err
		}
		saved := "never"
		if !ts.IsZero() {
			saved = ts.Local().Format("2006-01-02 15:04")
		}
		t.AddRow("last saved", saved)
		return t.Render()
	},
}

var settingsSetKeyCmd = &cobra.Command{
	Use:   "set-key <key>",
	Short: "Store the World News API key",
	Args:  cobra.ExactArgs(1),
	RunE: withLibrary(func(cmd *cobra.Command, lib *library.Library, args []string) error {
		if err := lib.SetAPIKey(strings.TrimSpace(args[0])); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "API key saved")
		return nil
	}),
}

var defaultsFlags struct {
	country  string
	language string
}

var settingsSetDefaultsCmd = &cobra.Command{
	Use:   "set-defaults",
	Short: "Change the default country and language",
	Args:  cobra.NoArgs,
	RunE: withLibrary(func(cmd *cobra.Command, lib *library.Library, args []string) error {
		if !cmd.Flags().Changed("country") && !cmd.Flags().Changed("language") {
			return fmt.Errorf("nothing to change: pass --country or --language")
		}
		p := lib.Preferences()
		if cmd.Flags().Changed("country") {
			p.DefaultCountry = strings.ToLower(strings.TrimSpace(defaultsFlags.country))
		}
		if cmd.Flags().Changed("language") {
			p.DefaultLanguage = strings.ToLower(strings.TrimSpace(defaultsFlags.language))
		}
		if err := lib.SetPreferences(p); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Defaults: %s, %s\n", refdata.CountryName(p.DefaultCountry), refdata.LanguageName(p.DefaultLanguage))
		return nil
	}),
}

func init() {
	f := settingsSetDefaultsCmd.Flags()
	f.StringVarP(&defaultsFlags.country, "country", "c", "", "ISO 3166 country code")
	f.StringVarP(&defaultsFlags.language, "language", "l", "", "ISO 639-1 language code")
	settingsCmd.AddCommand(settingsShowCmd, settingsSetKeyCmd, settingsSetDefaultsCmd)
}

func maskKey(k string) string {
	if len(k) <= 6 {
		return strings.Repeat("*", len(k))
	}
	return k[:3] + strings.Repeat("*", len(k)-6) + k[len(k)-3:]
}
