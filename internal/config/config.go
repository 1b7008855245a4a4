package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	API      APIConfig      `mapstructure:"api"`
	Database DatabaseConfig `mapstructure:"database"`
	Browse   BrowseConfig   `mapstructure:"browse"`
	UI       UIConfig       `mapstructure:"ui"`
	Media    MediaConfig    `mapstructure:"media"`
	Keys     KeyConfig      `mapstructure:"keys"`
	Logging  LoggingConfig  `mapstructure:"logging"`
}

type APIConfig struct {
	BaseURL     string        `mapstructure:"base_url"`
	Key         string        `mapstructure:"key"`
	HTTPTimeout time.Duration `mapstructure:"http_timeout"`
	UserAgent   string        `mapstructure:"user_agent"`
}

type DatabaseConfig struct {
	Path        string        `mapstructure:"path"`
	Timeout     time.Duration `mapstructure:"timeout"`
	SearchIndex string        `mapstructure:"search_index"`
}

// BrowseConfig holds the paging and fan-out limits of the three news views.
type BrowseConfig struct {
	PageSize             int    `mapstructure:"page_size"`
	FrontPageTarget      int    `mapstructure:"front_page_target"`
	FrontPageConcurrency int    `mapstructure:"front_page_concurrency"`
	TopNewsCount         int    `mapstructure:"top_news_count"`
	SourcesFile          string `mapstructure:"sources_file"`
}

type UIConfig struct {
	Colors  UIColors      `mapstructure:"colors"`
	Article ArticleConfig `mapstructure:"article"`
}

type UIColors struct {
	Primary    string `mapstructure:"primary"`
	Secondary  string `mapstructure:"secondary"`
	Accent     string `mapstructure:"accent"`
	Background string `mapstructure:"background"`
	Surface    string `mapstructure:"surface"`
	Text       string `mapstructure:"text"`
	Muted      string `mapstructure:"muted"`
	Error      string `mapstructure:"error"`
	Success    string `mapstructure:"success"`
}

type ArticleConfig struct {
	MaxSummaryLength int `mapstructure:"max_summary_length"`
	WordWrapMaxWidth int `mapstructure:"word_wrap_max_width"`
	WordWrapMinWidth int `mapstructure:"word_wrap_min_width"`
}

type MediaConfig struct {
	Darwin        Openers `mapstructure:"darwin"`
	Linux         Openers `mapstructure:"linux"`
	Windows       Openers `mapstructure:"windows"`
	DefaultOpener string  `mapstructure:"default_opener"`
}

// Openers lists candidate programs, in preference order, per kind of link.
type Openers struct {
	Browser []string `mapstructure:"browser"`
	Image   []string `mapstructure:"image"`
}

type KeyConfig struct {
	Modifier string      `mapstructure:"modifier"`
	Bindings KeyBindings `mapstructure:"bindings"`
}

type KeyBindings struct {
	Quit       string `mapstructure:"quit"`
	Search     string `mapstructure:"search"`
	TopNews    string `mapstructure:"top_news"`
	FrontPages string `mapstructure:"front_pages"`
	Folders    string `mapstructure:"folders"`
	Save       string `mapstructure:"save"`
	LoadMore   string `mapstructure:"load_more"`
	Delete     string `mapstructure:"delete"`
	NewFolder  string `mapstructure:"new_folder"`
	Open       string `mapstructure:"open"`
	CopyURL    string `mapstructure:"copy_url"`
	Back       string `mapstructure:"back"`
	Help       string `mapstructure:"help"`
	SaveSearch string `mapstructure:"save_search"`
	Find       string `mapstructure:"find"`
}

type LoggingConfig struct {
	Level string `mapstructure:"level"`
	File  string `mapstructure:"file"`
}

func defaultConfig() *Config {
	homeDir, _ := os.UserHomeDir()
	dbPath := filepath.Join(homeDir, ".newsroom.db")
	searchIndexPath := filepath.Join(homeDir, ".newsroom", "index.bleve")

	return &Config{
		API: APIConfig{
			BaseURL:     "https://api.worldnewsapi.com",
			HTTPTimeout: 30 * time.Second,
			UserAgent:   "newsroom/1.0 (https://github.com/pders01/newsroom)",
		},
		Database: DatabaseConfig{
			Path:        dbPath,
			Timeout:     1 * time.Second,
			SearchIndex: searchIndexPath,
		},
		Browse: BrowseConfig{
			PageSize:             25,
			FrontPageTarget:      10,
			FrontPageConcurrency: 6,
			TopNewsCount:         20,
		},
		UI: UIConfig{
			Colors: UIColors{
				Primary:    "#FF6B6B",
				Secondary:  "#4ECDC4",
				Accent:     "#95E1D3",
				Background: "#1A1A2E",
				Surface:    "#16213E",
				Text:       "#EAEAEA",
				Muted:      "#94A3B8",
				Error:      "#F87171",
				Success:    "#4ADE80",
			},
			Article: ArticleConfig{
				MaxSummaryLength: 150,
				WordWrapMaxWidth: 120,
				WordWrapMinWidth: 40,
			},
		},
		Media: MediaConfig{
			Darwin: Openers{
				Browser: []string{"open"},
				Image:   []string{"open"},
			},
			Linux: Openers{
				Browser: []string{"xdg-open", "firefox", "chromium"},
				Image:   []string{"sxiv", "feh", "eog", "xdg-open"},
			},
			Windows: Openers{
				Browser: []string{"start"},
				Image:   []string{"start"},
			},
			DefaultOpener: getDefaultOpener(),
		},
		Keys: KeyConfig{
			Modifier: "ctrl",
			Bindings: KeyBindings{
				Quit:       "q",
				Search:     "s",
				TopNews:    "t",
				FrontPages: "p",
				Folders:    "f",
				Save:       "b",
				LoadMore:   "l",
				Delete:     "x",
				NewFolder:  "n",
				Open:       "o",
				CopyURL:    "y",
				Back:       "esc",
				Help:       "?",
				SaveSearch: "w",
				Find:       "g",
			},
		},
		Logging: LoggingConfig{
			Level: "off",
			File:  filepath.Join(homeDir, ".newsroom", "newsroom.log"),
		},
	}
}

func getDefaultOpener() string {
	switch runtime.GOOS {
	case "darwin":
		return "open"
	case "linux":
		return "xdg-open"
	case "windows":
		return "start"
	default:
		return "open"
	}
}

func Load(configPath string) (*Config, error) {
	v := viper.New()

	cfg := defaultConfig()
	v.SetDefault("api", cfg.API)
	v.SetDefault("database", cfg.Database)
	v.SetDefault("browse", cfg.Browse)
	v.SetDefault("ui", cfg.UI)
	v.SetDefault("media", cfg.Media)
	v.SetDefault("keys", cfg.Keys)
	v.SetDefault("logging", cfg.Logging)

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		homeDir, _ := os.UserHomeDir()
		configDir := filepath.Join(homeDir, ".config", "newsroom")

		v.SetConfigName("config")
		v.SetConfigType("toml")
		v.AddConfigPath(configDir)
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix("NEWSROOM")
	v.AutomaticEnv()
	// AutomaticEnv only sees keys viper already knows as leaves; the API key
	// lives inside a struct default, so bind it explicitly.
	_ = v.BindEnv("api.key", "NEWSROOM_API_KEY")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}
	if key := v.GetString("api.key"); key != "" {
		config.API.Key = key
	}

	applyBrowseDefaults(&config.Browse)
	expandPaths(&config)

	return &config, nil
}

// applyBrowseDefaults replaces non-positive limits with the defaults so a
// partially written config file cannot produce a zero-sized page or window.
func applyBrowseDefaults(b *BrowseConfig) {
	d := defaultConfig().Browse
	if b.PageSize <= 0 {
		b.PageSize = d.PageSize
	}
	if b.FrontPageTarget <= 0 {
		b.FrontPageTarget = d.FrontPageTarget
	}
	if b.FrontPageConcurrency <= 0 {
		b.FrontPageConcurrency = d.FrontPageConcurrency
	}
	if b.TopNewsCount <= 0 {
		b.TopNewsCount = d.TopNewsCount
	}
}

// expandPath expands ~ to home directory and converts to absolute path
func expandPath(path string) string {
	if path == "" {
		return path
	}

	if len(path) >= 2 && path[:2] == "~/" {
		home, _ := os.UserHomeDir()
		path = filepath.Join(home, path[2:])
	}

	if !filepath.IsAbs(path) {
		if abs, err := filepath.Abs(path); err == nil {
			path = abs
		}
	}

	return path
}

func expandPaths(cfg *Config) {
	cfg.Database.Path = expandPath(cfg.Database.Path)
	cfg.Database.SearchIndex = expandPath(cfg.Database.SearchIndex)
	cfg.Browse.SourcesFile = expandPath(cfg.Browse.SourcesFile)
	cfg.Logging.File = expandPath(cfg.Logging.File)
}

func Save(config *Config, path string) error {
	v := viper.New()

	// Durations as strings for TOML readability
	apiCfg := map[string]interface{}{
		"base_url":     config.API.BaseURL,
		"key":          config.API.Key,
		"http_timeout": config.API.HTTPTimeout.String(),
		"user_agent":   config.API.UserAgent,
	}

	dbCfg := map[string]interface{}{
		"path":         config.Database.Path,
		"timeout":      config.Database.Timeout.String(),
		"search_index": config.Database.SearchIndex,
	}

	v.Set("api", apiCfg)
	v.Set("database", dbCfg)
	v.Set("browse", config.Browse)
	v.Set("ui", config.UI)
	v.Set("media", config.Media)
	v.Set("keys", config.Keys)
	v.Set("logging", config.Logging)

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	return v.WriteConfigAs(path)
}

func GenerateDefaultConfig(path string) error {
	return Save(defaultConfig(), path)
}
