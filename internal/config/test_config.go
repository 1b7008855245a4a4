package config

import "time"

// TestConfig returns a config suitable for testing
func TestConfig() *Config {
	return &Config{
		API: APIConfig{
			BaseURL:     "http://127.0.0.1:0",
			Key:         "",
			HTTPTimeout: 5 * time.Second,
			UserAgent:   "newsroom-test/1.0",
		},
		Database: DatabaseConfig{
			Path:    ":memory:",
			Timeout: 1 * time.Second,
		},
		Browse:  defaultConfig().Browse,
		UI:      defaultConfig().UI,
		Media:   defaultConfig().Media,
		Keys:    defaultConfig().Keys,
		Logging: LoggingConfig{Level: "off"},
	}
}
