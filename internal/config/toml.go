// Package config resolves settings from the TOML config file, a .env file and
// the process environment.
package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// FileConfig represents the TOML configuration file.
type FileConfig struct {
	Practice  PracticeConfig  `toml:"practice"`
	AntiCheat AntiCheatConfig `toml:"anticheat"`
	Server    ServerConfig    `toml:"server"`
	Email     EmailConfig     `toml:"email"`
}

// PracticeConfig maps practice-related settings.
type PracticeConfig struct {
	Name     *string  `toml:"name"`
	Duration *int     `toml:"duration"`
	Source   *string  `toml:"source"`
	Lang     *string  `toml:"lang"`
	Words    *int     `toml:"words"`
	CapsPct  *float64 `toml:"caps"`
	PunctPct *float64 `toml:"punct"`
	PunctSet *string  `toml:"punct-set"`
}

// AntiCheatConfig maps validator thresholds.
type AntiCheatConfig struct {
	MinAccuracy      *float64 `toml:"min-accuracy"`
	MaxWPM           *float64 `toml:"max-wpm"`
	CharToleranceAbs *float64 `toml:"char-tolerance-abs"`
	CharToleranceRel *float64 `toml:"char-tolerance-rel"`
	RawNetGap        *float64 `toml:"raw-net-gap"`
}

// ServerConfig maps HTTP API settings.
type ServerConfig struct {
	Addr           *string  `toml:"addr"`
	DatabaseDriver *string  `toml:"database-driver"`
	DatabaseURL    *string  `toml:"database-url"`
	JWTSecret      *string  `toml:"jwt-secret"`
	AppURL         *string  `toml:"app-url"`
	AdminEmails    []string `toml:"admin-emails"`
	CORSOrigins    []string `toml:"cors-origins"`
}

// EmailConfig maps transactional email settings.
type EmailConfig struct {
	ResendAPIKey *string `toml:"resend-api-key"`
	From         *string `toml:"from"`
}

// LoadConfig reads a TOML config from the given path. Missing file is not an error.
func LoadConfig(path string) (FileConfig, error) {
	if path == "" {
		return FileConfig{}, fmt.Errorf("config path is empty")
	}
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return FileConfig{}, nil
		}
		return FileConfig{}, fmt.Errorf("failed to stat config: %w", err)
	}
	var cfg FileConfig
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return FileConfig{}, fmt.Errorf("failed to decode config: %w", err)
	}
	return cfg, nil
}

// Template is written by `typeforge config` when no file exists yet.
const Template = `# typeforge configuration

[practice]
# name = "player"
# duration = 60        # 15, 30, 60 or 120
# source = "words"     # words or quote
# lang = "en"
# words = 45
# caps = 0.0           # probability in [0,1]
# punct = 0.0
# punct-set = ".,;:!?"

[anticheat]
# min-accuracy = 70
# max-wpm = 260
# char-tolerance-abs = 40
# char-tolerance-rel = 0.4
# raw-net-gap = 35

[server]
# addr = ":8080"
# database-driver = "sqlite"   # sqlite, libsql or postgres
# database-url = ""
# jwt-secret = ""
# app-url = "http://localhost:3000"
# admin-emails = ["admin@example.com"]
# cors-origins = ["http://localhost:3000"]

[email]
# resend-api-key = ""
# from = "Typeforge <login@example.com>"
`
