package config

import (
	"errors"
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	"github.com/verte-zerg/typeforge/internal/anticheat"
	"github.com/verte-zerg/typeforge/internal/model"
)

// ErrInvalid marks settings that fail validation or cannot be parsed.
var ErrInvalid = errors.New("invalid configuration")

// Defaults applied when neither file nor environment sets a value.
const (
	DefaultAddr     = ":8080"
	DefaultDriver   = "sqlite"
	DefaultAppURL   = "http://localhost:3000"
	DefaultLang     = "en"
	DefaultWords    = 45
	DefaultPunctSet = ".,;:!?"
)

// Settings is the resolved configuration.
type Settings struct {
	Practice Practice
	Policy   anticheat.Policy
	Server   Server
	Email    Email
}

// Practice holds resolved practice settings.
type Practice struct {
	Name            string
	DurationSeconds int
	Source          model.TextSource
	Lang            string
	Words           int
	CapsPct         float64
	PunctPct        float64
	PunctSet        string
}

// Server holds resolved HTTP API settings.
type Server struct {
	Addr           string
	DatabaseDriver string
	DatabaseURL    string
	JWTSecret      string
	AppURL         string
	AdminEmails    []string
	CORSOrigins    []string
}

// IsAdmin reports whether email is listed in AdminEmails.
func (s Server) IsAdmin(email string) bool {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return false
	}
	for _, admin := range s.AdminEmails {
		if admin == email {
			return true
		}
	}
	return false
}

// Email holds resolved transactional email settings.
type Email struct {
	ResendAPIKey string
	From         string
}

// Configured reports whether sending email is possible.
func (e Email) Configured() bool {
	return e.ResendAPIKey != "" && e.From != ""
}

// LoadEnv loads a .env file into the process environment. Variables already
// set win. A missing file is not an error.
func LoadEnv(path string) error {
	if path == "" {
		path = ".env"
	}
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	return nil
}

// Resolve merges file values, environment values and defaults, then
// validates the result. getenv is usually os.Getenv.
func Resolve(file FileConfig, getenv func(string) string) (Settings, error) {
	if getenv == nil {
		getenv = os.Getenv
	}
	env := envReader{get: getenv}

	s := Settings{
		Practice: Practice{
			Name:            stringOr(file.Practice.Name, defaultName()),
			DurationSeconds: intOr(file.Practice.Duration, model.DefaultDurationSeconds),
			Source:          model.TextSource(stringOr(file.Practice.Source, string(model.TextSourceWords))),
			Lang:            stringOr(file.Practice.Lang, DefaultLang),
			Words:           intOr(file.Practice.Words, DefaultWords),
			CapsPct:         floatOr(file.Practice.CapsPct, 0),
			PunctPct:        floatOr(file.Practice.PunctPct, 0),
			PunctSet:        stringOr(file.Practice.PunctSet, DefaultPunctSet),
		},
		Policy: anticheat.DefaultPolicy(),
		Server: Server{
			Addr:           stringOr(file.Server.Addr, DefaultAddr),
			DatabaseDriver: stringOr(file.Server.DatabaseDriver, DefaultDriver),
			DatabaseURL:    stringOr(file.Server.DatabaseURL, ""),
			JWTSecret:      stringOr(file.Server.JWTSecret, ""),
			AppURL:         stringOr(file.Server.AppURL, DefaultAppURL),
			AdminEmails:    file.Server.AdminEmails,
			CORSOrigins:    file.Server.CORSOrigins,
		},
		Email: Email{
			ResendAPIKey: stringOr(file.Email.ResendAPIKey, ""),
			From:         stringOr(file.Email.From, ""),
		},
	}

	p := &s.Policy
	p.MinAccuracy = floatOr(file.AntiCheat.MinAccuracy, p.MinAccuracy)
	p.MaxWPM = floatOr(file.AntiCheat.MaxWPM, p.MaxWPM)
	p.CharToleranceAbs = floatOr(file.AntiCheat.CharToleranceAbs, p.CharToleranceAbs)
	p.CharToleranceRel = floatOr(file.AntiCheat.CharToleranceRel, p.CharToleranceRel)
	p.RawNetGap = floatOr(file.AntiCheat.RawNetGap, p.RawNetGap)

	env.float("MIN_ALLOWED_ACCURACY", &p.MinAccuracy)
	env.float("MAX_ALLOWED_WPM", &p.MaxWPM)
	env.float("ANTICHEAT_CHAR_TOLERANCE_ABS", &p.CharToleranceAbs)
	env.float("ANTICHEAT_CHAR_TOLERANCE_REL", &p.CharToleranceRel)
	env.float("ANTICHEAT_RAW_NET_GAP", &p.RawNetGap)

	if port := env.value("PORT"); port != "" {
		s.Server.Addr = ":" + port
	}
	env.str("ADDR", &s.Server.Addr)
	env.str("DATABASE_DRIVER", &s.Server.DatabaseDriver)
	env.str("DATABASE_URL", &s.Server.DatabaseURL)
	env.str("JWT_SECRET", &s.Server.JWTSecret)
	env.str("APP_URL", &s.Server.AppURL)
	env.list("ADMIN_EMAILS", &s.Server.AdminEmails)
	env.list("CORS_ORIGINS", &s.Server.CORSOrigins)
	env.str("RESEND_API_KEY", &s.Email.ResendAPIKey)
	env.str("EMAIL_FROM", &s.Email.From)

	if env.err != nil {
		return Settings{}, env.err
	}

	s.Server.AdminEmails = normalizeEmails(s.Server.AdminEmails)
	s.Server.AppURL = strings.TrimRight(s.Server.AppURL, "/")
	if s.Server.DatabaseURL == "" && s.Server.DatabaseDriver == DefaultDriver {
		s.Server.DatabaseURL = DefaultDBPath()
	}

	if err := s.Validate(); err != nil {
		return Settings{}, err
	}
	return s, nil
}

// Validate checks ranges and enumerations.
func (s Settings) Validate() error {
	pr := s.Practice
	if !model.ValidDuration(pr.DurationSeconds) {
		return invalid("practice duration must be one of %v, got %d", model.Durations, pr.DurationSeconds)
	}
	if !pr.Source.Valid() {
		return invalid("practice source must be words or quote, got %q", pr.Source)
	}
	if pr.Words <= 0 {
		return invalid("practice words must be positive, got %d", pr.Words)
	}
	if pr.CapsPct < 0 || pr.CapsPct > 1 {
		return invalid("practice caps must be in [0,1], got %v", pr.CapsPct)
	}
	if pr.PunctPct < 0 || pr.PunctPct > 1 {
		return invalid("practice punct must be in [0,1], got %v", pr.PunctPct)
	}

	p := s.Policy
	for _, v := range []float64{pr.CapsPct, pr.PunctPct, p.MinAccuracy, p.MaxWPM, p.CharToleranceAbs, p.CharToleranceRel, p.RawNetGap} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return invalid("numeric settings must be finite, got %v", v)
		}
	}
	if p.MinAccuracy < 0 || p.MinAccuracy > 100 {
		return invalid("min accuracy must be in [0,100], got %v", p.MinAccuracy)
	}
	if p.MaxWPM <= 0 {
		return invalid("max wpm must be positive, got %v", p.MaxWPM)
	}
	if p.CharToleranceAbs < 0 || p.CharToleranceRel < 0 || p.RawNetGap < 0 {
		return invalid("anti-cheat tolerances must not be negative")
	}

	switch s.Server.DatabaseDriver {
	case "sqlite", "libsql", "postgres":
	default:
		return invalid("unknown database driver %q", s.Server.DatabaseDriver)
	}
	return nil
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalid, fmt.Sprintf(format, args...))
}

type envReader struct {
	get func(string) string
	err error
}

func (e *envReader) value(key string) string {
	return strings.TrimSpace(e.get(key))
}

func (e *envReader) str(key string, dst *string) {
	if v := e.value(key); v != "" {
		*dst = v
	}
}

func (e *envReader) float(key string, dst *float64) {
	v := e.value(key)
	if v == "" || e.err != nil {
		return
	}
	parsed, err := strconv.ParseFloat(v, 64)
	if err != nil || math.IsNaN(parsed) || math.IsInf(parsed, 0) {
		e.err = invalid("%s=%q is not a finite number", key, v)
		return
	}
	*dst = parsed
}

func (e *envReader) list(key string, dst *[]string) {
	v := e.value(key)
	if v == "" {
		return
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	*dst = out
}

func normalizeEmails(in []string) []string {
	out := make([]string, 0, len(in))
	for _, email := range in {
		if email = strings.ToLower(strings.TrimSpace(email)); email != "" {
			out = append(out, email)
		}
	}
	return out
}

func defaultName() string {
	if v := os.Getenv("USER"); v != "" {
		return v
	}
	return "player"
}

func stringOr(v *string, fallback string) string {
	if v == nil {
		return fallback
	}
	return *v
}

func intOr(v *int, fallback int) int {
	if v == nil {
		return fallback
	}
	return *v
}

func floatOr(v *float64, fallback float64) float64 {
	if v == nil {
		return fallback
	}
	return *v
}
