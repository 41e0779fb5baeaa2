package main

import (
	"os"
	"strconv"
	"strings"
	"time"

	portal "github.com/hiredesk/portal"
)

// Config is the process configuration, loaded once from the environment.
// It satisfies portal.Config for the auth core.
type Config struct {
	HTTPAddr string

	SigningKey string
	Issuer     string
	Audience   []string

	// Token lifetimes per principal kind, in hours. Administrators get a
	// shorter default.
	SeekerTokenTTL    time.Duration
	RecruiterTokenTTL time.Duration
	AdminTokenTTL     time.Duration

	// DatabaseDSN selects postgres when set; otherwise SQLitePath is used.
	DatabaseDSN string
	SQLitePath  string

	RedisURL        string
	ActivityChannel string

	SupabaseURL    string
	SupabaseKey    string
	SupabaseBucket string
	ResumeDir      string

	PhoneRegion string
	SweepSpec   string
}

// LoadConfig reads the environment. Call godotenv.Load first so .env
// files participate.
func LoadConfig() *Config {
	return &Config{
		HTTPAddr: envString("PORTAL_HTTP_ADDR", ":8080"),

		SigningKey: envString("PORTAL_SIGNING_KEY", ""),
		Issuer:     envString("PORTAL_TOKEN_ISSUER", "portal"),
		Audience:   envList("PORTAL_TOKEN_AUDIENCE"),

		SeekerTokenTTL:    envHours("PORTAL_SEEKER_TOKEN_HOURS", 72),
		RecruiterTokenTTL: envHours("PORTAL_RECRUITER_TOKEN_HOURS", 72),
		AdminTokenTTL:     envHours("PORTAL_ADMIN_TOKEN_HOURS", 8),

		DatabaseDSN: envString("PORTAL_DATABASE_DSN", ""),
		SQLitePath:  envString("PORTAL_SQLITE_PATH", "file:portal.db?cache=shared"),

		RedisURL:        envString("PORTAL_REDIS_URL", ""),
		ActivityChannel: envString("PORTAL_ACTIVITY_CHANNEL", ""),

		SupabaseURL:    envString("SUPABASE_URL", ""),
		SupabaseKey:    envString("SUPABASE_KEY", ""),
		SupabaseBucket: envString("SUPABASE_BUCKET", "resumes"),
		ResumeDir:      envString("PORTAL_RESUME_DIR", "data/resumes"),

		PhoneRegion: envString("PORTAL_PHONE_REGION", "US"),
		SweepSpec:   envString("PORTAL_SWEEP_SPEC", "@every 1h"),
	}
}

// Validate checks the required settings.
func (c *Config) Validate() error {
	if c.SigningKey == "" {
		return errMissingEnv("PORTAL_SIGNING_KEY")
	}
	return nil
}

func (c *Config) GetSigningKey() string { return c.SigningKey }
func (c *Config) GetIssuer() string     { return c.Issuer }
func (c *Config) GetAudience() []string { return c.Audience }

func (c *Config) GetTokenTTL(kind portal.Role) time.Duration {
	switch kind {
	case portal.RoleAdmin:
		return c.AdminTokenTTL
	case portal.RoleRecruiter:
		return c.RecruiterTokenTTL
	default:
		return c.SeekerTokenTTL
	}
}

type errMissingEnv string

func (e errMissingEnv) Error() string {
	return "missing required environment variable " + string(e)
}

func envString(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envList(key string) []string {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}

	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func envHours(key string, def int) time.Duration {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return time.Duration(n) * time.Hour
		}
	}
	return time.Duration(def) * time.Hour
}
