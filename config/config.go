package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds every runtime setting of the server.
// Values come from the process environment, optionally seeded from a .env file.
type Config struct {
	Env  string
	Port string

	Database DatabaseConfig
	Redis    RedisConfig
	HTTP     HTTPConfig
	Log      LogConfig
	Order    OrderConfig
	Session  SessionConfig
	Bill     BillConfig
	Archive  ArchiveConfig
	Shop     ShopConfig
}

type DatabaseConfig struct {
	URL             string
	Host            string
	Port            string
	User            string
	Password        string
	Name            string
	SSLMode         string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

type RedisConfig struct {
	Addrs    []string
	Password string
	DB       int
}

// Enabled reports whether a Redis address was configured.
func (r RedisConfig) Enabled() bool {
	return len(r.Addrs) > 0
}

type HTTPConfig struct {
	CORSOrigins        []string
	RateLimitRPS       float64
	RateLimitBurst     int
	TrustXForwardedFor bool
}

type LogConfig struct {
	Level string
	Dir   string
	File  bool
}

type OrderConfig struct {
	SubmissionCooldown time.Duration
	DuplicateWindow    time.Duration
	BillingConfigPath  string
}

type SessionConfig struct {
	TTL          time.Duration
	CookieName   string
	CookieSecure bool
}

type BillConfig struct {
	ChromePath    string
	RenderTimeout time.Duration
	CacheDir      string
}

type ArchiveConfig struct {
	Backend         string
	CredentialsPath string
	DriveFolderID   string
	S3Bucket        string
	S3Region        string
	S3Endpoint      string
	S3AccessKeyID   string
	S3SecretKey     string
	S3Prefix        string
}

type ShopConfig struct {
	Name    string
	Phone   string
	Address string
}

// IsProduction reports whether ENV=production.
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// LoadDotEnv loads the given .env file over the process environment.
// Production deployments set variables directly, so the file is skipped there.
func LoadDotEnv(path string) error {
	if os.Getenv("ENV") == "production" {
		return nil
	}
	if path == "" {
		path = ".env"
	}
	return godotenv.Overload(path)
}

// Load reads the configuration from the environment.
func Load() (*Config, error) {
	r := &reader{}

	cfg := &Config{
		Env:  r.str("ENV", "development"),
		Port: strings.TrimPrefix(r.str("PORT", "8080"), ":"),
		Database: DatabaseConfig{
			URL:             r.str("DATABASE_URL", ""),
			Host:            r.str("DB_HOST", ""),
			Port:            r.str("DB_PORT", "5432"),
			User:            r.str("DB_USER", ""),
			Password:        r.str("DB_PASSWORD", ""),
			Name:            r.str("DB_NAME", ""),
			SSLMode:         r.str("DB_SSLMODE", "disable"),
			MaxOpenConns:    r.int("DB_MAX_OPEN_CONNS", 10),
			MaxIdleConns:    r.int("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: r.duration("DB_CONN_MAX_LIFETIME", 30*time.Minute),
		},
		Redis: RedisConfig{
			Addrs:    r.list("REDIS_ADDR"),
			Password: r.str("REDIS_PASSWORD", ""),
			DB:       r.int("REDIS_DB", 0),
		},
		HTTP: HTTPConfig{
			CORSOrigins:        r.list("CORS_ORIGINS"),
			RateLimitRPS:       r.float("RATE_LIMIT_RPS", 20),
			RateLimitBurst:     r.int("RATE_LIMIT_BURST", 40),
			TrustXForwardedFor: r.bool("TRUST_X_FORWARDED_FOR", false),
		},
		Log: LogConfig{
			Level: r.str("LOG_LEVEL", "info"),
			Dir:   r.str("LOG_DIR", "logs"),
			File:  r.bool("LOG_FILE", false),
		},
		Order: OrderConfig{
			SubmissionCooldown: r.duration("SUBMISSION_COOLDOWN", 3*time.Second),
			DuplicateWindow:    r.duration("DUPLICATE_WINDOW", 10*time.Minute),
			BillingConfigPath:  r.str("BILLING_CONFIG", ""),
		},
		Session: SessionConfig{
			TTL:          r.duration("SESSION_TTL", 12*time.Hour),
			CookieName:   r.str("SESSION_COOKIE", "mis_session"),
			CookieSecure: r.bool("COOKIE_SECURE", false),
		},
		Bill: BillConfig{
			ChromePath:    r.str("CHROME_PATH", ""),
			RenderTimeout: r.duration("BILL_RENDER_TIMEOUT", 30*time.Second),
			CacheDir:      r.str("CACHE_DIR", "cache/bills"),
		},
		Archive: ArchiveConfig{
			Backend:         strings.ToLower(r.str("ARCHIVE_BACKEND", "")),
			CredentialsPath: r.str("GOOGLE_APPLICATION_CREDENTIALS", ""),
			DriveFolderID:   r.str("DRIVE_FOLDER_ID", ""),
			S3Bucket:        r.str("S3_BUCKET", ""),
			S3Region:        r.str("S3_REGION", "us-east-1"),
			S3Endpoint:      r.str("S3_ENDPOINT", ""),
			S3AccessKeyID:   r.str("S3_ACCESS_KEY_ID", ""),
			S3SecretKey:     r.str("S3_SECRET_ACCESS_KEY", ""),
			S3Prefix:        r.str("S3_PREFIX", "bills/"),
		},
		Shop: ShopConfig{
			Name:    r.str("SHOP_NAME", "Print Shop"),
			Phone:   r.str("SHOP_PHONE", ""),
			Address: r.str("SHOP_ADDRESS", ""),
		},
	}

	if len(cfg.HTTP.CORSOrigins) == 0 {
		cfg.HTTP.CORSOrigins = []string{"*"}
	}
	if cfg.IsProduction() {
		cfg.Log.File = true
	}

	if r.err != nil {
		return nil, r.err
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.Archive.Backend {
	case "":
	case "drive":
		if c.Archive.CredentialsPath == "" || c.Archive.DriveFolderID == "" {
			return fmt.Errorf("ARCHIVE_BACKEND=drive requires GOOGLE_APPLICATION_CREDENTIALS and DRIVE_FOLDER_ID")
		}
	case "s3":
		if c.Archive.S3Bucket == "" {
			return fmt.Errorf("ARCHIVE_BACKEND=s3 requires S3_BUCKET")
		}
	default:
		return fmt.Errorf("ARCHIVE_BACKEND must be one of drive, s3 or empty, got %q", c.Archive.Backend)
	}
	if c.HTTP.RateLimitRPS <= 0 || c.HTTP.RateLimitBurst <= 0 {
		return fmt.Errorf("RATE_LIMIT_RPS and RATE_LIMIT_BURST must be positive")
	}
	return nil
}

// DSN returns the connection string for the pgx driver.
func (d DatabaseConfig) DSN() (string, error) {
	if d.URL != "" {
		return d.URL, nil
	}
	if d.Host == "" || d.User == "" || d.Name == "" {
		return "", fmt.Errorf("database connection variables not set. Set DATABASE_URL or DB_HOST, DB_USER, DB_NAME")
	}
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode), nil
}

// reader collects the first parse error so Load can report it once.
type reader struct {
	err error
}

func (r *reader) fail(key, value string, err error) {
	if r.err == nil {
		r.err = fmt.Errorf("invalid value %q for %s: %w", value, key, err)
	}
}

func (r *reader) str(key, def string) string {
	if v, ok := os.LookupEnv(key); ok && strings.TrimSpace(v) != "" {
		return strings.TrimSpace(v)
	}
	return def
}

func (r *reader) int(key string, def int) int {
	v := r.str(key, "")
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		r.fail(key, v, err)
		return def
	}
	return n
}

func (r *reader) float(key string, def float64) float64 {
	v := r.str(key, "")
	if v == "" {
		return def
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		r.fail(key, v, err)
		return def
	}
	return f
}

func (r *reader) bool(key string, def bool) bool {
	v := r.str(key, "")
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		r.fail(key, v, err)
		return def
	}
	return b
}

func (r *reader) duration(key string, def time.Duration) time.Duration {
	v := r.str(key, "")
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		r.fail(key, v, err)
		return def
	}
	return d
}

func (r *reader) list(key string) []string {
	v := r.str(key, "")
	if v == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
