package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	StoreDriverPostgres = "postgres"
	StoreDriverMemory   = "memory"

	minSecretLen = 32
)

type Config struct {
	AppEnv   string
	HTTPAddr string

	HTTPReadTimeout     time.Duration
	HTTPWriteTimeout    time.Duration
	HTTPIdleTimeout     time.Duration
	HTTPShutdownTimeout time.Duration

	CORSAllowedOrigin string

	DB        DBConfig
	Auth      AuthConfig
	Redis     RedisConfig
	Rabbit    RabbitConfig
	Notify    NotifyConfig
	SMTP      SMTPConfig
	Upload    UploadConfig
	S3        S3Config
	RateLimit RateLimitConfig
}

type DBConfig struct {
	Driver       string
	DSN          string
	MaxOpenConns int
	MaxIdleConns int
	ConnMaxIdle  time.Duration
	AutoMigrate  bool
}

type AuthConfig struct {
	JWTSecret  string
	JWTIssuer  string
	TokenTTL   time.Duration
	BcryptCost int
}

type RedisConfig struct {
	Addr         string
	Password     string
	DB           int
	DashboardTTL time.Duration
}

func (r RedisConfig) Enabled() bool { return r.Addr != "" }

type RabbitConfig struct {
	URL         string
	Exchange    string
	Queue       string
	Prefetch    int
	MaxAttempts int
}

func (r RabbitConfig) Enabled() bool { return r.URL != "" }

type NotifyConfig struct {
	Workers      int
	Buffer       int
	MaxRetries   int
	RetryInitial time.Duration
	RetryMax     time.Duration
	SentTTL      time.Duration

	PrayerRecipient  string
	ContactRecipient string

	// FakeFailMode drives the log sender: none, transient or permanent.
	FakeFailMode string
}

type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	Insecure bool
	Timeout  time.Duration

	// BreakerFailures consecutive transient failures open the circuit for BreakerReset.
	BreakerFailures int
	BreakerReset    time.Duration
}

func (s SMTPConfig) Enabled() bool { return s.Host != "" }

type UploadConfig struct {
	Dir        string
	PublicBase string
	MaxBytes   int64
}

type S3Config struct {
	Endpoint        string
	Region          string
	Bucket          string
	AccessKeyID     string
	SecretAccessKey string
	UsePathStyle    bool
	PublicBaseURL   string
}

func (s S3Config) Enabled() bool { return s.Bucket != "" }

type RateLimitConfig struct {
	PublicLimit  int
	PublicWindow time.Duration
	LoginLimit   int
	LoginWindow  time.Duration
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}
	cfg.AppEnv = getEnv("APP_ENV", "dev")
	cfg.HTTPAddr = getEnv("HTTP_ADDR", ":5000")
	cfg.HTTPReadTimeout = getDuration("HTTP_READ_TIMEOUT", 10*time.Second)
	cfg.HTTPWriteTimeout = getDuration("HTTP_WRITE_TIMEOUT", 30*time.Second)
	cfg.HTTPIdleTimeout = getDuration("HTTP_IDLE_TIMEOUT", 60*time.Second)
	cfg.HTTPShutdownTimeout = getDuration("HTTP_SHUTDOWN_TIMEOUT", 10*time.Second)
	cfg.CORSAllowedOrigin = getEnv("CORS_ALLOWED_ORIGIN", "*")

	// --- Postgres: DATABASE_URL wins, else DB_* parts
	cfg.DB.Driver = strings.ToLower(getEnv("STORE_DRIVER", StoreDriverPostgres))
	cfg.DB.DSN = getEnv("DATABASE_URL", "")
	if cfg.DB.DSN == "" {
		cfg.DB.DSN = buildPostgresURL(
			getEnv("DB_HOST", ""),
			getEnv("DB_PORT", "5432"),
			getEnv("DB_USER", ""),
			getEnv("DB_PASSWORD", ""),
			getEnv("DB_NAME", ""),
			getEnv("DB_SSLMODE", "disable"),
		)
	}
	cfg.DB.MaxOpenConns = getInt("DB_MAX_OPEN_CONNS", 20)
	cfg.DB.MaxIdleConns = getInt("DB_MAX_IDLE_CONNS", 5)
	cfg.DB.ConnMaxIdle = getDuration("DB_CONN_MAX_IDLE", 15*time.Minute)
	cfg.DB.AutoMigrate = getBool("DB_AUTO_MIGRATE", true)

	// --- Auth
	cfg.Auth.JWTSecret = getEnv("JWT_SECRET", "")
	cfg.Auth.JWTIssuer = getEnv("JWT_ISSUER", "church-service")
	cfg.Auth.TokenTTL = getDuration("JWT_TTL", 24*time.Hour)
	cfg.Auth.BcryptCost = getInt("BCRYPT_COST", 12)

	// --- Redis (optional)
	cfg.Redis.Addr = getEnv("REDIS_ADDR", "")
	cfg.Redis.Password = getEnv("REDIS_PASSWORD", "")
	cfg.Redis.DB = getInt("REDIS_DB", 0)
	cfg.Redis.DashboardTTL = getDuration("DASHBOARD_CACHE_TTL", 30*time.Second)

	// --- RabbitMQ (optional); accept RABBIT_URL like the other services
	cfg.Rabbit.URL = firstNonEmpty(getEnv("RABBITMQ_URL", ""), getEnv("RABBIT_URL", ""))
	cfg.Rabbit.Exchange = getEnv("RABBITMQ_EXCHANGE", "church.notifications")
	cfg.Rabbit.Queue = getEnv("RABBITMQ_QUEUE", "church-service.notifications")
	cfg.Rabbit.Prefetch = getInt("RABBITMQ_PREFETCH", 10)
	cfg.Rabbit.MaxAttempts = getInt("NOTIFY_MAX_ATTEMPTS", 5)

	// --- Notifications
	cfg.Notify.Workers = getInt("NOTIFY_WORKERS", 2)
	cfg.Notify.Buffer = getInt("NOTIFY_BUFFER", 256)
	cfg.Notify.MaxRetries = getInt("NOTIFY_MAX_RETRIES", 3)
	cfg.Notify.RetryInitial = getDuration("NOTIFY_RETRY_INITIAL", time.Second)
	cfg.Notify.RetryMax = getDuration("NOTIFY_RETRY_MAX", 30*time.Second)
	cfg.Notify.SentTTL = getDuration("NOTIFY_SENT_TTL", 24*time.Hour)
	cfg.Notify.PrayerRecipient = getEnv("PRAYER_NOTIFY_EMAIL", "")
	cfg.Notify.ContactRecipient = getEnv("CONTACT_NOTIFY_EMAIL", "")
	cfg.Notify.FakeFailMode = getEnv("FAKE_FAIL_MODE", "none")

	// --- SMTP (empty host => log sender)
	cfg.SMTP.Host = getEnv("SMTP_HOST", "")
	cfg.SMTP.Port = getInt("SMTP_PORT", 587)
	cfg.SMTP.Username = getEnv("SMTP_USERNAME", "")
	cfg.SMTP.Password = getEnv("SMTP_PASSWORD", "")
	cfg.SMTP.From = getEnv("SMTP_FROM", "no-reply@localhost")
	cfg.SMTP.Insecure = getBool("SMTP_INSECURE", false)
	cfg.SMTP.Timeout = getDuration("SMTP_TIMEOUT", 10*time.Second)
	cfg.SMTP.BreakerFailures = getInt("SMTP_BREAKER_FAILURES", 5)
	cfg.SMTP.BreakerReset = getDuration("SMTP_BREAKER_RESET", 30*time.Second)

	// --- Uploads
	cfg.Upload.Dir = getEnv("UPLOAD_DIR", "./uploads")
	cfg.Upload.PublicBase = strings.TrimRight(getEnv("UPLOAD_PUBLIC_BASE", "/uploads"), "/")
	cfg.Upload.MaxBytes = int64(getInt("UPLOAD_MAX_BYTES", 10<<20))

	cfg.S3.Endpoint = getEnv("S3_ENDPOINT", "")
	cfg.S3.Region = getEnv("S3_REGION", "us-east-1")
	cfg.S3.Bucket = getEnv("S3_BUCKET", "")
	cfg.S3.AccessKeyID = getEnv("S3_ACCESS_KEY_ID", "")
	cfg.S3.SecretAccessKey = getEnv("S3_SECRET_ACCESS_KEY", "")
	cfg.S3.UsePathStyle = getBool("S3_USE_PATH_STYLE", true)
	cfg.S3.PublicBaseURL = strings.TrimRight(getEnv("S3_PUBLIC_BASE_URL", ""), "/")

	// --- Rate limits
	cfg.RateLimit.PublicLimit = getInt("PUBLIC_RATE_LIMIT", 30)
	cfg.RateLimit.PublicWindow = getDuration("PUBLIC_RATE_WINDOW", time.Minute)
	cfg.RateLimit.LoginLimit = getInt("LOGIN_RATE_LIMIT", 10)
	cfg.RateLimit.LoginWindow = getDuration("LOGIN_RATE_WINDOW", time.Minute)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate fails fast on configuration the process cannot run with.
func (c *Config) Validate() error {
	switch c.DB.Driver {
	case StoreDriverPostgres:
		if c.DB.DSN == "" {
			return fmt.Errorf("missing database config: provide DATABASE_URL or DB_HOST/DB_USER/DB_NAME")
		}
	case StoreDriverMemory:
		if c.AppEnv != "dev" && c.AppEnv != "test" {
			return fmt.Errorf("STORE_DRIVER=memory is only allowed when APP_ENV is dev or test")
		}
	default:
		return fmt.Errorf("unknown STORE_DRIVER %q", c.DB.Driver)
	}

	if c.Auth.JWTSecret == "" {
		return fmt.Errorf("missing JWT_SECRET")
	}
	if c.AppEnv != "dev" && len(c.Auth.JWTSecret) < minSecretLen {
		return fmt.Errorf("JWT_SECRET must be at least %d bytes when APP_ENV != dev", minSecretLen)
	}
	if c.Auth.TokenTTL <= 0 {
		return fmt.Errorf("JWT_TTL must be positive")
	}
	if c.Auth.BcryptCost < 4 || c.Auth.BcryptCost > 31 {
		return fmt.Errorf("BCRYPT_COST must be between 4 and 31, got %d", c.Auth.BcryptCost)
	}

	if c.Upload.MaxBytes <= 0 {
		return fmt.Errorf("UPLOAD_MAX_BYTES must be positive")
	}
	if c.Notify.Workers <= 0 || c.Notify.Buffer <= 0 {
		return fmt.Errorf("NOTIFY_WORKERS and NOTIFY_BUFFER must be positive")
	}
	if c.SMTP.Enabled() && c.SMTP.From == "" {
		return fmt.Errorf("missing SMTP_FROM")
	}
	return nil
}

// buildPostgresURL builds a postgres URL DSN; special characters in the password are escaped.
func buildPostgresURL(host, port, user, pass, db, sslmode string) string {
	if host == "" || user == "" || db == "" {
		return ""
	}

	u := &url.URL{
		Scheme: "postgres",
		Host:   host + ":" + port,
		Path:   "/" + strings.TrimPrefix(db, "/"),
	}
	if pass != "" {
		u.User = url.UserPassword(user, pass)
	} else {
		u.User = url.User(user)
	}
	if sslmode != "" {
		q := url.Values{}
		q.Set("sslmode", sslmode)
		u.RawQuery = q.Encode()
	}
	return u.String()
}

func getEnv(k, def string) string {
	if v := strings.TrimSpace(os.Getenv(k)); v != "" {
		return v
	}
	return def
}

func getInt(key string, def int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return i
}

func getBool(key string, def bool) bool {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}

func getDuration(key string, def time.Duration) time.Duration {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return def
	}
	return d
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
