package app

import (
	"fmt"
	"net"
	"net/url"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/spf13/viper"

	"aitolife/internal/cache"
	"aitolife/internal/content"
	"aitolife/internal/i18n"
)

// Cache backends.
const (
	BackendMemory = "memory"
	BackendRedis  = "redis"
	BackendBolt   = "bolt"
	BackendMySQL  = "mysql"
)

// Config contains runtime configuration from an optional YAML file and the
// environment.
type Config struct {
	Port            string
	Preview         bool
	LogDevelopment  bool
	CacheBackend    string
	CachePrefix     string
	CacheTTL        time.Duration
	RedisAddr       string
	BoltPath        string
	DSN             string
	Contentful      content.Config
	DefaultLanguage i18n.Language
}

// ContentMode returns the CMS API the site reads from.
func (c Config) ContentMode() content.Mode {
	if c.Preview {
		return content.Preview
	}
	return content.Published
}

// envFallbacks maps config keys to the unprefixed variables also honoured.
var envFallbacks = map[string][]string{
	"port":                     {"PORT"},
	"mysql.dsn":                {"MYSQL_DSN", "DATABASE_URL"},
	"redis.addr":               {"REDIS_ADDR"},
	"contentful.space_id":      {"CONTENTFUL_SPACE_ID"},
	"contentful.access_token":  {"CONTENTFUL_ACCESS_TOKEN"},
	"contentful.preview_token": {"CONTENTFUL_PREVIEW_TOKEN"},
	"contentful.environment":   {"CONTENTFUL_ENVIRONMENT"},
}

func newConfigViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix("AITOLIFE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("port", "8080")
	v.SetDefault("preview", false)
	v.SetDefault("log.development", false)
	v.SetDefault("cache.backend", BackendMemory)
	v.SetDefault("cache.prefix", cache.DefaultPrefix)
	v.SetDefault("cache.ttl_seconds", int(cache.DefaultTTL/time.Second))
	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("bolt.path", "data/cache.db")
	v.SetDefault("mysql.dsn", "")
	v.SetDefault("contentful.space_id", "")
	v.SetDefault("contentful.access_token", "")
	v.SetDefault("contentful.preview_token", "")
	v.SetDefault("contentful.environment", "master")
	v.SetDefault("site.default_language", string(i18n.DefaultLanguage))

	for key, names := range envFallbacks {
		prefixed := "AITOLIFE_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
		_ = v.BindEnv(append([]string{key, prefixed}, names...)...)
	}
	return v
}

// LoadConfig reads path when it is not empty, then applies the environment.
func LoadConfig(path string) (Config, error) {
	v := newConfigViper()
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	cfg := Config{
		Port:           v.GetString("port"),
		Preview:        v.GetBool("preview"),
		LogDevelopment: v.GetBool("log.development"),
		CacheBackend:   strings.ToLower(strings.TrimSpace(v.GetString("cache.backend"))),
		CachePrefix:    v.GetString("cache.prefix"),
		CacheTTL:       time.Duration(v.GetInt("cache.ttl_seconds")) * time.Second,
		RedisAddr:      v.GetString("redis.addr"),
		BoltPath:       v.GetString("bolt.path"),
		Contentful: content.Config{
			SpaceID:      v.GetString("contentful.space_id"),
			Environment:  v.GetString("contentful.environment"),
			AccessToken:  v.GetString("contentful.access_token"),
			PreviewToken: v.GetString("contentful.preview_token"),
		},
	}

	lang, ok := i18n.Parse(v.GetString("site.default_language"))
	if !ok {
		return cfg, fmt.Errorf("unsupported site.default_language %q", v.GetString("site.default_language"))
	}
	cfg.DefaultLanguage = lang

	switch cfg.CacheBackend {
	case BackendMemory, BackendRedis, BackendBolt, BackendMySQL:
	default:
		return cfg, fmt.Errorf("unsupported cache.backend %q", cfg.CacheBackend)
	}

	if rawDSN := v.GetString("mysql.dsn"); rawDSN != "" {
		normalized, err := mysqlDSN(rawDSN)
		if err != nil {
			return cfg, err
		}
		cfg.DSN = normalized
	}
	if cfg.CacheBackend == BackendMySQL && cfg.DSN == "" {
		return cfg, fmt.Errorf("cache.backend mysql needs MYSQL_DSN or DATABASE_URL")
	}

	return cfg, nil
}

// mysqlDSN accepts a driver DSN or a mysql:// (mariadb://) URL as hosting
// providers hand them out and returns the driver form. parseTime is switched
// on unless the input sets it.
func mysqlDSN(input string) (string, error) {
	dsn := input
	if strings.Contains(input, "://") {
		converted, err := dsnFromURL(input)
		if err != nil {
			return "", err
		}
		dsn = converted
	}

	cfg, err := mysql.ParseDSN(dsn)
	if err != nil {
		return "", fmt.Errorf("parse mysql dsn: %w", err)
	}
	if !strings.Contains(dsn, "parseTime=") {
		cfg.ParseTime = true
	}
	return cfg.FormatDSN(), nil
}

func dsnFromURL(raw string) (string, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("parse mysql url: %w", err)
	}
	if u.Scheme != "mysql" && u.Scheme != "mariadb" {
		return "", fmt.Errorf("unsupported database scheme %q", u.Scheme)
	}
	if u.Hostname() == "" {
		return "", fmt.Errorf("mysql url has no host")
	}

	cfg := mysql.NewConfig()
	cfg.Net = "tcp"
	cfg.Addr = u.Host
	if u.Port() == "" {
		cfg.Addr = net.JoinHostPort(u.Hostname(), "3306")
	}
	cfg.DBName = strings.TrimPrefix(u.Path, "/")
	if cfg.DBName == "" {
		return "", fmt.Errorf("mysql url has no database name")
	}
	if u.User != nil {
		cfg.User = u.User.Username()
		cfg.Passwd, _ = u.User.Password()
	}

	dsn := cfg.FormatDSN()
	if u.RawQuery != "" {
		dsn += "?" + u.RawQuery
	}
	return dsn, nil
}
