package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/nitheshb/caco-Marketing-tool-sub001/internal/validation"
)

// Platforms soportadas por los flujos de conexión social.
var Platforms = []string{"facebook", "instagram", "linkedin", "tiktok", "youtube"}

type Config struct {
	App struct {
		// dev | staging | prod
		Env string `yaml:"env"`
		// BaseURL de este deployment (NEXT_PUBLIC_APP_URL), usado para redirect/callback URIs.
		BaseURL       string `yaml:"base_url"`
		DashboardPath string `yaml:"dashboard_path"`
		// AppID se envía a los partners como app_id en el login cross-app.
		AppID string `yaml:"app_id"`
	} `yaml:"app"`

	Server struct {
		Addr               string        `yaml:"addr"`
		CORSAllowedOrigins []string      `yaml:"cors_allowed_origins"`
		ReadTimeout        time.Duration `yaml:"read_timeout"`
		WriteTimeout       time.Duration `yaml:"write_timeout"`
	} `yaml:"server"`

	Log struct {
		Level string `yaml:"level"`
	} `yaml:"log"`

	Storage struct {
		// postgres | memory
		Driver      string `yaml:"driver"`
		DSN         string `yaml:"dsn"`
		AutoMigrate bool   `yaml:"auto_migrate"`
		Postgres    struct {
			MaxConns        int32         `yaml:"max_conns"`
			MinConns        int32         `yaml:"min_conns"`
			MaxConnLifetime time.Duration `yaml:"max_conn_lifetime"`
		} `yaml:"postgres"`
	} `yaml:"storage"`

	Cache struct {
		// memory | redis
		Kind  string `yaml:"kind"`
		Redis struct {
			Addr     string `yaml:"addr"`
			Password string `yaml:"password"`
			DB       int    `yaml:"db"`
			Prefix   string `yaml:"prefix"`
		} `yaml:"redis"`
		Memory struct {
			DefaultTTL time.Duration `yaml:"default_ttl"`
		} `yaml:"memory"`
	} `yaml:"cache"`

	// Identity es el dominio de identidad propio (sesiones + Credential Bridge).
	Identity struct {
		// toolkit | postgres | memory
		Driver     string `yaml:"driver"`
		APIKey     string `yaml:"api_key"`
		ProjectID  string `yaml:"project_id"`
		ToolkitURL string `yaml:"toolkit_url"`
		// SessionCookie es la cookie alternativa al header Bearer.
		SessionCookie string `yaml:"session_cookie"`
	} `yaml:"identity"`

	Bridge struct {
		Key string `yaml:"key"`
	} `yaml:"bridge"`

	State struct {
		// Secret vacío = state sin firmar (base64url JSON).
		Secret string        `yaml:"secret"`
		TTL    time.Duration `yaml:"ttl"`
	} `yaml:"state"`

	Security struct {
		SecretboxKey string `yaml:"secretbox_key"`
	} `yaml:"security"`

	Rate struct {
		Enabled     bool          `yaml:"enabled"`
		Window      time.Duration `yaml:"window"`
		MaxRequests int           `yaml:"max_requests"`
	} `yaml:"rate"`

	SMTP struct {
		Host     string `yaml:"host"`
		Port     int    `yaml:"port"`
		Username string `yaml:"username"`
		Password string `yaml:"password"`
		From     string `yaml:"from"`
		// auto | starttls | ssl
		TLSMode string `yaml:"tls_mode"`
	} `yaml:"smtp"`

	HTTPClient struct {
		Timeout time.Duration `yaml:"timeout"`
	} `yaml:"http_client"`

	// Platforms: credenciales del sistema por plataforma (integración default).
	Platforms map[string]PlatformCredentials `yaml:"platforms"`

	// Partners extra además del catálogo estático.
	Partners []PartnerEntry `yaml:"partners"`
}

type PlatformCredentials struct {
	ClientID     string `yaml:"client_id"`
	ClientSecret string `yaml:"client_secret"`
}

type PartnerEntry struct {
	ID             string `yaml:"id"`
	Name           string `yaml:"name"`
	PrimaryColor   string `yaml:"primary_color"`
	SecondaryColor string `yaml:"secondary_color"`
}

// Load lee el YAML (opcional: path vacío o inexistente = solo defaults + env),
// aplica overrides de entorno y valida.
func Load(path string) (*Config, error) {
	var c Config
	if path != "" {
		b, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(b, &c); err != nil {
				return nil, fmt.Errorf("config: parse %s: %w", path, err)
			}
		case errors.Is(err, os.ErrNotExist):
		default:
			return nil, fmt.Errorf("config: read %s: %w", path, err)
		}
	}
	c.applyDefaults()
	c.applyEnvOverrides()
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

func (c *Config) applyDefaults() {
	if c.App.Env == "" {
		c.App.Env = "dev"
	}
	if c.App.BaseURL == "" {
		c.App.BaseURL = "http://localhost:3000"
	}
	if c.App.DashboardPath == "" {
		c.App.DashboardPath = "/dashboard"
	}
	if c.App.AppID == "" {
		c.App.AppID = "video-studio"
	}
	if c.Server.Addr == "" {
		c.Server.Addr = ":8080"
	}
	if c.Server.ReadTimeout == 0 {
		c.Server.ReadTimeout = 10 * time.Second
	}
	if c.Server.WriteTimeout == 0 {
		c.Server.WriteTimeout = 30 * time.Second
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Storage.Driver == "" {
		c.Storage.Driver = "memory"
	}
	if c.Storage.Postgres.MaxConns == 0 {
		c.Storage.Postgres.MaxConns = 10
	}
	if c.Cache.Kind == "" {
		c.Cache.Kind = "memory"
	}
	if c.Cache.Redis.Prefix == "" {
		c.Cache.Redis.Prefix = "social:"
	}
	if c.Cache.Memory.DefaultTTL == 0 {
		c.Cache.Memory.DefaultTTL = 10 * time.Minute
	}
	if c.Identity.Driver == "" {
		c.Identity.Driver = "memory"
	}
	if c.Identity.SessionCookie == "" {
		c.Identity.SessionCookie = "__session"
	}
	if c.State.TTL == 0 {
		c.State.TTL = 10 * time.Minute
	}
	if c.Rate.Window == 0 {
		c.Rate.Window = time.Minute
	}
	if c.Rate.MaxRequests == 0 {
		c.Rate.MaxRequests = 30
	}
	if c.SMTP.Port == 0 {
		c.SMTP.Port = 587
	}
	if c.SMTP.TLSMode == "" {
		c.SMTP.TLSMode = "auto"
	}
	if c.HTTPClient.Timeout == 0 {
		c.HTTPClient.Timeout = 10 * time.Second
	}
	if c.Platforms == nil {
		c.Platforms = map[string]PlatformCredentials{}
	}
}

func getEnvStr(key string) (string, bool) {
	v := os.Getenv(key)
	return v, v != ""
}

func getEnvInt(key string) (int, bool) {
	if s, ok := getEnvStr(key); ok {
		if i, err := strconv.Atoi(strings.TrimSpace(s)); err == nil {
			return i, true
		}
	}
	return 0, false
}

func getEnvBool(key string) (bool, bool) {
	if s, ok := getEnvStr(key); ok {
		if b, err := strconv.ParseBool(strings.TrimSpace(s)); err == nil {
			return b, true
		}
	}
	return false, false
}

func getEnvDur(key string) (time.Duration, bool) {
	if s, ok := getEnvStr(key); ok {
		if d, err := time.ParseDuration(strings.TrimSpace(s)); err == nil {
			return d, true
		}
	}
	return 0, false
}

func getEnvCSV(key string) ([]string, bool) {
	s, ok := getEnvStr(key)
	if !ok {
		return nil, false
	}
	out := []string{}
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out, true
}

func (c *Config) applyEnvOverrides() {
	// APP
	if v, ok := getEnvStr("APP_ENV"); ok {
		c.App.Env = strings.ToLower(v)
	}
	if v, ok := getEnvStr("NEXT_PUBLIC_APP_URL"); ok {
		c.App.BaseURL = v
	}
	if v, ok := getEnvStr("APP_DASHBOARD_PATH"); ok {
		c.App.DashboardPath = v
	}
	if v, ok := getEnvStr("APP_ID"); ok {
		c.App.AppID = v
	}
	c.App.BaseURL = strings.TrimRight(c.App.BaseURL, "/")

	// SERVER
	if v, ok := getEnvStr("SERVER_ADDR"); ok {
		c.Server.Addr = v
	}
	if v, ok := getEnvCSV("SERVER_CORS_ALLOWED_ORIGINS"); ok {
		c.Server.CORSAllowedOrigins = v
	}
	if v, ok := getEnvStr("LOG_LEVEL"); ok {
		c.Log.Level = v
	}

	// STORAGE
	if v, ok := getEnvStr("STORAGE_DRIVER"); ok {
		c.Storage.Driver = v
	}
	if v, ok := getEnvStr("STORAGE_DSN"); ok {
		c.Storage.DSN = v
	} else if v, ok := getEnvStr("DATABASE_URL"); ok {
		c.Storage.DSN = v
	}
	if v, ok := getEnvBool("STORAGE_AUTO_MIGRATE"); ok {
		c.Storage.AutoMigrate = v
	}
	if v, ok := getEnvInt("POSTGRES_MAX_CONNS"); ok {
		c.Storage.Postgres.MaxConns = int32(v)
	}

	// CACHE
	if v, ok := getEnvStr("CACHE_KIND"); ok {
		c.Cache.Kind = v
	}
	if v, ok := getEnvStr("REDIS_ADDR"); ok {
		c.Cache.Redis.Addr = v
	}
	if v, ok := getEnvStr("REDIS_PASSWORD"); ok {
		c.Cache.Redis.Password = v
	}
	if v, ok := getEnvInt("REDIS_DB"); ok {
		c.Cache.Redis.DB = v
	}

	// IDENTITY
	if v, ok := getEnvStr("IDENTITY_DRIVER"); ok {
		c.Identity.Driver = v
	}
	if v, ok := getEnvStr("FIREBASE_API_KEY"); ok {
		c.Identity.APIKey = v
	} else if v, ok := getEnvStr("NEXT_PUBLIC_FIREBASE_API_KEY"); ok {
		c.Identity.APIKey = v
	}
	if v, ok := getEnvStr("NEXT_PUBLIC_FIREBASE_PROJECT_ID"); ok {
		c.Identity.ProjectID = v
	}
	if v, ok := getEnvStr("IDENTITY_TOOLKIT_URL"); ok {
		c.Identity.ToolkitURL = v
	}

	// SECRETS
	if v, ok := getEnvStr("CREDENTIAL_BRIDGE_KEY"); ok {
		c.Bridge.Key = v
	}
	if v, ok := getEnvStr("OAUTH_STATE_SECRET"); ok {
		c.State.Secret = v
	}
	if v, ok := getEnvDur("OAUTH_STATE_TTL"); ok {
		c.State.TTL = v
	}
	if v, ok := getEnvStr("SECRETBOX_MASTER_KEY"); ok {
		c.Security.SecretboxKey = v
	}

	// RATE
	if v, ok := getEnvBool("RATE_ENABLED"); ok {
		c.Rate.Enabled = v
	}
	if v, ok := getEnvDur("RATE_WINDOW"); ok {
		c.Rate.Window = v
	}
	if v, ok := getEnvInt("RATE_MAX_REQUESTS"); ok {
		c.Rate.MaxRequests = v
	}

	// SMTP
	if v, ok := getEnvStr("SMTP_HOST"); ok {
		c.SMTP.Host = v
	}
	if v, ok := getEnvInt("SMTP_PORT"); ok {
		c.SMTP.Port = v
	}
	if v, ok := getEnvStr("SMTP_USERNAME"); ok {
		c.SMTP.Username = v
	}
	if v, ok := getEnvStr("SMTP_PASSWORD"); ok {
		c.SMTP.Password = v
	}
	if v, ok := getEnvStr("SMTP_FROM"); ok {
		c.SMTP.From = v
	}
	if v, ok := getEnvStr("SMTP_TLS"); ok {
		c.SMTP.TLSMode = strings.ToLower(v)
	}

	if v, ok := getEnvDur("HTTP_CLIENT_TIMEOUT"); ok {
		c.HTTPClient.Timeout = v
	}

	// PLATFORMS: <PLATFORM>_CLIENT_ID / <PLATFORM>_CLIENT_SECRET
	for _, p := range Platforms {
		prefix := strings.ToUpper(p)
		creds := c.Platforms[p]
		if v, ok := getEnvStr(prefix + "_CLIENT_ID"); ok {
			creds.ClientID = v
		}
		if v, ok := getEnvStr(prefix + "_CLIENT_SECRET"); ok {
			creds.ClientSecret = v
		}
		// TikTok llama "client_key" a su client id.
		if p == "tiktok" {
			if v, ok := getEnvStr("TIKTOK_CLIENT_KEY"); ok && creds.ClientID == "" {
				creds.ClientID = v
			}
		}
		if creds != (PlatformCredentials{}) {
			c.Platforms[p] = creds
		}
	}
}

// Validate chequea combinaciones que harían fallar el arranque.
func (c *Config) Validate() error {
	switch c.Storage.Driver {
	case "memory":
	case "postgres":
		if c.Storage.DSN == "" {
			return errors.New("config: storage.dsn is required for the postgres driver")
		}
	default:
		return fmt.Errorf("config: unknown storage driver %q", c.Storage.Driver)
	}
	switch c.Cache.Kind {
	case "memory":
	case "redis":
		if c.Cache.Redis.Addr == "" {
			return errors.New("config: cache.redis.addr is required for the redis cache")
		}
	default:
		return fmt.Errorf("config: unknown cache kind %q", c.Cache.Kind)
	}
	switch c.Identity.Driver {
	case "memory", "postgres":
	case "toolkit":
		if c.Identity.APIKey == "" {
			return errors.New("config: identity.api_key (FIREBASE_API_KEY) is required for the toolkit driver")
		}
	default:
		return fmt.Errorf("config: unknown identity driver %q", c.Identity.Driver)
	}
	if c.Identity.Driver == "postgres" && c.Storage.Driver != "postgres" {
		return errors.New("config: identity driver postgres requires storage driver postgres")
	}
	if c.Bridge.Key != "" && len(c.Bridge.Key) < 16 {
		return errors.New("config: bridge.key must be at least 16 bytes")
	}
	if c.State.TTL < 0 {
		return errors.New("config: state.ttl must be positive")
	}
	for _, p := range c.Partners {
		if !validation.ValidPartnerID(strings.ToLower(strings.TrimSpace(p.ID))) {
			return fmt.Errorf("config: invalid partner id %q", p.ID)
		}
	}
	return nil
}

// PlatformCreds devuelve las credenciales del sistema; ok=false si falta alguna.
func (c *Config) PlatformCreds(platform string) (PlatformCredentials, bool) {
	p, found := c.Platforms[platform]
	return p, found && p.ClientID != "" && p.ClientSecret != ""
}
