package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

const (
	EnvPrefix         = "DECO"
	ConfigFileEnvName = "DECO_CONFIG_FILE"
)

type Server struct {
	Addr            string        `mapstructure:"addr"`
	Mode            string        `mapstructure:"mode"`
	CORSOrigins     []string      `mapstructure:"cors_origins"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

type Log struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type Mongo struct {
	URI      string        `mapstructure:"uri"`
	Database string        `mapstructure:"database"`
	Timeout  time.Duration `mapstructure:"timeout"`
}

type Auth struct {
	JWTSecret      string            `mapstructure:"jwt_secret"`
	TokenTTL       time.Duration     `mapstructure:"token_ttl"`
	GoogleClientID string            `mapstructure:"google_client_id"`
	AdminEmails    []string          `mapstructure:"admin_emails"`
	AdminPasswords map[string]string `mapstructure:"admin_passwords"`
	CookieName     string            `mapstructure:"cookie_name"`
	CookieSecure   bool              `mapstructure:"cookie_secure"`
}

type Cloudinary struct {
	CloudName string `mapstructure:"cloud_name"`
	APIKey    string `mapstructure:"api_key"`
	APISecret string `mapstructure:"api_secret"`
	Folder    string `mapstructure:"folder"`
}

type GenAI struct {
	APIKey string `mapstructure:"api_key"`
	Model  string `mapstructure:"model"`
}

type Catalog struct {
	CacheTTL time.Duration `mapstructure:"cache_ttl"`
	MaxPrice float64       `mapstructure:"max_price"`
	Fallback bool          `mapstructure:"fallback"`
}

type Import struct {
	MaxUploadMB int64 `mapstructure:"max_upload_mb"`
}

// Site is the shop identity and contact copy shown on the public pages.
type Site struct {
	Name      string `mapstructure:"name"`
	Tagline   string `mapstructure:"tagline"`
	Currency  string `mapstructure:"currency"`
	Locale    string `mapstructure:"locale"`
	Phone     string `mapstructure:"phone"`
	WhatsApp  string `mapstructure:"whatsapp"`
	Email     string `mapstructure:"email"`
	Address   string `mapstructure:"address"`
	Hours     string `mapstructure:"hours"`
	Instagram string `mapstructure:"instagram"`
	Facebook  string `mapstructure:"facebook"`
}

type Config struct {
	Server     Server     `mapstructure:"server"`
	Log        Log        `mapstructure:"log"`
	Mongo      Mongo      `mapstructure:"mongo"`
	Auth       Auth       `mapstructure:"auth"`
	Cloudinary Cloudinary `mapstructure:"cloudinary"`
	GenAI      GenAI      `mapstructure:"genai"`
	Catalog    Catalog    `mapstructure:"catalog"`
	Import     Import     `mapstructure:"import"`
	Site       Site       `mapstructure:"site"`
}

// legacyEnv maps config keys to the bare variable names older deployments export.
var legacyEnv = map[string]string{
	"mongo.uri":             "MONGO_URI",
	"cloudinary.cloud_name": "CLOUDINARY_CLOUD_NAME",
	"cloudinary.api_key":    "CLOUDINARY_API_KEY",
	"cloudinary.api_secret": "CLOUDINARY_API_SECRET",
	"auth.jwt_secret":       "JWT_SECRET",
	"auth.google_client_id": "GOOGLE_CLIENT_ID",
	"auth.admin_emails":     "ADMIN_EMAILS",
	"genai.api_key":         "GEMINI_API_KEY",
}

func SetDefaults(v *viper.Viper) {
	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.mode", "release")
	v.SetDefault("server.cors_origins", []string{"http://localhost:3000"})
	v.SetDefault("server.shutdown_timeout", 10*time.Second)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")

	v.SetDefault("mongo.uri", "")
	v.SetDefault("mongo.database", "decoambiente")
	v.SetDefault("mongo.timeout", 10*time.Second)

	v.SetDefault("auth.jwt_secret", "")
	v.SetDefault("auth.token_ttl", 12*time.Hour)
	v.SetDefault("auth.google_client_id", "")
	v.SetDefault("auth.admin_emails", []string{})
	v.SetDefault("auth.admin_passwords", map[string]string{})
	v.SetDefault("auth.cookie_name", "deco_session")
	v.SetDefault("auth.cookie_secure", true)

	v.SetDefault("cloudinary.cloud_name", "")
	v.SetDefault("cloudinary.api_key", "")
	v.SetDefault("cloudinary.api_secret", "")
	v.SetDefault("cloudinary.folder", "decoambiente/products")

	v.SetDefault("genai.api_key", "")
	v.SetDefault("genai.model", "gemini-1.5-flash")

	v.SetDefault("catalog.cache_ttl", time.Minute)
	v.SetDefault("catalog.max_price", 1000000)
	v.SetDefault("catalog.fallback", true)

	v.SetDefault("import.max_upload_mb", 10)

	v.SetDefault("site.name", "Deco Ambiente")
	v.SetDefault("site.tagline", "Piezas de autor para espacios que inspiran")
	v.SetDefault("site.currency", "CLP")
	v.SetDefault("site.locale", "es-CL")
	v.SetDefault("site.phone", "+56 9 8765 4321")
	v.SetDefault("site.whatsapp", "56987654321")
	v.SetDefault("site.email", "hola@decoambiente.cl")
	v.SetDefault("site.address", "Av. Providencia 1234, Santiago, Chile")
	v.SetDefault("site.hours", "Lun–Vie: 9:00 – 19:00 · Sáb: 10:00 – 15:00")
	v.SetDefault("site.instagram", "https://instagram.com/decoambiente.cl")
	v.SetDefault("site.facebook", "https://facebook.com/decoambientecl")
}

// New returns a viper instance with defaults and environment bindings applied.
func New() *viper.Viper {
	v := viper.New()
	SetDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for key, legacy := range legacyEnv {
		prefixed := EnvPrefix + "_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
		_ = v.BindEnv(key, prefixed, legacy)
	}
	return v
}

// LoadDotEnv reads a .env file into the process environment when one exists.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, p := range paths {
		if err := godotenv.Load(p); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("load %s: %w", p, err)
		}
		logrus.WithField("file", p).Debug("Loaded environment file")
	}
	return nil
}

// Load reads the optional config file, then decodes the merged configuration.
// An empty path falls back to DECO_CONFIG_FILE.
func Load(v *viper.Viper, path string) (Config, error) {
	if path == "" {
		path = os.Getenv(ConfigFileEnvName)
	}
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
	}
	return Decode(v)
}

func Decode(v *viper.Viper) (Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	cfg.Auth.AdminEmails = splitList(cfg.Auth.AdminEmails)
	cfg.Server.CORSOrigins = splitList(cfg.Server.CORSOrigins)
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if _, err := logrus.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("log.level: %w", err)
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		return fmt.Errorf("log.format must be text or json, got %q", c.Log.Format)
	}
	switch c.Server.Mode {
	case "debug", "release", "test":
	default:
		return fmt.Errorf("server.mode must be debug, release or test, got %q", c.Server.Mode)
	}
	if c.Catalog.MaxPrice <= 0 {
		return errors.New("catalog.max_price must be positive")
	}
	if c.Import.MaxUploadMB <= 0 {
		return errors.New("import.max_upload_mb must be positive")
	}
	return nil
}

// Watch re-decodes the config file whenever it changes and hands the result to onChange.
// Nothing is watched when no config file was loaded.
func Watch(v *viper.Viper, onChange func(Config)) {
	if v.ConfigFileUsed() == "" {
		return
	}
	v.OnConfigChange(func(e fsnotify.Event) {
		if !e.Has(fsnotify.Write) && !e.Has(fsnotify.Create) {
			return
		}
		cfg, err := Decode(v)
		if err != nil {
			logrus.WithError(err).WithField("file", e.Name).Warn("Ignoring invalid config change")
			return
		}
		logrus.WithField("file", e.Name).Info("Config reloaded")
		onChange(cfg)
	})
	v.WatchConfig()
}

// splitList accepts both real lists and comma-separated values from the environment.
func splitList(in []string) []string {
	out := make([]string, 0, len(in))
	for _, item := range in {
		for _, part := range strings.Split(item, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}
