package config

import (
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Bot      BotConfig
	API      APIConfig
	Catalog  CatalogConfig
	Cart     CartConfig
}

type ServerConfig struct {
	Port int
	Env  string // "development", "production"
}

type DatabaseConfig struct {
	Driver  string // "mysql" or "sqlite"
	Host    string
	Port    string
	Name    string
	User    string
	Pass    string
	Charset string
	Path    string // sqlite file
}

type RedisConfig struct {
	Addr string
	Pass string
	DB   int
}

type BotConfig struct {
	Token      string
	WebhookURL string
	UpdateMode string // "auto", "polling", "webhook"
	AdminID    int64
	ContactURL string
}

type APIConfig struct {
	Key string
}

type CatalogConfig struct {
	PageSize     int
	HistoryLimit int
	SessionTTL   time.Duration
	ImagesDir    string
}

type CartConfig struct {
	TTL time.Duration
}

func setDefaults() {
	viper.SetDefault("APP_PORT", 8080)
	viper.SetDefault("APP_ENV", "production")
	viper.SetDefault("DB_DRIVER", "mysql")
	viper.SetDefault("DB_HOST", "localhost")
	viper.SetDefault("DB_PORT", "3306")
	viper.SetDefault("DB_CHARSET", "utf8mb4")
	viper.SetDefault("DB_PATH", "storebot.db")
	viper.SetDefault("REDIS_DB", 0)
	viper.SetDefault("BOT_UPDATE_MODE", "auto")
	viper.SetDefault("CATALOG_PAGE_SIZE", 6)
	viper.SetDefault("NAV_HISTORY_LIMIT", 10)
	viper.SetDefault("NAV_SESSION_TTL", "24h")
	viper.SetDefault("IMAGES_DIR", "stock/devices_images")
	viper.SetDefault("CART_TTL", "720h")
}

// Load reads configuration from .env file and environment variables.
func Load() (*Config, error) {
	// Load .env file (ignore error if missing)
	_ = godotenv.Load()

	viper.AutomaticEnv()
	setDefaults()

	cfg := &Config{
		Server: ServerConfig{
			Port: viper.GetInt("APP_PORT"),
			Env:  viper.GetString("APP_ENV"),
		},
		Database: loadDatabase(),
		Redis: RedisConfig{
			Addr: viper.GetString("REDIS_ADDR"),
			Pass: viper.GetString("REDIS_PASS"),
			DB:   viper.GetInt("REDIS_DB"),
		},
		Bot: BotConfig{
			Token:      viper.GetString("BOT_TOKEN"),
			WebhookURL: viper.GetString("BOT_WEBHOOK_URL"),
			UpdateMode: strings.ToLower(viper.GetString("BOT_UPDATE_MODE")),
			AdminID:    viper.GetInt64("BOT_ADMIN_ID"),
			ContactURL: viper.GetString("BOT_CONTACT_URL"),
		},
		API: APIConfig{
			Key: viper.GetString("API_KEY"),
		},
		Catalog: CatalogConfig{
			PageSize:     positive(viper.GetInt("CATALOG_PAGE_SIZE"), 6),
			HistoryLimit: positive(viper.GetInt("NAV_HISTORY_LIMIT"), 10),
			SessionTTL:   duration("NAV_SESSION_TTL", 24*time.Hour),
			ImagesDir:    viper.GetString("IMAGES_DIR"),
		},
		Cart: CartConfig{
			TTL: duration("CART_TTL", 720*time.Hour),
		},
	}

	if cfg.Database.Driver == "mysql" && cfg.Database.Name == "" {
		log.Println("WARNING: DB_NAME is not set")
	}
	if cfg.Bot.Token == "" {
		log.Println("WARNING: BOT_TOKEN is not set")
	}
	if cfg.API.Key == "" {
		log.Println("WARNING: API_KEY is not set, the HTTP API rejects every request")
	}

	return cfg, nil
}

// LoadDatabaseOnly reads just the database settings, for --bootstrap-db.
func LoadDatabaseOnly() (*DatabaseConfig, int64, error) {
	_ = godotenv.Load()
	viper.AutomaticEnv()
	setDefaults()
	db := loadDatabase()
	return &db, viper.GetInt64("BOT_ADMIN_ID"), nil
}

func loadDatabase() DatabaseConfig {
	return DatabaseConfig{
		Driver:  strings.ToLower(viper.GetString("DB_DRIVER")),
		Host:    viper.GetString("DB_HOST"),
		Port:    viper.GetString("DB_PORT"),
		Name:    viper.GetString("DB_NAME"),
		User:    viper.GetString("DB_USER"),
		Pass:    viper.GetString("DB_PASS"),
		Charset: viper.GetString("DB_CHARSET"),
		Path:    viper.GetString("DB_PATH"),
	}
}

func duration(key string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(viper.GetString(key))
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}

func positive(v, fallback int) int {
	if v <= 0 {
		return fallback
	}
	return v
}

// DSN returns the MySQL DSN string for GORM.
func (d *DatabaseConfig) DSN() string {
	return d.User + ":" + d.Pass + "@tcp(" + d.Host + ":" + d.Port + ")/" + d.Name + "?charset=" + d.Charset + "&parseTime=True&loc=Local"
}
