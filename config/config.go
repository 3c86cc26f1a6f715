package config

import (
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type ServerConfig struct {
	Port string `mapstructure:"port"`
}

type DatabaseConfig struct {
	// URL is a Postgres DSN. When empty the server falls back to a local
	// SQLite file, which is what dev and tests run on.
	URL        string `mapstructure:"url"`
	SQLitePath string `mapstructure:"sqlitePath"`
}

type JWTConfig struct {
	Secret          string `mapstructure:"secret"`
	ExpirationHours int    `mapstructure:"expirationHours"`
}

type AIConfig struct {
	BaseURL string `mapstructure:"baseURL"`
}

type NotifierConfig struct {
	// Cron is a robfig/cron spec. Empty disables the scheduled scan; the
	// on-demand admin endpoint keeps working either way.
	Cron string `mapstructure:"cron"`
}

type FirebaseConfig struct {
	// CredentialsFile points at a service-account JSON. Empty disables push.
	CredentialsFile string `mapstructure:"credentialsFile"`
}

type UploadConfig struct {
	Dir string `mapstructure:"dir"`
}

type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	JWT      JWTConfig      `mapstructure:"jwt"`
	AI       AIConfig       `mapstructure:"ai"`
	Notifier NotifierConfig `mapstructure:"notifier"`
	Firebase FirebaseConfig `mapstructure:"firebase"`
	Uploads  UploadConfig   `mapstructure:"uploads"`
	LogLevel string         `mapstructure:"logLevel"`
}

// Load reads .env (if present) and environment variables into a Config.
func Load() (Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.AutomaticEnv()

	v.BindEnv("server.port", "PORT")
	v.BindEnv("database.url", "DATABASE_URL")
	v.BindEnv("database.sqlitePath", "SQLITE_PATH")
	v.BindEnv("jwt.secret", "JWT_SECRET")
	v.BindEnv("jwt.expirationHours", "JWT_EXPIRATION_HOURS")
	v.BindEnv("ai.baseURL", "AI_API_URL")
	v.BindEnv("notifier.cron", "EXPIRY_CRON")
	v.BindEnv("firebase.credentialsFile", "FIREBASE_CREDENTIALS")
	v.BindEnv("uploads.dir", "UPLOAD_DIR")
	v.BindEnv("logLevel", "LOG_LEVEL")

	v.SetDefault("server.port", "8080")
	v.SetDefault("database.sqlitePath", "database.db")
	v.SetDefault("jwt.secret", "secret")
	v.SetDefault("jwt.expirationHours", 24)
	v.SetDefault("ai.baseURL", "http://127.0.0.1:8000")
	v.SetDefault("notifier.cron", "0 8 * * *")
	v.SetDefault("uploads.dir", "uploads")
	v.SetDefault("logLevel", "info")

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
