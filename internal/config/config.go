package config

import (
	"os"
	"time"

	"github.com/spf13/viper"
)

// Config holds the full application configuration.
type Config struct {
	Env      string         // Env is the current environment: local, development, production.
	Postgres PostgresConfig // Postgres holds the database configuration.
	Redis    RedisConfig    // Redis holds the session-store configuration.
	HTTP     HTTPConfig     // HTTP holds the API and monitoring listener configuration.
}

// PostgresConfig struct holds the configuration details for connecting to a PostgreSQL database.
type PostgresConfig struct {
	Host     string // Host is the database server address.
	Port     string // Port is the database server port.
	User     string // User is the database user.
	Password string // Password is the database user's password.
	Dbname   string // Dbname is the name of the database.
}

// RedisConfig struct holds the configuration details for the Redis session store.
type RedisConfig struct {
	Addr       string        // Addr is the Redis server address in host:port format.
	Password   string        // Password is the Redis auth password, empty if none.
	SessionTTL time.Duration // SessionTTL is how long an idle session stays valid.
}

// HTTPConfig struct holds the listener addresses.
type HTTPConfig struct {
	APIAddr        string // APIAddr is the address the JSON API listens on.
	MonitoringAddr string // MonitoringAddr is the address the health/metrics server listens on.
}

// MustLoad loads the configuration from the environment, optionally merging a
// YAML file pointed to by CONFIG_PATH first. It panics on malformed input.
func MustLoad() *Config {
	if configPath := os.Getenv("CONFIG_PATH"); configPath != "" {
		if _, err := os.Stat(configPath); os.IsNotExist(err) {
			panic("config file does not exist: " + configPath)
		}
		viper.SetConfigFile(configPath)
		if err := viper.ReadInConfig(); err != nil {
			panic("config error: " + err.Error())
		}
	}

	viper.SetDefault("env", "local")
	viper.SetDefault("postgres.port", "5432")
	viper.SetDefault("redis.addr", "localhost:6379")
	viper.SetDefault("redis.session_ttl", 24*time.Hour)
	viper.SetDefault("http.api_addr", ":8080")
	viper.SetDefault("http.monitoring_addr", ":9090")

	mustBindEnv("env", "ATHENA_ENV")
	mustBindEnv("postgres.host", "DB_HOST")
	mustBindEnv("postgres.port", "DB_PORT")
	mustBindEnv("postgres.user", "DB_USERNAME")
	mustBindEnv("postgres.password", "DB_PASSWORD")
	mustBindEnv("postgres.db_name", "DB_NAME")
	mustBindEnv("redis.addr", "REDIS_ADDR")
	mustBindEnv("redis.password", "REDIS_PASSWORD")
	mustBindEnv("redis.session_ttl", "SESSION_TTL")
	mustBindEnv("http.api_addr", "API_ADDR")
	mustBindEnv("http.monitoring_addr", "MONITORING_ADDR")

	return &Config{
		Env: viper.GetString("env"),
		Postgres: PostgresConfig{
			Host:     viper.GetString("postgres.host"),
			Port:     viper.GetString("postgres.port"),
			User:     viper.GetString("postgres.user"),
			Password: viper.GetString("postgres.password"),
			Dbname:   viper.GetString("postgres.db_name"),
		},
		Redis: RedisConfig{
			Addr:       viper.GetString("redis.addr"),
			Password:   viper.GetString("redis.password"),
			SessionTTL: viper.GetDuration("redis.session_ttl"),
		},
		HTTP: HTTPConfig{
			APIAddr:        viper.GetString("http.api_addr"),
			MonitoringAddr: viper.GetString("http.monitoring_addr"),
		},
	}
}

func mustBindEnv(key, env string) {
	if err := viper.BindEnv(key, env); err != nil {
		panic("failed to bind env variable " + env + ": " + err.Error())
	}
}
