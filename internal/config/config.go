// Package config loads server settings from the environment, with a .env
// file picked up in development.
package config

import (
	"os"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port string

	// MySQLDSN empty means run on the in-memory store.
	MySQLDSN string

	// RedisAddr empty means single-instance mode: no cross-instance draw
	// relay and no background cleanup queue.
	RedisAddr     string
	RedisPassword string

	JWTSecret string
	TokenTTL  time.Duration

	// WordsFile overrides the built-in word list.
	WordsFile string

	LogLevel string
}

func Load() Config {
	godotenv.Load()

	return Config{
		Port:          getenv("PORT", "3000"),
		MySQLDSN:      buildDSN(),
		RedisAddr:     os.Getenv("REDIS_ADDR"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		JWTSecret:     getenv("JWT_SECRET", "dev-secret-change-me"),
		TokenTTL:      24 * time.Hour,
		WordsFile:     os.Getenv("WORDS_FILE"),
		LogLevel:      getenv("LOG_LEVEL", "info"),
	}
}

// buildDSN prefers a full MYSQL_DSN; otherwise it is assembled from the
// individual MYSQL_* variables, and MYSQL_HOST unset selects the in-memory
// store.
func buildDSN() string {
	if dsn := os.Getenv("MYSQL_DSN"); dsn != "" {
		return dsn
	}
	host := os.Getenv("MYSQL_HOST")
	if host == "" {
		return ""
	}
	user := getenv("MYSQL_USER", "root")
	password := os.Getenv("MYSQL_PASSWORD")
	port := getenv("MYSQL_PORT", "3306")
	db := getenv("MYSQL_DB", "sketch")
	return user + ":" + password + "@tcp(" + host + ":" + port + ")/" + db + "?charset=utf8mb4&parseTime=True&loc=Local"
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
