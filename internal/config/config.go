package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	Port            string
	Env             string
	MongoURI        string
	MongoDB         string
	RedisAddr       string
	RabbitURL       string
	SessionTTLHours int
	CookieName      string
	CookieSecure    bool
}

func Load() Config {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	return Config{
		Port:            getenv("APP_PORT", "8080"),
		Env:             getenv("APP_ENV", "dev"),
		MongoURI:        getenv("MONGO_URI", "mongodb://localhost:27017"),
		MongoDB:         getenv("MONGO_DB", "portal_db"),
		RedisAddr:       getenv("REDIS_ADDR", "localhost:6379"),
		RabbitURL:       getenv("RABBIT_URL", ""),
		SessionTTLHours: atoi(getenv("SESSION_TTL_HOURS", "24")),
		CookieName:      getenv("COOKIE_NAME", "portal_session"),
		CookieSecure:    getenv("COOKIE_SECURE", "false") == "true",
	}
}

func (c Config) Prod() bool { return c.Env == "prod" }

func atoi(s string) int {
	if v, err := strconv.Atoi(s); err == nil {
		return v
	}
	return 0
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
