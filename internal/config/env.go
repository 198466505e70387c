package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Server holds the settings of the web frontend, read from the environment
// and an optional .env file.
type Server struct {
	Addr string
	FPS  int
	Env  string
}

func LoadServer(files ...string) Server {
	// a missing .env is fine; the environment still applies
	_ = godotenv.Load(files...)

	return Server{
		Addr: getEnv("CRADLE_ADDR", ":8080"),
		FPS:  getEnvInt("CRADLE_FPS", DefaultFPS),
		Env:  getEnv("CRADLE_ENV", "development"),
	}
}

func (s Server) IsProduction() bool { return s.Env == "production" }

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil && n > 0 {
			return n
		}
	}
	return defaultValue
}
