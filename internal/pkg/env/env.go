package env

import (
	"os"
	"strings"

	"github.com/joho/godotenv"
)

var Env map[string]string

// GetEnv resolves a single key. The process environment wins over the
// loaded .env file, same precedence as All.
func GetEnv(key, def string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	if val, ok := Env[key]; ok {
		return val
	}
	return def
}

// All returns the merged configuration key space: the loaded .env file
// overlaid with the process environment. OS variables win on conflict.
func All() map[string]string {
	merged := make(map[string]string, len(Env))
	for k, v := range Env {
		merged[k] = v
	}
	for _, entry := range os.Environ() {
		if k, v, ok := strings.Cut(entry, "="); ok {
			merged[k] = v
		}
	}
	return merged
}

func SetupEnvFile() {
	// Look for .env file in project root
	envFiles := []string{
		".env",          // Current directory
		"../../.env",    // From cmd/migrate to project root
		"../../../.env", // Fallback for deeper nesting
	}

	for _, envFile := range envFiles {
		if loaded, err := godotenv.Read(envFile); err == nil {
			Env = loaded
			return
		}
	}

	// No .env file is fine in containerized deploys; everything comes
	// from the process environment then.
	Env = map[string]string{}
}

func IsDev() bool {
	return GetEnv("APP_ENV", "prod") == "dev"
}
