package config

import (
	"os"

	"github.com/joho/godotenv"
)

// LoadDotEnv loads .env files with .env.local taking precedence over .env.
// godotenv never overwrites variables already set, so the OS environment
// always wins. Returns the files actually loaded.
func LoadDotEnv() []string {
	var loaded []string
	for _, f := range []string{".env.local", ".env"} {
		if _, err := os.Stat(f); err == nil {
			loaded = append(loaded, f)
		}
	}
	if len(loaded) > 0 {
		_ = godotenv.Load(loaded...)
	}
	return loaded
}
