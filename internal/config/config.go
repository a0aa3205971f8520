package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	Addr         string
	DatabasePath string

	// Defaults applied when a create-tournament request omits them.
	TableCount  int
	LoserWeight float64
	AutoAssign  bool
}

func Load() Config {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	return Config{
		Addr:         getenv("ADDR", ":8080"),
		DatabasePath: getenv("DB_PATH", "bracketd.db"),
		TableCount:   getenvInt("TABLE_COUNT", 2),
		LoserWeight:  getenvFloat("LOSER_BRACKET_WEIGHT", 1.0),
		AutoAssign:   getenvBool("AUTO_ASSIGN", true),
	}
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getenvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getenvFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func getenvBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}
