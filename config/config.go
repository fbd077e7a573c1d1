package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

var (
	// Server
	ServerPort     string
	GinMode        string
	AllowedOrigins string

	// Postgres
	PostgresHost     string
	PostgresPort     string
	PostgresUser     string
	PostgresPassword string
	PostgresDB       string

	// Session tokens issued by the auth frontend; we only verify them
	SessionSecret string

	// Judge service
	JudgeBaseURL   string
	JudgeEndpoint  string
	JudgeThreshold float64
	JudgeTimeout   time.Duration

	// Gameplay
	TryLimit       int
	GuessMaxLength int
)

// Load reads the .env file if present and populates the package variables.
// Environment variables always win over .env entries.
func Load() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	ServerPort = getEnv("SERVER_PORT", "8080")
	GinMode = getEnv("GIN_MODE", "debug")
	AllowedOrigins = getEnv("ALLOWED_ORIGINS", "http://localhost:3000")

	PostgresHost = getEnv("POSTGRES_HOST", "localhost")
	PostgresPort = getEnv("POSTGRES_PORT", "5432")
	PostgresUser = getEnv("POSTGRES_USER", "postgres")
	PostgresPassword = getEnv("POSTGRES_PASSWORD", "postgres")
	PostgresDB = getEnv("POSTGRES_DB", "dataguess")

	SessionSecret = getEnv("SESSION_SECRET", "")

	JudgeBaseURL = getEnv("JUDGE_BASE_URL", "http://localhost:8000")
	JudgeEndpoint = getEnv("JUDGE_ENDPOINT", "/cosine_similarity")
	JudgeThreshold = getEnvFloat("JUDGE_CORRECT_THRESHOLD", 0.85)
	JudgeTimeout = time.Duration(getEnvInt("JUDGE_TIMEOUT_MS", 5000)) * time.Millisecond

	TryLimit = getEnvInt("TRY_LIMIT", 6)
	GuessMaxLength = getEnvInt("GUESS_MAX_LENGTH", 200)
}

func getEnv(key string, fallback string) string {
	if value, exists := os.LookupEnv(key); exists && value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	value, exists := os.LookupEnv(key)
	if !exists || value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		log.Printf("Invalid integer for %s, using default %d", key, fallback)
		return fallback
	}
	return parsed
}

func getEnvFloat(key string, fallback float64) float64 {
	value, exists := os.LookupEnv(key)
	if !exists || value == "" {
		return fallback
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		log.Printf("Invalid float for %s, using default %f", key, fallback)
		return fallback
	}
	return parsed
}
