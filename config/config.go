package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Fetch backends.
const (
	BackendHTTP    = "http"
	BackendBrowser = "browser"
)

// Config holds all application configuration loaded from environment variables.
// Every value has a default, so the commands run without any environment.
type Config struct {
	BaseURL          string
	AcceptLanguage   string
	FetchBackend     string
	ChromeBin        string
	RequestTimeout   time.Duration
	CloudflareBypass bool

	MinDelay       time.Duration
	MaxDelay       time.Duration
	MaxConcurrency int
	WorkerInterval time.Duration
	PageDelay      time.Duration

	SearchResultsPattern string
	FirstPage            int
	LastPage             int

	RawOutputPath    string
	PagesOutputPath  string
	CleanInputGlob   string
	CleanOutputPath  string
	FieldMappingPath string

	PostgresEnabled  bool
	PostgresHost     string
	PostgresPort     string
	PostgresUser     string
	PostgresPassword string
	PostgresDB       string
	PostgresSSLMode  string
	SQLitePath       string
	MaxRetries       int

	LogLevel string
}

// Load reads the .env file and returns a populated Config struct.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("[config] No .env file found, falling back to system env vars")
	}

	return &Config{
		BaseURL:          getEnv("BASE_URL", "https://www.pazar3.mk"),
		AcceptLanguage:   getEnv("ACCEPT_LANGUAGE", "mk-MK,en-US;q=0.7"),
		FetchBackend:     strings.ToLower(getEnv("FETCH_BACKEND", BackendHTTP)),
		ChromeBin:        getEnv("CHROME_BIN", ""),
		RequestTimeout:   getEnvDuration("REQUEST_TIMEOUT", 15*time.Second),
		CloudflareBypass: getEnvBool("CLOUDFLARE_BYPASS", true),

		MinDelay:       getEnvDuration("MIN_DELAY", 1*time.Second),
		MaxDelay:       getEnvDuration("MAX_DELAY", 3*time.Second),
		MaxConcurrency: getEnvInt("MAX_CONCURRENCY", 5),
		WorkerInterval: getEnvDuration("WORKER_INTERVAL", 0),
		PageDelay:      getEnvDuration("PAGE_DELAY", 5*time.Second),

		SearchResultsPattern: getEnv("SEARCH_RESULTS_PATTERN", "search_results_page_%d.csv"),
		FirstPage:            getEnvInt("FIRST_PAGE", 13),
		LastPage:             getEnvInt("LAST_PAGE", 22),

		RawOutputPath:    getEnv("RAW_OUTPUT_PATH", "car_listings.csv"),
		PagesOutputPath:  getEnv("PAGES_OUTPUT_PATH", "parallel_car_listings.csv"),
		CleanInputGlob:   getEnv("CLEAN_INPUT_GLOB", "parallel_car_listings*.csv"),
		CleanOutputPath:  getEnv("CLEAN_OUTPUT_PATH", "cleaned_car_listings.csv"),
		FieldMappingPath: getEnv("FIELD_MAPPING_PATH", "field_mapping.json5"),

		PostgresEnabled:  getEnvBool("POSTGRES_ENABLED", false),
		PostgresHost:     getEnv("POSTGRES_HOST", "localhost"),
		PostgresPort:     getEnv("POSTGRES_PORT", "5432"),
		PostgresUser:     getEnv("POSTGRES_USER", "scraper"),
		PostgresPassword: getEnv("POSTGRES_PASSWORD", "scraper123"),
		PostgresDB:       getEnv("POSTGRES_DB", "car_listings"),
		PostgresSSLMode:  getEnv("POSTGRES_SSLMODE", "disable"),
		SQLitePath:       getEnv("SQLITE_PATH", ""),
		MaxRetries:       getEnvInt("MAX_RETRIES", 5),

		LogLevel: getEnv("LOG_LEVEL", "info"),
	}
}

// DSN returns the PostgreSQL connection string.
func (c *Config) DSN() string {
	return "host=" + c.PostgresHost +
		" port=" + c.PostgresPort +
		" user=" + c.PostgresUser +
		" password=" + c.PostgresPassword +
		" dbname=" + c.PostgresDB +
		" sslmode=" + c.PostgresSSLMode
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		n, err := strconv.Atoi(val)
		if err == nil {
			return n
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if val := os.Getenv(key); val != "" {
		b, err := strconv.ParseBool(val)
		if err == nil {
			return b
		}
	}
	return fallback
}

// getEnvDuration accepts Go durations ("1500ms", "3s") or a bare number of seconds.
func getEnvDuration(key string, fallback time.Duration) time.Duration {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	if d, err := time.ParseDuration(val); err == nil {
		return d
	}
	if n, err := strconv.Atoi(val); err == nil {
		return time.Duration(n) * time.Second
	}
	return fallback
}
