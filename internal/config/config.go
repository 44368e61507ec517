package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration. It is built once in main and passed
// into constructors; nothing reads the environment after startup.
type Config struct {
	ServerPort      string
	SessionDuration time.Duration
	SecretKey       string

	// Database
	DatabaseType   string // sqlite, postgres, mysql
	DatabasePath   string // sqlite file path
	DatabaseURL    string // postgres/mysql connection URL
	MigrationsPath string

	// Presentation
	StaticFilesPath string
	TemplatesPath   string

	// Anthropic generation gateway
	AnthropicAPIKey      string
	AnthropicModel       string
	AnthropicMaxTokens   int
	AnthropicTemperature float64
	GenerationRetries    int
	GenerationRetryDelay time.Duration

	// Activity rules
	MaxActivitiesPerDay      int
	MinActivityDuration      int // minutes
	MaxActivityDuration      int
	DurationIncrement        int
	ExtensionPenalty         int // points subtracted from max score per extension
	ExtensionMinutes         int // timer minutes granted per extension
	MaxExtensionsPerActivity int
	MaxActualDuration        int // minutes; completion values above this fall back

	// Materials selection
	MinMaterialsSelection int
	MaxMaterialsSelection int

	AvailableMaterials []string
	LearningObjectives []string
	Categories         []string

	// Reimbursement catalog
	CatalogPath string

	// Email (Amazon SES); disabled when SESFromEmail is empty
	AWSRegion    string
	SESFromEmail string
	SESFromName  string
	AppBaseURL   string

	// Optional Google sign-in for parents
	GoogleClientID     string
	GoogleClientSecret string
}

// Load reads configuration from the environment with sensible defaults.
// A .env file in the working directory is honored when present.
func Load() *Config {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("Warning: failed to load .env file: %v", err)
	}

	return &Config{
		ServerPort:      getEnv("PORT", "8080"),
		SessionDuration: getEnvDuration("SESSION_DURATION", 24*time.Hour),
		SecretKey:       getEnv("SECRET_KEY", "dev-secret-change-me"),

		DatabaseType:   getEnv("DATABASE_TYPE", "sqlite"),
		DatabasePath:   getEnv("DB_PATH", "./craftacademy.db"),
		DatabaseURL:    getEnv("DATABASE_URL", ""),
		MigrationsPath: getEnv("MIGRATIONS_PATH", "./migrations"),

		StaticFilesPath: getEnv("STATIC_PATH", "./static"),
		TemplatesPath:   getEnv("TEMPLATES_PATH", "./templates"),

		AnthropicAPIKey:      getEnv("ANTHROPIC_API_KEY", ""),
		AnthropicModel:       getEnv("ANTHROPIC_MODEL", "claude-3-haiku-20240307"),
		AnthropicMaxTokens:   getEnvInt("ANTHROPIC_MAX_TOKENS", 1500),
		AnthropicTemperature: getEnvFloat("ANTHROPIC_TEMPERATURE", 0.7),
		GenerationRetries:    getEnvInt("GENERATION_RETRIES", 3),
		GenerationRetryDelay: getEnvDuration("GENERATION_RETRY_DELAY", 2*time.Second),

		MaxActivitiesPerDay:      getEnvInt("MAX_ACTIVITIES_PER_DAY", 3),
		MinActivityDuration:      getEnvInt("MIN_ACTIVITY_DURATION", 15),
		MaxActivityDuration:      getEnvInt("MAX_ACTIVITY_DURATION", 60),
		DurationIncrement:        getEnvInt("DURATION_INCREMENT", 15),
		ExtensionPenalty:         getEnvInt("EXTENSION_PENALTY", 5),
		ExtensionMinutes:         getEnvInt("EXTENSION_MINUTES", 5),
		MaxExtensionsPerActivity: getEnvInt("MAX_EXTENSIONS_PER_ACTIVITY", 2),
		MaxActualDuration:        getEnvInt("MAX_ACTUAL_DURATION", 180),

		MinMaterialsSelection: getEnvInt("MIN_MATERIALS_SELECTION", 3),
		MaxMaterialsSelection: getEnvInt("MAX_MATERIALS_SELECTION", 8),

		AvailableMaterials: getEnvList("AVAILABLE_MATERIALS", []string{
			"cardboard", "scissors", "aluminum_foil", "markers",
			"glue", "string", "beads", "paint", "paper", "tape",
			"popsicle_sticks", "rubber_bands", "buttons", "yarn",
			"construction_paper", "pipe_cleaners", "googly_eyes",
		}),
		LearningObjectives: getEnvList("LEARNING_OBJECTIVES", []string{
			"engineering", "creativity", "following_directions",
			"problem_solving", "fine_motor_skills", "color_recognition",
			"spatial_awareness", "patience", "focus",
		}),
		Categories: getEnvList("CATEGORIES", []string{
			"building", "painting", "crafting", "jewelry_making",
		}),

		CatalogPath: getEnv("REIMBURSEMENT_CATALOG_PATH", "./reimbursement_items.json"),

		AWSRegion:    getEnv("AWS_REGION", "us-east-1"),
		SESFromEmail: getEnv("SES_FROM_EMAIL", ""),
		SESFromName:  getEnv("SES_FROM_NAME", "Creative Summer Academy"),
		AppBaseURL:   getEnv("APP_BASE_URL", "http://localhost:8080"),

		GoogleClientID:     getEnv("GOOGLE_CLIENT_ID", ""),
		GoogleClientSecret: getEnv("GOOGLE_CLIENT_SECRET", ""),
	}
}

// DurationOptions returns the selectable activity durations in minutes.
func (c *Config) DurationOptions() []int {
	step := c.DurationIncrement
	if step <= 0 {
		step = 1
	}
	var options []int
	for d := c.MinActivityDuration; d <= c.MaxActivityDuration; d += step {
		options = append(options, d)
	}
	return options
}

// ValidCategory reports whether category is in the configured allow-list.
func (c *Config) ValidCategory(category string) bool {
	for _, cat := range c.Categories {
		if cat == category {
			return true
		}
	}
	return false
}

// getEnv reads an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
		log.Printf("Warning: invalid integer for %s, using default %d", key, defaultValue)
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
		log.Printf("Warning: invalid float for %s, using default %v", key, defaultValue)
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
		log.Printf("Warning: invalid duration for %s, using default %v", key, defaultValue)
	}
	return defaultValue
}

func getEnvList(key string, defaultValue []string) []string {
	if value := os.Getenv(key); value != "" {
		parts := strings.Split(value, ",")
		var list []string
		for _, p := range parts {
			if trimmed := strings.TrimSpace(p); trimmed != "" {
				list = append(list, trimmed)
			}
		}
		if len(list) > 0 {
			return list
		}
	}
	return defaultValue
}
