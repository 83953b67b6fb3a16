package config

import (
	"encoding/json"
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	App      AppConfig
	Database DatabaseConfig
	Spotify  SpotifyConfig
	Llm      LlmConfig
	Themes   []ThemeConfig
}

type AppConfig struct {
	Port               string
	BaseURL            string
	ClientURL          string
	Environment        string
	LogFilePath        string
	CorsAllowedOrigins string
	RedisURL           string
	DataDir            string
	DryRun             bool
	JwtSecret          string
}

type DatabaseConfig struct {
	Connection string
}

type SpotifyConfig struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string
}

type LlmConfig struct {
	Provider  string // "openai" or "anthropic"
	Model     string // empty means provider default
	ApiKey    string
	BatchSize int
	// How many tracks ahead of the cursor to warm suggestions for.
	PrefetchWindow int
}

type ThemeConfig struct {
	Key         string `json:"key"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Shortcut    string `json:"shortcut"`
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, usage system environment")
	}

	return &Config{
		App: AppConfig{
			Port:               getEnv("APP_PORT", "3000"),
			BaseURL:            getEnv("APP_BASE_URL", "http://localhost:3000"),
			ClientURL:          getEnv("CLIENT_URL", "http://localhost:5173"),
			Environment:        getEnv("GO_ENV", "development"),
			LogFilePath:        getEnv("LOG_FILE_PATH", "app.log"),
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173"),
			RedisURL:           getEnv("REDIS_URL", ""),
			DataDir:            getEnv("DATA_DIR", "./data"),
			DryRun:             getEnvAsBool("DRY_RUN", false),
			JwtSecret:          getEnv("JWT_SECRET", ""),
		},
		Database: DatabaseConfig{
			Connection: getEnv("DB_CONNECTION_STRING", ""),
		},
		Spotify: SpotifyConfig{
			ClientID:     getEnv("SPOTIFY_CLIENT_ID", ""),
			ClientSecret: getEnv("SPOTIFY_CLIENT_SECRET", ""),
			RedirectURL:  getEnv("SPOTIFY_REDIRECT_URL", "http://localhost:3000/api/auth/v1/callback"),
		},
		Llm: LlmConfig{
			Provider:       getEnv("LLM_PROVIDER", "openai"),
			Model:          getEnv("LLM_MODEL", ""),
			ApiKey:         getEnv("LLM_API_KEY", ""),
			BatchSize:      getEnvAsInt("LLM_BATCH_SIZE", 10),
			PrefetchWindow: getEnvAsInt("SUGGESTION_PREFETCH_WINDOW", 3),
		},
		Themes: loadThemes(getEnv("THEMES_FILE", "")),
	}
}

// DefaultThemes is the stock catalog used when no THEMES_FILE is configured.
func DefaultThemes() []ThemeConfig {
	return []ThemeConfig{
		{
			Key:         "ambiance",
			Name:        "Ambiance",
			Description: "Mid-tempo, groovy, warm, melodic tracks. Can move gently but stays chill.",
			Shortcut:    "1",
		},
		{
			Key:         "lets_dance",
			Name:        "Let's Dance",
			Description: "Upbeat, danceable, recent party hits. High energy.",
			Shortcut:    "2",
		},
	}
}

func loadThemes(path string) []ThemeConfig {
	if path == "" {
		return DefaultThemes()
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		log.Printf("[WARN] Unable to read themes file %s, using defaults: %v", path, err)
		return DefaultThemes()
	}

	var themes []ThemeConfig
	if err := json.Unmarshal(raw, &themes); err != nil || len(themes) == 0 {
		log.Printf("[WARN] Invalid themes file %s, using defaults", path)
		return DefaultThemes()
	}
	return themes
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	strValue := getEnv(key, "")
	if value, err := strconv.Atoi(strValue); err == nil {
		return value
	}
	return fallback
}

func getEnvAsBool(key string, fallback bool) bool {
	strValue := getEnv(key, "")
	if value, err := strconv.ParseBool(strValue); err == nil {
		return value
	}
	return fallback
}
