package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	ServerPort      string
	Environment     string
	FirebaseProject string

	CloudinaryCloudName string
	CloudinaryAPIKey    string
	CloudinaryAPISecret string
	CloudinaryFolder    string

	FivemerrAPIURL string
	FivemerrAPIKey string

	StorageBucket  string
	DefaultBackend string

	CacheDir        string
	CacheMaxEntries int
	FetchTimeout    time.Duration
	DefaultQuality  int
}

func Load() (*Config, error) {
	godotenv.Load()

	config := &Config{
		ServerPort:      getEnv("SERVER_PORT", "8080"),
		Environment:     getEnv("ENVIRONMENT", "development"),
		FirebaseProject: getEnv("FIREBASE_PROJECT_ID", ""),

		CloudinaryCloudName: getEnv("CLOUDINARY_CLOUD_NAME", ""),
		CloudinaryAPIKey:    getEnv("CLOUDINARY_API_KEY", ""),
		CloudinaryAPISecret: getEnv("CLOUDINARY_API_SECRET", ""),
		CloudinaryFolder:    getEnv("CLOUDINARY_FOLDER", "bird_gallery"),

		FivemerrAPIURL: getEnv("FIVEMERR_API_URL", "https://api.fivemerr.com/v1/media/images"),
		FivemerrAPIKey: getEnv("FIVEMERR_API_KEY", ""),

		StorageBucket:  getEnv("STORAGE_BUCKET", ""),
		DefaultBackend: getEnv("DEFAULT_STORAGE_BACKEND", "cloudinary"),

		CacheDir:        getEnv("IMAGE_CACHE_DIR", "./image_cache"),
		CacheMaxEntries: getEnvAsInt("IMAGE_CACHE_MAX_ENTRIES", 50),
		FetchTimeout:    time.Duration(getEnvAsInt("IMAGE_FETCH_TIMEOUT_SECONDS", 10)) * time.Second,
		DefaultQuality:  getEnvAsInt("IMAGE_DEFAULT_QUALITY", 80),
	}

	return config, nil
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value, exists := os.LookupEnv(key); exists {
		intValue, err := strconv.Atoi(value)
		if err == nil {
			return intValue
		}
	}
	return defaultValue
}
