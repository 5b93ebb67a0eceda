package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port        string
	AppEnv      string
	LogLevel    string
	MongoURI    string
	MongoDB     string
	JWTSecret   string
	JWTExpire   int
	FrontendURL string

	// Classifier service
	ClassifierAPIKey  string
	ClassifierBaseURL string

	// Review pipeline
	MaxSegmentLen     int
	ReviewWorkers     int
	ReviewMaxAttempts int
	ReviewRetryDelay  time.Duration
	ApproveBelow      float64
	RejectAbove       float64

	// Attachment storage
	CloudinaryCloudName string
	CloudinaryAPIKey    string
	CloudinaryAPISecret string
	CloudinaryFolder    string

	// Notification push
	FirebaseCredentialsPath string
}

func Load() *Config {
	err := godotenv.Load()
	if err != nil {
		log.Println("No .env file found")
	}

	return &Config{
		Port:        getEnv("PORT", "8080"),
		AppEnv:      getEnv("APP_ENV", "development"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		MongoURI:    getEnv("MONGO_URI", "mongodb://localhost:27017"),
		MongoDB:     getEnv("MONGO_DB", "lorebase"),
		JWTSecret:   getEnv("JWT_SECRET", "secret"),
		JWTExpire:   getEnvInt("JWT_EXPIRE_HOURS", 24),
		FrontendURL: getEnv("FRONTEND_URL", "http://localhost:3000"),

		// No default for the API key: a missing key is a configuration
		// error raised when the classifier client is constructed.
		ClassifierAPIKey:  getEnv("CLASSIFIER_API_KEY", ""),
		ClassifierBaseURL: getEnv("CLASSIFIER_BASE_URL", ""),

		MaxSegmentLen:     getEnvInt("REVIEW_MAX_SEGMENT_LEN", 4000),
		ReviewWorkers:     getEnvInt("REVIEW_WORKERS", 4),
		ReviewMaxAttempts: getEnvInt("REVIEW_MAX_ATTEMPTS", 3),
		ReviewRetryDelay:  getEnvDuration("REVIEW_RETRY_DELAY", 60*time.Second),
		ApproveBelow:      getEnvFloat("REVIEW_APPROVE_BELOW", 0.5),
		RejectAbove:       getEnvFloat("REVIEW_REJECT_ABOVE", 0.8),

		CloudinaryCloudName: getEnv("CLOUDINARY_CLOUD_NAME", ""),
		CloudinaryAPIKey:    getEnv("CLOUDINARY_API_KEY", ""),
		CloudinaryAPISecret: getEnv("CLOUDINARY_API_SECRET", ""),
		CloudinaryFolder:    getEnv("CLOUDINARY_UPLOAD_FOLDER", "lorebase"),

		FirebaseCredentialsPath: getEnv("FIREBASE_SERVICE_ACCOUNT_PATH", ""),
	}
}

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
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
