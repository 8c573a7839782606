package app

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config is a application configuration structure
type (
	AppConfig struct {
		Database   DatabaseConfig
		Logging    LoggingConfig
		ConfigFile string
	}

	FCMConfig struct {
		Enabled         bool
		CredentialsPath string
	}

	GeneratorConfig struct {
		BaseURL        string
		DietTimeout    time.Duration
		WorkoutTimeout time.Duration

		// Generation constraints sent with every request and enforced on
		// every response.
		ExerciseCount    int
		MinDurationMin   int
		MaxDurationMin   int
		DailyCaloriesMin int
		DailyCaloriesMax int
	}

	WorkerConfig struct {
		WorkerCount int
		QueueSize   int
		MaxAttempts int
		BaseDelay   time.Duration
	}
)

var (
	Logging   *LoggingConfig
	Database  *DatabaseConfig
	FCM       *FCMConfig
	Generator *GeneratorConfig
	Worker    *WorkerConfig
)

func Setup() {

	if err := godotenv.Load(".env"); err != nil {
		fmt.Println("Error loading .env file:", err)
	}

	Http := &AppConfig{
		Database: DatabaseConfig{
			Driver:   os.Getenv("DB_DRIVER"),
			Host:     os.Getenv("DB_HOST"),
			Username: os.Getenv("DB_USER"),
			Password: os.Getenv("DB_PASSWORD"),
			DBName:   os.Getenv("DB_NAME"),
			Port:     getEnvAsInt("DB_PORT", 3306),
			Debug:    os.Getenv("DB_DEBUG") == "true",
		},
		Logging: LoggingConfig{
			Type:       os.Getenv("LOG_TYPE"),
			ServerName: os.Getenv("SERVER_NAME"),
		},
	}

	Http.Database.Setup()
	Http.Logging.Setup()

	Database = &Http.Database
	Logging = &Http.Logging

	FCM = &FCMConfig{
		Enabled:         os.Getenv("FCM_ENABLED") == "true",
		CredentialsPath: os.Getenv("FCM_CREDENTIALS_PATH"),
	}

	Generator = &GeneratorConfig{
		BaseURL:          os.Getenv("AI_SERVICE_BASE_URL"),
		DietTimeout:      getEnvAsDuration("AI_DIET_TIMEOUT", 20*time.Second),
		WorkoutTimeout:   getEnvAsDuration("AI_WORKOUT_TIMEOUT", 60*time.Second),
		ExerciseCount:    getEnvAsInt("AI_EXERCISE_COUNT", 5),
		MinDurationMin:   getEnvAsInt("AI_MIN_DURATION_MIN", 20),
		MaxDurationMin:   getEnvAsInt("AI_MAX_DURATION_MIN", 60),
		DailyCaloriesMin: getEnvAsInt("AI_DAILY_CALORIES_MIN", 1200),
		DailyCaloriesMax: getEnvAsInt("AI_DAILY_CALORIES_MAX", 4000),
	}

	Worker = &WorkerConfig{
		WorkerCount: getEnvAsInt("JOB_WORKER_COUNT", 3),
		QueueSize:   getEnvAsInt("JOB_QUEUE_SIZE", 1000),
		MaxAttempts: getEnvAsInt("JOB_MAX_ATTEMPTS", 3),
		BaseDelay:   getEnvAsDuration("JOB_BASE_DELAY", 500*time.Millisecond),
	}
}

func Config(key string) string {
	return os.Getenv(key)
}

// Helper convert env -> int
func getEnvAsInt(key string, defaultVal int) int {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	i, err := strconv.Atoi(val)
	if err != nil {
		return defaultVal
	}
	return i
}

func getEnvAsDuration(key string, defaultVal time.Duration) time.Duration {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(val)
	if err != nil {
		return defaultVal
	}
	return d
}
