package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/intelicampusai/vex5hub-site/internal/platform/logging"
)

const (
	EnvDev   = "dev"
	EnvStage = "stage"
	EnvProd  = "prod"
)

// Config stores runtime configuration for the updater.
type Config struct {
	AppEnv         string `validate:"required,oneof=dev stage prod"`
	ServiceName    string `validate:"required"`
	ServiceVersion string

	AWSRegion   string `validate:"required"`
	TableName   string `validate:"required"`
	ProjectName string `validate:"required"`
	SecretName  string `validate:"required"`

	SeasonID       int `validate:"gt=0"`
	SkillsSeasonID int `validate:"gt=0"`

	RobotEventsBaseURL    string        `validate:"required,url"`
	RobotEventsTimeout    time.Duration `validate:"gt=0"`
	RobotEventsMaxRetries int           `validate:"gte=0"`
	RobotEventsMaxPages   int           `validate:"gte=1"`
	RobotEventsRateRPS    float64       `validate:"gt=0"`
	RobotEventsRateBurst  int           `validate:"gte=1"`

	CircuitEnabled        bool
	CircuitFailureCount   int           `validate:"gte=1"`
	CircuitOpenTimeout    time.Duration `validate:"gt=0"`
	CircuitHalfOpenMaxReq int           `validate:"gte=1"`

	TopTeamCount int      `validate:"gte=1"`
	WorldsSKUs   []string `validate:"dive,required"`
	GradeLevels  []string `validate:"min=1,dive,required"`

	SyncInterval time.Duration `validate:"gt=0"`
	SyncDeadline time.Duration `validate:"gt=0"`
	SyncWorkers  int           `validate:"gte=1"`

	UptraceEnabled bool
	UptraceDSN     string

	PyroscopeEnabled       bool
	PyroscopeServerAddress string
	PyroscopeAppName       string

	LogLevel logging.Level
}

func Load() (Config, error) {
	appEnv, err := parseAppEnv(getEnv("APP_ENV", EnvDev))
	if err != nil {
		return Config{}, err
	}

	seasonID, err := getEnvAsInt("SEASON_ID", 190)
	if err != nil {
		return Config{}, fmt.Errorf("parse SEASON_ID: %w", err)
	}
	skillsSeasonID, err := getEnvAsInt("SKILLS_SEASON_ID", 197)
	if err != nil {
		return Config{}, fmt.Errorf("parse SKILLS_SEASON_ID: %w", err)
	}

	reTimeout, err := time.ParseDuration(getEnv("ROBOTEVENTS_TIMEOUT", "20s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse ROBOTEVENTS_TIMEOUT: %w", err)
	}
	reMaxRetries, err := getEnvAsInt("ROBOTEVENTS_MAX_RETRIES", 3)
	if err != nil {
		return Config{}, fmt.Errorf("parse ROBOTEVENTS_MAX_RETRIES: %w", err)
	}
	reMaxPages, err := getEnvAsInt("ROBOTEVENTS_MAX_PAGES", 50)
	if err != nil {
		return Config{}, fmt.Errorf("parse ROBOTEVENTS_MAX_PAGES: %w", err)
	}
	reRateRPS, err := getEnvAsFloat("ROBOTEVENTS_RATE_RPS", 5)
	if err != nil {
		return Config{}, fmt.Errorf("parse ROBOTEVENTS_RATE_RPS: %w", err)
	}
	reRateBurst, err := getEnvAsInt("ROBOTEVENTS_RATE_BURST", 1)
	if err != nil {
		return Config{}, fmt.Errorf("parse ROBOTEVENTS_RATE_BURST: %w", err)
	}

	circuitEnabled, err := strconv.ParseBool(getEnv("ROBOTEVENTS_CIRCUIT_ENABLED", "true"))
	if err != nil {
		return Config{}, fmt.Errorf("parse ROBOTEVENTS_CIRCUIT_ENABLED: %w", err)
	}
	circuitFailureCount, err := getEnvAsInt("ROBOTEVENTS_CIRCUIT_FAILURE_COUNT", 5)
	if err != nil {
		return Config{}, fmt.Errorf("parse ROBOTEVENTS_CIRCUIT_FAILURE_COUNT: %w", err)
	}
	circuitOpenTimeout, err := time.ParseDuration(getEnv("ROBOTEVENTS_CIRCUIT_OPEN_TIMEOUT", "15s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse ROBOTEVENTS_CIRCUIT_OPEN_TIMEOUT: %w", err)
	}
	circuitHalfOpenMaxReq, err := getEnvAsInt("ROBOTEVENTS_CIRCUIT_HALF_OPEN_MAX_REQ", 2)
	if err != nil {
		return Config{}, fmt.Errorf("parse ROBOTEVENTS_CIRCUIT_HALF_OPEN_MAX_REQ: %w", err)
	}

	topTeamCount, err := getEnvAsInt("TOP_TEAM_COUNT", 50)
	if err != nil {
		return Config{}, fmt.Errorf("parse TOP_TEAM_COUNT: %w", err)
	}

	syncInterval, err := time.ParseDuration(getEnv("SYNC_INTERVAL", "1h"))
	if err != nil {
		return Config{}, fmt.Errorf("parse SYNC_INTERVAL: %w", err)
	}
	syncDeadline, err := time.ParseDuration(getEnv("SYNC_DEADLINE", "10m"))
	if err != nil {
		return Config{}, fmt.Errorf("parse SYNC_DEADLINE: %w", err)
	}
	syncWorkers, err := getEnvAsInt("SYNC_WORKERS", 4)
	if err != nil {
		return Config{}, fmt.Errorf("parse SYNC_WORKERS: %w", err)
	}

	uptraceEnabled, err := strconv.ParseBool(getEnv("UPTRACE_ENABLED", "false"))
	if err != nil {
		return Config{}, fmt.Errorf("parse UPTRACE_ENABLED: %w", err)
	}
	uptraceDSN := strings.TrimSpace(getEnv("UPTRACE_DSN", ""))
	if uptraceEnabled && uptraceDSN == "" {
		return Config{}, fmt.Errorf("UPTRACE_DSN is required when UPTRACE_ENABLED=true")
	}

	pyroscopeEnabled, err := strconv.ParseBool(getEnv("PYROSCOPE_ENABLED", "false"))
	if err != nil {
		return Config{}, fmt.Errorf("parse PYROSCOPE_ENABLED: %w", err)
	}
	pyroscopeServerAddress := strings.TrimSpace(getEnv("PYROSCOPE_SERVER_ADDRESS", ""))
	if pyroscopeEnabled && pyroscopeServerAddress == "" {
		return Config{}, fmt.Errorf("PYROSCOPE_SERVER_ADDRESS is required when PYROSCOPE_ENABLED=true")
	}

	projectName := getEnv("PROJECT_NAME", "vex5hub")

	gradeLevels := splitCSV(getEnv("GRADE_LEVELS", "Middle School,High School"))
	if len(gradeLevels) == 0 {
		return Config{}, fmt.Errorf("GRADE_LEVELS must name at least one grade division")
	}

	cfg := Config{
		AppEnv:         appEnv,
		ServiceName:    getEnv("SERVICE_NAME", "vex5hub-updater"),
		ServiceVersion: getEnv("SERVICE_VERSION", "dev"),

		AWSRegion:   getEnv("AWS_REGION", "ca-central-1"),
		TableName:   getEnv("TABLE_NAME", ""),
		ProjectName: projectName,
		SecretName:  getEnv("SECRET_NAME", projectName+"/robotevents-api-key"),

		SeasonID:       seasonID,
		SkillsSeasonID: skillsSeasonID,

		RobotEventsBaseURL:    getEnv("ROBOTEVENTS_BASE_URL", "https://www.robotevents.com/api/v2"),
		RobotEventsTimeout:    reTimeout,
		RobotEventsMaxRetries: reMaxRetries,
		RobotEventsMaxPages:   reMaxPages,
		RobotEventsRateRPS:    reRateRPS,
		RobotEventsRateBurst:  reRateBurst,

		CircuitEnabled:        circuitEnabled,
		CircuitFailureCount:   circuitFailureCount,
		CircuitOpenTimeout:    circuitOpenTimeout,
		CircuitHalfOpenMaxReq: circuitHalfOpenMaxReq,

		TopTeamCount: topTeamCount,
		WorldsSKUs:   splitCSV(getEnv("WORLDS_SKUS", "")),
		GradeLevels:  gradeLevels,

		SyncInterval: syncInterval,
		SyncDeadline: syncDeadline,
		SyncWorkers:  syncWorkers,

		UptraceEnabled: uptraceEnabled,
		UptraceDSN:     uptraceDSN,

		PyroscopeEnabled:       pyroscopeEnabled,
		PyroscopeServerAddress: pyroscopeServerAddress,
		PyroscopeAppName:       getEnv("PYROSCOPE_APP_NAME", "vex5hub-updater"),

		LogLevel: parseLogLevel(getEnv("APP_LOG_LEVEL", "info")),
	}

	if err := validator.New().Struct(cfg); err != nil {
		return Config{}, fmt.Errorf("validate config: %w", err)
	}

	return cfg, nil
}

func parseAppEnv(v string) (string, error) {
	value := strings.ToLower(strings.TrimSpace(v))
	switch value {
	case EnvDev, EnvStage, EnvProd:
		return value, nil
	default:
		return "", fmt.Errorf("invalid APP_ENV %q: valid values are %s, %s, %s", v, EnvDev, EnvStage, EnvProd)
	}
}

func parseLogLevel(v string) logging.Level {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "debug":
		return logging.LevelDebug
	case "warn", "warning":
		return logging.LevelWarn
	case "error":
		return logging.LevelError
	default:
		return logging.LevelInfo
	}
}

func getEnv(key, fallback string) string {
	value := os.Getenv(key)
	if strings.TrimSpace(value) == "" {
		return fallback
	}
	return value
}

func getEnvAsInt(key string, fallback int) (int, error) {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback, nil
	}
	return strconv.Atoi(value)
}

func getEnvAsFloat(key string, fallback float64) (float64, error) {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback, nil
	}
	return strconv.ParseFloat(value, 64)
}

func splitCSV(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		item := strings.TrimSpace(part)
		if item == "" {
			continue
		}
		out = append(out, item)
	}
	return out
}
