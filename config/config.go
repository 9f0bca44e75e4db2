package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// Settings holds the service credentials and model selection read from the environment.
type Settings struct {
	APIKey  string `validate:"required"`
	BaseURL string `validate:"required,url"`

	VisionModel   string `validate:"required"`
	RephraseModel string `validate:"required"`
	ImageModel    string `validate:"required"`
	ImageSize     string `validate:"required"`
	ImageQuality  string `validate:"required"`

	MaxImageGenerationRetries int `validate:"gte=0"`
	AlwaysGenerateBear        bool
	DefaultImagePath          string `validate:"required"`

	ImageRequestsPerMinute int `validate:"gte=0"`
	HTTPTimeout            time.Duration
}

// LoadSettings reads Settings from the process environment. Call godotenv.Load first
// if values should come from a .env file.
func LoadSettings() (Settings, error) {
	s := readSettings()
	if err := s.Validate(); err != nil {
		return Settings{}, err
	}
	return s, nil
}

// LoadOfflineSettings is LoadSettings without the credential checks, for runs that never
// reach the API.
func LoadOfflineSettings() (Settings, error) {
	s := readSettings()
	if err := describe(validator.New().StructExcept(s, "APIKey", "BaseURL")); err != nil {
		return Settings{}, err
	}
	return s, nil
}

func readSettings() Settings {
	s := Settings{
		APIKey:                    strings.TrimSpace(os.Getenv("API_KEY")),
		BaseURL:                   strings.TrimSpace(os.Getenv("BASE_URL")),
		VisionModel:               getEnv("VISION_MODEL", "gpt-4-vision-preview"),
		RephraseModel:             getEnv("REPHRASE_MODEL", "gpt-4"),
		ImageModel:                getEnv("IMAGE_MODEL", "dall-e-3"),
		ImageSize:                 getEnv("IMAGE_SIZE", "1024x1024"),
		ImageQuality:              getEnv("IMAGE_QUALITY", "standard"),
		MaxImageGenerationRetries: getEnvInt("MAX_IMAGE_GENERATION_RETRIES", 3),
		AlwaysGenerateBear:        getEnvBool("ALWAYS_GENERATE_BEAR", false),
		DefaultImagePath:          getEnv("DEFAULT_IMAGE_PATH", DefaultImagePath),
		ImageRequestsPerMinute:    getEnvInt("IMAGE_REQUESTS_PER_MINUTE", 0),
		HTTPTimeout:               time.Duration(getEnvInt("HTTP_TIMEOUT_SECONDS", 180)) * time.Second,
	}
	if s.HTTPTimeout <= 0 {
		s.HTTPTimeout = 180 * time.Second
	}
	return s
}

// Validate reports the first missing or malformed setting using the environment variable name.
func (s Settings) Validate() error {
	return describe(validator.New().Struct(s))
}

func describe(err error) error {
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return err
	}
	fe := verrs[0]
	name := envNames[fe.Field()]
	if name == "" {
		name = fe.Field()
	}
	switch fe.Tag() {
	case "required":
		return fmt.Errorf("%s is required", name)
	case "url":
		return fmt.Errorf("%s must be a valid URL, got %q", name, fe.Value())
	default:
		return fmt.Errorf("%s is invalid (%s)", name, fe.Tag())
	}
}

var envNames = map[string]string{
	"APIKey":                    "API_KEY",
	"BaseURL":                   "BASE_URL",
	"VisionModel":               "VISION_MODEL",
	"RephraseModel":             "REPHRASE_MODEL",
	"ImageModel":                "IMAGE_MODEL",
	"ImageSize":                 "IMAGE_SIZE",
	"ImageQuality":              "IMAGE_QUALITY",
	"MaxImageGenerationRetries": "MAX_IMAGE_GENERATION_RETRIES",
	"DefaultImagePath":          "DEFAULT_IMAGE_PATH",
	"ImageRequestsPerMinute":    "IMAGE_REQUESTS_PER_MINUTE",
}

func getEnv(key, fallback string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvBool(key string, fallback bool) bool {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return fallback
	}
	return parsed
}
