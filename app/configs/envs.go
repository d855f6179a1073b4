package configs

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

type ENV struct {
	AppPort  string `mapstructure:"APP_PORT" validate:"required"`
	AppEnv   string `mapstructure:"APP_ENV" validate:"oneof=development production test"`
	AppURL   string `mapstructure:"APP_URL" validate:"required,url"`
	LogLevel string `mapstructure:"LOG_LEVEL"`

	SessionKey           string        `mapstructure:"SESSION_KEY"`
	AppAuthKey           string        `mapstructure:"APP_AUTH_KEY"`
	AppEncKey            string        `mapstructure:"APP_ENC_KEY"`
	CSRFKey              string        `mapstructure:"CSRF_KEY"`
	IdentityKey          string        `mapstructure:"IDENTITY_KEY"`
	IdentityAssertionTTL time.Duration `mapstructure:"IDENTITY_ASSERTION_TTL" validate:"gte=1s"`

	APIBaseURL       string        `mapstructure:"API_BASE_URL" validate:"required,url"`
	APITimeout       time.Duration `mapstructure:"API_TIMEOUT" validate:"gt=0"`
	CartSyncDebounce time.Duration `mapstructure:"CART_SYNC_DEBOUNCE" validate:"gt=0"`
	CartIdleTTL      time.Duration `mapstructure:"CART_IDLE_TTL" validate:"gte=1s"`

	StorageDriver string        `mapstructure:"STORAGE_DRIVER" validate:"oneof=memory redis mysql"`
	StorageTTL    time.Duration `mapstructure:"STORAGE_TTL" validate:"gte=0"`
	RedisAddr     string        `mapstructure:"REDIS_ADDR" validate:"required_if=StorageDriver redis"`
	RedisPassword string        `mapstructure:"REDIS_PASSWORD"`
	RedisDB       int           `mapstructure:"REDIS_DB" validate:"gte=0"`

	DBHost     string `mapstructure:"DB_HOST" validate:"required_if=StorageDriver mysql"`
	DBPort     string `mapstructure:"DB_PORT"`
	DBUser     string `mapstructure:"DB_USER" validate:"required_if=StorageDriver mysql"`
	DBPassword string `mapstructure:"DB_PASSWORD"`
	DBName     string `mapstructure:"DB_NAME" validate:"required_if=StorageDriver mysql"`

	PaymentProvider   string `mapstructure:"PAYMENT_PROVIDER" validate:"oneof=backend midtrans"`
	MidtransServerKey string `mapstructure:"MIDTRANS_SERVER_KEY" validate:"required_if=PaymentProvider midtrans"`
	MidtransClientKey string `mapstructure:"MIDTRANS_CLIENT_KEY"`
	MidtransEnv       string `mapstructure:"MIDTRANS_ENV" validate:"oneof=sandbox production"`
}

func (e ENV) IsProduction() bool {
	return e.AppEnv == "production"
}

var defaults = map[string]any{
	"APP_PORT":               "8080",
	"APP_ENV":                "development",
	"APP_URL":                "http://localhost:8080",
	"LOG_LEVEL":              "info",
	"SESSION_KEY":            "",
	"APP_AUTH_KEY":           "",
	"APP_ENC_KEY":            "",
	"CSRF_KEY":               "",
	"IDENTITY_KEY":           "",
	"IDENTITY_ASSERTION_TTL": 5 * time.Minute,
	"API_BASE_URL":           "http://localhost:5000/api",
	"API_TIMEOUT":            10 * time.Second,
	"CART_SYNC_DEBOUNCE":     time.Second,
	"CART_IDLE_TTL":          30 * time.Minute,
	"STORAGE_DRIVER":         "memory",
	"STORAGE_TTL":            30 * 24 * time.Hour,
	"REDIS_ADDR":             "localhost:6379",
	"REDIS_PASSWORD":         "",
	"REDIS_DB":               0,
	"DB_HOST":                "localhost",
	"DB_PORT":                "3306",
	"DB_USER":                "root",
	"DB_PASSWORD":            "",
	"DB_NAME":                "bookstore",
	"PAYMENT_PROVIDER":       "backend",
	"MIDTRANS_SERVER_KEY":    "",
	"MIDTRANS_CLIENT_KEY":    "",
	"MIDTRANS_ENV":           "sandbox",
}

// LoadEnv reads envFile into the process environment when it exists, then
// resolves every setting from the environment on top of the defaults.
func LoadEnv(envFile string) (ENV, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			log.Warn().Str("file", envFile).Msg("No .env file found, using the process environment")
		}
	}

	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	v.AutomaticEnv()

	var env ENV
	if err := v.Unmarshal(&env); err != nil {
		return ENV{}, fmt.Errorf("decode config: %w", err)
	}
	if err := validator.New().Struct(env); err != nil {
		return ENV{}, fmt.Errorf("invalid config: %w", err)
	}
	return env, nil
}
