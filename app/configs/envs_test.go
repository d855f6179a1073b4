package configs

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadEnv_Defaults(t *testing.T) {
	env, err := LoadEnv("")
	require.NoError(t, err)

	assert.Equal(t, "8080", env.AppPort)
	assert.Equal(t, time.Second, env.CartSyncDebounce)
	assert.Equal(t, 10*time.Second, env.APITimeout)
	assert.Equal(t, "memory", env.StorageDriver)
	assert.Equal(t, "backend", env.PaymentProvider)
	assert.Equal(t, 30*time.Minute, env.CartIdleTTL)
	assert.Equal(t, 5*time.Minute, env.IdentityAssertionTTL)
	assert.False(t, env.IsProduction())
}

func TestLoadEnv_EnvironmentOverrides(t *testing.T) {
	t.Setenv("APP_PORT", "9090")
	t.Setenv("CART_SYNC_DEBOUNCE", "250ms")
	t.Setenv("STORAGE_DRIVER", "redis")
	t.Setenv("REDIS_DB", "3")

	env, err := LoadEnv("")
	require.NoError(t, err)

	assert.Equal(t, "9090", env.AppPort)
	assert.Equal(t, 250*time.Millisecond, env.CartSyncDebounce)
	assert.Equal(t, "redis", env.StorageDriver)
	assert.Equal(t, 3, env.RedisDB)
}

func TestLoadEnv_ReadsEnvFile(t *testing.T) {
	file := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(file, []byte("API_BASE_URL=https://books.example/api\n"), 0o600))
	t.Cleanup(func() { os.Unsetenv("API_BASE_URL") })

	env, err := LoadEnv(file)
	require.NoError(t, err)
	assert.Equal(t, "https://books.example/api", env.APIBaseURL)
}

func TestLoadEnv_Invalid(t *testing.T) {
	cases := map[string][2]string{
		"unknown driver":     {"STORAGE_DRIVER", "sqlite"},
		"unknown provider":   {"PAYMENT_PROVIDER", "paypal"},
		"midtrans needs key": {"PAYMENT_PROVIDER", "midtrans"},
		"bad duration":       {"API_TIMEOUT", "soon"},
		"idle ttl too short": {"CART_IDLE_TTL", "1ns"},
		"assertion ttl":      {"IDENTITY_ASSERTION_TTL", "0s"},
	}
	for name, kv := range cases {
		t.Run(name, func(t *testing.T) {
			t.Setenv(kv[0], kv[1])
			_, err := LoadEnv("")
			assert.Error(t, err)
		})
	}
}

func TestInitLogger(t *testing.T) {
	assert.NoError(t, InitLogger("debug", "test"))
	assert.NoError(t, InitLogger("", "development"))
	assert.Error(t, InitLogger("loud", "test"))
}
