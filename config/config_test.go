package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/acmeid/go-libacmeid/config"
	"github.com/stretchr/testify/require"
)

var allVars = []string{
	config.EnvAPIURL,
	config.EnvProvider,
	config.EnvNetwork,
	config.EnvDebug,
	config.EnvDevMode,
	config.EnvCacheTTL,
	config.EnvHTTPTimeout,
}

// clearEnv unsets every variable for the duration of the test.
func clearEnv(t *testing.T) {
	for _, key := range allVars {
		t.Setenv(key, "")
		require.NoError(t, os.Unsetenv(key))
	}
}

func TestDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := config.FromEnv()
	require.NoError(t, err)
	require.Equal(t, config.Default(), cfg)
	require.Equal(t, "mainnet", cfg.Network)
	require.Equal(t, 5*time.Minute, cfg.CacheTTL)
	require.False(t, cfg.DevMode)
	require.Zero(t, cfg.HTTPTimeout, "requests are unbounded unless configured")
}

func TestFromEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv(config.EnvAPIURL, "https://id.example.com")
	t.Setenv(config.EnvProvider, "kermit")
	t.Setenv(config.EnvNetwork, "testnet")
	t.Setenv(config.EnvDebug, "true")
	t.Setenv(config.EnvDevMode, "1")
	t.Setenv(config.EnvCacheTTL, "90s")
	t.Setenv(config.EnvHTTPTimeout, "45s")

	cfg, err := config.FromEnv()
	require.NoError(t, err)
	require.Equal(t, config.Config{
		APIURL:      "https://id.example.com",
		Provider:    "kermit",
		Network:     "testnet",
		Debug:       true,
		DevMode:     true,
		CacheTTL:    90 * time.Second,
		HTTPTimeout: 45 * time.Second,
	}, cfg)
}

func TestFromEnvInvalid(t *testing.T) {
	tests := map[string]struct {
		key, value, errText string
	}{
		"bad bool":     {config.EnvDebug, "sometimes", config.EnvDebug},
		"bad duration": {config.EnvCacheTTL, "five", config.EnvCacheTTL},
		"zero ttl":     {config.EnvCacheTTL, "0s", "must be positive"},
		"bad scheme":   {config.EnvAPIURL, "ftp://id.example.com", "http or https"},
		"negative":     {config.EnvHTTPTimeout, "-1s", "must not be negative"},
	}
	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			clearEnv(t)
			t.Setenv(tc.key, tc.value)
			_, err := config.FromEnv()
			require.ErrorContains(t, err, tc.errText)
		})
	}
}

func TestLoadFiles(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	envFile := filepath.Join(dir, "test.env")
	content := config.EnvNetwork + "=devnet\n" + config.EnvProvider + "=fromfile\n"
	require.NoError(t, os.WriteFile(envFile, []byte(content), 0o644))

	// The process environment wins over the file.
	t.Setenv(config.EnvProvider, "fromenv")

	cfg, err := config.Load(envFile)
	require.NoError(t, err)
	require.Equal(t, "devnet", cfg.Network)
	require.Equal(t, "fromenv", cfg.Provider)

	_, err = config.Load(filepath.Join(dir, "missing.env"))
	require.Error(t, err)
}

func TestLoadDefaultFiles(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte(config.EnvNetwork+"=fromdotenv\n"), 0o644))
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })

	// .env.local is absent and is skipped.
	cfg, err := config.Load()
	require.NoError(t, err)
	require.Equal(t, "fromdotenv", cfg.Network)
}
