package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadAppliesDefaultsAndEnv(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "base.yaml"), []byte(`
store:
  base_url: http://store/api
qr:
  secret: ${QR_SECRET}
`), 0o600))

	t.Setenv("CONFIG_DIR", dir)
	t.Setenv("CONFIG_ENV", "local")
	t.Setenv("QR_SECRET", "from-env")
	t.Setenv("LOG_LEVEL", "warn")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, "from-env", cfg.QR.Secret)
	require.Equal(t, "warn", cfg.Log.Level)
	require.Equal(t, 60*time.Second, cfg.QR.TTL)
	require.Equal(t, int64(50), cfg.Notify.Capacity)
	require.Equal(t, 5*time.Second, cfg.Notify.TTL)
	require.Equal(t, "8080", cfg.Server.Port)
}

func TestValidateRequiresStoreAndSecret(t *testing.T) {
	cfg := Default()
	require.ErrorContains(t, cfg.Validate(), "store.base_url")

	cfg.Store.BaseURL = "http://store/api"
	require.ErrorContains(t, cfg.Validate(), "qr.secret")

	cfg.QR.Secret = "x"
	require.NoError(t, cfg.Validate())
}
