package cmd

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testCommand(t *testing.T) *cobra.Command {
	t.Helper()
	t.Setenv("XDG_DATA_HOME", t.TempDir())
	for _, k := range []string{"OPICDRILL_DB", "OPICDRILL_DB_DRIVER", "OPICDRILL_DB_URL", "OPICDRILL_LOG_LEVEL"} {
		t.Setenv(k, "")
	}
	c := &cobra.Command{Use: "test"}
	c.Flags().String("db", "", "")
	c.Flags().String("db-driver", "", "")
	c.Flags().String("log-level", "", "")
	return c
}

func TestLoadConfig_FlagOverrides(t *testing.T) {
	c := testCommand(t)
	dbPath := filepath.Join(t.TempDir(), "nested", "drill.db")
	require.NoError(t, c.Flags().Set("db", dbPath))
	require.NoError(t, c.Flags().Set("log-level", "debug"))

	cfg, err := loadConfig(c)
	require.NoError(t, err)
	assert.Equal(t, dbPath, cfg.DBPath)
	assert.Equal(t, dbPath, cfg.DSN())
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.DirExists(t, filepath.Dir(dbPath))
}

func TestLoadConfig_ServerDriverNeedsURL(t *testing.T) {
	c := testCommand(t)
	require.NoError(t, c.Flags().Set("db-driver", "postgres"))

	_, err := loadConfig(c)
	assert.ErrorContains(t, err, "OPICDRILL_DB_URL")
}

func TestSetup_WiresServices(t *testing.T) {
	c := testCommand(t)
	t.Setenv("OPICDRILL_LLM_PROVIDER", "mock")
	require.NoError(t, c.Flags().Set("db", filepath.Join(t.TempDir(), "drill.db")))

	e, err := setup(c, setupOptions{needLLM: true})
	require.NoError(t, err)
	defer e.Close()

	assert.NotNil(t, e.provider)
	assert.NotNil(t, e.composer)
	assert.NotEmpty(t, e.lib.Items("pattern"), "built-in patterns are installed")

	deps := e.deps()
	assert.Same(t, e.lib, deps.Library)
	assert.NotNil(t, deps.Events)
}

func TestVersion_PrefersStampedVersion(t *testing.T) {
	old := version
	t.Cleanup(func() { version = old })
	version = "v1.4.0"

	var out bytes.Buffer
	versionCmd.SetOut(&out)
	t.Cleanup(func() { versionCmd.SetOut(nil) })
	versionCmd.Run(versionCmd, nil)
	assert.Contains(t, out.String(), "opicdrill v1.4.0 (go")
}
