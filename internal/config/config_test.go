package config

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestLoadConfigFromFile 测试从配置文件加载配置
func TestLoadConfigFromFile(t *testing.T) {
	configContent := `
env: production
server:
  host: "127.0.0.1"
  port: 9000
lark:
  app_id: "cli_test"
  base_app_token: "base123"
  tables:
    employee: "tblEmp"
    manpower: "tblMan"
xero:
  client_id: "xero-cid"
`
	tmpFile, err := os.CreateTemp("", "config-*.yaml")
	require.NoError(t, err)
	defer os.Remove(tmpFile.Name())

	_, err = tmpFile.WriteString(configContent)
	require.NoError(t, err)
	require.NoError(t, tmpFile.Close())

	cfg, err := Load(tmpFile.Name())
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1", cfg.Server.Host)
	assert.Equal(t, 9000, cfg.Server.Port)
	assert.Equal(t, "cli_test", cfg.Lark.AppID)
	assert.Equal(t, "xero-cid", cfg.Xero.ClientID)
	assert.True(t, IsProduction(cfg))

	tableID, err := cfg.Lark.TableID("employee")
	require.NoError(t, err)
	assert.Equal(t, "tblEmp", tableID)
}

// TestTableIDMissing 测试缺失表配置时报错
func TestTableIDMissing(t *testing.T) {
	cfg := &LarkConfig{Tables: map[string]string{}}
	_, err := cfg.TableID("employee")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "employee")
}

// TestLegacyEnvBinding 测试无前缀环境变量兼容
func TestLegacyEnvBinding(t *testing.T) {
	t.Setenv("LARK_APP_ID", "cli_legacy")
	t.Setenv("LARK_TABLE_EMPLOYEE", "tblLegacy")
	t.Setenv("XERO_CLIENT_SECRET", "legacy-secret")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "cli_legacy", cfg.Lark.AppID)
	assert.Equal(t, "legacy-secret", cfg.Xero.ClientSecret)

	tableID, err := cfg.Lark.TableID("employee")
	require.NoError(t, err)
	assert.Equal(t, "tblLegacy", tableID)
}

// TestDefaults 测试默认配置
func TestDefaults(t *testing.T) {
	cfg := Default()

	assert.Equal(t, "0.0.0.0", cfg.Server.Host)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "https://open.larksuite.com/open-apis", cfg.Lark.APIBase)
	assert.Equal(t, "2025-02-01", cfg.Xero.SyncFromDate)
	assert.Equal(t, "2025-03-31", cfg.Xero.SyncToDate)
	assert.Equal(t, []string{"*"}, cfg.CORS.AllowedOrigins)
	assert.False(t, IsProduction(cfg))
}
