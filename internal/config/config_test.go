package config

import (
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
)

func TestFromViper_Defaults(t *testing.T) {
	v := viper.New()
	setDefaults(v)

	cfg := fromViper(v)
	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "info", cfg.Server.LogLevel)
	assert.Equal(t, []string{"*"}, cfg.Server.AllowedOrigins)
	assert.Equal(t, "stockpilot", cfg.Database.DBName)
	assert.Equal(t, 25, cfg.Database.MaxOpenConns)
	assert.Equal(t, 10, cfg.Database.MaxConcurrentTx)
	assert.False(t, cfg.Cache.Enabled)
	assert.Equal(t, 300, cfg.Cache.AnalyticsTTLSeconds)
	assert.Equal(t, 4, cfg.Analytics.WorkerCount)
	assert.Equal(t, "reports/inventory", cfg.Storage.ReportPrefix)
	assert.True(t, cfg.Storage.UseSSL)
	assert.Equal(t, "root", cfg.Drive.FolderID)
}

func TestFromViper_Environment(t *testing.T) {
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("CACHE_ENABLED", "true")
	t.Setenv("ANALYTICS_WORKER_COUNT", "12")
	t.Setenv("STORAGE_BUCKET", "analytics")

	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()

	cfg := fromViper(v)
	assert.Equal(t, "9090", cfg.Server.Port)
	assert.True(t, cfg.Cache.Enabled)
	assert.Equal(t, 12, cfg.Analytics.WorkerCount)
	assert.Equal(t, "analytics", cfg.Storage.Bucket)
}
