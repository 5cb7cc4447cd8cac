package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jo3qma.com/pac12_vod/internal/domain/model"
)

func writeFile(t *testing.T, path, body string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
}

func TestLoad_defaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "https://api.pac-12.com/v3", cfg.API.BaseURL)
	assert.Equal(t, model.ListConfig{PageSize: 10}, cfg.PageList())
	assert.Equal(t, model.ListConfig{PageSize: 10}, cfg.BlockList())
	assert.False(t, cfg.List.InfiniteScroll)
	assert.Equal(t, ":8080", cfg.Server.Addr)
}

func TestLoad_file(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	writeFile(t, path, `
api:
  base_url: http://localhost:9999/v3
  timeout: 3s
list:
  page_size: 25
  sport: "12"
  infinite_scroll: true
block:
  page_size: 4
  sport: "7"
server:
  allowed_origins: ["https://pac-12.com"]
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:9999/v3", cfg.API.BaseURL)
	assert.Equal(t, 3*time.Second, cfg.API.Timeout)
	assert.Equal(t, model.ListConfig{PageSize: 25, SportFilter: "12"}, cfg.PageList())
	assert.Equal(t, model.ListConfig{PageSize: 4, SportFilter: "7"}, cfg.BlockList())
	assert.True(t, cfg.List.InfiniteScroll)
	assert.Equal(t, []string{"https://pac-12.com"}, cfg.Server.AllowedOrigins)
	// 未指定の項目は既定値のまま
	assert.Equal(t, 100, cfg.Server.RateLimit)
}

func TestLoad_envOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	writeFile(t, path, "list:\n  page_size: 25\n")

	t.Setenv("VOD_LIST_LIMIT", "5")
	t.Setenv("VOD_LIST_SPORT", "3")
	t.Setenv("VOD_INFINITE", "true")
	t.Setenv("VOD_BLOCK_LIST_LIMIT", "2")
	t.Setenv("VOD_BLOCK_LIST_SPORT", "8")
	t.Setenv("PORT", "9090")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, model.ListConfig{PageSize: 5, SportFilter: "3"}, cfg.PageList())
	assert.Equal(t, model.ListConfig{PageSize: 2, SportFilter: "8"}, cfg.BlockList())
	assert.True(t, cfg.List.InfiniteScroll)
	assert.Equal(t, ":9090", cfg.Server.Addr)
}

func TestLoad_emptyEnvIsIgnored(t *testing.T) {
	t.Setenv("VOD_LIST_LIMIT", "")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, DefaultPageSize, cfg.List.PageSize)
}

func TestLoad_invalidEnv(t *testing.T) {
	t.Setenv("VOD_LIST_LIMIT", "ten")

	_, err := Load("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "VOD_LIST_LIMIT")
}

func TestLoad_unknownFieldIsRejected(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	writeFile(t, path, "list:\n  pagesize: 25\n")

	_, err := Load(path)
	require.Error(t, err)
}

func TestLoad_missingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}

func TestValidate(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{name: "defaults are valid", mutate: func(*Config) {}},
		{name: "upper bound", mutate: func(c *Config) { c.List.PageSize = MaxPageSize }},
		{name: "zero page size", mutate: func(c *Config) { c.List.PageSize = 0 }, wantErr: "list.page_size"},
		{name: "block page size too large", mutate: func(c *Config) { c.Block.PageSize = 257 }, wantErr: "block.page_size"},
		{name: "relative base url", mutate: func(c *Config) { c.API.BaseURL = "/v3" }, wantErr: "api.base_url"},
		{name: "sampling rate", mutate: func(c *Config) { c.Telemetry.SamplingRate = 2 }, wantErr: "telemetry.sampling_rate"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			cfg := Default()
			tc.mutate(&cfg)
			err := Validate(cfg)
			if tc.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.wantErr)
		})
	}
}
