package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseConfig_Defaults(t *testing.T) {
	cfg, err := ParseConfig(nil)
	require.NoError(t, err)

	assert.Equal(t, DriverChromedp, cfg.Browser.Driver)
	assert.True(t, cfg.Browser.NoSandbox)
	assert.True(t, cfg.Browser.DisableSetuidSandbox)

	w := cfg.Sources.Wanted
	assert.Equal(t, 8, w.YieldPerScroll)
	assert.Equal(t, 60*time.Second, w.NavigationTimeout)
	assert.Equal(t, 10*time.Second, w.SelectorTimeout)
	assert.Equal(t, 10*time.Second, w.ScrollWaitTimeout)
	assert.Equal(t, time.Second, w.ScrollPause)
	assert.Empty(t, w.DefaultURL)

	j := cfg.Sources.Jumpit
	assert.Equal(t, 20, j.YieldPerScroll)
	assert.Equal(t, 15*time.Second, j.SelectorTimeout)
	assert.Equal(t, 5*time.Second, j.ScrollWaitTimeout)
	assert.Equal(t, "https://jumpit.saramin.co.kr/search?sort=relation", j.DefaultURL)

	assert.Equal(t, 2, cfg.Aggregator.SearchMultiplier)
	assert.Equal(t, 100, cfg.Aggregator.DefaultLimit)
	assert.Equal(t, 20, cfg.Aggregator.SourceLimit)
}

func TestParseConfig_Overrides(t *testing.T) {
	raw := []byte(`{
		"browser": {"driver": "rod", "headless": false},
		"sources": {"jumpit": {"yield_per_scroll": 10, "scroll_wait_timeout": "2s"}},
		"aggregator": {"search_multiplier": 3}
	}`)
	cfg, err := ParseConfig(raw)
	require.NoError(t, err)

	assert.Equal(t, DriverRod, cfg.Browser.Driver)
	assert.False(t, cfg.Browser.Headless)
	assert.Equal(t, 10, cfg.Sources.Jumpit.YieldPerScroll)
	assert.Equal(t, 2*time.Second, cfg.Sources.Jumpit.ScrollWaitTimeout)
	// 未覆盖的字段保持默认值
	assert.Equal(t, 15*time.Second, cfg.Sources.Jumpit.SelectorTimeout)
	assert.Equal(t, 3, cfg.Aggregator.SearchMultiplier)
}

func TestParseConfig_Env(t *testing.T) {
	t.Setenv("JOBCRAWLER_BROWSER_DRIVER", "rod")
	t.Setenv("JOBCRAWLER_SERVER_ADDR", ":9999")

	cfg, err := ParseConfig(nil)
	require.NoError(t, err)
	assert.Equal(t, DriverRod, cfg.Browser.Driver)
	assert.Equal(t, ":9999", cfg.Server.Addr)
}

func TestParseConfig_Invalid(t *testing.T) {
	cases := map[string]string{
		"driver":     `{"browser": {"driver": "firefox"}}`,
		"yield":      `{"sources": {"wanted": {"yield_per_scroll": 0}}}`,
		"selector":   `{"sources": {"jumpit": {"card_selector": ""}}}`,
		"multiplier": `{"aggregator": {"search_multiplier": 0}}`,
		"enrich":     `{"sources": {"wanted": {"enrich_details": true, "detail_selector": ""}}}`,
		"malformed":  `{"browser": `,
	}
	for name, raw := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := ParseConfig([]byte(raw))
			assert.Error(t, err)
		})
	}
}

func TestParseConfig_DisabledSourceSkipsValidation(t *testing.T) {
	cfg, err := ParseConfig([]byte(`{"sources": {"wanted": {"enabled": false, "yield_per_scroll": 0}}}`))
	require.NoError(t, err)
	assert.False(t, cfg.Sources.Wanted.Enabled)
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"log": {"level": "debug"}}`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.Log.Level)

	_, err = Load(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)

	cfg, err = Load("")
	require.NoError(t, err)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestInitLogger(t *testing.T) {
	logger, err := InitLogger(Log{Level: "debug", Format: "console"})
	require.NoError(t, err)
	assert.NotNil(t, logger)

	_, err = InitLogger(Log{Level: "loud"})
	assert.Error(t, err)
}
