package config

import (
	"bytes"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
)

const envPrefix = "JOBCRAWLER"

// ParseConfig 解析 json 配置(一般来自 go:embed 的 appconfig.json),
// 未出现的字段使用默认值,环境变量 JOBCRAWLER_* 优先级最高
func ParseConfig(byteConfig []byte) (*Config, error) {
	v := newViper()
	v.SetConfigType("json")
	if len(bytes.TrimSpace(byteConfig)) > 0 {
		if err := v.ReadConfig(bytes.NewReader(byteConfig)); err != nil {
			return nil, eris.Wrap(err, "config: read embedded config")
		}
	}
	return unmarshal(v)
}

// Load 从文件读取配置,path 为空时只使用默认值和环境变量
func Load(path string) (*Config, error) {
	v := newViper()
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, eris.Wrapf(err, "config: read file %s", path)
		}
	}
	return unmarshal(v)
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)
	return v
}

func unmarshal(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

const defaultUserAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

func setDefaults(v *viper.Viper) {
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	v.SetDefault("browser.driver", DriverChromedp)
	v.SetDefault("browser.bin", "")
	v.SetDefault("browser.headless", true)
	v.SetDefault("browser.no_sandbox", true)
	v.SetDefault("browser.disable_setuid_sandbox", true)
	v.SetDefault("browser.disable_dev_shm_usage", true)
	v.SetDefault("browser.user_agent", defaultUserAgent)
	v.SetDefault("browser.accept_language", "ko-KR,ko;q=0.9,en-US;q=0.8")
	v.SetDefault("browser.leakless", false)
	v.SetDefault("browser.stealth", true)

	// wanted: 必须有关键字,每次滚动大约新增 8 张卡片
	v.SetDefault("sources.wanted.enabled", true)
	v.SetDefault("sources.wanted.search_url", "https://www.wanted.co.kr/search?query={keyword}&tab=position")
	v.SetDefault("sources.wanted.default_url", "")
	v.SetDefault("sources.wanted.base_url", "https://www.wanted.co.kr")
	v.SetDefault("sources.wanted.detail_url", "https://www.wanted.co.kr/wd/")
	v.SetDefault("sources.wanted.list_selector", ".JobList_container__Hf1rb")
	v.SetDefault("sources.wanted.card_selector", ".JobCard_container__zQcZs")
	v.SetDefault("sources.wanted.yield_per_scroll", 8)
	v.SetDefault("sources.wanted.navigation_timeout", "60s")
	v.SetDefault("sources.wanted.selector_timeout", "10s")
	v.SetDefault("sources.wanted.scroll_wait_timeout", "10s")
	v.SetDefault("sources.wanted.scroll_pause", "1s")
	v.SetDefault("sources.wanted.enrich_details", false)
	v.SetDefault("sources.wanted.detail_selector", "section[class*=JobDescription]")

	// jumpit: 关键字为空时按相关度浏览全部岗位,每次滚动大约新增 20 张卡片
	v.SetDefault("sources.jumpit.enabled", true)
	v.SetDefault("sources.jumpit.search_url", "https://jumpit.saramin.co.kr/search?sort=relation&keyword={keyword}")
	v.SetDefault("sources.jumpit.default_url", "https://jumpit.saramin.co.kr/search?sort=relation")
	v.SetDefault("sources.jumpit.base_url", "https://jumpit.saramin.co.kr")
	v.SetDefault("sources.jumpit.detail_url", "https://jumpit.saramin.co.kr/position/")
	v.SetDefault("sources.jumpit.list_selector", ".sc-d609d44f-0.grDLmW")
	v.SetDefault("sources.jumpit.card_selector", ".sc-d609d44f-0.grDLmW")
	v.SetDefault("sources.jumpit.yield_per_scroll", 20)
	v.SetDefault("sources.jumpit.navigation_timeout", "60s")
	v.SetDefault("sources.jumpit.selector_timeout", "15s")
	v.SetDefault("sources.jumpit.scroll_wait_timeout", "5s")
	v.SetDefault("sources.jumpit.scroll_pause", "1s")
	v.SetDefault("sources.jumpit.enrich_details", false)
	v.SetDefault("sources.jumpit.detail_selector", "dl")

	v.SetDefault("aggregator.search_multiplier", 2)
	v.SetDefault("aggregator.default_limit", 100)
	v.SetDefault("aggregator.source_limit", 20)

	v.SetDefault("collector.user_agent", defaultUserAgent)
	v.SetDefault("collector.parallelism", 2)
	v.SetDefault("collector.delay", "500ms")
	v.SetDefault("collector.random_delay", "500ms")
	v.SetDefault("collector.request_timeout", "15s")

	v.SetDefault("elasticsearch.enabled", false)
	v.SetDefault("elasticsearch.username", "")
	v.SetDefault("elasticsearch.password", "")
	v.SetDefault("elasticsearch.address", "http://localhost:9200")
	v.SetDefault("elasticsearch.index", "jobs")
	v.SetDefault("elasticsearch.embedding_dims", 0)

	v.SetDefault("embedder.enabled", false)
	v.SetDefault("embedder.host", "http://localhost")
	v.SetDefault("embedder.port", 11434)
	v.SetDefault("embedder.model", "nomic-embed-text")
	v.SetDefault("embedder.batch_size", 16)

	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.default_page_size", 20)
	v.SetDefault("server.max_page_size", 100)
	v.SetDefault("server.crawl_limit", 50)
}
