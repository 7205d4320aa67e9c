package config

import (
	"slices"
	"time"

	"github.com/rotisserie/eris"
)

const (
	DriverChromedp = "chromedp"
	DriverRod      = "rod"
)

// KeywordPlaceholder 搜索URL模板中关键字的占位符
const KeywordPlaceholder = "{keyword}"

type Config struct {
	Log           Log           `json:"log" mapstructure:"log"`
	Browser       Browser       `json:"browser" mapstructure:"browser"`
	Sources       Sources       `json:"sources" mapstructure:"sources"`
	Aggregator    Aggregator    `json:"aggregator" mapstructure:"aggregator"`
	Collector     Collector     `json:"collector" mapstructure:"collector"`
	Elasticsearch Elasticsearch `json:"elasticsearch" mapstructure:"elasticsearch"`
	Embedder      Embedder      `json:"embedder" mapstructure:"embedder"`
	Server        Server        `json:"server" mapstructure:"server"`
}

type Log struct {
	Level  string `json:"level" mapstructure:"level"`
	Format string `json:"format" mapstructure:"format"`
}

// Browser 无头浏览器启动参数,chromedp 和 rod 共用
type Browser struct {
	Driver               string `json:"driver" mapstructure:"driver"`
	Bin                  string `json:"bin" mapstructure:"bin"`
	Headless             bool   `json:"headless" mapstructure:"headless"`
	NoSandbox            bool   `json:"no_sandbox" mapstructure:"no_sandbox"`
	DisableSetuidSandbox bool   `json:"disable_setuid_sandbox" mapstructure:"disable_setuid_sandbox"`
	DisableDevShmUsage   bool   `json:"disable_dev_shm_usage" mapstructure:"disable_dev_shm_usage"`
	UserAgent            string `json:"user_agent" mapstructure:"user_agent"`
	AcceptLanguage       string `json:"accept_language" mapstructure:"accept_language"`
	// 以下两项仅对 rod 生效
	Leakless bool `json:"leakless" mapstructure:"leakless"`
	Stealth  bool `json:"stealth" mapstructure:"stealth"`
}

type Sources struct {
	Wanted Source `json:"wanted" mapstructure:"wanted"`
	Jumpit Source `json:"jumpit" mapstructure:"jumpit"`
}

// Source 单个招聘网站的地址、选择器和时间参数
type Source struct {
	Enabled bool `json:"enabled" mapstructure:"enabled"`
	// 带 {keyword} 占位符的搜索地址
	SearchURL string `json:"search_url" mapstructure:"search_url"`
	// 关键字为空时使用,为空表示该站点必须有关键字
	DefaultURL string `json:"default_url" mapstructure:"default_url"`
	BaseURL    string `json:"base_url" mapstructure:"base_url"`
	// 详情页地址前缀,后接站点自己的岗位ID
	DetailURL         string        `json:"detail_url" mapstructure:"detail_url"`
	ListSelector      string        `json:"list_selector" mapstructure:"list_selector"`
	CardSelector      string        `json:"card_selector" mapstructure:"card_selector"`
	YieldPerScroll    int           `json:"yield_per_scroll" mapstructure:"yield_per_scroll"`
	NavigationTimeout time.Duration `json:"navigation_timeout" mapstructure:"navigation_timeout"`
	SelectorTimeout   time.Duration `json:"selector_timeout" mapstructure:"selector_timeout"`
	ScrollWaitTimeout time.Duration `json:"scroll_wait_timeout" mapstructure:"scroll_wait_timeout"`
	ScrollPause       time.Duration `json:"scroll_pause" mapstructure:"scroll_pause"`
	EnrichDetails     bool          `json:"enrich_details" mapstructure:"enrich_details"`
	DetailSelector    string        `json:"detail_selector" mapstructure:"detail_selector"`
}

type Aggregator struct {
	// Search 先按 limit*SearchMultiplier 抓取再过滤
	SearchMultiplier int `json:"search_multiplier" mapstructure:"search_multiplier"`
	DefaultLimit     int `json:"default_limit" mapstructure:"default_limit"`
	SourceLimit      int `json:"source_limit" mapstructure:"source_limit"`
}

// Collector colly 详情页抓取配置
type Collector struct {
	UserAgent      string        `json:"user_agent" mapstructure:"user_agent"`
	Parallelism    int           `json:"parallelism" mapstructure:"parallelism"`
	Delay          time.Duration `json:"delay" mapstructure:"delay"`
	RandomDelay    time.Duration `json:"random_delay" mapstructure:"random_delay"`
	RequestTimeout time.Duration `json:"request_timeout" mapstructure:"request_timeout"`
}

type Elasticsearch struct {
	Enabled       bool   `json:"enabled" mapstructure:"enabled"`
	Username      string `json:"username" mapstructure:"username"`
	Password      string `json:"password" mapstructure:"password"`
	Address       string `json:"address" mapstructure:"address"`
	Index         string `json:"index" mapstructure:"index"`
	EmbeddingDims int    `json:"embedding_dims" mapstructure:"embedding_dims"`
}

type Embedder struct {
	Enabled   bool   `json:"enabled" mapstructure:"enabled"`
	Host      string `json:"host" mapstructure:"host"`
	Port      int    `json:"port" mapstructure:"port"`
	Model     string `json:"model" mapstructure:"model"`
	BatchSize int    `json:"batch_size" mapstructure:"batch_size"`
}

type Server struct {
	Addr            string `json:"addr" mapstructure:"addr"`
	DefaultPageSize int    `json:"default_page_size" mapstructure:"default_page_size"`
	MaxPageSize     int    `json:"max_page_size" mapstructure:"max_page_size"`
	CrawlLimit      int    `json:"crawl_limit" mapstructure:"crawl_limit"`
}

// Validate 检查会让爬虫无法工作的配置
func (c *Config) Validate() error {
	if !slices.Contains([]string{DriverChromedp, DriverRod}, c.Browser.Driver) {
		return eris.Errorf("config: unknown browser driver %q", c.Browser.Driver)
	}
	for name, src := range map[string]Source{"wanted": c.Sources.Wanted, "jumpit": c.Sources.Jumpit} {
		if !src.Enabled {
			continue
		}
		if err := src.validate(); err != nil {
			return eris.Wrapf(err, "config: source %s", name)
		}
	}
	if c.Aggregator.SearchMultiplier <= 0 {
		return eris.New("config: aggregator.search_multiplier must be positive")
	}
	if c.Server.DefaultPageSize <= 0 || c.Server.MaxPageSize < c.Server.DefaultPageSize {
		return eris.New("config: server page sizes are inconsistent")
	}
	if c.Embedder.Enabled && c.Embedder.BatchSize <= 0 {
		return eris.New("config: embedder.batch_size must be positive")
	}
	return nil
}

func (s Source) validate() error {
	switch {
	case s.SearchURL == "":
		return eris.New("search_url is empty")
	case s.BaseURL == "" || s.DetailURL == "":
		return eris.New("base_url and detail_url are required")
	case s.ListSelector == "" || s.CardSelector == "":
		return eris.New("list_selector and card_selector are required")
	case s.YieldPerScroll <= 0:
		return eris.New("yield_per_scroll must be positive")
	case s.NavigationTimeout <= 0 || s.SelectorTimeout <= 0 || s.ScrollWaitTimeout <= 0:
		return eris.New("timeouts must be positive")
	case s.ScrollPause < 0:
		return eris.New("scroll_pause must not be negative")
	case s.EnrichDetails && s.DetailSelector == "":
		return eris.New("detail_selector is required when enrich_details is on")
	}
	return nil
}
