package collector

import (
	"context"
	"strings"
	"sync"

	"github.com/LouYuanbo1/jobcrawler/internal/config"
	"github.com/gocolly/colly/v2"
	"go.uber.org/zap"
)

const originKey = "origin"

type collyCollector struct {
	cfg    *config.Collector
	logger *zap.Logger
}

func InitCollyCollector(cfg *config.Collector, logger *zap.Logger) DetailCollector {
	logger.Debug("init colly collector",
		zap.Int("parallelism", cfg.Parallelism),
		zap.Duration("delay", cfg.Delay),
		zap.Duration("random_delay", cfg.RandomDelay),
	)
	return &collyCollector{cfg: cfg, logger: logger.Named("collector")}
}

// newCollector 每次 Collect 使用新的 collector,回调只绑定本次的选择器
func (cc *collyCollector) newCollector(ctx context.Context) *colly.Collector {
	c := colly.NewCollector(
		colly.Async(true),
		colly.UserAgent(cc.cfg.UserAgent),
		colly.StdlibContext(ctx),
	)
	if cc.cfg.RequestTimeout > 0 {
		c.SetRequestTimeout(cc.cfg.RequestTimeout)
	}
	if err := c.Limit(&colly.LimitRule{
		DomainGlob:  "*",
		Parallelism: max(cc.cfg.Parallelism, 1),
		Delay:       cc.cfg.Delay,
		RandomDelay: cc.cfg.RandomDelay,
	}); err != nil {
		cc.logger.Warn("invalid limit rule", zap.Error(err))
	}
	return c
}

func (cc *collyCollector) Collect(ctx context.Context, urls []string, selector string) map[string]string {
	results := make(map[string]string, len(urls))
	if len(urls) == 0 {
		return results
	}

	var mu sync.Mutex
	c := cc.newCollector(ctx)

	// 记录原始 url,发生重定向时结果仍然按原始 url 返回
	c.OnRequest(func(r *colly.Request) {
		if r.Ctx.Get(originKey) == "" {
			r.Ctx.Put(originKey, r.URL.String())
		}
	})
	c.OnHTML(selector, func(e *colly.HTMLElement) {
		origin := e.Request.Ctx.Get(originKey)
		text := strings.Join(strings.Fields(e.Text), " ")
		if text == "" {
			return
		}
		mu.Lock()
		defer mu.Unlock()
		if _, ok := results[origin]; !ok {
			results[origin] = text
		}
	})
	c.OnError(func(r *colly.Response, err error) {
		cc.logger.Warn("detail page failed",
			zap.String("url", r.Request.URL.String()),
			zap.Int("status", r.StatusCode),
			zap.Error(err),
		)
	})

	for _, u := range urls {
		if err := c.Visit(u); err != nil {
			cc.logger.Warn("visit detail page", zap.String("url", u), zap.Error(err))
		}
	}
	c.Wait()

	cc.logger.Debug("detail pages collected", zap.Int("requested", len(urls)), zap.Int("collected", len(results)))
	return results
}
