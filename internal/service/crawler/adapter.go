package crawler

import (
	"context"
	"net/url"
	"strings"
	"time"

	"github.com/LouYuanbo1/jobcrawler/internal/config"
	"github.com/LouYuanbo1/jobcrawler/internal/domain/entity"
	"github.com/LouYuanbo1/jobcrawler/internal/domain/model"
	"github.com/LouYuanbo1/jobcrawler/internal/infra/crawler/chrome"
	"github.com/LouYuanbo1/jobcrawler/internal/infra/crawler/collector"
	"github.com/LouYuanbo1/jobcrawler/param"
	"go.uber.org/zap"
)

// Adapter 单个招聘网站的抓取器
// Acquire 不返回错误,任何失败都只记录日志并返回已经拿到的数据(可能为空)
type Adapter interface {
	Source() model.Source
	Acquire(ctx context.Context, keyword string, limit int) []model.JobRecord
}

// siteAdapter 两个站点共用的抓取流程,差异只在卡片解析和详情补充
type siteAdapter[C entity.Crawlable] struct {
	source   model.Source
	cfg      *config.Source
	launcher chrome.Launcher
	details  collector.DetailCollector
	logger   *zap.Logger

	parseCard func(html string) (C, error)
	// applyDetail 把详情页文本写入卡片,为 nil 时不抓详情页
	applyDetail func(card C, text string)
	now         func() time.Time
}

func (a *siteAdapter[C]) Source() model.Source {
	return a.source
}

func (a *siteAdapter[C]) site() entity.Site {
	return entity.Site{BaseURL: a.cfg.BaseURL, DetailURL: a.cfg.DetailURL}
}

// searchURL 关键字为空时使用默认地址,没有默认地址的站点返回 false
func (a *siteAdapter[C]) searchURL(keyword string) (string, bool) {
	keyword = strings.TrimSpace(keyword)
	if keyword == "" {
		return a.cfg.DefaultURL, a.cfg.DefaultURL != ""
	}
	// 与浏览器的 encodeURIComponent 保持一致,空格编码为 %20
	encoded := strings.ReplaceAll(url.QueryEscape(keyword), "+", "%20")
	return strings.ReplaceAll(a.cfg.SearchURL, config.KeywordPlaceholder, encoded), true
}

func (a *siteAdapter[C]) Acquire(ctx context.Context, keyword string, limit int) (records []model.JobRecord) {
	records = []model.JobRecord{}
	logger := a.logger.With(zap.String("keyword", keyword), zap.Int("limit", limit))

	if limit <= 0 {
		return records
	}
	target, ok := a.searchURL(keyword)
	if !ok {
		logger.Info("keyword required, skip")
		return records
	}

	// 意外 panic 只影响本次抓取,已经生成的记录照常返回
	defer func() {
		if r := recover(); r != nil {
			logger.Error("acquire panicked", zap.String("stage", "panic"),
				zap.Any("panic", r), zap.Int("kept", len(records)))
		}
	}()

	start := time.Now()
	session, err := a.launcher.Launch(ctx)
	if err != nil {
		logger.Error("launch browser failed", zap.String("stage", "launch"), zap.Error(err))
		return records
	}
	defer session.Close()

	cards := a.collectCards(ctx, session, target, limit, logger)
	if len(cards) == 0 {
		logger.Info("no job cards acquired", zap.Duration("elapsed", time.Since(start)))
		return records
	}

	if a.applyDetail != nil && a.details != nil && a.cfg.EnrichDetails {
		a.enrich(ctx, cards, logger)
	}

	observed := a.now()
	site := a.site()
	records = make([]model.JobRecord, 0, len(cards))
	for _, card := range cards {
		records = append(records, card.ToRecord(site, observed))
	}
	logger.Info("jobs acquired", zap.Int("count", len(records)), zap.Duration("elapsed", time.Since(start)))
	return records
}

// collectCards 导航、滚动、提取并解析卡片,返回去重后最多 limit 张卡片
func (a *siteAdapter[C]) collectCards(ctx context.Context, session chrome.Session, target string, limit int, logger *zap.Logger) []C {
	if err := session.Navigate(target, a.cfg.NavigationTimeout); err != nil {
		logger.Error("navigate failed", zap.String("stage", "navigate"), zap.String("url", target), zap.Error(err))
		return nil
	}
	// 列表没有出现时继续尝试提取,页面结构可能只是加载较慢
	if err := session.WaitVisible(a.cfg.ListSelector, a.cfg.SelectorTimeout); err != nil {
		logger.Warn("job list not visible", zap.String("stage", "wait_selector"), zap.Error(err))
	}

	scrolls := Paginate(ctx, session, &param.Scroll{
		MaxScrolls:  param.MaxScrolls(limit, a.cfg.YieldPerScroll),
		WaitTimeout: a.cfg.ScrollWaitTimeout,
		Pause:       a.cfg.ScrollPause,
	}, logger)

	content, err := session.HtmlContent(a.cfg.CardSelector)
	if err != nil {
		logger.Error("extract cards failed", zap.String("stage", "extract"), zap.Error(err))
		return nil
	}
	logger.Debug("cards extracted", zap.Int("scrolls", scrolls), zap.Int("cards", content.Len()))

	cards := a.parseCards(content.Content, logger)
	if len(cards) > limit {
		cards = cards[:limit]
	}
	return cards
}

// parseCards 按页面顺序解析卡片,丢弃无效卡片,同一ID只保留第一次出现的
func (a *siteAdapter[C]) parseCards(htmls []string, logger *zap.Logger) []C {
	cards := make([]C, 0, len(htmls))
	seen := make(map[string]struct{}, len(htmls))
	for i, html := range htmls {
		card, err := a.parseCard(html)
		if err != nil {
			logger.Debug("parse card failed", zap.String("stage", "parse_card"), zap.Int("index", i), zap.Error(err))
			continue
		}
		if !card.Valid() {
			continue
		}
		if _, dup := seen[card.RawID()]; dup {
			continue
		}
		seen[card.RawID()] = struct{}{}
		cards = append(cards, card)
	}
	return cards
}

func (a *siteAdapter[C]) enrich(ctx context.Context, cards []C, logger *zap.Logger) {
	site := a.site()
	urls := make([]string, 0, len(cards))
	for _, card := range cards {
		urls = append(urls, card.DetailPage(site))
	}
	texts := a.details.Collect(ctx, urls, a.cfg.DetailSelector)
	for i, card := range cards {
		if text, ok := texts[urls[i]]; ok {
			a.applyDetail(card, text)
		}
	}
	if len(texts) < len(urls) {
		logger.Warn("some detail pages missing", zap.String("stage", "enrich"),
			zap.Int("requested", len(urls)), zap.Int("collected", len(texts)))
	}
}
