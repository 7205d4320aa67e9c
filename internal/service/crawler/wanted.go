package crawler

import (
	"strings"
	"time"

	"github.com/LouYuanbo1/jobcrawler/internal/config"
	"github.com/LouYuanbo1/jobcrawler/internal/domain/entity"
	"github.com/LouYuanbo1/jobcrawler/internal/domain/model"
	"github.com/LouYuanbo1/jobcrawler/internal/infra/crawler/chrome"
	"github.com/LouYuanbo1/jobcrawler/internal/infra/crawler/collector"
	"github.com/PuerkitoBio/goquery"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// wanted 卡片内部的选择器
const (
	wantedLinkSel         = "a"
	wantedTitleSel        = ".JobCard_title___kfvj"
	wantedCompanySel      = ".CompanyNameWithLocationPeriod_CompanyNameWithLocationPeriod__company__ByVLu"
	wantedExperienceSel   = ".CompanyNameWithLocationPeriod_CompanyNameWithLocationPeriod__location__4_w0l"
	wantedContractTypeSel = ".wds-5jjoh5"
	wantedRewardSel       = ".JobCard_reward__oCSIQ"
	wantedImageSel        = ".JobCard_thumbnail__A1ieG img"
	wantedCategoryAttr    = "data-job-category"
)

// InitWantedAdapter details 为 nil 时不抓取详情页
func InitWantedAdapter(cfg *config.Source, launcher chrome.Launcher, details collector.DetailCollector, logger *zap.Logger) Adapter {
	return &siteAdapter[*entity.RawWantedJob]{
		source:    model.SourceWanted,
		cfg:       cfg,
		launcher:  launcher,
		details:   details,
		logger:    logger.Named("crawler").With(zap.String("source", string(model.SourceWanted))),
		parseCard: parseWantedCard,
		applyDetail: func(card *entity.RawWantedJob, text string) {
			card.Description = text
		},
		now: time.Now,
	}
}

func parseWantedCard(html string) (*entity.RawWantedJob, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, eris.Wrap(err, "crawler: parse wanted card")
	}
	link := doc.Find(wantedLinkSel).First()
	href, _ := link.Attr("href")
	category, _ := link.Attr(wantedCategoryAttr)
	image, _ := doc.Find(wantedImageSel).First().Attr("src")

	return &entity.RawWantedJob{
		ID:           lastPathSegment(href),
		Title:        firstText(doc.Selection, wantedTitleSel),
		Company:      firstText(doc.Selection, wantedCompanySel),
		Experience:   firstText(doc.Selection, wantedExperienceSel),
		ContractType: firstText(doc.Selection, wantedContractTypeSel),
		Reward:       firstText(doc.Selection, wantedRewardSel),
		ImageURL:     strings.TrimSpace(image),
		Category:     strings.TrimSpace(category),
	}, nil
}

func firstText(s *goquery.Selection, selector string) string {
	return strings.TrimSpace(s.Find(selector).First().Text())
}

// lastPathSegment 取链接路径的最后一段作为岗位ID
func lastPathSegment(href string) string {
	if i := strings.IndexAny(href, "?#"); i >= 0 {
		href = href[:i]
	}
	href = strings.TrimRight(strings.TrimSpace(href), "/")
	if i := strings.LastIndex(href, "/"); i >= 0 {
		return href[i+1:]
	}
	return href
}
