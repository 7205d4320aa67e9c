package crawler

import (
	"fmt"
	"regexp"
	"strconv"
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

const (
	jumpitLinkSel      = "a"
	jumpitCompanySel   = ".sc-15ba67b8-0 div div"
	jumpitTitleSel     = ".position_card_info_title"
	jumpitTechStackSel = ".sc-15ba67b8-1.iFMgIl li"
	jumpitMetaSel      = ".sc-15ba67b8-1.cdeuol li"
	jumpitDeadlineSel  = ".sc-a0b0873a-0"
	jumpitImageSel     = "img"
)

var dueDatePattern = regexp.MustCompile(`(\d{4})[-.]\s*(\d{1,2})[-.]\s*(\d{1,2})`)

func InitJumpitAdapter(cfg *config.Source, launcher chrome.Launcher, details collector.DetailCollector, logger *zap.Logger) Adapter {
	return &siteAdapter[*entity.RawJumpitJob]{
		source:    model.SourceJumpit,
		cfg:       cfg,
		launcher:  launcher,
		details:   details,
		logger:    logger.Named("crawler").With(zap.String("source", string(model.SourceJumpit))),
		parseCard: parseJumpitCard,
		applyDetail: func(card *entity.RawJumpitJob, text string) {
			card.DueDate = extractDueDate(text)
		},
		now: time.Now,
	}
}

func parseJumpitCard(html string) (*entity.RawJumpitJob, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, eris.Wrap(err, "crawler: parse jumpit card")
	}
	href, _ := doc.Find(jumpitLinkSel).First().Attr("href")
	href = strings.TrimSpace(href)
	image, _ := doc.Find(jumpitImageSel).First().Attr("src")

	var stack []string
	doc.Find(jumpitTechStackSel).Each(func(_ int, s *goquery.Selection) {
		tech := strings.TrimSpace(strings.ReplaceAll(s.Text(), "·", ""))
		if tech != "" {
			stack = append(stack, tech)
		}
	})

	meta := doc.Find(jumpitMetaSel)
	return &entity.RawJumpitJob{
		ID:         lastPathSegment(href),
		Href:       href,
		Title:      firstText(doc.Selection, jumpitTitleSel),
		Company:    firstText(doc.Selection, jumpitCompanySel),
		TechStack:  strings.Join(stack, ", "),
		Location:   strings.TrimSpace(meta.Eq(0).Text()),
		Experience: strings.TrimSpace(meta.Eq(1).Text()),
		Deadline:   firstText(doc.Selection, jumpitDeadlineSel),
		ImageURL:   strings.TrimSpace(image),
	}, nil
}

// extractDueDate 从详情页文本中取第一个日期,统一为 YYYY-MM-DD
func extractDueDate(text string) string {
	m := dueDatePattern.FindStringSubmatch(text)
	if m == nil {
		return ""
	}
	month, _ := strconv.Atoi(m[2])
	day, _ := strconv.Atoi(m[3])
	if month < 1 || month > 12 || day < 1 || day > 31 {
		return ""
	}
	return fmt.Sprintf("%s-%02d-%02d", m[1], month, day)
}
