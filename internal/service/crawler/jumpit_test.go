package crawler

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/LouYuanbo1/jobcrawler/internal/config"
	"github.com/LouYuanbo1/jobcrawler/internal/domain/entity"
	"github.com/LouYuanbo1/jobcrawler/internal/domain/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func jumpitConfig() *config.Source {
	return &config.Source{
		Enabled:           true,
		SearchURL:         "https://jumpit.saramin.co.kr/search?sort=relation&keyword={keyword}",
		DefaultURL:        "https://jumpit.saramin.co.kr/search?sort=relation",
		BaseURL:           "https://jumpit.saramin.co.kr",
		DetailURL:         "https://jumpit.saramin.co.kr/position/",
		ListSelector:      ".sc-d609d44f-0.grDLmW",
		CardSelector:      ".sc-d609d44f-0.grDLmW",
		YieldPerScroll:    20,
		NavigationTimeout: time.Second,
		SelectorTimeout:   time.Second,
		ScrollWaitTimeout: time.Second,
		DetailSelector:    "dl",
	}
}

func jumpitCard(id, title, company string) string {
	return fmt.Sprintf(`<div class="sc-d609d44f-0 grDLmW">
  <a href="/position/%s">
    <img src="https://cdn.jumpit.co.kr/thumb/%[1]s.png" alt="">
    <div class="sc-15ba67b8-0"><div><div>%s</div></div></div>
    <h2 class="position_card_info_title">%s</h2>
    <ul class="sc-15ba67b8-1 iFMgIl"><li>· Go</li><li>· Kubernetes</li><li>·</li></ul>
    <ul class="sc-15ba67b8-1 cdeuol"><li>서울 강남구</li><li>경력 3~7년</li></ul>
    <span class="sc-a0b0873a-0">D-12</span>
  </a>
</div>`, id, company, title)
}

func newJumpit(launcher *fakeLauncher, details *fakeCollector, cfg *config.Source) *siteAdapter[*entity.RawJumpitJob] {
	var a Adapter
	if details != nil {
		a = InitJumpitAdapter(cfg, launcher, details, zap.NewNop())
	} else {
		a = InitJumpitAdapter(cfg, launcher, nil, zap.NewNop())
	}
	sa := a.(*siteAdapter[*entity.RawJumpitJob])
	sa.now = func() time.Time { return fixedNow }
	return sa
}

func TestParseJumpitCard(t *testing.T) {
	raw, err := parseJumpitCard(jumpitCard("51234", "Backend Engineer", "Acme"))
	require.NoError(t, err)

	assert.Equal(t, "51234", raw.ID)
	assert.Equal(t, "/position/51234", raw.Href)
	assert.Equal(t, "Backend Engineer", raw.Title)
	assert.Equal(t, "Acme", raw.Company)
	assert.Equal(t, "Go, Kubernetes", raw.TechStack)
	assert.Equal(t, "서울 강남구", raw.Location)
	assert.Equal(t, "경력 3~7년", raw.Experience)
	assert.Equal(t, "D-12", raw.Deadline)
	assert.Equal(t, "https://cdn.jumpit.co.kr/thumb/51234.png", raw.ImageURL)
}

func TestJumpitAcquire(t *testing.T) {
	session := &fakeSession{
		heights: []int64{100},
		cards: []string{
			jumpitCard("10", "Backend", "Acme"),
			jumpitCard("11", "Frontend", "Globex"),
			jumpitCard("10", "Backend again", "Acme"),
		},
	}
	a := newJumpit(&fakeLauncher{session: session}, nil, jumpitConfig())

	records := a.Acquire(context.Background(), "go", 20)

	require.Len(t, records, 2)
	assert.Equal(t, "jumpit-10", records[0].ID)
	assert.Equal(t, "https://jumpit.saramin.co.kr/position/10", records[0].SourceURL)
	assert.Equal(t, model.DefaultCategory, records[0].Category)
	assert.Equal(t, "서울 강남구", records[0].Location)
	require.NotNil(t, records[0].JumpitDetail)
	assert.Equal(t, "Go, Kubernetes", records[0].TechStack)
	assert.Equal(t, "https://cdn.jumpit.co.kr/thumb/10.png", records[0].ImageURL)
	assert.Equal(t, "jumpit-11", records[1].ID)
	assert.Equal(t, []string{"https://jumpit.saramin.co.kr/search?sort=relation&keyword=go"}, session.navigated)
	assert.Equal(t, 1, session.scrollCalls)
	assert.Equal(t, 1, session.closed)
}

func TestJumpitAcquire_BlankKeywordUsesDefaultURL(t *testing.T) {
	session := &fakeSession{cards: []string{jumpitCard("10", "Backend", "Acme")}}
	launcher := &fakeLauncher{session: session}
	a := newJumpit(launcher, nil, jumpitConfig())

	records := a.Acquire(context.Background(), "", 5)

	assert.Len(t, records, 1)
	assert.Equal(t, 1, launcher.launches)
	assert.Equal(t, []string{"https://jumpit.saramin.co.kr/search?sort=relation"}, session.navigated)
}

func TestJumpitAcquire_EnrichDueDate(t *testing.T) {
	cfg := jumpitConfig()
	cfg.EnrichDetails = true
	session := &fakeSession{cards: []string{jumpitCard("10", "Backend", "Acme")}}
	details := &fakeCollector{pages: map[string]string{
		"https://jumpit.saramin.co.kr/position/10": "마감일 2025.7.3 경력 3년",
	}}
	a := newJumpit(&fakeLauncher{session: session}, details, cfg)

	records := a.Acquire(context.Background(), "go", 5)

	require.Len(t, records, 1)
	assert.Equal(t, "2025-07-03", records[0].DueDate)
}

func TestExtractDueDate(t *testing.T) {
	assert.Equal(t, "2025-07-03", extractDueDate("마감일 2025-07-03"))
	assert.Equal(t, "2025-12-31", extractDueDate("2025. 12. 31 까지"))
	assert.Empty(t, extractDueDate("상시채용"))
	assert.Empty(t, extractDueDate("2025-13-01"))
}
