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
	"go.uber.org/zap/zaptest/observer"
)

var fixedNow = time.Date(2025, 6, 2, 9, 0, 0, 0, time.UTC)

func wantedConfig() *config.Source {
	return &config.Source{
		Enabled:           true,
		SearchURL:         "https://www.wanted.co.kr/search?query={keyword}&tab=position",
		BaseURL:           "https://www.wanted.co.kr",
		DetailURL:         "https://www.wanted.co.kr/wd/",
		ListSelector:      ".JobList_container__Hf1rb",
		CardSelector:      ".JobCard_container__zQcZs",
		YieldPerScroll:    8,
		NavigationTimeout: time.Second,
		SelectorTimeout:   time.Second,
		ScrollWaitTimeout: time.Second,
		DetailSelector:    "section",
	}
}

func wantedCard(id, title, company string) string {
	return fmt.Sprintf(`<div class="JobCard_container__zQcZs">
  <a href="/wd/%s" data-job-category="개발">
    <div class="JobCard_thumbnail__A1ieG"><img src="https://img.wanted.co.kr/%s.jpg"></div>
    <strong class="JobCard_title___kfvj"> %s </strong>
    <span class="CompanyNameWithLocationPeriod_CompanyNameWithLocationPeriod__company__ByVLu">%s</span>
    <span class="CompanyNameWithLocationPeriod_CompanyNameWithLocationPeriod__location__4_w0l">경력 3-5년</span>
    <span class="wds-5jjoh5">정규직</span>
    <span class="JobCard_reward__oCSIQ">합격보상금 100만원</span>
  </a>
</div>`, id, id, title, company)
}

func newWanted(launcher *fakeLauncher, details *fakeCollector, cfg *config.Source) *siteAdapter[*entity.RawWantedJob] {
	var a Adapter
	if details != nil {
		a = InitWantedAdapter(cfg, launcher, details, zap.NewNop())
	} else {
		a = InitWantedAdapter(cfg, launcher, nil, zap.NewNop())
	}
	sa := a.(*siteAdapter[*entity.RawWantedJob])
	sa.now = func() time.Time { return fixedNow }
	return sa
}

func TestParseWantedCard(t *testing.T) {
	raw, err := parseWantedCard(wantedCard("231547", "백엔드 개발자", "Acme"))
	require.NoError(t, err)

	assert.Equal(t, "231547", raw.ID)
	assert.Equal(t, "백엔드 개발자", raw.Title)
	assert.Equal(t, "Acme", raw.Company)
	assert.Equal(t, "경력 3-5년", raw.Experience)
	assert.Equal(t, "정규직", raw.ContractType)
	assert.Equal(t, "합격보상금 100만원", raw.Reward)
	assert.Equal(t, "https://img.wanted.co.kr/231547.jpg", raw.ImageURL)
	assert.Equal(t, "개발", raw.Category)
}

func TestParseWantedCard_MissingFields(t *testing.T) {
	raw, err := parseWantedCard(`<div class="JobCard_container__zQcZs"><a href="/wd/9"></a></div>`)
	require.NoError(t, err)
	assert.Equal(t, "9", raw.ID)
	assert.False(t, raw.Valid())
}

func TestLastPathSegment(t *testing.T) {
	assert.Equal(t, "123", lastPathSegment("/wd/123"))
	assert.Equal(t, "123", lastPathSegment("https://www.wanted.co.kr/wd/123/"))
	assert.Equal(t, "55", lastPathSegment("/position/55?from=search#top"))
	assert.Equal(t, "abc", lastPathSegment("abc"))
	assert.Empty(t, lastPathSegment(""))
}

func TestWantedAcquire(t *testing.T) {
	session := &fakeSession{
		heights: []int64{1000, 2000},
		cards: []string{
			wantedCard("1", "Go Developer", "Acme"),
			wantedCard("2", "SRE", "Globex"),
			wantedCard("1", "Go Developer (dup)", "Acme"),
			wantedCard("3", "No Company", ""),
			`<div class="JobCard_container__zQcZs"><span>ad</span></div>`,
		},
	}
	launcher := &fakeLauncher{session: session}
	a := newWanted(launcher, nil, wantedConfig())

	records := a.Acquire(context.Background(), "백엔드 개발", 10)

	require.Len(t, records, 2)
	assert.Equal(t, "wanted-1", records[0].ID)
	assert.Equal(t, "Go Developer", records[0].Title)
	assert.Equal(t, "wanted-2", records[1].ID)
	assert.Equal(t, "https://www.wanted.co.kr/wd/2", records[1].SourceURL)
	assert.Equal(t, "2025-06-02", records[1].PostedDate)
	assert.Equal(t, model.SourceWanted, records[1].Source)
	require.NotNil(t, records[0].WantedDetail)
	assert.Equal(t, "합격보상금 100만원", records[0].Salary)

	assert.Equal(t, []string{"https://www.wanted.co.kr/search?query=%EB%B0%B1%EC%97%94%EB%93%9C%20%EA%B0%9C%EB%B0%9C&tab=position"}, session.navigated)
	assert.Equal(t, 1, session.closed)
	assert.Equal(t, 1, launcher.launches)
}

func TestWantedAcquire_TruncatesToLimit(t *testing.T) {
	cards := make([]string, 0, 12)
	for i := range 12 {
		cards = append(cards, wantedCard(fmt.Sprint(i+1), fmt.Sprintf("job %d", i+1), "Acme"))
	}
	session := &fakeSession{heights: []int64{1, 2, 3}, cards: cards}
	a := newWanted(&fakeLauncher{session: session}, nil, wantedConfig())

	records := a.Acquire(context.Background(), "go", 5)

	require.Len(t, records, 5)
	assert.Equal(t, "wanted-1", records[0].ID)
	assert.Equal(t, "wanted-5", records[4].ID)
	// ceil(5/8) = 1 次滚动
	assert.Equal(t, 1, session.scrollCalls)
}

func TestWantedAcquire_BlankKeywordSkipsBrowser(t *testing.T) {
	launcher := &fakeLauncher{session: &fakeSession{}}
	a := newWanted(launcher, nil, wantedConfig())

	records := a.Acquire(context.Background(), "   ", 10)

	assert.NotNil(t, records)
	assert.Empty(t, records)
	assert.Zero(t, launcher.launches)
}

func TestWantedAcquire_NonPositiveLimit(t *testing.T) {
	launcher := &fakeLauncher{session: &fakeSession{}}
	a := newWanted(launcher, nil, wantedConfig())

	assert.Empty(t, a.Acquire(context.Background(), "go", 0))
	assert.Zero(t, launcher.launches)
}

func TestWantedAcquire_Failures(t *testing.T) {
	cards := []string{wantedCard("1", "Go", "Acme")}

	t.Run("launch", func(t *testing.T) {
		a := newWanted(&fakeLauncher{err: errBoom}, nil, wantedConfig())
		records := a.Acquire(context.Background(), "go", 10)
		assert.NotNil(t, records)
		assert.Empty(t, records)
	})

	t.Run("navigate", func(t *testing.T) {
		session := &fakeSession{cards: cards, navigateErr: errBoom}
		a := newWanted(&fakeLauncher{session: session}, nil, wantedConfig())
		assert.Empty(t, a.Acquire(context.Background(), "go", 10))
		assert.Equal(t, 1, session.closed)
	})

	t.Run("list selector missing is not fatal", func(t *testing.T) {
		session := &fakeSession{cards: cards, waitErr: errBoom}
		a := newWanted(&fakeLauncher{session: session}, nil, wantedConfig())
		assert.Len(t, a.Acquire(context.Background(), "go", 10), 1)
		assert.Equal(t, 1, session.closed)
	})

	t.Run("extract", func(t *testing.T) {
		session := &fakeSession{cards: cards, contentErr: errBoom}
		a := newWanted(&fakeLauncher{session: session}, nil, wantedConfig())
		assert.Empty(t, a.Acquire(context.Background(), "go", 10))
		assert.Equal(t, 1, session.closed)
	})

	t.Run("panic", func(t *testing.T) {
		session := &fakeSession{cards: cards, panicOnHTML: true}
		core, logs := observer.New(zap.ErrorLevel)
		a := newWanted(&fakeLauncher{session: session}, nil, wantedConfig())
		a.logger = zap.New(core)

		records := a.Acquire(context.Background(), "go", 10)

		assert.NotNil(t, records)
		assert.Empty(t, records)
		assert.Equal(t, 1, session.closed)
		entries := logs.FilterMessage("acquire panicked").All()
		require.Len(t, entries, 1)
		assert.Equal(t, "panic", entries[0].ContextMap()["stage"])
		assert.Equal(t, int64(0), entries[0].ContextMap()["kept"])
	})
}

func TestWantedAcquire_EnrichDetails(t *testing.T) {
	cfg := wantedConfig()
	cfg.EnrichDetails = true
	session := &fakeSession{cards: []string{wantedCard("1", "Go", "Acme"), wantedCard("2", "Rust", "Acme")}}
	details := &fakeCollector{pages: map[string]string{
		"https://www.wanted.co.kr/wd/1": "주요업무 Go 서버 개발",
	}}
	a := newWanted(&fakeLauncher{session: session}, details, cfg)

	records := a.Acquire(context.Background(), "go", 10)

	require.Len(t, records, 2)
	assert.Equal(t, "주요업무 Go 서버 개발", records[0].Description)
	assert.Empty(t, records[1].Description)
	assert.Equal(t, []string{"https://www.wanted.co.kr/wd/1", "https://www.wanted.co.kr/wd/2"}, details.requested)
}

func TestWantedAcquire_EnrichDisabled(t *testing.T) {
	session := &fakeSession{cards: []string{wantedCard("1", "Go", "Acme")}}
	details := &fakeCollector{}
	a := newWanted(&fakeLauncher{session: session}, details, wantedConfig())

	require.Len(t, a.Acquire(context.Background(), "go", 10), 1)
	assert.Empty(t, details.requested)
}
