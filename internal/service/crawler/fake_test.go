package crawler

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/LouYuanbo1/jobcrawler/internal/infra/crawler/chrome"
	"github.com/LouYuanbo1/jobcrawler/internal/infra/crawler/types"
)

// fakeSession 模拟无限滚动页面: 每次等待增长时取下一个高度
type fakeSession struct {
	mu sync.Mutex

	heights []int64
	idx     int
	cards   []string

	navigateErr error
	waitErr     error
	heightErr   error
	contentErr  error
	panicOnHTML bool

	navigated   []string
	scrollCalls int
	closed      int
}

func (s *fakeSession) Navigate(url string, _ time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.navigated = append(s.navigated, url)
	return s.navigateErr
}

func (s *fakeSession) WaitVisible(string, time.Duration) error {
	return s.waitErr
}

func (s *fakeSession) ScrollHeight() (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.heightErr != nil {
		return 0, s.heightErr
	}
	if len(s.heights) == 0 {
		return 0, nil
	}
	return s.heights[s.idx], nil
}

func (s *fakeSession) ScrollToBottom() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.scrollCalls++
	return nil
}

func (s *fakeSession) WaitHeightAbove(prev int64, _ time.Duration) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.idx+1 < len(s.heights) && s.heights[s.idx+1] > prev {
		s.idx++
		return true, nil
	}
	return false, nil
}

func (s *fakeSession) HtmlContent(selector string) (*types.HtmlContent, error) {
	if s.panicOnHTML {
		panic("unexpected dom")
	}
	if s.contentErr != nil {
		return nil, s.contentErr
	}
	return &types.HtmlContent{ContentSelector: selector, Content: s.cards}, nil
}

func (s *fakeSession) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed++
}

type fakeLauncher struct {
	session  *fakeSession
	err      error
	launches int
}

func (l *fakeLauncher) Launch(ctx context.Context) (chrome.Session, error) {
	l.launches++
	if l.err != nil {
		return nil, l.err
	}
	return l.session, nil
}

type fakeCollector struct {
	pages     map[string]string
	requested []string
}

func (c *fakeCollector) Collect(_ context.Context, urls []string, _ string) map[string]string {
	c.requested = append(c.requested, urls...)
	out := map[string]string{}
	for _, u := range urls {
		if text, ok := c.pages[u]; ok {
			out[u] = text
		}
	}
	return out
}

var errBoom = errors.New("boom")
