package chrome

import (
	"context"
	"sync"
	"time"

	"github.com/LouYuanbo1/jobcrawler/internal/config"
	"github.com/LouYuanbo1/jobcrawler/internal/infra/crawler/types"
	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"github.com/go-rod/stealth"
	"github.com/rotisserie/eris"
)

type rodLauncher struct {
	cfg *config.Browser
}

func (l *rodLauncher) Launch(ctx context.Context) (Session, error) {
	lc := launcher.New().
		Context(ctx).
		Headless(l.cfg.Headless).
		NoSandbox(l.cfg.NoSandbox).
		Leakless(l.cfg.Leakless)
	if l.cfg.DisableSetuidSandbox {
		lc = lc.Set("disable-setuid-sandbox")
	}
	if l.cfg.DisableDevShmUsage {
		lc = lc.Set("disable-dev-shm-usage")
	}
	if l.cfg.Bin != "" {
		lc = lc.Bin(l.cfg.Bin)
	}

	controlURL, err := lc.Launch()
	if err != nil {
		lc.Kill()
		lc.Cleanup()
		return nil, eris.Wrap(err, "chrome: launch rod browser")
	}

	s := &rodSession{launcher: lc}
	s.browser = rod.New().Context(ctx).ControlURL(controlURL)
	if err := s.browser.Connect(); err != nil {
		s.browser = nil
		s.Close()
		return nil, eris.Wrap(err, "chrome: connect rod browser")
	}

	if l.cfg.Stealth {
		s.page, err = stealth.Page(s.browser)
	} else {
		s.page, err = s.browser.Page(proto.TargetCreateTarget{})
	}
	if err != nil {
		s.Close()
		return nil, eris.Wrap(err, "chrome: open rod page")
	}

	if err := s.page.SetUserAgent(&proto.NetworkSetUserAgentOverride{
		UserAgent:      l.cfg.UserAgent,
		AcceptLanguage: l.cfg.AcceptLanguage,
	}); err != nil {
		s.Close()
		return nil, eris.Wrap(err, "chrome: set user agent")
	}
	return s, nil
}

type rodSession struct {
	launcher  *launcher.Launcher
	browser   *rod.Browser
	page      *rod.Page
	closeOnce sync.Once
}

func (s *rodSession) Navigate(url string, timeout time.Duration) error {
	page := s.page.Timeout(timeout)
	defer page.CancelTimeout()
	if err := page.Navigate(url); err != nil {
		return eris.Wrapf(err, "chrome: navigate to %s", url)
	}
	if err := page.WaitLoad(); err != nil {
		return eris.Wrapf(err, "chrome: wait load %s", url)
	}
	return nil
}

func (s *rodSession) WaitVisible(selector string, timeout time.Duration) error {
	page := s.page.Timeout(timeout)
	defer page.CancelTimeout()
	el, err := page.Element(selector)
	if err != nil {
		return eris.Wrapf(err, "chrome: find %s", selector)
	}
	if err := el.WaitVisible(); err != nil {
		return eris.Wrapf(err, "chrome: wait for %s", selector)
	}
	return nil
}

func (s *rodSession) ScrollHeight() (int64, error) {
	res, err := s.page.Eval(`() => ` + scrollHeightJS)
	if err != nil {
		return 0, eris.Wrap(err, "chrome: read scroll height")
	}
	return int64(res.Value.Int()), nil
}

func (s *rodSession) ScrollToBottom() error {
	if _, err := s.page.Eval(`() => ` + scrollToBottomJS); err != nil {
		return eris.Wrap(err, "chrome: scroll to bottom")
	}
	return nil
}

func (s *rodSession) WaitHeightAbove(prev int64, timeout time.Duration) (bool, error) {
	page := s.page.Timeout(timeout)
	defer page.CancelTimeout()
	err := page.Wait(rod.Eval(`(prev) => `+scrollHeightJS+` > prev`, prev))
	return growthResult(err, context.DeadlineExceeded)
}

func (s *rodSession) HtmlContent(selector string) (*types.HtmlContent, error) {
	res, err := s.page.Eval(`(sel) => Array.from(document.querySelectorAll(sel)).map(e => e.outerHTML)`, selector)
	if err != nil {
		return nil, eris.Wrapf(err, "chrome: extract %s", selector)
	}
	items := res.Value.Arr()
	content := make([]string, 0, len(items))
	for _, item := range items {
		content = append(content, item.Str())
	}
	info, err := s.page.Info()
	url := ""
	if err == nil {
		url = info.URL
	}
	return &types.HtmlContent{Url: url, ContentSelector: selector, Content: content}, nil
}

func (s *rodSession) Close() {
	s.closeOnce.Do(func() {
		if s.page != nil {
			_ = s.page.Close()
		}
		if s.browser != nil {
			_ = s.browser.Close()
		}
		s.launcher.Kill()
		s.launcher.Cleanup()
	})
}
