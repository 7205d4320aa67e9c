package chrome

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/LouYuanbo1/jobcrawler/internal/config"
	"github.com/LouYuanbo1/jobcrawler/internal/infra/crawler/types"
	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"
	"github.com/rotisserie/eris"
)

type chromedpLauncher struct {
	cfg *config.Browser
}

func (l *chromedpLauncher) Launch(ctx context.Context) (Session, error) {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", l.cfg.Headless),
		chromedp.Flag("no-sandbox", l.cfg.NoSandbox),
		chromedp.Flag("disable-setuid-sandbox", l.cfg.DisableSetuidSandbox),
		chromedp.Flag("disable-dev-shm-usage", l.cfg.DisableDevShmUsage),
		chromedp.UserAgent(l.cfg.UserAgent),
	)
	if l.cfg.Bin != "" {
		opts = append(opts, chromedp.ExecPath(l.cfg.Bin))
	}
	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, opts...)
	pageCtx, cancelPage := chromedp.NewContext(allocCtx)

	s := &chromedpSession{
		pageCtx:     pageCtx,
		cancelPage:  cancelPage,
		cancelAlloc: cancelAlloc,
	}

	// 第一次 Run 才会真正启动浏览器,启动失败在这里返回
	actions := []chromedp.Action{network.Enable()}
	if l.cfg.AcceptLanguage != "" {
		actions = append(actions, network.SetExtraHTTPHeaders(network.Headers{
			"Accept-Language": l.cfg.AcceptLanguage,
		}))
	}
	if err := chromedp.Run(pageCtx, actions...); err != nil {
		s.Close()
		return nil, eris.Wrap(err, "chrome: launch chromedp browser")
	}
	return s, nil
}

type chromedpSession struct {
	pageCtx     context.Context
	cancelPage  context.CancelFunc
	cancelAlloc context.CancelFunc
	closeOnce   sync.Once
}

func (s *chromedpSession) Navigate(url string, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(s.pageCtx, timeout)
	defer cancel()
	if err := chromedp.Run(ctx, chromedp.Navigate(url)); err != nil {
		return eris.Wrapf(err, "chrome: navigate to %s", url)
	}
	return nil
}

func (s *chromedpSession) WaitVisible(selector string, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(s.pageCtx, timeout)
	defer cancel()
	if err := chromedp.Run(ctx, chromedp.WaitVisible(selector, chromedp.ByQuery)); err != nil {
		return eris.Wrapf(err, "chrome: wait for %s", selector)
	}
	return nil
}

func (s *chromedpSession) ScrollHeight() (int64, error) {
	var height int64
	if err := chromedp.Run(s.pageCtx, chromedp.Evaluate(scrollHeightJS, &height)); err != nil {
		return 0, eris.Wrap(err, "chrome: read scroll height")
	}
	return height, nil
}

func (s *chromedpSession) ScrollToBottom() error {
	if err := chromedp.Run(s.pageCtx, chromedp.Evaluate(scrollToBottomJS, nil)); err != nil {
		return eris.Wrap(err, "chrome: scroll to bottom")
	}
	return nil
}

func (s *chromedpSession) WaitHeightAbove(prev int64, timeout time.Duration) (bool, error) {
	var grown bool
	err := chromedp.Run(s.pageCtx, chromedp.Poll(
		fmt.Sprintf("%s > %d", scrollHeightJS, prev),
		&grown,
		chromedp.WithPollingInterval(250*time.Millisecond),
		chromedp.WithPollingTimeout(timeout),
	))
	return growthResult(err, chromedp.ErrPollingTimeout)
}

func (s *chromedpSession) HtmlContent(selector string) (*types.HtmlContent, error) {
	expr, err := outerHTMLExpr(selector)
	if err != nil {
		return nil, err
	}
	var location string
	var content []string
	if err := chromedp.Run(s.pageCtx,
		chromedp.Location(&location),
		chromedp.Evaluate(expr, &content),
	); err != nil {
		return nil, eris.Wrapf(err, "chrome: extract %s", selector)
	}
	return &types.HtmlContent{Url: location, ContentSelector: selector, Content: content}, nil
}

// Close 关闭浏览器并释放 context,可以重复调用
func (s *chromedpSession) Close() {
	s.closeOnce.Do(func() {
		// 浏览器可能已经随 ctx 退出,Cancel 的错误可以忽略
		_ = chromedp.Cancel(s.pageCtx)
		s.cancelPage()
		s.cancelAlloc()
	})
}
