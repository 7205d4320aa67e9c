package chrome

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/LouYuanbo1/jobcrawler/internal/config"
	"github.com/LouYuanbo1/jobcrawler/internal/infra/crawler/types"
	"github.com/rotisserie/eris"
)

// Launcher 启动一个独立的浏览器会话,每次抓取都重新启动,不复用
type Launcher interface {
	Launch(ctx context.Context) (Session, error)
}

// Session 一个浏览器页面,生命周期受 Launch 时传入的 ctx 控制
type Session interface {
	Navigate(url string, timeout time.Duration) error
	WaitVisible(selector string, timeout time.Duration) error
	ScrollHeight() (int64, error)
	ScrollToBottom() error
	// WaitHeightAbove 等待页面高度超过 prev,超时返回 false 而不是错误
	WaitHeightAbove(prev int64, timeout time.Duration) (bool, error)
	// HtmlContent 返回所有匹配元素的 outerHTML
	HtmlContent(selector string) (*types.HtmlContent, error)
	Close()
}

// InitLauncher 根据配置选择 chromedp 或 rod 驱动
func InitLauncher(cfg *config.Browser) (Launcher, error) {
	switch cfg.Driver {
	case config.DriverChromedp, "":
		return &chromedpLauncher{cfg: cfg}, nil
	case config.DriverRod:
		return &rodLauncher{cfg: cfg}, nil
	default:
		return nil, eris.Errorf("chrome: unknown driver %q", cfg.Driver)
	}
}

const (
	scrollHeightJS   = `document.body.scrollHeight`
	scrollToBottomJS = `window.scrollTo(0, document.body.scrollHeight)`
)

// growthResult 等待超时说明页面不再增长,返回 false 而不是错误
func growthResult(err, timeout error) (bool, error) {
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, timeout):
		return false, nil
	default:
		return false, eris.Wrap(err, "chrome: wait for page growth")
	}
}

// outerHTMLExpr 生成收集 outerHTML 的表达式,选择器经过 json 转义
func outerHTMLExpr(selector string) (string, error) {
	quoted, err := json.Marshal(selector)
	if err != nil {
		return "", eris.Wrap(err, "chrome: quote selector")
	}
	return fmt.Sprintf(`Array.from(document.querySelectorAll(%s)).map(e => e.outerHTML)`, quoted), nil
}
