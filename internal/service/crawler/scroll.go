package crawler

import (
	"context"
	"time"

	"github.com/LouYuanbo1/jobcrawler/param"
	"go.uber.org/zap"
)

// ScrollPage 滚动分页需要的页面操作,chrome.Session 满足这个接口
type ScrollPage interface {
	ScrollHeight() (int64, error)
	ScrollToBottom() error
	WaitHeightAbove(prev int64, timeout time.Duration) (bool, error)
}

// Paginate 滚动到底部触发无限加载,直到页面不再增长或达到 MaxScrolls
// 返回实际滚动的次数
func Paginate(ctx context.Context, page ScrollPage, p *param.Scroll, logger *zap.Logger) int {
	scrolls := 0
	for scrolls < p.MaxScrolls {
		if err := ctx.Err(); err != nil {
			logger.Debug("scroll cancelled", zap.Int("scrolls", scrolls), zap.Error(err))
			return scrolls
		}

		prev, err := page.ScrollHeight()
		if err != nil {
			logger.Warn("read page height failed", zap.String("stage", "scroll"), zap.Error(err))
			return scrolls
		}
		if err := page.ScrollToBottom(); err != nil {
			logger.Warn("scroll to bottom failed", zap.String("stage", "scroll"), zap.Error(err))
			return scrolls
		}
		scrolls++

		grown, err := page.WaitHeightAbove(prev, p.WaitTimeout)
		if err != nil {
			logger.Warn("wait for page growth failed", zap.String("stage", "scroll"), zap.Error(err))
			return scrolls
		}
		// 高度没有变化说明已经没有更多数据
		if !grown {
			logger.Debug("page stopped growing", zap.Int("scrolls", scrolls), zap.Int64("height", prev))
			return scrolls
		}

		if !sleepContext(ctx, p.Pause) {
			return scrolls
		}
	}
	logger.Debug("max scrolls reached", zap.Int("scrolls", scrolls))
	return scrolls
}

func sleepContext(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
