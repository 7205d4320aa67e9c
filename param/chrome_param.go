package param

import (
	"math"
	"time"
)

// Scroll 滚动分页参数,用于控制一次列表页的滚动加载
type Scroll struct {
	// 最大滚动次数
	MaxScrolls int `json:"max_scrolls"`
	// 每次滚动后等待页面高度增长的最长时间
	WaitTimeout time.Duration `json:"wait_timeout"`
	// 页面增长后的固定停顿
	Pause time.Duration `json:"pause"`
}

// MaxScrolls 根据目标数量和每次滚动预计新增的卡片数计算滚动上限
// 这只是一个吞吐量估计,并不保证能拿到 limit 条数据
func MaxScrolls(limit, yieldPerScroll int) int {
	if limit <= 0 || yieldPerScroll <= 0 {
		return 0
	}
	return int(math.Ceil(float64(limit) / float64(yieldPerScroll)))
}
