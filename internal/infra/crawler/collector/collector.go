package collector

import (
	"context"
)

// DetailCollector 抓取岗位详情页,返回 url 到选择器文本的映射
// 抓取失败的 url 不会出现在结果中
type DetailCollector interface {
	Collect(ctx context.Context, urls []string, selector string) map[string]string
}
