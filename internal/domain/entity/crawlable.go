package entity

import (
	"time"

	"github.com/LouYuanbo1/jobcrawler/internal/domain/model"
)

// Site 生成岗位链接需要的站点地址
type Site struct {
	BaseURL   string
	DetailURL string
}

// Crawlable 从列表页卡片中解析出的原始数据
// 使用类型约束限定可爬取的实体,新增站点时在这里登记
type Crawlable interface {
	*RawWantedJob | *RawJumpitJob
	// RawID 站点自己的岗位ID,用于去重
	RawID() string
	// Valid 缺少ID、标题或公司名的卡片会被丢弃
	Valid() bool
	// DetailPage 岗位详情页地址
	DetailPage(site Site) string
	ToRecord(site Site, observed time.Time) model.JobRecord
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
