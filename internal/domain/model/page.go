package model

// Page 分页结果,字段名与前端约定一致
type Page[T any] struct {
	Jobs        []T  `json:"jobs"`
	TotalCount  int  `json:"totalCount"`
	CurrentPage int  `json:"currentPage"`
	TotalPages  int  `json:"totalPages"`
	HasMore     bool `json:"hasMore"`
}

// NewPage items 为当前页的数据,total 为全部数量
func NewPage[T any](items []T, total, page, limit int) Page[T] {
	if items == nil {
		items = []T{}
	}
	totalPages := 0
	if limit > 0 {
		totalPages = (total + limit - 1) / limit
	}
	return Page[T]{
		Jobs:        items,
		TotalCount:  total,
		CurrentPage: page,
		TotalPages:  totalPages,
		HasMore:     page*limit < total,
	}
}

// Paginate 对内存中的结果分页,page 从 1 开始
func Paginate[T any](items []T, page, limit int) Page[T] {
	if page < 1 {
		page = 1
	}
	if limit <= 0 {
		return NewPage([]T{}, len(items), page, limit)
	}
	start := min((page-1)*limit, len(items))
	end := min(start+limit, len(items))
	return NewPage(items[start:end], len(items), page, limit)
}

// JobStats 已入库岗位的统计
type JobStats struct {
	TotalJobs   int64            `json:"totalJobs"`
	BySource    map[string]int64 `json:"bySource"`
	ByCategory  map[string]int64 `json:"byCategory"`
	LastUpdated string           `json:"lastUpdated,omitempty"`
}
