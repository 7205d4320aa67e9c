package param

// 不参与过滤的哨兵值
const (
	AllCategories = "전체"
	AllLocations  = "전국"
	All           = "all"
)

type Search struct {
	Keyword  string `json:"keyword"`
	Category string `json:"category"`
	Location string `json:"location"`
	Limit    int    `json:"limit"`
}

// FilterCategory 为 false 时表示不按分类过滤
func (s *Search) FilterCategory() bool {
	return s.Category != "" && s.Category != All && s.Category != AllCategories
}

// FilterLocation 为 false 时表示不按地区过滤
func (s *Search) FilterLocation() bool {
	return s.Location != "" && s.Location != All && s.Location != AllLocations
}
