package param

const (
	SortLatest  = "latest"
	SortRecent  = "recent"
	SortSalary  = "salary"
	SortCompany = "company"
)

// Stored 已入库岗位的查询条件
type Stored struct {
	Keyword  string `json:"keyword"`
	Category string `json:"category"`
	Location string `json:"location"`
	Source   string `json:"source"`
	SortBy   string `json:"sort_by"`
	Page     int    `json:"page"`
	Limit    int    `json:"limit"`
}

func (s *Stored) FilterCategory() bool {
	return s.Category != "" && s.Category != All && s.Category != AllCategories
}

func (s *Stored) FilterLocation() bool {
	return s.Location != "" && s.Location != All && s.Location != AllLocations
}

// Offset page 从 1 开始
func (s *Stored) Offset() int {
	if s.Page < 1 {
		return 0
	}
	return (s.Page - 1) * s.Limit
}
