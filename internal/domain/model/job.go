package model

import (
	"time"
)

type Source string

const (
	SourceWanted Source = "wanted"
	SourceJumpit Source = "jumpit"
)

// DateLayout postedDate/dueDate 使用的日期格式
const DateLayout = "2006-01-02"

// 列表页没有的字段使用的默认值
const (
	DefaultLocation   = "미지정"
	DefaultExperience = "경력 무관"
	DefaultCategory   = "개발"
	DefaultSalary     = "회사 내규에 따름"
)

func ParseSource(s string) (Source, bool) {
	switch Source(s) {
	case SourceWanted, SourceJumpit:
		return Source(s), true
	}
	return "", false
}

// JobRecord 统一的岗位记录
// 公共字段之外,WantedDetail 和 JumpitDetail 中恰好有一个非空,与 Source 对应
type JobRecord struct {
	ID         string `json:"id"`
	Title      string `json:"title"`
	Company    string `json:"company"`
	Location   string `json:"location"`
	Category   string `json:"category"`
	Experience string `json:"experience,omitempty"`
	// 列表页不提供发布日期,这里记录的是抓取当天
	PostedDate string `json:"postedDate"`
	Source     Source `json:"source"`
	SourceURL  string `json:"sourceUrl"`
	ImageURL   string `json:"imageUrl,omitempty"`

	*WantedDetail
	*JumpitDetail
}

type WantedDetail struct {
	Salary       string `json:"salary,omitempty"`
	Reward       string `json:"reward,omitempty"`
	ContractType string `json:"contractType,omitempty"`
	Description  string `json:"description,omitempty"`
}

type JumpitDetail struct {
	TechStack string `json:"techStack,omitempty"`
	Deadline  string `json:"deadline,omitempty"`
	DueDate   string `json:"dueDate,omitempty"`
}

// BaseJob 只包含公共字段,用于列表展示
type BaseJob struct {
	ID         string `json:"id"`
	Title      string `json:"title"`
	Company    string `json:"company"`
	Location   string `json:"location"`
	Category   string `json:"category"`
	Experience string `json:"experience,omitempty"`
	PostedDate string `json:"postedDate"`
	Source     Source `json:"source"`
	SourceURL  string `json:"sourceUrl"`
	ImageURL   string `json:"imageUrl,omitempty"`
}

func (j *JobRecord) Base() BaseJob {
	return BaseJob{
		ID:         j.ID,
		Title:      j.Title,
		Company:    j.Company,
		Location:   j.Location,
		Category:   j.Category,
		Experience: j.Experience,
		PostedDate: j.PostedDate,
		Source:     j.Source,
		SourceURL:  j.SourceURL,
		ImageURL:   j.ImageURL,
	}
}

// SalaryText wanted 以外的来源没有薪资信息,返回空字符串
func (j *JobRecord) SalaryText() string {
	if j.WantedDetail == nil {
		return ""
	}
	return j.Salary
}

// Posted 解析 PostedDate,格式错误时返回零值,排序时排在最后
func (j *JobRecord) Posted() time.Time {
	return ParsePostedDate(j.PostedDate)
}

func ParsePostedDate(s string) time.Time {
	if t, err := time.Parse(DateLayout, s); err == nil {
		return t
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t
	}
	return time.Time{}
}

// ObservationDate 把抓取时间格式化为 postedDate
func ObservationDate(observed time.Time) string {
	return observed.Format(DateLayout)
}
