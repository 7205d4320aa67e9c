package entity

import (
	"strings"
	"time"

	"github.com/LouYuanbo1/jobcrawler/internal/domain/model"
)

type RawJumpitJob struct {
	ID         string
	Href       string
	Title      string
	Company    string
	TechStack  string
	Location   string
	Experience string
	Deadline   string
	DueDate    string
	ImageURL   string
}

func (r *RawJumpitJob) RawID() string {
	return r.ID
}

func (r *RawJumpitJob) Valid() bool {
	return r.ID != "" && r.Title != "" && r.Company != ""
}

func (r *RawJumpitJob) ToRecord(site Site, observed time.Time) model.JobRecord {
	return model.JobRecord{
		ID:         string(model.SourceJumpit) + "-" + r.ID,
		Title:      r.Title,
		Company:    r.Company,
		Location:   orDefault(r.Location, model.DefaultLocation),
		Category:   model.DefaultCategory,
		Experience: orDefault(r.Experience, model.DefaultExperience),
		PostedDate: model.ObservationDate(observed),
		Source:     model.SourceJumpit,
		SourceURL:  r.DetailPage(site),
		ImageURL:   r.ImageURL,
		JumpitDetail: &model.JumpitDetail{
			TechStack: r.TechStack,
			Deadline:  r.Deadline,
			DueDate:   r.DueDate,
		},
	}
}

// DetailPage 优先使用卡片上的链接,没有链接时按ID拼接
func (r *RawJumpitJob) DetailPage(site Site) string {
	switch {
	case r.Href == "":
		return site.DetailURL + r.ID
	case strings.HasPrefix(r.Href, "http://"), strings.HasPrefix(r.Href, "https://"):
		return r.Href
	default:
		return site.BaseURL + r.Href
	}
}
