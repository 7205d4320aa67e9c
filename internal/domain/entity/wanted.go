package entity

import (
	"time"

	"github.com/LouYuanbo1/jobcrawler/internal/domain/model"
)

type RawWantedJob struct {
	ID           string
	Title        string
	Company      string
	Experience   string
	ContractType string
	Reward       string
	ImageURL     string
	Category     string
	Description  string
}

func (r *RawWantedJob) RawID() string {
	return r.ID
}

func (r *RawWantedJob) Valid() bool {
	return r.ID != "" && r.Title != "" && r.Company != ""
}

func (r *RawWantedJob) ToRecord(site Site, observed time.Time) model.JobRecord {
	return model.JobRecord{
		ID:         string(model.SourceWanted) + "-" + r.ID,
		Title:      r.Title,
		Company:    r.Company,
		Location:   model.DefaultLocation,
		Category:   orDefault(r.Category, model.DefaultCategory),
		Experience: orDefault(r.Experience, model.DefaultExperience),
		PostedDate: model.ObservationDate(observed),
		Source:     model.SourceWanted,
		SourceURL:  r.DetailPage(site),
		ImageURL:   r.ImageURL,
		WantedDetail: &model.WantedDetail{
			Salary:       orDefault(r.Reward, model.DefaultSalary),
			Reward:       r.Reward,
			ContractType: r.ContractType,
			Description:  r.Description,
		},
	}
}

func (r *RawWantedJob) DetailPage(site Site) string {
	return site.DetailURL + r.ID
}
