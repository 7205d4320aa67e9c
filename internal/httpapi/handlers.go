package httpapi

import (
	"encoding/json"
	"net/http"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/LouYuanbo1/jobcrawler/internal/domain/model"
	"github.com/LouYuanbo1/jobcrawler/internal/service/aggregator"
	"github.com/LouYuanbo1/jobcrawler/param"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

const (
	// 实时抓取时多抓几页再分页
	searchFetchFactor = 5
	sourceFetchFactor = 3
)

var nonDigits = regexp.MustCompile(`[^0-9]`)

type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
	// 只有岗位详情接口会返回原网站地址
	SourceURL string `json:"sourceUrl,omitempty"`
}

type sourcePage struct {
	model.Page[model.JobRecord]
	Source model.Source `json:"source"`
}

type crawlRequest struct {
	Keyword string `json:"keyword"`
}

type crawlResponse struct {
	Success bool `json:"success"`
	Count   int  `json:"count"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"sources": s.aggregator.Sources(),
		"store":   s.store != nil,
	})
}

func (s *Server) handleJobs(w http.ResponseWriter, r *http.Request) {
	page, limit := s.pagination(r)
	records, ok := s.searchLive(r, limit)
	if !ok {
		writeJSON(w, http.StatusOK, model.NewPage([]model.JobRecord{}, 0, page, limit))
		return
	}
	sortRecords(records, r.URL.Query().Get("sortBy"))
	writeJSON(w, http.StatusOK, model.Paginate(records, page, limit))
}

func (s *Server) handleCommonJobs(w http.ResponseWriter, r *http.Request) {
	page, limit := s.pagination(r)
	records, ok := s.searchLive(r, limit)
	if !ok {
		writeJSON(w, http.StatusOK, model.NewPage([]model.BaseJob{}, 0, page, limit))
		return
	}
	// 公共字段不含薪资,只支持按日期排序
	if sortBy := r.URL.Query().Get("sortBy"); sortBy != param.SortSalary {
		sortRecords(records, sortBy)
	}
	common := make([]model.BaseJob, 0, len(records))
	for i := range records {
		common = append(common, records[i].Base())
	}
	writeJSON(w, http.StatusOK, model.Paginate(common, page, limit))
}

// searchLive 关键字为空时返回 false
func (s *Server) searchLive(r *http.Request, limit int) ([]model.JobRecord, bool) {
	q := r.URL.Query()
	keyword := strings.TrimSpace(q.Get("keyword"))
	if keyword == "" {
		return nil, false
	}
	return s.aggregator.Search(r.Context(), &param.Search{
		Keyword:  keyword,
		Category: q.Get("category"),
		Location: q.Get("location"),
		Limit:    limit * searchFetchFactor,
	}), true
}

func (s *Server) handleSourceJobs(w http.ResponseWriter, r *http.Request) {
	source, ok := model.ParseSource(chi.URLParam(r, "source"))
	if !ok {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "Invalid source. Use 'wanted' or 'jumpit'"})
		return
	}
	page, limit := s.pagination(r)
	keyword := strings.TrimSpace(r.URL.Query().Get("keyword"))
	if keyword == "" {
		writeJSON(w, http.StatusOK, sourcePage{Page: model.NewPage([]model.JobRecord{}, 0, page, limit), Source: source})
		return
	}
	records := s.aggregator.FetchFromSource(r.Context(), string(source), keyword, limit*sourceFetchFactor)
	sortRecords(records, r.URL.Query().Get("sortBy"))
	writeJSON(w, http.StatusOK, sourcePage{Page: model.Paginate(records, page, limit), Source: source})
}

func (s *Server) handleJobDetail(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if s.store != nil {
		doc, err := s.store.Get(r.Context(), id)
		if err != nil {
			s.internalError(w, "get stored job", err)
			return
		}
		if doc != nil {
			writeJSON(w, http.StatusOK, doc.JobRecord)
			return
		}
	}

	detailURL := map[model.Source]string{
		model.SourceWanted: s.sources.Wanted.DetailURL,
		model.SourceJumpit: s.sources.Jumpit.DetailURL,
	}
	for source, prefix := range detailURL {
		if siteID, ok := strings.CutPrefix(id, string(source)+"-"); ok && siteID != "" {
			writeJSON(w, http.StatusNotImplemented, errorResponse{
				Error:     "Not implemented yet",
				Message:   "상세 정보는 원본 사이트에서 확인해주세요",
				SourceURL: prefix + siteID,
			})
			return
		}
	}
	writeJSON(w, http.StatusBadRequest, errorResponse{Error: "Invalid job ID format"})
}

func (s *Server) handleCrawl(w http.ResponseWriter, r *http.Request) {
	var req crawlRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || strings.TrimSpace(req.Keyword) == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "Keyword is required"})
		return
	}

	// 没有存储时只抓取,返回抓到的数量
	if s.indexer == nil {
		records := s.aggregator.FetchAll(r.Context(), req.Keyword, s.cfg.CrawlLimit)
		writeJSON(w, http.StatusOK, crawlResponse{Success: true, Count: len(records)})
		return
	}
	count, err := s.indexer.CrawlAndIndex(r.Context(), req.Keyword, s.cfg.CrawlLimit)
	if err != nil {
		s.internalError(w, "crawl and index", err)
		return
	}
	writeJSON(w, http.StatusOK, crawlResponse{Success: true, Count: count})
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	if !s.requireStore(w) {
		return
	}
	stats, err := s.store.Stats(r.Context())
	if err != nil {
		s.internalError(w, "job stats", err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (s *Server) handleStored(w http.ResponseWriter, r *http.Request) {
	if !s.requireStore(w) {
		return
	}
	q := r.URL.Query()
	page, limit := s.pagination(r)
	source := q.Get("source")
	if source != "" {
		if _, ok := model.ParseSource(source); !ok {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "Invalid source. Use 'wanted' or 'jumpit'"})
			return
		}
	}
	result, err := s.store.Search(r.Context(), &param.Stored{
		Keyword:  strings.TrimSpace(q.Get("keyword")),
		Category: q.Get("category"),
		Location: q.Get("location"),
		Source:   source,
		SortBy:   q.Get("sortBy"),
		Page:     page,
		Limit:    limit,
	})
	if err != nil {
		s.internalError(w, "search stored jobs", err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleSimilar(w http.ResponseWriter, r *http.Request) {
	if s.indexer == nil {
		writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: "Job store is not enabled"})
		return
	}
	text := strings.TrimSpace(r.URL.Query().Get("q"))
	if text == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "Query is required"})
		return
	}
	_, limit := s.pagination(r)
	records, err := s.indexer.Similar(r.Context(), text, limit)
	if err != nil {
		s.internalError(w, "similar jobs", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"jobs": records})
}

func (s *Server) requireStore(w http.ResponseWriter) bool {
	if s.store == nil {
		writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: "Job store is not enabled"})
		return false
	}
	return true
}

func (s *Server) internalError(w http.ResponseWriter, action string, err error) {
	s.logger.Error(action+" failed", zap.Error(err))
	writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "Internal server error"})
}

// pagination page 从 1 开始,limit 超过上限时截断,非法值使用默认值
func (s *Server) pagination(r *http.Request) (page, limit int) {
	q := r.URL.Query()
	page = clampInt(q.Get("page"), 1, int(^uint(0)>>1))
	limit = clampInt(q.Get("limit"), s.cfg.DefaultPageSize, s.cfg.MaxPageSize)
	return page, limit
}

func clampInt(raw string, fallback, max int) int {
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || value <= 0 {
		return fallback
	}
	return min(value, max)
}

func sortRecords(records []model.JobRecord, sortBy string) {
	switch sortBy {
	case "", param.SortLatest, param.SortRecent:
		aggregator.SortByPostedDesc(records)
	case param.SortSalary:
		slices.SortStableFunc(records, func(a, b model.JobRecord) int {
			return salaryAmount(b.SalaryText()) - salaryAmount(a.SalaryText())
		})
	}
}

// salaryAmount 取薪资文本中的全部数字,没有数字时为 0
func salaryAmount(text string) int {
	n, err := strconv.Atoi(nonDigits.ReplaceAllString(text, ""))
	if err != nil {
		return 0
	}
	return n
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
