package service

import (
	"context"
	"strconv"
	"time"

	"github.com/cemreeren625-ui/projeyeni/internal/model"
	"github.com/cemreeren625-ui/projeyeni/internal/store"
)

// DefaultRiskyThreshold is the score below which a company counts as risky
// when no explicit threshold is supplied
const DefaultRiskyThreshold = 80

// CompanyPayload is the wire form of a company, including its computed score
type CompanyPayload struct {
	ID              int       `json:"id"`
	Name            string    `json:"name"`
	Sector          string    `json:"sector"`
	EmployeeCount   int       `json:"employee_count"`
	LocationCity    string    `json:"location_city"`
	IsExporter      bool      `json:"is_exporter"`
	CreatedAt       time.Time `json:"created_at"`
	ComplianceScore int       `json:"compliance_score"`
}

// DashboardPayload is the single-company dashboard response. The score is
// emitted under both uyum_skoru and score; older consumers read the former.
type DashboardPayload struct {
	Sirket    CompanyPayload   `json:"sirket"`
	UyumSkoru int              `json:"uyum_skoru"`
	Score     int              `json:"score"`
	Stats     ScoreStats       `json:"stats"`
	Todo      []ObligationItem `json:"todo"`
	Completed []ObligationItem `json:"completed"`
}

// ScoreSummary is one row of the lightweight company score listing
type ScoreSummary struct {
	ID        int    `json:"id"`
	Name      string `json:"name"`
	Sector    string `json:"sector"`
	UyumSkoru int    `json:"uyum_skoru"`
}

// ListFilter carries the company listing filters
type ListFilter struct {
	Sector    string
	Risky     bool
	Threshold int
}

// ParseThreshold interprets a raw threshold query value. Malformed or absent
// values fall back to the default rather than erroring.
func ParseThreshold(raw string) int {
	if raw == "" {
		return DefaultRiskyThreshold
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return DefaultRiskyThreshold
	}
	return v
}

// DashboardService resolves obligations from the store and wraps scoring
// engine output into response payloads
type DashboardService struct {
	companies   *store.CompanyStore
	obligations *store.ObligationStore
	engine      *ScoreEngine
}

// NewDashboardService creates a new DashboardService
func NewDashboardService(companies *store.CompanyStore, obligations *store.ObligationStore, engine *ScoreEngine) *DashboardService {
	return &DashboardService{
		companies:   companies,
		obligations: obligations,
		engine:      engine,
	}
}

// BuildDashboard resolves the company's applicable obligations, joined with
// their regulations, and scores them
func (s *DashboardService) BuildDashboard(ctx context.Context, company model.Company) (*DashboardPayload, error) {
	obligations, err := s.obligations.GetForCompany(ctx, company.ID, true)
	if err != nil {
		return nil, err
	}

	result := s.engine.Score(obligations, time.Now())

	return &DashboardPayload{
		Sirket:    NewCompanyPayload(company, result.Score),
		UyumSkoru: result.Score,
		Score:     result.Score,
		Stats:     result.Stats,
		Todo:      result.Todo,
		Completed: result.Completed,
	}, nil
}

// BatchScores scores every given company using a single bulk obligation
// query, grouped in memory by company id. Listing N companies never issues
// N obligation queries.
func (s *DashboardService) BatchScores(ctx context.Context, companies []model.Company) (map[int]*ScoreResult, error) {
	results := make(map[int]*ScoreResult, len(companies))
	if len(companies) == 0 {
		return results, nil
	}

	ids := make([]int, len(companies))
	for i, c := range companies {
		ids[i] = c.ID
	}

	obligations, err := s.obligations.GetForCompanies(ctx, ids, true)
	if err != nil {
		return nil, err
	}

	byCompany := make(map[int][]model.ObligationWithRegulation)
	for _, ob := range obligations {
		byCompany[ob.CompanyID] = append(byCompany[ob.CompanyID], ob)
	}

	now := time.Now()
	for _, c := range companies {
		results[c.ID] = s.engine.Score(byCompany[c.ID], now)
	}

	return results, nil
}

// ListCompanies returns serialized companies with computed scores, applying
// the sector filter at the store and the risky threshold on the computed
// scores
func (s *DashboardService) ListCompanies(ctx context.Context, filter ListFilter) ([]CompanyPayload, error) {
	companies, err := s.companies.GetAll(ctx, filter.Sector)
	if err != nil {
		return nil, err
	}

	scores, err := s.BatchScores(ctx, companies)
	if err != nil {
		return nil, err
	}

	payloads := make([]CompanyPayload, 0, len(companies))
	for _, c := range companies {
		score := 100
		if r, ok := scores[c.ID]; ok {
			score = r.Score
		}
		if filter.Risky && score >= filter.Threshold {
			continue
		}
		payloads = append(payloads, NewCompanyPayload(c, score))
	}

	return payloads, nil
}

// ScoreSummaries returns the id/name/sector/score listing backed by the
// batch scoring path
func (s *DashboardService) ScoreSummaries(ctx context.Context) ([]ScoreSummary, error) {
	companies, err := s.companies.GetAll(ctx, "")
	if err != nil {
		return nil, err
	}

	scores, err := s.BatchScores(ctx, companies)
	if err != nil {
		return nil, err
	}

	summaries := make([]ScoreSummary, 0, len(companies))
	for _, c := range companies {
		summaries = append(summaries, ScoreSummary{
			ID:        c.ID,
			Name:      c.Name,
			Sector:    c.Sector,
			UyumSkoru: scores[c.ID].Score,
		})
	}

	return summaries, nil
}

// CompanyScore computes the current score for a single company
func (s *DashboardService) CompanyScore(ctx context.Context, companyID int) (int, error) {
	obligations, err := s.obligations.GetForCompany(ctx, companyID, true)
	if err != nil {
		return 0, err
	}
	return s.engine.Score(obligations, time.Now()).Score, nil
}

// ToggleCompliance persists a compliance flag change and returns the owning
// company's fresh dashboard so callers never need a second round trip.
// Returns nil when the obligation does not exist.
func (s *DashboardService) ToggleCompliance(ctx context.Context, obligationID int, compliant bool) (*DashboardPayload, error) {
	obligation, err := s.obligations.SetCompliant(ctx, obligationID, compliant)
	if err != nil {
		return nil, err
	}
	if obligation == nil {
		return nil, nil
	}

	company, err := s.companies.GetByID(ctx, obligation.CompanyID)
	if err != nil {
		return nil, err
	}
	if company == nil {
		return nil, nil
	}

	return s.BuildDashboard(ctx, *company)
}

// NewCompanyPayload serializes a company with its computed score
func NewCompanyPayload(c model.Company, score int) CompanyPayload {
	return CompanyPayload{
		ID:              c.ID,
		Name:            c.Name,
		Sector:          c.Sector,
		EmployeeCount:   c.EmployeeCount,
		LocationCity:    c.LocationCity,
		IsExporter:      c.IsExporter,
		CreatedAt:       c.CreatedAt,
		ComplianceScore: score,
	}
}
