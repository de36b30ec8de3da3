package service

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cemreeren625-ui/projeyeni/internal/model"
	"github.com/cemreeren625-ui/projeyeni/internal/store"
)

var obligationColumns = []string{
	"id", "company_id", "regulation_id", "is_applicable", "is_compliant",
	"due_date", "risk_level", "created_at", "updated_at",
	"r_id", "source", "title", "publish_date", "url", "raw_text", "summary",
	"tags", "sectors", "impact_type", "r_created_at",
}

func newTestDashboard(t *testing.T) (*DashboardService, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	companies := store.NewCompanyStore(db)
	obligations := store.NewObligationStore(db)
	engine := NewScoreEngine(DefaultScoreConfig())

	return NewDashboardService(companies, obligations, engine), mock
}

func obligationRow(rows *sqlmock.Rows, id, companyID, regulationID int, compliant bool, due interface{}, risk, title string, impact interface{}) {
	now := time.Now()
	rows.AddRow(
		id, companyID, regulationID, true, compliant,
		due, risk, now, now,
		regulationID, model.SourceResmiGazete, title, now, nil, "metin", nil,
		"{}", "{}", impact, now,
	)
}

// Scoring N companies issues one bulk obligation query, not one per company.
func TestBatchScores_SingleBulkQuery(t *testing.T) {
	dashboard, mock := newTestDashboard(t)

	yesterday := time.Now().AddDate(0, 0, -1)
	rows := sqlmock.NewRows(obligationColumns)
	obligationRow(rows, 1, 1, 10, false, yesterday, model.RiskHigh, "Zorunlu Bildirim", model.ImpactZorunlu)

	mock.ExpectQuery(`FROM obligations o`).WillReturnRows(rows)

	companies := []model.Company{
		{ID: 1, Name: "Riskli A.Ş.", Sector: model.SectorImalat},
		{ID: 2, Name: "Temiz Ltd.", Sector: model.SectorYazilim},
		{ID: 3, Name: "Boş A.Ş.", Sector: model.SectorYazilim},
	}

	scores, err := dashboard.BatchScores(context.Background(), companies)
	require.NoError(t, err)

	assert.Equal(t, 68, scores[1].Score)
	assert.Equal(t, 100, scores[2].Score)
	assert.Equal(t, 100, scores[3].Score)
	assert.Equal(t, 1, scores[1].Stats.OverdueObligations)

	// every expectation consumed means exactly one obligation query ran
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBatchScores_NoCompaniesNoQuery(t *testing.T) {
	dashboard, mock := newTestDashboard(t)

	scores, err := dashboard.BatchScores(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, scores)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListCompanies_RiskyFilter(t *testing.T) {
	dashboard, mock := newTestDashboard(t)

	now := time.Now()
	companyRows := sqlmock.NewRows([]string{"id", "name", "sector", "employee_count", "location_city", "is_exporter", "unvan", "created_at"}).
		AddRow(2, "Temiz Ltd.", "yazilim", 5, "Ankara", false, "", now).
		AddRow(1, "Riskli A.Ş.", "imalat", 50, "Bursa", true, "", now)
	mock.ExpectQuery(`FROM companies`).WillReturnRows(companyRows)

	obligationRows := sqlmock.NewRows(obligationColumns)
	obligationRow(obligationRows, 1, 1, 10, false, now.AddDate(0, 0, -1), model.RiskHigh, "Zorunlu Bildirim", model.ImpactZorunlu)
	mock.ExpectQuery(`FROM obligations o`).WillReturnRows(obligationRows)

	payloads, err := dashboard.ListCompanies(context.Background(), ListFilter{
		Risky:     true,
		Threshold: DefaultRiskyThreshold,
	})
	require.NoError(t, err)

	// only the company scoring below the threshold survives
	require.Len(t, payloads, 1)
	assert.Equal(t, 1, payloads[0].ID)
	assert.Equal(t, 68, payloads[0].ComplianceScore)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListCompanies_SectorFilterPassedToStore(t *testing.T) {
	dashboard, mock := newTestDashboard(t)

	now := time.Now()
	companyRows := sqlmock.NewRows([]string{"id", "name", "sector", "employee_count", "location_city", "is_exporter", "unvan", "created_at"}).
		AddRow(1, "Demo Yazılım", "yazilim", 10, "İstanbul", false, "", now)
	mock.ExpectQuery(`WHERE sector = \$1`).WithArgs("yazilim").WillReturnRows(companyRows)

	mock.ExpectQuery(`FROM obligations o`).WillReturnRows(sqlmock.NewRows(obligationColumns))

	payloads, err := dashboard.ListCompanies(context.Background(), ListFilter{Sector: "yazilim"})
	require.NoError(t, err)

	require.Len(t, payloads, 1)
	assert.Equal(t, 100, payloads[0].ComplianceScore)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestParseThreshold(t *testing.T) {
	assert.Equal(t, 80, ParseThreshold(""))
	assert.Equal(t, 80, ParseThreshold("abc"))
	assert.Equal(t, 80, ParseThreshold("12.5"))
	assert.Equal(t, 70, ParseThreshold("70"))
}

func TestToggleCompliance_ReturnsFreshDashboard(t *testing.T) {
	dashboard, mock := newTestDashboard(t)

	now := time.Now()

	updateRows := sqlmock.NewRows([]string{
		"id", "company_id", "regulation_id", "is_applicable", "is_compliant",
		"due_date", "risk_level", "created_at", "updated_at",
	}).AddRow(5, 1, 10, true, true, nil, "medium", now, now)
	mock.ExpectQuery(`UPDATE obligations`).WithArgs(5, true).WillReturnRows(updateRows)

	companyRows := sqlmock.NewRows([]string{"id", "name", "sector", "employee_count", "location_city", "is_exporter", "unvan", "created_at"}).
		AddRow(1, "Demo Yazılım", "yazilim", 10, "İstanbul", false, "", now)
	mock.ExpectQuery(`FROM companies`).WithArgs(1).WillReturnRows(companyRows)

	obligationRows := sqlmock.NewRows(obligationColumns)
	obligationRow(obligationRows, 5, 1, 10, true, nil, model.RiskMedium, "Teşvik Duyurusu", model.ImpactOpsiyonelTesvik)
	mock.ExpectQuery(`FROM obligations o`).WillReturnRows(obligationRows)

	payload, err := dashboard.ToggleCompliance(context.Background(), 5, true)
	require.NoError(t, err)
	require.NotNil(t, payload)

	assert.Equal(t, 100, payload.Score)
	assert.Equal(t, payload.Score, payload.UyumSkoru)
	assert.Len(t, payload.Completed, 1)
	assert.Empty(t, payload.Todo)
	assert.Equal(t, payload.Score, payload.Sirket.ComplianceScore)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestToggleCompliance_NotFound(t *testing.T) {
	dashboard, mock := newTestDashboard(t)

	mock.ExpectQuery(`UPDATE obligations`).WithArgs(99, false).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	payload, err := dashboard.ToggleCompliance(context.Background(), 99, false)
	require.NoError(t, err)
	assert.Nil(t, payload)
}

// The payload must emit the score under both historical key names.
func TestDashboardPayload_WireKeys(t *testing.T) {
	payload := DashboardPayload{
		Sirket:    CompanyPayload{ID: 1, Name: "Demo"},
		UyumSkoru: 68,
		Score:     68,
		Todo:      []ObligationItem{},
		Completed: []ObligationItem{},
	}

	raw, err := json.Marshal(payload)
	require.NoError(t, err)

	var decoded map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(raw, &decoded))

	for _, key := range []string{"sirket", "uyum_skoru", "score", "stats", "todo", "completed"} {
		assert.Contains(t, decoded, key)
	}

	var sirket map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(decoded["sirket"], &sirket))
	for _, key := range []string{"id", "name", "sector", "employee_count", "location_city", "is_exporter", "created_at", "compliance_score"} {
		assert.Contains(t, sirket, key)
	}

	var stats map[string]int
	require.NoError(t, json.Unmarshal(decoded["stats"], &stats))
	for _, key := range []string{"total_obligations", "open_obligations", "overdue_obligations"} {
		assert.Contains(t, stats, key)
	}
}
