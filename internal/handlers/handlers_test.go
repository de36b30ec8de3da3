package handlers

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cemreeren625-ui/projeyeni/internal/service"
	"github.com/cemreeren625-ui/projeyeni/internal/store"
)

var obligationColumns = []string{
	"id", "company_id", "regulation_id", "is_applicable", "is_compliant",
	"due_date", "risk_level", "created_at", "updated_at",
	"r_id", "source", "title", "publish_date", "url", "raw_text", "summary",
	"tags", "sectors", "impact_type", "r_created_at",
}

var companyColumns = []string{
	"id", "name", "sector", "employee_count", "location_city", "is_exporter", "unvan", "created_at",
}

// newTestApp wires the full route table over a mocked database
func newTestApp(t *testing.T) (*fiber.App, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	companyStore := store.NewCompanyStore(db)
	regulationStore := store.NewRegulationStore(db)
	obligationStore := store.NewObligationStore(db)
	classifier := service.NewClassifier()
	engine := service.NewScoreEngine(service.DefaultScoreConfig())
	dashboard := service.NewDashboardService(companyStore, obligationStore, engine)

	app := fiber.New()
	app.Get("/api/companies", CompaniesHandler(dashboard))
	app.Post("/api/companies", CompanyCreateHandler(companyStore))
	app.Get("/api/companies/:id", CompanyDetailHandler(companyStore, dashboard))
	app.Get("/api/companies/:id/dashboard", CompanyDashboardHandler(companyStore, dashboard))
	app.Get("/api/companies-scores", CompanyScoresHandler(dashboard))
	app.Post("/api/regulations", RegulationCreateHandler(regulationStore, classifier))
	app.Patch("/api/obligations/:id/status", ObligationStatusHandler(dashboard))
	app.Post("/api/obligations/:id/complete", ObligationCompleteHandler(dashboard))

	return app, mock
}

func doJSON(t *testing.T, app *fiber.App, method, target string, body interface{}) (*http.Response, []byte) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, target, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	res, err := app.Test(req, -1)
	require.NoError(t, err)

	payload, err := io.ReadAll(res.Body)
	require.NoError(t, err)
	res.Body.Close()

	return res, payload
}

func TestCompanyDashboard_ReturnsExpectedKeys(t *testing.T) {
	app, mock := newTestApp(t)

	now := time.Now()
	mock.ExpectQuery(`FROM companies`).WithArgs(1).WillReturnRows(
		sqlmock.NewRows(companyColumns).
			AddRow(1, "Test Ltd", "imalat", 50, "Bursa", true, "", now))

	obligationRows := sqlmock.NewRows(obligationColumns).
		AddRow(1, 1, 10, true, false, now.AddDate(0, 0, -1), "high", now, now,
			10, "resmi_gazete", "Zorunlu Bildirim", now, nil, "Bu bildirim zorunludur.", nil,
			"{vergi}", "{imalat}", "zorunlu", now)
	mock.ExpectQuery(`FROM obligations o`).WithArgs(1).WillReturnRows(obligationRows)

	res, body := doJSON(t, app, http.MethodGet, "/api/companies/1/dashboard", nil)
	require.Equal(t, http.StatusOK, res.StatusCode)

	var data map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(body, &data))

	for _, key := range []string{"sirket", "uyum_skoru", "score", "stats", "todo", "completed"} {
		assert.Contains(t, data, key)
	}

	var score int
	require.NoError(t, json.Unmarshal(data["score"], &score))
	assert.Equal(t, 68, score)

	var todo []map[string]interface{}
	require.NoError(t, json.Unmarshal(data["todo"], &todo))
	require.Len(t, todo, 1)
	for _, key := range []string{"obligation_id", "regulation_id", "regulation_title", "due_date", "risk_level", "impact_type"} {
		assert.Contains(t, todo[0], key)
	}
}

func TestCompanyDashboard_NotFound(t *testing.T) {
	app, mock := newTestApp(t)

	mock.ExpectQuery(`FROM companies`).WithArgs(42).
		WillReturnError(sql.ErrNoRows)

	res, _ := doJSON(t, app, http.MethodGet, "/api/companies/42/dashboard", nil)
	assert.Equal(t, http.StatusNotFound, res.StatusCode)
}

func TestObligationStatus_ToggleReturnsRefreshedDashboard(t *testing.T) {
	app, mock := newTestApp(t)

	now := time.Now()

	mock.ExpectQuery(`UPDATE obligations`).WithArgs(5, true).WillReturnRows(
		sqlmock.NewRows([]string{
			"id", "company_id", "regulation_id", "is_applicable", "is_compliant",
			"due_date", "risk_level", "created_at", "updated_at",
		}).AddRow(5, 1, 10, true, true, nil, "medium", now, now))

	mock.ExpectQuery(`FROM companies`).WithArgs(1).WillReturnRows(
		sqlmock.NewRows(companyColumns).
			AddRow(1, "Toggle Co", "perakende", 5, "Ankara", false, "", now))

	obligationRows := sqlmock.NewRows(obligationColumns).
		AddRow(5, 1, 10, true, true, nil, "medium", now, now,
			10, "gib", "Beyan Tebliği", now, nil, "metin", nil, "{}", "{}", nil, now)
	mock.ExpectQuery(`FROM obligations o`).WithArgs(1).WillReturnRows(obligationRows)

	res, body := doJSON(t, app, http.MethodPatch, "/api/obligations/5/status",
		map[string]interface{}{"is_compliant": true})
	require.Equal(t, http.StatusOK, res.StatusCode)

	var payload service.DashboardPayload
	require.NoError(t, json.Unmarshal(body, &payload))
	assert.Len(t, payload.Completed, 1)
	assert.Empty(t, payload.Todo)
	assert.Equal(t, payload.Score, payload.UyumSkoru)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestObligationStatus_NotFound(t *testing.T) {
	app, mock := newTestApp(t)

	mock.ExpectQuery(`UPDATE obligations`).WithArgs(99, true).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	res, _ := doJSON(t, app, http.MethodPatch, "/api/obligations/99/status",
		map[string]interface{}{"is_compliant": true})
	assert.Equal(t, http.StatusNotFound, res.StatusCode)
}

// A malformed threshold falls back to the default instead of erroring.
func TestCompanies_RiskyWithMalformedThreshold(t *testing.T) {
	app, mock := newTestApp(t)

	now := time.Now()
	mock.ExpectQuery(`FROM companies`).WillReturnRows(
		sqlmock.NewRows(companyColumns).
			AddRow(1, "Temiz Ltd", "yazilim", 5, "Ankara", false, "", now))
	mock.ExpectQuery(`FROM obligations o`).WillReturnRows(sqlmock.NewRows(obligationColumns))

	res, body := doJSON(t, app, http.MethodGet, "/api/companies?risky=true&threshold=abc", nil)
	require.Equal(t, http.StatusOK, res.StatusCode)

	// the company scores 100 which is not below the default threshold of 80
	var companies []service.CompanyPayload
	require.NoError(t, json.Unmarshal(body, &companies))
	assert.Empty(t, companies)
}

func TestCompanyCreate_Validation(t *testing.T) {
	app, _ := newTestApp(t)

	res, _ := doJSON(t, app, http.MethodPost, "/api/companies", map[string]interface{}{
		"name":           "Eksik A.Ş.",
		"sector":         "bilinmeyen",
		"employee_count": 5,
	})
	assert.Equal(t, http.StatusBadRequest, res.StatusCode)

	res, _ = doJSON(t, app, http.MethodPost, "/api/companies", map[string]interface{}{
		"name":           "Negatif A.Ş.",
		"sector":         "yazilim",
		"employee_count": -1,
	})
	assert.Equal(t, http.StatusBadRequest, res.StatusCode)
}

// Creating a regulation derives its empty classification fields before saving.
func TestRegulationCreate_DerivesClassification(t *testing.T) {
	app, mock := newTestApp(t)

	now := time.Now()
	mock.ExpectQuery(`INSERT INTO regulations`).WillReturnRows(
		sqlmock.NewRows([]string{"id", "created_at"}).AddRow(3, now))

	res, body := doJSON(t, app, http.MethodPost, "/api/regulations", map[string]interface{}{
		"source":       "gib",
		"title":        "Yeni KDV Tebliği",
		"publish_date": "2026-08-01",
		"raw_text":     "KDV zorunludur. Yazılım şirketleri için yeni beyan şartı vardır.",
	})
	require.Equal(t, http.StatusCreated, res.StatusCode)

	var data map[string]interface{}
	require.NoError(t, json.Unmarshal(body, &data))
	assert.Contains(t, data["tags"], "KDV")
	assert.Contains(t, data["sectors"], "yazilim")
	assert.Equal(t, "zorunlu", data["impact_type"])
}

func TestCompanyScores_UsesBatchPath(t *testing.T) {
	app, mock := newTestApp(t)

	now := time.Now()
	mock.ExpectQuery(`FROM companies`).WillReturnRows(
		sqlmock.NewRows(companyColumns).
			AddRow(2, "B Ltd", "imalat", 10, "Bursa", false, "", now).
			AddRow(1, "A Ltd", "yazilim", 10, "Ankara", false, "", now))
	mock.ExpectQuery(`FROM obligations o`).WillReturnRows(sqlmock.NewRows(obligationColumns))

	res, body := doJSON(t, app, http.MethodGet, "/api/companies-scores", nil)
	require.Equal(t, http.StatusOK, res.StatusCode)

	var summaries []service.ScoreSummary
	require.NoError(t, json.Unmarshal(body, &summaries))
	require.Len(t, summaries, 2)
	assert.Equal(t, 100, summaries[0].UyumSkoru)

	// two queries total: companies plus one bulk obligation fetch
	assert.NoError(t, mock.ExpectationsWereMet())
}
