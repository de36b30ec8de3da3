package handlers

import (
	"context"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/cemreeren625-ui/projeyeni/internal/model"
	"github.com/cemreeren625-ui/projeyeni/internal/service"
	"github.com/cemreeren625-ui/projeyeni/internal/store"
)

// companyRequest is the JSON body for creating and updating companies
type companyRequest struct {
	Name          string `json:"name"`
	Sector        string `json:"sector"`
	EmployeeCount int    `json:"employee_count"`
	LocationCity  string `json:"location_city"`
	IsExporter    bool   `json:"is_exporter"`
	Unvan         string `json:"unvan"`
}

func (r *companyRequest) validate() string {
	if r.Name == "" {
		return "name is required"
	}
	if !model.ValidSector(r.Sector) {
		return "unknown sector"
	}
	if r.EmployeeCount < 0 {
		return "employee_count must be non-negative"
	}
	return ""
}

// CompaniesHandler lists companies with their computed compliance scores.
// Supports ?sector= exact match, ?risky=true and ?threshold=<int>; a
// malformed threshold silently falls back to the default.
func CompaniesHandler(dashboard *service.DashboardService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx := context.Background()

		filter := service.ListFilter{
			Sector:    c.Query("sector"),
			Risky:     c.Query("risky") == "true",
			Threshold: service.ParseThreshold(c.Query("threshold")),
		}

		companies, err := dashboard.ListCompanies(ctx, filter)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).SendString("Error loading companies")
		}

		return c.JSON(companies)
	}
}

// CompanyScoresHandler returns the lightweight id/name/sector/score listing
func CompanyScoresHandler(dashboard *service.DashboardService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx := context.Background()

		summaries, err := dashboard.ScoreSummaries(ctx)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).SendString("Error loading company scores")
		}

		return c.JSON(summaries)
	}
}

// CompanyCreateHandler creates a company
func CompanyCreateHandler(companyStore *store.CompanyStore) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx := context.Background()

		var req companyRequest
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).SendString("Invalid request body")
		}
		if msg := req.validate(); msg != "" {
			return c.Status(fiber.StatusBadRequest).SendString(msg)
		}

		company := model.Company{
			Name:          req.Name,
			Sector:        req.Sector,
			EmployeeCount: req.EmployeeCount,
			LocationCity:  req.LocationCity,
			IsExporter:    req.IsExporter,
			Unvan:         req.Unvan,
		}
		if err := companyStore.Create(ctx, &company); err != nil {
			return c.Status(fiber.StatusInternalServerError).SendString("Error creating company")
		}

		// a fresh company has no obligations, so it scores 100
		return c.Status(fiber.StatusCreated).JSON(service.NewCompanyPayload(company, 100))
	}
}

// CompanyDetailHandler returns one company with its computed score
func CompanyDetailHandler(companyStore *store.CompanyStore, dashboard *service.DashboardService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx := context.Background()

		id, err := strconv.Atoi(c.Params("id"))
		if err != nil {
			return c.Status(fiber.StatusBadRequest).SendString("Invalid company id")
		}

		company, err := companyStore.GetByID(ctx, id)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).SendString("Error loading company")
		}
		if company == nil {
			return c.Status(fiber.StatusNotFound).SendString("Company not found")
		}

		score, err := dashboard.CompanyScore(ctx, company.ID)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).SendString("Error computing score")
		}

		return c.JSON(service.NewCompanyPayload(*company, score))
	}
}

// CompanyUpdateHandler rewrites a company's fields
func CompanyUpdateHandler(companyStore *store.CompanyStore, dashboard *service.DashboardService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx := context.Background()

		id, err := strconv.Atoi(c.Params("id"))
		if err != nil {
			return c.Status(fiber.StatusBadRequest).SendString("Invalid company id")
		}

		var req companyRequest
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).SendString("Invalid request body")
		}
		if msg := req.validate(); msg != "" {
			return c.Status(fiber.StatusBadRequest).SendString(msg)
		}

		company := model.Company{
			ID:            id,
			Name:          req.Name,
			Sector:        req.Sector,
			EmployeeCount: req.EmployeeCount,
			LocationCity:  req.LocationCity,
			IsExporter:    req.IsExporter,
			Unvan:         req.Unvan,
		}
		found, err := companyStore.Update(ctx, &company)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).SendString("Error updating company")
		}
		if !found {
			return c.Status(fiber.StatusNotFound).SendString("Company not found")
		}

		updated, err := companyStore.GetByID(ctx, id)
		if err != nil || updated == nil {
			return c.Status(fiber.StatusInternalServerError).SendString("Error loading company")
		}

		score, err := dashboard.CompanyScore(ctx, id)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).SendString("Error computing score")
		}

		return c.JSON(service.NewCompanyPayload(*updated, score))
	}
}

// CompanyDeleteHandler removes a company and, through cascade, its obligations
func CompanyDeleteHandler(companyStore *store.CompanyStore) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx := context.Background()

		id, err := strconv.Atoi(c.Params("id"))
		if err != nil {
			return c.Status(fiber.StatusBadRequest).SendString("Invalid company id")
		}

		found, err := companyStore.Delete(ctx, id)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).SendString("Error deleting company")
		}
		if !found {
			return c.Status(fiber.StatusNotFound).SendString("Company not found")
		}

		return c.SendStatus(fiber.StatusNoContent)
	}
}

// CompanyDashboardHandler returns the full dashboard payload for one company
func CompanyDashboardHandler(companyStore *store.CompanyStore, dashboard *service.DashboardService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx := context.Background()

		id, err := strconv.Atoi(c.Params("id"))
		if err != nil {
			return c.Status(fiber.StatusBadRequest).SendString("Invalid company id")
		}

		company, err := companyStore.GetByID(ctx, id)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).SendString("Error loading company")
		}
		if company == nil {
			return c.Status(fiber.StatusNotFound).SendString("Company not found")
		}

		payload, err := dashboard.BuildDashboard(ctx, *company)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).SendString("Error building dashboard")
		}

		return c.JSON(payload)
	}
}
