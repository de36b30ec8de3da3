package handlers

import (
	"context"
	"database/sql"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/cemreeren625-ui/projeyeni/internal/model"
	"github.com/cemreeren625-ui/projeyeni/internal/service"
	"github.com/cemreeren625-ui/projeyeni/internal/store"
)

// obligationRequest is the JSON body for creating obligations
type obligationRequest struct {
	CompanyID    int     `json:"company_id"`
	RegulationID int     `json:"regulation_id"`
	IsApplicable *bool   `json:"is_applicable"`
	IsCompliant  bool    `json:"is_compliant"`
	DueDate      *string `json:"due_date"`
	RiskLevel    string  `json:"risk_level"`
}

// obligationJSON is the wire form of a bare obligation
type obligationJSON struct {
	ID           int     `json:"id"`
	CompanyID    int     `json:"company_id"`
	RegulationID int     `json:"regulation_id"`
	IsApplicable bool    `json:"is_applicable"`
	IsCompliant  bool    `json:"is_compliant"`
	DueDate      *string `json:"due_date"`
	RiskLevel    string  `json:"risk_level"`
	CreatedAt    string  `json:"created_at"`
	UpdatedAt    string  `json:"updated_at"`
}

func newObligationJSON(ob model.Obligation) obligationJSON {
	out := obligationJSON{
		ID:           ob.ID,
		CompanyID:    ob.CompanyID,
		RegulationID: ob.RegulationID,
		IsApplicable: ob.IsApplicable,
		IsCompliant:  ob.IsCompliant,
		RiskLevel:    ob.RiskLevel,
		CreatedAt:    ob.CreatedAt.Format(time.RFC3339),
		UpdatedAt:    ob.UpdatedAt.Format(time.RFC3339),
	}
	if ob.DueDate.Valid {
		due := ob.DueDate.Time.Format(time.DateOnly)
		out.DueDate = &due
	}
	return out
}

// ObligationsHandler lists one company's obligations, including
// non-applicable ones. Requires ?company_id=.
func ObligationsHandler(obligationStore *store.ObligationStore) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx := context.Background()

		companyID, err := strconv.Atoi(c.Query("company_id"))
		if err != nil {
			return c.Status(fiber.StatusBadRequest).SendString("company_id query parameter is required")
		}

		obligations, err := obligationStore.GetForCompany(ctx, companyID, false)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).SendString("Error loading obligations")
		}

		out := make([]obligationJSON, len(obligations))
		for i, ob := range obligations {
			out[i] = newObligationJSON(ob.Obligation)
		}
		return c.JSON(out)
	}
}

// ObligationCreateHandler links a company to an applicable regulation
func ObligationCreateHandler(obligationStore *store.ObligationStore, companyStore *store.CompanyStore, regulationStore *store.RegulationStore) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx := context.Background()

		var req obligationRequest
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).SendString("Invalid request body")
		}

		company, err := companyStore.GetByID(ctx, req.CompanyID)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).SendString("Error loading company")
		}
		if company == nil {
			return c.Status(fiber.StatusBadRequest).SendString("Unknown company_id")
		}

		regulation, err := regulationStore.GetByID(ctx, req.RegulationID)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).SendString("Error loading regulation")
		}
		if regulation == nil {
			return c.Status(fiber.StatusBadRequest).SendString("Unknown regulation_id")
		}

		obligation := model.Obligation{
			CompanyID:    req.CompanyID,
			RegulationID: req.RegulationID,
			IsApplicable: true,
			IsCompliant:  req.IsCompliant,
			RiskLevel:    model.RiskMedium,
		}
		if req.IsApplicable != nil {
			obligation.IsApplicable = *req.IsApplicable
		}
		if req.RiskLevel != "" {
			if !model.ValidRiskLevel(req.RiskLevel) {
				return c.Status(fiber.StatusBadRequest).SendString("unknown risk_level")
			}
			obligation.RiskLevel = req.RiskLevel
		}
		if req.DueDate != nil {
			due, err := time.Parse(time.DateOnly, *req.DueDate)
			if err != nil {
				return c.Status(fiber.StatusBadRequest).SendString("due_date must be YYYY-MM-DD")
			}
			obligation.DueDate = sql.NullTime{Time: due, Valid: true}
		}

		if err := obligationStore.Create(ctx, &obligation); err != nil {
			return c.Status(fiber.StatusInternalServerError).SendString("Error creating obligation")
		}

		return c.Status(fiber.StatusCreated).JSON(newObligationJSON(obligation))
	}
}

// statusRequest is the PATCH body for the compliance toggle. A missing
// is_compliant defaults to true.
type statusRequest struct {
	IsCompliant *bool `json:"is_compliant"`
}

// ObligationStatusHandler toggles an obligation's compliance flag and
// returns the owning company's refreshed dashboard
func ObligationStatusHandler(dashboard *service.DashboardService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := strconv.Atoi(c.Params("id"))
		if err != nil {
			return c.Status(fiber.StatusBadRequest).SendString("Invalid obligation id")
		}

		var req statusRequest
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).SendString("Invalid request body")
		}
		compliant := true
		if req.IsCompliant != nil {
			compliant = *req.IsCompliant
		}

		return toggleAndRespond(c, dashboard, id, compliant)
	}
}

// ObligationCompleteHandler marks an obligation compliant
func ObligationCompleteHandler(dashboard *service.DashboardService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := strconv.Atoi(c.Params("id"))
		if err != nil {
			return c.Status(fiber.StatusBadRequest).SendString("Invalid obligation id")
		}
		return toggleAndRespond(c, dashboard, id, true)
	}
}

// ObligationResetHandler reverts an obligation to non-compliant
func ObligationResetHandler(dashboard *service.DashboardService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := strconv.Atoi(c.Params("id"))
		if err != nil {
			return c.Status(fiber.StatusBadRequest).SendString("Invalid obligation id")
		}
		return toggleAndRespond(c, dashboard, id, false)
	}
}

// ObligationDeleteHandler removes an obligation
func ObligationDeleteHandler(obligationStore *store.ObligationStore) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx := context.Background()

		id, err := strconv.Atoi(c.Params("id"))
		if err != nil {
			return c.Status(fiber.StatusBadRequest).SendString("Invalid obligation id")
		}

		found, err := obligationStore.Delete(ctx, id)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).SendString("Error deleting obligation")
		}
		if !found {
			return c.Status(fiber.StatusNotFound).SendString("Obligation not found")
		}

		return c.SendStatus(fiber.StatusNoContent)
	}
}

func toggleAndRespond(c *fiber.Ctx, dashboard *service.DashboardService, id int, compliant bool) error {
	ctx := context.Background()

	payload, err := dashboard.ToggleCompliance(ctx, id, compliant)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).SendString("Error updating obligation")
	}
	if payload == nil {
		return c.Status(fiber.StatusNotFound).SendString("Obligation not found")
	}

	return c.JSON(payload)
}
