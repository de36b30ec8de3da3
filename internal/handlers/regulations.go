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

// regulationRequest is the JSON body for creating and updating regulations.
// Tags, sectors and impact_type may be omitted; the classifier fills them
// from the raw text.
type regulationRequest struct {
	Source      string   `json:"source"`
	Title       string   `json:"title"`
	PublishDate string   `json:"publish_date"`
	URL         *string  `json:"url"`
	RawText     string   `json:"raw_text"`
	Summary     *string  `json:"summary"`
	Tags        []string `json:"tags"`
	Sectors     []string `json:"sectors"`
	ImpactType  *string  `json:"impact_type"`
}

func (r *regulationRequest) toModel() (model.Regulation, string) {
	if r.Source != model.SourceResmiGazete && r.Source != model.SourceGIB {
		return model.Regulation{}, "unknown source"
	}
	if r.Title == "" {
		return model.Regulation{}, "title is required"
	}
	if r.RawText == "" {
		return model.Regulation{}, "raw_text is required"
	}

	publishDate, err := time.Parse(time.DateOnly, r.PublishDate)
	if err != nil {
		return model.Regulation{}, "publish_date must be YYYY-MM-DD"
	}

	reg := model.Regulation{
		Source:      r.Source,
		Title:       r.Title,
		PublishDate: publishDate,
		RawText:     r.RawText,
		Tags:        r.Tags,
		Sectors:     r.Sectors,
	}
	if r.URL != nil {
		reg.URL = sql.NullString{String: *r.URL, Valid: true}
	}
	if r.Summary != nil {
		reg.Summary = sql.NullString{String: *r.Summary, Valid: true}
	}
	if r.ImpactType != nil {
		reg.ImpactType = sql.NullString{String: *r.ImpactType, Valid: true}
	}

	return reg, ""
}

// regulationJSON is the wire form of a regulation
type regulationJSON struct {
	ID          int      `json:"id"`
	Source      string   `json:"source"`
	Title       string   `json:"title"`
	PublishDate string   `json:"publish_date"`
	URL         *string  `json:"url"`
	RawText     string   `json:"raw_text"`
	Summary     *string  `json:"summary"`
	Tags        []string `json:"tags"`
	Sectors     []string `json:"sectors"`
	ImpactType  *string  `json:"impact_type"`
	CreatedAt   string   `json:"created_at"`
}

func newRegulationJSON(r model.Regulation) regulationJSON {
	out := regulationJSON{
		ID:          r.ID,
		Source:      r.Source,
		Title:       r.Title,
		PublishDate: r.PublishDate.Format(time.DateOnly),
		RawText:     r.RawText,
		Tags:        r.Tags,
		Sectors:     r.Sectors,
		CreatedAt:   r.CreatedAt.Format(time.RFC3339),
	}
	if out.Tags == nil {
		out.Tags = []string{}
	}
	if out.Sectors == nil {
		out.Sectors = []string{}
	}
	if r.URL.Valid {
		out.URL = &r.URL.String
	}
	if r.Summary.Valid {
		out.Summary = &r.Summary.String
	}
	if r.ImpactType.Valid {
		out.ImpactType = &r.ImpactType.String
	}
	return out
}

// RegulationsHandler lists all regulations, newest first
func RegulationsHandler(regulationStore *store.RegulationStore) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx := context.Background()

		regulations, err := regulationStore.GetAll(ctx)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).SendString("Error loading regulations")
		}

		out := make([]regulationJSON, len(regulations))
		for i, r := range regulations {
			out[i] = newRegulationJSON(r)
		}
		return c.JSON(out)
	}
}

// RegulationCreateHandler creates a regulation, deriving empty tags, sectors
// and impact type from the raw text before persisting
func RegulationCreateHandler(regulationStore *store.RegulationStore, classifier *service.Classifier) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx := context.Background()

		var req regulationRequest
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).SendString("Invalid request body")
		}
		regulation, msg := req.toModel()
		if msg != "" {
			return c.Status(fiber.StatusBadRequest).SendString(msg)
		}

		classifier.Enrich(&regulation)

		if err := regulationStore.Create(ctx, &regulation); err != nil {
			return c.Status(fiber.StatusInternalServerError).SendString("Error creating regulation")
		}

		return c.Status(fiber.StatusCreated).JSON(newRegulationJSON(regulation))
	}
}

// RegulationDetailHandler returns one regulation
func RegulationDetailHandler(regulationStore *store.RegulationStore) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx := context.Background()

		id, err := strconv.Atoi(c.Params("id"))
		if err != nil {
			return c.Status(fiber.StatusBadRequest).SendString("Invalid regulation id")
		}

		regulation, err := regulationStore.GetByID(ctx, id)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).SendString("Error loading regulation")
		}
		if regulation == nil {
			return c.Status(fiber.StatusNotFound).SendString("Regulation not found")
		}

		return c.JSON(newRegulationJSON(*regulation))
	}
}

// RegulationUpdateHandler rewrites a regulation, re-deriving any fields the
// request leaves empty
func RegulationUpdateHandler(regulationStore *store.RegulationStore, classifier *service.Classifier) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx := context.Background()

		id, err := strconv.Atoi(c.Params("id"))
		if err != nil {
			return c.Status(fiber.StatusBadRequest).SendString("Invalid regulation id")
		}

		var req regulationRequest
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).SendString("Invalid request body")
		}
		regulation, msg := req.toModel()
		if msg != "" {
			return c.Status(fiber.StatusBadRequest).SendString(msg)
		}
		regulation.ID = id

		classifier.Enrich(&regulation)

		found, err := regulationStore.Update(ctx, &regulation)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).SendString("Error updating regulation")
		}
		if !found {
			return c.Status(fiber.StatusNotFound).SendString("Regulation not found")
		}

		updated, err := regulationStore.GetByID(ctx, id)
		if err != nil || updated == nil {
			return c.Status(fiber.StatusInternalServerError).SendString("Error loading regulation")
		}

		return c.JSON(newRegulationJSON(*updated))
	}
}

// RegulationDeleteHandler removes a regulation and, through cascade, its
// obligations
func RegulationDeleteHandler(regulationStore *store.RegulationStore) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx := context.Background()

		id, err := strconv.Atoi(c.Params("id"))
		if err != nil {
			return c.Status(fiber.StatusBadRequest).SendString("Invalid regulation id")
		}

		found, err := regulationStore.Delete(ctx, id)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).SendString("Error deleting regulation")
		}
		if !found {
			return c.Status(fiber.StatusNotFound).SendString("Regulation not found")
		}

		return c.SendStatus(fiber.StatusNoContent)
	}
}
