package service

import (
	"time"

	"github.com/cemreeren625-ui/projeyeni/internal/model"
)

// ScoreConfig holds the penalty and bonus tables used by the scoring engine.
// Values are captured at engine construction and never mutated afterwards.
type ScoreConfig struct {
	ImpactPenalties map[string]int
	RiskPenalties   map[string]int
	OverduePenalty  int
	DueSoonPenalty  int
	DueSoonDays     int
	IncentiveBonus  int
}

// DefaultScoreConfig returns the standard penalty tables
func DefaultScoreConfig() ScoreConfig {
	return ScoreConfig{
		ImpactPenalties: map[string]int{
			model.ImpactZorunlu:         15,
			model.ImpactRisk:            10,
			model.ImpactOpsiyonelTesvik: 5,
		},
		RiskPenalties: map[string]int{
			model.RiskLow:    0,
			model.RiskMedium: 3,
			model.RiskHigh:   7,
		},
		OverduePenalty: 10,
		DueSoonPenalty: 5,
		DueSoonDays:    7,
		IncentiveBonus: 5,
	}
}

// ObligationItem is one row of the dashboard todo/completed lists
type ObligationItem struct {
	ObligationID    int     `json:"obligation_id"`
	RegulationID    int     `json:"regulation_id"`
	RegulationTitle string  `json:"regulation_title"`
	DueDate         *string `json:"due_date"`
	RiskLevel       string  `json:"risk_level"`
	ImpactType      *string `json:"impact_type"`
}

// ScoreStats aggregates obligation counts for a company
type ScoreStats struct {
	TotalObligations   int `json:"total_obligations"`
	OpenObligations    int `json:"open_obligations"`
	OverdueObligations int `json:"overdue_obligations"`
}

// ScoreResult is the outcome of scoring one company's obligations
type ScoreResult struct {
	Score     int              `json:"score"`
	Stats     ScoreStats       `json:"stats"`
	Todo      []ObligationItem `json:"todo"`
	Completed []ObligationItem `json:"completed"`
}

// ScoreEngine computes a 0-100 compliance score from a company's applicable
// obligations. It is pure: inputs are never mutated, and the result is fully
// determined by the obligations and the reference date.
type ScoreEngine struct {
	cfg ScoreConfig
}

// NewScoreEngine creates a ScoreEngine with the given configuration
func NewScoreEngine(cfg ScoreConfig) *ScoreEngine {
	return &ScoreEngine{cfg: cfg}
}

// Score walks the obligations and produces the score, stats and the
// todo/completed buckets. Callers must pre-filter to applicable obligations;
// the engine does not re-check the flag.
//
// Compliant obligations carry no penalty; a completed optional-incentive
// regulation adds a flat bonus. Open obligations subtract the sum of the
// impact, risk-level and due-date penalties. The score is clamped to [0,100]
// once, after every bonus and penalty has been accumulated.
func (e *ScoreEngine) Score(obligations []model.ObligationWithRegulation, today time.Time) *ScoreResult {
	result := &ScoreResult{
		Score:     100,
		Todo:      []ObligationItem{},
		Completed: []ObligationItem{},
	}
	result.Stats.TotalObligations = len(obligations)

	day := dateOf(today)
	dueSoonCutoff := day.AddDate(0, 0, e.cfg.DueSoonDays)

	for _, ob := range obligations {
		item := newObligationItem(ob)

		if ob.IsCompliant {
			result.Completed = append(result.Completed, item)
			if ob.Regulation.ImpactType.String == model.ImpactOpsiyonelTesvik {
				result.Score += e.cfg.IncentiveBonus
			}
			continue
		}

		result.Stats.OpenObligations++

		// unknown or unset impact carries no penalty
		penalty := e.cfg.ImpactPenalties[ob.Regulation.ImpactType.String]

		risk := ob.RiskLevel
		if risk == "" {
			risk = model.RiskMedium
		}
		penalty += e.cfg.RiskPenalties[risk]

		if ob.DueDate.Valid {
			due := dateOf(ob.DueDate.Time)
			if due.Before(day) {
				result.Stats.OverdueObligations++
				penalty += e.cfg.OverduePenalty
			} else if !due.After(dueSoonCutoff) {
				penalty += e.cfg.DueSoonPenalty
			}
		}

		result.Score -= penalty
		result.Todo = append(result.Todo, item)
	}

	if result.Score < 0 {
		result.Score = 0
	}
	if result.Score > 100 {
		result.Score = 100
	}

	return result
}

func newObligationItem(ob model.ObligationWithRegulation) ObligationItem {
	item := ObligationItem{
		ObligationID:    ob.ID,
		RegulationID:    ob.Regulation.ID,
		RegulationTitle: ob.Regulation.Title,
		RiskLevel:       ob.RiskLevel,
	}
	if ob.DueDate.Valid {
		due := ob.DueDate.Time.Format(time.DateOnly)
		item.DueDate = &due
	}
	if ob.Regulation.ImpactType.Valid {
		impact := ob.Regulation.ImpactType.String
		item.ImpactType = &impact
	}
	return item
}

// dateOf strips the time-of-day so due-date comparisons work on calendar days
func dateOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
