package model

import (
	"database/sql"
	"time"
)

// Risk levels for obligations
const (
	RiskLow    = "low"
	RiskMedium = "medium"
	RiskHigh   = "high"
)

// ValidRiskLevel reports whether s is one of the known risk levels
func ValidRiskLevel(s string) bool {
	return s == RiskLow || s == RiskMedium || s == RiskHigh
}

// Obligation links one company to one applicable regulation and carries the
// compliance state. Its lifecycle is bounded by both parents: deleting either
// cascades to the obligation.
type Obligation struct {
	ID           int
	CompanyID    int
	RegulationID int
	IsApplicable bool
	IsCompliant  bool
	DueDate      sql.NullTime
	RiskLevel    string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// ObligationWithRegulation is an obligation joined with its regulation,
// as returned by the store read paths the scoring engine consumes
type ObligationWithRegulation struct {
	Obligation
	Regulation Regulation
}
