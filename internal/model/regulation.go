package model

import (
	"database/sql"
	"time"
)

// Regulation source choices
const (
	SourceResmiGazete = "resmi_gazete"
	SourceGIB         = "gib"
)

// Impact categories for a regulation
const (
	ImpactZorunlu         = "zorunlu"
	ImpactOpsiyonelTesvik = "opsiyonel_tesvik"
	ImpactRisk            = "risk"
)

// Regulation represents a piece of regulatory text with derived
// classification metadata. Tags, Sectors and ImpactType are either supplied
// explicitly or filled once from the raw text when the record is saved;
// non-empty values are never overwritten.
type Regulation struct {
	ID          int
	Source      string
	Title       string
	PublishDate time.Time
	URL         sql.NullString
	RawText     string
	Summary     sql.NullString
	Tags        []string
	Sectors     []string
	ImpactType  sql.NullString
	CreatedAt   time.Time
}
