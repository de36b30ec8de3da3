package model

import "time"

// Sector choices for companies and regulation targeting
const (
	SectorYazilim   = "yazilim"
	SectorImalat    = "imalat"
	SectorPerakende = "perakende"
	SectorLojistik  = "lojistik"
)

// Sectors lists every valid sector value
var Sectors = []string{SectorYazilim, SectorImalat, SectorPerakende, SectorLojistik}

// ValidSector reports whether s is one of the known sector values
func ValidSector(s string) bool {
	for _, v := range Sectors {
		if v == s {
			return true
		}
	}
	return false
}

// Company represents a regulated business entity
type Company struct {
	ID            int
	Name          string
	Sector        string
	EmployeeCount int
	LocationCity  string
	IsExporter    bool
	Unvan         string // legal title, may be empty
	CreatedAt     time.Time
}
