package service

import (
	"database/sql"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/cemreeren625-ui/projeyeni/internal/model"
)

// tagRule adds its tags when any of its keywords appears in the text.
// Multiple rules may fire; tags accumulate.
type tagRule struct {
	keywords []string
	tags     []string
}

// sectorRule maps a keyword family to a single sector value
type sectorRule struct {
	keywords []string
	sector   string
}

// impactRule assigns an impact type. Rules are checked in order and the
// first match wins: mandatory language outranks incentive language, which
// outranks penalty/risk language. The order is policy, not alphabetical.
type impactRule struct {
	keywords []string
	impact   string
}

var tagRules = []tagRule{
	{keywords: []string{"kdv", "katma değer vergisi"}, tags: []string{"vergi", "KDV"}},
	{keywords: []string{"gelir vergisi"}, tags: []string{"vergi", "gelir_vergisi"}},
	{keywords: []string{"kurumlar vergisi"}, tags: []string{"vergi", "kurumlar_vergisi"}},
	{keywords: []string{"sgk", "sosyal güvenlik"}, tags: []string{"SGK"}},
	{keywords: []string{"ihracat", "ihracatçı"}, tags: []string{"ihracat"}},
	{keywords: []string{"kosgeb"}, tags: []string{"KOSGEB"}},
	{keywords: []string{"kvkk", "kişisel veri"}, tags: []string{"KVKK", "kişisel_veri"}},
}

var sectorRules = []sectorRule{
	{keywords: []string{"yazılım", "bilişim", "bt", "saas"}, sector: model.SectorYazilim},
	{keywords: []string{"imalat", "üretim", "fabrika"}, sector: model.SectorImalat},
	{keywords: []string{"perakende", "mağaza", "market", "satış noktası"}, sector: model.SectorPerakende},
	{keywords: []string{"lojistik", "taşımacılık", "kargo", "nakliye"}, sector: model.SectorLojistik},
}

var impactRules = []impactRule{
	{keywords: []string{"zorunludur", "yapmak zorundadır", "yükümlüdür", "uygulamak zorundadır"}, impact: model.ImpactZorunlu},
	{keywords: []string{"teşvik", "hibe", "destek programı", "yardım programı"}, impact: model.ImpactOpsiyonelTesvik},
	{keywords: []string{"ceza", "idari para cezası", "risk", "yaptırım"}, impact: model.ImpactRisk},
}

// Classification holds the metadata derived from a regulation text
type Classification struct {
	Tags    []string
	Sectors []string
	Impact  string // empty when no impact keyword matched
}

// Classifier derives tags, sectors and an impact type from raw regulation
// text using a fixed keyword rule table. It is pure and safe for concurrent
// use.
type Classifier struct{}

// NewClassifier creates a Classifier
func NewClassifier() *Classifier {
	return &Classifier{}
}

// Classify runs the keyword rules against text. Empty input yields an empty
// classification.
func (c *Classifier) Classify(text string) Classification {
	var result Classification
	if text == "" {
		return result
	}

	// cases.Caser carries transform state, so one is built per call rather
	// than shared. Lowercasing is Turkish-aware so that dotted and dotless I
	// fold correctly against the keyword table.
	t := cases.Lower(language.Turkish).String(text)

	seen := make(map[string]bool)
	for _, rule := range tagRules {
		if containsAny(t, rule.keywords) {
			for _, tag := range rule.tags {
				if !seen[tag] {
					seen[tag] = true
					result.Tags = append(result.Tags, tag)
				}
			}
		}
	}

	for _, rule := range sectorRules {
		if containsAny(t, rule.keywords) {
			result.Sectors = append(result.Sectors, rule.sector)
		}
	}

	for _, rule := range impactRules {
		if containsAny(t, rule.keywords) {
			result.Impact = rule.impact
			break
		}
	}

	return result
}

// Enrich fills the empty derived fields of a regulation from its title and
// raw text. Fields that already carry values are left untouched. Callers
// invoke this once when constructing or updating a regulation, before it is
// persisted.
func (c *Classifier) Enrich(r *model.Regulation) {
	auto := c.Classify(r.Title + "\n" + r.RawText)

	if len(r.Tags) == 0 && len(auto.Tags) > 0 {
		r.Tags = auto.Tags
	}
	if len(r.Sectors) == 0 && len(auto.Sectors) > 0 {
		r.Sectors = auto.Sectors
	}
	if !r.ImpactType.Valid && auto.Impact != "" {
		r.ImpactType = sql.NullString{String: auto.Impact, Valid: true}
	}
}

func containsAny(text string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(text, kw) {
			return true
		}
	}
	return false
}
