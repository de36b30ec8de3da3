package cmd

import (
	"context"
	"database/sql"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/cemreeren625-ui/projeyeni/internal/model"
	"github.com/cemreeren625-ui/projeyeni/internal/service"
	"github.com/cemreeren625-ui/projeyeni/internal/store"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Load sample companies, regulations and obligations",
	Long: `Seed inserts a small set of companies, regulations and obligations so the
dashboard has data to score. Re-running is safe: existing records are matched
by their natural keys and never duplicated. Regulations are classified on the
way in, so tags, sectors and impact types are filled from the raw text.`,
	Run: runSeed,
}

func init() {
	rootCmd.AddCommand(seedCmd)
}

// SeedStats tracks what the seed run did
type SeedStats struct {
	Companies   int
	Regulations int
	Obligations int
	Existing    int
	Failed      int
}

type seedObligation struct {
	companyName     string
	regulationTitle string
	dueInDays       int  // relative to today; 0 means due today
	noDue           bool // obligation carries no due date at all
	riskLevel       string
	compliant       bool
}

func (l seedObligation) toModel(companyID, regulationID int, today time.Time) model.Obligation {
	ob := model.Obligation{
		CompanyID:    companyID,
		RegulationID: regulationID,
		IsApplicable: true,
		IsCompliant:  l.compliant,
		RiskLevel:    l.riskLevel,
	}
	if !l.noDue {
		ob.DueDate = sql.NullTime{Time: today.AddDate(0, 0, l.dueInDays), Valid: true}
	}
	return ob
}

func runSeed(cmd *cobra.Command, args []string) {
	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		log.Fatal("DATABASE_URL environment variable is required")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		log.Println("\nReceived interrupt signal, shutting down...")
		cancel()
	}()

	log.Println("Connecting to database...")
	db, err := store.NewDB(dbURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	if err := store.InitSchema(ctx, db); err != nil {
		log.Fatalf("Failed to initialize schema: %v", err)
	}

	companyStore := store.NewCompanyStore(db)
	regulationStore := store.NewRegulationStore(db)
	obligationStore := store.NewObligationStore(db)
	classifier := service.NewClassifier()

	stats := &SeedStats{}
	today := time.Now()

	companies := sampleCompanies()
	companyIDs := make(map[string]int, len(companies))
	for i := range companies {
		c := &companies[i]
		created, err := companyStore.GetOrCreateByName(ctx, c)
		if err != nil {
			log.Printf("Failed to seed company %s: %v", c.Name, err)
			stats.Failed++
			continue
		}
		companyIDs[c.Name] = c.ID
		if created {
			stats.Companies++
			log.Printf("Created company %s (id %d)", c.Name, c.ID)
		} else {
			stats.Existing++
		}
	}

	regulations := sampleRegulations(today)
	regulationIDs := make(map[string]int, len(regulations))
	for i := range regulations {
		r := &regulations[i]
		classifier.Enrich(r)
		created, err := regulationStore.GetOrCreate(ctx, r)
		if err != nil {
			log.Printf("Failed to seed regulation %s: %v", r.Title, err)
			stats.Failed++
			continue
		}
		regulationIDs[r.Title] = r.ID
		if created {
			stats.Regulations++
			log.Printf("Created regulation %s (id %d, impact %s)", r.Title, r.ID, r.ImpactType.String)
		} else {
			stats.Existing++
		}
	}

	for _, link := range sampleObligations() {
		companyID, ok := companyIDs[link.companyName]
		if !ok {
			continue
		}
		regulationID, ok := regulationIDs[link.regulationTitle]
		if !ok {
			continue
		}

		obligation := link.toModel(companyID, regulationID, today)

		created, err := obligationStore.GetOrCreate(ctx, &obligation)
		if err != nil {
			log.Printf("Failed to seed obligation %s / %s: %v", link.companyName, link.regulationTitle, err)
			stats.Failed++
			continue
		}
		if created {
			stats.Obligations++
		} else {
			stats.Existing++
		}
	}

	recent, err := regulationStore.CountPublishedSince(ctx, today.AddDate(0, 0, -30))
	if err != nil {
		log.Printf("Warning: failed to count recent regulations: %v", err)
	}

	log.Println("")
	log.Println("=== Seed Summary ===")
	log.Printf("Companies created:   %d", stats.Companies)
	log.Printf("Regulations created: %d", stats.Regulations)
	log.Printf("Obligations created: %d", stats.Obligations)
	log.Printf("Already present:     %d", stats.Existing)
	log.Printf("Failed:              %d", stats.Failed)
	log.Printf("Regulations published in the last 30 days: %d", recent)

	if stats.Failed > 0 {
		os.Exit(1)
	}
}

func sampleCompanies() []model.Company {
	return []model.Company{
		{Name: "Demo Yazılım A.Ş.", Sector: model.SectorYazilim, EmployeeCount: 25, LocationCity: "İstanbul", IsExporter: true},
		{Name: "Bursa İmalat Ltd.", Sector: model.SectorImalat, EmployeeCount: 120, LocationCity: "Bursa", IsExporter: false},
		{Name: "Kardeşler Market", Sector: model.SectorPerakende, EmployeeCount: 8, LocationCity: "Ankara", IsExporter: false},
	}
}

// sampleRegulations leaves tags, sectors and impact empty on purpose so the
// classifier fills them from the raw text
func sampleRegulations(today time.Time) []model.Regulation {
	return []model.Regulation{
		{
			Source:      model.SourceGIB,
			Title:       "Yeni KDV Beyan Tebliği",
			PublishDate: today.AddDate(0, 0, -10),
			RawText:     "KDV beyannamesi vermek zorunludur. Yazılım şirketleri için yeni beyan şartı vardır.",
		},
		{
			Source:      model.SourceResmiGazete,
			Title:       "KOSGEB Destek Programı Duyurusu",
			PublishDate: today.AddDate(0, 0, -20),
			RawText:     "KOSGEB destek programı kapsamında imalat ve üretim tesislerine hibe sağlanacaktır.",
		},
		{
			Source:      model.SourceResmiGazete,
			Title:       "KVKK Veri İhlali Yaptırımları",
			PublishDate: today.AddDate(0, 0, -45),
			RawText:     "Kişisel veri ihlallerinde idari para cezası uygulanır. Bilişim sektörü yüksek risk altındadır.",
		},
	}
}

func sampleObligations() []seedObligation {
	return []seedObligation{
		{companyName: "Demo Yazılım A.Ş.", regulationTitle: "Yeni KDV Beyan Tebliği", dueInDays: -1, riskLevel: model.RiskHigh},
		{companyName: "Demo Yazılım A.Ş.", regulationTitle: "KVKK Veri İhlali Yaptırımları", dueInDays: 14, riskLevel: model.RiskMedium},
		{companyName: "Bursa İmalat Ltd.", regulationTitle: "KOSGEB Destek Programı Duyurusu", dueInDays: 30, riskLevel: model.RiskLow, compliant: true},
		{companyName: "Bursa İmalat Ltd.", regulationTitle: "KVKK Veri İhlali Yaptırımları", noDue: true, riskLevel: model.RiskMedium},
		{companyName: "Kardeşler Market", regulationTitle: "Yeni KDV Beyan Tebliği", dueInDays: 0, riskLevel: model.RiskMedium},
	}
}
