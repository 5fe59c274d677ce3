// Command seed loads a YAML fixture of demo accounts, campaigns, backlinks,
// invoices and activity into the portal database. It exists for local
// development and demo environments.
package main

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gopkg.in/yaml.v3"

	"github.com/kareemeredaze/maitre-seo/internal/model"
	"github.com/kareemeredaze/maitre-seo/internal/storage"
)

const (
	commandUseName          = "seed"
	commandShortDescription = "Load demo data into the portal database"

	flagNameDatabaseDriver         = "db-driver"
	flagNameDatabaseDataSourceName = "db-dsn"
	flagNameFixturePath            = "fixture"

	flagUsageDatabaseDriver         = "database driver name (sqlite or postgres)"
	flagUsageDatabaseDataSourceName = "database connection string"
	flagUsageFixturePath            = "path to the YAML fixture file"

	fixtureDateLayout = "2006-01-02"

	logEventFixtureLoaded = "fixture_loaded"
	logFieldProfiles      = "profiles"
	logFieldCampaigns     = "campaigns"
	logFieldBacklinks     = "backlinks"
	logFieldInvoices      = "invoices"
	logFieldActivity      = "activity"
)

var (
	errMissingFixturePath = errors.New("missing fixture path")
	errMissingDataSource  = errors.New("missing database connection string")
)

// fixtureDate accepts bare YYYY-MM-DD dates in fixture files.
type fixtureDate struct {
	time.Time
}

func (date *fixtureDate) UnmarshalYAML(node *yaml.Node) error {
	trimmed := strings.TrimSpace(node.Value)
	if trimmed == "" {
		date.Time = time.Time{}
		return nil
	}
	parsed, parseErr := time.Parse(fixtureDateLayout, trimmed)
	if parseErr != nil {
		return fmt.Errorf("parse fixture date %q: %w", trimmed, parseErr)
	}
	date.Time = parsed
	return nil
}

type fixtureBacklink struct {
	URL          string       `yaml:"url"`
	AnchorText   string       `yaml:"anchor_text"`
	TargetURL    string       `yaml:"target_url"`
	DomainRating int          `yaml:"dr"`
	Status       string       `yaml:"status"`
	LiveDate     *fixtureDate `yaml:"live_date"`
}

type fixtureCampaign struct {
	Name           string            `yaml:"name"`
	Status         string            `yaml:"status"`
	StartDate      *fixtureDate      `yaml:"start_date"`
	EndDate        *fixtureDate      `yaml:"end_date"`
	TargetLinks    int               `yaml:"target_links"`
	DeliveredLinks int               `yaml:"delivered_links"`
	Backlinks      []fixtureBacklink `yaml:"backlinks"`
}

type fixtureInvoice struct {
	Number  string      `yaml:"number"`
	Amount  float64     `yaml:"amount"`
	Status  string      `yaml:"status"`
	DueDate fixtureDate `yaml:"due_date"`
	PDFURL  string      `yaml:"pdf_url"`
}

type fixtureActivity struct {
	Type    string `yaml:"type"`
	Message string `yaml:"message"`
}

type fixtureProfile struct {
	ID             string            `yaml:"id"`
	Email          string            `yaml:"email"`
	FullName       string            `yaml:"full_name"`
	Phone          string            `yaml:"phone"`
	Company        string            `yaml:"company"`
	CompanyWebsite string            `yaml:"company_website"`
	CompanySector  string            `yaml:"company_sector"`
	Campaigns      []fixtureCampaign `yaml:"campaigns"`
	Invoices       []fixtureInvoice  `yaml:"invoices"`
	Activity       []fixtureActivity `yaml:"activity"`
}

type fixtureDocument struct {
	Profiles []fixtureProfile `yaml:"profiles"`
}

type seedCounts struct {
	profiles  int
	campaigns int
	backlinks int
	invoices  int
	activity  int
}

func loadFixture(fixturePath string) (fixtureDocument, error) {
	rawFixture, readErr := os.ReadFile(fixturePath)
	if readErr != nil {
		return fixtureDocument{}, fmt.Errorf("read fixture: %w", readErr)
	}

	var document fixtureDocument
	if unmarshalErr := yaml.Unmarshal(rawFixture, &document); unmarshalErr != nil {
		return fixtureDocument{}, fmt.Errorf("parse fixture: %w", unmarshalErr)
	}
	return document, nil
}

func applyFixture(database *gorm.DB, document fixtureDocument) (seedCounts, error) {
	counts := seedCounts{}

	transactionErr := database.Transaction(func(transaction *gorm.DB) error {
		for _, profileFixture := range document.Profiles {
			profileID := strings.TrimSpace(profileFixture.ID)
			if profileID == "" {
				profileID = storage.NewID()
			}

			profile := model.Profile{
				ID:             profileID,
				Email:          strings.ToLower(strings.TrimSpace(profileFixture.Email)),
				FullName:       profileFixture.FullName,
				Phone:          profileFixture.Phone,
				Company:        profileFixture.Company,
				CompanyWebsite: profileFixture.CompanyWebsite,
				CompanySector:  profileFixture.CompanySector,
			}
			if createErr := transaction.Create(&profile).Error; createErr != nil {
				return fmt.Errorf("create profile %s: %w", profile.Email, createErr)
			}
			counts.profiles++

			for _, campaignFixture := range profileFixture.Campaigns {
				campaign := model.Campaign{
					ID:             storage.NewID(),
					UserID:         profileID,
					Name:           campaignFixture.Name,
					Status:         campaignFixture.Status,
					TargetLinks:    campaignFixture.TargetLinks,
					DeliveredLinks: campaignFixture.DeliveredLinks,
				}
				if campaignFixture.StartDate != nil {
					campaign.StartDate = &campaignFixture.StartDate.Time
				}
				if campaignFixture.EndDate != nil {
					campaign.EndDate = &campaignFixture.EndDate.Time
				}
				if createErr := transaction.Create(&campaign).Error; createErr != nil {
					return fmt.Errorf("create campaign %s: %w", campaign.Name, createErr)
				}
				counts.campaigns++

				for _, backlinkFixture := range campaignFixture.Backlinks {
					backlink := model.Backlink{
						ID:           storage.NewID(),
						CampaignID:   campaign.ID,
						URL:          backlinkFixture.URL,
						AnchorText:   backlinkFixture.AnchorText,
						TargetURL:    backlinkFixture.TargetURL,
						DomainRating: backlinkFixture.DomainRating,
						Status:       backlinkFixture.Status,
					}
					if backlinkFixture.LiveDate != nil {
						backlink.LiveDate = &backlinkFixture.LiveDate.Time
					}
					if createErr := transaction.Create(&backlink).Error; createErr != nil {
						return fmt.Errorf("create backlink %s: %w", backlink.URL, createErr)
					}
					counts.backlinks++
				}
			}

			for _, invoiceFixture := range profileFixture.Invoices {
				invoice := model.Invoice{
					ID:      storage.NewID(),
					UserID:  profileID,
					Number:  invoiceFixture.Number,
					Amount:  invoiceFixture.Amount,
					Status:  invoiceFixture.Status,
					DueDate: invoiceFixture.DueDate.Time,
					PDFURL:  invoiceFixture.PDFURL,
				}
				if createErr := transaction.Create(&invoice).Error; createErr != nil {
					return fmt.Errorf("create invoice %s: %w", invoice.Number, createErr)
				}
				counts.invoices++
			}

			for _, activityFixture := range profileFixture.Activity {
				entry, entryErr := model.NewActivityEntry(model.ActivityInput{
					UserID:  profileID,
					Type:    activityFixture.Type,
					Message: activityFixture.Message,
				})
				if entryErr != nil {
					return fmt.Errorf("create activity entry: %w", entryErr)
				}
				if createErr := transaction.Create(&entry).Error; createErr != nil {
					return fmt.Errorf("create activity entry: %w", createErr)
				}
				counts.activity++
			}
		}
		return nil
	})
	if transactionErr != nil {
		return seedCounts{}, transactionErr
	}
	return counts, nil
}

func runSeed(command *cobra.Command, _ []string) error {
	databaseDriver, _ := command.Flags().GetString(flagNameDatabaseDriver)
	dataSourceName, _ := command.Flags().GetString(flagNameDatabaseDataSourceName)
	fixturePath, _ := command.Flags().GetString(flagNameFixturePath)

	if strings.TrimSpace(dataSourceName) == "" {
		return errMissingDataSource
	}
	if strings.TrimSpace(fixturePath) == "" {
		return errMissingFixturePath
	}

	logger, loggerErr := zap.NewProduction()
	if loggerErr != nil {
		return fmt.Errorf("logger: %w", loggerErr)
	}
	defer func() {
		_ = logger.Sync()
	}()

	document, fixtureErr := loadFixture(fixturePath)
	if fixtureErr != nil {
		return fixtureErr
	}

	database, databaseErr := storage.OpenDatabase(storage.Config{
		DriverName:     strings.TrimSpace(databaseDriver),
		DataSourceName: strings.TrimSpace(dataSourceName),
	})
	if databaseErr != nil {
		return fmt.Errorf("open database: %w", databaseErr)
	}
	if migrateErr := storage.AutoMigrate(database); migrateErr != nil {
		return fmt.Errorf("migrate database: %w", migrateErr)
	}

	counts, applyErr := applyFixture(database, document)
	if applyErr != nil {
		return applyErr
	}

	logger.Info(logEventFixtureLoaded,
		zap.Int(logFieldProfiles, counts.profiles),
		zap.Int(logFieldCampaigns, counts.campaigns),
		zap.Int(logFieldBacklinks, counts.backlinks),
		zap.Int(logFieldInvoices, counts.invoices),
		zap.Int(logFieldActivity, counts.activity),
	)
	return nil
}

func main() {
	rootCommand := &cobra.Command{
		Use:   commandUseName,
		Short: commandShortDescription,
		RunE:  runSeed,
	}
	rootCommand.Flags().String(flagNameDatabaseDriver, storage.DriverNameSQLite, flagUsageDatabaseDriver)
	rootCommand.Flags().String(flagNameDatabaseDataSourceName, "", flagUsageDatabaseDataSourceName)
	rootCommand.Flags().String(flagNameFixturePath, "", flagUsageFixturePath)

	if executeErr := rootCommand.Execute(); executeErr != nil {
		fmt.Fprintln(os.Stderr, executeErr)
		os.Exit(1)
	}
}
