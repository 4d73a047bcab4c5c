package api

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/doppio-labs/fiscaldoc/internal/domain/archive"
	"github.com/doppio-labs/fiscaldoc/internal/domain/catalog"
	dochandler "github.com/doppio-labs/fiscaldoc/internal/domain/document/handler"
	"github.com/doppio-labs/fiscaldoc/internal/domain/ledger"
	"github.com/doppio-labs/fiscaldoc/internal/domain/ledger/excel"
	"github.com/doppio-labs/fiscaldoc/internal/domain/ocr"
	"github.com/doppio-labs/fiscaldoc/internal/domain/pipeline/extractor"
	"github.com/doppio-labs/fiscaldoc/internal/domain/pipeline/resolver"
	"github.com/doppio-labs/fiscaldoc/internal/domain/pipeline/service"
	reviewhandler "github.com/doppio-labs/fiscaldoc/internal/domain/review/handler"
	reviewrepo "github.com/doppio-labs/fiscaldoc/internal/domain/review/repository"

	"github.com/doppio-labs/fiscaldoc/pkg/config"
	"github.com/doppio-labs/fiscaldoc/pkg/db"
)

// Dependencies holds all application dependencies
type Dependencies struct {
	Config *config.Config
	DB     *db.DB
	Logger *slog.Logger

	// Collaborators
	Catalog    *catalog.Catalog
	Ledger     ledger.Store
	Archive    archive.Archive
	OCRBackend ocr.Backend
	ReviewRepo reviewrepo.ReviewRepository

	// Services
	Pipeline *service.Service

	// Handlers
	DocumentHandler *dochandler.DocumentHandler
	ReviewHandler   *reviewhandler.ReviewHandler
}

// InitDependencies initializes all application dependencies
func InitDependencies(cfg *config.Config, logger *slog.Logger) (*Dependencies, error) {
	deps := &Dependencies{
		Config: cfg,
		Logger: logger,
	}

	// Initialize database
	if err := deps.initDatabase(); err != nil {
		return nil, fmt.Errorf("failed to init database: %w", err)
	}

	// Initialize collaborators
	if err := deps.initCollaborators(); err != nil {
		return nil, fmt.Errorf("failed to init collaborators: %w", err)
	}

	// Initialize services
	if err := deps.initServices(); err != nil {
		return nil, fmt.Errorf("failed to init services: %w", err)
	}

	// Initialize handlers
	if err := deps.initHandlers(); err != nil {
		return nil, fmt.Errorf("failed to init handlers: %w", err)
	}

	logger.Info("all dependencies initialized successfully")

	return deps, nil
}

// initDatabase initializes the review queue database when enabled
func (d *Dependencies) initDatabase() error {
	if !d.Config.Database.Enabled {
		d.Logger.Info("review queue disabled; skipping database init")
		return nil
	}

	database, err := db.New(db.Config{
		DSN:             d.Config.Database.DSN(),
		MaxConns:        25,
		MinConns:        5,
		MaxConnLifetime: 5 * time.Minute,
		MaxConnIdleTime: 10 * time.Minute,
	}, d.Logger)
	if err != nil {
		return err
	}

	d.DB = database

	// Run migrations
	if err := d.DB.RunMigrations(); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	d.Logger.Info("database connected and migrations completed successfully")
	return nil
}

// initCollaborators initializes the catalog and the pipeline's side-effect
// boundaries: ledger workbook, archive, OCR and review queue
func (d *Dependencies) initCollaborators() error {
	var opts []catalog.Option
	if d.Config.Catalog.OwnName != "" {
		opts = append(opts, catalog.WithOwnName(d.Config.Catalog.OwnName))
	}

	cat := catalog.Default(opts...)
	if d.Config.Catalog.Path != "" {
		loaded, err := catalog.Load(d.Config.Catalog.Path, opts...)
		if err != nil {
			return fmt.Errorf("failed to load catalog: %w", err)
		}
		cat = loaded
	}
	d.Catalog = cat

	d.Ledger = excel.NewStore(d.Config.Ledger.WorkbookPath, d.Logger)
	d.Archive = archive.NewFS(d.Config.Archive.Root, d.Logger)
	d.OCRBackend = ocr.NewTesseractCLI(d.Config.OCR.Language, d.Logger,
		ocr.WithBinary(d.Config.OCR.Binary))

	if d.DB != nil {
		d.ReviewRepo = reviewrepo.NewPostgresReviewRepository(d.DB.Pool)
	}

	d.Logger.Info("collaborators initialized",
		"workbook", d.Config.Ledger.WorkbookPath,
		"archive_root", d.Config.Archive.Root,
		"review_queue", d.DB != nil)
	return nil
}

// initServices initializes all service layer dependencies
func (d *Dependencies) initServices() error {
	d.Pipeline = service.NewService(
		d.Catalog,
		extractor.New(d.Catalog, d.Logger),
		resolver.New(d.Catalog, d.Logger,
			resolver.WithFormThreshold(d.Config.Catalog.FormThreshold),
			resolver.WithOCRThreshold(d.Config.Catalog.OCRThreshold)),
		d.Ledger,
		d.Archive,
		d.OCRBackend,
		d.ReviewRepo,
		d.Logger,
	)

	d.Logger.Info("services initialized")
	return nil
}

// initHandlers initializes all handler dependencies
func (d *Dependencies) initHandlers() error {
	d.DocumentHandler = dochandler.NewDocumentHandler(
		d.Pipeline,
		d.Config.Server.UploadDir,
		d.Config.Server.MaxUploadBytes,
		d.Logger,
	)
	if d.ReviewRepo != nil {
		d.ReviewHandler = reviewhandler.NewReviewHandler(d.ReviewRepo, d.Logger)
	}

	d.Logger.Info("handlers initialized")
	return nil
}

// Cleanup closes all resources
func (d *Dependencies) Cleanup() {
	if d.DB != nil {
		d.DB.Close()
	}
	d.Logger.Info("cleanup completed")
}
