package bootstrap

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	googleauth "intake-backend/internal/auth"
	"intake-backend/internal/exclusions"
	"intake-backend/internal/recruiters"
	"intake-backend/internal/rowgen"
	"intake-backend/internal/services/health"
	"intake-backend/internal/sessions"
	"intake-backend/internal/shared/config"
	"intake-backend/internal/shared/server"
	"intake-backend/internal/shared/storage/db"
	"intake-backend/internal/shared/storage/object"
	localstore "intake-backend/internal/shared/storage/object/local"
	s3store "intake-backend/internal/shared/storage/object/s3"
	"intake-backend/internal/templates"
	"intake-backend/internal/visits"
)

// App holds shared dependencies.
type App struct {
	Config config.Config
	Router *gin.Engine
	DB     *sql.DB
	Store  object.ObjectStore

	TemplatesRepo  templates.Repo
	SessionsRepo   sessions.Repo
	RecruitersRepo recruiters.Repo
	ExclusionsRepo exclusions.Repo
	VisitsRepo     visits.Repo

	TemplatesService  *templates.Service
	SessionsService   *sessions.Service
	RecruitersService *recruiters.Service
	ExclusionsService *exclusions.Service
	VisitsService     *visits.Service

	TemplatesHandler  *templates.Handler
	RowGenHandler     *rowgen.Handler
	SessionsHandler   *sessions.Handler
	RecruitersHandler *recruiters.Handler
	ExclusionsHandler *exclusions.Handler
	VisitsHandler     *visits.Handler
	GoogleAuth        *googleauth.GoogleService
	Health            *health.Service
}

// Build prepares shared dependencies and wires the router.
func Build(cfg config.Config) (*App, error) {
	if strings.TrimSpace(cfg.Env) == "" {
		cfg.Env = "dev"
	}
	if strings.TrimSpace(cfg.ObjectStoreType) == "" {
		cfg.ObjectStoreType = "local"
	}
	ctx := context.Background()

	sqlDB, err := buildDB(ctx, cfg)
	if err != nil {
		return nil, err
	}

	store, err := buildStore(ctx, cfg)
	if err != nil {
		return nil, err
	}

	app := &App{
		Config: cfg,
		DB:     sqlDB,
		Store:  store,
	}

	if err := buildServices(app); err != nil {
		return nil, err
	}

	if cfg.SeedRecruiters {
		if err := app.RecruitersService.SeedDefaults(ctx); err != nil {
			return nil, fmt.Errorf("seed recruiters: %w", err)
		}
	}

	app.Router = server.NewRouter(server.RouterDeps{
		Config:            app.Config,
		TemplatesHandler:  app.TemplatesHandler,
		RowGenHandler:     app.RowGenHandler,
		SessionsHandler:   app.SessionsHandler,
		RecruitersHandler: app.RecruitersHandler,
		ExclusionsHandler: app.ExclusionsHandler,
		VisitsHandler:     app.VisitsHandler,
		Health:            app.Health,
		GoogleAuth:        app.GoogleAuth,
	})

	return app, nil
}

func buildDB(ctx context.Context, cfg config.Config) (*sql.DB, error) {
	if strings.TrimSpace(cfg.DatabaseURL) == "" {
		if isDevLike(cfg.Env) {
			log.Printf("bootstrap: DATABASE_URL empty; using in-memory repositories")
			return nil, nil
		}
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	opts := db.OptionsFromEnv(db.DefaultServerOptions())
	sqlDB, err := db.Connect(ctx, cfg.DatabaseURL, opts)
	if err != nil {
		if isDevLike(cfg.Env) {
			log.Printf("bootstrap: database connect failed; using in-memory repositories: %v", err)
			return nil, nil
		}
		return nil, err
	}

	if err := db.RunMigrations(ctx, sqlDB); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return sqlDB, nil
}

func buildStore(ctx context.Context, cfg config.Config) (object.ObjectStore, error) {
	switch cfg.ObjectStoreType {
	case "s3":
		return s3store.New(ctx, cfg.AWSRegion, cfg.S3Bucket, cfg.S3Prefix, cfg.SSEKMSKeyID)
	default:
		return localstore.New(cfg.LocalStoreDir), nil
	}
}

func isDevLike(env string) bool {
	switch strings.ToLower(strings.TrimSpace(env)) {
	case "dev", "local":
		return true
	default:
		return false
	}
}

func buildServices(app *App) error {
	var tmplRepo templates.Repo
	var sessRepo sessions.Repo
	var recRepo recruiters.Repo
	var exclRepo exclusions.Repo
	var visitRepo visits.Repo

	if app.DB != nil {
		tmplRepo = &templates.PGRepo{DB: app.DB}
		sessRepo = &sessions.PGRepo{DB: app.DB}
		recRepo = &recruiters.PGRepo{DB: app.DB}
		exclRepo = &exclusions.PGRepo{DB: app.DB}
		visitRepo = &visits.PGRepo{DB: app.DB}
	} else {
		tmplRepo = templates.NewMemoryRepo()
		sessRepo = sessions.NewMemoryRepo()
		recRepo = recruiters.NewMemoryRepo()
		exclRepo = exclusions.NewMemoryRepo()
		visitRepo = visits.NewMemoryRepo()
	}

	tmplSvc := templates.NewService(tmplRepo)
	exclSvc := &exclusions.Service{Repo: exclRepo, Store: app.Store}
	recSvc := recruiters.NewService(recRepo, sessRepo)
	visitSvc := &visits.Service{Repo: visitRepo}

	sessSvc := &sessions.Service{
		Repo:       sessRepo,
		Screener:   screenerAdapter{svc: exclSvc},
		Recruiters: directoryAdapter{svc: recSvc},
		Templates:  templateAdapter{svc: tmplSvc},
	}

	app.TemplatesRepo = tmplRepo
	app.SessionsRepo = sessRepo
	app.RecruitersRepo = recRepo
	app.ExclusionsRepo = exclRepo
	app.VisitsRepo = visitRepo

	app.TemplatesService = tmplSvc
	app.SessionsService = sessSvc
	app.RecruitersService = recSvc
	app.ExclusionsService = exclSvc
	app.VisitsService = visitSvc

	app.TemplatesHandler = templates.NewHandler(tmplSvc)
	app.RowGenHandler = rowgen.NewHandler(tmplSvc)
	app.SessionsHandler = sessions.NewHandler(sessSvc)
	app.RecruitersHandler = recruiters.NewHandler(recSvc)
	app.ExclusionsHandler = exclusions.NewHandler(exclSvc)
	app.VisitsHandler = visits.NewHandler(visitSvc)
	app.GoogleAuth = googleauth.NewGoogleService(
		app.Config.GoogleClientID,
		app.Config.GoogleClientSecret,
		app.Config.GoogleRedirectURL,
		app.Config.UIRedirectURL,
	)
	app.Health = health.NewService()

	if app.SessionsHandler == nil || app.TemplatesHandler == nil || app.RecruitersHandler == nil {
		return errors.New("failed to initialize handlers")
	}

	return nil
}

// screenerAdapter bridges the exclusion service to the session lifecycle's
// Screener port.
type screenerAdapter struct {
	svc *exclusions.Service
}

func (a screenerAdapter) Check(ctx context.Context, firstName, lastName string) (*sessions.ExclusionMatch, error) {
	entry, ok, err := a.svc.Check(ctx, firstName, lastName)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}
	return &sessions.ExclusionMatch{
		Name:  entry.Name,
		Code:  entry.Code,
		SSN:   entry.SSN,
		DOB:   entry.DOB,
		Notes: entry.Notes,
	}, nil
}

// directoryAdapter bridges the recruiter service to the session lifecycle's
// RecruiterDirectory port.
type directoryAdapter struct {
	svc *recruiters.Service
}

func (a directoryAdapter) NextAvailable(ctx context.Context, timeSlot string, day time.Time) (sessions.AssignedRecruiter, bool, error) {
	rec, ok, err := a.svc.NextAvailable(ctx, timeSlot, day)
	if err != nil || !ok {
		return sessions.AssignedRecruiter{}, false, err
	}
	return sessions.AssignedRecruiter{ID: rec.ID, Name: rec.Name}, true, nil
}

func (a directoryAdapter) NameFor(ctx context.Context, recruiterID string) (string, error) {
	rec, err := a.svc.Get(ctx, recruiterID)
	if err != nil {
		return "", err
	}
	return rec.Name, nil
}

// templateAdapter bridges the template service to the session lifecycle's
// TemplateSource port.
type templateAdapter struct {
	svc *templates.Service
}

func (a templateAdapter) FirstActive(ctx context.Context) (templates.Template, bool, error) {
	tmpl, err := a.svc.FirstActive(ctx)
	if err != nil {
		if errors.Is(err, templates.ErrNotFound) {
			return templates.Template{}, false, nil
		}
		return templates.Template{}, false, err
	}
	return tmpl, true, nil
}
