package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/harentsoaR/campus-api/internal/config"
	"github.com/harentsoaR/campus-api/internal/handlers"
	"github.com/harentsoaR/campus-api/internal/logging"
	"github.com/harentsoaR/campus-api/internal/middleware"
	"github.com/harentsoaR/campus-api/internal/models"
	"github.com/harentsoaR/campus-api/internal/services"
	"github.com/harentsoaR/campus-api/internal/storage"
	"github.com/harentsoaR/campus-api/internal/store"
	"github.com/harentsoaR/campus-api/internal/utils"
)

const uploadsRoute = "/uploads"

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	logger := logging.New(cfg.LogLevel, cfg.LogFormat, cfg.Version)
	reporter := logging.NewReporter(cfg.RollbarToken, cfg.Env, cfg.Version)
	defer reporter.Close()

	if err := run(cfg, logger, reporter); err != nil {
		logger.Error("server stopped", "error", err)
		reporter.Report(err, nil)
		reporter.Close()
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *slog.Logger, reporter *logging.Reporter) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// --- Database Connection ---
	st, closeStore, err := openStore(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeStore()

	// --- Initialize Services ---
	tokens, err := utils.NewTokenIssuer(utils.TokenConfig{
		AccessSecret:  cfg.AccessTokenSecret,
		RefreshSecret: cfg.RefreshTokenSecret,
		AccessTTL:     cfg.AccessTokenExpiry,
		RefreshTTL:    cfg.RefreshTokenExpiry,
	})
	if err != nil {
		return err
	}

	images, err := openImageStore(ctx, cfg)
	if err != nil {
		return err
	}

	notifier := services.NewNotificationService(cfg.TextbeltAPIKey, services.TextbeltURL, logger)
	defer notifier.Wait()

	admins := services.NewAccountService[models.Admin, *models.Admin](st.Admins, tokens, images, logger, models.RoleAdmin)
	teachers := services.NewAccountService[models.Teacher, *models.Teacher](st.Teachers, tokens, images, logger, models.RoleTeacher)
	students := services.NewAccountService[models.Student, *models.Student](st.Students, tokens, images, logger, models.RoleStudent)
	hierarchy := services.NewHierarchyService(st)
	populator := services.NewPopulator(st)
	classes := services.NewClassService(st, hierarchy, populator, notifier)
	coursework := services.NewCourseworkService(st, classes)

	if _, err := services.SeedAdmin(ctx, admins, cfg.SeedAdmin, logger); err != nil {
		return err
	}

	// --- Initialize Handlers with Services ---
	h := handlers.NewHandler(handlers.Services{
		Admins:     admins,
		Teachers:   teachers,
		Students:   students,
		Hierarchy:  hierarchy,
		Classes:    classes,
		Coursework: coursework,
		Populator:  populator,
	}, logger, handlers.CookieConfig{
		Secure:     cfg.CookieSecure,
		AccessTTL:  cfg.AccessTokenExpiry,
		RefreshTTL: cfg.RefreshTokenExpiry,
	})

	// --- Gin Router ---
	if cfg.Env == "PROD" {
		gin.SetMode(gin.ReleaseMode)
	}
	middleware.RegisterValidators()
	r := gin.New()
	r.MaxMultipartMemory = 8 << 20

	// --- Middleware ---
	r.Use(gin.Recovery())
	r.Use(logging.RequestLogger(logger))
	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORSOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		AllowCredentials: true,
	}))
	r.Use(middleware.ErrorHandler(logger, reporter))

	// --- Routes ---
	if cfg.ProfileStorage == config.StorageLocal {
		r.Static(uploadsRoute, cfg.UploadDir)
	}
	h.RegisterRoutes(r)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		logger.Info("starting server", "port", cfg.Port, "store", cfg.StoreDriver, "profile_storage", cfg.ProfileStorage)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func openStore(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*store.Store, func(), error) {
	if cfg.StoreDriver == config.StoreMemory {
		logger.Warn("using the in-memory store, data is lost on restart")
		return store.NewMemoryStore(), func() {}, nil
	}

	connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	client, db, err := store.ConnectMongo(connectCtx, options.Client().ApplyURI(cfg.MongoURI), cfg.MongoDatabase)
	if err != nil {
		return nil, nil, err
	}
	logger.Info("connected to MongoDB", "database", cfg.MongoDatabase)

	closeStore := func() {
		disconnectCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := client.Disconnect(disconnectCtx); err != nil {
			logger.Warn("failed to disconnect from MongoDB", "error", err)
		}
	}
	return store.NewMongoStore(db), closeStore, nil
}

func openImageStore(ctx context.Context, cfg *config.Config) (storage.ImageStore, error) {
	if cfg.ProfileStorage == config.StorageB2 {
		return storage.NewB2Storage(ctx, cfg.B2KeyID, cfg.B2AppKey, cfg.B2Bucket)
	}
	return storage.NewLocalStorage(cfg.UploadDir, cfg.PublicBaseURL+uploadsRoute)
}
