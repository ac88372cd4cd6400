package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/epiwatch/surveillance/pkg/alerts"
	"github.com/epiwatch/surveillance/pkg/audit"
	"github.com/epiwatch/surveillance/pkg/common/config"
	"github.com/epiwatch/surveillance/pkg/common/database"
	"github.com/epiwatch/surveillance/pkg/common/kafka"
	"github.com/epiwatch/surveillance/pkg/common/logger"
	"github.com/epiwatch/surveillance/pkg/dashboard"
	"github.com/epiwatch/surveillance/pkg/diseasecode"
	"github.com/epiwatch/surveillance/pkg/labtest"
	"github.com/epiwatch/surveillance/pkg/metadata"
	"github.com/epiwatch/surveillance/pkg/middleware"
	"github.com/epiwatch/surveillance/pkg/optionset"
	"github.com/epiwatch/surveillance/pkg/pathogen"
	"github.com/epiwatch/surveillance/pkg/platform"
	"github.com/gorilla/mux"
)

func main() {
	logger.Init()
	cfg := config.Load()

	registry, err := metadata.Load(cfg.MetadataPath)
	if err != nil {
		if cfg.MetadataPath == "" {
			logger.Log.WithError(err).Fatal("failed to load metadata registry")
		}
		logger.Log.WithError(err).Warn("metadata registry file unusable, using defaults")
	}

	client := platform.New(cfg)

	// The cache degrades to process memory when Redis is unreachable; the
	// vocabularies are then refetched on the next restart.
	var store optionset.Store
	rdb, err := database.NewRedis(cfg)
	if err != nil {
		logger.Log.WithError(err).Warn("redis unavailable, option-set cache will not survive restarts")
		store = optionset.NewMemoryStore()
	} else {
		store = optionset.NewRedisStore(rdb)
	}

	primeCtx, cancelPrime := context.WithTimeout(context.Background(), 60*time.Second)
	cache := optionset.New(primeCtx, store, client, registry.RequiredOptionSets())
	cache.PrimeRequired(primeCtx)
	cancelPrime()

	var auditRepo *audit.Repository
	if db, err := database.NewPostgres(cfg); err != nil {
		logger.Log.WithError(err).Warn("postgres unavailable, running without audit log")
	} else {
		auditRepo = audit.NewRepository(db)
		if err := auditRepo.AutoMigrate(); err != nil {
			logger.Log.WithError(err).Warn("failed to migrate audit tables, running without audit log")
			auditRepo = nil
		}
		defer database.ClosePostgres(db)
	}

	producer := kafka.NewProducer(cfg.KafkaBrokers, cfg.KafkaTopic)
	defer producer.Close()

	diseaseSvc := diseasecode.NewService(client, cache, registry,
		diseasecode.WithAudit(auditRepo), diseasecode.WithPublisher(producer))
	pathogenSvc := pathogen.NewService(client, cache, registry,
		pathogen.WithAudit(auditRepo), pathogen.WithPublisher(producer))
	labSvc := labtest.NewService(client, registry, cfg.CaseProgramID, cfg.LabStageID, cfg.OrgUnitID,
		labtest.WithAudit(auditRepo))
	alertSvc := alerts.NewService(client, registry, cfg.AlertProgramID, cfg.OrgUnitID,
		alerts.WithAudit(auditRepo))
	dashboardSvc := dashboard.NewService(client, registry, cfg.OrgUnitID,
		cfg.CaseProgramID, cfg.LabStageID, cfg.AlertProgramID, cfg.DetailFetchLimit)

	router := mux.NewRouter()
	router.Use(middleware.Logging)
	router.Use(middleware.Recovery)
	router.Use(middleware.CORS)
	router.Use(middleware.RateLimit(cfg.RateLimitRPS, cfg.RateLimitBurst))
	router.Use(middleware.BodyLimit(cfg.MaxRequestBody))

	router.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"healthy"}`))
	}).Methods(http.MethodGet)
	router.HandleFunc("/ready", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ready"}`))
	}).Methods(http.MethodGet)

	api := router.PathPrefix("/api/v1").Subrouter()
	api.Use(middleware.Authenticate(cfg.AdminAPIToken))

	diseasecode.NewHandler(diseaseSvc).Register(api)
	pathogen.NewHandler(pathogenSvc).Register(api)
	labtest.NewHandler(labSvc).Register(api)
	alerts.NewHandler(alertSvc).Register(api)
	dashboard.NewHandler(dashboardSvc).Register(api)
	if auditRepo != nil {
		audit.NewHandler(auditRepo).Register(api)
	}

	// Static client configuration for the admin UI.
	api.HandleFunc("/config", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"geocoderApiKey": cfg.GeocoderAPIKey,
			"orgUnit":        cfg.OrgUnitID,
		})
	}).Methods(http.MethodGet)

	address := fmt.Sprintf("%s:%s", cfg.ServerHost, cfg.ServerPort)
	server := &http.Server{
		Addr:         address,
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		logger.Log.WithField("addr", address).Info("Surveillance admin service listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Log.WithError(err).Fatal("failed to start admin service")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Log.Info("Shutting down admin service...")
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logger.Log.WithError(err).Error("admin service forced to shutdown")
	}
	if rdb != nil {
		_ = rdb.Close()
	}
	logger.Log.Info("Admin service stopped")
}
