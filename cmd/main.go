package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"

	"github.com/scraping050/proyecto-garantias-sub000/cmd/controllers"
	"github.com/scraping050/proyecto-garantias-sub000/internal/config"
	"github.com/scraping050/proyecto-garantias-sub000/internal/repo"
	"github.com/scraping050/proyecto-garantias-sub000/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/robfig/cron/v3"
)

const defaultConfigPath = "secrets.json"

func main() {
	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = defaultConfigPath
	}

	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	db, err := repo.Connect(cfg.DBDSN)
	if err != nil {
		log.Fatalf("connect to database: %v", err)
	}

	if err := repo.Migrate(db); err != nil {
		log.Fatalf("migrate database: %v", err)
	}

	sourceService, err := services.NewSourceService(db)
	if err != nil {
		log.Fatalf("create source service: %v", err)
	}

	logService, err := services.NewLogService(db)
	if err != nil {
		log.Fatalf("create log service: %v", err)
	}

	listingService, err := services.NewListingService(nil)
	if err != nil {
		log.Fatalf("create listing service: %v", err)
	}

	downloadService, err := services.NewDownloadService(
		logService,
		&http.Client{Timeout: cfg.DownloadTimeout()},
		cfg.FileStoreDir,
		cfg.SourceTag,
	)
	if err != nil {
		log.Fatalf("create download service: %v", err)
	}

	loadControlService, err := services.NewLoadControlService(db)
	if err != nil {
		log.Fatalf("create load control service: %v", err)
	}

	loaderService, err := services.NewLoaderService(
		db,
		loadControlService,
		logService,
		cfg.FileStoreDir,
		cfg.LoadBatchSize,
		cfg.UpdateStatusOnReload,
	)
	if err != nil {
		log.Fatalf("create loader service: %v", err)
	}

	contractAPIService, err := services.NewContractAPIService(
		nil,
		cfg.ContractAPIBaseURL,
		cfg.DocumentAPIBaseURL,
		cfg.APITimeout(),
	)
	if err != nil {
		log.Fatalf("create contract api service: %v", err)
	}

	enrichService, err := services.NewEnrichService(
		db,
		contractAPIService,
		logService,
		cfg.ArtifactDir,
		cfg.EnrichBatchSize,
		cfg.EnrichWorkers,
		cfg.EnrichRetryTransient,
	)
	if err != nil {
		log.Fatalf("create enrich service: %v", err)
	}

	pipelineService, err := services.NewPipelineService(
		sourceService,
		listingService,
		downloadService,
		loaderService,
		enrichService,
		logService,
		cfg.Years,
		cfg.DownloadWorkers,
		cfg.EnrichMaxBatches,
	)
	if err != nil {
		log.Fatalf("create pipeline service: %v", err)
	}

	sourcesController, err := controllers.NewSourcesController(sourceService)
	if err != nil {
		log.Fatalf("create sources controller: %v", err)
	}

	logsController, err := controllers.NewLogsController(logService)
	if err != nil {
		log.Fatalf("create logs controller: %v", err)
	}

	filesController, err := controllers.NewFilesController(loadControlService)
	if err != nil {
		log.Fatalf("create files controller: %v", err)
	}

	pipelineController, err := controllers.NewPipelineController(pipelineService)
	if err != nil {
		log.Fatalf("create pipeline controller: %v", err)
	}

	router := gin.New()
	router.Use(gin.Recovery())

	if err := controllers.RegisterHealthRoutes(router); err != nil {
		log.Fatalf("register health routes: %v", err)
	}
	if err := sourcesController.RegisterRoutes(router); err != nil {
		log.Fatalf("register sources routes: %v", err)
	}
	if err := logsController.RegisterRoutes(router); err != nil {
		log.Fatalf("register logs routes: %v", err)
	}
	if err := filesController.RegisterRoutes(router); err != nil {
		log.Fatalf("register files routes: %v", err)
	}
	if err := pipelineController.RegisterRoutes(router); err != nil {
		log.Fatalf("register pipeline routes: %v", err)
	}

	if err := startCron(pipelineService, cfg.CronSpec); err != nil {
		log.Fatalf("start cron: %v", err)
	}

	addr := ":8080"
	if err := router.Run(addr); err != nil {
		log.Fatalf("run server: %v", err)
	}
}

type pipelineRefresher interface {
	Refresh(ctx context.Context) error
}

func startCron(service pipelineRefresher, spec string) error {
	if service == nil {
		return errors.New("pipeline service is nil")
	}
	if spec == "" {
		spec = "@monthly"
	}

	scheduler := cron.New()

	if _, err := scheduler.AddFunc(spec, func() {
		if err := service.Refresh(context.Background()); err != nil {
			log.Printf("refresh pipeline: %v", err)
		}
	}); err != nil {
		return err
	}

	scheduler.Start()
	return nil
}
