package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"

	"nna_analyzer/internal/app"
	"nna_analyzer/internal/infra/config"
	"nna_analyzer/internal/infra/logger"
	"nna_analyzer/internal/infra/report"
	"nna_analyzer/internal/infra/storage"
)

func main() {
	fmt.Println("NNA Intervention Analyzer starting...")

	mainLogger := log.New(os.Stdout, "MAIN: ", log.LstdFlags|log.Lshortfile)

	cfg, err := config.Load()
	if err != nil {
		mainLogger.Fatalf("FATAL: Could not load application configuration: %v", err)
	}

	logger.Init(cfg)
	mainLogger.Printf("INFO: Configuration loaded. Data file: %s, study range: %d-%d, reports dir: %s",
		cfg.DataFile, cfg.StudyYearStart, cfg.StudyYearEnd, cfg.ReportsDir)

	// Initialize dataset repository
	repo, err := storage.NewDatasetRepository(cfg.DataFile)
	if err != nil {
		mainLogger.Fatalf("FATAL: Could not open dataset: %v", err)
	}
	mainLogger.Println("INFO: Dataset repository initialized.")

	// Initialize services
	cleanLogger := log.New(os.Stdout, "CLEAN_SVC: ", log.LstdFlags|log.Lshortfile)
	cleanService := app.NewCleanServiceImpl(cleanLogger)

	dictLogger := log.New(os.Stdout, "DICT_SVC: ", log.LstdFlags|log.Lshortfile)
	dictionaryService := app.NewDictionaryServiceImpl(dictLogger)

	qualityLogger := log.New(os.Stdout, "QUALITY_SVC: ", log.LstdFlags|log.Lshortfile)
	qualityService := app.NewQualityServiceImpl(qualityLogger)

	extractLogger := log.New(os.Stdout, "EXTRACT_SVC: ", log.LstdFlags|log.Lshortfile)
	extractService := app.NewExtractServiceImpl(extractLogger)

	analysisLogger := log.New(os.Stdout, "ANALYSIS_SVC: ", log.LstdFlags|log.Lshortfile)
	analysisService := app.NewAnalysisServiceImpl(app.AnalysisParams{
		StudyYears:            cfg.StudyYears(),
		SignificanceThreshold: cfg.SignificanceThreshold,
		NetChangeThreshold:    cfg.NetChangeThreshold,
		SustainedRunLength:    cfg.SustainedRunLength,
		MinYearlyPoints:       cfg.MinYearlyPoints,
		AlertDirections:       cfg.AlertDirections,
	}, analysisLogger)
	mainLogger.Println("INFO: Analysis services initialized.")

	reportLogger := log.New(os.Stdout, "REPORT: ", log.LstdFlags|log.Lshortfile)
	writer := report.NewWriter(report.Params{
		ReportsDir:    cfg.ReportsDir,
		ProcessedDir:  cfg.ProcessedDir,
		TopLocalities: cfg.TopLocalities,
	}, reportLogger)
	mainLogger.Println("INFO: Report writer initialized.")

	pipelineLogger := log.New(os.Stdout, "PIPELINE: ", log.LstdFlags|log.Lshortfile)
	pipeline := app.NewPipelineServiceImpl(
		repo,
		cleanService,
		dictionaryService,
		qualityService,
		extractService,
		analysisService,
		writer,
		cfg.DataFile,
		pipelineLogger,
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := pipeline.Run(ctx); err != nil {
		logger.Log.WithError(err).Error("Analysis run failed")
		os.Exit(1)
	}

	logger.Log.WithFields(logrus.Fields{
		"data_file":   cfg.DataFile,
		"reports_dir": cfg.ReportsDir,
	}).Info("Analysis run completed successfully")
}
